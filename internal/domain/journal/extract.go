package journal

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/orkendeu/bg-journal/internal/domain/referral"
	"github.com/orkendeu/bg-journal/pkg/pagination"
)

// Display defaults used when a record lacks the value.
const (
	DefaultPhone          = "+77076098760"
	DefaultAddress        = "г. Алматы мкр. Алмагуль 3 кв. 1"
	DefaultExecutor       = "Нуржауганов Анварбек Кайыржанович"
	DefaultDoctor         = "Александр Васильевич Пупкин"
	DefaultSpecialist     = DefaultDoctor
	DefaultSpecialization = "Терапевт"
	DefaultDepartmentName = "Терапевтическое отделение"
	DefaultMotherName     = "Мать"
	DefaultRefusalReason  = "Отказ от госпитализации"

	DepartmentPrefix  = "№"
	DefaultDepartment = "072"
)

const (
	OutcomeImprovement = "Улучшение"
	OutcomeDeath       = "Смерть"
	DischargeReleased  = "Выписан"
	DischargeDied      = "Умер"
)

// DefaultHospitalName is the institution literal placed on every envelope.
const DefaultHospitalName = `Коммунальное государственное предприятие на праве хозяйственного ведения "Областная многопрофильная больница города Жезказган" управления здравоохранения области Улытау`

const dateLayout = "2006-01-02"

var (
	phonePattern  = regexp.MustCompile(`\+?[78][\d\s-]{10,}`)
	motherPattern = regexp.MustCompile(`(?i)мать:?\s*([\p{L}\p{N}_\s]+)`)

	deathMarkers = []string{"смерть", "умер", "летальный", "скончался"}
)

// fold returns the case-folded form of s. A Caser is stateful, so one is
// built per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

func containsFold(s, substr string) bool {
	return strings.Contains(fold(s), fold(substr))
}

// ParseDate parses the date portion of a bureau timestamp, i.e. the text
// before a "T" separator in YYYY-MM-DD form.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[:i]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsDateInRange reports whether regDate falls within [from, to] at day
// granularity. Empty or malformed dates are never in range.
func IsDateInRange(regDate string, from, to time.Time) bool {
	d, ok := ParseDate(regDate)
	if !ok {
		return false
	}
	return !d.Before(from) && !d.After(to)
}

// MatchPatient matches the identifier as a case-insensitive substring of the
// patient's full name or as the exact national ID.
func MatchPatient(item referral.Item, identifier string) bool {
	if identifier == "" {
		return true
	}
	if item.Patient.IIN != "" && item.Patient.IIN == identifier {
		return true
	}
	return containsFold(item.Patient.FullName, identifier)
}

// MatchPatientExtended also matches against the record's free text, which
// carries mother references for newborns.
func MatchPatientExtended(item referral.Item, identifier string) bool {
	if MatchPatient(item, identifier) {
		return true
	}
	return containsFold(item.AdditionalInformation, identifier)
}

func MatchDepartment(item referral.Item, department string) bool {
	if department == "" || department == StatusAll {
		return true
	}
	return item.BedProfile.Code == department
}

// HasDeathMarker reports whether the free text mentions a death.
func HasDeathMarker(text string) bool {
	if text == "" {
		return false
	}
	folded := fold(text)
	for _, m := range deathMarkers {
		if strings.Contains(folded, m) {
			return true
		}
	}
	return false
}

// ExtractPhone returns the first phone-like sequence in text, or the
// default phone.
func ExtractPhone(text string) string {
	m := phonePattern.FindString(text)
	if m = strings.TrimSpace(m); m == "" {
		return DefaultPhone
	}
	return m
}

// ExtractMother returns the name following a "мать:" label, or the default
// placeholder.
func ExtractMother(text string) Mother {
	m := motherPattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return Mother{FullName: DefaultMotherName}
	}
	name := strings.Join(strings.Fields(m[1]), " ")
	if name == "" {
		name = DefaultMotherName
	}
	return Mother{FullName: name}
}

func FormatDepartment(code string) string {
	if code == "" {
		code = DefaultDepartment
	}
	return DepartmentPrefix + code
}

func FormatDiagnosis(sick referral.Sick) string {
	return strings.TrimSpace(sick.Code + " " + sick.Name)
}

// FormatPeriod renders a stay as "С DD.MM.YYYY" or "С DD.MM.YYYY – По DD.MM.YYYY".
// An empty or malformed start yields "". A malformed end is dropped.
func FormatPeriod(start, end string) string {
	s, ok := ParseDate(start)
	if !ok {
		return ""
	}
	out := "С " + s.Format("02.01.2006")
	if e, ok := ParseDate(end); ok {
		out += " – По " + e.Format("02.01.2006")
	}
	return out
}

// ApplySort orders assets in place. The sort is stable; an unknown key
// leaves the order unchanged.
func ApplySort(items []Asset, key SortKey) {
	var less func(a, b Asset) bool
	switch key {
	case SortDateAsc:
		less = func(a, b Asset) bool { return a.ReceiptDate < b.ReceiptDate }
	case SortDateDesc:
		less = func(a, b Asset) bool { return a.ReceiptDate > b.ReceiptDate }
	case SortPatientNameAsc:
		less = func(a, b Asset) bool { return a.Patient.FullName < b.Patient.FullName }
	case SortPatientNameDesc:
		less = func(a, b Asset) bool { return a.Patient.FullName > b.Patient.FullName }
	default:
		return
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

// Paginate returns the requested page and the total page count.
func Paginate(items []Asset, page, limit int) ([]Asset, int) {
	return pagination.Slice(items, page, limit)
}
