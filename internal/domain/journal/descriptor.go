package journal

import (
	"time"

	"github.com/orkendeu/bg-journal/internal/domain/referral"
)

// Descriptor declares everything that distinguishes one journal from
// another. The shared engine in Transform does the rest.
type Descriptor struct {
	Kind  Kind
	Title string
	// Statuses lists the accepted status filter values, "all" first.
	Statuses []string
	// Identity matches the patient identifier; MatchPatient when nil.
	Identity func(item referral.Item, identifier string) bool
	// Member is the journal-specific predicate; nil admits every record.
	Member  func(item referral.Item, status string) bool
	Project func(item referral.Item, now time.Time) Asset

	// InfoKeys are the additional_info keys this journal always renders.
	InfoKeys []string
}

// AcceptsStatus reports whether status is a declared filter value.
func (d *Descriptor) AcceptsStatus(status string) bool {
	for _, s := range d.Statuses {
		if s == status {
			return true
		}
	}
	return false
}

func (d *Descriptor) Summary() Summary {
	return Summary{
		Kind:     d.Kind,
		Title:    d.Title,
		Path:     "/api/journal/" + string(d.Kind),
		Statuses: d.Statuses,
	}
}

// Admit reports whether item belongs in this journal for the filter. The
// date window is passed pre-parsed.
func (d *Descriptor) Admit(item referral.Item, f Filter, w Window) bool {
	if !w.Contains(item.RegDate) {
		return false
	}
	identity := d.Identity
	if identity == nil {
		identity = MatchPatient
	}
	if !identity(item, f.PatientIdentifier) {
		return false
	}
	if !MatchDepartment(item, f.Department) {
		return false
	}
	if d.Member != nil && !d.Member(item, f.Status) {
		return false
	}
	return true
}

// Transform filters, projects, sorts and paginates items into a response.
func (d *Descriptor) Transform(items []referral.Item, f Filter, now time.Time, hospitalName string) Response {
	w := NewWindow(f.DateFrom, f.DateTo)

	assets := make([]Asset, 0, len(items))
	for _, item := range items {
		if !d.Admit(item, f, w) {
			continue
		}
		a := d.Project(item, now)
		a.AdditionalInfo.owned = d.InfoKeys
		assets = append(assets, a)
	}

	ApplySort(assets, f.SortBy)
	page, totalPages := Paginate(assets, f.Page, f.Limit)

	return Response{
		HospitalName: hospitalName,
		Items:        page,
		Total:        len(assets),
		Page:         f.Page,
		Limit:        f.Limit,
		TotalPages:   totalPages,
	}
}

// Empty is the envelope returned when the bureau could not be reached.
func Empty(f Filter, hospitalName string) Response {
	return Response{
		HospitalName: hospitalName,
		Items:        []Asset{},
		Page:         f.Page,
		Limit:        f.Limit,
	}
}

// Window is an inclusive day range. An empty bound is open; a malformed
// bound matches nothing.
type Window struct {
	from, to time.Time
	hasFrom  bool
	hasTo    bool
	invalid  bool
}

func NewWindow(from, to string) Window {
	var w Window
	if from != "" {
		w.from, w.hasFrom = ParseDate(from)
		w.invalid = w.invalid || !w.hasFrom
	}
	if to != "" {
		w.to, w.hasTo = ParseDate(to)
		w.invalid = w.invalid || !w.hasTo
	}
	return w
}

func (w Window) Contains(regDate string) bool {
	if w.invalid {
		return false
	}
	d, ok := ParseDate(regDate)
	if !ok {
		return false
	}
	if w.hasFrom && d.Before(w.from) {
		return false
	}
	if w.hasTo && d.After(w.to) {
		return false
	}
	return true
}

// baseAsset projects the fields every journal shares.
func baseAsset(item referral.Item, now time.Time) Asset {
	p := item.Patient
	return Asset{
		ID:          item.ID,
		Number:      item.ProtocolNumber,
		ReceiptDate: item.RegDate,
		Patient: Patient{
			ID:        p.ID,
			IIN:       p.IIN,
			FullName:  p.FullName,
			BirthDate: p.BirthDate,
			Age:       CalculateAge(p.BirthDate, now),
			AgeGroup:  AgeGroupOf(p.BirthDate, now),
		},
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

var registry = []*Descriptor{
	hospitalJournal,
	rejectionJournal,
	ambulanceJournal,
	newbornJournal,
	clinicJournal,
	deceasedJournal,
	maternityJournal,
}

// Lookup returns the descriptor for kind.
func Lookup(kind Kind) (*Descriptor, bool) {
	for _, d := range registry {
		if d.Kind == kind {
			return d, true
		}
	}
	return nil, false
}

// Descriptors returns every registered journal in display order.
func Descriptors() []*Descriptor {
	out := make([]*Descriptor, len(registry))
	copy(out, registry)
	return out
}
