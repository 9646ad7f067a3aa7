package journal

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/orkendeu/bg-journal/internal/domain/referral"
)

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func yearFilter() Filter {
	return Filter{
		DateFrom:   "2025-01-01",
		DateTo:     "2025-12-31",
		Department: StatusAll,
		Status:     StatusAll,
		SortBy:     SortDateAsc,
		Page:       1,
		Limit:      100,
	}
}

func newItem(id, regDate string) referral.Item {
	return referral.Item{
		ID:             id,
		ProtocolNumber: "P-" + id,
		RegDate:        regDate,
		Patient: referral.Patient{
			ID:        "pat-" + id,
			IIN:       "0702106538" + id,
			FullName:  "Пациент " + id,
			BirthDate: "1990-02-10T00:00:00",
			SexCode:   referral.SexMale,
		},
		BedProfile: referral.BedProfile{Code: "072"},
		Sick:       referral.Sick{Code: "J18.9", Name: "Пневмония"},
	}
}

// mixedItems covers every membership branch across the journals.
func mixedItems() []referral.Item {
	waiting := newItem("01", "2025-03-01T08:00:00")

	hospitalized := newItem("02", "2025-03-02T08:00:00")
	hospitalized.HasConfirm = true

	discharged := newItem("03", "2025-03-03T08:00:00")
	discharged.HasConfirm = true
	discharged.HospitalDate = "2025-03-03T09:00:00"
	discharged.OutDate = "2025-03-10T12:00:00"

	refused := newItem("04", "2025-03-04T08:00:00")
	refused.HasRefusal = true
	refused.RefuseJustification = "Нет показаний"

	mother := newItem("05", "2025-03-05T08:00:00")
	mother.Patient.SexCode = referral.SexFemale
	mother.AdditionalInformation = "мать: Петрова Анна, тел +77011234567"

	died := newItem("06", "2025-03-06T08:00:00")
	died.AdditionalInformation = "Летальный исход"

	femaleOut := newItem("07", "2025-03-07T08:00:00")
	femaleOut.Patient.SexCode = referral.SexFemale
	femaleOut.OutDate = "2025-03-09T08:00:00"

	otherDept := newItem("08", "2025-03-08T08:00:00")
	otherDept.BedProfile.Code = "015"

	outOfRange := newItem("09", "2024-12-31T23:00:00")
	outOfRange.HasRefusal = true

	badDate := newItem("10", "31.03.2025")
	badDate.HasRefusal = true

	return []referral.Item{waiting, hospitalized, discharged, refused, mother, died, femaleOut, otherDept, outOfRange, badDate}
}

func transform(t *testing.T, kind Kind, items []referral.Item, f Filter) Response {
	t.Helper()
	d, ok := Lookup(kind)
	if !ok {
		t.Fatalf("journal %s not registered", kind)
	}
	return d.Transform(items, f, testNow, DefaultHospitalName)
}

func TestRegistry(t *testing.T) {
	kinds := []Kind{KindHospital, KindRejection, KindAmbulance, KindNewborn, KindClinic, KindDeceased, KindMaternity}
	descs := Descriptors()
	if len(descs) != len(kinds) {
		t.Fatalf("expected %d journals, got %d", len(kinds), len(descs))
	}
	for i, k := range kinds {
		if descs[i].Kind != k {
			t.Errorf("journal %d: expected %s, got %s", i, k, descs[i].Kind)
		}
		if descs[i].Statuses[0] != StatusAll {
			t.Errorf("%s: expected all as first status", k)
		}
		if descs[i].Project == nil {
			t.Errorf("%s: missing projector", k)
		}
	}
	if _, ok := Lookup("unknown"); ok {
		t.Error("expected unknown journal lookup to fail")
	}
}

func TestMembership(t *testing.T) {
	tests := []struct {
		kind   Kind
		status string
		want   []string
	}{
		{KindHospital, StatusAll, []string{"01", "02", "03", "04", "05", "06", "07", "08"}},
		{KindHospital, string(StatusWaiting), []string{"01", "04", "05", "06", "08"}},
		{KindHospital, string(StatusHospitalized), []string{"02"}},
		{KindHospital, string(StatusDischarged), []string{"03", "07"}},
		{KindAmbulance, StatusAll, []string{"01", "02", "03", "04", "05", "06", "07", "08"}},
		{KindAmbulance, "completed", []string{"01", "02", "03", "04", "05", "06", "07", "08"}},
		{KindClinic, "scheduled", []string{"01", "02", "03", "04", "05", "06", "07", "08"}},
		{KindMaternity, StatusAll, []string{"05", "07"}},
		{KindMaternity, EpisodeActive, []string{"05"}},
		{KindMaternity, EpisodeDischarged, []string{"07"}},
		{KindNewborn, StatusAll, []string{"01", "02", "03", "04", "05", "06", "07", "08"}},
		{KindNewborn, EpisodeDischarged, []string{"03", "07"}},
		{KindDeceased, StatusAll, []string{"03", "06", "07"}},
		{KindRejection, StatusAll, []string{"04"}},
		{KindRejection, "pending", []string{"04"}},
	}
	for _, tt := range tests {
		f := yearFilter()
		f.Status = tt.status
		resp := transform(t, tt.kind, mixedItems(), f)

		var got []string
		for _, a := range resp.Items {
			got = append(got, a.ID)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s status=%s: got %v, want %v", tt.kind, tt.status, got, tt.want)
		}
		if resp.Total != len(tt.want) {
			t.Errorf("%s status=%s: expected total %d, got %d", tt.kind, tt.status, len(tt.want), resp.Total)
		}
	}
}

func TestMembership_SharedFilters(t *testing.T) {
	items := mixedItems()
	for _, d := range Descriptors() {
		f := yearFilter()
		f.Department = "072"
		f.PatientIdentifier = "пациент 0"
		resp := d.Transform(items, f, testNow, DefaultHospitalName)

		w := NewWindow(f.DateFrom, f.DateTo)
		byID := map[string]referral.Item{}
		for _, it := range items {
			byID[it.ID] = it
		}
		for _, a := range resp.Items {
			it := byID[a.ID]
			if !w.Contains(it.RegDate) {
				t.Errorf("%s: %s outside date window", d.Kind, a.ID)
			}
			if it.BedProfile.Code != "072" {
				t.Errorf("%s: %s in wrong department", d.Kind, a.ID)
			}
			if !d.Admit(it, f, w) {
				t.Errorf("%s: %s fails membership", d.Kind, a.ID)
			}
		}
	}
}

func TestTotalPagesConsistency(t *testing.T) {
	items := mixedItems()
	for _, limit := range []int{1, 2, 3, 7, 8, 50} {
		f := yearFilter()
		f.Limit = limit
		resp := transform(t, KindHospital, items, f)
		want := 0
		if resp.Total > 0 {
			want = (resp.Total + limit - 1) / limit
		}
		if resp.TotalPages != want {
			t.Errorf("limit %d: total_pages %d, want %d", limit, resp.TotalPages, want)
		}
	}

	empty := transform(t, KindHospital, nil, yearFilter())
	if empty.Total != 0 || empty.TotalPages != 0 || empty.Items == nil {
		t.Errorf("unexpected empty response: %+v", empty)
	}
}

func TestPaginationConcatenation(t *testing.T) {
	items := mixedItems()
	f := yearFilter()
	f.SortBy = SortPatientNameDesc
	full := transform(t, KindNewborn, items, f)

	f.Limit = 3
	first := transform(t, KindNewborn, items, f)

	var all []Asset
	for p := 1; p <= first.TotalPages; p++ {
		f.Page = p
		all = append(all, transform(t, KindNewborn, items, f).Items...)
	}
	if !reflect.DeepEqual(all, full.Items) {
		t.Errorf("pages do not reproduce the full list: %s vs %s", ids(all), ids(full.Items))
	}
}

func TestSortReversal(t *testing.T) {
	items := mixedItems()
	asc := yearFilter()
	asc.SortBy = SortDateAsc
	desc := yearFilter()
	desc.SortBy = SortDateDesc

	a := transform(t, KindAmbulance, items, asc).Items
	d := transform(t, KindAmbulance, items, desc).Items
	if len(a) != len(d) {
		t.Fatalf("length mismatch %d vs %d", len(a), len(d))
	}
	for i := range a {
		if a[i].ID != d[len(d)-1-i].ID {
			t.Fatalf("descending order is not the reverse of ascending: %s vs %s", ids(a), ids(d))
		}
	}
}

func TestTransformIdempotent(t *testing.T) {
	items := mixedItems()
	for _, d := range Descriptors() {
		first := d.Transform(items, yearFilter(), testNow, DefaultHospitalName)
		second := d.Transform(items, yearFilter(), testNow, DefaultHospitalName)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("%s: repeated transform differs", d.Kind)
		}
	}
}

func TestHospitalScenario(t *testing.T) {
	item := referral.Item{
		ID:         "42",
		RegDate:    "2025-03-05T00:00:00",
		HasConfirm: true,
		BedProfile: referral.BedProfile{Code: "072"},
	}
	f := yearFilter()
	f.Department = "072"
	f.Status = string(StatusHospitalized)

	resp := transform(t, KindHospital, []referral.Item{item}, f)
	if len(resp.Items) != 1 {
		t.Fatalf("expected the record to be included, got %d items", len(resp.Items))
	}
	a := resp.Items[0]
	if a.Status != StatusHospitalized || a.StatusColor != ColorBlue {
		t.Errorf("expected hospitalized/blue, got %s/%s", a.Status, a.StatusColor)
	}
	if a.AdditionalInfo.DischargeOutcome != "" {
		t.Errorf("expected no discharge outcome, got %q", a.AdditionalInfo.DischargeOutcome)
	}
	if a.AdditionalInfo.TreatmentOutcome != OutcomeImprovement {
		t.Errorf("expected improvement outcome, got %q", a.AdditionalInfo.TreatmentOutcome)
	}
	if a.AdditionalInfo.Department != "№072" || a.AdditionalInfo.Executor != DefaultExecutor {
		t.Errorf("unexpected additional info: %+v", a.AdditionalInfo)
	}
}

func TestHospitalProjection_Discharged(t *testing.T) {
	resp := transform(t, KindHospital, mixedItems(), func() Filter {
		f := yearFilter()
		f.Status = string(StatusDischarged)
		return f
	}())
	a := resp.Items[0]
	if a.ID != "03" || a.StatusColor != ColorGray {
		t.Fatalf("unexpected asset: %+v", a)
	}
	info := a.AdditionalInfo
	if info.DischargeOutcome != DischargeReleased {
		t.Errorf("expected discharge outcome, got %q", info.DischargeOutcome)
	}
	if info.HospitalizationPeriod != "С 03.03.2025 – По 10.03.2025" {
		t.Errorf("unexpected period %q", info.HospitalizationPeriod)
	}
	if info.Diagnosis != "J18.9 Пневмония" {
		t.Errorf("unexpected diagnosis %q", info.Diagnosis)
	}
	if a.Patient.Age != 35 || a.Patient.AgeGroup != AgeAdult {
		t.Errorf("unexpected age %d/%s", a.Patient.Age, a.Patient.AgeGroup)
	}
}

func TestRejectionScenario(t *testing.T) {
	refused := newItem("1", "2025-05-01T00:00:00")
	refused.HasRefusal = true
	noReason := newItem("2", "2025-05-02T00:00:00")
	noReason.HasRefusal = true
	accepted := newItem("3", "2025-05-03T00:00:00")
	refused.RefuseJustification = "Нет мест"

	resp := transform(t, KindRejection, []referral.Item{refused, noReason, accepted}, yearFilter())
	if resp.Total != 2 {
		t.Fatalf("expected 2 rejections, got %d", resp.Total)
	}
	if got := resp.Items[0].AdditionalInfo.RejectionReason; got != "Нет мест" {
		t.Errorf("expected justification, got %q", got)
	}
	if got := resp.Items[1].AdditionalInfo.RejectionReason; got != DefaultRefusalReason {
		t.Errorf("expected default reason, got %q", got)
	}
	for _, a := range resp.Items {
		if a.StatusColor != ColorRed {
			t.Errorf("expected red, got %s", a.StatusColor)
		}
	}
}

func TestPaginationScenario(t *testing.T) {
	items := make([]referral.Item, 25)
	for i := range items {
		items[i] = newItem(fmt.Sprintf("%02d", i), fmt.Sprintf("2025-04-%02dT00:00:00", i+1))
	}
	f := yearFilter()
	f.Page, f.Limit = 3, 10

	resp := transform(t, KindAmbulance, items, f)
	if resp.Total != 25 || resp.TotalPages != 3 {
		t.Errorf("expected total 25 / 3 pages, got %d / %d", resp.Total, resp.TotalPages)
	}
	if len(resp.Items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(resp.Items))
	}
	if resp.Items[0].ID != "20" || resp.Items[4].ID != "24" {
		t.Errorf("expected items 20..24, got %s..%s", resp.Items[0].ID, resp.Items[4].ID)
	}
	if resp.Page != 3 || resp.Limit != 10 {
		t.Errorf("expected echoed page/limit, got %d/%d", resp.Page, resp.Limit)
	}
}

func TestClinicProjection(t *testing.T) {
	item := newItem("1", "2025-02-01T00:00:00")
	item.AdditionalInformation = "тел 87011234567"

	a := transform(t, KindClinic, []referral.Item{item}, yearFilter()).Items[0]
	if a.StatusColor != ColorYellow {
		t.Errorf("expected yellow, got %s", a.StatusColor)
	}
	if a.Doctor == nil || a.Doctor.FullName != DefaultDoctor || a.Doctor.Specialization != DefaultSpecialization {
		t.Fatalf("unexpected doctor: %+v", a.Doctor)
	}
	info := a.AdditionalInfo
	if info.Address != DefaultAddress || info.Phone != "87011234567" || info.Specialist != DefaultDoctor {
		t.Errorf("unexpected additional info: %+v", info)
	}

	item.DirectDoctor = "Иванов И.И."
	item.Address = "г. Жезказган"
	a = transform(t, KindClinic, []referral.Item{item}, yearFilter()).Items[0]
	if a.Doctor.FullName != "Иванов И.И." || a.AdditionalInfo.Address != "г. Жезказган" {
		t.Errorf("expected record values to win, got %+v", a)
	}
}

func TestNewbornProjection(t *testing.T) {
	f := yearFilter()
	f.PatientIdentifier = "петрова"
	resp := transform(t, KindNewborn, mixedItems(), f)
	if resp.Total != 1 {
		t.Fatalf("expected mother reference match, got %d", resp.Total)
	}
	info := resp.Items[0].AdditionalInfo
	if info.Mother == nil || info.Mother.FullName != "Петрова Анна" {
		t.Errorf("unexpected mother: %+v", info.Mother)
	}
	if info.Phone != "+77011234567" {
		t.Errorf("unexpected phone %q", info.Phone)
	}
	if resp.Items[0].StatusColor != ColorGreen {
		t.Errorf("expected green, got %s", resp.Items[0].StatusColor)
	}

	plain := transform(t, KindNewborn, mixedItems()[:1], yearFilter()).Items[0]
	if plain.AdditionalInfo.Mother.FullName != DefaultMotherName {
		t.Errorf("expected default mother, got %q", plain.AdditionalInfo.Mother.FullName)
	}
}

func TestDeceasedProjection(t *testing.T) {
	resp := transform(t, KindDeceased, mixedItems(), yearFilter())
	for _, a := range resp.Items {
		info := a.AdditionalInfo
		if a.StatusColor != ColorRed {
			t.Errorf("%s: expected red", a.ID)
		}
		if info.TreatmentOutcome != OutcomeDeath || info.DischargeOutcome != DischargeDied {
			t.Errorf("%s: unexpected outcomes %+v", a.ID, info)
		}
		if info.Specialist != DefaultSpecialist || info.Address != DefaultAddress {
			t.Errorf("%s: expected defaults, got %+v", a.ID, info)
		}
	}
}

func TestMaternityProjection(t *testing.T) {
	resp := transform(t, KindMaternity, mixedItems(), yearFilter())
	if len(resp.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(resp.Items))
	}
	active, out := resp.Items[0], resp.Items[1]
	if active.StatusColor != ColorGreen || active.AdditionalInfo.DischargeOutcome != "" {
		t.Errorf("unexpected active asset: %+v", active)
	}
	if out.StatusColor != ColorGray || out.AdditionalInfo.DischargeOutcome != DischargeReleased {
		t.Errorf("unexpected discharged asset: %+v", out)
	}
}

func TestAssetJSONShape(t *testing.T) {
	resp := transform(t, KindHospital, mixedItems()[:1], yearFilter())
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(data)
	for _, key := range []string{`"hospital_name"`, `"total_pages"`, `"receipt_date"`, `"status":"waiting"`, `"status_color":"green"`, `"full_name"`} {
		if !strings.Contains(s, key) {
			t.Errorf("expected %s in %s", key, s)
		}
	}
	for _, key := range []string{`"discharge_outcome"`, `"mother"`, `"doctor":{`} {
		if strings.Contains(s, key) {
			t.Errorf("unexpected %s in %s", key, s)
		}
	}

	amb := transform(t, KindAmbulance, mixedItems()[:1], yearFilter())
	data, _ = json.Marshal(amb)
	if strings.Contains(string(data), `"status":`) {
		t.Errorf("expected no status outside the hospital journal: %s", data)
	}
}

func TestAssetJSONShape_DegradedFields(t *testing.T) {
	item := newItem("1", "2025-02-01T00:00:00")
	item.Sick = referral.Sick{}
	item.HasRefusal = true

	tests := []struct {
		kind    Kind
		present []string
		absent  []string
	}{
		{KindHospital, []string{`"diagnosis":""`, `"doctor":""`, `"hospitalization_period":""`}, []string{`"discharge_outcome"`, `"mother"`}},
		{KindRejection, []string{`"diagnosis":""`, `"rejection_reason":"Отказ от госпитализации"`}, []string{`"phone"`}},
		{KindNewborn, []string{`"diagnosis":""`, `"mother":{"full_name":"Мать"}`}, []string{`"address"`}},
	}
	for _, tt := range tests {
		data, err := json.Marshal(transform(t, tt.kind, []referral.Item{item}, yearFilter()))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.kind, err)
		}
		s := string(data)
		for _, key := range tt.present {
			if !strings.Contains(s, key) {
				t.Errorf("%s: expected %s in %s", tt.kind, key, s)
			}
		}
		for _, key := range tt.absent {
			if strings.Contains(s, key) {
				t.Errorf("%s: unexpected %s in %s", tt.kind, key, s)
			}
		}
	}
}

func TestAdditionalInfo_OwnedKeysAlwaysRendered(t *testing.T) {
	// Admitted by every journal, with every optional source field empty.
	item := referral.Item{
		ID:         "x",
		RegDate:    "2025-02-01T00:00:00",
		OutDate:    "2025-02-03T00:00:00",
		HasRefusal: true,
		Patient:    referral.Patient{SexCode: referral.SexFemale},
	}

	for _, d := range Descriptors() {
		resp := d.Transform([]referral.Item{item}, yearFilter(), testNow, DefaultHospitalName)
		if len(resp.Items) != 1 {
			t.Fatalf("%s: expected the record to be admitted, got %d", d.Kind, len(resp.Items))
		}
		data, err := json.Marshal(resp.Items[0].AdditionalInfo)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", d.Kind, err)
		}
		var got map[string]json.RawMessage
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("%s: decode: %v", d.Kind, err)
		}
		for _, key := range d.InfoKeys {
			if _, ok := got[key]; !ok {
				t.Errorf("%s: expected key %q in %s", d.Kind, key, data)
			}
		}
	}
}

func TestAdditionalInfo_UnownedKeysOmitted(t *testing.T) {
	data, err := json.Marshal(AdditionalInfo{Phone: "+77011234567"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"phone":"+77011234567"}` {
		t.Errorf("expected only the set key, got %s", data)
	}

	var decoded AdditionalInfo
	if err := json.Unmarshal([]byte(`{"diagnosis":"","executor":"x","mother":{"full_name":"Мать"}}`), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Executor != "x" || decoded.Mother == nil || decoded.Mother.FullName != "Мать" {
		t.Errorf("unexpected decoded info: %+v", decoded)
	}
}

func TestAmbulanceProjection(t *testing.T) {
	tests := []struct {
		text  string
		phone string
	}{
		{"вызов, контакт +77011234567", "+77011234567"},
		{"без контактов", DefaultPhone},
	}
	for _, tt := range tests {
		item := newItem("1", "2025-02-01T00:00:00")
		item.AdditionalInformation = tt.text

		a := transform(t, KindAmbulance, []referral.Item{item}, yearFilter()).Items[0]
		if a.StatusColor != ColorGreen {
			t.Errorf("%q: expected green, got %s", tt.text, a.StatusColor)
		}
		if a.Status != "" || a.Doctor != nil {
			t.Errorf("%q: expected no status or doctor, got %+v", tt.text, a)
		}
		info := a.AdditionalInfo
		if info.Phone != tt.phone {
			t.Errorf("%q: expected phone %q, got %q", tt.text, tt.phone, info.Phone)
		}
		if info.Executor != DefaultExecutor {
			t.Errorf("%q: expected default executor, got %q", tt.text, info.Executor)
		}
		if info.Department != "№072" {
			t.Errorf("%q: expected №072, got %q", tt.text, info.Department)
		}
	}
}

func TestWindow(t *testing.T) {
	w := NewWindow("", "")
	if !w.Contains("2025-01-01") {
		t.Error("expected open window to accept a valid date")
	}
	if w.Contains("") {
		t.Error("expected empty reg date to be rejected")
	}
	if NewWindow("2025-13-01", "2025-12-31").Contains("2025-03-01") {
		t.Error("expected malformed bound to match nothing")
	}
	if !NewWindow("2025-03-01", "").Contains("2025-03-01T10:00:00") {
		t.Error("expected inclusive lower bound")
	}
}
