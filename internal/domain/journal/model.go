// Package journal classifies bureau referral records into the institution's
// reporting journals and projects them into paginated views.
package journal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/orkendeu/bg-journal/pkg/pagination"
)

// Kind identifies a journal. The value doubles as its URL segment.
type Kind string

const (
	KindHospital  Kind = "hospital-assets"
	KindRejection Kind = "hospitalization-rejections"
	KindAmbulance Kind = "ambulance-assets"
	KindNewborn   Kind = "newborns"
	KindClinic    Kind = "clinic-assets"
	KindDeceased  Kind = "deceased-patients"
	KindMaternity Kind = "maternity-assets"
)

// StatusAll disables status and department filtering.
const StatusAll = "all"

type SortKey string

const (
	SortDateAsc         SortKey = "date_asc"
	SortDateDesc        SortKey = "date_desc"
	SortPatientNameAsc  SortKey = "patient_name_asc"
	SortPatientNameDesc SortKey = "patient_name_desc"
)

// SortKeys lists the accepted sort keys.
var SortKeys = []SortKey{SortDateAsc, SortDateDesc, SortPatientNameAsc, SortPatientNameDesc}

type StatusColor string

const (
	ColorGreen  StatusColor = "green"
	ColorBlue   StatusColor = "blue"
	ColorYellow StatusColor = "yellow"
	ColorRed    StatusColor = "red"
	ColorGray   StatusColor = "gray"
)

// HospitalStatus is only emitted by the hospital journal.
type HospitalStatus string

const (
	StatusHospitalized HospitalStatus = "hospitalized"
	StatusWaiting      HospitalStatus = "waiting"
	StatusDischarged   HospitalStatus = "discharged"
)

// Episode statuses shared by the maternity and newborn journals.
const (
	EpisodeActive     = "active"
	EpisodeDischarged = "discharged"
)

// Filter is a validated journal query. DateFrom and DateTo are YYYY-MM-DD.
type Filter struct {
	PatientIdentifier string  `json:"patient_identifier,omitempty"`
	DateFrom          string  `json:"date_from"`
	DateTo            string  `json:"date_to"`
	Department        string  `json:"department"`
	Status            string  `json:"status"`
	DeliveryStatus    string  `json:"delivery_status,omitempty"`
	SortBy            SortKey `json:"sort_by"`
	Page              int     `json:"page"`
	Limit             int     `json:"limit"`
}

// WithDefaults fills unset optional fields with the query defaults.
func (f Filter) WithDefaults() Filter {
	if f.Department == "" {
		f.Department = StatusAll
	}
	if f.Status == "" {
		f.Status = StatusAll
	}
	if f.SortBy == "" {
		f.SortBy = SortDateDesc
	}
	if f.Page == 0 {
		f.Page = pagination.DefaultPage
	}
	if f.Limit == 0 {
		f.Limit = pagination.DefaultLimit
	}
	return f
}

// Validate checks a defaulted filter against the journal d.
func (f Filter) Validate(d *Descriptor) error {
	if f.DateFrom == "" || f.DateTo == "" {
		return errors.New("date_from and date_to are required")
	}
	if !isCalendarDate(f.DateFrom) {
		return errors.New("date_from must be YYYY-MM-DD")
	}
	if !isCalendarDate(f.DateTo) {
		return errors.New("date_to must be YYYY-MM-DD")
	}
	if f.Page < 1 {
		return pagination.ErrInvalidPage
	}
	if f.Limit < 1 || f.Limit > pagination.MaxLimit {
		return pagination.ErrInvalidLimit
	}
	if !d.AcceptsStatus(f.Status) {
		return fmt.Errorf("unsupported status: %s", f.Status)
	}
	if !validSortKey(f.SortBy) {
		return fmt.Errorf("unsupported sort_by: %s", f.SortBy)
	}
	return nil
}

func isCalendarDate(s string) bool {
	if len(s) != len(dateLayout) {
		return false
	}
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

type AgeGroup string

const (
	AgeNewborn AgeGroup = "newborn"
	AgeInfant  AgeGroup = "infant"
	AgeChild   AgeGroup = "child"
	AgeAdult   AgeGroup = "adult"
	AgeElderly AgeGroup = "elderly"
)

type Patient struct {
	ID        string   `json:"id"`
	IIN       string   `json:"iin"`
	FullName  string   `json:"full_name"`
	BirthDate string   `json:"birth_date"`
	Age       int      `json:"age"`
	AgeGroup  AgeGroup `json:"age_group,omitempty"`
}

// Doctor is the clinic journal's attending physician.
type Doctor struct {
	ID             string `json:"id"`
	FullName       string `json:"full_name"`
	Specialization string `json:"specialization,omitempty"`
	Department     string `json:"department,omitempty"`
}

// Mother is parsed from a newborn record's free text; only the name is known.
type Mother struct {
	FullName string `json:"full_name"`
}

// AdditionalInfo carries the journal-specific keys. A journal's own keys
// (see Descriptor.InfoKeys) are always rendered, empty or not; any other key
// appears only when set.
type AdditionalInfo struct {
	Phone                 string  `json:"phone,omitempty"`
	Address               string  `json:"address,omitempty"`
	Specialist            string  `json:"specialist,omitempty"`
	Doctor                string  `json:"doctor,omitempty"`
	Executor              string  `json:"executor,omitempty"`
	Department            string  `json:"department,omitempty"`
	Diagnosis             string  `json:"diagnosis,omitempty"`
	TreatmentOutcome      string  `json:"treatment_outcome,omitempty"`
	DischargeOutcome      string  `json:"discharge_outcome,omitempty"`
	HospitalizationPeriod string  `json:"hospitalization_period,omitempty"`
	RejectionReason       string  `json:"rejection_reason,omitempty"`
	Mother                *Mother `json:"mother,omitempty"`

	owned []string
}

// Additional info keys.
const (
	InfoPhone                 = "phone"
	InfoAddress               = "address"
	InfoSpecialist            = "specialist"
	InfoDoctor                = "doctor"
	InfoExecutor              = "executor"
	InfoDepartment            = "department"
	InfoDiagnosis             = "diagnosis"
	InfoTreatmentOutcome      = "treatment_outcome"
	InfoDischargeOutcome      = "discharge_outcome"
	InfoHospitalizationPeriod = "hospitalization_period"
	InfoRejectionReason       = "rejection_reason"
	InfoMother                = "mother"
)

func (ai AdditionalInfo) owns(key string) bool {
	for _, k := range ai.owned {
		if k == key {
			return true
		}
	}
	return false
}

func (ai AdditionalInfo) MarshalJSON() ([]byte, error) {
	fields := []struct {
		key   string
		value string
	}{
		{InfoPhone, ai.Phone},
		{InfoAddress, ai.Address},
		{InfoSpecialist, ai.Specialist},
		{InfoDoctor, ai.Doctor},
		{InfoExecutor, ai.Executor},
		{InfoDepartment, ai.Department},
		{InfoDiagnosis, ai.Diagnosis},
		{InfoTreatmentOutcome, ai.TreatmentOutcome},
		{InfoDischargeOutcome, ai.DischargeOutcome},
		{InfoHospitalizationPeriod, ai.HospitalizationPeriod},
		{InfoRejectionReason, ai.RejectionReason},
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	write := func(key string, v interface{}) error {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(key))
		buf.WriteByte(':')
		buf.Write(data)
		return nil
	}

	for _, f := range fields {
		if f.value == "" && !ai.owns(f.key) {
			continue
		}
		if err := write(f.key, f.value); err != nil {
			return nil, err
		}
	}
	if ai.Mother != nil || ai.owns(InfoMother) {
		if err := write(InfoMother, ai.Mother); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Asset is one projected journal row.
type Asset struct {
	ID             string         `json:"id"`
	Number         string         `json:"number"`
	ReceiptDate    string         `json:"receipt_date"`
	Patient        Patient        `json:"patient"`
	Status         HospitalStatus `json:"status,omitempty"`
	StatusColor    StatusColor    `json:"status_color"`
	Doctor         *Doctor        `json:"doctor,omitempty"`
	AdditionalInfo AdditionalInfo `json:"additional_info"`
}

// Response is the journal page envelope.
type Response struct {
	HospitalName string  `json:"hospital_name"`
	Items        []Asset `json:"items"`
	Total        int     `json:"total"`
	Page         int     `json:"page"`
	Limit        int     `json:"limit"`
	TotalPages   int     `json:"total_pages"`
}

// Summary describes a journal for the listing endpoint.
type Summary struct {
	Kind     Kind     `json:"kind"`
	Title    string   `json:"title"`
	Path     string   `json:"path"`
	Statuses []string `json:"statuses"`
}
