// Package referral holds the hospitalization-bureau referral record as it
// arrives from the BG channel, normalised at the ingestion boundary.
package referral

import (
	"encoding/json"
	"strings"
)

// Sex codes used by the bureau in patient.sexIdCode.
const (
	SexMale    = "100"
	SexFemale  = "200"
	SexUnknown = "000"
)

// Flag is a bureau boolean. The channel transmits "true"/"false" as free
// text; anything other than a case-insensitive "true" decodes to false.
type Flag bool

func (f *Flag) UnmarshalText(text []byte) error {
	*f = Flag(strings.EqualFold(strings.TrimSpace(string(text)), "true"))
	return nil
}

func (f Flag) MarshalText() ([]byte, error) {
	if f {
		return []byte("true"), nil
	}
	return []byte("false"), nil
}

// UnmarshalJSON accepts both JSON booleans and the string form.
func (f *Flag) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = Flag(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*f = false
		return nil
	}
	return f.UnmarshalText([]byte(s))
}

type Patient struct {
	ID       string `xml:"id" json:"id"`
	IIN      string `xml:"personin" json:"personin"`
	FullName string `xml:"personFullName" json:"personFullName"`
	// BirthDate keeps the bureau's ISO-ish text, e.g. 2025-01-01T00:00:00.
	BirthDate string `xml:"birthDate" json:"birthDate"`
	SexCode   string `xml:"sexIdCode" json:"sexIdCode"`
}

func (p Patient) IsFemale() bool {
	return p.SexCode == SexFemale
}

type BedProfile struct {
	Code string `xml:"code" json:"code"`
}

type Sick struct {
	Code string `xml:"code" json:"code"`
	Name string `xml:"name" json:"name"`
}

// Item is one referral record. Every field is optional upstream; an absent
// value is the empty string.
type Item struct {
	ID                  string     `xml:"id" json:"id"`
	ProtocolNumber      string     `xml:"protocolNumber" json:"protocolNumber"`
	RegDate             string     `xml:"regDate" json:"regDate"`
	OutDate             string     `xml:"outDate" json:"outDate"`
	HospitalDate        string     `xml:"hospitalDate" json:"hospitalDate"`
	Patient             Patient    `xml:"patient" json:"patient"`
	BedProfile          BedProfile `xml:"bedProfile" json:"bedProfile"`
	Sick                Sick       `xml:"sick" json:"sick"`
	DirectDoctor        string     `xml:"directDoctor" json:"directDoctor"`
	HasConfirm          Flag       `xml:"hasConfirm" json:"hasConfirm"`
	HasRefusal          Flag       `xml:"hasRefusal" json:"hasRefusal"`
	RefuseJustification string     `xml:"refuseJustification" json:"refuseJustification"`
	// AdditionalInformation is unstructured text. The bureau spells the
	// element "addiditonalInformation".
	AdditionalInformation string `xml:"addiditonalInformation" json:"addiditonalInformation"`
	Address               string `xml:"address" json:"address"`
}

// Discharged reports whether the record carries an out date.
func (i Item) Discharged() bool {
	return strings.TrimSpace(i.OutDate) != ""
}

// Query is the subset of a journal filter that is pushed to the bureau.
type Query struct {
	PatientIINOrFIO string
	DateFrom        string
	DateTo          string
}

// Params returns the non-empty query values keyed by their channel names.
func (q Query) Params() map[string]string {
	params := make(map[string]string, 3)
	if q.PatientIINOrFIO != "" {
		params["patientIINOrFIO"] = q.PatientIINOrFIO
	}
	if q.DateFrom != "" {
		params["dateFrom"] = q.DateFrom
	}
	if q.DateTo != "" {
		params["dateTo"] = q.DateTo
	}
	return params
}
