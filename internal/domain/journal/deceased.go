package journal

import (
	"time"

	"github.com/orkendeu/bg-journal/internal/domain/referral"
)

var deceasedJournal = &Descriptor{
	Kind:     KindDeceased,
	Title:    "Умершие пациенты",
	Statuses: []string{StatusAll},
	Member: func(item referral.Item, _ string) bool {
		return HasDeathMarker(item.AdditionalInformation) || item.Discharged()
	},
	Project:  projectDeceased,
	InfoKeys: []string{InfoPhone, InfoAddress, InfoTreatmentOutcome, InfoDischargeOutcome, InfoHospitalizationPeriod, InfoDiagnosis, InfoSpecialist, InfoDepartment},
}

func projectDeceased(item referral.Item, now time.Time) Asset {
	a := baseAsset(item, now)
	a.StatusColor = ColorRed
	a.AdditionalInfo = AdditionalInfo{
		Phone:                 ExtractPhone(item.AdditionalInformation),
		Address:               orDefault(item.Address, DefaultAddress),
		TreatmentOutcome:      OutcomeDeath,
		DischargeOutcome:      DischargeDied,
		HospitalizationPeriod: FormatPeriod(item.HospitalDate, item.OutDate),
		Diagnosis:             FormatDiagnosis(item.Sick),
		Specialist:            orDefault(item.DirectDoctor, DefaultSpecialist),
		Department:            FormatDepartment(item.BedProfile.Code),
	}
	return a
}
