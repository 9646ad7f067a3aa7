package journal

import (
	"time"

	"github.com/orkendeu/bg-journal/internal/domain/referral"
)

var hospitalJournal = &Descriptor{
	Kind:  KindHospital,
	Title: "Стационар",
	Statuses: []string{
		StatusAll,
		string(StatusHospitalized),
		string(StatusWaiting),
		string(StatusDischarged),
	},
	Member: func(item referral.Item, status string) bool {
		if status == "" || status == StatusAll {
			return true
		}
		s, _ := hospitalStatus(item)
		return string(s) == status
	},
	Project:  projectHospital,
	InfoKeys: []string{InfoTreatmentOutcome, InfoHospitalizationPeriod, InfoDiagnosis, InfoDoctor, InfoExecutor, InfoDepartment},
}

// hospitalStatus derives the stay status: an out date means discharged,
// otherwise a confirmed referral is hospitalized and the rest are waiting.
func hospitalStatus(item referral.Item) (HospitalStatus, StatusColor) {
	switch {
	case item.Discharged():
		return StatusDischarged, ColorGray
	case bool(item.HasConfirm):
		return StatusHospitalized, ColorBlue
	default:
		return StatusWaiting, ColorGreen
	}
}

func projectHospital(item referral.Item, now time.Time) Asset {
	a := baseAsset(item, now)
	a.Status, a.StatusColor = hospitalStatus(item)
	a.AdditionalInfo = AdditionalInfo{
		TreatmentOutcome:      OutcomeImprovement,
		HospitalizationPeriod: FormatPeriod(item.HospitalDate, item.OutDate),
		Diagnosis:             FormatDiagnosis(item.Sick),
		Doctor:                item.DirectDoctor,
		Executor:              DefaultExecutor,
		Department:            FormatDepartment(item.BedProfile.Code),
	}
	if item.Discharged() {
		a.AdditionalInfo.DischargeOutcome = DischargeReleased
	}
	return a
}
