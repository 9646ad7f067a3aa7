package journal

import (
	"time"

	"github.com/orkendeu/bg-journal/internal/domain/referral"
)

var maternityJournal = &Descriptor{
	Kind:     KindMaternity,
	Title:    "Роддом",
	Statuses: []string{StatusAll, EpisodeActive, EpisodeDischarged},
	Member: func(item referral.Item, status string) bool {
		return item.Patient.IsFemale() && matchEpisode(item, status)
	},
	Project:  projectMaternity,
	InfoKeys: []string{InfoPhone, InfoAddress, InfoTreatmentOutcome, InfoDiagnosis, InfoSpecialist, InfoExecutor, InfoDepartment},
}

// matchEpisode applies the active/discharged filter shared with newborns.
func matchEpisode(item referral.Item, status string) bool {
	switch status {
	case EpisodeActive:
		return !item.Discharged()
	case EpisodeDischarged:
		return item.Discharged()
	default:
		return true
	}
}

func projectMaternity(item referral.Item, now time.Time) Asset {
	a := baseAsset(item, now)
	a.StatusColor = ColorGreen
	a.AdditionalInfo = AdditionalInfo{
		Phone:            ExtractPhone(item.AdditionalInformation),
		Address:          orDefault(item.Address, DefaultAddress),
		TreatmentOutcome: OutcomeImprovement,
		Diagnosis:        FormatDiagnosis(item.Sick),
		Specialist:       orDefault(item.DirectDoctor, DefaultSpecialist),
		Executor:         DefaultExecutor,
		Department:       FormatDepartment(item.BedProfile.Code),
	}
	if item.Discharged() {
		a.StatusColor = ColorGray
		a.AdditionalInfo.DischargeOutcome = DischargeReleased
	}
	return a
}
