package journal

import (
	"time"

	"github.com/orkendeu/bg-journal/internal/domain/referral"
)

var newbornJournal = &Descriptor{
	Kind:     KindNewborn,
	Title:    "Новорожденные",
	Statuses: []string{StatusAll, EpisodeActive, EpisodeDischarged},
	Identity: MatchPatientExtended,
	Member:   matchEpisode,
	Project:  projectNewborn,
	InfoKeys: []string{InfoExecutor, InfoDiagnosis, InfoMother, InfoPhone, InfoDepartment},
}

func projectNewborn(item referral.Item, now time.Time) Asset {
	mother := ExtractMother(item.AdditionalInformation)

	a := baseAsset(item, now)
	a.StatusColor = ColorGreen
	a.AdditionalInfo = AdditionalInfo{
		Executor:   DefaultExecutor,
		Diagnosis:  FormatDiagnosis(item.Sick),
		Mother:     &mother,
		Phone:      ExtractPhone(item.AdditionalInformation),
		Department: FormatDepartment(item.BedProfile.Code),
	}
	return a
}
