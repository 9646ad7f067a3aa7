package journal

import (
	"time"

	"github.com/orkendeu/bg-journal/internal/domain/referral"
)

// The status filter is accepted but does not gate membership.
var ambulanceJournal = &Descriptor{
	Kind:     KindAmbulance,
	Title:    "Скорая помощь",
	Statuses: []string{StatusAll, "new", "in_progress", "completed"},
	Project:  projectAmbulance,
	InfoKeys: []string{InfoPhone, InfoExecutor, InfoDepartment},
}

func projectAmbulance(item referral.Item, now time.Time) Asset {
	a := baseAsset(item, now)
	a.StatusColor = ColorGreen
	a.AdditionalInfo = AdditionalInfo{
		Phone:      ExtractPhone(item.AdditionalInformation),
		Executor:   DefaultExecutor,
		Department: FormatDepartment(item.BedProfile.Code),
	}
	return a
}
