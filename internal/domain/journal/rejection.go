package journal

import (
	"strings"
	"time"

	"github.com/orkendeu/bg-journal/internal/domain/referral"
)

// The status filter is accepted but does not gate membership.
var rejectionJournal = &Descriptor{
	Kind:     KindRejection,
	Title:    "Отказы от госпитализации",
	Statuses: []string{StatusAll, "rejected", "pending"},
	Member: func(item referral.Item, _ string) bool {
		return bool(item.HasRefusal)
	},
	Project:  projectRejection,
	InfoKeys: []string{InfoDiagnosis, InfoExecutor, InfoRejectionReason, InfoDepartment},
}

func projectRejection(item referral.Item, now time.Time) Asset {
	a := baseAsset(item, now)
	a.StatusColor = ColorRed
	a.AdditionalInfo = AdditionalInfo{
		Diagnosis:       FormatDiagnosis(item.Sick),
		Executor:        DefaultExecutor,
		RejectionReason: orDefault(strings.TrimSpace(item.RefuseJustification), DefaultRefusalReason),
		Department:      FormatDepartment(item.BedProfile.Code),
	}
	return a
}
