package journal

import (
	"time"

	"github.com/orkendeu/bg-journal/internal/domain/referral"
)

// The status filter is accepted but does not gate membership.
var clinicJournal = &Descriptor{
	Kind:     KindClinic,
	Title:    "Поликлиника",
	Statuses: []string{StatusAll, "scheduled", "in_progress", "completed"},
	Project:  projectClinic,
	InfoKeys: []string{InfoAddress, InfoPhone, InfoSpecialist, InfoExecutor, InfoDepartment},
}

func projectClinic(item referral.Item, now time.Time) Asset {
	doctor := &Doctor{
		FullName:       orDefault(item.DirectDoctor, DefaultDoctor),
		Specialization: DefaultSpecialization,
		Department:     DefaultDepartmentName,
	}

	a := baseAsset(item, now)
	a.StatusColor = ColorYellow
	a.Doctor = doctor
	a.AdditionalInfo = AdditionalInfo{
		Address:    orDefault(item.Address, DefaultAddress),
		Phone:      ExtractPhone(item.AdditionalInformation),
		Specialist: doctor.FullName,
		Executor:   DefaultExecutor,
		Department: FormatDepartment(item.BedProfile.Code),
	}
	return a
}
