package journal

import "time"

const (
	newbornMaxDays  = 28
	infantMaxMonths = 12
	childMaxYears   = 18
	elderlyMinYears = 65
)

// CalculateAge returns the patient's age in whole years at now. Empty,
// malformed or future birth dates yield 0.
func CalculateAge(birthDate string, now time.Time) int {
	b, ok := ParseDate(birthDate)
	if !ok {
		return 0
	}
	years := now.Year() - b.Year()
	if now.Month() < b.Month() || (now.Month() == b.Month() && now.Day() < b.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// AgeGroupOf classifies the patient by age at now. It returns "" when the
// birth date is unknown or lies in the future.
func AgeGroupOf(birthDate string, now time.Time) AgeGroup {
	b, ok := ParseDate(birthDate)
	if !ok {
		return ""
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if b.After(today) {
		return ""
	}

	if days := int(today.Sub(b).Hours() / 24); days <= newbornMaxDays {
		return AgeNewborn
	}
	if monthsBetween(b, today) < infantMaxMonths {
		return AgeInfant
	}
	switch years := CalculateAge(birthDate, now); {
	case years < childMaxYears:
		return AgeChild
	case years < elderlyMinYears:
		return AgeAdult
	default:
		return AgeElderly
	}
}

// IsNewborn reports whether the birth date is at most 28 days before now.
func IsNewborn(birthDate string, now time.Time) bool {
	return AgeGroupOf(birthDate, now) == AgeNewborn
}

func monthsBetween(from, to time.Time) int {
	months := (to.Year()-from.Year())*12 + int(to.Month()-from.Month())
	if to.Day() < from.Day() {
		months--
	}
	return months
}
