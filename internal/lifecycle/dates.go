package lifecycle

import (
	"time"

	"github.com/daisamonteiro/banque-backoffice/internal/domain"
)

// EndOfBlock advances start by the given count of the given unit.
// Day/week arithmetic is plain day addition. Month/year arithmetic is
// calendar-aware with end-of-month clamping: Jan 31 + 1 mois lands on
// Feb 28 (29 in leap years), never Mar 3.
func EndOfBlock(start time.Time, duree int, unite domain.DureeUnite) (time.Time, error) {
	if duree < 1 {
		return time.Time{}, domain.ErrInvalidDuree
	}
	switch unite {
	case domain.UniteJours:
		return start.AddDate(0, 0, duree), nil
	case domain.UniteSemaines:
		return start.AddDate(0, 0, 7*duree), nil
	case domain.UniteMois:
		return addMonthsClamped(start, duree), nil
	case domain.UniteAnnees:
		return addMonthsClamped(start, 12*duree), nil
	}
	return time.Time{}, domain.ErrInvalidDureeUnite
}

// addMonthsClamped differs from time.AddDate, which normalizes overflowing
// days into the next month.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()

	first := time.Date(year, month+time.Month(months), 1, hour, minute, sec, t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month(), t.Location()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, hour, minute, sec, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
