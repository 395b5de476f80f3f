package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daisamonteiro/banque-backoffice/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestEndOfBlock(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		duree int
		unite domain.DureeUnite
		want  time.Time
	}{
		{"thirty days", date(2026, time.March, 1), 30, domain.UniteJours, date(2026, time.March, 31)},
		{"days across month end", date(2026, time.January, 30), 5, domain.UniteJours, date(2026, time.February, 4)},
		{"two weeks", date(2026, time.March, 2), 2, domain.UniteSemaines, date(2026, time.March, 16)},
		{"one month plain", date(2026, time.March, 15), 1, domain.UniteMois, date(2026, time.April, 15)},
		{"jan 31 plus one month clamps to feb 28", date(2026, time.January, 31), 1, domain.UniteMois, date(2026, time.February, 28)},
		{"jan 31 plus one month leap year clamps to feb 29", date(2028, time.January, 31), 1, domain.UniteMois, date(2028, time.February, 29)},
		{"mar 31 plus one month clamps to apr 30", date(2026, time.March, 31), 1, domain.UniteMois, date(2026, time.April, 30)},
		{"jan 31 plus three months", date(2026, time.January, 31), 3, domain.UniteMois, date(2026, time.April, 30)},
		{"december rolls into next year", date(2026, time.December, 15), 2, domain.UniteMois, date(2027, time.February, 15)},
		{"one year", date(2026, time.March, 15), 1, domain.UniteAnnees, date(2027, time.March, 15)},
		{"feb 29 plus one year clamps to feb 28", date(2028, time.February, 29), 1, domain.UniteAnnees, date(2029, time.February, 28)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := EndOfBlock(tc.start, tc.duree, tc.unite)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEndOfBlock_Errors(t *testing.T) {
	start := date(2026, time.March, 15)

	_, err := EndOfBlock(start, 0, domain.UniteJours)
	assert.ErrorIs(t, err, domain.ErrInvalidDuree)

	_, err = EndOfBlock(start, -3, domain.UniteMois)
	assert.ErrorIs(t, err, domain.ErrInvalidDuree)

	_, err = EndOfBlock(start, 1, domain.DureeUnite("heures"))
	assert.ErrorIs(t, err, domain.ErrInvalidDureeUnite)
}

func TestEndOfBlock_PreservesTimeOfDay(t *testing.T) {
	start := time.Date(2026, time.January, 31, 9, 45, 30, 0, time.UTC)

	got, err := EndOfBlock(start, 1, domain.UniteMois)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.February, 28, 9, 45, 30, 0, time.UTC), got)
}
