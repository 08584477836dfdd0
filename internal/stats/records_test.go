package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecords_KeepsBiggest(t *testing.T) {
	r := NewRecords()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	r.Observe(Hit{CharacterID: "c1", Damage: 10})
	r.Observe(Hit{CharacterID: "c1", Damage: 25})
	r.Observe(Hit{CharacterID: "c1", Damage: 20})
	r.Observe(Hit{CharacterID: "c2", Damage: 30})
	r.Observe(Hit{CharacterID: "c2", Damage: 0})

	best, ok := r.Best("c1")
	require.True(t, ok)
	assert.Equal(t, 25, best.Damage)

	today, ok := r.Today()
	require.True(t, ok)
	assert.Equal(t, 30, today.Damage)
	assert.Equal(t, "c2", today.CharacterID)
}

func TestRecords_CritBreaksTie(t *testing.T) {
	r := NewRecords()
	r.Observe(Hit{CharacterID: "c1", Damage: 12, Source: "attack"})
	r.Observe(Hit{CharacterID: "c1", Damage: 12, Source: "crit", Critical: true})
	r.Observe(Hit{CharacterID: "c1", Damage: 12, Source: "later"})

	best, ok := r.Best("c1")
	require.True(t, ok)
	assert.Equal(t, "crit", best.Source)
}

func TestRecords_DailyRollover(t *testing.T) {
	r := NewRecords()
	day1 := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	r.Observe(Hit{CharacterID: "c1", Damage: 50, At: day1})

	r.now = func() time.Time { return day1.Add(2 * time.Hour) }
	_, ok := r.Today()
	assert.False(t, ok)

	_, ok = r.Best("c1")
	assert.True(t, ok)

	r.now = func() time.Time { return day1 }
	_, ok = r.Today()
	assert.True(t, ok)
	r.ResetDaily()
	_, ok = r.Today()
	assert.False(t, ok)
}
