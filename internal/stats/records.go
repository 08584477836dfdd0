package stats

import (
	"sync"
	"time"
)

// Hit is one damaging action worth remembering.
type Hit struct {
	CharacterID string    `json:"character_id"`
	Actor       string    `json:"actor"`
	Target      string    `json:"target"`
	Source      string    `json:"source"`
	Damage      int       `json:"damage"`
	Critical    bool      `json:"critical,omitempty"`
	At          time.Time `json:"at"`
}

// Records keeps the biggest hit per character and the biggest hit of each UTC
// day. It is safe for concurrent use.
type Records struct {
	mu       sync.Mutex
	best     map[string]Hit
	dailyMax map[string]Hit
	now      func() time.Time
}

// NewRecords returns empty records.
func NewRecords() *Records {
	return &Records{
		best:     map[string]Hit{},
		dailyMax: map[string]Hit{},
		now:      time.Now,
	}
}

func dayKey(t time.Time) string { return t.UTC().Format("2006-01-02") }

// Observe records h if it beats the character's best or today's max.
// Ties go to the critical hit, otherwise the earlier record stays.
func (r *Records) Observe(h Hit) {
	if h.Damage <= 0 {
		return
	}
	if h.At.IsZero() {
		h.At = r.now()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.best[h.CharacterID]; !ok || beats(h, cur) {
		r.best[h.CharacterID] = h
	}
	key := dayKey(h.At)
	if cur, ok := r.dailyMax[key]; !ok || beats(h, cur) {
		r.dailyMax[key] = h
	}
}

func beats(h, cur Hit) bool {
	return h.Damage > cur.Damage || (h.Damage == cur.Damage && h.Critical && !cur.Critical)
}

// Best returns the biggest hit recorded for a character.
func (r *Records) Best(characterID string) (Hit, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.best[characterID]
	return h, ok
}

// Today returns today's biggest hit.
func (r *Records) Today() (Hit, bool) {
	key := dayKey(r.now())
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.dailyMax[key]
	return h, ok
}

// ResetDaily clears the per-day maxima.
func (r *Records) ResetDaily() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.dailyMax {
		delete(r.dailyMax, k)
	}
}
