// Package scaling fits static monster templates to a target level,
// difficulty and dungeon floor.
package scaling

import (
	"fmt"
	"math"
	"strings"

	"github.com/pefman/legacy-idle/internal/models"
)

// MonsterSource looks up monster templates. content.Catalog satisfies it.
type MonsterSource interface {
	Monster(id string) (models.MonsterTemplate, error)
}

// Key identifies one scaled instance. Floor 0 means no floor provenance.
type Key struct {
	TemplateID string
	Level      int
	Difficulty float64
	Floor      int
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%d:%g:%d", k.TemplateID, k.Level, k.Difficulty, k.Floor)
}

// Scaler scales templates and memoizes the results in an injected Cache.
type Scaler struct {
	monsters MonsterSource
	cache    Cache
}

// New returns a Scaler. A nil cache gets a fresh MemoryCache.
func New(monsters MonsterSource, cache Cache) *Scaler {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Scaler{monsters: monsters, cache: cache}
}

// Factor is max(0.5, (level/10)^1.2 * difficulty^0.8).
func Factor(level int, difficulty float64) float64 {
	f := math.Pow(float64(level)/10, 1.2) * math.Pow(difficulty, 0.8)
	if f < 0.5 || math.IsNaN(f) {
		return 0.5
	}
	return f
}

// Scale returns the template fitted to level, difficulty and floor. An
// unknown template id is a content error.
func (s *Scaler) Scale(templateID string, level int, difficulty float64, floor int) (models.ScaledMonster, error) {
	key := Key{TemplateID: templateID, Level: level, Difficulty: difficulty, Floor: floor}
	if m, ok := s.cache.Get(key); ok {
		return m, nil
	}
	tmpl, err := s.monsters.Monster(templateID)
	if err != nil {
		return models.ScaledMonster{}, fmt.Errorf("scale monster: %w", err)
	}
	m := Build(tmpl, level, difficulty, floor)
	s.cache.Put(key, m)
	return m, nil
}

// Clear drops every cached instance.
func (s *Scaler) Clear() { s.cache.Clear() }

// Build scales tmpl without touching any cache.
func Build(tmpl models.MonsterTemplate, level int, difficulty float64, floor int) models.ScaledMonster {
	factor := Factor(level, difficulty)
	scaled := tmpl
	var stats models.GameStats
	for _, k := range models.StatKeys {
		stats.Add(k, int(math.Round(float64(tmpl.Stats.Get(k))*factor)))
	}
	levelBonus := 1 + float64(level)*0.05
	scaled.XPReward = int(math.Round(float64(tmpl.XPReward) * math.Pow(factor, 0.6) * levelBonus))
	scaled.GoldReward = int(math.Round(float64(tmpl.GoldReward) * factor * levelBonus))
	scaled.Name = displayName(tmpl.Name, difficulty, floor)
	scaled.Stats = stats.Clamped()

	return models.ScaledMonster{
		MonsterTemplate: scaled,
		TemplateID:      tmpl.ID,
		ScalingFactor:   factor,
		Level:           level,
		Difficulty:      difficulty,
		Floor:           floor,
	}
}

func difficultyPrefix(d float64) string {
	switch {
	case d >= 3:
		return "Apex"
	case d >= 2.5:
		return "Elite"
	case d >= 2:
		return "Veteran"
	case d >= 1.5:
		return "Hardened"
	}
	return ""
}

func floorPrefix(floor int) string {
	switch {
	case floor >= 100:
		return "Abyssal"
	case floor >= 50:
		return "Deep"
	}
	return ""
}

func displayName(name string, difficulty float64, floor int) string {
	parts := make([]string, 0, 3)
	if p := floorPrefix(floor); p != "" {
		parts = append(parts, p)
	}
	if p := difficultyPrefix(difficulty); p != "" {
		parts = append(parts, p)
	}
	parts = append(parts, name)
	return strings.Join(parts, " ")
}
