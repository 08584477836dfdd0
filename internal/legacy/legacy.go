// Package legacy retires a character and builds their descendant.
package legacy

import (
	"math"

	"github.com/google/uuid"

	"github.com/pefman/legacy-idle/internal/models"
)

// MaxHeirlooms is how many items an heir can inherit.
const MaxHeirlooms = 2

// Bonus is the legacy bonus an heir of c inherits: c's own legacy plus 5%
// of each max stat, plus floor(level/10) on every stat except health, which
// gets 5 per ten levels.
func Bonus(c models.Character) models.GameStats {
	out := c.LegacyBonus
	tiers := c.Level / 10
	for _, k := range models.StatKeys {
		v := int(math.Floor(float64(c.Stats.Get(k)) * 0.05))
		if k == models.Health {
			v += 5 * tiers
		} else {
			v += tiers
		}
		out.Add(k, v)
	}
	return out.Clamped()
}

// Retire replaces the character in s with a level-1 heir of the same class.
// Up to MaxHeirlooms of the listed items, equipped or carried, pass to the
// heir's inventory flagged as heirlooms; unknown ids are skipped. All other
// items and the gold are lost. Companions stay with the heir at full health.
// Abilities and stats are left for the caller to fill in.
func Retire(s models.GameState, heirloomIDs []string, name string) models.GameState {
	old := s.Character
	carried := append([]models.Equipment(nil), s.Inventory...)
	carried = append(carried, old.Equipment.Items()...)

	var heirlooms []models.Equipment
	for _, id := range heirloomIDs {
		if len(heirlooms) == MaxHeirlooms {
			break
		}
		for i, it := range carried {
			if it.ID != id {
				continue
			}
			h := it.Clone()
			h.Heirloom = true
			heirlooms = append(heirlooms, h)
			carried = append(carried[:i], carried[i+1:]...)
			break
		}
	}

	if name == "" {
		name = old.Name
	}
	heir := models.Character{
		Hero: models.Hero{
			ID:    uuid.NewString(),
			Name:  name,
			Class: old.Class,
			Level: 1,
		},
		LegacyBonus: Bonus(old),
		Generation:  old.Generation + 1,
	}

	out := models.GameState{Character: heir, Inventory: heirlooms}
	for _, a := range s.Party {
		c := a.Clone()
		c.ResetTransient()
		out.Party = append(out.Party, c)
	}
	return out
}
