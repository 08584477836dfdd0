// Package progression handles experience and level-ups.
package progression

import (
	"math"

	"github.com/pefman/legacy-idle/internal/models"
)

// AbilityBook lists a class's abilities by required level. *content.Static
// satisfies it.
type AbilityBook interface {
	ClassAbilities(c models.Class) []models.Ability
}

// XPForNextLevel is floor(100 * level^1.5).
func XPForNextLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return int(math.Floor(100 * math.Pow(float64(level), 1.5)))
}

// AwardExperience adds xp to h, applying as many level-ups as it pays for,
// and learns every class ability the new level unlocks. Newly learned
// passives start active. It returns the updated hero and the levels gained.
// Stats are not recalculated here.
func AwardExperience(h models.Hero, xp int, book AbilityBook) (models.Hero, int) {
	out := h.Clone()
	if xp > 0 {
		out.Experience += xp
	}
	if out.Level < 1 {
		out.Level = 1
	}
	gained := 0
	for out.Experience >= XPForNextLevel(out.Level) {
		out.Experience -= XPForNextLevel(out.Level)
		out.Level++
		gained++
	}
	LearnAbilities(&out, book)
	return out, gained
}

// LearnAbilities adds every unlocked, unknown class ability to h.
func LearnAbilities(h *models.Hero, book AbilityBook) {
	for _, a := range book.ClassAbilities(h.Class) {
		if a.RequiredLevel > h.Level || h.Knows(a.ID) {
			continue
		}
		h.Abilities = append(h.Abilities, a.ID)
		if a.Kind == models.AbilityPassive {
			h.ActivePassives = append(h.ActivePassives, a.ID)
		}
	}
}
