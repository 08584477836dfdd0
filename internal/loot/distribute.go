package loot

import (
	"math"

	"github.com/pefman/legacy-idle/internal/models"
)

// StatWeight is how much a class values one point of a stat.
type StatWeight struct {
	Stat   models.StatKey
	Weight float64
}

// ClassWeights maps a class to its stat preferences. Classes missing from
// the table value every stat at 1.
type ClassWeights map[models.Class][]StatWeight

// DefaultClassWeights returns the built-in preference table.
func DefaultClassWeights() ClassWeights {
	return ClassWeights{
		models.Warrior: {
			{models.Attack, 1.5}, {models.Defense, 1.3}, {models.Health, 1.2},
			{models.Agility, 0.6}, {models.Mana, 0.2}, {models.Intelligence, 0.1},
		},
		models.Mage: {
			{models.Intelligence, 1.6}, {models.Mana, 1.3}, {models.Health, 0.6},
			{models.Defense, 0.4}, {models.Agility, 0.4}, {models.Attack, 0.1},
		},
		models.Rogue: {
			{models.Agility, 1.5}, {models.Attack, 1.4}, {models.Health, 0.8},
			{models.Defense, 0.5}, {models.Mana, 0.3}, {models.Intelligence, 0.3},
		},
		models.Cleric: {
			{models.Intelligence, 1.4}, {models.Mana, 1.3}, {models.Health, 1.0},
			{models.Defense, 0.8}, {models.Attack, 0.3}, {models.Agility, 0.3},
		},
		models.Ranger: {
			{models.Agility, 1.4}, {models.Attack, 1.3}, {models.Health, 0.8},
			{models.Defense, 0.5}, {models.Intelligence, 0.4}, {models.Mana, 0.3},
		},
	}
}

func (w ClassWeights) weight(c models.Class, k models.StatKey) float64 {
	table, ok := w[c]
	if !ok {
		return 1
	}
	for _, sw := range table {
		if sw.Stat == k {
			return sw.Weight
		}
	}
	return 0
}

// Value is the class-weighted worth of item to class c.
func (w ClassWeights) Value(item *models.Equipment, c models.Class) float64 {
	if item == nil {
		return 0
	}
	aff := item.AffinityFor(c)
	total := 0.0
	for _, s := range item.Stats {
		total += float64(s.Value) * aff * w.weight(c, s.Stat)
	}
	return total
}

// Distribution records an item handed to a party member.
type Distribution struct {
	Item        models.Equipment  `json:"item"`
	RecipientID string            `json:"recipient_id"`
	Displaced   *models.Equipment `json:"displaced,omitempty"`
}

// Result is the outcome of Distribute. Party holds updated copies of the
// input adventurers; their stats still need recalculating.
type Result struct {
	PlayerItems   []models.Equipment  `json:"player_items"`
	Distributions []Distribution      `json:"distributions"`
	Party         []models.Adventurer `json:"party"`
}

// Distribute allocates items one by one in input order. A party member gets
// an item only when their improvement is strictly positive, the best in the
// party, and strictly greater than the player's. Accessories always stay
// with the player. Earlier decisions are never revisited. Inputs are not
// modified.
func Distribute(items []models.Equipment, player models.Character, party []models.Adventurer, weights ClassWeights) Result {
	if weights == nil {
		weights = DefaultClassWeights()
	}
	res := Result{Party: make([]models.Adventurer, len(party))}
	for i, a := range party {
		res.Party[i] = a
		res.Party[i].Hero = a.Hero.Clone()
	}

	for _, it := range items {
		item := it.Clone()

		best, bestGain := -1, 0.0
		if item.Slot != models.SlotAccessory {
			for i := range res.Party {
				gain := Improvement(weights, &item, res.Party[i].Hero)
				if gain > bestGain {
					best, bestGain = i, gain
				}
			}
		}

		if best < 0 || Improvement(weights, &item, player.Hero) >= bestGain {
			res.PlayerItems = append(res.PlayerItems, item)
			continue
		}

		h := &res.Party[best].Hero
		displaced := h.Equipment.InSlot(item.Slot)
		equipped := item.Clone()
		if item.Slot == models.SlotWeapon {
			h.Equipment.Weapon = &equipped
		} else {
			h.Equipment.Armor = &equipped
		}
		d := Distribution{Item: item, RecipientID: h.ID}
		if displaced != nil {
			old := displaced.Clone()
			d.Displaced = &old
			res.PlayerItems = append(res.PlayerItems, old)
		}
		res.Distributions = append(res.Distributions, d)
	}
	return res
}

// Improvement is how much h gains by wearing item. Weapons and armor compare
// against the equipped piece; accessories compare against the weaker of the
// two equipped accessories, and an empty accessory position is an unbounded
// gain.
func Improvement(w ClassWeights, item *models.Equipment, h models.Hero) float64 {
	v := w.Value(item, h.Class)
	if item.Slot != models.SlotAccessory {
		return v - w.Value(h.Equipment.InSlot(item.Slot), h.Class)
	}
	a, b := h.Equipment.Accessories[0], h.Equipment.Accessories[1]
	if a == nil || b == nil {
		return math.Inf(1)
	}
	return v - math.Min(w.Value(a, h.Class), w.Value(b, h.Class))
}
