// Package loot synthesizes procedural equipment and hands loot batches out
// between the player and the party.
package loot

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/pefman/legacy-idle/internal/engine"
	"github.com/pefman/legacy-idle/internal/models"
)

// ProceduralBaseID is the BaseID of every generated item.
const ProceduralBaseID = "procedural"

// RarityWeight is one entry of a weighted rarity table.
type RarityWeight struct {
	Rarity models.Rarity
	Weight float64
}

// SlotPreference weights a stat for one slot.
type SlotPreference struct {
	Stat   models.StatKey
	Weight float64
}

var slotPreferences = map[models.Slot][]SlotPreference{
	models.SlotWeapon: {
		{models.Attack, 1.5}, {models.Agility, 1.2}, {models.Intelligence, 1.2},
		{models.Health, 0.5}, {models.Mana, 0.5}, {models.Defense, 0.4},
	},
	models.SlotArmor: {
		{models.Health, 1.5}, {models.Defense, 1.5}, {models.Mana, 1.0},
		{models.Agility, 0.6}, {models.Intelligence, 0.5}, {models.Attack, 0.4},
	},
	models.SlotAccessory: {
		{models.Intelligence, 1.0}, {models.Mana, 1.0}, {models.Agility, 1.0},
		{models.Health, 0.8}, {models.Attack, 0.8}, {models.Defense, 0.8},
	},
}

var rarityPrefixes = map[models.Rarity][]string{
	models.Common:    {"Worn", "Simple", "Plain", "Crude"},
	models.Uncommon:  {"Sturdy", "Fine", "Polished", "Keen"},
	models.Rare:      {"Superior", "Enchanted", "Gleaming", "Runed"},
	models.Epic:      {"Heroic", "Mythic", "Exalted", "Arcane"},
	models.Legendary: {"Godlike", "Divine", "Eternal", "Celestial"},
}

var raritySuffixes = map[models.Rarity][]string{
	models.Common:    {" of Toil", " of the Novice"},
	models.Uncommon:  {" of Vigor", " of Power"},
	models.Rare:      {" of the Tiger", " of Warding"},
	models.Epic:      {" of the Titan", " of Storms"},
	models.Legendary: {" of the Gods", " of Eternity"},
}

var slotNouns = map[models.Slot][]string{
	models.SlotWeapon:    {"Sword", "Axe", "Staff", "Bow", "Dagger", "Mace"},
	models.SlotArmor:     {"Plate", "Mail", "Robe", "Jerkin", "Vestments"},
	models.SlotAccessory: {"Ring", "Amulet", "Charm", "Talisman", "Pendant"},
}

// RarityWeights returns the weighted rarity table for a difficulty and floor,
// in rarity order.
func RarityWeights(difficulty float64, floor int) []RarityWeight {
	extra := math.Max(0, difficulty-1)
	common, uncommon := 50.0, 30.0
	rare := 15 + 5*extra
	epic := 4 + 2*extra
	legendary := 1 + 0.5*extra

	if floor > 0 {
		switch {
		case floor%25 == 0:
			legendary += 10
			epic += 15
		case floor%10 == 0:
			epic += 8
			rare += 12
		case floor%5 == 0:
			rare += 10
			uncommon += 15
		}
	}
	switch {
	case floor >= 100:
		legendary += 5
		epic += 10
	case floor >= 50:
		epic += 5
		rare += 10
	}

	return []RarityWeight{
		{models.Common, common},
		{models.Uncommon, uncommon},
		{models.Rare, rare},
		{models.Epic, epic},
		{models.Legendary, legendary},
	}
}

// RollRarity walks weights in order, subtracting a draw in [0, total) until
// it goes non-positive.
func RollRarity(src engine.Source, weights []RarityWeight) models.Rarity {
	total := 0.0
	for _, w := range weights {
		total += w.Weight
	}
	roll := src.Float64() * total
	for _, w := range weights {
		roll -= w.Weight
		if roll <= 0 {
			return w.Rarity
		}
	}
	return models.Common
}

// Generator builds procedural items.
type Generator struct {
	src engine.Source
}

// NewGenerator returns a Generator drawing random-mode items from src.
func NewGenerator(src engine.Source) *Generator {
	return &Generator{src: src}
}

// GenerateItem synthesizes a random item.
func (g *Generator) GenerateItem(level int, difficulty float64, floor int) models.Equipment {
	return build(g.src, "proc-"+uuid.NewString(), level, difficulty, floor)
}

// GenerateSeededItem synthesizes the item at position index of a seeded
// batch. Identical arguments always produce the identical item.
func (g *Generator) GenerateSeededItem(level int, difficulty float64, floor int, seed float64, index int) models.Equipment {
	return SeededItem(level, difficulty, floor, seed, index)
}

// SeededItem is GenerateSeededItem without a Generator.
func SeededItem(level int, difficulty float64, floor int, seed float64, index int) models.Equipment {
	base := int64(math.Floor(seed * 4294967296.0))
	id := fmt.Sprintf("proc-%08x-%d-%d", base, floor, index)
	return build(engine.FromFloat(seed, index), id, level, difficulty, floor)
}

func build(src engine.Source, id string, level int, difficulty float64, floor int) models.Equipment {
	rarity := RollRarity(src, RarityWeights(difficulty, floor))
	slot := engine.Pick(src, models.Slots)

	var affinity []models.Affinity
	if !engine.Chance(src, 0.6) {
		class := engine.Pick(src, models.Classes)
		bonus := engine.Between(src, 5, 20)
		affinity = []models.Affinity{{Class: class, Multiplier: math.Round((1+bonus/100)*1000) / 1000}}
	}

	mult := rarity.Multiplier() * math.Max(1, float64(level)/5)
	stats := rollStats(src, slot, mult)

	name := engine.Pick(src, prefixPool(rarity, floor)) + " " + engine.Pick(src, slotNouns[slot])
	if engine.Chance(src, 0.3) {
		name += engine.Pick(src, raritySuffixes[rarity])
	}

	return models.Equipment{
		ID:       id,
		BaseID:   ProceduralBaseID,
		Name:     name,
		Slot:     slot,
		Rarity:   rarity,
		Stats:    stats,
		Affinity: affinity,
		Price:    int(math.Floor(20 * math.Max(1, float64(level)/2) * rarity.Multiplier())),
	}
}

// rollStats picks 2-4 distinct stats weighted by slot preference and rolls a
// value for each. The result is in canonical stat order.
func rollStats(src engine.Source, slot models.Slot, mult float64) []models.StatValue {
	pool := append([]SlotPreference(nil), slotPreferences[slot]...)
	count := 2 + engine.Intn(src, 3)

	var out []models.StatValue
	for i := 0; i < count && len(pool) > 0; i++ {
		total := 0.0
		for _, p := range pool {
			total += p.Weight
		}
		roll := src.Float64() * total
		pick := len(pool) - 1
		for j, p := range pool {
			roll -= p.Weight
			if roll <= 0 {
				pick = j
				break
			}
		}
		chosen := pool[pick]
		pool = append(pool[:pick], pool[pick+1:]...)

		v := int(math.Floor((5 + src.Float64()*15) * mult * chosen.Weight))
		if v > 0 {
			out = append(out, models.StatValue{Stat: chosen.Stat, Value: v})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return statIndex(out[i].Stat) < statIndex(out[j].Stat) })
	return out
}

func prefixPool(rarity models.Rarity, floor int) []string {
	pool := append([]string(nil), rarityPrefixes[rarity]...)
	if floor >= 25 {
		pool = append(pool, "Delver's", "Shadowed")
	}
	if floor >= 50 {
		pool = append(pool, "Deepforged", "Abyssal")
	}
	if floor >= 100 {
		pool = append(pool, "Voidtouched", "Primordial")
	}
	return pool
}

func statIndex(k models.StatKey) int {
	for i, s := range models.StatKeys {
		if s == k {
			return i
		}
	}
	return len(models.StatKeys)
}
