package loot

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pefman/legacy-idle/internal/models"
)

func gear(id string, slot models.Slot, stats ...models.StatValue) *models.Equipment {
	return &models.Equipment{ID: id, Name: id, Slot: slot, Rarity: models.Common, Stats: stats}
}

func adventurer(id string, class models.Class, weapon *models.Equipment) models.Adventurer {
	a := models.Adventurer{Hero: models.Hero{ID: id, Name: id, Class: class, Level: 5}}
	a.Equipment.Weapon = weapon
	return a
}

func player(weapon *models.Equipment) models.Character {
	c := models.Character{Hero: models.Hero{ID: "hero", Name: "Hero", Class: models.Warrior, Level: 5}}
	c.Equipment.Weapon = weapon
	return c
}

func TestDistribute_BetterForMageGoesToMage(t *testing.T) {
	oldStaff := gear("old_staff", models.SlotWeapon, models.StatValue{Stat: models.Intelligence, Value: 5})
	party := []models.Adventurer{
		adventurer("rogue", models.Rogue, nil),
		adventurer("mage", models.Mage, oldStaff),
	}
	rod := *gear("rod", models.SlotWeapon,
		models.StatValue{Stat: models.Intelligence, Value: 40},
		models.StatValue{Stat: models.Mana, Value: 20},
	)

	res := Distribute([]models.Equipment{rod}, player(nil), party, nil)

	require.Len(t, res.Distributions, 1)
	d := res.Distributions[0]
	assert.Equal(t, "mage", d.RecipientID)
	assert.Equal(t, "rod", d.Item.ID)
	require.NotNil(t, d.Displaced)
	assert.Equal(t, "old_staff", d.Displaced.ID)

	require.Len(t, res.PlayerItems, 1)
	assert.Equal(t, "old_staff", res.PlayerItems[0].ID)
	assert.Equal(t, "rod", res.Party[1].Equipment.Weapon.ID)

	// inputs untouched
	assert.Equal(t, "old_staff", party[1].Equipment.Weapon.ID)
}

func TestDistribute_PlayerKeepsWhenAtLeastAsGood(t *testing.T) {
	party := []models.Adventurer{adventurer("rogue", models.Rogue, nil)}
	// warrior values attack at 1.5, rogue at 1.4
	blade := *gear("blade", models.SlotWeapon, models.StatValue{Stat: models.Attack, Value: 30})

	res := Distribute([]models.Equipment{blade}, player(nil), party, nil)

	assert.Empty(t, res.Distributions)
	require.Len(t, res.PlayerItems, 1)
	assert.Equal(t, "blade", res.PlayerItems[0].ID)
	assert.Nil(t, res.Party[0].Equipment.Weapon)
}

func TestDistribute_NoPositiveImprovement(t *testing.T) {
	strong := gear("strong", models.SlotWeapon, models.StatValue{Stat: models.Intelligence, Value: 90})
	party := []models.Adventurer{adventurer("mage", models.Mage, strong)}
	weak := *gear("weak", models.SlotWeapon, models.StatValue{Stat: models.Intelligence, Value: 10})
	// player gain is tiny but positive; the mage would lose value
	res := Distribute([]models.Equipment{weak}, player(gear("stick", models.SlotWeapon)), party, nil)

	assert.Empty(t, res.Distributions)
	assert.Len(t, res.PlayerItems, 1)
}

func TestDistribute_AccessoriesStayWithPlayer(t *testing.T) {
	party := []models.Adventurer{adventurer("mage", models.Mage, nil)}
	ring := *gear("ring", models.SlotAccessory, models.StatValue{Stat: models.Intelligence, Value: 100})

	res := Distribute([]models.Equipment{ring}, player(nil), party, nil)

	assert.Empty(t, res.Distributions)
	require.Len(t, res.PlayerItems, 1)
	assert.Equal(t, "ring", res.PlayerItems[0].ID)
}

func TestDistribute_GreedyInOrder(t *testing.T) {
	party := []models.Adventurer{adventurer("mage", models.Mage, nil)}
	first := *gear("first", models.SlotWeapon, models.StatValue{Stat: models.Intelligence, Value: 20})
	second := *gear("second", models.SlotWeapon, models.StatValue{Stat: models.Intelligence, Value: 30})

	res := Distribute([]models.Equipment{first, second}, player(nil), party, nil)

	// both improve on what the mage holds at their turn
	require.Len(t, res.Distributions, 2)
	assert.Equal(t, "first", res.Distributions[0].Item.ID)
	assert.Nil(t, res.Distributions[0].Displaced)
	require.NotNil(t, res.Distributions[1].Displaced)
	assert.Equal(t, "first", res.Distributions[1].Displaced.ID)
	assert.Equal(t, "second", res.Party[0].Equipment.Weapon.ID)
	require.Len(t, res.PlayerItems, 1)
	assert.Equal(t, "first", res.PlayerItems[0].ID)

	// reversed order: the weaker one arrives second and no longer helps
	res = Distribute([]models.Equipment{second, first}, player(nil), party, nil)
	require.Len(t, res.Distributions, 1)
	assert.Equal(t, "second", res.Distributions[0].Item.ID)
	require.Len(t, res.PlayerItems, 1)
	assert.Equal(t, "first", res.PlayerItems[0].ID)
}

func TestImprovement_Accessories(t *testing.T) {
	w := DefaultClassWeights()
	h := models.Hero{Class: models.Warrior}
	ring := gear("ring", models.SlotAccessory, models.StatValue{Stat: models.Attack, Value: 10})

	assert.True(t, math.IsInf(Improvement(w, ring, h), 1))

	h.Equipment.Accessories[0] = gear("a", models.SlotAccessory, models.StatValue{Stat: models.Attack, Value: 4})
	h.Equipment.Accessories[1] = gear("b", models.SlotAccessory, models.StatValue{Stat: models.Attack, Value: 8})
	assert.InDelta(t, 9.0, Improvement(w, ring, h), 1e-9)
}

func TestValue_Affinity(t *testing.T) {
	w := DefaultClassWeights()
	it := gear("x", models.SlotWeapon, models.StatValue{Stat: models.Intelligence, Value: 10})
	it.Affinity = []models.Affinity{{Class: models.Mage, Multiplier: 1.5}}

	assert.InDelta(t, 24.0, w.Value(it, models.Mage), 1e-9)
	assert.InDelta(t, 1.0, w.Value(it, models.Warrior), 1e-9)
	assert.InDelta(t, 15.0, ClassWeights{}.Value(it, models.Mage), 1e-9)
	assert.Zero(t, w.Value(nil, models.Mage))
}
