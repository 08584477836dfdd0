package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pefman/legacy-idle/internal/engine"
	"github.com/pefman/legacy-idle/internal/loot"
	"github.com/pefman/legacy-idle/internal/models"
)

func item(id string, slot models.Slot, rarity models.Rarity, stats ...models.StatValue) models.Equipment {
	return models.Equipment{ID: id, BaseID: id, Name: id, Slot: slot, Rarity: rarity, Stats: stats}
}

func state(gold int, inv ...models.Equipment) models.GameState {
	return models.GameState{
		Character: models.Character{Hero: models.Hero{ID: "hero", Class: models.Warrior, Level: 3}},
		Inventory: inv,
		Gold:      gold,
	}
}

func TestEquip_ReplacesAndReturnsDisplaced(t *testing.T) {
	s := state(0,
		item("sword", models.SlotWeapon, models.Common, models.StatValue{Stat: models.Attack, Value: 5}),
		item("axe", models.SlotWeapon, models.Common, models.StatValue{Stat: models.Attack, Value: 8}),
	)

	s1, out := Equip(s, "sword", AutoSlot)
	require.Equal(t, OK, out)
	assert.Equal(t, "sword", s1.Character.Equipment.Weapon.ID)
	assert.Len(t, s1.Inventory, 1)

	s2, out := Equip(s1, "axe", AutoSlot)
	require.Equal(t, OK, out)
	assert.Equal(t, "axe", s2.Character.Equipment.Weapon.ID)
	require.Len(t, s2.Inventory, 1)
	assert.Equal(t, "sword", s2.Inventory[0].ID)

	// earlier states untouched
	assert.Nil(t, s.Character.Equipment.Weapon)
	assert.Len(t, s.Inventory, 2)
	assert.Equal(t, "sword", s1.Character.Equipment.Weapon.ID)

	_, out = Equip(s2, "ghost", AutoSlot)
	assert.Equal(t, NotFound, out)
}

func TestEquip_Accessories(t *testing.T) {
	s := state(0,
		item("r1", models.SlotAccessory, models.Common),
		item("r2", models.SlotAccessory, models.Common),
		item("r3", models.SlotAccessory, models.Common),
		item("r4", models.SlotAccessory, models.Common),
	)
	var out Outcome
	s, out = Equip(s, "r1", AutoSlot)
	require.Equal(t, OK, out)
	s, out = Equip(s, "r2", AutoSlot)
	require.Equal(t, OK, out)
	assert.Equal(t, "r1", s.Character.Equipment.Accessories[0].ID)
	assert.Equal(t, "r2", s.Character.Equipment.Accessories[1].ID)

	// both full: auto bumps the first
	s, out = Equip(s, "r3", AutoSlot)
	require.Equal(t, OK, out)
	assert.Equal(t, "r3", s.Character.Equipment.Accessories[0].ID)
	assert.Equal(t, "r2", s.Character.Equipment.Accessories[1].ID)

	s, out = Equip(s, "r4", 1)
	require.Equal(t, OK, out)
	assert.Equal(t, "r4", s.Character.Equipment.Accessories[1].ID)

	ids := []string{}
	for _, it := range s.Inventory {
		ids = append(ids, it.ID)
	}
	assert.ElementsMatch(t, []string{"r1", "r2"}, ids)

	_, out = Equip(s, "r1", 2)
	assert.Equal(t, SlotMismatch, out)
}

func TestUnequip(t *testing.T) {
	s, out := Equip(state(0, item("plate", models.SlotArmor, models.Common)), "plate", AutoSlot)
	require.Equal(t, OK, out)

	s2, out := Unequip(s, models.SlotArmor, 0)
	require.Equal(t, OK, out)
	assert.Nil(t, s2.Character.Equipment.Armor)
	assert.Len(t, s2.Inventory, 1)

	_, out = Unequip(s2, models.SlotArmor, 0)
	assert.Equal(t, NotFound, out)
	_, out = Unequip(s2, models.SlotAccessory, 3)
	assert.Equal(t, SlotMismatch, out)
}

func TestUpgrade(t *testing.T) {
	sword := item("sword", models.SlotWeapon, models.Rare,
		models.StatValue{Stat: models.Attack, Value: 24},
		models.StatValue{Stat: models.Agility, Value: 6},
	)
	sword.Name = "Keen Sword"
	sword.Price = 100
	s := state(1000, sword)

	assert.Equal(t, 110, UpgradeCost(sword))

	s1, out := Upgrade(s, "sword")
	require.Equal(t, OK, out)
	up := s1.Inventory[0]
	assert.Equal(t, 890, s1.Gold)
	assert.Equal(t, 1, up.UpgradeLevel)
	assert.Equal(t, "Keen Sword +1", up.Name)
	assert.Equal(t, 26, up.Stats[0].Value)
	assert.Equal(t, 6, up.Stats[1].Value)
	assert.Equal(t, 110, up.Price)
	assert.Greater(t, up.StatTotal(), sword.StatTotal())
	assert.Equal(t, 24, s.Inventory[0].Stats[0].Value)

	s2, out := Upgrade(s1, "sword")
	require.Equal(t, OK, out)
	assert.Equal(t, "Keen Sword +2", s2.Inventory[0].Name)
	assert.Equal(t, 890-220, s2.Gold)

	poor := state(10, sword)
	same, out := Upgrade(poor, "sword")
	assert.Equal(t, InsufficientGold, out)
	assert.Equal(t, poor, same)
}

func TestUpgrade_Equipped(t *testing.T) {
	ring := item("ring", models.SlotAccessory, models.Common, models.StatValue{Stat: models.Mana, Value: 3})
	s, out := Equip(state(500, ring), "ring", AutoSlot)
	require.Equal(t, OK, out)

	s, out = Upgrade(s, "ring")
	require.Equal(t, OK, out)
	assert.Equal(t, 4, s.Character.Equipment.Accessories[0].Stats[0].Value)
	assert.Equal(t, 450, s.Gold)
}

func TestUpgrade_HeirloomRejected(t *testing.T) {
	relic := item("relic", models.SlotWeapon, models.Epic, models.StatValue{Stat: models.Attack, Value: 30})
	relic.Heirloom = true
	s := state(5000, relic)

	after, out := Upgrade(s, "relic")
	assert.Equal(t, Heirloom, out)
	assert.Equal(t, s, after)
	assert.Equal(t, 5000, after.Gold)
	assert.Zero(t, after.Inventory[0].UpgradeLevel)

	equipped, out := Equip(s, "relic", AutoSlot)
	require.Equal(t, OK, out)
	after, out = Upgrade(equipped, "relic")
	assert.Equal(t, Heirloom, out)
	assert.Equal(t, 5000, after.Gold)
}

func TestSell(t *testing.T) {
	junk := item("junk", models.SlotArmor, models.Uncommon)
	junk.Price = 40
	relic := item("relic", models.SlotArmor, models.Common)
	relic.Heirloom = true
	s := state(0, junk, relic)

	assert.Equal(t, 20, SellValue(junk))
	cheap := item("cheap", models.SlotArmor, models.Uncommon)
	cheap.UpgradeLevel = 2
	assert.Equal(t, 22, SellValue(cheap))

	s1, out := Sell(s, "junk")
	require.Equal(t, OK, out)
	assert.Equal(t, 20, s1.Gold)
	require.Len(t, s1.Inventory, 1)

	s2, out := Sell(s1, "relic")
	assert.Equal(t, Heirloom, out)
	assert.Equal(t, s1, s2)

	_, out = Sell(s1, "junk")
	assert.Equal(t, NotFound, out)
}

func TestBuyAndShop(t *testing.T) {
	stock := ShopStock(loot.NewGenerator(engine.NewRandSource(3)), 10, 4)
	require.Len(t, stock, 4)
	for _, it := range stock {
		assert.Positive(t, it.Price)
	}

	it := stock[0]
	s, out := Buy(state(it.Price), it)
	require.Equal(t, OK, out)
	assert.Zero(t, s.Gold)
	assert.Len(t, s.Inventory, 1)

	_, out = Buy(state(it.Price-1), it)
	assert.Equal(t, InsufficientGold, out)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "heirloom", Heirloom.String())
	assert.Equal(t, "outcome(9)", Outcome(9).String())
}
