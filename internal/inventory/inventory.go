// Package inventory implements the player's item actions: equip, unequip,
// upgrade, sell and buy. Every action takes a GameState and returns a new
// one; the input is never modified. Invalid actions are not errors: they
// leave the state as it was and report why through an Outcome.
package inventory

import (
	"fmt"
	"math"
	"strings"

	"github.com/pefman/legacy-idle/internal/loot"
	"github.com/pefman/legacy-idle/internal/models"
)

// Outcome reports how an action went.
type Outcome int

const (
	OK Outcome = iota
	NotFound
	Heirloom
	InsufficientGold
	SlotMismatch
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "ok"
	case NotFound:
		return "not_found"
	case Heirloom:
		return "heirloom"
	case InsufficientGold:
		return "insufficient_gold"
	case SlotMismatch:
		return "slot_mismatch"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// AutoSlot lets Equip pick the accessory position.
const AutoSlot = -1

func indexOf(items []models.Equipment, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func remove(items []models.Equipment, i int) []models.Equipment {
	return append(items[:i:i], items[i+1:]...)
}

// Equip moves an inventory item into its slot. The displaced item goes back
// to the inventory. An accessory with AutoSlot takes the first empty
// position, or bumps the first accessory when both are full.
func Equip(s models.GameState, itemID string, accessorySlot int) (models.GameState, Outcome) {
	i := indexOf(s.Inventory, itemID)
	if i < 0 {
		return s, NotFound
	}
	if s.Inventory[i].Slot == models.SlotAccessory && (accessorySlot < AutoSlot || accessorySlot > 1) {
		return s, SlotMismatch
	}

	out := s.Clone()
	item := out.Inventory[i]
	out.Inventory = remove(out.Inventory, i)
	eq := &out.Character.Equipment
	var displaced *models.Equipment

	switch item.Slot {
	case models.SlotWeapon:
		displaced, eq.Weapon = eq.Weapon, &item
	case models.SlotArmor:
		displaced, eq.Armor = eq.Armor, &item
	case models.SlotAccessory:
		pos := accessorySlot
		if pos == AutoSlot {
			pos = 0
			if eq.Accessories[0] != nil && eq.Accessories[1] == nil {
				pos = 1
			}
		}
		displaced, eq.Accessories[pos] = eq.Accessories[pos], &item
	default:
		return s, SlotMismatch
	}

	if displaced != nil {
		out.Inventory = append(out.Inventory, *displaced)
	}
	return out, OK
}

// Unequip moves the item in slot back to the inventory. accessorySlot picks
// the accessory position and is ignored for other slots.
func Unequip(s models.GameState, slot models.Slot, accessorySlot int) (models.GameState, Outcome) {
	out := s.Clone()
	eq := &out.Character.Equipment
	var target **models.Equipment
	switch slot {
	case models.SlotWeapon:
		target = &eq.Weapon
	case models.SlotArmor:
		target = &eq.Armor
	case models.SlotAccessory:
		if accessorySlot < 0 || accessorySlot > 1 {
			return s, SlotMismatch
		}
		target = &eq.Accessories[accessorySlot]
	default:
		return s, SlotMismatch
	}
	if *target == nil {
		return s, NotFound
	}
	out.Inventory = append(out.Inventory, **target)
	*target = nil
	return out, OK
}

// UpgradeCost is floor(50 * rarityMultiplier * (level+1)).
func UpgradeCost(item models.Equipment) int {
	return int(math.Floor(50 * item.Rarity.Multiplier() * float64(item.UpgradeLevel+1)))
}

// SellValue is max(price/2, 5 * rarityMultiplier * (1+level)).
func SellValue(item models.Equipment) int {
	floorValue := int(math.Floor(5 * item.Rarity.Multiplier() * float64(1+item.UpgradeLevel)))
	return max(item.Price/2, floorValue)
}

// BaseName strips the " +N" upgrade suffix.
func BaseName(item models.Equipment) string {
	if item.UpgradeLevel <= 0 {
		return item.Name
	}
	return strings.TrimSuffix(item.Name, fmt.Sprintf(" +%d", item.UpgradeLevel))
}

func primaryStat(item models.Equipment) int {
	best := -1
	for i, s := range item.Stats {
		if best < 0 || s.Value > item.Stats[best].Value {
			best = i
		}
	}
	return best
}

func defaultStat(slot models.Slot) models.StatKey {
	switch slot {
	case models.SlotWeapon:
		return models.Attack
	case models.SlotArmor:
		return models.Defense
	}
	return models.Health
}

// Upgraded returns the next upgrade level of item: its primary stat grows by
// max(1, round(primary*0.1)), the name becomes "<base> +N" and the price
// grows by 10%.
func Upgraded(item models.Equipment) models.Equipment {
	next := item.Clone()
	if p := primaryStat(next); p >= 0 {
		next.Stats[p].Value += max(1, int(math.Round(float64(next.Stats[p].Value)*0.1)))
	} else {
		next.Stats = []models.StatValue{{Stat: defaultStat(next.Slot), Value: 1}}
	}
	base := BaseName(item)
	next.UpgradeLevel++
	next.Name = fmt.Sprintf("%s +%d", base, next.UpgradeLevel)
	next.Price = int(math.Floor(float64(item.Price) * 1.1))
	return next
}

// equippedRef finds itemID on the character.
func equippedRef(l *models.Loadout, itemID string) **models.Equipment {
	for _, p := range []**models.Equipment{&l.Weapon, &l.Armor, &l.Accessories[0], &l.Accessories[1]} {
		if *p != nil && (*p).ID == itemID {
			return p
		}
	}
	return nil
}

// Upgrade pays UpgradeCost and replaces the item, in the inventory or on the
// character, with its upgraded copy. Heirlooms cannot be upgraded.
func Upgrade(s models.GameState, itemID string) (models.GameState, Outcome) {
	out := s.Clone()
	var item *models.Equipment
	if i := indexOf(out.Inventory, itemID); i >= 0 {
		item = &out.Inventory[i]
	} else if ref := equippedRef(&out.Character.Equipment, itemID); ref != nil {
		item = *ref
	}
	if item == nil {
		return s, NotFound
	}
	if item.Heirloom {
		return s, Heirloom
	}
	cost := UpgradeCost(*item)
	if out.Gold < cost {
		return s, InsufficientGold
	}
	out.Gold -= cost
	*item = Upgraded(*item)
	return out, OK
}

// Sell removes an inventory item for SellValue gold. Equipped items must be
// unequipped first; heirlooms cannot be sold.
func Sell(s models.GameState, itemID string) (models.GameState, Outcome) {
	i := indexOf(s.Inventory, itemID)
	if i < 0 {
		return s, NotFound
	}
	if s.Inventory[i].Heirloom {
		return s, Heirloom
	}
	out := s.Clone()
	out.Gold += SellValue(out.Inventory[i])
	out.Inventory = remove(out.Inventory, i)
	return out, OK
}

// Buy pays item.Price and adds a copy of the item to the inventory.
func Buy(s models.GameState, item models.Equipment) (models.GameState, Outcome) {
	if s.Gold < item.Price {
		return s, InsufficientGold
	}
	out := s.Clone()
	out.Gold -= item.Price
	out.Inventory = append(out.Inventory, item.Clone())
	return out, OK
}

// ShopStock rolls n shop items for a level. Shop items carry no floor.
func ShopStock(gen *loot.Generator, level, n int) []models.Equipment {
	out := make([]models.Equipment, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, gen.GenerateItem(level, 1, 0))
	}
	return out
}
