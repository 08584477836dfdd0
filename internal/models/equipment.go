package models

// Slot is where an item is worn.
type Slot string

const (
	SlotWeapon    Slot = "weapon"
	SlotArmor     Slot = "armor"
	SlotAccessory Slot = "accessory"
)

// Slots lists the three slots in a fixed order.
var Slots = []Slot{SlotWeapon, SlotArmor, SlotAccessory}

// Rarity grades an item from common to legendary.
type Rarity string

const (
	Common    Rarity = "common"
	Uncommon  Rarity = "uncommon"
	Rare      Rarity = "rare"
	Epic      Rarity = "epic"
	Legendary Rarity = "legendary"
)

// Rarities is ordered from lowest to highest.
var Rarities = []Rarity{Common, Uncommon, Rare, Epic, Legendary}

// Rank returns the position of r in Rarities, or -1.
func (r Rarity) Rank() int {
	for i, v := range Rarities {
		if v == r {
			return i
		}
	}
	return -1
}

// Multiplier is the stat, price and upgrade-cost multiplier for r.
func (r Rarity) Multiplier() float64 {
	switch r {
	case Uncommon:
		return 1.5
	case Rare:
		return 2.2
	case Epic:
		return 3.2
	case Legendary:
		return 4.5
	}
	return 1
}

// Affinity is a per-class multiplier on an item's stat contribution.
type Affinity struct {
	Class      Class   `json:"class"`
	Multiplier float64 `json:"multiplier"`
}

// Equipment is an item instance. Values are treated as immutable: every
// operation that changes an item returns a new copy.
type Equipment struct {
	ID           string      `json:"id"`
	BaseID       string      `json:"base_id"`
	Name         string      `json:"name"`
	Slot         Slot        `json:"slot"`
	Rarity       Rarity      `json:"rarity"`
	Stats        []StatValue `json:"stats"`
	UpgradeLevel int         `json:"upgrade_level"`
	Affinity     []Affinity  `json:"affinity,omitempty"`
	SetID        string      `json:"set_id,omitempty"`
	Heirloom     bool        `json:"is_heirloom,omitempty"`
	Price        int         `json:"price"`
}

// AffinityFor returns the multiplier the item declares for class c, or 1.0.
func (e Equipment) AffinityFor(c Class) float64 {
	for _, a := range e.Affinity {
		if a.Class == c {
			return a.Multiplier
		}
	}
	return 1
}

// StatTotal sums every stat bonus on the item.
func (e Equipment) StatTotal() int {
	total := 0
	for _, s := range e.Stats {
		total += s.Value
	}
	return total
}

// Clone returns a deep copy of e.
func (e Equipment) Clone() Equipment {
	out := e
	out.Stats = append([]StatValue(nil), e.Stats...)
	out.Affinity = append([]Affinity(nil), e.Affinity...)
	return out
}

// Loadout holds the equipped items: one weapon, one armor, two accessories.
type Loadout struct {
	Weapon      *Equipment    `json:"weapon,omitempty"`
	Armor       *Equipment    `json:"armor,omitempty"`
	Accessories [2]*Equipment `json:"accessories"`
}

// Items returns the equipped items in weapon, armor, accessory order.
func (l Loadout) Items() []Equipment {
	out := make([]Equipment, 0, 4)
	for _, it := range []*Equipment{l.Weapon, l.Armor, l.Accessories[0], l.Accessories[1]} {
		if it != nil {
			out = append(out, *it)
		}
	}
	return out
}

// InSlot returns the weapon or armor item, or nil. Accessories have two
// positions and are read through Accessories directly.
func (l Loadout) InSlot(slot Slot) *Equipment {
	switch slot {
	case SlotWeapon:
		return l.Weapon
	case SlotArmor:
		return l.Armor
	}
	return nil
}

// Clone deep-copies every equipped item.
func (l Loadout) Clone() Loadout {
	cp := func(e *Equipment) *Equipment {
		if e == nil {
			return nil
		}
		c := e.Clone()
		return &c
	}
	return Loadout{
		Weapon:      cp(l.Weapon),
		Armor:       cp(l.Armor),
		Accessories: [2]*Equipment{cp(l.Accessories[0]), cp(l.Accessories[1])},
	}
}
