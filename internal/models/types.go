package models

// ========================= Stats =========================

// StatKey names one of the six attributes carried by GameStats.
type StatKey string

const (
	Health       StatKey = "health"
	Mana         StatKey = "mana"
	Attack       StatKey = "attack"
	Defense      StatKey = "defense"
	Agility      StatKey = "agility"
	Intelligence StatKey = "intelligence"
)

// StatKeys is the canonical iteration order for every stat walk in the engine.
var StatKeys = []StatKey{Health, Mana, Attack, Defense, Agility, Intelligence}

// GameStats is a fixed block of the six attributes.
type GameStats struct {
	Health       int `json:"health"`
	Mana         int `json:"mana"`
	Attack       int `json:"attack"`
	Defense      int `json:"defense"`
	Agility      int `json:"agility"`
	Intelligence int `json:"intelligence"`
}

// StatValue is one entry of a sparse stat bonus. Sparse bonuses are kept as
// ordered slices so iteration never depends on map order.
type StatValue struct {
	Stat  StatKey `json:"stat"`
	Value int     `json:"value"`
}

// Get returns the value for k, or 0 for an unknown key.
func (s GameStats) Get(k StatKey) int {
	switch k {
	case Health:
		return s.Health
	case Mana:
		return s.Mana
	case Attack:
		return s.Attack
	case Defense:
		return s.Defense
	case Agility:
		return s.Agility
	case Intelligence:
		return s.Intelligence
	}
	return 0
}

// Add adds v to stat k. Unknown keys are ignored.
func (s *GameStats) Add(k StatKey, v int) {
	switch k {
	case Health:
		s.Health += v
	case Mana:
		s.Mana += v
	case Attack:
		s.Attack += v
	case Defense:
		s.Defense += v
	case Agility:
		s.Agility += v
	case Intelligence:
		s.Intelligence += v
	}
}

// Plus returns the field-wise sum of s and o.
func (s GameStats) Plus(o GameStats) GameStats {
	for _, k := range StatKeys {
		s.Add(k, o.Get(k))
	}
	return s
}

// PlusBonus returns s with every entry of bonus added.
func (s GameStats) PlusBonus(bonus []StatValue) GameStats {
	for _, b := range bonus {
		s.Add(b.Stat, b.Value)
	}
	return s
}

// Clamped returns s with every negative field raised to 0.
func (s GameStats) Clamped() GameStats {
	for _, k := range StatKeys {
		if v := s.Get(k); v < 0 {
			s.Add(k, -v)
		}
	}
	return s
}

// ========================= Classes =========================

// Class identifies a character archetype.
type Class string

const (
	Warrior Class = "warrior"
	Mage    Class = "mage"
	Rogue   Class = "rogue"
	Cleric  Class = "cleric"
	Ranger  Class = "ranger"
)

// Classes lists every playable class in a fixed order.
var Classes = []Class{Warrior, Mage, Rogue, Cleric, Ranger}

// ClassDef is the static definition of a class.
type ClassDef struct {
	ID        Class     `json:"id"`
	Name      string    `json:"name"`
	BaseStats GameStats `json:"base_stats"`
	Icon      string    `json:"icon,omitempty"`
	Color     string    `json:"color,omitempty"`
}

// ========================= Abilities =========================

// AbilityKind separates active damage and heal abilities from passives.
type AbilityKind string

const (
	AbilityDamage  AbilityKind = "damage"
	AbilityHeal    AbilityKind = "heal"
	AbilityPassive AbilityKind = "passive"
)

// Ability is a learnable class ability. Power is the damage or heal multiplier
// for active abilities; Bonus is the stat block granted by an active passive.
type Ability struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Class         Class       `json:"class"`
	Kind          AbilityKind `json:"kind"`
	ManaCost      int         `json:"mana_cost,omitempty"`
	Cooldown      int         `json:"cooldown,omitempty"`
	Power         float64     `json:"power,omitempty"`
	RequiredLevel int         `json:"required_level"`
	Bonus         []StatValue `json:"bonus,omitempty"`
}

// ========================= Sets =========================

// SetThreshold grants Bonus once Pieces items of the set are equipped.
type SetThreshold struct {
	Pieces int         `json:"pieces"`
	Bonus  []StatValue `json:"bonus"`
}

// SetDef is an item set with its threshold bonuses.
type SetDef struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Thresholds []SetThreshold `json:"thresholds"`
}
