package models

// Hero is the state shared by the player character and companion adventurers.
// CurrentHealth and CurrentMana are transient encounter state; nil means full.
type Hero struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Class          Class     `json:"class"`
	Level          int       `json:"level"`
	Experience     int       `json:"experience"`
	Stats          GameStats `json:"stats"`
	CurrentHealth  *int      `json:"current_health,omitempty"`
	CurrentMana    *int      `json:"current_mana,omitempty"`
	Equipment      Loadout   `json:"equipment"`
	Abilities      []string  `json:"abilities,omitempty"`
	ActivePassives []string  `json:"active_passives,omitempty"`
}

// Health returns current health, falling back to max health.
func (h Hero) Health() int {
	if h.CurrentHealth == nil {
		return h.Stats.Health
	}
	return *h.CurrentHealth
}

// Mana returns current mana, falling back to max mana.
func (h Hero) Mana() int {
	if h.CurrentMana == nil {
		return h.Stats.Mana
	}
	return *h.CurrentMana
}

// ResetTransient drops encounter health and mana so both read as full.
func (h *Hero) ResetTransient() {
	h.CurrentHealth = nil
	h.CurrentMana = nil
}

// Knows reports whether abilityID has been learned.
func (h Hero) Knows(abilityID string) bool {
	for _, id := range h.Abilities {
		if id == abilityID {
			return true
		}
	}
	return false
}

// Clone deep-copies slices, pointers and equipment.
func (h Hero) Clone() Hero {
	out := h
	out.CurrentHealth = IntPtr(h.CurrentHealth)
	out.CurrentMana = IntPtr(h.CurrentMana)
	out.Equipment = h.Equipment.Clone()
	out.Abilities = append([]string(nil), h.Abilities...)
	out.ActivePassives = append([]string(nil), h.ActivePassives...)
	return out
}

// Character is the player. LegacyBonus is inherited from a retired ancestor.
type Character struct {
	Hero
	LegacyBonus GameStats `json:"legacy_bonus"`
	Generation  int       `json:"generation"`
}

// Clone deep-copies the character.
func (c Character) Clone() Character {
	c.Hero = c.Hero.Clone()
	return c
}

// Adventurer is a recruited companion.
type Adventurer struct {
	Hero
	Personality string `json:"personality,omitempty"`
	HireCost    int    `json:"hire_cost,omitempty"`
}

// Clone deep-copies the adventurer.
func (a Adventurer) Clone() Adventurer {
	a.Hero = a.Hero.Clone()
	return a
}

// GameState is the committed per-player state the engine operates on.
type GameState struct {
	Character Character    `json:"character"`
	Party     []Adventurer `json:"party"`
	Inventory []Equipment  `json:"inventory"`
	Gold      int          `json:"gold"`
}

// Clone deep-copies the whole state.
func (g GameState) Clone() GameState {
	out := GameState{Character: g.Character.Clone(), Gold: g.Gold}
	out.Party = make([]Adventurer, len(g.Party))
	for i, a := range g.Party {
		out.Party[i] = a.Clone()
	}
	out.Inventory = make([]Equipment, len(g.Inventory))
	for i, e := range g.Inventory {
		out.Inventory[i] = e.Clone()
	}
	return out
}

// Int returns a pointer to a copy of v.
func Int(v int) *int { return &v }

// IntPtr copies the pointed-to value into a fresh pointer.
func IntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
