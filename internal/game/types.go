package game

import (
	"fmt"

	"github.com/pefman/legacy-idle/internal/models"
)

// Kind tells the player apart from companions. It is fixed when the
// snapshot is built.
type Kind string

const (
	KindPlayer    Kind = "player"
	KindCompanion Kind = "companion"
)

// Combatant captures what the resolver needs from a character or adventurer.
// Abilities holds the learned active abilities; passives are already folded
// into Stats by the stat aggregator.
type Combatant struct {
	Kind      Kind             `json:"kind"`
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Class     models.Class     `json:"class"`
	Level     int              `json:"level"`
	Stats     models.GameStats `json:"stats"`
	Health    int              `json:"health"`
	Mana      int              `json:"mana"`
	Abilities []models.Ability `json:"abilities,omitempty"`
}

// Alive reports whether the combatant can still act.
func (c Combatant) Alive() bool { return c.Health > 0 }

// HealthFraction is current over max health; a zero max reads as 1.
func (c Combatant) HealthFraction() float64 {
	full := c.Stats.Health
	if full <= 0 {
		full = 1
	}
	return float64(c.Health) / float64(full)
}

// AbilitySource resolves ability ids. content.Catalog satisfies it.
type AbilitySource interface {
	Ability(id string) (models.Ability, error)
}

// FromHero builds a Combatant, defaulting missing health and mana to max.
// An unknown learned ability is a content error.
func FromHero(kind Kind, h models.Hero, abilities AbilitySource) (Combatant, error) {
	c := Combatant{
		Kind:   kind,
		ID:     h.ID,
		Name:   h.Name,
		Class:  h.Class,
		Level:  h.Level,
		Stats:  h.Stats,
		Health: h.Health(),
		Mana:   h.Mana(),
	}
	for _, id := range h.Abilities {
		a, err := abilities.Ability(id)
		if err != nil {
			return Combatant{}, fmt.Errorf("combatant %s: %w", h.ID, err)
		}
		if a.Kind == models.AbilityPassive {
			continue
		}
		c.Abilities = append(c.Abilities, a)
	}
	return c, nil
}

// Enemy is the monster being fought.
type Enemy struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Stats  models.GameStats `json:"stats"`
	Health int              `json:"health"`
}

// EnemyFrom wraps a scaled monster with its current health.
func EnemyFrom(m models.ScaledMonster, health int) Enemy {
	return Enemy{ID: m.ID, Name: m.Name, Stats: m.Stats, Health: health}
}

// Snapshot is the full input of one turn.
type Snapshot struct {
	Player    Combatant      `json:"player"`
	Party     []Combatant    `json:"party"`
	Enemy     Enemy          `json:"enemy"`
	Turn      int            `json:"turn"`
	Cooldowns map[string]int `json:"cooldowns"`
}

// CooldownKey is the cooldown map key for an actor's ability.
func CooldownKey(actorID, abilityID string) string {
	return actorID + "-" + abilityID
}

// LogKind classifies a combat log line.
type LogKind string

const (
	LogAttack  LogKind = "attack"
	LogAbility LogKind = "ability"
	LogHeal    LogKind = "heal"
	LogMiss    LogKind = "miss"
	LogDodge   LogKind = "dodge"
	LogParry   LogKind = "parry"
	LogBlock   LogKind = "block"
	LogDefeat  LogKind = "defeat"
	LogVictory LogKind = "victory"
)

// LogEntry is one structured combat log line. Message is the rendered text.
type LogEntry struct {
	Turn     int     `json:"turn"`
	Kind     LogKind `json:"kind"`
	Actor    string  `json:"actor,omitempty"`
	Target   string  `json:"target,omitempty"`
	Ability  string  `json:"ability,omitempty"`
	Amount   int     `json:"amount,omitempty"`
	Critical bool    `json:"critical,omitempty"`
	Message  string  `json:"message"`
}

// TurnResult is the output of ResolveTurn. Player and Party are updated
// copies; Cooldowns is a fresh map.
type TurnResult struct {
	Logs           []LogEntry     `json:"logs"`
	EnemyHealth    int            `json:"enemy_health"`
	Player         Combatant      `json:"player"`
	Party          []Combatant    `json:"party"`
	Cooldowns      map[string]int `json:"cooldowns"`
	EnemyDefeated  bool           `json:"enemy_defeated"`
	PlayerDefeated bool           `json:"player_defeated"`
}
