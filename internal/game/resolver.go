package game

import (
	"fmt"
	"math"
	"sort"

	"github.com/pefman/legacy-idle/internal/engine"
	"github.com/pefman/legacy-idle/internal/models"
)

// HealThreshold is the health fraction under which clerics heal instead of
// attacking.
const HealThreshold = 0.6

// Resolver computes combat turns. It holds no state besides its random
// source.
type Resolver struct {
	src engine.Source
}

// NewResolver returns a Resolver drawing every roll from src.
func NewResolver(src engine.Source) *Resolver {
	return &Resolver{src: src}
}

// CritChance is agility/200 + 0.05.
func CritChance(agility int) float64 {
	return float64(agility)/200 + 0.05
}

// DodgeChance is agility/300.
func DodgeChance(t Combatant) float64 {
	return float64(t.Stats.Agility) / 300
}

// ParryChance is 0.02 + attack/600, plus 0.05 for warriors and rogues.
func ParryChance(t Combatant) float64 {
	p := 0.02 + float64(t.Stats.Attack)/600
	if t.Class == models.Warrior || t.Class == models.Rogue {
		p += 0.05
	}
	return p
}

// BlockChance is 0.02 + defense/600, plus 0.05 for warriors and clerics.
func BlockChance(t Combatant) float64 {
	p := 0.02 + float64(t.Stats.Defense)/600
	if t.Class == models.Warrior || t.Class == models.Cleric {
		p += 0.05
	}
	return p
}

type hit struct {
	damage   int
	critical bool
}

// strike rolls a basic attack: floor(attack * U(0.9,1.1) - defense) floored
// at 0, then a crit roll that multiplies by 1.5 and guarantees 1 damage.
func (r *Resolver) strike(attack, defense, agility int) hit {
	roll := engine.Between(r.src, 0.9, 1.1)
	dmg := int(math.Floor(float64(attack)*roll - float64(defense)))
	if dmg < 0 {
		dmg = 0
	}
	h := hit{damage: dmg}
	if engine.Chance(r.src, CritChance(agility)) {
		h.critical = true
		h.damage = int(math.Floor(float64(dmg) * 1.5))
		if h.damage < 1 {
			h.damage = 1
		}
	}
	return h
}

// spell rolls ability damage from the caster's scaling stat times power.
// Abilities always land for at least 1.
func (r *Resolver) spell(stat int, power float64, defense, agility int) hit {
	roll := engine.Between(r.src, 0.9, 1.1)
	dmg := int(math.Floor(float64(stat)*power*roll - float64(defense)))
	if dmg < 1 {
		dmg = 1
	}
	h := hit{damage: dmg}
	if engine.Chance(r.src, CritChance(agility)) {
		h.critical = true
		h.damage = int(math.Floor(float64(dmg) * 1.5))
	}
	return h
}

// spellStat is intelligence for casters, attack for everyone else.
func spellStat(c Combatant) int {
	if c.Class == models.Mage || c.Class == models.Cleric {
		return c.Stats.Intelligence
	}
	return c.Stats.Attack
}

func ready(cooldowns map[string]int, actorID string, a models.Ability, turn int) bool {
	return turn >= cooldowns[CooldownKey(actorID, a.ID)]
}

// usable returns the actor's abilities of kind k that are affordable and off
// cooldown, strongest first.
func usable(c Combatant, k models.AbilityKind, cooldowns map[string]int, turn int) []models.Ability {
	var out []models.Ability
	for _, a := range c.Abilities {
		if a.Kind == k && a.ManaCost <= c.Mana && ready(cooldowns, c.ID, a, turn) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Power > out[j].Power })
	return out
}

// ResolveTurn plays one turn: the player, then each party member, then the
// enemy. The snapshot is not modified.
func (r *Resolver) ResolveTurn(s Snapshot) TurnResult {
	turn := s.Turn
	cooldowns := make(map[string]int, len(s.Cooldowns)+4)
	for k, v := range s.Cooldowns {
		cooldowns[k] = v
	}

	// index 0 is the player
	team := make([]Combatant, 0, 1+len(s.Party))
	team = append(team, s.Player)
	team = append(team, s.Party...)
	enemy := s.Enemy

	var logs []LogEntry
	logf := func(e LogEntry, format string, args ...any) {
		e.Turn = turn
		e.Message = fmt.Sprintf(format, args...)
		logs = append(logs, e)
	}

	for i := range team {
		if enemy.Health <= 0 {
			break
		}
		actor := &team[i]
		if !actor.Alive() {
			continue
		}

		if actor.Class == models.Cleric && r.heal(actor, team, cooldowns, turn, logf) {
			continue
		}

		if abilities := usable(*actor, models.AbilityDamage, cooldowns, turn); len(abilities) > 0 {
			a := abilities[0]
			actor.Mana -= a.ManaCost
			cooldowns[CooldownKey(actor.ID, a.ID)] = turn + a.Cooldown
			h := r.spell(spellStat(*actor), a.Power, enemy.Stats.Defense, actor.Stats.Agility)
			enemy.Health -= h.damage
			if h.critical {
				logf(LogEntry{Kind: LogAbility, Actor: actor.ID, Target: enemy.ID, Ability: a.ID, Amount: h.damage, Critical: true},
					"%s casts %s on %s for %d damage. Critical hit!", actor.Name, a.Name, enemy.Name, h.damage)
			} else {
				logf(LogEntry{Kind: LogAbility, Actor: actor.ID, Target: enemy.ID, Ability: a.ID, Amount: h.damage},
					"%s casts %s on %s for %d damage.", actor.Name, a.Name, enemy.Name, h.damage)
			}
		} else {
			h := r.strike(actor.Stats.Attack, enemy.Stats.Defense, actor.Stats.Agility)
			enemy.Health -= h.damage
			switch {
			case h.critical:
				logf(LogEntry{Kind: LogAttack, Actor: actor.ID, Target: enemy.ID, Amount: h.damage, Critical: true},
					"%s strikes %s for %d damage. Critical hit!", actor.Name, enemy.Name, h.damage)
			case h.damage == 0:
				logf(LogEntry{Kind: LogMiss, Actor: actor.ID, Target: enemy.ID},
					"%s misses %s.", actor.Name, enemy.Name)
			default:
				logf(LogEntry{Kind: LogAttack, Actor: actor.ID, Target: enemy.ID, Amount: h.damage},
					"%s strikes %s for %d damage.", actor.Name, enemy.Name, h.damage)
			}
		}

		if enemy.Health <= 0 {
			logf(LogEntry{Kind: LogDefeat, Actor: actor.ID, Target: enemy.ID}, "%s is defeated!", enemy.Name)
		}
	}

	res := TurnResult{Cooldowns: cooldowns}
	if enemy.Health <= 0 {
		res.EnemyDefeated = true
	} else {
		r.enemyAction(enemy, team, logf)
	}

	for i := range team {
		if team[i].Health < 0 {
			team[i].Health = 0
		}
	}
	if enemy.Health < 0 {
		enemy.Health = 0
	}

	res.Logs = logs
	res.EnemyHealth = enemy.Health
	res.Player = team[0]
	res.Party = append([]Combatant(nil), team[1:]...)
	res.PlayerDefeated = team[0].Health <= 0
	return res
}

// heal casts the strongest ready heal on the most wounded ally under the
// threshold. It reports whether the actor used its action.
func (r *Resolver) heal(actor *Combatant, team []Combatant, cooldowns map[string]int, turn int, logf func(LogEntry, string, ...any)) bool {
	target := -1
	for i, c := range team {
		if !c.Alive() || c.HealthFraction() >= HealThreshold {
			continue
		}
		if target < 0 || c.HealthFraction() < team[target].HealthFraction() {
			target = i
		}
	}
	if target < 0 {
		return false
	}
	heals := usable(*actor, models.AbilityHeal, cooldowns, turn)
	if len(heals) == 0 {
		return false
	}

	a := heals[0]
	actor.Mana -= a.ManaCost
	cooldowns[CooldownKey(actor.ID, a.ID)] = turn + a.Cooldown

	t := &team[target]
	amount := int(math.Floor(float64(actor.Stats.Intelligence) * a.Power))
	if room := t.Stats.Health - t.Health; amount > room {
		amount = room
	}
	if amount < 0 {
		amount = 0
	}
	t.Health += amount
	logf(LogEntry{Kind: LogHeal, Actor: actor.ID, Target: t.ID, Ability: a.ID, Amount: amount},
		"%s casts %s on %s, restoring %d health.", actor.Name, a.Name, t.Name, amount)
	return true
}

func (r *Resolver) enemyAction(enemy Enemy, team []Combatant, logf func(LogEntry, string, ...any)) {
	var living []int
	for i, c := range team {
		if c.Alive() {
			living = append(living, i)
		}
	}
	if len(living) == 0 {
		return
	}
	t := &team[engine.Pick(r.src, living)]
	h := r.strike(enemy.Stats.Attack, t.Stats.Defense, enemy.Stats.Agility)

	switch {
	case engine.Chance(r.src, DodgeChance(*t)):
		logf(LogEntry{Kind: LogDodge, Actor: enemy.ID, Target: t.ID}, "%s dodges %s's attack.", t.Name, enemy.Name)
		return
	case engine.Chance(r.src, ParryChance(*t)):
		logf(LogEntry{Kind: LogParry, Actor: enemy.ID, Target: t.ID}, "%s parries %s's attack.", t.Name, enemy.Name)
		return
	case engine.Chance(r.src, BlockChance(*t)):
		logf(LogEntry{Kind: LogBlock, Actor: enemy.ID, Target: t.ID}, "%s blocks %s's attack.", t.Name, enemy.Name)
		return
	}

	t.Health -= h.damage
	switch {
	case h.critical:
		logf(LogEntry{Kind: LogAttack, Actor: enemy.ID, Target: t.ID, Amount: h.damage, Critical: true},
			"%s hits %s for %d damage. Critical hit!", enemy.Name, t.Name, h.damage)
	case h.damage == 0:
		logf(LogEntry{Kind: LogMiss, Actor: enemy.ID, Target: t.ID}, "%s misses %s.", enemy.Name, t.Name)
	default:
		logf(LogEntry{Kind: LogAttack, Actor: enemy.ID, Target: t.ID, Amount: h.damage},
			"%s hits %s for %d damage.", enemy.Name, t.Name, h.damage)
	}
	if t.Health <= 0 && t.Kind != KindPlayer {
		logf(LogEntry{Kind: LogDefeat, Actor: enemy.ID, Target: t.ID}, "%s has fallen!", t.Name)
	}
}
