package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pefman/legacy-idle/internal/engine"
	"github.com/pefman/legacy-idle/internal/models"
)

func warrior() Combatant {
	return Combatant{
		Kind: KindPlayer, ID: "hero", Name: "Hero", Class: models.Warrior, Level: 1,
		Stats:  models.GameStats{Health: 120, Mana: 30, Attack: 15, Defense: 10, Agility: 8, Intelligence: 4},
		Health: 120, Mana: 30,
	}
}

func dummy(health int) Enemy {
	return Enemy{ID: "dummy", Name: "Dummy", Stats: models.GameStats{Health: health, Defense: 5}, Health: health}
}

func TestResolveTurn_BasicAttackAtFixedRoll(t *testing.T) {
	r := NewResolver(engine.NewSequence(0.5))
	res := r.ResolveTurn(Snapshot{Player: warrior(), Enemy: dummy(100), Turn: 1})

	require.NotEmpty(t, res.Logs)
	first := res.Logs[0]
	assert.Equal(t, LogAttack, first.Kind)
	assert.Equal(t, 10, first.Amount)
	assert.False(t, first.Critical)
	assert.Equal(t, 90, res.EnemyHealth)
	assert.False(t, res.EnemyDefeated)
}

func TestResolveTurn_BasicAttackRange(t *testing.T) {
	for _, draw := range []float64{0, 0.25, 0.5, 0.75, 0.9999} {
		r := NewResolver(engine.NewSequence(draw, 0.99))
		res := r.ResolveTurn(Snapshot{Player: warrior(), Enemy: dummy(100), Turn: 1})
		dmg := 100 - res.EnemyHealth
		assert.GreaterOrEqual(t, dmg, 8, draw)
		assert.LessOrEqual(t, dmg, 11, draw)
	}
}

func TestResolveTurn_CriticalHits(t *testing.T) {
	r := NewResolver(engine.NewSequence(0.5, 0))
	res := r.ResolveTurn(Snapshot{Player: warrior(), Enemy: dummy(100), Turn: 1})
	assert.True(t, res.Logs[0].Critical)
	assert.Equal(t, 15, res.Logs[0].Amount)

	weak := warrior()
	weak.Stats.Attack = 1
	armored := dummy(100)
	armored.Stats.Defense = 50

	r = NewResolver(engine.NewSequence(0.5, 0))
	res = r.ResolveTurn(Snapshot{Player: weak, Enemy: armored, Turn: 1})
	assert.Equal(t, 1, res.Logs[0].Amount)

	r = NewResolver(engine.NewSequence(0.5, 0.99))
	res = r.ResolveTurn(Snapshot{Player: weak, Enemy: armored, Turn: 1})
	assert.Equal(t, LogMiss, res.Logs[0].Kind)
	assert.Equal(t, 100, res.EnemyHealth)
}

func TestResolveTurn_KillStopsTurn(t *testing.T) {
	ally := warrior()
	ally.Kind, ally.ID, ally.Name = KindCompanion, "ally", "Ally"

	r := NewResolver(engine.NewSequence(0.5))
	res := r.ResolveTurn(Snapshot{Player: warrior(), Party: []Combatant{ally}, Enemy: dummy(5), Turn: 1})

	assert.True(t, res.EnemyDefeated)
	assert.Zero(t, res.EnemyHealth)
	require.Len(t, res.Logs, 2)
	assert.Equal(t, LogAttack, res.Logs[0].Kind)
	assert.Equal(t, LogDefeat, res.Logs[1].Kind)
	for _, l := range res.Logs {
		assert.NotEqual(t, "ally", l.Actor)
		assert.NotEqual(t, "dummy", l.Actor)
	}
	assert.Equal(t, 120, res.Player.Health)
}

func TestResolveTurn_AbilitiesAndCooldowns(t *testing.T) {
	mage := Combatant{
		Kind: KindPlayer, ID: "mage", Name: "Mage", Class: models.Mage, Level: 5,
		Stats:  models.GameStats{Health: 80, Mana: 100, Attack: 6, Defense: 4, Agility: 0, Intelligence: 16},
		Health: 80, Mana: 100,
		Abilities: []models.Ability{
			{ID: "spark", Name: "Spark", Kind: models.AbilityDamage, ManaCost: 5, Cooldown: 1, Power: 1.5},
			{ID: "bolt", Name: "Bolt", Kind: models.AbilityDamage, ManaCost: 10, Cooldown: 2, Power: 2},
			{ID: "nova", Name: "Nova", Kind: models.AbilityDamage, ManaCost: 500, Cooldown: 5, Power: 9},
		},
	}
	cooldowns := map[string]int{}
	r := NewResolver(engine.NewSequence(0.5))

	res := r.ResolveTurn(Snapshot{Player: mage, Enemy: dummy(1000), Turn: 1, Cooldowns: cooldowns})
	assert.Equal(t, LogAbility, res.Logs[0].Kind)
	assert.Equal(t, "bolt", res.Logs[0].Ability)
	assert.Equal(t, 27, res.Logs[0].Amount)
	assert.Equal(t, 90, res.Player.Mana)
	assert.Equal(t, 3, res.Cooldowns["mage-bolt"])
	assert.Empty(t, cooldowns, "input map untouched")
	assert.Equal(t, 100, mage.Mana)

	res = r.ResolveTurn(Snapshot{Player: res.Player, Enemy: dummy(1000), Turn: 2, Cooldowns: res.Cooldowns})
	assert.Equal(t, "spark", res.Logs[0].Ability)
	assert.Equal(t, 3, res.Cooldowns["mage-spark"])

	res = r.ResolveTurn(Snapshot{Player: res.Player, Enemy: dummy(1000), Turn: 3, Cooldowns: res.Cooldowns})
	assert.Equal(t, "bolt", res.Logs[0].Ability, "ready again on the turn it comes off cooldown")

	broke := mage
	broke.Mana = 0
	res = r.ResolveTurn(Snapshot{Player: broke, Enemy: dummy(1000), Turn: 1})
	assert.Equal(t, LogAttack, res.Logs[0].Kind)
}

func TestResolveTurn_ClericHeals(t *testing.T) {
	cleric := Combatant{
		Kind: KindPlayer, ID: "cleric", Name: "Cleric", Class: models.Cleric, Level: 5,
		Stats:  models.GameStats{Health: 100, Mana: 80, Attack: 8, Defense: 8, Agility: 0, Intelligence: 13},
		Health: 100, Mana: 80,
		Abilities: []models.Ability{
			{ID: "mend", Name: "Mend", Kind: models.AbilityHeal, ManaCost: 15, Cooldown: 2, Power: 2},
			{ID: "smite", Name: "Smite", Kind: models.AbilityDamage, ManaCost: 10, Cooldown: 1, Power: 1.2},
		},
	}
	tank := warrior()
	tank.Kind, tank.ID, tank.Name = KindCompanion, "tank", "Tank"
	tank.Health = 70
	rogue := warrior()
	rogue.Kind, rogue.ID, rogue.Name, rogue.Class = KindCompanion, "rogue", "Rogue", models.Rogue
	rogue.Health = 30

	r := NewResolver(engine.NewSequence(0.5))
	res := r.ResolveTurn(Snapshot{Player: cleric, Party: []Combatant{tank, rogue}, Enemy: dummy(1000), Turn: 1})

	heal := res.Logs[0]
	assert.Equal(t, LogHeal, heal.Kind)
	assert.Equal(t, "rogue", heal.Target)
	assert.Equal(t, 26, heal.Amount)
	assert.Equal(t, 65, res.Player.Mana)
	assert.Equal(t, 3, res.Cooldowns["cleric-mend"])
	assert.Equal(t, 30, rogue.Health)

	// heal capped at missing health
	big := cleric
	big.Abilities = []models.Ability{{ID: "mend", Name: "Mend", Kind: models.AbilityHeal, ManaCost: 15, Cooldown: 2, Power: 5}}
	res = r.ResolveTurn(Snapshot{Player: big, Party: []Combatant{tank}, Enemy: dummy(1000), Turn: 1})
	assert.Equal(t, 50, res.Logs[0].Amount)

	// nobody under the threshold: attacks with the damage ability instead
	res = r.ResolveTurn(Snapshot{Player: cleric, Party: []Combatant{warrior()}, Enemy: dummy(1000), Turn: 1})
	assert.Equal(t, LogAbility, res.Logs[0].Kind)
	assert.Equal(t, "smite", res.Logs[0].Ability)
}

func TestResolveTurn_DefensiveRolls(t *testing.T) {
	hard := Enemy{ID: "brute", Name: "Brute", Stats: models.GameStats{Health: 1e6, Attack: 50}, Health: 1e6}
	tests := []struct {
		name  string
		stats models.GameStats
		want  LogKind
	}{
		{"dodge first", models.GameStats{Health: 100, Agility: 300, Attack: 600}, LogDodge},
		{"parry", models.GameStats{Health: 100, Attack: 600}, LogParry},
		{"block", models.GameStats{Health: 100, Defense: 600}, LogBlock},
		{"hit", models.GameStats{Health: 100}, LogAttack},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := warrior()
			p.Stats = tt.stats
			p.Health = 100
			res := NewResolver(engine.NewSequence(0.5)).ResolveTurn(Snapshot{Player: p, Enemy: hard, Turn: 1})
			last := res.Logs[len(res.Logs)-1]
			assert.Equal(t, tt.want, last.Kind)
			assert.Equal(t, "brute", last.Actor)
			if tt.want == LogAttack {
				assert.Equal(t, 50, 100-res.Player.Health)
			} else {
				assert.Equal(t, 100, res.Player.Health)
			}
		})
	}
}

func TestResolveTurn_CompanionFalls(t *testing.T) {
	ally := Combatant{Kind: KindCompanion, ID: "ally", Name: "Ally", Class: models.Mage, Stats: models.GameStats{Health: 50}, Health: 1}
	hero := warrior()
	hero.Stats.Agility, hero.Stats.Defense = 0, 0
	brute := Enemy{ID: "brute", Name: "Brute", Stats: models.GameStats{Health: 1000, Attack: 100}, Health: 1000}

	// player roll, crit, ally roll, crit, pick (0.9 -> ally), then enemy rolls
	src := engine.NewSequence(0.5, 0.5, 0.5, 0.5, 0.9, 0.5)
	res := NewResolver(src).ResolveTurn(Snapshot{Player: hero, Party: []Combatant{ally}, Enemy: brute, Turn: 1})

	require.Len(t, res.Party, 1)
	assert.Zero(t, res.Party[0].Health)
	last := res.Logs[len(res.Logs)-1]
	assert.Equal(t, LogDefeat, last.Kind)
	assert.Equal(t, "ally", last.Target)
	assert.False(t, res.PlayerDefeated)
	assert.Equal(t, 1, ally.Health)
}

func TestResolveTurn_PlayerFalls(t *testing.T) {
	hero := warrior()
	hero.Stats.Agility, hero.Stats.Defense, hero.Stats.Attack = 0, 0, 0
	hero.Health = 10
	brute := Enemy{ID: "brute", Name: "Brute", Stats: models.GameStats{Health: 1000, Attack: 100}, Health: 1000}

	res := NewResolver(engine.NewSequence(0.5)).ResolveTurn(Snapshot{Player: hero, Enemy: brute, Turn: 1})
	assert.True(t, res.PlayerDefeated)
	assert.Zero(t, res.Player.Health)
	for _, l := range res.Logs {
		assert.NotEqual(t, LogDefeat, l.Kind)
	}
}

func TestResolveTurn_HealthNeverNegative(t *testing.T) {
	r := NewResolver(engine.NewRandSource(42))
	party := []Combatant{
		{Kind: KindCompanion, ID: "a", Name: "A", Class: models.Rogue, Stats: models.GameStats{Health: 40, Attack: 5, Agility: 10}, Health: 40},
		{Kind: KindCompanion, ID: "b", Name: "B", Class: models.Cleric, Stats: models.GameStats{Health: 30, Mana: 50, Intelligence: 10}, Health: 30, Mana: 50,
			Abilities: []models.Ability{{ID: "mend", Kind: models.AbilityHeal, ManaCost: 10, Cooldown: 2, Power: 1.5}}},
	}
	snap := Snapshot{
		Player:    warrior(),
		Party:     party,
		Enemy:     Enemy{ID: "ogre", Name: "Ogre", Stats: models.GameStats{Health: 5000, Attack: 45, Defense: 3, Agility: 20}, Health: 5000},
		Turn:      1,
		Cooldowns: map[string]int{},
	}
	for i := 0; i < 200; i++ {
		res := r.ResolveTurn(snap)
		assert.GreaterOrEqual(t, res.Player.Health, 0)
		for _, c := range res.Party {
			assert.GreaterOrEqual(t, c.Health, 0)
		}
		assert.GreaterOrEqual(t, res.EnemyHealth, 0)
		if res.PlayerDefeated || res.EnemyDefeated {
			break
		}
		snap.Player, snap.Party, snap.Cooldowns = res.Player, res.Party, res.Cooldowns
		snap.Enemy.Health = res.EnemyHealth
		snap.Turn++
	}
}

type abilityMap map[string]models.Ability

func (m abilityMap) Ability(id string) (models.Ability, error) {
	a, ok := m[id]
	if !ok {
		return models.Ability{}, assert.AnError
	}
	return a, nil
}

func TestFromHero(t *testing.T) {
	abilities := abilityMap{
		"strike": {ID: "strike", Kind: models.AbilityDamage, Power: 1.5},
		"skin":   {ID: "skin", Kind: models.AbilityPassive},
	}
	h := models.Hero{ID: "h", Name: "H", Class: models.Warrior, Stats: models.GameStats{Health: 50, Mana: 10}, Abilities: []string{"strike", "skin"}}

	c, err := FromHero(KindPlayer, h, abilities)
	require.NoError(t, err)
	assert.Equal(t, 50, c.Health)
	assert.Equal(t, 10, c.Mana)
	require.Len(t, c.Abilities, 1)
	assert.Equal(t, "strike", c.Abilities[0].ID)

	h.CurrentHealth = models.Int(7)
	c, err = FromHero(KindCompanion, h, abilities)
	require.NoError(t, err)
	assert.Equal(t, 7, c.Health)
	assert.Equal(t, KindCompanion, c.Kind)

	h.Abilities = append(h.Abilities, "missing")
	_, err = FromHero(KindPlayer, h, abilities)
	assert.ErrorIs(t, err, assert.AnError)
}
