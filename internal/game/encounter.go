package game

import (
	"github.com/pefman/legacy-idle/internal/models"
)

// Status is the encounter state.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusFighting Status = "fighting"
	StatusPaused   Status = "paused"
	StatusVictory  Status = "victory"
	StatusDefeat   Status = "defeat"
)

// EncounterKind separates dungeon runs from raids.
type EncounterKind string

const (
	EncounterDungeon EncounterKind = "dungeon"
	EncounterRaid    EncounterKind = "raid"
)

// MaxLog bounds the encounter log; older entries are dropped first.
const MaxLog = 200

// Rewards accumulate over an encounter and are paid out on victory.
type Rewards struct {
	XP   int                `json:"xp"`
	Gold int                `json:"gold"`
	Loot []models.Equipment `json:"loot,omitempty"`
}

// Encounter tracks one dungeon or raid: the enemy queue, the turn counter,
// cooldowns, the log and pending rewards.
type Encounter struct {
	Status      Status                 `json:"status"`
	Kind        EncounterKind          `json:"kind,omitempty"`
	SourceID    string                 `json:"source_id,omitempty"`
	Floor       int                    `json:"floor,omitempty"`
	Endless     bool                   `json:"endless,omitempty"`
	Enemies     []models.ScaledMonster `json:"enemies,omitempty"`
	EnemyIndex  int                    `json:"enemy_index"`
	EnemyHealth int                    `json:"enemy_health"`
	Turn        int                    `json:"turn"`
	Cooldowns   map[string]int         `json:"cooldowns"`
	Log         []LogEntry             `json:"log"`
	Rewards     Rewards                `json:"rewards"`
}

// NewEncounter returns an idle encounter.
func NewEncounter() *Encounter {
	return &Encounter{Status: StatusIdle, Cooldowns: map[string]int{}}
}

// Start begins fighting the enemies in order. The last enemy is the boss.
// Only an idle encounter with at least one enemy can start.
func (e *Encounter) Start(kind EncounterKind, sourceID string, floor int, endless bool, enemies []models.ScaledMonster) bool {
	if e.Status != StatusIdle || len(enemies) == 0 {
		return false
	}
	*e = Encounter{
		Status:      StatusFighting,
		Kind:        kind,
		SourceID:    sourceID,
		Floor:       floor,
		Endless:     endless,
		Enemies:     append([]models.ScaledMonster(nil), enemies...),
		EnemyHealth: enemies[0].Stats.Health,
		Turn:        1,
		Cooldowns:   map[string]int{},
	}
	return true
}

// Current returns the enemy being fought.
func (e *Encounter) Current() (models.ScaledMonster, bool) {
	if e.EnemyIndex < 0 || e.EnemyIndex >= len(e.Enemies) {
		return models.ScaledMonster{}, false
	}
	return e.Enemies[e.EnemyIndex], true
}

// OnBoss reports whether the current enemy is the last one.
func (e *Encounter) OnBoss() bool {
	return len(e.Enemies) > 0 && e.EnemyIndex == len(e.Enemies)-1
}

// Pause moves fighting to paused.
func (e *Encounter) Pause() bool {
	if e.Status != StatusFighting {
		return false
	}
	e.Status = StatusPaused
	return true
}

// Resume moves paused back to fighting.
func (e *Encounter) Resume() bool {
	if e.Status != StatusPaused {
		return false
	}
	e.Status = StatusFighting
	return true
}

// Leave tears the encounter down to idle from any other state. Pending
// rewards are discarded.
func (e *Encounter) Leave() bool {
	if e.Status == StatusIdle {
		return false
	}
	*e = *NewEncounter()
	return true
}

// Snapshot assembles the resolver input for the current turn.
func (e *Encounter) Snapshot(player Combatant, party []Combatant) (Snapshot, bool) {
	m, ok := e.Current()
	if !ok || e.Status != StatusFighting {
		return Snapshot{}, false
	}
	return Snapshot{
		Player:    player,
		Party:     party,
		Enemy:     EnemyFrom(m, e.EnemyHealth),
		Turn:      e.Turn,
		Cooldowns: e.Cooldowns,
	}, true
}

// Progress describes what Apply changed.
type Progress struct {
	Defeated *models.ScaledMonster
	Boss     bool
	Victory  bool
	Defeat   bool
}

// Apply commits a resolved turn. A defeated enemy pays its xp and gold into
// Rewards and the next enemy steps up; beating the last one is victory.
// Losing the player is defeat.
func (e *Encounter) Apply(res TurnResult) Progress {
	var p Progress
	if e.Status != StatusFighting {
		return p
	}
	e.appendLog(res.Logs...)
	e.Cooldowns = res.Cooldowns
	e.EnemyHealth = res.EnemyHealth
	e.Turn++

	if res.EnemyDefeated {
		m, _ := e.Current()
		p.Defeated = &m
		p.Boss = e.OnBoss()
		e.Rewards.XP += m.XPReward
		e.Rewards.Gold += m.GoldReward
		e.EnemyIndex++
		if next, ok := e.Current(); ok {
			e.EnemyHealth = next.Stats.Health
		} else {
			e.Status = StatusVictory
			p.Victory = true
			e.appendLog(LogEntry{Turn: e.Turn - 1, Kind: LogVictory, Message: "Victory!"})
		}
		return p
	}
	if res.PlayerDefeated {
		e.Status = StatusDefeat
		p.Defeat = true
		e.appendLog(LogEntry{Turn: e.Turn - 1, Kind: LogDefeat, Target: res.Player.ID, Message: res.Player.Name + " has been defeated."})
	}
	return p
}

// AddLoot records a dropped item in the pending rewards.
func (e *Encounter) AddLoot(item models.Equipment) {
	e.Rewards.Loot = append(e.Rewards.Loot, item)
}

func (e *Encounter) appendLog(entries ...LogEntry) {
	e.Log = append(e.Log, entries...)
	if over := len(e.Log) - MaxLog; over > 0 {
		e.Log = append([]LogEntry(nil), e.Log[over:]...)
	}
}
