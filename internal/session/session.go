// Package session hosts one player's game: the committed GameState, the
// encounter being fought and the glue that pays out rewards, distributes loot
// and persists progress between turns.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pefman/legacy-idle/internal/content"
	"github.com/pefman/legacy-idle/internal/dungeon"
	"github.com/pefman/legacy-idle/internal/engine"
	"github.com/pefman/legacy-idle/internal/game"
	"github.com/pefman/legacy-idle/internal/inventory"
	"github.com/pefman/legacy-idle/internal/legacy"
	"github.com/pefman/legacy-idle/internal/loot"
	"github.com/pefman/legacy-idle/internal/metrics"
	"github.com/pefman/legacy-idle/internal/models"
	"github.com/pefman/legacy-idle/internal/progression"
	"github.com/pefman/legacy-idle/internal/stats"
	"github.com/pefman/legacy-idle/internal/store"
)

// DropChance is the chance a regular enemy drops a loot-table item. Bosses
// always drop.
const DropChance = 0.35

// Content is the content surface a session reads.
type Content interface {
	content.Catalog
	progression.AbilityBook
}

// Store persists progress. *store.Store satisfies it.
type Store interface {
	EndlessRun(ctx context.Context, characterID string) (store.EndlessRun, error)
	SaveEndlessRun(ctx context.Context, run store.EndlessRun) error
	RecordEncounter(ctx context.Context, rec store.EncounterRecord) (store.EncounterRecord, error)
	SaveState(ctx context.Context, player string, state models.GameState) error
}

// Deps wires a session. Store and Records are optional.
type Deps struct {
	Content  Content
	Stats    *stats.Aggregator
	Scaler   dungeon.Scaler
	Dungeons *dungeon.Generator
	Loot     *loot.Generator
	Resolver *game.Resolver
	Weights  loot.ClassWeights
	Rand     engine.Source
	Store    Store
	Records  *stats.Records
	Log      *zap.Logger
}

// Update is what one tick produced.
type Update struct {
	Turn          int                 `json:"turn"`
	Logs          []game.LogEntry     `json:"logs"`
	Status        game.Status         `json:"status"`
	Drops         []models.Equipment  `json:"drops,omitempty"`
	Distributions []loot.Distribution `json:"distributions,omitempty"`
	LevelsGained  int                 `json:"levels_gained,omitempty"`
}

// View is a copy of everything a client renders.
type View struct {
	SessionID string                    `json:"session_id"`
	State     models.GameState          `json:"state"`
	Encounter game.Encounter            `json:"encounter"`
	Dungeon   *models.ProceduralDungeon `json:"dungeon,omitempty"`
	Raid      *models.Raid              `json:"raid,omitempty"`
	Shop      []models.Equipment        `json:"shop,omitempty"`
}

// Session is safe for concurrent use; every operation holds the lock for
// its whole duration.
type Session struct {
	mu      sync.Mutex
	id      string
	player  string
	deps    Deps
	log     *zap.Logger
	state   models.GameState
	enc     *game.Encounter
	dungeon *models.ProceduralDungeon
	raid    *models.Raid
	runID   string
	shop    []models.Equipment
}

// New hosts state for player. Every hero learns the abilities its level
// unlocks and gets freshly aggregated stats.
func New(deps Deps, player string, state models.GameState) (*Session, error) {
	if deps.Weights == nil {
		deps.Weights = loot.DefaultClassWeights()
	}
	if deps.Rand == nil {
		deps.Rand = engine.NewRNG()
	}
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		id:     uuid.NewString(),
		player: player,
		deps:   deps,
		log:    log.With(zap.String("player", player)),
		state:  state.Clone(),
		enc:    game.NewEncounter(),
	}
	progression.LearnAbilities(&s.state.Character.Hero, deps.Content)
	for i := range s.state.Party {
		progression.LearnAbilities(&s.state.Party[i].Hero, deps.Content)
	}
	if err := s.recalculate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ID is the session id.
func (s *Session) ID() string { return s.id }

// Player is the name the session was opened for.
func (s *Session) Player() string { return s.player }

// View returns a deep copy of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	enc := *s.enc
	enc.Enemies = append([]models.ScaledMonster(nil), s.enc.Enemies...)
	enc.Log = append([]game.LogEntry(nil), s.enc.Log...)
	enc.Rewards.Loot = append([]models.Equipment(nil), s.enc.Rewards.Loot...)
	enc.Cooldowns = make(map[string]int, len(s.enc.Cooldowns))
	for k, v := range s.enc.Cooldowns {
		enc.Cooldowns[k] = v
	}
	v := View{
		SessionID: s.id,
		State:     s.state.Clone(),
		Encounter: enc,
		Shop:      append([]models.Equipment(nil), s.shop...),
	}
	if s.dungeon != nil {
		d := *s.dungeon
		v.Dungeon = &d
	}
	if s.raid != nil {
		r := *s.raid
		v.Raid = &r
	}
	return v
}

// State returns a copy of the committed game state.
func (s *Session) State() models.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Status is the encounter status.
func (s *Session) Status() game.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Status
}

func (s *Session) recalculate() error {
	c, err := s.deps.Stats.ApplyCharacter(s.state.Character)
	if err != nil {
		return fmt.Errorf("recalculate %s: %w", s.state.Character.ID, err)
	}
	s.state.Character = c
	for i, a := range s.state.Party {
		adv, err := s.deps.Stats.ApplyAdventurer(a)
		if err != nil {
			return fmt.Errorf("recalculate %s: %w", a.ID, err)
		}
		s.state.Party[i] = adv
	}
	return nil
}

// EnterDungeon starts a randomly generated floor at the character's level.
// It reports false when an encounter is already running.
func (s *Session) EnterDungeon(floor int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enc.Status != game.StatusIdle {
		return false, nil
	}
	d, err := s.deps.Dungeons.Generate(max(1, floor), s.state.Character.Level)
	if err != nil {
		return false, err
	}
	return s.startDungeon(d, false), nil
}

// EnterEndless starts an endless floor. Floors are generated from the
// character's run id, so a floor always holds the same content for one run.
// A floor below 1 resumes the stored run floor.
func (s *Session) EnterEndless(ctx context.Context, floor int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enterEndless(ctx, floor)
}

func (s *Session) enterEndless(ctx context.Context, floor int) (bool, error) {
	if s.enc.Status != game.StatusIdle {
		return false, nil
	}
	saved, err := s.endlessRun(ctx)
	if err != nil {
		return false, err
	}
	if floor < 1 {
		floor = max(1, saved)
	}
	id := fmt.Sprintf("%s-%d", s.runID, floor)
	d, err := s.deps.Dungeons.GenerateConsistent(floor, "", s.state.Character.Level, id)
	if err != nil {
		return false, err
	}
	return s.startDungeon(d, true), nil
}

// endlessRun makes sure runID is set and returns the stored floor.
func (s *Session) endlessRun(ctx context.Context) (int, error) {
	charID := s.state.Character.ID
	if s.deps.Store == nil {
		if s.runID == "" {
			s.runID = uuid.NewString()
		}
		return 0, nil
	}
	run, err := s.deps.Store.EndlessRun(ctx, charID)
	switch {
	case err == nil:
		s.runID = run.RunID
		return run.Floor, nil
	case errors.Is(err, store.ErrNotFound):
		if s.runID == "" {
			s.runID = uuid.NewString()
		}
		run = store.EndlessRun{CharacterID: charID, RunID: s.runID, Floor: 1}
		if err := s.deps.Store.SaveEndlessRun(ctx, run); err != nil {
			s.log.Warn("save endless run", zap.Error(err))
		}
		return run.Floor, nil
	default:
		return 0, fmt.Errorf("load endless run: %w", err)
	}
}

func (s *Session) startDungeon(d models.ProceduralDungeon, endless bool) bool {
	if !s.enc.Start(game.EncounterDungeon, d.ID, d.Floor, endless, dungeon.Enemies(d)) {
		return false
	}
	s.dungeon = &d
	s.raid = nil
	s.log.Info("dungeon entered",
		zap.String("dungeon", d.ID),
		zap.Int("floor", d.Floor),
		zap.String("biome", string(d.Biome)),
		zap.Float64("difficulty", d.Difficulty),
	)
	return true
}

// EnterRaid starts a raid. It reports false when an encounter is running or
// the character is below the raid's level requirement.
func (s *Session) EnterRaid(raidID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enc.Status != game.StatusIdle {
		return false, nil
	}
	raid, err := s.deps.Content.Raid(raidID)
	if err != nil {
		return false, err
	}
	level := s.state.Character.Level
	if level < raid.LevelRequirement {
		return false, nil
	}
	boss, err := s.deps.Scaler.Scale(raid.BossID, level, raid.Difficulty, 0)
	if err != nil {
		return false, fmt.Errorf("raid %s: %w", raid.ID, err)
	}
	if !s.enc.Start(game.EncounterRaid, raid.ID, 0, false, []models.ScaledMonster{boss}) {
		return false, nil
	}
	s.raid = &raid
	s.dungeon = nil
	s.log.Info("raid entered", zap.String("raid", raid.ID), zap.String("boss", boss.Name))
	return true, nil
}

// Pause stops ticks from resolving turns.
func (s *Session) Pause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Pause()
}

// Resume continues a paused encounter.
func (s *Session) Resume() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Resume()
}

// Leave abandons the encounter and heals everyone. Unpaid rewards are lost.
func (s *Session) Leave() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leave()
}

func (s *Session) leave() bool {
	if !s.enc.Leave() {
		return false
	}
	s.dungeon = nil
	s.raid = nil
	s.state.Character.ResetTransient()
	for i := range s.state.Party {
		s.state.Party[i].ResetTransient()
	}
	return true
}

// Tick resolves one turn. It reports false when nothing is being fought.
func (s *Session) Tick(ctx context.Context) (Update, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enc.Status != game.StatusFighting {
		return Update{}, false, nil
	}
	player, party, err := s.combatants()
	if err != nil {
		return Update{}, false, err
	}
	snap, ok := s.enc.Snapshot(player, party)
	if !ok {
		return Update{}, false, nil
	}
	res := s.deps.Resolver.ResolveTurn(snap)
	metrics.TurnsResolved.Inc()
	s.writeBack(res)
	s.observe(res.Logs)

	prog := s.enc.Apply(res)
	up := Update{Turn: snap.Turn, Logs: res.Logs}
	if prog.Defeated != nil {
		metrics.MonstersDefeated.Inc()
		item, dropped, err := s.drop(prog.Boss)
		if err != nil {
			s.log.Warn("drop skipped", zap.String("enemy", prog.Defeated.ID), zap.Error(err))
		} else if dropped {
			s.enc.AddLoot(item)
			up.Drops = append(up.Drops, item)
			metrics.LootDropped.WithLabelValues(string(item.Rarity)).Inc()
		}
	}
	if prog.Victory || prog.Defeat {
		up.Logs = append(up.Logs, s.enc.Log[len(s.enc.Log)-1])
	}
	switch {
	case prog.Victory:
		err = s.victory(ctx, &up)
	case prog.Defeat:
		s.defeat(ctx)
	}
	up.Status = s.enc.Status
	return up, true, err
}

func (s *Session) combatants() (game.Combatant, []game.Combatant, error) {
	player, err := game.FromHero(game.KindPlayer, s.state.Character.Hero, s.deps.Content)
	if err != nil {
		return game.Combatant{}, nil, err
	}
	party := make([]game.Combatant, 0, len(s.state.Party))
	for _, a := range s.state.Party {
		c, err := game.FromHero(game.KindCompanion, a.Hero, s.deps.Content)
		if err != nil {
			return game.Combatant{}, nil, err
		}
		party = append(party, c)
	}
	return player, party, nil
}

func (s *Session) writeBack(res game.TurnResult) {
	s.state.Character.CurrentHealth = models.Int(res.Player.Health)
	s.state.Character.CurrentMana = models.Int(res.Player.Mana)
	for i := range s.state.Party {
		if i >= len(res.Party) {
			break
		}
		s.state.Party[i].CurrentHealth = models.Int(res.Party[i].Health)
		s.state.Party[i].CurrentMana = models.Int(res.Party[i].Mana)
	}
}

func (s *Session) observe(logs []game.LogEntry) {
	if s.deps.Records == nil {
		return
	}
	now := time.Now()
	for _, l := range logs {
		if l.Kind != game.LogAttack && l.Kind != game.LogAbility {
			continue
		}
		if !s.isHero(l.Actor) {
			continue
		}
		source := l.Ability
		if source == "" {
			source = string(l.Kind)
		}
		s.deps.Records.Observe(stats.Hit{
			CharacterID: s.state.Character.ID,
			Actor:       l.Actor,
			Target:      l.Target,
			Source:      source,
			Damage:      l.Amount,
			Critical:    l.Critical,
			At:          now,
		})
	}
}

func (s *Session) isHero(id string) bool {
	if id == s.state.Character.ID {
		return true
	}
	for _, a := range s.state.Party {
		if a.ID == id {
			return true
		}
	}
	return false
}

// drop rolls a loot-table item for a defeated enemy. Drops get fresh ids so
// repeated drops of one table entry stay distinct in the inventory.
func (s *Session) drop(boss bool) (models.Equipment, bool, error) {
	if !boss && !engine.Chance(s.deps.Rand, DropChance) {
		return models.Equipment{}, false, nil
	}
	var item models.Equipment
	switch {
	case s.dungeon != nil && len(s.dungeon.Loot) > 0:
		item = engine.Pick(s.deps.Rand, s.dungeon.Loot).Clone()
	case s.raid != nil && len(s.raid.LootTable) > 0:
		it, err := s.deps.Content.Item(engine.Pick(s.deps.Rand, s.raid.LootTable))
		if err != nil {
			return models.Equipment{}, false, fmt.Errorf("raid loot: %w", err)
		}
		item = it.Clone()
	default:
		return models.Equipment{}, false, nil
	}
	item.ID = "loot-" + uuid.NewString()
	return item, true, nil
}

func (s *Session) victory(ctx context.Context, up *Update) error {
	r := s.enc.Rewards
	hero, gained := progression.AwardExperience(s.state.Character.Hero, r.XP, s.deps.Content)
	s.state.Character.Hero = hero
	up.LevelsGained = gained
	for i, a := range s.state.Party {
		h, _ := progression.AwardExperience(a.Hero, r.XP, s.deps.Content)
		s.state.Party[i].Hero = h
	}
	s.state.Gold += r.Gold

	dist := loot.Distribute(r.Loot, s.state.Character, s.state.Party, s.deps.Weights)
	s.state.Party = dist.Party
	s.state.Inventory = append(s.state.Inventory, dist.PlayerItems...)
	up.Distributions = dist.Distributions
	if err := s.recalculate(); err != nil {
		return err
	}

	s.log.Info("encounter won",
		zap.String("source", s.enc.SourceID),
		zap.Int("xp", r.XP),
		zap.Int("gold", r.Gold),
		zap.Int("items", len(r.Loot)),
		zap.Int("levels", gained),
	)
	s.finish(ctx)
	if s.enc.Endless && s.deps.Store != nil {
		run := store.EndlessRun{CharacterID: s.state.Character.ID, RunID: s.runID, Floor: s.enc.Floor + 1}
		if err := s.deps.Store.SaveEndlessRun(ctx, run); err != nil {
			s.log.Warn("save endless run", zap.Error(err))
		}
	}
	return nil
}

func (s *Session) defeat(ctx context.Context) {
	s.log.Info("encounter lost", zap.String("source", s.enc.SourceID), zap.Int("turn", s.enc.Turn-1))
	s.finish(ctx)
}

// finish records the ended encounter and saves the state.
func (s *Session) finish(ctx context.Context) {
	metrics.EncountersFinished.WithLabelValues(string(s.enc.Kind), string(s.enc.Status)).Inc()
	if s.deps.Store == nil {
		return
	}
	rec := store.EncounterRecord{
		CharacterID: s.state.Character.ID,
		Kind:        string(s.enc.Kind),
		SourceID:    s.enc.SourceID,
		Floor:       s.enc.Floor,
		Status:      string(s.enc.Status),
		Turns:       s.enc.Turn - 1,
	}
	if s.enc.Status == game.StatusVictory {
		rec.XP = s.enc.Rewards.XP
		rec.Gold = s.enc.Rewards.Gold
		rec.Items = len(s.enc.Rewards.Loot)
	}
	if _, err := s.deps.Store.RecordEncounter(ctx, rec); err != nil {
		s.log.Warn("record encounter", zap.Error(err))
	}
	if err := s.deps.Store.SaveState(ctx, s.player, s.state); err != nil {
		s.log.Warn("save state", zap.Error(err))
	}
}

// Continue moves a finished encounter on: an endless victory enters the
// next floor, anything else returns to idle.
func (s *Session) Continue(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, endless, floor := s.enc.Status, s.enc.Endless, s.enc.Floor
	if status != game.StatusVictory && status != game.StatusDefeat {
		return false, nil
	}
	s.leave()
	if status != game.StatusVictory || !endless {
		return true, nil
	}
	return s.enterEndless(ctx, floor+1)
}

// Run ticks every interval until ctx is done, passing each resolved turn to
// notify. Finished encounters are continued automatically.
func (s *Session) Run(ctx context.Context, interval time.Duration, notify func(Update)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		up, ok, err := s.Tick(ctx)
		if err != nil {
			s.log.Error("tick", zap.Error(err))
		}
		if !ok {
			continue
		}
		if notify != nil {
			notify(up)
		}
		if up.Status == game.StatusVictory || up.Status == game.StatusDefeat {
			if _, err := s.Continue(ctx); err != nil {
				s.log.Error("continue", zap.Error(err))
			}
		}
	}
}

// Save writes the committed state to the store, if there is one.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deps.Store == nil {
		return nil
	}
	return s.deps.Store.SaveState(ctx, s.player, s.state)
}

// Equip moves an inventory item onto the character.
func (s *Session) Equip(itemID string, accessorySlot int) (inventory.Outcome, error) {
	return s.mutate(func(st models.GameState) (models.GameState, inventory.Outcome) {
		return inventory.Equip(st, itemID, accessorySlot)
	})
}

// Unequip moves an equipped item back to the inventory.
func (s *Session) Unequip(slot models.Slot, accessorySlot int) (inventory.Outcome, error) {
	return s.mutate(func(st models.GameState) (models.GameState, inventory.Outcome) {
		return inventory.Unequip(st, slot, accessorySlot)
	})
}

// Upgrade raises an item's upgrade level for gold.
func (s *Session) Upgrade(itemID string) (inventory.Outcome, error) {
	return s.mutate(func(st models.GameState) (models.GameState, inventory.Outcome) {
		return inventory.Upgrade(st, itemID)
	})
}

// Sell sells an inventory item.
func (s *Session) Sell(itemID string) (inventory.Outcome, error) {
	return s.mutate(func(st models.GameState) (models.GameState, inventory.Outcome) {
		return inventory.Sell(st, itemID)
	})
}

// Shop rerolls the shop stock.
func (s *Session) Shop(n int) []models.Equipment {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shop = inventory.ShopStock(s.deps.Loot, s.state.Character.Level, n)
	return append([]models.Equipment(nil), s.shop...)
}

// Buy purchases an item from the current shop stock.
func (s *Session) Buy(itemID string) (inventory.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i, it := range s.shop {
		if it.ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return inventory.NotFound, nil
	}
	next, out := inventory.Buy(s.state, s.shop[idx])
	if out != inventory.OK {
		return out, nil
	}
	s.state = next
	s.shop = append(s.shop[:idx], s.shop[idx+1:]...)
	return out, nil
}

func (s *Session) mutate(fn func(models.GameState) (models.GameState, inventory.Outcome)) (inventory.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, out := fn(s.state)
	if out != inventory.OK {
		return out, nil
	}
	s.state = next
	return out, s.recalculate()
}

// Retire replaces the character with an heir. Only an idle session can
// retire.
func (s *Session) Retire(ctx context.Context, heirloomIDs []string, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enc.Status != game.StatusIdle {
		return false, nil
	}
	prev := s.state.Character
	s.state = legacy.Retire(s.state, heirloomIDs, name)
	progression.LearnAbilities(&s.state.Character.Hero, s.deps.Content)
	s.runID = ""
	s.shop = nil
	if err := s.recalculate(); err != nil {
		return false, err
	}
	s.log.Info("character retired",
		zap.String("ancestor", prev.ID),
		zap.String("heir", s.state.Character.ID),
		zap.Int("generation", s.state.Character.Generation),
	)
	if s.deps.Store != nil {
		if err := s.deps.Store.SaveState(ctx, s.player, s.state); err != nil {
			s.log.Warn("save state", zap.Error(err))
		}
	}
	return true, nil
}
