package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pefman/legacy-idle/internal/content"
	"github.com/pefman/legacy-idle/internal/dungeon"
	"github.com/pefman/legacy-idle/internal/engine"
	"github.com/pefman/legacy-idle/internal/game"
	"github.com/pefman/legacy-idle/internal/loot"
	"github.com/pefman/legacy-idle/internal/metrics"
	"github.com/pefman/legacy-idle/internal/models"
	"github.com/pefman/legacy-idle/internal/scaling"
	"github.com/pefman/legacy-idle/internal/stats"
	"github.com/pefman/legacy-idle/internal/store"
)

type server struct {
	log      *zap.Logger
	catalog  *content.Static
	stats    *stats.Aggregator
	scaler   *scaling.Scaler
	dungeons *dungeon.Generator
	records  *stats.Records
	store    *store.Store
	weights  loot.ClassWeights
	// source builds the rng of a simulated turn; seed 0 means unseeded.
	source func(seed int64) engine.Source
}

func newServer(log *zap.Logger, catalog *content.Static, records *stats.Records, db *store.Store) *server {
	scaler := scaling.New(catalog, nil)
	rng := engine.NewRNG()
	return &server{
		log:      log,
		catalog:  catalog,
		stats:    stats.NewAggregator(catalog),
		scaler:   scaler,
		dungeons: dungeon.NewGenerator(scaler, loot.NewGenerator(rng), rng),
		records:  records,
		store:    db,
		weights:  loot.DefaultClassWeights(),
		source: func(seed int64) engine.Source {
			if seed == 0 {
				return engine.NewRNG()
			}
			return engine.NewRandSource(seed)
		},
	}
}

func (s *server) routes() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.logging)

	handle := func(path string, h http.HandlerFunc, methods ...string) {
		api.Handle(path, metrics.Instrument("/api"+path, h)).Methods(methods...)
	}
	handle("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	}, http.MethodGet)

	handle("/content", s.getContent, http.MethodGet)
	handle("/classes", s.list(func(t content.Tables) any { return t.Classes }), http.MethodGet)
	handle("/items", s.list(func(t content.Tables) any { return t.Items }), http.MethodGet)
	handle("/sets", s.list(func(t content.Tables) any { return t.Sets }), http.MethodGet)
	handle("/monsters", s.list(func(t content.Tables) any { return t.Monsters }), http.MethodGet)
	handle("/abilities", s.list(func(t content.Tables) any { return t.Abilities }), http.MethodGet)
	handle("/raids", s.list(func(t content.Tables) any { return t.Raids }), http.MethodGet)

	handle("/monsters/{id}/scaled", s.getScaledMonster, http.MethodGet)
	handle("/dungeons/endless/{floor}", s.getEndlessFloor, http.MethodGet)
	handle("/loot/roll", s.getLootRoll, http.MethodGet)

	handle("/sim/turn", s.postTurn, http.MethodPost)
	handle("/sim/recalculate", s.postRecalculate, http.MethodPost)
	handle("/sim/distribute", s.postDistribute, http.MethodPost)

	handle("/records", s.postRecord, http.MethodPost)
	handle("/records/today", s.getRecordToday, http.MethodGet)
	handle("/records/{character}", s.getRecordBest, http.MethodGet)
	handle("/characters/{id}/encounters", s.getEncounters, http.MethodGet)

	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	return withCORS(r)
}

func (s *server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":   http.StatusText(code),
		"message": msg,
		"status":  code,
	})
}

// writeLookupError maps content misses to 404 and everything else to 500.
func (s *server) writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, content.ErrNotFound) || errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.log.Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

// simple CORS for GET/POST/OPTIONS
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}

func queryFloat(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return v, nil
}

func (s *server) getContent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.catalog.Tables())
}

func (s *server) list(pick func(content.Tables) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, pick(s.catalog.Tables()))
	}
}

// GET /api/monsters/{id}/scaled?level=&difficulty=&floor=
func (s *server) getScaledMonster(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	level, err := queryInt(r, "level", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	diff, err := queryFloat(r, "difficulty", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	floor, err := queryInt(r, "floor", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if level < 1 || diff <= 0 || floor < 0 {
		writeError(w, http.StatusBadRequest, "level must be >= 1, difficulty > 0, floor >= 0")
		return
	}
	m, err := s.scaler.Scale(id, level, diff, floor)
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	writeJSON(w, m)
}

// GET /api/dungeons/endless/{floor}?level=&id=&biome=
func (s *server) getEndlessFloor(w http.ResponseWriter, r *http.Request) {
	floor, err := strconv.Atoi(mux.Vars(r)["floor"])
	if err != nil || floor < 1 {
		writeError(w, http.StatusBadRequest, "floor must be a positive integer")
		return
	}
	level, err := queryInt(r, "level", 1)
	if err != nil || level < 1 {
		writeError(w, http.StatusBadRequest, "level must be a positive integer")
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		id = fmt.Sprintf("endless-%d", floor)
	}
	biome := models.Biome(r.URL.Query().Get("biome"))
	if _, ok := dungeon.LookupBiome(biome); biome != "" && !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown biome %q", biome))
		return
	}
	d, err := s.dungeons.GenerateConsistent(floor, biome, level, id)
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	writeJSON(w, d)
}

// GET /api/loot/roll?level=&difficulty=&floor=&seed=&index=
func (s *server) getLootRoll(w http.ResponseWriter, r *http.Request) {
	level, err := queryInt(r, "level", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	diff, err := queryFloat(r, "difficulty", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	floor, err := queryInt(r, "floor", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if r.URL.Query().Get("seed") == "" {
		writeJSON(w, loot.NewGenerator(s.source(0)).GenerateItem(max(1, level), diff, floor))
		return
	}
	seed, err := queryFloat(r, "seed", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	index, err := queryInt(r, "index", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, loot.SeededItem(max(1, level), diff, floor, seed, index))
}

type turnRequest struct {
	Snapshot simSnapshot `json:"snapshot"`
	Seed     int64       `json:"seed,omitempty"`
}

// simSnapshot is game.Snapshot as clients send it: absent health or mana
// means full.
type simSnapshot struct {
	Player    simCombatant   `json:"player"`
	Party     []simCombatant `json:"party"`
	Enemy     simEnemy       `json:"enemy"`
	Turn      int            `json:"turn"`
	Cooldowns map[string]int `json:"cooldowns"`
}

type simCombatant struct {
	game.Combatant
	Health *int `json:"health"`
	Mana   *int `json:"mana"`
}

type simEnemy struct {
	game.Enemy
	Health *int `json:"health"`
}

func orMax(v *int, full int) int {
	if v == nil {
		return full
	}
	return *v
}

func (c simCombatant) combatant() game.Combatant {
	out := c.Combatant
	out.Health = orMax(c.Health, out.Stats.Health)
	out.Mana = orMax(c.Mana, out.Stats.Mana)
	return out
}

func (s simSnapshot) snapshot() game.Snapshot {
	snap := game.Snapshot{
		Player:    s.Player.combatant(),
		Enemy:     s.Enemy.Enemy,
		Turn:      s.Turn,
		Cooldowns: s.Cooldowns,
	}
	snap.Enemy.Health = orMax(s.Enemy.Health, s.Enemy.Stats.Health)
	for _, c := range s.Party {
		snap.Party = append(snap.Party, c.combatant())
	}
	if snap.Cooldowns == nil {
		snap.Cooldowns = map[string]int{}
	}
	if snap.Turn < 1 {
		snap.Turn = 1
	}
	return snap
}

// POST /api/sim/turn
func (s *server) postTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	snap := req.Snapshot.snapshot()
	res := game.NewResolver(s.source(req.Seed)).ResolveTurn(snap)
	metrics.TurnsResolved.Inc()
	for _, l := range res.Logs {
		if l.Actor != snap.Player.ID || (l.Kind != game.LogAttack && l.Kind != game.LogAbility) {
			continue
		}
		s.records.Observe(stats.Hit{
			CharacterID: snap.Player.ID,
			Actor:       l.Actor,
			Target:      l.Target,
			Source:      string(l.Kind),
			Damage:      l.Amount,
			Critical:    l.Critical,
		})
	}
	writeJSON(w, res)
}

type recalculateRequest struct {
	Hero   models.Hero      `json:"hero"`
	Legacy models.GameStats `json:"legacy"`
}

// POST /api/sim/recalculate
func (s *server) postRecalculate(w http.ResponseWriter, r *http.Request) {
	var req recalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	res, err := s.stats.Recalculate(req.Hero, req.Legacy)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.writeLookupError(w, err)
		return
	}
	writeJSON(w, res)
}

type distributeRequest struct {
	Items  []models.Equipment  `json:"items"`
	Player models.Character    `json:"player"`
	Party  []models.Adventurer `json:"party"`
}

// POST /api/sim/distribute
func (s *server) postDistribute(w http.ResponseWriter, r *http.Request) {
	var req distributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	writeJSON(w, loot.Distribute(req.Items, req.Player, req.Party, s.weights))
}
