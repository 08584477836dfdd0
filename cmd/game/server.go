package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pefman/legacy-idle/internal/content"
	"github.com/pefman/legacy-idle/internal/dungeon"
	"github.com/pefman/legacy-idle/internal/engine"
	"github.com/pefman/legacy-idle/internal/game"
	"github.com/pefman/legacy-idle/internal/inventory"
	"github.com/pefman/legacy-idle/internal/loot"
	"github.com/pefman/legacy-idle/internal/metrics"
	"github.com/pefman/legacy-idle/internal/models"
	"github.com/pefman/legacy-idle/internal/scaling"
	"github.com/pefman/legacy-idle/internal/session"
	"github.com/pefman/legacy-idle/internal/stats"
	"github.com/pefman/legacy-idle/internal/store"
)

// Build metadata injected via -ldflags at build time
var (
	buildVersion = "dev"
	buildTime    = ""
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// catalogSource returns the content the next session is built from.
type catalogSource func(ctx context.Context) (*content.Static, error)

type gameServer struct {
	log      *zap.Logger
	catalog  catalogSource
	cache    scaling.Cache
	store    *store.Store
	records  *stats.Records
	interval time.Duration

	mu      sync.Mutex
	players map[string]*Player
}

func newGameServer(log *zap.Logger, catalog catalogSource, cache scaling.Cache, db *store.Store, interval time.Duration) *gameServer {
	if cache == nil {
		cache = scaling.NewMemoryCache()
	}
	return &gameServer{
		log:      log,
		catalog:  catalog,
		cache:    cache,
		store:    db,
		records:  stats.NewRecords(),
		interval: interval,
		players:  map[string]*Player{},
	}
}

// Player is one connected client and the session it drives.
type Player struct {
	ID   string
	Name string
	Conn *websocket.Conn
	sess *session.Session

	writeMu sync.Mutex
}

type wsMsg struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type clientIn struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ack answers every client action.
type ack struct {
	Action  string `json:"action"`
	OK      bool   `json:"ok"`
	Outcome string `json:"outcome,omitempty"`
	Error   string `json:"error,omitempty"`
}

type turnMsg struct {
	session.Update
	State session.View `json:"state"`
}

func (g *gameServer) routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/ws", g.handleWS).Methods(http.MethodGet)
	r.Handle("/version", metrics.Instrument("/version", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"version": buildVersion,
			"time":    buildTime,
		})
	}))).Methods(http.MethodGet)
	r.Handle("/api/records/today", metrics.Instrument("/api/records/today", http.HandlerFunc(g.handleRecordToday))).Methods(http.MethodGet)
	r.Handle("/api/sessions", metrics.Instrument("/api/sessions", http.HandlerFunc(g.handleSessions))).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	return r
}

func (g *gameServer) handleRecordToday(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	hit, ok := g.records.Today()
	if !ok {
		_ = json.NewEncoder(w).Encode(map[string]any{})
		return
	}
	_ = json.NewEncoder(w).Encode(hit)
}

type sessionEntry struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Status game.Status `json:"status"`
}

func (g *gameServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	out := make([]sessionEntry, 0, len(g.players))
	for _, p := range g.players {
		out = append(out, sessionEntry{ID: p.ID, Name: p.Name, Status: p.sess.Status()})
	}
	g.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// newSession loads the player's save, or rolls a fresh character of class
// when there is none.
func (g *gameServer) newSession(ctx context.Context, name string, class models.Class) (*session.Session, error) {
	cat, err := g.catalog(ctx)
	if err != nil {
		return nil, err
	}
	state, err := g.loadOrCreate(ctx, cat, name, class)
	if err != nil {
		return nil, err
	}
	rng := engine.NewRNG()
	scaler := scaling.New(cat, g.cache)
	items := loot.NewGenerator(rng)
	deps := session.Deps{
		Content:  cat,
		Stats:    stats.NewAggregator(cat),
		Scaler:   scaler,
		Dungeons: dungeon.NewGenerator(scaler, items, rng),
		Loot:     items,
		Resolver: game.NewResolver(rng),
		Rand:     rng,
		Records:  g.records,
		Log:      g.log,
	}
	if g.store != nil {
		deps.Store = g.store
	}
	return session.New(deps, name, state)
}

func (g *gameServer) loadOrCreate(ctx context.Context, cat *content.Static, name string, class models.Class) (models.GameState, error) {
	if g.store != nil {
		state, err := g.store.LoadState(ctx, name)
		if err == nil {
			return state, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return models.GameState{}, err
		}
	}
	return session.NewState(cat, name, class)
}

func (g *gameServer) handleWS(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		name = randomHeroName()
	}
	class := models.Class(r.URL.Query().Get("class"))
	if class == "" {
		class = models.Warrior
	}
	sess, err := g.newSession(r.Context(), name, class)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		g.log.Error("new session", zap.String("name", name), zap.Error(err))
		http.Error(w, "could not start session", http.StatusInternalServerError)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn("ws upgrade", zap.Error(err))
		return
	}
	p := &Player{ID: sess.ID(), Name: name, Conn: conn, sess: sess}
	g.mu.Lock()
	g.players[p.ID] = p
	g.mu.Unlock()
	metrics.ActiveSessions.Inc()
	g.log.Info("ws connect", zap.String("id", p.ID), zap.String("name", name), zap.String("remote", r.RemoteAddr))

	g.sendTo(p, wsMsg{Type: "you", Data: map[string]string{"id": p.ID, "name": name}})
	g.sendTo(p, wsMsg{Type: "state", Data: sess.View()})

	ctx, cancel := context.WithCancel(context.Background())
	go sess.Run(ctx, g.interval, func(up session.Update) {
		g.sendTo(p, wsMsg{Type: "turn", Data: turnMsg{Update: up, State: sess.View()}})
	})
	go g.wsReader(ctx, cancel, p)
}

func (g *gameServer) sendTo(p *Player, m wsMsg) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if p.Conn == nil {
		return
	}
	if err := p.Conn.WriteJSON(m); err != nil {
		g.log.Debug("ws write", zap.String("id", p.ID), zap.Error(err))
	}
}

func (g *gameServer) wsReader(ctx context.Context, cancel context.CancelFunc, p *Player) {
	defer func() {
		cancel()
		p.writeMu.Lock()
		_ = p.Conn.Close()
		p.Conn = nil
		p.writeMu.Unlock()

		g.mu.Lock()
		delete(g.players, p.ID)
		g.mu.Unlock()
		metrics.ActiveSessions.Dec()

		saveCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := p.sess.Save(saveCtx); err != nil {
			g.log.Warn("save on disconnect", zap.String("id", p.ID), zap.Error(err))
		}
		g.log.Info("ws closed", zap.String("id", p.ID), zap.String("name", p.Name))
	}()
	for {
		var in clientIn
		if err := p.Conn.ReadJSON(&in); err != nil {
			g.log.Debug("ws read", zap.String("id", p.ID), zap.Error(err))
			return
		}
		g.log.Debug("ws recv", zap.String("id", p.ID), zap.String("type", in.Type))
		reply := g.dispatch(ctx, p.sess, in)
		g.sendTo(p, reply)
		if reply.Type == "ack" {
			g.sendTo(p, wsMsg{Type: "state", Data: p.sess.View()})
		}
	}
}

type floorReq struct {
	Floor int `json:"floor"`
}

type raidReq struct {
	RaidID string `json:"raid_id"`
}

type itemReq struct {
	ItemID        string      `json:"item_id"`
	Slot          models.Slot `json:"slot,omitempty"`
	AccessorySlot *int        `json:"accessory_slot,omitempty"`
}

type shopReq struct {
	Count int `json:"count"`
}

type retireReq struct {
	Heirlooms []string `json:"heirlooms"`
	Name      string   `json:"name"`
}

// dispatch runs one client message against sess and returns the reply.
func (g *gameServer) dispatch(ctx context.Context, sess *session.Session, in clientIn) wsMsg {
	decode := func(v any) error {
		if len(in.Data) == 0 {
			return nil
		}
		return json.Unmarshal(in.Data, v)
	}
	done := func(ok bool, err error) wsMsg {
		a := ack{Action: in.Type, OK: ok && err == nil}
		if err != nil {
			g.log.Warn("action failed", zap.String("action", in.Type), zap.String("player", sess.Player()), zap.Error(err))
			a.Error = err.Error()
		}
		return wsMsg{Type: "ack", Data: a}
	}
	outcome := func(out inventory.Outcome, err error) wsMsg {
		m := done(out == inventory.OK, err)
		a := m.Data.(ack)
		a.Outcome = out.String()
		m.Data = a
		return m
	}
	bad := func(msg string) wsMsg {
		return wsMsg{Type: "error", Data: map[string]string{"action": in.Type, "message": msg}}
	}

	switch in.Type {
	case "state":
		return wsMsg{Type: "state", Data: sess.View()}
	case "enter":
		var req floorReq
		if err := decode(&req); err != nil {
			return bad("invalid data")
		}
		return done(sess.EnterDungeon(req.Floor))
	case "endless":
		var req floorReq
		if err := decode(&req); err != nil {
			return bad("invalid data")
		}
		return done(sess.EnterEndless(ctx, req.Floor))
	case "raid":
		var req raidReq
		if err := decode(&req); err != nil || req.RaidID == "" {
			return bad("raid_id is required")
		}
		return done(sess.EnterRaid(req.RaidID))
	case "pause":
		return done(sess.Pause(), nil)
	case "resume":
		return done(sess.Resume(), nil)
	case "leave":
		return done(sess.Leave(), nil)
	case "equip":
		var req itemReq
		if err := decode(&req); err != nil || req.ItemID == "" {
			return bad("item_id is required")
		}
		slot := inventory.AutoSlot
		if req.AccessorySlot != nil {
			slot = *req.AccessorySlot
		}
		return outcome(sess.Equip(req.ItemID, slot))
	case "unequip":
		var req itemReq
		if err := decode(&req); err != nil || req.Slot == "" {
			return bad("slot is required")
		}
		slot := 0
		if req.AccessorySlot != nil {
			slot = *req.AccessorySlot
		}
		return outcome(sess.Unequip(req.Slot, slot))
	case "upgrade":
		var req itemReq
		if err := decode(&req); err != nil || req.ItemID == "" {
			return bad("item_id is required")
		}
		return outcome(sess.Upgrade(req.ItemID))
	case "sell":
		var req itemReq
		if err := decode(&req); err != nil || req.ItemID == "" {
			return bad("item_id is required")
		}
		return outcome(sess.Sell(req.ItemID))
	case "shop":
		req := shopReq{Count: 4}
		if err := decode(&req); err != nil {
			return bad("invalid data")
		}
		return wsMsg{Type: "shop", Data: sess.Shop(min(max(req.Count, 1), 8))}
	case "buy":
		var req itemReq
		if err := decode(&req); err != nil || req.ItemID == "" {
			return bad("item_id is required")
		}
		return outcome(sess.Buy(req.ItemID))
	case "retire":
		var req retireReq
		if err := decode(&req); err != nil {
			return bad("invalid data")
		}
		return done(sess.Retire(ctx, req.Heirlooms, strings.TrimSpace(req.Name)))
	}
	return bad("unknown message type")
}

// randomHeroName builds a name for players who did not pick one.
func randomHeroName() string {
	titles := []string{"Brave", "Wandering", "Grim", "Lucky", "Stalwart", "Restless", "Quiet", "Hollow", "Bright", "Ashen"}
	names := []string{"Alden", "Brynn", "Corin", "Dara", "Edric", "Fenna", "Garrick", "Isolde", "Kael", "Maren", "Rowan", "Tamsin"}
	return engine.Pick(nameRNG, titles) + " " + engine.Pick(nameRNG, names)
}

var nameRNG = engine.NewRNG()
