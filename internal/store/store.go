// Package store persists host-side records in SQLite: endless-run progress,
// finished encounters and saved game states.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/pefman/legacy-idle/internal/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is a SQLite-backed record store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies
// migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		var n int
		if err := db.QueryRow(`SELECT COUNT(1) FROM schema_migrations WHERE name = ?`, name).Scan(&n); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if n > 0 {
			continue
		}
		body, err := fs.ReadFile(migrationsFS, "migrations/"+name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)`, name, time.Now().UTC().UnixMilli()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("mark migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}
	return nil
}

// EndlessRun is a character's progress through the endless dungeon. RunID
// seeds consistent floor generation so a resumed run meets the same floors.
type EndlessRun struct {
	CharacterID string    `json:"character_id"`
	RunID       string    `json:"run_id"`
	Floor       int       `json:"floor"`
	BestFloor   int       `json:"best_floor"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EndlessRun loads the run for characterID.
func (s *Store) EndlessRun(ctx context.Context, characterID string) (EndlessRun, error) {
	if err := ctx.Err(); err != nil {
		return EndlessRun{}, err
	}
	var (
		run     EndlessRun
		updated int64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT character_id, run_id, floor, best_floor, updated_at
FROM endless_runs
WHERE character_id = ?
`, characterID).Scan(&run.CharacterID, &run.RunID, &run.Floor, &run.BestFloor, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return EndlessRun{}, ErrNotFound
	}
	if err != nil {
		return EndlessRun{}, fmt.Errorf("load endless run: %w", err)
	}
	run.UpdatedAt = time.UnixMilli(updated).UTC()
	return run, nil
}

// SaveEndlessRun upserts run. BestFloor never decreases.
func (s *Store) SaveEndlessRun(ctx context.Context, run EndlessRun) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(run.CharacterID) == "" {
		return fmt.Errorf("character id is required")
	}
	if strings.TrimSpace(run.RunID) == "" {
		return fmt.Errorf("run id is required")
	}
	if run.UpdatedAt.IsZero() {
		run.UpdatedAt = time.Now().UTC()
	}
	run.BestFloor = max(run.BestFloor, run.Floor)

	_, err := s.db.ExecContext(ctx, `
INSERT INTO endless_runs (character_id, run_id, floor, best_floor, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (character_id) DO UPDATE SET
	run_id = excluded.run_id,
	floor = excluded.floor,
	best_floor = MAX(endless_runs.best_floor, excluded.best_floor),
	updated_at = excluded.updated_at
`, run.CharacterID, run.RunID, run.Floor, run.BestFloor, run.UpdatedAt.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("save endless run: %w", err)
	}
	return nil
}

// EncounterRecord summarizes a finished encounter.
type EncounterRecord struct {
	ID          string    `json:"id"`
	CharacterID string    `json:"character_id"`
	Kind        string    `json:"kind"`
	SourceID    string    `json:"source_id"`
	Floor       int       `json:"floor"`
	Status      string    `json:"status"`
	Turns       int       `json:"turns"`
	XP          int       `json:"xp"`
	Gold        int       `json:"gold"`
	Items       int       `json:"items"`
	CreatedAt   time.Time `json:"created_at"`
}

// RecordEncounter stores rec, assigning an id and timestamp when missing.
func (s *Store) RecordEncounter(ctx context.Context, rec EncounterRecord) (EncounterRecord, error) {
	if err := ctx.Err(); err != nil {
		return rec, err
	}
	if strings.TrimSpace(rec.CharacterID) == "" {
		return rec, fmt.Errorf("character id is required")
	}
	if strings.TrimSpace(rec.Status) == "" {
		return rec, fmt.Errorf("status is required")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO encounter_records (
	id, character_id, kind, source_id, floor, status, turns, xp, gold, items, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, rec.ID, rec.CharacterID, rec.Kind, rec.SourceID, rec.Floor, rec.Status,
		rec.Turns, rec.XP, rec.Gold, rec.Items, rec.CreatedAt.UTC().UnixMilli())
	if err != nil {
		return rec, fmt.Errorf("record encounter: %w", err)
	}
	return rec, nil
}

// ListEncounters returns a character's records, newest first.
func (s *Store) ListEncounters(ctx context.Context, characterID string, limit int) ([]EncounterRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, character_id, kind, source_id, floor, status, turns, xp, gold, items, created_at
FROM encounter_records
WHERE character_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?
`, characterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list encounters: %w", err)
	}
	defer rows.Close()

	out := make([]EncounterRecord, 0, limit)
	for rows.Next() {
		var (
			rec     EncounterRecord
			created int64
		)
		if err := rows.Scan(&rec.ID, &rec.CharacterID, &rec.Kind, &rec.SourceID, &rec.Floor, &rec.Status,
			&rec.Turns, &rec.XP, &rec.Gold, &rec.Items, &created); err != nil {
			return nil, fmt.Errorf("scan encounter: %w", err)
		}
		rec.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate encounters: %w", err)
	}
	return out, nil
}

// SaveState stores a player's committed game state.
func (s *Store) SaveState(ctx context.Context, player string, state models.GameState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(player) == "" {
		return fmt.Errorf("player is required")
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO saves (player, state, updated_at) VALUES (?, ?, ?)
ON CONFLICT (player) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at
`, player, string(raw), time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// LoadState loads a player's saved state.
func (s *Store) LoadState(ctx context.Context, player string) (models.GameState, error) {
	if err := ctx.Err(); err != nil {
		return models.GameState{}, err
	}
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT state FROM saves WHERE player = ?`, player).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return models.GameState{}, ErrNotFound
	}
	if err != nil {
		return models.GameState{}, fmt.Errorf("load state: %w", err)
	}
	var state models.GameState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return models.GameState{}, fmt.Errorf("decode state: %w", err)
	}
	return state, nil
}
