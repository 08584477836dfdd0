package main

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/pefman/legacy-idle/internal/stats"
)

// POST /api/records
// Body: { character_id, actor, target, source, damage, critical }
func (s *server) postRecord(w http.ResponseWriter, r *http.Request) {
	var hit stats.Hit
	if err := json.NewDecoder(r.Body).Decode(&hit); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(hit.CharacterID) == "" {
		writeError(w, http.StatusBadRequest, "missing character_id")
		return
	}
	if hit.Damage <= 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.records.Observe(hit)
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/records/today
func (s *server) getRecordToday(w http.ResponseWriter, r *http.Request) {
	hit, ok := s.records.Today()
	if !ok {
		writeJSON(w, map[string]any{})
		return
	}
	writeJSON(w, hit)
}

// GET /api/records/{character}
func (s *server) getRecordBest(w http.ResponseWriter, r *http.Request) {
	hit, ok := s.records.Best(mux.Vars(r)["character"])
	if !ok {
		writeError(w, http.StatusNotFound, "no record")
		return
	}
	writeJSON(w, hit)
}

// GET /api/characters/{id}/encounters?limit=
func (s *server) getEncounters(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "no store configured")
		return
	}
	limit, err := queryInt(r, "limit", 20)
	if err != nil || limit < 1 {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	recs, err := s.store.ListEncounters(r.Context(), mux.Vars(r)["id"], limit)
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	writeJSON(w, recs)
}
