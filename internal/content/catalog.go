// Package content holds the static content tables the engine consumes:
// classes, item templates, item sets, monsters, abilities and raids.
//
// The engine never generates or validates this data beyond existence
// checks. A lookup of an unknown id is a content inconsistency and returns
// an error wrapping ErrNotFound.
package content

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pefman/legacy-idle/internal/models"
)

// ErrNotFound is wrapped by every lookup of an unknown id.
var ErrNotFound = errors.New("content not found")

// Catalog is the read-only lookup surface injected into the engine.
type Catalog interface {
	Class(id models.Class) (models.ClassDef, error)
	Item(id string) (models.Equipment, error)
	Monster(id string) (models.MonsterTemplate, error)
	Set(id string) (models.SetDef, error)
	Ability(id string) (models.Ability, error)
	Raid(id string) (models.Raid, error)
}

// Tables is the serialized form of a content bundle.
type Tables struct {
	Classes   []models.ClassDef        `json:"classes"`
	Items     []models.Equipment       `json:"items"`
	Sets      []models.SetDef          `json:"sets"`
	Monsters  []models.MonsterTemplate `json:"monsters"`
	Abilities []models.Ability         `json:"abilities"`
	Raids     []models.Raid            `json:"raids"`
}

// Static is an in-memory Catalog built from Tables.
type Static struct {
	tables    Tables
	classes   map[models.Class]models.ClassDef
	items     map[string]models.Equipment
	sets      map[string]models.SetDef
	monsters  map[string]models.MonsterTemplate
	abilities map[string]models.Ability
	raids     map[string]models.Raid
}

// NewStatic indexes t. Duplicate ids are rejected.
func NewStatic(t Tables) (*Static, error) {
	s := &Static{
		tables:    t,
		classes:   make(map[models.Class]models.ClassDef, len(t.Classes)),
		items:     make(map[string]models.Equipment, len(t.Items)),
		sets:      make(map[string]models.SetDef, len(t.Sets)),
		monsters:  make(map[string]models.MonsterTemplate, len(t.Monsters)),
		abilities: make(map[string]models.Ability, len(t.Abilities)),
		raids:     make(map[string]models.Raid, len(t.Raids)),
	}
	for _, c := range t.Classes {
		if _, dup := s.classes[c.ID]; dup {
			return nil, fmt.Errorf("duplicate class %q", c.ID)
		}
		s.classes[c.ID] = c
	}
	for _, it := range t.Items {
		if _, dup := s.items[it.ID]; dup {
			return nil, fmt.Errorf("duplicate item %q", it.ID)
		}
		s.items[it.ID] = it
	}
	for _, set := range t.Sets {
		if _, dup := s.sets[set.ID]; dup {
			return nil, fmt.Errorf("duplicate set %q", set.ID)
		}
		s.sets[set.ID] = set
	}
	for _, m := range t.Monsters {
		if _, dup := s.monsters[m.ID]; dup {
			return nil, fmt.Errorf("duplicate monster %q", m.ID)
		}
		s.monsters[m.ID] = m
	}
	for _, a := range t.Abilities {
		if _, dup := s.abilities[a.ID]; dup {
			return nil, fmt.Errorf("duplicate ability %q", a.ID)
		}
		s.abilities[a.ID] = a
	}
	for _, r := range t.Raids {
		if _, dup := s.raids[r.ID]; dup {
			return nil, fmt.Errorf("duplicate raid %q", r.ID)
		}
		s.raids[r.ID] = r
	}
	return s, nil
}

func (s *Static) Class(id models.Class) (models.ClassDef, error) {
	c, ok := s.classes[id]
	if !ok {
		return models.ClassDef{}, fmt.Errorf("class %q: %w", id, ErrNotFound)
	}
	return c, nil
}

func (s *Static) Item(id string) (models.Equipment, error) {
	it, ok := s.items[id]
	if !ok {
		return models.Equipment{}, fmt.Errorf("item %q: %w", id, ErrNotFound)
	}
	return it.Clone(), nil
}

func (s *Static) Set(id string) (models.SetDef, error) {
	set, ok := s.sets[id]
	if !ok {
		return models.SetDef{}, fmt.Errorf("set %q: %w", id, ErrNotFound)
	}
	return set, nil
}

func (s *Static) Monster(id string) (models.MonsterTemplate, error) {
	m, ok := s.monsters[id]
	if !ok {
		return models.MonsterTemplate{}, fmt.Errorf("monster %q: %w", id, ErrNotFound)
	}
	return m, nil
}

func (s *Static) Ability(id string) (models.Ability, error) {
	a, ok := s.abilities[id]
	if !ok {
		return models.Ability{}, fmt.Errorf("ability %q: %w", id, ErrNotFound)
	}
	return a, nil
}

func (s *Static) Raid(id string) (models.Raid, error) {
	r, ok := s.raids[id]
	if !ok {
		return models.Raid{}, fmt.Errorf("raid %q: %w", id, ErrNotFound)
	}
	return r, nil
}

// Tables returns the bundle the catalog was built from.
func (s *Static) Tables() Tables { return s.tables }

// ClassAbilities lists the abilities of class c ordered by required level,
// then id.
func (s *Static) ClassAbilities(c models.Class) []models.Ability {
	var out []models.Ability
	for _, a := range s.tables.Abilities {
		if a.Class == c {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RequiredLevel != out[j].RequiredLevel {
			return out[i].RequiredLevel < out[j].RequiredLevel
		}
		return out[i].ID < out[j].ID
	})
	return out
}
