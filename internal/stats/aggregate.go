// Package stats computes effective character stats and keeps in-memory
// combat records.
package stats

import (
	"fmt"
	"math"

	"github.com/pefman/legacy-idle/internal/content"
	"github.com/pefman/legacy-idle/internal/models"
)

// Sources is everything that contributes to a hero's stats, already resolved
// from content. Recalculate is a pure function of it.
type Sources struct {
	Class    models.Class
	Base     models.GameStats
	Legacy   models.GameStats
	Passives [][]models.StatValue
	Loadout  models.Loadout
	Sets     map[string]models.SetDef

	// Pre-recalculation values used to carry the health and mana percentage.
	PrevMax    models.GameStats
	PrevHealth *int
	PrevMana   *int
}

// ActiveSet reports how many pieces of a set are worn.
type ActiveSet struct {
	SetID  string `json:"set_id"`
	Pieces int    `json:"pieces"`
}

// Result is the recalculated stat block.
type Result struct {
	Max           models.GameStats `json:"max"`
	CurrentHealth int              `json:"current_health"`
	CurrentMana   int              `json:"current_mana"`
	Sets          []ActiveSet      `json:"sets,omitempty"`
}

// Recalculate folds the sources in order: class base, legacy bonus, active
// passives, equipment scaled by class affinity, then every set threshold the
// worn piece count reaches.
func Recalculate(src Sources) Result {
	total := src.Base.Plus(src.Legacy)
	for _, bonus := range src.Passives {
		total = total.PlusBonus(bonus)
	}

	items := src.Loadout.Items()
	for _, it := range items {
		affinity := it.AffinityFor(src.Class)
		for _, s := range it.Stats {
			total.Add(s.Stat, int(math.Round(float64(s.Value)*affinity)))
		}
	}

	sets := countSets(items)
	for _, as := range sets {
		def, ok := src.Sets[as.SetID]
		if !ok {
			continue
		}
		for _, th := range def.Thresholds {
			if th.Pieces <= as.Pieces {
				total = total.PlusBonus(th.Bonus)
			}
		}
	}
	total = total.Clamped()

	return Result{
		Max:           total,
		CurrentHealth: carryPercent(total.Health, src.PrevMax.Health, src.PrevHealth),
		CurrentMana:   carryPercent(total.Mana, src.PrevMax.Mana, src.PrevMana),
		Sets:          sets,
	}
}

// countSets tallies worn pieces per set id in order of first appearance.
func countSets(items []models.Equipment) []ActiveSet {
	var out []ActiveSet
	for _, it := range items {
		if it.SetID == "" {
			continue
		}
		found := false
		for i := range out {
			if out[i].SetID == it.SetID {
				out[i].Pieces++
				found = true
				break
			}
		}
		if !found {
			out = append(out, ActiveSet{SetID: it.SetID, Pieces: 1})
		}
	}
	return out
}

func carryPercent(newMax, oldMax int, current *int) int {
	if current == nil {
		return newMax
	}
	if oldMax <= 0 {
		oldMax = 1
	}
	v := int(math.Round(float64(newMax) * float64(*current) / float64(oldMax)))
	if v < 0 {
		return 0
	}
	if v > newMax {
		return newMax
	}
	return v
}

// Aggregator resolves a hero's stat sources from the content catalog.
type Aggregator struct {
	catalog content.Catalog
}

// NewAggregator returns an Aggregator reading from catalog.
func NewAggregator(catalog content.Catalog) *Aggregator {
	return &Aggregator{catalog: catalog}
}

// Sources resolves class base stats, active learned passives and the set
// definitions of every worn set piece.
func (a *Aggregator) Sources(h models.Hero, legacy models.GameStats) (Sources, error) {
	class, err := a.catalog.Class(h.Class)
	if err != nil {
		return Sources{}, fmt.Errorf("resolve class: %w", err)
	}
	src := Sources{
		Class:      h.Class,
		Base:       class.BaseStats,
		Legacy:     legacy,
		Loadout:    h.Equipment,
		Sets:       map[string]models.SetDef{},
		PrevMax:    h.Stats,
		PrevHealth: h.CurrentHealth,
		PrevMana:   h.CurrentMana,
	}
	for _, id := range h.ActivePassives {
		if !h.Knows(id) {
			continue
		}
		ab, err := a.catalog.Ability(id)
		if err != nil {
			return Sources{}, fmt.Errorf("resolve passive: %w", err)
		}
		if ab.Kind != models.AbilityPassive {
			continue
		}
		src.Passives = append(src.Passives, ab.Bonus)
	}
	for _, it := range h.Equipment.Items() {
		if it.SetID == "" {
			continue
		}
		if _, ok := src.Sets[it.SetID]; ok {
			continue
		}
		def, err := a.catalog.Set(it.SetID)
		if err != nil {
			return Sources{}, fmt.Errorf("resolve set: %w", err)
		}
		src.Sets[it.SetID] = def
	}
	return src, nil
}

// Recalculate resolves sources and recalculates.
func (a *Aggregator) Recalculate(h models.Hero, legacy models.GameStats) (Result, error) {
	src, err := a.Sources(h, legacy)
	if err != nil {
		return Result{}, err
	}
	return Recalculate(src), nil
}

// Apply returns h with recalculated max stats. Transient health and mana stay
// nil (full) when they were nil and otherwise keep their percentage.
func (a *Aggregator) Apply(h models.Hero, legacy models.GameStats) (models.Hero, error) {
	res, err := a.Recalculate(h, legacy)
	if err != nil {
		return h, err
	}
	out := h.Clone()
	out.Stats = res.Max
	if h.CurrentHealth != nil {
		out.CurrentHealth = models.Int(res.CurrentHealth)
	}
	if h.CurrentMana != nil {
		out.CurrentMana = models.Int(res.CurrentMana)
	}
	return out, nil
}

// ApplyCharacter recalculates the player including the legacy bonus.
func (a *Aggregator) ApplyCharacter(c models.Character) (models.Character, error) {
	h, err := a.Apply(c.Hero, c.LegacyBonus)
	if err != nil {
		return c, err
	}
	c.Hero = h
	return c, nil
}

// ApplyAdventurer recalculates a companion. Companions carry no legacy bonus.
func (a *Aggregator) ApplyAdventurer(adv models.Adventurer) (models.Adventurer, error) {
	h, err := a.Apply(adv.Hero, models.GameStats{})
	if err != nil {
		return adv, err
	}
	adv.Hero = h
	return adv, nil
}
