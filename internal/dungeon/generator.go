// Package dungeon builds procedural endless-dungeon floors.
package dungeon

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/pefman/legacy-idle/internal/engine"
	"github.com/pefman/legacy-idle/internal/loot"
	"github.com/pefman/legacy-idle/internal/models"
)

// BossDifficulty multiplies the floor difficulty for the boss.
const BossDifficulty = 1.5

// Sub-stream offsets for seeded generation. Each positional choice reads its
// own stream so choices never shift one another.
const (
	offsetTheme    = 1
	offsetBoss     = 2
	offsetLootSeed = 3
	offsetMonsters = 100
)

// Scaler scales monster templates. *scaling.Scaler satisfies it.
type Scaler interface {
	Scale(templateID string, level int, difficulty float64, floor int) (models.ScaledMonster, error)
}

// Generator builds floors from a scaler and a loot generator.
type Generator struct {
	scaler Scaler
	loot   *loot.Generator
	src    engine.Source
}

// NewGenerator returns a Generator. src drives random-mode generation; the
// loot generator's own source drives random-mode items.
func NewGenerator(scaler Scaler, items *loot.Generator, src engine.Source) *Generator {
	return &Generator{scaler: scaler, loot: items, src: src}
}

// MonsterCount is min(5, 3 + floor/15).
func MonsterCount(floor int) int {
	return min(5, 3+floor/15)
}

// LootCount is min(8, 3 + floor/20).
func LootCount(floor int) int {
	return min(8, 3+floor/20)
}

// Difficulty is (1 + floor*0.05) * max(0.7, level/(floor+5)).
func Difficulty(floor, level int) float64 {
	base := 1 + float64(floor)*0.05
	adjust := math.Max(0.7, float64(level)/float64(floor+5))
	return base * adjust
}

// Generate builds a fresh random floor.
func (g *Generator) Generate(floor, level int) (models.ProceduralDungeon, error) {
	biome := BiomeFor(floor)
	id := fmt.Sprintf("endless-%d-%s", floor, uuid.NewString())
	d, err := g.build(id, floor, level, biome, func(int) engine.Source { return g.src })
	if err != nil {
		return d, err
	}
	for i := 0; i < LootCount(floor); i++ {
		it := g.loot.GenerateItem(level, d.Difficulty, floor)
		d.Loot = append(d.Loot, it)
		d.LootTable = append(d.LootTable, it.ID)
	}
	return d, nil
}

// GenerateConsistent builds the floor identified by dungeonID. Identical
// arguments always produce identical floors. An empty biome uses the
// rotation rule.
func (g *Generator) GenerateConsistent(floor int, biome models.Biome, level int, dungeonID string) (models.ProceduralDungeon, error) {
	def := BiomeFor(floor)
	if biome != "" {
		b, ok := LookupBiome(biome)
		if !ok {
			return models.ProceduralDungeon{}, fmt.Errorf("unknown biome %q", biome)
		}
		def = b
	}
	seed := engine.HashSeed(dungeonID)
	stream := func(offset int) engine.Source { return engine.Derive(seed, offset) }

	d, err := g.build(dungeonID, floor, level, def, stream)
	if err != nil {
		return d, err
	}
	lootSeed := stream(offsetLootSeed).Float64()
	for i := 0; i < LootCount(floor); i++ {
		it := g.loot.GenerateSeededItem(level, d.Difficulty, floor, lootSeed, i)
		d.Loot = append(d.Loot, it)
		d.LootTable = append(d.LootTable, it.ID)
	}
	return d, nil
}

func (g *Generator) build(id string, floor, level int, biome BiomeDef, stream func(offset int) engine.Source) (models.ProceduralDungeon, error) {
	difficulty := Difficulty(floor, level)
	theme := engine.Pick(stream(offsetTheme), biome.Themes)

	d := models.ProceduralDungeon{
		Dungeon: models.Dungeon{
			ID:               id,
			Name:             fmt.Sprintf("%s %s - Floor %d", biome.Display, theme, floor),
			Description:      fmt.Sprintf("%s Difficulty: %d%%.", biome.Flavor, int(math.Round(difficulty*100))),
			LevelRequirement: max(1, level-5),
		},
		Floor:      floor,
		Biome:      biome.ID,
		Difficulty: difficulty,
		Endless:    true,
	}

	for i := 0; i < MonsterCount(floor); i++ {
		templateID := engine.Pick(stream(offsetMonsters+i), biome.Monsters)
		m, err := g.scaler.Scale(templateID, level, difficulty, floor)
		if err != nil {
			return models.ProceduralDungeon{}, fmt.Errorf("floor %d monster: %w", floor, err)
		}
		d.MonsterIDs = append(d.MonsterIDs, templateID)
		d.Monsters = append(d.Monsters, m)
	}

	bossID := engine.Pick(stream(offsetBoss), biome.Bosses)
	boss, err := g.scaler.Scale(bossID, level, difficulty*BossDifficulty, floor)
	if err != nil {
		return models.ProceduralDungeon{}, fmt.Errorf("floor %d boss: %w", floor, err)
	}
	d.BossID = bossID
	d.Boss = boss
	return d, nil
}

// Enemies returns the fight order: every monster, then the boss.
func Enemies(d models.ProceduralDungeon) []models.ScaledMonster {
	out := append([]models.ScaledMonster(nil), d.Monsters...)
	return append(out, d.Boss)
}
