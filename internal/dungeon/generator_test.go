package dungeon

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pefman/legacy-idle/internal/content"
	"github.com/pefman/legacy-idle/internal/engine"
	"github.com/pefman/legacy-idle/internal/loot"
	"github.com/pefman/legacy-idle/internal/models"
	"github.com/pefman/legacy-idle/internal/scaling"
)

func newGenerator(t *testing.T, seed int64) *Generator {
	t.Helper()
	cat, err := content.Default()
	require.NoError(t, err)
	return NewGenerator(scaling.New(cat, nil), loot.NewGenerator(engine.NewRandSource(seed)), engine.NewRandSource(seed+1))
}

func TestFormulas(t *testing.T) {
	assert.Equal(t, 3, MonsterCount(0))
	assert.Equal(t, 4, MonsterCount(15))
	assert.Equal(t, 5, MonsterCount(30))
	assert.Equal(t, 5, MonsterCount(300))

	assert.Equal(t, 3, LootCount(0))
	assert.Equal(t, 4, LootCount(20))
	assert.Equal(t, 8, LootCount(100))
	assert.Equal(t, 8, LootCount(500))

	assert.InDelta(t, 0.7, Difficulty(0, 1), 1e-9)
	assert.InDelta(t, 3.0, Difficulty(10, 30), 1e-9)
	assert.InDelta(t, 1.5*0.7, Difficulty(10, 1), 1e-9)
}

func TestBiomeRotation(t *testing.T) {
	tests := map[int]models.Biome{
		0: Forest, 4: Forest, 5: Cave, 12: Undead, 45: Construct, 49: Construct, 50: Forest, 57: Cave, 63: Undead,
	}
	for floor, want := range tests {
		assert.Equal(t, want, BiomeFor(floor).ID, "floor %d", floor)
	}
	assert.Len(t, Biomes, 10)
}

func TestGenerateConsistent_Deterministic(t *testing.T) {
	for _, floor := range []int{0, 7, 25, 60, 130} {
		a, err := newGenerator(t, 1).GenerateConsistent(floor, "", 20, "run-abc")
		require.NoError(t, err)
		b, err := newGenerator(t, 2).GenerateConsistent(floor, "", 20, "run-abc")
		require.NoError(t, err)
		assert.Equal(t, a, b, "floor %d", floor)
	}
}

func TestGenerateConsistent_IDsDiverge(t *testing.T) {
	g := newGenerator(t, 1)
	seen := map[string]bool{}
	for i := 0; i < 8; i++ {
		d, err := g.GenerateConsistent(12, "", 15, fmt.Sprintf("run-%d", i))
		require.NoError(t, err)
		key := d.Name + fmt.Sprint(d.MonsterIDs) + d.BossID
		for _, it := range d.Loot {
			key += it.Name
		}
		seen[key] = true
	}
	assert.Greater(t, len(seen), 1)

	a, err := g.GenerateConsistent(12, "", 15, "left")
	require.NoError(t, err)
	b, err := g.GenerateConsistent(12, "", 15, "right")
	require.NoError(t, err)
	assert.NotEqual(t, a.LootTable, b.LootTable)
}

func TestGenerateConsistent_Shape(t *testing.T) {
	d, err := newGenerator(t, 1).GenerateConsistent(30, "", 40, "shape")
	require.NoError(t, err)

	biome := BiomeFor(30)
	assert.Equal(t, biome.ID, d.Biome)
	assert.True(t, d.Endless)
	assert.Equal(t, "shape", d.ID)
	assert.Equal(t, 35, d.LevelRequirement)
	assert.InDelta(t, Difficulty(30, 40), d.Difficulty, 1e-12)
	assert.Contains(t, d.Description, biome.Flavor)
	assert.Contains(t, d.Description, fmt.Sprintf("%d%%", int(d.Difficulty*100+0.5)))
	assert.Regexp(t, "^"+biome.Display+" .+ - Floor 30$", d.Name)

	require.Len(t, d.Monsters, MonsterCount(30))
	require.Len(t, d.MonsterIDs, MonsterCount(30))
	for i, m := range d.Monsters {
		assert.Contains(t, biome.Monsters, m.TemplateID)
		assert.Equal(t, d.MonsterIDs[i], m.TemplateID)
		assert.Equal(t, 30, m.Floor)
		assert.Equal(t, 40, m.Level)
	}
	assert.Contains(t, biome.Bosses, d.BossID)
	assert.InDelta(t, d.Difficulty*BossDifficulty, d.Boss.Difficulty, 1e-12)

	require.Len(t, d.Loot, LootCount(30))
	for i, it := range d.Loot {
		assert.Equal(t, d.LootTable[i], it.ID)
	}

	enemies := Enemies(d)
	require.Len(t, enemies, len(d.Monsters)+1)
	assert.Equal(t, d.BossID, enemies[len(enemies)-1].TemplateID)
}

func TestGenerateConsistent_BiomeOverride(t *testing.T) {
	g := newGenerator(t, 1)
	d, err := g.GenerateConsistent(0, Void, 10, "override")
	require.NoError(t, err)
	assert.Equal(t, Void, d.Biome)

	_, err = g.GenerateConsistent(0, "swamp", 10, "override")
	assert.Error(t, err)
}

func TestGenerate_Random(t *testing.T) {
	g := newGenerator(t, 5)
	a, err := g.Generate(5, 10)
	require.NoError(t, err)
	b, err := g.Generate(5, 10)
	require.NoError(t, err)

	assert.Equal(t, Cave, a.Biome)
	assert.Equal(t, Cave, b.Biome)
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.LootTable, b.LootTable)
	assert.Len(t, a.Monsters, MonsterCount(5))
	assert.Len(t, a.Loot, LootCount(5))
}

type brokenScaler struct{}

func (brokenScaler) Scale(string, int, float64, int) (models.ScaledMonster, error) {
	return models.ScaledMonster{}, content.ErrNotFound
}

func TestGenerate_ScalerError(t *testing.T) {
	g := NewGenerator(brokenScaler{}, loot.NewGenerator(engine.NewRandSource(1)), engine.NewRandSource(1))
	_, err := g.GenerateConsistent(3, "", 5, "x")
	assert.ErrorIs(t, err, content.ErrNotFound)
}
