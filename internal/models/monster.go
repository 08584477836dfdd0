package models

// MonsterTemplate is the static definition of a monster.
type MonsterTemplate struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Stats      GameStats `json:"stats"`
	XPReward   int       `json:"xp_reward"`
	GoldReward int       `json:"gold_reward"`
	IsRaidBoss bool      `json:"is_raid_boss,omitempty"`
}

// ScaledMonster is a template fitted to a level and difficulty. ID stays the
// template id; TemplateID is kept explicitly for callers that only see the
// scaled value.
type ScaledMonster struct {
	MonsterTemplate
	TemplateID    string  `json:"template_id"`
	ScalingFactor float64 `json:"scaling_factor"`
	Level         int     `json:"level"`
	Difficulty    float64 `json:"difficulty"`
	Floor         int     `json:"floor,omitempty"`
}

// Dungeon is the static dungeon shape.
type Dungeon struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	LevelRequirement int      `json:"level_requirement"`
	MonsterIDs       []string `json:"monster_ids"`
	BossID           string   `json:"boss_id"`
	LootTable        []string `json:"loot_table"`
}

// Biome tags the theme of a procedural dungeon.
type Biome string

// ProceduralDungeon is a generated floor. Monsters, Boss and Loot carry the
// fully generated content behind the id lists of the embedded Dungeon.
type ProceduralDungeon struct {
	Dungeon
	Floor      int             `json:"floor"`
	Biome      Biome           `json:"biome"`
	Difficulty float64         `json:"difficulty"`
	Endless    bool            `json:"endless"`
	Monsters   []ScaledMonster `json:"monsters"`
	Boss       ScaledMonster   `json:"boss"`
	Loot       []Equipment     `json:"loot"`
}

// Raid is a single-boss encounter from the content tables.
type Raid struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	LevelRequirement int      `json:"level_requirement"`
	BossID           string   `json:"boss_id"`
	Difficulty       float64  `json:"difficulty"`
	LootTable        []string `json:"loot_table,omitempty"`
}
