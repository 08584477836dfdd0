package dungeon

import "github.com/pefman/legacy-idle/internal/models"

const (
	Forest    models.Biome = "forest"
	Cave      models.Biome = "cave"
	Undead    models.Biome = "undead"
	Elemental models.Biome = "elemental"
	Demonic   models.Biome = "demonic"
	Celestial models.Biome = "celestial"
	Void      models.Biome = "void"
	Draconic  models.Biome = "draconic"
	Giant     models.Biome = "giant"
	Construct models.Biome = "construct"
)

// BiomeDef is the content of one biome archetype.
type BiomeDef struct {
	ID       models.Biome
	Display  string
	Flavor   string
	Monsters []string
	Bosses   []string
	Themes   []string
}

// Biomes is in rotation order; floors move to the next entry every five
// floors.
var Biomes = []BiomeDef{
	{Forest, "Verdant", "Ancient trees twist over paths that shift when no one is looking.",
		[]string{"wolf", "treant_sapling", "forest_spider"}, []string{"elder_treant", "alpha_wolf"},
		[]string{"Grove", "Thicket", "Wildwood", "Glade"}},
	{Cave, "Shadowed", "Damp tunnels echo with the scratching of unseen claws.",
		[]string{"cave_bat", "goblin", "rock_crawler"}, []string{"goblin_king", "cave_troll"},
		[]string{"Caverns", "Warrens", "Hollows", "Depths"}},
	{Undead, "Cursed", "The dead do not rest here, and the air tastes of grave dust.",
		[]string{"skeleton", "zombie", "ghoul"}, []string{"lich", "bone_colossus"},
		[]string{"Crypt", "Ossuary", "Catacombs", "Barrows"}},
	{Elemental, "Primal", "Fire, water and storm clash in an endless unstable dance.",
		[]string{"fire_sprite", "water_elemental", "storm_wisp"}, []string{"magma_titan", "tempest_lord"},
		[]string{"Nexus", "Maelstrom", "Crucible", "Confluence"}},
	{Demonic, "Infernal", "Brimstone smoke curls from cracks that glow a sullen red.",
		[]string{"imp", "hellhound", "succubus"}, []string{"pit_fiend", "demon_prince"},
		[]string{"Pit", "Abyss", "Furnace", "Gate"}},
	{Celestial, "Radiant", "Light pours from nowhere and judges all who enter.",
		[]string{"seraph_guard", "star_wisp", "radiant_knight"}, []string{"archon", "solar_avatar"},
		[]string{"Sanctum", "Spire", "Halls", "Firmament"}},
	{Void, "Hollow", "Space folds in on itself and sound arrives before its source.",
		[]string{"void_stalker", "null_wraith", "rift_eye"}, []string{"void_herald", "entropy_maw"},
		[]string{"Rift", "Expanse", "Breach", "Null"}},
	{Draconic, "Scorched", "Hoarded gold lies under layers of ash and old bones.",
		[]string{"drake", "kobold_zealot", "wyvern"}, []string{"elder_dragon", "dracolich"},
		[]string{"Lair", "Roost", "Aerie", "Hoard"}},
	{Giant, "Colossal", "Everything here was built for someone five times your size.",
		[]string{"hill_giant", "frost_giant", "ogre"}, []string{"giant_king", "storm_giant"},
		[]string{"Steading", "Halls", "Citadel", "Peaks"}},
	{Construct, "Clockwork", "Gears grind behind every wall and nothing ever stops moving.",
		[]string{"clockwork_soldier", "stone_golem", "arcane_turret"}, []string{"iron_colossus", "forge_mind"},
		[]string{"Foundry", "Workshop", "Engine", "Vault"}},
}

// BiomeFor is the rotation rule shared by both generation modes.
func BiomeFor(floor int) BiomeDef {
	if floor < 0 {
		floor = 0
	}
	return Biomes[(floor/5)%len(Biomes)]
}

// LookupBiome finds a biome by id.
func LookupBiome(id models.Biome) (BiomeDef, bool) {
	for _, b := range Biomes {
		if b.ID == id {
			return b, true
		}
	}
	return BiomeDef{}, false
}
