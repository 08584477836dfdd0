package session

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/pefman/legacy-idle/internal/content"
	"github.com/pefman/legacy-idle/internal/models"
)

// StartingGold is the purse of a fresh character.
const StartingGold = 100

var starterWeapons = map[models.Class]string{
	models.Warrior: "rusty_sword",
	models.Rogue:   "rusty_sword",
	models.Mage:    "oak_staff",
	models.Cleric:  "oak_staff",
	models.Ranger:  "hunting_bow",
}

var companions = []struct {
	name        string
	class       models.Class
	personality string
}{
	{"Brother Aldric", models.Cleric, "devout"},
	{"Sera Ironhand", models.Warrior, "stubborn"},
	{"Nyx", models.Mage, "curious"},
}

// NewState builds a level-1 character of class with two companions of other
// classes, each wearing starter gear. Stats are left for New to aggregate.
func NewState(c content.Catalog, name string, class models.Class) (models.GameState, error) {
	if _, err := c.Class(class); err != nil {
		return models.GameState{}, fmt.Errorf("new character: %w", err)
	}
	hero, err := starter(c, name, class)
	if err != nil {
		return models.GameState{}, err
	}
	st := models.GameState{
		Character: models.Character{Hero: hero, Generation: 1},
		Gold:      StartingGold,
	}
	for _, comp := range companions {
		if comp.class == class || len(st.Party) == 2 {
			continue
		}
		h, err := starter(c, comp.name, comp.class)
		if err != nil {
			return models.GameState{}, err
		}
		st.Party = append(st.Party, models.Adventurer{Hero: h, Personality: comp.personality})
	}
	return st, nil
}

func starter(c content.Catalog, name string, class models.Class) (models.Hero, error) {
	h := models.Hero{ID: uuid.NewString(), Name: name, Class: class, Level: 1}
	weapon, err := c.Item(starterWeapons[class])
	if err != nil {
		return h, fmt.Errorf("starter weapon: %w", err)
	}
	armor, err := c.Item("leather_vest")
	if err != nil {
		return h, fmt.Errorf("starter armor: %w", err)
	}
	weapon.ID = weapon.BaseID + "-" + h.ID[:8]
	armor.ID = armor.BaseID + "-" + h.ID[:8]
	h.Equipment.Weapon = &weapon
	h.Equipment.Armor = &armor
	return h, nil
}
