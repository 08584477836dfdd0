package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pefman/legacy-idle/internal/models"
)

type book []models.Ability

func (b book) ClassAbilities(c models.Class) []models.Ability {
	var out []models.Ability
	for _, a := range b {
		if a.Class == c {
			out = append(out, a)
		}
	}
	return out
}

var warriorBook = book{
	{ID: "strike", Class: models.Warrior, Kind: models.AbilityDamage, RequiredLevel: 1},
	{ID: "skin", Class: models.Warrior, Kind: models.AbilityPassive, RequiredLevel: 3},
	{ID: "cleave", Class: models.Warrior, Kind: models.AbilityDamage, RequiredLevel: 5},
	{ID: "fireball", Class: models.Mage, Kind: models.AbilityDamage, RequiredLevel: 1},
}

func TestXPForNextLevel(t *testing.T) {
	assert.Equal(t, 100, XPForNextLevel(1))
	assert.Equal(t, 282, XPForNextLevel(2))
	assert.Equal(t, 3162, XPForNextLevel(10))
	assert.Equal(t, 100, XPForNextLevel(0))
}

func TestAwardExperience_MultipleLevels(t *testing.T) {
	h := models.Hero{ID: "h", Class: models.Warrior, Level: 1}

	// 100 + 282 + 519 = 901 reaches level 4 with 9 left over
	got, gained := AwardExperience(h, 910, warriorBook)
	assert.Equal(t, 3, gained)
	assert.Equal(t, 4, got.Level)
	assert.Equal(t, 9, got.Experience)
	assert.Equal(t, []string{"strike", "skin"}, got.Abilities)
	assert.Equal(t, []string{"skin"}, got.ActivePassives)

	assert.Equal(t, 1, h.Level)
	assert.Empty(t, h.Abilities)
}

func TestAwardExperience_NoLevel(t *testing.T) {
	h := models.Hero{ID: "h", Class: models.Warrior, Level: 1, Abilities: []string{"strike"}}
	got, gained := AwardExperience(h, 50, warriorBook)
	assert.Zero(t, gained)
	assert.Equal(t, 50, got.Experience)
	assert.Equal(t, []string{"strike"}, got.Abilities)

	got, gained = AwardExperience(got, -10, warriorBook)
	assert.Zero(t, gained)
	assert.Equal(t, 50, got.Experience)
}
