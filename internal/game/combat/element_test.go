package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battle/internal/game/combat"
)

var allElements = []combat.Element{
	combat.ElementFire, combat.ElementIce, combat.ElementLightning,
	combat.ElementWater, combat.ElementEarth, combat.ElementPlant,
}

func TestEffectiveness_CounterPairs(t *testing.T) {
	counters := map[combat.Element][]combat.Element{
		combat.ElementFire:      {combat.ElementIce, combat.ElementPlant, combat.ElementWater},
		combat.ElementIce:       {combat.ElementWater, combat.ElementFire},
		combat.ElementLightning: {combat.ElementWater, combat.ElementEarth},
		combat.ElementWater:     {combat.ElementFire, combat.ElementLightning},
		combat.ElementEarth:     {combat.ElementLightning, combat.ElementPlant},
		combat.ElementPlant:     {combat.ElementWater, combat.ElementFire},
	}
	for _, atk := range allElements {
		for _, def := range allElements {
			want := combat.NeutralMultiplier
			switch {
			case atk == def:
				want = combat.ImmuneMultiplier
			case contains(counters[atk], def):
				want = combat.CounterMultiplier
			}
			assert.Equal(t, want, combat.Effectiveness(atk, def), "%s vs %s", atk, def)
		}
	}
}

func TestEffectiveness_NotReciprocal(t *testing.T) {
	// Earth counters Lightning and Lightning counters Earth, but Lightning
	// does not counter Plant while Earth does.
	assert.Equal(t, combat.CounterMultiplier, combat.Effectiveness(combat.ElementEarth, combat.ElementPlant))
	assert.Equal(t, combat.NeutralMultiplier, combat.Effectiveness(combat.ElementPlant, combat.ElementEarth))
}

func TestEffectiveness_NoneIsNeutral(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e := rapid.SampledFrom(allElements).Draw(rt, "element")
		assert.Equal(rt, combat.NeutralMultiplier, combat.Effectiveness(combat.ElementNone, e))
		assert.Equal(rt, combat.NeutralMultiplier, combat.Effectiveness(e, combat.ElementNone))
	})
}

func TestElement_Validate(t *testing.T) {
	assert.NoError(t, combat.ElementNone.Validate())
	assert.NoError(t, combat.ElementPlant.Validate())
	assert.Error(t, combat.Element("shadow").Validate())
}

func contains(list []combat.Element, e combat.Element) bool {
	for _, x := range list {
		if x == e {
			return true
		}
	}
	return false
}
