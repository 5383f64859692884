package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battle/internal/game/combat"
	"github.com/cory-johannsen/battle/internal/game/condition"
)

func TestCombatant_IsPlayer(t *testing.T) {
	p := fighter("alice", combat.KindPlayer, combat.Attributes{})
	e := fighter("slime", combat.KindEnemy, combat.Attributes{})
	assert.True(t, p.IsPlayer())
	assert.False(t, e.IsPlayer())
	assert.True(t, p.Opposes(e))
	assert.False(t, p.Opposes(p))
}

func TestCombatant_ApplyHPDelta_Clamps(t *testing.T) {
	c := fighter("x", combat.KindEnemy, combat.Attributes{})
	assert.Equal(t, -30, c.ApplyHPDelta(-30))
	assert.Equal(t, 70, c.CurrentHP)
	assert.Equal(t, 30, c.ApplyHPDelta(500))
	assert.Equal(t, 100, c.CurrentHP)
	assert.Equal(t, -100, c.ApplyHPDelta(-1000))
	assert.True(t, c.IsDefeated())
	assert.False(t, c.IsAlive())
}

func TestCombatant_Property_ResourcesWithinBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := &combat.Combatant{
			MaxHP: rapid.IntRange(1, 500).Draw(rt, "max_hp"),
			MaxAP: rapid.IntRange(0, 100).Draw(rt, "max_ap"),
		}
		c.CurrentHP = rapid.IntRange(0, c.MaxHP).Draw(rt, "hp")
		c.CurrentAP = rapid.IntRange(0, c.MaxAP).Draw(rt, "ap")
		deltas := rapid.SliceOfN(rapid.IntRange(-1000, 1000), 1, 20).Draw(rt, "deltas")
		for _, d := range deltas {
			c.ApplyHPDelta(d)
			c.ApplyAPDelta(-d / 3)
			if c.CurrentHP < 0 || c.CurrentHP > c.MaxHP {
				rt.Fatalf("hp %d outside [0, %d]", c.CurrentHP, c.MaxHP)
			}
			if c.CurrentAP < 0 || c.CurrentAP > c.MaxAP {
				rt.Fatalf("ap %d outside [0, %d]", c.CurrentAP, c.MaxAP)
			}
		}
	})
}

func TestCombatant_EffectiveAttributes(t *testing.T) {
	c := fighter("x", combat.KindPlayer, combat.Attributes{Power: 10, Resilience: 4, Quickness: 8})
	slow := &condition.ConditionDef{ID: "slow", Name: "Slow", DurationType: condition.DurationRounds, QuicknessModifier: -5}
	brk := &condition.ConditionDef{ID: "guard_break", Name: "Guard Break", DurationType: condition.DurationRounds, ResilienceModifier: -10}
	require.NoError(t, c.Conditions.Apply(slow, 1, 2))
	require.NoError(t, c.Conditions.Apply(brk, 1, 2))

	assert.Equal(t, 10, c.Power())
	assert.Equal(t, 3, c.Quickness())
	assert.Equal(t, 0, c.Resilience(), "floored at zero")
}

func TestCombatant_AbilityLookupAndAfford(t *testing.T) {
	c := fighter("x", combat.KindPlayer, combat.Attributes{})
	c.CurrentAP = 5
	cheap := &combat.Ability{ID: "jab", Cost: 5}
	dear := &combat.Ability{ID: "nova", Cost: 6}
	c.Abilities = []*combat.Ability{cheap, dear}

	got, ok := c.Ability("nova")
	require.True(t, ok)
	assert.Same(t, dear, got)
	_, ok = c.Ability("missing")
	assert.False(t, ok)

	assert.True(t, c.CanAfford(cheap))
	assert.False(t, c.CanAfford(dear))
	assert.False(t, c.CanAfford(nil))
}

func TestCombatant_Rewards_DefaultFromLevel(t *testing.T) {
	c := fighter("x", combat.KindEnemy, combat.Attributes{})
	c.Level = 3
	assert.Equal(t, 30, c.ExperienceReward())
	assert.Equal(t, 150, c.CurrencyReward())
	c.ExperienceYield, c.CurrencyYield = 7, 9
	assert.Equal(t, 7, c.ExperienceReward())
	assert.Equal(t, 9, c.CurrencyReward())
}

func TestExperienceToNext(t *testing.T) {
	assert.Equal(t, 100, combat.ExperienceToNext(1))
	assert.Equal(t, 150, combat.ExperienceToNext(2))
	assert.Equal(t, 225, combat.ExperienceToNext(3))
}

func TestCombatant_GainExperience(t *testing.T) {
	c := fighter("x", combat.KindPlayer, combat.Attributes{})
	from, to := c.GainExperience(99)
	assert.Equal(t, 1, from)
	assert.Equal(t, 1, to)

	from, to = c.GainExperience(152)
	assert.Equal(t, 1, from)
	assert.Equal(t, 3, to)
	assert.Equal(t, 1, c.Experience)
}

func TestCombatant_Defeat_ClearsState(t *testing.T) {
	c := fighter("x", combat.KindEnemy, combat.Attributes{})
	c.Defending = true
	require.NoError(t, c.Conditions.Apply(&condition.ConditionDef{ID: "burn", Name: "Burn", DurationType: condition.DurationRounds}, 1, 3))
	c.Defeat()
	assert.False(t, c.Defending)
	assert.Equal(t, 0, c.Conditions.Len())
}

func TestCombatant_Snapshot(t *testing.T) {
	c := fighter("x", combat.KindEnemy, combat.Attributes{})
	c.CurrentHP = 40
	require.NoError(t, c.Conditions.Apply(&condition.ConditionDef{ID: "poison", Name: "Poison", DurationType: condition.DurationRounds}, 1, 3))
	v := c.Snapshot()
	assert.Equal(t, 40, v.CurrentHP)
	assert.Equal(t, []string{"poison"}, v.Conditions)
	v.CurrentHP = 1
	assert.Equal(t, 40, c.CurrentHP)
}
