package condition_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battle/internal/game/condition"
)

func burn() *condition.ConditionDef {
	return &condition.ConditionDef{ID: "burn", Name: "Burn", DurationType: "rounds", MaxStacks: 3, TurnDamage: 4}
}

func stun() *condition.ConditionDef {
	return &condition.ConditionDef{ID: "stun", Name: "Stun", DurationType: "rounds", SkipsTurn: true}
}

func guardBreak() *condition.ConditionDef {
	return &condition.ConditionDef{ID: "guard_break", Name: "Guard Break", DurationType: "permanent", ResilienceModifier: -5}
}

func TestActiveSet_Apply_Rounds(t *testing.T) {
	s := condition.NewActiveSet()
	require.NoError(t, s.Apply(burn(), 2, 3))
	assert.True(t, s.Has("burn"))
	assert.Equal(t, 2, s.Stacks("burn"))
}

func TestActiveSet_Apply_StacksCapped(t *testing.T) {
	s := condition.NewActiveSet()
	require.NoError(t, s.Apply(burn(), 2, 3))
	require.NoError(t, s.Apply(burn(), 2, 1))
	assert.Equal(t, 3, s.Stacks("burn"))
}

func TestActiveSet_Apply_Unstackable(t *testing.T) {
	s := condition.NewActiveSet()
	require.NoError(t, s.Apply(stun(), 5, 1))
	require.NoError(t, s.Apply(stun(), 5, 2))
	assert.Equal(t, 1, s.Stacks("stun"))
	s.Tick()
	assert.True(t, s.Has("stun"), "reapply keeps the longer duration")
	s.Tick()
	assert.False(t, s.Has("stun"))
}

func TestActiveSet_Apply_NilDef(t *testing.T) {
	assert.Error(t, condition.NewActiveSet().Apply(nil, 1, 1))
}

func TestActiveSet_Permanent_NeverExpires(t *testing.T) {
	s := condition.NewActiveSet()
	require.NoError(t, s.Apply(guardBreak(), 1, 2))
	for i := 0; i < 10; i++ {
		assert.Empty(t, s.Tick())
	}
	assert.True(t, s.Has("guard_break"))
}

func TestActiveSet_Tick_ExpiresSorted(t *testing.T) {
	s := condition.NewActiveSet()
	require.NoError(t, s.Apply(stun(), 1, 1))
	require.NoError(t, s.Apply(burn(), 1, 1))
	assert.Equal(t, []string{"burn", "stun"}, s.Tick())
	assert.Equal(t, 0, s.Len())
}

func TestActiveSet_RemoveAndClear(t *testing.T) {
	s := condition.NewActiveSet()
	require.NoError(t, s.Apply(stun(), 1, 1))
	require.NoError(t, s.Apply(burn(), 1, 1))
	s.Remove("stun")
	s.Remove("stun")
	assert.False(t, s.Has("stun"))
	s.Clear()
	assert.Empty(t, s.All())
}

func TestActiveSet_Property_StacksWithinBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		maxStacks := rapid.IntRange(0, 5).Draw(rt, "max")
		def := &condition.ConditionDef{ID: "x", Name: "X", DurationType: "rounds", MaxStacks: maxStacks}
		s := condition.NewActiveSet()
		n := rapid.IntRange(1, 10).Draw(rt, "applies")
		for i := 0; i < n; i++ {
			require.NoError(rt, s.Apply(def, rapid.IntRange(-2, 5).Draw(rt, "stacks"), rapid.IntRange(1, 5).Draw(rt, "dur")))
		}
		got := s.Stacks("x")
		assert.GreaterOrEqual(rt, got, 1)
		if maxStacks == 0 {
			assert.Equal(rt, 1, got)
		} else {
			assert.LessOrEqual(rt, got, maxStacks)
		}
	})
}
