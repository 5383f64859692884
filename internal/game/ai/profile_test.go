package ai_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/battle/internal/game/ai"
)

func TestParseDifficulty(t *testing.T) {
	for in, want := range map[string]float64{"easy": 0.4, "Normal": 0.2, "HARD": 0.1} {
		d, err := ai.ParseDifficulty(in)
		require.NoError(t, err)
		assert.Equal(t, want, d.Randomness())
	}
	_, err := ai.ParseDifficulty("nightmare")
	assert.Error(t, err)
}

func TestPresets_Valid(t *testing.T) {
	presets := ai.Presets(ai.DifficultyHard, 0.8)
	require.Len(t, presets, 4)
	for _, p := range presets {
		assert.NoError(t, p.Validate(), p.Name)
		assert.Equal(t, 0.1, p.Randomness)
		assert.Equal(t, 0.8, p.FocusFireChance)
	}
}

func TestProfile_DefendWeight(t *testing.T) {
	r := ai.NewRegistry(ai.DifficultyNormal, 0.8)
	def, ok := r.Get(ai.ProfileDefensive)
	require.True(t, ok)
	assert.Equal(t, def.Defend, def.DefendWeight(0.9))
	assert.Equal(t, def.LowHealthDefend, def.DefendWeight(0.29))

	agg, _ := r.Get(ai.ProfileAggressive)
	assert.Equal(t, agg.Defend, agg.DefendWeight(0.01))
}

func TestProfile_AbilityWeight(t *testing.T) {
	p := &ai.Profile{Name: "t", Ability: 0.6, APAware: true}
	assert.Equal(t, 0.6, p.AbilityWeight(0.5))
	assert.Equal(t, 0.3, p.AbilityWeight(0.1))
	p.APAware = false
	assert.Equal(t, 0.6, p.AbilityWeight(0.1))
}

func TestProfile_Validate(t *testing.T) {
	cases := map[string]ai.Profile{
		"no name":         {Attack: 1},
		"negative weight": {Name: "x", Attack: -1, Defend: 1},
		"all zero":        {Name: "x"},
		"randomness":      {Name: "x", Attack: 1, Randomness: 1.5},
		"focus fire":      {Name: "x", Attack: 1, FocusFireChance: -0.5},
	}
	for name, p := range cases {
		assert.Error(t, p.Validate(), name)
	}
}

func TestRegistry_RegisterAndResolve(t *testing.T) {
	r := ai.NewRegistry(ai.DifficultyNormal, 0.8)
	assert.Equal(t, []string{"aggressive", "balanced", "defensive", "tactical"}, r.Names())

	err := r.Register(&ai.Profile{Name: ai.ProfileBalanced, Attack: 1})
	assert.Error(t, err, "collision")

	require.NoError(t, r.Register(&ai.Profile{Name: "berserker", Attack: 1}))
	assert.Equal(t, "berserker", r.Resolve("berserker").Name)
	assert.Equal(t, ai.ProfileBalanced, r.Resolve("unknown").Name)
	assert.Equal(t, ai.ProfileBalanced, r.Resolve("").Name)
}

func TestRegistry_LoadDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "coward.yaml"), []byte(`
profile:
  name: coward
  attack: 0.1
  defend: 0.9
  ability: 0
  randomness: 0
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	r := ai.NewRegistry(ai.DifficultyEasy, 0.7)
	require.NoError(t, r.LoadDirectory(dir))

	p, ok := r.Get("coward")
	require.True(t, ok)
	assert.Equal(t, 0.9, p.Defend)
	assert.Equal(t, 0.0, p.Randomness, "explicit zero kept")
	assert.Equal(t, 0.7, p.FocusFireChance, "omitted value inherited")
}

func TestRegistry_LoadDirectory_Errors(t *testing.T) {
	r := ai.NewRegistry(ai.DifficultyNormal, 0.8)
	assert.Error(t, r.LoadDirectory("/nonexistent"))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("name: orphan\n"), 0644))
	assert.Error(t, r.LoadDirectory(dir))
}
