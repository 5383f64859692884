package combat_test

import (
	"github.com/cory-johannsen/battle/internal/game/combat"
	"github.com/cory-johannsen/battle/internal/game/condition"
)

// scriptedSource returns queued values, then falls back to fixed defaults.
type scriptedSource struct {
	floats []float64
	ints   []int
}

func (s *scriptedSource) Float64() float64 {
	if len(s.floats) == 0 {
		return 0.5
	}
	f := s.floats[0]
	s.floats = s.floats[1:]
	return f
}

func (s *scriptedSource) Intn(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func fighter(id string, kind combat.Kind, attrs combat.Attributes) *combat.Combatant {
	return &combat.Combatant{
		ID:         id,
		Kind:       kind,
		Name:       id,
		Level:      1,
		MaxHP:      100,
		CurrentHP:  100,
		MaxAP:      20,
		CurrentAP:  20,
		Attributes: attrs,
		Conditions: condition.NewActiveSet(),
	}
}

func deterministic() combat.Tuning {
	t := combat.DefaultTuning()
	t.NoVariance = true
	t.NoCrits = true
	return t
}
