package battle_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/battle/internal/game/battle"
	"github.com/cory-johannsen/battle/internal/game/catalog"
	"github.com/cory-johannsen/battle/internal/game/combat"
	"github.com/cory-johannsen/battle/internal/game/condition"
	"github.com/cory-johannsen/battle/internal/game/dice"
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

// attackFirst attacks the first living opponent it is shown.
type attackFirst struct{}

func (attackFirst) Choose(actor *combat.Combatant, _, enemies []*combat.Combatant) (combat.Action, error) {
	for _, e := range enemies {
		if e.IsAlive() {
			return combat.Attack(actor.ID, e.ID), nil
		}
	}
	return combat.Defend(actor.ID), nil
}

// fixedDecider always returns the same action.
type fixedDecider struct{ action combat.Action }

func (d fixedDecider) Choose(*combat.Combatant, []*combat.Combatant, []*combat.Combatant) (combat.Action, error) {
	return d.action, nil
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

func player(id string, quickness int) *combat.Combatant {
	return fighter(id, combat.KindPlayer, combat.Attributes{Power: 20, Resilience: 10, Quickness: quickness})
}

func enemy(id string, quickness int) *combat.Combatant {
	return fighter(id, combat.KindEnemy, combat.Attributes{Power: 20, Resilience: 10, Quickness: quickness})
}

func deterministic() combat.Tuning {
	t := combat.DefaultTuning()
	t.NoVariance = true
	t.NoCrits = true
	return t
}

// newSession builds a session with deterministic damage that has not been started.
func newSession(t *testing.T, players, enemies []*combat.Combatant, opts battle.Options) *battle.Session {
	t.Helper()
	if opts.Source == nil {
		opts.Source = &scriptedSource{}
	}
	if opts.Decider == nil {
		opts.Decider = attackFirst{}
	}
	s, err := battle.NewSession(players, enemies, opts)
	require.NoError(t, err)
	require.NoError(t, s.SetTuning(deterministic()))
	return s
}

// started builds a deterministic session and starts it.
func started(t *testing.T, players, enemies []*combat.Combatant, opts battle.Options) *battle.Session {
	t.Helper()
	s := newSession(t, players, enemies, opts)
	require.NoError(t, s.Start())
	return s
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c := catalog.New()
	for _, def := range []*condition.ConditionDef{
		{ID: "burn", Name: "Burn", DurationType: condition.DurationRounds, MaxStacks: 3, TurnDamage: 4},
		{ID: "stun", Name: "Stun", DurationType: condition.DurationRounds, SkipsTurn: true},
		{ID: "regen", Name: "Regen", DurationType: condition.DurationRounds, TurnDamage: -5},
	} {
		require.NoError(t, c.RegisterCondition(def))
	}
	for _, item := range []*combat.ItemEffect{
		{ID: "potion", Name: "Potion", HP: 25, Target: combat.TargetSingle},
		{ID: "phoenix_feather", Name: "Phoenix Feather", HP: 40, Target: combat.TargetSingle, Revive: true},
		{ID: "salve", Name: "Salve", HP: 5, Target: combat.TargetSingle, Cures: []string{"burn"}},
		{ID: "feast", Name: "Feast", HP: 20, AP: 5, Target: combat.TargetAllAllies},
	} {
		require.NoError(t, c.RegisterItem(item))
	}
	return c
}

func seeded(seed uint64) dice.Source { return dice.NewSeededSource(seed) }
