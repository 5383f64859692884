package condition

import (
	"fmt"
	"sort"
)

// ActiveCondition tracks one applied condition on a combatant.
type ActiveCondition struct {
	Def               *ConditionDef
	Stacks            int
	DurationRemaining int // -1 = permanent
}

// ActiveSet tracks all conditions currently applied to one combatant.
// It is not safe for concurrent use; the owning battle session serialises access.
type ActiveSet struct {
	conditions map[string]*ActiveCondition
}

// NewActiveSet creates an empty ActiveSet.
func NewActiveSet() *ActiveSet {
	return &ActiveSet{conditions: make(map[string]*ActiveCondition)}
}

// Apply adds or refreshes a condition.
// Re-applying adds stacks (capped at MaxStacks; unstackable conditions stay at 1)
// and keeps the longer of the two durations.
//
// Precondition: def must not be nil; duration is rounds remaining or -1 for permanent.
// Postcondition: Has(def.ID) is true.
func (s *ActiveSet) Apply(def *ConditionDef, stacks, duration int) error {
	if def == nil {
		return fmt.Errorf("Apply: def must not be nil")
	}
	if def.DurationType == DurationPermanent {
		duration = -1
	}
	if stacks < 1 {
		stacks = 1
	}

	ac, ok := s.conditions[def.ID]
	if !ok {
		ac = &ActiveCondition{Def: def, DurationRemaining: duration}
		s.conditions[def.ID] = ac
	} else if duration > ac.DurationRemaining || duration < 0 {
		ac.DurationRemaining = duration
	}

	switch {
	case def.MaxStacks == 0:
		ac.Stacks = 1
	case ac.Stacks+stacks > def.MaxStacks:
		ac.Stacks = def.MaxStacks
	default:
		ac.Stacks += stacks
	}
	return nil
}

// Remove deletes the condition with the given ID. Removing an absent condition is a no-op.
//
// Postcondition: Has(id) is false.
func (s *ActiveSet) Remove(id string) {
	delete(s.conditions, id)
}

// Tick decrements every "rounds" condition by one and removes those that reach zero.
// The expired IDs are returned in ascending order.
//
// Postcondition: For every id in the returned slice, Has(id) is false.
func (s *ActiveSet) Tick() []string {
	var expired []string
	for id, ac := range s.conditions {
		if ac.Def.DurationType != DurationRounds || ac.DurationRemaining < 0 {
			continue
		}
		ac.DurationRemaining--
		if ac.DurationRemaining <= 0 {
			expired = append(expired, id)
			delete(s.conditions, id)
		}
	}
	sort.Strings(expired)
	return expired
}

// Clear removes every condition, used when a combatant is defeated.
func (s *ActiveSet) Clear() {
	clear(s.conditions)
}

// Has reports whether the condition with id is currently active.
func (s *ActiveSet) Has(id string) bool {
	_, ok := s.conditions[id]
	return ok
}

// Stacks returns the current stack count for condition id, or 0 if not present.
func (s *ActiveSet) Stacks(id string) int {
	if ac, ok := s.conditions[id]; ok {
		return ac.Stacks
	}
	return 0
}

// Len returns the number of active conditions.
func (s *ActiveSet) Len() int { return len(s.conditions) }

// All returns the active conditions ordered by ID.
// The pointed-to values are shared; callers must not modify them.
func (s *ActiveSet) All() []*ActiveCondition {
	out := make([]*ActiveCondition, 0, len(s.conditions))
	for _, ac := range s.conditions {
		out = append(out, ac)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Def.ID < out[j].Def.ID })
	return out
}
