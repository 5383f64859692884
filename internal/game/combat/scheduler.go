package combat

import "slices"

// Order returns the living combatants sorted by descending effective quickness.
// Ties keep roster order.
//
// Postcondition: The input slice is not modified; every returned combatant is alive.
func Order(roster []*Combatant) []*Combatant {
	living := make([]*Combatant, 0, len(roster))
	for _, c := range roster {
		if c.IsAlive() {
			living = append(living, c)
		}
	}
	slices.SortStableFunc(living, func(a, b *Combatant) int {
		return b.Quickness() - a.Quickness()
	})
	return living
}

// Scheduler hands out turns in quickness order, one pass per round.
// After each full pass the roster is re-sorted on current quickness.
type Scheduler struct {
	roster []*Combatant
	order  []*Combatant
	index  int
	round  int
}

// NewScheduler creates a Scheduler over roster, positioned at the start of round 1.
//
// Precondition: roster order is the tie-break order.
// Postcondition: Round() == 1.
func NewScheduler(roster []*Combatant) *Scheduler {
	r := make([]*Combatant, len(roster))
	copy(r, roster)
	return &Scheduler{roster: r, order: Order(r), round: 1}
}

// Round returns the current round number, starting at 1.
func (s *Scheduler) Round() int { return s.round }

// Next returns the next living combatant, advancing to a new round after a full pass.
//
// Postcondition: Returns a living combatant, or ErrNoActorAvailable when none is alive.
func (s *Scheduler) Next() (*Combatant, error) {
	if !anyAlive(s.roster) {
		return nil, ErrNoActorAvailable
	}
	for {
		if s.index >= len(s.order) {
			s.order = Order(s.roster)
			s.index = 0
			s.round++
		}
		c := s.order[s.index]
		s.index++
		if c.IsAlive() {
			return c, nil
		}
	}
}

// Preview returns the next n combatants Next would yield, without advancing.
// Combatants defeated at call time are skipped; later rounds use the order a
// re-sort would produce now.
//
// Postcondition: len(result) == n unless no combatant is alive; state is unchanged.
func (s *Scheduler) Preview(n int) []*Combatant {
	if n <= 0 || !anyAlive(s.roster) {
		return nil
	}
	out := make([]*Combatant, 0, n)
	for _, c := range s.order[s.index:] {
		if len(out) == n {
			return out
		}
		if c.IsAlive() {
			out = append(out, c)
		}
	}
	next := Order(s.roster)
	for len(out) < n {
		for _, c := range next {
			if len(out) == n {
				break
			}
			out = append(out, c)
		}
	}
	return out
}

// Remaining returns the living combatants still to act in the current round.
func (s *Scheduler) Remaining() []*Combatant {
	var out []*Combatant
	for _, c := range s.order[s.index:] {
		if c.IsAlive() {
			out = append(out, c)
		}
	}
	return out
}

func anyAlive(roster []*Combatant) bool {
	return slices.ContainsFunc(roster, (*Combatant).IsAlive)
}
