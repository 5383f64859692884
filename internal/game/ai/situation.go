package ai

import "github.com/cory-johannsen/battle/internal/game/combat"

// Situation is the battlefield as seen by one acting combatant.
//
// Invariant: Actor is non-nil; Allies includes Actor.
type Situation struct {
	Actor   *combat.Combatant
	Allies  []*combat.Combatant
	Enemies []*combat.Combatant
}

// NewSituation builds a Situation, adding actor to allies when absent.
//
// Precondition: actor must be non-nil.
func NewSituation(actor *combat.Combatant, allies, enemies []*combat.Combatant) *Situation {
	s := &Situation{Actor: actor, Enemies: enemies}
	found := false
	for _, a := range allies {
		if a == actor {
			found = true
		}
	}
	if !found {
		s.Allies = append([]*combat.Combatant{actor}, allies...)
	} else {
		s.Allies = allies
	}
	return s
}

// LivingEnemies returns enemies with HP > 0, in roster order.
func (s *Situation) LivingEnemies() []*combat.Combatant { return living(s.Enemies) }

// LivingAllies returns allies (including the actor) with HP > 0, in roster order.
func (s *Situation) LivingAllies() []*combat.Combatant { return living(s.Allies) }

// WeakestEnemy returns the living enemy with the lowest HP fraction, or nil.
//
// Postcondition: ties are broken by roster order.
func (s *Situation) WeakestEnemy() *combat.Combatant { return weakest(s.LivingEnemies()) }

// WeakestAlly returns the living ally with the lowest HP fraction, or nil.
func (s *Situation) WeakestAlly() *combat.Combatant { return weakest(s.LivingAllies()) }

// AllyNeedsHealing reports whether any living ally is at or below threshold HP fraction.
func (s *Situation) AllyNeedsHealing(threshold float64) bool {
	w := s.WeakestAlly()
	return w != nil && w.HPFraction() <= threshold
}

func living(cs []*combat.Combatant) []*combat.Combatant {
	var out []*combat.Combatant
	for _, c := range cs {
		if c.IsAlive() {
			out = append(out, c)
		}
	}
	return out
}

func weakest(cs []*combat.Combatant) *combat.Combatant {
	if len(cs) == 0 {
		return nil
	}
	w := cs[0]
	for _, c := range cs[1:] {
		if c.HPFraction() < w.HPFraction() {
			w = c
		}
	}
	return w
}
