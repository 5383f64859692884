package battle

import (
	"fmt"

	"github.com/cory-johannsen/battle/internal/game/combat"
)

// validate checks a for legality against the current state without mutating
// anything. It returns the action rebound to the session's own ability and
// item descriptors.
//
// Postcondition: every returned error wraps combat.ErrIllegalAction.
func (s *Session) validate(actor *combat.Combatant, a combat.Action) (combat.Action, error) {
	if a.ActorID != actor.ID {
		return a, illegal("action is for %q but it is %s's turn", a.ActorID, actor.Name)
	}
	switch a.Type {
	case combat.ActionAttack:
		target, err := s.singleTarget(a)
		if err != nil {
			return a, err
		}
		if !target.Opposes(actor) {
			return a, illegal("%s cannot attack an ally", actor.Name)
		}
		if target.IsDefeated() {
			return a, illegal("%s is already defeated", target.Name)
		}
		return a, nil

	case combat.ActionDefend:
		return a, nil

	case combat.ActionFlee:
		if !actor.IsPlayer() {
			return a, illegal("only the player party can flee")
		}
		return a, nil

	case combat.ActionAbility:
		return s.validateAbility(actor, a)

	case combat.ActionItem:
		return s.validateItem(actor, a)

	default:
		return a, illegal("unknown action type %d", int(a.Type))
	}
}

func (s *Session) validateAbility(actor *combat.Combatant, a combat.Action) (combat.Action, error) {
	if a.Ability == nil {
		return a, illegal("ability action without an ability")
	}
	ab, ok := actor.Ability(a.Ability.ID)
	if !ok {
		return a, illegal("%s does not know %q", actor.Name, a.Ability.ID)
	}
	if !actor.CanAfford(ab) {
		return a, illegal("%s needs %d AP for %s but has %d", actor.Name, ab.Cost, ab.Name, actor.CurrentAP)
	}
	a.Ability = ab
	if ab.Target != combat.TargetSingle {
		return a, nil
	}
	target, err := s.singleTarget(a)
	if err != nil {
		return a, err
	}
	if target.IsDefeated() {
		return a, illegal("%s is already defeated", target.Name)
	}
	if ab.Offensive() && !target.Opposes(actor) {
		return a, illegal("%s must target an enemy", ab.Name)
	}
	if !ab.Offensive() && target.Opposes(actor) {
		return a, illegal("%s must target an ally", ab.Name)
	}
	return a, nil
}

func (s *Session) validateItem(actor *combat.Combatant, a combat.Action) (combat.Action, error) {
	if a.Item == nil {
		return a, illegal("item action without an item")
	}
	item := a.Item
	if known, ok := s.catalog.Item(item.ID); ok {
		item = known
	} else if err := item.Validate(); err != nil {
		return a, illegal("%v", err)
	}
	a.Item = item
	if item.Target != combat.TargetSingle {
		return a, nil
	}
	target, err := s.singleTarget(a)
	if err != nil {
		return a, err
	}
	if target.IsDefeated() && !item.AllowDefeated() {
		return a, illegal("%s is defeated and %s cannot revive", target.Name, item.Name)
	}
	return a, nil
}

func (s *Session) singleTarget(a combat.Action) (*combat.Combatant, error) {
	if len(a.TargetIDs) != 1 {
		return nil, illegal("%s needs exactly one target, got %d", a, len(a.TargetIDs))
	}
	target, ok := s.byID[a.TargetIDs[0]]
	if !ok {
		return nil, illegal("unknown target %q", a.TargetIDs[0])
	}
	return target, nil
}

func illegal(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{combat.ErrIllegalAction}, args...)...)
}
