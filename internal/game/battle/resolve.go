package battle

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battle/internal/game/combat"
	"github.com/cory-johannsen/battle/internal/game/condition"
	"github.com/cory-johannsen/battle/internal/game/dice"
)

// resolve applies a validated action and returns one outcome per target affected.
func (s *Session) resolve(actor *combat.Combatant, a combat.Action) []combat.Outcome {
	switch a.Type {
	case combat.ActionAttack:
		target := s.byID[a.TargetIDs[0]]
		out := s.calc.Attack(actor, target)
		s.apply(target, &out, "attacks")
		return []combat.Outcome{out}

	case combat.ActionDefend:
		actor.Defending = true
		out := combat.Outcome{ActorID: actor.ID, TargetID: actor.ID, Multiplier: combat.NeutralMultiplier}
		out.Message = fmt.Sprintf("%s takes a defensive stance.", actor.Name)
		s.record(out.Message)
		return []combat.Outcome{out}

	case combat.ActionAbility:
		return s.resolveAbility(actor, a)

	case combat.ActionItem:
		return s.resolveItem(actor, a)

	case combat.ActionFlee:
		return []combat.Outcome{s.resolveFlee(actor)}
	}
	return nil
}

func (s *Session) resolveAbility(actor *combat.Combatant, a combat.Action) []combat.Outcome {
	ab := a.Ability
	actor.ApplyAPDelta(-ab.Cost)
	s.record(fmt.Sprintf("%s uses %s!", actor.Name, ab.Name))

	hit := func(target *combat.Combatant) combat.Outcome {
		var out combat.Outcome
		if ab.Offensive() {
			out = s.calc.Ability(actor, target, ab)
		} else {
			out = s.calc.Support(actor, target, ab)
		}
		s.apply(target, &out, ab.Name)
		s.grantStatus(target, ab.Status, &out)
		return out
	}

	var outcomes []combat.Outcome
	switch ab.Target {
	case combat.TargetRandomEnemies:
		// Each hit picks again from the enemies still standing.
		for range ab.Hits {
			living := living(s.opponentsOf(actor))
			if len(living) == 0 {
				break
			}
			outcomes = append(outcomes, hit(living[s.src.Intn(len(living))]))
		}
	default:
		for _, target := range s.targets(actor, ab.Target, a.TargetIDs, false) {
			outcomes = append(outcomes, hit(target))
		}
	}
	return outcomes
}

func (s *Session) resolveItem(actor *combat.Combatant, a combat.Action) []combat.Outcome {
	item := a.Item
	s.record(fmt.Sprintf("%s uses %s.", actor.Name, item.Name))

	var outcomes []combat.Outcome
	for _, target := range s.targets(actor, item.Target, a.TargetIDs, item.AllowDefeated()) {
		out, err := s.calc.Item(actor, target, item)
		if err != nil {
			s.logger.Warn("item resolution failed", zap.String("item", item.ID), zap.Error(err))
			out = combat.Outcome{ActorID: actor.ID, TargetID: target.ID, Multiplier: combat.NeutralMultiplier, Missed: true}
		}
		s.apply(target, &out, item.Name)
		outcomes = append(outcomes, out)
	}
	return outcomes
}

// FleeChance returns the percent chance that actor escapes: the configured
// base plus a per-point bonus for each point of quickness above the average
// of the living opposing side, clamped to the configured bounds.
func (s *Session) FleeChance(actor *combat.Combatant) int {
	opponents := living(s.opponentsOf(actor))
	if len(opponents) == 0 {
		return s.cfg.FleeMax
	}
	total := 0
	for _, o := range opponents {
		total += o.Quickness()
	}
	avg := float64(total) / float64(len(opponents))
	pct := float64(s.cfg.FleeBase) + float64(s.cfg.FleePerSpeed)*(float64(actor.Quickness())-avg)
	return clamp(int(math.Round(pct)), s.cfg.FleeMin, s.cfg.FleeMax)
}

func (s *Session) resolveFlee(actor *combat.Combatant) combat.Outcome {
	out := combat.Outcome{ActorID: actor.ID, TargetID: actor.ID, Multiplier: combat.NeutralMultiplier}
	pct := s.FleeChance(actor)
	if dice.Chance(s.src, float64(pct)/100) {
		out.Message = fmt.Sprintf("%s leads the party away!", actor.Name)
		s.record(out.Message)
		s.end(Fled)
		return out
	}
	out.Missed = true
	out.Message = fmt.Sprintf("%s could not escape!", actor.Name)
	s.record(out.Message)
	return out
}

// targets expands a target mode into combatants. Defeated combatants are
// included only when allowDefeated is set.
func (s *Session) targets(actor *combat.Combatant, mode combat.TargetMode, ids []string, allowDefeated bool) []*combat.Combatant {
	keep := func(cs []*combat.Combatant) []*combat.Combatant {
		if allowDefeated {
			return cs
		}
		return living(cs)
	}
	switch mode {
	case combat.TargetSelf:
		return []*combat.Combatant{actor}
	case combat.TargetAllEnemies:
		return keep(s.opponentsOf(actor))
	case combat.TargetAllAllies:
		return keep(s.alliesOf(actor))
	default:
		return []*combat.Combatant{s.byID[ids[0]]}
	}
}

// apply commits an outcome to target, replacing the calculated deltas with
// the clamped amounts actually applied, and writes the narration line.
func (s *Session) apply(target *combat.Combatant, out *combat.Outcome, label string) {
	wasAlive := target.IsAlive()
	if !out.Missed && !out.Immune {
		out.HPDelta = target.ApplyHPDelta(out.HPDelta)
		out.APDelta = target.ApplyAPDelta(out.APDelta)
		for _, id := range out.Cured {
			target.Conditions.Remove(id)
		}
	}
	out.Message = s.narrate(target, out, label)
	s.record(out.Message)

	switch {
	case wasAlive && target.IsDefeated():
		target.Defeat()
		s.record(fmt.Sprintf("%s is defeated!", target.Name))
	case !wasAlive && target.IsAlive():
		s.record(fmt.Sprintf("%s is revived!", target.Name))
	}
}

func (s *Session) grantStatus(target *combat.Combatant, grant *combat.StatusGrant, out *combat.Outcome) {
	if grant == nil || out.Missed || out.Immune || target.IsDefeated() {
		return
	}
	if grant.Chance > 0 && !dice.Chance(s.src, grant.Chance) {
		return
	}
	def, ok := s.catalog.Condition(grant.Condition)
	if !ok {
		s.logger.Warn("status grant names an unknown condition", zap.String("condition", grant.Condition))
		return
	}
	duration := grant.Duration
	if duration >= 0 {
		duration = s.calc.StatusDuration(target, max(1, duration))
	}
	if err := target.Conditions.Apply(def, grant.Stacks, duration); err != nil {
		s.logger.Warn("applying condition", zap.String("condition", def.ID), zap.Error(err))
		return
	}
	out.Status = def.ID
	s.record(fmt.Sprintf("%s is afflicted with %s.", target.Name, def.Name))
}

func (s *Session) narrate(target *combat.Combatant, out *combat.Outcome, label string) string {
	actor := s.byID[out.ActorID]
	switch {
	case out.Missed:
		return fmt.Sprintf("%s's %s has no effect on %s.", actor.Name, label, target.Name)
	case out.Immune:
		return fmt.Sprintf("%s is immune to %s!", target.Name, label)
	}

	var b strings.Builder
	switch {
	case out.HPDelta < 0:
		if label == "attacks" {
			fmt.Fprintf(&b, "%s attacks %s for %d damage.", actor.Name, target.Name, -out.HPDelta)
		} else {
			fmt.Fprintf(&b, "%s hits %s for %d damage.", label, target.Name, -out.HPDelta)
		}
	case out.HPDelta > 0:
		fmt.Fprintf(&b, "%s restores %d HP to %s.", label, out.HPDelta, target.Name)
	default:
		fmt.Fprintf(&b, "%s affects %s.", label, target.Name)
	}
	if out.APDelta > 0 {
		fmt.Fprintf(&b, " %s recovers %d AP.", target.Name, out.APDelta)
	}
	for _, id := range out.Cured {
		fmt.Fprintf(&b, " %s is cured of %s.", target.Name, s.conditionName(id))
	}
	if out.Critical {
		b.WriteString(" Critical hit!")
	}
	if out.Multiplier > combat.NeutralMultiplier {
		b.WriteString(" It's super effective!")
	}
	return b.String()
}

func conditionLine(c *combat.Combatant, def *condition.ConditionDef, delta int) string {
	if delta < 0 {
		return fmt.Sprintf("%s takes %d damage from %s.", c.Name, -delta, def.Name)
	}
	return fmt.Sprintf("%s recovers %d HP from %s.", c.Name, delta, def.Name)
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

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
