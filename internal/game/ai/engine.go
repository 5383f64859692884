package ai

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battle/internal/game/combat"
	"github.com/cory-johannsen/battle/internal/game/dice"
)

// HealThreshold is the ally HP fraction at or below which support abilities are considered.
const HealThreshold = 0.5

// candidate is one legal action with its profile weight.
type candidate struct {
	action combat.Action
	weight float64
}

// Engine chooses actions for AI-controlled combatants. It keeps no
// combatant state between calls.
type Engine struct {
	profiles *Registry
	src      dice.Source
	logger   *zap.Logger
}

// NewEngine creates an Engine.
//
// Precondition: profiles and src must be non-nil.
// Postcondition: a nil logger is replaced with a no-op logger.
func NewEngine(profiles *Registry, src dice.Source, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{profiles: profiles, src: src, logger: logger}
}

// Choose selects an action for actor using the profile named by actor.Profile.
//
// Precondition: actor is alive.
// Postcondition: the returned action never uses an ability the actor cannot
// afford and never targets a defeated enemy.
func (e *Engine) Choose(actor *combat.Combatant, allies, enemies []*combat.Combatant) (combat.Action, error) {
	return e.ChooseWith(e.profiles.Resolve(actor.Profile), actor, allies, enemies)
}

// ChooseWith selects an action for actor under an explicit profile.
func (e *Engine) ChooseWith(p *Profile, actor *combat.Combatant, allies, enemies []*combat.Combatant) (combat.Action, error) {
	if actor == nil {
		return combat.Action{}, errors.New("ai.Choose: actor must not be nil")
	}
	if actor.IsDefeated() {
		return combat.Action{}, fmt.Errorf("ai.Choose: %s is defeated", actor.Name)
	}
	sit := NewSituation(actor, allies, enemies)
	cands := e.candidates(p, sit)

	best, bestScore := 0, -1.0
	for i, c := range cands {
		score := c.weight * (1 - p.Randomness)
		if p.Randomness > 0 {
			score += e.src.Float64() * p.Randomness
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	chosen := cands[best].action
	e.logger.Debug("ai decision",
		zap.String("actor", actor.Name),
		zap.String("profile", p.Name),
		zap.Stringer("action", chosen),
		zap.Strings("targets", chosen.TargetIDs),
		zap.Int("candidates", len(cands)),
	)
	return chosen, nil
}

// candidates enumerates the legal actions for sit. Defend is always legal, so
// the result is never empty.
func (e *Engine) candidates(p *Profile, sit *Situation) []candidate {
	actor := sit.Actor
	enemies := sit.LivingEnemies()
	var out []candidate

	if len(enemies) > 0 {
		out = append(out, candidate{
			action: combat.Attack(actor.ID, e.pickTarget(p, sit).ID),
			weight: p.Attack,
		})
	}
	out = append(out, candidate{action: combat.Defend(actor.ID), weight: p.DefendWeight(actor.HPFraction())})

	for _, ab := range actor.Abilities {
		if !actor.CanAfford(ab) {
			continue
		}
		act, ok := e.abilityAction(p, sit, ab)
		if !ok {
			continue
		}
		out = append(out, candidate{action: act, weight: p.AbilityWeight(actor.APFraction())})
	}
	return out
}

func (e *Engine) abilityAction(p *Profile, sit *Situation, ab *combat.Ability) (combat.Action, bool) {
	actor := sit.Actor
	if ab.Offensive() {
		if len(sit.LivingEnemies()) == 0 {
			return combat.Action{}, false
		}
		if ab.Target == combat.TargetSingle {
			return combat.UseAbility(actor.ID, ab, e.pickTarget(p, sit).ID), true
		}
		return combat.UseAbility(actor.ID, ab), true
	}
	if !sit.AllyNeedsHealing(HealThreshold) {
		return combat.Action{}, false
	}
	switch ab.Target {
	case combat.TargetSingle:
		return combat.UseAbility(actor.ID, ab, sit.WeakestAlly().ID), true
	case combat.TargetSelf:
		if actor.HPFraction() > HealThreshold {
			return combat.Action{}, false
		}
		return combat.UseAbility(actor.ID, ab, actor.ID), true
	default:
		return combat.UseAbility(actor.ID, ab), true
	}
}

// pickTarget returns the weakest living enemy, or with probability
// 1-FocusFireChance a uniformly random living enemy.
//
// Precondition: at least one enemy is alive.
func (e *Engine) pickTarget(p *Profile, sit *Situation) *combat.Combatant {
	if dice.Chance(e.src, p.FocusFireChance) {
		return sit.WeakestEnemy()
	}
	enemies := sit.LivingEnemies()
	return enemies[e.src.Intn(len(enemies))]
}
