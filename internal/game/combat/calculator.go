package combat

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/battle/internal/game/dice"
)

// Tuning holds the constants of the damage formulas.
type Tuning struct {
	VarianceMin           float64
	VarianceMax           float64
	CritBase              float64
	CritPerLuck           float64
	CritMultiplierBase    float64
	CritMultiplierPerLuck float64
	DefendFactor          float64
	MasteryPerPoint       float64
	// ResolvePerPoint is the fraction of a status duration shed per point of the target's resolve.
	ResolvePerPoint float64
	// NoVariance and NoCrits remove randomness for deterministic checks.
	NoVariance bool
	NoCrits    bool
}

// DefaultTuning returns the standard damage constants.
func DefaultTuning() Tuning {
	return Tuning{
		VarianceMin:           0.85,
		VarianceMax:           1.0,
		CritBase:              0.05,
		CritPerLuck:           0.005,
		CritMultiplierBase:    1.5,
		CritMultiplierPerLuck: 0.01,
		DefendFactor:          0.5,
		MasteryPerPoint:       0.01,
		ResolvePerPoint:       0.0001,
	}
}

// Calculator resolves damage and restoration. It holds no combatant state:
// every method reads its arguments and returns an Outcome without mutating them.
type Calculator struct {
	tuning Tuning
	src    dice.Source
}

// NewCalculator creates a Calculator drawing randomness from src.
//
// Precondition: src must be non-nil.
// Postcondition: Returns a non-nil Calculator.
func NewCalculator(tuning Tuning, src dice.Source) *Calculator {
	return &Calculator{tuning: tuning, src: src}
}

// Tuning returns the constants this calculator was built with.
func (c *Calculator) Tuning() Tuning { return c.tuning }

// CritChance returns the critical hit probability for attacker.
func (c *Calculator) CritChance(attacker *Combatant) float64 {
	return c.tuning.CritBase + c.tuning.CritPerLuck*float64(attacker.Attributes.Luck)
}

// CritMultiplier returns the critical damage multiplier for attacker.
func (c *Calculator) CritMultiplier(attacker *Combatant) float64 {
	return c.tuning.CritMultiplierBase + c.tuning.CritMultiplierPerLuck*float64(attacker.Attributes.Luck)
}

// Attack resolves a plain physical attack.
//
// Precondition: attacker and defender must be non-nil.
// Postcondition: HPDelta <= -1 unless the outcome is Immune or Missed.
func (c *Calculator) Attack(attacker, defender *Combatant) Outcome {
	return c.physical(attacker, defender, 0)
}

// Ability resolves an offensive ability against one defender.
//
// Precondition: ab must be offensive.
// Postcondition: HPDelta <= -1 unless the outcome is Immune or Missed.
func (c *Calculator) Ability(attacker, defender *Combatant, ab *Ability) Outcome {
	switch ab.Type {
	case AbilityPhysical:
		return c.physical(attacker, defender, ab.Magnitude)
	case AbilityElemental:
		return c.elemental(attacker, defender, ab)
	case AbilityTrue:
		return c.trueDamage(attacker, defender, ab)
	default:
		return c.Support(attacker, defender, ab)
	}
}

// Support resolves a healing ability against one ally.
//
// Postcondition: HPDelta == ab.Magnitude unless the target is defeated.
func (c *Calculator) Support(actor, target *Combatant, ab *Ability) Outcome {
	out := newOutcome(actor, target)
	if target.IsDefeated() {
		out.Missed = true
		return out
	}
	out.HPDelta = ab.Magnitude
	return out
}

// Item resolves an item effect against one target.
//
// Precondition: item must be non-nil with a valid Variance expression.
// Postcondition: Returns Missed when the target is defeated and the item cannot revive.
func (c *Calculator) Item(user, target *Combatant, item *ItemEffect) (Outcome, error) {
	out := newOutcome(user, target)
	if target.IsDefeated() && !item.AllowDefeated() {
		out.Missed = true
		return out, nil
	}
	hp := item.HP
	if item.Variance != "" {
		roll, err := c.roll(item.Variance)
		if err != nil {
			return Outcome{}, fmt.Errorf("item %q variance: %w", item.ID, err)
		}
		if hp < 0 {
			hp -= roll.Total()
		} else {
			hp += roll.Total()
		}
	}
	out.HPDelta = hp
	out.APDelta = item.AP
	for _, id := range item.Cures {
		if target.Conditions != nil && target.Conditions.Has(id) {
			out.Cured = append(out.Cured, id)
		}
	}
	return out, nil
}

// StatusDuration returns how many rounds a granted condition lasts on target.
// Each point of resolve sheds ResolvePerPoint of the base duration, truncated.
//
// Postcondition: the result is at least 1.
func (c *Calculator) StatusDuration(target *Combatant, base int) int {
	shed := min(1, max(0, c.tuning.ResolvePerPoint*float64(target.Attributes.Resolve)))
	return max(1, int(float64(base)*(1-shed)))
}

// physical implements max(1, power*2 - resilience) + bonus, then variance, crit and defense.
func (c *Calculator) physical(attacker, defender *Combatant, bonus int) Outcome {
	out := newOutcome(attacker, defender)
	if defender.IsDefeated() {
		out.Missed = true
		return out
	}
	// Intangibility is checked before the formula runs.
	if defender.Affinity.Intangible {
		out.Immune = true
		out.Multiplier = ImmuneMultiplier
		return out
	}
	raw := float64(max(1, attacker.Power()*2-defender.Resilience()) + bonus)
	out.HPDelta, out.Critical = c.finish(attacker, defender, raw, true)
	return out
}

// elemental scales magnitude plus acuity by mastery and the element table.
// It bypasses resilience and the defend stance.
func (c *Calculator) elemental(attacker, defender *Combatant, ab *Ability) Outcome {
	out := newOutcome(attacker, defender)
	if defender.IsDefeated() {
		out.Missed = true
		return out
	}
	out.Multiplier = Effectiveness(ab.Element, defender.Affinity.Element)
	if out.Multiplier == ImmuneMultiplier {
		out.Immune = true
		return out
	}
	base := float64(ab.Magnitude+attacker.Attributes.Acuity) *
		(1 + c.tuning.MasteryPerPoint*float64(attacker.Mastery)) *
		out.Multiplier
	out.HPDelta, out.Critical = c.finish(attacker, defender, base, false)
	return out
}

// trueDamage ignores resilience, the defend stance, and the element table.
func (c *Calculator) trueDamage(attacker, defender *Combatant, ab *Ability) Outcome {
	out := newOutcome(attacker, defender)
	if defender.IsDefeated() {
		out.Missed = true
		return out
	}
	base := float64(ab.Magnitude + attacker.Attributes.Acuity)
	out.HPDelta, out.Critical = c.finish(attacker, defender, base, false)
	return out
}

// finish applies variance, then crit, then the defend stance, and rounds with a floor of 1.
// It returns the signed HP delta.
func (c *Calculator) finish(attacker, defender *Combatant, base float64, defendable bool) (int, bool) {
	dmg := base
	if !c.tuning.NoVariance {
		dmg *= dice.Uniform(c.src, c.tuning.VarianceMin, c.tuning.VarianceMax)
	}
	crit := false
	if !c.tuning.NoCrits && dice.Chance(c.src, c.CritChance(attacker)) {
		crit = true
		dmg *= c.CritMultiplier(attacker)
	}
	if defendable && defender.Defending {
		dmg *= c.tuning.DefendFactor
	}
	return -max(1, int(math.Round(dmg))), crit
}

// roll evaluates a dice expression, through the Roller when the source is one
// so the roll is logged.
func (c *Calculator) roll(expr string) (dice.RollResult, error) {
	if r, ok := c.src.(*dice.Roller); ok {
		return r.RollExpr(expr)
	}
	return dice.RollExpr(expr, c.src)
}

func newOutcome(actor, target *Combatant) Outcome {
	return Outcome{ActorID: actor.ID, TargetID: target.ID, Multiplier: NeutralMultiplier}
}
