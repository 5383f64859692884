// Package combat implements the turn-based battle rules: combatants, actions,
// damage resolution, and turn scheduling.
package combat

import (
	"math"

	"github.com/cory-johannsen/battle/internal/game/condition"
)

// Kind distinguishes player-controlled combatants from enemy combatants.
type Kind int

const (
	KindPlayer Kind = iota
	KindEnemy
)

// String returns "player" or "enemy".
func (k Kind) String() string {
	if k == KindPlayer {
		return "player"
	}
	return "enemy"
}

// Attributes are the base statistics of a combatant.
type Attributes struct {
	Power      int `yaml:"power"`
	Resilience int `yaml:"resilience"`
	Quickness  int `yaml:"quickness"`
	Acuity     int `yaml:"acuity"`
	Resolve    int `yaml:"resolve"`
	Luck       int `yaml:"luck"`
}

// Affinity describes the elemental nature of a combatant.
type Affinity struct {
	Element Element `yaml:"element"`
	// Intangible combatants take no damage from plain physical attacks.
	Intangible bool `yaml:"intangible"`
}

// Combatant represents one participant in a battle, either a player or an enemy.
// A session borrows combatants from its caller; it never copies them.
//
// Invariant: 0 <= CurrentHP <= MaxHP and 0 <= CurrentAP <= MaxAP once clamped
// by any mutating method.
type Combatant struct {
	ID        string
	Kind      Kind
	Name      string
	Level     int
	MaxHP     int
	CurrentHP int
	MaxAP     int
	CurrentAP int

	Attributes Attributes
	Affinity   Affinity
	// Mastery scales elemental ability damage by one percent per point.
	Mastery   int
	Abilities []*Ability

	// ExperienceYield and CurrencyYield are awarded when an enemy is defeated.
	// Zero selects the level-derived default.
	ExperienceYield int
	CurrencyYield   int
	Loot            *LootTable

	// Profile names the AI personality used when this combatant is not player-controlled.
	Profile string
	// Experience is the accumulated experience of a player toward the next level.
	Experience int

	// Defending halves incoming damage until this combatant's next turn begins.
	Defending  bool
	Conditions *condition.ActiveSet
}

// IsPlayer reports whether this combatant is player-controlled.
func (c *Combatant) IsPlayer() bool { return c.Kind == KindPlayer }

// IsAlive reports whether CurrentHP > 0.
func (c *Combatant) IsAlive() bool { return c.CurrentHP > 0 }

// IsDefeated reports whether CurrentHP has reached zero.
func (c *Combatant) IsDefeated() bool { return c.CurrentHP <= 0 }

// Opposes reports whether other fights on the opposite side.
func (c *Combatant) Opposes(other *Combatant) bool { return c.Kind != other.Kind }

// ApplyHPDelta adds delta to CurrentHP and clamps the result to [0, MaxHP].
//
// Postcondition: Returns the delta actually applied; 0 <= CurrentHP <= MaxHP.
func (c *Combatant) ApplyHPDelta(delta int) int {
	before := c.CurrentHP
	c.CurrentHP = clamp(c.CurrentHP+delta, 0, c.MaxHP)
	return c.CurrentHP - before
}

// ApplyAPDelta adds delta to CurrentAP and clamps the result to [0, MaxAP].
//
// Postcondition: Returns the delta actually applied; 0 <= CurrentAP <= MaxAP.
func (c *Combatant) ApplyAPDelta(delta int) int {
	before := c.CurrentAP
	c.CurrentAP = clamp(c.CurrentAP+delta, 0, c.MaxAP)
	return c.CurrentAP - before
}

// HPFraction returns CurrentHP/MaxHP, or 0 when MaxHP is not positive.
func (c *Combatant) HPFraction() float64 {
	if c.MaxHP <= 0 {
		return 0
	}
	return float64(c.CurrentHP) / float64(c.MaxHP)
}

// APFraction returns CurrentAP/MaxAP, or 0 when MaxAP is not positive.
func (c *Combatant) APFraction() float64 {
	if c.MaxAP <= 0 {
		return 0
	}
	return float64(c.CurrentAP) / float64(c.MaxAP)
}

// Power returns base power plus active condition modifiers, floored at zero.
func (c *Combatant) Power() int {
	return max(0, c.Attributes.Power+condition.PowerBonus(c.Conditions))
}

// Resilience returns base resilience plus active condition modifiers, floored at zero.
func (c *Combatant) Resilience() int {
	return max(0, c.Attributes.Resilience+condition.ResilienceBonus(c.Conditions))
}

// Quickness returns base quickness plus active condition modifiers, floored at zero.
func (c *Combatant) Quickness() int {
	return max(0, c.Attributes.Quickness+condition.QuicknessBonus(c.Conditions))
}

// Ability returns the ability with the given ID known by this combatant.
//
// Postcondition: Returns (ability, true) if known, or (nil, false) otherwise.
func (c *Combatant) Ability(id string) (*Ability, bool) {
	for _, a := range c.Abilities {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

// CanAfford reports whether CurrentAP covers the ability's cost.
func (c *Combatant) CanAfford(a *Ability) bool {
	return a != nil && a.Cost <= c.CurrentAP
}

// ExperienceReward returns the experience granted for defeating this combatant.
//
// Postcondition: Returns ExperienceYield when positive, otherwise Level*10.
func (c *Combatant) ExperienceReward() int {
	if c.ExperienceYield > 0 {
		return c.ExperienceYield
	}
	return max(1, c.Level) * 10
}

// CurrencyReward returns the currency granted for defeating this combatant.
//
// Postcondition: Returns CurrencyYield when positive, otherwise Level*50.
func (c *Combatant) CurrencyReward() int {
	if c.CurrencyYield > 0 {
		return c.CurrencyYield
	}
	return max(1, c.Level) * 50
}

// ExperienceToNext returns the experience needed to advance from level to level+1.
// The first level requires 100; each following level requires 1.5 times the previous.
//
// Precondition: level >= 1.
// Postcondition: Returns >= 100.
func ExperienceToNext(level int) int {
	return int(math.Round(100 * math.Pow(1.5, float64(max(1, level)-1))))
}

// GainExperience adds amount to Experience and advances Level while the threshold is met.
//
// Precondition: amount >= 0.
// Postcondition: Returns the level before and after; from == to when no level was gained.
func (c *Combatant) GainExperience(amount int) (from, to int) {
	from = max(1, c.Level)
	c.Level = from
	c.Experience += max(0, amount)
	for c.Experience >= ExperienceToNext(c.Level) {
		c.Experience -= ExperienceToNext(c.Level)
		c.Level++
	}
	return from, c.Level
}

// Defeat clears the transient battle state of a combatant that reached zero HP.
//
// Postcondition: Defending is false and no conditions remain.
func (c *Combatant) Defeat() {
	c.Defending = false
	if c.Conditions != nil {
		c.Conditions.Clear()
	}
}

// View is a read-only snapshot of a combatant for presentation.
type View struct {
	ID         string
	Name       string
	Kind       Kind
	Level      int
	CurrentHP  int
	MaxHP      int
	CurrentAP  int
	MaxAP      int
	Defending  bool
	Conditions []string
}

// Snapshot returns the presentation view of this combatant.
func (c *Combatant) Snapshot() View {
	v := View{
		ID:        c.ID,
		Name:      c.Name,
		Kind:      c.Kind,
		Level:     c.Level,
		CurrentHP: c.CurrentHP,
		MaxHP:     c.MaxHP,
		CurrentAP: c.CurrentAP,
		MaxAP:     c.MaxAP,
		Defending: c.Defending,
	}
	if c.Conditions != nil {
		for _, ac := range c.Conditions.All() {
			v.Conditions = append(v.Conditions, ac.Def.ID)
		}
	}
	return v
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	return min(max(v, lo), hi)
}
