// Package dice provides the randomness abstraction and roll-result types
// used by the battle engine. Every random decision in a battle (variance,
// critical hits, AI scoring, flee attempts, loot) draws from a Source so
// that scenarios are reproducible under a seeded source.
package dice

import "fmt"

// RollResult holds the full audit trail for a single dice roll evaluation.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string // original expression string, e.g. "2d6+3"
	Dice       []int  // individual die results before modifier
	Modifier   int    // flat modifier (may be negative)
}

// Total returns the sum of all die results plus the modifier.
//
// Postcondition: return value == sum(r.Dice) + r.Modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String returns a human-readable audit string in the format:
//
//	"2d6+3 → [4 5] +3 = 12"
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	diceStr := fmt.Sprintf("%v", r.Dice)
	modStr := fmt.Sprintf("%+d", r.Modifier)
	return fmt.Sprintf("%s → %s %s = %d", r.Expression, diceStr, modStr, r.Total())
}

// Source is the randomness provider for the battle engine.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float in [0.0, 1.0).
	Float64() float64
}

// Uniform returns a value drawn uniformly from [lo, hi] using src.
// When lo == hi the draw is skipped and lo is returned.
//
// Precondition: lo <= hi.
func Uniform(src Source, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + src.Float64()*(hi-lo)
}

// Chance reports whether a roll against probability p succeeds.
// p <= 0 never succeeds and p >= 1 always does; neither consumes a draw.
func Chance(src Source, p float64) bool {
	switch {
	case p <= 0:
		return false
	case p >= 1:
		return true
	}
	return src.Float64() < p
}
