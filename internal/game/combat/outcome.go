package combat

// Outcome is the effect of one action on one target.
type Outcome struct {
	ActorID  string
	TargetID string
	// HPDelta and APDelta are signed: negative for damage or drain.
	HPDelta int
	APDelta int
	// Multiplier is the element effectiveness applied, 1 when no element was involved.
	Multiplier float64
	Critical   bool
	// Immune is set when the target took no damage because of intangibility or element.
	Immune bool
	// Missed is set when the target was already defeated at resolution time.
	Missed bool
	// Status is the condition ID granted to the target, if any.
	Status string
	// Cured lists condition IDs removed from the target.
	Cured []string
	// Message is the battle log line describing this outcome.
	Message string
}

// Damage returns the HP removed, or 0 for healing and misses.
func (o Outcome) Damage() int { return max(0, -o.HPDelta) }
