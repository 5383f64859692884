package condition

// Nil sets are treated as empty so combatants built without conditions still work.

// PowerBonus returns the net power modifier from all active conditions.
func PowerBonus(s *ActiveSet) int {
	return sum(s, func(d *ConditionDef) int { return d.PowerModifier })
}

// ResilienceBonus returns the net resilience modifier from all active conditions.
func ResilienceBonus(s *ActiveSet) int {
	return sum(s, func(d *ConditionDef) int { return d.ResilienceModifier })
}

// QuicknessBonus returns the net quickness modifier from all active conditions.
func QuicknessBonus(s *ActiveSet) int {
	return sum(s, func(d *ConditionDef) int { return d.QuicknessModifier })
}

// TurnDamage returns the HP lost at the start of the holder's turn.
// A negative value is regeneration.
func TurnDamage(s *ActiveSet) int {
	return sum(s, func(d *ConditionDef) int { return d.TurnDamage })
}

// SkipsTurn reports whether any active condition prevents the holder from acting.
func SkipsTurn(s *ActiveSet) bool {
	if s == nil {
		return false
	}
	for _, ac := range s.conditions {
		if ac.Def.SkipsTurn {
			return true
		}
	}
	return false
}

func sum(s *ActiveSet, field func(*ConditionDef) int) int {
	if s == nil {
		return 0
	}
	total := 0
	for _, ac := range s.conditions {
		total += field(ac.Def) * ac.Stacks
	}
	return total
}
