package combat

import "fmt"

// Element is an elemental type carried by abilities and combatant affinities.
// The zero value means no element.
type Element string

const (
	ElementNone      Element = ""
	ElementFire      Element = "fire"
	ElementIce       Element = "ice"
	ElementLightning Element = "lightning"
	ElementWater     Element = "water"
	ElementEarth     Element = "earth"
	ElementPlant     Element = "plant"
)

// Type multipliers applied to elemental damage.
const (
	ImmuneMultiplier  = 0.0
	NeutralMultiplier = 1.0
	CounterMultiplier = 1.5
)

// counters lists, for each attacking element, the defending elements it counters.
var counters = map[Element][]Element{
	ElementFire:      {ElementIce, ElementPlant, ElementWater},
	ElementIce:       {ElementWater, ElementFire},
	ElementLightning: {ElementWater, ElementEarth},
	ElementWater:     {ElementFire, ElementLightning},
	ElementEarth:     {ElementLightning, ElementPlant},
	ElementPlant:     {ElementWater, ElementFire},
}

// Valid reports whether e is ElementNone or one of the six known elements.
func (e Element) Valid() bool {
	if e == ElementNone {
		return true
	}
	_, ok := counters[e]
	return ok
}

// Validate returns an error naming e when it is not a known element.
func (e Element) Validate() error {
	if !e.Valid() {
		return fmt.Errorf("unknown element %q", string(e))
	}
	return nil
}

// Effectiveness returns the damage multiplier for an attack of element atk
// against a defender of element def.
//
// Postcondition: Returns ImmuneMultiplier when atk == def, CounterMultiplier when
// atk counters def, and NeutralMultiplier otherwise (including when either is ElementNone).
func Effectiveness(atk, def Element) float64 {
	if atk == ElementNone || def == ElementNone {
		return NeutralMultiplier
	}
	if atk == def {
		return ImmuneMultiplier
	}
	for _, c := range counters[atk] {
		if c == def {
			return CounterMultiplier
		}
	}
	return NeutralMultiplier
}
