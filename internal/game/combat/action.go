package combat

import (
	"fmt"

	"github.com/cory-johannsen/battle/internal/game/dice"
)

// ActionType identifies what a combatant does on its turn.
// The zero value (ActionUnknown) is intentionally invalid.
type ActionType int

const (
	ActionUnknown ActionType = iota // zero value; intentionally invalid
	ActionAttack                    // plain physical attack against one enemy
	ActionDefend                    // halve incoming damage until the next turn
	ActionAbility                   // spend AP on a special ability
	ActionItem                      // apply an item effect
	ActionFlee                      // attempt to leave the battle
)

// String returns the human-readable name of the ActionType.
func (a ActionType) String() string {
	switch a {
	case ActionAttack:
		return "attack"
	case ActionDefend:
		return "defend"
	case ActionAbility:
		return "ability"
	case ActionItem:
		return "item"
	case ActionFlee:
		return "flee"
	default:
		return "unknown"
	}
}

// TargetMode selects which combatants an ability or item affects.
type TargetMode string

const (
	TargetSingle        TargetMode = "single"
	TargetAllEnemies    TargetMode = "all_enemies"
	TargetAllAllies     TargetMode = "all_allies"
	TargetSelf          TargetMode = "self"
	TargetRandomEnemies TargetMode = "random_enemies"
)

// Valid reports whether m is a known target mode.
func (m TargetMode) Valid() bool {
	switch m {
	case TargetSingle, TargetAllEnemies, TargetAllAllies, TargetSelf, TargetRandomEnemies:
		return true
	}
	return false
}

// AbilityType selects the damage path an ability follows.
type AbilityType string

const (
	// AbilityPhysical uses the power/resilience formula.
	AbilityPhysical AbilityType = "physical"
	// AbilityElemental ignores resilience and uses the element table.
	AbilityElemental AbilityType = "elemental"
	// AbilityTrue ignores defense and the element table.
	AbilityTrue AbilityType = "true"
	// AbilitySupport restores HP to allies instead of dealing damage.
	AbilitySupport AbilityType = "support"
)

// StatusGrant describes a condition an ability applies to each target it affects.
type StatusGrant struct {
	Condition string `yaml:"condition"`
	Stacks    int    `yaml:"stacks"`
	Duration  int    `yaml:"duration"`
	// Chance is the probability of applying the condition; 0 means always.
	Chance float64 `yaml:"chance"`
}

// Ability is a data-described special action.
type Ability struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Cost        int         `yaml:"cost"`
	Type        AbilityType `yaml:"type"`
	Element     Element     `yaml:"element"`
	Target      TargetMode  `yaml:"target"`
	// Hits is the number of random enemies struck when Target is TargetRandomEnemies.
	Hits int `yaml:"hits"`
	// Magnitude is the base damage of elemental and true abilities, the power
	// bonus of physical abilities, and the healing of support abilities.
	Magnitude int          `yaml:"magnitude"`
	Status    *StatusGrant `yaml:"status"`
}

// Offensive reports whether the ability targets enemies.
func (a *Ability) Offensive() bool { return a.Type != AbilitySupport }

// Validate checks that the ability is internally consistent.
//
// Postcondition: Returns nil if valid, or an error naming the first violation.
func (a *Ability) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("ability id must not be empty")
	}
	if a.Cost < 0 {
		return fmt.Errorf("ability %q: cost must be >= 0", a.ID)
	}
	switch a.Type {
	case AbilityPhysical, AbilityTrue, AbilitySupport:
	case AbilityElemental:
		if a.Element == ElementNone {
			return fmt.Errorf("ability %q: elemental abilities require an element", a.ID)
		}
	default:
		return fmt.Errorf("ability %q: unknown type %q", a.ID, a.Type)
	}
	if err := a.Element.Validate(); err != nil {
		return fmt.Errorf("ability %q: %w", a.ID, err)
	}
	if !a.Target.Valid() {
		return fmt.Errorf("ability %q: unknown target mode %q", a.ID, a.Target)
	}
	if a.Target == TargetRandomEnemies && a.Hits < 1 {
		return fmt.Errorf("ability %q: random_enemies requires hits >= 1", a.ID)
	}
	if a.Offensive() && (a.Target == TargetAllAllies || a.Target == TargetSelf) {
		return fmt.Errorf("ability %q: offensive abilities cannot target allies", a.ID)
	}
	if !a.Offensive() && (a.Target == TargetAllEnemies || a.Target == TargetRandomEnemies) {
		return fmt.Errorf("ability %q: support abilities cannot target enemies", a.ID)
	}
	if a.Status != nil && a.Status.Condition == "" {
		return fmt.Errorf("ability %q: status grant requires a condition", a.ID)
	}
	return nil
}

// ItemEffect is the effect an item grants when used in battle.
// Inventory bookkeeping stays with the caller.
type ItemEffect struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	// HP and AP are signed deltas applied to each target.
	HP int `yaml:"hp"`
	AP int `yaml:"ap"`
	// Variance is an optional dice expression added to the HP delta.
	Variance string     `yaml:"variance"`
	Target   TargetMode `yaml:"target"`
	// Revive allows the item to target defeated allies.
	Revive bool `yaml:"revive"`
	// Cures lists condition IDs removed from each target.
	Cures []string `yaml:"cures"`
}

// AllowDefeated reports whether the item may target a defeated combatant.
func (e *ItemEffect) AllowDefeated() bool { return e.Revive }

// Validate checks that the item effect is internally consistent.
//
// Postcondition: Returns nil if valid, or an error naming the first violation.
func (e *ItemEffect) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("item id must not be empty")
	}
	switch e.Target {
	case TargetSingle, TargetAllAllies, TargetSelf:
	default:
		return fmt.Errorf("item %q: target must be single, all_allies or self, got %q", e.ID, e.Target)
	}
	if e.Variance != "" {
		if _, err := dice.Parse(e.Variance); err != nil {
			return fmt.Errorf("item %q: variance: %w", e.ID, err)
		}
	}
	return nil
}

// Action is one command issued for a combatant's turn. Exactly one payload
// matches Type: Ability for ActionAbility, Item for ActionItem.
// Actions are values; a session consumes each at most once.
type Action struct {
	Type      ActionType
	ActorID   string
	TargetIDs []string
	Ability   *Ability
	Item      *ItemEffect
}

// Attack builds a plain attack action.
func Attack(actorID, targetID string) Action {
	return Action{Type: ActionAttack, ActorID: actorID, TargetIDs: []string{targetID}}
}

// Defend builds a defend action.
func Defend(actorID string) Action {
	return Action{Type: ActionDefend, ActorID: actorID}
}

// UseAbility builds an ability action. targetIDs may be empty for modes that
// select their own targets.
func UseAbility(actorID string, ability *Ability, targetIDs ...string) Action {
	return Action{Type: ActionAbility, ActorID: actorID, Ability: ability, TargetIDs: targetIDs}
}

// UseItem builds an item action.
func UseItem(actorID string, item *ItemEffect, targetIDs ...string) Action {
	return Action{Type: ActionItem, ActorID: actorID, Item: item, TargetIDs: targetIDs}
}

// Flee builds a flee action.
func Flee(actorID string) Action {
	return Action{Type: ActionFlee, ActorID: actorID}
}

// Cost returns the AP cost of the action.
//
// Postcondition: Returns the ability cost for ActionAbility and 0 otherwise.
func (a Action) Cost() int {
	if a.Type == ActionAbility && a.Ability != nil {
		return a.Ability.Cost
	}
	return 0
}

// Target returns the target mode the action resolves with.
func (a Action) Target() TargetMode {
	switch a.Type {
	case ActionAbility:
		if a.Ability != nil {
			return a.Ability.Target
		}
	case ActionItem:
		if a.Item != nil {
			return a.Item.Target
		}
	case ActionDefend, ActionFlee:
		return TargetSelf
	}
	return TargetSingle
}

// String returns a short description for logs.
func (a Action) String() string {
	switch a.Type {
	case ActionAbility:
		if a.Ability != nil {
			return "ability:" + a.Ability.ID
		}
	case ActionItem:
		if a.Item != nil {
			return "item:" + a.Item.ID
		}
	}
	return a.Type.String()
}
