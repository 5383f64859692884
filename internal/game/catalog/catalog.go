// Package catalog holds the read-only content a battle draws on: abilities,
// item effects, status conditions, and enemy templates.
package catalog

import (
	"fmt"
	"sort"

	"github.com/cory-johannsen/battle/internal/game/combat"
	"github.com/cory-johannsen/battle/internal/game/condition"
)

// Catalog indexes battle content by ID. It is built once and then shared
// read-only between sessions.
type Catalog struct {
	abilities  map[string]*combat.Ability
	items      map[string]*combat.ItemEffect
	enemies    map[string]*EnemyTemplate
	conditions *condition.Registry
}

// New returns an empty Catalog.
//
// Postcondition: all internal maps are initialised.
func New() *Catalog {
	return &Catalog{
		abilities:  make(map[string]*combat.Ability),
		items:      make(map[string]*combat.ItemEffect),
		enemies:    make(map[string]*EnemyTemplate),
		conditions: condition.NewRegistry(),
	}
}

// RegisterAbility adds a to the catalog.
//
// Precondition: a must not be nil.
// Postcondition: Ability(a.ID) returns (a, true); returns error if a is invalid or already registered.
func (c *Catalog) RegisterAbility(a *combat.Ability) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	if _, exists := c.abilities[a.ID]; exists {
		return fmt.Errorf("catalog: ability ID %q already registered", a.ID)
	}
	c.abilities[a.ID] = a
	return nil
}

// RegisterItem adds e to the catalog.
//
// Precondition: e must not be nil.
// Postcondition: Item(e.ID) returns (e, true); returns error if e is invalid or already registered.
func (c *Catalog) RegisterItem(e *combat.ItemEffect) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	if _, exists := c.items[e.ID]; exists {
		return fmt.Errorf("catalog: item ID %q already registered", e.ID)
	}
	c.items[e.ID] = e
	return nil
}

// RegisterEnemy adds t to the catalog.
//
// Precondition: t must not be nil.
// Postcondition: Enemy(t.ID) returns (t, true); returns error if t is invalid or already registered.
func (c *Catalog) RegisterEnemy(t *EnemyTemplate) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if _, exists := c.enemies[t.ID]; exists {
		return fmt.Errorf("catalog: enemy template ID %q already registered", t.ID)
	}
	c.enemies[t.ID] = t
	return nil
}

// RegisterCondition adds def to the catalog's condition registry.
func (c *Catalog) RegisterCondition(def *condition.ConditionDef) error {
	if err := def.Validate(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	c.conditions.Register(def)
	return nil
}

// Ability returns the ability with the given ID.
func (c *Catalog) Ability(id string) (*combat.Ability, bool) {
	a, ok := c.abilities[id]
	return a, ok
}

// Item returns the item effect with the given ID.
func (c *Catalog) Item(id string) (*combat.ItemEffect, bool) {
	e, ok := c.items[id]
	return e, ok
}

// Enemy returns the enemy template with the given ID.
func (c *Catalog) Enemy(id string) (*EnemyTemplate, bool) {
	t, ok := c.enemies[id]
	return t, ok
}

// Condition returns the condition definition with the given ID.
func (c *Catalog) Condition(id string) (*condition.ConditionDef, bool) {
	return c.conditions.Get(id)
}

// Conditions returns the underlying condition registry.
func (c *Catalog) Conditions() *condition.Registry { return c.conditions }

// AbilityIDs returns every registered ability ID in sorted order.
func (c *Catalog) AbilityIDs() []string { return sortedKeys(c.abilities) }

// ItemIDs returns every registered item ID in sorted order.
func (c *Catalog) ItemIDs() []string { return sortedKeys(c.items) }

// EnemyIDs returns every registered enemy template ID in sorted order.
func (c *Catalog) EnemyIDs() []string { return sortedKeys(c.enemies) }

// Validate checks references between catalog entries: status grants must
// name known conditions, enemy abilities must exist, and loot must name known items.
//
// Postcondition: Returns nil iff every reference resolves.
func (c *Catalog) Validate() error {
	for _, id := range c.AbilityIDs() {
		a := c.abilities[id]
		if a.Status == nil {
			continue
		}
		if _, ok := c.conditions.Get(a.Status.Condition); !ok {
			return fmt.Errorf("catalog: ability %q grants unknown condition %q", id, a.Status.Condition)
		}
	}
	for _, id := range c.ItemIDs() {
		for _, cure := range c.items[id].Cures {
			if _, ok := c.conditions.Get(cure); !ok {
				return fmt.Errorf("catalog: item %q cures unknown condition %q", id, cure)
			}
		}
	}
	for _, id := range c.EnemyIDs() {
		t := c.enemies[id]
		for _, ab := range t.Abilities {
			if _, ok := c.abilities[ab]; !ok {
				return fmt.Errorf("catalog: enemy %q references unknown ability %q", id, ab)
			}
		}
		if t.Loot == nil {
			continue
		}
		for _, drop := range t.Loot.Items {
			if _, ok := c.items[drop.ItemID]; !ok {
				return fmt.Errorf("catalog: enemy %q drops unknown item %q", id, drop.ItemID)
			}
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
