// Package condition models timed status effects (burn, poison, stun, guard
// break, haste) that abilities grant to combatants during a battle.
package condition

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Duration types.
const (
	DurationRounds    = "rounds"
	DurationPermanent = "permanent"
)

// ConditionDef is the static definition of a condition, loaded from YAML.
//
// Attribute modifiers and TurnDamage are per stack; negative TurnDamage heals.
type ConditionDef struct {
	ID                 string `yaml:"id"`
	Name               string `yaml:"name"`
	Description        string `yaml:"description"`
	DurationType       string `yaml:"duration_type"` // "rounds" | "permanent"
	MaxStacks          int    `yaml:"max_stacks"`    // 0 = unstackable
	PowerModifier      int    `yaml:"power_modifier"`
	ResilienceModifier int    `yaml:"resilience_modifier"`
	QuicknessModifier  int    `yaml:"quickness_modifier"`
	TurnDamage         int    `yaml:"turn_damage"`
	SkipsTurn          bool   `yaml:"skips_turn"`
}

// Validate checks the definition's invariants.
//
// Postcondition: nil iff ID and Name are non-empty, DurationType is known,
// and MaxStacks >= 0.
func (d *ConditionDef) Validate() error {
	if d.ID == "" {
		return errors.New("condition: id must not be empty")
	}
	if d.Name == "" {
		return fmt.Errorf("condition %q: name must not be empty", d.ID)
	}
	switch d.DurationType {
	case DurationRounds, DurationPermanent:
	default:
		return fmt.Errorf("condition %q: duration_type must be one of [rounds, permanent], got %q", d.ID, d.DurationType)
	}
	if d.MaxStacks < 0 {
		return fmt.Errorf("condition %q: max_stacks must be >= 0, got %d", d.ID, d.MaxStacks)
	}
	return nil
}

// Registry holds all known ConditionDefs keyed by ID. It is read-only after loading.
type Registry struct {
	defs map[string]*ConditionDef
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*ConditionDef)}
}

// Register adds def to the registry, overwriting any existing entry with the same ID.
// Precondition: def must not be nil and def.ID must not be empty.
func (r *Registry) Register(def *ConditionDef) {
	r.defs[def.ID] = def
}

// Get returns the ConditionDef for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*ConditionDef, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns a snapshot slice of all registered ConditionDefs, ordered by ID.
func (r *Registry) All() []*ConditionDef {
	out := make([]*ConditionDef, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadDirectory reads every *.yaml file in dir, parses each as a ConditionDef,
// and returns a populated Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading condition dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def ConditionDef
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		reg.Register(&def)
	}
	return reg, nil
}
