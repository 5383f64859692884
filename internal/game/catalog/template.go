package catalog

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/battle/internal/game/combat"
	"github.com/cory-johannsen/battle/internal/game/condition"
)

// Stats is the shared combatant description used by enemy templates and
// encounter player entries.
type Stats struct {
	Name       string            `yaml:"name"`
	Level      int               `yaml:"level"`
	MaxHP      int               `yaml:"max_hp"`
	MaxAP      int               `yaml:"max_ap"`
	Attributes combat.Attributes `yaml:"attributes"`
	Element    combat.Element    `yaml:"element"`
	Intangible bool              `yaml:"intangible"`
	Mastery    int               `yaml:"mastery"`
	Abilities  []string          `yaml:"abilities"`
	// Profile is the AI personality name; empty selects the balanced preset.
	Profile string `yaml:"profile"`
}

// Validate checks that the stats satisfy basic invariants.
//
// Postcondition: Returns nil iff Name is non-empty, Level >= 1, MaxHP >= 1,
// MaxAP >= 0, and Element is known.
func (s *Stats) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if s.Level < 1 {
		return fmt.Errorf("%q: level must be >= 1", s.Name)
	}
	if s.MaxHP < 1 {
		return fmt.Errorf("%q: max_hp must be >= 1", s.Name)
	}
	if s.MaxAP < 0 {
		return fmt.Errorf("%q: max_ap must be >= 0", s.Name)
	}
	if err := s.Element.Validate(); err != nil {
		return fmt.Errorf("%q: %w", s.Name, err)
	}
	return nil
}

// EnemyTemplate is a reusable enemy archetype loaded from YAML.
type EnemyTemplate struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	Stats       `yaml:",inline"`
	// ExperienceYield and CurrencyYield of zero select the level-derived defaults.
	ExperienceYield int               `yaml:"experience"`
	CurrencyYield   int               `yaml:"currency"`
	Loot            *combat.LootTable `yaml:"loot"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID is non-empty, the stats are valid, yields
// are non-negative, and the loot table (if any) is valid.
func (t *EnemyTemplate) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("enemy template: id must not be empty")
	}
	if err := t.Stats.Validate(); err != nil {
		return fmt.Errorf("enemy template %q: %w", t.ID, err)
	}
	if t.ExperienceYield < 0 || t.CurrencyYield < 0 {
		return fmt.Errorf("enemy template %q: yields must be >= 0", t.ID)
	}
	if t.Loot != nil {
		if err := t.Loot.Validate(); err != nil {
			return fmt.Errorf("enemy template %q: %w", t.ID, err)
		}
	}
	return nil
}

// Spawn creates a fresh enemy combatant from the template with the given ID.
//
// Postcondition: the combatant has a unique ID, full HP and AP, and an empty condition set.
func (c *Catalog) Spawn(templateID string) (*combat.Combatant, error) {
	t, ok := c.enemies[templateID]
	if !ok {
		return nil, fmt.Errorf("catalog: unknown enemy template %q", templateID)
	}
	cbt, err := c.build(combat.KindEnemy, t.Stats)
	if err != nil {
		return nil, fmt.Errorf("spawning %q: %w", templateID, err)
	}
	cbt.ExperienceYield = t.ExperienceYield
	cbt.CurrencyYield = t.CurrencyYield
	cbt.Loot = t.Loot
	return cbt, nil
}

// build resolves ability IDs and produces a combatant at full resources.
func (c *Catalog) build(kind combat.Kind, s Stats) (*combat.Combatant, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	abilities := make([]*combat.Ability, 0, len(s.Abilities))
	for _, id := range s.Abilities {
		a, ok := c.abilities[id]
		if !ok {
			return nil, fmt.Errorf("%q: unknown ability %q", s.Name, id)
		}
		abilities = append(abilities, a)
	}
	return &combat.Combatant{
		ID:         uuid.NewString(),
		Kind:       kind,
		Name:       s.Name,
		Level:      s.Level,
		MaxHP:      s.MaxHP,
		CurrentHP:  s.MaxHP,
		MaxAP:      s.MaxAP,
		CurrentAP:  s.MaxAP,
		Attributes: s.Attributes,
		Affinity:   combat.Affinity{Element: s.Element, Intangible: s.Intangible},
		Mastery:    s.Mastery,
		Abilities:  abilities,
		Profile:    s.Profile,
		Conditions: condition.NewActiveSet(),
	}, nil
}
