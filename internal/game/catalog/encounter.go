package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/battle/internal/game/combat"
)

// EnemySpawn requests Count enemies from one template.
type EnemySpawn struct {
	Template string `yaml:"template"`
	Count    int    `yaml:"count"`
}

// Encounter describes the two sides of one battle.
type Encounter struct {
	ID      string       `yaml:"id"`
	Name    string       `yaml:"name"`
	Players []Stats      `yaml:"players"`
	Enemies []EnemySpawn `yaml:"enemies"`
}

// Validate checks that both sides are non-empty and well formed.
func (e *Encounter) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("encounter: id must not be empty")
	}
	if len(e.Players) == 0 {
		return fmt.Errorf("encounter %q: at least one player is required", e.ID)
	}
	if len(e.Enemies) == 0 {
		return fmt.Errorf("encounter %q: at least one enemy is required", e.ID)
	}
	for i := range e.Players {
		if err := e.Players[i].Validate(); err != nil {
			return fmt.Errorf("encounter %q: player[%d]: %w", e.ID, i, err)
		}
	}
	for i, s := range e.Enemies {
		if s.Template == "" {
			return fmt.Errorf("encounter %q: enemy[%d]: template must not be empty", e.ID, i)
		}
		if s.Count < 0 {
			return fmt.Errorf("encounter %q: enemy[%d]: count must be >= 0", e.ID, i)
		}
	}
	return nil
}

// LoadEncounter reads and validates one encounter file.
//
// Precondition: path must name a readable YAML file.
// Postcondition: Returns a validated *Encounter, or an error.
func LoadEncounter(path string) (*Encounter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading encounter %q: %w", path, err)
	}
	var enc Encounter
	if err := yaml.Unmarshal(data, &enc); err != nil {
		return nil, fmt.Errorf("parsing encounter %q: %w", path, err)
	}
	if err := enc.Validate(); err != nil {
		return nil, err
	}
	return &enc, nil
}

// Build instantiates the rosters of enc. Enemies spawned more than once from
// the same template get letter suffixes ("Goblin A", "Goblin B").
//
// Precondition: enc must be valid.
// Postcondition: every returned combatant has a unique ID and full resources.
func (c *Catalog) Build(enc *Encounter) (players, enemies []*combat.Combatant, err error) {
	for _, s := range enc.Players {
		p, err := c.build(combat.KindPlayer, s)
		if err != nil {
			return nil, nil, fmt.Errorf("encounter %q: %w", enc.ID, err)
		}
		players = append(players, p)
	}
	for _, spawn := range enc.Enemies {
		count := max(1, spawn.Count)
		for i := range count {
			e, err := c.Spawn(spawn.Template)
			if err != nil {
				return nil, nil, fmt.Errorf("encounter %q: %w", enc.ID, err)
			}
			if count > 1 {
				e.Name = fmt.Sprintf("%s %c", e.Name, 'A'+rune(i%26))
			}
			enemies = append(enemies, e)
		}
	}
	return players, enemies, nil
}
