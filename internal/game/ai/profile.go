// Package ai chooses actions for combatants that are not player-controlled.
//
// Behaviour is data: a Profile weights the attack, defend, and ability
// action kinds, and a randomness scalar blends those weights with noise.
// Difficulty is expressed purely through that scalar.
package ai

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Difficulty selects how erratic AI decisions are.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty converts s to a Difficulty.
//
// Postcondition: Returns an error for any value other than easy, normal, or hard.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(s)); d {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return d, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// Randomness returns the noise scalar for the difficulty. Higher is easier.
func (d Difficulty) Randomness() float64 {
	switch d {
	case DifficultyEasy:
		return 0.4
	case DifficultyHard:
		return 0.1
	default:
		return 0.2
	}
}

// Preset profile names.
const (
	ProfileAggressive = "aggressive"
	ProfileDefensive  = "defensive"
	ProfileTactical   = "tactical"
	ProfileBalanced   = "balanced"
)

// DefaultLowHealthThreshold is the HP fraction below which LowHealthDefend applies.
const DefaultLowHealthThreshold = 0.3

// Profile is an AI personality.
//
// Invariant: weights are non-negative; Randomness and FocusFireChance are in [0, 1].
type Profile struct {
	Name    string  `yaml:"name"`
	Attack  float64 `yaml:"attack"`
	Defend  float64 `yaml:"defend"`
	Ability float64 `yaml:"ability"`
	// Randomness blends weights with uniform noise: score = w*(1-r) + U*r.
	Randomness float64 `yaml:"randomness"`
	// FocusFireChance is the probability of targeting the weakest enemy
	// instead of a uniformly random one.
	FocusFireChance float64 `yaml:"focus_fire_chance"`
	// LowHealthDefend replaces Defend when the actor's HP fraction is below
	// LowHealthThreshold and the value is larger. Zero disables it.
	LowHealthDefend    float64 `yaml:"low_health_defend"`
	LowHealthThreshold float64 `yaml:"low_health_threshold"`
	// APAware halves the ability weight while the actor's AP fraction is below 0.3.
	APAware bool `yaml:"ap_aware"`
}

// DefendWeight returns the defend weight for an actor at the given HP fraction.
func (p *Profile) DefendWeight(hpFraction float64) float64 {
	threshold := p.LowHealthThreshold
	if threshold == 0 {
		threshold = DefaultLowHealthThreshold
	}
	if hpFraction < threshold && p.LowHealthDefend > p.Defend {
		return p.LowHealthDefend
	}
	return p.Defend
}

// AbilityWeight returns the ability weight for an actor at the given AP fraction.
func (p *Profile) AbilityWeight(apFraction float64) float64 {
	if p.APAware && apFraction < 0.3 {
		return p.Ability / 2
	}
	return p.Ability
}

// Validate checks the profile invariants.
//
// Postcondition: Returns nil if valid, or an error naming the first violation.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return errors.New("ai.Profile: name must not be empty")
	}
	for field, w := range map[string]float64{"attack": p.Attack, "defend": p.Defend, "ability": p.Ability, "low_health_defend": p.LowHealthDefend} {
		if w < 0 {
			return fmt.Errorf("ai.Profile %q: %s weight must be >= 0, got %g", p.Name, field, w)
		}
	}
	if p.Attack+p.Defend+p.Ability == 0 {
		return fmt.Errorf("ai.Profile %q: at least one weight must be positive", p.Name)
	}
	for field, v := range map[string]float64{"randomness": p.Randomness, "focus_fire_chance": p.FocusFireChance, "low_health_threshold": p.LowHealthThreshold} {
		if v < 0 || v > 1 {
			return fmt.Errorf("ai.Profile %q: %s must be 0-1, got %g", p.Name, field, v)
		}
	}
	return nil
}

// Presets returns the four built-in profiles at the given difficulty and focus-fire chance.
//
// Postcondition: Returns aggressive, defensive, tactical, and balanced, each valid.
func Presets(d Difficulty, focusFire float64) []*Profile {
	r := d.Randomness()
	return []*Profile{
		{Name: ProfileAggressive, Attack: 0.75, Defend: 0.05, Ability: 0.20, Randomness: r, FocusFireChance: focusFire},
		{Name: ProfileDefensive, Attack: 0.40, Defend: 0.30, Ability: 0.30, Randomness: r, FocusFireChance: focusFire,
			LowHealthDefend: 0.8, LowHealthThreshold: DefaultLowHealthThreshold},
		{Name: ProfileTactical, Attack: 0.35, Defend: 0.10, Ability: 0.55, Randomness: r, FocusFireChance: focusFire, APAware: true},
		{Name: ProfileBalanced, Attack: 1.0 / 3, Defend: 1.0 / 3, Ability: 1.0 / 3, Randomness: r, FocusFireChance: focusFire},
	}
}

// Registry indexes Profiles by name.
//
// Invariant: each name is registered at most once.
type Registry struct {
	profiles map[string]*Profile
}

// NewRegistry returns a Registry seeded with the presets.
//
// Postcondition: Get(ProfileBalanced) succeeds.
func NewRegistry(d Difficulty, focusFire float64) *Registry {
	r := &Registry{profiles: make(map[string]*Profile)}
	for _, p := range Presets(d, focusFire) {
		r.profiles[p.Name] = p
	}
	return r
}

// Register stores p.
//
// Precondition: p must be valid.
// Postcondition: Returns an error on name collision.
func (r *Registry) Register(p *Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, exists := r.profiles[p.Name]; exists {
		return fmt.Errorf("ai.Registry: profile %q already registered", p.Name)
	}
	r.profiles[p.Name] = p
	return nil
}

// Get returns the profile registered under name.
func (r *Registry) Get(name string) (*Profile, bool) {
	p, ok := r.profiles[name]
	return p, ok
}

// Resolve returns the profile registered under name, falling back to balanced.
func (r *Registry) Resolve(name string) *Profile {
	if p, ok := r.profiles[name]; ok {
		return p
	}
	return r.profiles[ProfileBalanced]
}

// Names returns the registered profile names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for n := range r.profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// profileDoc is the YAML document shape. Pointer fields distinguish an
// omitted value from an explicit zero.
type profileDoc struct {
	Name               string   `yaml:"name"`
	Attack             float64  `yaml:"attack"`
	Defend             float64  `yaml:"defend"`
	Ability            float64  `yaml:"ability"`
	Randomness         *float64 `yaml:"randomness"`
	FocusFireChance    *float64 `yaml:"focus_fire_chance"`
	LowHealthDefend    float64  `yaml:"low_health_defend"`
	LowHealthThreshold float64  `yaml:"low_health_threshold"`
	APAware            bool     `yaml:"ap_aware"`
}

type profileFile struct {
	Profile *profileDoc `yaml:"profile"`
}

// LoadDirectory parses every *.yaml profile in dir into r. Profiles that omit
// randomness or focus_fire_chance inherit the values of the balanced preset.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns an error if any file fails to parse, validate, or register.
func (r *Registry) LoadDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("ai.LoadDirectory: reading %q: %w", dir, err)
	}
	base := r.profiles[ProfileBalanced]
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return fmt.Errorf("ai.LoadDirectory: reading %s: %w", e.Name(), err)
		}
		var f profileFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("ai.LoadDirectory: parsing %s: %w", e.Name(), err)
		}
		if f.Profile == nil {
			return fmt.Errorf("ai.LoadDirectory: %s missing top-level 'profile' key", e.Name())
		}
		if err := r.Register(f.Profile.toProfile(base)); err != nil {
			return fmt.Errorf("ai.LoadDirectory: %s: %w", e.Name(), err)
		}
	}
	return nil
}

func (d *profileDoc) toProfile(base *Profile) *Profile {
	p := &Profile{
		Name:               d.Name,
		Attack:             d.Attack,
		Defend:             d.Defend,
		Ability:            d.Ability,
		Randomness:         base.Randomness,
		FocusFireChance:    base.FocusFireChance,
		LowHealthDefend:    d.LowHealthDefend,
		LowHealthThreshold: d.LowHealthThreshold,
		APAware:            d.APAware,
	}
	if d.Randomness != nil {
		p.Randomness = *d.Randomness
	}
	if d.FocusFireChance != nil {
		p.FocusFireChance = *d.FocusFireChance
	}
	return p
}
