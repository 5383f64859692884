package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/battle/internal/game/combat"
	"github.com/cory-johannsen/battle/internal/game/condition"
)

// Content subdirectories under a catalog root.
const (
	AbilitiesDir  = "abilities"
	ItemsDir      = "items"
	EnemiesDir    = "enemies"
	ConditionsDir = "conditions"
)

type abilityFile struct {
	Abilities []*combat.Ability `yaml:"abilities"`
}

type itemFile struct {
	Items []*combat.ItemEffect `yaml:"items"`
}

// Load builds a Catalog from the YAML content under root. Each content
// subdirectory is optional; a missing one contributes nothing.
//
// Precondition: root must be a readable directory.
// Postcondition: Returns a validated Catalog, or an error naming the first bad file.
func Load(root string) (*Catalog, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("catalog: reading root %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("catalog: root %q is not a directory", root)
	}

	c := New()
	if dir := filepath.Join(root, ConditionsDir); exists(dir) {
		reg, err := condition.LoadDirectory(dir)
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		c.conditions = reg
	}
	err = eachYAML(filepath.Join(root, AbilitiesDir), func(path string, data []byte) error {
		var f abilityFile
		if err := decodeStrict(data, &f); err != nil {
			return err
		}
		for _, a := range f.Abilities {
			if err := c.RegisterAbility(a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = eachYAML(filepath.Join(root, ItemsDir), func(path string, data []byte) error {
		var f itemFile
		if err := decodeStrict(data, &f); err != nil {
			return err
		}
		for _, it := range f.Items {
			if err := c.RegisterItem(it); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = eachYAML(filepath.Join(root, EnemiesDir), func(path string, data []byte) error {
		var t EnemyTemplate
		if err := decodeStrict(data, &t); err != nil {
			return err
		}
		return c.RegisterEnemy(&t)
	})
	if err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// eachYAML calls fn for every *.yaml file in dir, in directory order.
// A missing dir is not an error.
func eachYAML(dir string, fn func(path string, data []byte) error) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("catalog: reading %q: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("catalog: reading %q: %w", path, err)
		}
		if err := fn(path, data); err != nil {
			return fmt.Errorf("catalog: loading %q: %w", path, err)
		}
	}
	return nil
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(out)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
