package agent

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the on-disk shape of an agent descriptor file.
type ConfigFile struct {
	// Defaults overrides the process-wide default parameters.
	Defaults *Overrides `yaml:"defaults"`
	// Agents maps agent id to its sparse configuration.
	Agents map[string]Overrides `yaml:"agents"`
	// Categories maps agent id to a listing category.
	Categories map[string]string `yaml:"categories"`
	// FewShot maps agent id to example pairs.
	FewShot map[string][]Example `yaml:"few_shot"`
}

// LoadFile builds a Registry from a YAML descriptor file layered on top of
// the built-in roster. Entries in the file add to or replace built-in agents;
// validation happens at load time.
func LoadFile(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read agent config: %w", err)
	}

	var cfg ConfigFile
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse agent config: %w", err)
	}
	return cfg.Registry()
}

// Registry merges the file contents onto the built-in roster.
func (c ConfigFile) Registry() (*Registry, error) {
	return NewRegistry(func(o *RegistryOptions) {
		if c.Defaults != nil {
			o.Defaults = c.Defaults.apply(o.Defaults)
		}
		for id, ov := range c.Agents {
			o.Overrides[id] = ov
			if !contains(o.IDs, id) {
				o.IDs = append(o.IDs, id)
			}
		}
		for id, cat := range c.Categories {
			o.Categories[id] = cat
		}
		for id, examples := range c.FewShot {
			o.FewShot[id] = examples
		}
	})
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
