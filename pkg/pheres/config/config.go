// Package config reads agent manifests and builds the components they
// describe.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/pheres/pkg/pheres/internalerr"
)

// Manifest describes one agent: its name, the program files to load
// and an optional database for durable beliefs.
type Manifest struct {
	Name     string   `yaml:"name"`
	Sources  []string `yaml:"sources"`
	Database string   `yaml:"database"`
}

// LoadManifest loads an agent manifest from a YAML file
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if err := m.validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

func (m *Manifest) validate() error {
	if m.Name == "" {
		m.Name = "agent"
	}
	for i, s := range m.Sources {
		if s == "" {
			return fmt.Errorf("sources[%d] is empty: %w", i, internalerr.ErrInvalidConfig)
		}
	}
	return nil
}
