package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/cognicore/pheres/pkg/pheres/beliefs"
	"github.com/cognicore/pheres/pkg/pheres/beliefs/membase"
	"github.com/cognicore/pheres/pkg/pheres/beliefs/sqlite"
)

// Loader reads a manifest and constructs components
type Loader struct {
	ManifestPath string
}

// Components holds everything a manifest describes, ready to hand to
// the agent facade. Source paths come back resolved against the
// manifest's directory.
type Components struct {
	Manifest *Manifest
	Base     beliefs.Base
	Sources  []string
}

// Load reads the manifest and returns initialized components
func (l *Loader) Load(ctx context.Context) (*Components, error) {
	m, err := LoadManifest(l.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	dir := filepath.Dir(l.ManifestPath)

	comp := &Components{Manifest: m}

	if m.Database != "" {
		dbPath := m.Database
		if !filepath.IsAbs(dbPath) {
			dbPath = filepath.Join(dir, dbPath)
		}
		base, err := sqlite.Open(ctx, dbPath)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		comp.Base = base
	} else {
		comp.Base = membase.New()
	}

	comp.Sources = make([]string, len(m.Sources))
	for i, s := range m.Sources {
		if !filepath.IsAbs(s) {
			s = filepath.Join(dir, s)
		}
		comp.Sources[i] = s
	}

	return comp, nil
}
