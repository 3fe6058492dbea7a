// Package source loads and indexes the per-source crawler profiles.
package source

import (
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/citypulse/harvester/internal/model"
)

// Registry indexes source profiles by name.
type Registry struct {
	profiles map[string]model.SourceProfile
	order    []string
}

// registryFile is the on-disk shape of the profile registry.
type registryFile struct {
	Sources []model.SourceProfile `yaml:"sources"`
}

// Load reads and validates a YAML profile registry. Every profile is
// validated at load so selector typos surface before any crawl starts.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: read %s", path)
	}
	return Parse(data)
}

// Parse builds a registry from raw YAML.
func Parse(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, eris.Wrap(err, "source: parse registry")
	}

	r := &Registry{profiles: make(map[string]model.SourceProfile, len(file.Sources))}
	for _, p := range file.Sources {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.profiles[p.Name]; dup {
			return nil, eris.Errorf("source: duplicate profile %q", p.Name)
		}
		p.Detail.Fetch = p.Detail.Fetch.Normalize()
		r.profiles[p.Name] = p
		r.order = append(r.order, p.Name)
	}
	return r, nil
}

// Get returns the profile for a source name.
func (r *Registry) Get(name string) (model.SourceProfile, bool) {
	p, ok := r.profiles[name]
	return p, ok
}

// Names returns all profile names in registry order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Enabled returns the profiles with detail enrichment enabled, sorted by
// name for deterministic crawl scheduling.
func (r *Registry) Enabled() []model.SourceProfile {
	var out []model.SourceProfile
	for _, name := range r.order {
		if p := r.profiles[name]; p.Detail.Enabled {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
