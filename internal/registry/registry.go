package registry

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"landslide-monitor/internal/models"
)

// ErrEmptyRegistry is returned when no sites are configured
var ErrEmptyRegistry = errors.New("registry: no sites configured")

// DefaultSites are the monitored neighbourhoods used when no sites file is given
var DefaultSites = []models.Site{
	{ID: "A", Name: "Jardim Satélite", Lat: -23.2359, Lon: -45.9010},
	{ID: "B", Name: "Parque Industrial", Lat: -23.2385, Lon: -45.9222},
	{ID: "C", Name: "Vila Ema", Lat: -23.2088, Lon: -45.8971},
	{ID: "D", Name: "Urbanova", Lat: -23.2031, Lon: -45.9458},
	{ID: "E", Name: "Centro", Lat: -23.1813, Lon: -45.8820},
}

// Registry is the immutable, ordered set of monitored sites
type Registry struct {
	sites []models.Site
	index map[string]int
}

// New builds a registry, preserving the given order
func New(sites []models.Site) (*Registry, error) {
	if len(sites) == 0 {
		return nil, ErrEmptyRegistry
	}

	r := &Registry{
		sites: make([]models.Site, len(sites)),
		index: make(map[string]int, len(sites)),
	}
	copy(r.sites, sites)

	for i, site := range r.sites {
		if site.ID == "" {
			return nil, fmt.Errorf("registry: site %d has an empty id", i)
		}
		if _, dup := r.index[site.ID]; dup {
			return nil, fmt.Errorf("registry: duplicate site id %q", site.ID)
		}
		r.index[site.ID] = i
	}

	return r, nil
}

// Default returns a registry holding DefaultSites
func Default() *Registry {
	r, err := New(DefaultSites)
	if err != nil {
		panic(err)
	}
	return r
}

// sitesFile is the on-disk layout of a sites override file
type sitesFile struct {
	Sites []models.Site `yaml:"sites"`
}

// LoadFile reads a YAML sites file; an empty path yields the default registry
func LoadFile(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sites file: %w", err)
	}

	var f sitesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse sites file: %w", err)
	}

	return New(f.Sites)
}

// Sites returns a copy of all sites in registry order
func (r *Registry) Sites() []models.Site {
	out := make([]models.Site, len(r.sites))
	copy(out, r.sites)
	return out
}

// IDs returns all site IDs in registry order
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.sites))
	for i, site := range r.sites {
		ids[i] = site.ID
	}
	return ids
}

// Get looks up a site by ID
func (r *Registry) Get(id string) (models.Site, bool) {
	i, ok := r.index[id]
	if !ok {
		return models.Site{}, false
	}
	return r.sites[i], true
}

// Len returns the number of registered sites
func (r *Registry) Len() int {
	return len(r.sites)
}
