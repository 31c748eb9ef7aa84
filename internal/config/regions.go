package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"whomortality/internal/mortality"
)

// RegionsFileConfig represents the structure of the regions YAML file.
type RegionsFileConfig struct {
	Regions []RegionConfig `yaml:"regions"`
}

// RegionConfig defines a named region and its member countries.
type RegionConfig struct {
	Name      string   `yaml:"name"`
	Aliases   []string `yaml:"aliases,omitempty"` // Alternative names, e.g. translations
	Countries []string `yaml:"countries"`         // Country ids as used by the fact tables
}

// RegionTable resolves region names to country ids. Lookups are
// case-insensitive. It is read-only after construction.
type RegionTable struct {
	regions map[string][]string
	names   []string
}

// NewRegionTable builds a table from region definitions. Names and aliases
// are case-folded; a name defined twice is an error.
func NewRegionTable(regions []RegionConfig) (*RegionTable, error) {
	t := &RegionTable{regions: make(map[string][]string)}
	for _, r := range regions {
		if name := strings.TrimSpace(r.Name); name != "" {
			t.names = append(t.names, name)
		}
		names := append([]string{r.Name}, r.Aliases...)
		countries := make([]string, 0, len(r.Countries))
		for _, c := range r.Countries {
			if c = strings.TrimSpace(c); c != "" {
				countries = append(countries, c)
			}
		}
		for _, n := range names {
			key := mortality.NormalizeScope(n)
			if key == "" {
				continue
			}
			if key == mortality.GlobalScopeName {
				return nil, fmt.Errorf("region name %q is reserved", n)
			}
			if _, dup := t.regions[key]; dup {
				return nil, fmt.Errorf("region %q defined more than once", n)
			}
			t.regions[key] = countries
		}
	}
	return t, nil
}

// CountriesForRegion implements mortality.RegionLookup. ok is false when the
// region is unknown; a known region may still have no countries.
func (t *RegionTable) CountriesForRegion(name string) ([]string, bool) {
	if t == nil {
		return nil, false
	}
	ids, ok := t.regions[mortality.NormalizeScope(name)]
	if !ok {
		return nil, false
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out, true
}

// Len returns the number of distinct names (including aliases).
func (t *RegionTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.regions)
}

// Names returns the primary region names in definition order.
func (t *RegionTable) Names() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// LoadRegions loads the region table from path.
// Returns an empty table without error if the file doesn't exist.
func LoadRegions(path string) (*RegionTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Region file is optional
			return NewRegionTable(nil)
		}
		return nil, err
	}
	return ParseRegions(data)
}

// ParseRegions parses region definitions from YAML.
func ParseRegions(data []byte) (*RegionTable, error) {
	var cfg RegionsFileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse regions: %w", err)
	}
	return NewRegionTable(cfg.Regions)
}
