package mortality

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
)

// GlobalScopeName is the scope string that disables country filtering.
const GlobalScopeName = "global"

// ScopeFilter is the resolved geographic filter of a request. A global filter
// carries no countries and applies no country predicate; any other filter
// carries at least one country id.
type ScopeFilter struct {
	global    bool
	countries []string
}

// GlobalScope returns the unfiltered scope.
func GlobalScope() ScopeFilter {
	return ScopeFilter{global: true}
}

// CountryScope builds a filter over the given country ids. Ids are trimmed,
// blanks dropped and duplicates collapsed keeping first occurrence.
func CountryScope(ids []string) (ScopeFilter, error) {
	seen := make(map[string]bool, len(ids))
	countries := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		countries = append(countries, id)
	}
	if len(countries) == 0 {
		return ScopeFilter{}, fmt.Errorf("%w: empty country set", ErrScopeNotFound)
	}
	return ScopeFilter{countries: countries}, nil
}

// IsGlobal reports whether the scope is unfiltered.
func (s ScopeFilter) IsGlobal() bool {
	return s.global
}

// Countries returns a copy of the ordered country ids (nil when global).
func (s ScopeFilter) Countries() []string {
	if s.global || len(s.countries) == 0 {
		return nil
	}
	out := make([]string, len(s.countries))
	copy(out, s.countries)
	return out
}

// Contains reports whether country passes the filter.
func (s ScopeFilter) Contains(country string) bool {
	if s.global {
		return true
	}
	country = strings.TrimSpace(country)
	for _, c := range s.countries {
		if c == country {
			return true
		}
	}
	return false
}

func (s ScopeFilter) valid() bool {
	return s.global || len(s.countries) > 0
}

// RegionLookup maps a normalized region name to its member country ids.
// ok is false when no such region exists, which is distinct from a region
// that exists with no members.
type RegionLookup interface {
	CountriesForRegion(name string) (ids []string, ok bool)
}

// CountryDirectory finds a country id by partial, case-insensitive display
// name match. found is false when nothing matches.
type CountryDirectory interface {
	FindCountryCode(ctx context.Context, name string) (code string, found bool, err error)
}

// NormalizeScope trims and case-folds a scope string.
func NormalizeScope(scope string) string {
	return cases.Fold().String(strings.TrimSpace(scope))
}

// ScopeResolver turns a free-text scope into a ScopeFilter.
type ScopeResolver struct {
	regions   RegionLookup
	countries CountryDirectory
}

// NewScopeResolver creates a resolver. regions may be nil when no region
// table is configured.
func NewScopeResolver(regions RegionLookup, countries CountryDirectory) *ScopeResolver {
	return &ScopeResolver{regions: regions, countries: countries}
}

// Resolve maps scope to "global", a region's countries, or the first country
// whose display name contains scope.
func (r *ScopeResolver) Resolve(ctx context.Context, scope string) (ScopeFilter, error) {
	name := NormalizeScope(scope)
	if name == "" {
		return ScopeFilter{}, fmt.Errorf("%w: empty scope", ErrScopeNotFound)
	}
	if name == GlobalScopeName {
		return GlobalScope(), nil
	}

	if r.regions != nil {
		if ids, ok := r.regions.CountriesForRegion(name); ok {
			filter, err := CountryScope(ids)
			if err != nil {
				return ScopeFilter{}, fmt.Errorf("%w: region %q has no countries", ErrScopeNotFound, scope)
			}
			slog.Debug("scope resolved to region", "scope", name, "countries", len(filter.countries))
			return filter, nil
		}
	}

	if r.countries == nil {
		return ScopeFilter{}, fmt.Errorf("%w: %q", ErrScopeNotFound, scope)
	}
	code, found, err := r.countries.FindCountryCode(ctx, strings.TrimSpace(scope))
	if err != nil {
		return ScopeFilter{}, fmt.Errorf("failed to look up country %q: %w", scope, err)
	}
	if !found {
		return ScopeFilter{}, fmt.Errorf("%w: %q", ErrScopeNotFound, scope)
	}
	filter, err := CountryScope([]string{code})
	if err != nil {
		return ScopeFilter{}, fmt.Errorf("%w: %q", ErrScopeNotFound, scope)
	}
	return filter, nil
}
