// Package catalog lists the causes of death and countries available in the
// fact tables, enriched with the cause directory.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/singleflight"

	"whomortality/internal/mortality"
)

// MaxCauseCodeLength excludes aggregate or malformed cause codes, which are
// longer than an ICD short code.
const MaxCauseCodeLength = 4

// BuildTimeout bounds a shared catalog build.
const BuildTimeout = time.Minute

// Placeholders for causes missing from the cause directory.
const (
	UnknownRevision    = "Unknown"
	UndocumentedPrefix = "Causa "
)

// CauseAvailability describes where and when a (list, cause) pair occurs.
type CauseAvailability struct {
	List      string
	Cause     string
	FirstYear int
	LastYear  int
	Countries int
	Records   int
}

// CauseInfo is a cause directory entry.
type CauseInfo struct {
	Description string
	Revision    string
}

// Entry is one selectable cause.
type Entry struct {
	Code        string `json:"code"`
	Revision    string `json:"rev"`
	Description string `json:"desc"`
	List        string `json:"list"`
}

// Store is the read side the catalog needs from the fact store.
type Store interface {
	// CauseAvailability groups mortality rows by (list, cause) within scope.
	CauseAvailability(ctx context.Context, scope mortality.ScopeFilter) ([]CauseAvailability, error)
	// CauseDescriptions looks up the given short codes in the cause directory.
	CauseDescriptions(ctx context.Context, codes []string) (map[string]CauseInfo, error)
	// ListCountries returns distinct, non-blank country display names.
	ListCountries(ctx context.Context) ([]string, error)
}

// Cache stores serialized catalogs. fiber.Storage implementations satisfy it.
type Cache interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
}

// Observer is notified of cache hits and misses.
type Observer interface {
	CatalogCacheLookup(hit bool)
}

// Service builds cause catalogs.
type Service struct {
	store    Store
	resolver *mortality.ScopeResolver
	cache    Cache
	ttl      time.Duration
	observer Observer
	group    singleflight.Group
}

// New creates a catalog service. cache may be nil to disable caching.
func New(store Store, resolver *mortality.ScopeResolver, cache Cache, ttl time.Duration, observer Observer) *Service {
	return &Service{
		store:    store,
		resolver: resolver,
		cache:    cache,
		ttl:      ttl,
		observer: observer,
	}
}

// Causes returns the catalog for scope; an empty scope means global.
// Concurrent callers for the same scope share a single build, bounded by
// BuildTimeout rather than by any one caller's context.
func (s *Service) Causes(ctx context.Context, scope string) ([]Entry, error) {
	name := mortality.NormalizeScope(scope)
	if name == "" {
		name = mortality.GlobalScopeName
	}
	key := "catalog:causes:" + name

	if entries, ok := s.cached(key); ok {
		return entries, nil
	}

	// The shared build outlives any single caller; each caller stops
	// waiting when its own ctx is done.
	ch := s.group.DoChan(key, func() (any, error) {
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), BuildTimeout)
		defer cancel()

		entries, err := s.build(buildCtx, name)
		if err != nil {
			return nil, err
		}
		s.save(key, entries)
		return entries, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]Entry), nil
	}
}

// Refresh rebuilds the catalog for scope and overwrites the cached copy.
func (s *Service) Refresh(ctx context.Context, scope string) error {
	name := mortality.NormalizeScope(scope)
	if name == "" {
		name = mortality.GlobalScopeName
	}
	entries, err := s.build(ctx, name)
	if err != nil {
		return err
	}
	s.save("catalog:causes:"+name, entries)
	return nil
}

// Countries lists the country display names, ordered by name.
func (s *Service) Countries(ctx context.Context) ([]string, error) {
	names, err := s.store.ListCountries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list countries: %w", err)
	}
	return names, nil
}

func (s *Service) build(ctx context.Context, name string) ([]Entry, error) {
	filter, err := s.resolver.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}

	avail, err := s.store.CauseAvailability(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to read cause availability: %w", err)
	}
	if len(avail) == 0 {
		return nil, fmt.Errorf("%w: no causes recorded for %q", mortality.ErrNoDataForScope, name)
	}

	codes := make([]string, 0, len(avail))
	seen := make(map[string]bool, len(avail))
	for _, a := range avail {
		if !seen[a.Cause] {
			seen[a.Cause] = true
			codes = append(codes, a.Cause)
		}
	}
	infos, err := s.store.CauseDescriptions(ctx, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to read cause descriptions: %w", err)
	}

	return BuildEntries(avail, infos, filter.IsGlobal()), nil
}

// BuildEntries joins availability with directory entries. Undocumented codes
// are described as UndocumentedPrefix + code with UnknownRevision. Global
// catalogs also report how many countries record the cause.
func BuildEntries(avail []CauseAvailability, infos map[string]CauseInfo, global bool) []Entry {
	entries := make([]Entry, 0, len(avail))
	for _, a := range avail {
		desc := UndocumentedPrefix + a.Cause
		rev := UnknownRevision
		if info, ok := infos[a.Cause]; ok {
			desc = info.Description
			rev = info.Revision
		}
		if global {
			desc = fmt.Sprintf("%s (%d-%d, %d countries)", desc, a.FirstYear, a.LastYear, a.Countries)
		} else {
			desc = fmt.Sprintf("%s (%d-%d)", desc, a.FirstYear, a.LastYear)
		}
		entries = append(entries, Entry{
			Code:        mortality.Cause{List: a.List, Code: a.Cause}.Composite(),
			Revision:    rev,
			Description: desc,
			List:        a.List,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].List != entries[j].List {
			return entries[i].List < entries[j].List
		}
		return entries[i].Code < entries[j].Code
	})
	return entries
}

func (s *Service) cached(key string) ([]Entry, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(key)
	if err != nil {
		slog.Warn("catalog cache read failed", "key", key, "error", err)
		return nil, false
	}
	if len(data) == 0 {
		s.observe(false)
		return nil, false
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		slog.Warn("catalog cache entry is corrupt", "key", key, "error", err)
		return nil, false
	}
	s.observe(true)
	return entries, true
}

func (s *Service) save(key string, entries []Entry) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(entries)
	if err != nil {
		slog.Warn("catalog cache encode failed", "key", key, "error", err)
		return
	}
	if err := s.cache.Set(key, data, s.ttl); err != nil {
		slog.Warn("catalog cache write failed", "key", key, "error", err)
	}
}

func (s *Service) observe(hit bool) {
	if s.observer != nil {
		s.observer.CatalogCacheLookup(hit)
	}
}
