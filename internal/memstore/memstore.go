// Package memstore is an in-memory fact store. It evaluates the same grouped
// reads as the SQL store over rows held in memory, which makes it suitable
// for tests, fixtures and small offline datasets.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"whomortality/internal/catalog"
	"whomortality/internal/mortality"
)

// Population sex codes eligible for aggregation. Code 9 (unspecified/both)
// would double count.
var eligibleSexCodes = map[string]bool{"1": true, "2": true}

// MortalityRow is one wide-format mortality fact.
type MortalityRow struct {
	Country string
	Year    int
	List    string
	Cause   string
	Sex     string
	Deaths  mortality.Partitions
}

// PopulationRow is one wide-format population fact.
type PopulationRow struct {
	Country    string
	Year       int
	Sex        string
	Population mortality.Partitions
}

// InternetRow is one internet adoption fact with its raw, locale-formatted
// percentage.
type InternetRow struct {
	Country string
	Year    int
	Value   string
}

// Country is a country directory entry.
type Country struct {
	Code string
	Name string
}

// Store holds fact rows in memory. It is safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	mortality  []MortalityRow
	population []PopulationRow
	internet   []InternetRow
	countries  []Country
	causes     map[string]catalog.CauseInfo
}

// New creates an empty store.
func New() *Store {
	return &Store{causes: make(map[string]catalog.CauseInfo)}
}

// AddMortality appends mortality rows.
func (s *Store) AddMortality(rows ...MortalityRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mortality = append(s.mortality, rows...)
}

// AddPopulation appends population rows.
func (s *Store) AddPopulation(rows ...PopulationRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.population = append(s.population, rows...)
}

// AddInternet appends internet adoption rows.
func (s *Store) AddInternet(rows ...InternetRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.internet = append(s.internet, rows...)
}

// AddCountries appends country directory entries.
func (s *Store) AddCountries(countries ...Country) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.countries = append(s.countries, countries...)
}

// AddCause registers a cause directory entry.
func (s *Store) AddCause(code string, info catalog.CauseInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.causes[strings.TrimSpace(code)] = info
}

// matching returns the mortality rows that pass the filter.
func (s *Store) matching(f mortality.FilterContext) []MortalityRow {
	scope := f.Scope()
	causes := f.Causes()
	var out []MortalityRow
	for _, r := range s.mortality {
		if scope.Contains(r.Country) && causes.Contains(r.List, r.Cause) {
			out = append(out, r)
		}
	}
	return out
}

// DeathsByYear implements mortality.FactStore.
func (s *Store) DeathsByYear(ctx context.Context, f mortality.FilterContext) ([]mortality.YearCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[int]int64)
	for _, r := range s.matching(f) {
		totals[r.Year] += r.Deaths.Sum()
	}
	return yearCounts(totals), nil
}

// PopulationByYear implements mortality.FactStore.
func (s *Store) PopulationByYear(ctx context.Context, scope mortality.ScopeFilter) ([]mortality.YearCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[int]int64)
	for _, r := range s.population {
		if !eligibleSexCodes[strings.TrimSpace(r.Sex)] || !scope.Contains(r.Country) {
			continue
		}
		totals[r.Year] += r.Population.Sum()
	}
	return yearCounts(totals), nil
}

// InternetUsageByYear implements mortality.FactStore.
func (s *Store) InternetUsageByYear(ctx context.Context, scope mortality.ScopeFilter) ([]mortality.YearPercent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var avg mortality.PercentAverager
	for _, r := range s.internet {
		if scope.Contains(r.Country) {
			avg.Add(r.Year, r.Value)
		}
	}
	return avg.Averages(), nil
}

type yearCause struct {
	year  int
	list  string
	cause string
}

// DeathsByYearAndCause implements mortality.FactStore.
func (s *Store) DeathsByYearAndCause(ctx context.Context, f mortality.FilterContext) ([]mortality.CauseYearBreakdown, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[yearCause]int64)
	for _, r := range s.matching(f) {
		k := yearCause{year: r.Year, list: strings.TrimSpace(r.List), cause: strings.TrimSpace(r.Cause)}
		totals[k] += r.Deaths.Sum()
	}

	out := make([]mortality.CauseYearBreakdown, 0, len(totals))
	for k, total := range totals {
		out = append(out, mortality.CauseYearBreakdown{Year: k.year, List: k.list, Cause: k.cause, Deaths: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		if out[i].List != out[j].List {
			return out[i].List < out[j].List
		}
		return out[i].Cause < out[j].Cause
	})
	return out, nil
}

// DeathsByCause implements mortality.FactStore.
func (s *Store) DeathsByCause(ctx context.Context, f mortality.FilterContext) ([]mortality.CauseTotal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[mortality.Cause]int64)
	for _, r := range s.matching(f) {
		totals[mortality.Cause{List: strings.TrimSpace(r.List), Code: strings.TrimSpace(r.Cause)}] += r.Deaths.Sum()
	}

	out := make([]mortality.CauseTotal, 0, len(totals))
	for c, total := range totals {
		out = append(out, mortality.CauseTotal{List: c.List, Cause: c.Code, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].List != out[j].List {
			return out[i].List < out[j].List
		}
		return out[i].Cause < out[j].Cause
	})
	return out, nil
}

// FindCountryCode implements mortality.CountryDirectory.
func (s *Store) FindCountryCode(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]mortality.CountryName, 0, len(s.countries))
	for _, c := range s.countries {
		names = append(names, mortality.CountryName{Code: c.Code, Name: c.Name})
	}
	code, found := mortality.MatchCountry(name, names)
	return code, found, nil
}

// CauseAvailability implements catalog.Store.
func (s *Store) CauseAvailability(ctx context.Context, scope mortality.ScopeFilter) ([]catalog.CauseAvailability, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	type acc struct {
		avail     catalog.CauseAvailability
		countries map[string]bool
	}
	byCause := make(map[mortality.Cause]*acc)
	for _, r := range s.mortality {
		list, cause := strings.TrimSpace(r.List), strings.TrimSpace(r.Cause)
		if list == "" || cause == "" || len(cause) > catalog.MaxCauseCodeLength || !scope.Contains(r.Country) {
			continue
		}
		key := mortality.Cause{List: list, Code: cause}
		a, ok := byCause[key]
		if !ok {
			a = &acc{
				avail:     catalog.CauseAvailability{List: list, Cause: cause, FirstYear: r.Year, LastYear: r.Year},
				countries: make(map[string]bool),
			}
			byCause[key] = a
		}
		a.avail.FirstYear = min(a.avail.FirstYear, r.Year)
		a.avail.LastYear = max(a.avail.LastYear, r.Year)
		a.avail.Records++
		a.countries[strings.TrimSpace(r.Country)] = true
	}

	out := make([]catalog.CauseAvailability, 0, len(byCause))
	for _, a := range byCause {
		a.avail.Countries = len(a.countries)
		out = append(out, a.avail)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].List != out[j].List {
			return out[i].List < out[j].List
		}
		return out[i].Cause < out[j].Cause
	})
	return out, nil
}

// CauseDescriptions implements catalog.Store.
func (s *Store) CauseDescriptions(ctx context.Context, codes []string) (map[string]catalog.CauseInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]catalog.CauseInfo, len(codes))
	for _, code := range codes {
		if info, ok := s.causes[strings.TrimSpace(code)]; ok {
			out[code] = info
		}
	}
	return out, nil
}

// ListCountries implements catalog.Store.
func (s *Store) ListCountries(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool, len(s.countries))
	names := make([]string, 0, len(s.countries))
	for _, c := range s.countries {
		name := strings.TrimSpace(c.Name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func yearCounts(totals map[int]int64) []mortality.YearCount {
	out := make([]mortality.YearCount, 0, len(totals))
	for year, total := range totals {
		out = append(out, mortality.YearCount{Year: year, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}
