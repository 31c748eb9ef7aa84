// Package mortality aggregates mortality, population and internet adoption
// facts for a geographic scope and a set of causes of death.
package mortality

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// Operation names reported to the Recorder.
const (
	OpPrepare    = "prepare"
	OpTimeSeries = "timeseries"
	OpBreakdown  = "breakdown"
	OpSummary    = "summary"
)

// Recorder observes engine operations. Implementations must be safe for
// concurrent use.
type Recorder interface {
	ObserveOperation(operation string, d time.Duration, err error)
}

// Engine serves the three read paths. It holds no per-request state and may
// be shared by any number of concurrent requests.
type Engine struct {
	facts    FactStore
	resolver *ScopeResolver
	recorder Recorder
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecorder reports operation latencies and outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// NewEngine creates an engine over facts, resolving scopes with resolver.
func NewEngine(facts FactStore, resolver *ScopeResolver, opts ...Option) *Engine {
	e := &Engine{facts: facts, resolver: resolver}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) observe(op string, start time.Time, err *error) {
	if e.recorder != nil {
		e.recorder.ObserveOperation(op, time.Since(start), *err)
	}
}

// Prepare parses causes and resolves scope into a FilterContext. Causes are
// parsed first so a request without valid causes never reaches the store.
func (e *Engine) Prepare(ctx context.Context, scope string, causes []string) (fc FilterContext, err error) {
	defer e.observe(OpPrepare, time.Now(), &err)

	sel, err := ParseCauses(causes)
	if err != nil {
		return FilterContext{}, err
	}
	filter, err := e.resolver.Resolve(ctx, scope)
	if err != nil {
		return FilterContext{}, err
	}
	return NewFilterContext(scope, filter, sel)
}

// TimeSeries returns one aggregate per year with matching mortality rows,
// ordered by year. Population and internet figures are left-joined: years
// without mortality are dropped, years without auxiliary data keep nil.
func (e *Engine) TimeSeries(ctx context.Context, f FilterContext) (series []YearAggregate, err error) {
	defer e.observe(OpTimeSeries, time.Now(), &err)
	return e.timeSeries(ctx, f)
}

func (e *Engine) timeSeries(ctx context.Context, f FilterContext) ([]YearAggregate, error) {
	var (
		deaths     []YearCount
		population []YearCount
		internet   []YearPercent
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if deaths, err = e.facts.DeathsByYear(gctx, f); err != nil {
			return fmt.Errorf("failed to read deaths by year: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if population, err = e.facts.PopulationByYear(gctx, f.Scope()); err != nil {
			return fmt.Errorf("failed to read population by year: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if internet, err = e.facts.InternetUsageByYear(gctx, f.Scope()); err != nil {
			return fmt.Errorf("failed to read internet usage by year: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(deaths) == 0 {
		return nil, fmt.Errorf("%w: %q with the selected causes", ErrNoDataForScope, f.Label())
	}
	return joinYears(deaths, population, internet), nil
}

// joinYears left-joins population and internet figures onto the mortality
// years.
func joinYears(deaths, population []YearCount, internet []YearPercent) []YearAggregate {
	byYear := make(map[int]*YearAggregate, len(deaths))
	for _, d := range deaths {
		if agg, ok := byYear[d.Year]; ok {
			agg.TotalDeaths += d.Total
			continue
		}
		byYear[d.Year] = &YearAggregate{Year: d.Year, TotalDeaths: d.Total}
	}

	for _, p := range population {
		agg, ok := byYear[p.Year]
		if !ok {
			continue
		}
		total := p.Total
		if agg.TotalPopulation != nil {
			total += *agg.TotalPopulation
		}
		agg.TotalPopulation = &total
	}

	for _, in := range internet {
		agg, ok := byYear[in.Year]
		if !ok {
			continue
		}
		pct := in.Percent
		agg.AvgInternetPct = &pct
	}

	series := make([]YearAggregate, 0, len(byYear))
	for _, agg := range byYear {
		series = append(series, *agg)
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Year < series[j].Year
	})
	return series
}

// Breakdown returns the deaths per (year, list, cause) with a positive total,
// ordered by year, then deaths descending, then (list, cause).
func (e *Engine) Breakdown(ctx context.Context, f FilterContext) (rows []CauseYearBreakdown, err error) {
	defer e.observe(OpBreakdown, time.Now(), &err)

	all, err := e.facts.DeathsByYearAndCause(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to read deaths by cause: %w", err)
	}

	rows = make([]CauseYearBreakdown, 0, len(all))
	for _, r := range all {
		if r.Deaths > 0 {
			rows = append(rows, r)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Deaths != b.Deaths {
			return a.Deaths > b.Deaths
		}
		return a.cause().less(b.cause())
	})
	return rows, nil
}

// Summary computes the summary statistics. The time series, per-year cause
// totals and overall cause totals are read concurrently and joined before
// the statistics are derived.
func (e *Engine) Summary(ctx context.Context, f FilterContext) (summary *Summary, err error) {
	defer e.observe(OpSummary, time.Now(), &err)

	var (
		series      []YearAggregate
		causeYears  []CauseYearBreakdown
		causeTotals []CauseTotal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		series, err = e.timeSeries(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		if causeYears, err = e.facts.DeathsByYearAndCause(gctx, f); err != nil {
			return fmt.Errorf("failed to read deaths by year and cause: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if causeTotals, err = e.facts.DeathsByCause(gctx, f); err != nil {
			return fmt.Errorf("failed to read deaths by cause: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return ComputeSummary(series, causeYears, causeTotals)
}
