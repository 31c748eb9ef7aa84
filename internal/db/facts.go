package db

import (
	"context"
	"fmt"

	"whomortality/internal/mortality"
	"whomortality/internal/query"
)

// populationSexCodes are summed for population totals. Code 9 is the
// unspecified total and would double count.
var populationSexCodes = []string{"1", "2"}

func causePairs(causes mortality.CauseSelector) []query.Pair {
	pairs := make([]query.Pair, 0, len(causes))
	for _, c := range causes {
		pairs = append(pairs, query.Pair{First: c.List, Second: c.Code})
	}
	return pairs
}

// whereScope appends the country predicate of a non-global scope.
func whereScope(b *query.Builder, scope mortality.ScopeFilter) {
	if scope.IsGlobal() {
		return
	}
	b.Write(" AND ").In("TRIM(country)", scope.Countries())
}

// whereFilter appends the cause and country predicates of f.
func whereFilter(b *query.Builder, f mortality.FilterContext) {
	b.Write(" WHERE ").AnyPair("TRIM(list)", "TRIM(cause)", causePairs(f.Causes()))
	whereScope(b, f.Scope())
}

func (d *DB) yearCounts(ctx context.Context, b *query.Builder) ([]mortality.YearCount, error) {
	r, err := d.query(ctx, b)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var out []mortality.YearCount
	for r.Next() {
		var yc mortality.YearCount
		if err := r.Scan(&yc.Year, &yc.Total); err != nil {
			return nil, err
		}
		out = append(out, yc)
	}
	return out, r.Err()
}

// DeathsByYear implements mortality.FactStore.
func (d *DB) DeathsByYear(ctx context.Context, f mortality.FilterContext) ([]mortality.YearCount, error) {
	b := d.builder()
	b.Writef("SELECT year, %s FROM mortality", query.SumPartitionsTotal("deaths"))
	whereFilter(b, f)
	b.Write(" GROUP BY year ORDER BY year")

	out, err := d.yearCounts(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("failed to sum deaths by year: %w", err)
	}
	return out, nil
}

// PopulationByYear implements mortality.FactStore.
func (d *DB) PopulationByYear(ctx context.Context, scope mortality.ScopeFilter) ([]mortality.YearCount, error) {
	b := d.builder()
	b.Writef("SELECT year, %s FROM population WHERE ", query.SumPartitionsTotal("pop"))
	b.In("TRIM(sex)", populationSexCodes)
	whereScope(b, scope)
	b.Write(" GROUP BY year ORDER BY year")

	out, err := d.yearCounts(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("failed to sum population by year: %w", err)
	}
	return out, nil
}

// InternetUsageByYear implements mortality.FactStore. The percentage column
// is free text with decimal commas, so values are parsed with
// mortality.ParsePercent rather than cast in SQL, where an unparseable value
// would either abort the query (PostgreSQL) or count as zero (SQLite).
func (d *DB) InternetUsageByYear(ctx context.Context, scope mortality.ScopeFilter) ([]mortality.YearPercent, error) {
	b := d.builder()
	b.Write("SELECT year, value_pct FROM internet_usage WHERE TRIM(value_pct) <> ''")
	whereScope(b, scope)

	r, err := d.query(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("failed to read internet usage: %w", err)
	}
	defer r.Close()

	var avg mortality.PercentAverager
	for r.Next() {
		var (
			year int
			raw  string
		)
		if err := r.Scan(&year, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan internet usage: %w", err)
		}
		avg.Add(year, raw)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("failed to read internet usage: %w", err)
	}
	return avg.Averages(), nil
}

// DeathsByYearAndCause implements mortality.FactStore.
func (d *DB) DeathsByYearAndCause(ctx context.Context, f mortality.FilterContext) ([]mortality.CauseYearBreakdown, error) {
	b := d.builder()
	b.Writef("SELECT year, TRIM(list), TRIM(cause), %s FROM mortality", query.SumPartitionsTotal("deaths"))
	whereFilter(b, f)
	b.Write(" GROUP BY year, TRIM(list), TRIM(cause) ORDER BY year, TRIM(list), TRIM(cause)")

	r, err := d.query(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("failed to sum deaths by year and cause: %w", err)
	}
	defer r.Close()

	var out []mortality.CauseYearBreakdown
	for r.Next() {
		var row mortality.CauseYearBreakdown
		if err := r.Scan(&row.Year, &row.List, &row.Cause, &row.Deaths); err != nil {
			return nil, fmt.Errorf("failed to scan deaths by year and cause: %w", err)
		}
		out = append(out, row)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("failed to sum deaths by year and cause: %w", err)
	}
	return out, nil
}

// DeathsByCause implements mortality.FactStore.
func (d *DB) DeathsByCause(ctx context.Context, f mortality.FilterContext) ([]mortality.CauseTotal, error) {
	b := d.builder()
	b.Writef("SELECT TRIM(list), TRIM(cause), %s FROM mortality", query.SumPartitionsTotal("deaths"))
	whereFilter(b, f)
	b.Write(" GROUP BY TRIM(list), TRIM(cause) ORDER BY TRIM(list), TRIM(cause)")

	r, err := d.query(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("failed to sum deaths by cause: %w", err)
	}
	defer r.Close()

	var out []mortality.CauseTotal
	for r.Next() {
		var row mortality.CauseTotal
		if err := r.Scan(&row.List, &row.Cause, &row.Total); err != nil {
			return nil, fmt.Errorf("failed to scan deaths by cause: %w", err)
		}
		out = append(out, row)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("failed to sum deaths by cause: %w", err)
	}
	return out, nil
}
