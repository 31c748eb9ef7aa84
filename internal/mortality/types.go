package mortality

import "context"

// YearCount is a per-year summed count read from the fact store.
type YearCount struct {
	Year  int
	Total int64
}

// YearPercent is a per-year average internet adoption percentage.
type YearPercent struct {
	Year    int
	Percent float64
}

// YearAggregate is one row of the time series. TotalPopulation and
// AvgInternetPct are nil when no auxiliary rows exist for the year.
type YearAggregate struct {
	Year            int      `json:"Year"`
	TotalDeaths     int64    `json:"TotalDeaths"`
	TotalPopulation *int64   `json:"TotalPopulation"`
	AvgInternetPct  *float64 `json:"Porcentaje_Uso"`
}

// MortalityRate returns deaths per 100,000 inhabitants, or nil when the
// population is unknown or zero.
func (y YearAggregate) MortalityRate() *float64 {
	if y.TotalPopulation == nil || *y.TotalPopulation == 0 {
		return nil
	}
	rate := float64(y.TotalDeaths) * 100000 / float64(*y.TotalPopulation)
	return &rate
}

// CauseYearBreakdown is the summed deaths of one cause in one year.
type CauseYearBreakdown struct {
	Year   int    `json:"Year"`
	List   string `json:"List"`
	Cause  string `json:"Cause"`
	Deaths int64  `json:"Deaths"`
}

func (b CauseYearBreakdown) cause() Cause {
	return Cause{List: b.List, Code: b.Cause}
}

// CauseTotal is the summed deaths of one cause across the whole matched set.
type CauseTotal struct {
	List  string `json:"list"`
	Cause string `json:"code"`
	Total int64  `json:"total_count"`
}

func (t CauseTotal) cause() Cause {
	return Cause{List: t.List, Code: t.Cause}
}

// FactStore performs the grouped reads over the read-only fact tables.
// Every method applies exactly the predicates carried by its arguments.
type FactStore interface {
	// DeathsByYear sums partitioned deaths of matching mortality rows per year.
	DeathsByYear(ctx context.Context, f FilterContext) ([]YearCount, error)
	// PopulationByYear sums partitioned population over the male and female
	// sex codes per year.
	PopulationByYear(ctx context.Context, scope ScopeFilter) ([]YearCount, error)
	// InternetUsageByYear averages the normalized adoption percentage per year.
	InternetUsageByYear(ctx context.Context, scope ScopeFilter) ([]YearPercent, error)
	// DeathsByYearAndCause sums partitioned deaths per (year, list, cause),
	// including groups whose total is zero.
	DeathsByYearAndCause(ctx context.Context, f FilterContext) ([]CauseYearBreakdown, error)
	// DeathsByCause sums partitioned deaths per (list, cause).
	DeathsByCause(ctx context.Context, f FilterContext) ([]CauseTotal, error)
}
