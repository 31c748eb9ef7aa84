package mortality

import (
	"fmt"
	"sort"
)

// SummaryStats are the headline figures derived from a time series.
type SummaryStats struct {
	StartYear     int         `json:"start_year"`
	EndYear       int         `json:"end_year"`
	AvgDeaths     float64     `json:"avg_deaths"`
	MaxDeaths     int64       `json:"max_deaths"`
	MaxDeathsYear int         `json:"max_deaths_year"`
	MinDeaths     int64       `json:"min_deaths"`
	MinDeathsYear int         `json:"min_deaths_year"`
	AvgInternet   float64     `json:"avg_internet"`
	TopCause      *CauseTotal `json:"top_cause"`
}

// TopCause is the cause with most deaths in a year.
type TopCause struct {
	Year       int    `json:"Year"`
	List       string `json:"List"`
	Cause      string `json:"Cause"`
	CauseTotal int64  `json:"Cause_Total"`
}

// Summary is the response of the summary path.
type Summary struct {
	Stats           SummaryStats `json:"summary"`
	TopCausesByYear []TopCause   `json:"top_causes_by_year"`
}

// ComputeSummary derives the statistics from an already computed time series
// and the per-year and overall cause totals.
//
// Extrema ties resolve to the earliest year. Top-cause ties resolve to the
// lexicographically smallest (list, cause). AvgInternet is 0 when no year
// carries an internet figure.
func ComputeSummary(series []YearAggregate, causeYears []CauseYearBreakdown, causeTotals []CauseTotal) (*Summary, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: no yearly totals", ErrInsufficientData)
	}

	ordered := make([]YearAggregate, len(series))
	copy(ordered, series)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Year < ordered[j].Year
	})

	first := ordered[0]
	stats := SummaryStats{
		StartYear:     first.Year,
		EndYear:       ordered[len(ordered)-1].Year,
		MaxDeaths:     first.TotalDeaths,
		MaxDeathsYear: first.Year,
		MinDeaths:     first.TotalDeaths,
		MinDeathsYear: first.Year,
	}

	var (
		deathsSum   int64
		internetSum float64
		internetN   int
	)
	for _, y := range ordered {
		deathsSum += y.TotalDeaths
		if y.TotalDeaths > stats.MaxDeaths {
			stats.MaxDeaths = y.TotalDeaths
			stats.MaxDeathsYear = y.Year
		}
		if y.TotalDeaths < stats.MinDeaths {
			stats.MinDeaths = y.TotalDeaths
			stats.MinDeathsYear = y.Year
		}
		if y.AvgInternetPct != nil {
			internetSum += *y.AvgInternetPct
			internetN++
		}
	}
	stats.AvgDeaths = float64(deathsSum) / float64(len(ordered))
	if internetN > 0 {
		stats.AvgInternet = internetSum / float64(internetN)
	}
	stats.TopCause = topCauseOverall(causeTotals)

	return &Summary{
		Stats:           stats,
		TopCausesByYear: topCausesByYear(causeYears),
	}, nil
}

func topCauseOverall(totals []CauseTotal) *CauseTotal {
	var best *CauseTotal
	for i := range totals {
		t := totals[i]
		if best == nil || t.Total > best.Total || (t.Total == best.Total && t.cause().less(best.cause())) {
			best = &t
		}
	}
	return best
}

// topCausesByYear keeps the rank-1 cause of every year, newest year first.
func topCausesByYear(rows []CauseYearBreakdown) []TopCause {
	best := make(map[int]CauseYearBreakdown)
	for _, r := range rows {
		cur, ok := best[r.Year]
		if !ok || r.Deaths > cur.Deaths || (r.Deaths == cur.Deaths && r.cause().less(cur.cause())) {
			best[r.Year] = r
		}
	}

	top := make([]TopCause, 0, len(best))
	for _, r := range best {
		top = append(top, TopCause{Year: r.Year, List: r.List, Cause: r.Cause, CauseTotal: r.Deaths})
	}
	sort.Slice(top, func(i, j int) bool {
		return top[i].Year > top[j].Year
	})
	return top
}
