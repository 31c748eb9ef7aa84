package models

import (
	"whomortality/internal/catalog"
	"whomortality/internal/mortality"
)

// DataRequest is the body of the data, stats and export endpoints. Scope is
// accepted as an alias of Country.
type DataRequest struct {
	Country string   `json:"country"`
	Scope   string   `json:"scope"`
	Causes  []string `json:"causes"`
}

// ScopeName returns the requested country or region.
func (r DataRequest) ScopeName() string {
	if r.Country != "" {
		return r.Country
	}
	return r.Scope
}

// SeriesPoint is one year of the time series with its derived mortality rate.
type SeriesPoint struct {
	mortality.YearAggregate
	MortalityRate *float64 `json:"Tasa_Mortalidad_x_100k"`
}

// NewSeries attaches mortality rates to a time series.
func NewSeries(series []mortality.YearAggregate) []SeriesPoint {
	out := make([]SeriesPoint, 0, len(series))
	for _, y := range series {
		out = append(out, SeriesPoint{YearAggregate: y, MortalityRate: y.MortalityRate()})
	}
	return out
}

// DataResponse is the combined time series and cause breakdown.
type DataResponse struct {
	Scope     string                         `json:"scope"`
	Series    []SeriesPoint                  `json:"series"`
	Breakdown []mortality.CauseYearBreakdown `json:"breakdown"`
}

// StatsResponse is the summary of a request.
type StatsResponse struct {
	Scope string `json:"scope"`
	*mortality.Summary
}

// CausesResponse lists the selectable causes of a scope.
type CausesResponse struct {
	Scope  string          `json:"scope"`
	Causes []catalog.Entry `json:"causes"`
}

// CountriesResponse lists the country display names.
type CountriesResponse struct {
	Countries []string `json:"countries"`
}
