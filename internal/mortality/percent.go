package mortality

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// ParsePercent normalizes a locale-formatted percentage such as "45,7" into
// 45.7. ok is false for blank or unparseable values.
func ParsePercent(raw string) (float64, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	s = strings.TrimSuffix(s, "%")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// PercentAverager averages raw percentages per year, skipping values that do
// not parse. The zero value is ready to use.
type PercentAverager struct {
	sums   map[int]float64
	counts map[int]int
}

// Add records one raw value for year.
func (a *PercentAverager) Add(year int, raw string) {
	v, ok := ParsePercent(raw)
	if !ok {
		return
	}
	if a.sums == nil {
		a.sums = make(map[int]float64)
		a.counts = make(map[int]int)
	}
	a.sums[year] += v
	a.counts[year]++
}

// Averages returns one average per year with at least one parsed value,
// ordered by year.
func (a *PercentAverager) Averages() []YearPercent {
	out := make([]YearPercent, 0, len(a.sums))
	for year, sum := range a.sums {
		out = append(out, YearPercent{Year: year, Percent: sum / float64(a.counts[year])})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}
