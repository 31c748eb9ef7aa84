// Package export renders a mortality time series as CSV.
package export

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"whomortality/internal/mortality"
	"whomortality/internal/validation"
)

// Columns is the header row of every export.
var Columns = []string{"Year", "TotalDeaths", "TotalPopulation", "Porcentaje_Uso", "Tasa_Mortalidad_x_100k"}

// Filename returns the download name of the export of scope.
func Filename(scope string) string {
	return "mortality_" + validation.Slug(scope) + ".csv"
}

// CSV renders series under Columns. Absent figures are written as empty
// cells; an empty series yields the header row only.
func CSV(series []mortality.YearAggregate) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Columns); err != nil {
		return nil, err
	}
	for _, y := range series {
		record := []string{
			strconv.Itoa(y.Year),
			strconv.FormatInt(y.TotalDeaths, 10),
			"",
			"",
			"",
		}
		if y.TotalPopulation != nil {
			record[2] = strconv.FormatInt(*y.TotalPopulation, 10)
		}
		if y.AvgInternetPct != nil {
			record[3] = strconv.FormatFloat(*y.AvgInternetPct, 'f', 2, 64)
		}
		if rate := y.MortalityRate(); rate != nil {
			record[4] = strconv.FormatFloat(*rate, 'f', 4, 64)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
