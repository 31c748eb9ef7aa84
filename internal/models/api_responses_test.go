package models

import (
	"encoding/json"
	"math"
	"testing"

	"whomortality/internal/mortality"
)

func TestDataRequestScopeName(t *testing.T) {
	tests := []struct {
		name string
		req  DataRequest
		want string
	}{
		{"country", DataRequest{Country: "Mexico"}, "Mexico"},
		{"scope alias", DataRequest{Scope: "Europe"}, "Europe"},
		{"country wins", DataRequest{Country: "Chile", Scope: "Europe"}, "Chile"},
		{"neither", DataRequest{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.ScopeName(); got != tt.want {
				t.Errorf("ScopeName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSeriesPointJSON(t *testing.T) {
	pop := int64(100000)
	series := NewSeries([]mortality.YearAggregate{
		{Year: 2010, TotalDeaths: 8, TotalPopulation: &pop},
		{Year: 2011, TotalDeaths: 4},
	})

	data, err := json.Marshal(series)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	rate, ok := rows[0]["Tasa_Mortalidad_x_100k"].(float64)
	if !ok || math.Abs(rate-8) > 1e-9 {
		t.Errorf("2010 rate = %v, want 8", rows[0]["Tasa_Mortalidad_x_100k"])
	}
	if rows[0]["Year"] != float64(2010) || rows[0]["TotalDeaths"] != float64(8) {
		t.Errorf("2010 row = %v", rows[0])
	}
	for _, key := range []string{"TotalPopulation", "Porcentaje_Uso", "Tasa_Mortalidad_x_100k"} {
		v, present := rows[1][key]
		if !present || v != nil {
			t.Errorf("2011 %s = %v (present %v), want null", key, v, present)
		}
	}
}
