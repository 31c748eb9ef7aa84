package export

import (
	"testing"

	"whomortality/internal/mortality"
)

func TestCSV(t *testing.T) {
	pop := int64(400000)
	pct := 12.5
	zero := int64(0)

	got, err := CSV([]mortality.YearAggregate{
		{Year: 2000, TotalDeaths: 10, TotalPopulation: &pop, AvgInternetPct: &pct},
		{Year: 2001, TotalDeaths: 3},
		{Year: 2002, TotalDeaths: 5, TotalPopulation: &zero},
	})
	if err != nil {
		t.Fatalf("CSV() error = %v", err)
	}

	want := "Year,TotalDeaths,TotalPopulation,Porcentaje_Uso,Tasa_Mortalidad_x_100k\n" +
		"2000,10,400000,12.50,2.5000\n" +
		"2001,3,,,\n" +
		"2002,5,0,,\n"
	if string(got) != want {
		t.Errorf("CSV() = %q, want %q", got, want)
	}
}

func TestCSVEmpty(t *testing.T) {
	got, err := CSV(nil)
	if err != nil {
		t.Fatalf("CSV() error = %v", err)
	}
	if string(got) != "Year,TotalDeaths,TotalPopulation,Porcentaje_Uso,Tasa_Mortalidad_x_100k\n" {
		t.Errorf("CSV(nil) = %q", got)
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		scope string
		want  string
	}{
		{"Mexico", "mortality_mexico.csv"},
		{"South America", "mortality_south_america.csv"},
		{"", "mortality_data.csv"},
	}
	for _, tt := range tests {
		if got := Filename(tt.scope); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.scope, got, tt.want)
		}
	}
}
