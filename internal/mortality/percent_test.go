package mortality

import (
	"math"
	"testing"
)

func TestParsePercent(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"45,7", 45.7, true},
		{"45.7", 45.7, true},
		{" 12,25 ", 12.25, true},
		{"80%", 80, true},
		{"0", 0, true},
		{"", 0, false},
		{"  ", 0, false},
		{"n/a", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParsePercent(tt.raw)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParsePercent(%q) = %v, %v, want %v, %v", tt.raw, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParsePercentRejectsNonFinite(t *testing.T) {
	for _, raw := range []string{"NaN", "Inf", "-inf"} {
		if _, ok := ParsePercent(raw); ok {
			t.Errorf("ParsePercent(%q) should fail", raw)
		}
	}
}

func TestPercentAverager(t *testing.T) {
	var a PercentAverager
	if got := a.Averages(); len(got) != 0 {
		t.Fatalf("empty Averages() = %v", got)
	}

	a.Add(2011, "10")
	a.Add(2010, "45,7")
	a.Add(2010, "50.3")
	a.Add(2010, "")
	a.Add(2012, "n/a")

	got := a.Averages()
	if len(got) != 2 {
		t.Fatalf("Averages() = %v, want 2 years", got)
	}
	if got[0].Year != 2010 || math.Abs(got[0].Percent-48) > 1e-9 {
		t.Errorf("Averages()[0] = %+v, want 2010 48", got[0])
	}
	if got[1].Year != 2011 || got[1].Percent != 10 {
		t.Errorf("Averages()[1] = %+v, want 2011 10", got[1])
	}
}
