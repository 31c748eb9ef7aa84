package mortality

import "testing"

func TestMatchCountry(t *testing.T) {
	countries := []CountryName{
		{Code: "2450", Name: "Guinea-Bissau"},
		{Code: "2440", Name: "Guinea"},
		{Code: "9999", Name: "   "},
		{Code: " 2000 ", Name: " Åland Islands "},
		{Code: "1040", Name: "100%_Land"},
	}

	tests := []struct {
		name   string
		needle string
		want   string
		found  bool
	}{
		{"shorter name wins", "guinea", "2440", true},
		{"partial", "BISSAU", "2450", true},
		{"non-ASCII capital in stored name", "åland", "2000", true},
		{"non-ASCII capital in needle", "ÅLAND", "2000", true},
		{"wildcards are literal", "0%_", "1040", true},
		{"no match", "atlantis", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := MatchCountry(tt.needle, countries)
			if got != tt.want || found != tt.found {
				t.Errorf("MatchCountry(%q) = %q, %v; want %q, %v", tt.needle, got, found, tt.want, tt.found)
			}
		})
	}
}
