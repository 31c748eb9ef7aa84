package memstore

import (
	"context"
	"errors"
	"testing"

	"whomortality/internal/mortality"
)

func TestFindCountryCode(t *testing.T) {
	s := New()
	s.AddCountries(
		Country{Code: "2450", Name: "Guinea-Bissau"},
		Country{Code: "2440", Name: "Guinea"},
		Country{Code: "9999", Name: "   "},
		Country{Code: " 3020 ", Name: " Papua New Guinea "},
		Country{Code: "2000", Name: "Åland Islands"},
	)

	tests := []struct {
		name   string
		needle string
		want   string
		found  bool
	}{
		{"exact name wins over longer match", "guinea", "2440", true},
		{"partial match", "bissau", "2450", true},
		{"trimmed code", "papua", "3020", true},
		{"blank names never match", " ", "2440", true},
		{"non-ASCII capital", "åland", "2000", true},
		{"no match", "atlantis", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found, err := s.FindCountryCode(context.Background(), tt.needle)
			if err != nil {
				t.Fatalf("FindCountryCode() error = %v", err)
			}
			if got != tt.want || found != tt.found {
				t.Errorf("FindCountryCode(%q) = %q, %v; want %q, %v", tt.needle, got, found, tt.want, tt.found)
			}
		})
	}
}

func TestPopulationIgnoresUnspecifiedSex(t *testing.T) {
	s := New()
	s.AddPopulation(
		PopulationRow{Country: "1010", Year: 2010, Sex: "1", Population: mortality.PartitionsOf(100)},
		PopulationRow{Country: "1010", Year: 2010, Sex: " 2 ", Population: mortality.PartitionsOf(150)},
		PopulationRow{Country: "1010", Year: 2010, Sex: "9", Population: mortality.PartitionsOf(250)},
	)

	got, err := s.PopulationByYear(context.Background(), mortality.GlobalScope())
	if err != nil {
		t.Fatalf("PopulationByYear() error = %v", err)
	}
	if len(got) != 1 || got[0].Total != 250 {
		t.Errorf("PopulationByYear() = %+v, want 2010 -> 250", got)
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New().ListCountries(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("ListCountries() error = %v, want context.Canceled", err)
	}
}
