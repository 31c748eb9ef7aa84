package api

import (
	"testing"

	"whomortality/internal/mortality"
)

func TestStatusForKind(t *testing.T) {
	tests := []struct {
		kind mortality.Kind
		want int
	}{
		{mortality.KindScopeNotFound, 404},
		{mortality.KindNoDataForScope, 404},
		{mortality.KindNoCausesSelected, 400},
		{mortality.KindInsufficientData, 422},
		{mortality.KindInternal, 500},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := StatusForKind(tt.kind); got != tt.want {
				t.Errorf("StatusForKind(%q) = %d, want %d", tt.kind, got, tt.want)
			}
		})
	}
}
