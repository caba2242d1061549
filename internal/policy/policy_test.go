package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPenaltyFor(t *testing.T) {
	shiftStart := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		hoursAhead time.Duration
		wantAmount int
		wantLabel  string
	}{
		{"49h before", 49 * time.Hour, 0, "> 48 Hours (No Penalty)"},
		{"exactly 48h", 48 * time.Hour, 0, "> 48 Hours (No Penalty)"},
		{"30h before", 30 * time.Hour, 5, "> 24 Hours"},
		{"exactly 24h", 24 * time.Hour, 5, "> 24 Hours"},
		{"18h before", 18 * time.Hour, 10, "> 12 Hours"},
		{"exactly 12h", 12 * time.Hour, 10, "> 12 Hours"},
		{"10h before", 10 * time.Hour, 15, "> 6 Hours"},
		{"exactly 6h", 6 * time.Hour, 15, "> 6 Hours"},
		{"1h before", 1 * time.Hour, 50, "< 6 Hours / No-show"},
		{"at shift start", 0, 50, "< 6 Hours / No-show"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, label := PenaltyFor(shiftStart, shiftStart.Add(-tt.hoursAhead), 0)
			assert.Equal(t, tt.wantAmount, amount)
			assert.Equal(t, tt.wantLabel, label)
		})
	}

	t.Run("after shift started", func(t *testing.T) {
		amount, label := PenaltyFor(shiftStart, shiftStart.Add(2*time.Hour), 0)
		assert.Equal(t, 50, amount)
		assert.Equal(t, "< 6 Hours / No-show", label)
	})

	t.Run("prior cancellations do not escalate", func(t *testing.T) {
		amount, _ := PenaltyFor(shiftStart, shiftStart.Add(-30*time.Hour), 7)
		assert.Equal(t, 5, amount)
	})
}
