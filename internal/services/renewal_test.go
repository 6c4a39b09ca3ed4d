package services

import (
	"testing"
	"time"

	"bilancio/internal/core"
)

func TestNextRenewalAfter(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		current        time.Time
		durationMonths int
		want           time.Time
	}{
		{
			name:           "one cycle forward",
			current:        time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
			durationMonths: 1,
			want:           time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:           "several cycles behind catches up in one pass",
			current:        time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
			durationMonths: 1,
			want:           time.Date(2024, time.July, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:           "yearly billing",
			current:        time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC),
			durationMonths: 12,
			want:           time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:           "quarterly billing",
			current:        time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			durationMonths: 3,
			want:           time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:           "non-positive duration falls back to monthly",
			current:        time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
			durationMonths: 0,
			want:           time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nextRenewalAfter(core.Date{Time: tt.current}, tt.durationMonths, now)
			if !got.Time.Equal(tt.want) {
				t.Errorf("nextRenewalAfter() = %v, want %v", got.Time, tt.want)
			}
			if !got.Time.After(now) {
				t.Errorf("nextRenewalAfter() = %v, must be strictly after now %v", got.Time, now)
			}
		})
	}
}
