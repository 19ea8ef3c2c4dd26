package scheduler

import (
	"testing"
	"time"
)

func TestNextRefresh(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "before today's refresh",
			now:  time.Date(2026, 8, 30, 0, 1, 0, 0, loc),
			want: time.Date(2026, 8, 30, 0, 5, 0, 0, loc),
		},
		{
			name: "after today's refresh rolls to tomorrow",
			now:  time.Date(2026, 8, 30, 12, 0, 0, 0, loc),
			want: time.Date(2026, 8, 31, 0, 5, 0, 0, loc),
		},
		{
			name: "exactly at refresh time rolls to tomorrow",
			now:  time.Date(2026, 8, 30, 0, 5, 0, 0, loc),
			want: time.Date(2026, 8, 31, 0, 5, 0, 0, loc),
		},
		{
			name: "month boundary",
			now:  time.Date(2026, 8, 31, 23, 0, 0, 0, loc),
			want: time.Date(2026, 9, 1, 0, 5, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nextRefresh(tt.now, 0, 5)
			if !got.Equal(tt.want) {
				t.Errorf("nextRefresh(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestNextRefreshAcrossDSTChange(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// Clocks go back in London on 2026-10-25 at 02:00. The refresh instant
	// is still 00:05 wall-clock on the next day.
	now := time.Date(2026, 10, 24, 12, 0, 0, 0, loc)
	got := nextRefresh(now, 0, 5)
	if got.Hour() != 0 || got.Minute() != 5 || got.Day() != 25 {
		t.Errorf("nextRefresh across DST = %v, want 00:05 on Oct 25", got)
	}
}
