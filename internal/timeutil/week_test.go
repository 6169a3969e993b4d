package timeutil

import (
	"testing"
	"time"
)

// 2026-02-11 is a Wednesday.
func wednesday(t *testing.T) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return time.Date(2026, 2, 11, 9, 30, 0, 0, loc)
}

func TestWeekdayOffset(t *testing.T) {
	t.Parallel()

	loc := time.UTC
	tests := []struct {
		name string
		day  time.Time
		want int
	}{
		{"monday", time.Date(2026, 2, 9, 12, 0, 0, 0, loc), 0},
		{"wednesday", time.Date(2026, 2, 11, 12, 0, 0, 0, loc), 2},
		{"sunday", time.Date(2026, 2, 15, 12, 0, 0, 0, loc), 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := WeekdayOffset(tt.day); got != tt.want {
				t.Errorf("WeekdayOffset(%s) = %d, want %d", tt.day, got, tt.want)
			}
		})
	}
}

func TestWeekBounds(t *testing.T) {
	t.Parallel()

	now := wednesday(t)
	monday, sunday := WeekBounds(now)

	if monday.Weekday() != time.Monday {
		t.Errorf("expected Monday, got %s", monday.Weekday())
	}
	if monday.Day() != 9 || monday.Hour() != 0 || monday.Minute() != 0 {
		t.Errorf("unexpected monday bound: %s", monday)
	}
	if sunday.Weekday() != time.Sunday {
		t.Errorf("expected Sunday, got %s", sunday.Weekday())
	}
	if sunday.Day() != 15 || sunday.Hour() != 23 || sunday.Second() != 59 {
		t.Errorf("unexpected sunday bound: %s", sunday)
	}
	if monday.Location() != now.Location() {
		t.Error("week bounds must stay in the input location")
	}
}

func TestWeekBounds_OnMonday(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)
	monday, _ := WeekBounds(now)
	if !monday.Equal(now) {
		t.Errorf("monday midnight should be its own week start, got %s", monday)
	}
}

func TestRemainingDays(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		day   time.Time
		first string
		count int
	}{
		{"wednesday", time.Date(2026, 2, 11, 9, 0, 0, 0, time.UTC), "Wednesday", 5},
		{"monday", time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC), "Monday", 7},
		{"sunday", time.Date(2026, 2, 15, 9, 0, 0, 0, time.UTC), "Sunday", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := RemainingDays(tt.day)
			if len(got) != tt.count {
				t.Fatalf("expected %d remaining days, got %d (%v)", tt.count, len(got), got)
			}
			if got[0] != tt.first {
				t.Errorf("expected first remaining day %s, got %s", tt.first, got[0])
			}
			if got[len(got)-1] != "Sunday" {
				t.Errorf("remaining days must end on Sunday, got %s", got[len(got)-1])
			}
		})
	}
}

func TestSameDay(t *testing.T) {
	t.Parallel()

	base := wednesday(t)
	if !SameDay(base, base.Add(10*time.Hour)) {
		t.Error("same calendar date should match regardless of hour")
	}
	if SameDay(base, base.AddDate(0, 0, 1)) {
		t.Error("different dates must not match")
	}
	// 23:59 vs 00:01 next day: only 2 minutes apart but a date rollover.
	late := time.Date(2026, 2, 11, 23, 59, 0, 0, base.Location())
	early := time.Date(2026, 2, 12, 0, 1, 0, 0, base.Location())
	if SameDay(late, early) {
		t.Error("date rollover must break same-day equality")
	}
}
