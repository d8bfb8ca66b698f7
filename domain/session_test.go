package domain

import (
	"testing"
	"time"
)

func TestElapsedMinutesRoundsHalfUp(t *testing.T) {
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	cases := []struct {
		elapsed time.Duration
		want    int
	}{
		{0, 0},
		{-time.Minute, 0},
		{29 * time.Second, 0},
		{30 * time.Second, 1},
		{1476 * time.Second, 25}, // 24.6 min
		{1464 * time.Second, 24}, // 24.4 min
		{25 * time.Minute, 25},
	}
	for _, c := range cases {
		if got := ElapsedMinutes(start, start.Add(c.elapsed)); got != c.want {
			t.Errorf("ElapsedMinutes(%s) = %d, want %d", c.elapsed, got, c.want)
		}
	}
}

func TestEarlyStopThreshold(t *testing.T) {
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	if IsEarlyStop(ElapsedMinutes(start, start.Add(1476*time.Second)), 25) {
		t.Error("24.6 minutes of a 25 minute session counted as early")
	}
	if !IsEarlyStop(ElapsedMinutes(start, start.Add(1464*time.Second)), 25) {
		t.Error("24.4 minutes of a 25 minute session not counted as early")
	}
}

func TestRemainingSeconds(t *testing.T) {
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	if got := RemainingSeconds(start, 1, start); got != 60 {
		t.Errorf("at start = %d, want 60", got)
	}
	if got := RemainingSeconds(start, 1, start.Add(59001*time.Millisecond)); got != 1 {
		t.Errorf("999ms left = %d, want 1", got)
	}
	if got := RemainingSeconds(start, 1, start.Add(2*time.Minute)); got != 0 {
		t.Errorf("past deadline = %d, want 0", got)
	}
	if !SessionDeadline(start, 25).Equal(start.Add(25 * time.Minute)) {
		t.Error("wrong deadline")
	}
}
