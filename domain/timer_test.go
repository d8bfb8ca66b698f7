package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTimerPauseResume(t *testing.T) {
	state := NewTimerState(uuid.New(), t0)
	if err := state.Start(TimerModeFocus, 0, t0); err != nil {
		t.Fatal(err)
	}
	if state.DurationSeconds != 25*60 {
		t.Fatalf("default focus duration = %d", state.DurationSeconds)
	}

	if err := state.Pause(t0.Add(10 * time.Minute)); err != nil {
		t.Fatal(err)
	}
	if state.RemainingSeconds != 15*60 {
		t.Fatalf("remaining after pause = %d", state.RemainingSeconds)
	}

	// time spent paused does not count
	if err := state.Resume(t0.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	live := state.Live(t0.Add(time.Hour + 5*time.Minute))
	if live.RemainingSeconds != 10*60 || live.Status != TimerStatusRunning {
		t.Fatalf("live = %+v", live)
	}

	done := state.Live(t0.Add(2 * time.Hour))
	if done.Status != TimerStatusIdle || done.RemainingSeconds != 0 {
		t.Fatalf("finished timer = %+v", done)
	}
}

func TestTimerInvalidTransitions(t *testing.T) {
	state := NewTimerState(uuid.New(), t0)
	if err := state.Pause(t0); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("pause idle err = %v", err)
	}
	if err := state.Resume(t0); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("resume idle err = %v", err)
	}
	if err := state.Start("nap", 0, t0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown mode err = %v", err)
	}
}

func TestTimerResetKeepsMode(t *testing.T) {
	state := NewTimerState(uuid.New(), t0)
	state.Start(TimerModeLongBreak, 100, t0)
	state.Reset(t0.Add(time.Minute))
	if state.Mode != TimerModeLongBreak || state.Status != TimerStatusIdle || state.RemainingSeconds != 15*60 {
		t.Fatalf("after reset = %+v", state)
	}
}
