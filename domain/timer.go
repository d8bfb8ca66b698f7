package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	TimerModeFocus      = "focus"
	TimerModeShortBreak = "short_break"
	TimerModeLongBreak  = "long_break"

	TimerStatusIdle    = "idle"
	TimerStatusRunning = "running"
	TimerStatusPaused  = "paused"
)

var defaultModeSeconds = map[string]int{
	TimerModeFocus:      25 * 60,
	TimerModeShortBreak: 5 * 60,
	TimerModeLongBreak:  15 * 60,
}

// TimerState is a user's personal pomodoro timer. RemainingSeconds is the
// value as of UpdatedAt; while running the live value is derived from
// StartedAt.
type TimerState struct {
	UserID           uuid.UUID  `json:"user_id"`
	Mode             string     `json:"mode"`
	Status           string     `json:"status"`
	DurationSeconds  int        `json:"duration_seconds"`
	RemainingSeconds int        `json:"remaining_seconds"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func NewTimerState(userID uuid.UUID, now time.Time) TimerState {
	return TimerState{
		UserID:           userID,
		Mode:             TimerModeFocus,
		Status:           TimerStatusIdle,
		DurationSeconds:  defaultModeSeconds[TimerModeFocus],
		RemainingSeconds: defaultModeSeconds[TimerModeFocus],
		UpdatedAt:        now,
	}
}

// Live returns the state with RemainingSeconds brought up to now. A running
// timer that reached zero is reported idle.
func (t TimerState) Live(now time.Time) TimerState {
	if t.Status != TimerStatusRunning || t.StartedAt == nil {
		return t
	}
	left := time.Duration(t.RemainingSeconds)*time.Second - now.Sub(t.UpdatedAt)
	if left <= 0 {
		t.Status = TimerStatusIdle
		t.RemainingSeconds = 0
		t.StartedAt = nil
		t.UpdatedAt = now
		return t
	}
	t.RemainingSeconds = int((left + time.Second - 1) / time.Second)
	return t
}

// Start begins a fresh countdown in the given mode. durationSeconds <= 0
// picks the mode default.
func (t *TimerState) Start(mode string, durationSeconds int, now time.Time) error {
	if mode == "" {
		mode = t.Mode
	}
	def, ok := defaultModeSeconds[mode]
	if !ok {
		return fmt.Errorf("%w: unknown timer mode %q", ErrInvalidInput, mode)
	}
	if durationSeconds <= 0 {
		durationSeconds = def
	}
	t.Mode = mode
	t.Status = TimerStatusRunning
	t.DurationSeconds = durationSeconds
	t.RemainingSeconds = durationSeconds
	t.StartedAt = &now
	t.UpdatedAt = now
	return nil
}

func (t *TimerState) Pause(now time.Time) error {
	live := t.Live(now)
	if live.Status != TimerStatusRunning {
		return fmt.Errorf("%w: timer is not running", ErrInvalidState)
	}
	*t = live
	t.Status = TimerStatusPaused
	t.UpdatedAt = now
	return nil
}

func (t *TimerState) Resume(now time.Time) error {
	if t.Status != TimerStatusPaused {
		return fmt.Errorf("%w: timer is not paused", ErrInvalidState)
	}
	t.Status = TimerStatusRunning
	t.StartedAt = &now
	t.UpdatedAt = now
	return nil
}

// Reset returns the timer to idle in its current mode.
func (t *TimerState) Reset(now time.Time) {
	mode := t.Mode
	if _, ok := defaultModeSeconds[mode]; !ok {
		mode = TimerModeFocus
	}
	*t = NewTimerState(t.UserID, now)
	t.Mode = mode
	t.DurationSeconds = defaultModeSeconds[mode]
	t.RemainingSeconds = t.DurationSeconds
}

// GardenEntry mirrors a planted tree into the planter's personal history.
type GardenEntry struct {
	TreeID       uuid.UUID   `json:"tree_id"`
	UserID       uuid.UUID   `json:"user_id"`
	RoomID       uuid.UUID   `json:"room_id"`
	RoomName     string      `json:"room_name"`
	Category     string      `json:"category"`
	FocusMinutes int         `json:"focus_minutes"`
	GrowthStage  GrowthStage `json:"growth_stage"`
	Variety      *Variety    `json:"variety,omitempty"`
	PlantedAt    time.Time   `json:"planted_at"`
}

func NewGardenEntry(tree Tree, roomName string) GardenEntry {
	return GardenEntry{
		TreeID:       tree.ID,
		UserID:       tree.PlantedBy,
		RoomID:       tree.RoomID,
		RoomName:     roomName,
		Category:     tree.Category,
		FocusMinutes: tree.FocusMinutes,
		GrowthStage:  tree.GrowthStage,
		Variety:      tree.Variety,
		PlantedAt:    tree.PlantedAt,
	}
}
