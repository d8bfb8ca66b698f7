package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MinParticipants      = 2
	MaxParticipantsLimit = 50
	MinFocusDuration     = 1
	MaxFocusDuration     = 240
	DefaultCategory      = "general"
)

// Room is the shared document of a study circle. CurrentSessionStart is set
// if and only if a focus session is running.
type Room struct {
	ID                  uuid.UUID  `json:"id"`
	Name                string     `json:"name"`
	Description         string     `json:"description"`
	CreatedBy           uuid.UUID  `json:"created_by"`
	CreatedAt           time.Time  `json:"created_at"`
	IsActive            bool       `json:"is_active"`
	ParticipantCount    int        `json:"participant_count"`
	MaxParticipants     int        `json:"max_participants"`
	FocusDuration       int        `json:"focus_duration"` // dakika
	Category            string     `json:"category"`
	CurrentSessionStart *time.Time `json:"current_session_start,omitempty"`
	Trees               []Tree     `json:"trees"`
}

// RoomConfig carries the user-chosen settings of a new room.
type RoomConfig struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	MaxParticipants int    `json:"max_participants"`
	FocusDuration   int    `json:"focus_duration"`
	Category        string `json:"category"`
}

func (c *RoomConfig) Normalize() error {
	c.Name = strings.TrimSpace(c.Name)
	c.Category = strings.TrimSpace(c.Category)
	if c.Category == "" {
		c.Category = DefaultCategory
	}

	switch {
	case c.Name == "" || len(c.Name) > 100:
		return fmt.Errorf("%w: room name must be 1-100 characters", ErrInvalidInput)
	case len(c.Description) > 500:
		return fmt.Errorf("%w: description is too long", ErrInvalidInput)
	case len(c.Category) > 50:
		return fmt.Errorf("%w: category is too long", ErrInvalidInput)
	case c.MaxParticipants < MinParticipants || c.MaxParticipants > MaxParticipantsLimit:
		return fmt.Errorf("%w: max participants must be between %d and %d", ErrInvalidInput, MinParticipants, MaxParticipantsLimit)
	case c.FocusDuration < MinFocusDuration || c.FocusDuration > MaxFocusDuration:
		return fmt.Errorf("%w: focus duration must be between %d and %d minutes", ErrInvalidInput, MinFocusDuration, MaxFocusDuration)
	}
	return nil
}

// NewRoom builds the room document for a freshly created circle. The owner is
// counted as the first participant.
func NewRoom(ownerID uuid.UUID, cfg RoomConfig, now time.Time) (*Room, error) {
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &Room{
		ID:               uuid.New(),
		Name:             cfg.Name,
		Description:      cfg.Description,
		CreatedBy:        ownerID,
		CreatedAt:        now,
		IsActive:         true,
		ParticipantCount: 1,
		MaxParticipants:  cfg.MaxParticipants,
		FocusDuration:    cfg.FocusDuration,
		Category:         cfg.Category,
		Trees:            []Tree{},
	}, nil
}

func (r *Room) IsRunning() bool {
	return r.CurrentSessionStart != nil
}

func (r *Room) IsOwner(userID uuid.UUID) bool {
	return r.CreatedBy == userID
}

// CanJoin reports why a new member cannot enter the room, if anything.
func (r *Room) CanJoin() error {
	if !r.IsActive {
		return fmt.Errorf("%w: room is not active", ErrInvalidState)
	}
	if r.ParticipantCount >= r.MaxParticipants {
		return fmt.Errorf("%w: %d/%d participants", ErrFull, r.ParticipantCount, r.MaxParticipants)
	}
	return nil
}

// CanPlant checks the room side of the plant-tree preconditions.
func (r *Room) CanPlant() error {
	if !r.IsActive {
		return fmt.Errorf("%w: room is not active", ErrInvalidState)
	}
	return nil
}

// StartSession moves the room from Idle to Running.
func (r *Room) StartSession(actor uuid.UUID, now time.Time) error {
	if !r.IsOwner(actor) {
		return fmt.Errorf("%w: only the room owner (%s) can start the session", ErrPermissionDenied, r.CreatedBy)
	}
	if !r.IsActive {
		return fmt.Errorf("%w: room is not active", ErrInvalidState)
	}
	if r.IsRunning() {
		return fmt.Errorf("%w: a session is already running", ErrInvalidState)
	}
	start := now
	r.CurrentSessionStart = &start
	return nil
}

// StopResult describes the consequence of a stop transition.
type StopResult struct {
	Stopped        bool      `json:"stopped"`
	SessionStart   time.Time `json:"session_start,omitempty"`
	ElapsedMinutes int       `json:"elapsed_minutes"`
	Early          bool      `json:"early"`
	TreesForfeited bool      `json:"trees_forfeited"`
	TreesKilled    int       `json:"trees_killed"`
}

// StopSession ends the running session on behalf of the owner. Stopping an
// idle room is a no-op. Trees are only killed on an early stop and only when
// the owner asked for it; the penalty covers every tree of the room.
func (r *Room) StopSession(actor uuid.UUID, now time.Time, killTrees bool) (StopResult, error) {
	if !r.IsOwner(actor) {
		return StopResult{}, fmt.Errorf("%w: only the room owner (%s) can stop the session", ErrPermissionDenied, r.CreatedBy)
	}
	if !r.IsRunning() {
		return StopResult{}, nil
	}

	res := r.clearSession(now)
	if res.Early && killTrees {
		res.TreesForfeited = true
		res.TreesKilled = r.KillTrees()
	}
	return res, nil
}

// AutoStop ends a session whose configured duration has elapsed. Anyone may
// call it. observed, when given, must match the running session start;
// otherwise the call targets an older session and is ignored.
func (r *Room) AutoStop(now time.Time, observed *time.Time, tolerance time.Duration) (StopResult, error) {
	if !r.IsRunning() {
		return StopResult{}, nil
	}
	if observed != nil && !observed.Equal(*r.CurrentSessionStart) {
		return StopResult{}, nil
	}
	if Remaining(*r.CurrentSessionStart, r.FocusDuration, now) > tolerance {
		return StopResult{}, fmt.Errorf("%w: session has not expired yet", ErrInvalidState)
	}
	return r.clearSession(now), nil
}

func (r *Room) clearSession(now time.Time) StopResult {
	start := *r.CurrentSessionStart
	elapsed := ElapsedMinutes(start, now)
	r.CurrentSessionStart = nil
	return StopResult{
		Stopped:        true,
		SessionStart:   start,
		ElapsedMinutes: elapsed,
		Early:          IsEarlyStop(elapsed, r.FocusDuration),
	}
}

// KillTrees marks every tree of the room as dead and returns how many were
// alive before.
func (r *Room) KillTrees() int {
	killed := 0
	for i := range r.Trees {
		if r.Trees[i].IsAlive {
			killed++
		}
		r.Trees[i].IsAlive = false
	}
	return killed
}

// Clone returns a deep copy safe to hand out of a lock.
func (r *Room) Clone() *Room {
	c := *r
	if r.CurrentSessionStart != nil {
		start := *r.CurrentSessionStart
		c.CurrentSessionStart = &start
	}
	c.Trees = make([]Tree, len(r.Trees))
	for i, t := range r.Trees {
		c.Trees[i] = t.Clone()
	}
	return &c
}

// LeaveResult reports what a leave did to the room.
type LeaveResult struct {
	RoomDeleted bool      `json:"room_deleted"`
	NewOwner    uuid.UUID `json:"new_owner,omitempty"`
}

// ExpiredSession identifies a running session whose duration has elapsed.
type ExpiredSession struct {
	RoomID       uuid.UUID
	SessionStart time.Time
}
