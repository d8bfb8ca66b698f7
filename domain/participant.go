package domain

import (
	"time"

	"github.com/google/uuid"
)

// Participant is the membership record of one user in one room.
type Participant struct {
	RoomID            uuid.UUID `json:"room_id"`
	UserID            uuid.UUID `json:"user_id"`
	DisplayName       string    `json:"display_name"`
	JoinedAt          time.Time `json:"joined_at"`
	IsActive          bool      `json:"is_active"`
	TotalFocusMinutes int       `json:"total_focus_minutes"`
	TreesPlanted      int       `json:"trees_planted"`
	IsReady           bool      `json:"is_ready"`
}

func NewParticipant(roomID, userID uuid.UUID, displayName string, now time.Time) Participant {
	return Participant{
		RoomID:      roomID,
		UserID:      userID,
		DisplayName: displayName,
		JoinedAt:    now,
		IsActive:    true,
	}
}

// RecordTree adds a planted tree to the participant's stats.
func (p *Participant) RecordTree(focusMinutes int) {
	p.TotalFocusMinutes += focusMinutes
	p.TreesPlanted++
}

// User is the directory entry filled from user_created events.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email,omitempty"`
}
