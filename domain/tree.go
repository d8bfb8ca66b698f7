package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type GrowthStage int

const (
	StageSeed GrowthStage = iota
	StageSprout
	StageSapling
	StageYoung
	StageMature
)

var growthStageNames = map[GrowthStage]string{
	StageSeed:    "seed",
	StageSprout:  "sprout",
	StageSapling: "sapling",
	StageYoung:   "young",
	StageMature:  "mature",
}

func (g GrowthStage) String() string {
	if name, ok := growthStageNames[g]; ok {
		return name
	}
	return "unknown"
}

// GrowthStageFor discretizes focus minutes into a growth stage.
func GrowthStageFor(focusMinutes int) GrowthStage {
	switch {
	case focusMinutes < 10:
		return StageSeed
	case focusMinutes < 25:
		return StageSprout
	case focusMinutes < 45:
		return StageSapling
	case focusMinutes < 60:
		return StageYoung
	default:
		return StageMature
	}
}

// Variety is the cosmetic look a planter picks for a tree.
type Variety struct {
	Emoji string `json:"emoji,omitempty"`
	Color string `json:"color,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Tree is a trophy planted after a session. Only IsAlive ever changes.
type Tree struct {
	ID            uuid.UUID   `json:"id"`
	RoomID        uuid.UUID   `json:"room_id"`
	Category      string      `json:"category"`
	PlantedAt     time.Time   `json:"planted_at"`
	GrowthStage   GrowthStage `json:"growth_stage"`
	FocusMinutes  int         `json:"focus_minutes"`
	IsAlive       bool        `json:"is_alive"`
	PlantedBy     uuid.UUID   `json:"planted_by"`
	PlantedByName string      `json:"planted_by_name"`
	Variety       *Variety    `json:"variety,omitempty"`
}

// PlantRequest is what a participant submits to claim a tree.
type PlantRequest struct {
	RoomID       uuid.UUID
	UserID       uuid.UUID
	DisplayName  string
	Category     string
	FocusMinutes int
	Variety      *Variety
}

// NewTree validates a plant request and builds the tree record.
func NewTree(req PlantRequest, now time.Time) (Tree, error) {
	if req.FocusMinutes <= 0 {
		return Tree{}, fmt.Errorf("%w: focus minutes must be positive", ErrInvalidState)
	}
	if req.UserID == uuid.Nil {
		return Tree{}, fmt.Errorf("%w: planter id is required", ErrInvalidInput)
	}
	category := req.Category
	if category == "" {
		category = DefaultCategory
	}
	var variety *Variety
	if req.Variety != nil && *req.Variety != (Variety{}) {
		v := *req.Variety
		variety = &v
	}
	return Tree{
		ID:            uuid.New(),
		RoomID:        req.RoomID,
		Category:      category,
		PlantedAt:     now,
		GrowthStage:   GrowthStageFor(req.FocusMinutes),
		FocusMinutes:  req.FocusMinutes,
		IsAlive:       true,
		PlantedBy:     req.UserID,
		PlantedByName: req.DisplayName,
		Variety:       variety,
	}, nil
}

func (t Tree) Clone() Tree {
	if t.Variety != nil {
		v := *t.Variety
		t.Variety = &v
	}
	return t
}
