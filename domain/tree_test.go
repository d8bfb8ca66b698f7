package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestGrowthStageFor(t *testing.T) {
	cases := map[int]GrowthStage{
		1:   StageSeed,
		9:   StageSeed,
		10:  StageSprout,
		24:  StageSprout,
		25:  StageSapling,
		44:  StageSapling,
		45:  StageYoung,
		59:  StageYoung,
		60:  StageMature,
		240: StageMature,
	}
	for minutes, want := range cases {
		if got := GrowthStageFor(minutes); got != want {
			t.Errorf("GrowthStageFor(%d) = %s, want %s", minutes, got, want)
		}
	}
	if GrowthStage(42).String() != "unknown" {
		t.Error("out of range stage has a name")
	}
}

func TestNewTree(t *testing.T) {
	req := PlantRequest{RoomID: uuid.New(), UserID: uuid.New(), DisplayName: "Ada", FocusMinutes: 25, Variety: &Variety{}}
	tree, err := NewTree(req, t0)
	if err != nil {
		t.Fatal(err)
	}
	if !tree.IsAlive || tree.Category != DefaultCategory || tree.GrowthStage != StageSapling {
		t.Fatalf("tree = %+v", tree)
	}
	if tree.Variety != nil {
		t.Fatal("empty variety should be dropped")
	}

	req.FocusMinutes = 0
	if _, err := NewTree(req, t0); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("zero minutes err = %v", err)
	}
}

func TestParticipantRecordTree(t *testing.T) {
	p := NewParticipant(uuid.New(), uuid.New(), "Ada", t0)
	p.RecordTree(25)
	p.RecordTree(10)
	if p.TreesPlanted != 2 || p.TotalFocusMinutes != 35 {
		t.Fatalf("participant = %+v", p)
	}
}
