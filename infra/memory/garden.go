package memory

import (
	"context"
	"sort"
	"sync"

	"circle-service/domain"

	"github.com/google/uuid"
)

// GardenHistory is the personal tree history of every user.
type GardenHistory struct {
	mu      sync.RWMutex
	entries map[uuid.UUID][]domain.GardenEntry
}

func NewGardenHistory() *GardenHistory {
	return &GardenHistory{entries: make(map[uuid.UUID][]domain.GardenEntry)}
}

func (g *GardenHistory) AddEntry(ctx context.Context, entry domain.GardenEntry) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.entries[entry.UserID] = append(g.entries[entry.UserID], entry)
	return nil
}

// ListEntries returns the user's trees, newest first.
func (g *GardenHistory) ListEntries(ctx context.Context, userID uuid.UUID, limit int) ([]domain.GardenEntry, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	list := make([]domain.GardenEntry, len(g.entries[userID]))
	copy(list, g.entries[userID])
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].PlantedAt.After(list[j].PlantedAt)
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}
