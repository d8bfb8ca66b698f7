// Package memory is the in-process document store used when no database is
// configured. It implements the same contracts as the Postgres, Redis and
// Mongo adapters so the service behaves identically on either backend.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"circle-service/domain"

	"github.com/google/uuid"
)

// Store keeps rooms, participants and users behind a single lock. Every value
// handed out is a copy.
type Store struct {
	mu           sync.RWMutex
	rooms        map[uuid.UUID]*domain.Room
	participants map[uuid.UUID]map[uuid.UUID]*domain.Participant
	users        map[uuid.UUID]domain.User
}

func NewStore() *Store {
	return &Store{
		rooms:        make(map[uuid.UUID]*domain.Room),
		participants: make(map[uuid.UUID]map[uuid.UUID]*domain.Participant),
		users:        make(map[uuid.UUID]domain.User),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) room(roomID uuid.UUID) (*domain.Room, error) {
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("%w: room not found", domain.ErrNotFound)
	}
	return room, nil
}

func (s *Store) activeParticipant(roomID, userID uuid.UUID) (*domain.Participant, error) {
	p, ok := s.participants[roomID][userID]
	if !ok || !p.IsActive {
		return nil, fmt.Errorf("%w: participant not found", domain.ErrNotFound)
	}
	return p, nil
}

func (s *Store) CreateRoom(ctx context.Context, room *domain.Room, owner domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rooms[room.ID]; exists {
		return fmt.Errorf("%w: room already exists", domain.ErrConflict)
	}
	s.rooms[room.ID] = room.Clone()
	p := owner
	s.participants[room.ID] = map[uuid.UUID]*domain.Participant{owner.UserID: &p}
	return nil
}

func (s *Store) GetRoom(ctx context.Context, roomID uuid.UUID) (*domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, err := s.room(roomID)
	if err != nil {
		return nil, err
	}
	return room.Clone(), nil
}

// ListRooms returns active rooms, newest first, without their trees.
func (s *Store) ListRooms(ctx context.Context, limit int) ([]domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := []domain.Room{}
	for _, room := range s.rooms {
		if !room.IsActive {
			continue
		}
		c := room.Clone()
		c.Trees = []domain.Tree{}
		rooms = append(rooms, *c)
	}
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].CreatedAt.After(rooms[j].CreatedAt)
	})
	if limit > 0 && len(rooms) > limit {
		rooms = rooms[:limit]
	}
	return rooms, nil
}

func (s *Store) ListParticipants(ctx context.Context, roomID uuid.UUID) ([]domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := []domain.Participant{}
	for _, p := range s.participants[roomID] {
		if p.IsActive {
			list = append(list, *p)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].JoinedAt.Before(list[j].JoinedAt)
	})
	return list, nil
}

func (s *Store) GetParticipant(ctx context.Context, roomID, userID uuid.UUID) (*domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := s.activeParticipant(roomID, userID)
	if err != nil {
		return nil, err
	}
	c := *p
	return &c, nil
}

func (s *Store) JoinRoom(ctx context.Context, roomID, userID uuid.UUID, displayName string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.room(roomID)
	if err != nil {
		return false, err
	}
	existing, ok := s.participants[roomID][userID]
	if ok && existing.IsActive {
		return false, nil
	}
	if err := room.CanJoin(); err != nil {
		return false, err
	}

	if ok {
		existing.IsActive = true
		existing.DisplayName = displayName
		existing.JoinedAt = now
		existing.IsReady = false
	} else {
		p := domain.NewParticipant(roomID, userID, displayName, now)
		if s.participants[roomID] == nil {
			s.participants[roomID] = make(map[uuid.UUID]*domain.Participant)
		}
		s.participants[roomID][userID] = &p
	}
	room.ParticipantCount++
	return true, nil
}

func (s *Store) LeaveRoom(ctx context.Context, roomID, userID uuid.UUID) (domain.LeaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result domain.LeaveResult
	room, err := s.room(roomID)
	if err != nil {
		return result, err
	}
	if _, err := s.activeParticipant(roomID, userID); err != nil {
		return result, fmt.Errorf("%w: user is not in the room", domain.ErrNotFound)
	}
	delete(s.participants[roomID], userID)

	if room.ParticipantCount <= 1 {
		delete(s.participants, roomID)
		delete(s.rooms, roomID)
		result.RoomDeleted = true
		return result, nil
	}

	room.ParticipantCount--
	if room.IsOwner(userID) {
		var next *domain.Participant
		for _, p := range s.participants[roomID] {
			if !p.IsActive {
				continue
			}
			if next == nil || p.JoinedAt.Before(next.JoinedAt) {
				next = p
			}
		}
		if next != nil {
			room.CreatedBy = next.UserID
			result.NewOwner = next.UserID
		}
	}
	return result, nil
}

func (s *Store) StartSession(ctx context.Context, roomID, actor uuid.UUID, now time.Time) (*domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.room(roomID)
	if err != nil {
		return nil, err
	}
	if err := room.StartSession(actor, now); err != nil {
		return nil, err
	}
	if p, ok := s.participants[roomID][actor]; ok {
		p.IsReady = false
	}
	return room.Clone(), nil
}

func (s *Store) StopSession(ctx context.Context, roomID, actor uuid.UUID, now time.Time, killTrees bool) (domain.StopResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.room(roomID)
	if err != nil {
		return domain.StopResult{}, err
	}
	return room.StopSession(actor, now, killTrees)
}

func (s *Store) AutoStopSession(ctx context.Context, roomID uuid.UUID, observed *time.Time, now time.Time, tolerance time.Duration) (domain.StopResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.room(roomID)
	if err != nil {
		return domain.StopResult{}, err
	}
	return room.AutoStop(now, observed, tolerance)
}

// PlantTree appends the tree to the room and updates the planter's stats. It
// returns the room name for the garden mirror.
func (s *Store) PlantTree(ctx context.Context, req domain.PlantRequest, now time.Time) (domain.Tree, string, error) {
	tree, err := domain.NewTree(req, now)
	if err != nil {
		return domain.Tree{}, "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.room(req.RoomID)
	if err != nil {
		return domain.Tree{}, "", err
	}
	if err := room.CanPlant(); err != nil {
		return domain.Tree{}, "", err
	}
	p, err := s.activeParticipant(req.RoomID, req.UserID)
	if err != nil {
		return domain.Tree{}, "", err
	}
	if tree.PlantedByName == "" {
		tree.PlantedByName = p.DisplayName
	}

	p.RecordTree(tree.FocusMinutes)
	room.Trees = append(room.Trees, tree.Clone())
	return tree, room.Name, nil
}

func (s *Store) SetReady(ctx context.Context, roomID, userID uuid.UUID, ready bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.activeParticipant(roomID, userID)
	if err != nil {
		return err
	}
	p.IsReady = ready
	return nil
}

// ListExpiredSessions returns running sessions whose duration has elapsed,
// oldest first.
func (s *Store) ListExpiredSessions(ctx context.Context, now time.Time, limit int) ([]domain.ExpiredSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var expired []domain.ExpiredSession
	for _, room := range s.rooms {
		if !room.IsRunning() {
			continue
		}
		start := *room.CurrentSessionStart
		if !domain.SessionDeadline(start, room.FocusDuration).After(now) {
			expired = append(expired, domain.ExpiredSession{RoomID: room.ID, SessionStart: start})
		}
	}
	sort.Slice(expired, func(i, j int) bool {
		return expired[i].SessionStart.Before(expired[j].SessionStart)
	})
	if limit > 0 && len(expired) > limit {
		expired = expired[:limit]
	}
	return expired, nil
}

func (s *Store) UpsertUser(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[user.ID] = user
	return nil
}

func (s *Store) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("%w: user not found", domain.ErrNotFound)
	}
	return &user, nil
}
