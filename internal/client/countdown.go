package client

import (
	"context"
	"sync"
	"time"

	"circle-service/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
var SystemClock Clock = systemClock{}

// SessionStopper asks the server to end a session whose time is up.
type SessionStopper interface {
	AutoStopSession(ctx context.Context, roomID uuid.UUID, sessionStart time.Time) error
}

// Tick is what the countdown reports after every evaluation.
type Tick struct {
	RoomID           uuid.UUID
	Running          bool
	RemainingSeconds int
	SessionStart     *time.Time
	Deleted          bool
}

// Countdown derives a room's remaining session time from the shared session
// start. Pushed snapshots replace the local state; the ticker only re-reads
// the clock. When a session runs out the countdown asks the server to stop
// it, once per session start.
type Countdown struct {
	roomID  uuid.UUID
	clock   Clock
	stopper SessionStopper
	onTick  func(Tick)
	tick    time.Duration

	mu       sync.Mutex
	room     *domain.Room
	deleted  bool
	firedFor time.Time
}

func NewCountdown(roomID uuid.UUID, clock Clock, stopper SessionStopper, onTick func(Tick)) *Countdown {
	if clock == nil {
		clock = SystemClock
	}
	if onTick == nil {
		onTick = func(Tick) {}
	}
	return &Countdown{
		roomID:  roomID,
		clock:   clock,
		stopper: stopper,
		onTick:  onTick,
		tick:    time.Second,
	}
}

// Update stores the latest pushed room. A nil room means it was deleted.
func (c *Countdown) Update(ctx context.Context, room *domain.Room) {
	c.mu.Lock()
	if room == nil {
		c.room = nil
		c.deleted = true
	} else {
		c.room = room.Clone()
		c.deleted = false
	}
	c.mu.Unlock()

	c.evaluate(ctx)
}

// Run evaluates the countdown every second until ctx is done.
func (c *Countdown) Run(ctx context.Context) {
	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.evaluate(ctx)
		}
	}
}

func (c *Countdown) evaluate(ctx context.Context) {
	tick, fire := c.snapshot()
	c.onTick(tick)

	if !fire || c.stopper == nil {
		return
	}
	if err := c.stopper.AutoStopSession(ctx, c.roomID, *tick.SessionStart); err != nil {
		zap.L().Warn("Auto-stop request failed",
			zap.String("room_id", c.roomID.String()),
			zap.Error(err),
		)
	}
}

// snapshot computes the tick under the lock and claims the auto-stop for the
// current session start if it is due.
func (c *Countdown) snapshot() (Tick, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tick := Tick{RoomID: c.roomID, Deleted: c.deleted}
	if c.room == nil || !c.room.IsRunning() {
		return tick, false
	}

	start := *c.room.CurrentSessionStart
	tick.Running = true
	tick.SessionStart = &start
	tick.RemainingSeconds = domain.RemainingSeconds(start, c.room.FocusDuration, c.clock.Now())

	if tick.RemainingSeconds > 0 || c.firedFor.Equal(start) {
		return tick, false
	}
	c.firedFor = start
	return tick, true
}
