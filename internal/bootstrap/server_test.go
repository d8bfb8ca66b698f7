package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"circle-service/config"
	"circle-service/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func newTestServer(t *testing.T) *fiber.App {
	t.Helper()
	cfg := config.Config{
		Store:     config.StoreConfig{Driver: "memory"},
		Session:   config.SessionConfig{AutoStopTolerance: 5 * time.Second, DefaultFocusMinute: 25},
		RateLimit: config.RateLimitConfig{RequestsPerMinute: 6000, Burst: 1000},
		Server:    config.ServerConfig{AllowOrigin: "http://localhost:5173"},
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	stores := InitStores(cfg)
	useCases := SetupUseCases(cfg, stores, nil)
	hub := InitWebsocket(ctx, stores)
	return SetupServer(cfg, SetupHTTPHandlers(stores, nil, useCases), SetupWSHandlers(stores, hub))
}

func call(t *testing.T, app *fiber.App, method, path string, user uuid.UUID, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != uuid.Nil {
		req.Header.Set("X-User-ID", user.String())
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, data
}

func TestCircleLifecycleOverHTTP(t *testing.T) {
	app := newTestServer(t)
	owner, member := uuid.New(), uuid.New()

	status, data := call(t, app, http.MethodPost, "/circles", owner, map[string]any{
		"name": "library", "max_participants": 2, "focus_duration": 25, "display_name": "Owner",
	})
	if status != http.StatusCreated {
		t.Fatalf("create: %d %s", status, data)
	}
	var created struct {
		Room domain.Room `json:"room"`
	}
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatal(err)
	}
	base := "/circles/" + created.Room.ID.String()

	if status, data = call(t, app, http.MethodPost, base+"/join", member, map[string]any{"display_name": "Member"}); status != http.StatusCreated {
		t.Fatalf("join: %d %s", status, data)
	}
	if status, _ = call(t, app, http.MethodPost, base+"/join", uuid.New(), nil); status != http.StatusConflict {
		t.Fatalf("join full room: %d", status)
	}

	if status, _ = call(t, app, http.MethodPost, base+"/session/start", member, nil); status != http.StatusForbidden {
		t.Fatalf("member start: %d", status)
	}
	if status, data = call(t, app, http.MethodPost, base+"/session/start", owner, nil); status != http.StatusOK {
		t.Fatalf("start: %d %s", status, data)
	}
	if status, _ = call(t, app, http.MethodPost, base+"/session/start", owner, nil); status != http.StatusConflict {
		t.Fatalf("double start: %d", status)
	}
	if status, _ = call(t, app, http.MethodPost, base+"/session/expire", member, nil); status != http.StatusConflict {
		t.Fatalf("early expire: %d", status)
	}

	status, data = call(t, app, http.MethodPost, base+"/session/stop", owner, map[string]any{"kill_trees": true})
	if status != http.StatusOK {
		t.Fatalf("stop: %d %s", status, data)
	}
	var stopped domain.StopResult
	if err := json.Unmarshal(data, &stopped); err != nil {
		t.Fatal(err)
	}
	if !stopped.Stopped || !stopped.Early {
		t.Fatalf("stop result = %+v", stopped)
	}

	if status, _ = call(t, app, http.MethodPost, base+"/leave", owner, nil); status != http.StatusOK {
		t.Fatalf("owner leave: %d", status)
	}
	status, data = call(t, app, http.MethodPost, base+"/leave", member, nil)
	if status != http.StatusOK {
		t.Fatalf("last leave: %d", status)
	}
	var left struct {
		RoomDeleted bool `json:"room_deleted"`
	}
	json.Unmarshal(data, &left)
	if !left.RoomDeleted {
		t.Fatal("room not deleted after last leave")
	}
	if status, _ = call(t, app, http.MethodGet, base, owner, nil); status != http.StatusNotFound {
		t.Fatalf("get deleted room: %d", status)
	}
}

func TestRequestsNeedUserHeader(t *testing.T) {
	app := newTestServer(t)
	if status, _ := call(t, app, http.MethodPost, "/circles", uuid.Nil, map[string]any{
		"name": "x", "max_participants": 2, "focus_duration": 25,
	}); status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status)
	}
}

func TestPersonalTimerOverHTTP(t *testing.T) {
	app := newTestServer(t)
	user := uuid.New()

	status, data := call(t, app, http.MethodPut, "/timer", user, map[string]any{"action": "start", "mode": "short_break"})
	if status != http.StatusOK {
		t.Fatalf("start timer: %d %s", status, data)
	}
	if status, _ = call(t, app, http.MethodPut, "/timer", user, map[string]any{"action": "rewind"}); status != http.StatusBadRequest {
		t.Fatalf("bad action: %d", status)
	}
	status, data = call(t, app, http.MethodDelete, "/timer", user, nil)
	if status != http.StatusOK {
		t.Fatalf("reset: %d %s", status, data)
	}
	var res struct {
		Timer domain.TimerState `json:"timer"`
	}
	json.Unmarshal(data, &res)
	if res.Timer.Status != domain.TimerStatusIdle || res.Timer.Mode != domain.TimerModeShortBreak {
		t.Fatalf("timer after reset = %+v", res.Timer)
	}
}

func TestWebsocketRouteRequiresUpgrade(t *testing.T) {
	app := newTestServer(t)
	if status, _ := call(t, app, http.MethodGet, "/ws/circle/"+uuid.NewString(), uuid.New(), nil); status != http.StatusUpgradeRequired {
		t.Fatalf("status = %d, want 426", status)
	}
}

func TestCreateCircleWithoutFocusUsesDefault(t *testing.T) {
	app := newTestServer(t)

	status, data := call(t, app, http.MethodPost, "/circles", uuid.New(), map[string]any{
		"name": "quiet corner", "max_participants": 4,
	})
	if status != http.StatusCreated {
		t.Fatalf("create: %d %s", status, data)
	}
	var created struct {
		Room domain.Room `json:"room"`
	}
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatal(err)
	}
	if created.Room.FocusDuration != 25 {
		t.Fatalf("focus duration = %d, want 25", created.Room.FocusDuration)
	}
}
