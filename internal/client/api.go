package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"circle-service/domain"
	httpHandler "circle-service/internal/api/http/handler"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx answer from the service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("circle-service: %d %s", e.Status, e.Message)
}

// Unwrap maps the status back onto the domain error it was produced from, so
// callers can use errors.Is(err, domain.ErrNotFound).
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return domain.ErrInvalidInput
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusForbidden:
		return domain.ErrPermissionDenied
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		if strings.Contains(e.Message, domain.ErrFull.Error()) {
			return domain.ErrFull
		}
		return domain.ErrInvalidState
	case http.StatusServiceUnavailable, http.StatusTooManyRequests:
		return domain.ErrTransientIO
	}
	return nil
}

// API talks to the circle-service HTTP interface on behalf of one user.
type API struct {
	baseURL string
	userID  uuid.UUID
}

func NewAPI(baseURL string, userID uuid.UUID) *API {
	return &API{baseURL: strings.TrimRight(baseURL, "/"), userID: userID}
}

func (a *API) UserID() uuid.UUID { return a.userID }

func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	agent := fiber.AcquireAgent()
	req := agent.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(a.baseURL + path)
	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	agent.Set("X-User-ID", a.userID.String())
	agent.Timeout(timeoutFrom(ctx))
	if body != nil {
		agent.JSON(body)
	}

	// Bytes releases the agent.
	status, respBody, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", domain.ErrTransientIO, errors.Join(errs...))
	}

	if status >= http.StatusBadRequest {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(respBody, &errBody)
		if errBody.Error == "" {
			errBody.Error = http.StatusText(status)
		}
		return &APIError{Status: status, Message: errBody.Error}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrInternal, err)
	}
	return nil
}

func timeoutFrom(ctx context.Context) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d > 0 {
			return d
		}
	}
	return defaultTimeout
}

func roomPath(roomID uuid.UUID, suffix string) string {
	return "/circles/" + roomID.String() + suffix
}

func (a *API) CreateRoom(ctx context.Context, req httpHandler.CreateRoomRequest) (*domain.Room, error) {
	var res httpHandler.CreateRoomResponse
	if err := a.do(ctx, fiber.MethodPost, "/circles", req, &res); err != nil {
		return nil, err
	}
	return res.Room, nil
}

func (a *API) ListRooms(ctx context.Context, limit int) ([]domain.Room, error) {
	var res httpHandler.ListRoomsResponse
	path := "/circles"
	if limit > 0 {
		path = fmt.Sprintf("/circles?limit=%d", limit)
	}
	if err := a.do(ctx, fiber.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return res.Rooms, nil
}

func (a *API) GetRoom(ctx context.Context, roomID uuid.UUID) (*domain.Room, error) {
	var res httpHandler.GetRoomResponse
	if err := a.do(ctx, fiber.MethodGet, roomPath(roomID, ""), nil, &res); err != nil {
		return nil, err
	}
	return res.Room, nil
}

func (a *API) ListParticipants(ctx context.Context, roomID uuid.UUID) ([]domain.Participant, error) {
	var res httpHandler.ListParticipantsResponse
	if err := a.do(ctx, fiber.MethodGet, roomPath(roomID, "/participants"), nil, &res); err != nil {
		return nil, err
	}
	return res.Participants, nil
}

func (a *API) JoinRoom(ctx context.Context, roomID uuid.UUID, displayName string) error {
	body := httpHandler.JoinRoomRequest{DisplayName: displayName}
	return a.do(ctx, fiber.MethodPost, roomPath(roomID, "/join"), body, nil)
}

func (a *API) LeaveRoom(ctx context.Context, roomID uuid.UUID) (*httpHandler.LeaveRoomResponse, error) {
	var res httpHandler.LeaveRoomResponse
	if err := a.do(ctx, fiber.MethodPost, roomPath(roomID, "/leave"), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (a *API) StartSession(ctx context.Context, roomID uuid.UUID) (*domain.Room, error) {
	var res httpHandler.StartSessionResponse
	if err := a.do(ctx, fiber.MethodPost, roomPath(roomID, "/session/start"), nil, &res); err != nil {
		return nil, err
	}
	return res.Room, nil
}

func (a *API) StopSession(ctx context.Context, roomID uuid.UUID, killTrees bool) (*domain.StopResult, error) {
	var res domain.StopResult
	body := httpHandler.StopSessionRequest{KillTrees: killTrees}
	if err := a.do(ctx, fiber.MethodPost, roomPath(roomID, "/session/stop"), body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// AutoStopSession asks the server to end the session that started at
// sessionStart. It is a no-op when a newer session is running.
func (a *API) AutoStopSession(ctx context.Context, roomID uuid.UUID, sessionStart time.Time) error {
	body := httpHandler.ExpireSessionRequest{SessionStart: &sessionStart}
	return a.do(ctx, fiber.MethodPost, roomPath(roomID, "/session/expire"), body, nil)
}

func (a *API) PlantTree(ctx context.Context, roomID uuid.UUID, req httpHandler.PlantTreeRequest) (*domain.Tree, error) {
	var res httpHandler.PlantTreeResponse
	if err := a.do(ctx, fiber.MethodPost, roomPath(roomID, "/trees"), req, &res); err != nil {
		return nil, err
	}
	return res.Tree, nil
}

func (a *API) SetReady(ctx context.Context, roomID uuid.UUID, ready bool) error {
	body := httpHandler.ToggleReadyRequest{Ready: ready}
	return a.do(ctx, fiber.MethodPut, roomPath(roomID, "/ready"), body, nil)
}

func (a *API) Timer(ctx context.Context) (*domain.TimerState, error) {
	var res httpHandler.TimerResponse
	if err := a.do(ctx, fiber.MethodGet, "/timer", nil, &res); err != nil {
		return nil, err
	}
	return res.Timer, nil
}

func (a *API) UpdateTimer(ctx context.Context, req httpHandler.UpdateTimerRequest) (*domain.TimerState, error) {
	var res httpHandler.TimerResponse
	if err := a.do(ctx, fiber.MethodPut, "/timer", req, &res); err != nil {
		return nil, err
	}
	return res.Timer, nil
}

func (a *API) ResetTimer(ctx context.Context) (*domain.TimerState, error) {
	var res httpHandler.TimerResponse
	if err := a.do(ctx, fiber.MethodDelete, "/timer", nil, &res); err != nil {
		return nil, err
	}
	return res.Timer, nil
}

func (a *API) Garden(ctx context.Context, limit int) ([]domain.GardenEntry, error) {
	var res httpHandler.GardenResponse
	path := "/garden"
	if limit > 0 {
		path = fmt.Sprintf("/garden?limit=%d", limit)
	}
	if err := a.do(ctx, fiber.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return res.Trees, nil
}
