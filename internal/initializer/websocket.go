package initializer

import (
	"context"

	circleHub "circle-service/internal/api/ws/hub"
)

func InitWebsocket(ctx context.Context, repo circleHub.Repository, subscriber circleHub.Subscriber) *circleHub.Hub {
	hub := circleHub.NewHub(repo, subscriber)
	hub.Run(ctx)
	return hub
}
