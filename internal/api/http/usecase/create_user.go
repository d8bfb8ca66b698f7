package httpUsecase

import (
	"context"

	"circle-service/domain"

	"github.com/google/uuid"
)

type CreateUserUseCase interface {
	Execute(ctx context.Context, userID uuid.UUID, userName, email string) error
}

type createUserUseCase struct {
	repository CircleRepository
}

func NewCreateUserUseCase(repository CircleRepository) CreateUserUseCase {
	return &createUserUseCase{
		repository: repository,
	}
}

func (u *createUserUseCase) Execute(ctx context.Context, userID uuid.UUID, userName, email string) error {
	return u.repository.UpsertUser(ctx, domain.User{ID: userID, Username: userName, Email: email})
}
