package repository

import (
	"context"

	"github.com/google/uuid"

	"message-board/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Insert(ctx context.Context, user *domain.User) (*domain.User, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}
