package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"message-board/internal/domain"
)

// MessageRepository exposes persistence operations for messages and their threads.
type MessageRepository interface {
	Insert(ctx context.Context, message *domain.Message) (*domain.Message, error)
	Update(ctx context.Context, id uuid.UUID, content string) (*domain.Message, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	// ListByTimeRange returns messages created within [after, before]. A nil
	// userID matches every author.
	ListByTimeRange(ctx context.Context, userID *uuid.UUID, after, before time.Time) ([]domain.Message, error)
	ListReplies(ctx context.Context, parentID uuid.UUID) ([]domain.Message, error)
	ListByAuthor(ctx context.Context, userID uuid.UUID, includeReplies bool) ([]domain.Message, error)
	Delete(ctx context.Context, id uuid.UUID) (*domain.Message, error)
}
