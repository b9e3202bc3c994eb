package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"message-board/internal/domain"
	"message-board/internal/repository"
)

// MessageService coordinates message and thread operations.
type MessageService interface {
	Create(ctx context.Context, userID uuid.UUID, content string, parentID *uuid.UUID) (*domain.Message, error)
	Update(ctx context.Context, id uuid.UUID, content string) (*domain.Message, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	ListByTimeRange(ctx context.Context, userID *uuid.UUID, after, before time.Time) ([]domain.Message, error)
	ListReplies(ctx context.Context, parentID uuid.UUID) ([]domain.Message, error)
	ListByAuthor(ctx context.Context, userID uuid.UUID, includeReplies bool) ([]domain.Message, error)
	Delete(ctx context.Context, id uuid.UUID) (*domain.Message, error)
}

type messageService struct {
	messages repository.MessageRepository
}

func NewMessageService(messages repository.MessageRepository) MessageService {
	return &messageService{messages: messages}
}

// Create stores a new message. Author and parent are soft references and
// are not checked for existence.
func (s *messageService) Create(ctx context.Context, userID uuid.UUID, content string, parentID *uuid.UUID) (*domain.Message, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", domain.ErrInvalidInput)
	}
	if parentID != nil && *parentID == uuid.Nil {
		parentID = nil
	}

	return s.messages.Insert(ctx, domain.NewMessage(userID, content, parentID))
}

func (s *messageService) Update(ctx context.Context, id uuid.UUID, content string) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", domain.ErrInvalidInput)
	}
	return s.messages.Update(ctx, id, content)
}

func (s *messageService) Get(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	return s.messages.Get(ctx, id)
}

// ListByTimeRange returns an empty slice when after is later than before.
func (s *messageService) ListByTimeRange(ctx context.Context, userID *uuid.UUID, after, before time.Time) ([]domain.Message, error) {
	if after.After(before) {
		return []domain.Message{}, nil
	}
	return s.messages.ListByTimeRange(ctx, userID, after, before)
}

func (s *messageService) ListReplies(ctx context.Context, parentID uuid.UUID) ([]domain.Message, error) {
	return s.messages.ListReplies(ctx, parentID)
}

func (s *messageService) ListByAuthor(ctx context.Context, userID uuid.UUID, includeReplies bool) ([]domain.Message, error) {
	return s.messages.ListByAuthor(ctx, userID, includeReplies)
}

func (s *messageService) Delete(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	return s.messages.Delete(ctx, id)
}
