package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"message-board/internal/domain"
	"message-board/internal/repository"
)

// PasswordHasher turns a raw password into a self-describing hash string.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// UserService describes user lifecycle operations.
type UserService interface {
	Create(ctx context.Context, displayName, username, password string) (*domain.User, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type userService struct {
	users  repository.UserRepository
	hasher PasswordHasher
}

func NewUserService(users repository.UserRepository, hasher PasswordHasher) UserService {
	return &userService{
		users:  users,
		hasher: hasher,
	}
}

func (s *userService) Create(ctx context.Context, displayName, username, password string) (*domain.User, error) {
	displayName = strings.TrimSpace(displayName)
	username = strings.TrimSpace(username)

	if displayName == "" {
		return nil, fmt.Errorf("%w: display name is required", domain.ErrInvalidInput)
	}
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Insert(ctx, domain.NewUser(displayName, username, hash))
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Username:    user.Username,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}
