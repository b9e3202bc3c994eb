package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"message-board/internal/domain"
	"message-board/internal/identity"
	"message-board/internal/repository"
)

const userColumns = `id, display_name, username, password_hash, created_at, updated_at`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

// Insert assigns a fresh identifier and timestamps and returns the stored row.
func (r *UserRepository) Insert(ctx context.Context, user *domain.User) (*domain.User, error) {
	now := formatTime(time.Now())
	row := r.db.QueryRowContext(ctx, `
INSERT INTO users (id, display_name, username, password_hash, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING `+userColumns,
		identity.Encode(identity.New()),
		user.DisplayName,
		user.Username,
		user.PasswordHash,
		now,
		now,
	)

	stored, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("insert user %q: %w", user.Username, domain.ErrDuplicateUsername)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return stored, nil
}

func (r *UserRepository) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+userColumns+`
FROM users
WHERE id = ?`,
		identity.Encode(id),
	)

	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+userColumns+`
FROM users
WHERE username = ?`,
		username,
	)

	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return user, nil
}

func scanUser(row scanner) (*domain.User, error) {
	var (
		user      domain.User
		id        []byte
		createdAt string
		updatedAt string
	)
	if err := row.Scan(
		&id,
		&user.DisplayName,
		&user.Username,
		&user.PasswordHash,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, err
		}
		return nil, domain.NewStoreError("scan user", err)
	}

	var err error
	if user.ID, err = identity.Decode(id); err != nil {
		return nil, domain.NewStoreError("decode user id", err)
	}
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, domain.NewStoreError("parse user created_at", err)
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, domain.NewStoreError("parse user updated_at", err)
	}
	return &user, nil
}
