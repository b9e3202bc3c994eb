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

const messageColumns = `id, user_id, content, parent_message_id, created_at, updated_at`

type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) repository.MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Insert(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	now := formatTime(time.Now())
	row := r.db.QueryRowContext(ctx, `
INSERT INTO messages (id, user_id, content, parent_message_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING `+messageColumns,
		identity.Encode(identity.New()),
		identity.Encode(message.UserID),
		message.Content,
		identity.EncodeNullable(message.ParentMessageID),
		now,
		now,
	)

	stored, err := scanMessage(row)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return stored, nil
}

// Update replaces the content of the message addressed by id.
func (r *MessageRepository) Update(ctx context.Context, id uuid.UUID, content string) (*domain.Message, error) {
	row := r.db.QueryRowContext(ctx, `
UPDATE messages
SET content = ?, updated_at = ?
WHERE id = ?
RETURNING `+messageColumns,
		content,
		formatTime(time.Now()),
		identity.Encode(id),
	)

	message, err := scanMessage(row)
	if err != nil {
		return nil, fmt.Errorf("update message %s: %w", id, err)
	}
	return message, nil
}

func (r *MessageRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+messageColumns+`
FROM messages
WHERE id = ?`,
		identity.Encode(id),
	)

	message, err := scanMessage(row)
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", id, err)
	}
	return message, nil
}

func (r *MessageRepository) ListByTimeRange(ctx context.Context, userID *uuid.UUID, after, before time.Time) ([]domain.Message, error) {
	if userID == nil {
		return r.list(ctx, "list messages by time range", `
SELECT `+messageColumns+`
FROM messages
WHERE created_at >= ? AND created_at <= ?
ORDER BY created_at ASC, id ASC`,
			formatTime(after),
			formatTime(before),
		)
	}

	return r.list(ctx, "list user messages by time range", `
SELECT `+messageColumns+`
FROM messages
WHERE created_at >= ? AND created_at <= ? AND user_id = ?
ORDER BY created_at ASC, id ASC`,
		formatTime(after),
		formatTime(before),
		identity.Encode(*userID),
	)
}

func (r *MessageRepository) ListReplies(ctx context.Context, parentID uuid.UUID) ([]domain.Message, error) {
	return r.list(ctx, "list replies", `
SELECT `+messageColumns+`
FROM messages
WHERE parent_message_id = ?
ORDER BY created_at ASC, id ASC`,
		identity.Encode(parentID),
	)
}

func (r *MessageRepository) ListByAuthor(ctx context.Context, userID uuid.UUID, includeReplies bool) ([]domain.Message, error) {
	if includeReplies {
		return r.list(ctx, "list messages by author", `
SELECT `+messageColumns+`
FROM messages
WHERE user_id = ?
ORDER BY created_at ASC, id ASC`,
			identity.Encode(userID),
		)
	}

	return r.list(ctx, "list root messages by author", `
SELECT `+messageColumns+`
FROM messages
WHERE user_id = ? AND parent_message_id IS NULL
ORDER BY created_at ASC, id ASC`,
		identity.Encode(userID),
	)
}

// Delete removes the message and returns its prior contents. Replies are
// left untouched and keep pointing at the deleted id.
func (r *MessageRepository) Delete(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	row := r.db.QueryRowContext(ctx, `
DELETE FROM messages
WHERE id = ?
RETURNING `+messageColumns,
		identity.Encode(id),
	)

	message, err := scanMessage(row)
	if err != nil {
		return nil, fmt.Errorf("delete message %s: %w", id, err)
	}
	return message, nil
}

func (r *MessageRepository) list(ctx context.Context, op, query string, args ...any) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.NewStoreError(op, err)
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		messages = append(messages, *message)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError(op, err)
	}
	return messages, nil
}

func scanMessage(row scanner) (*domain.Message, error) {
	var (
		message   domain.Message
		id        []byte
		userID    []byte
		parentID  []byte
		createdAt string
		updatedAt string
	)
	if err := row.Scan(
		&id,
		&userID,
		&message.Content,
		&parentID,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.NewStoreError("scan message", err)
	}

	var err error
	if message.ID, err = identity.Decode(id); err != nil {
		return nil, domain.NewStoreError("decode message id", err)
	}
	if message.UserID, err = identity.Decode(userID); err != nil {
		return nil, domain.NewStoreError("decode message user_id", err)
	}
	if message.ParentMessageID, err = identity.DecodeNullable(parentID); err != nil {
		return nil, domain.NewStoreError("decode message parent_message_id", err)
	}
	if message.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, domain.NewStoreError("parse message created_at", err)
	}
	if message.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, domain.NewStoreError("parse message updated_at", err)
	}
	return &message, nil
}
