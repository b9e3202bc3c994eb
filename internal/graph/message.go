package graph

import (
	"context"

	"message-board/internal/domain"
)

type MessageResolver struct {
	root    *Resolver
	message *domain.Message
}

func (m *MessageResolver) ID() UUID {
	return UUID{m.message.ID}
}

func (m *MessageResolver) UserID() UUID {
	return UUID{m.message.UserID}
}

func (m *MessageResolver) Content() string {
	return m.message.Content
}

func (m *MessageResolver) IsReply() bool {
	return m.message.IsReply()
}

func (m *MessageResolver) CreatedAt() DateTime {
	return DateTime{m.message.CreatedAt}
}

func (m *MessageResolver) UpdatedAt() DateTime {
	return DateTime{m.message.UpdatedAt}
}

// ParentMessage is null for root messages and when the parent no longer exists.
func (m *MessageResolver) ParentMessage(ctx context.Context) (*MessageResolver, error) {
	if m.message.ParentMessageID == nil {
		return nil, nil
	}

	parent, err := m.root.loader(ctx).message(ctx, *m.message.ParentMessageID)
	if err != nil {
		return nil, m.root.fail("Message.parentMessage", err)
	}
	return m.root.messageResolver(parent), nil
}

func (m *MessageResolver) Replies(ctx context.Context) (*[]*MessageResolver, error) {
	replies, err := m.root.messages.ListReplies(ctx, m.message.ID)
	if err != nil {
		return nil, m.root.fail("Message.replies", err)
	}
	return m.root.messageList(replies), nil
}

// Author is null when the referenced user does not exist.
func (m *MessageResolver) Author(ctx context.Context) (*UserResolver, error) {
	user, err := m.root.loader(ctx).user(ctx, m.message.UserID)
	if err != nil {
		return nil, m.root.fail("Message.author", err)
	}
	return m.root.userResolver(user), nil
}
