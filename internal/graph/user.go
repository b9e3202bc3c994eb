package graph

import (
	"context"

	"message-board/internal/domain"
)

type UserResolver struct {
	root *Resolver
	user *domain.User
}

func (u *UserResolver) ID() UUID {
	return UUID{u.user.ID}
}

func (u *UserResolver) DisplayName() string {
	return u.user.DisplayName
}

func (u *UserResolver) Username() string {
	return u.user.Username
}

func (u *UserResolver) CreatedAt() DateTime {
	return DateTime{u.user.CreatedAt}
}

func (u *UserResolver) UpdatedAt() DateTime {
	return DateTime{u.user.UpdatedAt}
}

func (u *UserResolver) Messages(ctx context.Context, args struct{ IncludeReplies bool }) (*[]*MessageResolver, error) {
	messages, err := u.root.messages.ListByAuthor(ctx, u.user.ID, args.IncludeReplies)
	if err != nil {
		return nil, u.root.fail("User.messages", err)
	}
	return u.root.messageList(messages), nil
}
