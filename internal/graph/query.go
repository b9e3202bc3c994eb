package graph

import (
	"context"

	"github.com/google/uuid"
)

func (r *Resolver) User(ctx context.Context, args struct{ ID UUID }) (*UserResolver, error) {
	user, err := r.loader(ctx).user(ctx, args.ID.UUID)
	if err != nil {
		return nil, r.fail("user", err)
	}
	return r.userResolver(user), nil
}

func (r *Resolver) Message(ctx context.Context, args struct{ ID UUID }) (*MessageResolver, error) {
	message, err := r.loader(ctx).message(ctx, args.ID.UUID)
	if err != nil {
		return nil, r.fail("message", err)
	}
	return r.messageResolver(message), nil
}

type messagesArgs struct {
	UserID *UUID
	After  DateTime
	Before DateTime
}

func (r *Resolver) Messages(ctx context.Context, args messagesArgs) (*[]*MessageResolver, error) {
	var userID *uuid.UUID
	if args.UserID != nil {
		userID = &args.UserID.UUID
	}

	messages, err := r.messages.ListByTimeRange(ctx, userID, args.After.Time, args.Before.Time)
	if err != nil {
		return nil, r.fail("messages", err)
	}
	return r.messageList(messages), nil
}
