package graph

import (
	"context"

	"github.com/google/uuid"
)

type CreateUserInput struct {
	DisplayName string
	Username    string
	Password    string
}

type CreateMessageInput struct {
	UserID          UUID
	Content         string
	ParentMessageID *UUID
}

type UpdateMessageInput struct {
	ID      UUID
	Content string
}

func (r *Resolver) CreateUser(ctx context.Context, args struct{ Input CreateUserInput }) (*UserResolver, error) {
	user, err := r.users.Create(ctx, args.Input.DisplayName, args.Input.Username, args.Input.Password)
	if err != nil {
		return nil, r.fail("createUser", err)
	}
	r.loader(ctx).primeUser(user)
	return r.userResolver(user), nil
}

func (r *Resolver) CreateMessage(ctx context.Context, args struct{ Input CreateMessageInput }) (*MessageResolver, error) {
	var parentID *uuid.UUID
	if args.Input.ParentMessageID != nil {
		parentID = &args.Input.ParentMessageID.UUID
	}

	message, err := r.messages.Create(ctx, args.Input.UserID.UUID, args.Input.Content, parentID)
	if err != nil {
		return nil, r.fail("createMessage", err)
	}
	r.loader(ctx).primeMessage(message)
	return r.messageResolver(message), nil
}

// UpdateMessage targets the message named by input.id; the author is never
// used as the key.
func (r *Resolver) UpdateMessage(ctx context.Context, args struct{ Input UpdateMessageInput }) (*MessageResolver, error) {
	message, err := r.messages.Update(ctx, args.Input.ID.UUID, args.Input.Content)
	if err != nil {
		return nil, r.fail("updateMessage", err)
	}
	r.loader(ctx).primeMessage(message)
	return r.messageResolver(message), nil
}

func (r *Resolver) DeleteMessage(ctx context.Context, args struct{ ID UUID }) (*MessageResolver, error) {
	message, err := r.messages.Delete(ctx, args.ID.UUID)
	if err != nil {
		return nil, r.fail("deleteMessage", err)
	}
	r.loader(ctx).forgetMessage(message.ID)
	return r.messageResolver(message), nil
}
