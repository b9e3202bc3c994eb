package graph

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"message-board/internal/domain"
	"message-board/internal/service"
)

// Resolver is the root of the Query and Mutation types. Every root field
// makes one service call; NotFound resolves to null and any other failure
// resolves to null plus a coded GraphQL error.
type Resolver struct {
	users    service.UserService
	messages service.MessageService
	logger   logrus.FieldLogger
}

func NewResolver(users service.UserService, messages service.MessageService, logger logrus.FieldLogger) *Resolver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Resolver{
		users:    users,
		messages: messages,
		logger:   logger,
	}
}

// loader returns the request-scoped loader, or a throwaway one when the
// schema is executed without Schema.Exec.
func (r *Resolver) loader(ctx context.Context) *loader {
	if l, ok := loaderFrom(ctx); ok {
		return l
	}
	return newLoader(r.users, r.messages)
}

// fail converts err into the field result. NotFound yields (nil, nil).
func (r *Resolver) fail(field string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}

	f := classify(err)
	entry := r.logger.WithFields(logrus.Fields{
		"field": field,
		"code":  f.code,
	}).WithError(err)
	if clientFault(f.code) {
		entry.Warn("rejected request")
	} else {
		entry.Error("resolver failed")
	}
	return f
}

func (r *Resolver) userResolver(user *domain.User) *UserResolver {
	return &UserResolver{root: r, user: user}
}

func (r *Resolver) messageResolver(message *domain.Message) *MessageResolver {
	return &MessageResolver{root: r, message: message}
}

func (r *Resolver) messageList(messages []domain.Message) *[]*MessageResolver {
	out := make([]*MessageResolver, len(messages))
	for i := range messages {
		out[i] = r.messageResolver(&messages[i])
	}
	return &out
}
