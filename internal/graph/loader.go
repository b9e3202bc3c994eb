package graph

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"message-board/internal/domain"
	"message-board/internal/service"
)

type loaderKey struct{}

// loader memoizes point lookups for the lifetime of one request. Sibling
// fields asking for the same parent or author share a single store call.
type loader struct {
	users    service.UserService
	messages service.MessageService

	group    singleflight.Group
	mu       sync.Mutex
	userByID map[uuid.UUID]*domain.User
	msgByID  map[uuid.UUID]*domain.Message
}

func newLoader(users service.UserService, messages service.MessageService) *loader {
	return &loader{
		users:    users,
		messages: messages,
		userByID: make(map[uuid.UUID]*domain.User),
		msgByID:  make(map[uuid.UUID]*domain.Message),
	}
}

func withLoader(ctx context.Context, l *loader) context.Context {
	return context.WithValue(ctx, loaderKey{}, l)
}

func loaderFrom(ctx context.Context) (*loader, bool) {
	l, ok := ctx.Value(loaderKey{}).(*loader)
	return l, ok
}

func (l *loader) user(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	l.mu.Lock()
	cached, ok := l.userByID[id]
	l.mu.Unlock()
	if ok {
		return cached, nil
	}

	v, err, _ := l.group.Do("user:"+id.String(), func() (interface{}, error) {
		l.mu.Lock()
		cached, ok := l.userByID[id]
		l.mu.Unlock()
		if ok {
			return cached, nil
		}
		user, err := l.users.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.userByID[id] = user
		l.mu.Unlock()
		return user, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.User), nil
}

func (l *loader) message(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	l.mu.Lock()
	cached, ok := l.msgByID[id]
	l.mu.Unlock()
	if ok {
		return cached, nil
	}

	v, err, _ := l.group.Do("message:"+id.String(), func() (interface{}, error) {
		l.mu.Lock()
		cached, ok := l.msgByID[id]
		l.mu.Unlock()
		if ok {
			return cached, nil
		}
		message, err := l.messages.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.msgByID[id] = message
		l.mu.Unlock()
		return message, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Message), nil
}

func (l *loader) primeUser(user *domain.User) {
	l.mu.Lock()
	l.userByID[user.ID] = user
	l.mu.Unlock()
}

func (l *loader) primeMessage(message *domain.Message) {
	l.mu.Lock()
	l.msgByID[message.ID] = message
	l.mu.Unlock()
}

func (l *loader) forgetMessage(id uuid.UUID) {
	l.mu.Lock()
	delete(l.msgByID, id)
	l.mu.Unlock()
}
