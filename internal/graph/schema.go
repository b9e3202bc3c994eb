// Package graph exposes users and messages through a GraphQL schema.
package graph

import (
	"context"
	_ "embed"
	"fmt"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/sirupsen/logrus"

	"message-board/internal/service"
)

//go:embed schema.graphql
var schemaSDL string

// Request is a decoded GraphQL request.
type Request struct {
	Query         string                 `json:"query" form:"query"`
	OperationName string                 `json:"operationName" form:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

type Options struct {
	MaxDepth       int
	MaxParallelism int
	Logger         logrus.FieldLogger
}

// Schema executes requests against the board schema. Each call to Exec
// gets its own loader so memoized lookups never leak across requests.
type Schema struct {
	schema   *graphql.Schema
	users    service.UserService
	messages service.MessageService
}

func NewSchema(users service.UserService, messages service.MessageService, opts Options) (*Schema, error) {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	schemaOpts := []graphql.SchemaOpt{
		graphql.Logger(panicLogger{logger: opts.Logger}),
	}
	if opts.MaxDepth > 0 {
		schemaOpts = append(schemaOpts, graphql.MaxDepth(opts.MaxDepth))
	}
	if opts.MaxParallelism > 0 {
		schemaOpts = append(schemaOpts, graphql.MaxParallelism(opts.MaxParallelism))
	}

	parsed, err := graphql.ParseSchema(schemaSDL, NewResolver(users, messages, opts.Logger), schemaOpts...)
	if err != nil {
		return nil, fmt.Errorf("parse graphql schema: %w", err)
	}

	return &Schema{
		schema:   parsed,
		users:    users,
		messages: messages,
	}, nil
}

func (s *Schema) Exec(ctx context.Context, req Request) *graphql.Response {
	ctx = withLoader(ctx, newLoader(s.users, s.messages))
	return s.schema.Exec(ctx, req.Query, req.OperationName, req.Variables)
}

type panicLogger struct {
	logger logrus.FieldLogger
}

func (l panicLogger) LogPanic(_ context.Context, value interface{}) {
	l.logger.WithField("panic", value).Error("graphql resolver panicked")
}
