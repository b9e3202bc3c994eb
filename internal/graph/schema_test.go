package graph

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"message-board/internal/credential"
	"message-board/internal/domain"
	"message-board/internal/repository/sqlite"
	"message-board/internal/service"
)

type harness struct {
	schema *Schema
	db     *sql.DB
	hook   *test.Hook
	users  *countingUsers
}

// countingUsers records how many point lookups reach the service.
type countingUsers struct {
	service.UserService
	gets atomic.Int32
}

func (c *countingUsers) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	c.gets.Add(1)
	return c.UserService.Get(ctx, id)
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	logger, hook := test.NewNullLogger()

	db, err := sqlite.Open(ctx, sqlite.Options{URL: filepath.Join(t.TempDir(), "graph.db"), MaxOpenConns: 4})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlite.Migrate(ctx, db, logger))
	hook.Reset()

	hasher := credential.NewHasher(credential.MinCost)
	users := &countingUsers{UserService: service.NewUserService(sqlite.NewUserRepository(db), hasher)}
	messages := service.NewMessageService(sqlite.NewMessageRepository(db))

	schema, err := NewSchema(users, messages, Options{MaxDepth: 12, Logger: logger})
	require.NoError(t, err)

	return &harness{schema: schema, db: db, hook: hook, users: users}
}

func (h *harness) exec(t *testing.T, query string, vars map[string]interface{}) *graphql.Response {
	t.Helper()
	return h.schema.Exec(context.Background(), Request{Query: query, Variables: vars})
}

func (h *harness) mustExec(t *testing.T, query string, vars map[string]interface{}, out interface{}) {
	t.Helper()
	resp := h.exec(t, query, vars)
	require.Empty(t, resp.Errors)
	require.NoError(t, json.Unmarshal(resp.Data, out))
}

type gqlMessage struct {
	ID            string        `json:"id"`
	UserID        string        `json:"userId"`
	Content       string        `json:"content"`
	IsReply       bool          `json:"isReply"`
	ParentMessage *gqlMessage   `json:"parentMessage"`
	Replies       *[]gqlMessage `json:"replies"`
	Author        *gqlUser      `json:"author"`
	CreatedAt     string        `json:"createdAt"`
}

type gqlUser struct {
	ID          string        `json:"id"`
	DisplayName string        `json:"displayName"`
	Username    string        `json:"username"`
	Messages    *[]gqlMessage `json:"messages"`
}

const createUserMutation = `
mutation($input: CreateUserInput!) {
	createUser(input: $input) { id displayName username }
}`

const createMessageMutation = `
mutation($input: CreateMessageInput!) {
	createMessage(input: $input) { id userId content isReply createdAt }
}`

func (h *harness) createUser(t *testing.T, username string) gqlUser {
	t.Helper()
	var out struct{ CreateUser gqlUser }
	h.mustExec(t, createUserMutation, map[string]interface{}{
		"input": map[string]interface{}{"displayName": "Name " + username, "username": username, "password": "pw"},
	}, &out)
	return out.CreateUser
}

func (h *harness) createMessage(t *testing.T, userID, content string, parentID string) gqlMessage {
	t.Helper()
	input := map[string]interface{}{"userId": userID, "content": content}
	if parentID != "" {
		input["parentMessageId"] = parentID
	}
	var out struct{ CreateMessage gqlMessage }
	h.mustExec(t, createMessageMutation, map[string]interface{}{"input": input}, &out)
	time.Sleep(2 * time.Millisecond)
	return out.CreateMessage
}

func messageIDs(messages *[]gqlMessage) []string {
	if messages == nil {
		return nil
	}
	out := make([]string, len(*messages))
	for i, m := range *messages {
		out[i] = m.ID
	}
	return out
}

func TestThreadScenario(t *testing.T) {
	h := newHarness(t)

	a := h.createUser(t, "ann")
	assert.Equal(t, "Name ann", a.DisplayName)

	m1 := h.createMessage(t, a.ID, "first post", "")
	assert.False(t, m1.IsReply)
	assert.Equal(t, a.ID, m1.UserID)

	m2 := h.createMessage(t, a.ID, "a reply", m1.ID)
	assert.True(t, m2.IsReply)

	var thread struct{ Message gqlMessage }
	h.mustExec(t, `query($id: UUID!) {
		message(id: $id) { id content replies { id content parentMessage { id } } }
	}`, map[string]interface{}{"id": m1.ID}, &thread)
	assert.Equal(t, []string{m2.ID}, messageIDs(thread.Message.Replies))
	assert.Equal(t, m1.ID, (*thread.Message.Replies)[0].ParentMessage.ID)

	var reply struct{ Message gqlMessage }
	h.mustExec(t, `query($id: UUID!) {
		message(id: $id) { isReply parentMessage { id content } author { username } }
	}`, map[string]interface{}{"id": m2.ID}, &reply)
	require.NotNil(t, reply.Message.ParentMessage)
	assert.Equal(t, m1.ID, reply.Message.ParentMessage.ID)
	assert.Equal(t, "ann", reply.Message.Author.Username)

	var aliased struct {
		User struct {
			Roots []gqlMessage `json:"roots"`
			All   []gqlMessage `json:"all"`
		}
	}
	h.mustExec(t, `query($id: UUID!) {
		user(id: $id) {
			roots: messages { id }
			all: messages(includeReplies: true) { id }
		}
	}`, map[string]interface{}{"id": a.ID}, &aliased)
	require.Len(t, aliased.User.Roots, 1)
	assert.Equal(t, m1.ID, aliased.User.Roots[0].ID)
	require.Len(t, aliased.User.All, 2)
}

func TestNewSchemaParsesEmbeddedSDL(t *testing.T) {
	logger, _ := test.NewNullLogger()
	schema, err := NewSchema(nil, nil, Options{Logger: logger})
	require.NoError(t, err)
	assert.NotNil(t, schema)
}

func TestUserMessagesIncludeRepliesArgument(t *testing.T) {
	h := newHarness(t)
	a := h.createUser(t, "ann")
	root := h.createMessage(t, a.ID, "root", "")
	h.createMessage(t, a.ID, "reply", root.ID)

	var out struct {
		User struct {
			Omitted  []gqlMessage `json:"omitted"`
			Explicit []gqlMessage `json:"explicit"`
			Variable []gqlMessage `json:"variable"`
		}
	}
	h.mustExec(t, `query($id: UUID!, $include: Boolean!) {
		user(id: $id) {
			omitted: messages { id }
			explicit: messages(includeReplies: false) { id }
			variable: messages(includeReplies: $include) { id }
		}
	}`, map[string]interface{}{"id": a.ID, "include": true}, &out)

	require.Len(t, out.User.Omitted, 1)
	assert.Equal(t, root.ID, out.User.Omitted[0].ID)
	require.Len(t, out.User.Explicit, 1)
	assert.Len(t, out.User.Variable, 2)
}

func TestReplyWithoutRepliesIsEmptyList(t *testing.T) {
	h := newHarness(t)
	a := h.createUser(t, "ann")
	m := h.createMessage(t, a.ID, "lonely", "")

	var out struct{ Message gqlMessage }
	h.mustExec(t, `query($id: UUID!) { message(id: $id) { replies { id } parentMessage { id } } }`,
		map[string]interface{}{"id": m.ID}, &out)
	require.NotNil(t, out.Message.Replies)
	assert.Empty(t, *out.Message.Replies)
	assert.Nil(t, out.Message.ParentMessage)
}

func TestUpdateMessageKeysOnMessageID(t *testing.T) {
	h := newHarness(t)
	a := h.createUser(t, "ann")
	m1 := h.createMessage(t, a.ID, "original", "")

	var out struct{ UpdateMessage *gqlMessage }
	h.mustExec(t, `mutation($input: UpdateMessageInput!) {
		updateMessage(input: $input) { id userId content }
	}`, map[string]interface{}{"input": map[string]interface{}{"id": m1.ID, "content": "x"}}, &out)
	require.NotNil(t, out.UpdateMessage)
	assert.Equal(t, m1.ID, out.UpdateMessage.ID)
	assert.Equal(t, a.ID, out.UpdateMessage.UserID)
	assert.Equal(t, "x", out.UpdateMessage.Content)

	var byAuthor struct{ UpdateMessage *gqlMessage }
	h.mustExec(t, `mutation($input: UpdateMessageInput!) {
		updateMessage(input: $input) { id }
	}`, map[string]interface{}{"input": map[string]interface{}{"id": a.ID, "content": "y"}}, &byAuthor)
	assert.Nil(t, byAuthor.UpdateMessage, "an author id does not address a message")
}

func TestDeleteMessageOrphansReplies(t *testing.T) {
	h := newHarness(t)
	a := h.createUser(t, "ann")
	parent := h.createMessage(t, a.ID, "parent", "")
	child := h.createMessage(t, a.ID, "child", parent.ID)

	var deleted struct{ DeleteMessage *gqlMessage }
	h.mustExec(t, `mutation($id: UUID!) { deleteMessage(id: $id) { id content } }`,
		map[string]interface{}{"id": parent.ID}, &deleted)
	require.NotNil(t, deleted.DeleteMessage)
	assert.Equal(t, "parent", deleted.DeleteMessage.Content)

	var gone struct{ Message *gqlMessage }
	h.mustExec(t, `query($id: UUID!) { message(id: $id) { id } }`, map[string]interface{}{"id": parent.ID}, &gone)
	assert.Nil(t, gone.Message)

	var orphan struct{ Message gqlMessage }
	h.mustExec(t, `query($id: UUID!) { message(id: $id) { id isReply parentMessage { id } } }`,
		map[string]interface{}{"id": child.ID}, &orphan)
	assert.True(t, orphan.Message.IsReply)
	assert.Nil(t, orphan.Message.ParentMessage)

	var again struct{ DeleteMessage *gqlMessage }
	h.mustExec(t, `mutation($id: UUID!) { deleteMessage(id: $id) { id } }`,
		map[string]interface{}{"id": parent.ID}, &again)
	assert.Nil(t, again.DeleteMessage)
}

func TestNotFoundIsNullWithoutErrors(t *testing.T) {
	h := newHarness(t)

	var out struct {
		User    *gqlUser
		Message *gqlMessage
	}
	h.mustExec(t, `query($id: UUID!) { user(id: $id) { id } message(id: $id) { id } }`,
		map[string]interface{}{"id": uuid.NewString()}, &out)
	assert.Nil(t, out.User)
	assert.Nil(t, out.Message)
	assert.Empty(t, h.hook.AllEntries())
}

func TestMessagesByTimeRange(t *testing.T) {
	h := newHarness(t)
	ann := h.createUser(t, "ann")
	bob := h.createUser(t, "bob")

	m1 := h.createMessage(t, ann.ID, "one", "")
	m2 := h.createMessage(t, bob.ID, "two", "")
	m3 := h.createMessage(t, ann.ID, "three", m2.ID)

	const query = `query($userId: UUID, $after: DateTime!, $before: DateTime!) {
		messages(userId: $userId, after: $after, before: $before) { id }
	}`

	var all struct{ Messages *[]gqlMessage }
	h.mustExec(t, query, map[string]interface{}{"after": m1.CreatedAt, "before": m3.CreatedAt}, &all)
	assert.Equal(t, []string{m1.ID, m2.ID, m3.ID}, messageIDs(all.Messages))

	var annOnly struct{ Messages *[]gqlMessage }
	h.mustExec(t, query, map[string]interface{}{"userId": ann.ID, "after": m1.CreatedAt, "before": m3.CreatedAt}, &annOnly)
	assert.Equal(t, []string{m1.ID, m3.ID}, messageIDs(annOnly.Messages))

	future := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	var none struct{ Messages *[]gqlMessage }
	h.mustExec(t, query, map[string]interface{}{"after": future, "before": future}, &none)
	require.NotNil(t, none.Messages)
	assert.Empty(t, *none.Messages)
}

func TestCreateUserDuplicateIsTypedFault(t *testing.T) {
	h := newHarness(t)
	h.createUser(t, "ann")

	resp := h.exec(t, createUserMutation, map[string]interface{}{
		"input": map[string]interface{}{"displayName": "Again", "username": "ann", "password": "pw"},
	})
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "DUPLICATE_USERNAME", resp.Errors[0].Extensions["code"])

	var out struct{ CreateUser *gqlUser }
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	assert.Nil(t, out.CreateUser)

	require.NotNil(t, h.hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, h.hook.LastEntry().Level)
}

func TestCreateMessageValidation(t *testing.T) {
	h := newHarness(t)

	resp := h.exec(t, createMessageMutation, map[string]interface{}{
		"input": map[string]interface{}{"userId": uuid.NewString(), "content": "  "},
	})
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "INVALID_INPUT", resp.Errors[0].Extensions["code"])
}

func TestStoreFailureIsDistinctFromNotFound(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.db.Close())

	resp := h.exec(t, `query($id: UUID!) { user(id: $id) { id } }`, map[string]interface{}{"id": uuid.NewString()})
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "STORE_ERROR", resp.Errors[0].Extensions["code"])
	assert.Equal(t, []interface{}{"user"}, resp.Errors[0].Path)

	require.NotNil(t, h.hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, h.hook.LastEntry().Level)
	assert.Equal(t, "user", h.hook.LastEntry().Data["field"])
}

func TestMalformedIdentifierIsRejected(t *testing.T) {
	h := newHarness(t)

	resp := h.exec(t, `query($id: UUID!) { user(id: $id) { id } }`, map[string]interface{}{"id": "nope"})
	assert.NotEmpty(t, resp.Errors)
}

func TestPasswordHashIsNotExposed(t *testing.T) {
	h := newHarness(t)
	a := h.createUser(t, "ann")

	resp := h.exec(t, `query($id: UUID!) { user(id: $id) { passwordHash } }`, map[string]interface{}{"id": a.ID})
	assert.NotEmpty(t, resp.Errors)
}

func TestAuthorLookupsAreMemoizedPerRequest(t *testing.T) {
	h := newHarness(t)
	a := h.createUser(t, "ann")
	m1 := h.createMessage(t, a.ID, "one", "")
	for i := 0; i < 5; i++ {
		h.createMessage(t, a.ID, "reply", m1.ID)
	}

	h.users.gets.Store(0)
	var out struct{ Message gqlMessage }
	h.mustExec(t, `query($id: UUID!) {
		message(id: $id) { author { id } replies { author { username } } }
	}`, map[string]interface{}{"id": m1.ID}, &out)
	require.NotNil(t, out.Message.Replies)
	require.Len(t, *out.Message.Replies, 5)
	assert.Equal(t, int32(1), h.users.gets.Load())

	h.mustExec(t, `query($id: UUID!) { message(id: $id) { author { id } } }`, map[string]interface{}{"id": m1.ID}, &out)
	assert.Equal(t, int32(2), h.users.gets.Load(), "cache does not outlive the request")
}

func TestMaxDepth(t *testing.T) {
	h := newHarness(t)

	resp := h.exec(t, `query($id: UUID!) { message(id: $id) { parentMessage { parentMessage { parentMessage { parentMessage {
		parentMessage { parentMessage { parentMessage { parentMessage { parentMessage { parentMessage { parentMessage { parentMessage { id }
	} } } } } } } } } } } } }`, map[string]interface{}{"id": uuid.NewString()})
	assert.NotEmpty(t, resp.Errors)
}
