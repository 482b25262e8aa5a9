package bot

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskline/taskline/internal/session"
	"github.com/taskline/taskline/internal/user"
	userrepo "github.com/taskline/taskline/internal/user/repositoryimpl"
	"github.com/taskline/taskline/pkg/storage"
)

type fakeGateway struct {
	mu      sync.Mutex
	sent    []string
	deleted []int64
}

func (g *fakeGateway) SendMessage(_ context.Context, _ int64, text string, _ *Keyboard) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, text)
	return nil
}

func (g *fakeGateway) EditMessage(_ context.Context, _, _ int64, text string, _ *Keyboard) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, text)
	return nil
}

func (g *fakeGateway) DeleteMessage(_ context.Context, _, messageID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deleted = append(g.deleted, messageID)
	return nil
}

func newUserRepo(t *testing.T) user.Repository {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return userrepo.NewYAMLRepository(store)
}

func TestCommandFilterDeletesStrayText(t *testing.T) {
	sessions := session.NewStore()
	gw := &fakeGateway{}

	var handled []Update
	handler := func(_ context.Context, upd Update) error {
		handled = append(handled, upd)
		return nil
	}
	filtered := CommandFilterMiddleware(sessions, gw, []string{"My projects"})(handler)
	ctx := context.Background()

	// Stray text outside any form step is deleted, not handled.
	require.NoError(t, filtered(ctx, Update{UserID: 1, MessageID: 7, Text: "hello"}))
	assert.Empty(t, handled)
	assert.Equal(t, []int64{7}, gw.deleted)

	// Menu commands, slash commands and callbacks pass.
	require.NoError(t, filtered(ctx, Update{UserID: 1, MessageID: 8, Text: "My projects"}))
	require.NoError(t, filtered(ctx, Update{UserID: 1, MessageID: 9, Text: "/start"}))
	require.NoError(t, filtered(ctx, Update{UserID: 1, MessageID: 10, Data: "cancel"}))
	assert.Len(t, handled, 3)

	// Inside a form step free text passes through.
	sessions.SetStep(1, session.AwaitingProjectName{})
	require.NoError(t, filtered(ctx, Update{UserID: 1, MessageID: 11, Text: "My new project"}))
	assert.Len(t, handled, 4)
	assert.Equal(t, []int64{7}, gw.deleted)
}

func TestRegistrationGatePromptsUnknownUser(t *testing.T) {
	sessions := session.NewStore()
	gw := &fakeGateway{}
	users := newUserRepo(t)

	var handled int
	handler := func(_ context.Context, _ Update) error {
		handled++
		return nil
	}
	gated := RegistrationGateMiddleware(users, sessions, gw)(handler)
	ctx := context.Background()

	require.NoError(t, gated(ctx, Update{UserID: 1, Text: "My projects"}))
	assert.Equal(t, 0, handled)
	assert.IsType(t, session.AwaitingFullName{}, sessions.Get(1).Step)
	require.Len(t, gw.sent, 1)
	assert.Contains(t, gw.sent[0], "full name")

	// Once at the name step, text flows through to the handler.
	require.NoError(t, gated(ctx, Update{UserID: 1, Text: "Ada Lovelace"}))
	assert.Equal(t, 1, handled)

	// Registered users are never gated.
	require.NoError(t, users.Create(ctx, &user.User{ID: 2, FullName: "Grace"}))
	require.NoError(t, gated(ctx, Update{UserID: 2, Text: "My projects"}))
	assert.Equal(t, 2, handled)
}

func TestDispatcherSerializesPerUser(t *testing.T) {
	var mu sync.Mutex
	order := make(map[int64][]int)

	handler := func(_ context.Context, upd Update) error {
		// MessageID doubles as the sequence number.
		mu.Lock()
		order[upd.UserID] = append(order[upd.UserID], int(upd.MessageID))
		mu.Unlock()
		return nil
	}
	d := NewDispatcher(handler)
	defer d.Close()

	ctx := context.Background()
	for i := 1; i <= 20; i++ {
		d.Dispatch(ctx, Update{UserID: 1, MessageID: int64(i), Text: "a"})
		d.Dispatch(ctx, Update{UserID: 2, MessageID: int64(i), Text: "b"})
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order[1]) == 20 && len(order[2]) == 20
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for userID, seq := range order {
		for i, got := range seq {
			assert.Equal(t, i+1, got, "user %d out of order", userID)
		}
	}
}

func TestDispatcherRecoversPanic(t *testing.T) {
	done := make(chan struct{})
	handler := func(_ context.Context, upd Update) error {
		if upd.Text == "boom" {
			panic("boom")
		}
		close(done)
		return nil
	}
	d := NewDispatcher(handler)
	defer d.Close()

	ctx := context.Background()
	d.Dispatch(ctx, Update{UserID: 1, Text: "boom"})
	d.Dispatch(ctx, Update{UserID: 1, Text: "fine"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive the panic")
	}
}

func TestWebhookPayloadUpdate(t *testing.T) {
	var empty webhookPayload
	_, ok := empty.update()
	assert.False(t, ok)

	var msg webhookPayload
	require.NoError(t, json.Unmarshal([]byte(
		`{"message":{"message_id":5,"from":{"id":42},"text":"hello"}}`,
	), &msg))
	upd, ok := msg.update()
	require.True(t, ok)
	assert.Equal(t, KindMessage, upd.Kind())
	assert.Equal(t, int64(42), upd.UserID)
	assert.Equal(t, int64(5), upd.MessageID)
	assert.Equal(t, "hello", upd.Text)

	var cb webhookPayload
	require.NoError(t, json.Unmarshal([]byte(
		`{"callback_query":{"from":{"id":42},"message":{"message_id":5},"data":"view_project:p1"}}`,
	), &cb))
	upd, ok = cb.update()
	require.True(t, ok)
	assert.Equal(t, KindCallback, upd.Kind())
	assert.Equal(t, "view_project:p1", upd.Data)
}
