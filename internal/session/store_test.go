// internal/session/store_test.go

package session

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-concierge/internal/common/config"
	"crm-concierge/internal/models"
)

func newStore(t *testing.T, maxTurns int) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewStore(client, config.SessionConfig{TTLMinutes: 30, MaxTurns: maxTurns}), mr
}

func TestAppendAndHistory(t *testing.T) {
	store, _ := newStore(t, 10)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "9876543210", models.ContextTurn{Role: "user", Message: "show my bookings"}))
	require.NoError(t, store.Append(ctx, "9876543210", models.ContextTurn{Role: "bot", Message: "You have 2 bookings."}))

	turns, err := store.History(ctx, "9876543210")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "user", turns[0].Role)
	assert.Equal(t, "You have 2 bookings.", turns[1].Message)
}

func TestHistory_MissingKeyIsEmpty(t *testing.T) {
	store, _ := newStore(t, 10)

	turns, err := store.History(context.Background(), "0000000000")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestAppend_TrimsToWindow(t *testing.T) {
	store, _ := newStore(t, 3)
	ctx := context.Background()

	for _, msg := range []string{"one", "two", "three", "four", "five"} {
		require.NoError(t, store.Append(ctx, "9876543210", models.ContextTurn{Role: "user", Message: msg}))
	}

	turns, err := store.History(ctx, "9876543210")
	require.NoError(t, err)
	require.Len(t, turns, 3)
	assert.Equal(t, "three", turns[0].Message)
	assert.Equal(t, "five", turns[2].Message)
}

func TestAppend_SetsTTL(t *testing.T) {
	store, mr := newStore(t, 10)

	require.NoError(t, store.Append(context.Background(), "9876543210", models.ContextTurn{Role: "user", Message: "hi"}))
	assert.Greater(t, mr.TTL("concierge:session:9876543210").Minutes(), 0.0)
}

func TestClear(t *testing.T) {
	store, _ := newStore(t, 10)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "9876543210", models.ContextTurn{Role: "user", Message: "hi"}))
	require.NoError(t, store.Clear(ctx, "9876543210"))

	turns, err := store.History(ctx, "9876543210")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestRender(t *testing.T) {
	out := Render([]models.ContextTurn{
		{Role: "user", Message: "show my payments"},
		{Message: "which trip?"},
	})
	assert.Equal(t, "user: show my payments\nuser: which trip?", out)
}
