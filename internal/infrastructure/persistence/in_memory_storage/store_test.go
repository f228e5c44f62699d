// internal/infrastructure/persistence/in_memory_storage/store_test.go
package in_memory_storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-journal-bot/internal/core/domain/journal"
	"trading-journal-bot/internal/core/domain/sessions"
)

func TestGetMissingSession(t *testing.T) {
	store := NewSessionStore()

	s, err := store.Get(context.Background(), "42")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestPutGetRoundTrip(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	s := sessions.NewSession("42")
	s.NotionToken = "secret-token"
	s.DatabaseID = "db-1"
	s.Cursor = journal.StepTrigger
	s.Draft = journal.NewDraft()
	s.Draft.Set("Pair", "EURUSD")
	s.Draft.Toggle("Trigger", "Sweep")
	require.NoError(t, store.Put(ctx, s))

	got, err := store.Get(ctx, "42")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "secret-token", got.NotionToken)
	assert.Equal(t, journal.StepTrigger, got.Cursor)
	require.NotNil(t, got.Draft)
	fv, ok := got.Draft.Get("Pair")
	require.True(t, ok)
	assert.Equal(t, "EURUSD", fv.Option)
	assert.True(t, got.Draft.Has("Trigger"))
}

func TestGetReturnsCopy(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	s := sessions.NewSession("42")
	require.NoError(t, store.Put(ctx, s))

	first, err := store.Get(ctx, "42")
	require.NoError(t, err)
	first.NotionToken = "mutated"

	second, err := store.Get(ctx, "42")
	require.NoError(t, err)
	assert.Empty(t, second.NotionToken, "изменение копии не трогает хранилище")
}

func TestDelete(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, sessions.NewSession("42")))
	require.NoError(t, store.Delete(ctx, "42"))

	s, err := store.Get(ctx, "42")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestList(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, sessions.NewSession("42")))
	require.NoError(t, store.Put(ctx, sessions.NewSession("43")))

	identities, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"42", "43"}, identities)
}
