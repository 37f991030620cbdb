package sqlitestore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/member-portal/store/sqlitestore"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, path, origin string) *sqlitestore.Store {
	t.Helper()
	s, err := sqlitestore.Open(context.Background(), path, origin, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_UpsertGet(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, ":memory:", "http://localhost:3000")

	require.NoError(t, s.Set(ctx, "token", "one"))
	require.NoError(t, s.Set(ctx, "token", "two"))

	v, ok, err := s.Get(ctx, "token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", v)

	_, ok, err = s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_ClearAndRemove(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, ":memory:", "origin")

	for _, k := range []string{"token", "refresh", "user", "keep"} {
		require.NoError(t, s.Set(ctx, k, "v"))
	}
	require.NoError(t, s.Clear(ctx, "token", "refresh", "missing"))
	require.NoError(t, s.Remove(ctx, "user"))

	for _, k := range []string{"token", "refresh", "user"} {
		_, ok, err := s.Get(ctx, k)
		require.NoError(t, err)
		assert.False(t, ok, k)
	}
	_, ok, err := s.Get(ctx, "keep")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_OriginsAreIsolatedAndDurable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	a := openTestStore(t, path, "https://acna.org")
	require.NoError(t, a.Set(ctx, "token", "a"))
	require.NoError(t, a.Close())

	b := openTestStore(t, path, "https://other.org")
	_, ok, err := b.Get(ctx, "token")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, b.Close())

	reopened := openTestStore(t, path, "https://acna.org")
	v, ok, err := reopened.Get(ctx, "token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a", v)
}
