package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/member-portal/store/filestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SetGetSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	s, err := filestore.Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "token", "abc"))
	require.NoError(t, s.Set(ctx, "isAuthenticated", "true"))

	reopened, err := filestore.Open(path)
	require.NoError(t, err)

	v, ok, err := reopened.Get(ctx, "token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestStore_RemoveAndClear(t *testing.T) {
	ctx := context.Background()
	s, err := filestore.Open(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, s.Set(ctx, k, k))
	}
	require.NoError(t, s.Remove(ctx, "a"))
	require.NoError(t, s.Remove(ctx, "missing"))
	require.NoError(t, s.Clear(ctx, "b", "missing"))

	_, ok, _ := s.Get(ctx, "a")
	assert.False(t, ok)
	_, ok, _ = s.Get(ctx, "b")
	assert.False(t, ok)
	v, ok, _ := s.Get(ctx, "c")
	assert.True(t, ok)
	assert.Equal(t, "c", v)
}

func TestOpen_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	s, err := filestore.Open(path)
	require.NoError(t, err)

	_, ok, err := s.Get(context.Background(), "token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpen_MissingFileIsEmpty(t *testing.T) {
	s, err := filestore.Open(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)

	_, ok, err := s.Get(context.Background(), "user")
	require.NoError(t, err)
	assert.False(t, ok)
}
