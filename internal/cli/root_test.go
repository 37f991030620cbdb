package cli

import (
	"context"
	"io"
	"testing"

	"github.com/jrsteele09/member-portal/store"
	"github.com/jrsteele09/member-portal/store/storefake"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore swaps in a fake session store and counts how often it is released.
func countingStore(t *testing.T, failReads bool) *int {
	t.Helper()
	closed := 0
	prev := openSessionStore
	openSessionStore = func(context.Context, storeSettings, zerolog.Logger) (store.Store, func() error, error) {
		st := storefake.NewFakeStore()
		st.FailAll(failReads)
		return st, func() error { closed++; return nil }, nil
	}
	t.Cleanup(func() { openSessionStore = prev })
	return &closed
}

func execute(args ...string) error {
	cmd := NewRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--api", "http://127.0.0.1:1", "--store", "memory", "--log-level", "error"}, args...))
	return cmd.ExecuteContext(context.Background())
}

func TestStoreReleased(t *testing.T) {
	tests := map[string]struct {
		args      []string
		failReads bool
		wantErr   bool
	}{
		"command succeeds":   {args: []string{"status"}},
		"command fails":      {args: []string{"news"}, wantErr: true},
		"session load fails": {args: []string{"status"}, failReads: true, wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			closed := countingStore(t, tt.failReads)

			err := execute(tt.args...)

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, 1, *closed)
		})
	}
}
