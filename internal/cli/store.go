package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/jrsteele09/member-portal/internal/config"
	"github.com/jrsteele09/member-portal/store"
	"github.com/jrsteele09/member-portal/store/filestore"
	"github.com/jrsteele09/member-portal/store/redisstore"
	"github.com/jrsteele09/member-portal/store/sqlitestore"
	"github.com/jrsteele09/member-portal/store/storefake"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type storeSettings struct {
	driver config.StoreDriver
	path   string
	redis  string
	db     int
	origin string
}

// openStore opens the configured session store and returns a function that releases it.
func openStore(ctx context.Context, s storeSettings, log zerolog.Logger) (store.Store, func() error, error) {
	noop := func() error { return nil }

	switch s.driver {
	case config.StoreDriverMemory:
		return storefake.NewFakeStore(), noop, nil

	case config.StoreDriverRedis:
		client, err := redisstore.Connect(ctx, redisstore.Config{Addr: s.redis, DB: s.db})
		if err != nil {
			return nil, nil, errors.Wrap(err, "open redis session store")
		}
		return redisstore.New(client, s.origin), client.Close, nil

	case config.StoreDriverSQLite:
		if err := ensureDir(s.path); err != nil {
			return nil, nil, err
		}
		st, err := sqlitestore.Open(ctx, s.path, s.origin, log)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open sqlite session store")
		}
		return st, st.Close, nil
	}

	if err := ensureDir(s.path); err != nil {
		return nil, nil, err
	}
	st, err := filestore.Open(s.path, filestore.WithLogger(log))
	if err != nil {
		return nil, nil, errors.Wrap(err, "open session file")
	}
	return st, noop, nil
}

func ensureDir(path string) error {
	if path == ":memory:" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(err, "create session directory")
	}
	return nil
}
