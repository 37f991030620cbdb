package config

import (
	"os"
	"path/filepath"
	"strings"
)

// StoreDriver selects the persistent session store backend.
type StoreDriver string

const (
	StoreDriverFile   StoreDriver = "file"
	StoreDriverRedis  StoreDriver = "redis"
	StoreDriverSQLite StoreDriver = "sqlite"
	StoreDriverMemory StoreDriver = "memory"
)

type SessionConfig interface {
	GetStoreDriver() StoreDriver
	GetStorePath() string
	GetRedisAddr() string
	GetRedisDB() int
	GetOrigin() string
}

type Session struct {
	StoreDriver string `env:"PORTAL_STORE, default=file"`
	StorePath   string `env:"PORTAL_STORE_PATH"`
	RedisAddr   string `env:"PORTAL_REDIS_ADDR, default=localhost:6379"`
	RedisDB     int    `env:"PORTAL_REDIS_DB, default=0"`
	Origin      string `env:"PORTAL_ORIGIN, default=http://localhost:3000"`
}

var _ SessionConfig = Session{}

func (s Session) GetStoreDriver() StoreDriver {
	switch d := StoreDriver(strings.ToLower(strings.TrimSpace(s.StoreDriver))); d {
	case StoreDriverRedis, StoreDriverSQLite, StoreDriverMemory:
		return d
	default:
		return StoreDriverFile
	}
}

// GetStorePath returns the configured store path, falling back to a file under ~/.portal
// named after the driver (session.json or session.db).
func (s Session) GetStorePath() string {
	if s.StorePath != "" {
		return s.StorePath
	}
	name := "session.json"
	if s.GetStoreDriver() == StoreDriverSQLite {
		name = "session.db"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".portal", name)
}

func (s Session) GetRedisAddr() string {
	return s.RedisAddr
}

func (s Session) GetRedisDB() int {
	return s.RedisDB
}

// GetOrigin returns the namespace that scopes persisted keys, like a browser origin.
func (s Session) GetOrigin() string {
	return s.Origin
}
