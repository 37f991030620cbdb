package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/member-portal/internal/config"
	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromLookuper_Defaults(t *testing.T) {
	c, err := config.NewFromLookuper(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, "Member Portal", c.GetAppName())
	assert.Equal(t, "DEV", c.GetEnv())
	assert.Equal(t, "info", c.GetLogLevel())
	assert.True(t, c.GetLogPretty())
	assert.Equal(t, config.StoreDriverFile, c.GetStoreDriver())
	assert.Equal(t, "http://localhost:8000", c.GetAPIBaseURL())
	assert.Equal(t, 15*time.Second, c.GetRequestTimeout())
	assert.Equal(t, ":8000", c.GetPort())
	assert.Equal(t, time.Hour, c.GetAccessTokenExpiry())
	assert.Equal(t, "member@acna.org", c.GetSeedAccounts().MemberEmail)
	assert.True(t, c.GetAllowedOrigins().IsAllowedOrigin("http://localhost:3000"))
}

func TestNewFromLookuper_Overrides(t *testing.T) {
	c, err := config.NewFromLookuper(context.Background(), envconfig.MapLookuper(map[string]string{
		"PORTAL_STORE":               "SQLite",
		"PORTAL_STORE_PATH":          "/tmp/portal.db",
		"PORTAL_API_URL":             "https://api.acna.org/",
		"PORTAL_REQUEST_TIMEOUT":     "3s",
		"PORT":                       ":9000",
		"DEVBACKEND_ALLOWED_ORIGINS": "https://acna.org, https://admin.acna.org",
	}))
	require.NoError(t, err)

	assert.Equal(t, config.StoreDriverSQLite, c.GetStoreDriver())
	assert.Equal(t, "/tmp/portal.db", c.GetStorePath())
	assert.Equal(t, "https://api.acna.org", c.GetAPIBaseURL())
	assert.Equal(t, 3*time.Second, c.GetRequestTimeout())
	assert.Equal(t, ":9000", c.GetPort())
	assert.True(t, c.GetAllowedOrigins().IsAllowedOrigin("https://admin.acna.org"))
	assert.False(t, c.GetAllowedOrigins().IsAllowedOrigin("http://localhost:3000"))
}

func TestSessionGetStorePath_DefaultsByDriver(t *testing.T) {
	file := config.Session{StoreDriver: "file"}
	sqlite := config.Session{StoreDriver: "sqlite"}

	assert.Contains(t, file.GetStorePath(), "session.json")
	assert.Contains(t, sqlite.GetStorePath(), "session.db")
}

func TestSessionGetStoreDriver_UnknownFallsBackToFile(t *testing.T) {
	assert.Equal(t, config.StoreDriverFile, config.Session{StoreDriver: "etcd"}.GetStoreDriver())
}
