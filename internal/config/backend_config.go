package config

import (
	"fmt"
	"time"
)

// BackendConfig configures the local development backend (cmd/devbackend).
type BackendConfig interface {
	GetPort() string
	GetJWTSecret() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetSeedAccounts() SeedAccounts
}

// SeedAccounts are the accounts the development backend creates at start-up.
type SeedAccounts struct {
	MemberEmail    string `env:"DEVBACKEND_MEMBER_EMAIL, default=member@acna.org"`
	MemberPassword string `env:"DEVBACKEND_MEMBER_PASSWORD, default=member123"`
	AdminEmail     string `env:"DEVBACKEND_ADMIN_EMAIL, default=admin@acna.org"`
	AdminPassword  string `env:"DEVBACKEND_ADMIN_PASSWORD, default=admin123"`
}

type Backend struct {
	Port               string        `env:"PORT, default=8000"`
	JWTSecret          string        `env:"DEVBACKEND_JWT_SECRET, default=dev-secret"`
	AccessTokenExpiry  time.Duration `env:"DEVBACKEND_ACCESS_TOKEN_EXPIRY, default=1h"`
	RefreshTokenExpiry time.Duration `env:"DEVBACKEND_REFRESH_TOKEN_EXPIRY, default=168h"`
	Seed               SeedAccounts
}

var _ BackendConfig = Backend{}

func (b Backend) GetPort() string {
	port := b.Port
	if port == "" {
		port = "8000"
	}
	if port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (b Backend) GetJWTSecret() string {
	return b.JWTSecret
}

func (b Backend) GetAccessTokenExpiry() time.Duration {
	if b.AccessTokenExpiry <= 0 {
		return 1 * time.Hour
	}
	return b.AccessTokenExpiry
}

func (b Backend) GetRefreshTokenExpiry() time.Duration {
	if b.RefreshTokenExpiry <= 0 {
		return 7 * 24 * time.Hour // 7 days
	}
	return b.RefreshTokenExpiry
}

func (b Backend) GetSeedAccounts() SeedAccounts {
	return b.Seed
}
