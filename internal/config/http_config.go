package config

import (
	"strings"
	"time"
)

const defaultRequestTimeout = 15 * time.Second

type HTTPConfig interface {
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
}

type HTTP struct {
	APIBaseURL     string        `env:"PORTAL_API_URL, default=http://localhost:8000"`
	RequestTimeout time.Duration `env:"PORTAL_REQUEST_TIMEOUT, default=15s"`
}

var _ HTTPConfig = HTTP{}

func (h HTTP) GetAPIBaseURL() string {
	return strings.TrimRight(h.APIBaseURL, "/")
}

func (h HTTP) GetRequestTimeout() time.Duration {
	if h.RequestTimeout <= 0 {
		return defaultRequestTimeout
	}
	return h.RequestTimeout
}
