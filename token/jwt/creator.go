package jwt

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/member-portal/internal/config"
	"github.com/jrsteele09/member-portal/users"
	"github.com/pkg/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Claims are the access token claims issued by the development backend.
type Claims struct {
	Email string     `json:"email,omitempty"`
	Kind  users.Kind `json:"kind"`
	jwtlib.RegisteredClaims
}

// Creator issues HS256 access tokens.
type Creator struct {
	secret []byte
	expiry time.Duration
}

// NewCreator creates a new JWT creator
func NewCreator(cfg config.BackendConfig) *Creator {
	return &Creator{
		secret: []byte(cfg.GetJWTSecret()),
		expiry: cfg.GetAccessTokenExpiry(),
	}
}

// CreateAccessToken creates an access token for the user
func (c *Creator) CreateAccessToken(user *users.User) (string, error) {
	now := NowTimeFunc()
	claims := Claims{
		Email: user.Email,
		Kind:  user.Kind,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(c.expiry)),
			ID:        uuid.New().String(), // for revocation
		},
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign JWT token")
	}
	return signed, nil
}
