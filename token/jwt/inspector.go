package jwt

import (
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/member-portal/internal/config"
	"github.com/pkg/errors"
)

var (
	ErrInvalidToken = errors.New("token is invalid or expired")
	ErrRevokedToken = errors.New("token has been revoked")
)

// RevokedChecker is an interface for checking if a token has been revoked
type RevokedChecker interface {
	IsRevoked(jti string) bool
}

// Inspector validates access tokens issued by a Creator with the same secret.
type Inspector struct {
	secret         []byte
	revokedChecker RevokedChecker
}

// NewInspector creates a new JWT inspector. revoked may be nil.
func NewInspector(cfg config.BackendConfig, revoked RevokedChecker) *Inspector {
	return &Inspector{
		secret:         []byte(cfg.GetJWTSecret()),
		revokedChecker: revoked,
	}
}

// Validate checks the signature, expiry and revocation state of an access token.
func (i *Inspector) Validate(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwtlib.ParseWithClaims(raw, claims, func(*jwtlib.Token) (any, error) {
		return i.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(NowTimeFunc),
		jwtlib.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidToken, err.Error())
	}
	if i.revokedChecker != nil && i.revokedChecker.IsRevoked(claims.ID) {
		return nil, ErrRevokedToken
	}
	return claims, nil
}

// RevocationList is an in-memory set of revoked token IDs. Entries are dropped once
// the token they belong to would have expired anyway.
type RevocationList struct {
	lock sync.Mutex
	jtis map[string]time.Time
}

var _ RevokedChecker = (*RevocationList)(nil)

func NewRevocationList() *RevocationList {
	return &RevocationList{jtis: make(map[string]time.Time)}
}

// Revoke marks the token with the given ID as revoked until expiresAt.
func (r *RevocationList) Revoke(jti string, expiresAt time.Time) {
	if jti == "" {
		return
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	r.prune()
	r.jtis[jti] = expiresAt
}

func (r *RevocationList) IsRevoked(jti string) bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	_, ok := r.jtis[jti]
	return ok
}

func (r *RevocationList) prune() {
	now := NowTimeFunc()
	for jti, exp := range r.jtis {
		if now.After(exp) {
			delete(r.jtis, jti)
		}
	}
}
