package refresh

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/jrsteele09/member-portal/internal/config"
	apperrors "github.com/jrsteele09/member-portal/internal/errors"
	"github.com/pkg/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

const tokenLength = 32

// ErrWrongOwner is returned when a refresh token is revoked by a user it was not issued to.
var ErrWrongOwner = errors.New("refresh token belongs to another user")

// Manager handles refresh token creation, validation, and revocation
type Manager struct {
	repo   Repo
	expiry time.Duration
}

// NewManager creates a new refresh token manager
func NewManager(repo Repo, cfg config.BackendConfig) *Manager {
	return &Manager{
		repo:   repo,
		expiry: cfg.GetRefreshTokenExpiry(),
	}
}

// Create generates a new refresh token and stores it
func (m *Manager) Create(userID string) (string, error) {
	// Single refresh token per user
	if existingToken, err := m.repo.GetByUserID(userID); err == nil && existingToken != nil {
		if err := m.repo.Delete(existingToken.Token); err != nil {
			return "", errors.Wrap(err, "failed to delete existing refresh token")
		}
	}

	tokenBytes := make([]byte, tokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", errors.Wrap(err, "failed to generate random bytes")
	}

	tokenStr := hex.EncodeToString(tokenBytes)
	if err := m.repo.Upsert(&StoredRefreshToken{
		Token:  tokenStr,
		UserID: userID,
		Iat:    NowTimeFunc(),
	}); err != nil {
		return "", errors.Wrap(err, "failed to store refresh token")
	}

	return tokenStr, nil
}

// Get retrieves a live refresh token. Expired tokens are deleted and reported as not found.
func (m *Manager) Get(token string) (*StoredRefreshToken, error) {
	rt, err := m.repo.Get(token)
	if err != nil {
		return nil, err
	}
	if m.IsExpired(rt) {
		_ = m.repo.Delete(token)
		return nil, errors.Wrap(apperrors.ErrNotFound, "refresh token expired")
	}
	return rt, nil
}

// Revoke deletes a refresh token issued to userID.
func (m *Manager) Revoke(token, userID string) error {
	rt, err := m.Get(token)
	if err != nil {
		return err
	}
	if rt.UserID != userID {
		return ErrWrongOwner
	}
	return m.repo.Delete(token)
}

// IsExpired checks if a refresh token has expired
func (m *Manager) IsExpired(rt *StoredRefreshToken) bool {
	return NowTimeFunc().Sub(rt.Iat) > m.expiry
}
