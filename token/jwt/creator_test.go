package jwt_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/member-portal/internal/config"
	"github.com/jrsteele09/member-portal/token/jwt"
	"github.com/jrsteele09/member-portal/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Backend {
	return config.Backend{JWTSecret: "test-secret", AccessTokenExpiry: time.Hour}
}

func withNow(t *testing.T, now time.Time) {
	t.Helper()
	prev := jwt.NowTimeFunc
	jwt.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { jwt.NowTimeFunc = prev })
}

func TestCreateAndValidate(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	withNow(t, now)

	user := &users.User{ID: "u-1", Email: "member@acna.org", Kind: users.KindMember}
	raw, err := jwt.NewCreator(testConfig()).CreateAccessToken(user)
	require.NoError(t, err)

	claims, err := jwt.NewInspector(testConfig(), nil).Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, users.KindMember, claims.Kind)
	assert.Equal(t, "member@acna.org", claims.Email)
	assert.True(t, now.Add(time.Hour).Equal(claims.ExpiresAt.Time))
	assert.NotEmpty(t, claims.ID)
}

func TestValidateRejects(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	withNow(t, now)

	user := &users.User{ID: "u-1", Kind: users.KindAdmin}
	raw, err := jwt.NewCreator(testConfig()).CreateAccessToken(user)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other := config.Backend{JWTSecret: "other"}
		_, err := jwt.NewInspector(other, nil).Validate(raw)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		withNow(t, now.Add(2*time.Hour))
		_, err := jwt.NewInspector(testConfig(), nil).Validate(raw)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := jwt.NewInspector(testConfig(), nil).Validate("not-a-jwt")
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		none, err := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, jwtlib.MapClaims{"sub": "u-1"}).
			SignedString(jwtlib.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = jwt.NewInspector(testConfig(), nil).Validate(none)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("revoked", func(t *testing.T) {
		revoked := jwt.NewRevocationList()
		inspector := jwt.NewInspector(testConfig(), revoked)
		claims, err := inspector.Validate(raw)
		require.NoError(t, err)

		revoked.Revoke(claims.ID, claims.ExpiresAt.Time)
		_, err = inspector.Validate(raw)
		assert.ErrorIs(t, err, jwt.ErrRevokedToken)
	})
}

func TestRevocationListPrunes(t *testing.T) {
	now := time.Now()
	withNow(t, now)

	list := jwt.NewRevocationList()
	list.Revoke("old", now.Add(time.Minute))
	assert.True(t, list.IsRevoked("old"))

	withNow(t, now.Add(time.Hour))
	list.Revoke("new", now.Add(2*time.Hour))
	assert.False(t, list.IsRevoked("old"))
	assert.True(t, list.IsRevoked("new"))

	list.Revoke("", now)
	assert.False(t, list.IsRevoked(""))
}
