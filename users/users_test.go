package users_test

import (
	"testing"

	"github.com/jrsteele09/member-portal/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHash(t *testing.T) {
	hash, err := users.HashPassword("member123")
	require.NoError(t, err)
	assert.NotEqual(t, "member123", hash)

	u := &users.User{PasswordHash: hash}
	assert.True(t, u.CheckPassword("member123"))
	assert.False(t, u.CheckPassword("member124"))
}

func TestHasActiveMembership(t *testing.T) {
	tests := []struct {
		status users.MembershipStatus
		want   bool
	}{
		{"", true},
		{users.MembershipActive, true},
		{users.MembershipInactive, false},
		{users.MembershipExpired, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			u := &users.User{MembershipStatus: tt.status}
			assert.Equal(t, tt.want, u.HasActiveMembership())
		})
	}
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", (&users.User{FirstName: "Ada", LastName: "Lovelace"}).FullName())
	assert.Equal(t, "Ada", (&users.User{FirstName: "Ada"}).FullName())
	assert.Empty(t, (&users.User{}).FullName())
}
