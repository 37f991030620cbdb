package server

import (
	"context"

	apperrors "github.com/jrsteele09/member-portal/internal/errors"
	"github.com/jrsteele09/member-portal/users"
	"github.com/pkg/errors"
)

// Fixed accounts for exercising the rejection paths. They share the seed member's password.
const (
	InactiveMemberEmail = "inactive@acna.org"
	DeactivatedEmail    = "deactivated@acna.org"
)

// InitialiseSystem creates the seed accounts that do not exist yet.
func (s *Server) InitialiseSystem(ctx context.Context) error {
	seed := s.config.GetSeedAccounts()

	accounts := []struct {
		user     users.User
		password string
	}{
		{
			user: users.User{
				Email:            seed.MemberEmail,
				FirstName:        "Jordan",
				LastName:         "Reyes",
				Kind:             users.KindMember,
				MembershipStatus: users.MembershipActive,
				MembershipType:   "physician",
				MemberNumber:     "ACNA-0001",
			},
			password: seed.MemberPassword,
		},
		{
			user: users.User{
				Email:     seed.AdminEmail,
				FirstName: "Site",
				LastName:  "Administrator",
				Kind:      users.KindAdmin,
				AdminRole: "super_admin",
				Permissions: []string{
					"news.manage",
					"members.view",
				},
			},
			password: seed.AdminPassword,
		},
		{
			user: users.User{
				Email:            InactiveMemberEmail,
				FirstName:        "Casey",
				LastName:         "Lapsed",
				Kind:             users.KindMember,
				MembershipStatus: users.MembershipInactive,
				MembershipType:   "resident",
				MemberNumber:     "ACNA-0002",
			},
			password: seed.MemberPassword,
		},
		{
			user: users.User{
				Email:            DeactivatedEmail,
				FirstName:        "Morgan",
				LastName:         "Closed",
				Kind:             users.KindMember,
				MembershipStatus: users.MembershipActive,
				MemberNumber:     "ACNA-0003",
				Deactivated:      true,
			},
			password: seed.MemberPassword,
		},
	}

	created := 0
	for _, a := range accounts {
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, err := s.seedUser(a.user, a.password)
		if err != nil {
			return errors.Wrapf(err, "failed to seed %s", a.user.Email)
		}
		if ok {
			created++
		}
	}

	s.log.Info().
		Int("created", created).
		Str("member", seed.MemberEmail).
		Str("admin", seed.AdminEmail).
		Msg("Bootstrap: seed accounts ready")
	return nil
}

// seedUser stores u with the hashed password unless an account with that email exists.
func (s *Server) seedUser(u users.User, password string) (bool, error) {
	if _, err := s.repos.Users.GetByEmail(u.Email); err == nil {
		return false, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return false, err
	}

	hash, err := users.HashPassword(password)
	if err != nil {
		return false, errors.Wrap(err, "hash password")
	}
	u.PasswordHash = hash
	if err := s.repos.Users.Upsert(&u); err != nil {
		return false, err
	}
	return true, nil
}
