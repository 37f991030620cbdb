package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/jrsteele09/member-portal/identity"
	"github.com/jrsteele09/member-portal/session"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type loginFlags struct {
	email      string
	password   string
	rememberMe bool
}

type loginFunc func(ctx context.Context, creds identity.Credentials) (identity.LoginResult, error)

func newLoginCmd(a *app) *cobra.Command {
	var lf loginFlags
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as a member",
		Long:  "Exchange member credentials for a member session. Any admin session on this device is replaced.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLogin(cmd.Context(), lf, a.member.Login)
		},
	}
	addLoginFlags(cmd, &lf)
	return cmd
}

func newAdminLoginCmd(a *app) *cobra.Command {
	var lf loginFlags
	cmd := &cobra.Command{
		Use:   "admin-login",
		Short: "Sign in as an administrator",
		Long:  "Exchange administrator credentials for an admin session. Any member session on this device is replaced.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLogin(cmd.Context(), lf, a.admin.Login)
		},
	}
	addLoginFlags(cmd, &lf)
	return cmd
}

func addLoginFlags(cmd *cobra.Command, lf *loginFlags) {
	cmd.Flags().StringVar(&lf.email, "email", "", "Account email (prompted if omitted)")
	cmd.Flags().StringVar(&lf.password, "password", "", "Account password (prompted if omitted)")
	cmd.Flags().BoolVar(&lf.rememberMe, "remember-me", false, "Keep me signed in")
}

func (a *app) runLogin(ctx context.Context, lf loginFlags, login loginFunc) error {
	var err error
	if lf.email == "" {
		if lf.email, err = a.prompt("Email: "); err != nil {
			return err
		}
	}
	if lf.password == "" {
		if lf.password, err = a.prompt("Password: "); err != nil {
			return err
		}
	}

	res, err := login(ctx, identity.Credentials{Email: lf.email, Password: lf.password, RememberMe: lf.rememberMe})
	if err != nil {
		return errors.New(identity.MessageFor(err))
	}

	fmt.Fprintf(a.out, "Signed in as %s (%s).\n", displayName(res.Session), res.Session.Role)
	fmt.Fprintf(a.out, "Continue to %s\n", res.Redirect)
	return nil
}

func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return "", errors.Wrap(err, "read input")
	}
	return strings.TrimSpace(line), nil
}

func displayName(s session.Session) string {
	switch {
	case s.Member() != nil:
		return s.Member().DisplayName()
	case s.Admin() != nil:
		return s.Admin().DisplayName()
	}
	return "anonymous"
}
