package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/jrsteele09/member-portal/session"
	"github.com/jrsteele09/member-portal/signout"
	"github.com/spf13/cobra"
)

func newLogoutCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out of the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var confirmer signout.Confirmer = signout.ConfirmFunc(a.confirmSignOut)
			if yes {
				confirmer = signout.AlwaysConfirm
			}

			out, err := signout.NewFlow(confirmer, a.sessions, a.log).Run(cmd.Context())
			if err != nil && out.Redirect == "" {
				return err
			}
			if out.Cancelled {
				fmt.Fprintln(a.out, "Sign-out cancelled.")
				return nil
			}
			if out.PriorRole == session.RoleAnonymous {
				fmt.Fprintln(a.out, "Not signed in.")
			} else {
				fmt.Fprintf(a.out, "Signed out of %s session.\n", out.PriorRole)
			}
			fmt.Fprintf(a.out, "Continue to %s\n", out.Redirect)
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func (a *app) confirmSignOut(_ context.Context, current session.Session) (bool, error) {
	if current.IsAnonymous() {
		return true, nil
	}
	answer, err := a.prompt(fmt.Sprintf("Sign out %s (%s)? [y/N]: ", displayName(current), current.Role))
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
