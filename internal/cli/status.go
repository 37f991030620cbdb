package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.sessions.Current()
			if s.IsAnonymous() {
				fmt.Fprintln(a.out, "Not signed in.")
				return nil
			}

			fmt.Fprintf(a.out, "Role:        %s\n", s.Role)
			fmt.Fprintf(a.out, "Signed in:   %s\n", displayName(s))
			if m := s.Member(); m != nil {
				fmt.Fprintf(a.out, "Email:       %s\n", m.Email)
				if m.MembershipStatus != "" {
					fmt.Fprintf(a.out, "Membership:  %s\n", m.MembershipStatus)
				}
			}
			if ad := s.Admin(); ad != nil {
				fmt.Fprintf(a.out, "Email:       %s\n", ad.Email)
				if len(ad.Permissions) > 0 {
					fmt.Fprintf(a.out, "Permissions: %s\n", strings.Join(ad.Permissions, ", "))
				}
			}
			fmt.Fprintf(a.out, "Remember me: %t\n", s.RememberMe)
			if exp, ok := a.sessions.BearerExpiry(); ok {
				state := "valid"
				if !time.Now().Before(exp) {
					state = "expired"
				}
				fmt.Fprintf(a.out, "Token:       %s until %s\n", state, exp.Local().Format(time.RFC1123))
			}
			return nil
		},
	}
}
