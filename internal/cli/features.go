package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/jrsteele09/member-portal/guard"
	apperrors "github.com/jrsteele09/member-portal/internal/errors"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newForumsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "forums",
		Short: "List forum categories (members)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if d := guard.New(a.sessions, guard.WithTokenExpiry(time.Now)).Member(); !d.Allow {
				return denied(d)
			}

			cats, err := a.features.ForumCategories(cmd.Context())
			if err != nil {
				return featureErr(err)
			}

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tTHREADS")
			for _, c := range cats {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", c.ID, c.Name, c.ThreadCount)
			}
			return tw.Flush()
		},
	}
}

func newNewsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "news",
		Short: "List news releases (admins)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if d := guard.New(a.sessions, guard.WithTokenExpiry(time.Now)).Admin(); !d.Allow {
				return denied(d)
			}

			news, err := a.features.NewsReleases(cmd.Context())
			if err != nil {
				return featureErr(err)
			}

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tPUBLISHED")
			for _, n := range news {
				published := "-"
				if n.PublishedAt != nil {
					published = n.PublishedAt.Format("2006-01-02")
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", n.ID, n.Title, n.Status, published)
			}
			return tw.Flush()
		},
	}
}

func denied(d guard.Decision) error {
	switch {
	case errors.Is(d.Reason, apperrors.ErrSessionExpired):
		return fmt.Errorf("your session has expired, sign in again at %s", d.Redirect)
	case errors.Is(d.Reason, apperrors.ErrForbiddenRole):
		return fmt.Errorf("this feature needs a different account, sign in at %s", d.Redirect)
	}
	return fmt.Errorf("not signed in, sign in at %s", d.Redirect)
}

func featureErr(err error) error {
	if errors.Is(err, apperrors.ErrSessionExpired) {
		return errors.New("your session has expired, please sign in again")
	}
	return err
}
