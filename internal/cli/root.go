// Package cli implements the portal command line client.
package cli

import (
	"bufio"
	"context"
	"io"

	"github.com/jrsteele09/member-portal/apiclient"
	"github.com/jrsteele09/member-portal/identity"
	"github.com/jrsteele09/member-portal/internal/config"
	"github.com/jrsteele09/member-portal/internal/logger"
	"github.com/jrsteele09/member-portal/portalapi"
	"github.com/jrsteele09/member-portal/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type flags struct {
	api       string
	store     string
	storePath string
	logLevel  string
	pretty    bool
}

// app is everything a command needs, built once per invocation.
type app struct {
	log      zerolog.Logger
	sessions *session.Manager
	member   *identity.MemberProvider
	admin    *identity.AdminProvider
	features *portalapi.Client
	in       *bufio.Reader
	out      io.Writer
	close    func() error
}

// NewRootCmd creates the root cobra command for the portal CLI.
func NewRootCmd() *cobra.Command {
	var f flags
	a := &app{close: func() error { return nil }}

	root := &cobra.Command{
		Use:   "portal",
		Short: "Member portal client",
		Long:  "Sign in to the member portal as a member or administrator and use the role-scoped features.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd, f)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&f.api, "api", "", "Backend API URL (or PORTAL_API_URL env)")
	root.PersistentFlags().StringVar(&f.store, "store", "", "Session store: file, sqlite, redis, memory (or PORTAL_STORE env)")
	root.PersistentFlags().StringVar(&f.storePath, "store-path", "", "Session file or database path (or PORTAL_STORE_PATH env)")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error (or LOG_LEVEL env)")
	root.PersistentFlags().BoolVar(&f.pretty, "pretty", false, "Human-friendly log output")

	root.AddCommand(
		newLoginCmd(a),
		newAdminLoginCmd(a),
		newLogoutCmd(a),
		newStatusCmd(a),
		newForumsCmd(a),
		newNewsCmd(a),
	)
	// Post-run hooks are skipped when RunE fails, so each command releases the store itself.
	for _, c := range root.Commands() {
		if c.RunE != nil {
			c.RunE = a.closing(c.RunE)
		}
	}

	return root
}

// openSessionStore is replaced in tests.
var openSessionStore = openStore

func (a *app) closing(run func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := run(cmd, args)
		if cerr := a.release(); cerr != nil {
			if err != nil {
				a.log.Warn().Err(cerr).Msg("failed to close session store")
				return err
			}
			return errors.Wrap(cerr, "close session store")
		}
		return err
	}
}

// release closes the session store at most once.
func (a *app) release() error {
	closeStore := a.close
	a.close = func() error { return nil }
	return closeStore()
}

func (a *app) init(cmd *cobra.Command, f flags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.New(ctx)
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	level := cfg.GetLogLevel()
	if f.logLevel != "" {
		level = f.logLevel
	}
	a.log = logger.New(logger.Options{
		Level:  level,
		Pretty: f.pretty || (cfg.GetLogPretty() && !cmd.Flags().Changed("pretty")),
		Output: cmd.ErrOrStderr(),
	})
	a.in = bufio.NewReader(cmd.InOrStdin())
	a.out = cmd.OutOrStdout()

	storeCfg := storeSettings{
		driver: cfg.GetStoreDriver(),
		path:   cfg.GetStorePath(),
		redis:  cfg.GetRedisAddr(),
		db:     cfg.GetRedisDB(),
		origin: cfg.GetOrigin(),
	}
	if f.store != "" {
		storeCfg.driver = config.Session{StoreDriver: f.store}.GetStoreDriver()
		storeCfg.path = config.Session{StoreDriver: f.store}.GetStorePath()
	}
	if f.storePath != "" {
		storeCfg.path = f.storePath
	}
	st, closeStore, err := openSessionStore(ctx, storeCfg, a.log)
	if err != nil {
		return err
	}
	a.close = closeStore

	apiURL := cfg.GetAPIBaseURL()
	if f.api != "" {
		apiURL = f.api
	}
	api := apiclient.New(apiURL,
		apiclient.WithTimeout(cfg.GetRequestTimeout()),
		apiclient.WithLogger(a.log),
	)

	a.sessions, err = session.New(ctx, st,
		session.WithLogger(a.log),
		session.WithSignOutNotifier(session.RoleMember, identity.MemberSignOut(api)),
		session.WithSignOutNotifier(session.RoleAdmin, identity.AdminSignOut(api)),
	)
	if err != nil {
		_ = a.release()
		return errors.Wrap(err, "load session")
	}

	a.member = identity.NewMemberProvider(api, a.sessions, identity.WithLogger(a.log))
	a.admin = identity.NewAdminProvider(api, a.sessions, identity.WithLogger(a.log))
	a.features = portalapi.New(apiURL, a.sessions, a.log, apiclient.WithTimeout(cfg.GetRequestTimeout()))
	return nil
}
