package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/member-portal/internal/config"
	"github.com/jrsteele09/member-portal/internal/logger"
	"github.com/jrsteele09/member-portal/server"
	refreshrepofake "github.com/jrsteele09/member-portal/token/refresh/repofake"
	fakeuserrepo "github.com/jrsteele09/member-portal/users/repofake"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

func main() {
	log := logger.New(logger.Options{Level: "info", Pretty: true, Output: os.Stderr})
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	ctx := context.Background()
	c, err := config.New(ctx)
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	log := logger.New(logger.Options{Level: c.GetLogLevel(), Pretty: c.GetLogPretty(), Output: os.Stderr})

	displayAppname(c.GetAppName() + " dev")
	handler, err := server.New(ctx, c, server.Repos{
		Users:         fakeuserrepo.NewFakeUserRepo(),
		RefreshTokens: refreshrepofake.NewFakeRefreshTokenRepo(),
	}, log)
	if err != nil {
		return err
	}
	handler.LogRoutes(os.Stdout)

	srv := &http.Server{Addr: c.GetPort(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errs := make(chan error, 1)
	go func() { errs <- listenAndServe(srv, log) }()

	select {
	case err := <-errs:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(srv)
}

func listenAndServe(server *http.Server, log zerolog.Logger) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server.ListenAndServe")
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "server.Shutdown")
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
