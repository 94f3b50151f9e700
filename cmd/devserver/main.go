package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/jrsteele09/go-session-client/auth"
	"github.com/jrsteele09/go-session-client/auth/repofakes"
	"github.com/jrsteele09/go-session-client/devserver"
	refreshrepofake "github.com/jrsteele09/go-session-client/devserver/rotation/repofake"
	"github.com/jrsteele09/go-session-client/internal/config"
	"github.com/jrsteele09/go-session-client/internal/logging"
	fakeuserrepo "github.com/jrsteele09/go-session-client/users/repofake"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load() // a missing .env is fine
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running dev server")
	}
	log.Info().Msg("Dev server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	logging.Setup(c.GetLogLevel(), c.GetEnv())
	displayAppname(c.GetAppName() + " dev")

	handler, err := devserver.New(c, auth.Repos{
		Users:         fakeuserrepo.NewFakeUserRepo(),
		Verifications: repofakes.NewFakeVerificationRepo(),
	}, refreshrepofake.NewFakeRefreshTokenRepo())
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(server)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(server)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Str("api", devserver.APIPrefix).Msg("Dev server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
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
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
