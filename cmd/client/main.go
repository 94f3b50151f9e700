package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/jrsteele09/go-session-client/apiclient"
	"github.com/jrsteele09/go-session-client/authapi"
	"github.com/jrsteele09/go-session-client/internal/config"
	"github.com/jrsteele09/go-session-client/internal/logging"
	"github.com/jrsteele09/go-session-client/internal/metrics"
	"github.com/jrsteele09/go-session-client/sessions"
	"github.com/jrsteele09/go-session-client/token/refresh"
	"github.com/jrsteele09/go-session-client/token/storefactory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func main() {
	envFile := flag.String("env", ".env", "dotenv file to load before reading configuration")
	email := flag.String("email", "", "email to log in with when no session is stored")
	password := flag.String("password", "", "password to log in with")
	logout := flag.Bool("logout", false, "log out and exit")
	metricsAddr := flag.String("metrics-addr", "", "serve client metrics on this address, e.g. :9102")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", *envFile, err)
	}

	if err := run(*email, *password, *logout, *metricsAddr); err != nil {
		log.Fatal().Err(err).Msg("Client failed")
	}
}

func run(email, password string, logout bool, metricsAddr string) error {
	c := config.New()
	logging.Setup(c.GetLogLevel(), c.GetEnv())
	displayAppname(c.GetAppName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := storefactory.New(ctx, c)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn().Err(err).Msg("Closing token store")
		}
	}()

	registry := prometheus.NewRegistry()
	mtr := metrics.New(registry)
	if metricsAddr != "" {
		go serveMetrics(metricsAddr, registry)
	}

	httpClient := &http.Client{}
	exchanger := refresh.NewHTTPExchanger(c.GetBaseURL(), httpClient, c.GetRefreshTimeout())
	manager := sessions.NewManager(store, exchanger, sessions.WithConfig(c), sessions.WithMetrics(mtr))
	unsubscribe := manager.Subscribe(func(s sessions.Session) {
		ev := log.Info().Str("status", s.Status.String())
		if s.User != nil {
			ev = ev.Str("email", s.User.Email)
		}
		ev.Msg("Session changed")
	})
	defer unsubscribe()

	api := authapi.New(apiclient.New(c.GetBaseURL(), httpClient, manager, apiclient.WithConfig(c), apiclient.WithMetrics(mtr)), manager)

	session := manager.Load(ctx)
	if logout {
		return api.Logout(ctx)
	}

	if !session.LoggedIn() {
		if email == "" || password == "" {
			return errors.New("no stored session: pass -email and -password to log in")
		}
		if _, err := api.Login(ctx, email, password); err != nil {
			return fmt.Errorf("login: %w", err)
		}
	}

	profile, err := api.Profile(ctx)
	if err != nil {
		return fmt.Errorf("profile: %w", err)
	}
	log.Info().Int64("userId", profile.ID).Str("email", profile.Email).Str("username", profile.Username).Msg("Signed in")

	// SIGUSR1 stands in for the host application becoming active
	foreground := make(chan struct{}, 1)
	usr1 := make(chan os.Signal, 1)
	signal.Notify(usr1, syscall.SIGUSR1)
	defer signal.Stop(usr1)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-usr1:
				select {
				case foreground <- struct{}{}:
				default:
				}
			}
		}
	}()

	go manager.WatchForeground(ctx, foreground)
	go manager.WatchInterval(ctx, c.GetRefreshPollInterval())

	log.Info().Int("pid", os.Getpid()).Msg("Watching session; send SIGUSR1 to check expiry, Ctrl+C to exit")
	<-ctx.Done()
	return nil
}

func serveMetrics(addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Err(err).Str("addr", addr).Msg("Metrics server stopped")
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
