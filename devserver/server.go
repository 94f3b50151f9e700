package devserver

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-session-client/auth"
	"github.com/jrsteele09/go-session-client/devserver/rotation"
	"github.com/jrsteele09/go-session-client/internal/config"
	"github.com/jrsteele09/go-session-client/token/jwt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

// Config is the configuration the dev server reads
type Config interface {
	config.EnvConfig
	config.DevServerConfig
}

// Server emulates the remote auth API: JSON endpoints for accounts and sessions,
// HS256 access tokens and single-use rotating refresh tokens.
type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *http.ServeMux
	routes   []string
	config   Config
	accounts *auth.AccountService
	registry *prometheus.Registry
	requests *prometheus.CounterVec
}

func New(cfg Config, repos auth.Repos, refreshTokens rotation.Repo, options ...auth.AccountServiceOption) (*Server, error) {
	if refreshTokens == nil {
		return nil, fmt.Errorf("[Server New] refresh token repo is required")
	}
	accounts, err := auth.NewAccountService(repos, jwt.NewCreator(cfg), rotation.NewManager(refreshTokens, cfg), options...)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create account service: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &Server{
		env:      cfg.GetEnv(),
		mux:      http.NewServeMux(),
		config:   cfg,
		accounts: accounts,
		registry: registry,
		requests: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "devserver_http_requests_total",
			Help: "Requests served by the dev server, by route and status",
		}, []string{"route", "status"}),
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Accounts exposes the account service backing the server
func (s *Server) Accounts() *auth.AccountService {
	return s.accounts
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			log.Debug().Msgf("[%s] %s", colourMethod(parts[0]), parts[1])
		} else {
			log.Debug().Msgf("[%s] %s", colourMethod(""), parts[0])
		}
	}
}
