// Package server is a small JSON backend with the same token endpoints as the
// production API. It backs the integration tests and cmd/mockapi.
package server

import (
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/server/itemrepo"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/jrsteele09/go-auth-client/token/refresh"
	refreshrepofake "github.com/jrsteele09/go-auth-client/token/refresh/repofake"
	"github.com/jrsteele09/go-auth-client/users"
	fakeuserrepo "github.com/jrsteele09/go-auth-client/users/repofake"
	"github.com/rs/zerolog"
)

// Stats counts calls per endpoint so tests can assert on traffic.
type Stats struct {
	SignIns         int64
	Refreshes       int64
	RefreshRejected int64
	Unauthorized    int64
	AuthenticatedOK int64
	UploadsReceived int64
}

type counters struct {
	signIns         atomic.Int64
	refreshes       atomic.Int64
	refreshRejected atomic.Int64
	unauthorized    atomic.Int64
	authenticatedOK atomic.Int64
	uploads         atomic.Int64
}

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	mux     *http.ServeMux
	routes  []string
	config  config.Config
	users   users.UserRepo
	items   itemrepo.Repo
	tokens  *token.Manager
	refresh *refresh.Manager
	logger  zerolog.Logger
	nowFunc func() time.Time
	stats   counters
}

type Option func(*Server)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func WithUserRepo(repo users.UserRepo) Option {
	return func(s *Server) {
		s.users = repo
	}
}

func WithItemRepo(repo itemrepo.Repo) Option {
	return func(s *Server) {
		s.items = repo
	}
}

// WithNowFunc moves the clock used to mint and check tokens.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Server) {
		s.nowFunc = now
	}
}

func New(cfg config.Config, options ...Option) (*Server, error) {
	s := &Server{
		env:     cfg.GetEnv(),
		mux:     http.NewServeMux(),
		config:  cfg,
		logger:  zerolog.Nop(),
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.users == nil {
		s.users = fakeuserrepo.NewFakeUserRepo()
	}
	if s.items == nil {
		s.items = itemrepo.NewInMemoryRepo()
	}

	signer, err := token.NewHS256Signer(cfg.GetJWTSecret())
	if err != nil {
		return nil, fmt.Errorf("[Server New] %w", err)
	}
	s.tokens = token.New(
		signer,
		token.WithAccessTokenExpiry(cfg.GetAccessTokenTTL()),
		token.WithIssuer(cfg.GetAppName()),
		token.WithNowFunc(s.now),
	)
	s.refresh = refresh.NewManager(
		refreshrepofake.NewFakeRefreshTokenRepo(),
		refresh.WithTokenLength(cfg.GetRefreshTokenLength()),
		refresh.WithExpiry(cfg.GetRefreshTokenTTL()),
		refresh.WithRotation(cfg.GetRotateRefreshTokens()),
		refresh.WithNowFunc(s.now),
	)

	if username := cfg.GetSeedUsername(); username != "" {
		if err := s.AddUser(username, cfg.GetSeedPassword()); err != nil {
			return nil, fmt.Errorf("[Server New] failed to seed user: %w", err)
		}
	}

	s.initRoutes()
	s.logRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// AddUser creates or replaces a user with the given password.
func (s *Server) AddUser(username, password string) error {
	user, err := users.NewUser(username, password)
	if err != nil {
		return err
	}
	if existing, err := s.users.GetByUsername(username); err == nil {
		user.ID = existing.ID
	}
	return s.users.Upsert(user)
}

// RevokeAccessToken makes a still valid access token fail with 401.
func (s *Server) RevokeAccessToken(raw string) error {
	return s.tokens.RevokeAccessToken(raw)
}

// RevokeRefreshToken makes the refresh endpoint reject raw.
func (s *Server) RevokeRefreshToken(raw string) {
	s.refresh.Revoke(raw)
}

func (s *Server) Stats() Stats {
	return Stats{
		SignIns:         s.stats.signIns.Load(),
		Refreshes:       s.stats.refreshes.Load(),
		RefreshRejected: s.stats.refreshRejected.Load(),
		Unauthorized:    s.stats.unauthorized.Load(),
		AuthenticatedOK: s.stats.authenticatedOK.Load(),
		UploadsReceived: s.stats.uploads.Load(),
	}
}

func (s *Server) now() time.Time {
	return s.nowFunc()
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			s.logger.Debug().Str("method", parts[0]).Str("path", parts[1]).Msg("route")
		} else {
			s.logger.Debug().Str("path", parts[0]).Msg("route")
		}
	}
}
