// Package apiclient is the authenticated request core used to talk to the
// remote JSON API.
//
// Every request attaches the stored access credential. A 401 triggers at most
// one shared refresh of that credential followed by exactly one retry; every
// other failure is returned immediately as an *APIError.
package apiclient

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-auth-client/credentials"
	apperrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/rs/zerolog"
)

const (
	DefaultSignInPath  = "/api/token/"
	DefaultRefreshPath = "/api/token/refresh/"
)

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	baseURL     string
	store       credentials.Store
	http        HTTPDoer
	refresher   *RefreshCoordinator
	signInPath  string
	refreshPath string
	requestIDs  bool
	logger      zerolog.Logger
	metrics     Recorder
}

type Option func(*Client)

// WithHTTPClient sets the transport. Timeouts belong there; the client itself
// imposes none.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		c.http = doer
	}
}

func WithSignInPath(path string) Option {
	return func(c *Client) {
		c.signInPath = path
	}
}

func WithRefreshPath(path string) Option {
	return func(c *Client) {
		c.refreshPath = path
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(r Recorder) Option {
	return func(c *Client) {
		c.metrics = r
	}
}

// WithRequestIDs controls the X-Request-ID header sent on every attempt.
func WithRequestIDs(enabled bool) Option {
	return func(c *Client) {
		c.requestIDs = enabled
	}
}

func New(baseURL string, store credentials.Store, options ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, apperrors.ErrMissingBaseURL
	}
	if store == nil {
		return nil, apperrors.ErrMissingStore
	}

	c := &Client{
		baseURL:     baseURL,
		store:       store,
		signInPath:  DefaultSignInPath,
		refreshPath: DefaultRefreshPath,
		requestIDs:  true,
		logger:      zerolog.Nop(),
		metrics:     NopRecorder{},
	}
	for _, opt := range options {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.metrics == nil {
		c.metrics = NopRecorder{}
	}

	c.refresher = NewRefreshCoordinator(
		store,
		c.http,
		c.url(c.refreshPath),
		WithCoordinatorLogger(c.logger),
		WithCoordinatorMetrics(c.metrics),
	)
	return c, nil
}

// Refresher exposes the client's refresh coordinator.
func (c *Client) Refresher() *RefreshCoordinator {
	return c.refresher
}

// RefreshAccessToken forces a refresh through the shared coordinator.
func (c *Client) RefreshAccessToken(ctx context.Context) (bool, error) {
	return c.refresher.RefreshAccessToken(ctx)
}

func (c *Client) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) observe(method string, status int, err error, started time.Time) {
	kind := ""
	if apiErr, ok := AsAPIError(err); ok {
		kind = apiErr.Kind.String()
	}
	c.metrics.ObserveRequest(method, status, kind, time.Since(started))
}
