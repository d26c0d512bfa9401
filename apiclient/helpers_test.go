package apiclient_test

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/stretchr/testify/require"
)

// doerFunc lets a test stand in for the network.
type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(r *http.Request) (*http.Response, error) {
	return f(r)
}

// countingDoer records every request it forwards to fn.
type countingDoer struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
	fn       func(*http.Request) (*http.Response, error)
}

func (d *countingDoer) Do(r *http.Request) (*http.Response, error) {
	var body string
	if r.Body != nil {
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
	}
	d.mu.Lock()
	d.requests = append(d.requests, r)
	d.bodies = append(d.bodies, body)
	d.mu.Unlock()
	return d.fn(r)
}

func (d *countingDoer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.requests)
}

func (d *countingDoer) countPath(path string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, r := range d.requests {
		if r.URL.Path == path {
			n++
		}
	}
	return n
}

func stringResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func bearer(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func newTestClient(t *testing.T, baseURL string, store credentials.Store, options ...apiclient.Option) *apiclient.Client {
	t.Helper()
	options = append([]apiclient.Option{apiclient.WithHTTPClient(&http.Client{Timeout: 5 * time.Second})}, options...)
	c, err := apiclient.New(baseURL, store, options...)
	require.NoError(t, err)
	return c
}

// recorder captures metrics observations.
type recorder struct {
	mu        sync.Mutex
	requests  []string
	refreshes []apiclient.RefreshOutcome
}

func (r *recorder) ObserveRequest(method string, status int, kind string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, method+" "+http.StatusText(status)+" "+kind)
}

func (r *recorder) ObserveRefresh(outcome apiclient.RefreshOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshes = append(r.refreshes, outcome)
}

func withDoer(d apiclient.HTTPDoer) apiclient.Option {
	return apiclient.WithHTTPClient(d)
}
