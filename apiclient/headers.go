package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const (
	headerAccept        = "Accept"
	headerContentType   = "Content-Type"
	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-ID"

	mimeJSON = "application/json"
)

// BuildHeaders returns the header set for a JSON request: Accept and
// Content-Type are application/json, Authorization carries the stored access
// credential when there is one, and extra headers are applied last.
func (c *Client) BuildHeaders(ctx context.Context, extra map[string]string) (http.Header, error) {
	h, _, err := buildHeaders(ctx, c.store, extra, false)
	return h, err
}

// BuildHeadersMultipart is BuildHeaders without Content-Type, so the multipart
// encoder can supply the boundary. An explicit Content-Type in extra still wins.
func (c *Client) BuildHeadersMultipart(ctx context.Context, extra map[string]string) (http.Header, error) {
	h, _, err := buildHeaders(ctx, c.store, extra, true)
	return h, err
}

// buildHeaders also returns the access credential it attached so the retry
// policy can tell whether the store has moved on since.
func buildHeaders(ctx context.Context, store accessReader, extra map[string]string, multipart bool) (http.Header, string, error) {
	access, err := store.GetAccess(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("apiclient: read access credential: %w", err)
	}

	h := make(http.Header)
	h.Set(headerAccept, mimeJSON)
	if !multipart {
		h.Set(headerContentType, mimeJSON)
	}
	if access != "" {
		h.Set(headerAuthorization, "Bearer "+access)
	}
	for key, value := range extra {
		if strings.TrimSpace(key) == "" {
			continue
		}
		h.Set(strings.TrimSpace(key), value)
	}
	return h, access, nil
}

type accessReader interface {
	GetAccess(ctx context.Context) (string, error)
}
