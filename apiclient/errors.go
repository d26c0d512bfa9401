package apiclient

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// Kind discriminates the failures the client can return.
type Kind int

const (
	// KindUnauthenticated is a 401 that survived the refresh-and-retry cycle.
	KindUnauthenticated Kind = iota + 1
	// KindHTTPError is any other non-2xx response. Never retried.
	KindHTTPError
	// KindNetworkError is a transport failure; no status was received.
	KindNetworkError
	// KindDecodeFallback is a 2xx whose body could not be decoded into the
	// requested type. The raw text is kept in Body.
	KindDecodeFallback
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindHTTPError:
		return "http_error"
	case KindNetworkError:
		return "network_error"
	case KindDecodeFallback:
		return "decode_fallback"
	default:
		return "unknown"
	}
}

// APIError is the structured failure returned by every request entry point.
type APIError struct {
	Kind    Kind
	Status  int
	Message string
	// Body is the decoded response body: a JSON value, RawText, or nil.
	Body any
	// Err is the underlying cause for network and decode failures.
	Err error
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("apiclient: %s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("apiclient: %s: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// AsAPIError returns the first APIError in err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsUnauthenticated reports whether err means the session has ended and the
// caller should route to sign-in.
func IsUnauthenticated(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Kind == KindUnauthenticated
}

func newStatusError(status int, body any) *APIError {
	kind := KindHTTPError
	if status == http.StatusUnauthorized {
		kind = KindUnauthenticated
	}
	return &APIError{
		Kind:    kind,
		Status:  status,
		Message: messageFromBody(status, body),
		Body:    body,
	}
}

func newNetworkError(err error) *APIError {
	return &APIError{
		Kind:    KindNetworkError,
		Message: err.Error(),
		Err:     err,
	}
}

// messageFromBody picks the most useful human readable message: the server's
// detail/message/error field, then raw text, then the status text.
func messageFromBody(status int, body any) string {
	switch b := body.(type) {
	case map[string]any:
		for _, key := range []string{"detail", "message", "error"} {
			if s, ok := b[key].(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	case RawText:
		if text := strings.TrimSpace(b.Text); text != "" {
			return truncate(text, 200)
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("request failed with status %d", status)
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
