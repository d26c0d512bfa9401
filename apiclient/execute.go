package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Request describes one logical call. It is turned into a fresh *http.Request
// for every attempt so a retry re-reads the access credential and re-encodes
// the body.
type Request struct {
	Method  string
	Path    string
	Headers map[string]string
	// Body is JSON encoded when non-nil. Ignored when Form is set.
	Body any
	// Form switches the request to multipart/form-data.
	Form *FormData
}

// Response is a successful (2xx) response with its body already read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decoded returns the body as DecodeBody sees it.
func (r *Response) Decoded() any {
	return DecodeBody(r.Body)
}

type callOptions struct {
	allowRefresh bool
	headers      map[string]string
}

// CallOption tunes a single call made through the public entry points.
type CallOption func(*callOptions)

// WithHeader adds a header that overrides the defaults for this call.
func WithHeader(key, value string) CallOption {
	return func(o *callOptions) {
		if o.headers == nil {
			o.headers = map[string]string{}
		}
		o.headers[key] = value
	}
}

// WithAllowRefresh controls whether a 401 may trigger a refresh and retry.
// The default is true.
func WithAllowRefresh(allow bool) CallOption {
	return func(o *callOptions) {
		o.allowRefresh = allow
	}
}

func resolveCallOptions(options []CallOption) callOptions {
	o := callOptions{allowRefresh: true}
	for _, opt := range options {
		opt(&o)
	}
	return o
}

// Do runs req with the retry policy: one attempt, and on a 401 when
// allowRefresh is set, one shared refresh followed by exactly one more attempt
// that may not refresh again.
func (c *Client) Do(ctx context.Context, req Request, options ...CallOption) (*Response, error) {
	o := resolveCallOptions(options)
	if len(o.headers) > 0 {
		merged := make(map[string]string, len(req.Headers)+len(o.headers))
		for k, v := range req.Headers {
			merged[k] = v
		}
		for k, v := range o.headers {
			merged[k] = v
		}
		req.Headers = merged
	}
	return c.do(ctx, req, o.allowRefresh)
}

func (c *Client) do(ctx context.Context, req Request, allowRefresh bool) (*Response, error) {
	resp, sentAccess, err := c.execute(ctx, req)
	if err == nil || !allowRefresh || !IsUnauthenticated(err) {
		return resp, err
	}

	retry, refreshErr := c.prepareRetry(ctx, sentAccess)
	if refreshErr != nil {
		// The caller gave up waiting on the shared refresh.
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(refreshErr, ctxErr) {
			return nil, newNetworkError(refreshErr)
		}
		return nil, refreshErr
	}
	if !retry {
		return nil, err
	}

	c.logger.Debug().Str("method", req.Method).Str("path", req.Path).Msg("retrying after refresh")
	resp, _, err = c.execute(ctx, req)
	return resp, err
}

// prepareRetry decides whether the rejected call gets its single retry. If
// another caller already replaced the credential that was rejected, the retry
// uses it directly; otherwise the shared refresh decides.
func (c *Client) prepareRetry(ctx context.Context, rejectedAccess string) (bool, error) {
	current, err := c.store.GetAccess(ctx)
	if err != nil {
		return false, fmt.Errorf("apiclient: read access credential: %w", err)
	}
	if current != "" && current != rejectedAccess {
		return true, nil
	}
	return c.refresher.RefreshAccessToken(ctx)
}

// execute performs exactly one attempt. It returns the access credential that
// was attached so the caller can detect a concurrent refresh.
func (c *Client) execute(ctx context.Context, req Request) (*Response, string, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}

	headers, access, err := buildHeaders(ctx, c.store, req.Headers, req.Form != nil)
	if err != nil {
		return nil, "", err
	}

	body, err := c.encodeBody(req, headers)
	if err != nil {
		return nil, access, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.url(req.Path), body)
	if err != nil {
		return nil, access, fmt.Errorf("apiclient: create request: %w", err)
	}
	httpReq.Header = headers
	if c.requestIDs && httpReq.Header.Get(headerRequestID) == "" {
		httpReq.Header.Set(headerRequestID, uuid.NewString())
	}

	started := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		apiErr := newNetworkError(err)
		c.observe(method, 0, apiErr, started)
		return nil, access, apiErr
	}

	raw, err := readBody(httpResp)
	if err != nil {
		apiErr := newNetworkError(fmt.Errorf("read response body: %w", err))
		apiErr.Status = httpResp.StatusCode
		c.observe(method, httpResp.StatusCode, apiErr, started)
		return nil, access, apiErr
	}

	if !isSuccess(httpResp.StatusCode) {
		apiErr := newStatusError(httpResp.StatusCode, DecodeBody(raw))
		c.observe(method, httpResp.StatusCode, apiErr, started)
		return nil, access, apiErr
	}

	c.observe(method, httpResp.StatusCode, nil, started)
	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       raw,
	}, access, nil
}

// encodeBody builds a fresh body for this attempt. For multipart requests the
// encoder supplies Content-Type unless the caller set one explicitly.
func (c *Client) encodeBody(req Request, headers http.Header) (io.Reader, error) {
	if req.Form != nil {
		buf, contentType, err := req.Form.encode()
		if err != nil {
			return nil, err
		}
		if headers.Get(headerContentType) == "" {
			headers.Set(headerContentType, contentType)
		}
		return buf, nil
	}
	if req.Body == nil {
		return nil, nil
	}
	payload, err := json.Marshal(req.Body)
	if err != nil {
		return nil, fmt.Errorf("apiclient: encode request body: %w", err)
	}
	return bytes.NewReader(payload), nil
}
