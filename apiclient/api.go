package apiclient

import (
	"context"
	"net/http"
)

// Get fetches path and decodes the JSON response into T.
func Get[T any](ctx context.Context, c *Client, path string, options ...CallOption) (T, error) {
	return call[T](ctx, c, Request{Method: http.MethodGet, Path: path}, options)
}

// Post sends body as JSON and decodes the response into T.
func Post[T any](ctx context.Context, c *Client, path string, body any, options ...CallOption) (T, error) {
	return call[T](ctx, c, Request{Method: http.MethodPost, Path: path, Body: body}, options)
}

// Patch sends body as JSON and decodes the response into T.
func Patch[T any](ctx context.Context, c *Client, path string, body any, options ...CallOption) (T, error) {
	return call[T](ctx, c, Request{Method: http.MethodPatch, Path: path, Body: body}, options)
}

// Delete removes path. Most endpoints answer 204, which decodes to the zero T.
func Delete[T any](ctx context.Context, c *Client, path string, options ...CallOption) (T, error) {
	return call[T](ctx, c, Request{Method: http.MethodDelete, Path: path}, options)
}

// PostFormData uploads form as multipart/form-data and decodes the response into T.
func PostFormData[T any](ctx context.Context, c *Client, path string, form *FormData, options ...CallOption) (T, error) {
	if form == nil {
		form = NewFormData()
	}
	return call[T](ctx, c, Request{Method: http.MethodPost, Path: path, Form: form}, options)
}

func call[T any](ctx context.Context, c *Client, req Request, options []CallOption) (T, error) {
	resp, err := c.Do(ctx, req, options...)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeInto[T](resp)
}
