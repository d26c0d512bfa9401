package apiclient_test

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/stretchr/testify/require"
)

func TestDecodeBody(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want any
	}{
		{name: "json object", raw: `{"a":1}`, want: map[string]any{"a": float64(1)}},
		{name: "empty", raw: "", want: nil},
		{name: "html error page", raw: "<html>err</html>", want: apiclient.RawText{Text: "<html>err</html>"}},
		{name: "json array", raw: `[1,"x"]`, want: []any{float64(1), "x"}},
		{name: "whitespace is not empty", raw: "  ", want: apiclient.RawText{Text: "  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, apiclient.DecodeBody([]byte(tt.raw)))
		})
	}
}

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

func TestDecodeReadsOnceAndCloses(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader(`{"id":1}`)}
	got, err := apiclient.Decode(&http.Response{StatusCode: http.StatusOK, Body: body})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"id": float64(1)}, got)
	require.True(t, body.closed)
}

type failingBody struct{}

func (failingBody) Read([]byte) (int, error) { return 0, errors.New("connection reset") }
func (failingBody) Close() error             { return nil }

func TestDecodeReadFailure(t *testing.T) {
	_, err := apiclient.Decode(&http.Response{StatusCode: http.StatusOK, Body: failingBody{}})
	require.Error(t, err)
}
