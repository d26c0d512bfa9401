package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/credentials/storefake"
	"github.com/stretchr/testify/require"
)

func signInServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || r.URL.Path != "/api/token/" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req["username"] != "alice" || req["password"] != "s3cret" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "No active account found with the given credentials"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSignInStoresPair(t *testing.T) {
	srv := signInServer(t, http.StatusOK, `{"access":"A1","refresh":"R1"}`)
	store := storefake.NewFakeStore()
	c := newTestClient(t, srv.URL, store)

	require.NoError(t, c.SignIn(context.Background(), "alice", "s3cret"))
	require.Equal(t, credentials.Pair{Access: "A1", Refresh: "R1"}, store.Snapshot())

	signedIn, err := c.SignedIn(context.Background())
	require.NoError(t, err)
	require.True(t, signedIn)
}

func TestSignInRejected(t *testing.T) {
	srv := signInServer(t, http.StatusOK, `{"access":"A1","refresh":"R1"}`)
	store := storefake.NewFakeStoreWith(credentials.Pair{Access: "OLD", Refresh: "OLDR"})
	c := newTestClient(t, srv.URL, store)

	err := c.SignIn(context.Background(), "alice", "wrong")
	require.True(t, apiclient.IsUnauthenticated(err))
	apiErr, _ := apiclient.AsAPIError(err)
	require.Equal(t, "No active account found with the given credentials", apiErr.Message)
	require.Equal(t, credentials.Pair{Access: "OLD", Refresh: "OLDR"}, store.Snapshot())
}

func TestSignInStoreFailureClearsPair(t *testing.T) {
	srv := signInServer(t, http.StatusOK, `{"access":"A1","refresh":"R1"}`)
	store := storefake.NewFakeStoreWith(credentials.Pair{Access: "OLD", Refresh: "OLDR"})
	boom := errors.New("disk full")
	store.FailOn(storefake.OpSetRefresh, boom)
	c := newTestClient(t, srv.URL, store)

	err := c.SignIn(context.Background(), "alice", "s3cret")
	require.ErrorIs(t, err, boom)
	_, isAPIErr := apiclient.AsAPIError(err)
	require.False(t, isAPIErr)
	require.Equal(t, credentials.Pair{}, store.Snapshot())
}

func TestSignInIncompleteResponse(t *testing.T) {
	srv := signInServer(t, http.StatusOK, `{"access":"A1"}`)
	store := storefake.NewFakeStore()
	c := newTestClient(t, srv.URL, store)

	err := c.SignIn(context.Background(), "alice", "s3cret")
	apiErr, ok := apiclient.AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, apiclient.KindDecodeFallback, apiErr.Kind)
	require.Equal(t, credentials.Pair{}, store.Snapshot())
}

func TestSignInNetworkError(t *testing.T) {
	boom := errors.New("no route to host")
	c := newTestClient(t, "http://api.test", storefake.NewFakeStore(),
		apiclient.WithHTTPClient(doerFunc(func(*http.Request) (*http.Response, error) { return nil, boom })))

	err := c.SignIn(context.Background(), "alice", "s3cret")
	require.ErrorIs(t, err, boom)
	apiErr, _ := apiclient.AsAPIError(err)
	require.Equal(t, apiclient.KindNetworkError, apiErr.Kind)
}

func TestSignOutClearsBoth(t *testing.T) {
	store := storefake.NewFakeStoreWith(credentials.Pair{Access: "A1", Refresh: "R1"})
	c := newTestClient(t, "http://api.test", store)

	require.NoError(t, c.SignOut(context.Background()))
	require.Equal(t, credentials.Pair{}, store.Snapshot())

	signedIn, err := c.SignedIn(context.Background())
	require.NoError(t, err)
	require.False(t, signedIn)
}

func TestSignOutReportsStoreFailure(t *testing.T) {
	store := storefake.NewFakeStoreWith(credentials.Pair{Access: "A1", Refresh: "R1"})
	boom := errors.New("locked")
	store.FailOn(storefake.OpClearAccess, boom)
	c := newTestClient(t, "http://api.test", store)

	require.ErrorIs(t, c.SignOut(context.Background()), boom)
	// The refresh credential is still cleared.
	require.Equal(t, "", store.Snapshot().Refresh)
}
