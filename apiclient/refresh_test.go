package apiclient_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/credentials/storefake"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const refreshURL = "http://api.test/api/token/refresh/"

func refreshDoer(status int, body string) *countingDoer {
	return &countingDoer{fn: func(*http.Request) (*http.Response, error) {
		return stringResponse(status, body), nil
	}}
}

func TestRefreshWithoutRefreshCredential(t *testing.T) {
	store := storefake.NewFakeStoreWith(credentials.Pair{Access: "A1"})
	doer := refreshDoer(http.StatusOK, `{"access":"A2"}`)
	rc := apiclient.NewRefreshCoordinator(store, doer, refreshURL)

	ok, err := rc.RefreshAccessToken(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 0, doer.count())
	require.Equal(t, "A1", store.Snapshot().Access)
}

func TestRefreshSendsStoredRefreshCredential(t *testing.T) {
	store := storefake.NewFakeStoreWith(credentials.Pair{Access: "A1", Refresh: "R1"})
	doer := refreshDoer(http.StatusOK, `{"access":"A2"}`)
	rc := apiclient.NewRefreshCoordinator(store, doer, refreshURL)

	ok, err := rc.RefreshAccessToken(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	require.Equal(t, 1, doer.count())
	sent := doer.requests[0]
	require.Equal(t, http.MethodPost, sent.Method)
	require.Equal(t, "/api/token/refresh/", sent.URL.Path)
	require.Equal(t, "application/json", sent.Header.Get("Content-Type"))
	require.Empty(t, sent.Header.Get("Authorization"))

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(doer.bodies[0]), &payload))
	require.Equal(t, map[string]string{"refresh": "R1"}, payload)
}

func TestRefreshStoresResult(t *testing.T) {
	tests := []struct {
		name string
		body string
		want credentials.Pair
	}{
		{name: "access only keeps refresh", body: `{"access":"A2"}`, want: credentials.Pair{Access: "A2", Refresh: "R1"}},
		{name: "rotation replaces both", body: `{"access":"A2","refresh":"R2"}`, want: credentials.Pair{Access: "A2", Refresh: "R2"}},
		{name: "empty rotated refresh is ignored", body: `{"access":"A2","refresh":""}`, want: credentials.Pair{Access: "A2", Refresh: "R1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storefake.NewFakeStoreWith(credentials.Pair{Access: "A1", Refresh: "R1"})
			rc := apiclient.NewRefreshCoordinator(store, refreshDoer(http.StatusOK, tt.body), refreshURL)

			ok, err := rc.RefreshAccessToken(context.Background())
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, tt.want, store.Snapshot())
		})
	}
}

func TestRefreshRejectedClearsCredentials(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusBadRequest, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			store := storefake.NewFakeStoreWith(credentials.Pair{Access: "A1", Refresh: "R1"})
			rec := &recorder{}
			rc := apiclient.NewRefreshCoordinator(store, refreshDoer(status, `{"detail":"Token is invalid or expired"}`), refreshURL,
				apiclient.WithCoordinatorMetrics(rec))

			ok, err := rc.RefreshAccessToken(context.Background())
			require.NoError(t, err)
			require.False(t, ok)
			require.Equal(t, credentials.Pair{}, store.Snapshot())
			require.Equal(t, []apiclient.RefreshOutcome{apiclient.RefreshRejected}, rec.refreshes)
		})
	}
}

func TestRefreshMalformedResponseLeavesStore(t *testing.T) {
	for name, body := range map[string]string{
		"missing access": `{"refresh":"R2"}`,
		"not json":       "<html>oops</html>",
		"empty":          "",
	} {
		t.Run(name, func(t *testing.T) {
			store := storefake.NewFakeStoreWith(credentials.Pair{Access: "A1", Refresh: "R1"})
			rc := apiclient.NewRefreshCoordinator(store, refreshDoer(http.StatusOK, body), refreshURL)

			ok, err := rc.RefreshAccessToken(context.Background())
			require.NoError(t, err)
			require.False(t, ok)
			require.Equal(t, credentials.Pair{Access: "A1", Refresh: "R1"}, store.Snapshot())
			require.Equal(t, 0, store.Calls(storefake.OpSetAccess))
			require.Equal(t, 0, store.Calls(storefake.OpClearRefresh))
		})
	}
}

func TestRefreshMissingAccessDoesNotLogCredentials(t *testing.T) {
	var logs bytes.Buffer
	store := storefake.NewFakeStoreWith(credentials.Pair{Access: "A1", Refresh: "R1"})
	rc := apiclient.NewRefreshCoordinator(store, refreshDoer(http.StatusOK, `{"refresh":"SECRET-R2"}`), refreshURL,
		apiclient.WithCoordinatorLogger(zerolog.New(&logs)))

	ok, err := rc.RefreshAccessToken(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
	require.Contains(t, logs.String(), `"fields":["refresh"]`)
	require.NotContains(t, logs.String(), "SECRET-R2")
	require.Equal(t, credentials.Pair{Access: "A1", Refresh: "R1"}, store.Snapshot())
}

func TestRefreshNetworkErrorIsNotFatal(t *testing.T) {
	store := storefake.NewFakeStoreWith(credentials.Pair{Access: "A1", Refresh: "R1"})
	doer := doerFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: connection refused")
	})
	rc := apiclient.NewRefreshCoordinator(store, doer, refreshURL)

	ok, err := rc.RefreshAccessToken(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, credentials.Pair{Access: "A1", Refresh: "R1"}, store.Snapshot())
}

func TestRefreshStoreFailuresPropagate(t *testing.T) {
	boom := errors.New("keychain locked")
	tests := []struct {
		name   string
		op     storefake.Op
		status int
		body   string
	}{
		{name: "read refresh", op: storefake.OpGetRefresh, status: http.StatusOK, body: `{"access":"A2"}`},
		{name: "write access", op: storefake.OpSetAccess, status: http.StatusOK, body: `{"access":"A2"}`},
		{name: "write rotated refresh", op: storefake.OpSetRefresh, status: http.StatusOK, body: `{"access":"A2","refresh":"R2"}`},
		{name: "clear after rejection", op: storefake.OpClearAccess, status: http.StatusUnauthorized, body: `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storefake.NewFakeStoreWith(credentials.Pair{Access: "A1", Refresh: "R1"})
			store.FailOn(tt.op, boom)
			rc := apiclient.NewRefreshCoordinator(store, refreshDoer(tt.status, tt.body), refreshURL)

			ok, err := rc.RefreshAccessToken(context.Background())
			require.ErrorIs(t, err, boom)
			require.False(t, ok)
		})
	}
}

func TestRefreshSingleFlight(t *testing.T) {
	const callers = 10

	store := storefake.NewFakeStoreWith(credentials.Pair{Access: "A1", Refresh: "R1"})
	release := make(chan struct{})
	doer := &countingDoer{fn: func(*http.Request) (*http.Response, error) {
		<-release
		return stringResponse(http.StatusOK, `{"access":"A2"}`), nil
	}}
	rc := apiclient.NewRefreshCoordinator(store, doer, refreshURL)

	start := make(chan struct{})
	results := make(chan bool, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ok, err := rc.RefreshAccessToken(context.Background())
			assert.NoError(t, err)
			results <- ok
		}()
	}
	close(start)

	require.Eventually(t, rc.InFlight, time.Second, time.Millisecond)
	// Let every caller reach the shared call before it resolves.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	for ok := range results {
		require.True(t, ok)
	}
	require.Equal(t, 1, doer.count())
	require.Equal(t, 1, store.Calls(storefake.OpSetAccess))
	require.False(t, rc.InFlight())
}

func TestRefreshStartsFreshAfterResolution(t *testing.T) {
	store := storefake.NewFakeStoreWith(credentials.Pair{Access: "A1", Refresh: "R1"})
	doer := refreshDoer(http.StatusOK, `{"access":"A2"}`)
	rc := apiclient.NewRefreshCoordinator(store, doer, refreshURL)

	for i := 0; i < 3; i++ {
		ok, err := rc.RefreshAccessToken(context.Background())
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.Equal(t, 3, doer.count())
}

func TestRefreshWaiterCancellation(t *testing.T) {
	store := storefake.NewFakeStoreWith(credentials.Pair{Access: "A1", Refresh: "R1"})
	release := make(chan struct{})
	doer := &countingDoer{fn: func(r *http.Request) (*http.Response, error) {
		<-release
		// The shared call must not inherit the first caller's cancellation.
		if err := r.Context().Err(); err != nil {
			return nil, err
		}
		return stringResponse(http.StatusOK, `{"access":"A2"}`), nil
	}}
	rc := apiclient.NewRefreshCoordinator(store, doer, refreshURL)

	ctx, cancel := context.WithCancel(context.Background())
	cancelled := make(chan error, 1)
	go func() {
		_, err := rc.RefreshAccessToken(ctx)
		cancelled <- err
	}()
	require.Eventually(t, rc.InFlight, time.Second, time.Millisecond)

	patient := make(chan bool, 1)
	go func() {
		ok, err := rc.RefreshAccessToken(context.Background())
		assert.NoError(t, err)
		patient <- ok
	}()

	cancel()
	require.ErrorIs(t, <-cancelled, context.Canceled)

	time.Sleep(50 * time.Millisecond)
	close(release)
	require.True(t, <-patient)
	require.Equal(t, 1, doer.count())
	require.Equal(t, "A2", store.Snapshot().Access)
}
