package apiclient_test

import (
	"context"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/credentials/storefake"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/server"
	"github.com/jrsteele09/go-auth-client/server/itemrepo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type mockAPI struct {
	server *server.Server
	url    string
	clock  *mockClock
}

func startMockAPI(t *testing.T, rotate bool) *mockAPI {
	t.Helper()
	t.Setenv("ENV", "TEST")
	t.Setenv("JWT_SECRET", "integration-secret")
	t.Setenv("ACCESS_TOKEN_TTL", "1m")
	t.Setenv("REFRESH_TOKEN_TTL", "1h")
	t.Setenv("SEED_USERNAME", "alice")
	t.Setenv("SEED_PASSWORD", "s3cret-pass")
	t.Setenv("ROTATE_REFRESH", strconv.FormatBool(rotate))

	c := &mockClock{now: time.Now()}
	s, err := server.New(config.New(), server.WithNowFunc(c.Now))
	require.NoError(t, err)
	hs := httptest.NewServer(s)
	t.Cleanup(hs.Close)
	return &mockAPI{server: s, url: hs.URL, clock: c}
}

func signedInClient(t *testing.T, api *mockAPI) (*apiclient.Client, *storefake.FakeStore) {
	t.Helper()
	store := storefake.NewFakeStore()
	c := newTestClient(t, api.url, store)
	require.NoError(t, c.SignIn(context.Background(), "alice", "s3cret-pass"))
	return c, store
}

func TestIntegrationExpiredAccessIsRefreshed(t *testing.T) {
	api := startMockAPI(t, false)
	c, store := signedInClient(t, api)
	ctx := context.Background()

	created, err := apiclient.Post[itemrepo.Item](ctx, c, "/api/items/", map[string]string{"name": "first"})
	require.NoError(t, err)
	require.Equal(t, "first", created.Name)

	before := store.Snapshot()
	api.clock.Advance(2 * time.Minute)

	items, err := apiclient.Get[[]itemrepo.Item](ctx, c, "/api/items/")
	require.NoError(t, err)
	require.Len(t, items, 1)

	after := store.Snapshot()
	require.NotEqual(t, before.Access, after.Access)
	require.Equal(t, before.Refresh, after.Refresh)
	require.EqualValues(t, 1, api.server.Stats().Refreshes)
}

func TestIntegrationRotation(t *testing.T) {
	api := startMockAPI(t, true)
	c, store := signedInClient(t, api)
	ctx := context.Background()

	before := store.Snapshot()
	require.NoError(t, api.server.RevokeAccessToken(before.Access))

	_, err := apiclient.Get[[]itemrepo.Item](ctx, c, "/api/items/")
	require.NoError(t, err)

	after := store.Snapshot()
	require.NotEqual(t, before.Access, after.Access)
	require.NotEqual(t, before.Refresh, after.Refresh)
	require.NotEmpty(t, after.Refresh)
}

func TestIntegrationRevokedRefreshEndsSession(t *testing.T) {
	api := startMockAPI(t, false)
	c, store := signedInClient(t, api)
	ctx := context.Background()

	pair := store.Snapshot()
	api.server.RevokeRefreshToken(pair.Refresh)
	require.NoError(t, api.server.RevokeAccessToken(pair.Access))

	_, err := apiclient.Get[[]itemrepo.Item](ctx, c, "/api/items/")
	require.True(t, apiclient.IsUnauthenticated(err))
	require.Equal(t, credentials.Pair{}, store.Snapshot())
	require.EqualValues(t, 1, api.server.Stats().RefreshRejected)
}

func TestIntegrationConcurrentExpiry(t *testing.T) {
	const callers = 6

	api := startMockAPI(t, true)
	c, _ := signedInClient(t, api)
	ctx := context.Background()
	api.clock.Advance(2 * time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := apiclient.Get[[]itemrepo.Item](ctx, c, "/api/items/")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Late callers find the replaced credential in the store and retry
	// without a second refresh, so the rotated-out token is never replayed.
	require.EqualValues(t, 1, api.server.Stats().Refreshes)
	require.Zero(t, api.server.Stats().RefreshRejected)
}

func TestIntegrationUploadAndDelete(t *testing.T) {
	api := startMockAPI(t, false)
	c, store := signedInClient(t, api)
	ctx := context.Background()

	require.NoError(t, api.server.RevokeAccessToken(store.Snapshot().Access))
	form := apiclient.NewFormData().
		AddField("title", "notes").
		AddFile("file", "notes.txt", "text/plain", []byte("hello"))
	result, err := apiclient.PostFormData[server.UploadResult](ctx, c, "/api/uploads/", form)
	require.NoError(t, err)
	require.Equal(t, "notes", result.Fields["title"])
	require.Len(t, result.Files, 1)
	require.EqualValues(t, 5, result.Files[0].Size)

	created, err := apiclient.Post[itemrepo.Item](ctx, c, "/api/items/", map[string]string{"name": "tmp"})
	require.NoError(t, err)
	path := "/api/items/" + strconv.FormatInt(created.ID, 10) + "/"

	patched, err := apiclient.Patch[itemrepo.Item](ctx, c, path, map[string]string{"description": "x"})
	require.NoError(t, err)
	require.Equal(t, "x", patched.Description)

	_, err = apiclient.Delete[any](ctx, c, path)
	require.NoError(t, err)

	_, err = apiclient.Get[itemrepo.Item](ctx, c, path)
	apiErr, ok := apiclient.AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, apiclient.KindHTTPError, apiErr.Kind)
	require.Equal(t, 404, apiErr.Status)
	require.Equal(t, "Not found.", apiErr.Message)
}
