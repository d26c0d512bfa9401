package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync/atomic"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/tokenmodel"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const refreshKey = "refresh"

// RefreshCoordinator owns the single in-flight refresh of the access
// credential. Concurrent callers share one network call and one result; once
// it resolves the next caller starts a fresh attempt.
type RefreshCoordinator struct {
	store      credentials.Store
	doer       HTTPDoer
	refreshURL string
	logger     zerolog.Logger
	metrics    Recorder

	group    singleflight.Group
	inFlight atomic.Bool
}

type CoordinatorOption func(*RefreshCoordinator)

func WithCoordinatorLogger(logger zerolog.Logger) CoordinatorOption {
	return func(rc *RefreshCoordinator) {
		rc.logger = logger
	}
}

func WithCoordinatorMetrics(r Recorder) CoordinatorOption {
	return func(rc *RefreshCoordinator) {
		if r != nil {
			rc.metrics = r
		}
	}
}

func NewRefreshCoordinator(store credentials.Store, doer HTTPDoer, refreshURL string, options ...CoordinatorOption) *RefreshCoordinator {
	rc := &RefreshCoordinator{
		store:      store,
		doer:       doer,
		refreshURL: refreshURL,
		logger:     zerolog.Nop(),
		metrics:    NopRecorder{},
	}
	for _, opt := range options {
		opt(rc)
	}
	if rc.doer == nil {
		rc.doer = http.DefaultClient
	}
	return rc
}

// InFlight reports whether a refresh is currently running.
func (rc *RefreshCoordinator) InFlight() bool {
	return rc.inFlight.Load()
}

// RefreshAccessToken returns true only when a usable access credential is now
// stored. Rejections, network failures and malformed responses all resolve to
// false with a nil error. A non-nil error means the credential store failed,
// or ctx ended while waiting for the shared refresh.
//
// The shared refresh runs detached from the caller's cancellation so one
// abandoned caller cannot fail the others.
func (rc *RefreshCoordinator) RefreshAccessToken(ctx context.Context) (bool, error) {
	ch := rc.group.DoChan(refreshKey, func() (any, error) {
		rc.inFlight.Store(true)
		defer rc.inFlight.Store(false)
		return rc.refresh(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return false, res.Err
		}
		return res.Val.(bool), nil
	}
}

func (rc *RefreshCoordinator) refresh(ctx context.Context) (bool, error) {
	refreshToken, err := rc.store.GetRefresh(ctx)
	if err != nil {
		rc.metrics.ObserveRefresh(RefreshStoreError)
		return false, fmt.Errorf("apiclient: read refresh credential: %w", err)
	}
	if refreshToken == "" {
		rc.logger.Debug().Msg("refresh skipped: no refresh credential")
		rc.metrics.ObserveRefresh(RefreshNoCredential)
		return false, nil
	}

	rc.logger.Debug().Str("url", rc.refreshURL).Msg("refreshing access credential")
	status, raw, err := postJSON(ctx, rc.doer, rc.refreshURL, tokenmodel.RefreshRequest{Refresh: refreshToken})
	if err != nil {
		rc.logger.Warn().Err(err).Msg("refresh request failed")
		rc.metrics.ObserveRefresh(RefreshNetworkError)
		return false, nil
	}

	if !isSuccess(status) {
		rc.logger.Info().Int("status", status).Msg("refresh rejected, clearing credentials")
		if err := credentials.ClearPair(ctx, rc.store); err != nil {
			rc.metrics.ObserveRefresh(RefreshStoreError)
			return false, fmt.Errorf("apiclient: clear rejected credentials: %w", err)
		}
		rc.metrics.ObserveRefresh(RefreshRejected)
		return false, nil
	}

	var tokens tokenmodel.TokenResponse
	if err := json.Unmarshal(raw, &tokens); err != nil || tokens.AccessToken() == "" {
		rc.logger.Warn().Int("status", status).Strs("fields", bodyFields(raw)).Msg("refresh response has no access credential")
		rc.metrics.ObserveRefresh(RefreshInvalidResponse)
		return false, nil
	}

	if err := rc.store.SetAccess(ctx, tokens.AccessToken()); err != nil {
		rc.metrics.ObserveRefresh(RefreshStoreError)
		return false, fmt.Errorf("apiclient: store access credential: %w", err)
	}
	if rotated := tokens.RotatedRefresh(); rotated != "" {
		if err := rc.store.SetRefresh(ctx, rotated); err != nil {
			rc.metrics.ObserveRefresh(RefreshStoreError)
			return false, fmt.Errorf("apiclient: store refresh credential: %w", err)
		}
	}

	rc.logger.Debug().Bool("rotated", tokens.RotatedRefresh() != "").Msg("access credential refreshed")
	rc.metrics.ObserveRefresh(RefreshSuccess)
	return true, nil
}

// postJSON sends an unauthenticated JSON POST and returns the status and the
// raw body. Only transport failures are returned as errors.
func postJSON(ctx context.Context, doer HTTPDoer, url string, payload any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("apiclient: encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("apiclient: create request: %w", err)
	}
	req.Header.Set(headerAccept, mimeJSON)
	req.Header.Set(headerContentType, mimeJSON)

	resp, err := doer.Do(req)
	if err != nil {
		return 0, nil, err
	}
	raw, err := readBody(resp)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("apiclient: read response: %w", err)
	}
	return resp.StatusCode, raw, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// bodyFields lists the top-level keys of a JSON object body. Values are left
// out since they may carry credentials.
func bodyFields(raw []byte) []string {
	obj, ok := DecodeBody(raw).(map[string]any)
	if !ok {
		return nil
	}
	fields := make([]string, 0, len(obj))
	for k := range obj {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}
