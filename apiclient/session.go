package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/tokenmodel"
)

// SignIn exchanges a username and password for a credential pair and stores
// it. A rejected or malformed exchange leaves the store untouched; a store
// failure while saving clears both credentials.
func (c *Client) SignIn(ctx context.Context, username, password string) error {
	started := time.Now()
	status, raw, err := postJSON(ctx, c.http, c.url(c.signInPath), tokenmodel.SignInRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		apiErr := newNetworkError(err)
		c.observe(http.MethodPost, status, apiErr, started)
		return apiErr
	}
	if !isSuccess(status) {
		apiErr := newStatusError(status, DecodeBody(raw))
		c.observe(http.MethodPost, status, apiErr, started)
		return apiErr
	}

	var tokens tokenmodel.TokenResponse
	if err := json.Unmarshal(raw, &tokens); err != nil || tokens.AccessToken() == "" || tokens.RotatedRefresh() == "" {
		body := DecodeBody(raw)
		apiErr := &APIError{
			Kind:    KindDecodeFallback,
			Status:  status,
			Message: "sign-in response is missing credentials",
			Body:    body,
			Err:     err,
		}
		c.observe(http.MethodPost, status, apiErr, started)
		return apiErr
	}
	c.observe(http.MethodPost, status, nil, started)

	if err := credentials.SavePair(ctx, c.store, credentials.Pair{
		Access:  tokens.AccessToken(),
		Refresh: tokens.RotatedRefresh(),
	}); err != nil {
		// A half-written pair would pair the new access credential with a
		// stale refresh credential.
		if clearErr := credentials.ClearPair(ctx, c.store); clearErr != nil {
			c.logger.Warn().Err(clearErr).Msg("clear partially stored credentials")
		}
		return err
	}
	c.logger.Info().Str("username", username).Msg("signed in")
	return nil
}

// SignOut clears both credentials. Callers must not sign out while a refresh
// they care about is still in flight; the last write wins.
func (c *Client) SignOut(ctx context.Context) error {
	if err := credentials.ClearPair(ctx, c.store); err != nil {
		return err
	}
	c.logger.Info().Msg("signed out")
	return nil
}

// SignedIn reports whether an access or refresh credential is stored.
func (c *Client) SignedIn(ctx context.Context) (bool, error) {
	pair, err := credentials.LoadPair(ctx, c.store)
	if err != nil {
		return false, err
	}
	return pair.Access != "" || pair.Refresh != "", nil
}
