package apiclient

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/tokenmodel"
	"golang.org/x/oauth2"
)

// expiryLeeway treats a JWT access credential as expired slightly early.
const expiryLeeway = 10 * time.Second

// TokenSource exposes the stored session as an oauth2.TokenSource for SDKs
// that authenticate their own requests. A missing or expired JWT credential is
// refreshed through the shared coordinator.
func (c *Client) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &storeTokenSource{ctx: ctx, client: c, now: time.Now}
}

type storeTokenSource struct {
	ctx    context.Context
	client *Client
	now    func() time.Time
}

func (s *storeTokenSource) Token() (*oauth2.Token, error) {
	access, err := s.client.store.GetAccess(s.ctx)
	if err != nil {
		return nil, fmt.Errorf("apiclient: read access credential: %w", err)
	}

	if access == "" || s.expired(access) {
		ok, err := s.client.refresher.RefreshAccessToken(s.ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperrors.ErrNotSignedIn
		}
		if access, err = s.client.store.GetAccess(s.ctx); err != nil {
			return nil, fmt.Errorf("apiclient: read access credential: %w", err)
		}
	}

	token := &oauth2.Token{AccessToken: access, TokenType: "Bearer"}
	if exp, ok := tokenmodel.ExpiresAt(access); ok {
		token.Expiry = exp
	}
	return token, nil
}

func (s *storeTokenSource) expired(access string) bool {
	exp, ok := tokenmodel.ExpiresAt(access)
	return ok && !s.now().Add(expiryLeeway).Before(exp)
}
