package server

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/go-auth-client/internal/errors"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyUserID stores the authenticated user ID
	ContextKeyUserID ContextKey = "user_id"
)

// RequireAuth is middleware that validates a Bearer access token
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				s.stats.unauthorized.Add(1)
				writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.", "not_authenticated")
				return
			}

			scheme, raw, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") {
				s.stats.unauthorized.Add(1)
				writeDetail(w, http.StatusUnauthorized, "Authorization header must contain a Bearer token.", "bad_authorization_header")
				return
			}

			info, err := s.tokens.Validate(strings.TrimSpace(raw))
			if err != nil {
				s.stats.unauthorized.Add(1)
				s.logger.Debug().Err(err).Msg("access token rejected")
				writeDetail(w, http.StatusUnauthorized, "Given token not valid for any token type", "token_not_valid")
				return
			}

			user, err := s.users.GetByID(info.Sub)
			if err != nil || user.Blocked {
				s.stats.unauthorized.Add(1)
				writeDetail(w, http.StatusUnauthorized, "User not found or inactive.", "user_inactive")
				return
			}

			s.stats.authenticatedOK.Add(1)
			ctx := context.WithValue(r.Context(), ContextKeyUserID, info.Sub)
			next(w, r.WithContext(ctx))
		}
	}
}

func userIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(ContextKeyUserID).(string)
	if !ok || userID == "" {
		return "", apperrors.ErrNotSignedIn
	}
	return userID, nil
}
