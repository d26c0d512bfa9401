package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-auth-client/internal/utils"
	"github.com/jrsteele09/go-auth-client/tokenmodel"
)

// SignInHandler exchanges a username and password for an access/refresh pair
func (s *Server) SignInHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.stats.signIns.Add(1)

		var req tokenmodel.SignInRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		username := strings.TrimSpace(req.Username)
		if username == "" || req.Password == "" {
			writeDetail(w, http.StatusBadRequest, "username and password are required", "invalid")
			return
		}

		// Don't reveal if user exists or not
		user, err := s.users.GetByUsername(username)
		if err != nil || user.Blocked || !user.CheckPassword(req.Password) {
			writeDetail(w, http.StatusUnauthorized, "No active account found with the given credentials", "no_active_account")
			return
		}

		access, err := s.tokens.CreateAccessToken(user.ID)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to create access token")
			writeDetail(w, http.StatusInternalServerError, "Internal server error.", "")
			return
		}
		refreshToken, err := s.refresh.Create(user.ID)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to create refresh token")
			writeDetail(w, http.StatusInternalServerError, "Internal server error.", "")
			return
		}
		_ = s.users.SetLastLogin(user.Username, s.now())

		s.logger.Info().Str("user_id", user.ID).Msg("signed in")
		writeJSON(w, http.StatusOK, tokenmodel.TokenResponse{
			Access:  utils.Ptr(access),
			Refresh: utils.Ptr(refreshToken),
		})
	}
}

// RefreshHandler trades a refresh token for a new access token. With rotation
// enabled the response also carries a replacement refresh token.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.stats.refreshes.Add(1)

		var req tokenmodel.RefreshRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Refresh) == "" {
			writeJSON(w, http.StatusBadRequest, map[string][]string{"refresh": {"This field is required."}})
			return
		}

		userID, rotated, err := s.refresh.Exchange(req.Refresh)
		if err == nil {
			err = s.checkActive(userID)
		}
		if err != nil {
			s.stats.refreshRejected.Add(1)
			s.logger.Debug().Err(err).Msg("refresh rejected")
			writeDetail(w, http.StatusUnauthorized, "Token is invalid or expired", "token_not_valid")
			return
		}

		access, err := s.tokens.CreateAccessToken(userID)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to create access token")
			writeDetail(w, http.StatusInternalServerError, "Internal server error.", "")
			return
		}

		resp := tokenmodel.TokenResponse{Access: utils.Ptr(access)}
		if rotated != "" {
			resp.Refresh = utils.Ptr(rotated)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

var errBlocked = errors.New("user blocked")

// checkActive rejects refreshes for deleted or blocked users and drops their
// refresh token.
func (s *Server) checkActive(userID string) error {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return err
	}
	if user.Blocked {
		s.refresh.RevokeUser(userID)
		return errBlocked
	}
	return nil
}
