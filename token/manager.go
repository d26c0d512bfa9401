package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/pkg/errors"
)

const defaultAccessTokenExpiry = 5 * time.Minute

// TokenIntrospection is the verified content of an access token.
type TokenIntrospection struct {
	Active bool      `json:"active"`
	Sub    string    `json:"sub,omitempty"` // Users unique ID
	Jti    string    `json:"jti,omitempty"`
	Iss    string    `json:"iss,omitempty"`
	Iat    time.Time `json:"iat,omitempty"`
	Exp    time.Time `json:"exp,omitempty"`
}

// Manager mints and verifies the backend's access tokens.
type Manager struct {
	signer            Signer
	issuer            string
	denylist          Denylist
	accessTokenExpiry time.Duration
	nowFunc           func() time.Time
}

type ManagerOption func(*Manager)

func WithAccessTokenExpiry(expiry time.Duration) ManagerOption {
	return func(m *Manager) {
		if expiry > 0 {
			m.accessTokenExpiry = expiry
		}
	}
}

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func WithIssuer(issuer string) ManagerOption {
	return func(m *Manager) {
		m.issuer = issuer
	}
}

func WithDenylist(d Denylist) ManagerOption {
	return func(m *Manager) {
		m.denylist = d
	}
}

func New(signer Signer, options ...ManagerOption) *Manager {
	m := &Manager{
		signer:            signer,
		issuer:            "mockapi",
		denylist:          NewMemoryDenylist(),
		accessTokenExpiry: defaultAccessTokenExpiry,
		nowFunc:           time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// CreateAccessToken signs a short lived access token for userID.
func (m *Manager) CreateAccessToken(userID string) (string, error) {
	now := m.nowFunc()
	claims := jwt.MapClaims{
		"iss":        m.issuer,
		"sub":        userID,
		"iat":        now.Unix(),
		"exp":        now.Add(m.accessTokenExpiry).Unix(),
		"jti":        uuid.New().String(), // Unique token ID for revocation
		"token_type": "access",
	}
	signed, err := m.signer.Sign(claims)
	if err != nil {
		return "", errors.Wrap(err, "Manager.CreateAccessToken Sign")
	}
	return signed, nil
}

// Validate verifies rawToken and reports why it is unusable with
// ErrInvalidToken, ErrTokenExpired or ErrTokenRevoked.
func (m *Manager) Validate(rawToken string) (*TokenIntrospection, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, apperrors.ErrInvalidToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{m.signer.Alg()}),
		jwt.WithTimeFunc(m.nowFunc),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
	)
	claims := jwt.MapClaims{}
	tok, err := parser.ParseWithClaims(rawToken, claims, m.signer.Keyfunc)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, apperrors.ErrTokenExpired
	case err != nil || !tok.Valid:
		return nil, apperrors.ErrInvalidToken
	}

	jti, _ := claims["jti"].(string)
	if jti != "" && m.denylist.Denied(jti, m.nowFunc()) {
		return nil, apperrors.ErrTokenRevoked
	}

	result := &TokenIntrospection{Active: true, Jti: jti}
	result.Sub, _ = claims.GetSubject()
	result.Iss, _ = claims.GetIssuer()
	if iat, _ := claims.GetIssuedAt(); iat != nil {
		result.Iat = iat.Time
	}
	if exp, _ := claims.GetExpirationTime(); exp != nil {
		result.Exp = exp.Time
	}
	return result, nil
}

// RevokeAccessToken blocks a still valid access token until it expires.
// Entries for tokens that have since expired are pruned on the way.
func (m *Manager) RevokeAccessToken(rawToken string) error {
	info, err := m.Validate(rawToken)
	if err != nil {
		return errors.Wrap(err, "Manager.RevokeAccessToken Validate")
	}
	if info.Jti == "" {
		return errors.New("token: access token has no jti")
	}
	now := m.nowFunc()
	m.denylist.Prune(now)
	m.denylist.Deny(info.Jti, info.Exp)
	return nil
}
