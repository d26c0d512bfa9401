package refresh

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/go-auth-client/internal/errors"
)

const (
	defaultTokenLength = 32 // 32 bytes = 256 bits
	defaultExpiry      = 24 * time.Hour
)

// Manager handles refresh token creation, validation, and rotation
type Manager struct {
	repo    Repo
	length  int
	expiry  time.Duration
	rotate  bool
	nowFunc func() time.Time
}

type ManagerOption func(*Manager)

func WithTokenLength(n int) ManagerOption {
	return func(m *Manager) {
		if n > 0 {
			m.length = n
		}
	}
}

func WithExpiry(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.expiry = d
		}
	}
}

// WithRotation makes every successful exchange replace the refresh token.
func WithRotation(rotate bool) ManagerOption {
	return func(m *Manager) {
		m.rotate = rotate
	}
}

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func NewManager(repo Repo, options ...ManagerOption) *Manager {
	m := &Manager{
		repo:    repo,
		length:  defaultTokenLength,
		expiry:  defaultExpiry,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Create issues a new refresh token for userID. A user holds a single refresh
// token, so any previous one stops working.
func (m *Manager) Create(userID string) (string, error) {
	if existing, err := m.repo.GetByUserID(userID); err == nil && existing != nil {
		if err := m.repo.Delete(existing.Token); err != nil {
			return "", fmt.Errorf("failed to delete existing refresh token: %w", err)
		}
	}

	tokenBytes := make([]byte, m.length)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	now := m.nowFunc()
	tokenStr := hex.EncodeToString(tokenBytes)
	if err := m.repo.Upsert(&StoredRefreshToken{
		Token:     tokenStr,
		UserID:    userID,
		Iat:       now,
		ExpiresAt: now.Add(m.expiry),
	}); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}
	return tokenStr, nil
}

// Exchange validates token and returns its user. rotated is the replacement
// token when rotation is enabled, otherwise empty.
func (m *Manager) Exchange(token string) (userID string, rotated string, err error) {
	stored, err := m.repo.Get(token)
	if err != nil || stored == nil {
		return "", "", apperrors.ErrInvalidRefreshToken
	}
	if m.IsExpired(stored) {
		_ = m.repo.Delete(token)
		return "", "", apperrors.ErrInvalidRefreshToken
	}
	if !m.rotate {
		return stored.UserID, "", nil
	}

	rotated, err = m.Create(stored.UserID)
	if err != nil {
		return "", "", err
	}
	return stored.UserID, rotated, nil
}

// Revoke removes token. Unknown tokens are ignored.
func (m *Manager) Revoke(token string) {
	_ = m.repo.Delete(token)
}

// RevokeUser removes the refresh token held by userID, if any.
func (m *Manager) RevokeUser(userID string) {
	if existing, err := m.repo.GetByUserID(userID); err == nil && existing != nil {
		_ = m.repo.Delete(existing.Token)
	}
}

func (m *Manager) IsExpired(rt *StoredRefreshToken) bool {
	return !m.nowFunc().Before(rt.ExpiresAt)
}
