package tokenmodel

import "github.com/jrsteele09/go-auth-client/internal/utils"

// TokenResponse is the body returned by both the token issuance endpoint and
// the token refresh endpoint.
type TokenResponse struct {
	// Access is the short-lived bearer credential.
	// Example: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."
	// Usage: Sent on every request as "Authorization: Bearer <access>"
	// Presence: Always on sign-in; a refresh response without it is unusable
	Access *string `json:"access,omitempty"`

	// Refresh is the longer-lived credential used only to mint a new access credential.
	// Example: "9f2c0d4b5e..."
	// Presence: Always on sign-in; on refresh only when the server rotates it
	Refresh *string `json:"refresh,omitempty"`
}

// AccessToken returns the access credential, or "" when absent or blank.
func (t TokenResponse) AccessToken() string {
	return utils.TrimmedValue(t.Access)
}

// RotatedRefresh returns the new refresh credential, or "" when the server did
// not rotate it. An empty value means the stored refresh credential stays valid.
func (t TokenResponse) RotatedRefresh() string {
	return utils.TrimmedValue(t.Refresh)
}
