package tokenmodel

// SignInRequest is the body sent to the token issuance endpoint.
type SignInRequest struct {
	// Username identifies the account.
	// Example: "jane@example.com"
	Username string `json:"username"`

	// Password is the account password.
	// Security: Never log or persist this value
	Password string `json:"password"`
}

// RefreshRequest is the body sent to the token refresh endpoint.
type RefreshRequest struct {
	// Refresh is the stored refresh credential.
	// Behavior: May be rotated by the server; if so the response carries a new one
	Refresh string `json:"refresh"`
}
