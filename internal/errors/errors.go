package errors

import "errors"

// Common error types shared by the client, the credential stores and the mock backend
var (
	// Credential errors
	ErrNotSignedIn          = errors.New("not signed in")
	ErrInvalidRefreshToken  = errors.New("invalid refresh token")
	ErrWrongPassphrase      = errors.New("credential file passphrase mismatch")
	ErrCorruptCredentialBox = errors.New("credential file is corrupt")

	// Token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")

	// Client construction errors
	ErrMissingBaseURL = errors.New("base url is required")
	ErrMissingStore   = errors.New("credential store is required")

	ErrNotFound = errors.New("not found")
)
