package config

import (
	"strings"
	"time"
)

const (
	baseURLVar      = "API_BASE_URL"
	signInPathVar   = "API_SIGNIN_PATH"
	refreshPathVar  = "API_REFRESH_PATH"
	httpTimeoutVar  = "HTTP_TIMEOUT"
	credsFileVar    = "CREDENTIALS_FILE"
	credsPassVar    = "CREDENTIALS_PASSPHRASE"
	defaultSignIn   = "/api/token/"
	defaultRefresh  = "/api/token/refresh/"
	defaultCredFile = ".apiclient-credentials"
)

type Client struct {
	profile *Profile
}

var _ ClientConfig = Client{}

// GetBaseURL returns the API root without a trailing slash (e.g. "https://api.example.com")
func (c Client) GetBaseURL() string {
	url := GetEnv(baseURLVar, "http://localhost:8080")
	if c.profile != nil && c.profile.BaseURL != "" {
		url = c.profile.BaseURL
	}
	return strings.TrimRight(url, "/")
}

func (c Client) GetSignInPath() string {
	if c.profile != nil && c.profile.SignInPath != "" {
		return c.profile.SignInPath
	}
	return GetEnv(signInPathVar, defaultSignIn)
}

func (c Client) GetRefreshPath() string {
	if c.profile != nil && c.profile.RefreshPath != "" {
		return c.profile.RefreshPath
	}
	return GetEnv(refreshPathVar, defaultRefresh)
}

// GetHTTPTimeout is applied to the http.Client, not to the request core.
// Zero means no timeout.
func (c Client) GetHTTPTimeout() time.Duration {
	if c.profile != nil && c.profile.HTTPTimeout != "" {
		if d, err := time.ParseDuration(c.profile.HTTPTimeout); err == nil {
			return d
		}
	}
	return GetDurationEnv(httpTimeoutVar, 30*time.Second)
}

func (c Client) GetCredentialsFile() string {
	if c.profile != nil && c.profile.CredentialsFile != "" {
		return c.profile.CredentialsFile
	}
	return GetEnv(credsFileVar, defaultCredFile)
}

// GetCredentialsPassphrase is never read from the profile file.
func (Client) GetCredentialsPassphrase() string {
	return GetEnv(credsPassVar, "")
}
