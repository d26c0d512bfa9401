package config

import "time"

type Config interface {
	EnvConfig
	ClientConfig
	ServerConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

// ClientConfig is read by the API client and the CLI.
type ClientConfig interface {
	GetBaseURL() string
	GetSignInPath() string
	GetRefreshPath() string
	GetHTTPTimeout() time.Duration
	GetCredentialsFile() string
	GetCredentialsPassphrase() string
}

// ServerConfig is read by the mock API backend.
type ServerConfig interface {
	GetPort() string
	GetJWTSecret() string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenLength() int
	GetRotateRefreshTokens() bool
	GetRefreshTokenTTL() time.Duration
	GetSeedUsername() string
	GetSeedPassword() string
}

type mainConfig struct {
	EnvVars
	Client
	Server
}

func New() Config {
	return mainConfig{}
}

// NewWithProfile layers a YAML profile over the environment. Values set in the
// profile win over environment variables and defaults.
func NewWithProfile(p *Profile) Config {
	return mainConfig{
		EnvVars: EnvVars{profile: p},
		Client:  Client{profile: p},
		Server:  Server{profile: p},
	}
}
