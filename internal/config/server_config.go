package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	portVar          = "PORT"
	jwtSecretVar     = "JWT_SECRET"
	accessTTLVar     = "ACCESS_TOKEN_TTL"
	refreshLenVar    = "REFRESH_TOKEN_LENGTH"
	rotateRefreshVar = "ROTATE_REFRESH"
	refreshTTLVar    = "REFRESH_TOKEN_TTL"
	seedUserVar      = "SEED_USERNAME"
	seedPasswordVar  = "SEED_PASSWORD"
)

type Server struct {
	profile *Profile
}

var _ ServerConfig = Server{}

func (s Server) GetPort() string {
	port := GetEnv(portVar, "8080")
	if s.profile != nil && s.profile.Server.Port != "" {
		port = s.profile.Server.Port
	}
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (Server) GetJWTSecret() string {
	return GetEnv(jwtSecretVar, "dev-only-secret")
}

func (s Server) GetAccessTokenTTL() time.Duration {
	if s.profile != nil && s.profile.Server.AccessTokenTTL != "" {
		if d, err := time.ParseDuration(s.profile.Server.AccessTokenTTL); err == nil {
			return d
		}
	}
	return GetDurationEnv(accessTTLVar, 5*time.Minute)
}

func (Server) GetRefreshTokenLength() int {
	return GetIntEnv(refreshLenVar, 32) // 32 bytes = 256 bits
}

func (s Server) GetRotateRefreshTokens() bool {
	if s.profile != nil && s.profile.Server.RotateRefresh != nil {
		return *s.profile.Server.RotateRefresh
	}
	return GetBoolEnv(rotateRefreshVar, false)
}

func (s Server) GetRefreshTokenTTL() time.Duration {
	if s.profile != nil && s.profile.Server.RefreshTokenTTL != "" {
		if d, err := time.ParseDuration(s.profile.Server.RefreshTokenTTL); err == nil {
			return d
		}
	}
	return GetDurationEnv(refreshTTLVar, 24*time.Hour)
}

// GetSeedUsername is the account the mock backend creates at startup.
func (s Server) GetSeedUsername() string {
	if s.profile != nil && s.profile.Server.SeedUsername != "" {
		return s.profile.Server.SeedUsername
	}
	return GetEnv(seedUserVar, "demo")
}

func (Server) GetSeedPassword() string {
	return GetEnv(seedPasswordVar, "demo-password")
}
