package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is an optional YAML overlay for the environment configuration.
//
//	base_url: https://api.example.com
//	http_timeout: 20s
//	server:
//	  port: "9090"
//	  rotate_refresh: true
type Profile struct {
	AppName         string        `yaml:"app_name,omitempty"`
	Env             string        `yaml:"env,omitempty"`
	LogLevel        string        `yaml:"log_level,omitempty"`
	BaseURL         string        `yaml:"base_url,omitempty"`
	SignInPath      string        `yaml:"signin_path,omitempty"`
	RefreshPath     string        `yaml:"refresh_path,omitempty"`
	HTTPTimeout     string        `yaml:"http_timeout,omitempty"`
	CredentialsFile string        `yaml:"credentials_file,omitempty"`
	Server          ServerProfile `yaml:"server,omitempty"`
}

type ServerProfile struct {
	Port            string `yaml:"port,omitempty"`
	AccessTokenTTL  string `yaml:"access_token_ttl,omitempty"`
	RefreshTokenTTL string `yaml:"refresh_token_ttl,omitempty"`
	RotateRefresh   *bool  `yaml:"rotate_refresh,omitempty"`
	SeedUsername    string `yaml:"seed_username,omitempty"`
}

// LoadProfile reads a YAML profile. A missing file is reported with an error
// satisfying os.IsNotExist so callers can treat it as optional.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseProfile(data)
}

func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("config: parse profile: %w", err)
	}
	return &p, nil
}
