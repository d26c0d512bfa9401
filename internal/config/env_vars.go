package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	appNameVar  = "APP_NAME"
	envVar      = "ENV"
	logLevelVar = "LOG_LEVEL"
)

type EnvVars struct {
	profile *Profile
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	if e.profile != nil && e.profile.AppName != "" {
		return e.profile.AppName
	}
	return GetEnv(appNameVar, "Go API Client")
}

func (e EnvVars) GetEnv() string {
	if e.profile != nil && e.profile.Env != "" {
		return strings.ToUpper(e.profile.Env)
	}
	return strings.ToUpper(GetEnv(envVar, "DEV"))
}

func (e EnvVars) GetLogLevel() string {
	if e.profile != nil && e.profile.LogLevel != "" {
		return e.profile.LogLevel
	}
	return GetEnv(logLevelVar, "info")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetDurationEnv parses values such as "30s" or "15m". Unparseable values fall
// back to the default.
func GetDurationEnv(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func GetBoolEnv(envVar string, defaultValue bool) bool {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func GetIntEnv(envVar string, defaultValue int) int {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return i
}
