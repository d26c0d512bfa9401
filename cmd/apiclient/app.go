package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/credentials/filestore"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/internal/logging"
	"github.com/jrsteele09/go-auth-client/internal/utils"
	"github.com/jrsteele09/go-auth-client/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// app holds the flags shared by every command and builds the client from them.
type app struct {
	profilePath     string
	baseURL         string
	credentialsFile string
	logLevel        string
	noRefresh       bool
	headers         []string
	metricsFile     string

	registry *prometheus.Registry

	// Overridable in tests.
	store credentials.Store
	doer  apiclient.HTTPDoer
}

func (a *app) config() (config.Config, error) {
	if a.profilePath == "" {
		return config.New(), nil
	}
	profile, err := config.LoadProfile(a.profilePath)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return config.NewWithProfile(profile), nil
}

func (a *app) client() (*apiclient.Client, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}

	logger := logging.NewWithWriter(os.Stderr, utils.FirstNonEmpty(a.logLevel, cfg.GetLogLevel()), cfg.GetEnv())
	if a.logLevel == "" && cfg.GetEnv() != "DEV" {
		logger = logger.Level(zerolog.WarnLevel)
	}

	store := a.store
	if store == nil {
		passphrase := cfg.GetCredentialsPassphrase()
		if passphrase == "" {
			return nil, errors.New("CREDENTIALS_PASSPHRASE must be set to read or write the credentials file")
		}
		store, err = filestore.NewStore(utils.FirstNonEmpty(a.credentialsFile, cfg.GetCredentialsFile()), passphrase)
		if err != nil {
			return nil, err
		}
		a.store = store
	}

	doer := a.doer
	if doer == nil {
		doer = &http.Client{Timeout: cfg.GetHTTPTimeout()}
	}

	options := []apiclient.Option{
		apiclient.WithHTTPClient(doer),
		apiclient.WithSignInPath(cfg.GetSignInPath()),
		apiclient.WithRefreshPath(cfg.GetRefreshPath()),
		apiclient.WithLogger(logger),
	}
	if a.metricsFile != "" {
		a.registry = prometheus.NewRegistry()
		recorder, err := metrics.NewPrometheus(a.registry)
		if err != nil {
			return nil, err
		}
		options = append(options, apiclient.WithMetrics(recorder))
	}

	return apiclient.New(utils.FirstNonEmpty(a.baseURL, cfg.GetBaseURL()), store, options...)
}

// writeMetrics dumps the collected counters in the text exposition format,
// suitable for the node_exporter textfile collector.
func (a *app) writeMetrics() error {
	if a.registry == nil {
		return nil
	}
	return prometheus.WriteToTextfile(a.metricsFile, a.registry)
}

func (a *app) callOptions() ([]apiclient.CallOption, error) {
	opts := []apiclient.CallOption{apiclient.WithAllowRefresh(!a.noRefresh)}
	for _, h := range a.headers {
		key, value, err := splitPair(h, ":")
		if err != nil {
			return nil, fmt.Errorf("--header %q: %w", h, err)
		}
		opts = append(opts, apiclient.WithHeader(key, value))
	}
	return opts, nil
}
