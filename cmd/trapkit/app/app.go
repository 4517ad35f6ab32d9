// Package app provides the application context and dependency management
// for the trapkit CLI. It centralizes configuration, logging and the
// trapkit client so commands receive them through application.Application.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/trapkit"
	"github.com/agentstation/trapkit/internal/cmd/application"
	"github.com/agentstation/trapkit/internal/cmd/output"
	"github.com/agentstation/trapkit/pkg/errors"
)

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)

// App represents the trapkit application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Client instance (lazy-initialized, singleton)
	mu     sync.RWMutex
	client trapkit.Client
}

// New creates a new App instance with the given version information.
// The app is initialized with configuration loaded from the environment
// and config file, which can be replaced using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	// Load configuration
	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	// Initialize logger
	app.logger = configureLogging(config)

	// Apply any custom options
	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Settings returns the configuration values commands default to.
func (a *App) Settings() application.Settings {
	return a.config.Settings()
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format, detecting it from the
// terminal when none is set.
func (a *App) OutputFormat() string {
	return string(output.DetectFormat(a.config.Format))
}

// Client returns a trapkit client. Without options it returns the cached
// default instance, creating it lazily; with options it creates a new one.
func (a *App) Client(opts ...trapkit.Option) (trapkit.Client, error) {
	if len(opts) > 0 {
		tk, err := trapkit.New(append(a.clientOptions(), opts...)...)
		if err != nil {
			return nil, errors.WrapResource("create", "client", "with custom options", err)
		}
		return tk, nil
	}

	a.mu.RLock()
	if a.client != nil {
		tk := a.client
		a.mu.RUnlock()
		return tk, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.client != nil {
		return a.client, nil
	}

	tk, err := trapkit.New(a.clientOptions()...)
	if err != nil {
		return nil, errors.WrapResource("create", "client", "", err)
	}
	a.client = tk
	return tk, nil
}

// Shutdown performs graceful shutdown of the application.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	a.client = nil
	a.mu.Unlock()
	return nil
}

// clientOptions constructs client options from the app configuration.
func (a *App) clientOptions() []trapkit.Option {
	opts := []trapkit.Option{
		trapkit.WithColumns(a.config.Columns),
	}
	if a.config.Tables != "" {
		opts = append(opts, trapkit.WithTables(a.config.Tables))
	}
	if a.config.Sheet != "" {
		opts = append(opts, trapkit.WithSheet(a.config.Sheet))
	}
	return opts
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		a.logger = configureLogging(config)
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClient sets a custom client instance (useful for testing).
func WithClient(tk trapkit.Client) Option {
	return func(a *App) error {
		a.client = tk
		return nil
	}
}
