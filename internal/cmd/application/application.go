// Package application provides the application interface for trapkit commands.
//
// The Application interface defines the contract between the application layer and
// command implementations, enabling dependency injection and testability.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            tk, err := app.Client()
//	            if err != nil {
//	                return err
//	            }
//	            // ... use tk
//	            return nil
//	        },
//	    }
//	}
//
// Testing with Mocks:
//
//	mock := &application.Mock{
//	    ClientFunc: func(opts ...trapkit.Option) (trapkit.Client, error) {
//	        return trapkit.New(opts...)
//	    },
//	}
//	cmd := NewCommand(mock)
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/trapkit"
	"github.com/agentstation/trapkit/pkg/reconciler"
	"github.com/agentstation/trapkit/pkg/trials"
)

// Application provides the application interface that commands need.
// The App struct from cmd/trapkit/app implements this interface.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Client returns a trapkit client configured from the application settings.
	// When called without options, returns the default cached instance.
	// When called with options, creates a new instance (no caching).
	Client(opts ...trapkit.Option) (trapkit.Client, error)

	// Settings returns the resolved configuration values commands default to.
	Settings() Settings

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml, markdown).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}

// Settings are the configuration values commands use as flag defaults.
// They are resolved from flags, TRAPKIT_* environment variables, .env files
// and the config file, in that order.
type Settings struct {
	Document     string
	Tables       string
	Trials       []string
	Columns      trials.Columns
	Sheet        string
	Contribution reconciler.Contribution
	Backup       bool
	BackupDir    string
}
