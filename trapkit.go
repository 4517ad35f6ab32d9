// Package trapkit provides the main entry point for folding new trial data
// into a cognitive-trap knowledge base.
//
// A run reads one or more trial batches (CSV or XLSX), reduces them to
// per-model pass rates, and merges those rates into the existing traps.json
// document. The merge is idempotent: running the same batch twice leaves the
// document unchanged, and existing model results are never overwritten.
//
// Example usage:
//
//	// Create a client with the embedded identity tables
//	tk, err := trapkit.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Register event hooks
//	tk.OnModelAdded(func(testID string, entry kb.ModelTestResult) {
//	    log.Printf("%s: added %s", testID, entry.Model)
//	})
//
//	// Run the pipeline
//	result, err := tk.Update(ctx,
//	    trapkit.WithDocument("traps.json"),
//	    trapkit.WithTrials("anthropic.csv", "openai.csv", "google.xlsx"),
//	    trapkit.WithContribution(contribution),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, t := range result.Merge.Tests {
//	    fmt.Println(t)
//	}
package trapkit

import (
	"github.com/agentstation/trapkit/pkg/errors"
	"github.com/agentstation/trapkit/pkg/identity"
	"github.com/agentstation/trapkit/pkg/logging"
)

// Compile-time interface check to ensure proper implementation.
var _ Tables = (*client)(nil)

// Tables provides access to the identity tables in use.
type Tables interface {
	Resolver() identity.Resolver
}

// Resolver returns the identity resolver the client merges with.
func (c *client) Resolver() identity.Resolver {
	return c.resolver
}

// Client runs aggregation and merge pipelines against a knowledge base.
type Client interface {

	// Tables provides the identity tables
	Tables

	// Updater runs the full read, aggregate, merge and save pipeline
	Updater

	// Aggregator reduces trial batches without touching a document
	Aggregator

	// Validator checks a document without writing it
	Validator

	// Persistence restores documents from backups
	Persistence

	// Hooks provides access to event callback registration
	Hooks
}

// client is the internal implementation of the Client interface.
type client struct {

	// options are the configured options for the client
	options *options

	// resolver maps raw keys to canonical identities
	resolver identity.Resolver

	// hooks are the registered merge callbacks
	hooks *hooks
}

// New creates a new Client instance with the given options.
func New(opts ...Option) (Client, error) {
	options, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	c := &client{
		options: options,
		hooks:   newHooks(),
	}

	switch {
	case options.resolver != nil:
		c.resolver = options.resolver
		logging.Debug().Msg("Using injected identity resolver")
	case options.tablesPath != "":
		table, err := identity.Load(options.tablesPath)
		if err != nil {
			return nil, errors.WrapResource("load", "tables", options.tablesPath, err)
		}
		c.resolver = table
		logging.Debug().Str("path", options.tablesPath).
			Str("version", table.Version()).
			Int("models", len(table.Models())).
			Msg("Identity tables loaded")
	default:
		table, err := identity.Default()
		if err != nil {
			return nil, errors.WrapResource("load", "tables", "embedded", err)
		}
		c.resolver = table
		logging.Debug().Str("version", table.Version()).
			Int("models", len(table.Models())).
			Msg("Embedded identity tables loaded")
	}

	return c, nil
}
