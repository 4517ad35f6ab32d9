package trapkit

import (
	"github.com/agentstation/trapkit/pkg/errors"
	"github.com/agentstation/trapkit/pkg/identity"
	"github.com/agentstation/trapkit/pkg/trials"
)

// Option is a function that configures a trapkit client.
type Option func(*options) error

// options holds the client configuration.
type options struct {
	tablesPath string            // identity tables file, empty means embedded
	resolver   identity.Resolver // injected resolver, wins over tablesPath
	columns    trials.Columns    // trial table column names
	sheet      string            // XLSX sheet, empty means first
	provenance bool              // track field provenance during merges
	renames    bool              // apply display name corrections
	backfill   bool              // backfill legacy providers
}

// defaults returns the default client configuration.
func defaults() *options {
	return &options{
		columns:    trials.DefaultColumns(),
		provenance: true,
		renames:    true,
		backfill:   true,
	}
}

// apply applies the given options.
func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithTables loads the identity tables from a YAML file instead of the
// embedded defaults.
func WithTables(path string) Option {
	return func(o *options) error {
		if path == "" {
			return errors.NewValidationError("tables", path, "path cannot be empty")
		}
		o.tablesPath = path
		return nil
	}
}

// WithResolver injects an identity resolver.
func WithResolver(resolver identity.Resolver) Option {
	return func(o *options) error {
		if resolver == nil {
			return errors.NewValidationError("resolver", nil, "resolver cannot be nil")
		}
		o.resolver = resolver
		return nil
	}
}

// WithColumns configures the trial table column names. Empty names keep
// their defaults.
func WithColumns(columns trials.Columns) Option {
	return func(o *options) error {
		o.columns = columns
		return nil
	}
}

// WithSheet selects the XLSX sheet trial rows are read from.
func WithSheet(name string) Option {
	return func(o *options) error {
		o.sheet = name
		return nil
	}
}

// WithProvenance configures whether merges record field provenance.
func WithProvenance(enabled bool) Option {
	return func(o *options) error {
		o.provenance = enabled
		return nil
	}
}

// WithRenames configures whether display name corrections are applied.
func WithRenames(enabled bool) Option {
	return func(o *options) error {
		o.renames = enabled
		return nil
	}
}

// WithBackfill configures whether legacy providers are backfilled.
func WithBackfill(enabled bool) Option {
	return func(o *options) error {
		o.backfill = enabled
		return nil
	}
}

// trialOptions returns the reader options for the configured columns and sheet.
func (o *options) trialOptions() []trials.Option {
	opts := []trials.Option{trials.WithColumns(o.columns)}
	if o.sheet != "" {
		opts = append(opts, trials.WithSheet(o.sheet))
	}
	return opts
}
