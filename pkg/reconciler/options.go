package reconciler

// options configures a reconciler.
type options struct {
	tracking bool
	renames  bool
	backfill bool
}

func defaultOptions() *options {
	return &options{
		tracking: true,
		renames:  true,
		backfill: true,
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithProvenance enables change-level tracking.
func WithProvenance(enabled bool) Option {
	return func(r *options) error {
		r.tracking = enabled
		return nil
	}
}

// WithRenames toggles applying the resolver's rename patch list before merging.
func WithRenames(enabled bool) Option {
	return func(r *options) error {
		r.renames = enabled
		return nil
	}
}

// WithBackfill toggles the legacy provider backfill pass.
func WithBackfill(enabled bool) Option {
	return func(r *options) error {
		r.backfill = enabled
		return nil
	}
}
