package trials

import (
	"github.com/agentstation/trapkit/pkg/errors"
)

// Option configures how batches are read.
type Option func(*options) error

type options struct {
	columns Columns
	sheet   string
}

func newOptions(opts ...Option) (*options, error) {
	o := &options{columns: DefaultColumns()}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithColumns overrides the header names. Empty names keep their defaults.
func WithColumns(c Columns) Option {
	return func(o *options) error {
		c = c.withDefaults()
		if c.Model == c.Test || c.Model == c.Correct || c.Test == c.Correct {
			return errors.NewValidationError("columns", c, "column names must be distinct")
		}
		o.columns = c
		return nil
	}
}

// WithSheet selects the XLSX sheet by name instead of the first sheet.
func WithSheet(name string) Option {
	return func(o *options) error {
		o.sheet = name
		return nil
	}
}
