package reconciler

import (
	"strings"

	"github.com/agentstation/trapkit/pkg/errors"
	"github.com/agentstation/trapkit/pkg/kb"
)

// Contribution describes the batch of data a merge run adds.
type Contribution struct {
	ID          string `json:"id" yaml:"id" mapstructure:"id"`
	Contributor string `json:"contributor" yaml:"contributor" mapstructure:"contributor"`
	Date        string `json:"date" yaml:"date" mapstructure:"date"`
	Type        string `json:"type" yaml:"type" mapstructure:"type"`
	Description string `json:"description" yaml:"description" mapstructure:"description"`

	// Source is the provenance text written on every new model result.
	// Empty means Contributor.
	Source string `json:"source,omitempty" yaml:"source,omitempty" mapstructure:"source"`
}

// Validate checks that the descriptor can be attached to a document.
func (c Contribution) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return errors.NewValidationError("contribution.id", c.ID, "cannot be empty")
	}
	if strings.TrimSpace(c.Contributor) == "" {
		return errors.NewValidationError("contribution.contributor", c.Contributor, "cannot be empty")
	}
	return nil
}

// Record returns the contribution record appended to test cases.
func (c Contribution) Record() kb.Contribution {
	return kb.Contribution{
		ID:          c.ID,
		Contributor: c.Contributor,
		Date:        c.Date,
		Type:        c.Type,
		Description: c.Description,
	}
}

// SourceText returns the source string for new model results.
func (c Contribution) SourceText() string {
	if c.Source != "" {
		return c.Source
	}
	return c.Contributor
}
