package kb

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/agentstation/trapkit/pkg/errors"
)

// maxSchemaMessages bounds how many schema failures an error message lists.
const maxSchemaMessages = 5

// Load reads, schema-checks and decodes the document at path.
func Load(path string) (*Document, error) {
	// Path is from trapkit configuration
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("document", path)
		}
		return nil, errors.WrapIO("read", path, err)
	}
	return parse(data, path)
}

// Parse schema-checks and decodes document bytes.
func Parse(data []byte) (*Document, error) {
	return parse(data, "")
}

func parse(data []byte, name string) (*Document, error) {
	msgs, err := CheckSchema(data)
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.File = name
		}
		return nil, err
	}
	if len(msgs) > 0 {
		shown := msgs
		if len(shown) > maxSchemaMessages {
			shown = append(shown[:maxSchemaMessages:maxSchemaMessages], fmt.Sprintf("and %d more", len(msgs)-maxSchemaMessages))
		}
		return nil, errors.NewValidationError("document", name,
			"schema check failed: "+strings.Join(shown, "; "))
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapParse("json", name, err)
	}
	if err := doc.checkIDs(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// checkIDs rejects documents in which two test cases share an id.
func (d *Document) checkIDs() error {
	seen := make(map[string]bool, len(d.TestCases))
	for _, tc := range d.TestCases {
		if seen[tc.ID] {
			return errors.NewValidationError("id", tc.ID, fmt.Sprintf("duplicate test case id %q", tc.ID))
		}
		seen[tc.ID] = true
	}
	return nil
}

// Issue is a data irregularity found in a loaded document. Issues never stop
// a merge; they are reported by validation.
type Issue struct {
	TestID  string `json:"testId" yaml:"test_id"`
	Kind    string `json:"kind" yaml:"kind"`
	Value   string `json:"value" yaml:"value"`
	Message string `json:"message" yaml:"message"`
}

// Issue kinds.
const (
	IssueDuplicateContribution = "duplicate_contribution"
	IssueDuplicateModel        = "duplicate_model"
	IssueDanglingContribution  = "dangling_contribution_id"
	IssueMissingProvider       = "missing_provider"
)

// Issues lists duplicate contribution ids, duplicate model names, model
// results whose contributionId matches no contribution, and results without
// a provider.
func (d *Document) Issues() []Issue {
	var issues []Issue
	for _, tc := range d.TestCases {
		contribs := make(map[string]bool, len(tc.Contributions))
		for _, c := range tc.Contributions {
			if contribs[c.ID] {
				issues = append(issues, Issue{TestID: tc.ID, Kind: IssueDuplicateContribution, Value: c.ID,
					Message: fmt.Sprintf("contribution %q appears more than once", c.ID)})
			}
			contribs[c.ID] = true
		}

		models := make(map[string]bool, len(tc.ModelTests))
		for _, m := range tc.ModelTests {
			if models[m.Model] {
				issues = append(issues, Issue{TestID: tc.ID, Kind: IssueDuplicateModel, Value: m.Model,
					Message: fmt.Sprintf("model %q has more than one result", m.Model)})
			}
			models[m.Model] = true

			if m.ContributionID != "" && !contribs[m.ContributionID] {
				issues = append(issues, Issue{TestID: tc.ID, Kind: IssueDanglingContribution, Value: m.Model,
					Message: fmt.Sprintf("model %q references unknown contribution %q", m.Model, m.ContributionID)})
			}
			if m.Provider == "" {
				issues = append(issues, Issue{TestID: tc.ID, Kind: IssueMissingProvider, Value: m.Model,
					Message: fmt.Sprintf("model %q has no provider", m.Model)})
			}
		}
	}
	return issues
}
