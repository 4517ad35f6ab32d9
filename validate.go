package trapkit

import (
	"context"
	"os"
	"slices"

	"github.com/agentstation/trapkit/pkg/errors"
	"github.com/agentstation/trapkit/pkg/kb"
	"github.com/agentstation/trapkit/pkg/logging"
)

// Compile-time interface check to ensure proper implementation.
var _ Validator = (*client)(nil)

// Validator checks a document without writing it.
type Validator interface {
	Validate(ctx context.Context, path string) (*Validation, error)
}

// Validation reports what a document check found.
type Validation struct {
	Path string `json:"path" yaml:"path"`

	// SchemaErrors are structural failures. A document with any cannot be merged.
	SchemaErrors []string `json:"schemaErrors,omitempty" yaml:"schema_errors,omitempty"`

	// Err is set when the document passes the schema but still cannot be loaded.
	Err string `json:"error,omitempty" yaml:"error,omitempty"`

	// Issues are data irregularities a merge tolerates.
	Issues []kb.Issue `json:"issues,omitempty" yaml:"issues,omitempty"`

	// MissingTests are canonical test ids the identity tables map to but
	// the document has no test case for.
	MissingTests []string `json:"missingTests,omitempty" yaml:"missing_tests,omitempty"`

	// UnknownTests are document test cases no raw test key maps to.
	UnknownTests []string `json:"unknownTests,omitempty" yaml:"unknown_tests,omitempty"`

	TestCases int `json:"testCases" yaml:"test_cases"`
	Models    int `json:"models" yaml:"models"`
}

// Valid reports whether the document can be merged into.
func (v *Validation) Valid() bool {
	return len(v.SchemaErrors) == 0 && v.Err == ""
}

// testLister is implemented by resolvers that can enumerate their tests.
type testLister interface {
	TestIDs() []string
}

// Validate schema-checks the document at path and cross-checks it against
// the identity tables. Only unreadable files and malformed JSON are errors;
// everything else is reported in the Validation.
func (c *client) Validate(ctx context.Context, path string) (*Validation, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	// Path is from trapkit configuration
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("document", path)
		}
		return nil, errors.WrapIO("read", path, err)
	}

	v := &Validation{Path: path}
	msgs, err := kb.CheckSchema(data)
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.File = path
		}
		return nil, err
	}
	if len(msgs) > 0 {
		v.SchemaErrors = msgs
		return v, nil
	}

	doc, err := kb.Parse(data)
	if err != nil {
		v.Err = err.Error()
		return v, nil
	}

	v.TestCases = len(doc.TestCases)
	for _, tc := range doc.TestCases {
		v.Models += len(tc.ModelTests)
	}
	v.Issues = doc.Issues()

	if lister, ok := c.resolver.(testLister); ok {
		known := lister.TestIDs()
		ids := doc.IDs()
		for _, id := range known {
			if !slices.Contains(ids, id) {
				v.MissingTests = append(v.MissingTests, id)
			}
		}
		for _, id := range ids {
			if !slices.Contains(known, id) {
				v.UnknownTests = append(v.UnknownTests, id)
			}
		}
	}

	logging.FromContext(ctx).Debug().
		Str("path", path).
		Int("test_cases", v.TestCases).
		Int("issues", len(v.Issues)).
		Msg("Validated document")

	return v, nil
}
