package provenance

import (
	"encoding/json"
	"os"

	"github.com/agentstation/utc"
	"github.com/goccy/go-yaml"

	"github.com/agentstation/trapkit/pkg/constants"
	"github.com/agentstation/trapkit/pkg/errors"
	"github.com/agentstation/trapkit/pkg/save"
)

// File is the provenance ledger written for one run.
//
//nolint:revive // Name is intentionally descriptive for external clarity
type File struct {
	RunID        string   `json:"run_id" yaml:"run_id"`
	Contribution string   `json:"contribution" yaml:"contribution"`
	Generated    utc.Time `json:"generated" yaml:"generated"`
	DryRun       bool     `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	Provenance   Map      `json:"provenance" yaml:"provenance"`
}

// Save writes the ledger as YAML (default for files) or JSON.
func (f *File) Save(opts ...save.Option) error {
	options := save.Defaults()
	options.Apply(append([]save.Option{save.WithFormat(save.FormatYAML)}, opts...)...)

	var (
		data []byte
		err  error
	)
	switch options.Format() {
	case save.FormatJSON:
		data, err = json.MarshalIndent(f, "", constants.JSONIndent)
	default:
		data, err = yaml.Marshal(f)
	}
	if err != nil {
		return errors.WrapParse(options.Format().String(), options.Path(), err)
	}

	if w := options.Writer(); w != nil {
		if _, err := w.Write(data); err != nil {
			return errors.WrapIO("write", "provenance", err)
		}
		return nil
	}
	if options.Path() == "" {
		return errors.NewValidationError("path", nil, "a path or writer is required to save provenance")
	}
	if err := os.WriteFile(options.Path(), data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", options.Path(), err)
	}
	return nil
}

// Load reads a provenance ledger from a YAML file.
// Returns nil, nil if the file doesn't exist (not an error).
func Load(path string) (*File, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	// Path is from trapkit configuration, not user input
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var pf File
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}

	return &pf, nil
}
