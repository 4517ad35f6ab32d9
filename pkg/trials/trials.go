// Package trials reads raw per-trial result batches.
//
// A batch is one tabular file (CSV or XLSX) with at least a model column, a
// test column and a correctness flag. Batches from different sources are
// concatenated; apart from Source, which is kept for diagnostics, rows carry
// no trace of the batch they came from.
package trials

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/agentstation/trapkit/pkg/constants"
	"github.com/agentstation/trapkit/pkg/errors"
	"github.com/agentstation/trapkit/pkg/logging"
)

// RawTrial is one observed trial.
type RawTrial struct {
	ModelKey string `json:"model" yaml:"model"`
	TestKey  string `json:"trap" yaml:"trap"`
	Correct  bool   `json:"correct" yaml:"correct"`
	Source   string `json:"source,omitempty" yaml:"source,omitempty"`
}

// Columns names the header cells of the three required columns.
type Columns struct {
	Model   string
	Test    string
	Correct string
}

// DefaultColumns returns the standard column names.
func DefaultColumns() Columns {
	return Columns{
		Model:   constants.ModelColumn,
		Test:    constants.TestColumn,
		Correct: constants.CorrectColumn,
	}
}

// withDefaults fills empty names from DefaultColumns.
func (c Columns) withDefaults() Columns {
	d := DefaultColumns()
	if c.Model == "" {
		c.Model = d.Model
	}
	if c.Test == "" {
		c.Test = d.Test
	}
	if c.Correct == "" {
		c.Correct = d.Correct
	}
	return c
}

// Batch summarizes one loaded file.
type Batch struct {
	Source string `json:"source" yaml:"source"`
	Format string `json:"format" yaml:"format"`
	Rows   int    `json:"rows" yaml:"rows"`
}

// Format identifies a batch file format.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat returns the format implied by a file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", errors.NewValidationError("trials", path,
			"unsupported trial file extension (want .csv or .xlsx)")
	}
}

// ReadFiles loads every batch in paths, in order, and concatenates the rows.
// Any batch failure aborts the whole load.
func ReadFiles(ctx context.Context, paths []string, opts ...Option) ([]RawTrial, []Batch, error) {
	if len(paths) == 0 {
		return nil, nil, errors.NewValidationError("trials", nil, "at least one trial file is required")
	}
	o, err := newOptions(opts...)
	if err != nil {
		return nil, nil, err
	}

	var (
		rows    []RawTrial
		batches []Batch
	)
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, nil, errors.WrapCanceled("read trials", err)
		}

		batchRows, format, err := readFile(path, o)
		if err != nil {
			return nil, nil, err
		}

		logging.FromContext(logging.WithBatch(ctx, path)).Debug().
			Str("format", string(format)).
			Int("rows", len(batchRows)).
			Msg("Loaded trial batch")

		rows = append(rows, batchRows...)
		batches = append(batches, Batch{Source: path, Format: string(format), Rows: len(batchRows)})
	}
	return rows, batches, nil
}

func readFile(path string, o *options) ([]RawTrial, Format, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, "", err
	}
	switch format {
	case FormatXLSX:
		rows, err := ReadXLSX(path, o.columns, o.sheet)
		return rows, format, err
	default:
		rows, err := ReadCSVFile(path, o.columns)
		return rows, format, err
	}
}
