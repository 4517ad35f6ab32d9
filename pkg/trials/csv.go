package trials

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jszwec/csvutil"

	"github.com/agentstation/trapkit/pkg/errors"
)

// byteOrderMark prefixes CSV files exported by spreadsheet tools.
const byteOrderMark = "\ufeff"

// csvRow is the decoded shape of one CSV line. The header is rewritten to
// these tags before decoding so that configured column names map onto it.
type csvRow struct {
	Model   string `csv:"model"`
	Test    string `csv:"trap"`
	Correct flag   `csv:"correct"`
}

// ReadCSVFile reads one CSV batch from disk.
func ReadCSVFile(path string, cols Columns) ([]RawTrial, error) {
	// Path is from user input
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	defer func() { _ = f.Close() }()

	return ReadCSV(f, path, cols)
}

// ReadCSV decodes one CSV batch. source names the batch in errors and rows.
func ReadCSV(r io.Reader, source string, cols Columns) ([]RawTrial, error) {
	cols = cols.withDefaults()

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.NewParseError("csv", source, "empty file, header row expected", err)
		}
		return nil, errors.WrapParse("csv", source, err)
	}
	header[0] = strings.TrimPrefix(header[0], byteOrderMark)

	dec, err := csvutil.NewDecoder(cr, remapHeader(header, cols)...)
	if err != nil {
		return nil, errors.WrapParse("csv", source, err)
	}
	dec.DisallowMissingColumns = true

	var rows []RawTrial
	for line := 2; ; line++ {
		var row csvRow
		if err := dec.Decode(&row); err != nil {
			if stderrors.Is(err, io.EOF) {
				break
			}
			return nil, lineError(source, line, err, cols)
		}
		if !row.Correct.set {
			return nil, lineError(source, line, fmt.Errorf("missing correctness value"), cols)
		}
		rows = append(rows, RawTrial{
			ModelKey: row.Model,
			TestKey:  row.Test,
			Correct:  row.Correct.value,
			Source:   source,
		})
	}
	return rows, nil
}

// remapHeader renames the configured column names to the csvRow tags.
func remapHeader(header []string, cols Columns) []string {
	out := make([]string, len(header))
	for i, h := range header {
		switch h {
		case cols.Model:
			out[i] = "model"
		case cols.Test:
			out[i] = "trap"
		case cols.Correct:
			out[i] = "correct"
		default:
			// Keep unrelated columns out of the tag namespace.
			out[i] = "_" + h
		}
	}
	return out
}

func lineError(source string, line int, err error, cols Columns) error {
	var missing *csvutil.MissingColumnsError
	if stderrors.As(err, &missing) {
		return errors.NewParseError("csv", source,
			fmt.Sprintf("header must contain %q, %q and %q", cols.Model, cols.Test, cols.Correct), err)
	}
	pe := errors.NewParseError("csv", source, err.Error(), err)
	pe.Line = line
	return pe
}
