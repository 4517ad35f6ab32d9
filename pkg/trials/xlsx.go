package trials

import (
	"fmt"
	"strings"

	"github.com/tealeg/xlsx/v2"

	"github.com/agentstation/trapkit/pkg/errors"
)

// ReadXLSX reads one XLSX batch. The first row of the sheet is the header.
// An empty sheet name selects the first sheet.
func ReadXLSX(path string, cols Columns, sheetName string) ([]RawTrial, error) {
	cols = cols.withDefaults()

	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, errors.WrapParse("xlsx", path, err)
	}

	sheet, err := getSheet(f, sheetName)
	if err != nil {
		return nil, errors.NewParseError("xlsx", path, err.Error(), err)
	}
	if len(sheet.Rows) == 0 {
		return nil, errors.NewParseError("xlsx", path, "empty sheet, header row expected", nil)
	}

	idx, err := columnIndex(rowToStrings(sheet.Rows[0]), cols)
	if err != nil {
		return nil, errors.NewParseError("xlsx", path, err.Error(), err)
	}

	var rows []RawTrial
	for i, row := range sheet.Rows[1:] {
		cells := rowToStrings(row)
		if blank(cells) {
			continue
		}
		correct, err := parseFlag(cell(cells, idx.correct))
		if err != nil {
			pe := errors.NewParseError("xlsx", path, err.Error(), err)
			pe.Line = i + 2
			return nil, pe
		}
		rows = append(rows, RawTrial{
			ModelKey: cell(cells, idx.model),
			TestKey:  cell(cells, idx.test),
			Correct:  correct,
			Source:   path,
		})
	}
	return rows, nil
}

type indices struct {
	model, test, correct int
}

func columnIndex(header []string, cols Columns) (indices, error) {
	idx := indices{model: -1, test: -1, correct: -1}
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case cols.Model:
			idx.model = i
		case cols.Test:
			idx.test = i
		case cols.Correct:
			idx.correct = i
		}
	}
	if idx.model < 0 || idx.test < 0 || idx.correct < 0 {
		return idx, fmt.Errorf("header must contain %q, %q and %q", cols.Model, cols.Test, cols.Correct)
	}
	return idx, nil
}

func getSheet(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	if name != "" {
		sheet, ok := f.Sheet[name]
		if !ok {
			return nil, fmt.Errorf("sheet %q not found", name)
		}
		return sheet, nil
	}
	if len(f.Sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.Sheets[0], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, c := range row.Cells {
		cells[j] = c.String()
	}
	return cells
}

func cell(cells []string, i int) string {
	if i < len(cells) {
		return strings.TrimSpace(cells[i])
	}
	return ""
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
