package trials

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/agentstation/trapkit/pkg/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func createTestXLSX(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				c := row.AddCell()
				c.SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "trials.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadCSV(t *testing.T) {
	input := "model,trap,correct,notes\n" +
		"gpt-4o,cafe_wall,true,first\n" +
		"gpt-4o,cafe_wall,0,\n" +
		"gemini-3-pro,moving_robot,YES,\n"

	rows, err := ReadCSV(strings.NewReader(input), "batch.csv", DefaultColumns())
	require.NoError(t, err)

	assert.Equal(t, []RawTrial{
		{ModelKey: "gpt-4o", TestKey: "cafe_wall", Correct: true, Source: "batch.csv"},
		{ModelKey: "gpt-4o", TestKey: "cafe_wall", Correct: false, Source: "batch.csv"},
		{ModelKey: "gemini-3-pro", TestKey: "moving_robot", Correct: true, Source: "batch.csv"},
	}, rows)
}

func TestReadCSVWithByteOrderMark(t *testing.T) {
	input := "\ufeffmodel,trap,correct\ngpt-4o,cafe_wall,true\n"

	rows, err := ReadCSV(strings.NewReader(input), "excel.csv", DefaultColumns())
	require.NoError(t, err)
	assert.Equal(t, []RawTrial{
		{ModelKey: "gpt-4o", TestKey: "cafe_wall", Correct: true, Source: "excel.csv"},
	}, rows)
}

func TestReadCSVCustomColumns(t *testing.T) {
	input := "llm,test,passed\nclaude-opus-4.5,ebbinghaus,no\n"

	rows, err := ReadCSV(strings.NewReader(input), "custom.csv", Columns{
		Model:   "llm",
		Test:    "test",
		Correct: "passed",
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "claude-opus-4.5", rows[0].ModelKey)
	assert.Equal(t, "ebbinghaus", rows[0].TestKey)
	assert.False(t, rows[0].Correct)
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{name: "empty file", input: ""},
		{name: "missing column", input: "model,trap\ngpt-4o,cafe_wall\n"},
		{name: "invalid flag", input: "model,trap,correct\ngpt-4o,cafe_wall,maybe\n", line: 2},
		{name: "missing flag", input: "model,trap,correct\ngpt-4o,cafe_wall,true\ngpt-4o,cafe_wall,\n", line: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input), "bad.csv", DefaultColumns())
			require.Error(t, err)

			var pe *errors.ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, "csv", pe.Format)
			assert.Equal(t, "bad.csv", pe.File)
			if tt.line > 0 {
				assert.Equal(t, tt.line, pe.Line)
			}
		})
	}
}

func TestReadXLSX(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Results": {
			{"model", "trap", "correct"},
			{"gpt-5-mini", "shape_overload", "1"},
			{"", "", ""},
			{"gpt-5-mini", "shape_overload", "false"},
		},
	})

	rows, err := ReadXLSX(path, DefaultColumns(), "")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Correct)
	assert.False(t, rows[1].Correct)
	assert.Equal(t, path, rows[0].Source)
}

func TestReadXLSXErrors(t *testing.T) {
	t.Run("missing header", func(t *testing.T) {
		path := createTestXLSX(t, map[string][][]string{
			"Sheet1": {{"model", "correct"}, {"gpt-4o", "true"}},
		})
		_, err := ReadXLSX(path, DefaultColumns(), "")
		assert.Error(t, err)
	})

	t.Run("invalid flag", func(t *testing.T) {
		path := createTestXLSX(t, map[string][][]string{
			"Sheet1": {{"model", "trap", "correct"}, {"gpt-4o", "cafe_wall", "n/a"}},
		})
		_, err := ReadXLSX(path, DefaultColumns(), "")
		var pe *errors.ParseError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, 2, pe.Line)
	})

	t.Run("unknown sheet", func(t *testing.T) {
		path := createTestXLSX(t, map[string][][]string{
			"Sheet1": {{"model", "trap", "correct"}},
		})
		_, err := ReadXLSX(path, DefaultColumns(), "Other")
		assert.Error(t, err)
	})
}

func TestReadFiles(t *testing.T) {
	csvPath := writeFile(t, "anthropic.csv", "model,trap,correct\nclaude-haiku-4.5,cafe_wall,true\n")
	xlsxPath := createTestXLSX(t, map[string][][]string{
		"Sheet1": {
			{"model", "trap", "correct"},
			{"gpt-4o", "cafe_wall", "false"},
			{"gpt-4o", "cafe_wall", "true"},
		},
	})

	rows, batches, err := ReadFiles(context.Background(), []string{csvPath, xlsxPath})
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, "claude-haiku-4.5", rows[0].ModelKey)
	assert.Equal(t, []Batch{
		{Source: csvPath, Format: "csv", Rows: 1},
		{Source: xlsxPath, Format: "xlsx", Rows: 2},
	}, batches)
}

func TestReadFilesFailsOnAnyBatch(t *testing.T) {
	good := writeFile(t, "good.csv", "model,trap,correct\ngpt-4o,cafe_wall,true\n")
	bad := writeFile(t, "bad.csv", "model,trap,correct\ngpt-4o,cafe_wall,\n")

	rows, _, err := ReadFiles(context.Background(), []string{good, bad})
	assert.Error(t, err)
	assert.Nil(t, rows)
}

func TestReadFilesValidation(t *testing.T) {
	_, _, err := ReadFiles(context.Background(), nil)
	assert.True(t, errors.IsValidationError(err))

	_, _, err = ReadFiles(context.Background(), []string{"results.parquet"})
	assert.True(t, errors.IsValidationError(err))

	_, _, err = ReadFiles(context.Background(), []string{"a.csv"}, WithColumns(Columns{Model: "x", Test: "x"}))
	assert.True(t, errors.IsValidationError(err))

	_, _, err = ReadFiles(context.Background(), []string{filepath.Join(t.TempDir(), "missing.csv")})
	var ioErr *errors.IOError
	assert.True(t, errors.As(err, &ioErr))
}

func TestReadFilesCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := ReadFiles(ctx, []string{"a.csv"})
	assert.True(t, errors.IsCanceled(err))
}

func TestParseFlag(t *testing.T) {
	for _, s := range []string{"true", "TRUE", "1", "yes", " Yes "} {
		v, err := parseFlag(s)
		require.NoError(t, err, s)
		assert.True(t, v, s)
	}
	for _, s := range []string{"false", "0", "NO"} {
		v, err := parseFlag(s)
		require.NoError(t, err, s)
		assert.False(t, v, s)
	}
	_, err := parseFlag("")
	assert.Error(t, err)
}
