package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/trapkit/internal/cmd/table"
)

type row struct {
	TestID   string  `json:"test_id"`
	PassRate float64 `json:"passRate,omitempty"`
	Hidden   string  `json:"-"`
}

func sampleReport() *Report {
	r := &Report{Title: "Merge completed"}
	r.Add("Tests", table.Data{Headers: []string{"Test", "Added"}, Rows: [][]string{{"moving-robot", "1"}}})
	r.Add("Empty", table.Data{})
	r.Add("Output", table.Data{}, "Wrote traps.json")
	return r
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"table", "json", "yaml", "markdown", "JSON", ""} {
		f, err := ParseFormat(s)
		require.NoError(t, err, s)
		assert.Equal(t, Format(strings.ToLower(s)), f)
	}

	_, err := ParseFormat("xml")
	assert.ErrorContains(t, err, "invalid format")
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
	assert.True(t, FormatJSON.Structured())
	assert.False(t, FormatMarkdown.Structured())
}

func TestReportAdd(t *testing.T) {
	r := sampleReport()
	titles := make([]string, 0, len(r.Sections))
	for _, s := range r.Sections {
		titles = append(titles, s.Title)
	}
	if diff := cmp.Diff([]string{"Tests", "Output"}, titles); diff != "" {
		t.Errorf("section titles mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON).Format(&buf, []row{{TestID: "a&b", PassRate: 0.5}}))
	assert.Equal(t, "[\n  {\n    \"test_id\": \"a&b\",\n    \"passRate\": 0.5\n  }\n]\n", buf.String())
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatYAML).Format(&buf, map[string][]string{"tests": {"moving-robot"}}))
	assert.Equal(t, "tests:\n- moving-robot\n", buf.String())
}

func TestTableFormatterReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, sampleReport()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Merge completed\n\n"))
	assert.Contains(t, out, "moving-robot")
	assert.Contains(t, out, "  Wrote traps.json\n")
	assert.NotContains(t, out, "Empty")
}

func TestTableFormatterReflection(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, []row{{TestID: "moving-robot", PassRate: 0.7, Hidden: "secret"}}))

	out := buf.String()
	assert.Contains(t, out, "moving-robot")
	assert.Contains(t, out, "0.7")
	assert.NotContains(t, out, "secret")
}

func TestMarkdownFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatMarkdown).Format(&buf, sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "# Merge completed")
	assert.Contains(t, out, "## Tests")
	assert.Contains(t, out, "| moving-robot")
	assert.Contains(t, out, "- Wrote traps.json")
}

func TestMarkdownFormatterFallback(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatMarkdown).Format(&buf, map[string]int{"rows": 3}))
	assert.Contains(t, buf.String(), "```json")
	assert.Contains(t, buf.String(), `"rows": 3`)
}

func TestRender(t *testing.T) {
	raw := map[string]int{"rows": 3}
	view := func() any { return sampleReport() }

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "json", raw, view))
	assert.Equal(t, "{\n  \"rows\": 3\n}\n", buf.String())

	buf.Reset()
	require.NoError(t, Render(&buf, "table", raw, view))
	assert.Contains(t, buf.String(), "Merge completed")

	buf.Reset()
	require.NoError(t, Render(&buf, "table", raw, nil))
	assert.Contains(t, buf.String(), "3")

	assert.Error(t, Render(&buf, "xml", raw, view))
}

func TestConvertToTableData(t *testing.T) {
	data := convertToTableData(row{TestID: "moving-robot", PassRate: 0.5})
	require.NotNil(t, data)
	want := &table.Data{
		Headers: []string{"Property", "Value"},
		Rows:    [][]string{{"Test Id", "moving-robot"}, {"Passrate", "0.5"}},
	}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Errorf("table data mismatch (-want +got):\n%s", diff)
	}

	assert.Nil(t, convertToTableData(42))
}
