package output

import (
	"io"

	"github.com/agentstation/trapkit/internal/cmd/table"
)

// Report is a titled sequence of sections, rendered as stacked tables for
// the table format and as a headed document for markdown.
type Report struct {
	Title    string
	Sections []Section
}

// Section is one part of a Report.
type Section struct {
	Title string
	Lines []string
	Table table.Data
}

// Add appends a section. Sections with neither lines nor rows are dropped.
func (r *Report) Add(title string, data table.Data, lines ...string) *Report {
	if data.Empty() && len(lines) == 0 {
		return r
	}
	r.Sections = append(r.Sections, Section{Title: title, Lines: lines, Table: data})
	return r
}

// Render writes raw for the JSON and YAML formats and the value built by
// view for table and markdown.
func Render(w io.Writer, format string, raw any, view func() any) error {
	f, err := ParseFormat(format)
	if err != nil {
		return err
	}
	if f.Structured() || view == nil {
		return NewFormatter(f).Format(w, raw)
	}
	return NewFormatter(f).Format(w, view())
}
