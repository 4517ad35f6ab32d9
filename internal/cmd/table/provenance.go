package table

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/agentstation/utc"
	"github.com/goccy/go-yaml"

	"github.com/agentstation/trapkit/pkg/provenance"
)

// ProvenanceToTableData converts a provenance map to table format, one row
// per recorded change, grouped by resource and field.
func ProvenanceToTableData(m provenance.Map) Data {
	var rows [][]string

	for _, key := range m.Keys() {
		history := slices.Clone(m[key])
		if len(history) == 0 {
			continue
		}
		slices.SortStableFunc(history, func(a, b provenance.Provenance) int {
			return b.Timestamp.Time.Compare(a.Timestamp.Time)
		})

		resource, field := splitKey(key)
		for i, entry := range history {
			// Resource and field only on the first row
			if i > 0 {
				resource, field = "", ""
			}
			rows = append(rows, []string{
				resource,
				field,
				string(entry.Action),
				formatValue(entry.Value),
				formatValue(entry.PreviousValue),
				dash(entry.Source),
				formatTimestamp(entry.Timestamp),
			})
		}
	}

	return Data{
		Headers: []string{"Resource", "Field", "Action", "Value", "Previous", "Source", "When"},
		Rows:    rows,
	}
}

// splitKey splits "resourceType:resourceID:field" into a resource label and field.
func splitKey(key string) (string, string) {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) != 3 {
		return key, ""
	}
	return parts[1], parts[2]
}

// formatValue formats a provenance value for display.
// Complex values are rendered as flow YAML.
func formatValue(val any) string {
	if val == nil {
		return "-"
	}

	switch v := val.(type) {
	case string:
		if v == "" {
			return "<empty>"
		}
		return v
	case float64:
		return FormatRate(v)
	case int:
		return fmt.Sprintf("%d", v)
	case bool:
		return fmt.Sprintf("%t", v)
	}

	out, err := yaml.MarshalWithOptions(val, yaml.Flow(true))
	if err != nil {
		return fmt.Sprintf("%v", val)
	}
	return strings.TrimSuffix(string(out), "\n")
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t utc.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Time.UTC().Format(time.DateTime)
}
