package provenance

import (
	"fmt"
	"slices"
	"strings"
)

// Report groups provenance by resource.
type Report struct {
	Resources map[string]ResourceProvenance // key is "resourceType:resourceID"
}

// ResourceProvenance contains provenance for a single resource.
type ResourceProvenance struct {
	Type   ResourceType
	ID     string
	Fields map[string]Field
}

// Field contains provenance history for a single field.
type Field struct {
	Current   Provenance     // Latest record
	History   []Provenance   // All records, newest first
	Conflicts []ConflictInfo // Incoming values that lost to existing ones
}

// ConflictInfo describes an incoming value that an existing one blocked.
type ConflictInfo struct {
	Source     string // Contribution that offered the incoming value
	Existing   any
	Incoming   any
	Resolution string
}

// GenerateReport creates a provenance report from a Map.
func GenerateReport(provenance Map) *Report {
	report := &Report{
		Resources: make(map[string]ResourceProvenance),
	}

	for key, infos := range provenance {
		parts := strings.SplitN(key, ":", 3)
		if len(parts) != 3 {
			continue
		}
		resourceType, resourceID, field := parts[0], parts[1], parts[2]
		resourceKey := resourceType + ":" + resourceID

		resource, exists := report.Resources[resourceKey]
		if !exists {
			resource = ResourceProvenance{
				Type:   ResourceType(resourceType),
				ID:     resourceID,
				Fields: make(map[string]Field),
			}
		}

		// Newest first
		history := slices.Clone(infos)
		slices.SortStableFunc(history, func(a, b Provenance) int {
			return b.Timestamp.Time.Compare(a.Timestamp.Time)
		})

		fieldProv := Field{History: history}
		if len(history) > 0 {
			fieldProv.Current = history[0]
		}
		fieldProv.Conflicts = detectConflicts(history)

		resource.Fields[field] = fieldProv
		report.Resources[resourceKey] = resource
	}

	return report
}

// detectConflicts collects the records where an existing value was kept.
func detectConflicts(infos []Provenance) []ConflictInfo {
	var conflicts []ConflictInfo
	for _, info := range infos {
		if info.Action != ActionKept {
			continue
		}
		conflicts = append(conflicts, ConflictInfo{
			Source:     info.Source,
			Existing:   info.PreviousValue,
			Incoming:   info.Value,
			Resolution: info.Reason,
		})
	}
	return conflicts
}

// String generates a string representation of the provenance report.
func (r *Report) String() string {
	var sb strings.Builder

	sb.WriteString("Provenance Report\n")
	sb.WriteString("=================\n\n")

	resourceKeys := make([]string, 0, len(r.Resources))
	for key := range r.Resources {
		resourceKeys = append(resourceKeys, key)
	}
	slices.Sort(resourceKeys)

	for _, key := range resourceKeys {
		resource := r.Resources[key]
		sb.WriteString(fmt.Sprintf("%s: %s\n", resource.Type, resource.ID))
		sb.WriteString(strings.Repeat("-", 40))
		sb.WriteString("\n")

		fieldKeys := make([]string, 0, len(resource.Fields))
		for field := range resource.Fields {
			fieldKeys = append(fieldKeys, field)
		}
		slices.Sort(fieldKeys)

		for _, field := range fieldKeys {
			fieldProv := resource.Fields[field]
			sb.WriteString(fmt.Sprintf("  %s:\n", field))
			sb.WriteString(fmt.Sprintf("    %s: %v (from %s)\n",
				fieldProv.Current.Action, fieldProv.Current.Value, fieldProv.Current.Source))

			if len(fieldProv.Conflicts) > 0 {
				sb.WriteString("    Conflicts:\n")
				for _, conflict := range fieldProv.Conflicts {
					sb.WriteString(fmt.Sprintf("      - Incoming: %v from %s\n", conflict.Incoming, conflict.Source))
					sb.WriteString(fmt.Sprintf("        Reason: %s\n", conflict.Resolution))
				}
			}

			if len(fieldProv.History) > 1 {
				sb.WriteString("    History:\n")
				for i, info := range fieldProv.History {
					if i > 3 { // Limit history display
						sb.WriteString(fmt.Sprintf("      ... and %d more\n", len(fieldProv.History)-i))
						break
					}
					sb.WriteString(fmt.Sprintf("      - %s %v from %s at %s\n",
						info.Action, info.Value, info.Source, info.Timestamp.Format("15:04:05")))
				}
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
