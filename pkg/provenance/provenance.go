// Package provenance records where every change made to the knowledge base
// during a run came from.
package provenance

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/agentstation/utc"
)

// ResourceType names the kind of resource a record is about.
type ResourceType string

// ResourceTestCase is the only resource a merge changes.
const ResourceTestCase ResourceType = "test_case"

// Action is what happened to a field.
type Action string

// Actions.
const (
	ActionAdded       Action = "added"       // new model result appended
	ActionContributed Action = "contributed" // contribution record appended
	ActionBackfilled  Action = "backfilled"  // provider filled from the legacy table
	ActionRenamed     Action = "renamed"     // display name corrected
	ActionKept        Action = "kept"        // existing value retained over an incoming one
)

// Provenance tracks the origin of one change.
type Provenance struct {
	Source        string   `json:"source" yaml:"source"` // Contribution id or table that supplied the value
	Action        Action   `json:"action" yaml:"action"`
	Field         string   `json:"field" yaml:"field"`
	Value         any      `json:"value,omitempty" yaml:"value,omitempty"`
	PreviousValue any      `json:"previous_value,omitempty" yaml:"previous_value,omitempty"`
	Timestamp     utc.Time `json:"timestamp" yaml:"timestamp"`
	Reason        string   `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Map tracks provenance for multiple resources.
type Map map[string][]Provenance // key is "resourceType:resourceID:fieldPath"

// Tracker collects provenance during a merge.
type Tracker interface {
	// Track records provenance for a field
	Track(resourceType ResourceType, resourceID string, field string, history Provenance)

	// FindByField retrieves provenance for a specific field
	FindByField(resourceType ResourceType, resourceID string, field string) []Provenance

	// FindByResource retrieves all provenance for a resource
	FindByResource(resourceType ResourceType, resourceID string) map[string][]Provenance

	// Map returns the complete provenance map
	Map() Map

	// Clear removes all provenance data
	Clear()
}

// tracker is the default implementation.
type tracker struct {
	provenance Map
	enabled    bool
}

// NewTracker creates a new provenance tracker. A disabled tracker drops
// everything it is given.
func NewTracker(enabled bool) Tracker {
	return &tracker{
		provenance: make(Map),
		enabled:    enabled,
	}
}

// Track records provenance for a field.
func (p *tracker) Track(resourceType ResourceType, resourceID string, field string, history Provenance) {
	if !p.enabled {
		return
	}

	key := makeKey(resourceType, resourceID, field)

	if history.Timestamp.IsZero() {
		history.Timestamp = utc.Now()
	}
	if history.Field == "" {
		history.Field = field
	}

	p.provenance[key] = append(p.provenance[key], history)
}

// FindByField retrieves provenance for a specific field.
func (p *tracker) FindByField(resourceType ResourceType, resourceID string, field string) []Provenance {
	if !p.enabled {
		return nil
	}
	return p.provenance[makeKey(resourceType, resourceID, field)]
}

// FindByResource retrieves all provenance for a resource.
func (p *tracker) FindByResource(resourceType ResourceType, resourceID string) map[string][]Provenance {
	if !p.enabled {
		return nil
	}

	result := make(map[string][]Provenance)
	prefix := fmt.Sprintf("%s:%s:", resourceType, resourceID)

	for key, info := range p.provenance {
		if field, found := strings.CutPrefix(key, prefix); found {
			result[field] = info
		}
	}

	return result
}

// Map returns a copy of the complete provenance map.
func (p *tracker) Map() Map {
	if !p.enabled {
		return nil
	}

	result := make(Map, len(p.provenance))
	for k, v := range p.provenance {
		result[k] = slices.Clone(v)
	}
	return result
}

// Clear removes all provenance data.
func (p *tracker) Clear() {
	p.provenance = make(Map)
}

// makeKey creates a unique key for provenance tracking. Test case ids never
// contain a colon; field paths may.
func makeKey(resourceType ResourceType, resourceID string, field string) string {
	return fmt.Sprintf("%s:%s:%s", resourceType, resourceID, field)
}

// ModelField is the field path of one model result.
func ModelField(model string) string {
	return "modelTests[" + model + "]"
}

// ContributionField is the field path of one contribution record.
func ContributionField(id string) string {
	return "contributions[" + id + "]"
}

// Count returns the number of records per action.
func (m Map) Count() map[Action]int {
	counts := make(map[Action]int)
	for _, infos := range m {
		for _, info := range infos {
			counts[info.Action]++
		}
	}
	return counts
}

// Keys returns the map keys sorted.
func (m Map) Keys() []string {
	return slices.Sorted(maps.Keys(m))
}
