// Package kb models the knowledge-base document: an ordered list of test
// cases, each carrying its contributions and per-model results.
//
// Decoding keeps every object's key order and any keys this package does not
// know about, and encoding writes them back unchanged. A document that is
// loaded and saved without modification round-trips to the same JSON value
// with the same key order.
package kb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Document is the whole knowledge base.
type Document struct {
	TestCases []TestCase
}

// TestCase is one cognitive trap and the results recorded for it.
type TestCase struct {
	ID            string
	Name          string
	Contributions []Contribution
	ModelTests    []ModelTestResult

	raw object
}

// Contribution is a provenance record for one batch of added data.
type Contribution struct {
	ID          string
	Contributor string
	Date        string
	Type        string
	Description string

	raw object
}

// ModelTestResult is one model's result on a test case.
type ModelTestResult struct {
	Model          string
	PassRate       float64
	Trials         int
	Provider       string
	Source         string
	ContributionID string

	raw object
}

// IsNew reports whether the result was constructed rather than decoded.
func (m *ModelTestResult) IsNew() bool {
	return m.raw == nil
}

// HasProvider reports whether the entry carries a provider key. A decoded
// entry with "provider": null or "" has one.
func (m *ModelTestResult) HasProvider() bool {
	if m.IsNew() {
		return m.Provider != ""
	}
	return m.raw.has("provider")
}

// Find returns the test case with the given id.
func (d *Document) Find(id string) (*TestCase, bool) {
	for i := range d.TestCases {
		if d.TestCases[i].ID == id {
			return &d.TestCases[i], true
		}
	}
	return nil, false
}

// IDs returns the test case ids in document order.
func (d *Document) IDs() []string {
	ids := make([]string, len(d.TestCases))
	for i, tc := range d.TestCases {
		ids[i] = tc.ID
	}
	return ids
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{TestCases: make([]TestCase, len(d.TestCases))}
	for i, tc := range d.TestCases {
		out.TestCases[i] = tc.Clone()
	}
	return out
}

// Clone returns a deep copy of the test case. Raw members are shared since
// they are never mutated.
func (tc TestCase) Clone() TestCase {
	tc.Contributions = slices.Clone(tc.Contributions)
	tc.ModelTests = slices.Clone(tc.ModelTests)
	return tc
}

// HasContribution reports whether a contribution with id is present.
func (tc *TestCase) HasContribution(id string) bool {
	return slices.ContainsFunc(tc.Contributions, func(c Contribution) bool { return c.ID == id })
}

// Models returns the model names in entry order.
func (tc *TestCase) Models() []string {
	names := make([]string, len(tc.ModelTests))
	for i, m := range tc.ModelTests {
		names[i] = m.Model
	}
	return names
}

// JSON

type testCaseJSON struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Contributions []Contribution    `json:"contributions"`
	ModelTests    []ModelTestResult `json:"modelTests"`
}

type contributionJSON struct {
	ID          string `json:"id"`
	Contributor string `json:"contributor"`
	Date        string `json:"date"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

type modelTestJSON struct {
	Model          string  `json:"model"`
	PassRate       float64 `json:"passRate"`
	Trials         int     `json:"trials"`
	Provider       *string `json:"provider"`
	Source         string  `json:"source"`
	ContributionID string  `json:"contributionId"`
}

// MarshalJSON implements json.Marshaler.
func (d Document) MarshalJSON() ([]byte, error) {
	if d.TestCases == nil {
		return []byte("[]"), nil
	}
	return marshalValue(d.TestCases)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Document) UnmarshalJSON(data []byte) error {
	if t := bytes.TrimSpace(data); len(t) == 0 || t[0] != '[' {
		return fmt.Errorf("knowledge base must be a JSON array of test cases")
	}
	var cases []TestCase
	if err := json.Unmarshal(data, &cases); err != nil {
		return err
	}
	d.TestCases = cases
	return nil
}

// MarshalJSON implements json.Marshaler.
func (tc TestCase) MarshalJSON() ([]byte, error) {
	isNew := tc.raw == nil
	var contributions, modelTests any = tc.Contributions, tc.ModelTests
	if isNew {
		contributions, modelTests = emptyIfNil(tc.Contributions), emptyIfNil(tc.ModelTests)
	}
	return encodeObject(tc.raw, []field{
		{key: "id", value: tc.ID, emit: true},
		{key: "name", value: tc.Name, emit: true},
		{key: "contributions", value: contributions, emit: isNew || len(tc.Contributions) > 0},
		{key: "modelTests", value: modelTests, emit: isNew || len(tc.ModelTests) > 0},
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (tc *TestCase) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return err
	}
	var v testCaseJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*tc = TestCase{
		ID:            v.ID,
		Name:          v.Name,
		Contributions: v.Contributions,
		ModelTests:    v.ModelTests,
		raw:           raw,
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c Contribution) MarshalJSON() ([]byte, error) {
	isNew := c.raw == nil
	return encodeObject(c.raw, []field{
		{key: "id", value: c.ID, emit: true},
		{key: "contributor", value: c.Contributor, emit: isNew || c.Contributor != ""},
		{key: "date", value: c.Date, emit: isNew || c.Date != ""},
		{key: "type", value: c.Type, emit: isNew || c.Type != ""},
		{key: "description", value: c.Description, emit: isNew || c.Description != ""},
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Contribution) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return err
	}
	var v contributionJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = Contribution{
		ID:          v.ID,
		Contributor: v.Contributor,
		Date:        v.Date,
		Type:        v.Type,
		Description: v.Description,
		raw:         raw,
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (m ModelTestResult) MarshalJSON() ([]byte, error) {
	isNew := m.IsNew()
	return encodeObject(m.raw, []field{
		{key: "model", value: m.Model, emit: true},
		{key: "passRate", value: rate(m.PassRate), emit: isNew || m.PassRate != 0},
		{key: "trials", value: m.Trials, emit: isNew || m.Trials != 0},
		{key: "provider", value: m.Provider, emit: m.Provider != ""},
		{key: "source", value: m.Source, emit: m.Source != ""},
		{key: "contributionId", value: m.ContributionID, emit: m.ContributionID != ""},
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *ModelTestResult) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return err
	}
	var v modelTestJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = ModelTestResult{
		Model:          v.Model,
		PassRate:       v.PassRate,
		Trials:         v.Trials,
		Source:         v.Source,
		ContributionID: v.ContributionID,
		raw:            raw,
	}
	if v.Provider != nil {
		m.Provider = *v.Provider
	}
	return nil
}

// rate encodes pass rates with at least one decimal place (1.0, 0.7).
type rate float64

// MarshalJSON implements json.Marshaler.
func (r rate) MarshalJSON() ([]byte, error) {
	s := strconv.FormatFloat(float64(r), 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return []byte(s), nil
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// zero reports whether v is its type's zero value.
func zero(v any) bool {
	return v == nil || reflect.ValueOf(v).IsZero()
}
