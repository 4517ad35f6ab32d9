// Package identity resolves raw trial identifiers to the canonical identifiers
// and display names used in the knowledge base.
//
// The mapping is table driven: a Table is built from a versioned YAML file
// (the default one is embedded in the binary) and never mutated at runtime.
// Anything the table does not know degrades to a defined fallback rather than
// an error: unmapped test keys report ok=false, and unmapped model keys fall
// back to the raw key as display name with the Unknown provider.
package identity

import (
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/agentstation/trapkit/pkg/constants"
)

// Provider is the organization that serves a model.
type Provider string

// Known providers.
const (
	ProviderAnthropic Provider = "Anthropic"
	ProviderOpenAI    Provider = "OpenAI"
	ProviderGoogle    Provider = "Google"
	ProviderUnknown   Provider = "Unknown"
)

// Providers lists the known providers in display order.
var Providers = []Provider{ProviderAnthropic, ProviderOpenAI, ProviderGoogle, ProviderUnknown}

// IsValid reports whether p is one of the known providers.
func (p Provider) IsValid() bool {
	switch p {
	case ProviderAnthropic, ProviderOpenAI, ProviderGoogle, ProviderUnknown:
		return true
	default:
		return false
	}
}

// String returns the provider name.
func (p Provider) String() string {
	return string(p)
}

// Identity is the canonical description of one model.
type Identity struct {
	Key         string   `json:"key" yaml:"key"`                                       // Raw trial identifier
	DisplayName string   `json:"display_name" yaml:"display_name"`                     // Knowledge-base model name
	Provider    Provider `json:"provider" yaml:"provider"`                             // Serving organization
	ReleaseDate string   `json:"release_date,omitempty" yaml:"release_date,omitempty"` // YYYY-MM, empty when unknown
}

// SortDate returns the release date used for ordering. Unknown dates sort last.
func (i Identity) SortDate() string {
	if i.ReleaseDate == "" {
		return constants.UnknownReleaseDate
	}
	return i.ReleaseDate
}

// Fallback returns the identity used for a raw model key missing from the table.
func Fallback(rawKey string) Identity {
	return Identity{
		Key:         rawKey,
		DisplayName: rawKey,
		Provider:    ProviderUnknown,
	}
}

// Rename corrects a historical display-name label in the knowledge base.
// It applies to entries without a contributionId and, when Contributions is
// set, to entries written by one of the listed contributions.
type Rename struct {
	From          string   `json:"from" yaml:"from"`
	To            string   `json:"to" yaml:"to"`
	Reason        string   `json:"reason,omitempty" yaml:"reason,omitempty"`
	Contributions []string `json:"contributions,omitempty" yaml:"contributions,omitempty"`
}

// Applies reports whether the rename may relabel an entry written by the
// given contribution.
func (r Rename) Applies(contributionID string) bool {
	return contributionID == "" || slices.Contains(r.Contributions, contributionID)
}

// Resolver maps raw identifiers to canonical ones.
type Resolver interface {
	// Test returns the canonical test case id for a raw test key.
	Test(rawKey string) (string, bool)

	// Model returns the identity for a raw model key. When ok is false the
	// returned identity is the Fallback for rawKey.
	Model(rawKey string) (id Identity, ok bool)

	// Resolve resolves a raw (model, test) pair in one call.
	Resolve(modelKey, testKey string) (testID string, testOK bool, id Identity)

	// LegacyProvider returns the provider recorded for a legacy display name.
	LegacyProvider(displayName string) (Provider, bool)

	// Renames returns the historical rename patch list in application order.
	Renames() []Rename
}

// NameKey returns the comparison key for a display name. Names are compared
// after NFC normalization so that a marker typed as a decomposed sequence in
// one source still matches the precomposed form in another.
func NameKey(displayName string) string {
	return norm.NFC.String(displayName)
}

// ExtendedName appends the extended-reasoning marker to name unless present.
func ExtendedName(name string) string {
	if strings.HasSuffix(name, constants.ExtendedReasoningMarker) {
		return name
	}
	return name + constants.ExtendedReasoningMarker
}
