package identity

import (
	"fmt"
	"io/fs"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/trapkit/internal/embedded"
	"github.com/agentstation/trapkit/pkg/constants"
	"github.com/agentstation/trapkit/pkg/errors"
)

// Compile-time interface check.
var _ Resolver = (*Table)(nil)

// tableFile is the on-disk shape of an identity table.
type tableFile struct {
	Version         string              `yaml:"version"`
	Tests           map[string]string   `yaml:"tests"`
	Providers       []providerGroup     `yaml:"providers"`
	LegacyProviders map[string]Provider `yaml:"legacy_providers"`
	Renames         []Rename            `yaml:"renames"`
}

type providerGroup struct {
	Provider Provider     `yaml:"provider"`
	Models   []modelEntry `yaml:"models"`
}

type modelEntry struct {
	Key               string `yaml:"key"`
	Name              string `yaml:"name"`
	ExtendedReasoning bool   `yaml:"extended_reasoning"`
	Released          string `yaml:"released"`
}

// Table is an immutable, table-backed Resolver.
type Table struct {
	version string
	tests   map[string]string
	models  map[string]Identity
	ordered []Identity
	legacy  map[string]Provider
	byName  map[string]Provider
	renames []Rename
}

// Default returns the table embedded in the binary.
func Default() (*Table, error) {
	return LoadFS(embedded.FS, embedded.DefaultTables)
}

// Load reads and validates a table file from disk.
func Load(path string) (*Table, error) {
	// Path is from trapkit configuration
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return parse(data, path)
}

// LoadFS reads and validates a table file from fsys.
func LoadFS(fsys fs.FS, name string) (*Table, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, errors.WrapIO("read", name, err)
	}
	return parse(data, name)
}

// Parse validates and builds a table from YAML bytes.
func Parse(data []byte) (*Table, error) {
	return parse(data, "")
}

func parse(data []byte, name string) (*Table, error) {
	var f tableFile
	if err := yaml.UnmarshalWithOptions(data, &f, yaml.DisallowUnknownField()); err != nil {
		return nil, errors.WrapParse("yaml", name, err)
	}
	t, err := build(f)
	if err != nil {
		return nil, errors.NewConfigError("tables", fmt.Sprintf("invalid identity table %s: %v", name, err), err)
	}
	return t, nil
}

// build converts a decoded file into a Table, enforcing the table invariants.
func build(f tableFile) (*Table, error) {
	t := &Table{
		version: f.Version,
		tests:   make(map[string]string, len(f.Tests)),
		models:  make(map[string]Identity),
		legacy:  make(map[string]Provider, len(f.LegacyProviders)),
		byName:  make(map[string]Provider, len(f.LegacyProviders)),
		renames: make([]Rename, 0, len(f.Renames)),
	}

	for raw, id := range f.Tests {
		if strings.TrimSpace(raw) == "" || strings.TrimSpace(id) == "" {
			return nil, errors.NewValidationError("tests", raw, "test keys and ids must be non-empty")
		}
		t.tests[raw] = id
	}

	names := make(map[string]string)
	for _, group := range f.Providers {
		if !group.Provider.IsValid() {
			return nil, errors.NewValidationError("providers.provider", group.Provider,
				fmt.Sprintf("unknown provider %q", group.Provider))
		}
		for _, m := range group.Models {
			id, err := group.identity(m)
			if err != nil {
				return nil, err
			}
			if _, dup := t.models[id.Key]; dup {
				return nil, errors.NewValidationError("models.key", id.Key, "duplicate model key")
			}
			nameKey := NameKey(id.DisplayName)
			if other, dup := names[nameKey]; dup {
				return nil, errors.NewValidationError("models.name", id.DisplayName,
					fmt.Sprintf("display name shared by %s and %s", other, id.Key))
			}
			names[nameKey] = id.Key
			t.models[id.Key] = id
			t.ordered = append(t.ordered, id)
		}
	}
	Sort(t.ordered)

	for name, p := range f.LegacyProviders {
		if !p.IsValid() {
			return nil, errors.NewValidationError("legacy_providers", p,
				fmt.Sprintf("unknown provider %q for %s", p, name))
		}
		key := NameKey(name)
		if _, dup := t.byName[key]; dup {
			return nil, errors.NewValidationError("legacy_providers", name, "legacy name listed twice")
		}
		t.legacy[name] = p
		t.byName[key] = p
	}

	for _, r := range f.Renames {
		if slices.Contains(r.Contributions, "") {
			return nil, errors.NewValidationError("renames.contributions", r, "contribution ids must be non-empty")
		}
		r.Contributions = slices.Clone(r.Contributions)
		t.renames = append(t.renames, r)
	}

	from := make(map[string]bool, len(t.renames))
	for _, r := range t.renames {
		if r.From == "" || r.To == "" || r.From == r.To {
			return nil, errors.NewValidationError("renames", r, "rename needs distinct non-empty from and to")
		}
		from[r.From] = true
	}
	// A rename target that is also a rename source would make a second
	// application move entries again.
	for _, r := range t.renames {
		if from[r.To] {
			return nil, errors.NewValidationError("renames", r,
				fmt.Sprintf("target %q is also renamed; chains are not idempotent", r.To))
		}
	}

	return t, nil
}

func (g providerGroup) identity(m modelEntry) (Identity, error) {
	if m.Key == "" || m.Name == "" {
		return Identity{}, errors.NewValidationError("models", m.Key, "model key and name are required")
	}
	if m.Released != "" {
		if _, err := time.Parse(constants.ReleaseDateLayout, m.Released); err != nil {
			return Identity{}, errors.NewValidationError("models.released", m.Released,
				fmt.Sprintf("release date of %s must be YYYY-MM", m.Key))
		}
	}
	name := m.Name
	if m.ExtendedReasoning {
		name = ExtendedName(name)
	}
	return Identity{
		Key:         m.Key,
		DisplayName: name,
		Provider:    g.Provider,
		ReleaseDate: m.Released,
	}, nil
}

// Version returns the table version label.
func (t *Table) Version() string {
	return t.version
}

// Test returns the canonical test id for a raw test key.
func (t *Table) Test(rawKey string) (string, bool) {
	id, ok := t.tests[rawKey]
	return id, ok
}

// Model returns the identity for a raw model key, or its Fallback.
func (t *Table) Model(rawKey string) (Identity, bool) {
	if id, ok := t.models[rawKey]; ok {
		return id, true
	}
	return Fallback(rawKey), false
}

// Resolve resolves a raw (model, test) pair.
func (t *Table) Resolve(modelKey, testKey string) (string, bool, Identity) {
	testID, ok := t.Test(testKey)
	id, _ := t.Model(modelKey)
	return testID, ok, id
}

// LegacyProvider returns the backfill provider for a legacy display name.
func (t *Table) LegacyProvider(displayName string) (Provider, bool) {
	if p, ok := t.legacy[displayName]; ok {
		return p, true
	}
	p, ok := t.byName[NameKey(displayName)]
	return p, ok
}

// Renames returns a copy of the rename patch list.
func (t *Table) Renames() []Rename {
	out := make([]Rename, len(t.renames))
	for i, r := range t.renames {
		r.Contributions = slices.Clone(r.Contributions)
		out[i] = r
	}
	return out
}

// Models returns every known identity in canonical order.
func (t *Table) Models() []Identity {
	return slices.Clone(t.ordered)
}

// Tests returns a copy of the raw test key mapping.
func (t *Table) Tests() map[string]string {
	return maps.Clone(t.tests)
}

// TestIDs returns the canonical test ids, sorted.
func (t *Table) TestIDs() []string {
	ids := slices.Collect(maps.Values(t.tests))
	slices.Sort(ids)
	return slices.Compact(ids)
}
