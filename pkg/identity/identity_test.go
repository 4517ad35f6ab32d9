package identity

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/trapkit/pkg/errors"
)

const testTable = `
version: test
tests:
  cafe_wall: modified-cafe-wall
  moving_robot: moving-robot
providers:
  - provider: OpenAI
    models:
      - { key: gpt-5-thinking, name: GPT-5, extended_reasoning: true, released: "2025-08" }
      - { key: gpt-4o, name: GPT-4o, released: "2024-05" }
  - provider: Google
    models:
      - { key: gemini-2.5-pro, name: Gemini 2.5 Pro, released: "2025-03" }
      - { key: gemini-next, name: Gemini Next }
legacy_providers:
  Gemini 2.5 Pro: Google
renames:
  - { from: GPT-5 Instant, to: GPT-5.1 Instant }
`

func TestParse(t *testing.T) {
	table, err := Parse([]byte(testTable))
	require.NoError(t, err)

	assert.Equal(t, "test", table.Version())

	id, ok := table.Test("cafe_wall")
	assert.True(t, ok)
	assert.Equal(t, "modified-cafe-wall", id)

	_, ok = table.Test("no_such_trap")
	assert.False(t, ok)

	model, ok := table.Model("gpt-5-thinking")
	require.True(t, ok)
	assert.Equal(t, Identity{
		Key:         "gpt-5-thinking",
		DisplayName: "GPT-5†",
		Provider:    ProviderOpenAI,
		ReleaseDate: "2025-08",
	}, model)

	assert.Equal(t, []string{"modified-cafe-wall", "moving-robot"}, table.TestIDs())
}

func TestModelFallback(t *testing.T) {
	table, err := Parse([]byte(testTable))
	require.NoError(t, err)

	model, ok := table.Model("mystery-model")
	assert.False(t, ok)
	assert.Equal(t, "mystery-model", model.DisplayName)
	assert.Equal(t, ProviderUnknown, model.Provider)
	assert.Equal(t, "9999-99", model.SortDate())
}

func TestResolve(t *testing.T) {
	table, err := Parse([]byte(testTable))
	require.NoError(t, err)

	testID, ok, model := table.Resolve("gpt-4o", "moving_robot")
	assert.True(t, ok)
	assert.Equal(t, "moving-robot", testID)
	assert.Equal(t, "GPT-4o", model.DisplayName)

	_, ok, model = table.Resolve("unknown", "unknown")
	assert.False(t, ok)
	assert.Equal(t, ProviderUnknown, model.Provider)
}

func TestModelsCanonicalOrder(t *testing.T) {
	table, err := Parse([]byte(testTable))
	require.NoError(t, err)

	var names []string
	for _, m := range table.Models() {
		names = append(names, m.DisplayName)
	}
	assert.Equal(t, []string{"GPT-4o", "Gemini 2.5 Pro", "GPT-5†", "Gemini Next"}, names)
}

func TestCompare(t *testing.T) {
	ids := []Identity{
		{Key: "c", DisplayName: "Zeta"},
		{Key: "b", DisplayName: "Beta", ReleaseDate: "2025-08"},
		{Key: "a", DisplayName: "Alpha", ReleaseDate: "2024-05"},
		{Key: "d", DisplayName: "Beta", ReleaseDate: "2025-08"},
	}
	sorted := Sorted(ids)
	keys := make([]string, len(sorted))
	for i, id := range sorted {
		keys[i] = id.Key
	}
	assert.Equal(t, []string{"a", "b", "d", "c"}, keys)
	assert.Equal(t, "c", ids[0].Key, "Sorted must not reorder its input")
}

func TestLegacyProvider(t *testing.T) {
	table, err := Parse([]byte(testTable))
	require.NoError(t, err)

	p, ok := table.LegacyProvider("Gemini 2.5 Pro")
	assert.True(t, ok)
	assert.Equal(t, ProviderGoogle, p)

	_, ok = table.LegacyProvider("Some Old Model")
	assert.False(t, ok)
}

func TestRenamesAreCopied(t *testing.T) {
	table, err := Parse([]byte(testTable))
	require.NoError(t, err)

	renames := table.Renames()
	require.Len(t, renames, 1)
	renames[0].To = "changed"
	assert.Equal(t, "GPT-5.1 Instant", table.Renames()[0].To)
}

func TestRenameApplies(t *testing.T) {
	table, err := Parse([]byte(`
renames:
  - { from: A, to: B }
  - { from: C, to: D, contributions: [orig-2025] }
`))
	require.NoError(t, err)
	renames := table.Renames()
	require.Len(t, renames, 2)

	assert.True(t, renames[0].Applies(""))
	assert.False(t, renames[0].Applies("orig-2025"))
	assert.True(t, renames[1].Applies(""))
	assert.True(t, renames[1].Applies("orig-2025"))
	assert.False(t, renames[1].Applies("run-2027"))

	renames[1].Contributions[0] = "changed"
	assert.Equal(t, []string{"orig-2025"}, table.Renames()[1].Contributions)
}

func TestParseRejectsInvalidTables(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "unknown provider",
			yaml: `
providers:
  - provider: Mistral
    models:
      - { key: m, name: M }
`,
		},
		{
			name: "duplicate display name",
			yaml: `
providers:
  - provider: OpenAI
    models:
      - { key: a, name: Same }
      - { key: b, name: Same }
`,
		},
		{
			name: "duplicate key",
			yaml: `
providers:
  - provider: OpenAI
    models:
      - { key: a, name: One }
      - { key: a, name: Two }
`,
		},
		{
			name: "bad release date",
			yaml: `
providers:
  - provider: Google
    models:
      - { key: a, name: A, released: "March 2025" }
`,
		},
		{
			name: "rename chain",
			yaml: `
renames:
  - { from: A, to: B }
  - { from: B, to: C }
`,
		},
		{
			name: "empty model key",
			yaml: `
providers:
  - provider: Google
    models:
      - { key: "", name: A }
`,
		},
		{
			name: "legacy name repeated after normalization",
			yaml: `
legacy_providers:
  "Café": Google
  "Cafe\u0301": OpenAI
`,
		},
		{
			name: "empty rename contribution",
			yaml: `
renames:
  - { from: A, to: B, contributions: [""] }
`,
		},
		{
			name: "unknown field",
			yaml: `
models: []
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParseValidationErrorsAreTyped(t *testing.T) {
	_, err := Parse([]byte(`
providers:
  - provider: Mistral
    models: []
`))
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	var cfgErr *errors.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"tables/custom.yaml": &fstest.MapFile{Data: []byte(testTable)},
	}

	table, err := LoadFS(fsys, "tables/custom.yaml")
	require.NoError(t, err)
	assert.Len(t, table.Models(), 4)

	_, err = LoadFS(fsys, "tables/missing.yaml")
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)

	assert.Len(t, table.Models(), 34)
	assert.Len(t, table.Tests(), 7)
	assert.Len(t, table.Renames(), 2)

	model, ok := table.Model("gpt-5.1-thinking")
	require.True(t, ok)
	assert.Equal(t, "GPT-5.1†", model.DisplayName)

	p, ok := table.LegacyProvider("Claude Haiku 4.5")
	assert.True(t, ok)
	assert.Equal(t, ProviderAnthropic, p)

	models := table.Models()
	assert.Equal(t, "claude-haiku-3.0", models[0].Key)
	assert.Equal(t, "2026-02", models[len(models)-1].ReleaseDate)
}

func TestNameKey(t *testing.T) {
	// "é" precomposed vs "e" followed by a combining acute accent.
	assert.Equal(t, NameKey("Caf\u00e9"), NameKey("Cafe\u0301"))
	assert.Equal(t, "GPT-5†", ExtendedName("GPT-5"))
	assert.Equal(t, "GPT-5†", ExtendedName("GPT-5†"))
}
