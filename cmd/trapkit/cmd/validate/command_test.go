package validate

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/trapkit/internal/cmd/application"
	"github.com/agentstation/trapkit/pkg/errors"
)

func writeDocument(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "traps.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, app application.Application, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewCommand(app)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidateDocument(t *testing.T) {
	path := writeDocument(t, `[
  {
    "id": "moving-robot",
    "name": "Moving Robot",
    "modelTests": [
      {"model": "GPT-4o", "passRate": 0.5, "trials": 10},
      {"model": "GPT-4o", "passRate": 0.6, "trials": 10, "provider": "OpenAI"}
    ]
  }
]`)

	out, err := run(t, &application.Mock{}, path)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid: 1 test cases, 2 model results")
	assert.Contains(t, out, "duplicate_model")
	assert.Contains(t, out, "missing_provider")
}

func TestValidateSettingsDocument(t *testing.T) {
	path := writeDocument(t, `[{"id": "moving-robot", "name": "Moving Robot"}]`)
	app := &application.Mock{
		SettingsFunc:     func() application.Settings { return application.Settings{Document: path} },
		OutputFormatFunc: func() string { return "json" },
	}

	out, err := run(t, app)
	require.NoError(t, err)
	assert.Contains(t, out, `"testCases": 1`)
}

func TestValidateInvalid(t *testing.T) {
	path := writeDocument(t, `{"id": "not-an-array"}`)

	out, err := run(t, &application.Mock{}, "--document", path)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Contains(t, out, "is not valid")
}

func TestValidateMissing(t *testing.T) {
	_, err := run(t, &application.Mock{}, filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}
