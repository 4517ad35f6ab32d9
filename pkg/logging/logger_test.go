package logging_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/trapkit/pkg/logging"
)

func TestDefaultLogger(t *testing.T) {
	original := *logging.Default()
	t.Cleanup(func() { logging.SetDefault(original) })

	buf := &bytes.Buffer{}
	logging.SetDefault(zerolog.New(buf).Level(zerolog.DebugLevel))

	logging.Info().Msg("info message")
	logging.Warn().Msg("warning message")

	assert.Contains(t, buf.String(), "info message")
	assert.Contains(t, buf.String(), "warning message")
}

func TestContextLogger(t *testing.T) {
	tl := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), tl.Logger)
	ctx = logging.WithRunID(ctx, "run-123")
	ctx = logging.WithTestCase(ctx, "moving-robot")
	ctx = logging.WithModel(ctx, "GPT-4o")
	ctx = logging.WithBatch(ctx, "openai_model_trials_combined.csv")

	logging.FromContext(ctx).Info().Msg("merged")

	tl.AssertContains(t, `"run_id":"run-123"`)
	tl.AssertContains(t, `"test_id":"moving-robot"`)
	tl.AssertContains(t, `"model":"GPT-4o"`)
	tl.AssertContains(t, "openai_model_trials_combined.csv")
	assert.Equal(t, "run-123", logging.RunID(ctx))
	assert.Len(t, tl.Lines(), 1)
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
	assert.Empty(t, logging.RunID(context.Background()))
}

func TestNewLoggerFromConfig(t *testing.T) {
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(originalLevel) })

	tests := []struct {
		name    string
		level   string
		want    []string
		notWant []string
	}{
		{name: "debug", level: "debug", want: []string{`"level":"debug"`, `"level":"info"`}},
		{name: "error only", level: "error", want: []string{`"level":"error"`}, notWant: []string{`"level":"info"`}},
		{name: "invalid falls back to info", level: "loud", want: []string{`"level":"info"`}, notWant: []string{`"level":"debug"`}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "trapkit.log")
			logger := logging.NewLoggerFromConfig(&logging.Config{
				Level:  tc.level,
				Format: "json",
				Output: path,
			})

			logger.Debug().Msg("debug")
			logger.Info().Msg("info")
			logger.Error().Msg("error")

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			output := string(data)
			for _, w := range tc.want {
				assert.True(t, strings.Contains(output, w), "missing %s in %s", w, output)
			}
			for _, w := range tc.notWant {
				assert.False(t, strings.Contains(output, w), "unexpected %s in %s", w, output)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := logging.DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "auto", cfg.Format)
	assert.Equal(t, "stderr", cfg.Output)
	assert.False(t, cfg.AddCaller)
}
