package app

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/trapkit/pkg/logging"
)

// configureLogging builds the CLI logger and installs it as the logging
// package default, so library code without a context logger writes through
// it too. A rejected log level is reported on the new logger.
//
// The level comes from log_level (flag, TRAPKIT_LOG_LEVEL or the config
// file) when set, then from -q, then from -v, then defaults to info.
func configureLogging(config *Config) *zerolog.Logger {
	level, problem := resolveLogLevel(config)

	logging.Configure(&logging.Config{
		Level:     level,
		Format:    config.LogFormat,
		Output:    config.LogOutput,
		AddCaller: level == zerolog.DebugLevel.String() || level == zerolog.TraceLevel.String(),
	})

	logger := logging.Default()
	if problem != "" {
		logger.Warn().Str("log_level", level).Msg(problem)
	}
	return logger
}

// resolveLogLevel picks the effective level name. The second result explains
// a rejected or conflicting setting and is empty otherwise.
func resolveLogLevel(config *Config) (string, string) {
	if config.LogLevel != "" {
		if level, ok := parseLogLevel(config.LogLevel); ok {
			return level, ""
		}
		return zerolog.InfoLevel.String(), fmt.Sprintf("unknown log level %q", config.LogLevel)
	}

	switch {
	case config.Quiet && config.Verbose:
		return zerolog.WarnLevel.String(), "--verbose and --quiet both set; --quiet wins"
	case config.Quiet:
		return zerolog.WarnLevel.String(), ""
	case config.Verbose:
		return zerolog.DebugLevel.String(), ""
	}
	return zerolog.InfoLevel.String(), ""
}

// parseLogLevel accepts trace through error in any case.
func parseLogLevel(s string) (string, bool) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || level < zerolog.TraceLevel || level > zerolog.ErrorLevel {
		return "", false
	}
	return level.String(), true
}
