// Command trapkit aggregates vision-model trial batches and merges them into
// the cognitive-trap knowledge base.
package main

import (
	"context"
	"os"

	"github.com/agentstation/trapkit/cmd/trapkit/app"
)

// Set at release time with -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	a, err := app.New(version, commit, date, builtBy)
	if err != nil {
		app.ExitOnError(err)
	}

	// SIGINT or SIGTERM cancels the run; update checks the context before it
	// writes, so an interrupted run leaves traps.json as it was.
	ctx, stop := app.ContextWithSignals(context.Background())
	err = a.Execute(ctx, os.Args[1:])
	stop()

	if shutdownErr := a.Shutdown(context.Background()); shutdownErr != nil {
		a.Logger().Warn().Err(shutdownErr).Msg("Shutdown failed")
	}
	app.ExitOnError(err)
}
