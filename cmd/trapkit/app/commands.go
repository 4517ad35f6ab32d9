package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/trapkit/cmd/trapkit/cmd/aggregate"
	"github.com/agentstation/trapkit/cmd/trapkit/cmd/provenance"
	"github.com/agentstation/trapkit/cmd/trapkit/cmd/restore"
	"github.com/agentstation/trapkit/cmd/trapkit/cmd/tables"
	"github.com/agentstation/trapkit/cmd/trapkit/cmd/update"
	"github.com/agentstation/trapkit/cmd/trapkit/cmd/validate"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(update.NewCommand(a))
	rootCmd.AddCommand(aggregate.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(validate.NewCommand(a))
	rootCmd.AddCommand(tables.NewCommand(a))
	rootCmd.AddCommand(restore.NewCommand(a))
	rootCmd.AddCommand(provenance.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(a.newVersionCommand())
}

// newVersionCommand creates the version command.
func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("trapkit %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
