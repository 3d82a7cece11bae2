// Package cli implements the bitacora operator command: migrations, day
// inspection, lock repair and integrity checks, run against the database
// directly and without an API actor.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands
type RootOptions struct {
	Verbose     bool
	Format      string // "text" | "json" | "yaml"
	Driver      string
	DatabaseURL string
}

// ValidFormats defines the allowed output formats
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command of the operator CLI
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "bitacora",
		Short: "Bitácora operator tool",
		Long: `Operator tool for the BESOP bitácora service.

Runs migrations, inspects project days and their lock state, repairs days
whose entries were not fully locked at closure and verifies sealed content.
Reads the same environment as the API (.env is loaded automatically).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (SQL and debug logs on stderr)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "database driver, overrides DATABASE_DRIVER (postgres|sqlite)")
	cmd.PersistentFlags().StringVar(&opts.DatabaseURL, "database-url", "", "database URL, overrides DATABASE_URL")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewDayCommand(opts))
	cmd.AddCommand(NewCloseStatusCommand(opts))
	cmd.AddCommand(NewRepairLocksCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
