package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewVerifyCommand creates the verify command. It exits with ExitFailure when the
// sealed text no longer matches its hash or entries of the day are unlocked.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <project-id> <date>",
		Short: "Check the integrity of a closed day",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseProjectID(args[0])
			if err != nil {
				return err
			}
			app, err := openApp(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()

			report, err := app.Services.Closure.VerifyIntegrityByDate(cmd.Context(), projectID, args[1])
			if err != nil {
				return commandErr(err)
			}

			printer := &Printer{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			if err := printer.Print(report, func(w io.Writer) {
				fmt.Fprintf(w, "folio    %s\n", report.Folio)
				fmt.Fprintf(w, "date     %s\n", report.Date)
				fmt.Fprintf(w, "content  %s\n", okMark(report.Valid))
				fmt.Fprintf(w, "locks    %s (%s, %d unlocked)\n", okMark(report.UnlockedEntries == 0), colorState(report.State), report.UnlockedEntries)
				fmt.Fprintf(w, "sha256   %s\n", report.StoredHash)
			}); err != nil {
				return err
			}

			if !report.Valid {
				return NewExitError(ExitFailure, "sealed content does not match its hash")
			}
			if report.UnlockedEntries > 0 {
				return NewExitError(ExitFailure, "closed day has unlocked entries; run repair-locks")
			}
			return nil
		},
	}
}
