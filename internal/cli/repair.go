package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/sjperalta/bitacora-api/internal/services"
)

// NewRepairLocksCommand creates the repair-locks command
func NewRepairLocksCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		projectArg string
		date       string
		lookback   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "repair-locks",
		Short: "Lock entries of closed days that were left unlocked",
		Long: `Lock the remaining entries of closed days. With --project and --date a
single day is repaired; otherwise every day closed within --lookback is
checked, the same sweep the API runs on a schedule. Safe to repeat.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (projectArg == "") != (date == "") {
				return NewExitError(ExitCommandError, "--project and --date go together")
			}
			app, err := openApp(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			var results []services.RepairResult
			if projectArg != "" {
				projectID, err := parseProjectID(projectArg)
				if err != nil {
					return err
				}
				result, err := app.Services.Closure.RepairLocks(ctx, projectID, date)
				if err != nil {
					return commandErr(err)
				}
				results = append(results, *result)
			} else {
				if lookback <= 0 {
					lookback = app.Config.LockRepairLookback
				}
				results, err = app.Services.Closure.RepairRecentLocks(ctx, lookback)
				if err != nil {
					return err
				}
			}

			if results == nil {
				results = []services.RepairResult{}
			}
			printer := &Printer{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return printer.Print(results, func(w io.Writer) {
				if len(results) == 0 {
					fmt.Fprintln(w, "nothing to repair")
					return
				}
				for _, r := range results {
					fmt.Fprintf(w, "project %d  %s  locked=%d  %s\n", r.ProjectID, r.Date, r.Locked, colorState(r.State))
				}
			})
		},
	}

	cmd.Flags().StringVar(&projectArg, "project", "", "project id")
	cmd.Flags().StringVar(&date, "date", "", "day to repair (YYYY-MM-DD)")
	cmd.Flags().DurationVar(&lookback, "lookback", 0, "how far back to sweep closed days (default LOCK_REPAIR_LOOKBACK)")
	return cmd
}
