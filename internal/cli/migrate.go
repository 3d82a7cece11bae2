package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/sjperalta/bitacora-api/internal/database"
)

// MigrationRow is one line of migrate --status
type MigrationRow struct {
	Version   int64      `json:"version"`
	Path      string     `json:"path"`
	State     string     `json:"state"`
	AppliedAt *time.Time `json:"applied_at,omitempty"`
}

// NewMigrateCommand creates the migrate command
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long: `Apply pending migrations. PostgreSQL uses the embedded goose migrations
(including the append-only trigger on day_closures); SQLite uses AutoMigrate.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()

			printer := &Printer{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			ctx := cmd.Context()

			if status {
				if app.Config.DatabaseDriver != database.DriverPostgres {
					return NewExitError(ExitCommandError, "migration status is only tracked for postgres")
				}
				statuses, err := database.MigrationStatus(ctx, app.DB)
				if err != nil {
					return WrapExitError(ExitCommandError, "read migration status", err)
				}
				rows := make([]MigrationRow, 0, len(statuses))
				for _, s := range statuses {
					row := MigrationRow{State: string(s.State)}
					if s.Source != nil {
						row.Version = s.Source.Version
						row.Path = s.Source.Path
					}
					if !s.AppliedAt.IsZero() {
						at := s.AppliedAt
						row.AppliedAt = &at
					}
					rows = append(rows, row)
				}
				return printer.Print(rows, func(w io.Writer) {
					for _, r := range rows {
						fmt.Fprintf(w, "%05d  %-10s %s\n", r.Version, r.State, r.Path)
					}
				})
			}

			if err := database.Migrate(ctx, app.DB, app.Config.DatabaseDriver); err != nil {
				return WrapExitError(ExitCommandError, "migrate", err)
			}
			result := map[string]string{"driver": app.Config.DatabaseDriver, "status": "up to date"}
			return printer.Print(result, func(w io.Writer) {
				fmt.Fprintf(w, "%s migrations %s\n", app.Config.DatabaseDriver, okMark(true))
			})
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "list applied and pending migrations instead of applying them")
	return cmd
}
