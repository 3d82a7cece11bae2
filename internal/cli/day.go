package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sjperalta/bitacora-api/internal/models"
	"github.com/sjperalta/bitacora-api/internal/services"
)

// NewDayCommand creates the day command
func NewDayCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "day <project-id> <date>",
		Short: "Show the entries and lock state of a project day",
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

			view, err := app.Services.Bitacora.InspectDay(cmd.Context(), projectID, args[1])
			if err != nil {
				return commandErr(err)
			}

			loc := app.Config.Location()
			printer := &Printer{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return printer.Print(view, func(w io.Writer) {
				fmt.Fprintf(w, "%s  %s  %s\n", view.Project.Name, view.Date, colorState(view.State))
				if view.Closure != nil {
					fmt.Fprintf(w, "folio %s  closed %s by %s\n", view.Closure.Folio,
						view.Closure.ClosedAt.In(loc).Format("2006-01-02 15:04"), view.Closure.ClosedByName)
				}
				if len(view.Entries) == 0 {
					fmt.Fprintln(w, "no entries")
					return
				}
				for _, e := range view.Entries {
					lock := " "
					if e.IsLocked {
						lock = "L"
					}
					title := "-"
					if e.Title != nil {
						title = *e.Title
					}
					fmt.Fprintf(w, "%s %s %-8s #%-6d %s (%s)\n", lock, e.CreatedAt.In(loc).Format("15:04"), e.Source, e.ID, title, e.AuthorName)
				}
			})
		},
	}
}

// DayStatusReport is the output of close-status
type DayStatusReport struct {
	ProjectID     uint    `json:"project_id"`
	Date          string  `json:"date"`
	State         string  `json:"state"`
	UnlockedCount int64   `json:"unlocked_count"`
	EntryCount    int     `json:"entry_count"`
	Folio         *string `json:"folio,omitempty"`
}

// NewCloseStatusCommand creates the close-status command. It exits with
// ExitFailure while a closed day still has unlocked entries.
func NewCloseStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "close-status <project-id> <date>",
		Short: "Report whether a day is open, closed or closed with unlocked entries",
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

			view, err := app.Services.Bitacora.InspectDay(cmd.Context(), projectID, args[1])
			if err != nil {
				return commandErr(err)
			}
			report := DayStatusReport{
				ProjectID:     projectID,
				Date:          view.Date,
				State:         view.State,
				UnlockedCount: view.UnlockedCount,
				EntryCount:    len(view.Entries),
			}
			if view.Closure != nil {
				report.Folio = &view.Closure.Folio
			}

			printer := &Printer{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			if err := printer.Print(report, func(w io.Writer) {
				fmt.Fprintf(w, "%s  %s  entries=%d unlocked=%d\n", report.Date, colorState(report.State), report.EntryCount, report.UnlockedCount)
			}); err != nil {
				return err
			}
			if report.State == models.DayStateLockIncomplete {
				return NewExitError(ExitFailure, "day is closed but has unlocked entries; run repair-locks")
			}
			return nil
		},
	}
}

// commandErr turns caller mistakes into ExitCommandError and keeps the rest as is
func commandErr(err error) error {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrNotFound):
		return WrapExitError(ExitCommandError, "bad request", err)
	default:
		return err
	}
}
