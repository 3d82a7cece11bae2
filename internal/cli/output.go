package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/sjperalta/bitacora-api/internal/models"
	"gopkg.in/yaml.v3"
)

// Exit codes for CLI commands
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Check failed (tampered content, unlocked entries left)
	ExitCommandError = 2 // Command error (bad arguments, database not reachable)
)

// ExitError carries the process exit code of a failed command
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error; ExitFailure when it is not an ExitError
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Printer writes command results as text, JSON or YAML
type Printer struct {
	Format string
	Writer io.Writer
}

// Print renders data. Text output is produced by text; JSON and YAML use the
// JSON field names of data.
func (p *Printer) Print(data interface{}, text func(w io.Writer)) error {
	switch p.Format {
	case "json":
		enc := json.NewEncoder(p.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case "yaml":
		raw, err := json.Marshal(data)
		if err != nil {
			return err
		}
		var generic interface{}
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(p.Writer)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(generic)
	default:
		text(p.Writer)
		return nil
	}
}

func colorState(state string) string {
	switch state {
	case models.DayStateClosed:
		return color.New(color.FgHiGreen).Sprint(state)
	case models.DayStateLockIncomplete:
		return color.New(color.FgYellow).Sprint(state)
	default:
		return color.New(color.FgCyan).Sprint(state)
	}
}

func okMark(ok bool) string {
	if ok {
		return color.New(color.FgHiGreen).Sprint("OK")
	}
	return color.New(color.FgRed).Sprint("FAILED")
}
