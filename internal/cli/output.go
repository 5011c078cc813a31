package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Program failure (compile error, stuck net, budget)
	ExitCommandError = 2 // Command error (bad paths, unreadable module, etc.)
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
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

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles text, JSON, and YAML output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Response is the structured response shape for json/yaml output.
type Response struct {
	Status string `json:"status" yaml:"status"` // "ok" or "error"
	Data   any    `json:"data,omitempty" yaml:"data,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Success outputs a result in the configured format. For text format, data's
// fmt.Stringer or default formatting is printed directly; json and yaml wrap
// it in a status envelope.
func (f *OutputFormatter) Success(data any) error {
	switch f.Format {
	case "json":
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(Response{Status: "ok", Data: data})
	case "yaml":
		enc := yaml.NewEncoder(f.Writer)
		defer enc.Close()
		return enc.Encode(Response{Status: "ok", Data: data})
	default:
		_, err := fmt.Fprintln(f.Writer, data)
		return err
	}
}

// Failure outputs an error in the configured format.
func (f *OutputFormatter) Failure(message string) error {
	switch f.Format {
	case "json":
		return json.NewEncoder(f.Writer).Encode(Response{Status: "error", Error: message})
	case "yaml":
		enc := yaml.NewEncoder(f.Writer)
		defer enc.Close()
		return enc.Encode(Response{Status: "error", Error: message})
	default:
		_, err := fmt.Fprintf(f.Writer, "error: %s\n", message)
		return err
	}
}
