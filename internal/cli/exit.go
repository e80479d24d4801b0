package cli

import "fmt"

// Process exit codes.
const (
	ExitSuccess    = 0  // Conversion written
	ExitUsage      = -1 // Missing or malformed command line options
	ExitProcessing = -2 // I/O, parse or framing failure
)

// ExitError carries the exit code for a failed run.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit %d: %v", e.Code, e.Err)
}

func (e *ExitError) Unwrap() error { return e.Err }
