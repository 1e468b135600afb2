package cli

import (
	"errors"
	"fmt"

	"github.com/esclient-go/esclient/pkg/clienterr"
)

// Process exit statuses.
const (
	ExitOK            = 0
	ExitConfiguration = 1
	ExitConnection    = 2
	ExitNotMaster     = 3
)

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// ExitCode returns the exit status for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var notMaster *clienterr.NotMaster
	var missing *clienterr.MissingArgument
	switch {
	case errors.As(err, &notMaster):
		return ExitNotMaster
	case clienterr.IsConfiguration(err), errors.As(err, &missing):
		return ExitConfiguration
	case errors.Is(err, clienterr.ErrClient):
		return ExitConnection
	default:
		return ExitConfiguration
	}
}
