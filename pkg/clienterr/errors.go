// Package clienterr defines the error taxonomy shared by every esclient
// package.
//
// The hierarchy is flat. Every error kind matches the root sentinel ErrClient
// through errors.Is, and the concrete kinds are reached with errors.As:
//
//	var fv *clienterr.FailedValidation
//	if errors.As(err, &fv) {
//		fmt.Println(fv.BadValue)
//	}
package clienterr

import (
	"errors"
	"fmt"
)

// ErrClient is the root of the taxonomy.
var ErrClient = errors.New("esclient error")

// ConfigurationError reports malformed, incomplete or mutually exclusive
// configuration input.
type ConfigurationError struct {
	Message string
	Cause   error
}

// Configf creates a ConfigurationError from a format string.
func Configf(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// WrapConfig creates a ConfigurationError that wraps cause.
func WrapConfig(cause error, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...), Cause: cause}
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ConfigurationError) Unwrap() error { return e.Cause }

func (e *ConfigurationError) Is(target error) bool { return target == ErrClient }

// CouldNotDetermine is reported as the bad value when it cannot be extracted
// from the input.
const CouldNotDetermine = "(could not determine)"

// FailedValidation reports a schema constraint violation.
type FailedValidation struct {
	// TestWhat names the logical block under test.
	TestWhat string
	// Location is where in the document the block lives.
	Location string
	// Path is the validator path expression, e.g. data['client']['port'].
	Path string
	// BadValue is the offending value taken from the original input, or
	// CouldNotDetermine.
	BadValue any
	// Message is the raw constraint description.
	Message string
}

func (e *FailedValidation) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s @ %s", e.Message, e.Path)
	}
	return fmt.Sprintf("Configuration: %s: Location: %s: Bad Value: \"%v\", %s. Check configuration file.",
		e.TestWhat, e.Location, e.BadValue, msg)
}

func (e *FailedValidation) Is(target error) bool { return target == ErrClient }

// MissingArgument reports a required piece of information that was not
// supplied.
type MissingArgument struct {
	Name string
}

func (e *MissingArgument) Error() string {
	return fmt.Sprintf("missing required argument: %s", e.Name)
}

func (e *MissingArgument) Is(target error) bool { return target == ErrClient }

// NotMaster reports that the connected node is not the elected master while
// master-only affinity was requested.
type NotMaster struct {
	LocalNode  string
	MasterNode string
}

func (e *NotMaster) Error() string {
	return "master_only is True, but the client is connected to a non-master node."
}

func (e *NotMaster) Is(target error) bool { return target == ErrClient }

// ClientError reports an incompatible service version or a failed connection
// attempt.
type ClientError struct {
	Message string
	Cause   error
}

// Clientf creates a ClientError from a format string.
func Clientf(format string, args ...any) *ClientError {
	return &ClientError{Message: fmt.Sprintf(format, args...)}
}

// WrapClient creates a ClientError that wraps cause.
func WrapClient(cause error, format string, args ...any) *ClientError {
	return &ClientError{Message: fmt.Sprintf(format, args...), Cause: cause}
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ClientError) Unwrap() error { return e.Cause }

func (e *ClientError) Is(target error) bool { return target == ErrClient }

// IsConfiguration reports whether err is a ConfigurationError or a
// FailedValidation.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	var fv *FailedValidation
	return errors.As(err, &ce) || errors.As(err, &fv)
}
