package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the errors a run can fail with.
type ErrorKind int

const (
	// KindGeneral is any unclassified failure.
	KindGeneral ErrorKind = iota

	// KindConfig is a malformed or mismatched branch/release configuration.
	KindConfig

	// KindLookup is a required host variable or input that is missing.
	KindLookup

	// KindRemote is a failure talking to the work-item service.
	KindRemote
)

// String returns the string representation of ErrorKind.
func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindLookup:
		return "lookup"
	case KindRemote:
		return "remote"
	default:
		return "general"
	}
}

// Sentinel errors matched by CheckError.Is so callers can use errors.Is
// without caring about the message.
var (
	ErrConfig = errors.New("configuration error")
	ErrLookup = errors.New("lookup error")
	ErrRemote = errors.New("remote service error")
)

// ExitCode defines the process exit codes of the release-gate binary.
// They let scripts tell the failure classes apart when the tool runs
// outside of Azure Pipelines.
type ExitCode int

const (
	// ExitSuccess indicates a Succeeded or Skipped outcome.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitConfigError indicates the branch/release configuration is invalid.
	ExitConfigError ExitCode = 2

	// ExitLookupError indicates a required variable or input is missing.
	ExitLookupError ExitCode = 3

	// ExitRemoteError indicates the work-item service could not be queried.
	ExitRemoteError ExitCode = 4

	// ExitViolations indicates the check ran and found offending work items
	// (or none were linked).
	ExitViolations ExitCode = 5
)

// ExitCodeForKind maps an ErrorKind to its process exit code.
func ExitCodeForKind(k ErrorKind) ExitCode {
	switch k {
	case KindConfig:
		return ExitConfigError
	case KindLookup:
		return ExitLookupError
	case KindRemote:
		return ExitRemoteError
	default:
		return ExitGeneralError
	}
}

// CheckError is the error type returned by every stage of a run.
// It carries an ErrorKind so the orchestration boundary can pick the
// right exit code while still reporting the plain message.
type CheckError struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Message is the human-readable error description reported to the host.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CheckError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CheckError) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels (ErrConfig, ErrLookup, ErrRemote).
func (e *CheckError) Is(target error) bool {
	switch target {
	case ErrConfig:
		return e.Kind == KindConfig
	case ErrLookup:
		return e.Kind == KindLookup
	case ErrRemote:
		return e.Kind == KindRemote
	}
	return false
}

// NewConfigError creates a configuration CheckError.
func NewConfigError(message string) *CheckError {
	return &CheckError{Kind: KindConfig, Message: message}
}

// NewLookupError creates a lookup CheckError.
func NewLookupError(message string) *CheckError {
	return &CheckError{Kind: KindLookup, Message: message}
}

// WrapRemoteError creates a remote CheckError that wraps err.
func WrapRemoteError(message string, err error) *CheckError {
	return &CheckError{Kind: KindRemote, Message: message, Err: err}
}

// KindOf returns the ErrorKind of err, or KindGeneral when err is not
// (and does not wrap) a CheckError.
func KindOf(err error) ErrorKind {
	var ce *CheckError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindGeneral
}
