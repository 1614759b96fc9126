package registry

import (
	"errors"
	"fmt"
)

// ErrorKind identifies the category of a failure. It drives exit-code mapping.
type ErrorKind int

const (
	// KindNone marks a successful result.
	KindNone ErrorKind = iota
	// KindDuplicateCommand is returned when a command name is registered twice.
	KindDuplicateCommand
	// KindUnknownCommand is returned when no command matches the requested name.
	KindUnknownCommand
	// KindMissingRequiredOption is returned when a required option or argument is absent.
	KindMissingRequiredOption
	// KindInvalidOptionValue is returned when a value cannot be converted to the option's type.
	KindInvalidOptionValue
	// KindUnrecognizedOption is returned for undeclared flags and surplus arguments.
	KindUnrecognizedOption
	// KindInternal covers faults raised inside handlers and broken command specs.
	KindInternal
	// KindHandlerReported is an explicit business-logic failure returned by a handler.
	KindHandlerReported
)

// Exit codes shared by every command.
const (
	ExitOK         = 0 // success
	ExitFailure    = 1 // handler-reported or internal failure
	ExitUsageError = 2 // argument parsing failure
)

// Sentinel errors, one per kind, for use with errors.Is.
var (
	ErrDuplicateCommand      = errors.New("duplicate command")
	ErrUnknownCommand        = errors.New("unknown command")
	ErrMissingRequiredOption = errors.New("missing required option")
	ErrInvalidOptionValue    = errors.New("invalid option value")
	ErrUnrecognizedOption    = errors.New("unrecognized option")
	ErrInternal              = errors.New("internal error")
	ErrHandlerReported       = errors.New("command failed")
)

var kindNames = map[ErrorKind]string{
	KindNone:                  "None",
	KindDuplicateCommand:      "DuplicateCommandError",
	KindUnknownCommand:        "UnknownCommandError",
	KindMissingRequiredOption: "MissingRequiredOptionError",
	KindInvalidOptionValue:    "InvalidOptionValueError",
	KindUnrecognizedOption:    "UnrecognizedOptionError",
	KindInternal:              "InternalError",
	KindHandlerReported:       "HandlerReportedError",
}

// String returns the kind's stable name, e.g. "UnknownCommandError".
func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// IsUsage reports whether the kind is an argument parsing failure.
func (k ErrorKind) IsUsage() bool {
	switch k {
	case KindUnknownCommand, KindMissingRequiredOption, KindInvalidOptionValue, KindUnrecognizedOption:
		return true
	}
	return false
}

// ExitCode maps the kind to the process exit status.
func (k ErrorKind) ExitCode() int {
	switch {
	case k == KindNone:
		return ExitOK
	case k.IsUsage():
		return ExitUsageError
	default:
		return ExitFailure
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindDuplicateCommand:
		return ErrDuplicateCommand
	case KindUnknownCommand:
		return ErrUnknownCommand
	case KindMissingRequiredOption:
		return ErrMissingRequiredOption
	case KindInvalidOptionValue:
		return ErrInvalidOptionValue
	case KindUnrecognizedOption:
		return ErrUnrecognizedOption
	case KindHandlerReported:
		return ErrHandlerReported
	default:
		return ErrInternal
	}
}

// Error is a categorized failure raised by registration or dispatch.
type Error struct {
	Kind    ErrorKind
	Command string // command name, if known
	Option  string // option or argument name, if relevant
	Msg     string
	Err     error // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel error for the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func newError(kind ErrorKind, command, option, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Command: command,
		Option:  option,
		Msg:     fmt.Sprintf(format, args...),
	}
}

// KindOf returns the kind carried by err, KindHandlerReported for plain
// errors, and KindNone for nil.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindHandlerReported
}
