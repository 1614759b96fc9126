package registry

import "fmt"

// Result is the outcome of one dispatch: a success with an optional message,
// or a failure with a kind and a message.
type Result struct {
	Kind    ErrorKind `json:"-"`
	Message string    `json:"message,omitempty"`
	Command string    `json:"command,omitempty"`
}

// Success returns a successful result. An empty message prints nothing.
func Success(message string) Result {
	return Result{Kind: KindNone, Message: message}
}

// Successf returns a successful result with a formatted message.
func Successf(format string, args ...any) Result {
	return Success(fmt.Sprintf(format, args...))
}

// Failure returns a failed result of the given kind.
func Failure(kind ErrorKind, message string) Result {
	if kind == KindNone {
		kind = KindHandlerReported
	}
	return Result{Kind: kind, Message: message}
}

// Failuref returns a handler-reported failure with a formatted message.
func Failuref(format string, args ...any) Result {
	return Failure(KindHandlerReported, fmt.Sprintf(format, args...))
}

// FromError converts a handler error into a result. A nil error is a silent
// success, a *Error keeps its kind and anything else is handler-reported.
func FromError(err error) Result {
	if err == nil {
		return Success("")
	}
	return Failure(KindOf(err), err.Error())
}

// OK reports whether the result is a success.
func (r Result) OK() bool { return r.Kind == KindNone }

// ExitCode returns the process exit status for the result.
func (r Result) ExitCode() int { return r.Kind.ExitCode() }

func failureFrom(e *Error) Result {
	return Result{Kind: e.Kind, Message: e.Error(), Command: e.Command}
}
