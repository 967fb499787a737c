// Package errors provides the structured error taxonomy used by the binding engine
// and the process-wide sink that receives errors raised after setup.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind identifies the category of an error.
type Kind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown Kind = iota
	// KindValidation indicates a binding was applied to the wrong node type or
	// without options. It aborts that binding only.
	KindValidation
	// KindBinding indicates an expression could not be resolved against its
	// data context.
	KindBinding
	// KindInvalidTarget indicates a binding resolved to a value of the wrong
	// shape, e.g. a plain value bound to the command handler.
	KindInvalidTarget
	// KindReadOnly indicates a write to a computed property.
	KindReadOnly
	// KindAlreadyBound indicates bindings were applied twice to the same node.
	KindAlreadyBound
	// KindParse indicates malformed binding declaration or expression syntax.
	KindParse
	// KindDisposed indicates use of a resource after disposal.
	KindDisposed
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindBinding:
		return "binding"
	case KindInvalidTarget:
		return "invalid target"
	case KindReadOnly:
		return "read-only violation"
	case KindAlreadyBound:
		return "already bound"
	case KindParse:
		return "parse"
	case KindDisposed:
		return "disposed"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// Error is a structured binding engine error.
type Error struct {
	// Op is the operation that failed (e.g., "handlers.checked").
	Op string
	// Kind categorizes the error.
	Kind Kind
	// Path is the offending expression path or source, if any.
	Path string
	// Err is the underlying error.
	Err error
}

func (e *Error) Error() string {
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}
	switch {
	case e.Path != "" && e.Op != "":
		return fmt.Sprintf("%s [%s] %q: %s", e.Op, e.Kind, e.Path, msg)
	case e.Path != "":
		return fmt.Sprintf("[%s] %q: %s", e.Kind, e.Path, msg)
	case e.Op != "":
		return fmt.Sprintf("%s [%s]: %s", e.Op, e.Kind, msg)
	default:
		return fmt.Sprintf("[%s]: %s", e.Kind, msg)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an *Error from a formatted message.
func New(op string, kind Kind, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches a kind to err. It returns nil when err is nil.
func Wrap(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// Validation reports a binding that cannot be set up on the given node.
func Validation(op, format string, args ...any) *Error {
	return New(op, KindValidation, format, args...)
}

// Binding reports an expression path that could not be resolved.
func Binding(op, path, format string, args ...any) *Error {
	e := New(op, KindBinding, format, args...)
	e.Path = path
	return e
}

// InvalidTarget reports a binding whose resolved value has the wrong shape.
func InvalidTarget(op, path string, got any) *Error {
	e := New(op, KindInvalidTarget, "unexpected binding target %T", got)
	e.Path = path
	return e
}

// KindOf returns the kind of the first *Error found in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	var p *PanicError
	if stderrors.As(err, &p) {
		return KindPanic
	}
	return KindUnknown
}

// Is reports whether any error in err's chain has the given kind. Joined
// errors are searched as well.
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	if KindOf(err) == kind {
		return true
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if Is(e, kind) {
				return true
			}
		}
	}
	return false
}

// PanicError represents a panic recovered inside a subscription callback.
type PanicError struct {
	// Op is the operation that panicked.
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}
