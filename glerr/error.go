// Package glerr defines the error taxonomy shared by every backend.
//
// Errors carry a Kind so callers can branch on the class of failure with
// errors.Is, independent of which native API produced it:
//
//	if errors.Is(err, glerr.ContextLost) {
//		// recreate rendering state
//	}
package glerr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Kind classifies an Error.
type Kind int

const (
	// OSError is a native failure that fits no other kind. Code holds the
	// native error code.
	OSError Kind = iota
	NotSupported
	BadConfig
	NoAvailableConfig
	OpenGLVersionNotSupported
	RobustnessNotSupported
	FlushControlNotSupported
	BadNativeDisplay
	BadNativeWindow
	BadNativePixmap
	BadAttribute
	BadMatch
	ContextLost
	BadAPIUsage
)

var kindNames = [...]string{
	OSError:                   "os error",
	NotSupported:              "not supported",
	BadConfig:                 "bad config",
	NoAvailableConfig:         "no available config",
	OpenGLVersionNotSupported: "opengl version not supported",
	RobustnessNotSupported:    "robustness not supported",
	FlushControlNotSupported:  "flush control not supported",
	BadNativeDisplay:          "bad native display",
	BadNativeWindow:           "bad native window",
	BadNativePixmap:           "bad native pixmap",
	BadAttribute:              "bad attribute",
	BadMatch:                  "bad match",
	ContextLost:               "context lost",
	BadAPIUsage:               "bad api usage",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error makes a bare Kind usable as an errors.Is target.
func (k Kind) Error() string { return k.String() }

// Error is the error type returned by every backend.
type Error struct {
	Kind Kind
	// Op names the native call or library operation that failed.
	Op string
	// Code is the native error code, or 0 when there is none.
	Code int64
	// CodeName is the symbolic name of Code, when known.
	CodeName string
	Reason   string
	// Err holds underlying causes, for example every rejected candidate
	// of a config search.
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Code != 0 {
		if e.CodeName != "" {
			fmt.Fprintf(&b, " (%s 0x%x)", e.CodeName, e.Code)
		} else {
			fmt.Fprintf(&b, " (0x%x)", e.Code)
		}
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the same Kind, or an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case Kind:
		return e.Kind == t
	case *Error:
		return e.Kind == t.Kind
	}
	return false
}

// New returns an error of the given kind.
func New(kind Kind, op, reason string) *Error {
	return &Error{Kind: kind, Op: op, Reason: reason}
}

// Native returns an error carrying a native error code.
func Native(kind Kind, op string, code int64, codeName string) *Error {
	return &Error{Kind: kind, Op: op, Code: code, CodeName: codeName}
}

// NotSupportedf returns a NotSupported error with a formatted reason.
func NotSupportedf(format string, args ...any) *Error {
	return &Error{Kind: NotSupported, Reason: fmt.Sprintf(format, args...)}
}

// BadAPIUsagef returns a BadAPIUsage error with a formatted reason.
func BadAPIUsagef(format string, args ...any) *Error {
	return &Error{Kind: BadAPIUsage, Reason: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of err. Errors that are not an *Error report
// OSError; accumulated errors report the kind of their first entry.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return OSError
}

// Append accumulates errs onto acc. Nil errors are dropped.
func Append(acc error, errs ...error) error {
	var merr *multierror.Error
	if acc != nil {
		merr = multierror.Append(merr, acc)
	}
	for _, err := range errs {
		if err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	if merr == nil {
		return nil
	}
	merr.ErrorFormat = listFormat
	return merr.ErrorOrNil()
}

// Errors flattens an accumulated error into its entries.
func Errors(err error) []error {
	if err == nil {
		return nil
	}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		return merr.WrappedErrors()
	}
	return []error{err}
}

func listFormat(errs []error) string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	parts := make([]string, len(errs))
	for i, err := range errs {
		parts[i] = err.Error()
	}
	return fmt.Sprintf("%d errors: [%s]", len(errs), strings.Join(parts, "; "))
}
