// Package diag implements the diagnostic sink the wire codec reports
// errors through: structured, position-adorned errors plus a small
// "custom message" escape hatch, grounded on the contract-assertion shape
// used elsewhere in the corpus for internal consistency errors and on this
// codec's own fmt.Errorf("...: %w", err) wrapping idiom.
package diag

import "fmt"

// Kind enumerates the structured error categories §7 names.
type Kind uint8

const (
	UnexpectedKind Kind = iota
	BadBoolean
	BadCharacter
	BadLength
	ExpectedOption
	Overflow
	Truncated
	IndexOutOfBounds
	FailedPhf
	Custom
)

func (k Kind) String() string {
	switch k {
	case UnexpectedKind:
		return "UnexpectedKind"
	case BadBoolean:
		return "BadBoolean"
	case BadCharacter:
		return "BadCharacter"
	case BadLength:
		return "BadLength"
	case ExpectedOption:
		return "ExpectedOption"
	case Overflow:
		return "Overflow"
	case Truncated:
		return "Truncated"
	case IndexOutOfBounds:
		return "IndexOutOfBounds"
	case FailedPhf:
		return "FailedPhf"
	case Custom:
		return "Custom"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Error is the concrete structured error every Sink constructs. Pos is a
// byte offset from the start of the reader, -1 when not applicable.
type Error struct {
	Kind Kind
	Pos  int
	// Expected/Actual carry the tag.Kind (as a fmt.Stringer) mismatch
	// for UnexpectedKind, the lengths for BadLength, and so on; left as
	// `any` so this package doesn't import tag and create a cycle.
	Expected any
	Actual   any
	Cause    error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == UnexpectedKind:
		return fmt.Sprintf("wire: expected %v, got %v at offset %d", e.Expected, e.Actual, e.Pos)
	case e.Kind == BadLength:
		return fmt.Sprintf("wire: bad length: expected %v, got %v at offset %d", e.Expected, e.Actual, e.Pos)
	case e.Cause != nil:
		return fmt.Sprintf("wire: %s at offset %d: %s", e.Kind, e.Pos, e.Cause)
	default:
		return fmt.Sprintf("wire: %s at offset %d", e.Kind, e.Pos)
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Sink constructs domain errors the decoder reports through. The default
// policy is immediate return (see Immediate); Collector demonstrates the
// "MAY accumulate" allowance.
type Sink interface {
	// Custom wraps a caller-supplied error as a Custom-kind diagnostic.
	Custom(err error) error
	// Message formats a Custom-kind diagnostic from a format string.
	Message(format string, args ...any) error
	// Report records a structured *Error (UnexpectedKind, BadBoolean, ...).
	Report(e *Error) error
}

// Immediate is the zero-overhead default Sink: every call returns its
// error immediately for the caller to propagate, with no accumulation.
type Immediate struct{}

func (Immediate) Custom(err error) error {
	return &Error{Kind: Custom, Pos: -1, Cause: err}
}

func (Immediate) Message(format string, args ...any) error {
	return &Error{Kind: Custom, Pos: -1, Cause: fmt.Errorf(format, args...)}
}

func (Immediate) Report(e *Error) error {
	return e
}

// Collector accumulates every diagnostic instead of returning it,
// letting a caller walk a whole buffer and report every problem found in
// one pass (the "MAY flatten or accumulate" policy from §7). Report,
// Custom, and Message all record and return the same error, so existing
// call sites that check the return value keep working unchanged.
type Collector struct {
	Errors []*Error
}

func (c *Collector) Custom(err error) error {
	e := &Error{Kind: Custom, Pos: -1, Cause: err}
	c.Errors = append(c.Errors, e)
	return e
}

func (c *Collector) Message(format string, args ...any) error {
	e := &Error{Kind: Custom, Pos: -1, Cause: fmt.Errorf(format, args...)}
	c.Errors = append(c.Errors, e)
	return e
}

func (c *Collector) Report(e *Error) error {
	c.Errors = append(c.Errors, e)
	return e
}

// Empty reports whether no diagnostics were recorded.
func (c *Collector) Empty() bool {
	return len(c.Errors) == 0
}
