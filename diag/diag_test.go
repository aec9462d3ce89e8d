package diag

import (
	"errors"
	"strings"
	"testing"
)

func TestImmediateReturnsImmediately(t *testing.T) {
	var s Sink = Immediate{}
	err := s.Report(&Error{Kind: UnexpectedKind, Pos: 3, Expected: "Byte", Actual: "Prefix"})
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("Report did not return an *Error: %v", err)
	}
	if e.Kind != UnexpectedKind || e.Pos != 3 {
		t.Fatalf("got %+v", e)
	}
	if !strings.Contains(err.Error(), "offset 3") {
		t.Fatalf("Error() = %q, missing offset", err.Error())
	}
}

func TestImmediateCustomAndMessage(t *testing.T) {
	var s Sink = Immediate{}
	cause := errors.New("boom")
	err := s.Custom(cause)
	if !errors.Is(err, cause) {
		t.Fatalf("Custom-wrapped error does not unwrap to cause: %v", err)
	}
	err = s.Message("field %q missing", "name")
	if !strings.Contains(err.Error(), `field "name" missing`) {
		t.Fatalf("Message() = %q", err.Error())
	}
}

func TestCollectorAccumulates(t *testing.T) {
	c := &Collector{}
	if !c.Empty() {
		t.Fatalf("new Collector should be Empty")
	}
	var s Sink = c
	s.Report(&Error{Kind: BadBoolean, Pos: 0})
	s.Report(&Error{Kind: Truncated, Pos: 5})
	s.Custom(errors.New("extra"))

	if c.Empty() {
		t.Fatalf("Collector should not be Empty after Report")
	}
	if len(c.Errors) != 3 {
		t.Fatalf("len(Errors) = %d, want 3", len(c.Errors))
	}
	if c.Errors[0].Kind != BadBoolean || c.Errors[1].Kind != Truncated || c.Errors[2].Kind != Custom {
		t.Fatalf("unexpected error kinds: %+v", c.Errors)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	e := &Error{Kind: Overflow, Pos: 1, Cause: cause}
	if !errors.Is(e, cause) {
		t.Fatalf("errors.Is should find the wrapped cause")
	}
}

func TestKindString(t *testing.T) {
	if got := UnexpectedKind.String(); got != "UnexpectedKind" {
		t.Fatalf("UnexpectedKind.String() = %q", got)
	}
	if got := Kind(255).String(); !strings.Contains(got, "255") {
		t.Fatalf("unknown Kind.String() = %q", got)
	}
}
