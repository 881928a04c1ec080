package errs

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNewPopulatesEnvelope(t *testing.T) {
	cause := errors.New("boom")
	e := New("clock", CodeDuplicateLabel,
		WithLabel("heartbeat"),
		WithMessage("label already active"),
		WithField("interval", "1s"),
		WithCause(cause))

	if e.Component != "clock" {
		t.Fatalf("component = %q, want clock", e.Component)
	}
	if e.Code != CodeDuplicateLabel {
		t.Fatalf("code = %q, want %q", e.Code, CodeDuplicateLabel)
	}
	if e.Label != "heartbeat" {
		t.Fatalf("label = %q, want heartbeat", e.Label)
	}
	if !errors.Is(e, cause) {
		t.Fatal("expected cause to be reachable via errors.Is")
	}
}

func TestErrorStringContainsParts(t *testing.T) {
	e := New("execution", CodeTransport, WithMessage("send failed"))
	got := e.Error()
	for _, want := range []string{"component=execution", "code=transport", `message="send failed"`} {
		if !strings.Contains(got, want) {
			t.Fatalf("Error() = %q, missing %q", got, want)
		}
	}
}

func TestErrorNilReceiver(t *testing.T) {
	var e *E
	if got := e.Error(); got != "<nil>" {
		t.Fatalf("Error() on nil = %q, want <nil>", got)
	}
}

func TestHasCode(t *testing.T) {
	inner := New("clock", CodeInvalidInterval)
	wrapped := fmt.Errorf("set timer: %w", inner)

	if !HasCode(wrapped, CodeInvalidInterval) {
		t.Fatal("expected HasCode to find code through wrapping")
	}
	if HasCode(wrapped, CodeInvalidRange) {
		t.Fatal("did not expect HasCode to match a different code")
	}
	if HasCode(nil, CodeInvalidInterval) {
		t.Fatal("nil error must not match")
	}
}

func TestHasCodeNestedEnvelopes(t *testing.T) {
	inner := New("transport", CodeTransport)
	outer := New("execution", CodeUnavailable, WithCause(inner))

	if !HasCode(outer, CodeTransport) {
		t.Fatal("expected inner envelope code to match")
	}
	if !HasCode(outer, CodeUnavailable) {
		t.Fatal("expected outer envelope code to match")
	}
}

func TestOptionsTrimWhitespace(t *testing.T) {
	e := New("  clock  ", CodeNotFound, WithMessage("  gone  "), WithLabel(" x "))
	if e.Component != "clock" || e.Message != "gone" || e.Label != "x" {
		t.Fatalf("expected trimmed fields, got %+v", e)
	}
}
