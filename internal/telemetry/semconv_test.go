package telemetry

import "testing"

func TestCommandAttributes(t *testing.T) {
	attrs := CommandAttributes("dev", "SubmitOrder")
	if len(attrs) != 2 {
		t.Fatalf("len = %d, want 2", len(attrs))
	}
	if attrs[0].Key != AttrEnvironment || attrs[0].Value.AsString() != "dev" {
		t.Fatalf("environment attr = %v", attrs[0])
	}
	if attrs[1].Key != AttrCommandType || attrs[1].Value.AsString() != "SubmitOrder" {
		t.Fatalf("command type attr = %v", attrs[1])
	}
}

func TestEventAttributes(t *testing.T) {
	attrs := EventAttributes("prod", "OrderFilled")
	if len(attrs) != 2 {
		t.Fatalf("len = %d, want 2", len(attrs))
	}
	if attrs[1].Value.AsString() != "OrderFilled" {
		t.Fatalf("event type attr = %v", attrs[1])
	}
}

func TestErrorAttributes(t *testing.T) {
	attrs := ErrorAttributes("dev", "codec", "malformed frame")
	if len(attrs) != 3 {
		t.Fatalf("len = %d, want 3", len(attrs))
	}
	if attrs[2].Key != AttrReason {
		t.Fatalf("reason attr = %v", attrs[2])
	}
}

func TestEnvironmentDefault(t *testing.T) {
	globalEnvironment = ""
	if got := Environment(); got != "development" {
		t.Fatalf("Environment() = %q, want development", got)
	}
	globalEnvironment = "prod"
	if got := Environment(); got != "prod" {
		t.Fatalf("Environment() = %q, want prod", got)
	}
}
