package app

import (
	"testing"
	"time"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("GATE_TEST_STRING", "  value  ")
	t.Setenv("GATE_TEST_BOOL", "true")
	t.Setenv("GATE_TEST_INT", "42")
	t.Setenv("GATE_TEST_INT_BAD", "-3")
	t.Setenv("GATE_TEST_DUR", "250ms")
	t.Setenv("GATE_TEST_DUR_BAD", "soon")

	if got := EnvString("GATE_TEST_STRING", "def"); got != "value" {
		t.Fatalf("EnvString=%q want=value", got)
	}
	if got := EnvString("GATE_TEST_MISSING", "def"); got != "def" {
		t.Fatalf("EnvString default=%q want=def", got)
	}
	if got := EnvBool("GATE_TEST_BOOL", false); !got {
		t.Fatalf("EnvBool=false want=true")
	}
	if got := EnvInt("GATE_TEST_INT", 1); got != 42 {
		t.Fatalf("EnvInt=%d want=42", got)
	}
	if got := EnvInt("GATE_TEST_INT_BAD", 7); got != 7 {
		t.Fatalf("EnvInt negative should fall back, got %d", got)
	}
	if got := EnvDuration("GATE_TEST_DUR", time.Second); got != 250*time.Millisecond {
		t.Fatalf("EnvDuration=%v want=250ms", got)
	}
	if got := EnvDuration("GATE_TEST_DUR_BAD", time.Second); got != time.Second {
		t.Fatalf("EnvDuration bad should fall back, got %v", got)
	}
}
