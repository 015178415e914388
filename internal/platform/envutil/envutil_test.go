package envutil

import (
	"testing"
	"time"
)

func TestStringFallsBackOnEmpty(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_STR", "   ")
	if got := String("ENVUTIL_TEST_STR", "fallback"); got != "fallback" {
		t.Fatalf("String: got %q want %q", got, "fallback")
	}
	t.Setenv("ENVUTIL_TEST_STR", " value ")
	if got := String("ENVUTIL_TEST_STR", "fallback"); got != "value" {
		t.Fatalf("String: got %q want %q", got, "value")
	}
}

func TestFloat(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_FLOAT", "2.5")
	if got := Float("ENVUTIL_TEST_FLOAT", 1.0); got != 2.5 {
		t.Fatalf("Float: got %v want 2.5", got)
	}
	t.Setenv("ENVUTIL_TEST_FLOAT", "nope")
	if got := Float("ENVUTIL_TEST_FLOAT", 1.3); got != 1.3 {
		t.Fatalf("Float malformed: got %v want default 1.3", got)
	}
}

func TestMinutes(t *testing.T) {
	def := []time.Duration{time.Minute}

	t.Setenv("ENVUTIL_TEST_STEPS", "1,10")
	got := Minutes("ENVUTIL_TEST_STEPS", def)
	if len(got) != 2 || got[0] != time.Minute || got[1] != 10*time.Minute {
		t.Fatalf("Minutes: got %v", got)
	}

	t.Setenv("ENVUTIL_TEST_STEPS", "1,zero")
	if got := Minutes("ENVUTIL_TEST_STEPS", def); len(got) != 1 || got[0] != time.Minute {
		t.Fatalf("Minutes malformed entry should return default, got %v", got)
	}

	t.Setenv("ENVUTIL_TEST_STEPS", "0")
	if got := Minutes("ENVUTIL_TEST_STEPS", def); len(got) != 1 || got[0] != time.Minute {
		t.Fatalf("Minutes non-positive entry should return default, got %v", got)
	}
}
