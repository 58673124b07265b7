package app

import (
	"testing"

	"github.com/charmbracelet/log"
)

func TestResolveLogLevel(t *testing.T) {
	t.Setenv("SHRIKE_TEST_LEVEL", "debug")
	if got := resolveLogLevel("SHRIKE_TEST_LEVEL", log.InfoLevel); got != log.DebugLevel {
		t.Fatalf("resolveLogLevel returned %v, want debug", got)
	}

	t.Setenv("SHRIKE_TEST_LEVEL", "nonsense")
	if got := resolveLogLevel("SHRIKE_TEST_LEVEL", log.WarnLevel); got != log.WarnLevel {
		t.Fatalf("resolveLogLevel with invalid value returned %v, want fallback", got)
	}

	if got := resolveLogLevel("SHRIKE_TEST_LEVEL_UNSET", log.ErrorLevel); got != log.ErrorLevel {
		t.Fatalf("resolveLogLevel with unset key returned %v, want fallback", got)
	}
}
