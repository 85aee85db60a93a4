package logx

import (
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"dbg", LevelDebug},
		{"info", LevelInfo},
		{"", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"err", LevelError},
		{"bogus", LevelInfo},
		{"  DEBUG  ", LevelDebug},
	}

	for _, c := range cases {
		if got := parseLevel(c.in); got != c.want {
			t.Errorf("parseLevel(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestKVPairs(t *testing.T) {
	t.Run("formats pairs", func(t *testing.T) {
		out := kvPairs("target", "example.com", "elapsed_ms", 42)
		if len(out) != 2 {
			t.Fatalf("expected 2 pairs, got %d", len(out))
		}
		if out[0] != "target=example.com" {
			t.Errorf("unexpected pair: %s", out[0])
		}
		if out[1] != "elapsed_ms=42" {
			t.Errorf("unexpected pair: %s", out[1])
		}
	})

	t.Run("odd arguments get a placeholder", func(t *testing.T) {
		out := kvPairs("dangling")
		if len(out) != 1 || out[0] != "dangling=(missing)" {
			t.Errorf("unexpected output: %v", out)
		}
	})
}

func TestWithPreservesScope(t *testing.T) {
	base := NewSilent()
	scoped := base.With("component", "orchestrator")
	if scoped == nil {
		t.Fatal("With returned nil")
	}
	// Scoped logger must be an independent clone.
	scoped2 := scoped.With("scan", "abc")
	if scoped2 == scoped {
		t.Error("With should return a new logger instance")
	}
}

func TestErrNilIsNoop(t *testing.T) {
	l := NewSilent()
	l.Err(nil) // must not panic nor log
}
