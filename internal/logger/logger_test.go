package logger

import (
	"context"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		if parseLevel(lvl) == nil {
			t.Errorf("parseLevel(%q) returned nil", lvl)
		}
	}
	if parseLevel("verbose") != nil {
		t.Error("parseLevel(verbose) should fall back to the config default")
	}
}

func TestFromContext(t *testing.T) {
	fallback := Nop()
	if got := FromContext(context.Background(), fallback); got != fallback {
		t.Error("FromContext() without a logger should return the fallback")
	}

	child := New("error", false).With(String("cycle_id", "x"))
	ctx := IntoContext(context.Background(), child)
	if got := FromContext(ctx, fallback); got != child {
		t.Error("FromContext() should return the stored logger")
	}
}
