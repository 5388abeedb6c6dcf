package logging

import "testing"

func TestNew(t *testing.T) {
	for _, level := range []string{"", "trace", "debug", "info", "warn", "error"} {
		l, err := New(Options{Level: level})
		if err != nil {
			t.Errorf("level %q: %v", level, err)
			continue
		}
		if l == nil {
			t.Errorf("level %q: nil logger", level)
		}
	}
}

func TestNewBad(t *testing.T) {
	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Error("Expected error for unknown level")
	}
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestNamedNop(t *testing.T) {
	l := Nop()
	if Named(l, "generate") != l {
		t.Error("Nop logger should be returned unchanged")
	}
	l.Debug("nothing", "k", 1)
}

func TestNamed(t *testing.T) {
	l, err := New(Options{Level: "error", Format: "json"})
	if err != nil {
		t.Fatal(err)
	}
	child := Named(l, "serve")
	if child == l {
		t.Error("Expected a child logger")
	}
	if Named(l, "") != l {
		t.Error("Empty name should return the same logger")
	}
	child.Debug("filtered by level")
}
