package variable

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCompatible(t *testing.T) {
	tests := []struct {
		name string
		old  Variable
		next Variable
		want bool
	}{
		{"same number shape", Variable{Type: Number, Value: 5.0, Min: 0, Max: 10}, Variable{Type: Number, Min: 0, Max: 10}, true},
		{"widened bounds", Variable{Type: Number, Value: 5.0, Min: 0, Max: 10}, Variable{Type: Number, Min: -10, Max: 100}, true},
		{"value outside new bounds", Variable{Type: Number, Value: 50.0, Min: 0, Max: 100}, Variable{Type: Number, Min: 0, Max: 10}, false},
		{"type change", Variable{Type: Number, Value: 5.0}, Variable{Type: Text}, false},
		{"text", Variable{Type: Text, Value: "a"}, Variable{Type: Text}, true},
		{"boolean", Variable{Type: Boolean, Value: true}, Variable{Type: Boolean}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compatible(tt.old, tt.next); got != tt.want {
				t.Errorf("Compatible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeclareResolution(t *testing.T) {
	t.Run("default when nothing to carry", func(t *testing.T) {
		r := NewRegistry()
		r.Begin()
		v, err := r.Declare(Decl{Name: "size", Type: Number, Default: 12.0, Min: 1, Max: 50})
		if err != nil {
			t.Fatalf("Declare: %v", err)
		}
		if v.Value != 12.0 {
			t.Errorf("Value = %v, want 12", v.Value)
		}
	})

	t.Run("explicit value replaces default", func(t *testing.T) {
		r := NewRegistry()
		r.Begin()
		v, _ := r.Declare(Decl{Name: "size", Type: Number, Default: 12.0, Min: 1, Max: 50, Value: 30.0})
		if v.Value != 30.0 {
			t.Errorf("Value = %v, want 30", v.Value)
		}
	})

	t.Run("carried value wins over explicit value", func(t *testing.T) {
		r := NewRegistry()
		r.Begin()
		r.Declare(Decl{Name: "size", Type: Number, Default: 12.0, Min: 1, Max: 50})
		r.Set("size", 20.0)
		r.End()

		r.Begin()
		v, _ := r.Declare(Decl{Name: "size", Type: Number, Default: 12.0, Min: 1, Max: 50, Value: 30.0})
		if v.Value != 20.0 {
			t.Errorf("Value = %v, want 20", v.Value)
		}
	})

	t.Run("narrowed bound resets", func(t *testing.T) {
		r := NewRegistry()
		r.Begin()
		r.Declare(Decl{Name: "size", Type: Number, Default: 40.0, Min: 0, Max: 100})
		r.End()

		r.Begin()
		v, _ := r.Declare(Decl{Name: "size", Type: Number, Default: 5.0, Min: 0, Max: 10})
		if v.Value != 5.0 {
			t.Errorf("Value = %v, want 5", v.Value)
		}
	})

	t.Run("preset seeds first generation only", func(t *testing.T) {
		r := NewRegistry(WithPresets(map[string]any{"label": "from preset"}))
		r.Begin()
		v, _ := r.Declare(Decl{Name: "label", Type: Text, Default: "default"})
		if v.Value != "from preset" {
			t.Errorf("Value = %v, want preset", v.Value)
		}
		r.End()

		r.Begin()
		r.Declare(Decl{Name: "label", Type: Number, Default: 3.0})
		r.End()
		r.Begin()
		v, _ = r.Declare(Decl{Name: "label", Type: Text, Default: "default"})
		if v.Value != "default" {
			t.Errorf("Value = %v, want default", v.Value)
		}
	})

	t.Run("preset with wrong type is ignored", func(t *testing.T) {
		r := NewRegistry(WithPresets(map[string]any{"n": "not a number"}))
		r.Begin()
		v, _ := r.Declare(Decl{Name: "n", Type: Number, Default: 2.0})
		if v.Value != 2.0 {
			t.Errorf("Value = %v, want 2", v.Value)
		}
	})

	t.Run("duplicate name last write wins", func(t *testing.T) {
		r := NewRegistry()
		r.Begin()
		r.Declare(Decl{Name: "a", Type: Number, Default: 1.0})
		r.Declare(Decl{Name: "a", Type: Text, Default: "two"})
		v, _ := r.Get("a")
		if v.Type != Text || v.Value != "two" {
			t.Errorf("got %v %v, want TEXT two", v.Type, v.Value)
		}
		if n := len(r.Variables()); n != 1 {
			t.Errorf("Variables() has %d entries, want 1", n)
		}
	})

	t.Run("bad default", func(t *testing.T) {
		r := NewRegistry()
		r.Begin()
		_, err := r.Declare(Decl{Name: "a", Type: Boolean, Default: []any{}})
		if !errors.Is(err, ErrTypeMismatch) {
			t.Errorf("err = %v, want ErrTypeMismatch", err)
		}
	})
}

func TestSetAndButtons(t *testing.T) {
	r := NewRegistry()
	r.Begin()
	r.Declare(Decl{Name: "speed", Type: Number, Default: 1.0, Min: 0, Max: 10})
	r.Declare(Decl{Name: "shuffle", Type: Button, Default: "reshuffle"})
	r.End()

	env := r.Env()
	if env["speed"] != 1.0 || env["shuffle"] != "reshuffle" {
		t.Errorf("Env() = %v", env)
	}
	if err := r.Set("speed", 99.0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := r.Env()["speed"]; got != 10.0 {
		t.Errorf("speed = %v, want 10 (clamped)", got)
	}
	if env["speed"] != 1.0 {
		t.Error("Env() must return a fresh map")
	}

	fn, err := r.Press("shuffle")
	if err != nil || fn != "reshuffle" {
		t.Errorf("Press = %q, %v", fn, err)
	}
	if _, err := r.Press("speed"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Press(number) err = %v", err)
	}
	if err := r.Set("missing", 1.0); !errors.Is(err, ErrUnknownVariable) {
		t.Errorf("Set(missing) err = %v", err)
	}
}

func TestParseType(t *testing.T) {
	for _, name := range []string{"NUMBER", "text", "Boolean", "BUTTON"} {
		if _, err := ParseType(name); err != nil {
			t.Errorf("ParseType(%q): %v", name, err)
		}
	}
	if _, err := ParseType("COLOR"); !errors.Is(err, ErrUnknownType) {
		t.Errorf("ParseType(COLOR) err = %v", err)
	}
}

func TestPresets(t *testing.T) {
	t.Run("inline", func(t *testing.T) {
		got, err := ParsePresets("radius=40, title=hello ,filled=true")
		if err != nil {
			t.Fatalf("ParsePresets: %v", err)
		}
		if got["radius"] != 40.0 || got["title"] != "hello" || got["filled"] != true {
			t.Errorf("got %v", got)
		}
		if _, err := ParsePresets("novalue"); err == nil {
			t.Error("expected error for pair without '='")
		}
	})

	t.Run("yaml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "vars.yaml")
		os.WriteFile(path, []byte("radius: 40\nratio: 0.5\ntitle: hello\nfilled: true\n"), 0644)
		got, err := ReadPresets(path)
		if err != nil {
			t.Fatalf("ReadPresets: %v", err)
		}
		if got["radius"] != 40.0 || got["ratio"] != 0.5 || got["title"] != "hello" || got["filled"] != true {
			t.Errorf("got %v", got)
		}
	})
}
