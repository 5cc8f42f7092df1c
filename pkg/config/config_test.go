package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zurustar/inkbot/pkg/canvas"
	"github.com/zurustar/inkbot/pkg/graphics"
)

func TestRead(t *testing.T) {
	src := `
[output]
format = "svg"
file = "out.svg"

[run]
grammar = "nodebox"
iterations = 3
watch = true

[canvas]
width = 640
height = 480
background = "#000000"

[text]
font = "mono"
size = 12
lineheight = 1.5
`
	c, err := Read(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if c.Output.Format != "svg" || c.Output.File != "out.svg" {
		t.Errorf("output = %+v", c.Output)
	}
	if c.Run.Grammar != "nodebox" || c.Run.Iterations != 3 || !c.Run.Watch {
		t.Errorf("run = %+v", c.Run)
	}

	s, size := c.Apply(canvas.DefaultSettings(), canvas.DefaultSize)
	if size.Width != 640 || size.Height != 480 {
		t.Errorf("size = %v", size)
	}
	if s.Background != graphics.Black || s.Font != "mono" || s.FontSize != 12 || s.LineHeight != 1.5 {
		t.Errorf("settings = %+v", s)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", "[output\nformat = 1"},
		{"unknown key", "[output]\ncolour = \"red\""},
		{"unknown format", "[output]\nformat = \"gif\""},
		{"negative iterations", "[run]\niterations = -1"},
		{"bad background", "[canvas]\nbackground = \"#zz\""},
		{"unknown font", "[text]\nfont = \"comic\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Read(strings.NewReader(tt.src)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestApplyKeepsUnsetValues(t *testing.T) {
	var c Config
	def := canvas.DefaultSettings()
	s, size := c.Apply(def, canvas.DefaultSize)
	if size != canvas.DefaultSize || s.Font != def.Font || s.FontSize != def.FontSize {
		t.Errorf("empty config changed defaults: %+v %v", s, size)
	}

	var nilConfig *Config
	if _, size := nilConfig.Apply(def, canvas.DefaultSize); size != canvas.DefaultSize {
		t.Errorf("nil config changed size: %v", size)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[run]\ngrammar = \"drawbot\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Run.Grammar != "drawbot" {
		t.Errorf("grammar = %q", c.Run.Grammar)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
