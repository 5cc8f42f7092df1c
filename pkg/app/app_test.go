package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zurustar/inkbot/pkg/cli"
	"github.com/zurustar/inkbot/pkg/config"
)

func parse(t *testing.T, args ...string) *cli.Config {
	t.Helper()
	for _, name := range []string{"HEADLESS", "TIMEOUT", "LOG_LEVEL", "INKBOT_CONFIG"} {
		t.Setenv(name, "")
	}
	flags, err := cli.ParseArgs(args)
	if err != nil {
		t.Fatalf("ParseArgs failed: %v", err)
	}
	return flags
}

func TestOptions(t *testing.T) {
	file := &config.Config{}
	file.Output.Format = "svg"
	file.Run.Grammar = "nodebox"
	file.Run.Iterations = 4

	tests := []struct {
		name       string
		args       []string
		format     string
		outputFile string
		grammar    string
		iterations int
		windowed   bool
	}{
		{"file values", []string{"s.ink"}, "svg", "", "nodebox", 4, false},
		{"flags win", []string{"-f", "pdf", "-g", "bot", "-r", "1", "s.ink"}, "pdf", "", "bot", 1, false},
		{"output file drops configured format", []string{"-o", "out.png", "s.ink"}, "", "out.png", "nodebox", 4, false},
		{"explicit zero repeat", []string{"-r", "0", "s.ink"}, "svg", "", "nodebox", 0, false},
		{"window", []string{"-w", "s.ink"}, "svg", "", "nodebox", 4, true},
		{"headless beats window", []string{"-w", "--headless", "s.ink"}, "svg", "", "nodebox", 4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options(parse(t, tt.args...), file)
			if opts.OutputFormat != tt.format || opts.OutputFile != tt.outputFile || opts.Grammar != tt.grammar {
				t.Errorf("format %q file %q grammar %q", opts.OutputFormat, opts.OutputFile, opts.Grammar)
			}
			if opts.Iterations != tt.iterations || opts.Windowed != tt.windowed {
				t.Errorf("iterations %d windowed %v", opts.Iterations, opts.Windowed)
			}
			if opts.Config != file {
				t.Error("config not passed through")
			}
		})
	}

	if opts := Options(parse(t, "s.ink"), nil); opts.Config == nil || opts.Grammar != "" {
		t.Errorf("nil config: %+v", opts)
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "sketch.ink")
	source := `print(var("n", NUMBER, 1), WIDTH); rect(0, 0, 10, 10);`
	if err := os.WriteFile(script, []byte(source), 0644); err != nil {
		t.Fatal(err)
	}
	conf := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(conf, []byte("[canvas]\nwidth = 120\n"), 0644); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"HEADLESS", "TIMEOUT", "LOG_LEVEL", "INKBOT_CONFIG"} {
		t.Setenv(name, "")
	}
	var out bytes.Buffer
	err := New(&out).Run(context.Background(), []string{"-c", conf, "-f", "svg", "-V", "n=5", "-l", "error", script})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := out.String(); got != "5 120\n" {
		t.Errorf("output = %q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "sketch.svg")); err != nil {
		t.Errorf("missing output: %v", err)
	}
}

func TestRunHelpAndErrors(t *testing.T) {
	for _, name := range []string{"HEADLESS", "TIMEOUT", "LOG_LEVEL", "INKBOT_CONFIG"} {
		t.Setenv(name, "")
	}

	var out bytes.Buffer
	if err := New(&out).Run(context.Background(), []string{"--help"}); err != nil {
		t.Fatalf("help failed: %v", err)
	}
	if !strings.Contains(out.String(), "Usage:") {
		t.Error("help not printed")
	}

	out.Reset()
	if err := New(&out).Run(context.Background(), nil); err == nil {
		t.Error("expected an error without a script")
	}
	if !strings.Contains(out.String(), "Usage:") {
		t.Error("help should be printed when the script is missing")
	}

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[canvas]\ncolour = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	err := New(&out).Run(context.Background(), []string{"-c", bad, "-l", "error", filepath.Join(dir, "x.ink")})
	if err == nil || !strings.Contains(err.Error(), "config") {
		t.Errorf("bad config error = %v", err)
	}
}
