package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/h2non/filetype"
)

func runMain(t *testing.T, args ...string) (string, error) {
	t.Helper()
	if testing.Short() {
		t.Skip("builds the command")
	}
	cmd := exec.Command("go", append([]string{"run", "main.go"}, args...)...)
	cmd.Dir = "."
	cmd.Env = append(os.Environ(), "HEADLESS=1")
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// TestCLIHelp tests the help display functionality
func TestCLIHelp(t *testing.T) {
	output, err := runMain(t, "--help")
	if err != nil {
		t.Fatalf("help exited with %v: %s", err, output)
	}
	if !strings.Contains(output, "inkbot - sketch runner") {
		t.Error("Help output should contain title")
	}
}

func TestCLIRender(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "square.ink")
	if err := os.WriteFile(script, []byte(`size(50, 50); rect(10, 10, 30, 30);`), 0644); err != nil {
		t.Fatal(err)
	}

	if output, err := runMain(t, script); err != nil {
		t.Fatalf("render failed: %v: %s", err, output)
	}
	data, err := os.ReadFile(filepath.Join(dir, "square.png"))
	if err != nil {
		t.Fatal(err)
	}
	if !filetype.Is(data, "png") {
		t.Error("output is not a PNG")
	}
}

func TestCLIErrors(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.ink")
	if err := os.WriteFile(broken, []byte("rect(0, 0,\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		args     []string
		errorMsg string
	}{
		{"missing script", []string{filepath.Join(dir, "missing.ink")}, "no such file"},
		{"compile error", []string{broken}, "parser error"},
		{"unknown grammar", []string{"-g", "logo", broken}, "unknown grammar"},
		{"unknown format", []string{"-f", "gif", broken}, "unknown output format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := runMain(t, tt.args...)
			if err == nil {
				t.Fatal("Expected error but got none")
			}
			if !strings.Contains(output, tt.errorMsg) {
				t.Errorf("Expected error message to contain '%s', got: %s", tt.errorMsg, output)
			}
		})
	}
}
