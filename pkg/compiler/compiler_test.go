package compiler

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zurustar/inkbot/pkg/opcode"
)

func TestCompile(t *testing.T) {
	source := `
	size(300, 200);
	background(1);

	setup() {
		n = 10;
	}

	draw() {
		for (i = 0; i < n; i += 1) {
			rect(i * 20, 10, 10, 10);
		}
	}
	`
	prog, err := Compile(source)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if len(prog.Opcodes) != 4 {
		t.Errorf("got %d top-level opcodes, want 4", len(prog.Opcodes))
	}
	if !prog.HasFunction("setup") || !prog.HasFunction("draw") || prog.HasFunction("size") {
		t.Errorf("Functions = %v", prog.Functions)
	}
	if prog.Opcodes[2].Cmd != opcode.DefineFunction {
		t.Errorf("opcode 2 = %s", prog.Opcodes[2].Cmd)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		phase  string
		line   int
		column int
		count  int
	}{
		{"illegal character", "x = 1;\ny = #;", "lexer", 2, 5, 1},
		{"two illegal characters", "a = @;\nb = $;", "lexer", 1, 5, 2},
		{"unterminated string", `text("abc, 1, 1);`, "lexer", 1, 6, 1},
		{"missing paren", "rect(1, 2;", "parser", 1, 10, 1},
		{"bad element target", "a[0][1] = 2;", "compiler", 1, 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.source)
			if err == nil {
				t.Fatal("expected an error")
			}
			var ce *CompileError
			if !errors.As(err, &ce) {
				t.Fatalf("error is not a *CompileError: %v", err)
			}
			if ce.Phase != tt.phase || ce.Line != tt.line || ce.Column != tt.column {
				t.Errorf("got %s at %d:%d, want %s at %d:%d (%s)", ce.Phase, ce.Line, ce.Column, tt.phase, tt.line, tt.column, ce.Message)
			}
			if ce.Context == "" {
				t.Error("missing source context")
			}
			if n := len(err.(interface{ Unwrap() []error }).Unwrap()); n != tt.count {
				t.Errorf("got %d errors, want %d", n, tt.count)
			}
		})
	}
}

func TestCompileError_Error(t *testing.T) {
	err := &CompileError{Phase: "parser", Message: "unexpected token", Line: 12, Column: 25}
	for _, want := range []string{"parser error", "line 12", "column 25", "unexpected token"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Error() = %q, missing %q", err.Error(), want)
		}
	}

	err.Context = "> 12 | x = ;"
	if !strings.HasSuffix(err.Error(), "\n> 12 | x = ;") {
		t.Errorf("context not appended: %q", err.Error())
	}
}

func TestGenerateErrorContext(t *testing.T) {
	source := "a = 1;\nb = 2;\nc = ;\nd = 4;\ne = 5;\nf = 6;"

	got := GenerateErrorContext(source, 3, 5)
	want := "  1 | a = 1;\n" +
		"  2 | b = 2;\n" +
		"> 3 | c = ;\n" +
		"          ^\n" +
		"  4 | d = 4;\n" +
		"  5 | e = 5;\n"
	if got != want {
		t.Errorf("context mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}

	tests := []struct {
		name   string
		source string
		line   int
	}{
		{"empty source", "", 1},
		{"line zero", source, 0},
		{"line past end", source, 99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GenerateErrorContext(tt.source, tt.line, 1); got != "" {
				t.Errorf("expected empty context, got %q", got)
			}
		})
	}

	// 先頭行のエラーは前の行を表示しない
	first := GenerateErrorContext(source, 1, 1)
	if !strings.HasPrefix(first, "> 1 | a = 1;\n") {
		t.Errorf("first-line context = %q", first)
	}
}

func TestCompileFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.ink")
	bad := filepath.Join(dir, "bad.ink")
	if err := os.WriteFile(good, []byte("rect(0, 0, 10, 10);"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("rect(0, 0"), 0644); err != nil {
		t.Fatal(err)
	}

	prog, s, err := CompileFile(good)
	if err != nil {
		t.Fatalf("CompileFile failed: %v", err)
	}
	if s.Name != "good.ink" || len(prog.Opcodes) != 1 {
		t.Errorf("script = %s, opcodes = %d", s.Name, len(prog.Opcodes))
	}

	_, s, err = CompileFile(bad)
	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("expected a CompileError, got %v", err)
	}
	if s == nil || !strings.HasPrefix(err.Error(), "bad.ink: ") {
		t.Errorf("error should name the script: %v", err)
	}

	if _, _, err := CompileFile(filepath.Join(dir, "missing.ink")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
