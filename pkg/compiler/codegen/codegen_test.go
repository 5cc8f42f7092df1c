package codegen

import (
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/zurustar/inkbot/pkg/compiler/lexer"
	"github.com/zurustar/inkbot/pkg/compiler/parser"
	"github.com/zurustar/inkbot/pkg/opcode"
)

func generate(t *testing.T, input string) ([]opcode.OpCode, *Generator) {
	t.Helper()
	p := parser.New(lexer.New(input))
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parser errors: %v", errs)
	}
	g := New()
	codes := g.Generate(program)
	if errs := g.Errors(); len(errs) > 0 {
		t.Fatalf("codegen errors: %v", errs)
	}
	return codes, g
}

func TestGenerateAssign(t *testing.T) {
	codes, _ := generate(t, "x = 1 + y;")
	if len(codes) != 1 || codes[0].Cmd != opcode.Assign {
		t.Fatalf("got %+v", codes)
	}
	if codes[0].Args[0] != opcode.Variable("x") {
		t.Errorf("target = %v", codes[0].Args[0])
	}
	value, ok := codes[0].Args[1].(opcode.OpCode)
	if !ok || value.Cmd != opcode.BinaryOp || value.Args[0] != "+" {
		t.Fatalf("value = %+v", codes[0].Args[1])
	}
	if value.Args[1] != 1.0 || value.Args[2] != opcode.Variable("y") {
		t.Errorf("operands = %v, %v", value.Args[1], value.Args[2])
	}
}

func TestGenerateCompoundAssign(t *testing.T) {
	tests := []struct {
		input string
		op    string
		cmd   opcode.Cmd
	}{
		{"x += 2", "+", opcode.Assign},
		{"x -= 2", "-", opcode.Assign},
		{"x *= 2", "*", opcode.Assign},
		{"x /= 2", "/", opcode.Assign},
		{"a[1] += 2", "+", opcode.ArrayAssign},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			codes, _ := generate(t, tt.input)
			if codes[0].Cmd != tt.cmd {
				t.Fatalf("cmd = %s, want %s", codes[0].Cmd, tt.cmd)
			}
			value := codes[0].Args[len(codes[0].Args)-1].(opcode.OpCode)
			if value.Cmd != opcode.BinaryOp || value.Args[0] != tt.op {
				t.Errorf("value = %+v", value)
			}
		})
	}
}

func TestGenerateCallAndArrays(t *testing.T) {
	codes, _ := generate(t, `rect(10, 20, w, h); pts = [1, "a"]; v = pts[0];`)
	if len(codes) != 3 {
		t.Fatalf("got %d opcodes", len(codes))
	}

	call := codes[0]
	if call.Cmd != opcode.Call || call.Args[0] != "rect" || len(call.Args) != 5 {
		t.Errorf("call = %+v", call)
	}

	lit := codes[1].Args[1].(opcode.OpCode)
	if lit.Cmd != opcode.ArrayLiteral || len(lit.Args) != 2 || lit.Args[1] != "a" {
		t.Errorf("array literal = %+v", lit)
	}

	access := codes[2].Args[1].(opcode.OpCode)
	if access.Cmd != opcode.ArrayAccess || access.Args[0] != opcode.Variable("pts") {
		t.Errorf("array access = %+v", access)
	}
}

func TestGenerateControlFlow(t *testing.T) {
	input := `
	for (i = 0; i < 3; i += 1) {
		if (i == 1) { continue; } else { x = i; }
	}
	while (x > 0) { x -= 1; break; }
	for (;;) { break; }
	`
	codes, _ := generate(t, input)
	if len(codes) != 3 {
		t.Fatalf("got %d opcodes", len(codes))
	}

	loop := codes[0]
	if loop.Cmd != opcode.For || len(loop.Args) != 4 {
		t.Fatalf("for = %+v", loop)
	}
	body := loop.Args[3].([]opcode.OpCode)
	if len(body) != 1 || body[0].Cmd != opcode.If {
		t.Fatalf("for body = %+v", body)
	}
	then := body[0].Args[1].([]opcode.OpCode)
	if then[0].Cmd != opcode.Continue {
		t.Errorf("then = %+v", then)
	}

	if codes[1].Cmd != opcode.While {
		t.Errorf("cmd = %s", codes[1].Cmd)
	}
	if codes[2].Args[1] != nil {
		t.Errorf("empty for condition should be nil, got %v", codes[2].Args[1])
	}
}

func TestGenerateFunctions(t *testing.T) {
	input := `
	setup() { size(100, 100); }
	function area(w, h) { return w * h; }
	draw() { return; }
	`
	codes, g := generate(t, input)
	if got := strings.Join(g.Functions(), ","); got != "setup,area,draw" {
		t.Errorf("Functions() = %s", got)
	}

	def := codes[1]
	if def.Cmd != opcode.DefineFunction || def.Args[0] != "area" {
		t.Fatalf("def = %+v", def)
	}
	params := def.Args[1].([]string)
	if len(params) != 2 || params[0] != "w" || params[1] != "h" {
		t.Errorf("params = %v", params)
	}
	ret := def.Args[2].([]opcode.OpCode)[0]
	if ret.Cmd != opcode.Return || len(ret.Args) != 1 {
		t.Errorf("return = %+v", ret)
	}
	bare := codes[2].Args[2].([]opcode.OpCode)[0]
	if bare.Cmd != opcode.Return || len(bare.Args) != 0 {
		t.Errorf("bare return = %+v", bare)
	}
}

func TestGenerateLines(t *testing.T) {
	codes, _ := generate(t, "x = 1;\n\nrect(0, 0, 1, 1);")
	if codes[0].Line != 1 || codes[1].Line != 3 {
		t.Errorf("lines = %d, %d", codes[0].Line, codes[1].Line)
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"nested element assignment", "a[0][1] = 2"},
		{"call on expression", "pts[0](1)"},
		{"duplicate parameter", "f(a, a) { }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := parser.New(lexer.New(tt.input))
			program := p.ParseProgram()
			if len(p.Errors()) > 0 {
				t.Fatalf("parser errors: %v", p.Errors())
			}
			g := New()
			g.Generate(program)
			if len(g.Errors()) == 0 {
				t.Errorf("expected a codegen error")
			}
		})
	}
}

// 宣言した関数はすべて宣言順に報告される
func TestProperty_FunctionsInDeclarationOrder(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("関数名の順序が保たれる", prop.ForAll(
		func(n int) bool {
			var sb strings.Builder
			want := make([]string, n)
			for i := 0; i < n; i++ {
				want[i] = fmt.Sprintf("f%d", i)
				fmt.Fprintf(&sb, "%s(x) { return x + %d; }\n", want[i], i)
			}
			p := parser.New(lexer.New(sb.String()))
			g := New()
			codes := g.Generate(p.ParseProgram())
			if len(p.Errors()) > 0 || len(g.Errors()) > 0 || len(codes) != n {
				return false
			}
			return strings.Join(g.Functions(), ",") == strings.Join(want, ",")
		},
		gen.IntRange(0, 30),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
