package bot

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/zurustar/inkbot/pkg/compiler"
)

// 宣言済みの変数はプログラムを差し替えても値を保つ
func TestProperty_VariablesCarryOverReload(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("範囲内の値は再読み込み後も残る", prop.ForAll(
		func(offset float64, lo int) bool {
			value := float64(lo) + offset
			src := fmt.Sprintf(`n = var("n", NUMBER, %d, %d, %d);`, lo, lo, lo+100)

			prog, err := compiler.Compile(src)
			if err != nil {
				return false
			}
			b := New(prog, WithOutput(io.Discard))
			s := &recordingSink{}
			if err := b.Frame(context.Background(), s, 0); err != nil {
				return false
			}
			if err := b.SetVariable("n", value); err != nil {
				return false
			}

			b.SetProgram(prog)
			if err := b.Frame(context.Background(), s, 1); err != nil {
				return false
			}
			v, ok := b.Registry().Get("n")
			return ok && v.Value == value
		},
		gen.Float64Range(0, 100),
		gen.IntRange(-1000, 1000),
	))

	properties.Property("静的なスケッチは毎フレーム同じものを描く", prop.ForAll(
		func(n int) bool {
			src := fmt.Sprintf(`for (i = 0; i < %d; i += 1) { rect(i, i, 1, 1); }`, n)
			prog, err := compiler.Compile(src)
			if err != nil {
				return false
			}
			b := New(prog, WithOutput(io.Discard))
			s := &recordingSink{}
			for frame := 0; frame < 3; frame++ {
				if err := b.Frame(context.Background(), s, frame); err != nil {
					return false
				}
				if len(s.last().paths) != n {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 40),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
