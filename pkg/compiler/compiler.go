// Package compiler turns sketch source into opcodes for the VM.
// The pipeline is lexer → parser → codegen; each phase stops the
// pipeline when it reports errors.
package compiler

import (
	"errors"
	"fmt"

	"github.com/zurustar/inkbot/pkg/compiler/codegen"
	"github.com/zurustar/inkbot/pkg/compiler/lexer"
	"github.com/zurustar/inkbot/pkg/compiler/parser"
	"github.com/zurustar/inkbot/pkg/opcode"
	"github.com/zurustar/inkbot/pkg/script"
)

// Program is a compiled sketch.
type Program struct {
	// Opcodes is the top-level code, including function definitions.
	Opcodes []opcode.OpCode

	// Functions lists the declared top-level function names.
	Functions []string

	// Source is the UTF-8 source the program was compiled from.
	Source string
}

// HasFunction reports whether the sketch declares name.
func (p *Program) HasFunction(name string) bool {
	for _, f := range p.Functions {
		if f == name {
			return true
		}
	}
	return false
}

// Compile compiles source code. On failure the returned error joins one
// *CompileError per problem; use errors.As to inspect the first.
func Compile(source string) (*Program, error) {
	// Phase 1: 字句解析
	var errs []error
	for _, tok := range lexer.Tokenize(source) {
		if tok.Type == lexer.TOKEN_ILLEGAL {
			msg := fmt.Sprintf("illegal character %q", tok.Literal)
			if len(tok.Literal) > 1 {
				msg = tok.Literal
			}
			errs = append(errs, newError("lexer", msg, tok.Line, tok.Column, source))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	// Phase 2: 構文解析
	p := parser.New(lexer.New(source))
	program := p.ParseProgram()
	if parseErrs := p.Errors(); len(parseErrs) > 0 {
		for _, pe := range parseErrs {
			errs = append(errs, newError("parser", pe.Message, pe.Line, pe.Column, source))
		}
		return nil, errors.Join(errs...)
	}

	// Phase 3: OpCode生成
	g := codegen.New()
	opcodes := g.Generate(program)
	if genErrs := g.Errors(); len(genErrs) > 0 {
		for _, ge := range genErrs {
			errs = append(errs, newError("compiler", ge.Message, ge.Line, ge.Column, source))
		}
		return nil, errors.Join(errs...)
	}

	return &Program{
		Opcodes:   opcodes,
		Functions: g.Functions(),
		Source:    source,
	}, nil
}

// CompileFile loads a script file and compiles it.
func CompileFile(path string) (*Program, *script.Script, error) {
	s, err := script.Load(path)
	if err != nil {
		return nil, nil, err
	}
	prog, err := Compile(s.Content)
	if err != nil {
		return nil, s, fmt.Errorf("%s: %w", s.Name, err)
	}
	return prog, s, nil
}
