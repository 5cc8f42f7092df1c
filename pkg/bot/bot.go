// Package bot runs a compiled sketch against a canvas. It owns the
// generation lifecycle (variable registry, fresh VM, setup) and the frame
// loop, and exposes the drawing vocabulary to scripts as VM builtins.
package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/zurustar/inkbot/pkg/canvas"
	"github.com/zurustar/inkbot/pkg/compiler"
	"github.com/zurustar/inkbot/pkg/fileutil"
	"github.com/zurustar/inkbot/pkg/graphics"
	"github.com/zurustar/inkbot/pkg/logger"
	"github.com/zurustar/inkbot/pkg/sink"
	"github.com/zurustar/inkbot/pkg/variable"
	"github.com/zurustar/inkbot/pkg/vm"
	"github.com/zurustar/inkbot/pkg/window"
)

// Bot executes one sketch. Frame, SetInput, PressButton and SetVariable
// must be called from a single goroutine; SetProgram may be called from any.
type Bot struct {
	canvas   *canvas.Canvas
	vars     *variable.Registry
	grammar  Grammar
	prog     *compiler.Program
	script   string // スクリプトのパス（snapshot()の既定の出力先）
	resolver *fileutil.Resolver
	images   *graphics.ImageCache
	fonts    *graphics.FontBook
	path     *graphics.PathBuilder
	machine  *vm.VM
	input    window.Input
	out      io.Writer
	seed     *uint64

	mu      sync.Mutex
	pending *compiler.Program

	log *slog.Logger
}

// Option configures a Bot.
type Option func(*Bot)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(b *Bot) {
		b.log = log
	}
}

// WithGrammar selects the vocabulary dialect.
func WithGrammar(g Grammar) Option {
	return func(b *Bot) {
		b.grammar = g
	}
}

// WithScriptPath sets the script location. Relative image and font paths
// resolve against its directory, and snapshot() without a filename writes
// next to it.
func WithScriptPath(path string) Option {
	return func(b *Bot) {
		b.script = path
	}
}

// WithCanvas replaces the default canvas.
func WithCanvas(c *canvas.Canvas) Option {
	return func(b *Bot) {
		b.canvas = c
	}
}

// WithRegistry replaces the default variable registry.
func WithRegistry(r *variable.Registry) Option {
	return func(b *Bot) {
		b.vars = r
	}
}

// WithOutput sets where print() writes.
func WithOutput(w io.Writer) Option {
	return func(b *Bot) {
		b.out = w
	}
}

// WithSeed makes random() and friends deterministic across generations.
func WithSeed(seed uint64) Option {
	return func(b *Bot) {
		b.seed = &seed
	}
}

// New creates a bot for a compiled program.
func New(prog *compiler.Program, opts ...Option) *Bot {
	b := &Bot{
		prog:    prog,
		grammar: grammars[DefaultGrammar],
		images:  graphics.NewImageCache(),
		fonts:   graphics.Fonts(),
		out:     os.Stdout,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.log == nil {
		b.log = logger.GetLogger()
	}
	if b.canvas == nil {
		b.canvas = canvas.New(canvas.WithLogger(b.log), canvas.WithDefaults(b.defaults()))
	}
	if b.vars == nil {
		b.vars = variable.NewRegistry(variable.WithLogger(b.log))
	}
	dir := ""
	if b.script != "" {
		dir = filepath.Dir(b.script)
	}
	b.resolver = fileutil.NewResolver(dir)
	return b
}

// defaults returns the canvas settings for the grammar.
func (b *Bot) defaults() canvas.Settings {
	s := canvas.DefaultSettings()
	if b.grammar.ColorRange > 0 {
		s.ColorRange = b.grammar.ColorRange
	}
	s.TransformMode = b.grammar.TransformMode
	return s
}

// Canvas returns the canvas the sketch draws on.
func (b *Bot) Canvas() *canvas.Canvas {
	return b.canvas
}

// Registry returns the variable registry.
func (b *Bot) Registry() *variable.Registry {
	return b.vars
}

// Size returns the canvas size.
func (b *Bot) Size() sink.Size {
	return b.canvas.Size()
}

// Speed returns the frame rate the sketch asked for, 0 when unset.
func (b *Bot) Speed() float64 {
	return b.canvas.Speed()
}

// Dynamic reports whether the sketch animates.
func (b *Bot) Dynamic() bool {
	return b.canvas.Dynamic()
}

// SetProgram replaces the program. The new program starts a new generation
// at the next frame boundary; declared variables carry over.
func (b *Bot) SetProgram(prog *compiler.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = prog
}

// Pending reports whether a new program waits for the next frame.
func (b *Bot) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending != nil
}

func (b *Bot) takePending() *compiler.Program {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.pending
	b.pending = nil
	return p
}

// SetInput records the mouse and keyboard state exposed to the next frame.
func (b *Bot) SetInput(in window.Input) {
	b.input = in
}

// SetVariable changes a declared variable between frames.
func (b *Bot) SetVariable(name string, value any) error {
	return b.vars.Set(name, value)
}

// PressButton calls the function bound to the index-th Button variable
// (0-based, in declaration order).
func (b *Bot) PressButton(ctx context.Context, index int) error {
	n := 0
	for _, v := range b.vars.Variables() {
		if v.Type != variable.Button {
			continue
		}
		if n == index {
			return b.Press(ctx, v.Name)
		}
		n++
	}
	return fmt.Errorf("%w: no button %d", variable.ErrUnknownVariable, index+1)
}

// Press calls the function bound to the Button variable name.
func (b *Bot) Press(ctx context.Context, name string) error {
	fn, err := b.vars.Press(name)
	if err != nil {
		return err
	}
	if b.machine == nil {
		return fmt.Errorf("button %s: sketch is not running", name)
	}
	b.log.Debug("Button pressed", "name", name, "function", fn)
	if _, err := b.machine.Call(ctx, fn); err != nil {
		return err
	}
	b.syncVariables()
	return nil
}

// Frame produces frame number frame (0-based) into s.
//
// A static sketch runs a whole generation every frame. A dynamic sketch
// runs a generation on its first frame and after a reload, then calls
// draw() once per frame.
func (b *Bot) Frame(ctx context.Context, s sink.Sink, frame int) error {
	if p := b.takePending(); p != nil {
		b.log.Info("Program reloaded", "functions", p.Functions)
		b.prog = p
		b.machine = nil
	}

	b.canvas.SetFrame(frame)
	b.canvas.Reset()

	if b.machine == nil || !b.canvas.Dynamic() {
		if err := b.generation(ctx); err != nil {
			return err
		}
	} else {
		b.canvas.Transforms.Mode = b.canvas.Settings.TransformMode
		b.bindFrame(b.machine)
		bindEnv(b.machine, b.vars.Env())
	}

	if b.canvas.Dynamic() && b.machine.HasFunction("draw") {
		if _, err := b.machine.Call(ctx, "draw"); err != nil {
			return err
		}
	}
	b.syncVariables()

	return b.canvas.Flush(s, frame)
}

// generation runs the top-level code and setup() in a fresh VM.
func (b *Bot) generation(ctx context.Context) error {
	b.vars.Begin()
	defer b.vars.End()

	b.canvas.ResetSettings()
	b.canvas.Transforms.Mode = b.canvas.Settings.TransformMode
	b.canvas.SetDynamic(b.prog.HasFunction("draw"))
	b.path = nil

	opts := []vm.Option{
		vm.WithLogger(b.log),
		vm.WithOutput(b.out),
		vm.WithBuiltins(b.builtins()),
	}
	if b.seed != nil {
		opts = append(opts, vm.WithSeed(*b.seed))
	}
	m := vm.NewFromProgram(b.prog, opts...)
	b.bindGlobals(m)

	b.machine = m
	if err := m.Run(ctx); err != nil {
		b.machine = nil
		return err
	}
	if m.HasFunction("setup") {
		if _, err := m.Call(ctx, "setup"); err != nil {
			b.machine = nil
			return err
		}
	}
	b.log.Debug("Generation started", "frame", b.canvas.Frame(), "dynamic", b.canvas.Dynamic(), "variables", len(b.vars.Variables()))
	return nil
}

// bindGlobals installs the constants and per-frame values of a new VM.
func (b *Bot) bindGlobals(m *vm.VM) {
	for name, value := range constants {
		m.SetGlobal(name, value)
	}
	b.bindFrame(m)
}

// bindFrame refreshes the values that change every frame.
func (b *Bot) bindFrame(m *vm.VM) {
	size := b.canvas.Size()
	m.SetGlobal("WIDTH", float64(size.Width))
	m.SetGlobal("HEIGHT", float64(size.Height))
	m.SetGlobal("FRAME", float64(b.canvas.Frame()+1))
	m.SetGlobal("PAGENUM", float64(b.canvas.Frame()+1))
	m.SetGlobal("MOUSEX", b.input.MouseX)
	m.SetGlobal("MOUSEY", b.input.MouseY)
	m.SetGlobal("mousedown", b.input.MouseDown)
	m.SetGlobal("keydown", b.input.KeyDown)
	m.SetGlobal("key", b.input.Key)
	m.SetGlobal("keycode", float64(b.input.KeyCode))
}

// bindEnv installs the variable environment as script globals.
func bindEnv(m *vm.VM, env variable.Env) {
	for name, value := range env {
		m.SetGlobal(name, value)
	}
}

// syncVariables copies script-side assignments to declared variables back
// into the registry so the next generation carries them.
func (b *Bot) syncVariables() {
	if b.machine == nil {
		return
	}
	for _, v := range b.vars.Variables() {
		if value, ok := b.machine.Global(v.Name); ok {
			b.vars.Sync(v.Name, value)
		}
	}
}

// constants are the script-visible names of modes and types.
var constants = map[string]any{
	"RGB":     graphics.RGB.String(),
	"HSB":     graphics.HSB.String(),
	"CENTER":  "center",
	"CORNER":  "corner",
	"CORNERS": "corners",
	"LEFT":    "left",
	"RIGHT":   "right",
	"JUSTIFY": "justify",
	"NUMBER":  variable.Number.String(),
	"TEXT":    variable.Text.String(),
	"BOOLEAN": variable.Boolean.String(),
	"BUTTON":  variable.Button.String(),

	// 単位（ポイント）
	"inch": 72.0,
	"cm":   28.3465,
	"mm":   2.8346,
}

// builtins returns the drawing vocabulary, including the grammar's aliases.
func (b *Bot) builtins() map[string]vm.BuiltinFunc {
	bs := make(builtinSet)
	b.registerCanvasBuiltins(bs)
	b.registerColorBuiltins(bs)
	b.registerShapeBuiltins(bs)
	b.registerClipBuiltins(bs)
	b.registerPathBuiltins(bs)
	b.registerTransformBuiltins(bs)
	b.registerTextBuiltins(bs)
	b.registerImageBuiltins(bs)
	b.registerVariableBuiltins(bs)
	b.registerSnapshotBuiltins(bs)

	for alias, target := range b.grammar.Aliases {
		if fn, ok := bs[target]; ok {
			bs[alias] = fn
		}
	}
	return bs
}

// builtinSet collects builtins before they are handed to the VM.
type builtinSet map[string]vm.BuiltinFunc

func (bs builtinSet) add(name string, fn func(m *vm.VM, a args) (any, error)) {
	bs[name] = func(m *vm.VM, list []any) (any, error) {
		return fn(m, args{fn: name, list: list})
	}
}
