package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/zurustar/inkbot/pkg/canvas"
	"github.com/zurustar/inkbot/pkg/compiler"
	"github.com/zurustar/inkbot/pkg/config"
	"github.com/zurustar/inkbot/pkg/logger"
	"github.com/zurustar/inkbot/pkg/script"
	"github.com/zurustar/inkbot/pkg/sink"
	"github.com/zurustar/inkbot/pkg/variable"
	"github.com/zurustar/inkbot/pkg/window"
)

// DefaultFormat is used when neither a format nor an output file is given.
const DefaultFormat = "png"

// RunOptions describes one invocation of a sketch.
type RunOptions struct {
	ScriptPath   string
	Grammar      string
	OutputFormat string
	OutputFile   string
	// Iterations is the number of frames. 0 means 1 in file mode and
	// "until the window closes" in windowed mode.
	Iterations int
	Windowed   bool
	Title      string
	Presets    map[string]any
	Watch      bool
	Config     *config.Config

	// Output receives print() output. Nil means stdout.
	Output io.Writer
	// Seed, when non-nil, makes random() deterministic.
	Seed   *uint64
	Logger *slog.Logger
}

// Run compiles and runs a sketch. Configuration errors (unknown grammar,
// unknown format, compile errors) are reported before anything is drawn.
// A cancelled ctx ends the run after the current frame without error.
func Run(ctx context.Context, opts RunOptions) error {
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}

	g, err := LookupGrammar(opts.Grammar)
	if err != nil {
		return err
	}
	if opts.OutputFormat != "" {
		if _, err := sink.LookupFormat(opts.OutputFormat); err != nil {
			return err
		}
	}

	prog, s, err := compiler.CompileFile(opts.ScriptPath)
	if err != nil {
		return err
	}
	log.Debug("Script compiled", "script", s.Path, "opcodes", len(prog.Opcodes), "functions", prog.Functions)

	b := newRunBot(prog, s, g, opts, log)

	var reloads <-chan struct{}
	if opts.Watch {
		w, err := NewWatcher(s.Path, b, WithWatchLogger(log))
		if err != nil {
			return err
		}
		defer w.Close()
		go w.Run(ctx)
		reloads = w.Reloaded()
	}

	if opts.Windowed {
		return window.Run(ctx, b, window.WithTitle(windowTitle(opts, s)), window.WithIterations(opts.Iterations), window.WithLogger(log))
	}

	if err := renderFiles(ctx, b, s, opts, log); err != nil {
		return err
	}
	if reloads == nil {
		return nil
	}

	// ファイル出力でも --watch の間は変更のたびに描き直す
	log.Info("Watching for changes", "script", s.Path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-reloads:
			if err := renderFiles(ctx, b, s, opts, log); err != nil {
				log.Error("Render failed", "error", err)
			}
		}
	}
}

// newRunBot builds the bot with canvas defaults from the grammar and config.
func newRunBot(prog *compiler.Program, s *script.Script, g Grammar, opts RunOptions, log *slog.Logger) *Bot {
	settings := canvas.DefaultSettings()
	settings.ColorRange = g.ColorRange
	settings.TransformMode = g.TransformMode
	settings, size := opts.Config.Apply(settings, canvas.DefaultSize)

	c := canvas.New(canvas.WithLogger(log), canvas.WithDefaults(settings), canvas.WithDefaultSize(size))
	reg := variable.NewRegistry(variable.WithLogger(log), variable.WithPresets(opts.Presets))

	botOpts := []Option{
		WithLogger(log),
		WithGrammar(g),
		WithScriptPath(s.Path),
		WithCanvas(c),
		WithRegistry(reg),
	}
	if opts.Output != nil {
		botOpts = append(botOpts, WithOutput(opts.Output))
	}
	if opts.Seed != nil {
		botOpts = append(botOpts, WithSeed(*opts.Seed))
	}
	return New(prog, botOpts...)
}

// OutputTarget returns the output file and format for file mode.
func OutputTarget(scriptPath, outputFile, outputFormat string) (string, sink.Format, error) {
	if outputFile == "" {
		name := outputFormat
		if name == "" {
			name = DefaultFormat
		}
		f, err := sink.LookupFormat(name)
		if err != nil {
			return "", sink.Format{}, err
		}
		return strings.TrimSuffix(scriptPath, filepath.Ext(scriptPath)) + f.Ext, f, nil
	}
	if outputFormat != "" {
		f, err := sink.LookupFormat(outputFormat)
		return outputFile, f, err
	}
	f, err := sink.FormatFromPath(outputFile)
	return outputFile, f, err
}

// renderFiles draws every frame into a file sink and finishes it once.
func renderFiles(ctx context.Context, b *Bot, s *script.Script, opts RunOptions, log *slog.Logger) (err error) {
	path, format, err := OutputTarget(s.Path, opts.OutputFile, opts.OutputFormat)
	if err != nil {
		return err
	}
	iterations := max(opts.Iterations, 1)
	multifile := iterations > 1 && format.Kind != sink.Paged

	fs, err := sink.NewFileSink(path, format.Name, multifile, sink.WithLogger(log), sink.WithTitle(s.Title()))
	if err != nil {
		return err
	}
	defer func() {
		if ferr := fs.Finish(); ferr != nil {
			err = errors.Join(err, fmt.Errorf("failed to finish %s: %w", path, ferr))
		}
	}()

	for frame := 0; frame < iterations; frame++ {
		if ctx.Err() != nil {
			log.Info("Run cancelled", "frames", frame, "reason", context.Cause(ctx))
			return nil
		}
		if err := b.Frame(ctx, fs, frame); err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				log.Info("Run cancelled", "frames", frame, "reason", context.Cause(ctx))
				return nil
			}
			return err
		}
	}
	log.Info("Frames rendered", "output", path, "format", format.Name, "frames", iterations, "multifile", multifile)
	return nil
}

// windowTitle is the configured title, or the script name without its extension.
func windowTitle(opts RunOptions, s *script.Script) string {
	if opts.Title != "" {
		return opts.Title
	}
	return s.Title()
}
