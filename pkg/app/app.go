// Package app wires the command line, the config file and the run driver.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/zurustar/inkbot/pkg/bot"
	"github.com/zurustar/inkbot/pkg/cli"
	"github.com/zurustar/inkbot/pkg/config"
	"github.com/zurustar/inkbot/pkg/logger"
	"github.com/zurustar/inkbot/pkg/variable"
)

// Application はアプリケーションのメインロジックを管理する
type Application struct {
	flags  *cli.Config
	file   *config.Config
	log    *slog.Logger
	stdout io.Writer
}

// New Applicationを作成
func New(stdout io.Writer) *Application {
	if stdout == nil {
		stdout = os.Stdout
	}
	return &Application{stdout: stdout}
}

// Run アプリケーションを実行
func (app *Application) Run(ctx context.Context, args []string) error {
	// 1. コマンドライン引数の解析
	flags, err := cli.ParseArgs(args)
	if err != nil {
		if errors.Is(err, cli.ErrNoScript) {
			cli.PrintHelp(app.stdout)
		}
		return fmt.Errorf("failed to parse args: %w", err)
	}
	app.flags = flags

	if flags.ShowHelp {
		cli.PrintHelp(app.stdout)
		return nil
	}

	// 2. ロガーの初期化
	if err := logger.InitLogger(flags.LogLevel); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.log = logger.GetLogger()

	// 3. 設定ファイルの読み込み
	if err := app.loadConfig(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 4. プリセットの読み込み
	presets, err := variable.ReadPresets(flags.Vars)
	if err != nil {
		return fmt.Errorf("failed to load presets: %w", err)
	}

	opts := Options(flags, app.file)
	opts.Presets = presets
	opts.Output = app.stdout
	opts.Logger = app.log

	// 5. 実行（Ctrl-C とタイムアウトで止める）
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	if flags.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.Timeout)
		defer cancel()
	}

	app.log.Info("Sketch started", "script", opts.ScriptPath, "grammar", opts.Grammar, "windowed", opts.Windowed, "watch", opts.Watch)
	if err := bot.Run(ctx, opts); err != nil {
		return err
	}
	app.log.Info("Application terminated normally")
	return nil
}

// loadConfig reads the file named by -c or INKBOT_CONFIG, or the default
// path when neither is given.
func (app *Application) loadConfig() error {
	var (
		c   *config.Config
		err error
	)
	if app.flags.ConfigPath != "" {
		c, err = config.Load(app.flags.ConfigPath)
	} else {
		c, err = config.LoadDefault()
	}
	if err != nil {
		return err
	}
	app.file = c
	app.log.Debug("Config loaded", "path", app.flags.ConfigPath, "config", fmt.Sprintf("%+v", *c))
	return nil
}

// Options merges the command line over the config file. A flag given
// explicitly always wins; an explicit output file also suppresses the
// configured format so that the format follows its extension.
func Options(flags *cli.Config, file *config.Config) bot.RunOptions {
	if file == nil {
		file = &config.Config{}
	}
	opts := bot.RunOptions{
		ScriptPath:   flags.ScriptPath,
		Grammar:      file.Run.Grammar,
		OutputFormat: file.Output.Format,
		OutputFile:   file.Output.File,
		Iterations:   file.Run.Iterations,
		Windowed:     flags.Window && !flags.Headless,
		Title:        flags.Title,
		Watch:        flags.Watch || file.Run.Watch,
		Config:       file,
	}
	if flags.IsSet("grammar") {
		opts.Grammar = flags.Grammar
	}
	if flags.IsSet("outputfile") {
		opts.OutputFile = flags.OutputFile
		opts.OutputFormat = ""
	}
	if flags.IsSet("format") {
		opts.OutputFormat = flags.Format
	}
	if flags.IsSet("repeat") {
		opts.Iterations = flags.Repeat
	}
	return opts
}
