package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrNoScript is returned when no script path is given.
var ErrNoScript = errors.New("no script given")

// Config はコマンドライン引数から解析された設定を保持する
type Config struct {
	ScriptPath string        // 実行するスクリプト
	OutputFile string        // 出力ファイル（空ならスクリプト名から決める）
	Format     string        // 出力形式
	Grammar    string        // bot, nodebox, drawbot
	Repeat     int           // フレーム数（0は未指定）
	Window     bool          // ウィンドウで実行
	Title      string        // ウィンドウタイトル
	Vars       string        // プリセット（YAMLファイルまたは a=1,b=2）
	Watch      bool          // スクリプトの変更を監視して再読み込み
	ConfigPath string        // 設定ファイル
	Timeout    time.Duration // タイムアウト時間（0は無制限）
	LogLevel   string        // ログレベル（debug, info, warn, error）
	Headless   bool          // ウィンドウを開かずファイルに出力
	ShowHelp   bool          // ヘルプ表示フラグ

	// set は明示的に指定されたフラグ名（長い名前）
	set map[string]bool
}

// IsSet reports whether the flag with the long name was given explicitly.
func (c *Config) IsSet(name string) bool {
	return c.set[name]
}

// shortNames maps short flags to their long names.
var shortNames = map[string]string{
	"o": "outputfile",
	"f": "format",
	"g": "grammar",
	"r": "repeat",
	"w": "window",
	"V": "vars",
	"c": "config",
	"t": "timeout",
	"l": "log-level",
	"h": "help",
}

// boolFlags never consume the following argument.
var boolFlags = map[string]bool{
	"window":   true,
	"watch":    true,
	"headless": true,
	"help":     true,
}

// ParseArgs コマンドライン引数を解析してConfigを返す
func ParseArgs(args []string) (*Config, error) {
	// 引数を並べ替え：フラグを前に、位置引数を後ろに
	reorderedArgs := reorderArgs(args)

	fs := flag.NewFlagSet("inkbot", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	config := &Config{}

	var timeoutSec int
	fs.StringVar(&config.OutputFile, "outputfile", "", "出力ファイル")
	fs.StringVar(&config.OutputFile, "o", "", "出力ファイル（短縮形）")
	fs.StringVar(&config.Format, "format", "", "出力形式")
	fs.StringVar(&config.Format, "f", "", "出力形式（短縮形）")
	fs.StringVar(&config.Grammar, "grammar", "", "文法")
	fs.StringVar(&config.Grammar, "g", "", "文法（短縮形）")
	fs.IntVar(&config.Repeat, "repeat", 0, "フレーム数")
	fs.IntVar(&config.Repeat, "r", 0, "フレーム数（短縮形）")
	fs.BoolVar(&config.Window, "window", false, "ウィンドウで実行")
	fs.BoolVar(&config.Window, "w", false, "ウィンドウで実行（短縮形）")
	fs.StringVar(&config.Title, "title", "", "ウィンドウタイトル")
	fs.StringVar(&config.Vars, "vars", "", "変数のプリセット")
	fs.StringVar(&config.Vars, "V", "", "変数のプリセット（短縮形）")
	fs.BoolVar(&config.Watch, "watch", false, "変更を監視して再読み込み")
	fs.StringVar(&config.ConfigPath, "config", "", "設定ファイル")
	fs.StringVar(&config.ConfigPath, "c", "", "設定ファイル（短縮形）")
	fs.IntVar(&timeoutSec, "timeout", 0, "タイムアウト時間（秒）")
	fs.IntVar(&timeoutSec, "t", 0, "タイムアウト時間（秒）（短縮形）")
	fs.StringVar(&config.LogLevel, "log-level", "info", "ログレベル（debug, info, warn, error）")
	fs.StringVar(&config.LogLevel, "l", "info", "ログレベル（短縮形）")
	fs.BoolVar(&config.Headless, "headless", false, "ヘッドレスモード")
	fs.BoolVar(&config.ShowHelp, "help", false, "ヘルプを表示")
	fs.BoolVar(&config.ShowHelp, "h", false, "ヘルプを表示（短縮形）")

	if err := fs.Parse(reorderedArgs); err != nil {
		return nil, err
	}

	config.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		name := f.Name
		if long, ok := shortNames[name]; ok {
			name = long
		}
		config.set[name] = true
	})

	// 環境変数からの設定（コマンドラインフラグが優先）
	if !config.Headless {
		if headlessEnv := os.Getenv("HEADLESS"); headlessEnv != "" {
			config.Headless = headlessEnv == "1" || strings.ToLower(headlessEnv) == "true"
		}
	}

	if timeoutSec == 0 {
		if timeoutEnv := os.Getenv("TIMEOUT"); timeoutEnv != "" {
			if t, err := strconv.Atoi(timeoutEnv); err == nil && t > 0 {
				timeoutSec = t
			}
		}
	}

	if !config.IsSet("log-level") {
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			config.LogLevel = strings.ToLower(logLevelEnv)
		}
	}

	if config.ConfigPath == "" {
		config.ConfigPath = os.Getenv("INKBOT_CONFIG")
	}

	if timeoutSec < 0 {
		return nil, fmt.Errorf("timeout must be non-negative, got %d", timeoutSec)
	}
	config.Timeout = time.Duration(timeoutSec) * time.Second

	if config.Repeat < 0 {
		return nil, fmt.Errorf("repeat must be non-negative, got %d", config.Repeat)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[config.LogLevel] {
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.LogLevel)
	}

	if fs.NArg() > 1 {
		return nil, fmt.Errorf("only one script may be given, got %d", fs.NArg())
	}
	if fs.NArg() == 1 {
		config.ScriptPath = fs.Arg(0)
	} else if !config.ShowHelp {
		return nil, ErrNoScript
	}

	return config, nil
}

// reorderArgs 引数を並べ替えて、フラグを前に、位置引数を後ろに配置する
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}

		// フラグかどうかを判定（-または--で始まる）
		if len(arg) > 1 && arg[0] == '-' {
			flags = append(flags, arg)

			// -o=out.png の形なら値は同じ引数に含まれる
			name := strings.TrimLeft(arg, "-")
			if strings.Contains(name, "=") {
				continue
			}
			if long, ok := shortNames[name]; ok {
				name = long
			}
			// 次の引数が値である可能性をチェック（-t 5 のような場合）
			if !boolFlags[name] && i+1 < len(args) && len(args[i+1]) > 0 && args[i+1][0] != '-' {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, arg)
		}
	}

	return append(flags, positional...)
}

// PrintHelp ヘルプメッセージを表示
func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `inkbot - sketch runner

Usage:
  inkbot [options] script

Arguments:
  script        実行するスクリプト (.ink)

Options:
  -o, --outputfile <path>     出力ファイル（デフォルト: スクリプト名.png）
  -f, --format <format>       出力形式: png, jpg, bmp, tiff, svg, pdf
  -g, --grammar <name>        文法: bot, nodebox, drawbot（デフォルト: bot）
  -r, --repeat <n>            フレーム数（デフォルト: 1、ウィンドウでは無制限）
  -w, --window                ウィンドウで実行
  --title <title>             ウィンドウタイトル（デフォルト: スクリプト名）
  -V, --vars <file|pairs>     変数のプリセット（YAMLファイル、または a=1,b=text）
  --watch                     スクリプトの変更を監視して再読み込み
  -c, --config <path>         設定ファイル（デフォルト: ~/.config/inkbot/config.toml）
  -t, --timeout <seconds>     指定秒数後にプログラムを終了（デフォルト: 無制限）
  -l, --log-level <level>     ログレベル: debug, info, warn, error（デフォルト: info）
  --headless                  ウィンドウを開かずファイルに出力
  -h, --help                  このヘルプを表示

Environment Variables:
  HEADLESS=1                  ヘッドレスモードを有効化
  TIMEOUT=<seconds>           タイムアウト時間（秒）
  LOG_LEVEL=<level>           ログレベル
  INKBOT_CONFIG=<path>        設定ファイル

Examples:
  inkbot sketch.ink                       sketch.png に出力
  inkbot -f svg -r 10 anim.ink            anim_000.svg ... anim_009.svg に出力
  inkbot -o book.pdf -r 5 pages.ink       5ページのPDFに出力
  inkbot -w --watch sketch.ink            ウィンドウで実行し、保存のたびに再読み込み
  inkbot -V presets.yaml sketch.ink       変数の初期値を指定
`)
}
