// Package window shows a running sketch in an ebiten window.
package window

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/zurustar/inkbot/pkg/logger"
	"github.com/zurustar/inkbot/pkg/sink"
	"golang.org/x/image/font/basicfont"
)

var (
	// 背景色（キャンバスの外側）
	backgroundColor = color.RGBA{0x20, 0x20, 0x20, 0xFF}
	// エラー表示の背景
	errorBackground = color.RGBA{0x80, 0x00, 0x00, 0xE0}
	textColor       = color.White
	// デフォルトフォント
	defaultFace = text.NewGoXFace(basicfont.Face7x13)
)

// Input is the mouse and keyboard state of one tick.
type Input struct {
	MouseX, MouseY float64
	MouseDown      bool
	KeyDown        bool
	Key            string
	KeyCode        int // ebiten.Key of the last pressed key
}

// Sketch is what the window runs: something that draws one frame per tick.
type Sketch interface {
	Frame(ctx context.Context, s sink.Sink, frame int) error
	Size() sink.Size
	Speed() float64
	Dynamic() bool
	SetInput(in Input)
	PressButton(ctx context.Context, index int) error
	// Pending reports a reloaded program waiting for the next frame.
	Pending() bool
}

// Option configures a Game.
type Option func(*Game)

// WithTitle sets the window title.
func WithTitle(title string) Option {
	return func(g *Game) {
		g.title = title
	}
}

// WithIterations stops advancing after n frames. 0 runs until the window closes.
func WithIterations(n int) Option {
	return func(g *Game) {
		g.iterations = n
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(g *Game) {
		g.log = log
	}
}

// Game はEbitengineのゲームインターフェースを実装する
type Game struct {
	ctx        context.Context
	sketch     Sketch
	screen     *ScreenSink
	title      string
	iterations int

	frame int   // 次に描くフレーム番号
	dirty bool  // 静的スケッチを描き直す
	err   error // 最後のスクリプトエラー
	tps   int
	image *ebiten.Image

	log *slog.Logger
}

// NewGame creates a game for sketch. The game stops with ebiten.Termination
// when ctx is done.
func NewGame(ctx context.Context, sketch Sketch, opts ...Option) *Game {
	g := &Game{
		ctx:    ctx,
		sketch: sketch,
		screen: NewScreenSink(),
		title:  "inkbot",
		dirty:  true,
		tps:    ebiten.DefaultTPS,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.log == nil {
		g.log = logger.GetLogger()
	}
	return g
}

// Err returns the last script error, nil when the sketch runs.
func (g *Game) Err() error {
	return g.err
}

// Frame returns the number of frames drawn.
func (g *Game) Frame() int {
	return g.frame
}

// Screen returns the sink frames are drawn into.
func (g *Game) Screen() *ScreenSink {
	return g.screen
}

// numberKeys map 1..9 to the first nine Button variables.
var numberKeys = []ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3,
	ebiten.KeyDigit4, ebiten.KeyDigit5, ebiten.KeyDigit6,
	ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
}

// Update ゲームロジックの更新（Ebitengineが毎フレーム呼び出す）
func (g *Game) Update() error {
	// タイムアウトチェック
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	g.sketch.SetInput(readInput())
	for i, k := range numberKeys {
		if inpututil.IsKeyJustPressed(k) {
			g.press(i)
		}
	}

	if err := g.step(); err != nil {
		return err
	}

	if fps := int(g.sketch.Speed()); fps > 0 && fps != g.tps {
		ebiten.SetTPS(fps)
		g.tps = fps
	}
	size := g.sketch.Size()
	if w, h := ebiten.WindowSize(); w != size.Width || h != size.Height {
		ebiten.SetWindowSize(size.Width, size.Height)
	}
	return nil
}

// press forwards a number key to the sketch.
func (g *Game) press(index int) {
	if g.err != nil {
		return
	}
	if err := g.sketch.PressButton(g.ctx, index); err != nil {
		g.log.Warn("Button press failed", "button", index+1, "error", err)
		return
	}
	g.dirty = true
}

// step draws the next frame when one is due.
func (g *Game) step() error {
	pending := g.sketch.Pending()
	if g.err != nil {
		if !pending {
			return nil
		}
		// リロードされたので再開する
		g.log.Info("Resuming after reload")
		g.err = nil
	}
	if !g.due(pending) {
		return nil
	}

	if err := g.sketch.Frame(g.ctx, g.screen, g.frame); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return ebiten.Termination
		}
		g.log.Error("Sketch error", "frame", g.frame, "error", err)
		g.err = err
		return nil
	}
	g.frame++
	g.dirty = false
	return nil
}

// due reports whether a frame should be drawn this tick.
func (g *Game) due(pending bool) bool {
	if pending {
		return true
	}
	if g.iterations > 0 && g.frame >= g.iterations {
		return false
	}
	// 静的なスケッチは変化があったときだけ描き直す
	return g.frame == 0 || g.dirty || g.sketch.Dynamic()
}

func readInput() Input {
	x, y := ebiten.CursorPosition()
	in := Input{
		MouseX:    float64(x),
		MouseY:    float64(y),
		MouseDown: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
	}
	keys := inpututil.AppendPressedKeys(nil)
	if len(keys) > 0 {
		in.KeyDown = true
		last := keys[len(keys)-1]
		in.Key = strings.ToLower(last.String())
		in.KeyCode = int(last)
	}
	return in
}

// Draw 画面描画（Ebitengineが毎フレーム呼び出す）
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	if pix, size, ok := g.screen.Take(); ok {
		if g.image == nil || g.image.Bounds().Dx() != size.Width || g.image.Bounds().Dy() != size.Height {
			g.image = ebiten.NewImage(size.Width, size.Height)
		}
		g.image.WritePixels(pix)
	}
	if g.image != nil {
		screen.DrawImage(g.image, nil)
	}

	if g.err != nil {
		drawError(screen, g.err)
	}
}

// drawError overlays the error message, one line per line of the message.
func drawError(screen *ebiten.Image, err error) {
	lines := strings.Split(err.Error(), "\n")
	h := 20 + 16*len(lines)
	box := ebiten.NewImage(screen.Bounds().Dx(), h)
	box.Fill(errorBackground)
	screen.DrawImage(box, nil)

	for i, line := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(10, float64(10+16*i))
		op.ColorScale.ScaleWithColor(textColor)
		text.Draw(screen, line, defaultFace, op)
	}
}

// Close finishes the screen sink. Run calls it once the window is gone.
func (g *Game) Close() error {
	return g.screen.Finish()
}

// Layout 画面サイズを返す
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	size := g.sketch.Size()
	return size.Width, size.Height
}

// Run opens a window and runs sketch until the window closes, Escape is
// pressed or ctx is done. It returns the last script error, if any.
func Run(ctx context.Context, sketch Sketch, opts ...Option) error {
	g := NewGame(ctx, sketch, opts...)

	size := sketch.Size()
	ebiten.SetWindowSize(size.Width, size.Height)
	ebiten.SetWindowTitle(g.title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	g.log.Info("Window opened", "title", g.title, "size", size.String())
	runErr := ebiten.RunGame(g)
	if err := g.Close(); err != nil {
		g.log.Warn("Screen sink not finished cleanly", "error", err)
	}
	if runErr != nil {
		return fmt.Errorf("failed to run window: %w", runErr)
	}
	return g.err
}
