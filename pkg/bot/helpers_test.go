package bot

import (
	"bytes"
	"context"
	"testing"

	"github.com/zurustar/inkbot/pkg/compiler"
	"github.com/zurustar/inkbot/pkg/graphics"
	"github.com/zurustar/inkbot/pkg/sink"
)

// recorder is a render context that keeps what was drawn.
type recorder struct {
	size       sink.Size
	background graphics.Color
	paths      []*graphics.Path
	texts      []*graphics.Text
	images     []*graphics.Image
	clips      []*graphics.Path
	unclips    int
}

func (r *recorder) Size() sink.Size              { return r.size }
func (r *recorder) Clear(c graphics.Color)       { r.background = c }
func (r *recorder) DrawPath(p *graphics.Path) error {
	r.paths = append(r.paths, p)
	return nil
}
func (r *recorder) DrawText(t *graphics.Text) error {
	r.texts = append(r.texts, t)
	return nil
}
func (r *recorder) DrawImage(im *graphics.Image) error {
	r.images = append(r.images, im)
	return nil
}
func (r *recorder) BeginClip(p *graphics.Path) error {
	r.clips = append(r.clips, p)
	return nil
}
func (r *recorder) EndClip() error {
	r.unclips++
	return nil
}
func (r *recorder) MeasureText(s, font string, size float64) (float64, float64) {
	return float64(len(s)) * size / 2, size
}

// recordingSink keeps one recorder per frame.
type recordingSink struct {
	frames   []*recorder
	finished int
}

func (s *recordingSink) CreateRenderContext(size sink.Size, frame int) (sink.RenderContext, error) {
	r := &recorder{size: size}
	s.frames = append(s.frames, r)
	return r, nil
}

func (s *recordingSink) RenderingFinished(size sink.Size, frame int, ctx sink.RenderContext) error {
	return nil
}

func (s *recordingSink) Finish() error {
	s.finished++
	return nil
}

func (s *recordingSink) last() *recorder {
	return s.frames[len(s.frames)-1]
}

// newTestBot compiles source and returns a bot whose print output goes to out.
func newTestBot(t *testing.T, source string, opts ...Option) (*Bot, *bytes.Buffer) {
	t.Helper()
	prog, err := compiler.Compile(source)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	out := &bytes.Buffer{}
	opts = append([]Option{WithOutput(out), WithSeed(1)}, opts...)
	return New(prog, opts...), out
}

// frames draws n frames into a recording sink.
func frames(t *testing.T, b *Bot, n int) *recordingSink {
	t.Helper()
	s := &recordingSink{}
	for i := 0; i < n; i++ {
		if err := b.Frame(context.Background(), s, i); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}
	return s
}

func mustCompile(t *testing.T, source string) *compiler.Program {
	t.Helper()
	prog, err := compiler.Compile(source)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	return prog
}

