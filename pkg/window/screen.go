package window

import (
	"fmt"
	"image"
	"sync"

	"github.com/zurustar/inkbot/pkg/sink"
	xdraw "golang.org/x/image/draw"
)

// ScreenSink renders frames into a raster context and hands the finished
// pixels to the game loop. Frames are copied under a mutex, so the sketch
// may render while the window draws the previous frame.
type ScreenSink struct {
	open   *sink.RasterContext
	closed bool

	mu    sync.Mutex
	pix   *image.RGBA
	fresh bool
}

// NewScreenSink creates an empty screen sink.
func NewScreenSink() *ScreenSink {
	return &ScreenSink{}
}

func (s *ScreenSink) CreateRenderContext(size sink.Size, frame int) (sink.RenderContext, error) {
	if s.closed {
		return nil, sink.ErrClosed
	}
	if s.open != nil {
		return nil, fmt.Errorf("%w: frame %d", sink.ErrContextOpen, frame)
	}
	s.open = sink.NewRasterContext(size)
	return s.open, nil
}

func (s *ScreenSink) RenderingFinished(size sink.Size, frame int, ctx sink.RenderContext) error {
	if s.closed {
		return sink.ErrClosed
	}
	rc, ok := ctx.(*sink.RasterContext)
	if s.open == nil || !ok || rc != s.open {
		return sink.ErrNoContext
	}
	s.open = nil

	src := rc.Image()
	dst := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	xdraw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, xdraw.Src)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pix = dst
	s.fresh = true
	return nil
}

func (s *ScreenSink) Finish() error {
	if s.closed {
		return sink.ErrClosed
	}
	if s.open != nil {
		return fmt.Errorf("%w: a frame was never finished", sink.ErrContextOpen)
	}
	s.closed = true
	return nil
}

// Take returns the pixels of the latest frame if it was not taken yet.
func (s *ScreenSink) Take() ([]byte, sink.Size, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.fresh || s.pix == nil {
		return nil, sink.Size{}, false
	}
	s.fresh = false
	b := s.pix.Bounds()
	return s.pix.Pix, sink.Size{Width: b.Dx(), Height: b.Dy()}, true
}

// Image returns the latest frame.
func (s *ScreenSink) Image() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pix == nil {
		return nil
	}
	return s.pix
}
