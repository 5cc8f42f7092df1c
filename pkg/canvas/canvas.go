// Package canvas holds the per-run drawing state of a sketch: its size,
// frame counter, current settings, transform stack and the queue of
// graphic objects drawn in the current frame.
package canvas

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/zurustar/inkbot/pkg/graphics"
	"github.com/zurustar/inkbot/pkg/logger"
	"github.com/zurustar/inkbot/pkg/sink"
)

var (
	// ErrSizeLocked is reported when size() is called after the size was fixed.
	ErrSizeLocked = errors.New("canvas size already set")

	// ErrSnapshotDropped is returned when a frame fails before its deferred
	// snapshots could be written.
	ErrSnapshotDropped = errors.New("deferred snapshot dropped")

	// ErrNoClip is reported when a clip is ended that was never begun.
	ErrNoClip = errors.New("no clip to end")
)

// DefaultSize is used when a sketch never calls size().
var DefaultSize = sink.Size{Width: 400, Height: 400}

// WritePolicy decides when a snapshot is written.
type WritePolicy int

const (
	// Immediate renders the current queue right away.
	Immediate WritePolicy = iota
	// Deferred renders the frame once it is complete.
	Deferred
)

func (p WritePolicy) String() string {
	if p == Deferred {
		return "deferred"
	}
	return "immediate"
}

// Settings is the drawing state that shapes and text pick up when created.
type Settings struct {
	Background    graphics.Color
	Style         graphics.Style
	Font          string
	FontSize      float64
	LineHeight    float64
	Align         graphics.Align
	RectMode      graphics.ShapeMode
	EllipseMode   graphics.ShapeMode
	ColorMode     graphics.ColorMode
	ColorRange    float64
	TransformMode graphics.TransformMode
}

// DefaultSettings returns the settings a generation starts with.
func DefaultSettings() Settings {
	return Settings{
		Background: graphics.White,
		Style:      graphics.DefaultStyle(),
		Font:       graphics.DefaultFont,
		FontSize:   24,
		LineHeight: 1.2,
		Align:      graphics.Left,
		ColorMode:  graphics.RGB,
		ColorRange: 1,
	}
}

// Option configures a Canvas.
type Option func(*Canvas)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Canvas) {
		c.log = log
	}
}

// WithDefaults sets the settings restored at the start of each generation.
func WithDefaults(s Settings) Option {
	return func(c *Canvas) {
		c.defaults = s
	}
}

// WithDefaultSize sets the size used when the sketch never calls size().
func WithDefaultSize(size sink.Size) Option {
	return func(c *Canvas) {
		c.defaultSize = size
	}
}

type deferredSnapshot struct {
	target sink.Sink
	n      int  // grobs queued when the snapshot was requested
	finish bool // call Finish on target after writing
}

// Canvas is the drawing state of one run. It is used from a single goroutine.
type Canvas struct {
	size        sink.Size
	sizeSet     bool
	defaultSize sink.Size

	frame   int
	dynamic bool
	speed   float64

	defaults   Settings
	Settings   Settings
	Transforms *graphics.TransformStack
	queue      *graphics.Queue
	clips      int

	deferred []deferredSnapshot

	log *slog.Logger
}

// New creates a canvas with default settings and no size set.
func New(opts ...Option) *Canvas {
	c := &Canvas{
		defaultSize: DefaultSize,
		defaults:    DefaultSettings(),
		Transforms:  graphics.NewTransformStack(),
		queue:       graphics.NewQueue(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.GetLogger()
	}
	c.Settings = c.defaults
	c.Settings.Style = c.defaults.Style.Clone()
	return c
}

// SetSize fixes the canvas size. Only the first call has an effect; later
// calls return the size already in force.
func (c *Canvas) SetSize(w, h int) sink.Size {
	if c.sizeSet {
		if w != c.size.Width || h != c.size.Height {
			c.log.Warn("size() ignored", "error", ErrSizeLocked, "current", c.size.String(), "requested", fmt.Sprintf("%dx%d", w, h))
		}
		return c.size
	}
	if w <= 0 || h <= 0 {
		c.log.Warn("size() ignored: non-positive size", "width", w, "height", h)
		return c.Size()
	}
	c.size = sink.Size{Width: w, Height: h}
	c.sizeSet = true
	return c.size
}

// Size returns the canvas size, or the default size when none was set.
func (c *Canvas) Size() sink.Size {
	if !c.sizeSet {
		return c.defaultSize
	}
	return c.size
}

// SizeSet reports whether the sketch chose a size.
func (c *Canvas) SizeSet() bool {
	return c.sizeSet
}

// Frame returns the index of the current frame, starting at 0.
func (c *Canvas) Frame() int {
	return c.frame
}

// SetFrame sets the current frame index.
func (c *Canvas) SetFrame(n int) {
	c.frame = n
}

// Dynamic reports whether the sketch animates.
func (c *Canvas) Dynamic() bool {
	return c.dynamic
}

// SetDynamic marks the sketch as animated.
func (c *Canvas) SetDynamic(d bool) {
	c.dynamic = d
}

// Speed returns the requested frames per second, 0 when unset.
func (c *Canvas) Speed() float64 {
	return c.speed
}

// SetSpeed sets the frame rate and marks the sketch as dynamic.
func (c *Canvas) SetSpeed(fps float64) {
	if fps <= 0 {
		return
	}
	c.speed = fps
	c.dynamic = true
}

// Add queues a grob for the current frame.
func (c *Canvas) Add(g graphics.Grob) {
	c.queue.Push(g)
}

// Len returns the number of queued grobs.
func (c *Canvas) Len() int {
	return c.queue.Len()
}

// BeginClip queues a clipping region shaped by p. Everything queued until
// the matching EndClip is drawn inside it.
func (c *Canvas) BeginClip(p *graphics.Path) {
	c.queue.Push(&graphics.Clip{Path: p})
	c.clips++
}

// EndClip closes the innermost clipping region.
func (c *Canvas) EndClip() error {
	if c.clips == 0 {
		return ErrNoClip
	}
	c.clips--
	c.queue.Push(graphics.Unclip{})
	return nil
}

// Reset clears the per-frame state: the queue, open clips and the
// transform stack.
func (c *Canvas) Reset() {
	c.queue.Clear()
	c.clips = 0
	c.Transforms.Clear()
}

// ResetSettings restores the default settings at the start of a generation.
func (c *Canvas) ResetSettings() {
	c.Settings = c.defaults
	c.Settings.Style = c.defaults.Style.Clone()
	c.Transforms.Clear()
}

// Defer registers a snapshot completed by the next Flush. The snapshot holds
// what is queued now; grobs added later in the frame are not part of it.
func (c *Canvas) Defer(target sink.Sink) {
	c.deferred = append(c.deferred, deferredSnapshot{target: target, n: c.queue.Len(), finish: true})
}

// Pending returns the number of deferred snapshots not yet written.
func (c *Canvas) Pending() int {
	return len(c.deferred)
}

// Render draws the current queue into s without consuming it.
func (c *Canvas) Render(s sink.Sink, frame int) error {
	return c.render(s, frame, c.queue.Snapshot())
}

// Flush draws the frame into s, consumes the queue, and completes every
// deferred snapshot before returning. Deferred snapshots never outlive the
// frame: when the frame fails they are dropped.
func (c *Canvas) Flush(s sink.Sink, frame int) error {
	grobs := c.queue.PopAll()
	pending := c.deferred
	c.deferred = nil

	if err := c.render(s, frame, grobs); err != nil {
		if len(pending) > 0 {
			c.log.Warn("Deferred snapshots dropped", "frame", frame, "count", len(pending), "error", err)
			return errors.Join(err, fmt.Errorf("%w: %d for frame %d", ErrSnapshotDropped, len(pending), frame))
		}
		return err
	}

	var errs []error
	for _, d := range pending {
		if err := c.render(d.target, frame, grobs[:min(d.n, len(grobs))]); err != nil {
			errs = append(errs, err)
			continue
		}
		if d.finish {
			if err := d.target.Finish(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if len(pending) > 0 {
		c.log.Debug("Deferred snapshots written", "frame", frame, "count", len(pending))
	}
	return errors.Join(errs...)
}

func (c *Canvas) render(s sink.Sink, frame int, grobs []graphics.Grob) error {
	size := c.Size()
	ctx, err := s.CreateRenderContext(size, frame)
	if err != nil {
		return fmt.Errorf("frame %d: %w", frame, err)
	}
	ctx.Clear(c.Settings.Background)
	for _, g := range grobs {
		if err := g.Draw(ctx); err != nil {
			// コンテキストは必ず閉じる
			_ = s.RenderingFinished(size, frame, ctx)
			return fmt.Errorf("frame %d: %w", frame, err)
		}
	}
	// 閉じ忘れたクリップはフレームの終わりで閉じる
	for range graphics.OpenClips(grobs) {
		if err := ctx.EndClip(); err != nil {
			_ = s.RenderingFinished(size, frame, ctx)
			return fmt.Errorf("frame %d: %w", frame, err)
		}
	}
	if err := s.RenderingFinished(size, frame, ctx); err != nil {
		return fmt.Errorf("frame %d: %w", frame, err)
	}
	return nil
}
