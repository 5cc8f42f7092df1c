// Package sink materializes drawn frames. A Sink hands out one render
// context per frame and writes the finished frame to its medium: an image
// file, an SVG or PDF document, a plain io.Writer, or a window.
package sink

import (
	"errors"
	"fmt"

	"github.com/zurustar/inkbot/pkg/graphics"
)

var (
	// ErrUnknownFormat is returned when an output format is not in the format table.
	ErrUnknownFormat = errors.New("unknown output format")
	// ErrFormatRequired is returned when a target needs an explicit format.
	ErrFormatRequired = errors.New("output format required")
	// ErrContextOpen is returned when a render context is requested while one is open.
	ErrContextOpen = errors.New("render context already open")
	// ErrNoContext is returned when a frame is finished without an open context.
	ErrNoContext = errors.New("no open render context")
	// ErrClosed is returned when a sink is used after Finish.
	ErrClosed = errors.New("sink is closed")
	// ErrClipUnderflow is returned when a clip is ended that was never begun.
	ErrClipUnderflow = errors.New("no clip to end")
)

// Size is the pixel (or point) size of a frame.
type Size struct {
	Width  int
	Height int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// RenderContext is the drawing surface for one frame.
type RenderContext interface {
	graphics.Renderer
	Size() Size
}

// Sink is the destination of drawn frames.
//
// For every frame the caller obtains a context with CreateRenderContext,
// draws into it and passes it back to RenderingFinished. Finish is called
// once after the last frame.
type Sink interface {
	CreateRenderContext(size Size, frame int) (RenderContext, error)
	RenderingFinished(size Size, frame int, ctx RenderContext) error
	Finish() error
}

type state int

const (
	stateIdle state = iota
	stateOpen
	stateClosed
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateOpen:
		return "open"
	case stateClosed:
		return "closed"
	}
	return "unknown"
}

// machine tracks the Idle -> Open -> Idle ... -> Closed lifecycle shared
// by every sink implementation.
type machine struct {
	state   state
	current RenderContext
	frame   int
}

func (m *machine) open(ctx RenderContext, frame int) error {
	switch m.state {
	case stateClosed:
		return ErrClosed
	case stateOpen:
		return fmt.Errorf("%w: frame %d is still open", ErrContextOpen, m.frame)
	}
	m.state = stateOpen
	m.current = ctx
	m.frame = frame
	return nil
}

// canOpen reports the error open would return without changing state.
func (m *machine) canOpen() error {
	switch m.state {
	case stateClosed:
		return ErrClosed
	case stateOpen:
		return fmt.Errorf("%w: frame %d is still open", ErrContextOpen, m.frame)
	}
	return nil
}

func (m *machine) release(ctx RenderContext) error {
	switch m.state {
	case stateClosed:
		return ErrClosed
	case stateIdle:
		return ErrNoContext
	}
	if ctx != m.current {
		return fmt.Errorf("%w: context was not created by this sink", ErrNoContext)
	}
	m.state = stateIdle
	m.current = nil
	return nil
}

func (m *machine) close() error {
	switch m.state {
	case stateClosed:
		return ErrClosed
	case stateOpen:
		return fmt.Errorf("%w: frame %d was never finished", ErrContextOpen, m.frame)
	}
	m.state = stateClosed
	return nil
}
