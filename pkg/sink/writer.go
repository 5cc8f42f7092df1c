package sink

import (
	"fmt"
	"io"
)

// WriterSink writes frames to an io.Writer. Raster and SVG frames are
// written back to back as they finish; PDF pages are collected into one
// document written by Finish.
type WriterSink struct {
	w      io.Writer
	format Format
	opts   options

	m   machine
	doc *PDFDocument
}

// NewWriterSink returns a sink writing to w. The format must be given.
func NewWriterSink(w io.Writer, format string, opts ...Option) (*WriterSink, error) {
	if format == "" {
		return nil, fmt.Errorf("%w: a writer has no file extension", ErrFormatRequired)
	}
	f, err := LookupFormat(format)
	if err != nil {
		return nil, err
	}
	return &WriterSink{w: w, format: f, opts: buildOptions(opts)}, nil
}

// Format returns the output format.
func (s *WriterSink) Format() Format {
	return s.format
}

func (s *WriterSink) CreateRenderContext(size Size, frame int) (RenderContext, error) {
	if err := s.m.canOpen(); err != nil {
		return nil, err
	}

	var ctx RenderContext
	switch s.format.Kind {
	case Raster:
		ctx = NewRasterContext(size)
	case Vector:
		ctx = NewSVGContext(size, s.opts.title)
	case Paged:
		if s.doc == nil {
			s.doc = NewPDFDocument(size)
		}
		ctx = s.doc.NewPage(size)
	}

	if err := s.m.open(ctx, frame); err != nil {
		return nil, err
	}
	return ctx, nil
}

func (s *WriterSink) RenderingFinished(size Size, frame int, ctx RenderContext) error {
	if err := s.m.release(ctx); err != nil {
		return err
	}
	if s.format.Kind == Paged {
		return nil
	}
	if err := writeFrame(s.w, s.format, ctx); err != nil {
		return fmt.Errorf("failed to write frame %d: %w", frame, err)
	}
	s.opts.log.Debug("Frame written", "format", s.format.Name, "frame", frame, "size", size.String())
	return nil
}

func (s *WriterSink) Finish() error {
	if err := s.m.close(); err != nil {
		return err
	}
	if s.doc == nil {
		return nil
	}
	if err := s.doc.Write(s.w); err != nil {
		return err
	}
	s.opts.log.Debug("Document written", "format", s.format.Name, "pages", s.doc.Pages())
	return nil
}
