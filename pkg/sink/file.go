package sink

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/zurustar/inkbot/pkg/fileutil"
	"github.com/zurustar/inkbot/pkg/logger"
)

// ErrNoPath is returned when a file sink is created without a path.
var ErrNoPath = errors.New("output path required")

// Option configures a sink.
type Option func(*options)

type options struct {
	log   *slog.Logger
	title string
}

// WithLogger sets the logger used to report written frames.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithTitle sets the document title written into SVG output.
func WithTitle(title string) Option {
	return func(o *options) {
		o.title = title
	}
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.GetLogger()
	}
	return o
}

// FileSink writes frames to files.
//
// With multifile set every frame gets its own file named
// <base>_<frame:03d><ext>. Otherwise raster and SVG frames overwrite the
// same file, and PDF frames become pages of one document written by Finish.
type FileSink struct {
	path      string
	format    Format
	multifile bool
	opts      options

	m   machine
	doc *PDFDocument

	written []string
}

// NewFileSink validates the format and returns a sink. An empty format is
// inferred from the extension of path.
func NewFileSink(path, format string, multifile bool, opts ...Option) (*FileSink, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrNoPath
	}
	expanded, err := fileutil.Expand(path)
	if err != nil {
		return nil, err
	}

	var f Format
	if format == "" {
		f, err = FormatFromPath(expanded)
	} else {
		f, err = LookupFormat(format)
	}
	if err != nil {
		return nil, err
	}

	return &FileSink{
		path:      expanded,
		format:    f,
		multifile: multifile,
		opts:      buildOptions(opts),
	}, nil
}

// Format returns the output format.
func (s *FileSink) Format() Format {
	return s.format
}

// Multifile reports whether every frame is written to its own file.
func (s *FileSink) Multifile() bool {
	return s.multifile
}

// OutputPath returns the file frame is written to.
func (s *FileSink) OutputPath(frame int) string {
	if !s.multifile {
		return s.path
	}
	ext := filepath.Ext(s.path)
	base := strings.TrimSuffix(s.path, ext)
	if ext == "" {
		ext = s.format.Ext
	}
	return fmt.Sprintf("%s_%03d%s", base, frame, ext)
}

// Written returns the files written so far, in order.
func (s *FileSink) Written() []string {
	return append([]string(nil), s.written...)
}

func (s *FileSink) CreateRenderContext(size Size, frame int) (RenderContext, error) {
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
		if s.multifile {
			ctx = NewPDFDocument(size).NewPage(size)
		} else {
			if s.doc == nil {
				s.doc = NewPDFDocument(size)
			}
			ctx = s.doc.NewPage(size)
		}
	}

	if err := s.m.open(ctx, frame); err != nil {
		return nil, err
	}
	return ctx, nil
}

func (s *FileSink) RenderingFinished(size Size, frame int, ctx RenderContext) error {
	if err := s.m.release(ctx); err != nil {
		return err
	}

	if s.format.Kind == Paged && !s.multifile {
		s.opts.log.Debug("Page added", "path", s.path, "frame", frame, "page", s.doc.Pages())
		return nil
	}

	path := s.OutputPath(frame)
	if err := fileutil.WriteFile(path, func(w io.Writer) error {
		return writeFrame(w, s.format, ctx)
	}); err != nil {
		return err
	}
	s.written = append(s.written, path)
	s.opts.log.Debug("Frame written", "path", path, "frame", frame, "size", size.String())
	return nil
}

// Finish writes the pending PDF document, if any.
func (s *FileSink) Finish() error {
	if err := s.m.close(); err != nil {
		return err
	}
	if s.doc == nil {
		return nil
	}
	if err := fileutil.WriteFile(s.path, s.doc.Write); err != nil {
		return err
	}
	s.written = append(s.written, s.path)
	s.opts.log.Debug("Document written", "path", s.path, "pages", s.doc.Pages())
	return nil
}

// writeFrame encodes one finished frame.
func writeFrame(w io.Writer, f Format, ctx RenderContext) error {
	switch c := ctx.(type) {
	case *RasterContext:
		return c.Encode(w, f)
	case *SVGContext:
		_, err := io.Copy(w, bytes.NewReader(c.Bytes()))
		return err
	case *PDFContext:
		return c.doc.Write(w)
	}
	return fmt.Errorf("%w: unsupported context %T", ErrNoContext, ctx)
}
