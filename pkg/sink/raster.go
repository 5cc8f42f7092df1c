package sink

import (
	"image"
	"io"

	"github.com/gogpu/gg"
	"github.com/zurustar/inkbot/pkg/graphics"
)

// RasterContext draws a frame into a gg software context.
type RasterContext struct {
	dc    *gg.Context
	size  Size
	fonts *graphics.FontBook
	clips int
}

// NewRasterContext creates a transparent raster surface.
func NewRasterContext(size Size) *RasterContext {
	return &RasterContext{
		dc:    gg.NewContext(size.Width, size.Height),
		size:  size,
		fonts: graphics.Fonts(),
	}
}

func (r *RasterContext) Size() Size {
	return r.size
}

// Image returns the rendered pixels.
func (r *RasterContext) Image() image.Image {
	return r.dc.Image()
}

// Encode writes the frame in a raster format.
func (r *RasterContext) Encode(w io.Writer, f Format) error {
	switch f.Name {
	case "png":
		return r.dc.EncodePNG(w)
	case "jpg", "jpeg":
		return r.dc.EncodeJPEG(w, jpegQuality)
	}
	return f.Encode(w, r.dc.Image())
}

func (r *RasterContext) Clear(c graphics.Color) {
	r.dc.ClearWithColor(c.RGBA())
}

func (r *RasterContext) DrawPath(p *graphics.Path) error {
	if !p.Style.Visible() {
		return nil
	}
	r.dc.SetTransform(p.Transform)
	defer r.dc.Identity()

	if p.Style.Fill != nil && p.Style.Fill.A > 0 {
		r.appendPath(p.Geometry)
		r.dc.SetColor(p.Style.Fill.NRGBA())
		if err := r.dc.Fill(); err != nil {
			return err
		}
	}
	if p.Style.Stroke != nil && p.Style.Stroke.A > 0 && p.Style.StrokeWidth > 0 {
		r.appendPath(p.Geometry)
		r.dc.SetColor(p.Style.Stroke.NRGBA())
		r.dc.SetLineWidth(p.Style.StrokeWidth * graphics.StrokeScale(p.Transform))
		r.dc.SetLineCap(p.Style.Cap)
		r.dc.SetLineJoin(p.Style.Join)
		if err := r.dc.Stroke(); err != nil {
			return err
		}
	}
	return nil
}

// BeginClip intersects the clip with p. gg keeps the clip in device space,
// so the matrix is only needed while the path is recorded.
func (r *RasterContext) BeginClip(p *graphics.Path) error {
	r.dc.Push()
	r.dc.SetTransform(p.Transform)
	r.appendPath(p.Geometry)
	r.dc.Clip()
	r.dc.Identity()
	r.clips++
	return nil
}

func (r *RasterContext) EndClip() error {
	if r.clips == 0 {
		return ErrClipUnderflow
	}
	r.clips--
	r.dc.Pop()
	return nil
}

// appendPath replays geometry through the context so its matrix applies.
func (r *RasterContext) appendPath(geom *gg.Path) {
	geom.Iterate(func(verb gg.PathVerb, c []float64) {
		switch verb {
		case gg.MoveTo:
			r.dc.MoveTo(c[0], c[1])
		case gg.LineTo:
			r.dc.LineTo(c[0], c[1])
		case gg.QuadTo:
			r.dc.QuadraticTo(c[0], c[1], c[2], c[3])
		case gg.CubicTo:
			r.dc.CubicTo(c[0], c[1], c[2], c[3], c[4], c[5])
		case gg.Close:
			r.dc.ClosePath()
		}
	})
}

// DrawText draws each line at its transformed baseline. Glyphs are scaled
// with the transform but not rotated.
func (r *RasterContext) DrawText(t *graphics.Text) error {
	scale := graphics.StrokeScale(t.Transform)
	face, err := r.fonts.Face(t.Font, t.Size*scale)
	if err != nil {
		return err
	}
	r.dc.SetFont(face)
	r.dc.SetColor(t.Fill.NRGBA())
	measure := func(s string) float64 {
		w, _ := r.MeasureText(s, t.Font, t.Size)
		return w
	}
	for _, line := range t.Layout(measure) {
		pt := t.Transform.TransformPoint(gg.Pt(line.X, line.Y))
		r.dc.DrawString(line.Text, pt.X, pt.Y)
	}
	return nil
}

func (r *RasterContext) DrawImage(im *graphics.Image) error {
	w, h := im.Size()
	r.dc.SetTransform(im.Transform)
	defer r.dc.Identity()
	r.dc.DrawImageEx(gg.ImageBufFromImage(im.Img), gg.DrawImageOptions{
		X:         im.X,
		Y:         im.Y,
		DstWidth:  w,
		DstHeight: h,
		Opacity:   opacity(im.Alpha),
	})
	return nil
}

func (r *RasterContext) MeasureText(s, font string, size float64) (float64, float64) {
	w, h, err := r.fonts.Measure(s, font, size)
	if err != nil {
		return 0, 0
	}
	return w, h
}

func opacity(a float64) float64 {
	if a <= 0 || a > 1 {
		return 1
	}
	return a
}
