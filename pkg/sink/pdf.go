package sink

import (
	"bytes"
	"fmt"
	"image/png"
	"io"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"github.com/gogpu/gg"
	"github.com/zurustar/inkbot/pkg/graphics"
)

// PDFDocument is a paginated PDF; every frame adds one page.
type PDFDocument struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	pages  int
	images int
}

// NewPDFDocument creates an empty document measured in points.
func NewPDFDocument(size Size) *PDFDocument {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: float64(size.Width), Ht: float64(size.Height)},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("inkbot", true)
	return &PDFDocument{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

// NewPage appends a page and returns a context drawing on it.
func (d *PDFDocument) NewPage(size Size) *PDFContext {
	orientation := "P"
	if size.Width > size.Height {
		orientation = "L"
	}
	d.pdf.AddPageFormat(orientation, fpdf.SizeType{Wd: float64(size.Width), Ht: float64(size.Height)})
	d.pages++
	return &PDFContext{doc: d, size: size}
}

// Pages returns the number of pages added so far.
func (d *PDFDocument) Pages() int {
	return d.pages
}

// Write outputs the document.
func (d *PDFDocument) Write(w io.Writer) error {
	if err := d.pdf.Error(); err != nil {
		return fmt.Errorf("pdf: %w", err)
	}
	return d.pdf.Output(w)
}

// PDFContext draws one page of a PDFDocument.
type PDFContext struct {
	doc   *PDFDocument
	size  Size
	clips int
}

// clipTolerance is the flattening error allowed for clip outlines, in points.
const clipTolerance = 0.25

func (c *PDFContext) Size() Size {
	return c.size
}

func (c *PDFContext) Clear(col graphics.Color) {
	if col.A <= 0 {
		return
	}
	pdf := c.doc.pdf
	n := col.NRGBA()
	pdf.SetAlpha(col.A, "Normal")
	pdf.SetFillColor(int(n.R), int(n.G), int(n.B))
	pdf.Rect(0, 0, float64(c.size.Width), float64(c.size.Height), "F")
	pdf.SetAlpha(1, "Normal")
}

func (c *PDFContext) DrawPath(p *graphics.Path) error {
	if !p.Style.Visible() {
		return nil
	}
	pdf := c.doc.pdf
	geom := p.Device()
	if s := p.Style; s.Fill != nil && s.Fill.A > 0 {
		n := s.Fill.NRGBA()
		pdf.SetAlpha(s.Fill.A, "Normal")
		pdf.SetFillColor(int(n.R), int(n.G), int(n.B))
		c.appendPath(geom)
		pdf.DrawPath("F")
	}
	if s := p.Style; s.Stroke != nil && s.Stroke.A > 0 && s.StrokeWidth > 0 {
		n := s.Stroke.NRGBA()
		pdf.SetAlpha(s.Stroke.A, "Normal")
		pdf.SetDrawColor(int(n.R), int(n.G), int(n.B))
		pdf.SetLineWidth(s.StrokeWidth * graphics.StrokeScale(p.Transform))
		pdf.SetLineCapStyle(lineCap(s.Cap))
		pdf.SetLineJoinStyle(lineJoin(s.Join))
		c.appendPath(geom)
		pdf.DrawPath("D")
	}
	pdf.SetAlpha(1, "Normal")
	return pdf.Error()
}

func (c *PDFContext) appendPath(geom *gg.Path) {
	pdf := c.doc.pdf
	var cur gg.Point
	geom.Iterate(func(verb gg.PathVerb, c []float64) {
		switch verb {
		case gg.MoveTo:
			pdf.MoveTo(c[0], c[1])
			cur = gg.Pt(c[0], c[1])
		case gg.LineTo:
			pdf.LineTo(c[0], c[1])
			cur = gg.Pt(c[0], c[1])
		case gg.QuadTo:
			// 二次ベジェは三次に持ち上げる
			ctrl, end := gg.Pt(c[0], c[1]), gg.Pt(c[2], c[3])
			c1 := gg.Pt(cur.X+2.0/3.0*(ctrl.X-cur.X), cur.Y+2.0/3.0*(ctrl.Y-cur.Y))
			c2 := gg.Pt(end.X+2.0/3.0*(ctrl.X-end.X), end.Y+2.0/3.0*(ctrl.Y-end.Y))
			pdf.CurveBezierCubicTo(c1.X, c1.Y, c2.X, c2.Y, end.X, end.Y)
			cur = end
		case gg.CubicTo:
			pdf.CurveBezierCubicTo(c[0], c[1], c[2], c[3], c[4], c[5])
			cur = gg.Pt(c[4], c[5])
		case gg.Close:
			pdf.ClosePath()
		}
	})
}

// DrawText uses the PDF core fonts; Helvetica stands in for every sans face.
func (c *PDFContext) DrawText(t *graphics.Text) error {
	pdf := c.doc.pdf
	family, style := pdfFont(t.Font)
	n := t.Fill.NRGBA()

	c.beginTransform(t.Transform)
	pdf.SetFont(family, style, t.Size)
	pdf.SetTextColor(int(n.R), int(n.G), int(n.B))
	pdf.SetAlpha(t.Fill.A, "Normal")
	measure := func(s string) float64 {
		return pdf.GetStringWidth(c.doc.tr(s))
	}
	for _, line := range t.Layout(measure) {
		pdf.Text(line.X, line.Y, c.doc.tr(line.Text))
	}
	pdf.SetAlpha(1, "Normal")
	pdf.TransformEnd()
	return pdf.Error()
}

func (c *PDFContext) DrawImage(im *graphics.Image) error {
	pdf := c.doc.pdf
	var buf bytes.Buffer
	if err := png.Encode(&buf, im.Img); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	c.doc.images++
	name := fmt.Sprintf("img%d", c.doc.images)
	opts := fpdf.ImageOptions{ImageType: "PNG", AllowNegativePosition: true}
	pdf.RegisterImageOptionsReader(name, opts, &buf)

	w, h := im.Size()
	c.beginTransform(im.Transform)
	pdf.SetAlpha(opacity(im.Alpha), "Normal")
	pdf.ImageOptions(name, im.X, im.Y, w, h, false, opts, 0, "")
	pdf.SetAlpha(1, "Normal")
	pdf.TransformEnd()
	return pdf.Error()
}

// BeginClip clips to the flattened outline of p. Subpaths are joined into
// one polygon.
func (c *PDFContext) BeginClip(p *graphics.Path) error {
	pts := p.Device().Flatten(clipTolerance)
	poly := make([]fpdf.PointType, len(pts))
	for i, pt := range pts {
		poly[i] = fpdf.PointType{X: pt.X, Y: pt.Y}
	}
	c.doc.pdf.ClipPolygon(poly, false)
	c.clips++
	return c.doc.pdf.Error()
}

func (c *PDFContext) EndClip() error {
	if c.clips == 0 {
		return ErrClipUnderflow
	}
	c.clips--
	c.doc.pdf.ClipEnd()
	return c.doc.pdf.Error()
}

func (c *PDFContext) MeasureText(s, font string, size float64) (float64, float64) {
	pdf := c.doc.pdf
	family, style := pdfFont(font)
	pdf.SetFont(family, style, size)
	return pdf.GetStringWidth(c.doc.tr(s)), size
}

// beginTransform applies m, given in top-down page coordinates, to the
// bottom-up PDF user space.
func (c *PDFContext) beginTransform(m gg.Matrix) {
	h := float64(c.size.Height)
	pdf := c.doc.pdf
	pdf.TransformBegin()
	pdf.Transform(fpdf.TransformMatrix{
		A: m.A,
		B: -m.D,
		C: -m.B,
		D: m.E,
		E: m.B*h + m.C,
		F: h - m.E*h - m.F,
	})
}

func pdfFont(name string) (family, style string) {
	switch strings.ToLower(name) {
	case "mono", "gomono":
		return "Courier", ""
	case "bold", "gobold":
		return "Helvetica", "B"
	}
	return "Helvetica", ""
}
