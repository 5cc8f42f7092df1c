package sink

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"path/filepath"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/gogpu/gg"
	"github.com/zurustar/inkbot/pkg/graphics"
)

// SVGContext draws a frame as an SVG document. Path transforms are baked
// into the coordinates; text and images keep theirs as a group transform.
type SVGContext struct {
	buf    bytes.Buffer
	doc    *svg.SVG
	size   Size
	fonts  *graphics.FontBook
	ended  bool
	clipID int
	clips  int
}

// NewSVGContext starts a document of the given size.
func NewSVGContext(size Size, title string) *SVGContext {
	c := &SVGContext{size: size, fonts: graphics.Fonts()}
	c.doc = svg.New(&c.buf)
	c.doc.Start(size.Width, size.Height)
	if title != "" {
		c.doc.Title(title)
	}
	return c
}

func (c *SVGContext) Size() Size {
	return c.size
}

// Bytes closes the document and returns it.
func (c *SVGContext) Bytes() []byte {
	if !c.ended {
		c.doc.End()
		c.ended = true
	}
	return c.buf.Bytes()
}

func (c *SVGContext) Clear(col graphics.Color) {
	if col.A <= 0 {
		return
	}
	c.doc.Rect(0, 0, c.size.Width, c.size.Height, "fill:"+col.Hex()+opacityStyle("fill", col))
}

func (c *SVGContext) DrawPath(p *graphics.Path) error {
	if !p.Style.Visible() {
		return nil
	}
	d := pathData(p.Device())
	if d == "" {
		return nil
	}
	c.doc.Path(d, svgStyle(p.Style, graphics.StrokeScale(p.Transform)))
	return nil
}

func (c *SVGContext) DrawText(t *graphics.Text) error {
	if _, err := c.fonts.Source(t.Font); err != nil {
		return err
	}
	measure := func(s string) float64 {
		w, _ := c.MeasureText(s, t.Font, t.Size)
		return w
	}
	style := fmt.Sprintf("font-family:%s;font-size:%s;fill:%s%s",
		fontFamily(t.Font), num(t.Size), t.Fill.Hex(), opacityStyle("fill", t.Fill))
	for _, line := range t.Layout(measure) {
		m := t.Transform.Multiply(gg.Translate(line.X, line.Y))
		c.doc.Gtransform(matrixAttr(m))
		c.doc.Text(0, 0, line.Text, style)
		c.doc.Gend()
	}
	return nil
}

// DrawImage inlines the image as a base64 PNG data URI.
func (c *SVGContext) DrawImage(im *graphics.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, im.Img); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	b := im.Img.Bounds()
	w, h := im.Size()
	m := im.Transform.
		Multiply(gg.Translate(im.X, im.Y)).
		Multiply(gg.Scale(w/float64(b.Dx()), h/float64(b.Dy())))
	c.doc.Gtransform(matrixAttr(m))
	if a := opacity(im.Alpha); a < 1 {
		c.doc.Image(0, 0, b.Dx(), b.Dy(), uri, "opacity:"+num(a))
	} else {
		c.doc.Image(0, 0, b.Dx(), b.Dy(), uri)
	}
	c.doc.Gend()
	return nil
}

// BeginClip defines a clipPath and opens a group that uses it.
func (c *SVGContext) BeginClip(p *graphics.Path) error {
	c.clipID++
	id := fmt.Sprintf("clip%d", c.clipID)
	c.doc.Def()
	c.doc.ClipPath(`id="` + id + `"`)
	c.doc.Path(pathData(p.Device()))
	c.doc.ClipEnd()
	c.doc.DefEnd()
	c.doc.Group(`clip-path="url(#` + id + `)"`)
	c.clips++
	return nil
}

func (c *SVGContext) EndClip() error {
	if c.clips == 0 {
		return ErrClipUnderflow
	}
	c.clips--
	c.doc.Gend()
	return nil
}

func (c *SVGContext) MeasureText(s, font string, size float64) (float64, float64) {
	w, h, err := c.fonts.Measure(s, font, size)
	if err != nil {
		return 0, 0
	}
	return w, h
}

// pathData converts device-space geometry to SVG path data.
func pathData(p *gg.Path) string {
	var sb strings.Builder
	p.Iterate(func(verb gg.PathVerb, c []float64) {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		switch verb {
		case gg.MoveTo:
			fmt.Fprintf(&sb, "M%s %s", num(c[0]), num(c[1]))
		case gg.LineTo:
			fmt.Fprintf(&sb, "L%s %s", num(c[0]), num(c[1]))
		case gg.QuadTo:
			fmt.Fprintf(&sb, "Q%s %s %s %s", num(c[0]), num(c[1]), num(c[2]), num(c[3]))
		case gg.CubicTo:
			fmt.Fprintf(&sb, "C%s %s %s %s %s %s",
				num(c[0]), num(c[1]), num(c[2]), num(c[3]), num(c[4]), num(c[5]))
		case gg.Close:
			sb.WriteByte('Z')
		}
	})
	return sb.String()
}

func svgStyle(s graphics.Style, strokeScale float64) string {
	var parts []string
	if s.Fill != nil && s.Fill.A > 0 {
		parts = append(parts, "fill:"+s.Fill.Hex()+opacityStyle("fill", *s.Fill))
	} else {
		parts = append(parts, "fill:none")
	}
	if s.Stroke != nil && s.Stroke.A > 0 && s.StrokeWidth > 0 {
		parts = append(parts,
			"stroke:"+s.Stroke.Hex()+opacityStyle("stroke", *s.Stroke),
			"stroke-width:"+num(s.StrokeWidth*strokeScale),
			"stroke-linecap:"+lineCap(s.Cap),
			"stroke-linejoin:"+lineJoin(s.Join))
	} else {
		parts = append(parts, "stroke:none")
	}
	return strings.Join(parts, ";")
}

func opacityStyle(prop string, c graphics.Color) string {
	if c.Opaque() {
		return ""
	}
	return ";" + prop + "-opacity:" + num(c.A)
}

// matrixAttr renders m as an SVG transform value.
func matrixAttr(m gg.Matrix) string {
	return fmt.Sprintf("matrix(%s %s %s %s %s %s)",
		num(m.A), num(m.D), num(m.B), num(m.E), num(m.C), num(m.F))
}

func lineCap(c gg.LineCap) string {
	switch c {
	case gg.LineCapRound:
		return "round"
	case gg.LineCapSquare:
		return "square"
	}
	return "butt"
}

func lineJoin(j gg.LineJoin) string {
	switch j {
	case gg.LineJoinRound:
		return "round"
	case gg.LineJoinBevel:
		return "bevel"
	}
	return "miter"
}

func fontFamily(name string) string {
	switch strings.ToLower(name) {
	case "", "sans", "goregular":
		return "sans-serif"
	case "mono", "gomono":
		return "monospace"
	case "bold", "gobold":
		return "sans-serif;font-weight:bold"
	}
	return strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
