package graphics

import (
	"math"

	"github.com/gogpu/gg"
)

// Path is a vector shape with its paint and the transform active when it
// was created. Geometry is kept in local coordinates.
type Path struct {
	Geometry  *gg.Path
	Style     Style
	Transform gg.Matrix
}

// NewPath wraps geometry with a style and the identity transform.
func NewPath(geom *gg.Path, style Style) *Path {
	if geom == nil {
		geom = gg.NewPath()
	}
	return &Path{Geometry: geom, Style: style.Clone(), Transform: gg.Identity()}
}

// Draw implements Grob.
func (p *Path) Draw(r Renderer) error {
	return r.DrawPath(p)
}

// Device returns the geometry with the transform applied.
func (p *Path) Device() *gg.Path {
	return p.Geometry.Transform(p.Transform)
}

// Copy returns an independent copy of the path.
func (p *Path) Copy() *Path {
	return &Path{Geometry: p.Geometry.Clone(), Style: p.Style.Clone(), Transform: p.Transform}
}

// Bounds returns the local bounding box of all points, control points included.
func (p *Path) Bounds() (x0, y0, x1, y1 float64) {
	x0, y0 = math.Inf(1), math.Inf(1)
	x1, y1 = math.Inf(-1), math.Inf(-1)
	add := func(pt gg.Point) {
		x0 = math.Min(x0, pt.X)
		y0 = math.Min(y0, pt.Y)
		x1 = math.Max(x1, pt.X)
		y1 = math.Max(y1, pt.Y)
	}
	p.Geometry.Iterate(func(_ gg.PathVerb, coords []float64) {
		for i := 0; i+1 < len(coords); i += 2 {
			add(gg.Pt(coords[i], coords[i+1]))
		}
	})
	if math.IsInf(x0, 1) {
		return 0, 0, 0, 0
	}
	return x0, y0, x1, y1
}

// Center returns the middle of the local bounding box.
func (p *Path) Center() (float64, float64) {
	x0, y0, x1, y1 := p.Bounds()
	return (x0 + x1) / 2, (y0 + y1) / 2
}

// ShapeMode decides how the four numbers given to rect() and ellipse() are read.
type ShapeMode int

const (
	// ShapeCorner reads x, y, width, height with (x, y) the top-left corner.
	ShapeCorner ShapeMode = iota
	// ShapeCenter reads x, y, width, height with (x, y) the center.
	ShapeCenter
	// ShapeCorners reads two opposite corners x1, y1, x2, y2.
	ShapeCorners
)

// Box converts four numbers read in mode m to a top-left corner and a size.
func (m ShapeMode) Box(a, b, c, d float64) (x, y, w, h float64) {
	switch m {
	case ShapeCenter:
		return a - c/2, b - d/2, c, d
	case ShapeCorners:
		return math.Min(a, c), math.Min(b, d), math.Abs(c - a), math.Abs(d - b)
	}
	return a, b, c, d
}

// Rect returns a rectangle. A roundness in (0, 1] rounds the corners by
// that fraction of half the shorter side.
func Rect(x, y, w, h, roundness float64) *gg.Path {
	p := gg.NewPath()
	if roundness > 0 {
		r := math.Min(roundness, 1) * math.Min(math.Abs(w), math.Abs(h)) / 2
		p.RoundedRectangle(x, y, w, h, r)
		return p
	}
	p.Rectangle(x, y, w, h)
	return p
}

// Ellipse returns the ellipse inscribed in the given box.
func Ellipse(x, y, w, h float64) *gg.Path {
	p := gg.NewPath()
	p.Ellipse(x+w/2, y+h/2, math.Abs(w)/2, math.Abs(h)/2)
	return p
}

// Line returns an open two-point path.
func Line(x1, y1, x2, y2 float64) *gg.Path {
	p := gg.NewPath()
	p.MoveTo(x1, y1)
	p.LineTo(x2, y2)
	return p
}

// Star returns a star centered on (x, y) alternating between the outer
// and inner radius.
func Star(x, y float64, points int, outer, inner float64) *gg.Path {
	if points < 2 {
		points = 2
	}
	p := gg.NewPath()
	for i := 0; i < points*2; i++ {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		a := math.Pi*float64(i)/float64(points) - math.Pi/2
		px, py := x+r*math.Cos(a), y+r*math.Sin(a)
		if i == 0 {
			p.MoveTo(px, py)
		} else {
			p.LineTo(px, py)
		}
	}
	p.Close()
	return p
}

// Polygon returns a regular polygon centered on (x, y).
func Polygon(x, y, radius float64, sides int) *gg.Path {
	if sides < 3 {
		sides = 3
	}
	p := gg.NewPath()
	for i := 0; i < sides; i++ {
		a := 2*math.Pi*float64(i)/float64(sides) - math.Pi/2
		px, py := x+radius*math.Cos(a), y+radius*math.Sin(a)
		if i == 0 {
			p.MoveTo(px, py)
		} else {
			p.LineTo(px, py)
		}
	}
	p.Close()
	return p
}

// Arrow returns a right-pointing arrow whose tip is at (x, y).
func Arrow(x, y, width float64) *gg.Path {
	head := width * 0.4
	tail := width * 0.2
	p := gg.NewPath()
	p.MoveTo(x, y)
	p.LineTo(x-head, y+head)
	p.LineTo(x-head, y+tail)
	p.LineTo(x-width, y+tail)
	p.LineTo(x-width, y-tail)
	p.LineTo(x-head, y-tail)
	p.LineTo(x-head, y-head)
	p.Close()
	return p
}

// PathBuilder accumulates beginpath/moveto/lineto calls.
type PathBuilder struct {
	path    *gg.Path
	started bool
}

// NewPathBuilder starts an empty path.
func NewPathBuilder() *PathBuilder {
	return &PathBuilder{path: gg.NewPath()}
}

func (b *PathBuilder) MoveTo(x, y float64) {
	b.path.MoveTo(x, y)
	b.started = true
}

func (b *PathBuilder) LineTo(x, y float64) error {
	if !b.started {
		return ErrNoCurrentPoint
	}
	b.path.LineTo(x, y)
	return nil
}

func (b *PathBuilder) CurveTo(c1x, c1y, c2x, c2y, x, y float64) error {
	if !b.started {
		return ErrNoCurrentPoint
	}
	b.path.CubicTo(c1x, c1y, c2x, c2y, x, y)
	return nil
}

func (b *PathBuilder) QuadTo(cx, cy, x, y float64) error {
	if !b.started {
		return ErrNoCurrentPoint
	}
	b.path.QuadraticTo(cx, cy, x, y)
	return nil
}

func (b *PathBuilder) Close() {
	if b.started {
		b.path.Close()
	}
}

// Geometry returns the accumulated path.
func (b *PathBuilder) Geometry() *gg.Path {
	return b.path
}
