// Package graphics holds the drawing primitives a sketch creates: colors,
// paths, text and images, plus the Renderer contract every output backend
// implements.
package graphics

// Grob is a graphic object queued on the canvas for the current frame.
type Grob interface {
	Draw(r Renderer) error
}

// Renderer is a drawable surface bound to one frame of one output medium.
type Renderer interface {
	// Clear paints the whole surface with c.
	Clear(c Color)
	DrawPath(p *Path) error
	DrawText(t *Text) error
	DrawImage(img *Image) error
	// BeginClip restricts drawing to the inside of p until the matching EndClip.
	BeginClip(p *Path) error
	EndClip() error
	// MeasureText returns the width and height of s as this surface would draw it.
	MeasureText(s, font string, size float64) (w, h float64)
}
