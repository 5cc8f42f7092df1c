package graphics

import "github.com/gogpu/gg"

// Style is the paint applied to a path. A nil Fill or Stroke disables it.
type Style struct {
	Fill        *Color
	Stroke      *Color
	StrokeWidth float64
	Cap         gg.LineCap
	Join        gg.LineJoin
}

// DefaultStyle fills with black and does not stroke.
func DefaultStyle() Style {
	fill := Black
	return Style{Fill: &fill, StrokeWidth: 1, Cap: gg.LineCapButt, Join: gg.LineJoinMiter}
}

// Clone returns a deep copy so later fill/stroke changes do not leak into
// grobs already queued.
func (s Style) Clone() Style {
	if s.Fill != nil {
		f := *s.Fill
		s.Fill = &f
	}
	if s.Stroke != nil {
		c := *s.Stroke
		s.Stroke = &c
	}
	return s
}

// Visible reports whether the style paints anything.
func (s Style) Visible() bool {
	return (s.Fill != nil && s.Fill.A > 0) || (s.Stroke != nil && s.Stroke.A > 0 && s.StrokeWidth > 0)
}
