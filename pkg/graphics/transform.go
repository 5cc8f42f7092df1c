package graphics

import (
	"math"

	"github.com/gogpu/gg"
)

// TransformMode decides the origin of rotations and scales applied to a grob.
type TransformMode int

const (
	// Corner applies the current transform as is.
	Corner TransformMode = iota
	// Center applies the linear part of the transform around the grob's center.
	Center
)

// TransformStack is the push/pop stack of affine transforms used by the
// drawing calls. Angles are degrees, counter-clockwise on screen.
type TransformStack struct {
	current gg.Matrix
	saved   []gg.Matrix
	Mode    TransformMode
}

// NewTransformStack returns a stack holding the identity transform.
func NewTransformStack() *TransformStack {
	return &TransformStack{current: gg.Identity()}
}

// Matrix returns the current transform.
func (t *TransformStack) Matrix() gg.Matrix {
	return t.current
}

// Push saves the current transform.
func (t *TransformStack) Push() {
	t.saved = append(t.saved, t.current)
}

// Pop restores the transform saved by the matching Push.
func (t *TransformStack) Pop() error {
	if len(t.saved) == 0 {
		return ErrTransformUnderflow
	}
	t.current = t.saved[len(t.saved)-1]
	t.saved = t.saved[:len(t.saved)-1]
	return nil
}

// Depth returns the number of saved transforms.
func (t *TransformStack) Depth() int {
	return len(t.saved)
}

func (t *TransformStack) Translate(x, y float64) {
	t.current = t.current.Multiply(gg.Translate(x, y))
}

func (t *TransformStack) Rotate(degrees float64) {
	t.current = t.current.Multiply(gg.Rotate(-degrees * math.Pi / 180))
}

func (t *TransformStack) Scale(x, y float64) {
	t.current = t.current.Multiply(gg.Scale(x, y))
}

func (t *TransformStack) Skew(x, y float64) {
	t.current = t.current.Multiply(gg.Shear(math.Tan(x*math.Pi/180), math.Tan(y*math.Pi/180)))
}

// Reset returns to the identity transform. Saved transforms are kept.
func (t *TransformStack) Reset() {
	t.current = gg.Identity()
}

// Clear drops the saved transforms and resets the current one.
func (t *TransformStack) Clear() {
	t.current = gg.Identity()
	t.saved = t.saved[:0]
	t.Mode = Corner
}

// For returns the transform for a grob whose untransformed center is (cx, cy).
func (t *TransformStack) For(cx, cy float64) gg.Matrix {
	if t.Mode != Center {
		return t.current
	}
	return gg.Translate(cx, cy).Multiply(t.current).Multiply(gg.Translate(-cx, -cy))
}

// StrokeScale returns the factor a stroke width is multiplied by under m.
func StrokeScale(m gg.Matrix) float64 {
	return math.Sqrt(math.Abs(m.A*m.E - m.B*m.D))
}
