package graphics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func fixedWidth(s string) float64 {
	return float64(len(s)) * 10
}

func TestTextLayout(t *testing.T) {
	tests := []struct {
		name  string
		text  Text
		wantX []float64
		wantY []float64
	}{
		{
			name:  "left single line",
			text:  Text{Content: "abc", X: 5, Y: 20, Size: 10},
			wantX: []float64{5},
			wantY: []float64{20},
		},
		{
			name:  "centered around x",
			text:  Text{Content: "abcd", X: 100, Y: 0, Size: 10, Align: Centered},
			wantX: []float64{80},
			wantY: []float64{0},
		},
		{
			name:  "right in box",
			text:  Text{Content: "ab\nabcd", X: 0, Y: 10, Size: 10, LineHeight: 2, Width: 100, Align: Right},
			wantX: []float64{80, 60},
			wantY: []float64{10, 30},
		},
		{
			name:  "justify spreads words",
			text:  Text{Content: "ab cd ef\nlast line", Size: 10, Width: 100, Align: Justify},
			wantX: []float64{0, 40, 80, 0},
			wantY: []float64{0, 0, 0, 12},
		},
		{
			name:  "justify without width",
			text:  Text{Content: "a b", X: 5, Size: 10, Align: Justify},
			wantX: []float64{5},
			wantY: []float64{0},
		},
		{
			name:  "justify overfull line",
			text:  Text{Content: "abcdef ghijkl\nx", Size: 10, Width: 50, Align: Justify},
			wantX: []float64{0, 0},
			wantY: []float64{0, 12},
		},
		{
			name:  "default leading",
			text:  Text{Content: "a\r\nb\nc", Size: 10},
			wantX: []float64{0, 0, 0},
			wantY: []float64{0, 12, 24},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := tt.text.Layout(fixedWidth)
			if len(lines) != len(tt.wantX) {
				t.Fatalf("got %d lines, want %d", len(lines), len(tt.wantX))
			}
			for i, l := range lines {
				if !approx(l.X, tt.wantX[i]) || !approx(l.Y, tt.wantY[i]) {
					t.Errorf("line %d at (%v, %v), want (%v, %v)", i, l.X, l.Y, tt.wantX[i], tt.wantY[i])
				}
			}
		})
	}
}

func TestFontBook(t *testing.T) {
	book := NewFontBook()

	w1, _, err := book.Measure("hello", "sans", 12)
	if err != nil {
		t.Fatalf("Measure failed: %v", err)
	}
	w2, _, err := book.Measure("hello", "", 24)
	if err != nil {
		t.Fatalf("Measure with default font failed: %v", err)
	}
	if w1 <= 0 || w2 <= w1 {
		t.Errorf("expected width to grow with size, got %v and %v", w1, w2)
	}

	if _, err := book.Source("no-such-font"); !errors.Is(err, ErrUnknownFont) {
		t.Errorf("expected ErrUnknownFont, got %v", err)
	}
	if !book.Known("Mono") || book.Known("wingdings") {
		t.Error("Known reports wrong result")
	}
	if _, err := book.Source(filepath.Join(t.TempDir(), "missing.ttf")); err == nil {
		t.Error("expected error for missing font file")
	}
}

func TestPathBuilder(t *testing.T) {
	b := NewPathBuilder()
	if err := b.LineTo(1, 1); !errors.Is(err, ErrNoCurrentPoint) {
		t.Fatalf("expected ErrNoCurrentPoint, got %v", err)
	}
	b.MoveTo(0, 0)
	if err := b.LineTo(10, 0); err != nil {
		t.Fatal(err)
	}
	if err := b.CurveTo(10, 5, 5, 10, 0, 10); err != nil {
		t.Fatal(err)
	}
	b.Close()

	p := NewPath(b.Geometry(), DefaultStyle())
	x0, y0, x1, y1 := p.Bounds()
	if x0 != 0 || y0 != 0 || x1 != 10 || y1 != 10 {
		t.Errorf("Bounds = (%v %v %v %v), want (0 0 10 10)", x0, y0, x1, y1)
	}
	cx, cy := p.Center()
	if cx != 5 || cy != 5 {
		t.Errorf("Center = (%v, %v)", cx, cy)
	}
}

func TestTransformStack(t *testing.T) {
	ts := NewTransformStack()
	if err := ts.Pop(); !errors.Is(err, ErrTransformUnderflow) {
		t.Fatalf("expected ErrTransformUnderflow, got %v", err)
	}

	ts.Translate(10, 20)
	m := ts.Matrix()
	if m.C != 10 || m.F != 20 {
		t.Errorf("translate matrix = %+v", m)
	}

	// 90 度の回転は画面上で反時計回りなので (1, 0) は (0, -1) に移る
	ts.Reset()
	ts.Rotate(90)
	m = ts.Matrix()
	x := m.A*1 + m.B*0 + m.C
	y := m.D*1 + m.E*0 + m.F
	if !approx(x, 0) || !approx(y, -1) {
		t.Errorf("rotate(90) maps (1,0) to (%v, %v)", x, y)
	}

	ts.Reset()
	ts.Mode = Center
	ts.Scale(2, 2)
	c := ts.For(5, 5)
	// 中心 (5, 5) は動かない
	if !approx(c.A*5+c.B*5+c.C, 5) || !approx(c.D*5+c.E*5+c.F, 5) {
		t.Errorf("center mode moved the center: %+v", c)
	}

	ts.Push()
	ts.Clear()
	if ts.Depth() != 0 || ts.Mode != Corner {
		t.Error("Clear should drop saved transforms and reset mode")
	}
}

func TestImageLoadRejectsNonImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.png")
	if err := os.WriteFile(path, []byte("just text"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadImage(path); !errors.Is(err, ErrNotAnImage) {
		t.Errorf("expected ErrNotAnImage, got %v", err)
	}
}
