package graphics

import (
	"strings"

	"github.com/gogpu/gg"
)

// Align is the horizontal alignment of text.
type Align int

const (
	Left Align = iota
	Centered
	Right
	// Justify spreads the words of every line but the last across Width.
	// Without a width it aligns like Left.
	Justify
)

// Text is a block of text anchored at the baseline of its first line.
type Text struct {
	Content    string
	X, Y       float64
	Width      float64 // box width used for alignment; 0 aligns around X
	Font       string
	Size       float64
	LineHeight float64 // multiple of Size between baselines
	Align      Align
	Fill       Color
	Transform  gg.Matrix
}

// TextLine is one laid-out line in local coordinates.
type TextLine struct {
	Text  string
	X, Y  float64
	Width float64
}

// Draw implements Grob.
func (t *Text) Draw(r Renderer) error {
	return r.DrawText(t)
}

// Lines splits the content on newlines.
func (t *Text) Lines() []string {
	return strings.Split(strings.ReplaceAll(t.Content, "\r\n", "\n"), "\n")
}

// Leading returns the distance between two baselines.
func (t *Text) Leading() float64 {
	lh := t.LineHeight
	if lh <= 0 {
		lh = 1.2
	}
	return t.Size * lh
}

// Layout positions each line using measure to obtain line widths.
func (t *Text) Layout(measure func(string) float64) []TextLine {
	lines := t.Lines()
	out := make([]TextLine, 0, len(lines))
	for i, s := range lines {
		y := t.Y + float64(i)*t.Leading()
		if t.Align == Justify && t.Width > 0 && i < len(lines)-1 {
			if words := justify(strings.Fields(s), t.X, y, t.Width, measure); words != nil {
				out = append(out, words...)
				continue
			}
		}
		w := measure(s)
		x := t.X
		switch t.Align {
		case Centered:
			if t.Width > 0 {
				x += (t.Width - w) / 2
			} else {
				x -= w / 2
			}
		case Right:
			if t.Width > 0 {
				x += t.Width - w
			} else {
				x -= w
			}
		}
		out = append(out, TextLine{Text: s, X: x, Y: y, Width: w})
	}
	return out
}

// justify places words so the first starts at x and the last ends at
// x+width. It returns nil when there is nothing to spread.
func justify(words []string, x, y, width float64, measure func(string) float64) []TextLine {
	if len(words) < 2 {
		return nil
	}
	widths := make([]float64, len(words))
	total := 0.0
	for i, w := range words {
		widths[i] = measure(w)
		total += widths[i]
	}
	if total >= width {
		return nil
	}
	gap := (width - total) / float64(len(words)-1)
	out := make([]TextLine, len(words))
	for i, w := range words {
		out[i] = TextLine{Text: w, X: x, Y: y, Width: widths[i]}
		x += widths[i] + gap
	}
	return out
}

// Metrics measures the whole block with the font book: the widest line and
// the total height.
func (t *Text) Metrics(book *FontBook) (w, h float64, err error) {
	for _, s := range t.Lines() {
		lw, _, err := book.Measure(s, t.Font, t.Size)
		if err != nil {
			return 0, 0, err
		}
		if lw > w {
			w = lw
		}
	}
	n := len(t.Lines())
	h = t.Size + float64(n-1)*t.Leading()
	return w, h, nil
}
