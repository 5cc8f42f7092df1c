package bot

import (
	"fmt"
	"strings"

	"github.com/zurustar/inkbot/pkg/canvas"
	"github.com/zurustar/inkbot/pkg/graphics"
	"github.com/zurustar/inkbot/pkg/vm"
)

// registerTextBuiltins registers the typography state and text drawing.
func (b *Bot) registerTextBuiltins(bs builtinSet) {
	s := &b.canvas.Settings

	// font([name][, size]) / font()
	bs.add("font", func(m *vm.VM, a args) (any, error) {
		if err := a.count(0, 2); err != nil {
			return nil, err
		}
		if a.len() >= 1 {
			name, err := a.str(0)
			if err != nil {
				return nil, err
			}
			font, err := b.resolveFont(name)
			if err != nil {
				return nil, fmt.Errorf("font: %w", err)
			}
			s.Font = font
		}
		if a.len() == 2 {
			size, err := a.num(1)
			if err != nil {
				return nil, err
			}
			if err := setFontSize(a, s, size); err != nil {
				return nil, err
			}
		}
		return s.Font, nil
	})

	// fontsize([n])
	bs.add("fontsize", func(m *vm.VM, a args) (any, error) {
		if err := a.count(0, 1); err != nil {
			return nil, err
		}
		if a.len() == 1 {
			size, err := a.num(0)
			if err != nil {
				return nil, err
			}
			if err := setFontSize(a, s, size); err != nil {
				return nil, err
			}
		}
		return s.FontSize, nil
	})

	// lineheight([n]) is a multiple of the font size
	bs.add("lineheight", func(m *vm.VM, a args) (any, error) {
		if err := a.count(0, 1); err != nil {
			return nil, err
		}
		if a.len() == 1 {
			lh, err := a.num(0)
			if err != nil {
				return nil, err
			}
			if lh <= 0 {
				return nil, argErrorf(a.fn, "line height must be positive, got %v", lh)
			}
			s.LineHeight = lh
		}
		return s.LineHeight, nil
	})

	// align(LEFT|CENTER|RIGHT|JUSTIFY) / align()
	bs.add("align", func(m *vm.VM, a args) (any, error) {
		if err := a.count(0, 1); err != nil {
			return nil, err
		}
		if a.len() == 1 {
			name, err := a.str(0)
			if err != nil {
				return nil, err
			}
			switch strings.ToLower(name) {
			case "left":
				s.Align = graphics.Left
			case "center":
				s.Align = graphics.Centered
			case "right":
				s.Align = graphics.Right
			case "justify":
				s.Align = graphics.Justify
			default:
				return nil, argErrorf(a.fn, "unknown alignment %q (want LEFT, CENTER, RIGHT or JUSTIFY)", name)
			}
		}
		switch s.Align {
		case graphics.Centered:
			return constants["CENTER"], nil
		case graphics.Right:
			return constants["RIGHT"], nil
		case graphics.Justify:
			return constants["JUSTIFY"], nil
		}
		return constants["LEFT"], nil
	})

	// text(s, x, y[, width]): (x, y) is the baseline of the first line
	bs.add("text", func(m *vm.VM, a args) (any, error) {
		if err := a.count(3, 4); err != nil {
			return nil, err
		}
		xy, err := a.nums(1, 2)
		if err != nil {
			return nil, err
		}
		width, err := a.numOr(3, 0)
		if err != nil {
			return nil, err
		}
		if s.Style.Fill == nil {
			return nil, nil
		}
		t := b.newText(vm.ToString(a.list[0]), xy[0], xy[1])
		t.Width = width
		t.Fill = *s.Style.Fill
		w, h, err := t.Metrics(b.fonts)
		if err != nil {
			return nil, fmt.Errorf("text: %w", err)
		}
		cx, cy := textCenter(t, w, h)
		t.Transform = b.canvas.Transforms.For(cx, cy)
		b.canvas.Add(t)
		return nil, nil
	})

	bs.add("textwidth", func(m *vm.VM, a args) (any, error) {
		w, _, err := b.measure(a)
		return w, err
	})

	bs.add("textheight", func(m *vm.VM, a args) (any, error) {
		_, h, err := b.measure(a)
		return h, err
	})
}

// newText creates a text block with the current typography settings.
func (b *Bot) newText(content string, x, y float64) *graphics.Text {
	s := b.canvas.Settings
	return &graphics.Text{
		Content:    content,
		X:          x,
		Y:          y,
		Font:       s.Font,
		Size:       s.FontSize,
		LineHeight: s.LineHeight,
		Align:      s.Align,
	}
}

// measure implements textwidth(s) and textheight(s).
func (b *Bot) measure(a args) (float64, float64, error) {
	if err := a.count(1, 1); err != nil {
		return 0, 0, err
	}
	t := b.newText(vm.ToString(a.list[0]), 0, 0)
	w, h, err := t.Metrics(b.fonts)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", a.fn, err)
	}
	return w, h, nil
}

// resolveFont accepts a builtin font name or a font file relative to the script.
func (b *Bot) resolveFont(name string) (string, error) {
	if !b.fonts.Known(name) {
		return "", fmt.Errorf("%w: %s", graphics.ErrUnknownFont, name)
	}
	path, err := b.resolver.Resolve(name)
	if err != nil {
		// ファイルでなければ組み込みフォント名
		path = name
	}
	if _, err := b.fonts.Source(path); err != nil {
		return "", err
	}
	return path, nil
}

func setFontSize(a args, s *canvas.Settings, size float64) error {
	if size <= 0 {
		return argErrorf(a.fn, "font size must be positive, got %v", size)
	}
	s.FontSize = size
	return nil
}

// textCenter returns the middle of a laid-out text block of size w x h.
func textCenter(t *graphics.Text, w, h float64) (float64, float64) {
	cy := t.Y - t.Size + h/2
	switch t.Align {
	case graphics.Justify:
		if t.Width > 0 {
			return t.X + t.Width/2, cy
		}
	case graphics.Centered:
		if t.Width > 0 {
			return t.X + t.Width/2, cy
		}
		return t.X, cy
	case graphics.Right:
		if t.Width > 0 {
			return t.X + t.Width - w/2, cy
		}
		return t.X - w/2, cy
	}
	return t.X + w/2, cy
}
