package bot

import (
	"strings"

	"github.com/zurustar/inkbot/pkg/graphics"
	"github.com/zurustar/inkbot/pkg/vm"
)

// registerColorBuiltins registers color construction and the fill and stroke state.
func (b *Bot) registerColorBuiltins(bs builtinSet) {
	bs.add("color", func(m *vm.VM, a args) (any, error) {
		return b.color(a)
	})

	// colormode(RGB|HSB[, range]) / colormode()
	bs.add("colormode", func(m *vm.VM, a args) (any, error) {
		if err := a.count(0, 2); err != nil {
			return nil, err
		}
		if a.len() == 0 {
			return b.canvas.Settings.ColorMode.String(), nil
		}
		name, err := a.str(0)
		if err != nil {
			return nil, err
		}
		switch strings.ToUpper(name) {
		case "RGB":
			b.canvas.Settings.ColorMode = graphics.RGB
		case "HSB":
			b.canvas.Settings.ColorMode = graphics.HSB
		default:
			return nil, argErrorf(a.fn, "unknown color mode %q (want RGB or HSB)", name)
		}
		if a.len() == 2 {
			if err := b.setColorRange(a, 1); err != nil {
				return nil, err
			}
		}
		return b.canvas.Settings.ColorMode.String(), nil
	})

	// colorrange(n) / colorrange()
	bs.add("colorrange", func(m *vm.VM, a args) (any, error) {
		if err := a.count(0, 1); err != nil {
			return nil, err
		}
		if a.len() == 1 {
			if err := b.setColorRange(a, 0); err != nil {
				return nil, err
			}
		}
		return b.canvas.Settings.ColorRange, nil
	})

	bs.add("fill", func(m *vm.VM, a args) (any, error) {
		if a.len() == 0 {
			return colorOrNil(b.canvas.Settings.Style.Fill), nil
		}
		c, err := b.color(a)
		if err != nil {
			return nil, err
		}
		b.canvas.Settings.Style.Fill = &c
		return c, nil
	})

	bs.add("nofill", func(m *vm.VM, a args) (any, error) {
		if err := a.count(0, 0); err != nil {
			return nil, err
		}
		b.canvas.Settings.Style.Fill = nil
		return nil, nil
	})

	bs.add("stroke", func(m *vm.VM, a args) (any, error) {
		if a.len() == 0 {
			return colorOrNil(b.canvas.Settings.Style.Stroke), nil
		}
		c, err := b.color(a)
		if err != nil {
			return nil, err
		}
		b.canvas.Settings.Style.Stroke = &c
		return c, nil
	})

	bs.add("nostroke", func(m *vm.VM, a args) (any, error) {
		if err := a.count(0, 0); err != nil {
			return nil, err
		}
		b.canvas.Settings.Style.Stroke = nil
		return nil, nil
	})

	// strokewidth(w) / strokewidth()
	bs.add("strokewidth", func(m *vm.VM, a args) (any, error) {
		if err := a.count(0, 1); err != nil {
			return nil, err
		}
		if a.len() == 1 {
			w, err := a.num(0)
			if err != nil {
				return nil, err
			}
			if w < 0 {
				return nil, argErrorf(a.fn, "width must not be negative, got %v", w)
			}
			b.canvas.Settings.Style.StrokeWidth = w
		}
		return b.canvas.Settings.Style.StrokeWidth, nil
	})
}

func (b *Bot) setColorRange(a args, i int) error {
	r, err := a.num(i)
	if err != nil {
		return err
	}
	if r <= 0 {
		return argErrorf(a.fn, "color range must be positive, got %v", r)
	}
	b.canvas.Settings.ColorRange = r
	return nil
}

func colorOrNil(c *graphics.Color) any {
	if c == nil {
		return nil
	}
	return *c
}
