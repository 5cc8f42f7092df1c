package bot

import (
	"math"

	"github.com/zurustar/inkbot/pkg/graphics"
	"github.com/zurustar/inkbot/pkg/vm"
)

// registerCanvasBuiltins registers size, speed and background.
func (b *Bot) registerCanvasBuiltins(bs builtinSet) {
	// size(w, h) / size()
	bs.add("size", func(m *vm.VM, a args) (any, error) {
		if err := a.counts(0, 2); err != nil {
			return nil, err
		}
		if a.len() == 2 {
			wh, err := a.nums(0, 2)
			if err != nil {
				return nil, err
			}
			size := b.canvas.SetSize(int(math.Round(wh[0])), int(math.Round(wh[1])))
			m.SetGlobal("WIDTH", float64(size.Width))
			m.SetGlobal("HEIGHT", float64(size.Height))
		}
		size := b.canvas.Size()
		return []any{float64(size.Width), float64(size.Height)}, nil
	})

	// speed(fps) / speed()
	bs.add("speed", func(m *vm.VM, a args) (any, error) {
		if err := a.count(0, 1); err != nil {
			return nil, err
		}
		if a.len() == 1 {
			fps, err := a.num(0)
			if err != nil {
				return nil, err
			}
			if fps <= 0 {
				return nil, argErrorf(a.fn, "frame rate must be positive, got %v", fps)
			}
			b.canvas.SetSpeed(fps)
		}
		return b.canvas.Speed(), nil
	})

	// background(...) accepts every color form; background() returns the current one
	bs.add("background", func(m *vm.VM, a args) (any, error) {
		if a.len() == 0 {
			return b.canvas.Settings.Background, nil
		}
		c, err := b.color(a)
		if err != nil {
			return nil, err
		}
		b.canvas.Settings.Background = c
		return c, nil
	})
}

// color builds a color from the call arguments using the current mode and range.
func (b *Bot) color(a args) (graphics.Color, error) {
	if err := a.count(0, 4); err != nil {
		return graphics.Color{}, err
	}
	list := a.list
	// color([r, g, b]) は配列でも受け付ける
	if len(list) == 1 {
		if arr, ok := list[0].([]any); ok {
			list = arr
		}
	}
	c, err := graphics.NewColor(b.canvas.Settings.ColorMode, b.canvas.Settings.ColorRange, list...)
	if err != nil {
		return graphics.Color{}, &ArgumentError{Func: a.fn, Message: err.Error()}
	}
	return c, nil
}
