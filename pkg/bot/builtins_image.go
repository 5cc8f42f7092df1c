package bot

import (
	"fmt"

	"github.com/zurustar/inkbot/pkg/graphics"
	"github.com/zurustar/inkbot/pkg/vm"
)

// registerImageBuiltins registers image placement.
func (b *Bot) registerImageBuiltins(bs builtinSet) {
	// image(path, x, y)
	// image(path, x, y, w)          高さは縦横比から決まる
	// image(path, x, y, w, h)
	// image(path, x, y, w, h, alpha)
	bs.add("image", func(m *vm.VM, a args) (any, error) {
		if err := a.count(3, 6); err != nil {
			return nil, err
		}
		im, err := b.loadImage(a)
		if err != nil {
			return nil, err
		}
		xy, err := a.nums(1, 2)
		if err != nil {
			return nil, err
		}
		im.X, im.Y = xy[0], xy[1]
		if im.W, err = a.numOr(3, 0); err != nil {
			return nil, err
		}
		if im.H, err = a.numOr(4, 0); err != nil {
			return nil, err
		}
		if im.Alpha, err = a.numOr(5, 1); err != nil {
			return nil, err
		}
		w, h := im.Size()
		im.Transform = b.canvas.Transforms.For(im.X+w/2, im.Y+h/2)
		b.canvas.Add(im)
		return []any{w, h}, nil
	})

	// imagesize(path) returns [w, h]
	bs.add("imagesize", func(m *vm.VM, a args) (any, error) {
		if err := a.count(1, 1); err != nil {
			return nil, err
		}
		im, err := b.loadImage(a)
		if err != nil {
			return nil, err
		}
		w, h := im.Size()
		return []any{w, h}, nil
	})
}

// loadImage resolves and decodes the image named by the first argument.
func (b *Bot) loadImage(a args) (*graphics.Image, error) {
	name, err := a.str(0)
	if err != nil {
		return nil, err
	}
	path, err := b.resolver.Resolve(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.fn, err)
	}
	img, err := b.images.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.fn, err)
	}
	return &graphics.Image{Path: path, Img: img, Alpha: 1}, nil
}
