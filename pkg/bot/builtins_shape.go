package bot

import (
	"strings"

	"github.com/gogpu/gg"
	"github.com/zurustar/inkbot/pkg/graphics"
	"github.com/zurustar/inkbot/pkg/vm"
)

// newPath wraps geometry with the current style and transform.
func (b *Bot) newPath(geom *gg.Path) *graphics.Path {
	p := graphics.NewPath(geom, b.canvas.Settings.Style)
	cx, cy := p.Center()
	p.Transform = b.canvas.Transforms.For(cx, cy)
	return p
}

// addPath queues geometry and returns the queued path.
func (b *Bot) addPath(geom *gg.Path) *graphics.Path {
	p := b.newPath(geom)
	b.canvas.Add(p)
	return p
}

// registerShapeBuiltins registers the primitive shapes.
func (b *Bot) registerShapeBuiltins(bs builtinSet) {
	s := &b.canvas.Settings

	// rectmode([CORNER|CENTER|CORNERS])
	bs.add("rectmode", func(m *vm.VM, a args) (any, error) {
		return shapeMode(a, &s.RectMode)
	})

	// ellipsemode([CORNER|CENTER|CORNERS])
	bs.add("ellipsemode", func(m *vm.VM, a args) (any, error) {
		return shapeMode(a, &s.EllipseMode)
	})

	// rect(x, y, w, h[, roundness]) read according to rectmode()
	bs.add("rect", func(m *vm.VM, a args) (any, error) {
		if err := a.count(4, 5); err != nil {
			return nil, err
		}
		v, err := a.nums(0, 4)
		if err != nil {
			return nil, err
		}
		roundness, err := a.numOr(4, 0)
		if err != nil {
			return nil, err
		}
		x, y, w, h := s.RectMode.Box(v[0], v[1], v[2], v[3])
		return b.addPath(graphics.Rect(x, y, w, h, roundness)), nil
	})

	// ellipse(x, y, w, h) read according to ellipsemode()
	bs.add("ellipse", func(m *vm.VM, a args) (any, error) {
		if err := a.count(4, 4); err != nil {
			return nil, err
		}
		v, err := a.nums(0, 4)
		if err != nil {
			return nil, err
		}
		x, y, w, h := s.EllipseMode.Box(v[0], v[1], v[2], v[3])
		return b.addPath(graphics.Ellipse(x, y, w, h)), nil
	})

	// circle(x, y, d); CORNERS makes no sense for one diameter and reads as CORNER
	bs.add("circle", func(m *vm.VM, a args) (any, error) {
		if err := a.count(3, 3); err != nil {
			return nil, err
		}
		v, err := a.nums(0, 3)
		if err != nil {
			return nil, err
		}
		mode := s.EllipseMode
		if mode == graphics.ShapeCorners {
			mode = graphics.ShapeCorner
		}
		x, y, w, h := mode.Box(v[0], v[1], v[2], v[2])
		return b.addPath(graphics.Ellipse(x, y, w, h)), nil
	})

	bs.add("line", func(m *vm.VM, a args) (any, error) {
		if err := a.count(4, 4); err != nil {
			return nil, err
		}
		v, err := a.nums(0, 4)
		if err != nil {
			return nil, err
		}
		return b.addPath(graphics.Line(v[0], v[1], v[2], v[3])), nil
	})

	// star(x, y[, points, outer, inner])
	bs.add("star", func(m *vm.VM, a args) (any, error) {
		if err := a.count(2, 5); err != nil {
			return nil, err
		}
		xy, err := a.nums(0, 2)
		if err != nil {
			return nil, err
		}
		points := 20
		if a.len() > 2 {
			if points, err = a.integer(2); err != nil {
				return nil, err
			}
			if points < 2 {
				return nil, argErrorf(a.fn, "a star needs at least 2 points, got %d", points)
			}
		}
		outer, err := a.numOr(3, 100)
		if err != nil {
			return nil, err
		}
		inner, err := a.numOr(4, 50)
		if err != nil {
			return nil, err
		}
		return b.addPath(graphics.Star(xy[0], xy[1], points, outer, inner)), nil
	})

	// arrow(x, y[, width])
	bs.add("arrow", func(m *vm.VM, a args) (any, error) {
		if err := a.count(2, 3); err != nil {
			return nil, err
		}
		xy, err := a.nums(0, 2)
		if err != nil {
			return nil, err
		}
		width, err := a.numOr(2, 100)
		if err != nil {
			return nil, err
		}
		return b.addPath(graphics.Arrow(xy[0], xy[1], width)), nil
	})

	// polygon(x, y, radius, sides)
	bs.add("polygon", func(m *vm.VM, a args) (any, error) {
		if err := a.count(4, 4); err != nil {
			return nil, err
		}
		v, err := a.nums(0, 3)
		if err != nil {
			return nil, err
		}
		sides, err := a.integer(3)
		if err != nil {
			return nil, err
		}
		if sides < 3 {
			return nil, argErrorf(a.fn, "a polygon needs at least 3 sides, got %d", sides)
		}
		return b.addPath(graphics.Polygon(v[0], v[1], v[2], sides)), nil
	})
}

// registerClipBuiltins registers clipping and grid().
func (b *Bot) registerClipBuiltins(bs builtinSet) {
	// beginclip(path): later drawing only shows inside path until endclip()
	bs.add("beginclip", func(m *vm.VM, a args) (any, error) {
		if err := a.count(1, 1); err != nil {
			return nil, err
		}
		p, err := a.path(0)
		if err != nil {
			return nil, err
		}
		b.canvas.BeginClip(p.Copy())
		return nil, nil
	})

	bs.add("endclip", func(m *vm.VM, a args) (any, error) {
		if err := a.count(0, 0); err != nil {
			return nil, err
		}
		if err := b.canvas.EndClip(); err != nil {
			return nil, argErrorf(a.fn, "%v (call beginclip first)", err)
		}
		return nil, nil
	})

	// grid(cols, rows[, colsize, rowsize, shuffled]) returns [x, y] pairs,
	// row by row
	bs.add("grid", func(m *vm.VM, a args) (any, error) {
		if err := a.count(2, 5); err != nil {
			return nil, err
		}
		cols, err := a.integer(0)
		if err != nil {
			return nil, err
		}
		rows, err := a.integer(1)
		if err != nil {
			return nil, err
		}
		if cols < 0 || rows < 0 {
			return nil, argErrorf(a.fn, "negative grid %dx%d", cols, rows)
		}
		colSize, err := a.numOr(2, 1)
		if err != nil {
			return nil, err
		}
		rowSize, err := a.numOr(3, 1)
		if err != nil {
			return nil, err
		}
		xs, ys := make([]int, cols), make([]int, rows)
		for i := range xs {
			xs[i] = i
		}
		for i := range ys {
			ys[i] = i
		}
		if a.boolOr(4, false) {
			m.Shuffle(len(ys), func(i, j int) { ys[i], ys[j] = ys[j], ys[i] })
			m.Shuffle(len(xs), func(i, j int) { xs[i], xs[j] = xs[j], xs[i] })
		}
		out := make([]any, 0, cols*rows)
		for _, y := range ys {
			for _, x := range xs {
				out = append(out, []any{float64(x) * colSize, float64(y) * rowSize})
			}
		}
		return out, nil
	})
}

// shapeMode implements rectmode() and ellipsemode().
func shapeMode(a args, mode *graphics.ShapeMode) (any, error) {
	if err := a.count(0, 1); err != nil {
		return nil, err
	}
	if a.len() == 1 {
		name, err := a.str(0)
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(name) {
		case "corner":
			*mode = graphics.ShapeCorner
		case "center":
			*mode = graphics.ShapeCenter
		case "corners":
			*mode = graphics.ShapeCorners
		default:
			return nil, argErrorf(a.fn, "unknown mode %q (want CORNER, CENTER or CORNERS)", name)
		}
	}
	switch *mode {
	case graphics.ShapeCenter:
		return constants["CENTER"], nil
	case graphics.ShapeCorners:
		return constants["CORNERS"], nil
	}
	return constants["CORNER"], nil
}
