package bot

import (
	"fmt"

	"github.com/zurustar/inkbot/pkg/graphics"
	"github.com/zurustar/inkbot/pkg/vm"
)

// builder returns the path under construction, starting one when needed.
func (b *Bot) builder() *graphics.PathBuilder {
	if b.path == nil {
		b.path = graphics.NewPathBuilder()
	}
	return b.path
}

// registerPathBuiltins registers incremental path construction.
func (b *Bot) registerPathBuiltins(bs builtinSet) {
	// beginpath([x, y])
	bs.add("beginpath", func(m *vm.VM, a args) (any, error) {
		if err := a.counts(0, 2); err != nil {
			return nil, err
		}
		b.path = graphics.NewPathBuilder()
		if a.len() == 2 {
			xy, err := a.nums(0, 2)
			if err != nil {
				return nil, err
			}
			b.path.MoveTo(xy[0], xy[1])
		}
		return nil, nil
	})

	bs.add("moveto", func(m *vm.VM, a args) (any, error) {
		if err := a.count(2, 2); err != nil {
			return nil, err
		}
		xy, err := a.nums(0, 2)
		if err != nil {
			return nil, err
		}
		b.builder().MoveTo(xy[0], xy[1])
		return nil, nil
	})

	bs.add("lineto", func(m *vm.VM, a args) (any, error) {
		if err := a.count(2, 2); err != nil {
			return nil, err
		}
		xy, err := a.nums(0, 2)
		if err != nil {
			return nil, err
		}
		return nil, pathErr(a, b.builder().LineTo(xy[0], xy[1]))
	})

	bs.add("curveto", func(m *vm.VM, a args) (any, error) {
		if err := a.count(6, 6); err != nil {
			return nil, err
		}
		v, err := a.nums(0, 6)
		if err != nil {
			return nil, err
		}
		return nil, pathErr(a, b.builder().CurveTo(v[0], v[1], v[2], v[3], v[4], v[5]))
	})

	bs.add("quadto", func(m *vm.VM, a args) (any, error) {
		if err := a.count(4, 4); err != nil {
			return nil, err
		}
		v, err := a.nums(0, 4)
		if err != nil {
			return nil, err
		}
		return nil, pathErr(a, b.builder().QuadTo(v[0], v[1], v[2], v[3]))
	})

	bs.add("closepath", func(m *vm.VM, a args) (any, error) {
		if err := a.count(0, 0); err != nil {
			return nil, err
		}
		b.builder().Close()
		return nil, nil
	})

	// endpath([draw]) finishes the path and returns it; draw defaults to true
	bs.add("endpath", func(m *vm.VM, a args) (any, error) {
		if err := a.count(0, 1); err != nil {
			return nil, err
		}
		if b.path == nil {
			return nil, argErrorf(a.fn, "no path started")
		}
		geom := b.path.Geometry()
		b.path = nil
		if a.boolOr(0, true) {
			return b.addPath(geom), nil
		}
		return b.newPath(geom), nil
	})

	// drawpath(p) queues a copy of a path returned by endpath or a shape call.
	// drawpath() finishes and draws the current path.
	bs.add("drawpath", func(m *vm.VM, a args) (any, error) {
		if err := a.count(0, 1); err != nil {
			return nil, err
		}
		if a.len() == 0 {
			if b.path == nil {
				return nil, argErrorf(a.fn, "no path started")
			}
			geom := b.path.Geometry()
			b.path = nil
			return b.addPath(geom), nil
		}
		p, err := a.path(0)
		if err != nil {
			return nil, err
		}
		cp := p.Copy()
		b.canvas.Add(cp)
		return cp, nil
	})
}

func pathErr(a args, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w (call moveto first)", a.fn, err)
}
