package bot

import (
	"path/filepath"
	"strings"

	"github.com/zurustar/inkbot/pkg/canvas"
	"github.com/zurustar/inkbot/pkg/sink"
	"github.com/zurustar/inkbot/pkg/vm"
)

// SnapshotRequest asks for the current frame to be written somewhere
// besides the run's own sink.
type SnapshotRequest struct {
	// Filename is the output file; the format follows its extension.
	Filename string
	// Surface receives the frame immediately and is not finished.
	Surface sink.Sink
	// Defer selects the write policy for the file. Nil means deferred, or
	// immediate when a Surface is given. A Surface is always written
	// immediately.
	Defer *bool
	// Autonumber appends the frame index to the file name.
	Autonumber bool
}

// Policy returns the write policy for the file target.
func (r SnapshotRequest) Policy() canvas.WritePolicy {
	switch {
	case r.Defer != nil && !*r.Defer:
		return canvas.Immediate
	case r.Defer == nil && r.Surface != nil:
		return canvas.Immediate
	}
	return canvas.Deferred
}

// Snapshot writes the current frame as requested. Surface and the file are
// independent targets. Without a Filename the file is named after the
// script with an .svg extension and numbered by frame; without a script
// only the Surface is written.
//
// Both policies deliver what is drawn up to the call. A deferred snapshot
// is completed by the canvas at the end of the frame, before the next
// frame's render context is created.
func (b *Bot) Snapshot(req SnapshotRequest) error {
	frame := b.canvas.Frame()
	if req.Surface != nil {
		if err := b.canvas.Render(req.Surface, frame); err != nil {
			return err
		}
	}

	filename, autonumber := req.Filename, req.Autonumber
	if filename == "" {
		switch {
		case b.script != "":
			filename = strings.TrimSuffix(b.script, filepath.Ext(b.script)) + ".svg"
			autonumber = true
		case req.Surface != nil:
			return nil
		default:
			return ErrNoSnapshotTarget
		}
	}

	s, err := sink.NewFileSink(filename, "", autonumber, sink.WithLogger(b.log))
	if err != nil {
		return err
	}
	policy := req.Policy()
	b.log.Debug("Snapshot requested", "file", s.OutputPath(frame), "policy", policy.String())

	if policy == canvas.Deferred {
		b.canvas.Defer(s)
		return nil
	}
	if err := b.canvas.Render(s, frame); err != nil {
		return err
	}
	return s.Finish()
}

// registerSnapshotBuiltins registers snapshot().
func (b *Bot) registerSnapshotBuiltins(bs builtinSet) {
	// snapshot([filename][, defer][, autonumber])
	bs.add("snapshot", func(m *vm.VM, a args) (any, error) {
		if err := a.count(0, 3); err != nil {
			return nil, err
		}
		var req SnapshotRequest
		if a.len() >= 1 && a.list[0] != nil {
			name, err := a.str(0)
			if err != nil {
				return nil, err
			}
			req.Filename = name
		}
		if a.len() >= 2 {
			d := vm.ToBool(a.list[1])
			req.Defer = &d
		}
		req.Autonumber = a.boolOr(2, false)
		if err := b.Snapshot(req); err != nil {
			return nil, err
		}
		return nil, nil
	})
}
