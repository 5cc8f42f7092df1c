package bot

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zurustar/inkbot/pkg/canvas"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestSnapshotPolicy(t *testing.T) {
	yes, no := true, false
	tests := []struct {
		name string
		req  SnapshotRequest
		want canvas.WritePolicy
	}{
		{"default", SnapshotRequest{Filename: "a.svg"}, canvas.Deferred},
		{"defer", SnapshotRequest{Filename: "a.svg", Defer: &yes}, canvas.Deferred},
		{"immediate", SnapshotRequest{Filename: "a.svg", Defer: &no}, canvas.Immediate},
		{"surface", SnapshotRequest{Surface: &recordingSink{}}, canvas.Immediate},
		{"surface deferred file", SnapshotRequest{Surface: &recordingSink{}, Defer: &yes}, canvas.Deferred},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.Policy(); got != tt.want {
				t.Errorf("Policy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSnapshotHoldsDrawingUpToCall(t *testing.T) {
	dir := t.TempDir()
	deferred := filepath.Join(dir, "deferred.svg")
	immediate := filepath.Join(dir, "immediate.svg")

	b, _ := newTestBot(t, `
	size(50, 50);
	rect(0, 0, 10, 10);
	snapshot("`+filepath.ToSlash(deferred)+`");
	snapshot("`+filepath.ToSlash(immediate)+`", false);
	rect(20, 20, 10, 10);
	`)
	frames(t, b, 1)

	if n := strings.Count(readFile(t, deferred), "<path"); n != 1 {
		t.Errorf("deferred snapshot has %d paths, want 1", n)
	}
	if n := strings.Count(readFile(t, immediate), "<path"); n != 1 {
		t.Errorf("immediate snapshot has %d paths, want 1", n)
	}
}

func TestSnapshotAutonumber(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "sketch.ink")

	b, _ := newTestBot(t, `
	draw() {
		rect(FRAME, 0, 1, 1);
		snapshot();
	}
	`, WithScriptPath(script))
	frames(t, b, 2)

	for _, name := range []string{"sketch_000.svg", "sketch_001.svg"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	out := filepath.Join(dir, "out.svg")
	b, _ = newTestBot(t, `snapshot("`+filepath.ToSlash(out)+`", true, true);`, WithScriptPath(script))
	frames(t, b, 1)
	if _, err := os.Stat(filepath.Join(dir, "out_000.svg")); err != nil {
		t.Errorf("autonumbered snapshot missing: %v", err)
	}
}

func TestSnapshotSurface(t *testing.T) {
	b, _ := newTestBot(t, `rect(0, 0, 10, 10); circle(5, 5, 5);`)
	frames(t, b, 1)

	surface := &recordingSink{}
	if err := b.Snapshot(SnapshotRequest{Surface: surface}); err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(surface.frames) != 1 {
		t.Fatalf("surface got %d frames", len(surface.frames))
	}
	if surface.finished != 0 {
		t.Error("a surface must not be finished by the snapshot")
	}

	// 両方指定すると両方に書く
	file := filepath.Join(t.TempDir(), "both.svg")
	no := false
	if err := b.Snapshot(SnapshotRequest{Surface: surface, Filename: file, Defer: &no}); err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(surface.frames) != 2 {
		t.Errorf("surface got %d frames, want 2", len(surface.frames))
	}
	if _, err := os.Stat(file); err != nil {
		t.Errorf("file target not written: %v", err)
	}
}

func TestSnapshotSurfaceAlsoWritesScriptFile(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "sketch.ink")
	b, _ := newTestBot(t, `rect(0, 0, 10, 10);`, WithScriptPath(script))
	frames(t, b, 1)

	surface := &recordingSink{}
	if err := b.Snapshot(SnapshotRequest{Surface: surface}); err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(surface.frames) != 1 {
		t.Errorf("surface got %d frames", len(surface.frames))
	}
	// surface 指定時の既定は即時書き込み
	if _, err := os.Stat(filepath.Join(dir, "sketch_000.svg")); err != nil {
		t.Errorf("derived snapshot file missing: %v", err)
	}
}

func TestSnapshotWithoutTarget(t *testing.T) {
	b, _ := newTestBot(t, `rect(0, 0, 1, 1);`)
	frames(t, b, 1)
	if err := b.Snapshot(SnapshotRequest{}); !errors.Is(err, ErrNoSnapshotTarget) {
		t.Errorf("Snapshot() = %v, want ErrNoSnapshotTarget", err)
	}
}
