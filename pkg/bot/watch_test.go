package bot

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/zurustar/inkbot/pkg/compiler"
)

// programRecorder collects the programs a watcher hands over.
type programRecorder struct {
	mu    sync.Mutex
	progs []*compiler.Program
}

func (r *programRecorder) SetProgram(p *compiler.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progs = append(r.progs, p)
}

func (r *programRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.progs)
}

func TestWatcherReload(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "sketch.ink", `rect(0, 0, 1, 1);`)

	target := &programRecorder{}
	w, err := NewWatcher(path, target)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	if !w.Reload() {
		t.Fatal("Reload of a valid script failed")
	}
	select {
	case <-w.Reloaded():
	default:
		t.Error("Reloaded() not signalled")
	}

	if err := os.WriteFile(path, []byte(`rect(0, 0`), 0644); err != nil {
		t.Fatal(err)
	}
	if w.Reload() {
		t.Error("Reload of a broken script succeeded")
	}
	if n := target.count(); n != 1 {
		t.Errorf("target got %d programs, want 1", n)
	}
}

func TestWatcherRunPicksUpWrites(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "sketch.ink", `rect(0, 0, 1, 1);`)
	writeScript(t, dir, "other.ink", `x = 1;`)

	target := &programRecorder{}
	w, err := NewWatcher(path, target, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// 他のファイルの変更は無視する
	writeScript(t, dir, "other.ink", `x = 2;`)
	writeScript(t, dir, "sketch.ink", `rect(0, 0, 2, 2);`)

	select {
	case <-w.Reloaded():
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after writing the script")
	}
	if n := target.count(); n != 1 {
		t.Errorf("target got %d programs, want 1", n)
	}
}

func TestReloadThroughBot(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "sketch.ink", `print("one");`)

	prog, _, err := compiler.CompileFile(path)
	if err != nil {
		t.Fatal(err)
	}
	b, out := newTestBot(t, "", WithScriptPath(path))
	b.SetProgram(prog)

	w, err := NewWatcher(path, b)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	frames(t, b, 1)
	writeScript(t, dir, "sketch.ink", `print("two");`)
	w.Reload()
	if !b.Pending() {
		t.Fatal("reload did not queue the program")
	}
	frames(t, b, 1)

	if got := out.String(); got != "one\ntwo\n" {
		t.Errorf("output = %q", got)
	}
}
