package dialogue

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// TestReload merges a script directory into an existing library and keeps
// the old graphs when the new data fails validation.
func TestReload(t *testing.T) {
	dir := t.TempDir()
	write := func(name, data string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	write("a.yaml", "id: t.a\nnodes:\n  - id: only\n    text: first draft\n")
	lib := NewLibrary()
	if err := Reload(lib, dir); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	g, err := lib.Get("t.a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if g.Nodes["only"].Text != "first draft" {
		t.Errorf("text = %q", g.Nodes["only"].Text)
	}

	// An edit replaces the stored graph.
	write("a.yaml", "id: t.a\nnodes:\n  - id: only\n    text: second draft\n")
	if err := Reload(lib, dir); err != nil {
		t.Fatalf("Reload after edit: %v", err)
	}
	g, _ = lib.Get("t.a")
	if g.Nodes["only"].Text != "second draft" {
		t.Errorf("text after reload = %q", g.Nodes["only"].Text)
	}

	// A broken edit fails the reload and leaves the library untouched.
	write("a.yaml", "id: t.a\nnodes:\n  - id: only\n    text: broken\n    next: ghost\n")
	if err := Reload(lib, dir); err == nil {
		t.Fatal("Reload should reject the broken script")
	}
	g, _ = lib.Get("t.a")
	if g.Nodes["only"].Text != "second draft" {
		t.Errorf("broken reload must keep the old graph, got %q", g.Nodes["only"].Text)
	}
}

// TestWatcherClose shuts the watcher down while the directory is still
// churning and checks both channels drain to a clean close without panic.
func TestWatcherClose(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			name := filepath.Join(dir, fmt.Sprintf("s%d.yaml", i%4))
			_ = os.WriteFile(name, []byte("id: t.x\n"), 0o644)
		}
	}()

	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	<-done

	// Both channels end closed; pending sends must not panic.
	for range w.Events {
	}
	for range w.Errors {
	}

	// Close is idempotent.
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
