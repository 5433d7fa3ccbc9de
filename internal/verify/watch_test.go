package verify

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatcherReportsChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ops.hpp")
	if err := os.WriteFile(path, []byte(goodConstruct), 0o644); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var changed []string
	w, err := NewWatcher([]string{path}, zap.NewNop(), func(p string) {
		mu.Lock()
		changed = append(changed, p)
		mu.Unlock()
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	w.Start(context.Background())

	if err := os.WriteFile(path, []byte(goodConstruct+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for {
		mu.Lock()
		n := len(changed)
		mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for change callback")
		case <-time.After(10 * time.Millisecond):
		}
	}

	mu.Lock()
	got := changed[0]
	mu.Unlock()
	if got != path {
		t.Errorf("changed path = %q, want %q", got, path)
	}
}

func TestWatcherIgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "ops.hpp")
	other := filepath.Join(dir, "notes.txt")
	for _, p := range []string{watched, other} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	var mu sync.Mutex
	var changed []string
	w, err := NewWatcher([]string{watched}, zap.NewNop(), func(p string) {
		mu.Lock()
		changed = append(changed, p)
		mu.Unlock()
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	w.Start(context.Background())

	if err := os.WriteFile(other, []byte("y"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for _, p := range changed {
		if filepath.Ext(p) == ".txt" {
			t.Errorf("callback fired for non-source file %s", p)
		}
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ops.hpp")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher([]string{path}, zap.NewNop(), func(string) {})
	if err != nil {
		t.Fatal(err)
	}
	w.Start(context.Background())
	w.Stop()
	w.Stop()
}
