package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWatcher_DebouncesBurstIntoOneRebuild(t *testing.T) {
	dir := t.TempDir()
	var calls int32
	w := NewWatcher(dir, []string{".jpg"}, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, WithDebounce(150*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	for _, name := range []string{"a.jpg", "b.jpg", "c.JPG"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	waitFor(t, func() bool { return atomic.LoadInt32(&calls) >= 1 })
	time.Sleep(400 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("rebuilds = %d, want 1", got)
	}
}

func TestWatcher_IgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	var calls int32
	w := NewWatcher(dir, []string{".jpg"}, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Errorf("rebuilds = %d, want 0", got)
	}
}

func TestWatcher_TriggerFile(t *testing.T) {
	photos := t.TempDir()
	site := t.TempDir()
	mapping := filepath.Join(site, "mapping.json")
	if err := os.WriteFile(mapping, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	var calls int32
	w := NewWatcher(photos, []string{".jpg"}, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, WithDebounce(50*time.Millisecond), WithFiles(mapping))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	// writes next to the trigger file do not count
	if err := os.WriteFile(filepath.Join(site, "1.webp"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(250 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Fatalf("rebuilds after unrelated write = %d", got)
	}
	if err := os.WriteFile(mapping, []byte(`{"01/01/2024": "x"}`), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return atomic.LoadInt32(&calls) == 1 })
}

func TestWatcher_TriggerSerializesRebuilds(t *testing.T) {
	var running, maxRunning int32
	var mu sync.Mutex
	w := NewWatcher(t.TempDir(), nil, func(ctx context.Context) error {
		n := atomic.AddInt32(&running, 1)
		mu.Lock()
		if n > maxRunning {
			maxRunning = n
		}
		mu.Unlock()
		time.Sleep(30 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return nil
	})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = w.Trigger(context.Background())
		}()
	}
	wg.Wait()
	if maxRunning != 1 {
		t.Errorf("max concurrent rebuilds = %d, want 1", maxRunning)
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w := NewWatcher(t.TempDir(), nil, func(ctx context.Context) error { return nil })
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()
}

func TestWatcher_RestartAfterStop(t *testing.T) {
	dir := t.TempDir()
	var calls int32
	w := NewWatcher(dir, []string{".jpg"}, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, WithDebounce(50*time.Millisecond))

	first, cancelFirst := context.WithCancel(context.Background())
	if err := w.Start(first); err != nil {
		t.Fatal(err)
	}
	w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	// Cancelling the first run's context must not stop the second run.
	cancelFirst()
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "a.jpg"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return atomic.LoadInt32(&calls) == 1 })
}

func TestWatcher_Relevant(t *testing.T) {
	dir := t.TempDir()
	w := NewWatcher(dir, []string{".jpg", ".jpeg"}, nil)
	w.dir = filepath.Clean(dir)
	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(dir, "a.jpg"), true},
		{filepath.Join(dir, "a.JPEG"), true},
		{filepath.Join(dir, "a.png"), false},
		{filepath.Join(dir, "sub", "a.jpg"), false},
	}
	for _, tt := range tests {
		if got := w.relevant(tt.path); got != tt.want {
			t.Errorf("relevant(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
