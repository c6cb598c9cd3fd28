package monitor

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/inputid/internal/registry"
)

// recordingRemover captures the paths the monitor tries to remove.
type recordingRemover struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (r *recordingRemover) RemoveByPath(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, path)
	return r.err
}

func (r *recordingRemover) paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

// TestRemovalForwarded verifies a deleted node reaches the remover.
func TestRemovalForwarded(t *testing.T) {
	dir := t.TempDir()
	node := filepath.Join(dir, "event3")
	if err := os.WriteFile(node, nil, 0600); err != nil {
		t.Fatalf("creating node: %v", err)
	}

	remover := &recordingRemover{err: registry.ErrUnknownIdentity}
	m, err := New(remover, Config{Dirs: []string{dir}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Run(ctx) //nolint:errcheck // Exits via cancel
	}()

	if err := os.Remove(node); err != nil {
		t.Fatalf("removing node: %v", err)
	}

	waitFor(t, func() bool {
		for _, p := range remover.paths() {
			if p == node {
				return true
			}
		}
		return false
	})

	cancel()
	<-done
}

// TestNonDeviceIgnored verifies unrelated files in a watched directory
// do not reach the remover.
func TestNonDeviceIgnored(t *testing.T) {
	dir := t.TempDir()
	node := filepath.Join(dir, "event0")
	other := filepath.Join(dir, "random.txt")
	for _, p := range []string{node, other} {
		if err := os.WriteFile(p, nil, 0600); err != nil {
			t.Fatalf("creating %s: %v", p, err)
		}
	}

	remover := &recordingRemover{}
	m, err := New(remover, Config{Dirs: []string{dir}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx) //nolint:errcheck // Exits via cancel

	if err := os.Remove(other); err != nil {
		t.Fatalf("removing file: %v", err)
	}
	if err := os.Remove(node); err != nil {
		t.Fatalf("removing node: %v", err)
	}

	// The node arriving proves the earlier non-device event was already
	// processed (events are ordered), so its absence is meaningful.
	waitFor(t, func() bool {
		paths := remover.paths()
		return len(paths) == 1 && paths[0] == node
	})
}

// TestNewMissingDir verifies a bad directory fails fast.
func TestNewMissingDir(t *testing.T) {
	_, err := New(&recordingRemover{}, Config{
		Dirs: []string{filepath.Join(t.TempDir(), "absent")},
	})
	if err == nil {
		t.Fatal("New() with missing dir succeeded, want error")
	}
}
