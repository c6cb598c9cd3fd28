// Package monitor watches device-node directories and feeds node
// removals into the registry. It is strictly a collaborator: the
// registry works without it, the monitor does nothing but call it.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nerrad567/inputid/internal/registry"
)

// Logger defines the logging interface used by the Monitor.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Remover is the registry surface the monitor drives.
type Remover interface {
	RemoveByPath(path string) error
}

// Config controls what the monitor watches.
type Config struct {
	// Dirs are the directories holding device nodes.
	// Default: /dev/input and /dev (for hidraw nodes).
	Dirs []string

	// Settle is how long to coalesce a burst of events before logging a
	// summary. Zero disables the summary.
	Settle time.Duration
}

// Monitor turns filesystem removal events into registry removals.
type Monitor struct {
	remover Remover
	watcher *fsnotify.Watcher
	dirs    []string
	settle  time.Duration
	logger  Logger
}

// New creates a Monitor watching cfg.Dirs for node removals.
func New(remover Remover, cfg Config) (*Monitor, error) {
	dirs := cfg.Dirs
	if len(dirs) == 0 {
		dirs = []string{"/dev/input", "/dev"}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("monitor: creating watcher: %w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close() //nolint:errcheck // Best effort cleanup on error path
			return nil, fmt.Errorf("monitor: watching %s: %w", dir, err)
		}
	}

	return &Monitor{
		remover: remover,
		watcher: watcher,
		dirs:    dirs,
		settle:  cfg.Settle,
		logger:  noopLogger{},
	}, nil
}

// SetLogger sets the logger for the monitor.
func (m *Monitor) SetLogger(logger Logger) {
	m.logger = logger
}

// Run processes events until ctx is cancelled. It always returns a
// non-nil reason: ctx.Err() on shutdown, or the watcher's failure.
func (m *Monitor) Run(ctx context.Context) error {
	defer m.watcher.Close() //nolint:errcheck // Shutdown path

	m.logger.Info("device monitor started", "dirs", strings.Join(m.dirs, ","))

	var (
		removed int
		settle  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-m.watcher.Events:
			if !ok {
				return errors.New("monitor: watcher closed")
			}
			if !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if !deviceNode(ev.Name) {
				continue
			}
			m.handleRemoval(ev.Name)
			removed++
			if m.settle > 0 {
				settle = time.After(m.settle)
			}

		case <-settle:
			m.logger.Info("removal burst settled", "count", removed)
			removed = 0
			settle = nil

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return errors.New("monitor: watcher closed")
			}
			m.logger.Warn("watcher error", "error", err)
		}
	}
}

func (m *Monitor) handleRemoval(path string) {
	err := m.remover.RemoveByPath(path)
	switch {
	case err == nil:
		m.logger.Info("node removed", "path", path)
	case errors.Is(err, registry.ErrUnknownIdentity):
		// Node was never identified; nothing to evict.
		m.logger.Debug("unregistered node removed", "path", path)
	default:
		m.logger.Error("removal failed", "path", path, "error", err)
	}
}

// deviceNode reports whether the path names an input or hidraw node.
// /dev is watched whole, so everything else there must be ignored.
func deviceNode(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, "event") ||
		strings.HasPrefix(base, "hidraw") ||
		strings.HasPrefix(base, "js")
}
