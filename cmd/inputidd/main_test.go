package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/inputid/internal/registry"
)

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("INPUTID_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_MissingDatabasePath verifies run fails config validation when
// database path is empty.
func TestRun_MissingDatabasePath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
socket:
  path: "` + filepath.Join(tmpDir, "inputid.sock") + `"
  mode: "0600"

database:
  path: ""
  wal_mode: true
  busy_timeout: 5

monitor:
  enabled: false

mqtt:
  enabled: false

influxdb:
  enabled: false

logging:
  level: error
  format: text
  output: stderr
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv("INPUTID_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with empty database path")
	}
}

// TestGetConfigPath_Default verifies default config path.
func TestGetConfigPath_Default(t *testing.T) {
	t.Setenv("INPUTID_CONFIG", "")

	path := getConfigPath()
	if path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	expected := "/custom/path/config.yaml"
	t.Setenv("INPUTID_CONFIG", expected)

	path := getConfigPath()
	if path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}

// TestRun_SuccessfulStartupAndShutdown runs the daemon with everything
// optional disabled, then cancels and expects a clean exit.
func TestRun_SuccessfulStartupAndShutdown(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
socket:
  path: "` + filepath.Join(tmpDir, "inputid.sock") + `"
  mode: "0600"

database:
  path: "` + filepath.Join(tmpDir, "hwdb.db") + `"
  wal_mode: true
  busy_timeout: 5

hwdb:
  overrides_dir: "` + filepath.Join(tmpDir, "hwdb.d") + `"
  use_store: false

monitor:
  enabled: false

api:
  enabled: false

mqtt:
  enabled: false

influxdb:
  enabled: false

logging:
  level: error
  format: text
  output: stderr
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv("INPUTID_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Errorf("run() error = %v, want clean shutdown", err)
	}
}

// TestRun_UseStoreEmpty verifies the daemon refuses to start from an
// empty compiled store.
func TestRun_UseStoreEmpty(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
socket:
  path: "` + filepath.Join(tmpDir, "inputid.sock") + `"
  mode: "0600"

database:
  path: "` + filepath.Join(tmpDir, "hwdb.db") + `"
  wal_mode: true
  busy_timeout: 5

hwdb:
  use_store: true

monitor:
  enabled: false

api:
  enabled: false

mqtt:
  enabled: false

influxdb:
  enabled: false

logging:
  level: error
  format: text
  output: stderr
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv("INPUTID_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail when use_store is set and the store is empty")
	}
}

// TestDispatcherOrder verifies sinks receive events in attachment order.
func TestDispatcherOrder(t *testing.T) {
	d := newDispatcher()

	var order []string
	d.attach(func(registry.Event) { order = append(order, "first") })
	d.attach(func(registry.Event) { order = append(order, "second") })

	d.dispatch(registry.Event{Type: registry.EventRegistered})

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("dispatch order = %v, want [first second]", order)
	}
}
