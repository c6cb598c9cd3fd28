package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nerrad567/inputid/internal/hwdb"
	"github.com/nerrad567/inputid/internal/infrastructure/database"
	"github.com/nerrad567/inputid/internal/registry"
	"github.com/nerrad567/inputid/internal/service"
)

func TestRunNoCommand(t *testing.T) {
	var out bytes.Buffer
	if err := run(nil, &out); err == nil {
		t.Fatal("run() with no args should fail")
	}
	if !strings.Contains(out.String(), "Usage:") {
		t.Error("run() with no args should print usage")
	}
}

func TestRunUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"frobnicate"}, &out)
	if err == nil || !strings.Contains(err.Error(), "frobnicate") {
		t.Errorf("run() error = %v, want unknown command", err)
	}
}

func TestRunVersion(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"version"}, &out); err != nil {
		t.Fatalf("run(version) error = %v", err)
	}
	if !strings.Contains(out.String(), "inputidctl") {
		t.Errorf("version output = %q", out.String())
	}
}

func TestParseUSBID(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		vendor  uint16
		product uint16
		wantErr bool
	}{
		{name: "lsusb style", in: "054c:09cc", vendor: 0x054c, product: 0x09cc},
		{name: "no padding", in: "46d:c52b", vendor: 0x046d, product: 0xc52b},
		{name: "missing colon", in: "054c09cc", wantErr: true},
		{name: "bad vendor", in: "zzzz:09cc", wantErr: true},
		{name: "bad product", in: "054c:xyz", wantErr: true},
		{name: "vendor overflow", in: "10000:09cc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vendor, product, err := parseUSBID(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseUSBID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if vendor != tt.vendor || product != tt.product {
				t.Errorf("parseUSBID(%q) = %04x:%04x, want %04x:%04x",
					tt.in, vendor, product, tt.vendor, tt.product)
			}
		})
	}
}

func TestDecodeFromFile(t *testing.T) {
	payload := "inputid 1\nbus 0x0003\nvendor 0x054c\nproduct 0x09cc\nname Wireless Controller\ncaps gamepad joystick\ntype gamepad\n"
	path := filepath.Join(t.TempDir(), "payload.txt")
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := run([]string{"decode", path}, &out); err != nil {
		t.Fatalf("decode error = %v", err)
	}

	for _, want := range []string{"vendor:   0x054c", "product:  0x09cc", "name:     Wireless Controller", "type:     gamepad"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("decode output missing %q:\n%s", want, out.String())
		}
	}
}

func TestDecodeMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.txt")
	if err := os.WriteFile(path, []byte("not a payload\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := run([]string{"decode", path}, &out); err == nil {
		t.Fatal("decode of garbage should fail")
	}
}

// startDaemonSocket runs a real identification service for the wire
// client to talk to.
func startDaemonSocket(t *testing.T) string {
	t.Helper()

	db, err := hwdb.Default(nil)
	if err != nil {
		t.Fatalf("hwdb.Default() error = %v", err)
	}
	reg := registry.New(db)

	sock := filepath.Join(t.TempDir(), "inputid.sock")
	srv, err := service.New(reg, db, service.Config{Path: sock})
	if err != nil {
		t.Fatalf("service.New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.Run(ctx) //nolint:errcheck // Exits via cancel
	}()
	t.Cleanup(func() { cancel(); <-done })

	return sock
}

func TestUSBAgainstDaemon(t *testing.T) {
	sock := startDaemonSocket(t)

	var out bytes.Buffer
	err := run([]string{"usb", "-socket", sock, "054c:09cc"}, &out)
	if err != nil {
		t.Fatalf("usb error = %v", err)
	}

	got := out.String()
	if !strings.HasPrefix(got, "inputid 1\n") {
		t.Errorf("payload missing header:\n%s", got)
	}
	if !strings.Contains(got, "vendor 0x054c") {
		t.Errorf("payload missing vendor:\n%s", got)
	}
	if !strings.Contains(got, "type gamepad") {
		t.Errorf("known controller should resolve a type:\n%s", got)
	}
}

func TestUSBUnknownBus(t *testing.T) {
	sock := startDaemonSocket(t)

	var out bytes.Buffer
	err := run([]string{"usb", "-socket", sock, "-bus", "firewire", "054c:09cc"}, &out)
	if err == nil || !strings.Contains(err.Error(), "unknown bus") {
		t.Errorf("usb with bad bus error = %v, want unknown bus", err)
	}
}

func TestUSBDaemonDown(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"usb", "-socket", filepath.Join(t.TempDir(), "missing.sock"), "054c:09cc"}, &out)
	if err == nil || !strings.Contains(err.Error(), "is inputidd running") {
		t.Errorf("usb against missing socket error = %v", err)
	}
}

func TestCompileDB(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "hwdb.db")
	overrides := filepath.Join(dir, "hwdb.d")
	if err := os.MkdirAll(overrides, 0o755); err != nil {
		t.Fatal(err)
	}
	fragment := `entries:
  - match:
      bus: usb
      vendor: 0xffff
      product: 0x0001
    name: Bench Fixture
    type: keyboard
`
	if err := os.WriteFile(filepath.Join(overrides, "bench.yaml"), []byte(fragment), 0o644); err != nil {
		t.Fatal(err)
	}

	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := "database:\n  path: " + dbPath + "\nhwdb:\n  overrides_dir: " + overrides + "\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := run([]string{"compiledb", "-config", cfgPath}, &out); err != nil {
		t.Fatalf("compiledb error = %v", err)
	}
	if !strings.Contains(out.String(), "compiled") {
		t.Errorf("compiledb output = %q", out.String())
	}

	// The store must now feed a daemon configured with use_store.
	db, err := database.Open(database.Config{Path: dbPath})
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer db.Close() //nolint:errcheck // Test cleanup

	entries, err := hwdb.LoadStore(context.Background(), db)
	if err != nil {
		t.Fatalf("LoadStore() error = %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("store is empty after compiledb")
	}
	found := false
	for _, e := range entries {
		if e.Name == "Bench Fixture" {
			found = true
		}
	}
	if !found {
		t.Error("override entry missing from compiled store")
	}
}
