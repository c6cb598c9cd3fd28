package service

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/nerrad567/inputid/internal/hwdb"
	"github.com/nerrad567/inputid/internal/registry"
)

func startServer(t *testing.T) (string, *Server) {
	t.Helper()

	db, err := hwdb.Default(nil)
	if err != nil {
		t.Fatalf("hwdb.Default() error = %v", err)
	}
	reg := registry.New(db)

	sock := filepath.Join(t.TempDir(), "inputid.sock")
	srv, err := New(reg, db, Config{Path: sock})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.Run(ctx) //nolint:errcheck // Exits via cancel
	}()
	t.Cleanup(func() { cancel(); <-done })

	return sock, srv
}

func dial(t *testing.T, sock string) *net.UnixConn {
	t.Helper()
	conn, err := net.DialUnix("unix", nil, &net.UnixAddr{Name: sock, Net: "unix"})
	if err != nil {
		t.Fatalf("dialing %s: %v", sock, err)
	}
	t.Cleanup(func() { conn.Close() }) //nolint:errcheck // Test cleanup
	return conn
}

func roundTrip(t *testing.T, conn *net.UnixConn, line string) response {
	t.Helper()
	if _, err := conn.Write([]byte(line + "\n")); err != nil {
		t.Fatalf("writing request: %v", err)
	}
	return readResponse(t, conn)
}

func readResponse(t *testing.T, conn *net.UnixConn) response {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck // Test deadline
	raw, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatalf("reading response: %v", err)
	}
	var resp response
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("decoding response %q: %v", raw, err)
	}
	return resp
}

// TestIdentifyUSBKnownController verifies the fd-less path end to end:
// known identifiers in, codec payload out.
func TestIdentifyUSBKnownController(t *testing.T) {
	sock, _ := startServer(t)
	conn := dial(t, sock)

	resp := roundTrip(t, conn, `{"version":1,"op":"identify-usb","vendor":1356,"product":2508}`)
	if resp.Error != "" {
		t.Fatalf("identify-usb error = %q", resp.Error)
	}
	if !strings.Contains(resp.Payload, "type gamepad") {
		t.Errorf("payload missing gamepad type:\n%s", resp.Payload)
	}
	if !strings.Contains(resp.Payload, "vendor 0x054c") {
		t.Errorf("payload missing vendor:\n%s", resp.Payload)
	}
}

// TestIdentifyUSBUnknownDevice verifies an unknown id still yields a
// payload, just without a type.
func TestIdentifyUSBUnknownDevice(t *testing.T) {
	sock, _ := startServer(t)
	conn := dial(t, sock)

	resp := roundTrip(t, conn, `{"version":1,"op":"identify-usb","vendor":57005,"product":48879}`)
	if resp.Error != "" {
		t.Fatalf("identify-usb error = %q", resp.Error)
	}
	if strings.Contains(resp.Payload, "\ntype ") {
		t.Errorf("unknown device payload carries a type:\n%s", resp.Payload)
	}
}

// TestVersionGate verifies a too-new request is rejected outright.
func TestVersionGate(t *testing.T) {
	sock, _ := startServer(t)
	conn := dial(t, sock)

	resp := roundTrip(t, conn, `{"version":99,"op":"identify-usb","vendor":1,"product":1}`)
	if resp.Error != "unsupported version" {
		t.Errorf("error = %q, want unsupported version", resp.Error)
	}
}

// TestUnknownOp verifies the error shape for bad operations.
func TestUnknownOp(t *testing.T) {
	sock, _ := startServer(t)
	conn := dial(t, sock)

	resp := roundTrip(t, conn, `{"version":1,"op":"frobnicate"}`)
	if !strings.Contains(resp.Error, "unknown op") {
		t.Errorf("error = %q, want unknown op", resp.Error)
	}
}

// TestWatchUnknownHandle verifies watch rejects tokens it never issued.
func TestWatchUnknownHandle(t *testing.T) {
	sock, _ := startServer(t)
	conn := dial(t, sock)

	resp := roundTrip(t, conn, `{"version":1,"op":"watch","handle":"no-such-token"}`)
	if resp.Error != "unknown handle" {
		t.Errorf("error = %q, want unknown handle", resp.Error)
	}
}

// TestIdentifyWithoutFD verifies the identify op demands ancillary data.
func TestIdentifyWithoutFD(t *testing.T) {
	sock, _ := startServer(t)
	conn := dial(t, sock)

	resp := roundTrip(t, conn, `{"version":1,"op":"identify","kind":"evdev"}`)
	if !strings.Contains(resp.Error, "file descriptor") {
		t.Errorf("error = %q, want fd requirement", resp.Error)
	}
}

// TestIdentifyFDPassing verifies SCM_RIGHTS receipt. /dev/null is a
// character device, so identity resolution succeeds and the failure
// comes from the probe stage — proving the passed fd actually reached
// the engine.
func TestIdentifyFDPassing(t *testing.T) {
	sock, _ := startServer(t)
	conn := dial(t, sock)

	fd, err := unix.Open("/dev/null", unix.O_RDONLY, 0)
	if err != nil {
		t.Fatalf("opening /dev/null: %v", err)
	}
	defer unix.Close(fd) //nolint:errcheck // Test cleanup

	payload := []byte(`{"version":1,"op":"identify","kind":"evdev"}` + "\n")
	rights := unix.UnixRights(fd)
	if _, _, err := conn.WriteMsgUnix(payload, rights, nil); err != nil {
		t.Fatalf("sending fd: %v", err)
	}

	resp := readResponse(t, conn)
	if resp.Error == "" {
		t.Fatal("probing /dev/null succeeded, expected probe failure")
	}
	if strings.Contains(resp.Error, "file descriptor") {
		t.Errorf("fd did not arrive: %q", resp.Error)
	}
}

// TestMalformedRequestDropsConnection verifies garbage input ends the
// connection instead of wedging the server.
func TestMalformedRequestDropsConnection(t *testing.T) {
	sock, _ := startServer(t)
	conn := dial(t, sock)

	if _, err := conn.Write([]byte("not json at all\n")); err != nil {
		t.Fatalf("writing garbage: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck // Test deadline
	buf := make([]byte, 64)
	if _, err := conn.Read(buf); err == nil {
		t.Error("connection still open after malformed request")
	}

	// The server itself stays healthy.
	conn2 := dial(t, sock)
	resp := roundTrip(t, conn2, `{"version":1,"op":"identify-usb","vendor":1356,"product":2508}`)
	if resp.Error != "" {
		t.Errorf("server unhealthy after malformed request: %q", resp.Error)
	}
}
