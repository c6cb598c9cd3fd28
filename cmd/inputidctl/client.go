package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// request mirrors the daemon's wire format: one JSON line per request,
// with the device fd attached as SCM_RIGHTS ancillary data on identify.
type request struct {
	Version int    `json:"version"`
	Op      string `json:"op"`
	Kind    string `json:"kind,omitempty"`
	Vendor  uint16 `json:"vendor,omitempty"`
	Product uint16 `json:"product,omitempty"`
	Bus     string `json:"bus,omitempty"`
	Handle  string `json:"handle,omitempty"`
}

// response is one JSON line back from the daemon.
type response struct {
	Version  int    `json:"version"`
	Error    string `json:"error,omitempty"`
	Handle   string `json:"handle,omitempty"`
	Physical string `json:"physical,omitempty"`
	Payload  string `json:"payload,omitempty"`
	Event    string `json:"event,omitempty"`
}

// client is one connection to the daemon socket. A connection carries
// any number of requests; a watch takes it over until the event fires.
type client struct {
	conn *net.UnixConn
	rd   *bufio.Reader
}

func dial(path string) (*client, error) {
	conn, err := net.DialUnix("unix", nil, &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w (is inputidd running?)", path, err)
	}
	return &client{conn: conn, rd: bufio.NewReader(conn)}, nil
}

func (c *client) close() {
	c.conn.Close() //nolint:errcheck // Teardown
}

// roundTrip sends one request and reads one response. When f is non-nil
// its descriptor rides along as SCM_RIGHTS on the same message.
func (c *client) roundTrip(req request, f *os.File) (*response, error) {
	req.Version = 1
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	data = append(data, '\n')

	var oob []byte
	if f != nil {
		oob = unix.UnixRights(int(f.Fd()))
	}
	if _, _, err := c.conn.WriteMsgUnix(data, oob, nil); err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	return c.read()
}

// read blocks for the next response line. Used directly by watch after
// the initial round trip.
func (c *client) read() (*response, error) {
	line, err := c.rd.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	var resp response
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}
	if resp.Error != "" {
		return &resp, fmt.Errorf("daemon: %s", resp.Error)
	}
	return &resp, nil
}
