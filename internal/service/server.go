package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/nerrad567/inputid/internal/device"
	"github.com/nerrad567/inputid/internal/probe"
	"github.com/nerrad567/inputid/internal/registry"
)

// Logger defines the logging interface used by the Server.
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

// Config holds the socket settings.
type Config struct {
	// Path is the unix socket path. A stale socket file is replaced.
	Path string

	// Mode is the socket file mode. Zero means 0660.
	Mode os.FileMode
}

// maxRequestBytes bounds a single request line. Requests are tiny; a
// line this long is an abusive or broken client.
const maxRequestBytes = 64 * 1024

// Server accepts identification requests on a unix socket.
type Server struct {
	reg      *registry.Registry
	db       device.Database
	listener *net.UnixListener
	logger   Logger

	mu       sync.Mutex
	handles  map[string]*registry.Handle
	physical map[string]*registry.PhysicalDevice
	// Token reuse: one token per identity / grouping key for the
	// daemon's lifetime, so repeat identifies agree with watch state.
	handleTokens map[registry.Identity]string
	physTokens   map[string]string

	wg sync.WaitGroup
}

// New creates a Server listening on cfg.Path. The registry performs
// identification; db drives the usb-id path that bypasses it.
func New(reg *registry.Registry, db device.Database, cfg Config) (*Server, error) {
	if err := os.Remove(cfg.Path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("service: removing stale socket: %w", err)
	}

	addr := &net.UnixAddr{Name: cfg.Path, Net: "unix"}
	listener, err := net.ListenUnix("unix", addr)
	if err != nil {
		return nil, fmt.Errorf("service: listen %s: %w", cfg.Path, err)
	}

	mode := cfg.Mode
	if mode == 0 {
		mode = 0660
	}
	if err := os.Chmod(cfg.Path, mode); err != nil {
		listener.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("service: chmod socket: %w", err)
	}

	return &Server{
		reg:          reg,
		db:           db,
		listener:     listener,
		logger:       noopLogger{},
		handles:      make(map[string]*registry.Handle),
		physical:     make(map[string]*registry.PhysicalDevice),
		handleTokens: make(map[registry.Identity]string),
		physTokens:   make(map[string]string),
	}, nil
}

// SetLogger sets the logger for the server.
func (s *Server) SetLogger(logger Logger) {
	s.logger = logger
}

// Addr returns the socket path the server listens on.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Run accepts connections until ctx is cancelled, then closes the
// listener and waits for in-flight connections to finish.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("service listening", "socket", s.Addr())

	go func() {
		<-ctx.Done()
		s.listener.Close() //nolint:errcheck // Shutdown path
	}()

	for {
		conn, err := s.listener.AcceptUnix()
		if err != nil {
			s.wg.Wait()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("service: accept: %w", err)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serve(ctx, conn)
		}()
	}
}

// serve handles one connection: requests in, responses out, until the
// client hangs up or a watch takes the connection over.
func (s *Server) serve(ctx context.Context, conn *net.UnixConn) {
	defer conn.Close() //nolint:errcheck // Connection teardown

	for {
		req, fd, err := readRequest(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Debug("request read failed", "error", err)
			}
			return
		}

		if req.Version > ProtocolVersion {
			s.reply(conn, response{Version: ProtocolVersion, Error: "unsupported version"})
			closeFD(fd)
			continue
		}

		switch req.Op {
		case opIdentify:
			s.reply(conn, s.identify(ctx, req, fd))
		case opIdentifyUSB:
			closeFD(fd)
			s.reply(conn, s.identifyUSB(req))
		case opWatch:
			closeFD(fd)
			// watch owns the connection until removal or hangup.
			s.watch(ctx, conn, req)
			return
		default:
			closeFD(fd)
			s.reply(conn, response{Version: ProtocolVersion, Error: fmt.Sprintf("unknown op %q", req.Op)})
		}
	}
}

// identify resolves a passed file descriptor through the registry.
func (s *Server) identify(ctx context.Context, req *request, fd int) response {
	if fd < 0 {
		return response{Version: ProtocolVersion, Error: "identify requires a file descriptor"}
	}
	f := os.NewFile(uintptr(fd), "<client fd>")
	defer f.Close() //nolint:errcheck // The registry does not retain the file

	kind := probe.Kind(req.Kind)
	if kind == "" {
		kind = probe.KindEvdev
	}
	if !kind.Valid() {
		return response{Version: ProtocolVersion, Error: fmt.Sprintf("unknown kind %q", req.Kind)}
	}

	h, err := s.reg.DeviceFromFile(ctx, f, kind)
	if err != nil {
		return response{Version: ProtocolVersion, Error: err.Error()}
	}

	dev, err := h.Device()
	if err != nil {
		return response{Version: ProtocolVersion, Error: err.Error()}
	}
	payload, err := dev.Serialize()
	if err != nil {
		return response{Version: ProtocolVersion, Error: err.Error()}
	}

	handleTok, physTok := s.tokensFor(h)
	return response{
		Version:  ProtocolVersion,
		Handle:   handleTok,
		Physical: physTok,
		Payload:  payload,
	}
}

// identifyUSB resolves identifiers alone, database-driven, with no
// registry entry (there is no kernel node to key it by).
func (s *Server) identifyUSB(req *request) response {
	b := device.NewBuilder().FromUSBID(req.Vendor, req.Product).WithDatabase(s.db)
	if req.Bus != "" {
		bus, ok := probe.ParseBus(req.Bus)
		if !ok {
			return response{Version: ProtocolVersion, Error: fmt.Sprintf("unknown bus %q", req.Bus)}
		}
		b.WithBus(bus)
	}

	dev, err := b.Build()
	if dev == nil {
		return response{Version: ProtocolVersion, Error: err.Error()}
	}
	payload, serr := dev.Serialize()
	if serr != nil {
		return response{Version: ProtocolVersion, Error: serr.Error()}
	}
	return response{Version: ProtocolVersion, Payload: payload}
}

// watch holds the connection and emits one removal event for the
// addressed resource, then returns.
func (s *Server) watch(ctx context.Context, conn *net.UnixConn, req *request) {
	ch := make(chan registry.RemovalEvent, 1)

	var err error
	switch {
	case req.Handle != "":
		s.mu.Lock()
		h, ok := s.handles[req.Handle]
		s.mu.Unlock()
		if !ok {
			s.reply(conn, response{Version: ProtocolVersion, Error: "unknown handle"})
			return
		}
		err = h.SubscribeRemoval(ch)
	case req.Physical != "":
		s.mu.Lock()
		p, ok := s.physical[req.Physical]
		s.mu.Unlock()
		if !ok {
			s.reply(conn, response{Version: ProtocolVersion, Error: "unknown physical handle"})
			return
		}
		err = p.SubscribeRemoval(ch)
	default:
		s.reply(conn, response{Version: ProtocolVersion, Error: "watch requires a handle"})
		return
	}

	if errors.Is(err, registry.ErrStaleHandle) {
		// Already gone; report immediately rather than hanging forever.
		s.reply(conn, response{Version: ProtocolVersion, Event: "removed"})
		return
	}
	if err != nil {
		s.reply(conn, response{Version: ProtocolVersion, Error: err.Error()})
		return
	}

	select {
	case <-ctx.Done():
	case <-connClosed(conn):
	case <-ch:
		s.reply(conn, response{Version: ProtocolVersion, Event: "removed"})
	}
}

// tokensFor issues (or reuses) UUID tokens for a handle and its
// aggregate.
func (s *Server) tokensFor(h *registry.Handle) (handleTok, physTok string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	handleTok, ok := s.handleTokens[h.Identity()]
	if !ok {
		handleTok = uuid.NewString()
		s.handleTokens[h.Identity()] = handleTok
		s.handles[handleTok] = h
	}

	if phys, err := h.Physical(); err == nil && phys != nil {
		physTok, ok = s.physTokens[phys.GroupKey()]
		if !ok {
			physTok = uuid.NewString()
			s.physTokens[phys.GroupKey()] = physTok
			s.physical[physTok] = phys
		}
	}
	return handleTok, physTok
}

func (s *Server) reply(conn *net.UnixConn, resp response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("encoding response", "error", err)
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.logger.Debug("writing response", "error", err)
	}
}

// readRequest reads one JSON line plus any SCM_RIGHTS fd attached to it.
// The returned fd is -1 when the client sent none; the caller owns it.
func readRequest(conn *net.UnixConn) (*request, int, error) {
	buf := make([]byte, 4096)
	oob := make([]byte, unix.CmsgSpace(4))
	fd := -1

	var line []byte
	for {
		if i := bytes.IndexByte(line, '\n'); i >= 0 {
			var req request
			if err := json.Unmarshal(line[:i], &req); err != nil {
				closeFD(fd)
				return nil, -1, fmt.Errorf("service: malformed request: %w", err)
			}
			if req.Version == 0 {
				req.Version = 1
			}
			return &req, fd, nil
		}
		if len(line) > maxRequestBytes {
			closeFD(fd)
			return nil, -1, errors.New("service: request too long")
		}

		n, oobn, _, _, err := conn.ReadMsgUnix(buf, oob)
		if n > 0 {
			line = append(line, buf[:n]...)
		}
		if oobn > 0 && fd < 0 {
			fd = parseRights(oob[:oobn])
		}
		if err != nil {
			closeFD(fd)
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return nil, -1, io.EOF
			}
			return nil, -1, fmt.Errorf("service: reading request: %w", err)
		}
	}
}

// parseRights extracts the first passed fd, closing any extras.
func parseRights(oob []byte) int {
	msgs, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return -1
	}
	fd := -1
	for _, msg := range msgs {
		fds, err := unix.ParseUnixRights(&msg)
		if err != nil {
			continue
		}
		for _, f := range fds {
			if fd < 0 {
				fd = f
				continue
			}
			unix.Close(f) //nolint:errcheck // Discarding surplus fds
		}
	}
	return fd
}

func closeFD(fd int) {
	if fd >= 0 {
		unix.Close(fd) //nolint:errcheck // Best effort
	}
}

// connClosed returns a channel that closes when the peer hangs up. It
// consumes the connection; only usable once no more requests are
// expected.
func connClosed(conn *net.UnixConn) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, 1)
		for {
			if _, err := conn.Read(buf); err != nil {
				return
			}
		}
	}()
	return done
}
