package chatserver

import (
	"context"
	"fmt"
	"log"
	"net"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

// ServerConfig configures a Server. All fields are optional; the zero value
// is a usable configuration bound to an OS-assigned loopback port.
type ServerConfig struct {
	// Addr is the TCP address to listen on, e.g. "localhost:6000". Empty
	// means "localhost:0" — any free port.
	Addr string

	// ReadBufferSize is the maximum number of bytes read from a connection
	// per recv, matching the source server's 1024-byte reads. Zero means
	// 1024.
	ReadBufferSize int

	// OutboundBuffer is unused directly (the outbound queue is unbounded),
	// reserved for callers that want to cap per-session memory in a future
	// revision.
	OutboundBuffer int

	// Log receives server and connection lifecycle messages. Nil means
	// log.Print, exactly as the teacher library's ConnConfig.Log does.
	Log func(v ...interface{})
}

func (c ServerConfig) readBufferSize() int {
	if c.ReadBufferSize > 0 {
		return c.ReadBufferSize
	}
	return 1024
}

func (c ServerConfig) addr() string {
	if c.Addr != "" {
		return c.Addr
	}
	return "localhost:0"
}

// Server is a running (or runnable) chat server: a user registry, a channel
// registry, and the connection lifecycle that binds them to the wire.
//
// There are no process-wide globals here (see the source's class-level
// singleton lists): registries are explicit fields on Server, so multiple
// independent servers can coexist in one process, e.g. under test.
type Server struct {
	config   ServerConfig
	Users    *UserRegistry
	Channels *ChannelRegistry

	mu       sync.Mutex
	listener net.Listener
	sessions map[*Session]struct{}
	closed   bool
	wg       sync.WaitGroup
}

// NewServer returns a Server ready to Serve or ListenAndServe.
func NewServer(config ServerConfig) *Server {
	return &Server{
		config:   config,
		Users:    NewUserRegistry(),
		Channels: NewChannelRegistry(),
		sessions: make(map[*Session]struct{}),
	}
}

func (srv *Server) logf(v ...interface{}) {
	if srv.config.Log != nil {
		srv.config.Log(v...)
		return
	}
	log.Print(v...)
}

// ListenAndServe binds a TCP listener on srv's configured address, with
// SO_REUSEADDR set explicitly, and serves connections until Shutdown is
// called or Serve returns an error.
func (srv *Server) ListenAndServe() error {
	lc := net.ListenConfig{Control: setReuseAddr}
	l, err := lc.Listen(context.Background(), "tcp", srv.config.addr())
	if err != nil {
		return err
	}
	return srv.Serve(l)
}

// Addr returns the listener's bound address. It is only meaningful after
// ListenAndServe or Serve has started.
func (srv *Server) Addr() net.Addr {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.listener == nil {
		return nil
	}
	return srv.listener.Addr()
}

// Serve accepts connections on l, spawning a read goroutine and a write
// goroutine per connection (see SPEC_FULL.md §2 for why this replaces the
// source's single-threaded readiness-selector loop). It runs until l is
// closed by Shutdown, at which point it returns nil.
func (srv *Server) Serve(l net.Listener) error {
	srv.mu.Lock()
	srv.listener = l
	srv.mu.Unlock()

	srv.logf(fmt.Sprintf("chatserver: listening on %s", l.Addr()))

	for {
		conn, err := l.Accept()
		if err != nil {
			srv.mu.Lock()
			closed := srv.closed
			srv.mu.Unlock()
			if closed {
				return nil
			}
			return err
		}
		srv.serveConn(conn)
	}
}

func (srv *Server) serveConn(conn net.Conn) {
	s := newSession(srv, conn)

	srv.mu.Lock()
	srv.sessions[s] = struct{}{}
	srv.mu.Unlock()

	srv.wg.Add(2)
	go func() {
		defer srv.wg.Done()
		s.writeLoop()
	}()
	go func() {
		defer srv.wg.Done()
		defer srv.untrackSession(s)
		s.readLoop()
	}()
}

func (srv *Server) untrackSession(s *Session) {
	srv.mu.Lock()
	delete(srv.sessions, s)
	srv.mu.Unlock()
}

// Shutdown closes the listening socket and every live session's connection,
// then waits for all connection goroutines to exit (or ctx to expire).
// Pending outbound replies are not flushed; this matches the source
// server's behavior on interrupt.
func (srv *Server) Shutdown(ctx context.Context) error {
	srv.mu.Lock()
	if srv.closed {
		srv.mu.Unlock()
		return nil
	}
	srv.closed = true
	l := srv.listener
	sessions := make([]*Session, 0, len(srv.sessions))
	for s := range srv.sessions {
		sessions = append(sessions, s)
	}
	srv.mu.Unlock()

	if l != nil {
		l.Close()
	}
	for _, s := range sessions {
		s.teardown()
	}

	done := make(chan struct{})
	go func() {
		srv.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// setReuseAddr is a net.ListenConfig.Control callback that sets
// SO_REUSEADDR on the listening socket before bind, making address reuse
// explicit rather than relying on the platform default.
func setReuseAddr(network, address string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
