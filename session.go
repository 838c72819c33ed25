package chatserver

import (
	"fmt"
	"net"
	"sync"
	"unicode/utf8"
)

// Session is per-connection server state: the bound user (if any), the
// pending outbound reply queue, and the byte accumulator used to frame
// complete request lines out of a raw TCP stream.
//
// Closing a session always unbinds its user before the session is dropped,
// which is what keeps a logged-out user loggable again from a fresh
// connection.
type Session struct {
	conn net.Conn
	srv  *Server

	mu      sync.Mutex
	user    *User
	pending []string

	notify    chan struct{} // signals the writer that pending has grown
	done      chan struct{} // closed exactly once, on teardown
	closeOnce sync.Once
}

func newSession(srv *Server, conn net.Conn) *Session {
	return &Session{
		conn:   conn,
		srv:    srv,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// loggedInUser returns the user this session is currently bound to, or nil.
func (s *Session) loggedInUser() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// bind records u as the user logged in on this session.
func (s *Session) bind(u *User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

// enqueueReply appends line to the session's outbound queue and wakes the
// writer goroutine. Safe to call from any goroutine, including another
// session's dispatch during a broadcast.
func (s *Session) enqueueReply(line string) {
	s.mu.Lock()
	s.pending = append(s.pending, line)
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// teardown unbinds the session's user, closes its done channel, and closes
// the underlying connection. It is safe to call more than once and from
// more than one goroutine (the session's own read loop and the server's
// shutdown path both call it).
func (s *Session) teardown() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.mu.Lock()
		u := s.user
		s.user = nil
		s.mu.Unlock()
		if u != nil {
			u.logout()
		}
		s.conn.Close()
	})
}

// writeLoop drains the outbound queue to the wire, one reply per line, each
// terminated by a single "\n". It never flushes remaining output after
// teardown: a shutdown or peer error simply stops the loop with whatever
// was queued left unsent, matching the source server's behavior.
func (s *Session) writeLoop() {
	for {
		select {
		case <-s.notify:
		case <-s.done:
			return
		}
		for {
			s.mu.Lock()
			if len(s.pending) == 0 {
				s.mu.Unlock()
				break
			}
			line := s.pending[0]
			s.pending = s.pending[1:]
			s.mu.Unlock()

			if _, err := s.conn.Write([]byte(line + "\n")); err != nil {
				s.teardown()
				return
			}
		}
	}
}

// readLoop frames the connection's byte stream into request lines and
// dispatches each one in order. It owns dispatch for this connection, so
// request order, dispatch order, and reply order are trivially FIFO. A panic
// during read or dispatch tears down this session only and is logged.
func (s *Session) readLoop() {
	defer func() {
		if r := recover(); r != nil {
			s.srv.logf(fmt.Sprintf("chatserver: recovered from panic on %s: %v", s.conn.RemoteAddr(), r))
		}
	}()
	defer s.teardown()

	buf := make([]byte, s.srv.config.readBufferSize())
	var acc []byte
	for {
		n, err := s.conn.Read(buf)
		if n > 0 {
			acc = append(acc, buf[:n]...)
			var lines [][]byte
			lines, acc = splitLines(acc)
			for _, raw := range lines {
				if !utf8.Valid(raw) {
					s.srv.logf(fmt.Sprintf("chatserver: discarding undecodable line from %s", s.conn.RemoteAddr()))
					continue
				}
				s.srv.dispatch(s, string(raw))
			}
		}
		if err != nil {
			return
		}
	}
}

// splitLines extracts every newline-terminated, non-empty fragment from
// buf. The trailing fragment after the last '\n' (possibly empty) is
// returned as rest, to be prepended to the next read.
func splitLines(buf []byte) (lines [][]byte, rest []byte) {
	start := 0
	for i := 0; i < len(buf); i++ {
		if buf[i] != '\n' {
			continue
		}
		if i > start {
			line := make([]byte, i-start)
			copy(line, buf[start:i])
			lines = append(lines, line)
		}
		start = i + 1
	}
	rest = append([]byte(nil), buf[start:]...)
	return lines, rest
}
