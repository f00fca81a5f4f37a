package obd

import (
	"strings"
	"sync"
	"time"

	"obdpoll/internal/transport"
	"obdpoll/pkg/log"

	"go.uber.org/zap"
)

// NoResponse is returned whenever a command cannot reach the adapter.
const NoResponse = "No response - connection not available."

// Session owns one live serial connection to the adapter. Commands are
// strictly serialized; the first transport fault closes the session for
// good, and rebuilding is the Supervisor's job.
type Session struct {
	mu     sync.Mutex
	handle transport.Handle
	closed bool
}

func NewSession(h transport.Handle) *Session {
	return &Session{handle: h}
}

// SendCommand writes one CR-terminated command, waits for the adapter to
// settle, and returns whatever text arrived, trimmed. On a transport fault
// it returns NoResponse, as do all subsequent calls.
func (s *Session) SendCommand(cmd string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NoResponse
	}

	if _, err := s.handle.Write([]byte(cmd + CR)); err != nil {
		log.Warn("command write failed", zap.String("command", cmd), zap.Error(err))
		s.closeLocked()
		return NoResponse
	}
	time.Sleep(settleInterval)

	resp, err := s.handle.ReadAvailable()
	if err != nil {
		log.Warn("response read failed", zap.String("command", cmd), zap.Error(err))
		s.closeLocked()
		return NoResponse
	}
	return strings.TrimSpace(sanitize(resp))
}

// Closed reports whether the session has invalidated itself.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close shuts the underlying transport. Idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *Session) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	if err := s.handle.Close(); err != nil {
		log.Debug("closing serial port failed", zap.Error(err))
	}
}

// sanitize keeps printable ASCII and line endings, dropping the nulls and
// stray control bytes adapters emit around power-up.
func sanitize(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		if c >= 32 && c <= 126 || c == '\r' || c == '\n' {
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
