package obd

import (
	"context"
	"sync"
	"time"

	"obdpoll/internal/transport"
	"obdpoll/pkg/log"

	"go.uber.org/zap"
)

// Supervisor keeps at most one Session alive, rebuilding it through port
// discovery whenever the link drops. The session and its transport handle
// are owned exclusively by the Supervisor; callers only see SendCommand.
type Supervisor struct {
	tr      transport.Transport
	ports   transport.Ports
	baud    int
	timeout time.Duration

	mu      sync.Mutex
	session *Session

	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// NewSupervisor starts the background reconnect loop immediately.
func NewSupervisor(tr transport.Transport, ports transport.Ports, baud int, timeout time.Duration) *Supervisor {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Supervisor{
		tr:      tr,
		ports:   ports,
		baud:    baud,
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go s.maintain()
	return s
}

// maintain is the reconnect loop: while no live session exists, run
// discovery and try to open one; while connected, just watch for the
// session to invalidate itself.
func (s *Supervisor) maintain() {
	defer close(s.done)

	ticker := time.NewTicker(reconnectPeriod)
	defer ticker.Stop()

	for {
		s.ensureSession()
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Supervisor) ensureSession() {
	s.mu.Lock()
	sess := s.session
	s.mu.Unlock()

	if sess != nil {
		if !sess.Closed() {
			return
		}
		log.Info("serial link lost, reconnecting")
		s.mu.Lock()
		s.session = nil
		s.mu.Unlock()
	}

	endpoint, ok := Discover(s.ctx, s.tr, s.ports, s.baud, s.timeout)
	if !ok {
		log.Info("no OBD-II adapter found")
		return
	}

	h, err := s.tr.Open(endpoint, s.baud, s.timeout)
	if err != nil {
		log.Warn("failed to open adapter port", zap.String("port", endpoint), zap.Error(err))
		return
	}
	sess = NewSession(h)

	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()
	log.Info("connected to OBD-II adapter", zap.String("port", endpoint), zap.Int("baud", s.baud))

	s.initAdapter(sess)
}

// initAdapter pushes the usual ELM327 setup through the serialized command
// path. Best-effort: adapters that reject a setting still answer queries.
// ATS0 is deliberately absent: spaceless responses would defeat the
// whitespace-tokenizing decoder.
func (s *Supervisor) initAdapter(sess *Session) {
	for _, cmd := range []string{CommandEchoOff, CommandLineFeedsOff, CommandHeadersOff} {
		resp := sess.SendCommand(cmd)
		log.Debug("adapter init", zap.String("command", cmd), zap.String("response", resp))
		if sess.Closed() {
			return
		}
	}
}

// SendCommand issues one command through the live session. While
// disconnected it returns NoResponse immediately rather than blocking for
// a reconnect.
func (s *Supervisor) SendCommand(cmd string) string {
	s.mu.Lock()
	sess := s.session
	s.mu.Unlock()

	if sess == nil || sess.Closed() {
		return NoResponse
	}
	return sess.SendCommand(cmd)
}

// Connected reports whether a live session is currently held.
func (s *Supervisor) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session != nil && !s.session.Closed()
}

// Shutdown stops the reconnect loop, waits for it to finish its current
// iteration, and closes any live session. Safe to call more than once.
func (s *Supervisor) Shutdown() {
	s.stopOnce.Do(func() {
		s.cancel()
		<-s.done

		s.mu.Lock()
		if s.session != nil {
			s.session.Close()
			s.session = nil
		}
		s.mu.Unlock()
	})
}
