package obd

import (
	"errors"
	"sync"
	"testing"
	"time"

	"obdpoll/internal/transport"
)

// compressTime shrinks the timing knobs so tests run in milliseconds.
// Tests using it must not run in parallel.
func compressTime(t *testing.T) {
	t.Helper()
	oldSettle, oldReconnect, oldPoll := settleInterval, reconnectPeriod, pollInterval
	settleInterval = 5 * time.Millisecond
	reconnectPeriod = 20 * time.Millisecond
	pollInterval = 10 * time.Millisecond
	t.Cleanup(func() {
		settleInterval, reconnectPeriod, pollInterval = oldSettle, oldReconnect, oldPoll
	})
}

type fakePorts struct {
	names []string
	err   error
}

func (f fakePorts) List() ([]string, error) {
	return f.names, f.err
}

// fakeTransport hands out in-memory handles. Every write on a handle queues
// the endpoint's configured reply; a configured read error simulates a dead
// link. Open and close events are recorded per endpoint.
type fakeTransport struct {
	mu      sync.Mutex
	opened  []string
	closed  []string
	writes  []string
	openErr map[string]error
	readErr map[string]error
	reply   map[string][]byte
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		openErr: make(map[string]error),
		readErr: make(map[string]error),
		reply:   make(map[string][]byte),
	}
}

func (f *fakeTransport) setReply(endpoint, reply string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reply[endpoint] = []byte(reply)
}

func (f *fakeTransport) setReadErr(endpoint string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.readErr, endpoint)
		return
	}
	f.readErr[endpoint] = err
}

func (f *fakeTransport) openCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.opened)
}

func (f *fakeTransport) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.closed)
}

func (f *fakeTransport) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func (f *fakeTransport) writesSnapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.writes))
	copy(out, f.writes)
	return out
}

func (f *fakeTransport) Open(endpoint string, baud int, timeout time.Duration) (transport.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.openErr[endpoint]; err != nil {
		return nil, err
	}
	f.opened = append(f.opened, endpoint)
	return &fakeHandle{tr: f, endpoint: endpoint}, nil
}

type fakeHandle struct {
	tr       *fakeTransport
	endpoint string

	mu      sync.Mutex
	pending []byte
	closed  bool
}

func (h *fakeHandle) Write(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0, errors.New("write on closed port")
	}
	h.tr.mu.Lock()
	h.tr.writes = append(h.tr.writes, string(p))
	reply := h.tr.reply[h.endpoint]
	h.tr.mu.Unlock()
	h.pending = append(h.pending, reply...)
	return len(p), nil
}

func (h *fakeHandle) ReadAvailable() ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, errors.New("read on closed port")
	}
	h.tr.mu.Lock()
	err := h.tr.readErr[h.endpoint]
	h.tr.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := h.pending
	h.pending = nil
	return out, nil
}

func (h *fakeHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	h.tr.mu.Lock()
	h.tr.closed = append(h.tr.closed, h.endpoint)
	h.tr.mu.Unlock()
	return nil
}
