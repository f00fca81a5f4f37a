// Package mock simulates an ELM327 adapter on a fake serial port. It
// satisfies both the transport and port-listing capabilities, so the whole
// discovery/session/supervisor stack runs unmodified against it.
package mock

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"obdpoll/internal/transport"
)

const portName = "/dev/ttyMOCK0"

// Adapter holds the simulated vehicle state. Values random-walk a little on
// every query so the dashboard looks alive.
type Adapter struct {
	mu      sync.Mutex
	rpm     int
	speed   int
	coolant int
	dtcs    []string // two-byte hex pairs, e.g. "01 33"
}

func New() *Adapter {
	return &Adapter{rpm: 800, speed: 0, coolant: 75}
}

func (a *Adapter) List() ([]string, error) {
	return []string{portName}, nil
}

func (a *Adapter) Open(endpoint string, baud int, timeout time.Duration) (transport.Handle, error) {
	if endpoint != portName {
		return nil, fmt.Errorf("no such port: %s", endpoint)
	}
	return &handle{adapter: a}, nil
}

type handle struct {
	adapter *Adapter
	mu      sync.Mutex
	pending []byte
	closed  bool
}

func (h *handle) Write(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0, errors.New("port closed")
	}
	cmd := strings.TrimRight(string(p), "\r\n")
	h.pending = append(h.pending, h.adapter.respond(cmd)...)
	return len(p), nil
}

func (h *handle) ReadAvailable() ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, errors.New("port closed")
	}
	out := h.pending
	h.pending = nil
	return out, nil
}

func (h *handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

func (a *Adapter) respond(cmd string) []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.step()

	var body string
	switch cmd {
	case "ATZ":
		body = "ELM327 v1.5"
	case "ATE0", "ATL0", "ATH0", "ATS0":
		body = "OK"
	case "010C":
		v := a.rpm * 4
		body = fmt.Sprintf("41 0C %02X %02X", v/256, v%256)
	case "010D":
		body = fmt.Sprintf("41 0D %02X", a.speed)
	case "0105":
		body = fmt.Sprintf("41 05 %02X", a.coolant+40)
	case "03":
		if len(a.dtcs) == 0 {
			body = "43 00 00"
		} else {
			body = "43 " + strings.Join(a.dtcs, " ")
		}
	default:
		body = "?"
	}
	return []byte(body + "\r\n>")
}

// step random-walks the simulated vehicle within plausible bounds.
func (a *Adapter) step() {
	a.rpm = clamp(a.rpm+rand.Intn(201)-100, 600, 4000)
	a.speed = clamp(a.speed+rand.Intn(11)-5, 0, 130)
	a.coolant = clamp(a.coolant+rand.Intn(3)-1, 60, 110)

	if rand.Float32() < 0.02 {
		// P-code: top two bits zero
		a.dtcs = append(a.dtcs, fmt.Sprintf("%02X %02X", rand.Intn(0x40), rand.Intn(256)))
	}
	if len(a.dtcs) > 0 && rand.Float32() < 0.01 {
		a.dtcs = a.dtcs[1:]
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
