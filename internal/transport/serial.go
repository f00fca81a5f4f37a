package transport

import (
	"errors"
	"io"
	"time"

	"github.com/tarm/serial"
)

// Serial is the real Transport over the host's serial devices.
type Serial struct{}

func NewSerial() Serial {
	return Serial{}
}

func (Serial) Open(endpoint string, baud int, timeout time.Duration) (Handle, error) {
	cfg := &serial.Config{
		Name:        endpoint,
		Baud:        baud,
		ReadTimeout: timeout,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
	}
	p, err := serial.OpenPort(cfg)
	if err != nil {
		return nil, err
	}
	return &serialHandle{port: p}, nil
}

type serialHandle struct {
	port *serial.Port
}

func (h *serialHandle) Write(p []byte) (int, error) {
	return h.port.Write(p)
}

// ReadAvailable reads until the port's ReadTimeout window closes with no
// data. tarm/serial signals an exhausted window as io.EOF or a zero-length
// read depending on platform; both mean "drained", not a dead link.
func (h *serialHandle) ReadAvailable() ([]byte, error) {
	var out []byte
	buf := make([]byte, 256)
	for {
		n, err := h.port.Read(buf)
		out = append(out, buf[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return out, err
		}
		if n == 0 {
			return out, nil
		}
	}
}

func (h *serialHandle) Close() error {
	return h.port.Close()
}
