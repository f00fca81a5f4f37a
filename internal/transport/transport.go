// Package transport wraps the host serial layer behind small capabilities:
// opening a port on a named endpoint and listing candidate endpoints.
package transport

import "time"

// Handle is one open serial connection.
type Handle interface {
	Write(p []byte) (int, error)
	// ReadAvailable drains whatever bytes arrived within the port's read
	// timeout. An empty slice with a nil error means nothing answered.
	ReadAvailable() ([]byte, error)
	Close() error
}

// Transport opens serial connections on named endpoints.
type Transport interface {
	Open(endpoint string, baud int, timeout time.Duration) (Handle, error)
}

// Ports lists the candidate serial endpoints present on the host.
type Ports interface {
	List() ([]string, error)
}
