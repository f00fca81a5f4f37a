package obd

import "fmt"

// Quantity is a decoded physical value with its unit.
type Quantity struct {
	Value float64
	Unit  string
}

func (q Quantity) String() string {
	return fmt.Sprintf("%.1f %s", q.Value, q.Unit)
}

// Reading is the result of decoding one adapter response. After Parse,
// Err is set exactly when Value is not.
type Reading struct {
	PID   PID
	Raw   string
	Value *Quantity
	Err   error
}
