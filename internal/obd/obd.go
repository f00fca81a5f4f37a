// Package obd talks to an ELM327-style OBD-II adapter over a serial link:
// finding the port it is attached to, keeping the connection alive across
// unplugs, and decoding the adapter's hex responses into physical values.
package obd

import "time"

const (
	CommandReset        = "ATZ"
	CommandEchoOff      = "ATE0"
	CommandLineFeedsOff = "ATL0"
	CommandHeadersOff   = "ATH0"
	CommandSpacesOff    = "ATS0"
	CommandReadDTCs     = "03"

	CR = "\r"
)

// Timing knobs. Vars rather than consts so tests can compress them.
var (
	// settleInterval is the pause between writing a command and reading
	// the adapter's buffered answer.
	settleInterval = 1 * time.Second
	// reconnectPeriod paces the supervisor's reconnect loop.
	reconnectPeriod = 5 * time.Second
	// pollInterval paces the PID polling loop.
	pollInterval = 2 * time.Second
)

// Commander is the command/response surface the polling layer runs on.
// *Supervisor satisfies it.
type Commander interface {
	SendCommand(cmd string) string
	Connected() bool
	Shutdown()
}
