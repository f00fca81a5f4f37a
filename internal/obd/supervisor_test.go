package obd

import (
	"errors"
	"slices"
	"testing"
	"time"

	"obdpoll/internal/obd/mock"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestSupervisorConnectsAndRecovers(t *testing.T) {
	defer goleak.VerifyNone(t)
	compressTime(t)

	tr := newFakeTransport()
	tr.setReply("/dev/ttyUSB0", "41 0C 1A F8\r\n>")
	ports := fakePorts{names: []string{"/dev/ttyUSB0"}}

	sup := NewSupervisor(tr, ports, 9600, 50*time.Millisecond)
	defer sup.Shutdown()

	require.Eventually(t, sup.Connected, 2*time.Second, 5*time.Millisecond)

	// the setup sequence ran, but never turned spaces off: the decoder
	// needs them as token separators
	require.Eventually(t, func() bool {
		return slices.Contains(tr.writesSnapshot(), CommandHeadersOff+CR)
	}, 2*time.Second, 5*time.Millisecond)
	writes := tr.writesSnapshot()
	require.Contains(t, writes, CommandEchoOff+CR)
	require.Contains(t, writes, CommandLineFeedsOff+CR)
	require.NotContains(t, writes, CommandSpacesOff+CR)

	resp := sup.SendCommand("010C")
	r := Parse(PIDEngineRPM, resp)
	require.NoError(t, r.Err)
	require.Equal(t, 1726.0, r.Value.Value)

	// kill the link; the session latches closed on the next command
	tr.setReadErr("/dev/ttyUSB0", errors.New("input/output error"))
	require.Equal(t, NoResponse, sup.SendCommand("010C"))
	require.Equal(t, NoResponse, sup.SendCommand("010C"))

	// reattach the adapter; the supervisor rebuilds a fresh session
	tr.setReadErr("/dev/ttyUSB0", nil)
	require.Eventually(t, func() bool {
		return sup.SendCommand("010C") != NoResponse
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSupervisorDisconnectedSendCommand(t *testing.T) {
	defer goleak.VerifyNone(t)
	compressTime(t)

	sup := NewSupervisor(newFakeTransport(), fakePorts{}, 9600, 50*time.Millisecond)
	defer sup.Shutdown()

	// no adapter anywhere: the call returns the sentinel without blocking
	start := time.Now()
	require.Equal(t, NoResponse, sup.SendCommand("010C"))
	require.Less(t, time.Since(start), time.Second)
	require.False(t, sup.Connected())
}

func TestSupervisorShutdownIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)
	compressTime(t)

	tr := newFakeTransport()
	tr.setReply("/dev/ttyUSB0", "ELM327 v1.5\r\n>")
	sup := NewSupervisor(tr, fakePorts{names: []string{"/dev/ttyUSB0"}}, 9600, 50*time.Millisecond)

	require.Eventually(t, sup.Connected, 2*time.Second, 5*time.Millisecond)

	sup.Shutdown()
	sup.Shutdown()
	require.False(t, sup.Connected())
	require.Equal(t, NoResponse, sup.SendCommand("010C"))
}

func TestSupervisorWithMockAdapter(t *testing.T) {
	defer goleak.VerifyNone(t)
	compressTime(t)

	adapter := mock.New()
	sup := NewSupervisor(adapter, adapter, 9600, 50*time.Millisecond)
	defer sup.Shutdown()

	require.Eventually(t, sup.Connected, 2*time.Second, 5*time.Millisecond)

	r := Parse(PIDEngineRPM, sup.SendCommand(PIDEngineRPM.String()))
	require.NoError(t, r.Err)
	require.InDelta(t, 2300, r.Value.Value, 1700) // simulator walks 600..4000

	r = Parse(PIDCoolantTemp, sup.SendCommand(PIDCoolantTemp.String()))
	require.NoError(t, r.Err)
	require.InDelta(t, 85, r.Value.Value, 25) // 60..110
}
