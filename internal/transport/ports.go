package transport

import (
	bugst "go.bug.st/serial"
)

// HostPorts enumerates the serial devices attached to the host.
// tarm/serial cannot enumerate, so listing goes through go.bug.st/serial.
type HostPorts struct{}

func NewHostPorts() HostPorts {
	return HostPorts{}
}

func (HostPorts) List() ([]string, error) {
	return bugst.GetPortsList()
}
