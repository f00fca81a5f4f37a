package obd

import "fmt"

type PID struct {
	Mode string
	Code string
	Desc string
}

var (
	PIDCoolantTemp  = PID{Mode: "01", Code: "05", Desc: "Engine Coolant Temperature"}
	PIDEngineRPM    = PID{Mode: "01", Code: "0C", Desc: "Engine RPM"}
	PIDVehicleSpeed = PID{Mode: "01", Code: "0D", Desc: "Vehicle Speed"}
)

// polledPIDs is the standard query set, in display order.
var polledPIDs = []PID{PIDEngineRPM, PIDVehicleSpeed, PIDCoolantTemp}

func (p PID) String() string {
	return fmt.Sprintf("%s%s", p.Mode, p.Code)
}
