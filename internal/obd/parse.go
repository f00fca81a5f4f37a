package obd

import (
	"fmt"
	"strconv"
	"strings"
)

// decoder turns the data bytes of an echoed response into a physical value.
// dataBytes is how many two-hex-digit tokens must follow the echoed mode
// and PID bytes.
type decoder struct {
	dataBytes int
	decode    func(data []byte) Quantity
}

// decoders maps a PID's command text to its decode rule. Adding support for
// a new PID means adding one entry here.
var decoders = map[string]decoder{
	PIDEngineRPM.String(): {
		dataBytes: 2,
		decode: func(data []byte) Quantity {
			return Quantity{Value: float64(int(data[0])*256+int(data[1])) / 4, Unit: "RPM"}
		},
	},
	PIDVehicleSpeed.String(): {
		dataBytes: 1,
		decode: func(data []byte) Quantity {
			return Quantity{Value: float64(data[0]), Unit: "km/h"}
		},
	},
	PIDCoolantTemp.String(): {
		// The -40 offset is fixed by the OBD-II encoding.
		dataBytes: 1,
		decode: func(data []byte) Quantity {
			return Quantity{Value: float64(data[0]) - 40, Unit: "°C"}
		},
	},
}

// Parse decodes one raw adapter response for the given PID. Responses look
// like "41 0C 1A F8": echoed mode byte, echoed PID byte, then data bytes.
// Parse is total: every input yields either a value or a descriptive error.
func Parse(pid PID, raw string) Reading {
	r := Reading{PID: pid, Raw: raw}

	dec, ok := decoders[pid.String()]
	if !ok {
		r.Err = fmt.Errorf("unsupported PID: %s", pid)
		return r
	}

	// Fields treats CR/LF as separators, so the trailing ">" prompt ends
	// up as its own token instead of fusing onto the last data byte.
	tokens := strings.Fields(raw)
	if len(tokens) < 2+dec.dataBytes {
		r.Err = fmt.Errorf("no valid %s data in %q", pid.Desc, raw)
		return r
	}
	if !strings.EqualFold(tokens[1], pid.Code) {
		r.Err = fmt.Errorf("response echoes PID %s, want %s", tokens[1], pid.Code)
		return r
	}

	data := make([]byte, dec.dataBytes)
	for i := range data {
		b, err := parseHexByte(tokens[2+i])
		if err != nil {
			r.Err = err
			return r
		}
		data[i] = b
	}

	v := dec.decode(data)
	r.Value = &v
	return r
}

func parseHexByte(tok string) (byte, error) {
	v, err := strconv.ParseUint(tok, 16, 8)
	if err != nil {
		return 0, fmt.Errorf("bad hex byte %q", tok)
	}
	return byte(v), nil
}
