package obd

import (
	"fmt"
	"strings"
)

// DTCEntry is one diagnostic trouble code with a description when known.
type DTCEntry struct {
	Code        string
	Description string
}

// QueryDTCs issues a mode 03 request and decodes the stored trouble codes.
// ok is false when the adapter gave no usable answer; a well-formed "43"
// frame with only padding means "zero stored codes" and reports ok with an
// empty list, so callers can clear a previously shown fault.
func QueryDTCs(cmd Commander) ([]DTCEntry, bool) {
	return parseDTCResponse(cmd.SendCommand(CommandReadDTCs))
}

// parseDTCResponse decodes a "43 ..." mode 03 reply. Each code is two
// bytes: the top two bits of the first byte select the subsystem letter
// (P/C/B/U per SAE J2012), the remaining nibbles form the four digits.
func parseDTCResponse(line string) ([]DTCEntry, bool) {
	line = strings.TrimSpace(line)
	if line == "" || line == NoResponse {
		return nil, false
	}
	upper := strings.ToUpper(line)
	if strings.Contains(upper, "NO DATA") || strings.Contains(upper, "NODATA") {
		return nil, false
	}

	parts := strings.Fields(line)
	letters := [...]byte{'P', 'C', 'B', 'U'}
	var (
		results  []DTCEntry
		sawFrame bool
	)

	for i := 0; i < len(parts); i++ {
		if !strings.EqualFold(parts[i], "43") {
			continue
		}
		sawFrame = true
		for j := i + 1; j+1 < len(parts); j += 2 {
			a, err1 := parseHexByte(parts[j])
			b, err2 := parseHexByte(parts[j+1])
			if err1 != nil || err2 != nil {
				break
			}
			// 00 00 is padding, not a code
			if a == 0 && b == 0 {
				continue
			}
			code := fmt.Sprintf("%c%X%X%X%X",
				letters[(a&0xC0)>>6], (a&0x30)>>4, a&0x0F, (b&0xF0)>>4, b&0x0F)
			results = append(results, DTCEntry{Code: code, Description: describeDTC(code)})
		}
	}

	return results, sawFrame
}

var dtcDescriptions = map[string]string{
	"P0171": "System Too Lean (Bank 1)",
	"P0172": "System Too Rich (Bank 1)",
	"P0300": "Random/Multiple Cylinder Misfire Detected",
	"P0301": "Cylinder 1 Misfire Detected",
	"P0302": "Cylinder 2 Misfire Detected",
	"P0303": "Cylinder 3 Misfire Detected",
	"P0304": "Cylinder 4 Misfire Detected",
	"P0420": "Catalyst System Efficiency Below Threshold",
	"P0440": "Evaporative Emission Control System Malfunction",
	"P0455": "Evaporative Emission Control System Leak Detected (Large)",
	"P0500": "Vehicle Speed Sensor Malfunction",
	"U0100": "Lost Communication With ECM/PCM",
	"U0121": "Lost Communication With ABS Module",
}

func describeDTC(code string) string {
	if d, ok := dtcDescriptions[code]; ok {
		return d
	}
	return "Unknown DTC"
}
