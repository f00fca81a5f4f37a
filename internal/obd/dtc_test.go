package obd_test

import (
	"testing"

	"obdpoll/internal/obd"

	"github.com/stretchr/testify/require"
)

type stubCommander struct {
	resp      string
	connected bool
}

func (s stubCommander) SendCommand(string) string { return s.resp }
func (s stubCommander) Connected() bool           { return s.connected }
func (s stubCommander) Shutdown()                 {}

func TestQueryDTCs(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		scenario string
		resp     string
		ok       bool
		codes    []string
	}{
		{"single code", "43 01 33 00 00", true, []string{"P0133"}},
		{"two codes", "43 01 33 01 34", true, []string{"P0133", "P0134"}},
		{"network code", "43 C1 55", true, []string{"U0155"}},
		{"chassis code", "43 41 00", true, []string{"C0100"}},
		// padding-only frame is a real answer: zero stored codes
		{"zero codes", "43 00 00", true, nil},
		{"zero codes padded", "43 00 00 00 00", true, nil},
		{"no data", "NO DATA", false, nil},
		{"empty", "", false, nil},
		{"sentinel", obd.NoResponse, false, nil},
		{"garbage", "ELM327 v1.5", false, nil},
	}

	for _, tt := range testCases {
		tt := tt
		t.Run(tt.scenario, func(t *testing.T) {
			t.Parallel()
			entries, ok := obd.QueryDTCs(stubCommander{resp: tt.resp})
			require.Equal(t, tt.ok, ok)
			require.Len(t, entries, len(tt.codes))
			for i, code := range tt.codes {
				require.Equal(t, code, entries[i].Code)
				require.NotEmpty(t, entries[i].Description)
			}
		})
	}
}

func TestQueryDTCsDescriptions(t *testing.T) {
	t.Parallel()

	// P0300: first byte 0x03, second 0x00
	entries, ok := obd.QueryDTCs(stubCommander{resp: "43 03 00"})
	require.True(t, ok)
	require.Equal(t, "P0300", entries[0].Code)
	require.Equal(t, "Random/Multiple Cylinder Misfire Detected", entries[0].Description)

	entries, ok = obd.QueryDTCs(stubCommander{resp: "43 7F FF"})
	require.True(t, ok)
	require.Equal(t, "Unknown DTC", entries[0].Description)
}
