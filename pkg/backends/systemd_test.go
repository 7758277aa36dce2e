package backends

import (
	"testing"

	"github.com/hearthd/hearth/pkg/engine"
)

func TestParseEnabledState(t *testing.T) {
	cases := []struct {
		state string
		want  engine.Flag
	}{
		{"enabled", engine.FlagOn},
		{"enabled-runtime", engine.FlagOn},
		{"disabled", engine.FlagOff},
		{"static", engine.FlagOff},
		{"indirect", engine.FlagOff},
		{"masked", engine.FlagOff},
		{"alias", engine.FlagUnknown},
		{"", engine.FlagUnknown},
	}
	for _, tc := range cases {
		if got := parseEnabledState(tc.state); got != tc.want {
			t.Errorf("parseEnabledState(%q): expected %s, got %s", tc.state, tc.want, got)
		}
	}
}

func TestParseActiveState(t *testing.T) {
	cases := []struct {
		state string
		want  engine.Flag
	}{
		{"active", engine.FlagOn},
		{"activating", engine.FlagOn},
		{"reloading", engine.FlagOn},
		{"inactive", engine.FlagOff},
		{"deactivating", engine.FlagOff},
		{"failed", engine.FlagOff},
		{"weird", engine.FlagUnknown},
		{"", engine.FlagUnknown},
	}
	for _, tc := range cases {
		if got := parseActiveState(tc.state); got != tc.want {
			t.Errorf("parseActiveState(%q): expected %s, got %s", tc.state, tc.want, got)
		}
	}
}
