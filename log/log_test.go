package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
	}{
		{"trace", "trace"},
		{"DEBUG", "debug"},
		{"Info", "info"},
		{"warning", "warn"},
		{"error", "error"},
		{"crit", "crit"},
	} {
		lvl, err := ParseLevel(tc.in)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", tc.in, err)
		}
		if got := LevelString(lvl); got != tc.want {
			t.Errorf("ParseLevel(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Errorf("ParseLevel(loud) should fail")
	}
}

func TestModuleFilter(t *testing.T) {
	var buf bytes.Buffer
	old := Root()
	SetDefault(NewLogger(NewTerminalHandlerWithLevel(&buf, LevelTrace, false)))
	defer SetDefault(old)

	DisableModule(VecMonitoring)
	Trace(VecMonitoring, "should be filtered")
	if buf.Len() != 0 {
		t.Fatalf("disabled module produced output: %q", buf.String())
	}

	EnableModule(VecMonitoring)
	defer DisableModule(VecMonitoring)
	Trace(VecMonitoring, "vector allocated", "vector", 64)
	out := buf.String()
	if !strings.Contains(out, "vector allocated") || !strings.Contains(out, "vector=64") {
		t.Fatalf("unexpected output: %q", out)
	}
}
