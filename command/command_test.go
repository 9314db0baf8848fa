package command

import (
	"errors"
	"testing"

	"imxnn/gstpipeline"
)

func TestUnmarshal(t *testing.T) {
	cmd, err := Unmarshal([]byte(`{"type":"setPerf","perf":"freq"}`))
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Type != SetPerf || cmd.Perf != "freq" {
		t.Errorf("unexpected command %+v", cmd)
	}
	if cmd, err = Unmarshal([]byte(`{"type":"stop"}`)); err != nil || cmd.Type != Stop {
		t.Errorf("got %+v, %v", cmd, err)
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	for _, raw := range []string{
		`{"type":"setServoValues"}`,
		`{"type":"setPerf","perf":"fast"}`,
		`{"type":`,
	} {
		if _, err := Unmarshal([]byte(raw)); !errors.Is(err, ErrCommand) {
			t.Errorf("%s: expected ErrCommand, got %v", raw, err)
		}
	}
}

func TestParsePerf(t *testing.T) {
	tests := map[string]gstpipeline.Perf{
		"none": {},
		"time": {Temporal: true},
		"freq": {Frequency: true},
		"all":  {Temporal: true, Frequency: true},
	}
	for s, want := range tests {
		got, err := ParsePerf(s)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("%s: expected %+v, got %+v", s, want, got)
		}
	}
}
