package command

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"imxnn/config"
	"imxnn/gstpipeline"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrCommand = errors.New("invalid command")

type CommandType string

const (
	// SetPerf switches the measurements shown by the perf overlay.
	SetPerf CommandType = "setPerf"
	// Stop ends the application as SIGINT does.
	Stop CommandType = "stop"
)

// Command is sent by preview clients on the results websocket.
type Command struct {
	Type CommandType `json:"type"`
	// Perf is one of none, time, freq or all.
	Perf string `json:"perf,omitempty"`
}

func Unmarshal(raw []byte) (*Command, error) {
	cmd := &Command{}
	if err := json.Unmarshal(raw, cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCommand, err)
	}
	switch cmd.Type {
	case SetPerf:
		if _, err := ParsePerf(cmd.Perf); err != nil {
			return nil, err
		}
	case Stop:
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrCommand, cmd.Type)
	}
	return cmd, nil
}

func ParsePerf(s string) (gstpipeline.Perf, error) {
	d, err := config.ParsePerfDisplay(s)
	if err != nil {
		return gstpipeline.Perf{}, fmt.Errorf("%w: %v", ErrCommand, err)
	}
	return d.Perf(), nil
}
