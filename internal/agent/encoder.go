package agent

import (
	"fmt"
	"strconv"

	"smartcab-rl/internal/traffic"
)

// Encoder builds the perceived state from what the agent senses and the
// planner's suggested move.
type Encoder interface {
	Encode(in traffic.Inputs, waypoint traffic.Action) traffic.State
}

// SensedEncoder keeps the raw inputs: (light, oncoming, left, waypoint).
type SensedEncoder struct{}

func (SensedEncoder) Encode(in traffic.Inputs, waypoint traffic.Action) traffic.State {
	return traffic.NewState(in.Light, in.Oncoming, in.Left, waypoint)
}

// LegalMovesEncoder folds the inputs into which moves are currently legal:
// (forward ok, right ok, left ok, waypoint). The state space shrinks from
// 128 to 24 states.
type LegalMovesEncoder struct{}

func (LegalMovesEncoder) Encode(in traffic.Inputs, waypoint traffic.Action) traffic.State {
	return traffic.State{
		strconv.FormatBool(traffic.Legal(in, traffic.Forward)),
		strconv.FormatBool(traffic.Legal(in, traffic.Right)),
		strconv.FormatBool(traffic.Legal(in, traffic.Left)),
		waypoint.String(),
	}
}

// NewEncoder returns the encoder called name: "sensed" or "legal".
func NewEncoder(name string) (Encoder, error) {
	switch name {
	case "", "sensed":
		return SensedEncoder{}, nil
	case "legal":
		return LegalMovesEncoder{}, nil
	default:
		return nil, fmt.Errorf("unknown state encoder %q", name)
	}
}
