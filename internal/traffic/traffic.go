package traffic

import "fmt"

// Action is a move an agent can take at an intersection.
type Action int

const (
	None Action = iota
	Forward
	Left
	Right
)

// Actions lists every action in a fixed order. Tie-breaking and random
// choice iterate over this slice, so the order is part of the behavior.
var Actions = [...]Action{None, Forward, Left, Right}

func (a Action) String() string {
	switch a {
	case None:
		return "none"
	case Forward:
		return "forward"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// ParseAction is the inverse of Action.String.
func ParseAction(s string) (Action, error) {
	for _, a := range Actions {
		if a.String() == s {
			return a, nil
		}
	}
	return None, fmt.Errorf("unknown action %q", s)
}

// Light is the color of the traffic light facing the agent.
type Light int

const (
	Red Light = iota
	Green
)

func (l Light) String() string {
	if l == Green {
		return "green"
	}
	return "red"
}

// Inputs is what an agent senses at its current intersection.
type Inputs struct {
	Light    Light  `json:"light"`
	Oncoming Action `json:"oncoming"`
	Left     Action `json:"left"`
	Right    Action `json:"right"`
}

// Clear reports whether no oncoming or left traffic constrains the agent.
// Traffic from the right never restricts a move.
func (in Inputs) Clear() bool {
	return in.Oncoming == None && in.Left == None
}

func (in Inputs) String() string {
	return fmt.Sprintf("light: %s, oncoming: %s, left: %s", in.Light, in.Oncoming, in.Left)
}

// Legal reports whether action may be taken given the inputs: forward needs
// a green light, a right turn on red yields to traffic coming from the left,
// and a left turn yields to oncoming traffic going forward or right.
func Legal(in Inputs, action Action) bool {
	switch action {
	case Forward:
		return in.Light == Green
	case Left:
		return in.Light == Green && in.Oncoming != Forward && in.Oncoming != Right
	case Right:
		return in.Light == Green || in.Left != Forward
	default:
		return true
	}
}
