package traffic

import "strings"

// StateSize is the number of symbols in a perceived state.
const StateSize = 4

// State is the perceived state of the agent: an ordered tuple of symbols.
// Learners treat it as an opaque comparable key.
type State [StateSize]string

// NewState builds the standard perception tuple.
func NewState(light Light, oncoming, left, waypoint Action) State {
	return State{light.String(), oncoming.String(), left.String(), waypoint.String()}
}

// Distance is the number of positions at which s and o differ.
func (s State) Distance(o State) int {
	d := 0
	for i := range s {
		if s[i] != o[i] {
			d++
		}
	}
	return d
}

func (s State) String() string {
	return "(" + strings.Join(s[:], ", ") + ")"
}

// symbolCodes gives every symbol an encoder can emit a small fixed integer.
var symbolCodes = map[string]int{
	"red":     0,
	"green":   1,
	"none":    0,
	"left":    1,
	"right":   2,
	"forward": 3,
	"false":   0,
	"true":    1,
}

// Code returns the numeric code of a state or action symbol. Unknown
// symbols encode as -1.
func Code(symbol string) int {
	if c, ok := symbolCodes[symbol]; ok {
		return c
	}
	return -1
}

// Numeric encodes the state followed by the action as float features.
func Numeric(s State, a Action) []float64 {
	x := make([]float64, 0, StateSize+1)
	for _, sym := range s {
		x = append(x, float64(Code(sym)))
	}
	return append(x, float64(Code(a.String())))
}
