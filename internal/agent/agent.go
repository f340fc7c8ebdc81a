package agent

import (
	"smartcab-rl/internal/planner"
	"smartcab-rl/internal/policy"
	"smartcab-rl/internal/traffic"
)

// Environment is the world an agent drives in.
type Environment interface {
	Sense(a *Agent) traffic.Inputs
	Deadline(a *Agent) int
	Act(a *Agent, action traffic.Action) float64

	Location(a *Agent) planner.Point
	Heading(a *Agent) planner.Point
	Dims() planner.Point
}

// Step is one completed decision.
type Step struct {
	// RunID names the simulation the step belongs to; the agent leaves it
	// empty and trial runners fill it in.
	RunID    string         `json:"run_id,omitempty"`
	Trial    int            `json:"trial"`
	Tick     int            `json:"tick"`
	Time     int            `json:"time"`
	Deadline int            `json:"deadline"`
	Inputs   traffic.Inputs `json:"inputs"`
	State    traffic.State  `json:"state"`
	Waypoint traffic.Action `json:"waypoint"`
	Action   traffic.Action `json:"action"`
	Reward   float64        `json:"reward"`
}

// Penalty reports whether the step was punished.
func (s Step) Penalty() bool { return s.Reward < 0 }

// Agent is a learning cab. Its value table, decision counter and metrics
// outlive individual trips.
type Agent struct {
	env      Environment
	planner  *planner.Planner
	strategy policy.Strategy
	encoder  Encoder
	memory   *policy.Memory

	Metrics Metrics

	trial    int
	waypoint traffic.Action
}

func New(env Environment, strategy policy.Strategy, encoder Encoder, seed int64) *Agent {
	if encoder == nil {
		encoder = SensedEncoder{}
	}
	a := &Agent{
		env:      env,
		strategy: strategy,
		encoder:  encoder,
		memory:   policy.NewMemory(seed),
		trial:    -1,
		waypoint: traffic.Forward,
	}
	a.planner = planner.New(a)
	return a
}

// Location, Heading and Dims make the agent a planner.Locator.
func (a *Agent) Location() planner.Point { return a.env.Location(a) }
func (a *Agent) Heading() planner.Point  { return a.env.Heading(a) }
func (a *Agent) Dims() planner.Point     { return a.env.Dims() }

// Reset starts a new trip toward destination.
func (a *Agent) Reset(destination planner.Point) {
	a.trial++
	a.planner.RouteTo(destination)
	a.waypoint = a.planner.NextWaypoint()
}

// Update runs one decision: plan, sense, choose, act and learn.
func (a *Agent) Update(tick int) Step {
	a.waypoint = a.planner.NextWaypoint()
	in := a.env.Sense(a)
	deadline := a.env.Deadline(a)

	t := a.memory.Tick()
	state := a.encoder.Encode(in, a.waypoint)
	action := a.strategy.Select(a.memory, state)
	reward := a.env.Act(a, action)

	step := Step{
		Trial:    a.trial,
		Tick:     tick,
		Time:     t,
		Deadline: deadline,
		Inputs:   in,
		State:    state,
		Waypoint: a.waypoint,
		Action:   action,
		Reward:   reward,
	}
	a.Metrics.observe(step)
	a.strategy.Update(a.memory, state, action, reward)
	a.Metrics.TableSize = a.memory.Values.Len()
	return step
}

// Waypoint is the planner's most recent suggestion.
func (a *Agent) Waypoint() traffic.Action { return a.waypoint }

// Trial is the zero-based index of the current trip, -1 before the first.
func (a *Agent) Trial() int { return a.trial }

// Time is the number of decisions taken so far.
func (a *Agent) Time() int { return a.memory.Time }

func (a *Agent) Memory() *policy.Memory { return a.memory }

// Arrive records a trip that reached its destination with timeLeft steps
// to spare.
func (a *Agent) Arrive(timeLeft int) {
	a.Metrics.DestinationsReached++
	a.Metrics.SumTimeLeft += timeLeft
}

// Fail records a trip that ran out of time.
func (a *Agent) Fail() {
	a.Metrics.LastFailedTrial = a.trial
}
