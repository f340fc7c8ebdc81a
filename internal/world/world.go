package world

import (
	"errors"
	"fmt"
	"math/rand"

	"smartcab-rl/internal/agent"
	"smartcab-rl/internal/planner"
	"smartcab-rl/internal/traffic"
)

const (
	defaultWidth          = 8
	defaultHeight         = 6
	defaultDummies        = 3
	defaultMinPeriod      = 3
	defaultMaxPeriod      = 5
	defaultDeadlineFactor = 5
	defaultMinDistance    = 4
	defaultHardLimit      = -100

	arrivalBonus = 10.0
)

var ErrNoPrimary = errors.New("no primary agent")

type Config struct {
	Width          int  `json:"width"`
	Height         int  `json:"height"`
	Dummies        int  `json:"dummies"`
	MinPeriod      int  `json:"min_period"`
	MaxPeriod      int  `json:"max_period"`
	DeadlineFactor int  `json:"deadline_factor"`
	MinDistance    int  `json:"min_distance"`
	Enforce        bool `json:"enforce_deadline"`
	// HardLimit ends a trip whose deadline has fallen this far below zero
	// when deadlines are not enforced.
	HardLimit int `json:"hard_limit"`
}

func DefaultConfig() Config {
	return Config{
		Width:          defaultWidth,
		Height:         defaultHeight,
		Dummies:        defaultDummies,
		MinPeriod:      defaultMinPeriod,
		MaxPeriod:      defaultMaxPeriod,
		DeadlineFactor: defaultDeadlineFactor,
		MinDistance:    defaultMinDistance,
		Enforce:        true,
		HardLimit:      defaultHardLimit,
	}
}

func (c Config) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("grid must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.MinPeriod <= 0 || c.MaxPeriod < c.MinPeriod {
		return fmt.Errorf("light period range [%d, %d] is invalid", c.MinPeriod, c.MaxPeriod)
	}
	if c.Dummies < 0 {
		return errors.New("dummies must be >= 0")
	}
	if c.DeadlineFactor <= 0 {
		return errors.New("deadline factor must be > 0")
	}
	if c.MinDistance < 1 {
		return fmt.Errorf("min distance must be >= 1, got %d", c.MinDistance)
	}
	// The farthest two intersections are (w-1)+(h-1) apart.
	if c.MinDistance > c.Width+c.Height-2 {
		return fmt.Errorf("min distance %d does not fit a %dx%d grid", c.MinDistance, c.Width, c.Height)
	}
	return nil
}

// light is the signal at one intersection. When northSouth is set, traffic
// moving along the y axis has green.
type light struct {
	northSouth  bool
	period      int
	lastChanged int
}

func (l *light) update(t int) {
	if t-l.lastChanged >= l.period {
		l.northSouth = !l.northSouth
		l.lastChanged = t
	}
}

func (l *light) colorFor(heading planner.Point) traffic.Light {
	if l.northSouth == (heading.Y != 0) {
		return traffic.Green
	}
	return traffic.Red
}

type vehicle struct {
	pos      planner.Point
	heading  planner.Point
	waypoint traffic.Action
}

// Outcome describes how a trip ended.
type Outcome struct {
	Done     bool `json:"done"`
	Reached  bool `json:"reached"`
	Deadline int  `json:"deadline"`
	Steps    int  `json:"steps"`
}

// Trip is the setup of one trial.
type Trip struct {
	Start       planner.Point `json:"start"`
	Heading     planner.Point `json:"heading"`
	Destination planner.Point `json:"destination"`
	Deadline    int           `json:"deadline"`
}

// World is a toroidal grid of signalled intersections with one learning
// agent and a few dummy cars.
type World struct {
	cfg  Config
	Rand *rand.Rand

	lights  []light
	dummies []*vehicle

	primary  *agent.Agent
	car      vehicle
	dest     planner.Point
	deadline int

	t       int
	outcome Outcome
}

func New(cfg Config, rng *rand.Rand) (*World, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("world config: %w", err)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	w := &World{
		cfg:    cfg,
		Rand:   rng,
		lights: make([]light, cfg.Width*cfg.Height),
	}
	for i := 0; i < cfg.Dummies; i++ {
		w.dummies = append(w.dummies, &vehicle{})
	}
	return w, nil
}

// SetPrimary registers the agent whose trips the world scores.
func (w *World) SetPrimary(a *agent.Agent) { w.primary = a }

func (w *World) lightAt(p planner.Point) *light {
	return &w.lights[p.Y*w.cfg.Width+p.X]
}

func (w *World) randomPoint() planner.Point {
	return planner.Point{X: w.Rand.Intn(w.cfg.Width), Y: w.Rand.Intn(w.cfg.Height)}
}

func (w *World) randomHeading() planner.Point {
	return planner.Headings[w.Rand.Intn(len(planner.Headings))]
}

// Reset starts a new trip for the primary agent.
func (w *World) Reset() (Trip, error) {
	if w.primary == nil {
		return Trip{}, ErrNoPrimary
	}
	w.t = 0
	for i := range w.lights {
		l := &w.lights[i]
		l.northSouth = w.Rand.Intn(2) == 1
		l.period = w.cfg.MinPeriod + w.Rand.Intn(w.cfg.MaxPeriod-w.cfg.MinPeriod+1)
		l.lastChanged = 0
	}

	start := w.randomPoint()
	dest := w.randomPoint()
	for start.Manhattan(dest) < w.cfg.MinDistance {
		start = w.randomPoint()
		dest = w.randomPoint()
	}
	w.car = vehicle{pos: start, heading: w.randomHeading()}
	w.dest = dest
	w.deadline = start.Manhattan(dest) * w.cfg.DeadlineFactor
	w.outcome = Outcome{Deadline: w.deadline}

	for _, d := range w.dummies {
		*d = vehicle{pos: w.randomPoint(), heading: w.randomHeading()}
	}

	w.primary.Reset(dest)
	w.car.waypoint = w.primary.Waypoint()
	return Trip{Start: start, Heading: w.car.heading, Destination: dest, Deadline: w.deadline}, nil
}

// Step advances the world by one tick and reports whether the trip is over.
func (w *World) Step() (agent.Step, bool) {
	if w.primary == nil || w.outcome.Done {
		return agent.Step{}, true
	}
	for i := range w.lights {
		w.lights[i].update(w.t)
	}
	for _, d := range w.dummies {
		d.waypoint = traffic.Actions[1+w.Rand.Intn(len(traffic.Actions)-1)]
	}

	step := w.primary.Update(w.t)
	w.car.waypoint = w.primary.Waypoint()

	for _, d := range w.dummies {
		in := w.sense(d)
		if traffic.Legal(in, d.waypoint) {
			w.move(d, d.waypoint)
		}
	}

	w.t++
	w.outcome.Steps = w.t
	if !w.outcome.Done {
		switch {
		case w.deadline <= w.cfg.HardLimit:
			w.outcome.Done = true
		case w.cfg.Enforce && w.deadline <= 0:
			w.outcome.Done = true
		}
		w.outcome.Deadline = w.deadline
		w.deadline--
	}
	return step, w.outcome.Done
}

// Outcome reports the state of the current trip.
func (w *World) Outcome() Outcome { return w.outcome }

func (w *World) Time() int { return w.t }

func (w *World) move(v *vehicle, action traffic.Action) {
	switch action {
	case traffic.Left:
		v.heading = v.heading.TurnLeft()
	case traffic.Right:
		v.heading = v.heading.TurnRight()
	case traffic.None:
		return
	}
	v.pos = v.pos.Add(v.heading).Wrap(w.Dims())
}

// sense reports the light facing v and the intentions of every other car
// at its intersection that is not travelling the same way.
func (w *World) sense(v *vehicle) traffic.Inputs {
	in := traffic.Inputs{Light: w.lightAt(v.pos).colorFor(v.heading)}
	others := make([]*vehicle, 0, len(w.dummies)+1)
	if v != &w.car && w.primary != nil {
		others = append(others, &w.car)
	}
	for _, d := range w.dummies {
		if d != v {
			others = append(others, d)
		}
	}
	for _, o := range others {
		if o.pos != v.pos || o.heading == v.heading {
			continue
		}
		switch {
		case o.heading.X == -v.heading.X && o.heading.Y == -v.heading.Y:
			if in.Oncoming != traffic.Left {
				in.Oncoming = o.waypoint
			}
		case o.heading == v.heading.TurnLeft():
			// Moving toward our left side means arriving from our right.
			if in.Right != traffic.Forward && in.Right != traffic.Left {
				in.Right = o.waypoint
			}
		default:
			if in.Left != traffic.Forward {
				in.Left = o.waypoint
			}
		}
	}
	return in
}

func (w *World) isPrimary(a *agent.Agent) bool { return a != nil && a == w.primary }

// Sense implements agent.Environment.
func (w *World) Sense(a *agent.Agent) traffic.Inputs {
	if !w.isPrimary(a) {
		return traffic.Inputs{}
	}
	return w.sense(&w.car)
}

// Deadline implements agent.Environment.
func (w *World) Deadline(a *agent.Agent) int {
	if !w.isPrimary(a) {
		return 0
	}
	return w.deadline
}

// Act implements agent.Environment: it moves the primary agent if the
// action is legal and returns the reward.
func (w *World) Act(a *agent.Agent, action traffic.Action) float64 {
	if !w.isPrimary(a) {
		return 0
	}
	in := w.sense(&w.car)

	var reward float64
	switch {
	case !traffic.Legal(in, action):
		reward = -1
	case action == traffic.None:
		reward = 0
	default:
		w.move(&w.car, action)
		if action == a.Waypoint() {
			reward = 2
		} else {
			reward = -0.5
		}
	}

	if w.car.pos == w.dest && !w.outcome.Done {
		if w.deadline >= 0 {
			reward += arrivalBonus
		}
		w.outcome.Done = true
		w.outcome.Reached = true
		w.outcome.Deadline = w.deadline
	}
	return reward
}

// Location implements agent.Environment.
func (w *World) Location(a *agent.Agent) planner.Point {
	if !w.isPrimary(a) {
		return planner.Point{}
	}
	return w.car.pos
}

// Heading implements agent.Environment.
func (w *World) Heading(a *agent.Agent) planner.Point {
	if !w.isPrimary(a) {
		return planner.East
	}
	return w.car.heading
}

// Dims implements agent.Environment.
func (w *World) Dims() planner.Point {
	return planner.Point{X: w.cfg.Width, Y: w.cfg.Height}
}
