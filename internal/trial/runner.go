package trial

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"

	"github.com/google/uuid"
	"github.com/logrusorgru/aurora"

	"smartcab-rl/internal/agent"
	"smartcab-rl/internal/buffer"
	"smartcab-rl/internal/policy"
	"smartcab-rl/internal/world"
)

const defaultTrials = 100

// Summary is the result of one simulation: a fresh agent driving Trials
// trips in a fresh world.
type Summary struct {
	RunID    string `json:"run_id"`
	Strategy string `json:"strategy"`
	Encoder  string `json:"encoder"`
	Seed     int64  `json:"seed"`
	Trials   int    `json:"trials"`
	Steps    int    `json:"steps"`
	agent.Metrics
}

// Runner drives one simulation.
type Runner struct {
	RunID    string
	Trials   int
	Seed     int64
	World    world.Config
	Strategy policy.Config
	Encoder  string

	// History, when set, receives every penalised step.
	History *buffer.History
	// Observe, when set, is called with the running summary after each trial.
	Observe func(Summary)

	Verbose bool
	Color   bool
}

// NewRunner returns a runner with the default world and strategy.
func NewRunner(seed int64) *Runner {
	return &Runner{
		Trials:   defaultTrials,
		Seed:     seed,
		World:    world.DefaultConfig(),
		Strategy: policy.DefaultConfig(),
		Encoder:  "sensed",
	}
}

func (r *Runner) Run(ctx context.Context) (Summary, error) {
	if r.Trials <= 0 {
		return Summary{}, errors.New("trials must be > 0")
	}
	strategy, err := policy.New(r.Strategy)
	if err != nil {
		return Summary{}, err
	}
	encoder, err := agent.NewEncoder(r.Encoder)
	if err != nil {
		return Summary{}, err
	}
	rng := rand.New(rand.NewSource(r.Seed))
	env, err := world.New(r.World, rng)
	if err != nil {
		return Summary{}, err
	}
	cab := agent.New(env, strategy, encoder, rng.Int63())
	env.SetPrimary(cab)

	runID := r.RunID
	if runID == "" {
		runID = uuid.New().String()
	}
	summary := Summary{
		RunID:    runID,
		Strategy: strategy.Name(),
		Encoder:  r.Encoder,
		Seed:     r.Seed,
	}
	au := aurora.NewAurora(r.Color)

	for i := 0; i < r.Trials; i++ {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		trip, err := env.Reset()
		if err != nil {
			return summary, err
		}
		for {
			step, done := env.Step()
			if step.Penalty() && r.History != nil {
				step.RunID = runID
				r.History.Record(step)
			}
			if done {
				break
			}
		}

		out := env.Outcome()
		if out.Reached {
			cab.Arrive(out.Deadline)
		} else {
			cab.Fail()
		}
		summary.Trials++
		summary.Steps += out.Steps
		summary.Metrics = cab.Metrics

		if r.Verbose {
			logTrial(au, i, trip, out)
		}
		if r.Observe != nil {
			r.Observe(summary)
		}
	}
	return summary, nil
}

func logTrial(au aurora.Aurora, i int, trip world.Trip, out world.Outcome) {
	if out.Reached {
		log.Printf("trial %d: %s %v -> %v in %d steps, %d left",
			i, au.Green("reached"), trip.Start, trip.Destination, out.Steps, out.Deadline)
		return
	}
	log.Printf("trial %d: %s %v -> %v after %d steps",
		i, au.Red("failed"), trip.Start, trip.Destination, out.Steps)
}

// LogPenalties prints the penalised steps kept in h.
func LogPenalties(h *buffer.History, color bool) {
	au := aurora.NewAurora(color)
	for _, item := range h.Items() {
		s := item.Step
		msg := fmt.Sprintf("run %s trial %d t=%d: %s, waypoint: %s, action: %s, reward: %g",
			s.RunID, s.Trial, s.Time, s.Inputs, s.Waypoint, s.Action, s.Reward)
		if s.Inputs.Clear() {
			log.Print(au.Yellow(msg))
			continue
		}
		log.Print(msg)
	}
}
