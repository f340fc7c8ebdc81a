package policy

import (
	"errors"
	"fmt"
	"math/rand"

	"smartcab-rl/internal/qtable"
	"smartcab-rl/internal/traffic"
)

// ErrUnknownStrategy is returned by New for names it does not know.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Strategy turns a perceived state into an action and learns from the
// reward that action earned. Learned values and time live in Memory.
// Implementations may cache state derived from it, as Regression caches
// its fitted model, so a Strategy value serves a single agent.
type Strategy interface {
	Name() string
	Select(m *Memory, s traffic.State) traffic.Action
	Update(m *Memory, s traffic.State, a traffic.Action, reward float64)
}

// Memory is everything an agent has learned: its value table, the number
// of decisions taken so far and its random source.
type Memory struct {
	Values *qtable.Table
	Time   int
	Rand   *rand.Rand
}

func NewMemory(seed int64) *Memory {
	return &Memory{
		Values: qtable.New(),
		Rand:   rand.New(rand.NewSource(seed)),
	}
}

// Tick advances the decision counter. It must run before the step's
// selection and update so learning rates never divide by zero.
func (m *Memory) Tick() int {
	m.Time++
	return m.Time
}

func (m *Memory) rng() *rand.Rand {
	if m.Rand == nil {
		m.Rand = rand.New(rand.NewSource(1))
	}
	return m.Rand
}

func (m *Memory) time() int {
	if m.Time < 1 {
		return 1
	}
	return m.Time
}

// Schedule maps the decision count to a learning rate.
type Schedule func(t int) float64

// InverseTime is the 1/t schedule.
func InverseTime(t int) float64 {
	return 1.0 / float64(t)
}

// Scaled returns the 1/(1+k*t) schedule.
func Scaled(k float64) Schedule {
	return func(t int) float64 {
		return 1.0 / (1 + k*float64(t))
	}
}

// learn blends reward into the stored estimate for (s, a).
func learn(m *Memory, rate Schedule, s traffic.State, a traffic.Action, reward float64) {
	lr := rate(m.time())
	old := m.Values.Value(s, a, 0)
	m.Values.Set(s, a, (1-lr)*old+lr*reward)
}

// best returns every action whose value is maximal, in traffic.Actions order.
func best(value func(traffic.Action) float64) []traffic.Action {
	var out []traffic.Action
	var top float64
	for _, a := range traffic.Actions {
		v := value(a)
		switch {
		case len(out) == 0 || v > top:
			top = v
			out = append(out[:0], a)
		case v == top:
			out = append(out, a)
		}
	}
	return out
}

func choose(rng *rand.Rand, actions []traffic.Action) traffic.Action {
	if len(actions) == 0 {
		return traffic.Actions[rng.Intn(len(traffic.Actions))]
	}
	return actions[rng.Intn(len(actions))]
}

func unexplored(m *Memory, s traffic.State) []traffic.Action {
	var out []traffic.Action
	for _, a := range traffic.Actions {
		if !m.Values.Has(s, a) {
			out = append(out, a)
		}
	}
	return out
}

// Config selects and tunes a strategy.
type Config struct {
	Name string `json:"name"`

	// Bonus is the value optimistic selection assumes for unseen pairs.
	Bonus float64 `json:"bonus"`
	// RateK is k in the 1/(1+k*t) learning rate.
	RateK float64 `json:"rate_k"`
	// Epsilon is the per-step decay of the eps-random exploration rate.
	Epsilon float64 `json:"epsilon"`
	// MinSamples is the table size below which regression acts randomly.
	MinSamples int `json:"min_samples"`
	// Regressor is "tree" or "linear".
	Regressor string  `json:"regressor"`
	Ridge     float64 `json:"ridge"`
}

func DefaultConfig() Config {
	return Config{
		Name:       "greedy",
		Bonus:      100,
		RateK:      0.1,
		Epsilon:    0.001,
		MinSamples: 10,
		Regressor:  "tree",
		Ridge:      1e-3,
	}
}

// Names lists the strategies New accepts.
func Names() []string {
	return []string{"random", "greedy", "explore", "optimistic", "rate", "eps-random", "similarity", "regression", "perfect"}
}

// New builds the strategy named by cfg.Name.
func New(cfg Config) (Strategy, error) {
	switch cfg.Name {
	case "random":
		return Random{}, nil
	case "greedy":
		return NewGreedy(), nil
	case "explore":
		return ExploreFirst{Greedy: NewGreedy()}, nil
	case "optimistic":
		return NewOptimistic(cfg.Bonus), nil
	case "rate":
		if cfg.RateK <= 0 {
			return nil, fmt.Errorf("rate strategy: k must be > 0, got %v", cfg.RateK)
		}
		return NewRateScheduled(cfg.RateK), nil
	case "eps-random":
		if cfg.Epsilon < 0 {
			return nil, fmt.Errorf("eps-random strategy: epsilon must be >= 0, got %v", cfg.Epsilon)
		}
		return EpsilonRandom{Greedy: NewGreedy(), Epsilon: cfg.Epsilon}, nil
	case "similarity":
		return Similarity{Greedy: NewGreedy()}, nil
	case "regression":
		factory, err := regressorFactory(cfg.Regressor, cfg.Ridge)
		if err != nil {
			return nil, err
		}
		return NewRegression(cfg.MinSamples, factory), nil
	case "perfect":
		return Perfect{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, cfg.Name)
	}
}
