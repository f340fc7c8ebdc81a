package policy

import "smartcab-rl/internal/traffic"

// Random picks uniformly among all actions and learns nothing. It still
// records a zero for every visited pair so table growth is comparable.
type Random struct{}

func (Random) Name() string { return "random" }

func (Random) Select(m *Memory, _ traffic.State) traffic.Action {
	return choose(m.rng(), nil)
}

func (Random) Update(m *Memory, s traffic.State, a traffic.Action, _ float64) {
	m.Values.Set(s, a, 0)
}

// Greedy picks the action with the highest stored value, breaking ties at
// random. Default is assumed for pairs never written.
type Greedy struct {
	Default float64
	Rate    Schedule
	name    string
}

func NewGreedy() Greedy {
	return Greedy{Rate: InverseTime, name: "greedy"}
}

// NewOptimistic is greedy selection that assumes bonus for untried pairs.
// Updates still blend from a neutral zero.
func NewOptimistic(bonus float64) Greedy {
	return Greedy{Default: bonus, Rate: InverseTime, name: "optimistic"}
}

// NewRateScheduled is greedy with the 1/(1+k*t) learning rate.
func NewRateScheduled(k float64) Greedy {
	return Greedy{Rate: Scaled(k), name: "rate"}
}

func (g Greedy) Name() string {
	if g.name == "" {
		return "greedy"
	}
	return g.name
}

func (g Greedy) Select(m *Memory, s traffic.State) traffic.Action {
	return choose(m.rng(), g.bestFor(m, s))
}

func (g Greedy) bestFor(m *Memory, s traffic.State) []traffic.Action {
	return best(func(a traffic.Action) float64 {
		return m.Values.Value(s, a, g.Default)
	})
}

func (g Greedy) Update(m *Memory, s traffic.State, a traffic.Action, reward float64) {
	rate := g.Rate
	if rate == nil {
		rate = InverseTime
	}
	learn(m, rate, s, a, reward)
}

// ExploreFirst tries every action of a state once before acting greedily.
type ExploreFirst struct {
	Greedy
}

func (ExploreFirst) Name() string { return "explore" }

func (e ExploreFirst) Select(m *Memory, s traffic.State) traffic.Action {
	if todo := unexplored(m, s); len(todo) > 0 {
		return choose(m.rng(), todo)
	}
	return e.Greedy.Select(m, s)
}

// EpsilonRandom explores with probability 1 - t*Epsilon, preferring
// actions not yet tried in the state, and is greedy otherwise.
type EpsilonRandom struct {
	Greedy
	Epsilon float64
}

func (EpsilonRandom) Name() string { return "eps-random" }

// ExploreRate is the exploration probability at decision t.
func (e EpsilonRandom) ExploreRate(t int) float64 {
	return 1 - float64(t)*e.Epsilon
}

func (e EpsilonRandom) Select(m *Memory, s traffic.State) traffic.Action {
	rng := m.rng()
	if rng.Float64() < e.ExploreRate(m.time()) {
		return choose(rng, unexplored(m, s))
	}
	return e.Greedy.Select(m, s)
}

// Similarity acts on the closest known state when the current one has
// never been seen. Closeness is the number of differing tuple positions.
// Learning is always keyed by the exact state.
type Similarity struct {
	Greedy
}

func (Similarity) Name() string { return "similarity" }

func (p Similarity) Select(m *Memory, s traffic.State) traffic.Action {
	ref := s
	if !m.Values.Known(s) {
		ref = Nearest(m, s)
	}
	return p.Greedy.Select(m, ref)
}

// Nearest returns one of the stored states closest to s, chosen uniformly,
// or s itself when the table is empty.
func Nearest(m *Memory, s traffic.State) traffic.State {
	var (
		closest []traffic.State
		dist    int
	)
	for _, o := range m.Values.States() {
		d := s.Distance(o)
		switch {
		case len(closest) == 0 || d < dist:
			dist = d
			closest = append(closest[:0], o)
		case d == dist:
			closest = append(closest, o)
		}
	}
	if len(closest) == 0 {
		return s
	}
	return closest[m.rng().Intn(len(closest))]
}

// Perfect knows the traffic rules: it follows the planner's waypoint unless
// that move is illegal, in which case it waits. It expects states built by
// the sensed encoder and learns nothing.
type Perfect struct{}

func (Perfect) Name() string { return "perfect" }

func (Perfect) Select(_ *Memory, s traffic.State) traffic.Action {
	action, err := traffic.ParseAction(s[3])
	if err != nil {
		return traffic.None
	}
	switch {
	case s[0] == traffic.Red.String():
		if action != traffic.Right || s[2] == traffic.Forward.String() {
			return traffic.None
		}
	case action == traffic.Left:
		if s[1] == traffic.Forward.String() || s[1] == traffic.Right.String() {
			return traffic.None
		}
	}
	return action
}

func (Perfect) Update(m *Memory, s traffic.State, a traffic.Action, _ float64) {
	m.Values.Set(s, a, 0)
}
