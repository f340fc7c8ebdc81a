package policy

import (
	"errors"
	"math"
	"testing"

	"smartcab-rl/internal/traffic"
)

var (
	s          = traffic.NewState(traffic.Red, traffic.None, traffic.None, traffic.Forward)
	sRight     = traffic.NewState(traffic.Red, traffic.None, traffic.None, traffic.Right)
	sFarAway   = traffic.NewState(traffic.Green, traffic.Left, traffic.Forward, traffic.Right)
	trialCount = 400
)

func counts(m *Memory, st Strategy, state traffic.State) map[traffic.Action]int {
	out := make(map[traffic.Action]int)
	for i := 0; i < trialCount; i++ {
		out[st.Select(m, state)]++
	}
	return out
}

func TestNewBuildsEveryStrategy(t *testing.T) {
	for _, name := range Names() {
		cfg := DefaultConfig()
		cfg.Name = name
		st, err := New(cfg)
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		if st.Name() != name {
			t.Fatalf("New(%q).Name() = %q", name, st.Name())
		}
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Name = "sarsa"
	if _, err := New(cfg); !errors.Is(err, ErrUnknownStrategy) {
		t.Fatalf("New(sarsa) error = %v, want ErrUnknownStrategy", err)
	}
	cfg = DefaultConfig()
	cfg.Name, cfg.RateK = "rate", 0
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for k = 0")
	}
	cfg = DefaultConfig()
	cfg.Name, cfg.Regressor = "regression", "forest"
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for unknown regressor")
	}
}

func TestRandomCoversAllActionsAndStoresZero(t *testing.T) {
	m := NewMemory(3)
	got := counts(m, Random{}, s)
	for _, a := range traffic.Actions {
		if got[a] == 0 {
			t.Fatalf("random never chose %s: %v", a, got)
		}
	}
	m.Tick()
	Random{}.Update(m, s, traffic.Left, 12)
	if v, ok := m.Values.Lookup(s, traffic.Left); !ok || v != 0 {
		t.Fatalf("random update stored %v, %v; want 0, true", v, ok)
	}
}

func TestGreedyBreaksTiesAmongBest(t *testing.T) {
	m := NewMemory(7)
	m.Values.Set(s, traffic.Left, 5)
	m.Values.Set(s, traffic.Right, 2)
	m.Values.Set(s, traffic.Forward, 5)

	got := counts(m, NewGreedy(), s)
	if got[traffic.Left] == 0 || got[traffic.Forward] == 0 {
		t.Fatalf("expected both left and forward, got %v", got)
	}
	if got[traffic.Right] != 0 || got[traffic.None] != 0 {
		t.Fatalf("greedy chose a non-maximal action: %v", got)
	}
}

func TestGreedyEmptyTableFallsBackToRandom(t *testing.T) {
	m := NewMemory(11)
	got := counts(m, NewGreedy(), s)
	if len(got) != len(traffic.Actions) {
		t.Fatalf("expected every action on an empty table, got %v", got)
	}
}

func TestInverseTimeConverges(t *testing.T) {
	const reward = 3.0
	m := NewMemory(1)
	m.Time = 10
	g := NewGreedy()

	gap := math.Abs(m.Values.Value(s, traffic.Forward, 0) - reward)
	for i := 0; i < 2000; i++ {
		m.Tick()
		g.Update(m, s, traffic.Forward, reward)
		next := math.Abs(m.Values.Value(s, traffic.Forward, 0) - reward)
		if next >= gap {
			t.Fatalf("update %d: gap grew or stalled from %v to %v", i, gap, next)
		}
		gap = next
	}
	if gap > 0.02 {
		t.Fatalf("gap after 2000 updates = %v, want < 0.02", gap)
	}
	if m.Values.Len() != 1 {
		t.Fatalf("table has %d entries, want 1", m.Values.Len())
	}
}

func TestFirstUpdateTakesRewardWhole(t *testing.T) {
	m := NewMemory(1)
	m.Tick()
	NewGreedy().Update(m, s, traffic.None, -1)
	if v := m.Values.Value(s, traffic.None, 0); v != -1 {
		t.Fatalf("value after first update = %v, want -1", v)
	}
}

func TestScaledSchedule(t *testing.T) {
	m := NewMemory(1)
	m.Tick()
	NewRateScheduled(0.5).Update(m, s, traffic.Right, 3)
	if v := m.Values.Value(s, traffic.Right, 0); math.Abs(v-2) > 1e-12 {
		t.Fatalf("value = %v, want 2 (rate 1/1.5)", v)
	}
	if r := Scaled(0.1)(10); math.Abs(r-0.5) > 1e-12 {
		t.Fatalf("Scaled(0.1)(10) = %v, want 0.5", r)
	}
}

func TestOptimisticPrefersUntriedActions(t *testing.T) {
	m := NewMemory(5)
	m.Values.Set(s, traffic.Forward, 50)
	m.Values.Set(s, traffic.Left, 99.9)

	got := counts(m, NewOptimistic(100), s)
	if got[traffic.Forward] != 0 || got[traffic.Left] != 0 {
		t.Fatalf("optimistic chose a tried action: %v", got)
	}
	if got[traffic.None] == 0 || got[traffic.Right] == 0 {
		t.Fatalf("optimistic should spread over untried actions: %v", got)
	}

	fresh := NewMemory(5)
	if got := counts(fresh, NewOptimistic(100), sFarAway); len(got) != len(traffic.Actions) {
		t.Fatalf("unseen state should be uniform, got %v", got)
	}
}

func TestExploreFirstTriesUnvisited(t *testing.T) {
	m := NewMemory(9)
	st := ExploreFirst{Greedy: NewGreedy()}
	m.Values.Set(s, traffic.None, 10)
	m.Values.Set(s, traffic.Forward, 10)

	got := counts(m, st, s)
	if got[traffic.None] != 0 || got[traffic.Forward] != 0 {
		t.Fatalf("explore picked a visited action: %v", got)
	}

	m.Values.Set(s, traffic.Left, -1)
	m.Values.Set(s, traffic.Right, -1)
	got = counts(m, st, s)
	if got[traffic.Left] != 0 || got[traffic.Right] != 0 {
		t.Fatalf("explore should be greedy once all actions are tried: %v", got)
	}
}

func TestEpsilonRandomRate(t *testing.T) {
	m := NewMemory(13)
	m.Values.Set(s, traffic.None, 10)
	m.Tick()

	always := EpsilonRandom{Greedy: NewGreedy(), Epsilon: 0}
	if got := counts(m, always, s); got[traffic.None] != 0 {
		t.Fatalf("with p = 1 the agent must pick unexplored actions: %v", got)
	}

	never := EpsilonRandom{Greedy: NewGreedy(), Epsilon: 1}
	if got := counts(m, never, s); got[traffic.None] != trialCount {
		t.Fatalf("with p <= 0 the agent must be greedy: %v", got)
	}

	if r := (EpsilonRandom{Epsilon: 0.001}).ExploreRate(250); math.Abs(r-0.75) > 1e-12 {
		t.Fatalf("ExploreRate(250) = %v, want 0.75", r)
	}
}

func TestEpsilonRandomAllExploredPicksAny(t *testing.T) {
	m := NewMemory(17)
	for _, a := range traffic.Actions {
		m.Values.Set(s, a, float64(a))
	}
	m.Tick()
	got := counts(m, EpsilonRandom{Greedy: NewGreedy(), Epsilon: 0}, s)
	if len(got) != len(traffic.Actions) {
		t.Fatalf("expected any action once all are explored, got %v", got)
	}
}

func TestSimilarityUsesNearestState(t *testing.T) {
	m := NewMemory(21)
	m.Values.Set(s, traffic.Forward, 1.0)

	got := counts(m, Similarity{Greedy: NewGreedy()}, sRight)
	if got[traffic.Forward] != trialCount {
		t.Fatalf("similarity should act on the distance-1 match: %v", got)
	}
	if m.Values.Known(sRight) {
		t.Fatal("selection must not write to the table")
	}

	m.Tick()
	Similarity{Greedy: NewGreedy()}.Update(m, sRight, traffic.Right, 2)
	if !m.Values.Has(sRight, traffic.Right) || m.Values.Value(s, traffic.Forward, 0) != 1.0 {
		t.Fatal("updates must be keyed by the exact state")
	}
}

func TestNearest(t *testing.T) {
	m := NewMemory(2)
	if got := Nearest(m, sFarAway); got != sFarAway {
		t.Fatalf("Nearest on empty table = %v, want the query", got)
	}
	m.Values.Set(sFarAway, traffic.None, 0)
	m.Values.Set(s, traffic.None, 0)
	if got := Nearest(m, sRight); got != s {
		t.Fatalf("Nearest = %v, want %v", got, s)
	}
	// Only a state differing everywhere is stored: it is still the nearest.
	far := NewMemory(2)
	far.Values.Set(sFarAway, traffic.Left, 4)
	query := traffic.NewState(traffic.Red, traffic.Right, traffic.Left, traffic.Left)
	if got := Nearest(far, query); got != sFarAway {
		t.Fatalf("Nearest = %v, want %v", got, sFarAway)
	}
}

func TestPerfectFollowsRules(t *testing.T) {
	tests := []struct {
		state traffic.State
		want  traffic.Action
	}{
		{traffic.NewState(traffic.Red, traffic.None, traffic.None, traffic.Right), traffic.Right},
		{traffic.NewState(traffic.Red, traffic.None, traffic.Forward, traffic.Right), traffic.None},
		{traffic.NewState(traffic.Red, traffic.None, traffic.None, traffic.Forward), traffic.None},
		{traffic.NewState(traffic.Green, traffic.Forward, traffic.None, traffic.Left), traffic.None},
		{traffic.NewState(traffic.Green, traffic.Left, traffic.None, traffic.Left), traffic.Left},
		{traffic.NewState(traffic.Green, traffic.Right, traffic.Forward, traffic.Forward), traffic.Forward},
	}
	for _, tc := range tests {
		if got := (Perfect{}).Select(nil, tc.state); got != tc.want {
			t.Fatalf("Perfect.Select(%v) = %s, want %s", tc.state, got, tc.want)
		}
	}
}
