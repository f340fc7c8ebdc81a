package qtable

import "smartcab-rl/internal/traffic"

// Key identifies one value estimate.
type Key struct {
	State  traffic.State
	Action traffic.Action
}

// Entry is a stored estimate.
type Entry struct {
	Key
	Value float64
}

// Table maps (state, action) pairs to value estimates. Entries are added on
// first write and never removed. A Table is owned by one agent and is not
// safe for concurrent use.
type Table struct {
	values map[Key]float64
	order  []Key
	states map[traffic.State]int
	seen   []traffic.State
	writes uint64
}

func New() *Table {
	return &Table{
		values: make(map[Key]float64),
		states: make(map[traffic.State]int),
	}
}

// Lookup returns the stored value and whether the pair has been written.
func (t *Table) Lookup(s traffic.State, a traffic.Action) (float64, bool) {
	v, ok := t.values[Key{State: s, Action: a}]
	return v, ok
}

// Value returns the stored value, or def when the pair is unseen.
func (t *Table) Value(s traffic.State, a traffic.Action, def float64) float64 {
	if v, ok := t.Lookup(s, a); ok {
		return v
	}
	return def
}

// Has reports whether the pair has been written.
func (t *Table) Has(s traffic.State, a traffic.Action) bool {
	_, ok := t.Lookup(s, a)
	return ok
}

// Known reports whether any action has been written for s.
func (t *Table) Known(s traffic.State) bool {
	return t.states[s] > 0
}

// Set upserts the value for a pair.
func (t *Table) Set(s traffic.State, a traffic.Action, v float64) {
	k := Key{State: s, Action: a}
	if _, ok := t.values[k]; !ok {
		t.order = append(t.order, k)
		if t.states[s] == 0 {
			t.seen = append(t.seen, s)
		}
		t.states[s]++
	}
	t.values[k] = v
	t.writes++
}

// Version counts writes; it changes whenever any value changes.
func (t *Table) Version() uint64 { return t.writes }

// Len is the number of stored pairs.
func (t *Table) Len() int { return len(t.order) }

// States returns the distinct stored states in first-seen order.
func (t *Table) States() []traffic.State {
	out := make([]traffic.State, len(t.seen))
	copy(out, t.seen)
	return out
}

// Entries returns every stored pair in insertion order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, Entry{Key: k, Value: t.values[k]})
	}
	return out
}
