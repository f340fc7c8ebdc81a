package buffer

import (
	"errors"
	"sync"
	"time"

	"smartcab-rl/internal/agent"
)

type Item struct {
	Step       agent.Step `json:"step"`
	RecordedAt time.Time  `json:"recorded_at"`
}

// History is a bounded, goroutine-safe log of agent steps.
type History struct {
	mu       sync.Mutex
	items    []Item
	capacity int
	policy   string // "fifo" or "freshness"
	evicted  int
}

var ErrBufferEmpty = errors.New("buffer is empty")

func validPolicy(policy string) error {
	if policy != "fifo" && policy != "freshness" {
		return errors.New("policy must be 'fifo' or 'freshness'")
	}
	return nil
}

func NewHistory(capacity int, policy string) (*History, error) {
	if capacity <= 0 {
		return nil, errors.New("capacity must be greater than zero")
	}
	if err := validPolicy(policy); err != nil {
		return nil, err
	}
	return &History{
		items:    make([]Item, 0, capacity),
		capacity: capacity,
		policy:   policy,
	}, nil
}

// Record appends a step, evicting the oldest item when the history is full.
func (h *History) Record(step agent.Step) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.items) >= h.capacity {
		h.items = append(h.items[:0], h.items[1:]...)
		h.evicted++
	}
	h.items = append(h.items, Item{Step: step, RecordedAt: time.Now()})
}

// Dequeue removes the oldest item under "fifo" and the newest under
// "freshness".
func (h *History) Dequeue() (Item, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.items) == 0 {
		return Item{}, ErrBufferEmpty
	}

	switch h.policy {
	case "fifo":
		item := h.items[0]
		h.items = h.items[1:]
		return item, nil
	case "freshness":
		item := h.items[len(h.items)-1]
		h.items = h.items[:len(h.items)-1]
		return item, nil
	default:
		return Item{}, errors.New("unknown policy")
	}
}

// Items returns a copy of the history, oldest first.
func (h *History) Items() []Item {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Item, len(h.items))
	copy(out, h.items)
	return out
}

func (h *History) Capacity() int {
	return h.capacity
}

func (h *History) Policy() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.policy
}

func (h *History) SetPolicy(policy string) error {
	if err := validPolicy(policy); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.policy = policy
	return nil
}

func (h *History) Size() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.items)
}

// Evicted counts items dropped by Record to make room.
func (h *History) Evicted() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.evicted
}
