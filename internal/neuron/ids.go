package neuron

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// NeuronID identifies a neuron for the lifetime of the process. IDs are
// handed out by an IDAllocator and never reused.
type NeuronID int64

func (id NeuronID) String() string {
	return fmt.Sprintf("N-%d", int64(id))
}

// ParseNeuronID accepts "N-7" or a bare "7".
func ParseNeuronID(s string) (NeuronID, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "N-")
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: neuron id %q", ErrInvalidParameter, s)
	}
	return NeuronID(n), nil
}

// IDAllocator hands out monotonically increasing neuron ids.
// It is safe for concurrent use.
type IDAllocator struct {
	mu   sync.Mutex
	next NeuronID
}

// NewIDAllocator returns an allocator whose first id is start.
func NewIDAllocator(start NeuronID) *IDAllocator {
	return &IDAllocator{next: start}
}

// Next returns a fresh id.
func (a *IDAllocator) Next() NeuronID {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.next
	a.next++
	return id
}

// Peek returns the id the next call to Next will return.
func (a *IDAllocator) Peek() NeuronID {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.next
}

// Reserve moves the allocator past id so that it is never handed out.
// Used when restoring a snapshot whose ids were allocated elsewhere.
func (a *IDAllocator) Reserve(id NeuronID) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if id >= a.next {
		a.next = id + 1
	}
}
