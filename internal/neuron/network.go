// Package neuron implements the neuron/connection graph of a spiking network:
// neurons owning weighted, typed connections that target either another
// neuron or another connection (presynaptic modulation), together with the
// activation-function dispatcher used when a signal crosses a connection.
//
// Stepping the network, and the rules that move short and long weights,
// belong to the caller. This package only guarantees the graph invariants:
// no silent duplicate edges, no dangling back-references, and a single live
// weight tier per connection.
package neuron

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/Cycrus/COGNA/internal/logging"
)

// Network is the registry owning every neuron of one graph. All graph
// mutations are serialized behind its lock; scalar neuron and connection
// state is left to the step driver.
type Network struct {
	mu      sync.RWMutex
	ids     *IDAllocator
	neurons map[NeuronID]*Neuron
	order   []NeuronID
	logger  *slog.Logger
	events  *logging.EventLogger
}

// NewNetwork creates an empty network. A nil allocator gets a fresh one
// starting at 0.
func NewNetwork(ids *IDAllocator) *Network {
	if ids == nil {
		ids = NewIDAllocator(0)
	}
	return &Network{
		ids:     ids,
		neurons: make(map[NeuronID]*Neuron),
	}
}

// SetLogger sets the structured logger and mutation event logger.
// Either may be nil.
func (net *Network) SetLogger(logger *slog.Logger, events *logging.EventLogger) {
	net.mu.Lock()
	defer net.mu.Unlock()
	net.logger = logger
	net.events = events
}

// IDs returns the allocator used for new neurons.
func (net *Network) IDs() *IDAllocator { return net.ids }

// AddNeuron creates a neuron with the given firing threshold.
func (net *Network) AddNeuron(threshold float64) *Neuron {
	net.mu.Lock()
	defer net.mu.Unlock()

	n := newNeuron(net.ids.Next(), threshold)
	net.insertLocked(n)

	net.debug("neuron added", "neuron", n.id, "threshold", threshold)
	net.events.Log(map[string]any{
		"event":     "neuron_added",
		"neuron":    int64(n.id),
		"threshold": threshold,
	})
	return n
}

func (net *Network) insertLocked(n *Neuron) {
	net.neurons[n.id] = n
	net.order = append(net.order, n.id)
}

// Neuron looks up a neuron by id.
func (net *Network) Neuron(id NeuronID) (*Neuron, bool) {
	net.mu.RLock()
	defer net.mu.RUnlock()

	n, ok := net.neurons[id]
	return n, ok
}

// Neurons returns every neuron in creation order.
func (net *Network) Neurons() []*Neuron {
	net.mu.RLock()
	defer net.mu.RUnlock()

	out := make([]*Neuron, 0, len(net.order))
	for _, id := range net.order {
		out = append(out, net.neurons[id])
	}
	return out
}

// Len returns the number of neurons.
func (net *Network) Len() int {
	net.mu.RLock()
	defer net.mu.RUnlock()
	return len(net.order)
}

// Connection resolves a connection ref. It returns false for unknown owners,
// out-of-range slots and removed connections.
func (net *Network) Connection(ref ConnectionRef) (*Connection, bool) {
	net.mu.RLock()
	defer net.mu.RUnlock()

	c := net.resolveLocked(ref)
	return c, c != nil
}

func (net *Network) resolveLocked(ref ConnectionRef) *Connection {
	n, ok := net.neurons[ref.Neuron]
	if !ok || ref.Slot < 0 || ref.Slot >= len(n.connections) {
		return nil
	}
	return n.connections[ref.Slot]
}

// Outgoing returns the live outgoing connections of id in creation order.
func (net *Network) Outgoing(id NeuronID) ([]*Connection, error) {
	net.mu.RLock()
	defer net.mu.RUnlock()

	n, ok := net.neurons[id]
	if !ok {
		return nil, fmt.Errorf("%w: N-%d", ErrNeuronNotFound, id)
	}
	return n.Connections(), nil
}

// Previous returns the back-references of id.
func (net *Network) Previous(id NeuronID) ([]NeuronID, error) {
	net.mu.RLock()
	defer net.mu.RUnlock()

	n, ok := net.neurons[id]
	if !ok {
		return nil, fmt.Errorf("%w: N-%d", ErrNeuronNotFound, id)
	}
	return n.Previous(), nil
}

// RemoveNeuron destroys a neuron. Its own connections go with it, every
// edge feeding it is removed from its predecessors, and presynaptic
// connections left without a target are removed as well.
func (net *Network) RemoveNeuron(id NeuronID) error {
	net.mu.Lock()
	defer net.mu.Unlock()

	n, ok := net.neurons[id]
	if !ok {
		net.warn("neuron does not exist", "neuron", id)
		return fmt.Errorf("%w: N-%d", ErrNeuronNotFound, id)
	}

	var removed []ConnectionRef
	for slot, c := range n.connections {
		if c == nil {
			continue
		}
		if target, ok := c.target.Neuron(); ok {
			if next, exists := net.neurons[target]; exists {
				next.removePrevious(id)
			}
		}
		n.connections[slot] = nil
		removed = append(removed, c.ref)
	}

	for _, prevID := range n.Previous() {
		prev, exists := net.neurons[prevID]
		if !exists {
			continue
		}
		if c, slot := prev.connectionTo(id); c != nil {
			prev.connections[slot] = nil
			removed = append(removed, c.ref)
		}
	}
	n.previous = nil

	delete(net.neurons, id)
	for i, existing := range net.order {
		if existing == id {
			net.order = append(net.order[:i], net.order[i+1:]...)
			break
		}
	}

	cascaded := net.removeDependentsLocked(removed)

	net.debug("neuron removed", "neuron", id, "connections", len(removed), "presynaptic_cascade", cascaded)
	net.events.Log(map[string]any{
		"event":               "neuron_removed",
		"neuron":              int64(id),
		"connections_removed": len(removed),
		"presynaptic_cascade": cascaded,
	})
	return nil
}

// removeDependentsLocked removes every presynaptic connection whose target
// is in removed, transitively. It returns how many were removed.
func (net *Network) removeDependentsLocked(removed []ConnectionRef) int {
	if len(removed) == 0 {
		return 0
	}
	gone := make(map[ConnectionRef]bool, len(removed))
	for _, ref := range removed {
		gone[ref] = true
	}

	count := 0
	for changed := true; changed; {
		changed = false
		for _, id := range net.order {
			n := net.neurons[id]
			for slot, c := range n.connections {
				if c == nil {
					continue
				}
				ref, ok := c.target.Connection()
				if !ok || !gone[ref] {
					continue
				}
				n.connections[slot] = nil
				gone[c.ref] = true
				count++
				changed = true
			}
		}
	}
	return count
}

func (net *Network) debug(msg string, args ...any) {
	if net.logger != nil {
		net.logger.Debug(msg, args...)
	}
}

func (net *Network) warn(msg string, args ...any) {
	if net.logger != nil {
		net.logger.Warn(msg, args...)
	}
}

func (net *Network) logError(msg string, args ...any) {
	if net.logger != nil {
		net.logger.Error(msg, args...)
	}
}
