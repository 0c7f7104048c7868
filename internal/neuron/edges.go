package neuron

import (
	"fmt"
)

// CheckNeuronConnection reports whether from already has a connection whose
// target is the neuron to. Unknown neurons are never connected.
func (net *Network) CheckNeuronConnection(from, to NeuronID) bool {
	net.mu.RLock()
	defer net.mu.RUnlock()

	src, ok := net.neurons[from]
	if !ok {
		return false
	}
	c, _ := src.connectionTo(to)
	return c != nil
}

// CheckSynapticConnection reports whether from already modulates the same
// downstream effect as the candidate connection ref: one of from's
// presynaptic connections targets a connection that shares the candidate's
// owner and either points at the same neuron or at the same connection.
// An unset target compares equal to another unset target, so two
// connections of one owner that both target neurons (or both target
// connections) always match.
func (net *Network) CheckSynapticConnection(from NeuronID, ref ConnectionRef) (bool, error) {
	net.mu.RLock()
	defer net.mu.RUnlock()

	src, ok := net.neurons[from]
	if !ok {
		return false, fmt.Errorf("%w: N-%d", ErrNeuronNotFound, from)
	}
	candidate := net.resolveLocked(ref)
	if candidate == nil {
		return false, fmt.Errorf("%w: %s", ErrEdgeNotFound, ref)
	}
	return net.synapticMatchLocked(src, candidate) != nil, nil
}

// synapticMatchLocked returns the connection targeted by one of src's
// presynaptic edges that duplicates candidate, or nil.
func (net *Network) synapticMatchLocked(src *Neuron, candidate *Connection) *Connection {
	for _, c := range src.connections {
		if c == nil {
			continue
		}
		ref, ok := c.target.Connection()
		if !ok {
			continue
		}
		existing := net.resolveLocked(ref)
		if existing == nil || existing.Owner() != candidate.Owner() {
			continue
		}
		if sameNeuronTarget(existing, candidate) || sameConnectionTarget(existing, candidate) {
			return existing
		}
	}
	return nil
}

func sameNeuronTarget(a, b *Connection) bool {
	an, aok := a.target.Neuron()
	bn, bok := b.target.Neuron()
	if !aok || !bok {
		return aok == bok
	}
	return an == bn
}

func sameConnectionTarget(a, b *Connection) bool {
	ac, aok := a.target.Connection()
	bc, bok := b.target.Connection()
	if !aok || !bok {
		return aok == bok
	}
	return ac == bc
}

// AddNeuronConnection creates a feed-forward connection from -> to with
// all weight tiers set to weight. Defaults are excitatory, relu, no
// learning and the standard transmitter. If the edge already exists a
// warning is logged, nothing changes and ErrDuplicateEdge is returned.
func (net *Network) AddNeuronConnection(from, to NeuronID, weight float64, opts ...ConnectionOption) (*Connection, error) {
	settings, err := buildSettings(weight, opts)
	if err != nil {
		return nil, err
	}

	net.mu.Lock()
	defer net.mu.Unlock()

	src, dst, err := net.pairLocked(from, to)
	if err != nil {
		return nil, err
	}

	if existing, _ := src.connectionTo(to); existing != nil {
		net.warn("neuron already connected", "source", from, "target", to)
		net.events.Log(map[string]any{
			"event":  "edge_duplicate",
			"source": int64(from),
			"target": NeuronTarget(to).String(),
		})
		return nil, fmt.Errorf("%w: N-%d is already connected with N-%d", ErrDuplicateEdge, from, to)
	}

	ref := ConnectionRef{Neuron: from, Slot: len(src.connections)}
	c := newConnection(ref, NeuronTarget(to), weight, settings)
	src.connections = append(src.connections, c)
	dst.previous = append(dst.previous, from)

	net.logAdded(c)
	return c, nil
}

// AddSynapticConnection creates a presynaptic connection from the neuron
// from to the connection ref. No back-reference is recorded. If an
// equivalent presynaptic edge exists a warning is logged, nothing changes
// and ErrDuplicateEdge is returned.
func (net *Network) AddSynapticConnection(from NeuronID, ref ConnectionRef, weight float64, opts ...ConnectionOption) (*Connection, error) {
	settings, err := buildSettings(weight, opts)
	if err != nil {
		return nil, err
	}

	net.mu.Lock()
	defer net.mu.Unlock()

	src, ok := net.neurons[from]
	if !ok {
		return nil, fmt.Errorf("%w: N-%d", ErrNeuronNotFound, from)
	}
	candidate := net.resolveLocked(ref)
	if candidate == nil {
		net.warn("presynaptic target does not exist", "source", from, "target", ref.String())
		return nil, fmt.Errorf("%w: %s", ErrEdgeNotFound, ref)
	}

	if net.synapticMatchLocked(src, candidate) != nil {
		var msg string
		if next, isNeuron := candidate.target.Neuron(); isNeuron {
			msg = fmt.Sprintf("N-%d is already connected with C-%d~%d", from, candidate.Owner(), next)
		} else {
			nextRef, _ := candidate.target.Connection()
			msg = fmt.Sprintf("N-%d is already connected with the connection between N-%d and another connection coming from N-%d",
				from, candidate.Owner(), nextRef.Neuron)
		}
		net.warn("presynaptic connection already exists", "source", from, "target", ref.String(), "detail", msg)
		net.events.Log(map[string]any{
			"event":  "edge_duplicate",
			"source": int64(from),
			"target": ref.String(),
		})
		return nil, fmt.Errorf("%w: %s", ErrDuplicateEdge, msg)
	}

	own := ConnectionRef{Neuron: from, Slot: len(src.connections)}
	c := newConnection(own, ConnectionTarget(ref), weight, settings)
	src.connections = append(src.connections, c)

	net.logAdded(c)
	return c, nil
}

// DelConnection removes the connection from -> to and the matching
// back-reference on to. Presynaptic connections that targeted it are
// removed too. A missing edge logs a warning and returns ErrEdgeNotFound.
func (net *Network) DelConnection(from, to NeuronID) error {
	net.mu.Lock()
	defer net.mu.Unlock()

	src, dst, err := net.pairLocked(from, to)
	if err != nil {
		return err
	}

	c, slot := src.connectionTo(to)
	if c == nil {
		net.warn("neuron not connected", "source", from, "target", to)
		return fmt.Errorf("%w: N-%d is not connected with N-%d", ErrEdgeNotFound, from, to)
	}

	// Both lookups succeeded above; neither mutation below can fail.
	dst.removePrevious(from)
	src.connections[slot] = nil

	cascaded := net.removeDependentsLocked([]ConnectionRef{c.ref})
	net.logRemoved(c, cascaded)
	return nil
}

// DelSynapticConnection removes from's presynaptic connection to ref,
// along with presynaptic connections that targeted it in turn.
func (net *Network) DelSynapticConnection(from NeuronID, ref ConnectionRef) error {
	net.mu.Lock()
	defer net.mu.Unlock()

	src, ok := net.neurons[from]
	if !ok {
		return fmt.Errorf("%w: N-%d", ErrNeuronNotFound, from)
	}

	for slot, c := range src.connections {
		if c == nil {
			continue
		}
		if target, ok := c.target.Connection(); ok && target == ref {
			src.connections[slot] = nil
			cascaded := net.removeDependentsLocked([]ConnectionRef{c.ref})
			net.logRemoved(c, cascaded)
			return nil
		}
	}

	net.warn("presynaptic connection not found", "source", from, "target", ref.String())
	return fmt.Errorf("%w: N-%d is not connected with %s", ErrEdgeNotFound, from, ref)
}

// GetWeight returns the selected weight tier of the connection from -> to.
// If there is no such connection an error is logged and 0 is returned with
// ErrEdgeNotFound; callers that must tell this apart from a real zero
// weight check the error or call CheckNeuronConnection first.
func (net *Network) GetWeight(from, to NeuronID, tier WeightTier) (float64, error) {
	net.mu.RLock()
	defer net.mu.RUnlock()

	src, ok := net.neurons[from]
	if !ok {
		net.logError("no connection between neurons", "source", from, "target", to)
		return 0, fmt.Errorf("%w: N-%d", ErrNeuronNotFound, from)
	}
	c, _ := src.connectionTo(to)
	if c == nil {
		net.logError("no connection between neurons", "source", from, "target", to)
		return 0, fmt.Errorf("%w: there is no connection between N-%d and N-%d", ErrEdgeNotFound, from, to)
	}
	return c.Weight(tier)
}

func (net *Network) pairLocked(from, to NeuronID) (*Neuron, *Neuron, error) {
	src, ok := net.neurons[from]
	if !ok {
		return nil, nil, fmt.Errorf("%w: N-%d", ErrNeuronNotFound, from)
	}
	dst, ok := net.neurons[to]
	if !ok {
		return nil, nil, fmt.Errorf("%w: N-%d", ErrNeuronNotFound, to)
	}
	return src, dst, nil
}

func buildSettings(weight float64, opts []ConnectionOption) (connectionSettings, error) {
	if !finite(weight) {
		return connectionSettings{}, fmt.Errorf("%w: weight %v", ErrInvalidParameter, weight)
	}
	settings := defaultConnectionSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	if err := settings.validate(); err != nil {
		return connectionSettings{}, err
	}
	return settings, nil
}

func (net *Network) logAdded(c *Connection) {
	net.debug("connection added", "source", c.Owner(), "target", c.target.String(), "slot", c.ref.Slot, "weight", c.BaseWeight)
	net.events.Log(map[string]any{
		"event":    "edge_added",
		"source":   int64(c.Owner()),
		"target":   c.target.String(),
		"slot":     c.ref.Slot,
		"weight":   c.BaseWeight,
		"function": c.Function.String(),
	})
}

func (net *Network) logRemoved(c *Connection, cascaded int) {
	net.debug("connection removed", "source", c.Owner(), "target", c.target.String(), "presynaptic_cascade", cascaded)
	net.events.Log(map[string]any{
		"event":               "edge_removed",
		"source":              int64(c.Owner()),
		"target":              c.target.String(),
		"slot":                c.ref.Slot,
		"presynaptic_cascade": cascaded,
	})
}
