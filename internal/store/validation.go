package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/Cycrus/COGNA/internal/neuron"
)

// ValidationError describes a graph consistency issue in a stored snapshot.
type ValidationError struct {
	Neuron neuron.NeuronID `json:"neuron"`
	Slot   int             `json:"slot"`  // -1 for neuron-level issues
	Ref    string          `json:"ref"`   // the problematic reference
	Issue  string          `json:"issue"` // "dangling", "self-reference", "duplicate", "slot", "back-reference"
}

// String returns a human-readable description of the validation error.
func (e ValidationError) String() string {
	if e.Slot < 0 {
		return fmt.Sprintf("%s: N-%d references %s", e.Issue, e.Neuron, e.Ref)
	}
	return fmt.Sprintf("%s: C-%d#%d references %s", e.Issue, e.Neuron, e.Slot, e.Ref)
}

// Validate loads the snapshot stored under name and reports every
// consistency issue in it. An empty result means neuron.Restore will
// accept the snapshot as far as graph structure goes.
func Validate(ctx context.Context, s NetworkStore, name string) ([]ValidationError, error) {
	snap, err := s.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	return ValidateSnapshot(*snap), nil
}

// ValidateSnapshot checks a snapshot for:
// - Dangling targets (missing neurons, missing or removed connections)
// - Self-references (a connection targeting itself)
// - Duplicate neuron-targeted edges from one owner
// - Slots outside the owner's slot count or used twice
// - Back-reference lists that disagree with the incoming edges
func ValidateSnapshot(snap neuron.Snapshot) []ValidationError {
	var errors []ValidationError

	neurons := make(map[neuron.NeuronID]bool, len(snap.Neurons))
	live := make(map[neuron.ConnectionRef]bool)
	for _, n := range snap.Neurons {
		neurons[n.ID] = true
		for _, c := range n.Connections {
			live[neuron.ConnectionRef{Neuron: n.ID, Slot: c.Slot}] = true
		}
	}

	incoming := make(map[neuron.NeuronID]map[neuron.NeuronID]int)
	for _, n := range snap.Neurons {
		seenTargets := make(map[neuron.NeuronID]bool)
		seenSlots := make(map[int]bool)
		for _, c := range n.Connections {
			own := neuron.ConnectionRef{Neuron: n.ID, Slot: c.Slot}

			if c.Slot < 0 || c.Slot >= n.Slots || seenSlots[c.Slot] {
				errors = append(errors, ValidationError{Neuron: n.ID, Slot: c.Slot, Ref: own.String(), Issue: "slot"})
			}
			seenSlots[c.Slot] = true

			switch c.Target.Kind() {
			case neuron.TargetNeuron:
				to, _ := c.Target.Neuron()
				if !neurons[to] {
					errors = append(errors, ValidationError{Neuron: n.ID, Slot: c.Slot, Ref: c.Target.String(), Issue: "dangling"})
					continue
				}
				if seenTargets[to] {
					errors = append(errors, ValidationError{Neuron: n.ID, Slot: c.Slot, Ref: c.Target.String(), Issue: "duplicate"})
					continue
				}
				seenTargets[to] = true
				if incoming[to] == nil {
					incoming[to] = make(map[neuron.NeuronID]int)
				}
				incoming[to][n.ID]++
			case neuron.TargetConnection:
				ref, _ := c.Target.Connection()
				if ref == own {
					errors = append(errors, ValidationError{Neuron: n.ID, Slot: c.Slot, Ref: ref.String(), Issue: "self-reference"})
				} else if !live[ref] {
					errors = append(errors, ValidationError{Neuron: n.ID, Slot: c.Slot, Ref: ref.String(), Issue: "dangling"})
				}
			default:
				errors = append(errors, ValidationError{Neuron: n.ID, Slot: c.Slot, Ref: c.Target.String(), Issue: "dangling"})
			}
		}
	}

	for _, n := range snap.Neurons {
		got := make(map[neuron.NeuronID]int, len(n.Previous))
		for _, prev := range n.Previous {
			got[prev]++
		}
		want := incoming[n.ID]

		mismatched := make(map[neuron.NeuronID]bool)
		for prev, count := range got {
			if want[prev] != count {
				mismatched[prev] = true
			}
		}
		for prev, count := range want {
			if got[prev] != count {
				mismatched[prev] = true
			}
		}

		ids := make([]neuron.NeuronID, 0, len(mismatched))
		for prev := range mismatched {
			ids = append(ids, prev)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, prev := range ids {
			errors = append(errors, ValidationError{
				Neuron: n.ID,
				Slot:   -1,
				Ref:    fmt.Sprintf("N-%d", prev),
				Issue:  "back-reference",
			})
		}
	}

	return errors
}
