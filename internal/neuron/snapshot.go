package neuron

import (
	"fmt"

	"github.com/google/uuid"
)

// SnapshotSchemaVersion is the current snapshot record layout.
const SnapshotSchemaVersion = 1

// Snapshot is a plain-data copy of a Network, suitable for encoding.
type Snapshot struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	SchemaVersion int            `json:"schema_version"`
	NextID        NeuronID       `json:"next_id"`
	Neurons       []NeuronRecord `json:"neurons"`
}

// NeuronRecord is the persisted form of a Neuron.
type NeuronRecord struct {
	ID                            NeuronID           `json:"id"`
	Threshold                     float64            `json:"threshold"`
	Activation                    float64            `json:"activation"`
	TempActivation                float64            `json:"temp_activation"`
	LastActivatedStep             int64              `json:"last_activated_step"`
	LastFiredStep                 int64              `json:"last_fired_step"`
	WasActivated                  bool               `json:"was_activated"`
	Random                        RandomActivation   `json:"random"`
	Curves                        map[string]Curve   `json:"curves,omitempty"`
	HabituationThreshold          float64            `json:"habituation_threshold"`
	SensitizationThreshold        float64            `json:"sensitization_threshold"`
	InfluencedTransmitter         TransmitterType    `json:"influenced_transmitter"`
	TransmitterInfluenceDirection Influence          `json:"transmitter_influence_direction"`
	Previous                      []NeuronID         `json:"previous,omitempty"`
	Slots                         int                `json:"slots"`
	Connections                   []ConnectionRecord `json:"connections,omitempty"`
}

// ConnectionRecord is the persisted form of a Connection. Slot keeps refs
// stable across a round trip even when earlier slots were removed.
type ConnectionRecord struct {
	Slot                         int             `json:"slot"`
	Target                       Target          `json:"target"`
	ActivationType               ActivationType  `json:"activation_type"`
	Function                     FunctionKind    `json:"function"`
	Learning                     LearningType    `json:"learning"`
	Transmitter                  TransmitterType `json:"transmitter"`
	BaseWeight                   float64         `json:"base_weight"`
	ShortWeight                  float64         `json:"short_weight"`
	LongWeight                   float64         `json:"long_weight"`
	LongLearningWeight           float64         `json:"long_learning_weight"`
	PresynapticPotential         float64         `json:"presynaptic_potential"`
	LastActivatedStep            int64           `json:"last_activated_step"`
	LastPresynapticActivatedStep int64           `json:"last_presynaptic_activated_step"`
}

// ConnectionCount returns the number of live connections in the snapshot.
func (s Snapshot) ConnectionCount() int {
	count := 0
	for _, n := range s.Neurons {
		count += len(n.Connections)
	}
	return count
}

// Snapshot copies the network into plain records under the given name.
func (net *Network) Snapshot(name string) Snapshot {
	net.mu.RLock()
	defer net.mu.RUnlock()

	snap := Snapshot{
		ID:            uuid.NewString(),
		Name:          name,
		SchemaVersion: SnapshotSchemaVersion,
		NextID:        net.ids.Peek(),
		Neurons:       make([]NeuronRecord, 0, len(net.order)),
	}
	for _, id := range net.order {
		snap.Neurons = append(snap.Neurons, recordNeuron(net.neurons[id]))
	}
	return snap
}

func recordNeuron(n *Neuron) NeuronRecord {
	rec := NeuronRecord{
		ID:                            n.id,
		Threshold:                     n.Threshold,
		Activation:                    n.Activation,
		TempActivation:                n.TempActivation,
		LastActivatedStep:             n.LastActivatedStep,
		LastFiredStep:                 n.LastFiredStep,
		WasActivated:                  n.WasActivated,
		Random:                        n.random,
		HabituationThreshold:          n.habituationThreshold,
		SensitizationThreshold:        n.sensitizationThreshold,
		InfluencedTransmitter:         n.influencedTransmitter,
		TransmitterInfluenceDirection: n.influenceDirection,
		Previous:                      n.Previous(),
		Slots:                         len(n.connections),
	}
	for kind, c := range n.curves {
		if c == (Curve{}) {
			continue
		}
		if rec.Curves == nil {
			rec.Curves = make(map[string]Curve)
		}
		rec.Curves[CurveKind(kind).String()] = c
	}
	for _, c := range n.connections {
		if c == nil {
			continue
		}
		rec.Connections = append(rec.Connections, ConnectionRecord{
			Slot:                         c.ref.Slot,
			Target:                       c.target,
			ActivationType:               c.ActivationType,
			Function:                     c.Function,
			Learning:                     c.Learning,
			Transmitter:                  c.Transmitter,
			BaseWeight:                   c.BaseWeight,
			ShortWeight:                  c.ShortWeight,
			LongWeight:                   c.LongWeight,
			LongLearningWeight:           c.LongLearningWeight,
			PresynapticPotential:         c.PresynapticPotential,
			LastActivatedStep:            c.LastActivatedStep,
			LastPresynapticActivatedStep: c.LastPresynapticActivatedStep,
		})
	}
	return rec
}

// Restore rebuilds a Network from a snapshot. The snapshot must be
// internally consistent: every target resolves, and every neuron's
// back-references match the neuron-targeted edges pointing at it.
func Restore(snap Snapshot) (*Network, error) {
	if snap.SchemaVersion != SnapshotSchemaVersion {
		return nil, fmt.Errorf("unsupported snapshot schema version %d", snap.SchemaVersion)
	}

	ids := NewIDAllocator(snap.NextID)
	net := NewNetwork(ids)

	for _, rec := range snap.Neurons {
		if _, dup := net.neurons[rec.ID]; dup {
			return nil, fmt.Errorf("snapshot lists N-%d twice", rec.ID)
		}
		n, err := restoreNeuron(rec)
		if err != nil {
			return nil, fmt.Errorf("restore N-%d: %w", rec.ID, err)
		}
		ids.Reserve(rec.ID)
		net.insertLocked(n)
	}

	if err := net.validateLocked(); err != nil {
		return nil, err
	}
	return net, nil
}

func restoreNeuron(rec NeuronRecord) (*Neuron, error) {
	n := newNeuron(rec.ID, rec.Threshold)
	n.Activation = rec.Activation
	n.TempActivation = rec.TempActivation
	n.LastActivatedStep = rec.LastActivatedStep
	n.LastFiredStep = rec.LastFiredStep
	n.WasActivated = rec.WasActivated

	if rec.Random.Enabled {
		if err := n.SetRandomActivation(rec.Random.Chance, rec.Random.Value); err != nil {
			return nil, err
		}
	}
	for name, c := range rec.Curves {
		kind, err := ParseCurveKind(name)
		if err != nil {
			return nil, err
		}
		if err := n.SetCurve(kind, c); err != nil {
			return nil, err
		}
	}
	if err := n.SetHabituationThreshold(rec.HabituationThreshold); err != nil {
		return nil, err
	}
	if err := n.SetSensitizationThreshold(rec.SensitizationThreshold); err != nil {
		return nil, err
	}
	if err := n.SetInfluencedTransmitter(rec.InfluencedTransmitter); err != nil {
		return nil, err
	}
	if err := n.SetTransmitterInfluenceDirection(rec.TransmitterInfluenceDirection); err != nil {
		return nil, err
	}

	n.previous = append([]NeuronID(nil), rec.Previous...)
	n.connections = make([]*Connection, rec.Slots)
	for _, cr := range rec.Connections {
		if cr.Slot < 0 || cr.Slot >= rec.Slots {
			return nil, fmt.Errorf("slot %d outside [0, %d)", cr.Slot, rec.Slots)
		}
		if n.connections[cr.Slot] != nil {
			return nil, fmt.Errorf("slot %d used twice", cr.Slot)
		}
		if cr.Target.Kind() == TargetInvalid {
			return nil, fmt.Errorf("slot %d has no target", cr.Slot)
		}
		settings := connectionSettings{
			activationType: cr.ActivationType,
			function:       cr.Function,
			learning:       cr.Learning,
			transmitter:    cr.Transmitter,
		}
		if err := settings.validate(); err != nil {
			return nil, fmt.Errorf("slot %d: %w", cr.Slot, err)
		}
		c := newConnection(ConnectionRef{Neuron: rec.ID, Slot: cr.Slot}, cr.Target, cr.BaseWeight, settings)
		c.ShortWeight = cr.ShortWeight
		c.LongWeight = cr.LongWeight
		c.LongLearningWeight = cr.LongLearningWeight
		c.PresynapticPotential = cr.PresynapticPotential
		c.LastActivatedStep = cr.LastActivatedStep
		c.LastPresynapticActivatedStep = cr.LastPresynapticActivatedStep
		n.connections[cr.Slot] = c
	}
	return n, nil
}

// validateLocked checks targets, duplicate neuron edges and back-references.
func (net *Network) validateLocked() error {
	incoming := make(map[NeuronID]map[NeuronID]int)
	for _, id := range net.order {
		n := net.neurons[id]
		seen := make(map[NeuronID]bool)
		for _, c := range n.connections {
			if c == nil {
				continue
			}
			switch c.target.Kind() {
			case TargetNeuron:
				to, _ := c.target.Neuron()
				if _, ok := net.neurons[to]; !ok {
					return fmt.Errorf("%s targets missing N-%d", c.ref, to)
				}
				if seen[to] {
					return fmt.Errorf("%w: N-%d is connected with N-%d twice", ErrDuplicateEdge, id, to)
				}
				seen[to] = true
				if incoming[to] == nil {
					incoming[to] = make(map[NeuronID]int)
				}
				incoming[to][id]++
			case TargetConnection:
				ref, _ := c.target.Connection()
				if net.resolveLocked(ref) == nil {
					return fmt.Errorf("%s targets missing %s", c.ref, ref)
				}
				if ref == c.ref {
					return fmt.Errorf("%s targets itself", c.ref)
				}
			}
		}
	}

	for _, id := range net.order {
		n := net.neurons[id]
		got := make(map[NeuronID]int, len(n.previous))
		for _, prev := range n.previous {
			got[prev]++
		}
		want := incoming[id]
		if len(got) != len(want) {
			return fmt.Errorf("N-%d back-references %v do not match incoming edges", id, n.previous)
		}
		for prev, count := range want {
			if got[prev] != count {
				return fmt.Errorf("N-%d back-references %v do not match incoming edges", id, n.previous)
			}
		}
	}
	return nil
}
