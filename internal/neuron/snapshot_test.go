package neuron

import (
	"encoding/json"
	"errors"
	"testing"
)

func buildSnapshotNetwork(t *testing.T) (*Network, []NeuronID) {
	t.Helper()
	net, ids := newTestNetwork(t, 4)
	a, b, c, m := ids[0], ids[1], ids[2], ids[3]

	ab, _ := net.AddNeuronConnection(a, b, 0.5, WithFunction(FunctionSigmoid))
	if _, err := net.AddNeuronConnection(a, c, 0.1); err != nil {
		t.Fatalf("AddNeuronConnection() error = %v", err)
	}
	if _, err := net.AddNeuronConnection(b, c, -1, WithActivationType(Inhibitory)); err != nil {
		t.Fatalf("AddNeuronConnection() error = %v", err)
	}
	if _, err := net.AddSynapticConnection(m, ab.Ref(), 0.2, WithLearning(LearningHabituation)); err != nil {
		t.Fatalf("AddSynapticConnection() error = %v", err)
	}
	// Leave a tombstone at a's slot 1.
	if err := net.DelConnection(a, c); err != nil {
		t.Fatalf("DelConnection() error = %v", err)
	}

	n, _ := net.Neuron(b)
	n.Activation = 0.75
	n.SetStep(9)
	_ = n.SetCurve(LongSensitization, Curve{Curvature: 2, Steepness: 0.5})
	_ = n.SetRandomActivation(250, 0.4)
	return net, ids
}

func TestSnapshotRoundTrip(t *testing.T) {
	net, ids := buildSnapshotNetwork(t)
	a, b, m := ids[0], ids[1], ids[3]

	snap := net.Snapshot("test")
	if snap.ID == "" {
		t.Error("snapshot has no id")
	}
	if snap.ConnectionCount() != 3 {
		t.Errorf("ConnectionCount() = %d, want 3", snap.ConnectionCount())
	}

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var decoded Snapshot
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	restored, err := Restore(decoded)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	if restored.Len() != net.Len() {
		t.Errorf("Len() = %d, want %d", restored.Len(), net.Len())
	}
	if !restored.CheckNeuronConnection(a, b) {
		t.Error("a->b lost in round trip")
	}
	if restored.CheckNeuronConnection(a, ids[2]) {
		t.Error("removed a->c came back")
	}

	// a->b keeps slot 0 and the presynaptic edge still resolves to it.
	out, _ := restored.Outgoing(m)
	if len(out) != 1 {
		t.Fatalf("Outgoing(m) = %v, want 1 presynaptic edge", out)
	}
	ref, ok := out[0].Target().Connection()
	if !ok || ref != (ConnectionRef{Neuron: a, Slot: 0}) {
		t.Errorf("presynaptic target = %v, want C-%d#0", out[0].Target(), a)
	}
	if out[0].Learning != LearningHabituation {
		t.Errorf("Learning = %v, want habituation", out[0].Learning)
	}

	w, err := restored.GetWeight(a, b, WeightBase)
	if err != nil || w != 0.5 {
		t.Errorf("GetWeight() = %v, %v, want 0.5", w, err)
	}

	n, _ := restored.Neuron(b)
	if n.Activation != 0.75 || n.Step() != 9 {
		t.Errorf("neuron state = %v/%d, want 0.75/9", n.Activation, n.Step())
	}
	if got := n.Curve(LongSensitization); got != (Curve{Curvature: 2, Steepness: 0.5}) {
		t.Errorf("Curve() = %+v", got)
	}
	if got := n.RandomActivation(); !got.Enabled || got.Chance != 250 {
		t.Errorf("RandomActivation() = %+v", got)
	}

	// New neurons never reuse a restored id, and new edges never reuse a slot.
	fresh := restored.AddNeuron(1)
	if fresh.ID() != ids[3]+1 {
		t.Errorf("fresh id = %d, want %d", fresh.ID(), ids[3]+1)
	}
	added, err := restored.AddNeuronConnection(a, ids[2], 1)
	if err != nil {
		t.Fatalf("AddNeuronConnection() error = %v", err)
	}
	if added.Ref().Slot != 2 {
		t.Errorf("new slot = %d, want 2", added.Ref().Slot)
	}
}

func TestRestoreRejectsInconsistentSnapshots(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{"schema version", func(s *Snapshot) { s.SchemaVersion = 99 }},
		{"duplicate neuron", func(s *Snapshot) { s.Neurons = append(s.Neurons, s.Neurons[0]) }},
		{"missing back-reference", func(s *Snapshot) { s.Neurons[1].Previous = nil }},
		{"extra back-reference", func(s *Snapshot) {
			s.Neurons[2].Previous = append(s.Neurons[2].Previous, s.Neurons[3].ID)
		}},
		{"dangling neuron target", func(s *Snapshot) {
			s.Neurons[0].Connections[0].Target = NeuronTarget(999)
		}},
		{"dangling connection target", func(s *Snapshot) {
			s.Neurons[3].Connections[0].Target = ConnectionTarget(ConnectionRef{Neuron: s.Neurons[0].ID, Slot: 1})
		}},
		{"slot out of range", func(s *Snapshot) { s.Neurons[0].Connections[0].Slot = 10 }},
		{"unknown function", func(s *Snapshot) { s.Neurons[0].Connections[0].Function = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net, _ := buildSnapshotNetwork(t)
			snap := net.Snapshot("bad")
			tt.mutate(&snap)
			if _, err := Restore(snap); err == nil {
				t.Error("Restore() error = nil, want rejection")
			}
		})
	}
}

func TestRestoreUnknownFunctionIsUnknownTransform(t *testing.T) {
	net, _ := buildSnapshotNetwork(t)
	snap := net.Snapshot("bad")
	snap.Neurons[0].Connections[0].Function = 8

	if _, err := Restore(snap); !errors.Is(err, ErrUnknownTransform) {
		t.Errorf("Restore() error = %v, want ErrUnknownTransform", err)
	}
}
