package neuron

import (
	"errors"
	"sync"
	"testing"
)

// newTestNetwork returns a network with n neurons of threshold 1.
func newTestNetwork(t *testing.T, n int) (*Network, []NeuronID) {
	t.Helper()
	net := NewNetwork(nil)
	ids := make([]NeuronID, n)
	for i := range ids {
		ids[i] = net.AddNeuron(1.0).ID()
	}
	return net, ids
}

func TestAddNeuronConnection(t *testing.T) {
	net, ids := newTestNetwork(t, 2)
	a, b := ids[0], ids[1]

	c, err := net.AddNeuronConnection(a, b, 0.5)
	if err != nil {
		t.Fatalf("AddNeuronConnection() error = %v", err)
	}

	if c.Owner() != a {
		t.Errorf("Owner() = %d, want %d", c.Owner(), a)
	}
	if to, ok := c.Target().Neuron(); !ok || to != b {
		t.Errorf("Target() = %v, want N-%d", c.Target(), b)
	}
	if c.BaseWeight != 0.5 || c.ShortWeight != 0.5 || c.LongWeight != 0.5 {
		t.Errorf("weights = %v/%v/%v, want 0.5 on every tier", c.BaseWeight, c.ShortWeight, c.LongWeight)
	}
	if c.LongLearningWeight != 1 {
		t.Errorf("LongLearningWeight = %v, want 1", c.LongLearningWeight)
	}
	if c.ActivationType != Excitatory || c.Function != FunctionReLU || c.Learning != LearningNone || c.Transmitter != StdTransmitter {
		t.Errorf("defaults = %v/%v/%v/%v", c.ActivationType, c.Function, c.Learning, c.Transmitter)
	}
	if c.PresynapticPotential != DefaultPresynapticPotential {
		t.Errorf("PresynapticPotential = %v, want %v", c.PresynapticPotential, DefaultPresynapticPotential)
	}

	if !net.CheckNeuronConnection(a, b) {
		t.Error("CheckNeuronConnection(a, b) = false after add")
	}
	if net.CheckNeuronConnection(b, a) {
		t.Error("CheckNeuronConnection(b, a) = true, edges are directed")
	}

	prev, err := net.Previous(b)
	if err != nil {
		t.Fatalf("Previous() error = %v", err)
	}
	if len(prev) != 1 || prev[0] != a {
		t.Errorf("Previous(b) = %v, want [%d]", prev, a)
	}
}

func TestAddNeuronConnectionOptions(t *testing.T) {
	net, ids := newTestNetwork(t, 2)

	c, err := net.AddNeuronConnection(ids[0], ids[1], -0.25,
		WithActivationType(Inhibitory),
		WithFunction(FunctionSigmoid),
		WithLearning(LearningHabisens),
		WithTransmitter(NoTransmitter),
	)
	if err != nil {
		t.Fatalf("AddNeuronConnection() error = %v", err)
	}
	if c.ActivationType != Inhibitory || c.Function != FunctionSigmoid || c.Learning != LearningHabisens || c.Transmitter != NoTransmitter {
		t.Errorf("options not applied: %v/%v/%v/%v", c.ActivationType, c.Function, c.Learning, c.Transmitter)
	}
}

func TestAddNeuronConnectionInvalid(t *testing.T) {
	tests := []struct {
		name    string
		opts    []ConnectionOption
		wantErr error
	}{
		{"unknown function", []ConnectionOption{WithFunction(FunctionKind(9))}, ErrUnknownTransform},
		{"bad activation type", []ConnectionOption{WithActivationType(ActivationType(5))}, ErrInvalidParameter},
		{"bad learning", []ConnectionOption{WithLearning(LearningType(0))}, ErrInvalidParameter},
		{"bad transmitter", []ConnectionOption{WithTransmitter(TransmitterType(3))}, ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net, ids := newTestNetwork(t, 2)
			_, err := net.AddNeuronConnection(ids[0], ids[1], 1, tt.opts...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("AddNeuronConnection() error = %v, want %v", err, tt.wantErr)
			}
			if net.CheckNeuronConnection(ids[0], ids[1]) {
				t.Error("rejected connection was added")
			}
		})
	}

	net, ids := newTestNetwork(t, 1)
	if _, err := net.AddNeuronConnection(ids[0], 999, 1); !errors.Is(err, ErrNeuronNotFound) {
		t.Errorf("AddNeuronConnection(unknown target) error = %v, want ErrNeuronNotFound", err)
	}
}

func TestAddNeuronConnectionDuplicate(t *testing.T) {
	net, ids := newTestNetwork(t, 2)
	a, b := ids[0], ids[1]

	if _, err := net.AddNeuronConnection(a, b, 0.5); err != nil {
		t.Fatalf("first AddNeuronConnection() error = %v", err)
	}
	_, err := net.AddNeuronConnection(a, b, 0.9)
	if !errors.Is(err, ErrDuplicateEdge) {
		t.Fatalf("second AddNeuronConnection() error = %v, want ErrDuplicateEdge", err)
	}

	out, _ := net.Outgoing(a)
	if len(out) != 1 {
		t.Errorf("Outgoing(a) has %d connections, want 1", len(out))
	}
	if out[0].BaseWeight != 0.5 {
		t.Errorf("duplicate add changed weight to %v", out[0].BaseWeight)
	}
	prev, _ := net.Previous(b)
	if len(prev) != 1 {
		t.Errorf("Previous(b) = %v, want exactly one back-reference", prev)
	}
}

func TestSelfConnection(t *testing.T) {
	net, ids := newTestNetwork(t, 1)
	a := ids[0]

	if _, err := net.AddNeuronConnection(a, a, 1); err != nil {
		t.Fatalf("AddNeuronConnection(a, a) error = %v", err)
	}
	prev, _ := net.Previous(a)
	if len(prev) != 1 || prev[0] != a {
		t.Errorf("Previous(a) = %v, want [%d]", prev, a)
	}
	if err := net.DelConnection(a, a); err != nil {
		t.Fatalf("DelConnection(a, a) error = %v", err)
	}
	prev, _ = net.Previous(a)
	if len(prev) != 0 {
		t.Errorf("Previous(a) = %v after removal, want empty", prev)
	}
}

func TestAddSynapticConnection(t *testing.T) {
	net, ids := newTestNetwork(t, 3)
	a, b, m := ids[0], ids[1], ids[2]

	ab, err := net.AddNeuronConnection(a, b, 1)
	if err != nil {
		t.Fatalf("AddNeuronConnection() error = %v", err)
	}
	prevBefore, _ := net.Previous(b)

	syn, err := net.AddSynapticConnection(m, ab.Ref(), 0.3)
	if err != nil {
		t.Fatalf("AddSynapticConnection() error = %v", err)
	}
	if ref, ok := syn.Target().Connection(); !ok || ref != ab.Ref() {
		t.Errorf("Target() = %v, want %v", syn.Target(), ab.Ref())
	}
	if _, ok := syn.Target().Neuron(); ok {
		t.Error("presynaptic connection reports a neuron target")
	}

	prevAfter, _ := net.Previous(b)
	if len(prevAfter) != len(prevBefore) {
		t.Errorf("Previous(b) changed from %v to %v", prevBefore, prevAfter)
	}
	for _, id := range ids {
		p, _ := net.Previous(id)
		for _, prev := range p {
			if prev == m {
				t.Errorf("presynaptic source N-%d appears in Previous(N-%d)", m, id)
			}
		}
	}

	dup, err := net.CheckSynapticConnection(m, ab.Ref())
	if err != nil || !dup {
		t.Errorf("CheckSynapticConnection() = %v, %v, want true, nil", dup, err)
	}
	// Presynaptic edges are not visible to the neuron check.
	if net.CheckNeuronConnection(m, b) {
		t.Error("CheckNeuronConnection(m, b) = true for a presynaptic edge")
	}
}

func TestAddSynapticConnectionDuplicate(t *testing.T) {
	net, ids := newTestNetwork(t, 3)
	a, b, m := ids[0], ids[1], ids[2]
	ab, _ := net.AddNeuronConnection(a, b, 1)

	if _, err := net.AddSynapticConnection(m, ab.Ref(), 0.3); err != nil {
		t.Fatalf("first AddSynapticConnection() error = %v", err)
	}
	_, err := net.AddSynapticConnection(m, ab.Ref(), 0.7)
	if !errors.Is(err, ErrDuplicateEdge) {
		t.Fatalf("second AddSynapticConnection() error = %v, want ErrDuplicateEdge", err)
	}
	if out, _ := net.Outgoing(m); len(out) != 1 {
		t.Errorf("Outgoing(m) has %d connections, want 1", len(out))
	}
}

func TestCheckSynapticConnectionTargetKinds(t *testing.T) {
	net, ids := newTestNetwork(t, 5)
	a, b, c, m, x := ids[0], ids[1], ids[2], ids[3], ids[4]

	ab, _ := net.AddNeuronConnection(a, b, 1)
	ac, _ := net.AddNeuronConnection(a, c, 1)
	xa, _ := net.AddNeuronConnection(x, a, 1)
	// a also modulates x -> a, so a owns one presynaptic edge.
	aSyn, err := net.AddSynapticConnection(a, xa.Ref(), 1)
	if err != nil {
		t.Fatalf("AddSynapticConnection(a, x->a) error = %v", err)
	}

	if _, err := net.AddSynapticConnection(m, ab.Ref(), 1); err != nil {
		t.Fatalf("AddSynapticConnection(m, a->b) error = %v", err)
	}

	tests := []struct {
		name string
		ref  ConnectionRef
		want bool
	}{
		{"same owner same neuron target", ab.Ref(), true},
		{"same owner other neuron target", ac.Ref(), true},
		{"same owner connection target vs neuron target", aSyn.Ref(), false},
		{"other owner", xa.Ref(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := net.CheckSynapticConnection(m, tt.ref)
			if err != nil {
				t.Fatalf("CheckSynapticConnection() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CheckSynapticConnection(%s) = %v, want %v", tt.ref, got, tt.want)
			}
		})
	}

	// A presynaptic edge onto a presynaptic edge is matched by its
	// connection target.
	if _, err := net.AddSynapticConnection(m, aSyn.Ref(), 1); err != nil {
		t.Fatalf("AddSynapticConnection(m, a~>x->a) error = %v", err)
	}
	if _, err := net.AddSynapticConnection(m, aSyn.Ref(), 1); !errors.Is(err, ErrDuplicateEdge) {
		t.Errorf("repeat presynaptic-on-presynaptic error = %v, want ErrDuplicateEdge", err)
	}
}

func TestCheckSynapticConnectionSiblings(t *testing.T) {
	// setup returns two connections owned by a with the same target kind.
	tests := []struct {
		name  string
		setup func(t *testing.T, net *Network, a, b, c, x NeuronID) (existing, sibling *Connection)
	}{
		{"neuron-targeted siblings", func(t *testing.T, net *Network, a, b, c, x NeuronID) (*Connection, *Connection) {
			ab, _ := net.AddNeuronConnection(a, b, 1)
			ac, _ := net.AddNeuronConnection(a, c, 1)
			return ab, ac
		}},
		{"connection-targeted siblings", func(t *testing.T, net *Network, a, b, c, x NeuronID) (*Connection, *Connection) {
			xb, _ := net.AddNeuronConnection(x, b, 1)
			xc, _ := net.AddNeuronConnection(x, c, 1)
			aToXB, err := net.AddSynapticConnection(a, xb.Ref(), 1)
			if err != nil {
				t.Fatalf("AddSynapticConnection(a, x->b) error = %v", err)
			}
			aToXC, err := net.AddSynapticConnection(a, xc.Ref(), 1)
			if err != nil {
				t.Fatalf("AddSynapticConnection(a, x->c) error = %v", err)
			}
			return aToXB, aToXC
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net, ids := newTestNetwork(t, 5)
			a, b, c, m, x := ids[0], ids[1], ids[2], ids[3], ids[4]
			existing, sibling := tt.setup(t, net, a, b, c, x)

			if _, err := net.AddSynapticConnection(m, existing.Ref(), 1); err != nil {
				t.Fatalf("AddSynapticConnection(m, %s) error = %v", existing.Ref(), err)
			}
			got, err := net.CheckSynapticConnection(m, sibling.Ref())
			if err != nil {
				t.Fatalf("CheckSynapticConnection() error = %v", err)
			}
			if !got {
				t.Errorf("CheckSynapticConnection(m, %s) = false, want true for a sibling of %s", sibling.Ref(), existing.Ref())
			}
			if _, err := net.AddSynapticConnection(m, sibling.Ref(), 1); !errors.Is(err, ErrDuplicateEdge) {
				t.Errorf("AddSynapticConnection(m, %s) error = %v, want ErrDuplicateEdge", sibling.Ref(), err)
			}
		})
	}
}

func TestAddSynapticConnectionMissingTarget(t *testing.T) {
	net, ids := newTestNetwork(t, 2)

	_, err := net.AddSynapticConnection(ids[0], ConnectionRef{Neuron: ids[1], Slot: 0}, 1)
	if !errors.Is(err, ErrEdgeNotFound) {
		t.Errorf("AddSynapticConnection() error = %v, want ErrEdgeNotFound", err)
	}
	if _, err := net.CheckSynapticConnection(ids[0], ConnectionRef{Neuron: ids[1], Slot: 3}); !errors.Is(err, ErrEdgeNotFound) {
		t.Errorf("CheckSynapticConnection() error = %v, want ErrEdgeNotFound", err)
	}
}

func TestDelConnection(t *testing.T) {
	net, ids := newTestNetwork(t, 3)
	a, b, c := ids[0], ids[1], ids[2]

	net.AddNeuronConnection(a, b, 1)
	ac, _ := net.AddNeuronConnection(a, c, 2)

	if err := net.DelConnection(a, b); err != nil {
		t.Fatalf("DelConnection() error = %v", err)
	}
	if net.CheckNeuronConnection(a, b) {
		t.Error("edge still present after DelConnection")
	}
	if prev, _ := net.Previous(b); len(prev) != 0 {
		t.Errorf("Previous(b) = %v, want empty", prev)
	}

	// The surviving edge keeps its ref.
	got, ok := net.Connection(ac.Ref())
	if !ok || got != ac {
		t.Errorf("Connection(%s) = %v, %v after sibling removal", ac.Ref(), got, ok)
	}

	// Re-adding gets a fresh slot.
	ab, err := net.AddNeuronConnection(a, b, 1)
	if err != nil {
		t.Fatalf("re-add error = %v", err)
	}
	if ab.Ref().Slot != 2 {
		t.Errorf("re-added slot = %d, want 2", ab.Ref().Slot)
	}
}

func TestDelConnectionKeepsPreviousOrder(t *testing.T) {
	net, ids := newTestNetwork(t, 4)
	a, b, c, d := ids[0], ids[1], ids[2], ids[3]

	for _, src := range []NeuronID{a, c, d} {
		if _, err := net.AddNeuronConnection(src, b, 1); err != nil {
			t.Fatalf("AddNeuronConnection(%d, b) error = %v", src, err)
		}
	}
	if err := net.DelConnection(c, b); err != nil {
		t.Fatalf("DelConnection(c, b) error = %v", err)
	}

	prev, err := net.Previous(b)
	if err != nil {
		t.Fatalf("Previous() error = %v", err)
	}
	if len(prev) != 2 || prev[0] != a || prev[1] != d {
		t.Errorf("Previous(b) = %v, want [%d %d]", prev, a, d)
	}
}

func TestDelConnectionMissing(t *testing.T) {
	net, ids := newTestNetwork(t, 2)

	if err := net.DelConnection(ids[0], ids[1]); !errors.Is(err, ErrEdgeNotFound) {
		t.Errorf("DelConnection() error = %v, want ErrEdgeNotFound", err)
	}
	if err := net.DelConnection(ids[0], 77); !errors.Is(err, ErrNeuronNotFound) {
		t.Errorf("DelConnection(unknown) error = %v, want ErrNeuronNotFound", err)
	}
}

func TestDelConnectionCascadesPresynaptic(t *testing.T) {
	net, ids := newTestNetwork(t, 4)
	a, b, m, k := ids[0], ids[1], ids[2], ids[3]

	ab, _ := net.AddNeuronConnection(a, b, 1)
	mSyn, _ := net.AddSynapticConnection(m, ab.Ref(), 1)
	net.AddSynapticConnection(k, mSyn.Ref(), 1)

	if err := net.DelConnection(a, b); err != nil {
		t.Fatalf("DelConnection() error = %v", err)
	}
	if out, _ := net.Outgoing(m); len(out) != 0 {
		t.Errorf("Outgoing(m) = %v, want presynaptic edge removed", out)
	}
	if out, _ := net.Outgoing(k); len(out) != 0 {
		t.Errorf("Outgoing(k) = %v, want transitive presynaptic edge removed", out)
	}
}

func TestDelSynapticConnection(t *testing.T) {
	net, ids := newTestNetwork(t, 3)
	a, b, m := ids[0], ids[1], ids[2]
	ab, _ := net.AddNeuronConnection(a, b, 1)
	net.AddSynapticConnection(m, ab.Ref(), 1)

	if err := net.DelSynapticConnection(m, ab.Ref()); err != nil {
		t.Fatalf("DelSynapticConnection() error = %v", err)
	}
	if dup, _ := net.CheckSynapticConnection(m, ab.Ref()); dup {
		t.Error("presynaptic edge still present")
	}
	if !net.CheckNeuronConnection(a, b) {
		t.Error("DelSynapticConnection removed the modulated edge")
	}
	if err := net.DelSynapticConnection(m, ab.Ref()); !errors.Is(err, ErrEdgeNotFound) {
		t.Errorf("second DelSynapticConnection() error = %v, want ErrEdgeNotFound", err)
	}
}

func TestGetWeight(t *testing.T) {
	net, ids := newTestNetwork(t, 2)
	a, b := ids[0], ids[1]
	c, _ := net.AddNeuronConnection(a, b, 0.5)
	c.ShortWeight = 0.7
	c.LongWeight = 0.6

	tests := []struct {
		tier WeightTier
		want float64
	}{
		{WeightBase, 0.5},
		{WeightLong, 0.6},
		{WeightShort, 0.7},
	}
	for _, tt := range tests {
		t.Run(tt.tier.String(), func(t *testing.T) {
			got, err := net.GetWeight(a, b, tt.tier)
			if err != nil {
				t.Fatalf("GetWeight() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("GetWeight(%s) = %v, want %v", tt.tier, got, tt.want)
			}
		})
	}

	got, err := net.GetWeight(b, a, WeightShort)
	if !errors.Is(err, ErrEdgeNotFound) {
		t.Errorf("GetWeight(missing) error = %v, want ErrEdgeNotFound", err)
	}
	if got != 0 {
		t.Errorf("GetWeight(missing) = %v, want 0", got)
	}

	if _, err := net.GetWeight(a, b, WeightTier(7)); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("GetWeight(bad tier) error = %v, want ErrInvalidParameter", err)
	}
}

func TestConcurrentEdgeMutations(t *testing.T) {
	net, ids := newTestNetwork(t, 20)

	var wg sync.WaitGroup
	for _, from := range ids {
		wg.Add(1)
		go func(from NeuronID) {
			defer wg.Done()
			for _, to := range ids {
				// Every pair is attempted twice; exactly one must win.
				net.AddNeuronConnection(from, to, 1)
				net.AddNeuronConnection(from, to, 1)
			}
		}(from)
	}
	wg.Wait()

	for _, id := range ids {
		out, _ := net.Outgoing(id)
		if len(out) != len(ids) {
			t.Errorf("Outgoing(N-%d) has %d edges, want %d", id, len(out), len(ids))
		}
		prev, _ := net.Previous(id)
		if len(prev) != len(ids) {
			t.Errorf("Previous(N-%d) has %d entries, want %d", id, len(prev), len(ids))
		}
	}
}
