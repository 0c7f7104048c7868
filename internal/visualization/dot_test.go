package visualization

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/Cycrus/COGNA/internal/neuron"
)

// testNetwork builds N-1 -> N-2 with N-3 modulating that edge, plus an
// inhibitory N-2 -> N-3.
func testNetwork(t *testing.T) *neuron.Network {
	t.Helper()
	net := neuron.NewNetwork(neuron.NewIDAllocator(1))
	a := net.AddNeuron(1).ID()
	b := net.AddNeuron(0.5).ID()
	m := net.AddNeuron(1).ID()

	ab, err := net.AddNeuronConnection(a, b, 0.8, neuron.WithFunction(neuron.FunctionSigmoid))
	if err != nil {
		t.Fatalf("AddNeuronConnection() error = %v", err)
	}
	if _, err := net.AddNeuronConnection(b, m, 0.4, neuron.WithActivationType(neuron.Inhibitory)); err != nil {
		t.Fatalf("AddNeuronConnection() error = %v", err)
	}
	if _, err := net.AddSynapticConnection(m, ab.Ref(), 0.3); err != nil {
		t.Fatalf("AddSynapticConnection() error = %v", err)
	}
	n, _ := net.Neuron(b)
	n.Activation = 0.9
	return net
}

func TestRenderDOT_Empty(t *testing.T) {
	dot := RenderDOT(neuron.NewNetwork(nil), "")

	if !strings.HasPrefix(dot, `digraph "cogna" {`) {
		t.Errorf("DOT should start with the default graph name, got:\n%s", dot)
	}
	if !strings.HasSuffix(dot, "}\n") {
		t.Error("DOT should end with closing brace")
	}
	if strings.Contains(dot, "->") {
		t.Error("empty network should have no edges")
	}
}

func TestRenderDOT_Edges(t *testing.T) {
	dot := RenderDOT(testNetwork(t), "demo")

	checks := []struct {
		name string
		want string
	}{
		{"graph name", `digraph "demo" {`},
		{"neuron node", `"N-1" [label="N-1"`},
		{"active neuron filled", `"N-2" [label="N-2", fillcolor="gold"`},
		{"junction for modulated edge", `"C-1#0" [shape=point`},
		{"modulated edge split at junction", `"N-1" -> "C-1#0"`},
		{"junction continues to target", `"C-1#0" -> "N-2"`},
		{"presynaptic edge lands on junction", `"N-3" -> "C-1#0"`},
		{"plain edge", `"N-2" -> "N-3"`},
		{"inhibitory color", `color="firebrick"`},
		{"sigmoid style", `style=solid`},
	}
	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			if !strings.Contains(dot, c.want) {
				t.Errorf("DOT missing %q:\n%s", c.want, dot)
			}
		})
	}

	if strings.Contains(dot, `"C-2#0" [shape=point`) {
		t.Error("unmodulated edge should not get a junction")
	}
}

func TestRenderJSON(t *testing.T) {
	g := RenderJSON(testNetwork(t))

	if g.NeuronCount != 3 || len(g.Nodes) != 3 {
		t.Errorf("NeuronCount = %d, nodes = %d, want 3", g.NeuronCount, len(g.Nodes))
	}
	if g.ConnectionCount != 3 || len(g.Edges) != 3 {
		t.Fatalf("ConnectionCount = %d, edges = %d, want 3", g.ConnectionCount, len(g.Edges))
	}

	byID := make(map[string]Edge)
	for _, e := range g.Edges {
		byID[e.ID] = e
	}
	syn, ok := byID["C-3#0"]
	if !ok {
		t.Fatalf("missing presynaptic edge C-3#0 in %+v", g.Edges)
	}
	if syn.Kind != "connection" || syn.Target != "C-1#0" {
		t.Errorf("presynaptic edge = %+v, want kind connection targeting C-1#0", syn)
	}
	if e := byID["C-2#0"]; e.ActivationType != "inhibitory" || e.Target != "N-3" {
		t.Errorf("C-2#0 = %+v, want inhibitory edge to N-3", e)
	}
	if e := byID["C-1#0"]; e.Function != "sigmoid" || e.Weight != 0.8 {
		t.Errorf("C-1#0 = %+v, want sigmoid with base weight 0.8", e)
	}

	if !g.Nodes[1].Active {
		t.Error("N-2 should be active")
	}
	if g.Nodes[1].InDegree != 1 || g.Nodes[1].OutDegree != 1 {
		t.Errorf("N-2 degrees = in %d out %d, want 1/1", g.Nodes[1].InDegree, g.Nodes[1].OutDegree)
	}

	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"connection_count":3`) {
		t.Errorf("JSON = %s", data)
	}
}

func TestRenderJSON_EmptyEdgesNotNull(t *testing.T) {
	data, err := json.Marshal(RenderJSON(neuron.NewNetwork(nil)))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"edges":[]`) || !strings.Contains(string(data), `"nodes":[]`) {
		t.Errorf("JSON = %s, want empty arrays", data)
	}
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML(testNetwork(t), "demo")
	if err != nil {
		t.Fatalf("RenderHTML() error = %v", err)
	}
	s := string(html)

	for _, want := range []string{"<title>demo network</title>", "C-3#0", `id="graph-data"`, "3 neurons, 3 connections"} {
		if !strings.Contains(s, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
	if strings.Contains(s, `id="transmit"`) {
		t.Error("static HTML should not include the transmit form")
	}
}

func TestRenderHTML_EscapesName(t *testing.T) {
	html, err := RenderHTML(neuron.NewNetwork(nil), "</script><b>x")
	if err != nil {
		t.Fatalf("RenderHTML() error = %v", err)
	}
	if strings.Contains(string(html), "<b>x") {
		t.Error("network name was not escaped")
	}
}
