// Package visualization renders neuron networks in various output formats.
package visualization

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"github.com/Cycrus/COGNA/internal/neuron"
)

// Format specifies the output format for graph rendering.
type Format string

const (
	FormatDOT  Format = "dot"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

// edgeColors maps activation types to DOT colors.
var edgeColors = map[neuron.ActivationType]string{
	neuron.Excitatory:     "forestgreen",
	neuron.Inhibitory:     "firebrick",
	neuron.Nondirectional: "gray40",
}

// edgeStyles maps activation functions to DOT styles.
var edgeStyles = map[neuron.FunctionKind]string{
	neuron.FunctionSigmoid: "solid",
	neuron.FunctionLinear:  "dashed",
	neuron.FunctionReLU:    "bold",
}

// Node is a neuron in the JSON rendering.
type Node struct {
	ID         string  `json:"id"`
	Neuron     int64   `json:"neuron"`
	Threshold  float64 `json:"threshold"`
	Activation float64 `json:"activation"`
	Active     bool    `json:"active"`
	InDegree   int     `json:"in_degree"`
	OutDegree  int     `json:"out_degree"`
}

// Edge is a connection in the JSON rendering. Target is a neuron id
// ("N-2") for feed-forward edges and a connection ref ("C-1#0") for
// presynaptic edges.
type Edge struct {
	ID             string  `json:"id"`
	Source         string  `json:"source"`
	Target         string  `json:"target"`
	Kind           string  `json:"kind"`
	Weight         float64 `json:"weight"`
	ShortWeight    float64 `json:"short_weight"`
	LongWeight     float64 `json:"long_weight"`
	ActivationType string  `json:"activation_type"`
	Function       string  `json:"function"`
	Learning       string  `json:"learning"`
}

// Graph is the JSON rendering of a network.
type Graph struct {
	Nodes           []Node `json:"nodes"`
	Edges           []Edge `json:"edges"`
	NeuronCount     int    `json:"neuron_count"`
	ConnectionCount int    `json:"connection_count"`
}

// RenderDOT produces a Graphviz DOT representation of the network.
//
// A connection that is itself the target of presynaptic edges is split at
// a junction point so the modulating edges have somewhere to land.
func RenderDOT(net *neuron.Network, name string) string {
	if name == "" {
		name = "cogna"
	}
	conns := collectConnections(net)

	modulated := make(map[neuron.ConnectionRef]bool)
	for _, c := range conns {
		if ref, ok := c.Target().Connection(); ok {
			modulated[ref] = true
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "digraph %q {\n", name)
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=circle, style=filled, fontname=\"Helvetica\"];\n")
	b.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n\n")

	for _, n := range net.Neurons() {
		fill := "lightgray"
		if n.IsActive() {
			fill = "gold"
		}
		fmt.Fprintf(&b, "  %q [label=%q, fillcolor=%q, tooltip=\"threshold=%.2f activation=%.2f\"];\n",
			n.String(), n.String(), fill, n.Threshold, n.Activation)
	}

	for _, c := range conns {
		if modulated[c.Ref()] {
			fmt.Fprintf(&b, "  %q [shape=point, width=0.08, label=\"\"];\n", c.Ref().String())
		}
	}
	b.WriteString("\n")

	for _, c := range conns {
		attrs := edgeAttrs(c)
		src := c.Owner().String()
		dst := c.Target().String()

		if modulated[c.Ref()] {
			junction := c.Ref().String()
			fmt.Fprintf(&b, "  %q -> %q [%s, arrowhead=none];\n", src, junction, attrs)
			fmt.Fprintf(&b, "  %q -> %q [color=%q];\n", junction, dst, edgeColors[c.ActivationType])
			continue
		}
		fmt.Fprintf(&b, "  %q -> %q [%s];\n", src, dst, attrs)
	}

	b.WriteString("}\n")
	return b.String()
}

func edgeAttrs(c *neuron.Connection) string {
	color := edgeColors[c.ActivationType]
	if color == "" {
		color = "black"
	}
	style := edgeStyles[c.Function]
	if style == "" {
		style = "dotted"
	}
	return fmt.Sprintf("label=\"%.2f\", color=%q, style=%s, tooltip=%q",
		c.ShortWeight, color, style, c.Ref().String()+" "+c.Function.String())
}

// RenderJSON produces a JSON-friendly graph with nodes and edges arrays.
func RenderJSON(net *neuron.Network) Graph {
	neurons := net.Neurons()
	g := Graph{
		Nodes: make([]Node, 0, len(neurons)),
		Edges: []Edge{},
	}
	for _, n := range neurons {
		g.Nodes = append(g.Nodes, Node{
			ID:         n.String(),
			Neuron:     int64(n.ID()),
			Threshold:  n.Threshold,
			Activation: n.Activation,
			Active:     n.IsActive(),
			InDegree:   len(n.Previous()),
			OutDegree:  n.OutDegree(),
		})
	}
	for _, c := range collectConnections(net) {
		g.Edges = append(g.Edges, Edge{
			ID:             c.Ref().String(),
			Source:         c.Owner().String(),
			Target:         c.Target().String(),
			Kind:           c.Target().Kind().String(),
			Weight:         c.BaseWeight,
			ShortWeight:    c.ShortWeight,
			LongWeight:     c.LongWeight,
			ActivationType: c.ActivationType.String(),
			Function:       c.Function.String(),
			Learning:       c.Learning.String(),
		})
	}
	g.NeuronCount = len(g.Nodes)
	g.ConnectionCount = len(g.Edges)
	return g
}

// htmlTemplateData holds data passed to the HTML template.
// GraphJSON is pre-sanitized JSON (via json.HTMLEscape) safe for inline <script>.
type htmlTemplateData struct {
	Title      string
	Graph      Graph
	DOT        string
	GraphJSON  template.JS
	APIBaseURL string
}

// RenderHTML produces a self-contained HTML page listing the network.
func RenderHTML(net *neuron.Network, name string) ([]byte, error) {
	return renderHTML(net, name, "")
}

// RenderHTMLForServer is RenderHTML with the transmit form pointed at apiBaseURL.
func RenderHTMLForServer(net *neuron.Network, name, apiBaseURL string) ([]byte, error) {
	return renderHTML(net, name, apiBaseURL)
}

func renderHTML(net *neuron.Network, name, apiBaseURL string) ([]byte, error) {
	graph := RenderJSON(net)
	graphJSON, err := json.Marshal(graph)
	if err != nil {
		return nil, fmt.Errorf("marshal graph data: %w", err)
	}

	tmplBytes, err := templates.ReadFile("templates/graph.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("read HTML template: %w", err)
	}
	tmpl, err := template.New("graph").Parse(string(tmplBytes))
	if err != nil {
		return nil, fmt.Errorf("parse HTML template: %w", err)
	}

	// json.HTMLEscape turns <, > and & into unicode escapes so nothing can
	// close the surrounding <script>.
	var escaped bytes.Buffer
	json.HTMLEscape(&escaped, graphJSON)

	if name == "" {
		name = "cogna"
	}
	var buf bytes.Buffer
	data := htmlTemplateData{
		Title:      name,
		Graph:      graph,
		DOT:        RenderDOT(net, name),
		GraphJSON:  template.JS(escaped.String()), // #nosec G203
		APIBaseURL: apiBaseURL,
	}
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute HTML template: %w", err)
	}
	return buf.Bytes(), nil
}

// collectConnections returns every live connection in neuron creation
// order, then slot order.
func collectConnections(net *neuron.Network) []*neuron.Connection {
	var out []*neuron.Connection
	for _, n := range net.Neurons() {
		out = append(out, n.Connections()...)
	}
	return out
}
