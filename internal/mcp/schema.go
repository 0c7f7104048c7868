// Package mcp provides an MCP (Model Context Protocol) server for cogna.
package mcp

import (
	"time"

	"github.com/Cycrus/COGNA/internal/visualization"
)

// NeuronInput defines the input for the cogna_neuron tool.
type NeuronInput struct {
	Network   string   `json:"network,omitempty" jsonschema:"Network name (default: the server's default network)"`
	Action    string   `json:"action" jsonschema:"One of 'add', 'remove' or 'show'"`
	ID        string   `json:"id,omitempty" jsonschema:"Neuron id such as 'N-3' (remove and show)"`
	Threshold *float64 `json:"threshold,omitempty" jsonschema:"Activation threshold for a new neuron (add; default from config)"`
}

// NeuronOutput defines the output for the cogna_neuron tool.
type NeuronOutput struct {
	Network string        `json:"network"`
	Action  string        `json:"action"`
	Neuron  *NeuronDetail `json:"neuron,omitempty"`
	Message string        `json:"message"`
}

// NeuronDetail is a read-only view of one neuron.
type NeuronDetail struct {
	ID          string             `json:"id"`
	Threshold   float64            `json:"threshold"`
	Activation  float64            `json:"activation"`
	Active      bool               `json:"active"`
	Previous    []string           `json:"previous"`
	Connections []ConnectionDetail `json:"connections"`
}

// ConnectionDetail is a read-only view of one connection.
type ConnectionDetail struct {
	Ref            string  `json:"ref"`
	Target         string  `json:"target"`
	Kind           string  `json:"kind"`
	ActivationType string  `json:"activation_type"`
	Function       string  `json:"function"`
	Learning       string  `json:"learning"`
	Transmitter    string  `json:"transmitter"`
	BaseWeight     float64 `json:"base_weight"`
	ShortWeight    float64 `json:"short_weight"`
	LongWeight     float64 `json:"long_weight"`
}

// EdgeInput names an edge by its source neuron and either a target neuron
// or a target connection. Exactly one of To and Ref must be set.
type EdgeInput struct {
	Network string `json:"network,omitempty" jsonschema:"Network name (default: the server's default network)"`
	From    string `json:"from" jsonschema:"Source neuron id such as 'N-1'"`
	To      string `json:"to,omitempty" jsonschema:"Target neuron id for a feed-forward edge"`
	Ref     string `json:"ref,omitempty" jsonschema:"Target connection ref such as 'C-1#0' for a presynaptic edge"`
}

// ConnectInput defines the input for the cogna_connect tool.
type ConnectInput struct {
	EdgeInput
	Weight         *float64 `json:"weight,omitempty" jsonschema:"Initial weight for the base, short and long tiers (default from config)"`
	ActivationType string   `json:"activation_type,omitempty" jsonschema:"excitatory, inhibitory or nondirectional (default from config)"`
	Function       string   `json:"function,omitempty" jsonschema:"sigmoid, linear or relu (default from config)"`
	Learning       string   `json:"learning,omitempty" jsonschema:"none, habituation, sensitization or habisens (default from config)"`
	Transmitter    string   `json:"transmitter,omitempty" jsonschema:"none or standard (default from config)"`
}

// ConnectOutput defines the output for the cogna_connect tool.
type ConnectOutput struct {
	Network    string           `json:"network"`
	Connection ConnectionDetail `json:"connection"`
	Message    string           `json:"message"`
}

// DisconnectOutput defines the output for the cogna_disconnect tool.
type DisconnectOutput struct {
	Network string `json:"network"`
	Removed string `json:"removed"`
	Message string `json:"message"`
}

// CheckOutput defines the output for the cogna_check tool.
type CheckOutput struct {
	Network string `json:"network"`
	Exists  bool   `json:"exists" jsonschema:"Whether the edge already exists"`
}

// WeightInput defines the input for the cogna_weight tool.
type WeightInput struct {
	Network string `json:"network,omitempty" jsonschema:"Network name (default: the server's default network)"`
	From    string `json:"from" jsonschema:"Source neuron id"`
	To      string `json:"to" jsonschema:"Target neuron id"`
	Tier    string `json:"tier,omitempty" jsonschema:"base, short or long (default: short)"`
}

// WeightOutput defines the output for the cogna_weight tool.
type WeightOutput struct {
	Network string  `json:"network"`
	Tier    string  `json:"tier"`
	Weight  float64 `json:"weight"`
}

// TransmitInput defines the input for the cogna_transmit tool.
type TransmitInput struct {
	Network string  `json:"network,omitempty" jsonschema:"Network name (default: the server's default network)"`
	Ref     string  `json:"ref" jsonschema:"Connection ref such as 'C-1#0'"`
	Input   float64 `json:"input" jsonschema:"Signal entering the connection"`
}

// TransmitOutput defines the output for the cogna_transmit tool.
type TransmitOutput struct {
	Network  string  `json:"network"`
	Ref      string  `json:"ref"`
	Function string  `json:"function"`
	Output   float64 `json:"output"`
}

// GraphInput defines the input for the cogna_graph tool.
type GraphInput struct {
	Network string `json:"network,omitempty" jsonschema:"Network name (default: the server's default network)"`
	Format  string `json:"format,omitempty" jsonschema:"Output format: 'dot' or 'json' (default: 'json')"`
}

// GraphOutput defines the output for the cogna_graph tool.
type GraphOutput struct {
	Network string               `json:"network"`
	Format  string               `json:"format"`
	DOT     string               `json:"dot,omitempty"`
	Graph   *visualization.Graph `json:"graph,omitempty"`
}

// ListInput defines the input for the cogna_list tool.
type ListInput struct{}

// ListOutput defines the output for the cogna_list tool.
type ListOutput struct {
	Networks []NetworkSummary `json:"networks"`
	Count    int              `json:"count"`
}

// NetworkSummary provides a list view of a stored network.
type NetworkSummary struct {
	Name        string    `json:"name"`
	Neurons     int       `json:"neurons"`
	Connections int       `json:"connections"`
	SavedAt     time.Time `json:"saved_at"`
}

// ValidateInput defines the input for the cogna_validate tool.
type ValidateInput struct {
	Network string `json:"network,omitempty" jsonschema:"Network name (default: the server's default network)"`
}

// ValidateOutput defines the output for the cogna_validate tool.
type ValidateOutput struct {
	Network string   `json:"network"`
	Valid   bool     `json:"valid"`
	Issues  []string `json:"issues,omitempty"`
}

// BackupInput defines the input for the cogna_backup tool.
type BackupInput struct {
	OutputPath string   `json:"output_path,omitempty" jsonschema:"Backup file path inside the backup directory (default: a timestamped file there)"`
	Networks   []string `json:"networks,omitempty" jsonschema:"Networks to include (default: all)"`
	Compress   *bool    `json:"compress,omitempty" jsonschema:"Write the compressed V2 format (default from config)"`
}

// BackupOutput defines the output for the cogna_backup tool.
type BackupOutput struct {
	Path            string   `json:"path"`
	NetworkCount    int      `json:"network_count"`
	NeuronCount     int      `json:"neuron_count"`
	ConnectionCount int      `json:"connection_count"`
	Version         int      `json:"version"`
	Compressed      bool     `json:"compressed"`
	SizeBytes       int64    `json:"size_bytes"`
	Pruned          []string `json:"pruned,omitempty"`
	Message         string   `json:"message"`
}

// RestoreInput defines the input for the cogna_restore tool.
type RestoreInput struct {
	InputPath string `json:"input_path" jsonschema:"Backup file inside the backup directory"`
	Mode      string `json:"mode,omitempty" jsonschema:"Restore mode: 'merge' (skip existing networks) or 'replace' (default: merge)"`
}

// RestoreOutput defines the output for the cogna_restore tool.
type RestoreOutput struct {
	NetworksRestored    int    `json:"networks_restored"`
	NetworksSkipped     int    `json:"networks_skipped"`
	NeuronsRestored     int    `json:"neurons_restored"`
	ConnectionsRestored int    `json:"connections_restored"`
	Message             string `json:"message"`
}
