package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/Cycrus/COGNA/internal/neuron"
	"github.com/Cycrus/COGNA/internal/store"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in       string
		wantKind neuron.TargetKind
		want     string
		wantErr  bool
	}{
		{"N-2", neuron.TargetNeuron, "N-2", false},
		{"7", neuron.TargetNeuron, "N-7", false},
		{"C-1#0", neuron.TargetConnection, "C-1#0", false},
		{"3#2", neuron.TargetConnection, "C-3#2", false},
		{"C-1#x", 0, "", true},
		{"banana", 0, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTarget(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseTarget(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Kind() != tt.wantKind || got.String() != tt.want {
				t.Errorf("parseTarget(%q) = %s (%s), want %s (%s)", tt.in, got, got.Kind(), tt.want, tt.wantKind)
			}
		})
	}
}

func TestNeuronAndConnectionWorkflow(t *testing.T) {
	dataDir := initDataDir(t)
	run := func(args ...string) string {
		t.Helper()
		return mustRun(t, append(args, "--root", dataDir)...)
	}

	var added struct {
		Network string   `json:"network"`
		Neurons []string `json:"neurons"`
	}
	decodeJSON(t, run("neuron", "add", "--count", "3", "--threshold", "0.5", "--json"), &added)
	if added.Network != defaultNetwork {
		t.Errorf("network = %q, want %q", added.Network, defaultNetwork)
	}
	if strings.Join(added.Neurons, ",") != "N-1,N-2,N-3" {
		t.Fatalf("neurons = %v, want N-1..N-3", added.Neurons)
	}

	var created struct {
		Connection connectionView `json:"connection"`
	}
	decodeJSON(t, run("connect", "N-1", "N-2", "--function", "sigmoid", "--weight", "0.8", "--json"), &created)
	if created.Connection.Ref != "C-1#0" || created.Connection.Function != "sigmoid" || created.Connection.LongWeight != 0.8 {
		t.Errorf("connect = %+v", created.Connection)
	}

	decodeJSON(t, run("synapse", "N-3", "C-1#0", "--activation-type", "inhibitory", "--json"), &created)
	if created.Connection.Ref != "C-3#0" || created.Connection.Target != "C-1#0" || created.Connection.ActivationType != "inhibitory" {
		t.Errorf("synapse = %+v", created.Connection)
	}
	if created.Connection.BaseWeight != 1.0 {
		t.Errorf("synapse weight = %v, want the configured default 1.0", created.Connection.BaseWeight)
	}

	_, err := runCLI(t, "connect", "N-1", "N-2", "--root", dataDir)
	if !errors.Is(err, neuron.ErrDuplicateEdge) {
		t.Errorf("duplicate connect error = %v, want ErrDuplicateEdge", err)
	}
	_, err = runCLI(t, "synapse", "N-3", "C-1#0", "--root", dataDir)
	if !errors.Is(err, neuron.ErrDuplicateEdge) {
		t.Errorf("duplicate synapse error = %v, want ErrDuplicateEdge", err)
	}

	if out := run("check", "N-1", "N-2"); !strings.Contains(out, "exists") || strings.Contains(out, "not") {
		t.Errorf("check output = %q", out)
	}
	var check struct {
		Exists bool `json:"exists"`
	}
	decodeJSON(t, run("check", "N-2", "N-1", "--json"), &check)
	if check.Exists {
		t.Error("reverse edge reported as existing")
	}

	if out := run("weight", "N-1", "N-2", "--tier", "long"); out != "0.8\n" {
		t.Errorf("weight output = %q, want 0.8", out)
	}
	if out := run("transmit", "C-1#0", "0"); out != "0.5\n" {
		t.Errorf("transmit output = %q, want 0.5", out)
	}

	var shown neuronView
	decodeJSON(t, run("neuron", "show", "N-2", "--json"), &shown)
	if shown.Threshold != 0.5 || len(shown.Previous) != 1 || shown.Previous[0] != "N-1" {
		t.Errorf("show N-2 = %+v", shown)
	}

	run("disconnect", "N-1", "N-2")
	decodeJSON(t, run("neuron", "show", "N-3", "--json"), &shown)
	if len(shown.Connections) != 0 {
		t.Errorf("presynaptic connection survived disconnect: %+v", shown.Connections)
	}

	_, err = runCLI(t, "weight", "N-1", "N-2", "--root", dataDir)
	if !errors.Is(err, neuron.ErrEdgeNotFound) {
		t.Errorf("weight after disconnect error = %v, want ErrEdgeNotFound", err)
	}

	run("neuron", "rm", "N-1")
	_, err = runCLI(t, "neuron", "show", "N-1", "--root", dataDir)
	if !errors.Is(err, neuron.ErrNeuronNotFound) {
		t.Errorf("show removed neuron error = %v, want ErrNeuronNotFound", err)
	}

	// Ids are not reused after removal.
	decodeJSON(t, run("neuron", "add", "--json"), &added)
	if added.Neurons[0] != "N-4" {
		t.Errorf("next id = %s, want N-4", added.Neurons[0])
	}
}

func TestNetworkFlagSeparatesNetworks(t *testing.T) {
	dataDir := initDataDir(t)

	mustRun(t, "neuron", "add", "-n", "vision", "--root", dataDir)
	mustRun(t, "neuron", "add", "--count", "2", "-n", "motor", "--root", dataDir)

	var list struct {
		Networks []store.SnapshotInfo `json:"networks"`
		Count    int                  `json:"count"`
	}
	decodeJSON(t, mustRun(t, "list", "--json", "--root", dataDir), &list)
	if list.Count != 2 {
		t.Fatalf("count = %d, want 2", list.Count)
	}
	if list.Networks[0].Name != "motor" || list.Networks[0].NeuronCount != 2 {
		t.Errorf("networks[0] = %+v", list.Networks[0])
	}
	if list.Networks[1].Name != "vision" || list.Networks[1].NeuronCount != 1 {
		t.Errorf("networks[1] = %+v", list.Networks[1])
	}

	mustRun(t, "delete", "vision", "--root", dataDir)
	_, err := runCLI(t, "neuron", "show", "N-1", "-n", "vision", "--root", dataDir)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("show in deleted network error = %v, want ErrNotFound", err)
	}
	_, err = runCLI(t, "delete", "vision", "--root", dataDir)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestConnectInvalidInput(t *testing.T) {
	dataDir := initDataDir(t)
	mustRun(t, "neuron", "add", "--count", "2", "--root", dataDir)

	tests := []struct {
		name string
		args []string
	}{
		{"bad source id", []string{"connect", "X", "N-2"}},
		{"unknown target", []string{"connect", "N-1", "N-9"}},
		{"unknown function", []string{"connect", "N-1", "N-2", "--function", "tanh"}},
		{"unknown learning", []string{"connect", "N-1", "N-2", "--learning", "hebbian"}},
		{"missing connection", []string{"synapse", "N-1", "C-2#3"}},
		{"bad ref", []string{"synapse", "N-1", "C-2"}},
		{"bad tier", []string{"weight", "N-1", "N-2", "--tier", "medium"}},
		{"bad input", []string{"transmit", "C-1#0", "loud"}},
		{"missing edge", []string{"disconnect", "N-1", "N-2"}},
		{"bad network name", []string{"neuron", "add", "-n", "../escape"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, append(tt.args, "--root", dataDir)...); err == nil {
				t.Errorf("cogna %v succeeded, want error", tt.args)
			}
		})
	}
}

func TestValidateCmd(t *testing.T) {
	dataDir := initDataDir(t)
	mustRun(t, "neuron", "add", "--count", "2", "--root", dataDir)
	mustRun(t, "connect", "N-1", "N-2", "--root", dataDir)

	var got struct {
		Valid  bool  `json:"valid"`
		Issues []any `json:"issues"`
	}
	decodeJSON(t, mustRun(t, "validate", "--json", "--root", dataDir), &got)
	if !got.Valid || len(got.Issues) != 0 {
		t.Errorf("validate = %+v, want valid", got)
	}

	if _, err := runCLI(t, "validate", "-n", "nope", "--root", dataDir); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("validate unknown network error = %v, want ErrNotFound", err)
	}
}
