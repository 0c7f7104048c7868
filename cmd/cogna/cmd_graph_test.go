package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Cycrus/COGNA/internal/visualization"
)

func buildGraphFixture(t *testing.T) string {
	t.Helper()
	dataDir := initDataDir(t)
	mustRun(t, "neuron", "add", "--count", "3", "--root", dataDir)
	mustRun(t, "connect", "N-1", "N-2", "--function", "sigmoid", "--root", dataDir)
	mustRun(t, "synapse", "N-3", "C-1#0", "--root", dataDir)
	return dataDir
}

func TestGraphFormats(t *testing.T) {
	dataDir := buildGraphFixture(t)

	dot := mustRun(t, "graph", "--root", dataDir)
	if !strings.HasPrefix(dot, "digraph") || !strings.Contains(dot, `"N-3"`) {
		t.Errorf("DOT output = %q", dot)
	}

	var graph visualization.Graph
	if err := json.Unmarshal([]byte(mustRun(t, "graph", "--format", "json", "--root", dataDir)), &graph); err != nil {
		t.Fatalf("graph --format json is not JSON: %v", err)
	}
	if graph.NeuronCount != 3 || graph.ConnectionCount != 2 {
		t.Errorf("graph counts = %d/%d, want 3/2", graph.NeuronCount, graph.ConnectionCount)
	}

	htmlPath := filepath.Join(t.TempDir(), "net.html")
	out := mustRun(t, "graph", "--format", "html", "-o", htmlPath, "--no-open", "--root", dataDir)
	if !strings.Contains(out, htmlPath) {
		t.Errorf("html output = %q, want it to name %s", out, htmlPath)
	}
	data, err := os.ReadFile(htmlPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "graph-data") {
		t.Error("HTML file is missing the embedded graph data")
	}

	if _, err := runCLI(t, "graph", "--format", "svg", "--root", dataDir); err == nil {
		t.Error("unsupported format accepted")
	}
	if _, err := runCLI(t, "graph", "-n", "nope", "--root", dataDir); err == nil {
		t.Error("graph of an unknown network succeeded")
	}
}

func TestGraphServeImpliesHTMLFormat(t *testing.T) {
	dataDir := buildGraphFixture(t)

	// Use io.Pipe so we can read server output without race conditions.
	// If --serve is honored, the server blocks and writes "Graph server running at ...".
	// If --serve is ignored, DOT text is printed and the command returns.
	pr, pw := io.Pipe()

	go func() {
		rootCmd := newRootCmd()
		rootCmd.SetOut(pw)
		rootCmd.SetErr(io.Discard)
		rootCmd.SetArgs([]string{"graph", "--serve", "--no-open", "--root", dataDir})
		rootCmd.Execute()
		pw.Close()
	}()

	type readResult struct {
		data string
		err  error
	}
	ch := make(chan readResult, 1)
	go func() {
		buf := make([]byte, 4096)
		n, err := pr.Read(buf)
		ch <- readResult{string(buf[:n]), err}
	}()

	select {
	case r := <-ch:
		if r.err != nil && r.err != io.EOF {
			t.Fatalf("read error: %v", r.err)
		}
		if strings.Contains(r.data, "digraph") {
			t.Fatalf("--serve was ignored: got raw DOT output instead of starting server: %s", r.data)
		}
		if !strings.Contains(r.data, "Graph server running at") {
			t.Fatalf("expected 'Graph server running at', got: %q", r.data)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for graph server output")
	}
}
