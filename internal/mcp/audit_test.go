package mcp

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func readAuditEntries(t *testing.T, dir string) []AuditEntry {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, AuditFile))
	if err != nil {
		t.Fatalf("opening audit log: %v", err)
	}
	defer f.Close()

	var entries []AuditEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e AuditEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("invalid JSON line %q: %v", scanner.Text(), err)
		}
		entries = append(entries, e)
	}
	return entries
}

func TestAuditLogger_NilSafety(t *testing.T) {
	var logger *AuditLogger
	logger.Log(AuditEntry{Tool: "test"})
	if err := logger.Close(); err != nil {
		t.Errorf("Close() on nil logger returned error: %v", err)
	}
}

func TestAuditLogger_WritesJSONL(t *testing.T) {
	dir := t.TempDir()
	logger := NewAuditLogger(dir)
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	defer logger.Close()

	now := time.Now()
	logger.Log(AuditEntry{Timestamp: now, Tool: "cogna_connect", Network: "alpha", DurationMs: 3, Status: "success"})
	logger.Log(AuditEntry{Timestamp: now, Tool: "cogna_weight", Network: "alpha", Status: "error", Error: "edge not found"})

	entries := readAuditEntries(t, dir)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Tool != "cogna_connect" || entries[0].Network != "alpha" || entries[0].DurationMs != 3 {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[1].Status != "error" || entries[1].Error != "edge not found" {
		t.Errorf("entries[1] = %+v", entries[1])
	}
}

func TestAuditLogger_FilePermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	logger := NewAuditLogger(dir)
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	defer logger.Close()
	logger.Log(AuditEntry{Tool: "test"})

	info, err := os.Stat(filepath.Join(dir, AuditFile))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions = %o, want 0600", perm)
	}
}

func TestAuditLogger_ConcurrentWrites(t *testing.T) {
	dir := t.TempDir()
	logger := NewAuditLogger(dir)
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	defer logger.Close()

	const goroutines = 10
	const entriesPerGoroutine = 5

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < entriesPerGoroutine; i++ {
				logger.Log(AuditEntry{Timestamp: time.Now(), Tool: "cogna_transmit", DurationMs: int64(id*100 + i), Status: "success"})
			}
		}(g)
	}
	wg.Wait()

	if got := len(readAuditEntries(t, dir)); got != goroutines*entriesPerGoroutine {
		t.Errorf("line count = %d, want %d", got, goroutines*entriesPerGoroutine)
	}
}

func TestAuditLogger_BadPath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("file"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if logger := NewAuditLogger(blocker); logger != nil {
		logger.Close()
		t.Error("expected nil logger when the directory cannot be created")
	}
}

func TestAuditLogger_LogAfterClose(t *testing.T) {
	dir := t.TempDir()
	logger := NewAuditLogger(dir)
	logger.Log(AuditEntry{Tool: "before"})
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	logger.Log(AuditEntry{Tool: "after"})
	if err := logger.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	entries := readAuditEntries(t, dir)
	if len(entries) != 1 || entries[0].Tool != "before" {
		t.Errorf("entries = %+v, want only the entry logged before Close", entries)
	}
}

func TestAuditParams(t *testing.T) {
	threshold := 0.5
	var unset *float64

	got := auditParams(map[string]any{
		"from":      "N-1",
		"to":        "",
		"weight":    unset,
		"threshold": &threshold,
		"input":     1.25,
		"flag":      true,
	})
	want := map[string]string{"from": "N-1", "threshold": "0.5", "input": "1.25", "flag": "true"}
	if len(got) != len(want) {
		t.Fatalf("auditParams() = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("auditParams()[%q] = %q, want %q", k, got[k], v)
		}
	}

	if auditParams(nil) != nil {
		t.Error("auditParams(nil) should be nil")
	}
}

func TestAuditTool_Integration(t *testing.T) {
	server, dir := setupTestServer(t)
	defer server.Close()

	server.auditTool("cogna_connect", "alpha", time.Now(), nil, map[string]any{"from": "N-1"})
	server.auditTool("cogna_weight", "alpha", time.Now(), errors.New("edge not found"), nil)

	entries := readAuditEntries(t, dir)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Status != "success" || entries[0].Params["from"] != "N-1" {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[1].Status != "error" || entries[1].Error != "edge not found" {
		t.Errorf("entries[1] = %+v", entries[1])
	}
}
