package visualization

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Cycrus/COGNA/internal/neuron"
)

// LoadFunc returns the network to serve. It is called once per request so
// the page reflects the latest stored state.
type LoadFunc func(ctx context.Context) (*neuron.Network, error)

// TransmitResult is the body returned by /api/transmit.
type TransmitResult struct {
	Ref      string  `json:"ref"`
	Function string  `json:"function"`
	Input    float64 `json:"input"`
	Output   float64 `json:"output"`
}

// Server serves the network page and a small JSON API.
type Server struct {
	load       LoadFunc
	name       string
	httpServer *http.Server
	listener   net.Listener
	mu         sync.Mutex
	addr       string
}

// NewServer creates a new graph visualization server.
func NewServer(load LoadFunc, name string) *Server {
	return &Server{load: load, name: name}
}

// Addr returns the address the server is listening on (e.g., "localhost:PORT").
// Returns empty string if the server hasn't started yet.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/graph", s.handleGraph)
	mux.HandleFunc("/api/transmit", s.handleTransmit)
	return mux
}

// ListenAndServe starts the HTTP server on an OS-assigned port and blocks
// until the context is cancelled. Returns nil on clean shutdown.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	s.mu.Lock()
	s.listener = ln
	s.addr = ln.Addr().String()
	s.httpServer = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	err = s.httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	network, err := s.load(r.Context())
	if err != nil {
		http.Error(w, "load error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	html, err := RenderHTMLForServer(network, s.name, "http://"+s.Addr())
	if err != nil {
		http.Error(w, "render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	network, err := s.load(r.Context())
	if err != nil {
		http.Error(w, "load error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, RenderJSON(network))
}

// handleTransmit applies a connection's activation function to an input.
func (s *Server) handleTransmit(w http.ResponseWriter, r *http.Request) {
	ref, err := neuron.ParseConnectionRef(r.URL.Query().Get("ref"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	input, err := strconv.ParseFloat(r.URL.Query().Get("input"), 64)
	if err != nil {
		http.Error(w, "invalid 'input' query parameter", http.StatusBadRequest)
		return
	}

	network, err := s.load(r.Context())
	if err != nil {
		http.Error(w, "load error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	conn, ok := network.Connection(ref)
	if !ok {
		http.Error(w, "connection not found: "+ref.String(), http.StatusNotFound)
		return
	}
	out, err := network.Transmit(conn, input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, TransmitResult{Ref: ref.String(), Function: conn.Function.String(), Input: input, Output: out})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
