// internal/api/apitest/server.go

// Package apitest provides a recording fake of the bakery API for tests.
package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/your-org/bakery-storefront/internal/api"
	"github.com/your-org/bakery-storefront/internal/pkg/logger"
)

// Call is one request received by the fake
type Call struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// Decode unmarshals the request body into v
func (c Call) Decode(v any) error {
	return json.Unmarshal(c.Body, v)
}

// HandlerFunc answers a call with a status and a JSON-encodable body
type HandlerFunc func(call Call) (int, any)

// Server is a fake bakery API. Unregistered routes answer 404.
type Server struct {
	*httptest.Server

	mu     sync.Mutex
	routes map[string]HandlerFunc
	calls  []Call
}

// NewServer starts a fake API closed at test cleanup
func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{routes: make(map[string]HandlerFunc)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Server.Close)
	return s
}

// Handle registers a fixed response for method and path
func (s *Server) Handle(method, path string, status int, body any) {
	s.HandleFunc(method, path, func(Call) (int, any) { return status, body })
}

// HandleFunc registers a dynamic response for method and path
func (s *Server) HandleFunc(method, path string, fn HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[method+" "+path] = fn
}

// Calls returns every call received so far
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsTo returns the calls received for method and path
func (s *Server) CallsTo(method, path string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets recorded calls
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// Client returns an API client pointed at the fake
func (s *Server) Client() *api.Client {
	return api.NewClientWithHTTP(s.URL, "apitest", s.Server.Client(), logger.Discard())
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	call := Call{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   body,
	}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	fn, ok := s.routes[r.Method+" "+r.URL.Path]
	s.mu.Unlock()

	status, resp := http.StatusNotFound, any(map[string]string{"message": "route not found"})
	if ok {
		status, resp = fn(call)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if resp != nil {
		json.NewEncoder(w).Encode(resp)
	}
}

// Tokens is a fixed api.TokenSource
type Tokens struct {
	Staff    string
	Customer string
}

func (t Tokens) StaffToken() string    { return t.Staff }
func (t Tokens) CustomerToken() string { return t.Customer }

// Customer returns a source with only the customer slot signed in
func Customer() Tokens { return Tokens{Customer: "customer-token"} }

// Staff returns a source with only the staff slot signed in
func Staff() Tokens { return Tokens{Staff: "staff-token"} }
