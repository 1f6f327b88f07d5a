package recordstest

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
)

// Server mimics the remote database routes: POST /data/add, GET /data/get/{key},
// PATCH /data/update/{key} and DELETE /data/delete/{key}.
type Server struct {
	mu   sync.Mutex
	next int
	data map[string]map[string]any
	reqs []Request
	srv  *httptest.Server
}

// Request is a recorded inbound call.
type Request struct {
	Method string
	Path   string
	Body   []byte
}

// NewServer starts a Server on a loopback port.
func NewServer() *Server {
	s := &Server{data: make(map[string]map[string]any)}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /data/add", s.handleAdd)
	mux.HandleFunc("GET /data/get/{key}", s.handleGet)
	mux.HandleFunc("PATCH /data/update/{key}", s.handleUpdate)
	mux.HandleFunc("DELETE /data/delete/{key}", s.handleDelete)

	s.srv = httptest.NewServer(s.record(mux))
	return s
}

// Close shuts the server down.
func (s *Server) Close() { s.srv.Close() }

// URL returns the base URL, scheme included.
func (s *Server) URL() string { return s.srv.URL }

// Host returns the loopback host the server listens on.
func (s *Server) Host() string {
	host, _, _ := net.SplitHostPort(s.srv.Listener.Addr().String())
	return host
}

// Port returns the port the server listens on.
func (s *Server) Port() int {
	_, port, _ := net.SplitHostPort(s.srv.Listener.Addr().String())
	p, _ := strconv.Atoi(port)
	return p
}

// Len returns the number of stored records.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.reqs))
	copy(out, s.reqs)
	return out
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		s.mu.Lock()
		s.reqs = append(s.reqs, Request{Method: r.Method, Path: r.URL.EscapedPath(), Body: body})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	value, ok := decodeValue(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	s.next++
	key := "rec-" + strconv.Itoa(s.next)
	s.data[key] = value
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"key": key})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	value, ok := s.data[r.PathValue("key")]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Key not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"value": value})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	value, ok := decodeValue(w, r)
	if !ok {
		return
	}

	key := r.PathValue("key")
	s.mu.Lock()
	_, exists := s.data[key]
	if exists {
		s.data[key] = value
	}
	s.mu.Unlock()

	if !exists {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Key not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Data updated"})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	s.mu.Lock()
	_, exists := s.data[key]
	delete(s.data, key)
	s.mu.Unlock()

	if !exists {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Key not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Data deleted"})
}

func decodeValue(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var env struct {
		Value map[string]any `json:"value"`
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&env); err != nil || env.Value == nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": "value object required"})
		return nil, false
	}
	return env.Value, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
