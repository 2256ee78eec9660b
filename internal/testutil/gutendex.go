package testutil

import (
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// GutendexStub is a fake Gutendex /books/ endpoint. Responses are keyed by the
// raw query string (e.g. "search=dom%20casmurro&languages=es"); unknown
// queries answer with an empty result list.
type GutendexStub struct {
	Server *httptest.Server

	mu        sync.Mutex
	responses map[string]string
	requests  []url.Values
}

// EmptyResults is a valid Gutendex body with no candidates.
const EmptyResults = `{"count":0,"next":null,"previous":null,"results":[]}`

// NewGutendexStub starts a stub bound to IPv4 loopback and closes it on cleanup.
func NewGutendexStub(t *testing.T) *GutendexStub {
	t.Helper()

	stub := &GutendexStub{responses: make(map[string]string)}

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	server := httptest.NewUnstartedServer(http.HandlerFunc(stub.serve))
	server.Listener = listener
	server.Start()
	t.Cleanup(server.Close)

	stub.Server = server
	return stub
}

// URL returns the stub base URL.
func (s *GutendexStub) URL() string {
	return s.Server.URL
}

// Respond registers body for the given raw query string.
func (s *GutendexStub) Respond(rawQuery, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[rawQuery] = body
}

// Requests returns the query values of every request served so far.
func (s *GutendexStub) Requests() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]url.Values, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *GutendexStub) serve(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/books/" {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, r.URL.Query())
	body, ok := s.responses[r.URL.RawQuery]
	s.mu.Unlock()

	if !ok {
		body = EmptyResults
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}
