// Package testutil provides testing utilities for the solar systems collector.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
)

// SystemsEndpoint is the paginated endpoint the mock serves.
const SystemsEndpoint = "/v2/solarsystems"

// System is one remote record served by the mock gateway.
type System struct {
	Name string `json:"name"`
	ID   int64  `json:"id"`
}

// MakeSystems generates n distinct systems with deterministic names and ids.
func MakeSystems(n int) []System {
	systems := make([]System, n)
	for i := range systems {
		systems[i] = System{
			Name: fmt.Sprintf("System-%04d", i),
			ID:   int64(30000000 + i),
		}
	}
	return systems
}

// MockGateway is a configurable mock world API gateway for testing. It
// serves the limit/offset pagination contract over a fixed system list and
// supports failure injection per offset.
type MockGateway struct {
	server *httptest.Server

	mu               sync.Mutex
	systems          []System
	serverLimit      int
	requestCount     int
	notModifiedCount int
	offsets          []int
	failures         map[int]*failure
	malformed        bool
	headers          map[string]string
}

type failure struct {
	remaining int // -1 means always
	status    int
}

// NewMockGateway creates a mock gateway serving the given systems.
func NewMockGateway(systems []System) *MockGateway {
	mock := &MockGateway{
		systems:  systems,
		failures: make(map[int]*failure),
		headers:  make(map[string]string),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))

	return mock
}

// URL returns the mock server URL.
func (m *MockGateway) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockGateway) Close() {
	m.server.Close()
}

// RequestCount returns how many page requests the mock has served.
func (m *MockGateway) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount
}

// Offsets returns the offset of every request in arrival order.
func (m *MockGateway) Offsets() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.offsets))
	copy(out, m.offsets)
	return out
}

// SetServerLimit caps the page size the gateway reports, regardless of the
// limit the caller requested. Zero means honor the requested limit.
func (m *MockGateway) SetServerLimit(limit int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.serverLimit = limit
}

// FailAt makes the next `times` requests for the given offset fail with
// status. Pass times = -1 to fail every request at that offset.
func (m *MockGateway) FailAt(offset, times, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[offset] = &failure{remaining: times, status: status}
}

// SetMalformed makes every response body invalid JSON.
func (m *MockGateway) SetMalformed(malformed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.malformed = malformed
}

// SetHeader adds a header to every response (e.g. ETag, Expires). Once an
// ETag is set, conditional requests carrying it get a 304 back.
func (m *MockGateway) SetHeader(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.headers[key] = value
}

// NotModifiedCount returns how many 304 responses the mock has served.
func (m *MockGateway) NotModifiedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notModifiedCount
}

func (m *MockGateway) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != SystemsEndpoint {
		http.NotFound(w, r)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	m.mu.Lock()
	m.requestCount++
	m.offsets = append(m.offsets, offset)

	if f, ok := m.failures[offset]; ok && f.remaining != 0 {
		if f.remaining > 0 {
			f.remaining--
		}
		status := f.status
		m.mu.Unlock()
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"error": "injected failure"}`)
		return
	}

	if etag := m.headers["ETag"]; etag != "" && r.Header.Get("If-None-Match") == etag {
		m.notModifiedCount++
		headers := make(map[string]string, len(m.headers))
		for k, v := range m.headers {
			headers[k] = v
		}
		m.mu.Unlock()
		for k, v := range headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if m.malformed {
		m.mu.Unlock()
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write([]byte(`{"metadata": {`))
		return
	}

	if m.serverLimit > 0 && (limit > m.serverLimit || limit == 0) {
		limit = m.serverLimit
	}
	if limit < 1 {
		limit = len(m.systems)
	}

	end := offset + limit
	if offset > len(m.systems) {
		offset = len(m.systems)
	}
	if end > len(m.systems) {
		end = len(m.systems)
	}
	page := struct {
		Metadata struct {
			Total int `json:"total"`
			Limit int `json:"limit"`
		} `json:"metadata"`
		Data []System `json:"data"`
	}{}
	page.Metadata.Total = len(m.systems)
	page.Metadata.Limit = limit
	page.Data = m.systems[offset:end]

	headers := make(map[string]string, len(m.headers))
	for k, v := range m.headers {
		headers[k] = v
	}
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	for k, v := range headers {
		w.Header().Set(k, v)
	}
	json.NewEncoder(w).Encode(page)
}
