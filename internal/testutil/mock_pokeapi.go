// Package testutil provides testing utilities for the PokeAPI client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// APIPrefix is the path prefix the mock serves, mirroring https://pokeapi.co/api/v2.
const APIPrefix = "/api/v2"

// Pokemon is a fixture served by the mock as a detail document.
type Pokemon struct {
	ID     int
	Name   string
	Types  []string
	Height int
	Weight int
}

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockPokeAPI is a configurable mock PokeAPI server for testing.
type MockPokeAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	pokemon  []Pokemon
	handlers map[string]http.HandlerFunc

	requestCount int
	pathCounts   map[string]int
	lastHeader   http.Header
}

// NewMockPokeAPI creates a new mock PokeAPI server.
func NewMockPokeAPI() *MockPokeAPI {
	mock := &MockPokeAPI{
		handlers:   make(map[string]http.HandlerFunc),
		pathCounts: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount++
		mock.pathCounts[r.URL.Path]++
		mock.lastHeader = r.Header.Clone()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the API base URL (server root plus /api/v2).
func (m *MockPokeAPI) URL() string {
	return m.server.URL + APIPrefix
}

// Close shuts down the mock server.
func (m *MockPokeAPI) Close() {
	m.server.Close()
}

// AddPokemon registers fixtures. The list endpoint returns them in the order added.
func (m *MockPokeAPI) AddPokemon(p ...Pokemon) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pokemon = append(m.pokemon, p...)
}

// DetailPath returns the request path of a fixture's detail document.
func DetailPath(id int) string {
	return fmt.Sprintf("%s/pokemon/%d/", APIPrefix, id)
}

// SetHandler sets a custom handler for a specific path.
func (m *MockPokeAPI) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockPokeAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			select {
			case <-time.After(resp.Delay):
			case <-r.Context().Done():
				return
			}
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// RequestCount returns the number of requests made to the server.
func (m *MockPokeAPI) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// PathCount returns the number of requests made to path.
func (m *MockPokeAPI) PathCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pathCounts[path]
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockPokeAPI) LastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastHeader
}

// defaultHandler serves the list endpoint and the registered detail documents.
func (m *MockPokeAPI) defaultHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	switch {
	case path == APIPrefix+"/pokemon" || path == APIPrefix+"/pokemon/":
		m.serveList(w, r)
		return
	case strings.HasPrefix(path, APIPrefix+"/pokemon/"):
		idStr := strings.Trim(strings.TrimPrefix(path, APIPrefix+"/pokemon/"), "/")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		m.serveDetail(w, r, id)
		return
	}

	http.NotFound(w, r)
}

func (m *MockPokeAPI) serveList(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	fixtures := append([]Pokemon(nil), m.pokemon...)
	m.mu.RUnlock()

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > len(fixtures) {
		limit = len(fixtures)
	}

	type ref struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	results := make([]ref, 0, limit)
	for _, p := range fixtures[:limit] {
		results = append(results, ref{Name: p.Name, URL: m.server.URL + DetailPath(p.ID)})
	}

	writeJSON(w, map[string]any{
		"count":    len(fixtures),
		"next":     nil,
		"previous": nil,
		"results":  results,
	})
}

func (m *MockPokeAPI) serveDetail(w http.ResponseWriter, r *http.Request, id int) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.pokemon {
		if p.ID == id {
			writeJSON(w, DetailDocument(p))
			return
		}
	}
	http.NotFound(w, r)
}

// DetailDocument builds a PokeAPI-shaped detail document for p, including
// fields the client ignores.
func DetailDocument(p Pokemon) map[string]any {
	types := make([]map[string]any, 0, len(p.Types))
	for i, t := range p.Types {
		types = append(types, map[string]any{
			"slot": i + 1,
			"type": map[string]any{
				"name": t,
				"url":  fmt.Sprintf("https://pokeapi.co/api/v2/type/%s/", t),
			},
		})
	}

	return map[string]any{
		"id":              p.ID,
		"name":            p.Name,
		"base_experience": 64,
		"height":          p.Height,
		"weight":          p.Weight,
		"is_default":      true,
		"order":           p.ID,
		"types":           types,
		"abilities":       []any{},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewNotFoundResponse creates a 404 Not Found response.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       "Not Found",
	}
}

// NewMalformedResponse creates a 200 response whose body is not valid JSON.
func NewMalformedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"id": 1, "name": `,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400, s-maxage=86400")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
