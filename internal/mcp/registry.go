// mcp/registry.go
// Registri nama tool kalkulator -> http.Handler

package mcp

import (
	"net/http"
	"sort"
	"sync"
)

type Registry struct {
	mu   sync.RWMutex
	data map[string]http.Handler
}

var reg = &Registry{data: make(map[string]http.Handler)}

// Register menimpa handler lama bila nama sudah ada.
func Register(name string, h http.Handler) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.data[name] = h
}

func RegisterFunc(name string, fn func(http.ResponseWriter, *http.Request)) {
	Register(name, http.HandlerFunc(fn))
}

func Get(name string) (http.Handler, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	h, ok := reg.data[name]
	return h, ok
}

// List mengembalikan nama tool terdaftar, terurut.
func List() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	keys := make([]string, 0, len(reg.data))
	for k := range reg.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Serve mengeksekusi tool 'name' tanpa routing (decision_by=direct).
// Tool tak dikenal → 404 dengan envelope ToolResponse.
func Serve(w http.ResponseWriter, r *http.Request, name string) {
	h, ok := Get(name)
	if !ok {
		writeRouteJSON(w, http.StatusNotFound, ToolResponse{Tool: name, DecisionBy: "direct", Error: "tool not found: " + name})
		return
	}
	w.Header().Set("X-MCP-Tool", name)
	w.Header().Set("X-MCP-Decision", "direct")
	h.ServeHTTP(w, r)
}
