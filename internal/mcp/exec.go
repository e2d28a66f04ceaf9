// internal/mcp/exec.go
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ExecResult struct {
	Route  Route  `json:"route"`
	Status int    `json:"status"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ExecuteRoutes menjalankan rute secara berurutan, in-process (tanpa HTTP nyata).
// Header requestID diteruskan agar log handler bisa dikorelasikan.
func ExecuteRoutes(ctx context.Context, routes []Route, requestID string) []ExecResult {
	out := make([]ExecResult, 0, len(routes))
	for _, r := range routes {
		if r.Kind != RouteMCP {
			out = append(out, ExecResult{Route: r, Status: http.StatusBadRequest, Error: "unsupported kind: " + string(r.Kind)})
			continue
		}
		out = append(out, execOne(ctx, r, requestID))
	}
	return out
}

func execOne(ctx context.Context, r Route, requestID string) ExecResult {
	h, ok := Get(r.Tool)
	if !ok {
		return ExecResult{Route: r, Status: http.StatusNotFound, Error: "tool not found: " + r.Tool}
	}

	body := []byte("{}")
	if !isJSONNullOrEmpty(r.Params) {
		body = r.Params
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/mcp/internal/"+r.Tool, bytes.NewReader(body))
	if err != nil {
		return ExecResult{Route: r, Status: http.StatusInternalServerError, Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	rr := newMemRecorder()
	h.ServeHTTP(rr, req)

	res := ExecResult{Route: r, Status: rr.status}
	if rr.status >= 200 && rr.status < 300 {
		if len(rr.buf) == 0 {
			res.Data = map[string]any{}
			return res
		}
		var data any
		if err := json.Unmarshal(rr.buf, &data); err != nil {
			res.Data = string(rr.buf) // mis. CSV
		} else {
			res.Data = data
		}
		return res
	}

	// error handler: ambil message dari body JSON {error, message}
	var eb struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	switch {
	case json.Unmarshal(rr.buf, &eb) == nil && eb.Error != "":
		res.Error = eb.Error
		if eb.Message != "" {
			res.Error += ": " + eb.Message
		}
	case len(bytes.TrimSpace(rr.buf)) > 0:
		res.Error = strings.TrimSpace(string(rr.buf))
	default:
		res.Error = fmt.Sprintf("status %d", rr.status)
	}
	return res
}

// ---- mini response recorder (in-memory) ----
type memRecorder struct {
	buf    []byte
	status int
	header http.Header
	wrote  bool
}

func newMemRecorder() *memRecorder { return &memRecorder{header: http.Header{}, status: http.StatusOK} }

func (m *memRecorder) Header() http.Header { return m.header }

func (m *memRecorder) Write(b []byte) (int, error) {
	m.wrote = true
	m.buf = append(m.buf, b...)
	return len(b), nil
}

func (m *memRecorder) WriteHeader(code int) {
	if m.wrote {
		return
	}
	m.wrote = true
	m.status = code
}
