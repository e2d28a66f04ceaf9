// internal/handlers/mcp/respond.go
// Helper bersama handler tool: dependency yang di-inject, decode request, balasan JSON/CSV.

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"petrocalc/internal/config"
	"petrocalc/internal/util"
)

// inject dari app
var (
	cfg            = config.Default()
	requestTimeout = 6 * time.Second
	clock          util.Clock = util.RealClock{}
	logger         = zap.NewNop()
)

// SetConfig memasang default kalkulator (nodal, ekonomi) dan timeout request.
func SetConfig(c *config.Config) {
	if c == nil {
		return
	}
	cfg = c
	if c.RequestTimeout > 0 {
		requestTimeout = c.RequestTimeout
	}
}

func SetClock(c util.Clock) { clock = c }

func SetLogger(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}

const maxBody = 32 << 20

// Batas ukuran input; di atas ini request ditolak bad_input.
const (
	maxSweepRecords   = 200_000 // record gas lift per sweep
	maxGridSamples    = 100_000 // grid rate nodal per skenario
	maxScenarios      = 50      // jumlah WHP per request nodal
	maxForecastMonths = 1200    // horizon decline (100 tahun)
)

func withTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), requestTimeout)
}

// decodeJSON: body kosong = semua default. JSON rusak → bad_input.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return util.BadInput("read body: " + err.Error())
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return util.BadInput("invalid json: " + err.Error())
	}
	return nil
}

// wantCSV: ?format=csv atau Accept: text/csv.
func wantCSV(r *http.Request) bool {
	if strings.EqualFold(r.URL.Query().Get("format"), "csv") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/csv")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError membalas {"error": code, "message": ..., "input": ...}.
func writeError(w http.ResponseWriter, r *http.Request, err error, input any) {
	ae := util.FromCalc(err)
	if errors.Is(err, context.DeadlineExceeded) {
		ae = util.AppError{Code: "timeout", Message: err.Error(), Status: http.StatusGatewayTimeout}
	}
	status := ae.HTTPStatus()
	log := logger.With(
		zap.String("path", r.URL.Path),
		zap.String("request_id", r.Header.Get("X-Request-ID")),
		zap.String("code", ae.Code),
		zap.Int("status", status),
	)
	if status >= 500 {
		log.Error("tool failed", zap.Error(err))
	} else {
		log.Debug("tool rejected", zap.String("message", ae.Message))
	}
	writeJSON(w, status, map[string]any{
		"error":   ae.Code,
		"message": ae.Message,
		"input":   input,
	})
}

// writeCSV menulis attachment CSV. Error setelah header terkirim hanya di-log.
func writeCSV(w http.ResponseWriter, filename string, fn func(io.Writer) error) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := fn(w); err != nil {
		logger.Error("write csv", zap.String("filename", filename), zap.Error(err))
	}
}

// splitList: "a, b,,c" → [a b c]
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, util.BadInput(fmt.Sprintf("invalid date %q, want YYYY-MM-DD", s))
	}
	return &t, nil
}
