// internal/handlers/mcp/gaslift.go
// MCP Tool: gaslift_sensitivity (+ varian SSE untuk grid besar)

package mcp

import (
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"petrocalc/internal/services"
	"petrocalc/internal/util"
	"petrocalc/internal/util/sse"
)

type gasLiftReq struct {
	services.GasLiftParams
	Top int `json:"top,omitempty"` // >0: hanya N record profit tertinggi
}

// gasLiftParams: default studi + harga dari konfigurasi, ditimpa field body.
func gasLiftParams(r *http.Request) (gasLiftReq, error) {
	p := services.DefaultGasLiftParams()
	p.OilPrice = decimal.NewFromFloat(cfg.Economics.OilPrice)
	p.GasPrice = decimal.NewFromFloat(cfg.Economics.GasPrice)
	p.CO2Factor = cfg.Economics.CO2Factor
	p.EfficiencyFactor = cfg.Economics.EfficiencyFactor
	in := gasLiftReq{GasLiftParams: p}
	if err := decodeJSON(r, &in); err != nil {
		return in, err
	}
	if _, ok := sweepSize(in.GIR, in.PI, in.Dome, in.DeltaP); !ok {
		return in, util.BadInput(fmt.Sprintf("sweep grid too large (max %d records)", maxSweepRecords))
	}
	return in, nil
}

// sweepSize mengalikan count bertahap dan berhenti begitu melewati maxSweepRecords,
// jadi perkalian tidak pernah overflow. Count ≤ 0 diserahkan ke validasi services.
func sweepSize(ranges ...services.SweepRange) (int, bool) {
	n := 1
	for _, r := range ranges {
		if r.Count > maxSweepRecords {
			return 0, false
		}
		if r.Count > 0 {
			n *= r.Count
		}
		if n > maxSweepRecords {
			return 0, false
		}
	}
	return n, true
}

func bestProfit(recs []services.SensitivityRecord) *services.SensitivityRecord {
	if len(recs) == 0 {
		return nil
	}
	best := 0
	for i := range recs {
		if recs[i].Profit.GreaterThan(recs[best].Profit) {
			best = i
		}
	}
	return &recs[best]
}

func GasLiftHandler(w http.ResponseWriter, r *http.Request) {
	in, err := gasLiftParams(r)
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	recs, err := services.RunGasLiftSweep(in.GasLiftParams)
	if err != nil {
		writeError(w, r, err, in)
		return
	}

	if wantCSV(r) {
		writeCSV(w, "gaslift_sensitivity.csv", func(wr io.Writer) error { return services.WriteSensitivityCSV(wr, recs) })
		return
	}

	best := bestProfit(recs)
	out := recs
	if in.Top > 0 && in.Top < len(recs) {
		out = append([]services.SensitivityRecord(nil), recs...)
		sort.SliceStable(out, func(i, j int) bool { return out[i].Profit.GreaterThan(out[j].Profit) })
		out = out[:in.Top]
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(recs),
		"best":    best,
		"records": out,
	})
}

// GasLiftStreamHandler mengirim record satu per satu sebagai event SSE:
// "meta" {count}, "record" per baris, lalu "done" {best}.
func GasLiftStreamHandler(w http.ResponseWriter, r *http.Request) {
	in, err := gasLiftParams(r)
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	recs, err := services.RunGasLiftSweep(in.GasLiftParams)
	if err != nil {
		writeError(w, r, err, in)
		return
	}

	s := sse.New(w)
	ctx := r.Context()
	if err := s.Event("meta", map[string]any{"count": len(recs), "stream_id": util.RequestID(r.Header.Get("X-Request-ID"))}); err != nil {
		return
	}
	for i := range recs {
		if ctx.Err() != nil {
			logger.Debug("gaslift stream canceled", zap.Int("sent", i))
			return
		}
		if err := s.Event("record", recs[i]); err != nil {
			logger.Debug("gaslift stream write", zap.Error(err))
			return
		}
	}
	_ = s.Event("done", map[string]any{"best": bestProfit(recs)})
}
