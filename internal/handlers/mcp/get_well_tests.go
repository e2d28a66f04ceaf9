// internal/handlers/mcp/get_well_tests.go
// MCP Tool: get_well_tests - ambil data well test sebuah sumur

package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	mysqlrepo "petrocalc/internal/repositories/mysql"
	"petrocalc/internal/services"
	"petrocalc/internal/util"
)

// inject dari app
var wellTestRepo *mysqlrepo.WellTestRepo

func SetWellTestRepo(r *mysqlrepo.WellTestRepo) {
	wellTestRepo = r
	readyWellTests = r != nil
}

type WellTestOut struct {
	WellID            string   `json:"well_id"`
	TestDate          string   `json:"test_date"` // YYYY-MM-DD
	RateSTBD          float64  `json:"rate_stbd"`
	PwfPsig           float64  `json:"pwf_psig"`
	ReservoirPressure *float64 `json:"reservoir_pressure_psig,omitempty"`
}

type wellTestsReq struct {
	Well  string `json:"well"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

func GetWellTestsHandler(w http.ResponseWriter, r *http.Request) {
	var in wellTestsReq
	q := r.URL.Query()
	in.Well = strings.TrimSpace(q.Get("well"))
	in.Start, in.End = q.Get("start"), q.Get("end")
	if v := q.Get("limit"); v != "" {
		if n, _ := strconv.Atoi(v); n > 0 {
			in.Limit = n
		}
	}
	if r.Method == http.MethodPost && in.Well == "" {
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, r, err, in)
			return
		}
	}
	if wellTestRepo == nil {
		writeError(w, r, util.Unavailable("well test repo not configured"), in)
		return
	}
	if strings.TrimSpace(in.Well) == "" {
		writeError(w, r, util.BadInput("well is required"), in)
		return
	}
	start, err := parseDate(in.Start)
	if err != nil {
		writeError(w, r, err, in)
		return
	}
	end, err := parseDate(in.End)
	if err != nil {
		writeError(w, r, err, in)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()

	id, name, err := resolveWell(ctx, in.Well)
	if err != nil {
		writeError(w, r, err, in)
		return
	}
	rows, err := wellTestRepo.List(ctx, mysqlrepo.WellTestFilter{WellIDs: []string{id}, Start: start, End: end, Limit: in.Limit})
	if err != nil {
		writeError(w, r, err, in)
		return
	}

	out := make([]WellTestOut, 0, len(rows))
	for _, t := range rows {
		rec := WellTestOut{
			WellID:   t.WellID,
			TestDate: t.TestDate.Format("2006-01-02"),
			RateSTBD: t.RateSTBD,
			PwfPsig:  t.PwfPsig,
		}
		if t.ReservoirPressure.Valid {
			pr := t.ReservoirPressure.Float64
			rec.ReservoirPressure = &pr
		}
		out = append(out, rec)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"well_id":   id,
		"well_name": name,
		"count":     len(out),
		"tests":     out,
	})
}

func resolveWell(ctx context.Context, ident string) (string, string, error) {
	id, name, err := wellTestRepo.ResolveWell(ctx, ident)
	if errors.Is(err, mysqlrepo.ErrWellNotFound) {
		return "", "", util.NotFound(err.Error())
	}
	return id, name, err
}

// wellSamples memuat sampel fit IPR dari DB. pr = 0 bila test tidak mencatat Pr.
func wellSamples(ctx context.Context, ident string) ([]services.WellTestSample, float64, error) {
	if wellTestRepo == nil {
		return nil, 0, util.Unavailable("well test repo not configured")
	}
	id, _, err := resolveWell(ctx, ident)
	if err != nil {
		return nil, 0, err
	}
	rows, err := wellTestRepo.List(ctx, mysqlrepo.WellTestFilter{WellIDs: []string{id}})
	if err != nil {
		return nil, 0, err
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("%w: no well tests recorded for %s", services.ErrInsufficientData, id)
	}
	samples, pr := mysqlrepo.Samples(rows)
	return samples, pr, nil
}
