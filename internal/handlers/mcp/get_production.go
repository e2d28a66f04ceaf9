// internal/handlers/mcp/get_production.go
// MCP Tool: get_production - ambil data produksi harian

package mcp

import (
	"net/http"
	"strconv"
	"strings"

	mysqlrepo "petrocalc/internal/repositories/mysql"
	"petrocalc/internal/util"
)

// inject dari app
var productionRepo *mysqlrepo.ProductionRepo

func SetProductionRepo(r *mysqlrepo.ProductionRepo) {
	productionRepo = r
	readyProduction = r != nil
}

type ProductionRow struct {
	Date      string   `json:"date"` // YYYY-MM-DD
	WellID    string   `json:"well_id"`
	OilBOPD   *float64 `json:"oil_bopd,omitempty"`
	GasMMSCFD *float64 `json:"gas_mmscfd,omitempty"`
	WaterBWPD *float64 `json:"water_bwpd,omitempty"`
}

type prodReq struct {
	WellID string `json:"well_id,omitempty"`
	Start  string `json:"start,omitempty"` // "2025-09-01"
	End    string `json:"end,omitempty"`   // exclusive
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

func GetProductionHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// Terima well_id dan well (alias)
	in := prodReq{
		WellID: strings.TrimSpace(q.Get("well_id")),
		Start:  strings.TrimSpace(q.Get("start")),
		End:    strings.TrimSpace(q.Get("end")),
	}
	if in.WellID == "" {
		in.WellID = strings.TrimSpace(q.Get("well"))
	}
	if v := q.Get("limit"); v != "" {
		if n, _ := strconv.Atoi(v); n > 0 {
			in.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, _ := strconv.Atoi(v); n >= 0 {
			in.Offset = n
		}
	}
	if r.Method == http.MethodPost && in.WellID == "" && in.Start == "" && in.End == "" {
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, r, err, in)
			return
		}
		in.WellID = strings.TrimSpace(in.WellID)
	}

	if productionRepo == nil {
		writeError(w, r, util.Unavailable("production repo not configured"), in)
		return
	}

	// Default: 30 hari terakhir jika kosong
	if in.Start == "" && in.End == "" {
		now := clock.Now()
		in.End = now.AddDate(0, 0, 1).Format("2006-01-02")
		in.Start = now.AddDate(0, 0, -30).Format("2006-01-02")
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

	rows, err := productionRepo.ListDaily(ctx, mysqlrepo.ProdFilter{
		WellID: in.WellID,
		Start:  start,
		End:    end,
		Limit:  in.Limit,
		Offset: in.Offset,
	})
	if err != nil {
		writeError(w, r, err, in)
		return
	}

	out := make([]ProductionRow, 0, len(rows))
	for _, rr := range rows {
		rec := ProductionRow{
			Date:   rr.ProdDate.Format("2006-01-02"),
			WellID: rr.WellID,
		}
		if rr.OilBOPD.Valid {
			rec.OilBOPD = &rr.OilBOPD.Float64
		}
		if rr.GasMMSCFD.Valid {
			rec.GasMMSCFD = &rr.GasMMSCFD.Float64
		}
		if rr.WaterBWPD.Valid {
			rec.WaterBWPD = &rr.WaterBWPD.Float64
		}
		out = append(out, rec)
	}
	writeJSON(w, http.StatusOK, out)
}
