// internal/handlers/mcp/decline.go
// MCP Tool: decline_forecast & decline_from_history

package mcp

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	mysqlrepo "petrocalc/internal/repositories/mysql"
	"petrocalc/internal/services"
	"petrocalc/internal/util"
)

const defaultForecastMonths = 60

type declineReq struct {
	Model  string   `json:"model,omitempty"`
	Qi     *float64 `json:"qi,omitempty"`
	D      *float64 `json:"d,omitempty"`
	B      float64  `json:"b,omitempty"`
	Months int      `json:"months,omitempty"`
}

// fromQuery: GET ?model=&qi=&d=&b=&months=
func (d *declineReq) fromQuery(r *http.Request) error {
	q := r.URL.Query()
	d.Model = q.Get("model")
	parse := func(key string) (*float64, error) {
		s := strings.TrimSpace(q.Get(key))
		if s == "" {
			return nil, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, util.BadInput(key + " must be a number")
		}
		return &v, nil
	}
	var err error
	if d.Qi, err = parse("qi"); err != nil {
		return err
	}
	if d.D, err = parse("d"); err != nil {
		return err
	}
	b, err := parse("b")
	if err != nil {
		return err
	}
	if b != nil {
		d.B = *b
	}
	if s := q.Get("months"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return util.BadInput("months must be an integer")
		}
		d.Months = n
	}
	return nil
}

func DeclineForecastHandler(w http.ResponseWriter, r *http.Request) {
	var in declineReq
	var err error
	if r.Method == http.MethodGet {
		err = in.fromQuery(r)
	} else {
		err = decodeJSON(r, &in)
	}
	if err != nil {
		writeError(w, r, err, in)
		return
	}
	if in.Qi == nil || in.D == nil {
		writeError(w, r, util.BadInput("qi and d are required"), in)
		return
	}
	if in.Months == 0 {
		in.Months = defaultForecastMonths
	}
	if in.Months > maxForecastMonths {
		writeError(w, r, util.BadInput(fmt.Sprintf("months must be at most %d", maxForecastMonths)), in)
		return
	}
	model, err := services.ParseDeclineModel(in.Model)
	if err != nil {
		writeError(w, r, err, in)
		return
	}
	fc, err := services.ForecastDecline(model, *in.Qi, *in.D, in.B, in.Months)
	if err != nil {
		writeError(w, r, err, in)
		return
	}

	if wantCSV(r) {
		writeCSV(w, "decline_"+string(model)+".csv", func(wr io.Writer) error { return services.WriteForecastCSV(wr, fc) })
		return
	}
	writeJSON(w, http.StatusOK, fc)
}

type historyReq struct {
	Well   string `json:"well"`
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
	Months int    `json:"months,omitempty"` // horizon forecast
}

// DeclineFromHistoryHandler: histori bulanan dari DB → fit eksponensial → forecast.
func DeclineFromHistoryHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in := historyReq{Well: strings.TrimSpace(q.Get("well")), Start: q.Get("start"), End: q.Get("end")}
	if v := q.Get("months"); v != "" {
		in.Months, _ = strconv.Atoi(v)
	}
	if r.Method == http.MethodPost && in.Well == "" {
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, r, err, in)
			return
		}
		in.Well = strings.TrimSpace(in.Well)
	}
	if in.Months <= 0 {
		in.Months = defaultForecastMonths
	}
	if in.Months > maxForecastMonths {
		writeError(w, r, util.BadInput(fmt.Sprintf("months must be at most %d", maxForecastMonths)), in)
		return
	}
	if productionRepo == nil {
		writeError(w, r, util.Unavailable("production repo not configured"), in)
		return
	}
	if in.Well == "" {
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

	months, err := productionRepo.MonthlyOil(ctx, in.Well, start, end)
	if err != nil {
		writeError(w, r, err, in)
		return
	}
	history := mysqlrepo.HistoryPoints(months)
	fit, err := services.FitExponentialDecline(history)
	if err != nil {
		writeError(w, r, err, in)
		return
	}
	fc, err := services.ForecastDecline(services.DeclineExponential, fit.Qi, fit.D, 0, in.Months)
	if err != nil {
		writeError(w, r, err, in)
		return
	}

	if wantCSV(r) {
		writeCSV(w, "decline_"+in.Well+".csv", func(wr io.Writer) error { return services.WriteForecastCSV(wr, fc) })
		return
	}
	first := ""
	if len(months) > 0 {
		first = months[0].Month.Format("2006-01")
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"well":        in.Well,
		"first_month": first,
		"history":     history,
		"fit":         fit,
		"forecast":    fc,
	})
}
