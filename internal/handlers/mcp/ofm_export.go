// internal/handlers/mcp/ofm_export.go
// MCP Tool: ofm_export - gabung export OFM produksi + well test untuk dashboard

package mcp

import (
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"petrocalc/internal/services"
	"petrocalc/internal/util"
)

type ofmReq struct {
	ProductionCSV string   `json:"production_csv"`
	WellTestCSV   string   `json:"welltest_csv"`
	Wells         []string `json:"wells,omitempty"`
	LiftMethods   []string `json:"lift_methods,omitempty"`
	Raw           bool     `json:"raw,omitempty"` // header sudah memakai kode kolom dashboard
}

type ofmInput struct {
	Wells       []string `json:"wells,omitempty"`
	LiftMethods []string `json:"lift_methods,omitempty"`
	Raw         bool     `json:"raw,omitempty"`
}

func readOFMRequest(r *http.Request) (prod, tests services.Table, in ofmInput, err error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "multipart/form-data" {
		if err = r.ParseMultipartForm(maxBody); err != nil {
			return prod, tests, in, util.BadInput("invalid multipart form: " + err.Error())
		}
		in.Wells = splitList(r.FormValue("wells"))
		in.LiftMethods = splitList(r.FormValue("lift_methods"))
		in.Raw, _ = strconv.ParseBool(r.FormValue("raw"))
		if prod, err = formTable(r, "production"); err != nil {
			return prod, tests, in, err
		}
		tests, err = formTable(r, "welltest")
		return prod, tests, in, err
	}

	var body ofmReq
	if err = decodeJSON(r, &body); err != nil {
		return prod, tests, in, err
	}
	in = ofmInput{Wells: body.Wells, LiftMethods: body.LiftMethods, Raw: body.Raw}
	if strings.TrimSpace(body.ProductionCSV) == "" || strings.TrimSpace(body.WellTestCSV) == "" {
		return prod, tests, in, util.BadInput("production_csv and welltest_csv are required")
	}
	if prod, err = services.ReadTable(strings.NewReader(body.ProductionCSV)); err != nil {
		return prod, tests, in, err
	}
	tests, err = services.ReadTable(strings.NewReader(body.WellTestCSV))
	return prod, tests, in, err
}

func formTable(r *http.Request, field string) (services.Table, error) {
	f, _, err := r.FormFile(field)
	if err != nil {
		return services.Table{}, util.BadInput("multipart field \"" + field + "\" is required")
	}
	defer f.Close()
	return services.ReadTable(io.LimitReader(f, maxBody))
}

func OFMExportHandler(w http.ResponseWriter, r *http.Request) {
	prod, tests, in, err := readOFMRequest(r)
	if err != nil {
		writeError(w, r, err, in)
		return
	}
	out, err := services.OFMExport(prod, tests, services.OFMFilter{Wells: in.Wells, LiftMethods: in.LiftMethods}, in.Raw)
	if err != nil {
		writeError(w, r, err, in)
		return
	}

	name := services.OFMExportFilename(clock.Now())
	if wantCSV(r) {
		writeCSV(w, name, func(wr io.Writer) error { return services.WriteTable(wr, out) })
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"filename": name,
		"wells":    out.Unique("WELL"),
		"count":    len(out.Rows),
		"header":   out.Header,
		"rows":     out.Rows,
	})
}
