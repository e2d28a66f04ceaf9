// internal/handlers/mcp/petro_interval.go
// MCP Tool: petro_interval - analisis petrofisika dari file LAS

package mcp

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"petrocalc/internal/repositories/las"
	"petrocalc/internal/services"
	"petrocalc/internal/util"
)

// field numerik IntervalParams yang boleh ditimpa lewat query/form/JSON
func intervalFloatFields(p *services.IntervalParams) map[string]*float64 {
	return map[string]*float64{
		"top":            &p.Top,
		"base":           &p.Base,
		"gr_clip_min":    &p.GRClipMin,
		"gr_clip_max":    &p.GRClipMax,
		"matrix_density": &p.MatrixDensity,
		"fluid_density":  &p.FluidDensity,
		"a":              &p.A,
		"m":              &p.M,
		"n":              &p.N,
		"rw":             &p.Rw,
		"phi_cutoff":     &p.PhiCutoff,
		"sw_cutoff":      &p.SwCutoff,
		"vsh_cutoff":     &p.VshCutoff,
	}
}

func intervalCurveFields(p *services.IntervalParams) map[string]*string {
	return map[string]*string{
		"gr_curve":   &p.GRCurve,
		"rt_curve":   &p.RTCurve,
		"rhob_curve": &p.RHOBCurve,
		"nphi_curve": &p.NPHICurve,
	}
}

// applyIntervalValues menimpa params dari sumber key→string; mengembalikan key yang diisi.
func applyIntervalValues(p *services.IntervalParams, get func(string) string) (map[string]string, error) {
	set := map[string]string{}
	for k, dst := range intervalFloatFields(p) {
		s := strings.TrimSpace(get(k))
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return set, util.BadInput(k + " must be a number")
		}
		*dst = v
		set[k] = s
	}
	for k, dst := range intervalCurveFields(p) {
		if s := strings.TrimSpace(get(k)); s != "" {
			*dst = s
			set[k] = s
		}
	}
	return set, nil
}

// readPetroRequest menerima multipart (field "file"), JSON {"las": "...", ...}, atau body LAS mentah.
func readPetroRequest(r *http.Request) (io.Reader, map[string]string, services.IntervalParams, error) {
	p := services.DefaultIntervalParams()
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch ct {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBody); err != nil {
			return nil, nil, p, util.BadInput("invalid multipart form: " + err.Error())
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, nil, p, util.BadInput("multipart field \"file\" is required")
		}
		set, err := applyIntervalValues(&p, r.FormValue)
		return file, set, p, err

	case "application/json":
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
		if err != nil {
			return nil, nil, p, util.BadInput("read body: " + err.Error())
		}
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, nil, p, util.BadInput("invalid json: " + err.Error())
		}
		text, _ := body["las"].(string)
		if strings.TrimSpace(text) == "" {
			return nil, nil, p, util.BadInput("las is required")
		}
		set, err := applyIntervalValues(&p, func(k string) string {
			switch v := body[k].(type) {
			case string:
				return v
			case float64:
				return strconv.FormatFloat(v, 'g', -1, 64)
			}
			return ""
		})
		return strings.NewReader(text), set, p, err

	default:
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
		if err != nil {
			return nil, nil, p, util.BadInput("read body: " + err.Error())
		}
		set, err := applyIntervalValues(&p, r.URL.Query().Get)
		return bytes.NewReader(raw), set, p, err
	}
}

func PetroIntervalHandler(w http.ResponseWriter, r *http.Request) {
	src, set, p, err := readPetroRequest(r)
	if err != nil {
		writeError(w, r, err, set)
		return
	}
	if c, ok := src.(io.Closer); ok {
		defer c.Close()
	}
	f, err := las.Read(src)
	if err != nil {
		writeError(w, r, err, set)
		return
	}
	// Rw dari ~PARAMETER bila caller tidak mengisi
	if _, ok := set["rw"]; !ok {
		if v, ok := f.ParamFloat("RW"); ok {
			p.Rw = v
		}
	}

	res, err := services.AnalyzeInterval(f.LogCurves(), p)
	if err != nil {
		writeError(w, r, err, set)
		return
	}

	if wantCSV(r) {
		name := "petro_interval.csv"
		if well := f.WellName(); well != "" {
			name = "petro_" + well + ".csv"
		}
		writeCSV(w, name, func(wr io.Writer) error { return services.WriteIntervalCSV(wr, res.Rows) })
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"well":           f.WellName(),
		"field":          f.Field(),
		"curves":         f.Mnemonics(),
		"rw":             p.Rw,
		"summary":        res.Summary,
		"nphi_converted": res.NPHIConverted,
		"rows":           res.Rows,
	})
}
