// internal/mcp/plan.go
package mcp

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type RouteKind string

const RouteMCP RouteKind = "mcp"

type Route struct {
	Kind   RouteKind       `json:"kind"`
	Tool   string          `json:"tool"`
	Params json.RawMessage `json:"params,omitempty"` // body JSON untuk handler tool
}

type Plan struct {
	Mode     string  `json:"mode"`
	Routes   []Route `json:"routes"`
	Reason   string  `json:"reason,omitempty"`
	Fallback bool    `json:"fallback,omitempty"` // true jika tidak ada rute valid
}

// DefaultMaxRoutes membatasi jumlah tool per pertanyaan.
const DefaultMaxRoutes = 4

// ParsePlan membaca output JSON planner (boleh dibungkus ```json).
func ParsePlan(raw string) (Plan, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	var p Plan
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &p); err != nil {
		return Plan{}, fmt.Errorf("parse plan: %w", err)
	}
	return p, nil
}

// NormalizePlan membuang rute ke tool yang tidak dikenal, melengkapi params dari
// pertanyaan, menghapus duplikat, lalu memotong ke maxRoutes.
func NormalizePlan(question string, p Plan, known func(string) bool, maxRoutes int) Plan {
	if maxRoutes <= 0 {
		maxRoutes = DefaultMaxRoutes
	}
	seen := map[string]struct{}{}
	out := make([]Route, 0, len(p.Routes))
	for _, r := range p.Routes {
		kind := RouteKind(strings.ToLower(strings.TrimSpace(string(r.Kind))))
		if kind == "" {
			kind = RouteMCP
		}
		if kind != RouteMCP {
			continue
		}
		tool := sanitizeToolToken(r.Tool)
		if tool == "" || !known(tool) {
			continue
		}
		params := EnrichParams(tool, question, r.Params)
		key := tool + string(params)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, Route{Kind: RouteMCP, Tool: tool, Params: params})
		if len(out) == maxRoutes {
			break
		}
	}
	p.Routes = out
	p.Mode = string(RouteMCP)
	p.Fallback = len(out) == 0
	return p
}

var (
	reWell   = regexp.MustCompile(`(?i)\b([a-z]{2,5}-\d{1,4}[a-z]?)\b`)
	reWHP    = regexp.MustCompile(`(?i)\b(?:whp|thp|wellhead(?:\s+pressure)?)\s*(?:=|:)?\s*(\d+(?:\.\d+)?)`)
	rePr     = regexp.MustCompile(`(?i)\b(?:pr|reservoir\s+pressure|tekanan\s+reservoir)\s*(?:=|:)?\s*(\d+(?:\.\d+)?)`)
	reMonths = regexp.MustCompile(`(?i)\b(\d{1,4})\s*(?:bulan|months?|mo)\b`)
	reQi     = regexp.MustCompile(`(?i)\bqi\s*(?:=|:)?\s*(\d+(?:\.\d+)?)`)
	reD      = regexp.MustCompile(`(?i)\bd\s*(?:=|:)\s*(\d*\.?\d+)`)
	reB      = regexp.MustCompile(`(?i)\bb\s*(?:=|:)\s*(\d*\.?\d+)`)
)

// EnrichParams mengisi field yang belum ada di params dari teks pertanyaan.
// Field yang sudah diisi caller tidak ditimpa.
func EnrichParams(tool, question string, params json.RawMessage) json.RawMessage {
	pm := map[string]any{}
	if len(params) > 0 && !isJSONNullOrEmpty(params) {
		if err := json.Unmarshal(params, &pm); err != nil {
			return params
		}
	}
	set := func(k string, v any) {
		if _, ok := pm[k]; !ok {
			pm[k] = v
		}
	}
	well := ""
	if m := reWell.FindStringSubmatch(question); m != nil {
		well = strings.ToUpper(m[1])
	}

	switch tool {
	case "nodal_analysis":
		if well != "" {
			set("well", well)
		}
		if whps := floatsFrom(reWHP, question); len(whps) > 0 {
			set("wellhead_pressures", whps)
		}
		if prs := floatsFrom(rePr, question); len(prs) > 0 {
			set("reservoir_pressure", prs[0])
		}
	case "fit_ipr", "get_well_tests", "decline_from_history":
		if well != "" {
			set("well", well)
		}
		if prs := floatsFrom(rePr, question); len(prs) > 0 && tool == "fit_ipr" {
			set("reservoir_pressure", prs[0])
		}
		if ms := floatsFrom(reMonths, question); len(ms) > 0 && tool == "decline_from_history" {
			set("months", int(ms[0]))
		}
	case "decline_forecast":
		lq := strings.ToLower(question)
		for _, m := range []string{"hyperbolic", "harmonic", "exponential"} {
			if strings.Contains(lq, m) {
				set("model", m)
				break
			}
		}
		if v := floatsFrom(reQi, question); len(v) > 0 {
			set("qi", v[0])
		}
		if v := floatsFrom(reD, question); len(v) > 0 {
			set("d", v[0])
		}
		if v := floatsFrom(reB, question); len(v) > 0 {
			set("b", v[0])
		}
		if ms := floatsFrom(reMonths, question); len(ms) > 0 {
			set("months", int(ms[0]))
		}
	case "get_production":
		if well != "" {
			set("well_id", well)
		}
	}

	if len(pm) == 0 {
		return json.RawMessage("{}")
	}
	b, err := json.Marshal(pm)
	if err != nil {
		return params
	}
	return b
}

func floatsFrom(re *regexp.Regexp, s string) []float64 {
	var out []float64
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// isJSONNullOrEmpty: null / {} / whitespace
func isJSONNullOrEmpty(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null" || s == "{}"
}
