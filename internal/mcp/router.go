// internal/mcp/router.go
// Router MCP: menerima request lalu memilih & mengeksekusi tool kalkulator.

package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"petrocalc/internal/mcp/llm"
)

// Planner menghasilkan plan JSON mentah untuk sebuah pertanyaan.
// Diimplementasikan oleh llm.RoutePlanner.
type Planner interface {
	PlanRaw(ctx context.Context, tools []llm.ToolLite, question string) (string, error)
}

type Router struct {
	Planner   Planner // nil = tanpa LLM, hanya heuristik
	Log       *zap.Logger
	MaxRoutes int
}

func NewRouter(p Planner, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{Planner: p, Log: log, MaxRoutes: DefaultMaxRoutes}
}

const maxRouteBody = 8 << 20

// ====== Regex heuristik (deterministik untuk pola populer) ======
var heuristics = []struct {
	re   *regexp.Regexp
	tool string
}{
	{regexp.MustCompile(`\b(nodal|operating point|titik operasi)\b`), "nodal_analysis"},
	{regexp.MustCompile(`\b(aof|absolute open flow|fetkovich fit|fit ipr)\b`), "fit_ipr"},
	{regexp.MustCompile(`\bdecline\b.*\b(histori|history)\b`), "decline_from_history"},
	{regexp.MustCompile(`\b(decline|arps)\b.*\bqi\b|\bqi\b.*\b(decline|arps)\b`), "decline_forecast"},
	{regexp.MustCompile(`\bgas ?lift\b|\bgir\b`), "gaslift_sensitivity"},
	{regexp.MustCompile(`\b(ofm|power ?bi)\b`), "ofm_export"},
	{regexp.MustCompile(`\bwell ?tests?\b|\buji sumur\b`), "get_well_tests"},
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reqID := r.Header.Get("X-Request-ID")
	log := rt.Log.With(zap.String("event", "mcp.route"), zap.String("request_id", reqID))

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRouteBody))
	if err != nil {
		writeRouteJSON(w, http.StatusBadRequest, ToolResponse{Error: "read body error"})
		log.Warn("read body", zap.Error(err))
		return
	}
	defer r.Body.Close()

	var req ToolRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		writeRouteJSON(w, http.StatusBadRequest, ToolResponse{Error: "invalid json"})
		log.Warn("unmarshal", zap.Error(err))
		return
	}
	question := strings.TrimSpace(req.Question)

	// 0) plan eksplisit dari caller
	if req.Plan != nil && len(req.Plan.Routes) > 0 {
		p := NormalizePlan(question, *req.Plan, isRegistered, rt.MaxRoutes)
		rt.respondPlan(w, r, p, "explicit-plan", log, start)
		return
	}

	// 1) tool eksplisit
	tool := sanitizeToolToken(req.Tool)
	decision := "explicit"

	if tool == "" {
		if question == "" {
			writeRouteJSON(w, http.StatusBadRequest, ToolResponse{Error: "tool or question is required"})
			log.Warn("empty request")
			return
		}
		decision = ""
		// 2) heuristik regex
		tool = heuristicTool(question)
		if tool != "" {
			decision = "keyword"
		}
		// 3) planner LLM (boleh multi-route)
		if tool == "" && rt.Planner != nil {
			if p, ok := rt.plan(r.Context(), question, log); ok {
				rt.respondPlan(w, r, p, "llm", log, start)
				return
			}
		}
		// 4) keyword katalog
		if tool == "" {
			if tool = catalogKeywordTool(question); tool != "" {
				decision = "catalog-keyword"
			}
		}
	}

	fields := []zap.Field{
		zap.String("question", question),
		zap.String("request_tool", req.Tool),
		zap.String("chosen_tool", tool),
		zap.String("decision_by", decision),
		zap.Int("registered_count", len(List())),
		zap.Bool("has_planner", rt.Planner != nil),
	}

	if tool == "" {
		writeRouteJSON(w, http.StatusUnprocessableEntity, ToolResponse{Error: "no tool matched the question"})
		log.Info("no tool matched", append(fields, zap.Duration("duration", time.Since(start)))...)
		return
	}

	h, ok := Get(tool)
	if !ok {
		writeRouteJSON(w, http.StatusNotFound, ToolResponse{Tool: tool, DecisionBy: decision, Error: "tool not found: " + tool})
		log.Warn("tool not found", append(fields, zap.Duration("duration", time.Since(start)))...)
		return
	}

	// 5) forward: handler hanya menerima params (tanpa envelope)
	params := req.Params
	if question != "" {
		params = EnrichParams(tool, question, params)
	}
	if isJSONNullOrEmpty(params) {
		params = json.RawMessage("{}")
	}
	r2 := r.Clone(r.Context())
	r2.Body = io.NopCloser(bytes.NewReader(params))
	r2.ContentLength = int64(len(params))
	r2.Header.Set("Content-Type", "application/json")
	w.Header().Set("X-MCP-Tool", tool)
	w.Header().Set("X-MCP-Decision", decision)
	h.ServeHTTP(w, r2)

	log.Info("routed", append(fields, zap.Duration("duration", time.Since(start)))...)
}

// plan memanggil planner; ok=false bila gagal atau tidak ada rute valid.
func (rt *Router) plan(ctx context.Context, question string, log *zap.Logger) (Plan, bool) {
	defs := RegisteredToolDefs()
	if len(defs) == 0 {
		return Plan{}, false
	}
	tools := make([]llm.ToolLite, 0, len(defs))
	for _, d := range defs {
		tools = append(tools, llm.ToolLite{
			Name:          d.Name,
			Description:   d.Description,
			InputSchema:   d.InputSchema,
			ExampleParams: d.ExampleParams,
		})
	}
	raw, err := rt.Planner.PlanRaw(ctx, tools, question)
	if err != nil {
		log.Warn("planner failed", zap.Error(err))
		return Plan{}, false
	}
	p, err := ParsePlan(raw)
	if err != nil {
		log.Warn("planner output", zap.Error(err), zap.String("raw", raw))
		return Plan{}, false
	}
	p = NormalizePlan(question, p, isRegistered, rt.MaxRoutes)
	if p.Fallback {
		return Plan{}, false
	}
	return p, true
}

func (rt *Router) respondPlan(w http.ResponseWriter, r *http.Request, p Plan, decision string, log *zap.Logger, start time.Time) {
	if len(p.Routes) == 0 {
		writeRouteJSON(w, http.StatusUnprocessableEntity, ToolResponse{DecisionBy: decision, Error: "plan has no executable routes"})
		log.Info("empty plan", zap.String("decision_by", decision))
		return
	}
	items := ExecuteRoutes(r.Context(), p.Routes, r.Header.Get("X-Request-ID"))
	ok := true
	tools := make([]string, 0, len(items))
	for _, it := range items {
		tools = append(tools, it.Route.Tool)
		if it.Error != "" {
			ok = false
		}
	}
	writeRouteJSON(w, http.StatusOK, ToolResponse{
		Success:    ok,
		DecisionBy: decision,
		Reason:     p.Reason,
		Items:      items,
	})
	log.Info("routed plan",
		zap.String("decision_by", decision),
		zap.Strings("tools", tools),
		zap.Bool("success", ok),
		zap.Duration("duration", time.Since(start)),
	)
}

// ToolsHandler: GET /mcp/tools, katalog tool yang terdaftar.
func ToolsHandler(w http.ResponseWriter, r *http.Request) {
	writeRouteJSON(w, http.StatusOK, map[string]any{"tools": RegisteredToolDefs()})
}

func heuristicTool(question string) string {
	q := strings.ToLower(question)
	for _, h := range heuristics {
		if h.re.MatchString(q) {
			return h.tool
		}
	}
	return ""
}

// catalogKeywordTool memilih tool dengan kecocokan keyword terbanyak (seri: urutan nama).
func catalogKeywordTool(question string) string {
	q := strings.ToLower(question)
	best, bestHits := "", 0
	for _, d := range RegisteredToolDefs() {
		hits := 0
		for _, k := range d.Keywords {
			if strings.Contains(q, strings.ToLower(k)) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = d.Name, hits
		}
	}
	return best
}

func isRegistered(name string) bool {
	_, ok := Get(name)
	return ok
}

var nonWord = regexp.MustCompile(`[^a-zA-Z0-9_\-]`)

func sanitizeToolToken(s string) string {
	s = nonWord.ReplaceAllString(strings.TrimSpace(s), "")
	return strings.ToLower(s)
}

func writeRouteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
