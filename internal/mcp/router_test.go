// mcp/router_test.go

package mcp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apppkg "petrocalc/internal/app"
	"petrocalc/internal/mcp"
	"petrocalc/internal/mcp/llm"
)

type stubPlanner struct {
	raw   string
	err   error
	calls int
	tools []llm.ToolLite
}

func (s *stubPlanner) PlanRaw(_ context.Context, tools []llm.ToolLite, _ string) (string, error) {
	s.calls++
	s.tools = tools
	return s.raw, s.err
}

func route(t *testing.T, rt *mcp.Router, body string) *httptest.ResponseRecorder {
	t.Helper()
	apppkg.RegisterMCPTools()
	req := httptest.NewRequest(http.MethodPost, "/mcp/route", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "test-rid")
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)
	return rec
}

// Pastikan /mcp/route menjalankan tool terdaftar bila tool disebut eksplisit
func TestMCPRouteExecutesExplicitTool(t *testing.T) {
	rec := route(t, mcp.NewRouter(nil, nil), `{"tool":"decline_forecast","params":{"qi":1000,"d":0.1,"months":12}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "decline_forecast", rec.Header().Get("X-MCP-Tool"))
	assert.Equal(t, "explicit", rec.Header().Get("X-MCP-Decision"))

	var fc struct {
		Time []float64 `json:"time"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fc))
	assert.Len(t, fc.Time, 13)
}

func TestMCPRouteKeywordEnrichesParams(t *testing.T) {
	rec := route(t, mcp.NewRouter(nil, nil), `{"question":"Buat decline forecast harmonic qi=800 d=0.05 untuk 12 bulan"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "keyword", rec.Header().Get("X-MCP-Decision"))

	var fc struct {
		Model string    `json:"model"`
		Rate  []float64 `json:"rate"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fc))
	assert.Equal(t, "harmonic", fc.Model)
	require.Len(t, fc.Rate, 13)
	assert.Equal(t, 800.0, fc.Rate[0])
}

func TestMCPRouteNodalQuestion(t *testing.T) {
	rec := route(t, mcp.NewRouter(nil, nil), `{"question":"hitung titik operasi nodal dengan whp 100"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "nodal_analysis", rec.Header().Get("X-MCP-Tool"))

	var res struct {
		Scenarios []struct {
			OperatingPoint struct {
				Rate float64 `json:"rate"`
			} `json:"operating_point"`
		} `json:"scenarios"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Scenarios, 1)
	assert.InDelta(t, 398.148, res.Scenarios[0].OperatingPoint.Rate, 1e-3)
}

func TestMCPRouteErrors(t *testing.T) {
	rt := mcp.NewRouter(nil, nil)

	rec := route(t, rt, `{"tool":"drop_tables"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = route(t, rt, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = route(t, rt, `{"tool":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = route(t, rt, `{"question":"halo apa kabar"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestMCPRoutePlannerMultiRoute(t *testing.T) {
	p := &stubPlanner{raw: "```json\n" + `{"mode":"mcp","reason":"ipr lalu decline","routes":[
		{"tool":"fit_ipr","params":{"points":3}},
		{"tool":"bogus_tool"},
		{"kind":"sql","tool":"get_production"},
		{"tool":"decline_forecast","params":{"qi":500,"d":0.1,"months":6}}
	]}` + "\n```"}
	rec := route(t, mcp.NewRouter(p, nil), `{"question":"berapa kemampuan sumur ini dan bagaimana penurunannya?"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, p.calls)
	assert.Len(t, p.tools, 9)

	var resp struct {
		Success    bool   `json:"success"`
		DecisionBy string `json:"decision_by"`
		Reason     string `json:"reason"`
		Items      []struct {
			Route struct {
				Tool string `json:"tool"`
			} `json:"route"`
			Status int            `json:"status"`
			Data   map[string]any `json:"data"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "llm", resp.DecisionBy)
	assert.Equal(t, "ipr lalu decline", resp.Reason)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "fit_ipr", resp.Items[0].Route.Tool)
	assert.InDelta(t, 1237.99, resp.Items[0].Data["aof"], 0.01)
	assert.Equal(t, "decline_forecast", resp.Items[1].Route.Tool)
	assert.Equal(t, http.StatusOK, resp.Items[1].Status)
}

func TestMCPRoutePlannerFailureFallsBackToCatalog(t *testing.T) {
	p := &stubPlanner{err: errors.New("llm down")}
	rec := route(t, mcp.NewRouter(p, nil), `{"question":"tampilkan produksi harian"}`)

	assert.Equal(t, 1, p.calls)
	assert.Equal(t, "get_production", rec.Header().Get("X-MCP-Tool"))
	assert.Equal(t, "catalog-keyword", rec.Header().Get("X-MCP-Decision"))
	// repo produksi tidak di-inject di test ini
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMCPRouteHeuristicSkipsPlanner(t *testing.T) {
	p := &stubPlanner{raw: `{"routes":[{"tool":"fit_ipr"}]}`}
	rec := route(t, mcp.NewRouter(p, nil), `{"question":"jalankan sensitivity gas lift"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, p.calls)
	assert.Equal(t, "gaslift_sensitivity", rec.Header().Get("X-MCP-Tool"))
}

func TestMCPRouteExplicitPlan(t *testing.T) {
	body := `{"question":"data sumur BNG-07","plan":{"routes":[
		{"tool":"decline_forecast","params":{"qi":100,"d":0}},
		{"tool":"get_well_tests"}
	]}}`
	rec := route(t, mcp.NewRouter(nil, nil), body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp mcp.ToolResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "explicit-plan", resp.DecisionBy)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, http.StatusOK, resp.Items[0].Status)
	assert.Equal(t, http.StatusServiceUnavailable, resp.Items[1].Status)
	assert.Contains(t, resp.Items[1].Error, "unavailable")
	assert.JSONEq(t, `{"well":"BNG-07"}`, string(resp.Items[1].Route.Params))
}

func TestToolsHandlerListsCatalog(t *testing.T) {
	apppkg.RegisterMCPTools()
	rec := httptest.NewRecorder()
	mcp.ToolsHandler(rec, httptest.NewRequest(http.MethodGet, "/mcp/tools", nil))

	var cat mcp.ToolCatalog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cat))
	names := make([]string, 0, len(cat.Tools))
	for _, d := range cat.Tools {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{
		"decline_forecast", "decline_from_history", "fit_ipr", "gaslift_sensitivity", "get_production",
		"get_well_tests", "nodal_analysis", "ofm_export", "petro_interval",
	}, names)
}
