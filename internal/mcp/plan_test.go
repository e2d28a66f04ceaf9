// internal/mcp/plan_test.go

package mcp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func params(t *testing.T, raw json.RawMessage) map[string]any {
	t.Helper()
	m := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &m), string(raw))
	return m
}

func TestParsePlanStripsFences(t *testing.T) {
	p, err := ParsePlan("```json\n{\"mode\":\"mcp\",\"routes\":[{\"tool\":\"fit_ipr\"}]}\n```")
	require.NoError(t, err)
	require.Len(t, p.Routes, 1)
	assert.Equal(t, "fit_ipr", p.Routes[0].Tool)

	_, err = ParsePlan("bukan json")
	assert.Error(t, err)
}

func TestNormalizePlan(t *testing.T) {
	known := func(name string) bool {
		return name == "nodal_analysis" || name == "fit_ipr" || name == "get_production"
	}
	in := Plan{Routes: []Route{
		{Tool: " Nodal_Analysis "},
		{Kind: "sql", Tool: "get_production"},
		{Kind: "MCP", Tool: "bogus"},
		{Tool: "nodal_analysis"},
		{Tool: "fit_ipr"},
		{Tool: "get_production"},
	}}
	out := NormalizePlan("nodal sumur BNG-07", in, known, 2)

	assert.Equal(t, "mcp", out.Mode)
	assert.False(t, out.Fallback)
	require.Len(t, out.Routes, 2)
	assert.Equal(t, "nodal_analysis", out.Routes[0].Tool)
	assert.Equal(t, RouteMCP, out.Routes[0].Kind)
	assert.Equal(t, map[string]any{"well": "BNG-07"}, params(t, out.Routes[0].Params))
	assert.Equal(t, "fit_ipr", out.Routes[1].Tool)

	empty := NormalizePlan("", Plan{Routes: []Route{{Tool: "bogus"}}}, known, 0)
	assert.True(t, empty.Fallback)
	assert.Empty(t, empty.Routes)
}

func TestEnrichParamsNodal(t *testing.T) {
	got := params(t, EnrichParams("nodal_analysis", "nodal bng-07 whp 150 dan whp=250, pr 1500", nil))
	assert.Equal(t, "BNG-07", got["well"])
	assert.Equal(t, []any{150.0, 250.0}, got["wellhead_pressures"])
	assert.Equal(t, 1500.0, got["reservoir_pressure"])
}

func TestEnrichParamsKeepsCallerValues(t *testing.T) {
	got := params(t, EnrichParams("fit_ipr", "fit ipr BNG-07 pr 1500", json.RawMessage(`{"well":"KLP-1","points":5}`)))
	assert.Equal(t, "KLP-1", got["well"])
	assert.Equal(t, 1500.0, got["reservoir_pressure"])
	assert.Equal(t, 5.0, got["points"])
}

func TestEnrichParamsDecline(t *testing.T) {
	got := params(t, EnrichParams("decline_forecast", "forecast Hyperbolic qi=1000 d=0.08 b=0.5 selama 24 bulan", nil))
	assert.Equal(t, map[string]any{
		"model": "hyperbolic",
		"qi":     1000.0,
		"d":      0.08,
		"b":      0.5,
		"months": 24.0,
	}, got)

	got = params(t, EnrichParams("decline_from_history", "decline history BNG-07 36 months", nil))
	assert.Equal(t, map[string]any{"well": "BNG-07", "months": 36.0}, got)
}

func TestEnrichParamsOther(t *testing.T) {
	got := params(t, EnrichParams("get_production", "produksi BNG-07", nil))
	assert.Equal(t, map[string]any{"well_id": "BNG-07"}, got)

	assert.JSONEq(t, `{}`, string(EnrichParams("gaslift_sensitivity", "gas lift BNG-07", nil)))

	// params rusak dikembalikan apa adanya
	bad := json.RawMessage(`{"well":`)
	assert.Equal(t, bad, EnrichParams("fit_ipr", "fit ipr BNG-07", bad))
}

func TestSanitizeToolToken(t *testing.T) {
	assert.Equal(t, "get_well_tests", sanitizeToolToken(" Get_Well_Tests; "))
	assert.Equal(t, "", sanitizeToolToken("  "))
}

func TestHeuristicTool(t *testing.T) {
	cases := map[string]string{
		"hitung nodal analysis":                "nodal_analysis",
		"berapa AOF sumur ini":                 "fit_ipr",
		"decline dari histori produksi BNG-07": "decline_from_history",
		"arps decline qi=900 d=0.1":            "decline_forecast",
		"optimasi GIR gas lift":                "gaslift_sensitivity",
		"export ke Power BI":                   "ofm_export",
		"tampilkan well test terakhir":         "get_well_tests",
		"apa kabar":                            "",
	}
	for q, want := range cases {
		assert.Equal(t, want, heuristicTool(q), q)
	}
}
