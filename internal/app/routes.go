// internal/app/routes.go
package app

import (
	"net/http"

	"github.com/gorilla/mux"

	hh "petrocalc/internal/handlers/http"
	mcphandlers "petrocalc/internal/handlers/mcp"
	"petrocalc/internal/mcp"
)

// RegisterRoutes menambahkan route HTTP (kalkulator, MCP, operasional).
func RegisterRoutes(r *mux.Router, tools *mcp.Router) {
	// --- no prefix ---
	r.HandleFunc("/healthz", hh.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/readyz", hh.ReadyHandler).Methods(http.MethodGet)
	r.HandleFunc("/metrics", hh.MetricsHandler).Methods(http.MethodGet)
	r.HandleFunc("/debug/repos", hh.ReposStatusHandler).Methods(http.MethodGet)

	// ---- MCP ----
	r.Handle("/mcp/route", tools).Methods(http.MethodPost)
	r.HandleFunc("/mcp/tools", mcp.ToolsHandler).Methods(http.MethodGet)
	// Endpoint langsung per tool (debug/manual curl)
	r.HandleFunc("/mcp/call/{tool}", func(w http.ResponseWriter, req *http.Request) {
		mcp.Serve(w, req, mux.Vars(req)["tool"])
	}).Methods(http.MethodGet, http.MethodPost)

	// --- /api prefix (supaya FE bisa pakai /api/...) ---
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/healthz", hh.HealthHandler).Methods(http.MethodGet)
	api.HandleFunc("/readyz", hh.ReadyHandler).Methods(http.MethodGet)

	api.HandleFunc("/nodal", mcphandlers.NodalAnalysisHandler).Methods(http.MethodPost)
	api.HandleFunc("/nodal/fit", mcphandlers.FitIPRHandler).Methods(http.MethodPost)

	api.HandleFunc("/decline", mcphandlers.DeclineForecastHandler).Methods(http.MethodGet, http.MethodPost)
	api.HandleFunc("/decline/history", mcphandlers.DeclineFromHistoryHandler).Methods(http.MethodGet, http.MethodPost)

	api.HandleFunc("/gaslift", mcphandlers.GasLiftHandler).Methods(http.MethodPost)
	api.HandleFunc("/gaslift/stream", mcphandlers.GasLiftStreamHandler).Methods(http.MethodPost)

	api.HandleFunc("/petro/interval", mcphandlers.PetroIntervalHandler).Methods(http.MethodPost)
	api.HandleFunc("/ofm/export", mcphandlers.OFMExportHandler).Methods(http.MethodPost)

	api.HandleFunc("/well-tests", mcphandlers.GetWellTestsHandler).Methods(http.MethodGet, http.MethodPost)
	api.HandleFunc("/production", mcphandlers.GetProductionHandler).Methods(http.MethodGet, http.MethodPost)

	// Preflight catch-all
	api.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(hh.PreflightHandler)
}
