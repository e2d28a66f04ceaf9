// internal/app/tools.go
package app

import (
	mcphandlers "petrocalc/internal/handlers/mcp"
	"petrocalc/internal/mcp"
)

// RegisterMCPTools mendaftarkan semua tool MCP ke registry.
// Nama harus sama dengan katalog mcp-tools.json.
func RegisterMCPTools() {
	// Nodal & IPR
	mcp.RegisterFunc("nodal_analysis", mcphandlers.NodalAnalysisHandler)
	mcp.RegisterFunc("fit_ipr", mcphandlers.FitIPRHandler)

	// Decline
	mcp.RegisterFunc("decline_forecast", mcphandlers.DeclineForecastHandler)
	mcp.RegisterFunc("decline_from_history", mcphandlers.DeclineFromHistoryHandler)

	// Studi lain
	mcp.RegisterFunc("gaslift_sensitivity", mcphandlers.GasLiftHandler)
	mcp.RegisterFunc("petro_interval", mcphandlers.PetroIntervalHandler)
	mcp.RegisterFunc("ofm_export", mcphandlers.OFMExportHandler)

	// Data sumur (butuh DB)
	mcp.RegisterFunc("get_well_tests", mcphandlers.GetWellTestsHandler)
	mcp.RegisterFunc("get_production", mcphandlers.GetProductionHandler)
}
