// internal/handlers/http/metrics_handler.go
// Handler untuk metrics Prometheus format sederhana

package http

import (
	"fmt"
	"net/http"
	"sort"

	mcphandlers "petrocalc/internal/handlers/mcp"
	"petrocalc/internal/mcp"
)

func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP app_up 1 if the app is up\n# TYPE app_up gauge\napp_up 1\n")
	fmt.Fprintf(w, "# HELP app_build_info build version\n# TYPE app_build_info gauge\napp_build_info{version=%q} 1\n", version)
	fmt.Fprintf(w, "# HELP mcp_tools_registered number of registered MCP tools\n# TYPE mcp_tools_registered gauge\nmcp_tools_registered %d\n", len(mcp.List()))

	repos := mcphandlers.ReposStatus()
	names := make([]string, 0, len(repos))
	for k := range repos {
		names = append(names, k)
	}
	sort.Strings(names)
	fmt.Fprintf(w, "# HELP repo_ready 1 if the repository has a database connection\n# TYPE repo_ready gauge\n")
	for _, n := range names {
		v := 0
		if repos[n] {
			v = 1
		}
		fmt.Fprintf(w, "repo_ready{repo=%q} %d\n", n, v)
	}
}
