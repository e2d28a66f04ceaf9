// internal/handlers/http/debug_repos.go
package http

import (
	"net/http"

	mcphandlers "petrocalc/internal/handlers/mcp"
)

func ReposStatusHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, mcphandlers.ReposStatus())
}
