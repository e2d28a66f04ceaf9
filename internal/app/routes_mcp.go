// internal/app/routes_mcp.go
// Server MCP mandiri (cmd/mcp-router) di atas chi.

package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	hh "petrocalc/internal/handlers/http"
	"petrocalc/internal/mcp"
	"petrocalc/internal/middleware"
)

func NewMCPHandler(tools *mcp.Router, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.AccessLog(log.Named("http")))

	r.Get("/healthz", hh.HealthHandler)
	r.Post("/route", tools.ServeHTTP)
	r.Get("/tools", mcp.ToolsHandler)
	r.HandleFunc("/call/{tool}", func(w http.ResponseWriter, req *http.Request) {
		mcp.Serve(w, req, chi.URLParam(req, "tool"))
	})
	return r
}

// ServeMCP menjalankan server MCP mandiri sampai ctx selesai.
func (a *App) ServeMCP(ctx context.Context, addr string) error {
	return serve(ctx, &http.Server{
		Addr:         addr,
		Handler:      NewMCPHandler(a.Tools, a.Log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, a.Log)
}
