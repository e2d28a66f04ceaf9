// internal/handlers/http/cors_handler.go
package http

import "net/http"

// PreflightHandler: 204 untuk OPTIONS /api/*; header CORS dipasang middleware.
// Cache preflight 10 menit agar upload LAS/CSV tidak preflight berulang.
func PreflightHandler(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Allow", "GET, POST, OPTIONS")
	h.Set("Access-Control-Max-Age", "600")
	w.WriteHeader(http.StatusNoContent)
}
