// middleware/request_id.go
// Middleware untuk inject X-Request-ID

package middleware

import (
	"net/http"

	"petrocalc/internal/util"
)

func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := util.RequestID(r.Header.Get("X-Request-ID"))
		r.Header.Set("X-Request-ID", reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r)
	})
}
