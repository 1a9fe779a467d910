package middleware

import (
	"net/http"
	"runtime/debug"

	httputil "taskhire/pkg/http"
)

// Recovery turns a handler panic into a 500 written by rs. It must sit inside
// RequestLogging so the request id is available.
func Recovery(rs *httputil.Responder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if recovered := recover(); recovered != nil {
					if recovered == http.ErrAbortHandler {
						panic(recovered)
					}

					rs.Log().Error("Panic recovered",
						"request_id", httputil.RequestID(r.Context()),
						"error", recovered,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)
					rs.Panic(w, r, recovered)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
