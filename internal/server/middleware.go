package server

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/archdraw/pkg/observability"
)

// logRequests logs every request at a level matching its status, reports
// it to the server hooks, and turns panics into 500s.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("caught panic", "panic", rec, "stack", string(debug.Stack()))
				if ww.Status() == 0 {
					writeJSON(s.logger, ww, http.StatusInternalServerError,
						map[string]string{"error": http.StatusText(http.StatusInternalServerError)})
				}
			}

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			dur := time.Since(start)
			observability.Server().OnResponse(r.Context(), r.Method, route, status, dur)

			kv := []any{
				"method", r.Method,
				"route", route,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", dur,
				"request_id", middleware.GetReqID(r.Context()),
			}
			switch {
			case status >= 500:
				s.logger.Error("request", kv...)
			case status >= 400:
				s.logger.Warn("request", kv...)
			default:
				s.logger.Info("request", kv...)
			}
		}()

		observability.Server().OnRequest(r.Context(), r.Method, r.URL.Path)
		next.ServeHTTP(ww, r)
	})
}
