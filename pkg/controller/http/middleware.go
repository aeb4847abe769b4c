package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
	"github.com/secmon-lab/incidex/pkg/domain/model"
	"github.com/secmon-lab/incidex/pkg/domain/types"
)

// LoggingMiddleware embeds the server logger into each request, tagged with
// the chi request ID, and logs the outcome. The same ID is forwarded to the
// triage API as X-Request-ID.
func LoggingMiddleware(ctx context.Context) func(next http.Handler) http.Handler {
	base := ctxlog.From(ctx)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := base
			reqCtx := r.Context()
			if id := middleware.GetReqID(reqCtx); id != "" {
				logger = logger.With("request_id", id)
				reqCtx = model.WithRequestID(reqCtx, types.RequestID(id))
			}
			r = r.WithContext(ctxlog.With(reqCtx, logger))

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
			)
		})
	}
}
