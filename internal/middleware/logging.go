package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// Logging writes one debug record per request with its latency.
func Logging(logger *slog.Logger) Interceptor {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.Do(req)
			latency := time.Since(start).Milliseconds()

			if err != nil {
				logger.DebugContext(req.Context(), "request failed",
					"method", req.Method,
					"uri", req.URL.Path,
					"latency_ms", latency,
					"error", err.Error())
				return nil, err
			}
			logger.DebugContext(req.Context(), "request completed",
				"method", req.Method,
				"uri", req.URL.Path,
				"status", resp.StatusCode,
				"latency_ms", latency)
			return resp, nil
		})
	}
}
