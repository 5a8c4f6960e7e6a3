package middleware

import (
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/farigab/bragctl/internal/domain"
)

// Tracing opens a client span per request.
func Tracing(tracer trace.Tracer) Interceptor {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			ctx, span := tracer.Start(req.Context(), "HTTP "+req.Method,
				trace.WithSpanKind(trace.SpanKindClient),
				trace.WithAttributes(
					attribute.String("http.request.method", req.Method),
					attribute.String("url.path", req.URL.Path),
				))
			defer span.End()

			resp, err := next.Do(req.WithContext(ctx))
			if err != nil {
				var cf *domain.ClassifiedFailure
				if errors.As(err, &cf) {
					span.SetAttributes(
						attribute.Int("http.response.status_code", cf.Status),
						attribute.String("bragctl.failure_class", cf.Class.String()),
					)
				}
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, err
			}

			span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
			return resp, nil
		})
	}
}
