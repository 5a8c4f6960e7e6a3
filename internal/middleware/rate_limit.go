package middleware

import (
	"net/http"

	"golang.org/x/time/rate"
)

// NewLimiter builds a client-side limiter. A non-positive rps disables limiting.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), max(burst, 1))
}

// RateLimit waits for a token before each request. A nil limiter is a no-op.
func RateLimit(l *rate.Limiter) Interceptor {
	return func(next Doer) Doer {
		if l == nil {
			return next
		}
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			if err := l.Wait(req.Context()); err != nil {
				return nil, err
			}
			return next.Do(req)
		})
	}
}
