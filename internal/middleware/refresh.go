package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/farigab/bragctl/internal/domain"
)

// TokenExpiredCode marks a 401 that a session refresh can recover.
const TokenExpiredCode = "TOKEN_EXPIRED"

// Refresher performs the session refresh action. SessionCache implements it.
type Refresher interface {
	Refresh(ctx context.Context) error
	RefreshInProgress() bool
}

// RefreshOnExpiry retries a request once after a successful session refresh
// when it failed with a TOKEN_EXPIRED 401. While a refresh is already running
// the failure passes through unchanged; a failed refresh propagates the
// original failure.
func RefreshOnExpiry(r Refresher, logger *slog.Logger) Interceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.Do(req)
			if err == nil || !IsTokenExpired(err) {
				return resp, err
			}

			if r.RefreshInProgress() {
				return nil, err
			}

			if rerr := r.Refresh(req.Context()); rerr != nil {
				logger.WarnContext(req.Context(), "token refresh did not recover request",
					"url", req.URL.String(), "error", rerr)
				return nil, err
			}

			retry, ok := cloneForRetry(req)
			if !ok {
				return nil, err
			}
			logger.DebugContext(req.Context(), "retrying request after session refresh", "url", req.URL.String())
			return next.Do(retry)
		})
	}
}

// IsTokenExpired reports whether err is a 401 carrying the TOKEN_EXPIRED code.
func IsTokenExpired(err error) bool {
	var herr *domain.HTTPError
	if !errors.As(err, &herr) {
		return false
	}
	return herr.Status == http.StatusUnauthorized && herr.Payload.Code == TokenExpiredCode
}

// cloneForRetry copies req with a fresh body. Requests whose body cannot be
// replayed are not retried.
func cloneForRetry(req *http.Request) (*http.Request, bool) {
	retry := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return retry, true
	}
	if req.GetBody == nil {
		return nil, false
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	retry.Body = body
	return retry, true
}
