package middleware

import (
	"log/slog"
	"net/http"

	"github.com/farigab/bragctl/internal/domain"
)

// Credentials attaches the stored session cookie to every request and
// persists rotated session cookies from successful responses.
func Credentials(store domain.CredentialStore, cookieName string, logger *slog.Logger) Interceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			r := req.Clone(req.Context())
			if value, err := store.Load(); err != nil {
				logger.WarnContext(req.Context(), "failed to load stored credentials", "error", err)
			} else if value != "" {
				r.Header.Del("Cookie")
				r.AddCookie(&http.Cookie{Name: cookieName, Value: value})
			}

			resp, err := next.Do(r)
			if err != nil {
				return nil, err
			}

			for _, c := range resp.Cookies() {
				if c.Name != cookieName {
					continue
				}
				var serr error
				if c.Value == "" || c.MaxAge < 0 {
					serr = store.Clear()
				} else {
					serr = store.Save(c.Value)
				}
				if serr != nil {
					logger.WarnContext(req.Context(), "failed to persist session cookie", "error", serr)
				}
			}
			return resp, nil
		})
	}
}
