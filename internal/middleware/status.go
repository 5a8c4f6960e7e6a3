package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/farigab/bragctl/internal/domain"
)

// maxErrorBody caps how much of a failed response body is read.
const maxErrorBody = 64 << 10

// StatusCheck turns non-2xx responses into *domain.HTTPError and transport
// failures into status-0 HTTPErrors. Cancellation of the caller's own context
// is returned untouched. It must be the innermost interceptor.
func StatusCheck() Interceptor {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.Do(req)
			if err != nil {
				if req.Context().Err() != nil {
					return nil, err
				}
				return nil, &domain.HTTPError{
					Method: req.Method,
					URL:    req.URL.String(),
					Err:    err,
				}
			}

			if resp.StatusCode < http.StatusBadRequest {
				return resp, nil
			}

			defer resp.Body.Close()
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

			herr := &domain.HTTPError{
				Method: req.Method,
				URL:    req.URL.String(),
				Status: resp.StatusCode,
				Reason: reasonPhrase(resp),
			}
			// Non-JSON bodies leave the payload empty.
			_ = json.Unmarshal(body, &herr.Payload)
			return nil, herr
		})
	}
}

// reasonPhrase extracts "Not Found" from a "404 Not Found" status line.
func reasonPhrase(resp *http.Response) string {
	code := strconv.Itoa(resp.StatusCode)
	if reason, ok := strings.CutPrefix(resp.Status, code); ok {
		if reason = strings.TrimSpace(reason); reason != "" {
			return reason
		}
	}
	return http.StatusText(resp.StatusCode)
}
