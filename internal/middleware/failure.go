package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/farigab/bragctl/internal/domain"
)

// PipelineDeps are the side-effect targets of the failure pipeline. Any of
// them may be nil.
type PipelineDeps struct {
	Notifier  domain.Notifier
	Navigator domain.Navigator
	Logger    *slog.Logger
	// OnSessionExpired runs once per 401 outside the login surface, before
	// navigation. Wired to SessionCache.Reset.
	OnSessionExpired func()
}

// FailurePipeline classifies every failed request and applies exactly one
// notification or redirect policy per failure. It never turns a failure into
// a success: the classified failure, which wraps the original, is returned.
type FailurePipeline struct {
	deps PipelineDeps
	now  func() time.Time
}

// NewFailurePipeline creates a failure pipeline.
func NewFailurePipeline(d PipelineDeps) *FailurePipeline {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &FailurePipeline{deps: d, now: time.Now}
}

// Interceptor returns the pipeline as a chain link.
func (p *FailurePipeline) Interceptor() Interceptor {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.Do(req)
			if err == nil {
				return resp, nil
			}
			return nil, p.intercept(req.Context(), err)
		})
	}
}

func (p *FailurePipeline) intercept(ctx context.Context, err error) error {
	failure := classifyAt(err, p.now())
	if failure == nil {
		p.deps.Logger.ErrorContext(ctx, "non-HTTP error in request pipeline", "error", err)
		return err
	}

	p.deps.Logger.ErrorContext(ctx, "HTTP error",
		"url", failure.URL,
		"method", failure.Method,
		"status", failure.Status,
		"class", failure.Class.String(),
		"message", failure.Message,
		"timestamp", failure.Timestamp.Format(time.RFC3339))

	p.Handle(failure)
	return failure
}

// Handle applies the per-status policy for one classified failure.
func (p *FailurePipeline) Handle(f *domain.ClassifiedFailure) {
	switch f.Status {
	case http.StatusUnauthorized:
		if p.onLoginSurface() {
			return
		}
		if p.deps.OnSessionExpired != nil {
			p.deps.OnSessionExpired()
		}
		p.warn("Session expired", "Please log in again")
		if p.deps.Navigator != nil {
			p.deps.Navigator.NavigateToLogin()
		}

	case http.StatusForbidden:
		p.error("Access denied", "You do not have permission to access this resource")

	case http.StatusNotFound:
		// Left to the caller.

	case http.StatusUnprocessableEntity:
		if msg := ValidationMessage(f.Cause); msg != "" {
			p.error("Validation error", msg)
		}

	case http.StatusTooManyRequests:
		p.warn("Rate limit", "Too many requests. Please wait a moment and try again")

	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		p.error("Server error", "An error occurred on our end. Please try again later")

	case 0:
		p.error("Network error", "Please check your internet connection")
	}
}

func (p *FailurePipeline) onLoginSurface() bool {
	if p.deps.Navigator == nil {
		return false
	}
	return strings.Contains(p.deps.Navigator.CurrentRoute(), domain.LoginRoute)
}

func (p *FailurePipeline) warn(summary, detail string) {
	if p.deps.Notifier != nil {
		p.deps.Notifier.Warn(summary, detail)
	}
}

func (p *FailurePipeline) error(summary, detail string) {
	if p.deps.Notifier != nil {
		p.deps.Notifier.Error(summary, detail)
	}
}
