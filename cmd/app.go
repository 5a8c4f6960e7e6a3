package cmd

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"

	"go.opentelemetry.io/otel/trace"

	"github.com/farigab/bragctl/internal/adapter/gateway"
	"github.com/farigab/bragctl/internal/daterange"
	"github.com/farigab/bragctl/internal/domain"
	"github.com/farigab/bragctl/internal/infrastructure/cache"
	"github.com/farigab/bragctl/internal/infrastructure/credential"
	"github.com/farigab/bragctl/internal/middleware"
	"github.com/farigab/bragctl/internal/output"
	"github.com/farigab/bragctl/internal/render"
	"github.com/farigab/bragctl/internal/telemetry"
	"github.com/farigab/bragctl/internal/usecase"
)

// app is the object graph shared by every command of one run.
type app struct {
	store    *credential.FileStore
	gateway  *gateway.APIGateway
	session  *cache.SessionCache
	wizard   *usecase.ImportWizard
	renderer *render.Renderer
	dates    *daterange.Calculator
	notices  *noticeTracker
	tracer   trace.Tracer
	shutdown telemetry.ShutdownFunc
}

var current *app

// noticeTracker remembers whether a notice reached the user so the final
// error report does not repeat it.
type noticeTracker struct {
	next  domain.Notifier
	shown atomic.Bool
}

func (t *noticeTracker) Info(summary, detail string) { t.next.Info(summary, detail) }

func (t *noticeTracker) Warn(summary, detail string) {
	t.shown.Store(true)
	t.next.Warn(summary, detail)
}

func (t *noticeTracker) Error(summary, detail string) {
	t.shown.Store(true)
	t.next.Error(summary, detail)
}

// getApp builds the graph on first use. The API doer is late-bound because
// the session cache, the gateway and the failure pipeline refer to each other.
func getApp(ctx context.Context) (*app, error) {
	if current != nil {
		return current, nil
	}

	tracer, shutdown, err := telemetry.InitProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		SampleRatio:    cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		return nil, &output.CLIError{
			Summary:    "failed to initialize tracing",
			Detail:     err.Error(),
			Suggestion: "Check telemetry.otlp_endpoint or set telemetry.enabled to false",
			ExitCode:   output.ExitConfigError,
			Err:        err,
		}
	}

	store, err := credential.NewFileStore(cfg.Session.CredentialsFile)
	if err != nil {
		return nil, &output.CLIError{Summary: "invalid credentials file", Detail: err.Error(), ExitCode: output.ExitConfigError, Err: err}
	}

	notices := &noticeTracker{next: output.NewNotifier(printer)}
	httpClient := &http.Client{Timeout: cfg.API.Timeout}

	refreshDoer := middleware.Chain(httpClient,
		middleware.RequestID(),
		middleware.Credentials(store, cfg.Session.CookieName, log),
		middleware.StatusCheck(),
	)

	var doer middleware.Doer
	gw, err := gateway.NewAPIGateway(cfg.API.BaseURL,
		middleware.DoerFunc(func(r *http.Request) (*http.Response, error) { return doer.Do(r) }),
		gateway.WithRefreshDoer(refreshDoer),
	)
	if err != nil {
		return nil, &output.CLIError{Summary: "invalid API base URL", Detail: err.Error(), ExitCode: output.ExitConfigError, Err: err}
	}

	session := cache.NewSessionCache(cache.Deps{
		Gateway:   gw,
		Store:     store,
		Notifier:  notices,
		Navigator: nav,
		Logger:    log,
	}, cfg.Session.CacheTTL)

	pipeline := middleware.NewFailurePipeline(middleware.PipelineDeps{
		Notifier:         notices,
		Navigator:        nav,
		Logger:           log,
		OnSessionExpired: session.Reset,
	})

	doer = middleware.Chain(httpClient,
		middleware.RequestID(),
		middleware.Tracing(tracer),
		middleware.Logging(log),
		pipeline.Interceptor(),
		middleware.RefreshOnExpiry(session, log),
		middleware.Credentials(store, cfg.Session.CookieName, log),
		middleware.RateLimit(middleware.NewLimiter(cfg.API.RateLimit, cfg.API.Burst)),
		middleware.StatusCheck(),
	)

	dates := daterange.NewCalculator()
	wizard := usecase.NewImportWizard(usecase.WizardDeps{
		Tokens:        gw,
		Imports:       gw,
		Reports:       gw,
		Achievements:  gw,
		Users:         session,
		Dates:         dates,
		Logger:        log,
		Concurrency:   cfg.Import.Concurrency,
		OnTokenChange: session.Invalidate,
	})

	current = &app{
		store:    store,
		gateway:  gw,
		session:  session,
		wizard:   wizard,
		renderer: render.NewRenderer(),
		dates:    dates,
		notices:  notices,
		tracer:   tracer,
		shutdown: shutdown,
	}
	return current, nil
}

// closeApp flushes telemetry and forgets the graph.
func closeApp(ctx context.Context) {
	a := current
	current = nil
	if a == nil || a.shutdown == nil {
		return
	}
	if err := a.shutdown(ctx); err != nil && log != nil {
		log.Warn("telemetry shutdown failed", "error", err)
	}
}

// requireSession returns the signed-in user. Without a stored session it
// fails with ErrNotAuthenticated before touching the network.
func (a *app) requireSession(ctx context.Context) (*domain.AuthenticatedUser, error) {
	value, err := a.store.Load()
	if err != nil {
		return nil, err
	}
	if value == "" {
		return nil, fmt.Errorf("%w: no stored session", domain.ErrNotAuthenticated)
	}
	return a.session.GetCurrentUser(ctx, false)
}
