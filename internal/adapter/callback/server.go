// Package callback runs the short-lived local server that receives the
// session cookie at the end of the browser OAuth flow.
package callback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/farigab/bragctl/internal/domain"
)

// Path is the route the API redirects the browser to.
const Path = "/auth-callback"

// ErrTimeout means the browser never reached the callback.
var ErrTimeout = errors.New("timed out waiting for login callback")

// ErrDenied means the API redirected back without a session.
var ErrDenied = errors.New("login was not completed")

// Options configures a Server.
type Options struct {
	Host   string
	Port   int // 0 picks a free port
	Logger *slog.Logger
}

// Server receives one OAuth callback and stores its session credential.
type Server struct {
	store  domain.CredentialStore
	logger *slog.Logger
	host   string
	port   int

	e        *echo.Echo
	listener net.Listener
	once     sync.Once
	done     chan error
}

// New creates a callback server. Call Listen before RedirectURL.
func New(store domain.CredentialStore, opts Options) *Server {
	if opts.Host == "" {
		opts.Host = "127.0.0.1"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Server{
		store:  store,
		logger: opts.Logger,
		host:   opts.Host,
		port:   opts.Port,
		done:   make(chan error, 1),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.DebugContext(c.Request().Context(), "callback request",
				"method", v.Method,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds())
			return nil
		},
	}))
	e.GET(Path, s.handle)
	s.e = e
	return s
}

// Handler exposes the routes for in-process testing.
func (s *Server) Handler() http.Handler { return s.e }

// Listen binds the local port.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", net.JoinHostPort(s.host, strconv.Itoa(s.port)))
	if err != nil {
		return fmt.Errorf("listen for login callback: %w", err)
	}
	s.listener = ln
	s.port = ln.Addr().(*net.TCPAddr).Port
	s.e.Listener = ln
	return nil
}

// RedirectURL is where the API should send the browser back to.
func (s *Server) RedirectURL() string {
	return "http://" + net.JoinHostPort(s.host, strconv.Itoa(s.port)) + Path
}

// Wait serves until one callback arrives, ctx ends, or timeout elapses,
// then shuts the server down.
func (s *Server) Wait(ctx context.Context, timeout time.Duration) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	var result error

	g.Go(func() error {
		if err := s.e.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve login callback: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		timer := time.NewTimer(timeout)
		defer timer.Stop()

		select {
		case result = <-s.done:
		case <-timer.C:
			result = ErrTimeout
		case <-gctx.Done():
			result = gctx.Err()
		}

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return s.e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return result
}

func (s *Server) finish(err error) {
	s.once.Do(func() { s.done <- err })
}

func (s *Server) handle(c echo.Context) error {
	session := c.QueryParam("session")
	if session == "" {
		reason := c.QueryParam("error")
		if reason == "" {
			reason = "missing session"
		}
		s.finish(fmt.Errorf("%w: %s", ErrDenied, reason))
		return c.HTML(http.StatusBadRequest, page("Login failed", "You can close this window and run bragctl login again."))
	}

	if err := s.store.Save(session); err != nil {
		s.logger.ErrorContext(c.Request().Context(), "failed to store session", "error", err)
		s.finish(fmt.Errorf("store session: %w", err))
		return c.HTML(http.StatusInternalServerError, page("Login failed", "The session could not be saved."))
	}

	s.finish(nil)
	return c.HTML(http.StatusOK, page("Login complete", "You can close this window and return to the terminal."))
}

func page(title, body string) string {
	return "<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>" + title +
		"</title></head><body><h1>" + title + "</h1><p>" + body + "</p></body></html>"
}
