package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/farigab/bragctl/internal/domain"
	"github.com/farigab/bragctl/internal/middleware"
)

// APIGateway implements the domain gateway ports against the bragctl API.
type APIGateway struct {
	baseURL     *url.URL
	doer        middleware.Doer
	refreshDoer middleware.Doer
}

// Option configures an APIGateway.
type Option func(*APIGateway)

// WithRefreshDoer routes POST /auth/refresh through its own chain so the
// refresh call never re-enters the refresh and failure interceptors.
func WithRefreshDoer(d middleware.Doer) Option {
	return func(g *APIGateway) { g.refreshDoer = d }
}

// NewAPIGateway creates a gateway rooted at baseURL.
func NewAPIGateway(baseURL string, doer middleware.Doer, opts ...Option) (*APIGateway, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api base url %q must be absolute", baseURL)
	}

	g := &APIGateway{baseURL: u, doer: doer}
	for _, opt := range opts {
		opt(g)
	}
	if g.refreshDoer == nil {
		g.refreshDoer = doer
	}
	return g, nil
}

// FetchUser calls GET /user.
func (g *APIGateway) FetchUser(ctx context.Context) (*domain.AuthenticatedUser, error) {
	var user domain.AuthenticatedUser
	if err := g.call(ctx, g.doer, http.MethodGet, "/user", nil, &user, nil); err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	if user.ID == 0 && user.Login == "" {
		return nil, fmt.Errorf("fetch user: empty identity: %w", domain.ErrNotAuthenticated)
	}
	return &user, nil
}

// Logout calls POST /auth/logout.
func (g *APIGateway) Logout(ctx context.Context) error {
	if err := g.call(ctx, g.doer, http.MethodPost, "/auth/logout", nil, nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// RefreshSession calls POST /auth/refresh.
func (g *APIGateway) RefreshSession(ctx context.Context) error {
	if err := g.call(ctx, g.refreshDoer, http.MethodPost, "/auth/refresh", nil, nil, nil); err != nil {
		return fmt.Errorf("refresh session: %w", err)
	}
	return nil
}

// LoginURL builds the OAuth entry point that redirects back to redirect.
func (g *APIGateway) LoginURL(redirect string) string {
	u := g.endpoint("/auth/github")
	q := u.Query()
	q.Set("redirect", redirect)
	u.RawQuery = q.Encode()
	return u.String()
}

// SaveToken calls POST /auth/github/token.
func (g *APIGateway) SaveToken(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrTokenRequired
	}
	body := struct {
		Token string `json:"token"`
	}{Token: token}
	if err := g.call(ctx, g.doer, http.MethodPost, "/auth/github/token", body, nil, nil); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// ClearToken calls DELETE /auth/github/token.
func (g *APIGateway) ClearToken(ctx context.Context) error {
	if err := g.call(ctx, g.doer, http.MethodDelete, "/auth/github/token", nil, nil, nil); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// ListRepositories calls GET /github/repositories. A non-empty token is sent
// as a bearer credential; otherwise the server uses the stored one.
func (g *APIGateway) ListRepositories(ctx context.Context, token string) ([]string, error) {
	var auth func(*http.Request)
	if token != "" {
		t := &oauth2.Token{AccessToken: token, TokenType: "Bearer"}
		auth = t.SetAuthHeader
	}

	var repos []string
	if err := g.call(ctx, g.doer, http.MethodGet, "/github/repositories", nil, &repos, auth); err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	if repos == nil {
		repos = []string{}
	}
	return repos, nil
}

// Import calls POST /github/import/{kind}.
func (g *APIGateway) Import(ctx context.Context, kind domain.ImportKind, req domain.ImportRequest) (*domain.ImportResult, error) {
	if _, err := domain.ParseImportKind(string(kind)); err != nil {
		return nil, err
	}

	var result domain.ImportResult
	if err := g.call(ctx, g.doer, http.MethodPost, "/github/import/"+string(kind), req, &result, nil); err != nil {
		return nil, fmt.Errorf("import %s from %s: %w", kind, req.Repository, err)
	}
	if result.Repository == "" {
		result.Repository = req.Repository
	}
	if result.Kind == "" {
		result.Kind = kind
	}
	return &result, nil
}

// GenerateSummary calls POST /reports/ai-summary.
func (g *APIGateway) GenerateSummary(ctx context.Context, req domain.SummaryRequest) (*domain.SummaryReport, error) {
	var report domain.SummaryReport
	if err := g.call(ctx, g.doer, http.MethodPost, "/reports/ai-summary", req, &report, nil); err != nil {
		return nil, fmt.Errorf("generate summary: %w", err)
	}
	return &report, nil
}

// CreateAchievement calls POST /achievements.
func (g *APIGateway) CreateAchievement(ctx context.Context, a domain.Achievement) (*domain.Achievement, error) {
	var created domain.Achievement
	if err := g.call(ctx, g.doer, http.MethodPost, "/achievements", a, &created, nil); err != nil {
		return nil, fmt.Errorf("create achievement: %w", err)
	}
	return &created, nil
}

func (g *APIGateway) endpoint(path string) *url.URL {
	u := *g.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	return &u
}

// call sends one JSON request. in and out may be nil; edit may adjust the
// request before it is sent.
func (g *APIGateway) call(ctx context.Context, doer middleware.Doer, method, path string, in, out any, edit func(*http.Request)) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.endpoint(path).String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if edit != nil {
		edit(req)
	}

	resp, err := doer.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
