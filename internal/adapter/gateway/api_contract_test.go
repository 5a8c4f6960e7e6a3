//go:build contract

// Consumer contract for the brag API. Needs the pact FFI library:
//
//	go test -tags contract ./internal/adapter/gateway/...
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/pact-foundation/pact-go/v2/consumer"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farigab/bragctl/internal/domain"
	"github.com/farigab/bragctl/internal/middleware"
)

func newPact(t *testing.T) *consumer.V4HTTPMockProvider {
	t.Helper()
	p, err := consumer.NewV4Pact(consumer.MockHTTPProviderConfig{
		Consumer: "bragctl",
		Provider: "brag-api",
		PactDir:  filepath.Join("..", "..", "..", "pacts"),
	})
	require.NoError(t, err)
	return p
}

func pactGateway(t *testing.T, config consumer.MockServerConfig) *APIGateway {
	t.Helper()
	base := fmt.Sprintf("http://%s:%d", config.Host, config.Port)
	gw, err := NewAPIGateway(base, middleware.Chain(http.DefaultClient, middleware.StatusCheck()))
	require.NoError(t, err)
	return gw
}

func TestContract_FetchUser(t *testing.T) {
	p := newPact(t)

	err := p.AddInteraction().
		Given("a signed-in user").
		UponReceiving("a request for the current user").
		WithRequest(http.MethodGet, "/user", func(b *consumer.V4RequestBuilder) {
			b.Header("Accept", matchers.S("application/json"))
		}).
		WillRespondWith(http.StatusOK, func(b *consumer.V4ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{
				"id":             matchers.Integer(7),
				"login":          matchers.Like("octocat"),
				"name":           matchers.Like("The Octocat"),
				"hasGitHubToken": matchers.Like(true),
			})
		}).
		ExecuteTest(t, func(config consumer.MockServerConfig) error {
			user, err := pactGateway(t, config).FetchUser(context.Background())
			if err != nil {
				return err
			}
			assert.Equal(t, "octocat", user.Login)
			return nil
		})
	require.NoError(t, err)
}

func TestContract_ListRepositories(t *testing.T) {
	p := newPact(t)

	err := p.AddInteraction().
		Given("a signed-in user with a stored GitHub token").
		UponReceiving("a request for importable repositories").
		WithRequest(http.MethodGet, "/github/repositories").
		WillRespondWith(http.StatusOK, func(b *consumer.V4ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.EachLike("octo/api", 1))
		}).
		ExecuteTest(t, func(config consumer.MockServerConfig) error {
			repos, err := pactGateway(t, config).ListRepositories(context.Background(), "")
			if err != nil {
				return err
			}
			assert.NotEmpty(t, repos)
			return nil
		})
	require.NoError(t, err)
}

func TestContract_GenerateSummary(t *testing.T) {
	p := newPact(t)

	err := p.AddInteraction().
		Given("imported activity for octo/api").
		UponReceiving("a request for an executive summary").
		WithRequest(http.MethodPost, "/reports/ai-summary", func(b *consumer.V4RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{
				"start_date":   matchers.Regex("2024-02-01", `^\d{4}-\d{2}-\d{2}$`),
				"end_date":     matchers.Regex("2024-02-29", `^\d{4}-\d{2}-\d{2}$`),
				"user_prompt":  matchers.Like(""),
				"repositories": matchers.EachLike("octo/api", 1),
				"report_type":  matchers.S("EXECUTIVE"),
			})
		}).
		WillRespondWith(http.StatusOK, func(b *consumer.V4ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{
				"report_text":  matchers.Like("# Highlights"),
				"generated_at": matchers.Regex("2024-03-01T09:00:00Z", `^\d{4}-\d{2}-\d{2}T.*$`),
				"report_type":  matchers.S("EXECUTIVE"),
			})
		}).
		ExecuteTest(t, func(config consumer.MockServerConfig) error {
			report, err := pactGateway(t, config).GenerateSummary(context.Background(), domain.SummaryRequest{
				StartDate:    "2024-02-01",
				EndDate:      "2024-02-29",
				Repositories: []string{"octo/api"},
				ReportType:   domain.ReportExecutive,
			})
			if err != nil {
				return err
			}
			assert.Equal(t, domain.ReportExecutive, report.ReportType)
			return nil
		})
	require.NoError(t, err)
}

func TestContract_ValidationFailure(t *testing.T) {
	p := newPact(t)

	err := p.AddInteraction().
		Given("a signed-in user").
		UponReceiving("an achievement with a missing title").
		WithRequest(http.MethodPost, "/achievements", func(b *consumer.V4RequestBuilder) {
			b.JSONBody(matchers.Map{
				"title":       matchers.S(""),
				"description": matchers.S(""),
				"date":        matchers.S(""),
				"category":    matchers.S(""),
				"impact":      matchers.S(""),
			})
		}).
		WillRespondWith(http.StatusUnprocessableEntity, func(b *consumer.V4ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{
				"message": matchers.Like("Validation failed"),
				"errors":  matchers.Map{"title": matchers.EachLike("is required", 1)},
			})
		}).
		ExecuteTest(t, func(config consumer.MockServerConfig) error {
			_, err := pactGateway(t, config).CreateAchievement(context.Background(), domain.Achievement{})
			var herr *domain.HTTPError
			if assert.ErrorAs(t, err, &herr) {
				assert.Equal(t, http.StatusUnprocessableEntity, herr.Status)
			}
			return nil
		})
	require.NoError(t, err)
}
