package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/farigab/bragctl/internal/daterange"
	"github.com/farigab/bragctl/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokens struct {
	saved    []string
	cleared  int
	saveErr  error
	clearErr error
}

func (f *fakeTokens) SaveToken(_ context.Context, token string) error {
	f.saved = append(f.saved, token)
	return f.saveErr
}

func (f *fakeTokens) ClearToken(context.Context) error {
	f.cleared++
	return f.clearErr
}

type fakeImports struct {
	repos    []string
	listErr  error
	tokens   []string
	failRepo string

	mu       sync.Mutex
	calls    []string
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeImports) ListRepositories(_ context.Context, token string) ([]string, error) {
	f.tokens = append(f.tokens, token)
	return f.repos, f.listErr
}

func (f *fakeImports) Import(ctx context.Context, kind domain.ImportKind, req domain.ImportRequest) (*domain.ImportResult, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	f.mu.Lock()
	f.calls = append(f.calls, req.Repository+"/"+string(kind))
	f.mu.Unlock()

	if req.Repository == f.failRepo {
		return nil, fmt.Errorf("import %s: boom", req.Repository)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &domain.ImportResult{Repository: req.Repository, Kind: kind, Imported: len(req.Repository)}, nil
}

type fakeReports struct {
	got    domain.SummaryRequest
	calls  int
	report *domain.SummaryReport
	err    error
}

func (f *fakeReports) GenerateSummary(_ context.Context, req domain.SummaryRequest) (*domain.SummaryReport, error) {
	f.calls++
	f.got = req
	return f.report, f.err
}

type fakeAchievements struct {
	got   *domain.Achievement
	calls int
}

func (f *fakeAchievements) CreateAchievement(_ context.Context, a domain.Achievement) (*domain.Achievement, error) {
	f.calls++
	f.got = &a
	out := a
	out.ID = "ach-1"
	return &out, nil
}

type fakeUsers struct{ user *domain.AuthenticatedUser }

func (f fakeUsers) Current() *domain.AuthenticatedUser { return f.user }

type wizardFixture struct {
	wizard       *ImportWizard
	tokens       *fakeTokens
	imports      *fakeImports
	reports      *fakeReports
	achievements *fakeAchievements
}

func newWizardFixture(user *domain.AuthenticatedUser) *wizardFixture {
	f := &wizardFixture{
		tokens:       &fakeTokens{},
		imports:      &fakeImports{repos: []string{"a/one", "b/two", "c/three"}},
		reports:      &fakeReports{report: &domain.SummaryReport{ReportText: "# Done", ReportType: domain.ReportExecutive}},
		achievements: &fakeAchievements{},
	}
	f.wizard = NewImportWizard(WizardDeps{
		Tokens:       f.tokens,
		Imports:      f.imports,
		Reports:      f.reports,
		Achievements: f.achievements,
		Users:        fakeUsers{user: user},
		Concurrency:  2,
	})
	return f
}

func TestImportWizard_InitialState(t *testing.T) {
	s := newWizardFixture(nil).wizard.State()

	assert.Equal(t, StepToken, s.ActiveStep)
	assert.Equal(t, StepToken, s.MaxReachedStep)
	assert.Equal(t, domain.ReportExecutive, s.ReportType)
	assert.False(t, s.HasRepositories())
	assert.False(t, s.HasDateRange())
}

func TestImportWizard_SaveToken(t *testing.T) {
	f := newWizardFixture(nil)
	f.wizard.SetToken("  ghp_abc ")

	require.NoError(t, f.wizard.SaveToken(context.Background()))

	s := f.wizard.State()
	assert.Equal(t, []string{"ghp_abc"}, f.tokens.saved)
	assert.Equal(t, []string{"ghp_abc"}, f.imports.tokens)
	assert.Equal(t, []string{"a/one", "b/two", "c/three"}, s.Repositories)
	assert.Equal(t, StepRepositories, s.ActiveStep)
	assert.False(t, s.Loading.Repos)
}

func TestImportWizard_SaveToken_Required(t *testing.T) {
	f := newWizardFixture(nil)
	err := f.wizard.SaveToken(context.Background())

	assert.ErrorIs(t, err, domain.ErrTokenRequired)
	assert.Empty(t, f.tokens.saved)
}

func TestImportWizard_SaveToken_Failure(t *testing.T) {
	f := newWizardFixture(nil)
	f.tokens.saveErr = errors.New("rejected")
	f.wizard.SetToken("ghp_abc")

	err := f.wizard.SaveToken(context.Background())

	assert.EqualError(t, err, "rejected")
	assert.Empty(t, f.imports.tokens)
	assert.False(t, f.wizard.State().Loading.Repos)
}

func TestImportWizard_SaveToken_NotifiesEvenWhenListingFails(t *testing.T) {
	f := newWizardFixture(nil)
	var changes int
	f.wizard.deps.OnTokenChange = func() { changes++ }
	f.imports.listErr = errors.New("unavailable")
	f.wizard.SetToken("ghp_abc")

	err := f.wizard.SaveToken(context.Background())

	assert.Error(t, err)
	assert.Equal(t, []string{"ghp_abc"}, f.tokens.saved)
	assert.Equal(t, 1, changes)
}

func TestImportWizard_SaveToken_RejectedDoesNotNotify(t *testing.T) {
	f := newWizardFixture(nil)
	var changes int
	f.wizard.deps.OnTokenChange = func() { changes++ }
	f.tokens.saveErr = errors.New("rejected")
	f.wizard.SetToken("ghp_abc")

	require.Error(t, f.wizard.SaveToken(context.Background()))
	assert.Zero(t, changes)
}

func TestImportWizard_LoadRepositories_Failure(t *testing.T) {
	f := newWizardFixture(nil)
	f.imports.listErr = errors.New("unavailable")

	err := f.wizard.LoadRepositories(context.Background())

	assert.Error(t, err)
	s := f.wizard.State()
	assert.Equal(t, StepToken, s.ActiveStep)
	assert.False(t, s.Loading.Repos)
}

func TestImportWizard_ClearToken_ResetsEvenOnFailure(t *testing.T) {
	f := newWizardFixture(nil)
	f.wizard.SetToken("ghp_abc")
	require.NoError(t, f.wizard.LoadRepositories(context.Background()))
	f.wizard.SelectAll()
	require.NoError(t, f.wizard.SelectPreset("thisWeek"))
	f.wizard.SetReportType(domain.ReportTechnical)
	f.tokens.clearErr = errors.New("server down")

	err := f.wizard.ClearToken(context.Background())

	assert.Error(t, err)
	s := f.wizard.State()
	assert.Empty(t, s.Token)
	assert.Empty(t, s.Repositories)
	assert.Empty(t, s.Selected)
	assert.False(t, s.HasDateRange())
	assert.Equal(t, StepToken, s.ActiveStep)
	assert.Equal(t, StepToken, s.MaxReachedStep)
	assert.Equal(t, domain.ReportTechnical, s.ReportType)
	assert.False(t, s.Loading.Repos)
}

func TestImportWizard_CheckForSavedToken(t *testing.T) {
	t.Run("user with stored token", func(t *testing.T) {
		f := newWizardFixture(&domain.AuthenticatedUser{Login: "octo", HasGitHubToken: true})
		attempted, err := f.wizard.CheckForSavedToken(context.Background())

		require.NoError(t, err)
		assert.True(t, attempted)
		assert.Equal(t, StepRepositories, f.wizard.State().ActiveStep)
	})

	t.Run("user without token", func(t *testing.T) {
		f := newWizardFixture(&domain.AuthenticatedUser{Login: "octo"})
		attempted, err := f.wizard.CheckForSavedToken(context.Background())

		require.NoError(t, err)
		assert.False(t, attempted)
		assert.Empty(t, f.imports.tokens)
	})

	t.Run("no user", func(t *testing.T) {
		f := newWizardFixture(nil)
		attempted, err := f.wizard.CheckForSavedToken(context.Background())

		require.NoError(t, err)
		assert.False(t, attempted)
	})
}

func TestImportWizard_Selection(t *testing.T) {
	f := newWizardFixture(nil)
	require.NoError(t, f.wizard.LoadRepositories(context.Background()))

	f.wizard.Toggle("b/two")
	f.wizard.Toggle("a/one")
	assert.Equal(t, []string{"b/two", "a/one"}, f.wizard.State().Selected)

	f.wizard.Toggle("b/two")
	assert.Equal(t, []string{"a/one"}, f.wizard.State().Selected)

	f.wizard.Select("a/one", " ", "x/extra")
	assert.Equal(t, []string{"a/one", "x/extra"}, f.wizard.State().Selected)

	f.wizard.SelectAll()
	assert.Equal(t, []string{"a/one", "b/two", "c/three"}, f.wizard.State().Selected)

	f.wizard.ClearSelection()
	assert.Empty(t, f.wizard.State().Selected)
}

func TestImportWizard_StateIsACopy(t *testing.T) {
	f := newWizardFixture(nil)
	require.NoError(t, f.wizard.LoadRepositories(context.Background()))

	s := f.wizard.State()
	s.Repositories[0] = "mutated"
	assert.Equal(t, "a/one", f.wizard.State().Repositories[0])
}

func TestImportWizard_Steps(t *testing.T) {
	f := newWizardFixture(nil)

	assert.False(t, f.wizard.CanGoTo(StepPeriod))
	assert.False(t, f.wizard.GoToStep(StepPeriod, false))
	assert.Equal(t, StepToken, f.wizard.State().ActiveStep)

	assert.True(t, f.wizard.GoToStep(StepPeriod, true))
	assert.True(t, f.wizard.CanGoTo(StepRepositories))
	assert.True(t, f.wizard.GoToStep(StepToken, false))

	s := f.wizard.State()
	assert.Equal(t, StepToken, s.ActiveStep)
	assert.Equal(t, StepPeriod, s.MaxReachedStep)
}

func TestImportWizard_SelectPreset_Unknown(t *testing.T) {
	f := newWizardFixture(nil)
	assert.ErrorIs(t, f.wizard.SelectPreset("fortnight"), domain.ErrUnknownPreset)
	assert.False(t, f.wizard.State().HasDateRange())
}

func TestImportWizard_BuildSummaryRequest(t *testing.T) {
	f := newWizardFixture(nil)
	require.NoError(t, f.wizard.LoadRepositories(context.Background()))
	require.NoError(t, f.wizard.SelectPreset("lastMonth"))
	f.wizard.SetPrompt("  focus on reliability  ")
	f.wizard.SetReportType(domain.ReportTimeline)

	req, err := f.wizard.BuildSummaryRequest(2000, time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Equal(t, domain.SummaryRequest{
		StartDate:    "2024-02-01",
		EndDate:      "2024-02-29",
		UserPrompt:   "focus on reliability",
		Repositories: []string{"a/one", "b/two", "c/three"},
		ReportType:   domain.ReportTimeline,
	}, req)
}

func TestImportWizard_BuildSummaryRequest_UsesSelection(t *testing.T) {
	f := newWizardFixture(nil)
	require.NoError(t, f.wizard.LoadRepositories(context.Background()))
	require.NoError(t, f.wizard.SelectPreset("today"))
	f.wizard.Toggle("c/three")

	req, err := f.wizard.BuildSummaryRequest(0, time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Equal(t, []string{"c/three"}, req.Repositories)
}

func TestImportWizard_Analyze_Preconditions(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(w *ImportWizard)
		max     int
		wantErr error
	}{
		{
			name: "prompt too long",
			prepare: func(w *ImportWizard) {
				_ = w.SelectPreset("today")
				w.SetPrompt("ééééé")
			},
			max:     4,
			wantErr: domain.ErrPromptTooLong,
		},
		{
			name:    "no preset",
			prepare: func(w *ImportWizard) { w.SetPrompt("hello") },
			max:     100,
			wantErr: domain.ErrNoDateRange,
		},
		{
			name: "no repositories",
			prepare: func(w *ImportWizard) {
				_ = w.SelectPreset("today")
			},
			max:     100,
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWizardFixture(nil)
			tt.prepare(f.wizard)

			report, err := f.wizard.Analyze(context.Background(), tt.max)

			assert.Nil(t, report)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, f.reports.calls)
		})
	}
}

func TestImportWizard_Analyze_PromptAtLimitAccepted(t *testing.T) {
	f := newWizardFixture(nil)
	require.NoError(t, f.wizard.LoadRepositories(context.Background()))
	require.NoError(t, f.wizard.SelectPreset("thisYear"))
	f.wizard.SetPrompt("  abcd  ")

	report, err := f.wizard.Analyze(context.Background(), 4)

	require.NoError(t, err)
	assert.Equal(t, "# Done", report.ReportText)
	assert.Equal(t, "abcd", f.reports.got.UserPrompt)
	assert.Regexp(t, `^\d{4}-\d{2}-01$`, f.reports.got.StartDate)
	assert.LessOrEqual(t, f.reports.got.StartDate, f.reports.got.EndDate)

	s := f.wizard.State()
	assert.Same(t, report, s.Summary)
	assert.False(t, s.Loading.Import)
}

func TestImportWizard_Analyze_Failure(t *testing.T) {
	f := newWizardFixture(nil)
	f.reports.err = errors.New("model unavailable")
	require.NoError(t, f.wizard.LoadRepositories(context.Background()))
	require.NoError(t, f.wizard.SelectPreset("today"))

	_, err := f.wizard.Analyze(context.Background(), 100)

	assert.EqualError(t, err, "model unavailable")
	assert.Nil(t, f.wizard.State().Summary)
	assert.False(t, f.wizard.State().Loading.Import)
}

func TestImportWizard_DisplayName(t *testing.T) {
	assert.Equal(t, "Grace", newWizardFixture(&domain.AuthenticatedUser{Name: "Grace Hopper", Login: "ghopper"}).wizard.DisplayName())
	assert.Equal(t, "ghopper", newWizardFixture(&domain.AuthenticatedUser{Login: "ghopper"}).wizard.DisplayName())
	assert.Empty(t, newWizardFixture(nil).wizard.DisplayName())
}

func TestImportWizard_ImportActivity(t *testing.T) {
	f := newWizardFixture(nil)
	require.NoError(t, f.wizard.LoadRepositories(context.Background()))

	results, err := f.wizard.ImportActivity(context.Background(), nil, 3)

	require.NoError(t, err)
	require.Len(t, results, 9)
	assert.Equal(t, domain.ImportResult{Repository: "a/one", Kind: domain.ImportPullRequests, Imported: 5}, results[0])
	assert.Equal(t, domain.ImportResult{Repository: "c/three", Kind: domain.ImportCommits, Imported: 7}, results[8])
	assert.LessOrEqual(t, f.imports.peak.Load(), int32(2))
	assert.False(t, f.wizard.State().Loading.Import)
}

func TestImportWizard_ImportActivity_SelectedKinds(t *testing.T) {
	f := newWizardFixture(nil)
	f.wizard.Select("b/two")

	results, err := f.wizard.ImportActivity(context.Background(), []domain.ImportKind{domain.ImportIssues}, 0)

	require.NoError(t, err)
	assert.Equal(t, []domain.ImportResult{{Repository: "b/two", Kind: domain.ImportIssues, Imported: 5}}, results)
}

func TestImportWizard_ImportActivity_Failure(t *testing.T) {
	f := newWizardFixture(nil)
	f.imports.failRepo = "b/two"
	require.NoError(t, f.wizard.LoadRepositories(context.Background()))

	results, err := f.wizard.ImportActivity(context.Background(), []domain.ImportKind{domain.ImportCommits}, 0)

	assert.Nil(t, results)
	assert.ErrorContains(t, err, "boom")
}

func TestImportWizard_ImportActivity_Validation(t *testing.T) {
	f := newWizardFixture(nil)

	_, err := f.wizard.ImportActivity(context.Background(), nil, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	f.wizard.Select("a/one")
	_, err = f.wizard.ImportActivity(context.Background(), nil, -1)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, f.imports.calls)
}

func TestImportWizard_CreateAchievement(t *testing.T) {
	f := newWizardFixture(nil)

	created, err := f.wizard.CreateAchievement(context.Background(), domain.Achievement{
		Title:       "  Cut p99 latency ",
		Description: "Reworked the cache layer to halve tail latency",
		Date:        "2024-05-02",
		Category:    "performance",
		Impact:      "very-high",
	})

	require.NoError(t, err)
	assert.Equal(t, "ach-1", created.ID)
	assert.Equal(t, "Cut p99 latency", f.achievements.got.Title)
}

func TestImportWizard_CreateAchievement_Invalid(t *testing.T) {
	f := newWizardFixture(nil)

	_, err := f.wizard.CreateAchievement(context.Background(), domain.Achievement{
		Title:    "ab",
		Date:     "02/05/2024",
		Category: "heroics",
		Impact:   "high",
	})

	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "title: must be at least 3 characters long")
	assert.Contains(t, err.Error(), "description: is required")
	assert.Contains(t, err.Error(), "date: must be a date formatted YYYY-MM-DD")
	assert.Contains(t, err.Error(), "category: must be one of: feature, bugfix")
	assert.Zero(t, f.achievements.calls)
}

func TestImportWizard_DatesOverride(t *testing.T) {
	dates := daterange.NewCalculator()
	w := NewImportWizard(WizardDeps{Dates: dates, Imports: &fakeImports{repos: []string{"a/b"}}})
	require.NoError(t, w.LoadRepositories(context.Background()))
	require.NoError(t, w.SelectPreset("today"))

	_, err := w.BuildSummaryRequest(0, time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, dates.Len())
}
