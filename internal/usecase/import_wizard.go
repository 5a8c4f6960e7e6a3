// Package usecase holds the application workflows built on the domain ports.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/farigab/bragctl/internal/daterange"
	"github.com/farigab/bragctl/internal/domain"
)

// Wizard steps.
const (
	StepToken = iota + 1
	StepRepositories
	StepPeriod
	StepReport
)

// DefaultImportConcurrency bounds parallel import calls.
const DefaultImportConcurrency = 4

// UserSource exposes the signed-in user, if known.
type UserSource interface {
	Current() *domain.AuthenticatedUser
}

// Loading flags long-running wizard actions.
type Loading struct {
	Repos  bool
	Import bool
}

// WizardState is a point-in-time copy of the wizard.
type WizardState struct {
	Token          string
	Repositories   []string
	Selected       []string
	Preset         daterange.Preset
	Prompt         string
	ReportType     domain.ReportType
	ActiveStep     int
	MaxReachedStep int
	Loading        Loading
	Summary        *domain.SummaryReport
}

// HasRepositories reports whether any repository was loaded.
func (s WizardState) HasRepositories() bool { return len(s.Repositories) > 0 }

// HasDateRange reports whether a preset was chosen.
func (s WizardState) HasDateRange() bool { return s.Preset != "" }

// PromptLength counts the prompt's characters.
func (s WizardState) PromptLength() int { return utf8.RuneCountInString(s.Prompt) }

// WizardDeps are the collaborators of an ImportWizard.
type WizardDeps struct {
	Tokens       domain.TokenGateway
	Imports      domain.ImportGateway
	Reports      domain.ReportGateway
	Achievements domain.AchievementGateway
	Users        UserSource
	Dates        *daterange.Calculator
	Validator    *RequestValidator
	Logger       *slog.Logger
	// Concurrency bounds ImportActivity fan-out. Zero means DefaultImportConcurrency.
	Concurrency int
	// OnTokenChange runs after the server accepted a token save or clear.
	OnTokenChange func()
}

// ImportWizard drives the token -> repositories -> period -> report flow.
// All state is replaced wholesale under one mutex.
type ImportWizard struct {
	deps WizardDeps

	mu    sync.Mutex
	state WizardState
}

// NewImportWizard creates a wizard at step one.
func NewImportWizard(d WizardDeps) *ImportWizard {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Dates == nil {
		d.Dates = daterange.NewCalculator()
	}
	if d.Validator == nil {
		d.Validator = NewRequestValidator()
	}
	if d.Concurrency <= 0 {
		d.Concurrency = DefaultImportConcurrency
	}
	return &ImportWizard{deps: d, state: initialState()}
}

func initialState() WizardState {
	return WizardState{
		ReportType:     domain.ReportExecutive,
		ActiveStep:     StepToken,
		MaxReachedStep: StepToken,
	}
}

// State returns a copy of the current state.
func (w *ImportWizard) State() WizardState {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.state
	s.Repositories = slices.Clone(s.Repositories)
	s.Selected = slices.Clone(s.Selected)
	return s
}

func (w *ImportWizard) update(fn func(s *WizardState)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(&w.state)
}

func (w *ImportWizard) setLoading(repos, imports *bool) {
	w.update(func(s *WizardState) {
		if repos != nil {
			s.Loading.Repos = *repos
		}
		if imports != nil {
			s.Loading.Import = *imports
		}
	})
}

func ptr(b bool) *bool { return &b }

// SetToken records the personal access token to use.
func (w *ImportWizard) SetToken(token string) {
	w.update(func(s *WizardState) { s.Token = strings.TrimSpace(token) })
}

// SaveToken stores the token on the server, then loads repositories.
func (w *ImportWizard) SaveToken(ctx context.Context) error {
	token := w.State().Token
	if token == "" {
		return domain.ErrTokenRequired
	}

	w.setLoading(ptr(true), nil)
	if err := w.deps.Tokens.SaveToken(ctx, token); err != nil {
		w.setLoading(ptr(false), nil)
		return err
	}
	w.tokenChanged()
	return w.LoadRepositories(ctx)
}

// LoadRepositories fetches the repository list and advances to step two.
func (w *ImportWizard) LoadRepositories(ctx context.Context) error {
	w.setLoading(ptr(true), nil)
	defer w.setLoading(ptr(false), nil)

	repos, err := w.deps.Imports.ListRepositories(ctx, w.State().Token)
	if err != nil {
		return err
	}
	if repos == nil {
		repos = []string{}
	}

	w.update(func(s *WizardState) { s.Repositories = repos })
	w.GoToStep(StepRepositories, true)
	w.deps.Logger.DebugContext(ctx, "repositories loaded", "count", len(repos))
	return nil
}

// ClearToken removes the token on the server. The wizard resets either way.
func (w *ImportWizard) ClearToken(ctx context.Context) error {
	w.setLoading(ptr(true), nil)
	err := w.deps.Tokens.ClearToken(ctx)
	w.update(func(s *WizardState) {
		reset := initialState()
		reset.ReportType = s.ReportType
		reset.Summary = s.Summary
		*s = reset
	})
	if err == nil {
		w.tokenChanged()
	}
	return err
}

func (w *ImportWizard) tokenChanged() {
	if w.deps.OnTokenChange != nil {
		w.deps.OnTokenChange()
	}
}

// CheckForSavedToken loads repositories when the signed-in user already has
// a token stored server-side. It reports whether a load was attempted.
func (w *ImportWizard) CheckForSavedToken(ctx context.Context) (bool, error) {
	if w.deps.Users == nil {
		return false, nil
	}
	user := w.deps.Users.Current()
	if user == nil || !user.HasGitHubToken {
		return false, nil
	}
	return true, w.LoadRepositories(ctx)
}

// SelectAll selects every loaded repository.
func (w *ImportWizard) SelectAll() {
	w.update(func(s *WizardState) { s.Selected = slices.Clone(s.Repositories) })
}

// ClearSelection empties the selection.
func (w *ImportWizard) ClearSelection() {
	w.update(func(s *WizardState) { s.Selected = nil })
}

// Toggle flips repo in or out of the selection.
func (w *ImportWizard) Toggle(repo string) {
	w.update(func(s *WizardState) {
		if i := slices.Index(s.Selected, repo); i >= 0 {
			s.Selected = slices.Delete(slices.Clone(s.Selected), i, i+1)
			return
		}
		s.Selected = append(slices.Clone(s.Selected), repo)
	})
}

// Select adds repos to the selection, ignoring duplicates and blanks.
func (w *ImportWizard) Select(repos ...string) {
	w.update(func(s *WizardState) {
		next := slices.Clone(s.Selected)
		for _, r := range repos {
			r = strings.TrimSpace(r)
			if r != "" && !slices.Contains(next, r) {
				next = append(next, r)
			}
		}
		s.Selected = next
	})
}

// SelectPreset chooses the reporting period.
func (w *ImportWizard) SelectPreset(name string) error {
	p, err := daterange.ParsePreset(name)
	if err != nil {
		return err
	}
	w.update(func(s *WizardState) { s.Preset = p })
	return nil
}

// SetPrompt records the free-text instructions for the report.
func (w *ImportWizard) SetPrompt(prompt string) {
	w.update(func(s *WizardState) { s.Prompt = prompt })
}

// SetReportType chooses the report flavour.
func (w *ImportWizard) SetReportType(t domain.ReportType) {
	w.update(func(s *WizardState) { s.ReportType = t })
}

// targets is the selection, or every repository when nothing is selected.
func (s WizardState) targets() []string {
	if len(s.Selected) > 0 {
		return s.Selected
	}
	return s.Repositories
}

// BuildSummaryRequest assembles and validates the report request.
func (w *ImportWizard) BuildSummaryRequest(maxPromptLength int, ref time.Time) (domain.SummaryRequest, error) {
	s := w.State()

	prompt := strings.TrimSpace(s.Prompt)
	if maxPromptLength > 0 && utf8.RuneCountInString(prompt) > maxPromptLength {
		return domain.SummaryRequest{}, fmt.Errorf("%w of %d characters", domain.ErrPromptTooLong, maxPromptLength)
	}
	if s.Preset == "" {
		return domain.SummaryRequest{}, domain.ErrNoDateRange
	}

	r, err := w.deps.Dates.Range(s.Preset, ref)
	if err != nil {
		return domain.SummaryRequest{}, err
	}

	req := domain.SummaryRequest{
		StartDate:    r.StartDate(),
		EndDate:      r.EndDate(),
		UserPrompt:   prompt,
		Repositories: slices.Clone(s.targets()),
		ReportType:   s.ReportType,
	}
	if err := w.deps.Validator.Validate(req); err != nil {
		return domain.SummaryRequest{}, err
	}
	return req, nil
}

// Analyze requests an AI summary for the chosen period and repositories.
func (w *ImportWizard) Analyze(ctx context.Context, maxPromptLength int) (*domain.SummaryReport, error) {
	req, err := w.BuildSummaryRequest(maxPromptLength, time.Time{})
	if err != nil {
		return nil, err
	}

	w.setLoading(nil, ptr(true))
	defer w.setLoading(nil, ptr(false))

	w.deps.Logger.InfoContext(ctx, "requesting summary",
		"report_type", req.ReportType,
		"start_date", req.StartDate,
		"end_date", req.EndDate,
		"repositories", len(req.Repositories))

	report, err := w.deps.Reports.GenerateSummary(ctx, req)
	if err != nil {
		return nil, err
	}
	w.update(func(s *WizardState) { s.Summary = report })
	return report, nil
}

// GoToStep moves to step if it has been reached before, or unconditionally
// when force is set.
func (w *ImportWizard) GoToStep(step int, force bool) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !force && step > w.state.MaxReachedStep {
		return false
	}
	w.state.ActiveStep = step
	w.state.MaxReachedStep = max(w.state.MaxReachedStep, step)
	return true
}

// CanGoTo reports whether step has been reached.
func (w *ImportWizard) CanGoTo(step int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return step <= w.state.MaxReachedStep
}

// DisplayName is the signed-in user's first name, else the login.
func (w *ImportWizard) DisplayName() string {
	if w.deps.Users == nil {
		return ""
	}
	return w.deps.Users.Current().DisplayName()
}

// ImportActivity imports each kind for every target repository, at most
// Concurrency calls at a time. Results keep repository then kind order; the
// first failure cancels the rest.
func (w *ImportWizard) ImportActivity(ctx context.Context, kinds []domain.ImportKind, minChanges int) ([]domain.ImportResult, error) {
	repos := w.State().targets()
	if len(repos) == 0 {
		return nil, fmt.Errorf("%w: no repositories to import", domain.ErrValidation)
	}
	if len(kinds) == 0 {
		kinds = domain.ImportKinds()
	}

	reqs := make([]domain.ImportRequest, len(repos))
	for i, repo := range repos {
		reqs[i] = domain.ImportRequest{Repository: repo, MinChanges: minChanges}
		if err := w.deps.Validator.Validate(reqs[i]); err != nil {
			return nil, err
		}
	}

	w.setLoading(nil, ptr(true))
	defer w.setLoading(nil, ptr(false))

	results := make([]domain.ImportResult, len(repos)*len(kinds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.deps.Concurrency)

	for i, req := range reqs {
		for j, kind := range kinds {
			slot := i*len(kinds) + j
			g.Go(func() error {
				res, err := w.deps.Imports.Import(gctx, kind, req)
				if err != nil {
					return err
				}
				results[slot] = *res
				w.deps.Logger.DebugContext(gctx, "import finished",
					"repository", req.Repository, "kind", kind, "imported", res.Imported)
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// CreateAchievement validates and records a manual achievement.
func (w *ImportWizard) CreateAchievement(ctx context.Context, a domain.Achievement) (*domain.Achievement, error) {
	a.Title = strings.TrimSpace(a.Title)
	a.Description = strings.TrimSpace(a.Description)
	if err := w.deps.Validator.Validate(a); err != nil {
		return nil, err
	}
	return w.deps.Achievements.CreateAchievement(ctx, a)
}
