package domain

import "context"

// IdentityGateway reaches the remote identity endpoints.
type IdentityGateway interface {
	FetchUser(ctx context.Context) (*AuthenticatedUser, error)
	Logout(ctx context.Context) error
	RefreshSession(ctx context.Context) error
}

// TokenGateway stores or removes the user's GitHub token on the server.
type TokenGateway interface {
	SaveToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// ImportGateway lists repositories and imports their activity.
type ImportGateway interface {
	ListRepositories(ctx context.Context, token string) ([]string, error)
	Import(ctx context.Context, kind ImportKind, req ImportRequest) (*ImportResult, error)
}

// ReportGateway requests AI-generated summaries.
type ReportGateway interface {
	GenerateSummary(ctx context.Context, req SummaryRequest) (*SummaryReport, error)
}

// AchievementGateway records achievements.
type AchievementGateway interface {
	CreateAchievement(ctx context.Context, a Achievement) (*Achievement, error)
}

// CredentialStore persists the session cookie between runs.
type CredentialStore interface {
	Load() (string, error)
	Save(value string) error
	Clear() error
}

// Notifier shows user-visible notices.
type Notifier interface {
	Info(summary, detail string)
	Warn(summary, detail string)
	Error(summary, detail string)
}

// Navigator knows where the user currently is and can send them to login.
type Navigator interface {
	CurrentRoute() string
	NavigateToLogin()
}

// LoginRoute is the route of the login surface.
const LoginRoute = "/login"
