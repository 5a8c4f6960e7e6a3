package domain

import "fmt"

// ImportKind names one category of GitHub activity that can be imported.
type ImportKind string

const (
	ImportPullRequests ImportKind = "pull-requests"
	ImportIssues       ImportKind = "issues"
	ImportCommits      ImportKind = "commits"
)

// ImportKinds lists every kind in import order.
func ImportKinds() []ImportKind {
	return []ImportKind{ImportPullRequests, ImportIssues, ImportCommits}
}

// ParseImportKind validates an import kind name.
func ParseImportKind(s string) (ImportKind, error) {
	for _, k := range ImportKinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown import kind %q", ErrValidation, s)
}

// ImportRequest is the body of POST /github/import/{kind}.
type ImportRequest struct {
	Repository string `json:"repository" validate:"required"`
	MinChanges int    `json:"min_changes,omitempty" validate:"gte=0"`
}

// ImportResult reports what an import run stored.
type ImportResult struct {
	Repository string     `json:"repository"`
	Kind       ImportKind `json:"kind"`
	Imported   int        `json:"imported"`
	Skipped    int        `json:"skipped"`
}

// Achievement is a manually recorded accomplishment.
type Achievement struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title" validate:"required,min=3"`
	Description string `json:"description" validate:"required,min=10"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Category    string `json:"category" validate:"required,oneof=feature bugfix performance refactoring documentation mentoring leadership other"`
	Impact      string `json:"impact" validate:"required,oneof=low medium high very-high"`
}

// AchievementCategories lists the accepted achievement categories.
var AchievementCategories = []string{
	"feature", "bugfix", "performance", "refactoring",
	"documentation", "mentoring", "leadership", "other",
}

// ImpactLevels lists the accepted impact levels, lowest first.
var ImpactLevels = []string{"low", "medium", "high", "very-high"}
