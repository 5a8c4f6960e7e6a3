package domain

import (
	"fmt"
	"strings"
	"time"
)

// ReportType selects the flavour of AI summary the API generates.
type ReportType string

const (
	ReportExecutive ReportType = "EXECUTIVE"
	ReportTechnical ReportType = "TECHNICAL"
	ReportTimeline  ReportType = "TIMELINE"
	ReportGitHub    ReportType = "GITHUB"
)

// ReportTypeInfo describes a report type for listings.
type ReportTypeInfo struct {
	Type        ReportType
	Label       string
	Description string
}

var reportTypes = []ReportTypeInfo{
	{ReportExecutive, "Executive", "High-level summary of outcomes and impact"},
	{ReportTechnical, "Technical", "Detailed breakdown of code changes and decisions"},
	{ReportTimeline, "Timeline", "Chronological account of the period's activity"},
	{ReportGitHub, "GitHub", "Summary shaped like a GitHub activity digest"},
}

// ReportTypes returns every supported report type in display order.
func ReportTypes() []ReportTypeInfo {
	out := make([]ReportTypeInfo, len(reportTypes))
	copy(out, reportTypes)
	return out
}

// ParseReportType parses a report type case-insensitively.
func ParseReportType(s string) (ReportType, error) {
	want := ReportType(strings.ToUpper(strings.TrimSpace(s)))
	for _, info := range reportTypes {
		if info.Type == want {
			return want, nil
		}
	}
	return "", fmt.Errorf("%w: unknown report type %q", ErrValidation, s)
}

// SummaryRequest is the body of POST /reports/ai-summary.
type SummaryRequest struct {
	StartDate    string     `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate      string     `json:"end_date" validate:"required,datetime=2006-01-02"`
	UserPrompt   string     `json:"user_prompt"`
	Repositories []string   `json:"repositories" validate:"required,min=1,dive,required"`
	ReportType   ReportType `json:"report_type" validate:"required,oneof=EXECUTIVE TECHNICAL TIMELINE GITHUB"`
}

// SummaryReport is the generated report record.
type SummaryReport struct {
	ReportText  string     `json:"report_text"`
	GeneratedAt time.Time  `json:"generated_at"`
	ReportType  ReportType `json:"report_type"`
}
