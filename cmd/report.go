package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/farigab/bragctl/internal/domain"
	"github.com/farigab/bragctl/internal/output"
)

var (
	reportPreset     string
	reportType       string
	reportPrompt     string
	reportPromptFile string
	reportRepos      []string
	reportToken      string
	reportHTML       string
	reportJSON       bool
	reportListTypes  bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate an AI summary of imported activity",
	Long: `Generate an AI summary of the activity imported for a period.

Without --repo the summary covers every repository visible to the stored
GitHub token. The report is printed as Markdown, or written as a sanitised
HTML page with --html.`,
	Example: `  bragctl report --preset lastMonth
  bragctl report --preset thisYear --type TECHNICAL --repo octo/api
  bragctl report --preset lastWeek --prompt-file notes.txt --html week.html
  bragctl report --list-types`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&reportPreset, "preset", "p", "", "reporting period (see 'bragctl presets')")
	reportCmd.Flags().StringVarP(&reportType, "type", "t", "", "report type: EXECUTIVE, TECHNICAL, TIMELINE, GITHUB (default report.default_type)")
	reportCmd.Flags().StringVar(&reportPrompt, "prompt", "", "extra instructions for the summary")
	reportCmd.Flags().StringVar(&reportPromptFile, "prompt-file", "", "read extra instructions from a file ('-' for stdin)")
	reportCmd.Flags().StringSliceVarP(&reportRepos, "repo", "r", nil, "repository to include (owner/name, repeatable)")
	reportCmd.Flags().StringVar(&reportToken, "token", "", "GitHub personal access token used to list repositories")
	reportCmd.Flags().StringVar(&reportHTML, "html", "", "write the report as an HTML page to this file")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "print the report record as JSON")
	reportCmd.Flags().BoolVar(&reportListTypes, "list-types", false, "list report types and exit")
	reportCmd.MarkFlagsMutuallyExclusive("prompt", "prompt-file")
	reportCmd.MarkFlagsMutuallyExclusive("html", "json")
}

func runReport(cmd *cobra.Command, args []string) error {
	if reportListTypes {
		table := output.NewTableWithWriter(cmd.OutOrStdout(), []string{"TYPE", "NAME", "DESCRIPTION"})
		for _, info := range domain.ReportTypes() {
			table.AddRow([]string{string(info.Type), info.Label, info.Description})
		}
		table.Render()
		return nil
	}

	if reportPreset == "" {
		return &output.CLIError{
			Summary:    domain.ErrNoDateRange.Error(),
			Suggestion: "Pass --preset; run 'bragctl presets' to list them",
			ExitCode:   output.ExitUsageError,
			Err:        domain.ErrNoDateRange,
		}
	}

	typeName := reportType
	if typeName == "" {
		typeName = cfg.Report.DefaultType
	}
	rtype, err := domain.ParseReportType(typeName)
	if err != nil {
		return err
	}

	prompt, err := readPrompt(cmd.InOrStdin())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := getApp(ctx)
	if err != nil {
		return err
	}

	w := a.wizard
	if err := w.SelectPreset(reportPreset); err != nil {
		return err
	}
	w.SetReportType(rtype)
	w.SetPrompt(prompt)

	if len(reportRepos) > 0 {
		if _, err := a.requireSession(ctx); err != nil {
			return err
		}
		w.Select(reportRepos...)
	} else if err := loadRepositories(ctx, a, reportToken); err != nil {
		return err
	}

	// Validate locally before the slow call.
	if _, err := w.BuildSummaryRequest(cfg.Report.MaxPromptLength, a.dates.Today()); err != nil {
		return err
	}

	printer.Info("Generating %s report for %s...", strings.ToLower(string(rtype)), reportPreset)
	report, err := w.Analyze(ctx, cfg.Report.MaxPromptLength)
	if err != nil {
		return err
	}

	switch {
	case reportJSON:
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case reportHTML != "":
		if err := writeHTMLReport(a, reportHTML, report); err != nil {
			return err
		}
		printer.Success("Report written to %s", reportHTML)
	default:
		fmt.Fprintln(cmd.OutOrStdout(), report.ReportText)
	}
	printer.PrintHints("report")
	return nil
}

func readPrompt(stdin io.Reader) (string, error) {
	switch reportPromptFile {
	case "":
		return reportPrompt, nil
	case "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read prompt from stdin: %w", err)
		}
		return string(b), nil
	default:
		b, err := os.ReadFile(reportPromptFile)
		if err != nil {
			return "", &output.CLIError{
				Summary:  "cannot read prompt file",
				Detail:   err.Error(),
				ExitCode: output.ExitUsageError,
				Err:      err,
			}
		}
		return string(b), nil
	}
}

func writeHTMLReport(a *app, path string, report *domain.SummaryReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	title := fmt.Sprintf("%s report (%s)", strings.ToLower(string(report.ReportType)), reportPreset)
	if err := a.renderer.Document(f, title, report.ReportText); err != nil {
		f.Close()
		return fmt.Errorf("render report: %w", err)
	}
	return f.Close()
}
