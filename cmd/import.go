package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/farigab/bragctl/internal/domain"
	"github.com/farigab/bragctl/internal/output"
)

var (
	importRepos      []string
	importKinds      []string
	importAll        bool
	importMinChanges int
	importToken      string
	importJSON       bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import GitHub activity into the API",
	Long: `Import pull requests, issues and commits from GitHub repositories.

Pick repositories with --repo (repeatable) or --all for every repository the
token can see. --kind limits the import to some activity kinds.`,
	Example: `  bragctl import --repo octo/api --repo octo/web
  bragctl import --all --kind pull-requests --min-changes 10`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringSliceVarP(&importRepos, "repo", "r", nil, "repository to import (owner/name, repeatable)")
	importCmd.Flags().StringSliceVarP(&importKinds, "kind", "k", nil, "activity kind: pull-requests, issues, commits (default all)")
	importCmd.Flags().BoolVar(&importAll, "all", false, "import every repository visible to the token")
	importCmd.Flags().IntVar(&importMinChanges, "min-changes", 0, "skip commits and pull requests with fewer changed lines")
	importCmd.Flags().StringVar(&importToken, "token", "", "GitHub personal access token used to list repositories")
	importCmd.Flags().BoolVar(&importJSON, "json", false, "print results as JSON")
}

func runImport(cmd *cobra.Command, args []string) error {
	if !importAll && len(importRepos) == 0 {
		return &output.CLIError{
			Summary:    "no repositories selected",
			Suggestion: "Pass --repo <owner/name> or --all",
			ExitCode:   output.ExitUsageError,
		}
	}

	kinds := make([]domain.ImportKind, 0, len(importKinds))
	for _, k := range importKinds {
		kind, err := domain.ParseImportKind(k)
		if err != nil {
			return err
		}
		kinds = append(kinds, kind)
	}

	ctx := cmd.Context()
	a, err := getApp(ctx)
	if err != nil {
		return err
	}

	if importAll {
		if err := loadRepositories(ctx, a, importToken); err != nil {
			return err
		}
		a.wizard.SelectAll()
	} else {
		if _, err := a.requireSession(ctx); err != nil {
			return err
		}
		a.wizard.Select(importRepos...)
	}

	printer.Info("Importing activity from %d repositories...", len(a.wizard.State().Selected))
	results, err := a.wizard.ImportActivity(ctx, kinds, importMinChanges)
	if err != nil {
		return err
	}

	if importJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	table := output.NewTableWithWriter(cmd.OutOrStdout(), []string{"REPOSITORY", "KIND", "IMPORTED", "SKIPPED", ""})
	var imported int
	for _, r := range results {
		status := "imported"
		if r.Imported == 0 {
			status = "skipped"
		}
		table.AddRow([]string{r.Repository, string(r.Kind), fmt.Sprint(r.Imported), printer.Dim(fmt.Sprint(r.Skipped)), printer.StatusBadge(status)})
		imported += r.Imported
	}
	table.Render()
	printer.Success("Imported %d items", imported)
	printer.PrintHints("import")
	return nil
}
