package cmd

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/farigab/bragctl/internal/daterange"
	"github.com/farigab/bragctl/internal/domain"
)

var (
	achTitle       string
	achDescription string
	achDate        string
	achCategory    string
	achImpact      string
	achJSON        bool
)

var achievementCmd = &cobra.Command{
	Use:     "achievement",
	Aliases: []string{"ach"},
	Short:   "Record achievements",
}

var achievementCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Record a manual achievement",
	Long: `Record an achievement that GitHub activity does not capture.

Categories: ` + strings.Join(domain.AchievementCategories, ", ") + `
Impact:     ` + strings.Join(domain.ImpactLevels, ", "),
	Example: `  bragctl achievement create --title "Led incident review" \
    --description "Ran the postmortem for the March outage" \
    --category leadership --impact high`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := getApp(ctx)
		if err != nil {
			return err
		}

		date := achDate
		if date == "" {
			date = daterange.Format(a.dates.Today())
		}
		in := domain.Achievement{
			Title:       achTitle,
			Description: achDescription,
			Date:        date,
			Category:    strings.ToLower(achCategory),
			Impact:      strings.ToLower(achImpact),
		}

		if _, err := a.requireSession(ctx); err != nil {
			return err
		}
		created, err := a.wizard.CreateAchievement(ctx, in)
		if err != nil {
			return err
		}

		if achJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(created)
		}
		printer.Success("Achievement %q recorded", created.Title)
		printer.PrintHints("achievement create")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(achievementCmd)
	achievementCmd.AddCommand(achievementCreateCmd)
	achievementCreateCmd.Flags().StringVar(&achTitle, "title", "", "short title (at least 3 characters)")
	achievementCreateCmd.Flags().StringVar(&achDescription, "description", "", "what was achieved (at least 10 characters)")
	achievementCreateCmd.Flags().StringVar(&achDate, "date", "", "date of the achievement (YYYY-MM-DD, default today)")
	achievementCreateCmd.Flags().StringVar(&achCategory, "category", "feature", "achievement category")
	achievementCreateCmd.Flags().StringVar(&achImpact, "impact", "medium", "impact level")
	achievementCreateCmd.Flags().BoolVar(&achJSON, "json", false, "print the created achievement as JSON")
}
