package cmd

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/farigab/bragctl/internal/daterange"
	"github.com/farigab/bragctl/internal/domain"
	"github.com/farigab/bragctl/internal/output"
)

var (
	presetsRef  string
	presetsJSON bool
)

type presetRow struct {
	Preset    daterange.Preset `json:"preset"`
	StartDate string           `json:"start_date"`
	EndDate   string           `json:"end_date"`
	Days      int              `json:"days"`
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List reporting periods and their date ranges",
	Example: `  bragctl presets
  bragctl presets --ref 2024-03-15`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var ref time.Time
		if presetsRef != "" {
			t, err := time.ParseInLocation(daterange.DateFormat, presetsRef, time.Local)
			if err != nil {
				return &output.CLIError{
					Summary:  "invalid --ref date",
					Detail:   err.Error(),
					ExitCode: output.ExitUsageError,
					Err:      domain.ErrValidation,
				}
			}
			ref = t
		}

		a, err := getApp(cmd.Context())
		if err != nil {
			return err
		}

		rows := make([]presetRow, 0, len(daterange.Presets()))
		for _, p := range daterange.Presets() {
			r, err := a.dates.Range(p, ref)
			if err != nil {
				return err
			}
			rows = append(rows, presetRow{Preset: p, StartDate: r.StartDate(), EndDate: r.EndDate(), Days: r.Days()})
		}

		if presetsJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		}

		table := output.NewTableWithWriter(cmd.OutOrStdout(), []string{"PRESET", "START", "END", "DAYS"})
		for _, row := range rows {
			table.AddRow([]string{string(row.Preset), row.StartDate, row.EndDate, strconv.Itoa(row.Days)})
		}
		table.Render()
		printer.PrintHints("presets")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(presetsCmd)
	presetsCmd.Flags().StringVar(&presetsRef, "ref", "", "reference date (YYYY-MM-DD, default today)")
	presetsCmd.Flags().BoolVar(&presetsJSON, "json", false, "print presets as JSON")
}
