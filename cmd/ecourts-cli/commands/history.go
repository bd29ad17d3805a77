package commands

import (
	"ecourts-backend/internal/components/telemetry"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "How many searches to show.")
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(ocrCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Lists the latest searches and whether they produced a result.",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeSvc, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeSvc()

		entries, err := svc.History(cmd.Context(), historyLimit)
		if err != nil {
			return describe(err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"ID", "Portal", "When", "Query", "Result"})
		for _, e := range entries {
			result := "no"
			if len(e.Result) > 0 {
				result = "yes"
			}
			t.AppendRow(table.Row{e.ID, e.CourtType, e.Timestamp.Format("2006-01-02 15:04:05"), string(e.Params), result})
		}
		t.Render()
		return nil
	},
}

var ocrCmd = &cobra.Command{
	Use:   "ocr <image>",
	Short: "Guesses the text of a captcha image with tesseract.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if tesseractPath == "" {
			return fmt.Errorf("--tesseract is required")
		}
		image, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		guess := guesser(telemetry.SlogAPI{}).GuessText(cmd.Context(), image)
		if guess == "" {
			return fmt.Errorf("no text recognized")
		}
		fmt.Fprintln(cmd.OutOrStdout(), guess)
		return nil
	},
}
