package commands

import (
	"ecourts-backend/internal/records"
	"ecourts-backend/internal/scrapers/ecourts"
	"ecourts-backend/internal/service"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	causeListSelection  selectionFlags
	causeListDate       string
	causeListTerm       string
	causeListSearchType string
	causeListJudge      string
	causeListKind       string
	causeListOut        string
)

func init() {
	causeListSelection.register(causeListCmd)
	causeListCmd.Flags().StringVar(&causeListDate, "date", "", "Date of the cause list (dd-mm-yyyy).")
	causeListCmd.Flags().StringVar(&causeListTerm, "term", "", "Party name or case number to search for.")
	causeListCmd.Flags().StringVar(&causeListSearchType, "search-type", string(records.SearchPartyName), "party_name or case_number.")
	causeListCmd.Flags().StringVar(&causeListJudge, "judge", "", "Court room or judge (district portals).")
	causeListCmd.Flags().StringVar(&causeListKind, "kind", "civ", "civ or cri (district portals).")
	causeListCmd.Flags().StringVar(&causeListOut, "out", "", "Directory to save the matching cause-list documents into.")
	causeListCmd.MarkFlagRequired("date")
	causeListCmd.MarkFlagRequired("term")
	rootCmd.AddCommand(causeListCmd)
}

var causeListCmd = &cobra.Command{
	Use:   "causelist <causelist|district-causelist> --date DD-MM-YYYY --term TERM",
	Short: "Searches one day's cause list for a party or case number.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		variant, err := parsePortal(args[0])
		if err != nil {
			return err
		}
		if variant != ecourts.HighCourtCauseList && variant != ecourts.DistrictCauseList {
			return fmt.Errorf("%s is not a cause list portal", args[0])
		}

		ctx := cmd.Context()
		svc, closeSvc, err := openService(ctx)
		if err != nil {
			return err
		}
		defer closeSvc()

		key, err := svc.OpenSession(ctx, variant)
		if err != nil {
			return fmt.Errorf("open session: %w", describe(err))
		}
		r := resolver{svc: svc, variant: variant, key: key}
		sel, err := r.resolve(ctx, causeListSelection)
		if err != nil {
			return err
		}

		search := service.CauseListSearch{
			CauseListQuery: ecourts.CauseListQuery{Date: causeListDate},
			Term:           causeListTerm,
			SearchType:     records.SearchType(causeListSearchType),
		}
		if variant == ecourts.DistrictCauseList {
			search.Kind = causeListKind
			if causeListJudge != "" {
				judge, err := r.pick(ctx, ecourts.LevelJudges, sel, causeListJudge)
				if err != nil {
					return err
				}
				search.CourtNo = judge.Code
				search.CourtName = judge.Name
			}
		}

		challenge, err := svc.BeginSearch(ctx, service.SearchRequest{
			Variant:    variant,
			SessionKey: key,
			Selection:  sel,
			CauseList:  &search,
		})
		if err != nil {
			return describe(err)
		}
		answer, err := solveCaptcha(cmd, challenge)
		if err != nil {
			return err
		}
		result, err := svc.VerifyCauseList(ctx, variant, challenge.SessionKey, answer)
		if err != nil {
			return describe(err)
		}

		out := cmd.OutOrStdout()
		if result.Message != "" {
			fmt.Fprintln(out, result.Message)
			return nil
		}

		if variant == ecourts.DistrictCauseList {
			t := newTable()
			t.SetTitle(fmt.Sprintf("%d of %d rows match %q", len(result.Matches), result.TotalRows, result.SearchTerm))
			t.AppendHeader(table.Row{"Sr.", "Case", "Matched"})
			for _, m := range result.Matches {
				t.AppendRow(table.Row{m.SerialNo, m.CaseDetails, m.MatchedTerm})
			}
			t.Render()
			return nil
		}

		t := newTable()
		t.SetTitle(fmt.Sprintf("%d matches in %d of %d scanned lists", result.TotalMatches, result.PdfsWithMatches, result.Scanned))
		t.AppendHeader(table.Row{"Sr.", "Bench", "Line", "Entry"})
		for _, pdf := range result.MatchingPdfs {
			for _, m := range pdf.Matches {
				t.AppendRow(table.Row{pdf.SerialNo, pdf.Bench, m.LineNumber, m.FullCaseEntry})
			}
		}
		t.Render()

		if causeListOut == "" {
			return nil
		}
		for _, pdf := range result.MatchingPdfs {
			path, err := saveAttachment(svc, causeListOut, pdf.PdfID)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "cause list %s: %v\n", pdf.SerialNo, err)
				continue
			}
			fmt.Fprintf(out, "saved %s\n", path)
		}
		return nil
	},
}
