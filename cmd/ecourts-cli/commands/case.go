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
	caseSelection selectionFlags
	caseType      string
	caseNumber    string
	caseYear      string
	caseOut       string
)

func init() {
	caseSelection.register(caseCmd)
	caseCmd.Flags().StringVar(&caseType, "type", "", "Case type, its code or name.")
	caseCmd.Flags().StringVar(&caseNumber, "number", "", "Case number.")
	caseCmd.Flags().StringVar(&caseYear, "year", "", "Registration year.")
	caseCmd.Flags().StringVar(&caseOut, "out", "", "Directory to save the order documents into.")
	caseCmd.MarkFlagRequired("number")
	caseCmd.MarkFlagRequired("year")
	rootCmd.AddCommand(caseCmd)
}

var caseCmd = &cobra.Command{
	Use:   "case <high-court|district-court> --number N --year YYYY",
	Short: "Looks up the status of a case and its orders.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		variant, err := parsePortal(args[0])
		if err != nil {
			return err
		}
		if variant != ecourts.HighCourtCase && variant != ecourts.DistrictCase {
			return fmt.Errorf("%s is not a case portal", args[0])
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
		sel, err := r.resolve(ctx, caseSelection)
		if err != nil {
			return err
		}

		query := ecourts.CaseQuery{CaseNumber: caseNumber, Year: caseYear}
		if caseType != "" {
			ct, err := r.pick(ctx, ecourts.LevelCaseTypes, sel, caseType)
			if err != nil {
				return err
			}
			query.CaseType = ct.Code
		}

		challenge, err := svc.BeginSearch(ctx, service.SearchRequest{
			Variant:    variant,
			SessionKey: key,
			Selection:  sel,
			Case:       &query,
		})
		if err != nil {
			return describe(err)
		}
		answer, err := solveCaptcha(cmd, challenge)
		if err != nil {
			return err
		}
		result, err := svc.VerifyCase(ctx, variant, challenge.SessionKey, answer)
		if err != nil {
			return describe(err)
		}

		printCase(result.Record)

		if caseOut == "" {
			return nil
		}
		for _, o := range result.Record.Orders {
			if o.AttachmentKey == "" {
				continue
			}
			path, err := saveAttachment(svc, caseOut, o.AttachmentKey)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "order %s: %v\n", o.Number, err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", path)
		}
		return nil
	},
}

func printFields(title string, fields records.Fields) {
	if len(fields) == 0 {
		return
	}
	t := newTable()
	t.SetTitle(title)
	for _, f := range fields {
		t.AppendRow(table.Row{f.Label, f.Value})
	}
	t.Render()
}

func printCase(record records.CaseRecord) {
	printFields("Court", record.CourtInfo)
	printFields("Case details", record.CaseDetails)
	printFields("Case status", record.CaseStatus)

	t := newTable()
	t.SetTitle("Parties")
	t.AppendHeader(table.Row{"Side", "Name", "Advocate"})
	for _, p := range record.Parties.Petitioners {
		t.AppendRow(table.Row{"Petitioner", p.Name, p.Advocate})
	}
	for _, p := range record.Parties.Respondents {
		t.AppendRow(table.Row{"Respondent", p.Name, p.Advocate})
	}
	t.Render()

	if len(record.Acts) > 0 {
		t = newTable()
		t.SetTitle("Acts")
		t.AppendHeader(table.Row{"Act", "Sections"})
		for _, a := range record.Acts {
			t.AppendRow(table.Row{a.Act, a.Sections})
		}
		t.Render()
	}

	printFields("Subordinate court", record.SubordinateCourt)

	if len(record.Hearings) > 0 {
		t = newTable()
		t.SetTitle("Hearings")
		t.AppendHeader(table.Row{"Judge", "Business on date", "Hearing date", "Purpose"})
		for _, h := range record.Hearings {
			t.AppendRow(table.Row{h.Judge, h.BusinessOnDate, h.HearingDate, h.Purpose})
		}
		t.Render()
	}

	if len(record.Orders) > 0 {
		t = newTable()
		t.SetTitle("Orders")
		t.AppendHeader(table.Row{"No.", "Date", "Judge", "Document"})
		for _, o := range record.Orders {
			doc := o.AttachmentKey
			if doc == "" {
				doc = "unavailable"
			}
			t.AppendRow(table.Row{o.Number, o.Date, o.Judge, doc})
		}
		t.Render()
	}
}
