package commands

import (
	"ecourts-backend/internal/scrapers/ecourts"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(courtsCmd)

	lookupSelection.register(lookupCmd)
	rootCmd.AddCommand(lookupCmd)
}

var courtsCmd = &cobra.Command{
	Use:   "courts <portal>",
	Short: "Prints the High Courts or states a portal starts from.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		variant, err := parsePortal(args[0])
		if err != nil {
			return err
		}
		svc, closeSvc, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeSvc()

		courts, err := svc.Courts(variant)
		if err != nil {
			return describe(err)
		}

		t := newTable()
		if len(courts.Courts) > 0 {
			t.AppendHeader(table.Row{"Court code", "State code", "Name"})
			for _, c := range courts.Courts {
				t.AppendRow(table.Row{c.CourtCode, c.StateCode, c.Name})
			}
		} else {
			t.AppendHeader(table.Row{"Code", "State"})
			for _, s := range courts.States {
				t.AppendRow(table.Row{s.Code, s.Name})
			}
		}
		t.Render()
		return nil
	},
}

var lookupSelection selectionFlags

var lookupCmd = &cobra.Command{
	Use:   "lookup <portal> <level> [--state --district --complex --establishment --court --bench]",
	Short: "Prints the options of one hierarchy level given the levels above it.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		variant, err := parsePortal(args[0])
		if err != nil {
			return err
		}
		level, err := ecourts.ParseLevel(args[1])
		if err != nil {
			return err
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
		sel, err := r.resolve(ctx, lookupSelection)
		if err != nil {
			return err
		}
		options, err := r.lookup(ctx, level, sel)
		if err != nil {
			return describe(err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Code", string(level)})
		for _, o := range options {
			t.AppendRow(table.Row{o.Code, o.Name})
		}
		t.Render()
		return nil
	},
}
