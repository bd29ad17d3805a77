package commands

import (
	"context"
	"ecourts-backend/internal/records"
	"ecourts-backend/internal/scrapers/ecourts"
	"ecourts-backend/internal/service"
	"ecourts-backend/pkg/textutil"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

const minLabelSimilarity = 0.85

// selectionFlags are the hierarchy flags shared by every command. Each takes
// either the portal's code or a label that is matched fuzzily.
type selectionFlags struct {
	state         string
	district      string
	complex       string
	establishment string
	court         string
	bench         string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.state, "state", "", "State (district portals).")
	cmd.Flags().StringVar(&f.district, "district", "", "District (district portals).")
	cmd.Flags().StringVar(&f.complex, "complex", "", "Court complex (district portals).")
	cmd.Flags().StringVar(&f.establishment, "establishment", "", "Court establishment (district portals).")
	cmd.Flags().StringVar(&f.court, "court", "", "High Court (High Court portals).")
	cmd.Flags().StringVar(&f.bench, "bench", "", "High Court bench (cause lists).")
}

func pickOption(what, query string, options []records.Option) (records.Option, error) {
	query = strings.TrimSpace(query)
	for _, o := range options {
		if o.Code == query {
			return o, nil
		}
	}
	o, ok := textutil.ResolveLabel(query, options, minLabelSimilarity)
	if !ok {
		return records.Option{}, fmt.Errorf("no %s matches %q", what, query)
	}
	return o, nil
}

func pickCourt(query string, courts []ecourts.Court) (ecourts.Court, error) {
	query = strings.TrimSpace(query)
	for _, c := range courts {
		if c.CourtCode == query {
			return c, nil
		}
	}
	c, ok := textutil.ResolveLabel(query, courts, minLabelSimilarity)
	if !ok {
		return ecourts.Court{}, fmt.Errorf("no High Court matches %q", query)
	}
	return c, nil
}

// resolver walks the hierarchy of one portal session, resolving each flag
// against the options of its level.
type resolver struct {
	svc     service.Service
	variant ecourts.Variant
	key     string
}

func (r resolver) lookup(ctx context.Context, level ecourts.Level, sel ecourts.Selection) ([]records.Option, error) {
	return r.svc.Lookup(ctx, r.variant, r.key, level, sel)
}

func (r resolver) pick(ctx context.Context, level ecourts.Level, sel ecourts.Selection, query string) (records.Option, error) {
	options, err := r.lookup(ctx, level, sel)
	if err != nil {
		return records.Option{}, fmt.Errorf("%s: %w", level, describe(err))
	}
	return pickOption(string(level), query, options)
}

// resolve turns the flags into a selection, stopping at the first unset one.
func (r resolver) resolve(ctx context.Context, f selectionFlags) (ecourts.Selection, error) {
	var sel ecourts.Selection

	switch r.variant {
	case ecourts.HighCourtCase, ecourts.HighCourtCauseList:
		if f.court == "" {
			return sel, nil
		}
		courts, err := r.svc.Courts(r.variant)
		if err != nil {
			return sel, err
		}
		court, err := pickCourt(f.court, courts.Courts)
		if err != nil {
			return sel, err
		}
		sel.State = court.StateCode
		sel.Court = court.CourtCode
		if f.bench == "" || r.variant != ecourts.HighCourtCauseList {
			return sel, nil
		}
		bench, err := r.pick(ctx, ecourts.LevelBenches, sel, f.bench)
		if err != nil {
			return sel, err
		}
		sel.Bench = bench.Code
		return sel, nil
	}

	if f.state == "" {
		return sel, nil
	}
	state, err := pickOption("state", f.state, ecourts.States)
	if err != nil {
		return sel, err
	}
	sel.State = state.Code

	if f.district == "" {
		return sel, nil
	}
	district, err := r.pick(ctx, ecourts.LevelDistricts, sel, f.district)
	if err != nil {
		return sel, err
	}
	sel.District = district.Code

	if f.complex == "" {
		return sel, nil
	}
	cplx, err := r.pick(ctx, ecourts.LevelComplexes, sel, f.complex)
	if err != nil {
		return sel, err
	}
	sel.Complex = ecourts.ParseComplexSelector(cplx.Code)

	if f.establishment == "" || sel.Complex.Bypass {
		return sel, nil
	}
	est, err := r.pick(ctx, ecourts.LevelEstablishments, sel, f.establishment)
	if err != nil {
		return sel, err
	}
	sel.Establishment = est.Code
	return sel, nil
}
