package commands

import (
	"ecourts-backend/internal/scrapers/ecourts"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPickOption(t *testing.T) {
	cases := []struct {
		query string
		code  string
		fails bool
	}{
		{query: "4", code: "4"},
		{query: "Maharashtra", code: "1"},
		{query: "  maharashtra ", code: "1"},
		{query: "Atlantis", fails: true},
		{query: "", fails: true},
	}

	for _, c := range cases {
		t.Run(c.query, func(t *testing.T) {
			o, err := pickOption("state", c.query, ecourts.States)
			if c.fails {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, c.code, o.Code)
		})
	}
}

func TestPickCourt(t *testing.T) {
	court, err := pickCourt("13", ecourts.CaseCourts)
	require.NoError(t, err)
	require.Equal(t, "Kerala High Court", court.Name)

	court, err = pickCourt("kerala", ecourts.CaseCourts)
	require.NoError(t, err)
	require.Equal(t, "13", court.CourtCode)

	_, err = pickCourt("Narnia", ecourts.CaseCourts)
	require.Error(t, err)
}

func TestParsePortal(t *testing.T) {
	variant, err := parsePortal("district-causelist")
	require.NoError(t, err)
	require.Equal(t, ecourts.DistrictCauseList, variant)

	_, err = parsePortal("supreme-court")
	require.ErrorContains(t, err, "high-court")
}
