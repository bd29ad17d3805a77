package parser

import (
	"context"
	"ecourts-backend/internal/components/telemetry"
	"ecourts-backend/internal/records"
	_ "embed"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/district_history.html
var districtHistory string

//go:embed testdata/district_search_result.html
var districtSearchResult string

//go:embed testdata/hc_history.html
var hcHistory string

//go:embed testdata/district_causelist.html
var districtCauseList string

//go:embed testdata/hc_causelist.html
var hcCauseList string

func newTestParser() (Parser, *telemetry.RecordingAPI) {
	rec := &telemetry.RecordingAPI{}
	return New(rec), rec
}

func TestDistrictCaseHistory(t *testing.T) {
	p, rec := newTestParser()
	record := p.DistrictCaseHistory(context.Background(), districtHistory)

	require.Equal(t, records.Fields{
		{Label: "Case Type", Value: "Regular Civil Suit"},
		{Label: "Filing Number", Value: "1234/2023"},
		{Label: "Filing Date", Value: "12-03-2023"},
		{Label: "Registration Number", Value: "567/2023"},
		{Label: "CNR Number", Value: "MHPU01 0012342023"},
	}, record.CaseDetails)

	stage, ok := record.CaseStatus.Get("Court Number and Judge")
	require.True(t, ok)
	require.Equal(t, "3-Civil Judge Senior Division", stage)
	require.Len(t, record.CaseStatus, 4)

	require.Equal(t, []records.Party{
		{Name: "Ramesh Kumar Sharma"},
		{Name: "Sunita Sharma"},
	}, record.Parties.Petitioners)
	require.Equal(t, []records.Party{
		{Name: "Municipal Corporation of Pune"},
		{Name: "State of Maharashtra"},
	}, record.Parties.Respondents)

	require.Equal(t, []records.Act{
		{Act: "Code of Civil Procedure", Sections: "9"},
		{Act: "Specific Relief Act", Sections: ""},
	}, record.Acts)

	require.Equal(t, records.Fields{
		{Label: "Court Number and Name", Value: "2-JMFC"},
		{Label: "Case Number and Year", Value: "RCC 12 2019"},
	}, record.SubordinateCourt)

	require.Equal(t, []records.Hearing{
		{
			Judge:          "Civil Judge",
			BusinessOnDate: "20-03-2023",
			BusinessLink:   "viewBusiness('1','2')",
			HearingDate:    "15-05-2023",
			Purpose:        "Appearance",
		},
		{
			Judge:          "Civil Judge",
			BusinessOnDate: "15-05-2023",
			HearingDate:    "14-11-2025",
			Purpose:        "Evidence",
		},
	}, record.Hearings)

	require.Len(t, record.Orders, 2)
	require.Equal(t, "Interim Order", record.Orders[0].Details)
	require.Contains(t, record.Orders[0].Reference, "displayPdf('home/display_pdf&filename=")
	require.Empty(t, record.Orders[1].Reference)

	require.Empty(t, rec.Find("warning", ""))
}

func TestReadPetitioners(t *testing.T) {
	cases := []struct {
		name string
		cell string
		want []records.Party
	}{
		{
			name: "inline advocate",
			cell: `1) Asha Devi Advocate- P. Nair<br>2) Mohan Lal`,
			want: []records.Party{{Name: "Asha Devi", Advocate: "P. Nair"}, {Name: "Mohan Lal"}},
		},
		{
			name: "advocate on its own line",
			cell: `1) Asha Devi<br>Advocate- P. Nair`,
			want: []records.Party{{Name: "Asha Devi"}},
		},
		{
			name: "bare advocate label",
			cell: `1) Asha Devi<br />Advocate`,
			want: []records.Party{{Name: "Asha Devi"}},
		},
		{
			name: "empty cell",
			cell: ``,
			want: []records.Party{},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader("<table><tr><td>" + c.cell + "</td></tr></table>"))
			require.NoError(t, err)
			require.Equal(t, c.want, readPetitioners(doc.Find("td")))
		})
	}
}

func TestParsingIsIdempotent(t *testing.T) {
	p, _ := newTestParser()
	ctx := context.Background()

	first := p.DistrictCaseHistory(ctx, districtHistory)
	second := p.DistrictCaseHistory(ctx, districtHistory)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("district history differs between runs (-first +second):\n%s", diff)
	}

	hcFirst := p.HighCourtCaseHistory(ctx, hcHistory)
	hcSecond := p.HighCourtCaseHistory(ctx, hcHistory)
	if diff := cmp.Diff(hcFirst, hcSecond); diff != "" {
		t.Fatalf("high court history differs between runs (-first +second):\n%s", diff)
	}

	require.Equal(t, p.DistrictCauseList(ctx, districtCauseList), p.DistrictCauseList(ctx, districtCauseList))
}

func TestMissingTablesDegradeQuietly(t *testing.T) {
	p, rec := newTestParser()
	record := p.DistrictCaseHistory(context.Background(), "<div>nothing here</div>")

	require.Equal(t, records.NewCaseRecord(), record)
	require.Len(t, rec.Find("warning", report_parser_case_history), 1)
}

func TestDistrictCaseBasic(t *testing.T) {
	p, _ := newTestParser()
	record := p.DistrictCaseBasic(context.Background(), districtSearchResult)
	number, ok := record.CaseDetails.Get("Case Number")
	require.True(t, ok)
	require.Equal(t, "RCS/567/2023", number)
}

func TestHighCourtCaseHistory(t *testing.T) {
	p, _ := newTestParser()
	record := p.HighCourtCaseHistory(context.Background(), hcHistory)

	require.Equal(t, records.Fields{
		{Label: "Case Type", Value: "WP(C)"},
		{Label: "Filing Number", Value: "12345/2024"},
		{Label: "Registration Number", Value: "5678/2024"},
		{Label: "CNR Number", Value: "DLHC010123452024"},
	}, record.CaseDetails)
	require.Equal(t, records.Fields{
		{Label: "First Hearing Date", Value: "05th February 2024"},
		{Label: "Case Status", Value: "CASE DISPOSED"},
	}, record.CaseStatus)
	require.Equal(t, []records.Party{{Name: "ACME INFRA PVT LTD", Advocate: "MR. R. MEHTA"}}, record.Parties.Petitioners)
	require.Equal(t, []records.Party{{Name: "UNION OF INDIA"}}, record.Parties.Respondents)

	require.Equal(t, []records.Order{
		{
			Number:    "1",
			OrderOn:   "Interim",
			Judge:     "HON'BLE MR. JUSTICE A",
			Date:      "06-02-2024",
			Reference: "cases/display_pdf.php?filename=abc&caseno=WPC/5678/2024",
		},
		{
			Number:  "2",
			OrderOn: "Final",
			Judge:   "HON'BLE MR. JUSTICE A",
			Date:    "10-09-2024",
		},
	}, record.Orders)
}

func TestDistrictCauseList(t *testing.T) {
	p, _ := newTestParser()
	rows := p.DistrictCauseList(context.Background(), districtCauseList)
	require.Len(t, rows, 2)
	require.Equal(t, "1", rows[0].SerialNo)
	require.Equal(t, "RCS/567/2023 | Ramesh Kumar Sharma Vs Municipal Corporation of Pune | S. K. Rao", rows[0].CaseDetails)

	matches := SearchRows(rows, NewMatcher("rcs 567 2023", records.SearchCaseNumber))
	require.Len(t, matches, 1)
	require.Equal(t, 0, matches[0].Index)

	matches = SearchRows(rows, NewMatcher("ASHOK", records.SearchPartyName))
	require.Len(t, matches, 1)
	require.Equal(t, "2", matches[0].SerialNo)
	require.Equal(t, "ASHOK", matches[0].MatchedTerm)
}

func TestDistrictCauseListFallbacks(t *testing.T) {
	p, rec := newTestParser()
	ctx := context.Background()

	rows := p.DistrictCauseList(ctx, `<div class="case-entry">1 RCS/12/2020 A Vs B</div><div class="other">ignored text here</div>`)
	require.Equal(t, []records.CauseListRow{{
		CaseDetails: "1 RCS/12/2020 A Vs B",
		FullText:    "1 RCS/12/2020 A Vs B",
	}}, rows)
	require.Empty(t, rec.Find("warning", ""))

	rows = p.DistrictCauseList(ctx, "<p>Cause list for today\n1. RCS/12/2020\nAlpha Vs Beta\n2. MJC/4/2021\nGamma Vs Delta\nshort</p>")
	require.Equal(t, []string{
		"Cause list for today",
		"1. RCS/12/2020 Alpha Vs Beta",
		"2. MJC/4/2021 Gamma Vs Delta short",
	}, fullTexts(rows))
	require.Len(t, rec.Find("warning", report_parser_causelist_rows), 1)
}

func fullTexts(rows []records.CauseListRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.FullText
	}
	return out
}

func TestHighCourtCauseList(t *testing.T) {
	p, _ := newTestParser()
	base, err := url.Parse("https://hcservices.ecourts.gov.in/hcservices/")
	require.NoError(t, err)

	entries, found := p.HighCourtCauseList(context.Background(), hcCauseList, base)
	require.True(t, found)
	require.Equal(t, []records.CauseListEntry{
		{SerialNo: "1", Bench: "HON'BLE THE CHIEF JUSTICE", Type: "Daily", Link: "https://hcservices.ecourts.gov.in/hcservices/cases/causelist_pdf.php?id=101"},
		{SerialNo: "2", Bench: "DIVISION BENCH II", Type: "Supplementary", Link: "https://hcservices.ecourts.gov.in/hcservices/cases/causelist_pdf.php?id=102"},
		{SerialNo: "3", Bench: "VACATION BENCH", Type: "Daily"},
	}, entries)

	_, found = p.HighCourtCauseList(context.Background(), "<p>No cause list</p>", base)
	require.False(t, found)
}
