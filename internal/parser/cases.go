package parser

import (
	"context"
	"ecourts-backend/internal/records"
	"ecourts-backend/pkg/htmlutil"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func cellTexts(row *goquery.Selection, selector string) []string {
	var out []string
	row.Find(selector).Each(func(_ int, cell *goquery.Selection) {
		out = append(out, htmlutil.CleanText(cell))
	})
	return out
}

// readPairTable reads a details table laid out either as label|value rows
// or as label|value|label|value rows.
func readPairTable(table *goquery.Selection, into *records.Fields) {
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := cellTexts(row, "td")
		switch len(cells) {
		case 2:
			if cells[0] != "" && cells[1] != "" {
				into.Set(cells[0], cells[1])
			}
		case 4:
			if cells[0] != "" && cells[1] != "" {
				into.Set(cells[0], cells[1])
			}
			if cells[2] != "" && cells[3] != "" {
				into.Set(cells[2], cells[3])
			}
		}
	})
}

var (
	advocateSuffix = regexp.MustCompile(`(?i)Advocate[:\s-]*(.+)`)
	partyNumbering = regexp.MustCompile(`^\d+\)\s*`)
)

// splitPetitioner separates "1) Name Advocate- Counsel" into its party name
// and advocate.
func splitPetitioner(text string) records.Party {
	advocate := ""
	if strings.Contains(text, "Advocate") || strings.Contains(text, "advocate") {
		if m := advocateSuffix.FindStringSubmatchIndex(text); m != nil {
			advocate = strings.TrimSpace(text[m[2]:m[3]])
			text = strings.TrimSpace(text[:m[0]])
		}
	}
	name := strings.TrimSpace(partyNumbering.ReplaceAllString(text, ""))
	return records.Party{Name: name, Advocate: advocate}
}

func readPetitioners(cells *goquery.Selection) []records.Party {
	out := []records.Party{}
	cells.Each(func(_ int, cell *goquery.Selection) {
		for _, part := range htmlutil.SplitBreaks(cell) {
			// counsel on a line of its own has no party name and is dropped
			party := splitPetitioner(part)
			if party.Name == "" || party.Name == "Advocate" || party.Name == "advocate" {
				continue
			}
			out = append(out, party)
		}
	})
	return out
}

func readRespondents(cells *goquery.Selection) []records.Party {
	out := []records.Party{}
	cells.Each(func(_ int, cell *goquery.Selection) {
		for _, part := range htmlutil.SplitBreaks(cell) {
			if strings.HasPrefix(part, "Advocate") || strings.HasPrefix(part, "advocate") {
				continue
			}
			name := strings.TrimSpace(partyNumbering.ReplaceAllString(part, ""))
			switch name {
			case "", "Vs", "vs", "V/s":
				continue
			}
			out = append(out, records.Party{Name: name})
		}
	})
	return out
}

// bodyRows is every row of table except the first, which the portal always
// renders as a header.
func bodyRows(table *goquery.Selection) *goquery.Selection {
	rows := table.Find("tr")
	if rows.Length() < 2 {
		return rows.Slice(0, 0)
	}
	return rows.Slice(1, goquery.ToEnd)
}

// DistrictCaseHistory parses the data_list fragment returned by viewHistory.
func (p Parser) DistrictCaseHistory(ctx context.Context, fragment string) records.CaseRecord {
	_, span := tracer.Start(ctx, "DistrictCaseHistory")
	defer span.End()

	doc := p.document(fragment)
	record := records.NewCaseRecord()

	details := doc.Find("table.case_details_table").First()
	if details.Length() == 0 {
		p.tel.ReportWarning(report_parser_case_history, "missing table", "case_details_table")
	}
	readPairTable(details, &record.CaseDetails)
	readPairTable(doc.Find("table.case_status_table").First(), &record.CaseStatus)

	record.Parties.Petitioners = readPetitioners(doc.Find("table.Petitioner_Advocate_table").First().Find("td"))
	record.Parties.Respondents = readRespondents(doc.Find("table.Respondent_Advocate_table").First().Find("td"))

	bodyRows(doc.Find("table.acts_table").First()).Each(func(_ int, row *goquery.Selection) {
		cells := cellTexts(row, "td")
		if len(cells) < 2 {
			return
		}
		if cells[0] != "" || cells[1] != "" {
			record.Acts = append(record.Acts, records.Act{Act: cells[0], Sections: cells[1]})
		}
	})

	doc.Find("table.Lower_court_table").First().Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := cellTexts(row, "td")
		if len(cells) < 2 {
			return
		}
		value := cells[1]
		if len(cells) == 4 {
			value = cells[1] + " " + cells[3]
		}
		if cells[0] != "" && value != "" {
			record.SubordinateCourt.Set(cells[0], value)
		}
	})

	bodyRows(doc.Find("table.history_table").First()).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}
		hearing := records.Hearing{
			Judge:          htmlutil.CleanText(cells.Eq(0)),
			BusinessOnDate: htmlutil.CleanText(cells.Eq(1)),
			BusinessLink:   htmlutil.Attr(cells.Eq(1).Find("a").First(), "onclick"),
			HearingDate:    htmlutil.CleanText(cells.Eq(2)),
			Purpose:        htmlutil.CleanText(cells.Eq(3)),
		}
		if hearing.BusinessOnDate != "" || hearing.HearingDate != "" {
			record.Hearings = append(record.Hearings, hearing)
		}
	})

	bodyRows(doc.Find("table.order_table").First()).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}
		record.Orders = append(record.Orders, records.Order{
			Number:    htmlutil.CleanText(cells.Eq(0)),
			Date:      htmlutil.CleanText(cells.Eq(1)),
			Details:   htmlutil.CleanText(cells.Eq(2)),
			Reference: htmlutil.Attr(cells.Eq(2).Find("a").First(), "onclick"),
		})
	})

	return record
}

// DistrictCaseBasic is the fallback used when a search result carries no
// history link: only the case number in the first cell is known.
func (p Parser) DistrictCaseBasic(ctx context.Context, fragment string) records.CaseRecord {
	_, span := tracer.Start(ctx, "DistrictCaseBasic")
	defer span.End()

	record := records.NewCaseRecord()
	first := p.document(fragment).Find("td").First()
	if first.Length() == 0 {
		p.tel.ReportWarning(report_parser_case_basic, "no cells in search result")
		return record
	}
	record.CaseDetails.Set("Case Number", htmlutil.CleanText(first))
	return record
}

// HighCourtCaseHistory parses the o_civil_case_history.php page.
func (p Parser) HighCourtCaseHistory(ctx context.Context, page string) records.CaseRecord {
	_, span := tracer.Start(ctx, "HighCourtCaseHistory")
	defer span.End()

	doc := p.document(page)
	record := records.NewCaseRecord()

	details := doc.Find("table.case_details_table").First()
	if details.Length() == 0 {
		p.tel.ReportWarning(report_parser_hc_case_history, "missing table", "case_details_table")
	}
	details.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := cellTexts(row, "td")
		for i := 0; i+1 < len(cells); i += 2 {
			if cells[i] != "" {
				record.CaseDetails.Set(cells[i], cells[i+1])
			}
		}
	})

	doc.Find("table.table_r").First().Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := cellTexts(row, "td")
		if len(cells) == 2 && cells[0] != "" {
			record.CaseStatus.Set(cells[0], cells[1])
		}
	})

	record.Parties.Petitioners = readPetitioners(doc.Find("span.Petitioner_Advocate_table").First())
	record.Parties.Respondents = readPetitioners(doc.Find("span.Respondent_Advocate_table").First())

	bodyRows(doc.Find("table.order_table").First()).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 5 {
			return
		}
		record.Orders = append(record.Orders, records.Order{
			Number:    htmlutil.CleanText(cells.Eq(0)),
			OrderOn:   htmlutil.CleanText(cells.Eq(1)),
			Judge:     htmlutil.CleanText(cells.Eq(2)),
			Date:      htmlutil.CleanText(cells.Eq(3)),
			Reference: htmlutil.Attr(cells.Eq(4).Find("a").First(), "href"),
		})
	})

	return record
}
