package parser

import (
	"context"
	"ecourts-backend/internal/records"
	"ecourts-backend/pkg/htmlutil"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

var (
	causeListHeader  = regexp.MustCompile(`(?i)^(Sr\.?|S\.No|Serial|Case|Court)`)
	entryClass       = regexp.MustCompile(`case|item|entry`)
	entryStartSerial = regexp.MustCompile(`^\d+[\.\)]\s+`)
	entryStartCase   = regexp.MustCompile(`^[A-Z]+[/\d\-]+`)
)

func longEnough(s string) bool {
	return utf8.RuneCountInString(s) > 10
}

// DistrictCauseList parses the case_data fragment of submitCauseList. Table
// rows are preferred, then any div classed like an entry, and as a last
// resort the plain text is segmented at serial numbers and case numbers.
func (p Parser) DistrictCauseList(ctx context.Context, fragment string) []records.CauseListRow {
	_, span := tracer.Start(ctx, "DistrictCauseList")
	defer span.End()

	doc := p.document(fragment)
	rows := []records.CauseListRow{}

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			cells := cellTexts(tr, "td, th")
			if len(cells) < 2 {
				return
			}
			full := strings.Join(cells, " ")
			if !longEnough(full) || causeListHeader.MatchString(full) {
				return
			}
			rows = append(rows, records.CauseListRow{
				SerialNo:    cells[0],
				CaseDetails: strings.Join(cells[1:], " | "),
				FullText:    full,
			})
		})
	})
	if len(rows) > 0 {
		return rows
	}

	doc.Find("div[class]").Each(func(_ int, div *goquery.Selection) {
		matched := false
		for _, class := range strings.Fields(htmlutil.Attr(div, "class")) {
			if entryClass.MatchString(class) {
				matched = true
				break
			}
		}
		if !matched {
			return
		}
		text := htmlutil.CleanText(div)
		if longEnough(text) {
			rows = append(rows, records.CauseListRow{CaseDetails: text, FullText: text})
		}
	})
	if len(rows) > 0 {
		return rows
	}

	p.tel.ReportWarning(report_parser_causelist_rows, "no structured rows, segmenting plain text")

	var current []string
	flush := func() {
		if len(current) == 0 {
			return
		}
		full := strings.Join(current, " ")
		if longEnough(full) {
			rows = append(rows, records.CauseListRow{CaseDetails: full, FullText: full})
		}
	}
	for _, node := range doc.Nodes {
		for _, line := range strings.Split(htmlutil.GetText(node), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if entryStartSerial.MatchString(line) || entryStartCase.MatchString(line) {
				flush()
				current = []string{line}
				continue
			}
			current = append(current, line)
		}
	}
	flush()

	return rows
}

// HighCourtCauseList parses the showCauseList response. found is false when
// the page carries no cause-list table at all.
func (p Parser) HighCourtCauseList(ctx context.Context, page string, base *url.URL) (entries []records.CauseListEntry, found bool) {
	_, span := tracer.Start(ctx, "HighCourtCauseList")
	defer span.End()

	doc := p.document(page)
	table := doc.Find("table.causelistTbl").First()
	if table.Length() == 0 {
		return nil, false
	}

	entries = []records.CauseListEntry{}
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}
		link := ""
		if href := htmlutil.Attr(cells.Eq(3).Find("a[href]").First(), "href"); href != "" {
			ref, err := url.Parse(href)
			if err != nil {
				p.tel.ReportWarning(report_parser_hc_causelist, "bad link", href, err)
			} else if base != nil {
				link = base.ResolveReference(ref).String()
			} else {
				link = ref.String()
			}
		}
		entries = append(entries, records.CauseListEntry{
			SerialNo: htmlutil.CleanText(cells.Eq(0)),
			Bench:    htmlutil.CleanText(cells.Eq(1)),
			Type:     htmlutil.CleanText(cells.Eq(2)),
			Link:     link,
		})
	})
	return entries, true
}
