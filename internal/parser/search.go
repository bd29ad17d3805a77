package parser

import (
	"ecourts-backend/internal/records"
	"ecourts-backend/pkg/textutil"
	"regexp"
	"strings"
)

// Matcher decides whether a piece of text mentions the searched party or
// case number.
type Matcher struct {
	term       string
	searchType records.SearchType
	lowerTerm  string
	upperTerm  string
	cleanTerm  string
}

func NewMatcher(term string, searchType records.SearchType) Matcher {
	return Matcher{
		term:       term,
		searchType: searchType,
		lowerTerm:  strings.ToLower(term),
		upperTerm:  strings.ToUpper(term),
		cleanTerm:  textutil.NormalizeCaseNumber(term),
	}
}

func (m Matcher) Term() string {
	return m.term
}

// Match reports a party name match as a case-insensitive substring. Case
// numbers also match when both sides agree after punctuation is dropped, so
// "WP/12/2024" finds "WP 12 2024".
func (m Matcher) Match(text string) bool {
	if m.searchType == records.SearchPartyName {
		return strings.Contains(strings.ToLower(text), m.lowerTerm)
	}
	return strings.Contains(textutil.NormalizeCaseNumber(text), m.cleanTerm) ||
		strings.Contains(strings.ToUpper(text), m.upperTerm)
}

// SearchRows returns every cause-list row whose full text matches.
func SearchRows(rows []records.CauseListRow, m Matcher) []records.RowMatch {
	out := []records.RowMatch{}
	for i, row := range rows {
		if !m.Match(row.FullText) {
			continue
		}
		out = append(out, records.RowMatch{
			Index:       i,
			SerialNo:    row.SerialNo,
			CaseDetails: row.CaseDetails,
			FullText:    row.FullText,
			MatchedTerm: m.term,
		})
	}
	return out
}

var (
	serialOnly     = regexp.MustCompile(`^\d+[\.\)]\s*$`)
	listHeading    = regexp.MustCompile(`(?i)^Sr\.|^S\.No|^Serial`)
	serialWithCase = regexp.MustCompile(`^\d+[\.\)]\s+[A-Z]+`)
	nextSerialCase = regexp.MustCompile(`^\d+[\.\)]\s*[A-Z]`)
	nextSerialOnly = regexp.MustCompile(`^\d+[\.\)]?\s*$`)
	sectionHeading = regexp.MustCompile(`(?i)^(ORDERS|ADMISSION|MOTION|FINAL|REGULAR|PRELIMINARY|MISCELLANEOUS|Sr\.|S\.No|Serial|Item)`)
	pageFooter     = regexp.MustCompile(`^\d+/\d+\s*$`)
)

// entryStart walks back from the matched line to the first line of its entry.
func entryStart(lines []string, i int) int {
	start := i
	for start > 0 {
		prev := strings.TrimSpace(lines[start-1])
		if serialOnly.MatchString(prev) || listHeading.MatchString(prev) ||
			(prev == "" && start > 1 && strings.TrimSpace(lines[start-2]) == "") {
			break
		}
		if serialWithCase.MatchString(prev) {
			break
		}
		start--
	}
	return start
}

// entryEnd walks forward from the matched line and returns the index one past
// the last line of its entry.
func entryEnd(lines []string, i int) int {
	end := i + 1
	blanks := 0
	for end < len(lines) {
		next := strings.TrimSpace(lines[end])
		if nextSerialCase.MatchString(next) || nextSerialOnly.MatchString(next) {
			break
		}
		if next == "" {
			blanks++
			if blanks >= 2 {
				break
			}
		} else {
			blanks = 0
		}
		if sectionHeading.MatchString(next) || pageFooter.MatchString(next) {
			break
		}
		end++
	}
	return end
}

// SearchText finds every line of a cause-list document that matches and
// widens each hit to the whole entry it belongs to. Scanning resumes after
// the entry, so one entry is never reported twice.
func SearchText(text string, m Matcher) []records.TextMatch {
	lines := strings.Split(text, "\n")
	out := []records.TextMatch{}

	i := 0
	for i < len(lines) {
		if !m.Match(lines[i]) {
			i++
			continue
		}
		start := entryStart(lines, i)
		end := entryEnd(lines, i)
		out = append(out, records.TextMatch{
			LineNumber:    i + 1,
			MatchedLine:   strings.TrimSpace(lines[i]),
			FullCaseEntry: strings.TrimSpace(strings.Join(lines[start:end], "\n")),
			StartLine:     start + 1,
			EndLine:       end,
		})
		i = end
	}
	return out
}
