package ecourts

import (
	"context"
	"ecourts-backend/internal/records"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// CaseQuery identifies a case within the selected court.
type CaseQuery struct {
	CaseType   string `json:"case_type"`
	CaseNumber string `json:"case_number"`
	Year       string `json:"year"`
}

// CaseResult is a verified case search. Raw is the portal's last answer as
// received, kept for the result log.
type CaseResult struct {
	Record records.CaseRecord
	Raw    string
}

// CauseListQuery selects one day's cause list. CourtNo, CourtName and Kind
// (civ or cri) only apply to district courts.
type CauseListQuery struct {
	Date      string `json:"date"`
	CourtNo   string `json:"court_no"`
	CourtName string `json:"court_name"`
	Kind      string `json:"case_type"`
}

// CauseList holds district rows or High Court entries, depending on the portal.
type CauseList struct {
	Rows    []records.CauseListRow
	Entries []records.CauseListEntry
	Raw     string
}

func mentionsCaptcha(s string) bool {
	return strings.Contains(strings.ToLower(s), "captcha")
}

// VerifyCase submits the captcha answer with the case identifiers and returns
// the parsed case history. The client cannot verify again afterwards.
func (c *Client) VerifyCase(ctx context.Context, answer string, q CaseQuery) (CaseResult, error) {
	err := c.beginVerify()
	if err != nil {
		return CaseResult{}, err
	}
	var result CaseResult
	switch c.desc.Variant {
	case HighCourtCase:
		result, err = c.verifyHighCourtCase(ctx, answer, q)
	case DistrictCase:
		result, err = c.verifyDistrictCase(ctx, answer, q)
	default:
		err = fmt.Errorf("%w: %s does not search cases", ErrUnsupported, c.desc.Variant)
	}
	return result, c.finishVerify(err)
}

type highCourtCaseRef struct {
	CaseNo json.RawMessage `json:"case_no"`
	Cino   json.RawMessage `json:"cino"`
}

func (c *Client) verifyHighCourtCase(ctx context.Context, answer string, q CaseQuery) (CaseResult, error) {
	sel := c.selection
	payload, err := c.session.PostJSON(ctx, c.desc.Verify, url.Values{
		"court_code":           {sel.Court},
		"state_code":           {sel.State},
		"court_complex_code":   {"1"},
		"caseStatusSearchType": {"CScaseNumber"},
		c.desc.CaptchaField:    {answer},
		"case_type":            {q.CaseType},
		"case_no":              {q.CaseNumber},
		"rgyear":               {q.Year},
		"caseNoType":           {"new"},
		"displayOldCaseNo":     {"NO"},
	})
	if err != nil {
		return CaseResult{}, fmt.Errorf("show records: %w", err)
	}

	if message, ok := payload.String("Error"); !ok || message != "" {
		if mentionsCaptcha(message) {
			return CaseResult{}, fmt.Errorf("%w: %s", ErrInvalidCaptcha, message)
		}
		return CaseResult{}, fmt.Errorf("%w: %s", ErrNoRecord, message)
	}

	var con []string
	if raw, ok := payload["con"]; ok {
		err = json.Unmarshal(raw, &con)
		if err != nil {
			return CaseResult{}, fmt.Errorf("%w: decode con: %v", ErrRemote, err)
		}
	}
	if len(con) == 0 {
		return CaseResult{}, ErrNoRecord
	}
	var refs []highCourtCaseRef
	err = json.Unmarshal([]byte(con[0]), &refs)
	if err != nil {
		return CaseResult{}, fmt.Errorf("%w: decode case reference: %v", ErrRemote, err)
	}
	if len(refs) == 0 {
		return CaseResult{}, ErrNoRecord
	}
	caseNo, _ := rawString(refs[0].CaseNo)
	cino, _ := rawString(refs[0].Cino)

	page, err := c.session.PostForm(ctx, c.desc.History, url.Values{
		"court_code":         {sel.Court},
		"state_code":         {sel.State},
		"court_complex_code": {"1"},
		"case_no":            {caseNo},
		"cino":               {cino},
		"appFlag":            {""},
	})
	if err != nil {
		return CaseResult{}, fmt.Errorf("case history: %w", err)
	}

	record := c.parser.HighCourtCaseHistory(ctx, string(page))
	courtName := ""
	if court, ok := FindCourt(CaseCourts, sel.Court); ok {
		courtName = court.Name
	}
	record.CourtInfo = records.Fields{
		{Label: "court_name", Value: courtName},
		{Label: "court_code", Value: sel.Court},
		{Label: "state_code", Value: sel.State},
	}
	return CaseResult{Record: record, Raw: string(page)}, nil
}

func (c *Client) verifyDistrictCase(ctx context.Context, answer string, q CaseQuery) (CaseResult, error) {
	sel := c.selection
	payload, err := c.session.PostJSON(ctx, c.desc.Verify, url.Values{
		"state_code":         {sel.State},
		"dist_code":          {sel.District},
		"court_complex_code": {sel.Complex.Code},
		"est_code":           {sel.Complex.EstablishmentCodes},
		"case_type":          {q.CaseType},
		"case_no":            {q.CaseNumber},
		"rgyear":             {q.Year},
		c.desc.CaptchaField:  {answer},
	})
	if err != nil {
		return CaseResult{}, fmt.Errorf("submit case number: %w", err)
	}

	if !payload.StatusOK() {
		message, _ := payload.First("error", "errormsg")
		if mentionsCaptcha(message) {
			return CaseResult{}, fmt.Errorf("%w: %s", ErrInvalidCaptcha, message)
		}
		return CaseResult{}, fmt.Errorf("%w: %s", ErrNoRecord, message)
	}

	caseData, _ := payload.String("case_data")
	locator, ok := c.parser.ViewHistoryArgs(caseData)
	if !ok {
		c.tel.ReportWarning(report_client_verify, "no history link, using basic case data")
		return CaseResult{Record: c.parser.DistrictCaseBasic(ctx, caseData), Raw: caseData}, nil
	}

	history, err := c.session.PostJSON(ctx, c.desc.History, url.Values{
		"court_code":         {locator.CourtCode},
		"state_code":         {locator.StateCode},
		"dist_code":          {locator.DistCode},
		"court_complex_code": {locator.ComplexCode},
		"case_no":            {locator.CaseNo},
		"cino":               {locator.Cino},
		"hideparty":          {locator.HideParty},
		"search_flag":        {locator.SearchFlag},
		"search_by":          {locator.SearchBy},
	})
	if ctx.Err() != nil {
		return CaseResult{}, fmt.Errorf("view history: %w", ctx.Err())
	}
	// the search itself succeeded, so a failed history page degrades to the
	// basic record instead of costing the user a new captcha
	if err != nil {
		c.tel.ReportWarning(report_client_verify, "view history failed, using basic case data", err)
		return CaseResult{Record: c.parser.DistrictCaseBasic(ctx, caseData), Raw: caseData}, nil
	}
	if !history.StatusOK() {
		c.tel.ReportWarning(report_client_verify, "view history not ok, using basic case data")
		return CaseResult{Record: c.parser.DistrictCaseBasic(ctx, caseData), Raw: caseData}, nil
	}
	dataList, ok := history.String("data_list")
	if !ok || dataList == "" {
		c.tel.ReportWarning(report_client_verify, "no data_list in history, using basic case data")
		return CaseResult{Record: c.parser.DistrictCaseBasic(ctx, caseData), Raw: caseData}, nil
	}
	return CaseResult{Record: c.parser.DistrictCaseHistory(ctx, dataList), Raw: dataList}, nil
}

// VerifyCauseList submits the captcha answer for a cause list. A day without
// a published list is ErrNoRecord together with an empty list.
func (c *Client) VerifyCauseList(ctx context.Context, answer string, q CauseListQuery) (CauseList, error) {
	err := c.beginVerify()
	if err != nil {
		return CauseList{}, err
	}
	var list CauseList
	switch c.desc.Variant {
	case DistrictCauseList:
		list, err = c.verifyDistrictCauseList(ctx, answer, q)
	case HighCourtCauseList:
		list, err = c.verifyHighCourtCauseList(ctx, answer, q)
	default:
		err = fmt.Errorf("%w: %s does not serve cause lists", ErrUnsupported, c.desc.Variant)
	}
	return list, c.finishVerify(err)
}

func (c *Client) verifyDistrictCauseList(ctx context.Context, answer string, q CauseListQuery) (CauseList, error) {
	sel := c.selection
	est := ""
	if !sel.Complex.Bypass {
		est = sel.Establishment
	}
	payload, err := c.session.PostJSON(ctx, c.desc.Verify, url.Values{
		"CL_court_no":        {q.CourtNo},
		"causelist_date":     {q.Date},
		c.desc.CaptchaField:  {answer},
		"court_name_txt":     {q.CourtName},
		"state_code":         {sel.State},
		"dist_code":          {sel.District},
		"court_complex_code": {sel.Complex.Code},
		"est_code":           {est},
		"cicri":              {q.Kind},
		"selprevdays":        {"0"},
	})
	if err != nil {
		return CauseList{}, fmt.Errorf("submit cause list: %w", err)
	}

	if message, ok := payload.String("error"); ok {
		lower := strings.ToLower(message)
		if strings.Contains(lower, "captcha") || strings.Contains(lower, "invalid") {
			return CauseList{}, fmt.Errorf("%w: %s", ErrInvalidCaptcha, message)
		}
	}
	caseData, ok := payload.String("case_data")
	if !ok {
		return CauseList{}, fmt.Errorf("%w: no case_data in cause list response", ErrRemote)
	}
	empty := CauseList{Rows: []records.CauseListRow{}, Raw: caseData}
	if strings.Contains(caseData, "Record not found") || strings.Contains(caseData, "No record found") {
		return empty, ErrNoRecord
	}
	empty.Rows = c.parser.DistrictCauseList(ctx, caseData)
	return empty, nil
}

func (c *Client) verifyHighCourtCauseList(ctx context.Context, answer string, q CauseListQuery) (CauseList, error) {
	sel := c.selection
	body, err := c.session.PostForm(ctx, c.desc.Verify, url.Values{
		"action_code":          {"showCauseList"},
		"flag":                 {""},
		"selprevdays":          {"0"},
		c.desc.CaptchaField:    {answer},
		"state_code":           {sel.State},
		"court_code":           {sel.Bench},
		"caseStatusSearchType": {"CLcauselist"},
		"appFlag":              {""},
		"causelist_date":       {q.Date},
	})
	if err != nil {
		return CauseList{}, fmt.Errorf("show cause list: %w", err)
	}

	page := string(body)
	if mentionsCaptcha(page) {
		return CauseList{}, ErrInvalidCaptcha
	}
	entries, found := c.parser.HighCourtCauseList(ctx, page, c.session.Base)
	if !found {
		return CauseList{Entries: []records.CauseListEntry{}, Raw: page}, ErrNoRecord
	}
	return CauseList{Entries: entries, Raw: page}, nil
}
