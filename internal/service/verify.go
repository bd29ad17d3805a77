package service

import (
	"context"
	"ecourts-backend/internal/attachments"
	"ecourts-backend/internal/parser"
	"ecourts-backend/internal/records"
	"ecourts-backend/internal/scrapers/ecourts"
	"ecourts-backend/internal/sessions"
	"errors"
	"fmt"
)

// NoCauseListMessage is reported when the portal has no list for the date.
const NoCauseListMessage = "No cause lists found for the selected date"

// consume takes the session out of the registry for its single verify.
func (s Service) consume(key string, variant ecourts.Variant) (*flow, error) {
	f, err := s.sessions.Consume(key)
	if errors.Is(err, sessions.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown or already verified session", ecourts.ErrInvalidSession)
	}
	if err != nil {
		return nil, err
	}
	if f.request == nil {
		s.sessions.Retire(key, f)
		return nil, fmt.Errorf("%w: no captcha was issued for this session", ecourts.ErrInvalidSession)
	}
	err = checkVariant(f, variant)
	if err != nil {
		s.sessions.Retire(key, f)
		return nil, err
	}
	return f, nil
}

func (s Service) logResult(ctx context.Context, queryID int64, result any, raw string) {
	if queryID == 0 {
		return
	}
	err := s.history.LogResult(ctx, queryID, result, raw)
	if err != nil {
		s.tel.ReportWarning(report_service_history, "log result", queryID, err)
	}
}

// CaseResult is a verified case search. Its orders link to cached documents
// that stay available until the next epoch is registered.
type CaseResult struct {
	SessionKey string             `json:"session_id"`
	EpochID    string             `json:"search_session_id"`
	Record     records.CaseRecord `json:"case_data"`
}

// VerifyCase answers the captcha of a case search. Every order document is
// downloaded and cached, the orders that could not be fetched keep an empty
// attachment key.
func (s Service) VerifyCase(ctx context.Context, variant ecourts.Variant, key, answer string) (CaseResult, error) {
	f, err := s.consume(key, variant)
	if err != nil {
		return CaseResult{}, err
	}
	defer s.sessions.Retire(key, f)

	if f.request.Case == nil {
		return CaseResult{}, fmt.Errorf("%w: session was not started for a case search", ErrBadRequest)
	}
	result, err := f.client.VerifyCase(ctx, answer, *f.request.Case)
	if err != nil {
		return CaseResult{}, err
	}

	record := result.Record
	keys := s.downloadOrders(ctx, f.client, record.Orders)
	epoch := s.attachments.RegisterEpoch(keys)
	s.tel.ReportCount(report_service_pdfs_stored, int64(len(keys)))
	s.logResult(ctx, f.queryID, record, result.Raw)

	return CaseResult{SessionKey: key, EpochID: epoch.ID, Record: record}, nil
}

func (s Service) downloadOrders(ctx context.Context, client *ecourts.Client, orders []records.Order) []string {
	keys := []string{}
	for i := range orders {
		order := &orders[i]
		if order.Reference == "" {
			continue
		}
		if ctx.Err() != nil {
			s.tel.ReportWarning(report_service_download, "abandoned", ctx.Err())
			break
		}

		doc, err := client.FetchAttachment(ctx, order.Reference)
		if err != nil {
			s.tel.ReportWarning(report_service_download, "fetch order", order.Number, err)
			continue
		}
		filename := doc.Filename
		if filename == "" {
			filename = attachments.OrderFilename(order.Reference, s.time.Now())
		}
		att, err := s.attachments.Put(order.Reference, filename, doc.Body)
		if err != nil {
			s.tel.ReportWarning(report_service_download, "store order", order.Number, err)
			continue
		}
		order.AttachmentKey = att.Key
		order.AttachmentURL = s.attachmentURL(att.Key)
		keys = append(keys, att.Key)
	}
	return keys
}

// PdfMatch is a High Court cause-list document containing the search term.
type PdfMatch struct {
	SerialNo   string              `json:"sr_no"`
	Bench      string              `json:"bench"`
	Type       string              `json:"type"`
	PdfID      string              `json:"pdf_id"`
	PdfURL     string              `json:"pdf_url"`
	MatchCount int                 `json:"match_count"`
	Matches    []records.TextMatch `json:"matches"`
}

// CauseListResult holds district row matches or the outcome of a High Court
// bulk scan.
type CauseListResult struct {
	SessionKey string             `json:"session_id"`
	EpochID    string             `json:"epoch_id,omitempty"`
	Message    string             `json:"message,omitempty"`
	SearchTerm string             `json:"search_term"`
	SearchType records.SearchType `json:"search_type"`

	TotalRows int                 `json:"total_rows"`
	Matches   []records.RowMatch `json:"matches"`

	AllPdfs         []records.CauseListEntry `json:"all_pdfs"`
	MatchingPdfs    []PdfMatch               `json:"matching_pdfs"`
	Scanned         int                      `json:"total_pdfs_scanned"`
	PdfsWithMatches int                      `json:"pdfs_with_matches"`
	TotalMatches    int                      `json:"total_matches"`
}

// VerifyCauseList answers the captcha of a cause-list search and searches
// the list for the term. A date without a published list is not an error.
func (s Service) VerifyCauseList(ctx context.Context, variant ecourts.Variant, key, answer string) (CauseListResult, error) {
	f, err := s.consume(key, variant)
	if err != nil {
		return CauseListResult{}, err
	}
	defer s.sessions.Retire(key, f)

	search := f.request.CauseList
	if search == nil {
		return CauseListResult{}, fmt.Errorf("%w: session was not started for a cause list search", ErrBadRequest)
	}
	result := CauseListResult{
		SessionKey:   key,
		SearchTerm:   search.Term,
		SearchType:   search.SearchType,
		Matches:      []records.RowMatch{},
		AllPdfs:      []records.CauseListEntry{},
		MatchingPdfs: []PdfMatch{},
	}

	list, err := f.client.VerifyCauseList(ctx, answer, search.CauseListQuery)
	if errors.Is(err, ecourts.ErrNoRecord) {
		result.Message = NoCauseListMessage
		s.logResult(ctx, f.queryID, result, list.Raw)
		return result, nil
	}
	if err != nil {
		return CauseListResult{}, err
	}

	matcher := parser.NewMatcher(search.Term, search.SearchType)
	switch variant {
	case ecourts.DistrictCauseList:
		result.TotalRows = len(list.Rows)
		result.Matches = parser.SearchRows(list.Rows, matcher)
	case ecourts.HighCourtCauseList:
		result.AllPdfs = list.Entries
		keys := s.scanCauseLists(ctx, f.client, list.Entries, matcher, &result)
		if len(keys) > 0 {
			result.EpochID = s.attachments.RegisterEpoch(keys).ID
			s.tel.ReportCount(report_service_pdfs_stored, int64(len(keys)))
		}
	}
	s.logResult(ctx, f.queryID, result, list.Raw)
	return result, nil
}

// scanCauseLists downloads every linked cause-list document in turn, pausing
// between downloads, and keeps the ones whose text matches. A document that
// fails is skipped. It returns the attachment keys of the kept documents.
func (s Service) scanCauseLists(
	ctx context.Context,
	client *ecourts.Client,
	entries []records.CauseListEntry,
	matcher parser.Matcher,
	result *CauseListResult,
) []string {
	keys := []string{}
	for _, entry := range entries {
		if entry.Link == "" {
			continue
		}
		if ctx.Err() != nil {
			s.tel.ReportWarning(report_service_bulk_scan, "abandoned", result.Scanned, ctx.Err())
			break
		}
		if result.Scanned > 0 {
			s.time.Sleep(s.bulkPause, ctx.Done())
		}
		result.Scanned++

		doc, err := client.FetchAttachment(ctx, entry.Link)
		if err != nil {
			s.tel.ReportWarning(report_service_bulk_scan, "fetch", entry.SerialNo, err)
			continue
		}
		content, err := attachments.Validate(doc.Body)
		if err != nil {
			s.tel.ReportWarning(report_service_bulk_scan, "validate", entry.SerialNo, err)
			continue
		}
		text, err := s.extractor.Extract(ctx, content)
		if err != nil {
			s.tel.ReportWarning(report_service_bulk_scan, "extract", entry.SerialNo, err)
			continue
		}
		matches := parser.SearchText(text, matcher)
		if len(matches) == 0 {
			continue
		}

		key := s.attachments.NewKey(entry.Link)
		att, err := s.attachments.Add(key, fmt.Sprintf("causelist_%s_%s.pdf", entry.SerialNo, key), content)
		if err != nil {
			s.tel.ReportWarning(report_service_bulk_scan, "store", entry.SerialNo, err)
			continue
		}
		keys = append(keys, att.Key)
		result.PdfsWithMatches++
		result.TotalMatches += len(matches)
		result.MatchingPdfs = append(result.MatchingPdfs, PdfMatch{
			SerialNo:   entry.SerialNo,
			Bench:      entry.Bench,
			Type:       entry.Type,
			PdfID:      att.Key,
			PdfURL:     s.attachmentURL(att.Key),
			MatchCount: len(matches),
			Matches:    matches,
		})
	}
	return keys
}
