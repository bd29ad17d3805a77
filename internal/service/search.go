package service

import (
	"context"
	"ecourts-backend/internal/captcha"
	"ecourts-backend/internal/records"
	"ecourts-backend/internal/scrapers/ecourts"
	"fmt"
	"strings"
)

// flow is a registered search: the portal client and, once a captcha has been
// issued, what is being searched for.
type flow struct {
	client  *ecourts.Client
	request *SearchRequest
	queryID int64
}

// Courts is the static first level of every hierarchy: High Courts for the
// High Court portals, states for the district ones.
type Courts struct {
	Courts []ecourts.Court   `json:"courts,omitempty"`
	States []records.Option `json:"states,omitempty"`
}

func (s Service) Courts(variant ecourts.Variant) (Courts, error) {
	switch variant {
	case ecourts.HighCourtCase:
		return Courts{Courts: ecourts.CaseCourts}, nil
	case ecourts.HighCourtCauseList:
		return Courts{Courts: ecourts.CauseListCourts}, nil
	case ecourts.DistrictCase, ecourts.DistrictCauseList:
		return Courts{States: ecourts.States}, nil
	}
	return Courts{}, fmt.Errorf("%w: unknown portal variant %q", ErrBadRequest, variant)
}

// OpenSession starts a portal session for the dropdowns of a search and
// returns its key. The same key is later passed to BeginSearch.
func (s Service) OpenSession(ctx context.Context, variant ecourts.Variant) (string, error) {
	client, err := s.newClient(variant)
	if err != nil {
		return "", err
	}
	err = client.Open(ctx)
	if err != nil {
		return "", err
	}
	return s.sessions.Register(&flow{client: client}), nil
}

func checkVariant(f *flow, variant ecourts.Variant) error {
	if f.client.Variant() != variant {
		return fmt.Errorf("%w: session belongs to %s", ecourts.ErrInvalidSession, f.client.Variant())
	}
	return nil
}

// Lookup fetches one hierarchy level. Without a session key a throwaway
// session is used, which only works for levels the portal does not tie to
// earlier selections.
func (s Service) Lookup(ctx context.Context, variant ecourts.Variant, key string, level ecourts.Level, sel ecourts.Selection) ([]records.Option, error) {
	if key == "" {
		client, err := s.newClient(variant)
		if err != nil {
			return nil, err
		}
		return client.Lookup(ctx, level, sel)
	}

	var options []records.Option
	err := s.sessions.With(key, func(f *flow) error {
		err := checkVariant(f, variant)
		if err != nil {
			return err
		}
		options, err = f.client.Lookup(ctx, level, sel)
		return err
	})
	if err != nil {
		s.tel.ReportDebug("lookup failed", report_service_lookup, variant, level, err)
		return nil, err
	}
	return options, nil
}

// CauseListSearch is a cause-list query along with the term searched in it.
type CauseListSearch struct {
	ecourts.CauseListQuery
	Term       string             `json:"search_term"`
	SearchType records.SearchType `json:"search_type"`
}

// SearchRequest is everything needed to run one captcha-gated search.
type SearchRequest struct {
	Variant ecourts.Variant `json:"-"`
	// SessionKey continues the session the dropdowns were fetched with.
	SessionKey string            `json:"-"`
	Selection  ecourts.Selection `json:"selection"`

	Case      *ecourts.CaseQuery `json:"case,omitempty"`
	CauseList *CauseListSearch   `json:"cause_list,omitempty"`
}

func (r SearchRequest) validate() error {
	switch r.Variant {
	case ecourts.HighCourtCase, ecourts.DistrictCase:
		if r.Case == nil || strings.TrimSpace(r.Case.CaseNumber) == "" || strings.TrimSpace(r.Case.Year) == "" {
			return fmt.Errorf("%w: case number and year are required", ErrBadRequest)
		}
	case ecourts.HighCourtCauseList, ecourts.DistrictCauseList:
		if r.CauseList == nil || strings.TrimSpace(r.CauseList.Date) == "" {
			return fmt.Errorf("%w: a cause list date is required", ErrBadRequest)
		}
		if strings.TrimSpace(r.CauseList.Term) == "" {
			return fmt.Errorf("%w: a search term is required", ErrBadRequest)
		}
		switch r.CauseList.SearchType {
		case "":
			r.CauseList.SearchType = records.SearchPartyName
		case records.SearchPartyName, records.SearchCaseNumber:
		default:
			return fmt.Errorf("%w: unknown search type %q", ErrBadRequest, r.CauseList.SearchType)
		}
	default:
		return fmt.Errorf("%w: unknown portal variant %q", ErrBadRequest, r.Variant)
	}
	return nil
}

// Challenge is the captcha of a search in progress. SessionKey must be
// passed back with the answer.
type Challenge struct {
	SessionKey string `json:"session_id"`
	QueryID    int64  `json:"query_id,omitempty"`
	captcha.Challenge
}

// BeginSearch logs the query and issues a captcha for it. The captcha is bound
// to the returned session: it can only be answered through it, and only once.
func (s Service) BeginSearch(ctx context.Context, req SearchRequest) (Challenge, error) {
	err := req.validate()
	if err != nil {
		return Challenge{}, err
	}

	queryID, err := s.history.LogQuery(ctx, string(req.Variant), req)
	if err != nil {
		// the search itself does not depend on the log
		s.tel.ReportWarning(report_service_begin, "log query", err)
		queryID = 0
	}

	if req.SessionKey != "" {
		var challenge captcha.Challenge
		err = s.sessions.With(req.SessionKey, func(f *flow) error {
			err := checkVariant(f, req.Variant)
			if err != nil {
				return err
			}
			challenge, err = f.client.Captcha(ctx, req.Selection)
			if err != nil {
				return err
			}
			f.request = &req
			f.queryID = queryID
			return nil
		})
		if err != nil {
			return Challenge{}, err
		}
		return Challenge{SessionKey: req.SessionKey, QueryID: queryID, Challenge: challenge}, nil
	}

	client, err := s.newClient(req.Variant)
	if err != nil {
		return Challenge{}, err
	}
	challenge, err := client.Captcha(ctx, req.Selection)
	if err != nil {
		return Challenge{}, err
	}
	key := s.sessions.Register(&flow{client: client, request: &req, queryID: queryID})
	return Challenge{SessionKey: key, QueryID: queryID, Challenge: challenge}, nil
}
