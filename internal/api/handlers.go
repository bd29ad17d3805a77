package api

import (
	"ecourts-backend/internal/attachments"
	"ecourts-backend/internal/records"
	"ecourts-backend/internal/scrapers/ecourts"
	"ecourts-backend/internal/service"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{service.ErrBadRequest}, args...)...)
}

func variantOf(c echo.Context) (ecourts.Variant, error) {
	variant, ok := Portals[c.Param("portal")]
	if !ok {
		return "", echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("unknown portal %q", c.Param("portal")))
	}
	return variant, nil
}

func bind(c echo.Context, into any) error {
	err := (&echo.DefaultBinder{}).BindBody(c, into)
	if err != nil {
		return badRequest("malformed request body")
	}
	return nil
}

// selectionBody is the hierarchy as the frontend sends it. The court complex
// travels as its raw option value.
type selectionBody struct {
	State         string `json:"state_code"`
	District      string `json:"dist_code"`
	Complex       string `json:"court_complex_code"`
	Establishment string `json:"est_code"`
	Court         string `json:"court_code"`
	Bench         string `json:"bench_code"`
}

func (b selectionBody) selection() ecourts.Selection {
	sel := ecourts.Selection{
		State:         strings.TrimSpace(b.State),
		District:      strings.TrimSpace(b.District),
		Establishment: strings.TrimSpace(b.Establishment),
		Court:         strings.TrimSpace(b.Court),
		Bench:         strings.TrimSpace(b.Bench),
	}
	if b.Complex != "" {
		sel.Complex = ecourts.ParseComplexSelector(b.Complex)
	}
	return sel
}

func (s *Server) courts(c echo.Context) error {
	variant, err := variantOf(c)
	if err != nil {
		return err
	}
	courts, err := s.svc.Courts(variant)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"courts":  courts.Courts,
		"states":  courts.States,
	})
}

func (s *Server) openSession(c echo.Context) error {
	variant, err := variantOf(c)
	if err != nil {
		return err
	}
	key, err := s.svc.OpenSession(c.Request().Context(), variant)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "session_id": key})
}

type lookupBody struct {
	SessionKey string `json:"session_id"`
	selectionBody
}

func (s *Server) lookup(c echo.Context) error {
	variant, err := variantOf(c)
	if err != nil {
		return err
	}
	level, err := ecourts.ParseLevel(c.Param("level"))
	if err != nil {
		return badRequest("%v", err)
	}
	var body lookupBody
	err = bind(c, &body)
	if err != nil {
		return err
	}

	options, err := s.svc.Lookup(c.Request().Context(), variant, body.SessionKey, level, body.selection())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "options": options})
}

type searchBody struct {
	SessionKey string `json:"session_id"`
	selectionBody

	CaseType   string `json:"case_type"`
	CaseNumber string `json:"case_number"`
	Year       string `json:"year"`

	Date       string             `json:"date"`
	CourtNo    string             `json:"court_no"`
	CourtName  string             `json:"court_name"`
	Kind       string             `json:"cause_type"`
	SearchTerm string             `json:"search_term"`
	SearchType records.SearchType `json:"search_type"`
}

func (b searchBody) request(variant ecourts.Variant) service.SearchRequest {
	req := service.SearchRequest{
		Variant:    variant,
		SessionKey: b.SessionKey,
		Selection:  b.selection(),
	}
	switch variant {
	case ecourts.HighCourtCase, ecourts.DistrictCase:
		req.Case = &ecourts.CaseQuery{
			CaseType:   strings.TrimSpace(b.CaseType),
			CaseNumber: strings.TrimSpace(b.CaseNumber),
			Year:       strings.TrimSpace(b.Year),
		}
	default:
		req.CauseList = &service.CauseListSearch{
			CauseListQuery: ecourts.CauseListQuery{
				Date:      strings.TrimSpace(b.Date),
				CourtNo:   b.CourtNo,
				CourtName: b.CourtName,
				Kind:      b.Kind,
			},
			Term:       strings.TrimSpace(b.SearchTerm),
			SearchType: b.SearchType,
		}
	}
	return req
}

func (s *Server) search(c echo.Context) error {
	variant, err := variantOf(c)
	if err != nil {
		return err
	}
	var body searchBody
	err = bind(c, &body)
	if err != nil {
		return err
	}

	challenge, err := s.svc.BeginSearch(c.Request().Context(), body.request(variant))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":       true,
		"session_id":    challenge.SessionKey,
		"query_id":      challenge.QueryID,
		"captcha_url":   challenge.DataURL,
		"detected_text": challenge.Guess,
	})
}

type verifyBody struct {
	SessionKey string `json:"session_id"`
	Captcha    string `json:"captcha"`
}

func (s *Server) verify(c echo.Context) error {
	variant, err := variantOf(c)
	if err != nil {
		return err
	}
	var body verifyBody
	err = bind(c, &body)
	if err != nil {
		return err
	}
	if body.SessionKey == "" {
		return badRequest("session_id is required")
	}
	answer := strings.TrimSpace(body.Captcha)
	if answer == "" {
		return badRequest("captcha is required")
	}

	ctx := c.Request().Context()
	switch variant {
	case ecourts.HighCourtCase, ecourts.DistrictCase:
		result, err := s.svc.VerifyCase(ctx, variant, body.SessionKey, answer)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]any{
			"success":           true,
			"session_id":        result.SessionKey,
			"search_session_id": result.EpochID,
			"case_data":         result.Record,
		})
	}

	result, err := s.svc.VerifyCauseList(ctx, variant, body.SessionKey, answer)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, struct {
		Success bool `json:"success"`
		service.CauseListResult
	}{true, result})
}

func writePdf(c echo.Context, att attachments.Attachment, source string) error {
	header := c.Response().Header()
	header.Set(echo.HeaderContentDisposition, mime.FormatMediaType("inline", map[string]string{"filename": att.Filename}))
	header.Set("X-PDF-Source", source)
	return c.Blob(http.StatusOK, "application/pdf", att.Content)
}

func (s *Server) attachment(c echo.Context) error {
	att, source, err := s.svc.Attachment(c.Param("key"))
	if err != nil {
		return err
	}
	return writePdf(c, att, source)
}

type proxyBody struct {
	SessionKey string `json:"session_id"`
	URL        string `json:"pdf_url"`
}

func (s *Server) proxyPdf(c echo.Context) error {
	var body proxyBody
	err := bind(c, &body)
	if err != nil {
		return err
	}
	att, err := s.svc.ProxyAttachment(c.Request().Context(), body.SessionKey, body.URL)
	if err != nil {
		return err
	}
	return writePdf(c, att, "portal")
}

func (s *Server) history(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return badRequest("limit must be a positive number")
		}
		limit = n
	}
	entries, err := s.svc.History(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "history": entries})
}

func (s *Server) cacheStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.svc.CacheStatus())
}
