package api

import (
	"context"
	"ecourts-backend/internal/attachments"
	"ecourts-backend/internal/components/chrono"
	"ecourts-backend/internal/components/telemetry"
	"ecourts-backend/internal/history"
	"ecourts-backend/internal/scrapers/ecourts"
	"ecourts-backend/internal/scrapers/ecourts/ecourtstest"
	"ecourts-backend/internal/service"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func setup(t *testing.T) (*ecourtstest.Portal, *Server) {
	t.Helper()
	portal, server := ecourtstest.NewPortal(t)
	clock := chrono.NewFakeTime(time.Date(2025, 1, 15, 10, 0, 0, 0, chrono.IST()))
	tel := &telemetry.RecordingAPI{}

	store, err := attachments.NewStore(attachments.StoreOptions{}, clock, tel)
	require.NoError(t, err)
	sqlDB, err := history.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	hist, err := history.NewStore(context.Background(), sqlDB, clock, tel)
	require.NoError(t, err)

	descriptors := ecourts.Descriptors()
	svc := service.NewService(store, hist,
		service.WithDescriptors(
			descriptors[ecourts.HighCourtCase].WithBaseURL(ecourtstest.HighCourtBase(server)),
			descriptors[ecourts.DistrictCauseList].WithBaseURL(ecourtstest.DistrictBase(server)),
		),
		service.WithSessionOptions(ecourts.SessionOptions{RatePerSecond: rate.Inf}),
		service.WithTime(clock),
		service.WithTelemetry(tel),
	)
	return portal, NewServer(svc, tel)
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestFailurePayloads(t *testing.T) {
	_, s := setup(t)

	cases := []struct {
		name   string
		method string
		target string
		body   string
		status int
		reason service.Reason
	}{
		{"unknown portal", http.MethodGet, "/api/supreme-court/courts", "", http.StatusNotFound, service.ReasonNotFound},
		{"unknown level", http.MethodPost, "/api/district-causelist/lookup/talukas", `{}`, http.StatusBadRequest, service.ReasonBadRequest},
		{"malformed body", http.MethodPost, "/api/high-court/search", `{"case_number":`, http.StatusBadRequest, service.ReasonBadRequest},
		{"missing case number", http.MethodPost, "/api/high-court/search", `{"year":"2023"}`, http.StatusBadRequest, service.ReasonBadRequest},
		{"missing captcha", http.MethodPost, "/api/high-court/verify", `{"session_id":"abc"}`, http.StatusBadRequest, service.ReasonBadRequest},
		{"unknown session", http.MethodPost, "/api/high-court/verify", `{"session_id":"abc","captcha":"x"}`, http.StatusBadRequest, service.ReasonInvalidSession},
		{"expired attachment", http.MethodGet, "/api/attachments/nope", "", http.StatusNotFound, service.ReasonNotFound},
		{"bad history limit", http.MethodGet, "/api/history?limit=many", "", http.StatusBadRequest, service.ReasonBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, s, tc.method, tc.target, tc.body)
			require.Equal(t, tc.status, rec.Code)
			payload := decode(t, rec)
			require.Equal(t, false, payload["success"])
			require.Equal(t, string(tc.reason), payload["reason"])
			require.NotEmpty(t, payload["error"])
		})
	}
}

func TestStatusOf(t *testing.T) {
	require.Equal(t, http.StatusGone, statusOf(service.ReasonSessionExpired))
	require.Equal(t, http.StatusBadGateway, statusOf(service.ReasonNotAPdf))
	require.Equal(t, http.StatusServiceUnavailable, statusOf(service.ReasonTransport))
	require.Equal(t, http.StatusInternalServerError, statusOf(service.ReasonInternal))
}

func TestCourts(t *testing.T) {
	_, s := setup(t)

	rec := do(t, s, http.MethodGet, "/api/district-causelist/courts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	payload := decode(t, rec)
	require.Equal(t, true, payload["success"])
	require.Len(t, payload["states"], len(ecourts.States))
}

func TestHighCourtCaseFlow(t *testing.T) {
	portal, s := setup(t)

	rec := do(t, s, http.MethodPost, "/api/high-court/search",
		`{"state_code":"26","court_code":"1","case_type":"2","case_number":"1234","year":"2023"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	search := decode(t, rec)
	key, _ := search["session_id"].(string)
	require.NotEmpty(t, key)
	require.True(t, strings.HasPrefix(search["captcha_url"].(string), "data:image/png;base64,"))

	rec = do(t, s, http.MethodPost, "/api/high-court/verify",
		`{"session_id":"`+key+`","captcha":"`+portal.LastAnswer()+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var verified struct {
		Success bool   `json:"success"`
		EpochID string `json:"search_session_id"`
		Case    struct {
			Orders []struct {
				PdfID  string `json:"pdf_id"`
				PdfURL string `json:"pdf_url"`
			} `json:"orders"`
		} `json:"case_data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verified))
	require.True(t, verified.Success)
	require.NotEmpty(t, verified.EpochID)
	require.Len(t, verified.Case.Orders, 1)

	rec = do(t, s, http.MethodGet, verified.Case.Orders[0].PdfURL, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.Equal(t, "memory-cache", rec.Header().Get("X-PDF-Source"))
	require.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), "inline;"))
	require.Equal(t, ecourtstest.OrderPDF, rec.Body.Bytes())

	// the session is single use
	rec = do(t, s, http.MethodPost, "/api/high-court/verify",
		`{"session_id":"`+key+`","captcha":"`+portal.LastAnswer()+`"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, string(service.ReasonInvalidSession), decode(t, rec)["reason"])

	rec = do(t, s, http.MethodGet, "/api/history?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode(t, rec)["history"], 1)

	rec = do(t, s, http.MethodGet, "/api/debug/cache-status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode(t, rec)
	require.EqualValues(t, 1, status["count"])
	require.EqualValues(t, 1, status["retired_sessions"])
}

func TestDistrictCauseListFlow(t *testing.T) {
	portal, s := setup(t)

	rec := do(t, s, http.MethodPost, "/api/district-causelist/session", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	key := decode(t, rec)["session_id"].(string)

	rec = do(t, s, http.MethodPost, "/api/district-causelist/lookup/complexes",
		`{"session_id":"`+key+`","state_code":"13","dist_code":"1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, decode(t, rec)["options"], 2)

	rec = do(t, s, http.MethodPost, "/api/district-causelist/search", `{
		"session_id":"`+key+`","state_code":"13","dist_code":"1","court_complex_code":"1130001@1,2,5@N",
		"date":"15-01-2025","court_no":"1^2","cause_type":"civ","search_term":"united india"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, key, decode(t, rec)["session_id"])

	rec = do(t, s, http.MethodPost, "/api/district-causelist/verify",
		`{"session_id":"`+key+`","captcha":"`+portal.LastAnswer()+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		Success   bool `json:"success"`
		TotalRows int  `json:"total_rows"`
		Matches   []struct {
			SerialNo string `json:"serial_no"`
		} `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.True(t, result.Success)
	require.Equal(t, 2, result.TotalRows)
	require.Len(t, result.Matches, 1)
	require.Equal(t, "2", result.Matches[0].SerialNo)
}
