package ecourts

import (
	"context"
	"ecourts-backend/internal/attachments"
	"ecourts-backend/internal/captcha"
	"ecourts-backend/internal/components/telemetry"
	"ecourts-backend/internal/records"
	"ecourts-backend/internal/scrapers/ecourts/ecourtstest"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestParseComplexSelector(t *testing.T) {
	testCases := []struct {
		raw      string
		expected ComplexSelector
	}{
		{
			raw:      "1130001@1,2,5@N",
			expected: ComplexSelector{Raw: "1130001@1,2,5@N", Code: "1130001", EstablishmentCodes: "1,2,5", Bypass: true},
		},
		{
			raw:      "1130002@7@Y",
			expected: ComplexSelector{Raw: "1130002@7@Y", Code: "1130002", EstablishmentCodes: "7"},
		},
		{
			raw:      "1130003@4@0",
			expected: ComplexSelector{Raw: "1130003@4@0", Code: "1130003", EstablishmentCodes: "4", Bypass: true},
		},
		{
			raw:      "1130004@9",
			expected: ComplexSelector{Raw: "1130004@9", Code: "1130004", EstablishmentCodes: "9"},
		},
		{
			raw:      " 1130005 ",
			expected: ComplexSelector{Raw: "1130005", Code: "1130005"},
		},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, ParseComplexSelector(test.raw), test.raw)
	}
}

func TestEstablishmentCode(t *testing.T) {
	bypassed := Selection{Complex: ParseComplexSelector("1@1,2@N"), Establishment: "9"}
	require.Equal(t, "1,2", bypassed.EstablishmentCode())

	chosen := Selection{Complex: ParseComplexSelector("1@1,2@Y"), Establishment: "9"}
	require.Equal(t, "9", chosen.EstablishmentCode())

	skipped := Selection{Complex: ParseComplexSelector("1@1,2@Y")}
	require.Equal(t, "1,2", skipped.EstablishmentCode())
}

func TestPayloadStatus(t *testing.T) {
	testCases := []struct {
		body     string
		expected bool
	}{
		{body: `{"status":1}`, expected: true},
		{body: `{"status":"1"}`, expected: true},
		{body: "\xEF\xBB\xBF" + `{"status":1}`, expected: true},
		{body: `{"status":0}`},
		{body: `{"status":"ok"}`},
		{body: `{}`},
	}
	for _, test := range testCases {
		payload, err := DecodePayload([]byte(test.body))
		require.NoError(t, err)
		require.Equal(t, test.expected, payload.StatusOK(), test.body)
	}

	_, err := DecodePayload([]byte("<html>maintenance</html>"))
	require.Error(t, err)
}

func TestDistrictHierarchy(t *testing.T) {
	ctx := testContext(t)
	portal, server := ecourtstest.NewPortal(t)
	tel := &telemetry.RecordingAPI{}
	client := newTestClientWith(t, DistrictCauseList, server, Options{}, tel)

	districts, err := client.Lookup(ctx, LevelDistricts, Selection{State: "13"})
	require.NoError(t, err)
	require.Equal(t, []records.Option{
		{Code: "1", Name: "Agra"},
		{Code: "2", Name: "Aligarh"},
	}, districts)

	empty, err := client.Lookup(ctx, LevelDistricts, Selection{State: "99"})
	require.NoError(t, err)
	require.Empty(t, empty)
	require.NotEmpty(t, tel.Find("warning", report_client_lookup))

	complexes, err := client.Lookup(ctx, LevelComplexes, Selection{State: "13", District: "1"})
	require.NoError(t, err)
	require.Len(t, complexes, 2)
	require.Equal(t, "1130001@1,2,5@N", complexes[0].Code)

	// every answer rotated the token of the opening page
	require.Equal(t, 1, portal.Count("casestatus/fillcomplex"))
	require.NotEmpty(t, client.session.Token)
	require.NotContains(t, client.session.Token, "open")
}

func TestBypassedComplexSkipsEstablishments(t *testing.T) {
	ctx := testContext(t)
	portal, server := ecourtstest.NewPortal(t)
	client := newTestClient(t, DistrictCauseList, server)

	sel := Selection{State: "13", District: "1", Complex: ParseComplexSelector("1130001@1,2,5@N")}

	establishments, err := client.Lookup(ctx, LevelEstablishments, sel)
	require.NoError(t, err)
	require.Empty(t, establishments)
	require.Equal(t, 0, portal.Count("casestatus/fillCourtEstablishment"))

	judges, err := client.Lookup(ctx, LevelJudges, sel)
	require.NoError(t, err)
	require.Equal(t, []records.Option{
		{Code: "1^2", Name: "2-Civil Judge Senior Division (Civil)"},
		{Code: "5^1", Name: "1-Chief Judicial Magistrate (Criminal)"},
	}, judges)

	setData := portal.LastForm("casestatus/set_data")
	require.Equal(t, "1130001@1,2,5@N", setData.Get("complex_code"))
	require.Equal(t, "", setData.Get("selected_est_code"))

	fill := portal.LastForm("cause_list/fillCauseList")
	require.Equal(t, "1130001", fill.Get("court_complex_code"))
	require.Equal(t, "1,2,5", fill.Get("est_code"))
}

func TestChosenEstablishment(t *testing.T) {
	ctx := testContext(t)
	portal, server := ecourtstest.NewPortal(t)
	client := newTestClient(t, DistrictCauseList, server)

	sel := Selection{State: "13", District: "1", Complex: ParseComplexSelector("1130002@7@Y")}
	establishments, err := client.Lookup(ctx, LevelEstablishments, sel)
	require.NoError(t, err)
	require.Equal(t, []records.Option{{Code: "7", Name: "Principal Judge Family Court"}}, establishments)
	require.Equal(t, "1130002", portal.LastForm("casestatus/fillCourtEstablishment").Get("court_complex_code"))

	sel.Establishment = "7"
	_, err = client.Lookup(ctx, LevelJudges, sel)
	require.NoError(t, err)
	require.Equal(t, "7", portal.LastForm("casestatus/set_data").Get("selected_est_code"))
	require.Equal(t, "7", portal.LastForm("cause_list/fillCauseList").Get("est_code"))

	_, err = client.Captcha(ctx, sel)
	require.NoError(t, err)
	_, err = client.VerifyCauseList(ctx, portal.LastAnswer(), CauseListQuery{
		Date: "15-01-2025", CourtNo: "1^2", CourtName: "2-Civil Judge Senior Division", Kind: "civ",
	})
	require.NoError(t, err)
	require.Equal(t, "7", portal.LastForm("cause_list/submitCauseList").Get("est_code"))
}

func TestDistrictCauseListLifecycle(t *testing.T) {
	ctx := testContext(t)
	portal, server := ecourtstest.NewPortal(t)
	client := newTestClientWith(t, DistrictCauseList, server, Options{Guesser: captcha.Fixed{Answer: "q7k2m"}}, &telemetry.RecordingAPI{})

	_, err := client.VerifyCauseList(ctx, "anything", CauseListQuery{})
	require.ErrorIs(t, err, ErrInvalidSession)

	sel := Selection{State: "13", District: "1", Complex: ParseComplexSelector("1130001@1,2,5@N")}
	challenge, err := client.Captcha(ctx, sel)
	require.NoError(t, err)
	require.Equal(t, StateCaptchaIssued, client.State())
	require.Equal(t, ecourtstest.CaptchaImage, challenge.Image)
	require.True(t, strings.HasPrefix(challenge.DataURL, "data:image/png;base64,"))
	require.Equal(t, "q7k2m", challenge.Guess)

	_, err = client.Lookup(ctx, LevelDistricts, Selection{State: "13"})
	require.ErrorIs(t, err, ErrCaptchaBound)

	list, err := client.VerifyCauseList(ctx, portal.LastAnswer(), CauseListQuery{
		Date: "15-01-2025", CourtNo: "1^2", CourtName: "2-Civil Judge Senior Division", Kind: "civ",
	})
	require.NoError(t, err)
	require.Equal(t, StateVerified, client.State())
	require.Len(t, list.Rows, 2)
	require.Equal(t, "1", list.Rows[0].SerialNo)
	require.Contains(t, list.Rows[0].FullText, "RAMESH KUMAR")

	form := portal.LastForm("cause_list/submitCauseList")
	require.Equal(t, "", form.Get("est_code"))
	require.Equal(t, "1130001", form.Get("court_complex_code"))
	require.Equal(t, "civ", form.Get("cicri"))
	require.Equal(t, "15-01-2025", form.Get("causelist_date"))

	_, err = client.VerifyCauseList(ctx, portal.LastAnswer(), CauseListQuery{Date: "15-01-2025"})
	require.ErrorIs(t, err, ErrInvalidSession)
	_, err = client.Lookup(ctx, LevelDistricts, Selection{State: "13"})
	require.ErrorIs(t, err, ErrInvalidSession)
	_, err = client.Captcha(ctx, sel)
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestCaptchaIsBoundToItsSession(t *testing.T) {
	ctx := testContext(t)
	portal, server := ecourtstest.NewPortal(t)
	sel := Selection{State: "13", District: "1", Complex: ParseComplexSelector("1130001@1,2,5@N")}

	first := newTestClient(t, DistrictCauseList, server)
	_, err := first.Captcha(ctx, sel)
	require.NoError(t, err)
	firstAnswer := portal.LastAnswer()

	second := newTestClient(t, DistrictCauseList, server)
	_, err = second.Captcha(ctx, sel)
	require.NoError(t, err)
	require.NotEqual(t, firstAnswer, portal.LastAnswer())

	_, err = second.VerifyCauseList(ctx, firstAnswer, CauseListQuery{Date: "15-01-2025"})
	require.ErrorIs(t, err, ErrInvalidCaptcha)
	require.Equal(t, StateFailed, second.State())

	// a failed attempt consumes the session as well
	_, err = second.VerifyCauseList(ctx, portal.LastAnswer(), CauseListQuery{Date: "15-01-2025"})
	require.ErrorIs(t, err, ErrInvalidSession)

	_, err = first.VerifyCauseList(ctx, firstAnswer, CauseListQuery{Date: "15-01-2025"})
	require.NoError(t, err)
}

func TestDistrictCaseSearch(t *testing.T) {
	ctx := testContext(t)
	portal, server := ecourtstest.NewPortal(t)
	client := newTestClient(t, DistrictCase, server)

	sel := Selection{State: "13", District: "1", Complex: ParseComplexSelector("1130002@7@Y")}
	types, err := client.Lookup(ctx, LevelCaseTypes, sel)
	require.NoError(t, err)
	require.Equal(t, []records.Option{{Code: "7", Name: "O.S. - Original Suit"}}, types)
	require.Equal(t, "7", portal.LastForm("casestatus/fillCaseType").Get("est_code"))

	_, err = client.Lookup(ctx, LevelJudges, sel)
	require.ErrorIs(t, err, ErrUnsupported)

	_, err = client.Captcha(ctx, sel)
	require.NoError(t, err)

	result, err := client.VerifyCase(ctx, portal.LastAnswer(), CaseQuery{CaseType: "7", CaseNumber: "120", Year: "2023"})
	require.NoError(t, err)
	caseType, _ := result.Record.CaseDetails.Get("Case Type")
	require.Equal(t, "O.S. - Original Suit", caseType)
	require.Len(t, result.Record.Orders, 1)

	history := portal.LastForm("home/viewHistory")
	require.Equal(t, "UPAG010012342023", history.Get("cino"))
	require.Equal(t, "1130002", history.Get("court_complex_code"))
	require.Equal(t, "CScaseNumber", history.Get("search_by"))

	// the order is a displayPdf directive answered with a JSON locator
	doc, err := client.FetchAttachment(ctx, result.Record.Orders[0].Reference)
	require.NoError(t, err)
	require.Equal(t, "order_1.pdf", doc.Filename)
	require.Equal(t, ecourtstest.OrderPDF, doc.Body)
	require.Equal(t, "/orders/2023/order_1.pdf", portal.LastForm("home/display_pdf").Get("filename"))
}

func TestDistrictCaseHistoryFailureKeepsBasicRecord(t *testing.T) {
	cases := []struct {
		name    string
		history http.HandlerFunc
	}{
		{
			name: "server error",
			history: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "status not ok",
			history: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"status":0,"errormsg":"Something went wrong"}`))
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctx := testContext(t)
			portal, _ := ecourtstest.NewPortal(t)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("p") == "home/viewHistory" {
					c.history(w, r)
					return
				}
				portal.ServeHTTP(w, r)
			}))
			t.Cleanup(server.Close)

			tel := &telemetry.RecordingAPI{}
			client := newTestClientWith(t, DistrictCase, server, Options{}, tel)
			_, err := client.Captcha(ctx, Selection{State: "13", District: "1", Complex: ParseComplexSelector("1130002@7@Y")})
			require.NoError(t, err)

			result, err := client.VerifyCase(ctx, portal.LastAnswer(), CaseQuery{CaseType: "7", CaseNumber: "120", Year: "2023"})
			require.NoError(t, err)
			number, ok := result.Record.CaseDetails.Get("Case Number")
			require.True(t, ok)
			require.Equal(t, "O.S./120/2023", number)
			require.Empty(t, result.Record.Orders)
			require.NotEmpty(t, tel.Find("warning", report_client_verify))
		})
	}
}

func TestDistrictCaseInvalidCaptcha(t *testing.T) {
	ctx := testContext(t)
	_, server := ecourtstest.NewPortal(t)
	client := newTestClient(t, DistrictCase, server)

	_, err := client.Captcha(ctx, Selection{State: "13", District: "1", Complex: ParseComplexSelector("1130002@7@Y")})
	require.NoError(t, err)
	_, err = client.VerifyCase(ctx, "wrong", CaseQuery{CaseType: "7", CaseNumber: "120", Year: "2023"})
	require.ErrorIs(t, err, ErrInvalidCaptcha)
}

func TestHighCourtCaseSearch(t *testing.T) {
	ctx := testContext(t)
	portal, server := ecourtstest.NewPortal(t)
	client := newTestClient(t, HighCourtCase, server)

	sel := Selection{State: "26", Court: "1"}
	types, err := client.Lookup(ctx, LevelCaseTypes, sel)
	require.NoError(t, err)
	require.Equal(t, []records.Option{
		{Code: "1", Name: "CIVIL APPEAL"},
		{Code: "2", Name: "WRIT PETITION"},
	}, types)

	_, err = client.Captcha(ctx, sel)
	require.NoError(t, err)
	result, err := client.VerifyCase(ctx, portal.LastAnswer(), CaseQuery{CaseType: "2", CaseNumber: "1234", Year: "2023"})
	require.NoError(t, err)

	courtName, _ := result.Record.CourtInfo.Get("court_name")
	require.Equal(t, "Delhi High Court", courtName)
	caseType, _ := result.Record.CaseDetails.Get("Case Type")
	require.Equal(t, "W.P.(C)", caseType)
	require.Len(t, result.Record.Orders, 1)
	require.Equal(t, "cases/order_7.pdf", result.Record.Orders[0].Reference)

	history := portal.LastForm("/hcservices/cases_qry/o_civil_case_history.php")
	require.Equal(t, "201100012342023", history.Get("case_no"))
	require.Equal(t, "DLHC010012342023", history.Get("cino"))

	doc, err := client.FetchAttachment(ctx, result.Record.Orders[0].Reference)
	require.NoError(t, err)
	content, err := attachments.Validate(doc.Body)
	require.NoError(t, err)
	require.Equal(t, ecourtstest.OrderPDF, content)
}

func TestHighCourtCaseTypesFallBack(t *testing.T) {
	ctx := testContext(t)
	portal, server := ecourtstest.NewPortal(t)
	portal.HighCourtCaseTypes = "<html>Service unavailable</html>"
	tel := &telemetry.RecordingAPI{}
	client := newTestClientWith(t, HighCourtCase, server, Options{}, tel)

	types, err := client.Lookup(ctx, LevelCaseTypes, Selection{State: "26", Court: "1"})
	require.NoError(t, err)
	require.Equal(t, DefaultHighCourtCaseTypes, types)
	require.Len(t, tel.Find("warning", report_client_lookup), 1)
}

func TestHighCourtCaseNotFound(t *testing.T) {
	ctx := testContext(t)
	portal, server := ecourtstest.NewPortal(t)
	client := newTestClient(t, HighCourtCase, server)

	_, err := client.Captcha(ctx, Selection{State: "26", Court: "1"})
	require.NoError(t, err)
	_, err = client.VerifyCase(ctx, portal.LastAnswer(), CaseQuery{CaseType: "2", CaseNumber: "404", Year: "2023"})
	require.ErrorIs(t, err, ErrNoRecord)
	require.Equal(t, StateFailed, client.State())
}

func TestHighCourtCauseList(t *testing.T) {
	ctx := testContext(t)
	portal, server := ecourtstest.NewPortal(t)
	client := newTestClient(t, HighCourtCauseList, server)

	benches, err := client.Lookup(ctx, LevelBenches, Selection{State: "9"})
	require.NoError(t, err)
	require.Equal(t, []records.Option{
		{Code: "1", Name: "Principal Seat at Jodhpur"},
		{Code: "2", Name: "Bench at Jaipur"},
	}, benches)

	sel := Selection{State: "9", Court: "9", Bench: "2"}
	_, err = client.Captcha(ctx, sel)
	require.NoError(t, err)
	list, err := client.VerifyCauseList(ctx, portal.LastAnswer(), CauseListQuery{Date: "15-01-2025"})
	require.NoError(t, err)
	require.Equal(t, []records.CauseListEntry{
		{SerialNo: "1", Bench: "HON'BLE CHIEF JUSTICE", Type: "Daily List", Link: server.URL + "/hcservices/cases/order_7.pdf"},
		{SerialNo: "2", Bench: "HON'BLE MR. JUSTICE Y", Type: "Supplementary"},
	}, list.Entries)

	form := portal.LastForm("showCauseList")
	require.Equal(t, "2", form.Get("court_code"))
	require.Equal(t, "CLcauselist", form.Get("caseStatusSearchType"))
}

func TestHighCourtCauseListInvalidCaptcha(t *testing.T) {
	ctx := testContext(t)
	_, server := ecourtstest.NewPortal(t)
	client := newTestClient(t, HighCourtCauseList, server)

	_, err := client.Captcha(ctx, Selection{State: "9", Bench: "2"})
	require.NoError(t, err)
	_, err = client.VerifyCauseList(ctx, "wrong", CauseListQuery{Date: "15-01-2025"})
	require.True(t, errors.Is(err, ErrInvalidCaptcha))
}

func TestTransportErrors(t *testing.T) {
	ctx := testContext(t)
	_, server := ecourtstest.NewPortal(t)
	client := newTestClient(t, DistrictCauseList, server)

	_, err := client.FetchAttachment(ctx, "missing/file.pdf")
	require.ErrorIs(t, err, ErrTransport)

	_, err = client.FetchAttachment(ctx, "  ")
	require.ErrorIs(t, err, ErrRemote)
}
