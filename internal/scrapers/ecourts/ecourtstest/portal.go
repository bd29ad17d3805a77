// Package ecourtstest serves a fake eCourts portal for tests. It imitates
// both the High Court and the district services closely enough to drive every
// client flow: cookie sessions, rotating app tokens and per-session captchas.
package ecourtstest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	HighCourtPath = "/hcservices/"
	DistrictPath  = "/ecourtindia_v6/"
)

var CaptchaImage = []byte("\x89PNG\r\n\x1a\nfake-captcha")

var OrderPDF = []byte("%PDF-1.4\nfake order\n%%EOF\n")

// DefaultHighCourtCauseList lists one downloadable and one unpublished document.
const DefaultHighCourtCauseList = `<table class="causelistTbl"><thead><tr><th>Sr No</th><th>Bench</th><th>Cause List Type</th><th>View</th></tr></thead><tbody>
<tr><td>1</td><td>HON'BLE CHIEF JUSTICE</td><td>Daily List</td><td><a href="cases/order_7.pdf">View</a></td></tr>
<tr><td>2</td><td>HON'BLE MR. JUSTICE Y</td><td>Supplementary</td><td></td></tr>
</tbody></table>`

// Portal answers the way the portals do. Captcha answers are "ans<sid>" where
// sid is the cookie session, so an answer only works in the session it was
// served to.
type Portal struct {
	t testing.TB

	mu       sync.Mutex
	nextID   int
	tokens   map[string]string
	answers  map[string]string
	issued   []string
	forms    map[string][]url.Values
	requests []string

	// HighCourtCaseTypes is the body of the High Court fillCaseType answer.
	HighCourtCaseTypes string
	// HighCourtCauseList is the page answering a correct showCauseList.
	HighCourtCauseList string
	// Documents are served by GET on their path.
	Documents map[string][]byte
}

func NewPortal(t testing.TB) (*Portal, *httptest.Server) {
	portal := &Portal{
		t:       t,
		tokens:  map[string]string{},
		answers: map[string]string{},
		forms:   map[string][]url.Values{},

		HighCourtCaseTypes: "0~Select#1~CIVIL APPEAL-1#2~WRIT PETITION#",
		HighCourtCauseList: DefaultHighCourtCauseList,
		Documents: map[string][]byte{
			DistrictPath + "reports/order_1.pdf": OrderPDF,
			HighCourtPath + "cases/order_7.pdf":  append([]byte("\xEF\xBB\xBF"), OrderPDF...),
		},
	}
	server := httptest.NewServer(portal)
	t.Cleanup(server.Close)
	return portal, server
}

func HighCourtBase(server *httptest.Server) string {
	return server.URL + HighCourtPath
}

func DistrictBase(server *httptest.Server) string {
	return server.URL + DistrictPath
}

// LastAnswer is the solution of the most recently served captcha image.
func (p *Portal) LastAnswer() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.issued) == 0 {
		return ""
	}
	return p.issued[len(p.issued)-1]
}

func (p *Portal) LastForm(endpoint string) url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	forms := p.forms[endpoint]
	if len(forms) == 0 {
		return nil
	}
	return forms[len(forms)-1]
}

func (p *Portal) Count(endpoint string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.forms[endpoint])
}

func (p *Portal) session(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie("sid")
	if err == nil {
		return cookie.Value
	}
	p.nextID++
	id := strconv.Itoa(p.nextID)
	http.SetCookie(w, &http.Cookie{Name: "sid", Value: id, Path: "/"})
	return id
}

func (p *Portal) writeJSON(w http.ResponseWriter, sid string, body map[string]any) {
	token := fmt.Sprintf("tok-%s-%d", sid, len(p.requests))
	p.tokens[sid] = token
	body["app_token"] = token
	w.Header().Set("Content-Type", "application/json")
	// the district portal prefixes its JSON with a BOM
	w.Write([]byte("\xEF\xBB\xBF"))
	err := json.NewEncoder(w).Encode(body)
	require.NoError(p.t, err)
}

func (p *Portal) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	sid := p.session(w, r)
	require.NoError(p.t, r.ParseForm())

	endpoint := r.URL.Path
	if page := r.URL.Query().Get("p"); page != "" {
		endpoint = page
	}
	if action := r.FormValue("action_code"); action != "" {
		endpoint = action
	}
	p.requests = append(p.requests, endpoint)
	if r.Method == http.MethodPost {
		p.forms[endpoint] = append(p.forms[endpoint], r.PostForm)
	}

	if doc, ok := p.Documents[r.URL.Path]; ok && r.Method == http.MethodGet {
		w.Write(doc)
		return
	}
	if strings.HasPrefix(r.URL.Path, HighCourtPath) {
		p.serveHighCourt(w, r, sid, endpoint)
		return
	}
	p.serveDistrict(w, r, sid, endpoint)
}

func (p *Portal) serveCaptcha(w http.ResponseWriter, sid string) {
	p.answers[sid] = "ans" + sid
	p.issued = append(p.issued, p.answers[sid])
	w.Header().Set("Content-Type", "image/png")
	w.Write(CaptchaImage)
}

func (p *Portal) serveDistrict(w http.ResponseWriter, r *http.Request, sid, endpoint string) {
	switch endpoint {
	case "/ecourtindia_v6/":
		token := "tok-" + sid + "-open"
		p.tokens[sid] = token
		fmt.Fprintf(w, `<html><body><input type="hidden" id="app_token" value="%s"></body></html>`, token)
		return
	case "/ecourtindia_v6/vendor/securimage/securimage_show.php":
		p.serveCaptcha(w, sid)
		return
	}

	if r.PostForm.Get("app_token") != p.tokens[sid] {
		p.writeJSON(w, sid, map[string]any{"status": 0, "errormsg": "Invalid Request"})
		return
	}

	switch endpoint {
	case "casestatus/fillDistrict":
		list := ""
		if r.PostForm.Get("state_code") == "13" {
			list = `<option value="">Select district</option><option value="1">Agra</option><option value="2">Aligarh</option>`
		}
		p.writeJSON(w, sid, map[string]any{"dist_list": list})
	case "casestatus/fillcomplex":
		p.writeJSON(w, sid, map[string]any{"complex_list": `<option value="0">Select court complex</option>` +
			`<option value="1130001@1,2,5@N">Agra District Court Complex</option>` +
			`<option value="1130002@7@Y">Agra Family Court</option>`})
	case "casestatus/fillCourtEstablishment":
		p.writeJSON(w, sid, map[string]any{"establishment_list": `<option value="7">Principal Judge Family Court</option>`})
	case "casestatus/set_data":
		p.writeJSON(w, sid, map[string]any{"status": 1})
	case "cause_list/fillCauseList":
		p.writeJSON(w, sid, map[string]any{"cause_list": `<option value="">Select court</option>` +
			`<option value="D">---Civil Courts---</option><option value="1^2">2-Civil Judge Senior Division</option>` +
			`<option value="D">---Criminal Courts---</option><option value="5^1">1-Chief Judicial Magistrate</option>`})
	case "casestatus/fillCaseType":
		p.writeJSON(w, sid, map[string]any{"casetype_list": `<option value="">Select case type</option>` +
			`<option value="Select case type">Select case type</option><option value="7">O.S. - Original Suit</option>`})
	case "casestatus/getCaptcha":
		p.writeJSON(w, sid, map[string]any{"div_captcha": `<div><img id="captcha_image" src="/ecourtindia_v6/vendor/securimage/securimage_show.php?a1b2"></div>`})
	case "cause_list/submitCauseList":
		if r.PostForm.Get("cause_list_captcha_code") != p.answers[sid] {
			p.writeJSON(w, sid, map[string]any{"status": 0, "error": "Invalid Captcha"})
			return
		}
		p.writeJSON(w, sid, map[string]any{"status": 1, "case_data": `<table>
<tr><th>Sr No</th><th>Case Number</th><th>Party Name</th></tr>
<tr><td>1</td><td>O.S./120/2023</td><td>RAMESH KUMAR Vs SURESH CHAND</td></tr>
<tr><td>2</td><td>M.A.C.T./45/2022</td><td>ANITA DEVI Vs UNITED INDIA INSURANCE</td></tr>
</table>`})
	case "casestatus/submitCaseNo":
		if r.PostForm.Get("case_captcha_code") != p.answers[sid] {
			p.writeJSON(w, sid, map[string]any{"status": 0, "errormsg": "Invalid Captcha..."})
			return
		}
		p.writeJSON(w, sid, map[string]any{"status": "1", "case_data": `<table><tr><td>O.S./120/2023</td>` +
			`<td><a href="#" onclick="viewHistory(120,'UPAG010012342023',3,'',1,'13','1','1130002','CScaseNumber')">View</a></td></tr></table>`})
	case "home/viewHistory":
		p.writeJSON(w, sid, map[string]any{"status": 1, "data_list": `<table class="case_details_table">
<tr><td>Case Type</td><td>O.S. - Original Suit</td></tr>
<tr><td>Filing Number</td><td>200/2023</td><td>Filing Date</td><td>02-02-2023</td></tr>
</table>
<table class="order_table"><tr><td>Order Number</td><td>Order Date</td><td>Order Details</td></tr>
<tr><td>1</td><td>10-03-2023</td><td><a onclick="displayPdf('home/display_pdf&filename=/orders/2023/order_1.pdf&caseno=OS/120/2023&court_code=3&appFlag=&normal_v=1')">Copy of order</a></td></tr>
</table>`})
	case "home/display_pdf":
		p.writeJSON(w, sid, map[string]any{"order": "reports/order_1.pdf"})
	default:
		http.NotFound(w, r)
	}
}

func (p *Portal) serveHighCourt(w http.ResponseWriter, r *http.Request, sid, endpoint string) {
	switch endpoint {
	case "/hcservices/main.php":
		w.Write([]byte("<html>hcservices</html>"))
	case "/hcservices/securimage/securimage_show.php":
		p.serveCaptcha(w, sid)
	case "fillCaseType":
		w.Write([]byte("\xEF\xBB\xBF" + p.HighCourtCaseTypes))
	case "fillHCBench":
		w.Write([]byte("0~Select Bench#1~Principal Seat at Jodhpur#2~Bench at Jaipur#"))
	case "showRecords":
		w.Header().Set("Content-Type", "application/json")
		if r.PostForm.Get("captcha") != p.answers[sid] {
			w.Write([]byte(`{"Error":"Invalid Captcha","con":""}`))
			return
		}
		if r.PostForm.Get("case_no") == "404" {
			w.Write([]byte(`{"Error":"Record Not Found"}`))
			return
		}
		con, _ := json.Marshal([]string{`[{"case_no":201100012342023,"cino":"DLHC010012342023"}]`})
		fmt.Fprintf(w, `{"Error":"","con":%s}`, con)
	case "/hcservices/cases_qry/o_civil_case_history.php":
		w.Write([]byte(`<html><table class="case_details_table"><tr><td>Case Type</td><td>W.P.(C)</td><td>Filing Number</td><td>1234/2023</td></tr></table>
<span class="Petitioner_Advocate_table">1) RAJESH SHARMA<br>Advocate - MR. A K SINGH</span>
<span class="Respondent_Advocate_table">1) UNION OF INDIA</span>
<table class="order_table"><tr><td>Order Number</td><td>Order on</td><td>Judge</td><td>Order Date</td><td>Order Details</td></tr>
<tr><td>1</td><td>Order</td><td>HON'BLE MR. JUSTICE X</td><td>05-01-2024</td><td><a href="cases/order_7.pdf">View</a></td></tr></table></html>`))
	case "showCauseList":
		if r.PostForm.Get("captcha") != p.answers[sid] {
			w.Write([]byte("Invalid Captcha"))
			return
		}
		w.Write([]byte(p.HighCourtCauseList))
	default:
		http.NotFound(w, r)
	}
}
