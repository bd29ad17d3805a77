package parser

import (
	"ecourts-backend/internal/records"
	"ecourts-backend/pkg/htmlutil"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SelectOptions reads the <option> elements of a dropdown fragment. Options
// without a value or label, or whose value is in skip, are dropped.
func (p Parser) SelectOptions(fragment string, skip ...string) []records.Option {
	doc := p.document(fragment)
	out := []records.Option{}
	doc.Find("option").Each(func(_ int, opt *goquery.Selection) {
		value := htmlutil.Attr(opt, "value")
		name := htmlutil.CleanText(opt)
		if value == "" || name == "" || value == "0" {
			return
		}
		for _, s := range skip {
			if value == s {
				return
			}
		}
		out = append(out, records.Option{Code: value, Name: name})
	})
	return out
}

// CourtNumbers reads the judge dropdown of the district cause list. Options
// valued "D" are group headers that qualify every following court as civil
// or criminal.
func (p Parser) CourtNumbers(fragment string) []records.Option {
	doc := p.document(fragment)
	out := []records.Option{}
	suffix := ""
	doc.Find("option").Each(func(_ int, opt *goquery.Selection) {
		value := htmlutil.Attr(opt, "value")
		name := htmlutil.CleanText(opt)
		if strings.ToUpper(value) == "D" {
			switch {
			case strings.Contains(name, "Criminal") || strings.Contains(name, "criminal"):
				suffix = " (Criminal)"
			case strings.Contains(name, "Civil") || strings.Contains(name, "civil"):
				suffix = " (Civil)"
			default:
				suffix = ""
			}
			return
		}
		if value == "" || value == "0" {
			return
		}
		out = append(out, records.Option{Code: value, Name: name + suffix})
	})
	return out
}

// splitDelimited splits the `code~name#code~name` format used by the
// High Court endpoints.
func splitDelimited(body string) []records.Option {
	var out []records.Option
	for _, item := range strings.Split(body, "#") {
		item = strings.TrimSpace(item)
		code, name, ok := strings.Cut(item, "~")
		if !ok {
			continue
		}
		out = append(out, records.Option{
			Code: strings.TrimSpace(code),
			Name: strings.TrimSpace(name),
		})
	}
	return out
}

// HighCourtCaseTypes parses a fillCaseType response. Names often carry their
// own code as a trailing "-<code>", which is removed.
func HighCourtCaseTypes(body string) []records.Option {
	body = strings.TrimSpace(body)
	if !strings.Contains(body, "#") || !strings.Contains(body, "~") {
		return nil
	}
	var out []records.Option
	for _, opt := range splitDelimited(body) {
		if opt.Code == "0" || strings.Contains(strings.ToLower(opt.Name), "select") {
			continue
		}
		if idx := strings.LastIndex(opt.Name, "-"); idx >= 0 {
			if strings.TrimSpace(opt.Name[idx+1:]) == opt.Code {
				opt.Name = strings.TrimSpace(opt.Name[:idx])
			}
		}
		if opt.Code != "" && opt.Name != "" {
			out = append(out, opt)
		}
	}
	return out
}

// HighCourtBenches parses a fillHCBench response.
func HighCourtBenches(body string) []records.Option {
	out := []records.Option{}
	for _, opt := range splitDelimited(body) {
		if opt.Code != "0" && opt.Name != "" {
			out = append(out, opt)
		}
	}
	return out
}

// CaptchaImageSrc finds the captcha <img> inside the getCaptcha fragment.
func (p Parser) CaptchaImageSrc(fragment string) (string, bool) {
	src := htmlutil.Attr(p.document(fragment).Find("img#captcha_image"), "src")
	return src, src != ""
}

// AppToken reads the anti-forgery token embedded in a portal page.
func (p Parser) AppToken(page string) string {
	return htmlutil.Attr(p.document(page).Find("input#app_token"), "value")
}

var viewHistoryCall = regexp.MustCompile(`viewHistory\((.*?)\)`)
var viewHistoryArg = regexp.MustCompile(`'([^']*)'|(\d+)`)

// HistoryLocator holds the arguments of the viewHistory(...) link in a case
// search result, in the order the portal lists them.
type HistoryLocator struct {
	CaseNo      string
	Cino        string
	CourtCode   string
	HideParty   string
	SearchFlag  string
	StateCode   string
	DistCode    string
	ComplexCode string
	SearchBy    string
}

// ViewHistoryArgs extracts the history locator from a submitCaseNo result.
func (p Parser) ViewHistoryArgs(fragment string) (HistoryLocator, bool) {
	onclick := ""
	p.document(fragment).Find("a[onclick]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		v := htmlutil.Attr(a, "onclick")
		if strings.Contains(v, "viewHistory") {
			onclick = v
			return false
		}
		return true
	})
	if onclick == "" {
		return HistoryLocator{}, false
	}

	call := viewHistoryCall.FindStringSubmatch(onclick)
	if len(call) < 2 {
		return HistoryLocator{}, false
	}
	var args []string
	for _, m := range viewHistoryArg.FindAllStringSubmatch(call[1], -1) {
		if m[1] != "" {
			args = append(args, m[1])
		} else {
			args = append(args, m[2])
		}
	}
	if len(args) < 9 {
		return HistoryLocator{}, false
	}
	return HistoryLocator{
		CaseNo:      args[0],
		Cino:        args[1],
		CourtCode:   args[2],
		HideParty:   args[3],
		SearchFlag:  args[4],
		StateCode:   args[5],
		DistCode:    args[6],
		ComplexCode: args[7],
		SearchBy:    args[8],
	}, true
}

var displayPdfCall = regexp.MustCompile(`displayPdf\('([^']+)'\)`)

// PdfDirective is a displayPdf('endpoint&k=v&...') onclick broken into the
// portal endpoint and its form parameters.
type PdfDirective struct {
	Endpoint string
	Params   url.Values
}

// Filename is the sanitized basename of the directive's filename parameter.
func (d PdfDirective) Filename() (string, bool) {
	name := d.Params.Get("filename")
	if name == "" {
		return "", false
	}
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	return unsafeFilenameChars.ReplaceAllString(name, "_"), true
}

var unsafeFilenameChars = regexp.MustCompile(`[^\p{L}\p{N}_\-.]`)

func ParseDisplayPdf(onclick string) (PdfDirective, bool) {
	m := displayPdfCall.FindStringSubmatch(onclick)
	if len(m) < 2 {
		return PdfDirective{}, false
	}
	parts := strings.Split(m[1], "&")
	d := PdfDirective{Endpoint: parts[0], Params: url.Values{}}
	for _, part := range parts[1:] {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		d.Params.Set(key, value)
	}
	return d, true
}
