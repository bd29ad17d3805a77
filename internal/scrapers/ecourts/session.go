package ecourts

import (
	"bytes"
	"context"
	"ecourts-backend/internal/attachments"
	"ecourts-backend/internal/components/telemetry"
	"ecourts-backend/internal/parser"
	"ecourts-backend/pkg/restyutil"
	"encoding/json"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

const (
	report_session_open      = "session.open"
	report_session_post_json = "session.post-json"
)

// SessionOptions tune the transport of a portal session.
type SessionOptions struct {
	Timeout time.Duration
	// RatePerSecond limits requests per session, rate.Inf disables the limit.
	RatePerSecond rate.Limit
	Burst         int
	// Dump receives every raw exchange when set.
	Dump restyutil.Output
}

func (o SessionOptions) withDefaults() SessionOptions {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.RatePerSecond == 0 {
		o.RatePerSecond = 2
	}
	if o.Burst <= 0 {
		o.Burst = 2
	}
	return o
}

// Session is one cookie jar and anti-forgery token against a portal. It is not
// safe for concurrent use, every search flow owns its own.
type Session struct {
	Http  *resty.Client
	Base  *url.URL
	Token string

	desc   Descriptor
	parser parser.Parser
	tel    telemetry.API
}

func NewSession(desc Descriptor, opts SessionOptions, tel telemetry.API) (*Session, error) {
	opts = opts.withDefaults()

	base, err := url.Parse(desc.BaseURL)
	if err != nil {
		return nil, err
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(desc.BaseURL)
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)

	httpClient.SetHeaders(desc.Headers)
	httpClient.SetHeader("Origin", base.Scheme+"://"+base.Host)
	if desc.Referer != "" {
		ref, err := url.Parse(desc.Referer)
		if err != nil {
			return nil, err
		}
		httpClient.SetHeader("Referer", base.ResolveReference(ref).String())
	}
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(base.Hostname()))
	httpClient.SetTimeout(opts.Timeout)

	rateLimiter := rate.NewLimiter(opts.RatePerSecond, opts.Burst)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(httpClient, tel)
	restyutil.Instrument(httpClient, opts.Dump)

	return &Session{
		Http:   httpClient,
		Base:   base,
		desc:   desc,
		parser: parser.New(tel),
		tel:    tel,
	}, nil
}

// Resolve turns an endpoint or a portal-relative link into an absolute URL.
func (s *Session) Resolve(ref string) (string, error) {
	parsed, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("%w: bad url %q: %v", ErrRemote, ref, err)
	}
	return s.Base.ResolveReference(parsed).String(), nil
}

func (s *Session) check(op string, res *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrTransport, op, err)
	}
	if res.IsError() {
		return fmt.Errorf("%w: %s: status %d", ErrTransport, op, res.StatusCode())
	}
	return nil
}

// Open loads the portal's opening page so the session cookies are set, and
// reads the app_token out of it when the portal uses one.
func (s *Session) Open(ctx context.Context) error {
	target, err := s.Resolve(s.desc.OpenPath)
	if err != nil {
		return err
	}
	res, err := s.Http.R().SetContext(ctx).Get(target)
	err = s.check("open", res, err)
	if err != nil {
		return err
	}
	if s.desc.UsesToken {
		s.Token = s.parser.AppToken(string(res.Body()))
		if s.Token == "" {
			s.tel.ReportWarning(report_session_open, "no app_token on opening page")
		}
	}
	return nil
}

func (s *Session) withToken(form url.Values) url.Values {
	out := url.Values{}
	for k, v := range form {
		out[k] = v
	}
	if s.desc.UsesToken {
		out.Set("ajax_req", "true")
		out.Set("app_token", s.Token)
	}
	return out
}

// PostForm submits form to endpoint and returns the BOM-stripped body.
func (s *Session) PostForm(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	target, err := s.Resolve(endpoint)
	if err != nil {
		return nil, err
	}
	res, err := s.Http.R().
		SetContext(ctx).
		SetFormDataFromValues(s.withToken(form)).
		Post(target)
	err = s.check("post "+endpoint, res, err)
	if err != nil {
		return nil, err
	}
	return attachments.StripBOM(res.Body()), nil
}

// PostJSON submits form and decodes the JSON object the portal answers with.
// Any app_token in the answer replaces the session's.
func (s *Session) PostJSON(ctx context.Context, endpoint string, form url.Values) (Payload, error) {
	body, err := s.PostForm(ctx, endpoint, form)
	if err != nil {
		return nil, err
	}
	payload, err := DecodePayload(body)
	if err != nil {
		s.tel.ReportWarning(report_session_post_json, endpoint, err)
		return nil, fmt.Errorf("%w: %s: %v", ErrRemote, endpoint, err)
	}
	s.Refresh(payload)
	return payload, nil
}

// Refresh adopts the app_token carried by payload, if any.
func (s *Session) Refresh(payload Payload) {
	if token, ok := payload.String("app_token"); ok && token != "" {
		s.Token = token
	}
}

// Get fetches a portal-relative or absolute URL.
func (s *Session) Get(ctx context.Context, ref string) ([]byte, error) {
	target, err := s.Resolve(ref)
	if err != nil {
		return nil, err
	}
	res, err := s.Http.R().SetContext(ctx).Get(target)
	err = s.check("get", res, err)
	if err != nil {
		return nil, err
	}
	return res.Body(), nil
}

// Payload is a decoded JSON answer of a portal endpoint.
type Payload map[string]json.RawMessage

func DecodePayload(body []byte) (Payload, error) {
	var payload Payload
	err := json.Unmarshal(bytes.TrimSpace(attachments.StripBOM(body)), &payload)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// String reads key as a string, numbers are returned in their JSON form.
func (p Payload) String(key string) (string, bool) {
	raw, ok := p[key]
	if !ok {
		return "", false
	}
	return rawString(raw)
}

func rawString(raw json.RawMessage) (string, bool) {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s, true
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String(), true
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "null" {
		return "", false
	}
	return trimmed, true
}

// StatusOK reports whether the payload's status is 1 or "1".
func (p Payload) StatusOK() bool {
	status, ok := p.String("status")
	if !ok {
		return false
	}
	n, err := strconv.Atoi(status)
	return err == nil && n == 1
}

// First returns the value of the first key present and non-empty.
func (p Payload) First(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := p.String(k); ok && v != "" {
			return v, true
		}
	}
	return "", false
}
