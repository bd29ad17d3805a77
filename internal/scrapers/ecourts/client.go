// Package ecourts drives the eCourts portals: the High Court and district case
// status searches and their cause lists. One Client serves every portal, a
// Descriptor selects the endpoints and hierarchy of the variant.
package ecourts

import (
	"context"
	"ecourts-backend/internal/captcha"
	"ecourts-backend/internal/components/assert"
	"ecourts-backend/internal/components/chrono"
	"ecourts-backend/internal/components/telemetry"
	"ecourts-backend/internal/parser"
	"ecourts-backend/internal/records"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mazen160/go-random"
)

const (
	report_client_lookup   = "client.lookup"
	report_client_captcha  = "client.captcha"
	report_client_verify   = "client.verify"
	report_client_download = "client.download"
)

// State is where a client is in its one-shot lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateSessionOpen
	StateCaptchaIssued
	StateVerified
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateSessionOpen:
		return "session-open"
	case StateCaptchaIssued:
		return "captcha-issued"
	case StateVerified:
		return "verified"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

type Options struct {
	Session SessionOptions
	Guesser captcha.TextGuesser
	Time    chrono.TimeAPI
}

// Client is a single search flow against one portal variant. It is not safe
// for concurrent use.
type Client struct {
	desc    Descriptor
	session *Session
	parser  parser.Parser
	guesser captcha.TextGuesser
	time    chrono.TimeAPI
	tel     telemetry.API

	state     State
	selection Selection
}

func NewClient(desc Descriptor, opts Options, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)
	assert.NotEmptyStr(desc.BaseURL, "descriptor base url")

	tel = telemetry.NewScopedAPI("ecourts", tel)
	if opts.Guesser == nil {
		opts.Guesser = captcha.Nop{}
	}
	if opts.Time == nil {
		opts.Time = chrono.NewStandardTime()
	}

	session, err := NewSession(desc, opts.Session, tel)
	if err != nil {
		return nil, err
	}
	return &Client{
		desc:    desc,
		session: session,
		parser:  parser.New(tel),
		guesser: opts.Guesser,
		time:    opts.Time,
		tel:     tel,
	}, nil
}

func (c *Client) Variant() Variant {
	return c.desc.Variant
}

func (c *Client) State() State {
	return c.state
}

// Selection is the hierarchy the last captcha was issued for.
func (c *Client) Selection() Selection {
	return c.selection
}

// Open starts the portal session. Calling it on an open client does nothing.
func (c *Client) Open(ctx context.Context) error {
	if c.state != StateUninitialized {
		return nil
	}
	err := c.session.Open(ctx)
	if err != nil {
		return fmt.Errorf("open %s: %w", c.desc.Variant, err)
	}
	c.state = StateSessionOpen
	return nil
}

func (c *Client) ensureOpen(ctx context.Context) error {
	if c.state == StateUninitialized {
		return c.Open(ctx)
	}
	return nil
}

// Lookup fetches the options of one hierarchy level given the selection so
// far. Empty or malformed answers yield an empty list.
func (c *Client) Lookup(ctx context.Context, level Level, sel Selection) ([]records.Option, error) {
	if !c.desc.Supports(level) {
		return nil, fmt.Errorf("%w: %s has no %s lookup", ErrUnsupported, c.desc.Variant, level)
	}
	switch c.state {
	case StateCaptchaIssued:
		return nil, ErrCaptchaBound
	case StateVerified, StateFailed:
		return nil, ErrInvalidSession
	}
	err := c.ensureOpen(ctx)
	if err != nil {
		return nil, err
	}

	switch {
	case level == LevelCaseTypes && c.desc.Variant == HighCourtCase:
		return c.highCourtCaseTypes(ctx, sel)
	case level == LevelBenches:
		return c.highCourtBenches(ctx, sel)
	case level == LevelEstablishments && sel.Complex.Bypass:
		return []records.Option{}, nil
	case level == LevelJudges:
		return c.judges(ctx, sel)
	}

	lookup := c.desc.Lookups[level]
	form := url.Values{"state_code": {sel.State}}
	switch level {
	case LevelComplexes:
		form.Set("dist_code", sel.District)
	case LevelEstablishments:
		form.Set("dist_code", sel.District)
		form.Set("court_complex_code", sel.Complex.Code)
	case LevelCaseTypes:
		form.Set("dist_code", sel.District)
		form.Set("court_complex_code", sel.Complex.Code)
		form.Set("est_code", sel.Complex.EstablishmentCodes)
		form.Set("search_type", "c_no")
	}
	return c.optionList(ctx, level, lookup, form, c.parser.SelectOptions, "Select case type", "Select Case Type")
}

func (c *Client) optionList(
	ctx context.Context,
	level Level,
	lookup Lookup,
	form url.Values,
	parse func(fragment string, skip ...string) []records.Option,
	skip ...string,
) ([]records.Option, error) {
	payload, err := c.session.PostJSON(ctx, lookup.Endpoint, form)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", level, err)
	}
	fragment, ok := payload.First(lookup.Keys...)
	if !ok {
		c.tel.ReportWarning(report_client_lookup, string(level), "no option list in response")
		return []records.Option{}, nil
	}
	return parse(fragment, skip...), nil
}

func (c *Client) judges(ctx context.Context, sel Selection) ([]records.Option, error) {
	selectedEst := sel.EstablishmentCode()
	if sel.Complex.Bypass {
		selectedEst = ""
	}
	_, err := c.session.PostJSON(ctx, c.desc.SetData, url.Values{
		"complex_code":        {sel.Complex.Raw},
		"selected_state_code": {sel.State},
		"selected_dist_code":  {sel.District},
		"selected_est_code":   {selectedEst},
	})
	if err != nil {
		return nil, fmt.Errorf("set data: %w", err)
	}

	form := url.Values{
		"state_code":         {sel.State},
		"dist_code":          {sel.District},
		"court_complex_code": {sel.Complex.Code},
		"est_code":           {sel.EstablishmentCode()},
		"search_act":         {"undefined"},
	}
	courtNumbers := func(fragment string, _ ...string) []records.Option {
		return c.parser.CourtNumbers(fragment)
	}
	return c.optionList(ctx, LevelJudges, c.desc.Lookups[LevelJudges], form, courtNumbers)
}

func (c *Client) highCourtCaseTypes(ctx context.Context, sel Selection) ([]records.Option, error) {
	body, err := c.session.PostForm(ctx, c.desc.Lookups[LevelCaseTypes].Endpoint, url.Values{
		"court_code": {sel.Court},
		"state_code": {sel.State},
	})
	if err != nil {
		return nil, fmt.Errorf("lookup case types: %w", err)
	}
	types := parser.HighCourtCaseTypes(string(body))
	if len(types) == 0 {
		c.tel.ReportWarning(report_client_lookup, "case types fell back to defaults", sel.Court)
		return append([]records.Option(nil), DefaultHighCourtCaseTypes...), nil
	}
	return types, nil
}

func (c *Client) highCourtBenches(ctx context.Context, sel Selection) ([]records.Option, error) {
	body, err := c.session.PostForm(ctx, c.desc.Lookups[LevelBenches].Endpoint, url.Values{
		"action_code": {"fillHCBench"},
		"state_code":  {sel.State},
		"appFlag":     {"web"},
	})
	if err != nil {
		return nil, fmt.Errorf("lookup benches: %w", err)
	}
	return parser.HighCourtBenches(string(body)), nil
}

func (c *Client) captchaURL(ctx context.Context) (string, error) {
	if c.desc.CaptchaEmbedded {
		payload, err := c.session.PostJSON(ctx, c.desc.CaptchaEndpoint, url.Values{})
		if err != nil {
			return "", err
		}
		fragment, _ := payload.String("div_captcha")
		src, ok := c.parser.CaptchaImageSrc(fragment)
		if !ok {
			return "", fmt.Errorf("%w: no captcha image in response", ErrRemote)
		}
		return src, nil
	}

	suffix := strconv.FormatInt(c.time.Now().UnixMilli(), 10)
	if c.desc.CaptchaSuffix == SuffixRandom {
		s, err := random.String(8)
		if err != nil {
			c.tel.ReportWarning(report_client_captcha, "random suffix", err)
		} else {
			suffix = s
		}
	}
	return c.desc.CaptchaEndpoint + "?" + suffix, nil
}

// Captcha issues a challenge bound to this session for the given selection.
// Once issued, no further hierarchy lookups are allowed. Asking again replaces
// the previous challenge.
func (c *Client) Captcha(ctx context.Context, sel Selection) (captcha.Challenge, error) {
	switch c.state {
	case StateVerified, StateFailed:
		return captcha.Challenge{}, ErrInvalidSession
	}
	err := c.ensureOpen(ctx)
	if err != nil {
		return captcha.Challenge{}, err
	}

	src, err := c.captchaURL(ctx)
	if err != nil {
		c.tel.ReportBroken(report_client_captcha, err)
		return captcha.Challenge{}, fmt.Errorf("captcha: %w", err)
	}
	image, err := c.session.Get(ctx, src)
	if err != nil {
		return captcha.Challenge{}, fmt.Errorf("captcha image: %w", err)
	}

	c.state = StateCaptchaIssued
	c.selection = sel
	return captcha.NewChallenge(ctx, image, c.guesser), nil
}

// beginVerify moves the client out of CaptchaIssued. Every verify consumes the
// client whether it succeeds or not.
func (c *Client) beginVerify() error {
	if c.state != StateCaptchaIssued {
		return fmt.Errorf("%w: verify in state %s", ErrInvalidSession, c.state)
	}
	c.state = StateFailed
	return nil
}

func (c *Client) finishVerify(err error) error {
	if err == nil {
		c.state = StateVerified
		return nil
	}
	c.tel.ReportDebug("verify failed", string(c.desc.Variant), err)
	return err
}
