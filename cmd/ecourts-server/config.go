package main

import (
	"ecourts-backend/internal/attachments"
	"ecourts-backend/internal/captcha"
	"ecourts-backend/internal/components/chrono"
	"ecourts-backend/internal/components/telemetry"
	"ecourts-backend/internal/scrapers/ecourts"
	"ecourts-backend/internal/service"
	"ecourts-backend/internal/sessions"
	"ecourts-backend/pkg/restyutil"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

type AttachmentsConfig struct {
	// Dir mirrors cached documents to disk when set.
	Dir        string `json:"dir"`
	MaxEntries int    `json:"max_entries"`
	TTLMinutes int    `json:"ttl_minutes"`
	// URLPrefix is where clients fetch cached documents from, keys are appended to it.
	URLPrefix string `json:"url_prefix"`
}

type PortalConfig struct {
	TimeoutSeconds int     `json:"timeout_seconds"`
	RatePerSecond  float64 `json:"rate_per_second"`
	Burst          int     `json:"burst"`
	// BulkPauseMs is the pause between cause-list downloads, negative disables it.
	BulkPauseMs int `json:"bulk_pause_ms"`
	// BaseURLs overrides the portal of a variant, keyed by variant name.
	BaseURLs map[string]string `json:"base_urls"`
	// DumpDir receives every raw portal exchange, for debugging markup changes.
	DumpDir string `json:"dump_dir"`
}

type CaptchaConfig struct {
	// TesseractPath is the tesseract binary, OCR guesses are disabled when empty.
	TesseractPath  string `json:"tesseract_path"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

type SessionsConfig struct {
	ActiveTTLMinutes  int `json:"active_ttl_minutes"`
	RetiredTTLMinutes int `json:"retired_ttl_minutes"`
	RetiredMax        int `json:"retired_max"`
}

type Config struct {
	Listen      string            `json:"listen"`
	Database    string            `json:"database"`
	Attachments AttachmentsConfig `json:"attachments"`
	Portal      PortalConfig      `json:"portal"`
	Captcha     CaptchaConfig     `json:"captcha"`
	Sessions    SessionsConfig    `json:"sessions"`
}

func (c Config) listen() string {
	if c.Listen == "" {
		return "0.0.0.0:5000"
	}
	return c.Listen
}

func (c AttachmentsConfig) options() attachments.StoreOptions {
	return attachments.StoreOptions{
		Dir:        c.Dir,
		MaxEntries: c.MaxEntries,
		TTL:        time.Duration(c.TTLMinutes) * time.Minute,
	}
}

func (c CaptchaConfig) guesser(tel telemetry.API) captcha.TextGuesser {
	if c.TesseractPath == "" {
		return captcha.Nop{}
	}
	return captcha.NewTesseract(c.TesseractPath, time.Duration(c.TimeoutSeconds)*time.Second, tel)
}

func (c Config) serviceOptions(clock chrono.TimeAPI, tel telemetry.API) ([]service.Option, error) {
	sessionOpts := ecourts.SessionOptions{
		Timeout:       time.Duration(c.Portal.TimeoutSeconds) * time.Second,
		RatePerSecond: rate.Limit(c.Portal.RatePerSecond),
		Burst:         c.Portal.Burst,
	}
	if c.Portal.DumpDir != "" {
		dump, err := restyutil.NewDirOutput(c.Portal.DumpDir)
		if err != nil {
			return nil, fmt.Errorf("portal.dump_dir: %w", err)
		}
		sessionOpts.Dump = dump
	}

	options := []service.Option{
		service.WithTime(clock),
		service.WithTelemetry(tel),
		service.WithGuesser(c.Captcha.guesser(tel)),
		service.WithSessionOptions(sessionOpts),
		service.WithSessions(sessions.Options{
			ActiveTTL:  time.Duration(c.Sessions.ActiveTTLMinutes) * time.Minute,
			RetiredTTL: time.Duration(c.Sessions.RetiredTTLMinutes) * time.Minute,
			RetiredMax: c.Sessions.RetiredMax,
		}),
	}
	if c.Attachments.URLPrefix != "" {
		options = append(options, service.WithAttachmentPrefix(c.Attachments.URLPrefix))
	}
	if c.Portal.BulkPauseMs != 0 {
		options = append(options, service.WithBulkPause(time.Duration(c.Portal.BulkPauseMs)*time.Millisecond))
	}

	descriptors := ecourts.Descriptors()
	for name, base := range c.Portal.BaseURLs {
		variant, err := ecourts.ParseVariant(name)
		if err != nil {
			return nil, fmt.Errorf("portal.base_urls: %w", err)
		}
		options = append(options, service.WithDescriptors(descriptors[variant].WithBaseURL(base)))
	}
	return options, nil
}
