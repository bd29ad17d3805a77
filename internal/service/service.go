// Package service owns the process-wide state of the backend (session
// registry, attachment cache and history) and drives every search flow
// through it.
package service

import (
	"ecourts-backend/internal/attachments"
	"ecourts-backend/internal/captcha"
	"ecourts-backend/internal/components/assert"
	"ecourts-backend/internal/components/chrono"
	"ecourts-backend/internal/components/telemetry"
	"ecourts-backend/internal/history"
	"ecourts-backend/internal/pdftext"
	"ecourts-backend/internal/scrapers/ecourts"
	"ecourts-backend/internal/sessions"
	"fmt"
	"time"
)

const (
	report_service_lookup      = "service.lookup"
	report_service_begin       = "service.begin-search"
	report_service_download    = "service.download"
	report_service_bulk_scan   = "service.bulk-scan"
	report_service_history     = "service.history"
	report_service_proxy       = "service.proxy"
	report_service_pdfs_stored = "service.pdfs-stored"
)

// DefaultBulkPause is the pause between two downloads of a bulk cause-list scan.
const DefaultBulkPause = 300 * time.Millisecond

// DefaultAttachmentPrefix is prepended to attachment keys to form their URL.
const DefaultAttachmentPrefix = "/api/attachments/"

// Service is created once per process, every handler goes through it.
type Service struct {
	sessions    *sessions.Registry[*flow]
	attachments *attachments.Store
	history     history.Store

	descriptors      map[ecourts.Variant]ecourts.Descriptor
	sessionOpts      ecourts.SessionOptions
	guesser          captcha.TextGuesser
	extractor        pdftext.Extractor
	bulkPause        time.Duration
	attachmentPrefix string

	time chrono.TimeAPI
	tel  telemetry.API
}

type serviceConfig struct {
	sessions         sessions.Options
	descriptors      map[ecourts.Variant]ecourts.Descriptor
	sessionOpts      ecourts.SessionOptions
	guesser          captcha.TextGuesser
	extractor        pdftext.Extractor
	bulkPause        time.Duration
	attachmentPrefix string
	time             chrono.TimeAPI
	tel              telemetry.API
}

type Option func(cfg *serviceConfig)

// WithDescriptors replaces the production descriptor of the given variants.
func WithDescriptors(descriptors ...ecourts.Descriptor) Option {
	return func(cfg *serviceConfig) {
		for _, desc := range descriptors {
			cfg.descriptors[desc.Variant] = desc
		}
	}
}

func WithSessionOptions(opts ecourts.SessionOptions) Option {
	return func(cfg *serviceConfig) {
		cfg.sessionOpts = opts
	}
}

func WithGuesser(guesser captcha.TextGuesser) Option {
	return func(cfg *serviceConfig) {
		cfg.guesser = guesser
	}
}

func WithExtractor(extractor pdftext.Extractor) Option {
	return func(cfg *serviceConfig) {
		cfg.extractor = extractor
	}
}

// WithBulkPause sets the pause between bulk downloads, a negative value
// disables it.
func WithBulkPause(pause time.Duration) Option {
	return func(cfg *serviceConfig) {
		cfg.bulkPause = pause
	}
}

func WithAttachmentPrefix(prefix string) Option {
	return func(cfg *serviceConfig) {
		cfg.attachmentPrefix = prefix
	}
}

func WithTime(time chrono.TimeAPI) Option {
	return func(cfg *serviceConfig) {
		cfg.time = time
	}
}

func WithTelemetry(tel telemetry.API) Option {
	return func(cfg *serviceConfig) {
		cfg.tel = tel
	}
}

// WithSessions bounds the session registry.
func WithSessions(opts sessions.Options) Option {
	return func(cfg *serviceConfig) {
		cfg.sessions = opts
	}
}

func NewService(store *attachments.Store, hist history.Store, options ...Option) Service {
	assert.NotNil(store, "attachment store")

	cfg := serviceConfig{
		descriptors:      ecourts.Descriptors(),
		guesser:          captcha.Nop{},
		bulkPause:        DefaultBulkPause,
		attachmentPrefix: DefaultAttachmentPrefix,
		time:             chrono.NewStandardTime(),
		tel:              telemetry.SlogAPI{},
	}
	for _, opt := range options {
		opt(&cfg)
	}
	if cfg.extractor == nil {
		cfg.extractor = pdftext.NewGlyphs(cfg.tel)
	}

	return Service{
		sessions:         sessions.NewRegistry[*flow](cfg.sessions, cfg.time, cfg.tel),
		attachments:      store,
		history:          hist,
		descriptors:      cfg.descriptors,
		sessionOpts:      cfg.sessionOpts,
		guesser:          cfg.guesser,
		extractor:        cfg.extractor,
		bulkPause:        cfg.bulkPause,
		attachmentPrefix: cfg.attachmentPrefix,
		time:             cfg.time,
		tel:              telemetry.NewScopedAPI("service", cfg.tel),
	}
}

// StartSweeper drops abandoned searches on cron.
func (s Service) StartSweeper(cron chrono.CronAPI) error {
	return s.sessions.StartSweeper(cron)
}

func (s Service) newClient(variant ecourts.Variant) (*ecourts.Client, error) {
	desc, ok := s.descriptors[variant]
	if !ok {
		return nil, fmt.Errorf("%w: unknown portal variant %q", ErrBadRequest, variant)
	}
	client, err := ecourts.NewClient(desc, ecourts.Options{
		Session: s.sessionOpts,
		Guesser: s.guesser,
		Time:    s.time,
	}, s.tel)
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", variant, err)
	}
	return client, nil
}

func (s Service) attachmentURL(key string) string {
	return s.attachmentPrefix + key
}
