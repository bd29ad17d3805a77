package service

import (
	"context"
	"ecourts-backend/internal/attachments"
	"ecourts-backend/internal/history"
	"ecourts-backend/internal/scrapers/ecourts"
	"ecourts-backend/internal/sessions"
	"errors"
	"fmt"
	"strings"
)

// minProxiedSize is the size below which a proxied body is taken for a portal
// notice rather than a document.
const minProxiedSize = 1000

// Attachment returns a cached document and where it was found.
func (s Service) Attachment(key string) (attachments.Attachment, string, error) {
	if strings.TrimSpace(key) == "" {
		return attachments.Attachment{}, "", fmt.Errorf("%w: empty attachment key", ErrBadRequest)
	}
	return s.attachments.Get(key)
}

// ProxyAttachment downloads a portal document on demand. It goes through the
// search session when one is given and still known, so the portal sees the
// cookies it issued the link under. Otherwise a fresh session is tried, which
// the portal usually rejects with a short notice.
func (s Service) ProxyAttachment(ctx context.Context, sessionKey, ref string) (attachments.Attachment, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return attachments.Attachment{}, fmt.Errorf("%w: a document url is required", ErrBadRequest)
	}

	var doc ecourts.Document
	fetch := func(f *flow) error {
		var err error
		doc, err = f.client.FetchAttachment(ctx, ref)
		return err
	}

	viaSession := false
	err := sessions.ErrNotFound
	if sessionKey != "" {
		err = s.sessions.WithAttachable(sessionKey, fetch)
		viaSession = !errors.Is(err, sessions.ErrNotFound)
	}
	if !viaSession {
		client, cerr := s.newClient(ecourts.HighCourtCauseList)
		if cerr != nil {
			return attachments.Attachment{}, cerr
		}
		doc, err = client.FetchAttachment(ctx, ref)
	}
	if err != nil {
		return attachments.Attachment{}, err
	}

	content, err := classifyProxied(doc.Body, viaSession)
	if err != nil {
		s.tel.ReportDebug("proxied document rejected", report_service_proxy, len(doc.Body), err)
		return attachments.Attachment{}, err
	}

	filename := doc.Filename
	if filename == "" {
		filename = "causelist_" + attachments.ShortHash(ref) + ".pdf"
	}
	return attachments.Attachment{
		Filename: filename,
		Content:  content,
		Created:  s.time.Now(),
	}, nil
}

// classifyProxied tells a short portal notice apart from a document.
func classifyProxied(body []byte, viaSession bool) ([]byte, error) {
	if len(body) < minProxiedSize {
		if attachments.NotUploaded(body) {
			return nil, attachments.ErrNotUploadedYet
		}
		if !viaSession {
			return nil, attachments.ErrSessionExpired
		}
	}
	return attachments.Validate(body)
}

// History returns the latest logged queries, newest first.
func (s Service) History(ctx context.Context, limit int) ([]history.Entry, error) {
	entries, err := s.history.Recent(ctx, limit)
	if err != nil {
		s.tel.ReportBroken(report_service_history, err)
		return nil, err
	}
	return entries, nil
}

// CacheStatus describes the attachment cache and the session registry.
type CacheStatus struct {
	attachments.Status
	ActiveSessions  int `json:"active_sessions"`
	RetiredSessions int `json:"retired_sessions"`
}

func (s Service) CacheStatus() CacheStatus {
	active, retired := s.sessions.Counts()
	return CacheStatus{
		Status:          s.attachments.Status(),
		ActiveSessions:  active,
		RetiredSessions: retired,
	}
}
