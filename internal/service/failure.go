package service

import (
	"context"
	"ecourts-backend/internal/attachments"
	"ecourts-backend/internal/scrapers/ecourts"
	"ecourts-backend/internal/sessions"
	"errors"
)

// ErrBadRequest marks errors caused by the caller's input.
var ErrBadRequest = errors.New("bad request")

type Reason string

const (
	ReasonTransport      Reason = "transport_error"
	ReasonInvalidSession Reason = "invalid_session"
	ReasonInvalidCaptcha Reason = "invalid_captcha"
	ReasonNoRecord       Reason = "no_record"
	ReasonRemote         Reason = "remote_error"
	ReasonNotAPdf        Reason = "not_a_pdf"
	ReasonNotUploaded    Reason = "not_uploaded_yet"
	ReasonSessionExpired Reason = "session_expired"
	ReasonNotFound       Reason = "not_found"
	ReasonBadRequest     Reason = "bad_request"
	ReasonInternal       Reason = "internal"
)

// Failure is the structured form of an error as shown to callers.
type Failure struct {
	Reason  Reason `json:"reason"`
	Message string `json:"error"`
}

func (f Failure) Error() string {
	return string(f.Reason) + ": " + f.Message
}

// Classify maps err onto the failure taxonomy. Errors outside of it are
// internal and their text is not exposed.
func Classify(err error) Failure {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, ecourts.ErrUnsupported):
		return Failure{ReasonBadRequest, err.Error()}
	case errors.Is(err, ecourts.ErrInvalidCaptcha):
		return Failure{ReasonInvalidCaptcha, "Invalid captcha, request a new one and try again"}
	case errors.Is(err, ecourts.ErrInvalidSession),
		errors.Is(err, ecourts.ErrCaptchaBound),
		errors.Is(err, sessions.ErrNotFound):
		return Failure{ReasonInvalidSession, "Invalid or expired session, start a new search"}
	case errors.Is(err, ecourts.ErrNoRecord):
		return Failure{ReasonNoRecord, "No records found"}
	case errors.Is(err, attachments.ErrNotUploadedYet):
		return Failure{ReasonNotUploaded, "The document has not been uploaded to the portal yet"}
	case errors.Is(err, attachments.ErrSessionExpired):
		return Failure{ReasonSessionExpired, "The portal session expired, search again to download this document"}
	case errors.Is(err, attachments.ErrNotFound):
		return Failure{ReasonNotFound, "Document not found or expired"}
	case errors.Is(err, attachments.ErrNotAPdf):
		return Failure{ReasonNotAPdf, "The portal did not return a PDF"}
	case errors.Is(err, ecourts.ErrTransport),
		errors.Is(err, context.DeadlineExceeded):
		return Failure{ReasonTransport, "Could not reach the portal, try again later"}
	case errors.Is(err, ecourts.ErrRemote):
		return Failure{ReasonRemote, "The portal returned an unexpected response"}
	}
	return Failure{ReasonInternal, "Internal error"}
}
