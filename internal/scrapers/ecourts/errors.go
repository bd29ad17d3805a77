package ecourts

import "errors"

var (
	// ErrTransport wraps network failures, timeouts and HTTP error statuses.
	ErrTransport = errors.New("portal transport failed")
	// ErrInvalidSession is returned when a client is used after its one verify attempt.
	ErrInvalidSession = errors.New("invalid or consumed session")
	ErrInvalidCaptcha = errors.New("invalid captcha")
	// ErrNoRecord is the portal's "nothing found" answer, a normal outcome.
	ErrNoRecord = errors.New("no record found")
	// ErrRemote is an answer the portal gave that could not be interpreted.
	ErrRemote = errors.New("unexpected portal response")
	// ErrCaptchaBound is returned for hierarchy lookups once a captcha has been
	// issued, any further lookup would invalidate it.
	ErrCaptchaBound = errors.New("session is bound to an issued captcha")
	ErrUnsupported  = errors.New("operation not supported by this portal")
)
