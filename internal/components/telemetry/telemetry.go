package telemetry

import (
	"fmt"
)

// API is an abstraction over logging/metrics so that tests can assert on what got reported.
//
// note: fault injection point
type API interface {
	// ReportBroken reports a component that has broken in a way that should be addressed.
	//
	// The `id` identifies the **component** that broke, not the line of code. If an HTTP call
	// fails inside the district portal client's `FetchDistricts`, the id is `client.fetch-districts`
	// and the HTTP detail goes in params or in the wrapped error.
	//
	// Formatting rules:
	// 1) all lowercase
	// 2) use underscores for large components
	// 3) use dashes for methods part of a larger component
	//
	// ScopedAPI prefixes the package, so ids only need `<struct or intf>.<method>`.
	// Look at the `report_...` constants in each package for examples.
	ReportBroken(id string, params ...any)

	// ReportWarning reports something that is not necessarily broken but may be worth investigating,
	// a portal page missing a table it usually has is the common case.
	ReportWarning(id string, params ...any)

	// ReportDebug reports debug information that is dropped in production.
	ReportDebug(msg string, params ...any)

	// ReportCount reports the current count of an event. Counts are points over time, not to be summed.
	ReportCount(id string, count int64)
}

// ScopedAPI attaches a namespace to every report, like a prefixed sub-logger.
type ScopedAPI struct {
	namespace string
	inner     API
}

// NewScopedAPI creates a ScopedAPI out of a given namespace and another api.
func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(fmt.Sprintf("%s: %s", s.namespace, id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(fmt.Sprintf("%s: %s", s.namespace, id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(fmt.Sprintf("%s: %s", s.namespace, msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(fmt.Sprintf("%s: %s", s.namespace, id), count)
}
