package telemetry

import (
	"strings"
	"sync"
)

// Report is a single call captured by RecordingAPI.
type Report struct {
	Kind   string
	ID     string
	Params []any
}

// RecordingAPI keeps every report in memory, it exists for tests that assert on
// degraded paths which are otherwise silent to the caller.
type RecordingAPI struct {
	mu      sync.Mutex
	reports []Report
}

func (r *RecordingAPI) add(kind, id string, params []any) {
	r.mu.Lock()
	r.reports = append(r.reports, Report{Kind: kind, ID: id, Params: params})
	r.mu.Unlock()
}

func (r *RecordingAPI) ReportBroken(id string, params ...any)  { r.add("broken", id, params) }
func (r *RecordingAPI) ReportWarning(id string, params ...any) { r.add("warning", id, params) }
func (r *RecordingAPI) ReportDebug(msg string, params ...any)  {}
func (r *RecordingAPI) ReportCount(id string, count int64)     { r.add("count", id, []any{count}) }

// Find returns every report of the given kind whose id ends with suffix.
func (r *RecordingAPI) Find(kind, suffix string) []Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Report
	for _, rep := range r.reports {
		if rep.Kind == kind && strings.HasSuffix(rep.ID, suffix) {
			out = append(out, rep)
		}
	}
	return out
}

func (r *RecordingAPI) Broken() []Report {
	return r.Find("broken", "")
}
