package telemetry

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	report_resty_request  = "resty.request"
	report_resty_response = "resty.response"
	report_resty_status   = "resty.status"
)

type restyHooks struct {
	tel       API
	idcounter *uint64
}

// InstrumentResty reports every request made by client along with its
// duration, non-2xx statuses are reported as warnings and transport errors as broken.
func InstrumentResty(client *resty.Client, tel API) {
	var idcounter uint64
	h := restyHooks{tel: tel, idcounter: &idcounter}

	client.OnBeforeRequest(h.onBeforeRequest)
	client.OnAfterResponse(h.onAfterResponse)
	client.OnError(h.onError)
}

type reqCtxKeyType int

var reqCtxKey reqCtxKeyType

type reqCtx struct {
	id uint64
	// only the difference matters, so this does not go through chrono.
	startTime time.Time
}

func (h restyHooks) onBeforeRequest(_ *resty.Client, req *resty.Request) error {
	id := atomic.AddUint64(h.idcounter, 1)
	ctx := context.WithValue(req.Context(), reqCtxKey, reqCtx{
		id:        id,
		startTime: time.Now(),
	})
	h.tel.ReportDebug(report_resty_request, id, req.Method, req.URL)
	req.SetContext(ctx)
	return nil
}

func (h restyHooks) elapsed(req *resty.Request) (uint64, time.Duration) {
	rc, ok := req.Context().Value(reqCtxKey).(reqCtx)
	if !ok {
		return 0, 0
	}
	return rc.id, time.Since(rc.startTime)
}

func (h restyHooks) onAfterResponse(_ *resty.Client, res *resty.Response) error {
	id, duration := h.elapsed(res.Request)
	h.tel.ReportDebug(report_resty_response, id, duration.String(), res.Status())
	if res.StatusCode() >= 400 {
		h.tel.ReportWarning(report_resty_status, res.Request.Method, res.Request.URL, res.StatusCode())
	}
	return nil
}

func (h restyHooks) onError(req *resty.Request, err error) {
	_, duration := h.elapsed(req)
	h.tel.ReportBroken(report_resty_response, err, req.Method, req.URL, duration)
}
