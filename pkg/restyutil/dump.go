// Package restyutil dumps the raw HTTP exchanges of a resty client, which is
// how portal markup changes get diagnosed.
package restyutil

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Output receives one formatted exchange at a time.
type Output interface {
	Write(id string, contents string)
}

var tracer = otel.Tracer("ecourts/restyutil")

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// exchangeID names an exchange after its method and path,
// "POST /cases/s_casetype_qry.php" becomes "post_cases_s_casetype_qry_php".
func exchangeID(req *resty.Request) string {
	path := req.URL
	if req.RawRequest != nil {
		path = req.RawRequest.URL.Path
	}
	name := strings.ToLower(req.Method + " " + path)
	return strings.Trim(unsafeName.ReplaceAllString(name, "_"), "_")
}

// Instrument traces every request of client and, when output is non-nil,
// writes each completed exchange to it.
func Instrument(client *resty.Client, output Output) {
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		ctx, _ := tracer.Start(
			req.Context(),
			fmt.Sprintf("http %s", req.Method),
			trace.WithSpanKind(trace.SpanKindClient),
		)
		req.SetContext(ctx)
		return nil
	})

	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		span := trace.SpanFromContext(res.Request.Context())
		defer span.End()

		span.SetAttributes(
			attribute.String("http.method", res.Request.Method),
			attribute.String("http.url", res.Request.URL),
			attribute.Int("http.status_code", res.StatusCode()),
		)
		if res.StatusCode() >= 400 {
			span.SetStatus(codes.Error, res.Status())
		}

		if output != nil && res.Request.RawRequest != nil {
			output.Write(exchangeID(res.Request), formatExchange(res))
		}
		return nil
	})

	client.OnError(func(req *resty.Request, err error) {
		span := trace.SpanFromContext(req.Context())
		defer span.End()

		span.SetAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", req.URL),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
	})
}
