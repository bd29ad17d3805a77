package restyutil

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/go-resty/resty/v2"
)

func writeHeaders(out *strings.Builder, headers http.Header) {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range headers[k] {
			fmt.Fprintf(out, "%s: %s\n", k, v)
		}
	}
}

func requestBody(req *http.Request) string {
	if req.GetBody == nil {
		return ""
	}
	body, err := req.GetBody()
	if err != nil {
		return "<unreadable body: " + err.Error() + ">"
	}
	defer body.Close()
	raw, err := io.ReadAll(body)
	if err != nil {
		return "<unreadable body: " + err.Error() + ">"
	}
	return string(raw)
}

// formatExchange renders a request and its response the way they went over
// the wire, headers sorted so dumps of the same call diff cleanly.
func formatExchange(res *resty.Response) string {
	raw := res.Request.RawRequest
	var out strings.Builder

	out.WriteString("---- REQUEST ----\n\n")
	fmt.Fprintf(&out, "%s %s\n\n", res.Request.Method, res.Request.URL)
	writeHeaders(&out, raw.Header)
	out.WriteString("\n")
	out.WriteString(requestBody(raw))

	finalURL := res.Request.URL
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		finalURL = res.RawResponse.Request.URL.String()
	}
	out.WriteString("\n\n---- RESPONSE ----\n\n")
	fmt.Fprintf(&out, "%d %s\n\n", res.StatusCode(), finalURL)
	writeHeaders(&out, res.Header())
	out.WriteString("\n")
	out.WriteString(res.String())
	return out.String()
}
