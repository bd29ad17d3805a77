package ecourts

import (
	"context"
	"ecourts-backend/internal/attachments"
	"ecourts-backend/internal/parser"
	"fmt"
	"strings"
)

// Document is a downloaded attachment as the portal served it. Filename is
// only known for references that carry one.
type Document struct {
	Body     []byte
	Filename string
}

// FetchAttachment downloads the document behind an order or cause-list
// reference through this client's session. Three kinds of reference exist:
//   - a displayPdf('endpoint&k=v...') onclick, posted back to the portal which
//     either answers with the PDF or with a JSON locator to GET;
//   - a link relative to the portal base;
//   - an absolute URL.
//
// The body is returned as is, classifying it is up to the caller.
func (c *Client) FetchAttachment(ctx context.Context, ref string) (Document, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Document{}, fmt.Errorf("%w: empty attachment reference", ErrRemote)
	}

	directive, ok := parser.ParseDisplayPdf(ref)
	if !ok {
		body, err := c.session.Get(ctx, ref)
		if err != nil {
			return Document{}, fmt.Errorf("download attachment: %w", err)
		}
		return Document{Body: body}, nil
	}

	err := c.ensureOpen(ctx)
	if err != nil {
		return Document{}, err
	}
	filename, _ := directive.Filename()

	body, err := c.session.PostForm(ctx, "?p="+directive.Endpoint, directive.Params)
	if err != nil {
		return Document{}, fmt.Errorf("display pdf: %w", err)
	}
	if attachments.IsPDF(body) {
		return Document{Body: body, Filename: filename}, nil
	}

	payload, err := DecodePayload(body)
	if err != nil {
		// an HTML notice such as "order not uploaded", left to the caller
		c.tel.ReportDebug("display pdf answered with a non-json body", len(body))
		return Document{Body: body, Filename: filename}, nil
	}
	c.session.Refresh(payload)
	order, ok := payload.String("order")
	if !ok || order == "" {
		c.tel.ReportWarning(report_client_download, "display pdf answer has no order path")
		return Document{}, fmt.Errorf("%w: display pdf answer has no order path", ErrRemote)
	}

	body, err = c.session.Get(ctx, order)
	if err != nil {
		return Document{}, fmt.Errorf("download generated pdf: %w", err)
	}
	return Document{Body: body, Filename: filename}, nil
}
