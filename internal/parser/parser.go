// Package parser turns portal HTML and text fragments into records. Every
// extractor tolerates missing or malformed markup: what cannot be read is
// left out of the result and reported as a warning, never returned as an error.
package parser

import (
	"ecourts-backend/internal/components/assert"
	"ecourts-backend/internal/components/telemetry"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("ecourts.parser")

const (
	report_parser_document        = "parser.document"
	report_parser_case_history    = "parser.case-history"
	report_parser_case_basic      = "parser.case-basic"
	report_parser_hc_case_history = "parser.hc-case-history"
	report_parser_causelist_rows  = "parser.causelist-rows"
	report_parser_hc_causelist    = "parser.hc-causelist"
)

type Parser struct {
	tel telemetry.API
}

func New(tel telemetry.API) Parser {
	assert.NotNil(tel)
	return Parser{tel: telemetry.NewScopedAPI("parser", tel)}
}

func (p Parser) document(fragment string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		// x/net/html only fails on reader errors, which a strings.Reader never returns.
		p.tel.ReportBroken(report_parser_document, err)
		doc, _ = goquery.NewDocumentFromReader(strings.NewReader(""))
	}
	return doc
}
