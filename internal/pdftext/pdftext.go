// Package pdftext extracts line-oriented plain text from PDF documents.
package pdftext

import (
	"bytes"
	"context"
	"ecourts-backend/internal/components/assert"
	"ecourts-backend/internal/components/telemetry"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("ecourts.pdftext")

const report_extractor_page = "extractor.page"

// Extractor turns a PDF document into text with one visual line per line.
type Extractor interface {
	Extract(ctx context.Context, document []byte) (string, error)
}

// Glyphs is an Extractor that rebuilds lines from the positioned glyphs of
// each page.
type Glyphs struct {
	tel telemetry.API
}

func NewGlyphs(tel telemetry.API) Glyphs {
	assert.NotNil(tel)
	return Glyphs{tel: telemetry.NewScopedAPI("pdftext", tel)}
}

func (g Glyphs) Extract(ctx context.Context, document []byte) (string, error) {
	_, span := tracer.Start(ctx, "Extract")
	defer span.End()

	reader, err := pdf.NewReader(bytes.NewReader(document), int64(len(document)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := pageText(page)
		if err != nil {
			g.tel.ReportWarning(report_extractor_page, i, err)
			continue
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n"), nil
}

type line struct {
	y      float64
	glyphs []pdf.Text
}

// lineTolerance is how far apart (as a fraction of the font size) two glyph
// baselines may be and still be read as one line.
const lineTolerance = 0.5

// gapFactor is the horizontal gap (as a fraction of the font size) that is
// read as a missing space between two glyphs.
const gapFactor = 0.25

func pageText(page pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("interpret page: %v", r)
		}
	}()

	var lines []*line
	for _, glyph := range page.Content().Text {
		var target *line
		for _, l := range lines {
			if math.Abs(l.y-glyph.Y) <= math.Max(glyph.FontSize, 1)*lineTolerance {
				target = l
				break
			}
		}
		if target == nil {
			target = &line{y: glyph.Y}
			lines = append(lines, target)
		}
		target.glyphs = append(target.glyphs, glyph)
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].y > lines[j].y
	})

	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = renderLine(l.glyphs)
	}
	return strings.Join(out, "\n"), nil
}

func renderLine(glyphs []pdf.Text) string {
	sort.SliceStable(glyphs, func(i, j int) bool {
		return glyphs[i].X < glyphs[j].X
	})

	var sb strings.Builder
	for i, glyph := range glyphs {
		if i > 0 {
			prev := glyphs[i-1]
			gap := glyph.X - (prev.X + prev.W)
			// without widths every glyph of a run shares one X, so gaps only
			// mean something when the font declares them
			if prev.W > 0 && gap > math.Max(glyph.FontSize, 1)*gapFactor &&
				!strings.HasSuffix(prev.S, " ") && glyph.S != " " {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(glyph.S)
	}
	return strings.TrimRight(sb.String(), " ")
}
