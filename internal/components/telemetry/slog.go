package telemetry

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// InitSlog installs the process-wide slog handler, verbose turns on debug reports.
func InitSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// SlogAPI implements API on the default slog logger. Counts are also
// recorded onto the "ecourts.count" otel gauge, tagged with their id.
type SlogAPI struct{}

var (
	countGaugeOnce sync.Once
	countGauge     metric.Int64Gauge
)

func counts() metric.Int64Gauge {
	countGaugeOnce.Do(func() {
		countGauge, _ = otel.Meter("ecourts").Int64Gauge(
			"ecourts.count",
			metric.WithDescription("Latest count reported per component."),
		)
	})
	return countGauge
}

// attrs turns report params into slog attributes, errors go under "err" and
// everything else is keyed by its position.
func attrs(id string, params []any) []any {
	out := make([]any, 0, len(params)+1)
	if id != "" {
		out = append(out, slog.String("id", id))
	}
	for i, p := range params {
		if err, ok := p.(error); ok {
			out = append(out, slog.String("err", err.Error()))
			continue
		}
		out = append(out, slog.Any("p"+strconv.Itoa(i), p))
	}
	return out
}

func (SlogAPI) ReportBroken(id string, params ...any) {
	slog.Error("broken component", attrs(id, params)...)
}

func (SlogAPI) ReportWarning(id string, params ...any) {
	slog.Warn("warning", attrs(id, params)...)
}

func (SlogAPI) ReportDebug(message string, params ...any) {
	slog.Debug(message, attrs("", params)...)
}

func (SlogAPI) ReportCount(id string, count int64) {
	slog.Debug("count", "id", id, "n", count)
	if g := counts(); g != nil {
		g.Record(context.Background(), count, metric.WithAttributes(attribute.String("id", id)))
	}
}
