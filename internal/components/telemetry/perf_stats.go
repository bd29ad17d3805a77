package telemetry

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// InstrumentPerfStats registers observable gauges for process stats. They
// are sampled whenever the meter provider collects, until ctx is done.
func InstrumentPerfStats(ctx context.Context) {
	meter := otel.Meter("ecourts.perf_stats")

	cpuGauge, err := meter.Float64ObservableGauge("cpu_usage", metric.WithUnit("%"))
	if err != nil {
		slog.Warn("perf stats disabled", "err", err)
		return
	}
	allocated, _ := meter.Int64ObservableGauge("allocated_mb", metric.WithUnit("MB"))
	liveObjects, _ := meter.Int64ObservableGauge("live_objects")
	goroutines, _ := meter.Int64ObservableGauge("goroutine_count")

	registration, err := meter.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			var mem runtime.MemStats
			runtime.ReadMemStats(&mem)
			o.ObserveInt64(allocated, int64(mem.Alloc/1_000_000))
			o.ObserveInt64(liveObjects, int64(mem.Mallocs)-int64(mem.Frees))
			o.ObserveInt64(goroutines, int64(runtime.NumGoroutine()))

			// an interval of 0 compares against the previous call
			usage, err := cpu.PercentWithContext(ctx, 0, false)
			if err != nil {
				slog.Warn("failed to read cpu usage", "err", err)
				return nil
			}
			if len(usage) > 0 {
				o.ObserveFloat64(cpuGauge, usage[0])
			}
			return nil
		},
		cpuGauge, allocated, liveObjects, goroutines,
	)
	if err != nil {
		slog.Warn("perf stats disabled", "err", err)
		return
	}

	go func() {
		<-ctx.Done()
		registration.Unregister()
	}()
}
