package main

import (
	"context"
	"ecourts-backend/internal/api"
	"ecourts-backend/internal/attachments"
	"ecourts-backend/internal/components/chrono"
	"ecourts-backend/internal/components/telemetry"
	"ecourts-backend/internal/history"
	"ecourts-backend/internal/service"
	"ecourts-backend/pkg/configutil"
	"ecourts-backend/pkg/serviceutil"
	"errors"
	"flag"
	"log/slog"
)

func InitTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	providers, err := telemetry.SetupFromEnv(ctx, "ecourts-server")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		err := providers.Shutdown(context.Background())
		if err != nil {
			slog.Warn("telemetry shutdown", "err", err)
		}
	}()
	telemetry.InstrumentPerfStats(ctx)
}

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging.")
	configPath := flag.String("config", "config.json5", "Path to the configuration file.")
	flag.Parse()

	ctx := serviceutil.SignalContext()
	InitTelemetry(ctx, *verbose)

	cfg, err := configutil.ReadConfig[Config](*configPath)
	if errors.Is(err, configutil.ErrNotFound) {
		slog.Info("no config file found, using defaults", "path", *configPath)
	} else if err != nil {
		serviceutil.Fatal("read config", err)
	}

	tel := telemetry.SlogAPI{}
	clock := chrono.NewStandardTime()

	store, err := attachments.NewStore(cfg.Attachments.options(), clock, tel)
	if err != nil {
		serviceutil.Fatal("init attachment store", err)
	}

	sqlDB, err := history.Open(cfg.Database)
	if err != nil {
		serviceutil.Fatal("open history database", err)
	}
	defer sqlDB.Close()
	hist, err := history.NewStore(ctx, sqlDB, clock, tel)
	if err != nil {
		serviceutil.Fatal("init history", err)
	}

	options, err := cfg.serviceOptions(clock, tel)
	if err != nil {
		serviceutil.Fatal("read config", err)
	}
	svc := service.NewService(store, hist, options...)

	cron := chrono.NewStandardCron(tel)
	defer cron.Stop()
	err = svc.StartSweeper(cron)
	if err != nil {
		serviceutil.Fatal("start session sweeper", err)
	}

	err = api.NewServer(svc, tel).Serve(ctx, cfg.listen())
	if err != nil {
		serviceutil.Fatal("serve http", err)
	}
}
