package chrono

import (
	"ecourts-backend/internal/components/telemetry"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

const report_cron_job = "cron.job"

// CronAPI schedules named background jobs.
type CronAPI interface {
	Cron(name, spec string, callback func()) error
}

// StandardCron runs jobs on robfig/cron in IST. A job that panics is
// recovered and reported, a job still running when it is due again is skipped.
type StandardCron struct {
	cron *cron.Cron
	tel  telemetry.API
}

// NewStandardCron starts the scheduler, call Stop to wait for running jobs and release it.
func NewStandardCron(tel telemetry.API) StandardCron {
	logger := cronLogger{tel: tel}
	c := cron.New(
		cron.WithLocation(ist),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	c.Start()
	return StandardCron{cron: c, tel: tel}
}

func (s StandardCron) Cron(name, spec string, callback func()) error {
	_, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		callback()
		s.tel.ReportDebug("cron job finished", name, time.Since(start).String())
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	return nil
}

func (s StandardCron) Stop() {
	<-s.cron.Stop().Done()
}

// cronLogger adapts robfig's key/value logger onto telemetry.
type cronLogger struct {
	tel telemetry.API
}

func pairs(keysAndValues []any) []any {
	out := make([]any, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		out = append(out, fmt.Sprint(keysAndValues[i], "=", keysAndValues[i+1]))
	}
	return out
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.tel.ReportDebug("cron: "+msg, pairs(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	params := append([]any{fmt.Errorf("%s: %w", msg, err)}, pairs(keysAndValues)...)
	l.tel.ReportBroken(report_cron_job, params...)
}
