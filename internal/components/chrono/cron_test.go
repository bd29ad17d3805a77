package chrono

import (
	"ecourts-backend/internal/components/telemetry"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStandardCronRejectsBadSpec(t *testing.T) {
	cron := NewStandardCron(&telemetry.RecordingAPI{})
	defer cron.Stop()

	err := cron.Cron("sessions.sweep", "every now and then", func() {})
	require.ErrorContains(t, err, "schedule sessions.sweep")

	require.NoError(t, cron.Cron("sessions.sweep", "@every 1m", func() {}))
}

func TestCronLoggerReportsErrors(t *testing.T) {
	rec := &telemetry.RecordingAPI{}
	cronLogger{tel: rec}.Error(errors.New("boom"), "panic", "stack", "...")

	broken := rec.Find("broken", report_cron_job)
	require.Len(t, broken, 1)
	require.Equal(t, "stack=...", broken[0].Params[1])
}
