package chrono

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStandardTimeIsIST(t *testing.T) {
	now := NewStandardTime().Now()
	_, offset := now.Zone()
	require.Equal(t, 5*60*60+30*60, offset)
}

func TestFakeTimeSleepAdvances(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, IST())
	clock := NewFakeTime(start)

	clock.Sleep(300*time.Millisecond, nil)
	clock.Sleep(300*time.Millisecond, nil)
	clock.Advance(time.Second)

	require.Equal(t, 600*time.Millisecond, clock.Slept())
	require.Equal(t, start.Add(1600*time.Millisecond), clock.Now())
}

func TestStandardSleepStopsOnDone(t *testing.T) {
	done := make(chan struct{})
	close(done)

	start := time.Now()
	NewStandardTime().Sleep(time.Minute, done)
	require.Less(t, time.Since(start), time.Second)
}
