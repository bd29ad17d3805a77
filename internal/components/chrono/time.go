package chrono

import (
	"sync"
	"time"
)

var ist *time.Location

func init() {
	var err error
	ist, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// the portals only ever speak IST, a fixed offset is an exact stand-in
		ist = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// IST returns a [*time.Location] for Asia/Kolkata, the timezone every portal date is in.
func IST() *time.Location {
	return ist
}

// TimeAPI is the interface that anything depending on the system clock should use.
type TimeAPI interface {
	// Now returns the current time in Asia/Kolkata.
	Now() time.Time
	// Sleep blocks for d or until the channel is closed, whichever is first.
	Sleep(d time.Duration, done <-chan struct{})
}

// StandardTime is the standard implementation of TimeAPI using the standard library.
type StandardTime struct{}

// NewStandardTime is the constructor of StandardTime.
func NewStandardTime() StandardTime {
	return StandardTime{}
}

func (StandardTime) Now() time.Time {
	return time.Now().In(ist)
}

func (StandardTime) Sleep(d time.Duration, done <-chan struct{}) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-done:
	}
}

// FakeTime is a manually advanced TimeAPI for tests, Sleep advances the clock instead of blocking.
type FakeTime struct {
	mu      sync.Mutex
	current time.Time
	slept   time.Duration
}

func NewFakeTime(start time.Time) *FakeTime {
	return &FakeTime{current: start.In(ist)}
}

func (f *FakeTime) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *FakeTime) Advance(d time.Duration) {
	f.mu.Lock()
	f.current = f.current.Add(d)
	f.mu.Unlock()
}

func (f *FakeTime) Sleep(d time.Duration, _ <-chan struct{}) {
	f.mu.Lock()
	f.current = f.current.Add(d)
	f.slept += d
	f.mu.Unlock()
}

// Slept returns the sum of every duration passed to Sleep.
func (f *FakeTime) Slept() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slept
}
