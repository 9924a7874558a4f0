// Package benchmark - Timed-loop harness for CPU micro-benchmarks.
package benchmark

import (
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidTripCount is returned when a trip count is zero or negative.
	ErrInvalidTripCount = errors.New("trip count must be positive")
	// ErrNilOperation is returned when no operation is given to the harness.
	ErrNilOperation = errors.New("operation must not be nil")
)

// Operation is a single iteration of a benchmarked loop body.
//
// It captures all of its state and must leave an observable side effect
// (a store into a captured location) so the loop cannot be elided.
type Operation func()

// Clock is a monotonic time source.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now, whose readings carry the monotonic clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// Measurement is the result of timing one loop.
type Measurement struct {
	Start     time.Time     `json:"start"`
	End       time.Time     `json:"end"`
	TripCount int           `json:"trip_count"`
	Elapsed   time.Duration `json:"elapsed"`
	// PerOperation is Elapsed divided by TripCount, in seconds. Kept as a
	// float because single operations are routinely below a nanosecond.
	PerOperation float64 `json:"per_operation"`
}

// ElapsedSeconds returns the elapsed time in seconds.
func (m Measurement) ElapsedSeconds() float64 {
	return m.Elapsed.Seconds()
}

// Harness times operations against a Clock.
type Harness struct {
	clock Clock
}

// HarnessOption configures a Harness.
type HarnessOption func(*Harness)

// WithClock sets the clock used by the harness.
func WithClock(clock Clock) HarnessOption {
	return func(h *Harness) {
		h.clock = clock
	}
}

// NewHarness creates a harness that defaults to the system clock.
//
// Arguments:
//   - opts: Optional configuration.
//
// Returns:
//   - *Harness: The harness.
func NewHarness(opts ...HarnessOption) *Harness {
	h := &Harness{clock: SystemClock{}}
	for _, opt := range opts {
		opt(h)
	}
	if h.clock == nil {
		h.clock = SystemClock{}
	}
	return h
}

// Run invokes op exactly tripCount times and measures the whole loop.
//
// Arguments:
//   - op: The loop body.
//   - tripCount: Number of consecutive invocations, must be positive.
//
// Returns:
//   - Measurement: Timestamps and derived durations.
//   - error: ErrInvalidTripCount or ErrNilOperation, before any invocation.
func (h *Harness) Run(op Operation, tripCount int) (Measurement, error) {
	if tripCount <= 0 {
		return Measurement{}, errors.Wrapf(ErrInvalidTripCount, "got %d", tripCount)
	}
	if op == nil {
		return Measurement{}, ErrNilOperation
	}

	start := h.clock.Now()
	for i := 0; i < tripCount; i++ {
		op()
	}
	end := h.clock.Now()

	return newMeasurement(start, end, tripCount), nil
}

func newMeasurement(start, end time.Time, tripCount int) Measurement {
	elapsed := end.Sub(start)
	if elapsed < 0 {
		elapsed = 0
	}
	return Measurement{
		Start:        start,
		End:          end,
		TripCount:    tripCount,
		Elapsed:      elapsed,
		PerOperation: elapsed.Seconds() / float64(tripCount),
	}
}

var defaultHarness = NewHarness()

// Run times op with the system clock. See Harness.Run.
func Run(op Operation, tripCount int) (Measurement, error) {
	return defaultHarness.Run(op, tripCount)
}
