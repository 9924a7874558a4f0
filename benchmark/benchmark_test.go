package benchmark

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock advances by step on every reading.
type stepClock struct {
	now   time.Time
	step  time.Duration
	reads int
}

func (c *stepClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(c.step)
	c.reads++
	return t
}

// mockReporter records what the suite reports.
type mockReporter struct {
	sections []string
	labels   []string
	err      error
}

func (m *mockReporter) Section(title string) error {
	m.sections = append(m.sections, title)
	return m.err
}

func (m *mockReporter) Measurement(label string, _ Measurement) error {
	m.labels = append(m.labels, label)
	return m.err
}

func TestRunCountsInvocations(t *testing.T) {
	for _, n := range []int{1, 7, 1000, 1 << 16} {
		count := 0
		m, err := Run(func() { count++ }, n)
		require.NoError(t, err)

		assert.Equal(t, n, count)
		assert.Equal(t, n, m.TripCount)
		assert.GreaterOrEqual(t, m.Elapsed, time.Duration(0))
		assert.False(t, m.End.Before(m.Start))
		assert.Equal(t, m.Elapsed.Seconds()/float64(n), m.PerOperation)
	}
}

func TestRunRejectsNonPositiveTripCount(t *testing.T) {
	for _, n := range []int{0, -1, -1000} {
		count := 0
		_, err := Run(func() { count++ }, n)

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidTripCount))
		assert.Equal(t, 0, count)
	}
}

func TestRunRejectsNilOperation(t *testing.T) {
	_, err := Run(nil, 10)
	assert.Equal(t, ErrNilOperation, errors.Cause(err))
}

func TestHarnessWithClock(t *testing.T) {
	clock := &stepClock{now: time.Unix(0, 0), step: 4 * time.Millisecond}
	h := NewHarness(WithClock(clock))

	m, err := h.Run(func() {}, 1000)
	require.NoError(t, err)

	assert.Equal(t, 2, clock.reads)
	assert.Equal(t, 4*time.Millisecond, m.Elapsed)
	assert.InDelta(t, 4e-6, m.PerOperation, 1e-15)
	assert.InDelta(t, 0.004, m.ElapsedSeconds(), 1e-15)
}

func TestHarnessClampsBackwardClock(t *testing.T) {
	clock := &stepClock{now: time.Unix(100, 0), step: -time.Second}
	h := NewHarness(WithClock(clock))

	m, err := h.Run(func() {}, 10)
	require.NoError(t, err)

	assert.Equal(t, time.Duration(0), m.Elapsed)
	assert.Equal(t, 0.0, m.PerOperation)
}

func TestNewHarnessNilClock(t *testing.T) {
	h := NewHarness(WithClock(nil))
	assert.Equal(t, SystemClock{}, h.clock)
}

func TestIncrementCounterEndToEnd(t *testing.T) {
	counter := 0
	m, err := Run(func() { counter++ }, 1000)
	require.NoError(t, err)

	assert.Equal(t, 1000, counter)
	assert.GreaterOrEqual(t, m.Elapsed, time.Duration(0))
	assert.GreaterOrEqual(t, m.PerOperation, 0.0)
}

func TestTrialBuilder(t *testing.T) {
	setup := func() {}
	verify := func() error { return nil }

	trial := NewTrialBuilder("Addition loop").
		InSection("SINGLE PRECISION TIMINGS").
		WithTripCount(50).
		WithSetup(setup).
		WithOperation(func() {}).
		WithVerify(verify).
		Build()

	assert.Equal(t, "Addition loop", trial.Label)
	assert.Equal(t, "SINGLE PRECISION TIMINGS", trial.Section)
	assert.Equal(t, 50, trial.TripCount)
	assert.NotNil(t, trial.Setup)
	assert.NotNil(t, trial.Op)
	assert.NotNil(t, trial.Verify)
	assert.NoError(t, trial.Validate())
}

func TestTrialValidate(t *testing.T) {
	tests := []struct {
		name  string
		trial Trial
		want  error
	}{
		{"missing label", Trial{TripCount: 1, Op: func() {}}, ErrMissingLabel},
		{"zero trip count", Trial{Label: "x", Op: func() {}}, ErrInvalidTripCount},
		{"nil operation", Trial{Label: "x", TripCount: 1}, ErrNilOperation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Cause(tt.trial.Validate()))
		})
	}
}

func TestSuiteRunAll(t *testing.T) {
	reporter := &mockReporter{}
	suite := NewSuite(nil, reporter)

	value := 0.0
	var starts []float64
	for _, label := range []string{"a", "b", "c"} {
		section := "FIRST"
		if label == "c" {
			section = "SECOND"
		}
		suite.AddTrial(NewTrialBuilder(label).
			InSection(section).
			WithTripCount(100).
			WithSetup(func() { value = 1.0 }).
			WithOperation(func() {
				if len(starts) == 0 || value == 1.0 {
					starts = append(starts, value)
				}
				value += 1.0
			}).
			Build())
	}

	require.NoError(t, suite.RunAll(context.Background()))

	assert.Equal(t, []string{"FIRST", "SECOND"}, reporter.sections)
	assert.Equal(t, []string{"a", "b", "c"}, reporter.labels)
	assert.Equal(t, []float64{1.0, 1.0, 1.0}, starts)
	assert.Equal(t, 101.0, value)

	results := suite.Results()
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Equal(t, 100, r.Measurement.TripCount)
		assert.GreaterOrEqual(t, r.Measurement.Elapsed, time.Duration(0))
	}
	assert.Equal(t, "SECOND", results[2].Section)
}

func TestSuiteStopsOnVerifyFailure(t *testing.T) {
	reporter := &mockReporter{}
	suite := NewSuite(nil, reporter)
	boom := errors.New("boom")

	suite.AddTrial(NewTrialBuilder("bad").
		WithTripCount(3).
		WithOperation(func() {}).
		WithVerify(func() error { return boom }).
		Build())
	suite.AddTrial(NewTrialBuilder("never").
		WithTripCount(3).
		WithOperation(func() { t.Fatal("second trial must not run") }).
		Build())

	err := suite.RunAll(context.Background())
	require.Error(t, err)
	assert.Equal(t, boom, errors.Cause(err))
	assert.Empty(t, reporter.labels)
	assert.Empty(t, suite.Results())
}

func TestSuiteRejectsInvalidTrialBeforeSetup(t *testing.T) {
	suite := NewSuite(nil, nil)
	setupCalled := false

	_, err := suite.RunTrial(Trial{
		Label:     "bad",
		TripCount: 0,
		Setup:     func() { setupCalled = true },
		Op:        func() {},
	})

	assert.True(t, errors.Is(err, ErrInvalidTripCount))
	assert.False(t, setupCalled)
}

func TestSuiteHonoursCancelledContext(t *testing.T) {
	suite := NewSuite(nil, nil)
	suite.AddTrial(NewTrialBuilder("x").WithTripCount(1).WithOperation(func() {}).Build())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := suite.RunAll(ctx)
	assert.Equal(t, context.Canceled, errors.Cause(err))
	assert.Empty(t, suite.Results())
}

func TestSuiteReporterError(t *testing.T) {
	reporter := &mockReporter{err: errors.New("closed pipe")}
	suite := NewSuite(nil, reporter)
	suite.AddTrial(NewTrialBuilder("x").WithTripCount(1).WithOperation(func() {}).Build())

	assert.Error(t, suite.RunAll(context.Background()))
}

func BenchmarkHarnessRun(b *testing.B) {
	sink := 0
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Run(func() { sink++ }, 1000)
	}
	b.ReportMetric(float64(sink)/float64(b.N), "ops/run")
}

func BenchmarkTrialBuilder(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = NewTrialBuilder("test").
			InSection("SECTION").
			WithTripCount(100).
			WithOperation(func() {}).
			Build()
	}
}

type notingReporter struct {
	mockReporter
	notes []string
}

func (n *notingReporter) Note(format string, args ...interface{}) error {
	n.notes = append(n.notes, fmt.Sprintf(format, args...))
	return nil
}

func TestSuiteDescribe(t *testing.T) {
	reporter := &notingReporter{}
	suite := NewSuite(nil, reporter)
	suite.Describe("FIRST", "i has size 8")
	suite.AddTrial(NewTrialBuilder("a").InSection("FIRST").WithOperation(func() {}).Build())
	suite.AddTrial(NewTrialBuilder("b").InSection("SECOND").WithOperation(func() {}).Build())

	require.NoError(t, suite.RunAll(context.Background()))

	assert.Equal(t, []string{"i has size 8"}, reporter.notes)
	assert.Equal(t, []string{"FIRST", "SECOND"}, reporter.sections)
}
