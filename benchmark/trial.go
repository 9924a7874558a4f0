package benchmark

import "github.com/pkg/errors"

// ErrMissingLabel is returned for trials built without a label.
var ErrMissingLabel = errors.New("trial label must not be empty")

// Trial is one timed block: reset state, time the loop, check the state.
type Trial struct {
	Label     string
	Section   string
	TripCount int
	// Setup restores the known initial state. Runs before the clock starts.
	Setup func()
	Op    Operation
	// Verify inspects the state after the clock stops.
	Verify func() error
}

// Validate reports configuration errors without running anything.
func (t Trial) Validate() error {
	if t.Label == "" {
		return ErrMissingLabel
	}
	if t.TripCount <= 0 {
		return errors.Wrapf(ErrInvalidTripCount, "trial %q: got %d", t.Label, t.TripCount)
	}
	if t.Op == nil {
		return errors.Wrapf(ErrNilOperation, "trial %q", t.Label)
	}
	return nil
}

// TrialBuilder helps build trials with fluent API
type TrialBuilder struct {
	trial Trial
}

// NewTrialBuilder creates a new trial builder
func NewTrialBuilder(label string) *TrialBuilder {
	return &TrialBuilder{
		trial: Trial{
			Label:     label,
			TripCount: 1,
		},
	}
}

// InSection sets the section header the trial is reported under
func (tb *TrialBuilder) InSection(section string) *TrialBuilder {
	tb.trial.Section = section
	return tb
}

// WithTripCount sets the number of loop iterations
func (tb *TrialBuilder) WithTripCount(tripCount int) *TrialBuilder {
	tb.trial.TripCount = tripCount
	return tb
}

// WithSetup sets the state reset hook
func (tb *TrialBuilder) WithSetup(setup func()) *TrialBuilder {
	tb.trial.Setup = setup
	return tb
}

// WithOperation sets the loop body
func (tb *TrialBuilder) WithOperation(op Operation) *TrialBuilder {
	tb.trial.Op = op
	return tb
}

// WithVerify sets the post-trial check
func (tb *TrialBuilder) WithVerify(verify func() error) *TrialBuilder {
	tb.trial.Verify = verify
	return tb
}

// Build returns the configured trial
func (tb *TrialBuilder) Build() Trial {
	return tb.trial
}
