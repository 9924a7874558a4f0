package benchmark

import (
	"context"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Reporter receives section headers and measurements as trials complete.
type Reporter interface {
	Section(title string) error
	Measurement(label string, m Measurement) error
}

// Annotator is implemented by reporters that accept free-form lines.
type Annotator interface {
	Note(format string, args ...interface{}) error
}

// Suite manages and executes trials in order.
type Suite struct {
	harness  *Harness
	reporter Reporter
	mu       sync.RWMutex
	trials   []Trial
	notes    map[string]string
	results  []Result
}

// NewSuite creates a new benchmark suite.
//
// Arguments:
//   - harness: The harness used to time every trial. Nil selects the system clock.
//   - reporter: Destination for the report. May be nil.
//
// Returns:
//   - *Suite: The benchmark suite.
func NewSuite(harness *Harness, reporter Reporter) *Suite {
	if harness == nil {
		harness = NewHarness()
	}
	return &Suite{
		harness:  harness,
		reporter: reporter,
		trials:   make([]Trial, 0),
		notes:    make(map[string]string),
		results:  make([]Result, 0),
	}
}

// Describe attaches a line printed right after a section header.
func (s *Suite) Describe(section, note string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes[section] = note
}

// AddTrial appends a trial to the suite.
func (s *Suite) AddTrial(trial Trial) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trials = append(s.trials, trial)
}

// Trials returns a copy of the configured trials.
func (s *Suite) Trials() []Trial {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trials := make([]Trial, len(s.trials))
	copy(trials, s.trials)
	return trials
}

// RunTrial executes a single trial: setup, timed loop, verification.
func (s *Suite) RunTrial(trial Trial) (*Result, error) {
	if err := trial.Validate(); err != nil {
		return nil, err
	}

	var startMem runtime.MemStats
	runtime.ReadMemStats(&startMem)

	if trial.Setup != nil {
		trial.Setup()
	}

	m, err := s.harness.Run(trial.Op, trial.TripCount)
	if err != nil {
		return nil, errors.Wrapf(err, "trial %q", trial.Label)
	}

	var endMem runtime.MemStats
	runtime.ReadMemStats(&endMem)

	if trial.Verify != nil {
		if err := trial.Verify(); err != nil {
			return nil, errors.Wrapf(err, "trial %q failed verification", trial.Label)
		}
	}

	return &Result{
		Label:       trial.Label,
		Section:     trial.Section,
		Measurement: m,
		MemoryStats: memoryDelta(&startMem, &endMem),
	}, nil
}

// RunAll executes every trial in order and reports each one.
//
// The first failing trial stops the run; the context is only checked between trials.
func (s *Suite) RunAll(ctx context.Context) error {
	trials := s.Trials()

	section := ""
	for i, trial := range trials {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "suite interrupted")
		}

		if s.reporter != nil && (i == 0 || trial.Section != section) && trial.Section != "" {
			if err := s.reporter.Section(trial.Section); err != nil {
				return errors.Wrap(err, "failed to write section header")
			}
			if err := s.annotate(trial.Section); err != nil {
				return errors.Wrap(err, "failed to write section note")
			}
		}
		section = trial.Section

		result, err := s.RunTrial(trial)
		if err != nil {
			return err
		}

		s.mu.Lock()
		s.results = append(s.results, *result)
		s.mu.Unlock()

		if s.reporter != nil {
			if err := s.reporter.Measurement(result.Label, result.Measurement); err != nil {
				return errors.Wrap(err, "failed to write measurement")
			}
		}

		log.WithFields(log.Fields{
			"section":    trial.Section,
			"trial":      trial.Label,
			"trip_count": trial.TripCount,
			"elapsed":    result.Measurement.Elapsed,
		}).Debug("trial completed")
	}

	return nil
}

func (s *Suite) annotate(section string) error {
	annotator, ok := s.reporter.(Annotator)
	if !ok {
		return nil
	}

	s.mu.RLock()
	note, exists := s.notes[section]
	s.mu.RUnlock()
	if !exists {
		return nil
	}
	return annotator.Note("%s", note)
}

// Results returns all completed trial results.
func (s *Suite) Results() []Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]Result, len(s.results))
	copy(results, s.results)
	return results
}
