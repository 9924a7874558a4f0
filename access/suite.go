package access

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-microbench/benchmark"
)

// Trials builds the write then read trial for one sequence.
//
// The write trial starts from a zeroed sequence and must leave every
// element equal to FillValue. The read trial starts from a sequence
// filled with FillValue.
func Trials(style Style, seq Sequence) []benchmark.Trial {
	section := style.Section()
	n := seq.Len()

	write := benchmark.NewTrialBuilder("Writing to array").
		InSection(section).
		WithTripCount(n).
		WithSetup(func() {
			seq.Fill(0)
			seq.Rewind()
		}).
		WithOperation(seq.Write(FillValue)).
		WithVerify(func() error {
			if err := seq.Err(); err != nil {
				return err
			}
			if !seq.All(FillValue) {
				return errors.Wrapf(ErrNotFilled, "%s", style)
			}
			return nil
		}).
		Build()

	read := benchmark.NewTrialBuilder("Reading from array").
		InSection(section).
		WithTripCount(n).
		WithSetup(func() {
			seq.Fill(FillValue)
			seq.Rewind()
		}).
		WithOperation(seq.Read()).
		WithVerify(func() error {
			if err := seq.Err(); err != nil {
				return err
			}
			if seq.Last() != FillValue {
				return errors.Wrapf(ErrNotFilled, "%s: read %v", style, seq.Last())
			}
			return nil
		}).
		Build()

	return []benchmark.Trial{write, read}
}

// Sequences allocates one sequence per style. The tensor and iterator
// styles share the same tensor.
func Sequences() map[Style]Sequence {
	dense := NewDense(VectorLength)
	return map[Style]Sequence{
		StyleArray:    NewArray(),
		StyleSlice:    NewSlice(VectorLength),
		StyleTensor:   NewTensor(dense),
		StyleIterator: NewIterated(dense),
	}
}

// NewSuite builds write and read trials for every style in Styles order.
func NewSuite(harness *benchmark.Harness, reporter benchmark.Reporter) *benchmark.Suite {
	suite := benchmark.NewSuite(harness, reporter)
	sequences := Sequences()
	for _, style := range Styles {
		for _, trial := range Trials(style, sequences[style]) {
			suite.AddTrial(trial)
		}
	}
	return suite
}
