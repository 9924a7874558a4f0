package traversal

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-microbench/benchmark"
)

// MatrixSize is the side length of the square matrix.
const MatrixSize = 1 << 13

// FillValue is the constant written by the write trials.
const FillValue = 1.0

var (
	// ErrNotFilled is returned when a write trial leaves an element unset.
	ErrNotFilled = errors.New("matrix not filled with the written value")
	// ErrResized is returned when a trial changes the matrix dimensions.
	ErrResized = errors.New("matrix dimensions changed during the trial")
)

// Grid is a 2-D container addressed by (row, column).
type Grid interface {
	Dims() (r, c int)
	At(i, j int) float64
	Set(i, j int, v float64)
}

// librarySection prefixes the section of trials run through gonum.
const librarySection = "GONUM MAT.DENSE "

// sink holds the last element read by a read trial.
type sink struct {
	last float64
}

func writeRows(m *Matrix, cur *Cursor, w float64) benchmark.Operation {
	rows := m.rows
	return func() {
		i, j := cur.Next()
		rows[i][j] = w
	}
}

func readRows(m *Matrix, cur *Cursor, s *sink) benchmark.Operation {
	rows := m.rows
	return func() {
		i, j := cur.Next()
		s.last = rows[i][j]
	}
}

func writeGrid(g Grid, cur *Cursor, w float64) benchmark.Operation {
	return func() {
		i, j := cur.Next()
		g.Set(i, j, w)
	}
}

func readGrid(g Grid, cur *Cursor, s *sink) benchmark.Operation {
	return func() {
		i, j := cur.Next()
		s.last = g.At(i, j)
	}
}

func verifyWrite(m *Matrix, g Grid) func() error {
	r, c := g.Dims()
	return func() error {
		if gr, gc := g.Dims(); gr != r || gc != c || !m.Intact() {
			return ErrResized
		}
		if !m.All(FillValue) {
			return ErrNotFilled
		}
		return nil
	}
}

func verifyRead(m *Matrix, g Grid, s *sink) func() error {
	r, c := g.Dims()
	return func() error {
		if gr, gc := g.Dims(); gr != r || gc != c || !m.Intact() {
			return ErrResized
		}
		if s.last != FillValue {
			return errors.Wrapf(ErrNotFilled, "read %v", s.last)
		}
		return nil
	}
}

func build(section string, m *Matrix, g Grid, cur *Cursor, write, read benchmark.Operation, s *sink) []benchmark.Trial {
	r, c := m.Dims()

	writeTrial := benchmark.NewTrialBuilder("Writing to matrix").
		InSection(section).
		WithTripCount(r * c).
		WithSetup(func() {
			m.Fill(0)
			cur.Reset()
		}).
		WithOperation(write).
		WithVerify(verifyWrite(m, g)).
		Build()

	readTrial := benchmark.NewTrialBuilder("Reading from matrix").
		InSection(section).
		WithTripCount(r * c).
		WithSetup(func() {
			m.Fill(FillValue)
			cur.Reset()
			s.last = 0
		}).
		WithOperation(read).
		WithVerify(verifyRead(m, g, s)).
		Build()

	return []benchmark.Trial{writeTrial, readTrial}
}

// Trials builds write and read trials indexing the nested rows directly.
func Trials(order Order, m *Matrix) []benchmark.Trial {
	r, c := m.Dims()
	cur := NewCursor(order, r, c)
	s := &sink{}
	return build(order.Section(), m, m, cur, writeRows(m, cur, FillValue), readRows(m, cur, s), s)
}

// LibraryTrials builds write and read trials through a gonum matrix
// sharing m's storage.
func LibraryTrials(order Order, m *Matrix) []benchmark.Trial {
	r, c := m.Dims()
	dense := m.Dense()
	cur := NewCursor(order, r, c)
	s := &sink{}
	return build(librarySection+order.Section(), m, dense, cur, writeGrid(dense, cur, FillValue), readGrid(dense, cur, s), s)
}

// NewSuite builds the nested-slice trials for both orders, then the gonum ones.
//
// Arguments:
//   - harness: Harness used to time the trials.
//   - reporter: Destination for the report.
//   - size: Side length of the square matrix.
//
// Returns:
//   - *benchmark.Suite: The configured suite.
//   - error: When the matrix cannot be allocated.
func NewSuite(harness *benchmark.Harness, reporter benchmark.Reporter, size int) (*benchmark.Suite, error) {
	m, err := NewMatrix(size, size)
	if err != nil {
		return nil, err
	}

	suite := benchmark.NewSuite(harness, reporter)
	for _, order := range Orders {
		for _, trial := range Trials(order, m) {
			suite.AddTrial(trial)
		}
	}
	for _, order := range Orders {
		for _, trial := range LibraryTrials(order, m) {
			suite.AddTrial(trial)
		}
	}
	return suite, nil
}
