// Package access - 1-D element access trials across addressing styles.
package access

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-microbench/benchmark"
)

// VectorLength is the element count of every sequence.
const VectorLength = 1 << 19

// FillValue is the constant written by the write trials.
const FillValue = 1.0

// Style is the addressing mechanism used inside a trial.
type Style string

// Styles compared by the access suite.
const (
	// StyleArray indexes a fixed-size Go array.
	StyleArray Style = "array"
	// StyleSlice indexes a dynamically-sized slice.
	StyleSlice Style = "slice"
	// StyleTensor indexes a gorgonia tensor through At/SetAt.
	StyleTensor Style = "tensor"
	// StyleIterator walks the same tensor with its position iterator.
	StyleIterator Style = "iterator"
)

// Styles lists the styles in report order.
var Styles = []Style{StyleArray, StyleSlice, StyleTensor, StyleIterator}

// Section returns the report header for the style.
func (s Style) Section() string {
	switch s {
	case StyleArray:
		return "STANDARD ARRAY DECLARATION [N]FLOAT64"
	case StyleSlice:
		return "DYNAMIC SLICE []FLOAT64"
	case StyleTensor:
		return "USING GORGONIA TENSOR LIBRARY"
	case StyleIterator:
		return "USING GORGONIA TENSOR LIBRARY + ITERATORS"
	default:
		return string(s)
	}
}

// ErrNotFilled is returned when a write trial leaves an element unset.
var ErrNotFilled = errors.New("sequence not filled with the written value")

// Sequence is a fixed-size container of float64 driven by a cursor.
//
// Write and Read return loop bodies touching one element per call and
// moving the cursor forward, wrapping at the end.
type Sequence interface {
	Len() int
	Fill(v float64)
	Rewind()
	Write(w float64) benchmark.Operation
	Read() benchmark.Operation
	// Last is the most recent value read.
	Last() float64
	All(v float64) bool
	// Err is the first access error seen inside a loop body.
	Err() error
}

// Array is a fixed-size Go array.
type Array struct {
	data [VectorLength]float64
	pos  int
	last float64
}

// NewArray allocates a zeroed array.
func NewArray() *Array { return &Array{} }

func (a *Array) Len() int { return len(a.data) }

func (a *Array) Fill(v float64) {
	for i := range a.data {
		a.data[i] = v
	}
}

func (a *Array) Rewind() { a.pos = 0 }

func (a *Array) Write(w float64) benchmark.Operation {
	return func() {
		a.data[a.pos] = w
		if a.pos++; a.pos == VectorLength {
			a.pos = 0
		}
	}
}

func (a *Array) Read() benchmark.Operation {
	return func() {
		a.last = a.data[a.pos]
		if a.pos++; a.pos == VectorLength {
			a.pos = 0
		}
	}
}

func (a *Array) Last() float64 { return a.last }

func (a *Array) All(v float64) bool { return allEqual(a.data[:], v) }

func (a *Array) Err() error { return nil }

// Slice is a dynamically-sized owned slice.
type Slice struct {
	data []float64
	pos  int
	last float64
}

// NewSlice allocates a zeroed slice of n elements.
func NewSlice(n int) *Slice { return &Slice{data: make([]float64, n)} }

func (s *Slice) Len() int { return len(s.data) }

func (s *Slice) Fill(v float64) {
	for i := range s.data {
		s.data[i] = v
	}
}

func (s *Slice) Rewind() { s.pos = 0 }

func (s *Slice) Write(w float64) benchmark.Operation {
	return func() {
		s.data[s.pos] = w
		if s.pos++; s.pos == len(s.data) {
			s.pos = 0
		}
	}
}

func (s *Slice) Read() benchmark.Operation {
	return func() {
		s.last = s.data[s.pos]
		if s.pos++; s.pos == len(s.data) {
			s.pos = 0
		}
	}
}

func (s *Slice) Last() float64 { return s.last }

func (s *Slice) All(v float64) bool { return allEqual(s.data, v) }

func (s *Slice) Err() error { return nil }

// Tensor indexes a 1-D gorgonia Dense through its coordinate API.
type Tensor struct {
	t    *tensor.Dense
	pos  int
	last float64
	err  error
}

// NewDense allocates a zeroed 1-D float64 tensor of n elements.
func NewDense(n int) *tensor.Dense {
	return tensor.New(tensor.WithShape(n), tensor.WithBacking(make([]float64, n)))
}

// NewTensor wraps t for indexed access.
func NewTensor(t *tensor.Dense) *Tensor { return &Tensor{t: t} }

func (s *Tensor) Len() int { return s.t.Size() }

func (s *Tensor) Fill(v float64) { fill(s.t, v) }

// Rewind moves back to the first element and clears the recorded error.
func (s *Tensor) Rewind() {
	s.pos = 0
	s.err = nil
}

func (s *Tensor) Write(w float64) benchmark.Operation {
	n := s.Len()
	return func() {
		if err := s.t.SetAt(w, s.pos); err != nil && s.err == nil {
			s.err = errors.Wrapf(err, "SetAt(%d)", s.pos)
		}
		if s.pos++; s.pos == n {
			s.pos = 0
		}
	}
}

func (s *Tensor) Read() benchmark.Operation {
	n := s.Len()
	return func() {
		v, err := s.t.At(s.pos)
		if err != nil {
			if s.err == nil {
				s.err = errors.Wrapf(err, "At(%d)", s.pos)
			}
		} else {
			s.last = v.(float64)
		}
		if s.pos++; s.pos == n {
			s.pos = 0
		}
	}
}

func (s *Tensor) Last() float64 { return s.last }

func (s *Tensor) All(v float64) bool { return allEqual(backing(s.t), v) }

func (s *Tensor) Err() error { return s.err }

// Iterated walks a 1-D gorgonia Dense with its position iterator instead
// of an index.
type Iterated struct {
	t    *tensor.Dense
	data []float64
	it   tensor.Iterator
	pos  int
	last float64
}

// NewIterated wraps t for iterator access.
func NewIterated(t *tensor.Dense) *Iterated {
	s := &Iterated{
		t:    t,
		data: backing(t),
		it:   t.Iterator(),
	}
	s.Rewind()
	return s
}

func (s *Iterated) Len() int { return s.t.Size() }

func (s *Iterated) Fill(v float64) { fill(s.t, v) }

// Rewind restarts the iterator at the first element.
func (s *Iterated) Rewind() {
	s.pos = s.start()
}

// start restarts the iterator, falling back to position 0 when it cannot.
func (s *Iterated) start() int {
	pos, err := s.it.Start()
	if err != nil || pos < 0 {
		return 0
	}
	return pos
}

// advance moves to the next position, restarting once the iterator is exhausted.
func (s *Iterated) advance() {
	next, err := s.it.Next()
	if err != nil || next < 0 {
		next = s.start()
	}
	s.pos = next
}

func (s *Iterated) Write(w float64) benchmark.Operation {
	return func() {
		s.data[s.pos] = w
		s.advance()
	}
}

func (s *Iterated) Read() benchmark.Operation {
	return func() {
		s.last = s.data[s.pos]
		s.advance()
	}
}

func (s *Iterated) Last() float64 { return s.last }

func (s *Iterated) All(v float64) bool { return allEqual(s.data, v) }

func (s *Iterated) Err() error { return nil }

func backing(t *tensor.Dense) []float64 {
	return t.Data().([]float64)
}

func fill(t *tensor.Dense, v float64) {
	data := backing(t)
	for i := range data {
		data[i] = v
	}
}

func allEqual(data []float64, v float64) bool {
	for _, x := range data {
		if x != v {
			return false
		}
	}
	return true
}
