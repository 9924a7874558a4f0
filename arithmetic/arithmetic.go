// Package arithmetic - Scalar floating point throughput trials.
package arithmetic

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-microbench/benchmark"
)

// DefaultTripCount is the number of operations timed per trial.
const DefaultTripCount = 1_000_000_000

// Precision is the width of the operands.
type Precision string

// Precision constants are the supported operand widths.
const (
	PrecisionFP32 Precision = "FP32"
	PrecisionFP64 Precision = "FP64"
)

// Section returns the report header for the precision.
func (p Precision) Section() string {
	switch p {
	case PrecisionFP32:
		return "SINGLE PRECISION TIMINGS"
	case PrecisionFP64:
		return "DOUBLE PRECISION TIMINGS"
	default:
		return string(p) + " TIMINGS"
	}
}

// Operator is an arithmetic operator applied as a = a op b.
type Operator string

// Operators exercised by every precision.
const (
	Add      Operator = "add"
	Multiply Operator = "multiply"
	Divide   Operator = "divide"
)

// Operators lists the operators in report order.
var Operators = []Operator{Add, Multiply, Divide}

// Label returns the report label for the operator.
func (o Operator) Label() string {
	switch o {
	case Add:
		return "Addition loop"
	case Multiply:
		return "Multiplication loop"
	case Divide:
		return "Division loop"
	default:
		return string(o) + " loop"
	}
}

// ErrUnknownOperator is returned for operators outside Operators.
var ErrUnknownOperator = errors.New("unknown operator")

// ErrContaminated is returned when a trial ends in an unexpected state.
var ErrContaminated = errors.New("operand left in unexpected state")

// Float is the set of operand types.
type Float interface {
	~float32 | ~float64
}

// InitialValue is the value both operands are reset to before every trial.
const InitialValue = 1.0

// Operand holds the accumulator a and the constant b.
type Operand[T Float] struct {
	A T
	B T
}

// Reset restores both operands to InitialValue.
func (o *Operand[T]) Reset() {
	o.A = InitialValue
	o.B = InitialValue
}

// Step returns the loop body for op over o.
func Step[T Float](op Operator, o *Operand[T]) (benchmark.Operation, error) {
	switch op {
	case Add:
		return func() { o.A = o.A + o.B }, nil
	case Multiply:
		return func() { o.A = o.A * o.B }, nil
	case Divide:
		return func() { o.A = o.A / o.B }, nil
	default:
		return nil, errors.Wrapf(ErrUnknownOperator, "%q", op)
	}
}

// Sink receives every final accumulator so the loops stay live.
var Sink float64

func isFinite[T Float](v T) bool {
	switch x := any(v).(type) {
	case float32:
		return !math32.IsNaN(x) && !math32.IsInf(x, 0)
	default:
		f := float64(v)
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	}
}

// verify checks the operand after a trial of op.
func verify[T Float](op Operator, o *Operand[T]) error {
	if o.B != InitialValue {
		return errors.Wrapf(ErrContaminated, "b = %v", o.B)
	}
	if !isFinite(o.A) {
		return errors.Wrapf(ErrContaminated, "a = %v", o.A)
	}
	switch op {
	case Multiply, Divide:
		if o.A != InitialValue {
			return errors.Wrapf(ErrContaminated, "a = %v after %s", o.A, op)
		}
	case Add:
		if o.A <= InitialValue {
			return errors.Wrapf(ErrContaminated, "a = %v after %s", o.A, op)
		}
	}
	Sink = float64(o.A)
	return nil
}

// Trials builds one trial per operator for a single precision.
//
// Arguments:
//   - precision: The section the trials are reported under.
//   - operand: The shared operand, reset before every trial.
//   - tripCount: Operations per trial.
//
// Returns:
//   - []benchmark.Trial: Add, multiply and divide trials in that order.
//   - error: When an operator has no loop body.
func Trials[T Float](precision Precision, operand *Operand[T], tripCount int) ([]benchmark.Trial, error) {
	trials := make([]benchmark.Trial, 0, len(Operators))
	for _, op := range Operators {
		body, err := Step(op, operand)
		if err != nil {
			return nil, err
		}

		trials = append(trials, benchmark.NewTrialBuilder(op.Label()).
			InSection(precision.Section()).
			WithTripCount(tripCount).
			WithSetup(operand.Reset).
			WithOperation(body).
			WithVerify(func() error { return verify(op, operand) }).
			Build())
	}
	return trials, nil
}

// SizeNote describes the loop index and operand widths for a precision.
func SizeNote[T Float]() string {
	var (
		i int
		a T
	)
	return fmt.Sprintf("i has size %d, a and b have size %d", unsafe.Sizeof(i), unsafe.Sizeof(a))
}

// NewSuite builds the single then double precision trials.
//
// Arguments:
//   - harness: Harness used to time the trials.
//   - reporter: Destination for the report.
//   - tripCount: Operations per trial.
//
// Returns:
//   - *benchmark.Suite: The configured suite.
//   - error: When the trials cannot be built.
func NewSuite(harness *benchmark.Harness, reporter benchmark.Reporter, tripCount int) (*benchmark.Suite, error) {
	suite := benchmark.NewSuite(harness, reporter)

	single, err := Trials(PrecisionFP32, &Operand[float32]{}, tripCount)
	if err != nil {
		return nil, err
	}
	double, err := Trials(PrecisionFP64, &Operand[float64]{}, tripCount)
	if err != nil {
		return nil, err
	}

	suite.Describe(PrecisionFP32.Section(), SizeNote[float32]())
	suite.Describe(PrecisionFP64.Section(), SizeNote[float64]())
	for _, trial := range append(single, double...) {
		suite.AddTrial(trial)
	}
	return suite, nil
}
