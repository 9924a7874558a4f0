package arithmetic

import (
	"bytes"
	"context"
	"testing"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-microbench/benchmark"
	"github.com/nvr-ai/go-microbench/report"
)

func TestStep(t *testing.T) {
	tests := []struct {
		op   Operator
		a, b float64
		want float64
	}{
		{Add, 1, 2, 3},
		{Multiply, 3, 2, 6},
		{Divide, 3, 2, 1.5},
	}
	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			o := &Operand[float64]{A: tt.a, B: tt.b}
			body, err := Step(tt.op, o)
			require.NoError(t, err)

			body()
			assert.Equal(t, tt.want, o.A)
			assert.Equal(t, tt.b, o.B)
		})
	}
}

func TestStepUnknownOperator(t *testing.T) {
	_, err := Step(Operator("modulo"), &Operand[float32]{})
	assert.Equal(t, ErrUnknownOperator, errors.Cause(err))
}

func TestTrialsResetOperandBetweenTrials(t *testing.T) {
	operand := &Operand[float32]{}
	trials, err := Trials(PrecisionFP32, operand, 1000)
	require.NoError(t, err)
	require.Len(t, trials, 3)

	suite := benchmark.NewSuite(nil, nil)
	for _, trial := range trials {
		var first float32
		seen := false
		op := trial.Op
		trial.Op = func() {
			if !seen {
				first, seen = operand.A, true
			}
			op()
		}

		_, err := suite.RunTrial(trial)
		require.NoError(t, err, trial.Label)
		assert.Equal(t, float32(InitialValue), first, trial.Label)
	}

	assert.Equal(t, float32(InitialValue), operand.A)
	assert.Equal(t, float64(InitialValue), Sink)
}

func TestAdditionAccumulates(t *testing.T) {
	operand := &Operand[float64]{}
	trials, err := Trials(PrecisionFP64, operand, 1000)
	require.NoError(t, err)

	suite := benchmark.NewSuite(nil, nil)
	result, err := suite.RunTrial(trials[0])
	require.NoError(t, err)

	assert.Equal(t, "Addition loop", result.Label)
	assert.Equal(t, 1001.0, operand.A)
	assert.Equal(t, 1001.0, Sink)
}

func TestVerifyDetectsContamination(t *testing.T) {
	o := &Operand[float64]{A: 2, B: 1}
	assert.Equal(t, ErrContaminated, errors.Cause(verify(Multiply, o)))

	o = &Operand[float64]{A: 1, B: 3}
	assert.Equal(t, ErrContaminated, errors.Cause(verify(Divide, o)))

	o32 := &Operand[float32]{A: math32.Inf(1), B: 1}
	assert.Equal(t, ErrContaminated, errors.Cause(verify(Add, o32)))
}

func TestSizeNote(t *testing.T) {
	assert.Contains(t, SizeNote[float32](), "a and b have size 4")
	assert.Contains(t, SizeNote[float64](), "a and b have size 8")
}

func TestPrecisionSection(t *testing.T) {
	assert.Equal(t, "SINGLE PRECISION TIMINGS", PrecisionFP32.Section())
	assert.Equal(t, "DOUBLE PRECISION TIMINGS", PrecisionFP64.Section())
}

func TestNewSuiteReport(t *testing.T) {
	var buf bytes.Buffer
	suite, err := NewSuite(nil, report.NewWriter(&buf), 500)
	require.NoError(t, err)
	require.Len(t, suite.Trials(), 6)

	require.NoError(t, suite.RunAll(context.Background()))

	records, err := report.Parse(&buf)
	require.NoError(t, err)
	require.Len(t, records, 6)

	for i, record := range records {
		assert.Equal(t, Operators[i%3].Label(), record.Label)
		assert.GreaterOrEqual(t, record.ElapsedSeconds, 0.0)
	}
	assert.Equal(t, "SINGLE PRECISION TIMINGS", records[0].Section)
	assert.Equal(t, "DOUBLE PRECISION TIMINGS", records[5].Section)
}

func TestNewSuiteInvalidTripCount(t *testing.T) {
	suite, err := NewSuite(nil, nil, 0)
	require.NoError(t, err)

	err = suite.RunAll(context.Background())
	assert.True(t, errors.Is(err, benchmark.ErrInvalidTripCount))
}

func BenchmarkFloat32Add(b *testing.B) {
	o := &Operand[float32]{}
	o.Reset()
	body, _ := Step(Add, o)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		body()
	}
}
