package uncertainty_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/zephyrtronium/uncertainty"
	"github.com/zephyrtronium/uncertainty/mock_uncertainty"
)

var floatEq = cmp.Comparer(func(a, b *big.Float) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
})

func TestBindNoVariables(t *testing.T) {
	_, err := uncertainty.NewEngine().Bind(parse(t, "2 pi + 3"))
	assert.ErrorIs(t, err, uncertainty.ErrNoVariables)
}

func TestBindVars(t *testing.T) {
	a, err := uncertainty.NewEngine().Bind(parse(t, "z y + x z"))
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "z"}, a.Vars())
	assert.Equal(t, uncertainty.ExpressionBound, a.State())
}

func TestSuppliedSkipsSeries(t *testing.T) {
	// Series is never expected, so the controller fails the test if the
	// analysis asks for measurements.
	ctrl := gomock.NewController(t)
	src := mock_uncertainty.NewMockMeasurementSource(ctrl)
	src.EXPECT().Average("x").Return(big.NewFloat(2), nil)
	src.EXPECT().Average("y").Return(big.NewFloat(3), nil)
	src.EXPECT().Error("x").Return(float(t, "0.1"), nil)
	src.EXPECT().Error("y").Return(float(t, "0.2"), nil)

	r, err := uncertainty.NewEngine().Run(parse(t, "x * y"), src)
	require.NoError(t, err)
	requireEqual(t, "6", r.Result)
	requireEqual(t, "0.5", r.ResultError)
	for _, q := range r.Vars {
		assert.False(t, q.AverageDerived, q.Name)
		assert.False(t, q.ErrorDerived, q.Name)
		assert.Zero(t, q.N, q.Name)
	}
}

func TestDerivedSeriesOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mock_uncertainty.NewMockMeasurementSource(ctrl)
	src.EXPECT().Average("x").Return(nil, nil)
	src.EXPECT().Error("x").Return(nil, nil)
	src.EXPECT().Series("x").Return(series(t, "1 2 3 4"), nil).Times(1)

	r, err := uncertainty.NewEngine().Run(parse(t, "2 x"), src)
	require.NoError(t, err)
	requireEqual(t, "5", r.Result)
	requireEqual(t, "1.29099444873581", r.ResultError)
	require.Len(t, r.Vars, 1)
	q := r.Vars[0]
	assert.True(t, q.AverageDerived)
	assert.True(t, q.ErrorDerived)
	assert.Equal(t, 4, q.N)
	requireEqual(t, "2.5", q.Average)
	requireEqual(t, "0.645497224367903", q.Error)
}

func TestSuppliedAverageDerivedError(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mock_uncertainty.NewMockMeasurementSource(ctrl)
	src.EXPECT().Average("x").Return(big.NewFloat(2), nil)
	src.EXPECT().Error("x").Return(nil, nil)
	src.EXPECT().Series("x").Return(series(t, "1 2 3 4"), nil).Times(1)

	r, err := uncertainty.NewEngine().Run(parse(t, "x"), src)
	require.NoError(t, err)
	q := r.Vars[0]
	assert.False(t, q.AverageDerived)
	assert.True(t, q.ErrorDerived)
	// The standard error is taken about the supplied average, not the mean.
	requireEqual(t, "0.707106781186548", q.Error)
	requireEqual(t, "0.707106781186548", r.ResultError)
}

func TestSuppliedErrorDerivedAverage(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mock_uncertainty.NewMockMeasurementSource(ctrl)
	src.EXPECT().Average("x").Return(nil, nil)
	src.EXPECT().Error("x").Return(big.NewFloat(0.5), nil)
	// A single measurement is enough when the error is supplied.
	src.EXPECT().Series("x").Return(series(t, "7"), nil).Times(1)

	r, err := uncertainty.NewEngine().Run(parse(t, "x^2"), src)
	require.NoError(t, err)
	requireEqual(t, "49", r.Result)
	requireEqual(t, "7", r.ResultError)
	assert.True(t, r.Vars[0].AverageDerived)
	assert.False(t, r.Vars[0].ErrorDerived)
}

func TestSourceError(t *testing.T) {
	oops := errors.New("oops")
	ctrl := gomock.NewController(t)
	src := mock_uncertainty.NewMockMeasurementSource(ctrl)
	src.EXPECT().Average("x").Return(nil, nil)
	src.EXPECT().Series("x").Return(nil, oops)

	a, err := uncertainty.NewEngine().Bind(parse(t, "x"))
	require.NoError(t, err)
	err = a.ResolveOperatingPoints(src)
	assert.ErrorIs(t, err, oops)
	var ve *uncertainty.VariableError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "x", ve.Var)
	assert.Equal(t, uncertainty.ExpressionBound, a.State())
}

func TestReport(t *testing.T) {
	src := &uncertainty.MapSource{
		Averages:     map[string]*big.Float{"y": big.NewFloat(3)},
		Errors:       map[string]*big.Float{"y": float(t, "0.2")},
		Measurements: map[string]uncertainty.Series{"x": series(t, "1 2 3 4")},
	}
	r, err := uncertainty.NewEngine().Run(parse(t, "x y"), src)
	require.NoError(t, err)
	want := &uncertainty.Report{
		Formula:     "x * y",
		Digits:      15,
		Result:      big.NewFloat(7.5),
		ResultError: big.NewFloat(2),
		Vars: []uncertainty.Quantity{
			{
				Name:           "x",
				Average:        big.NewFloat(2.5),
				Error:          r.Vars[0].Error,
				AverageDerived: true,
				ErrorDerived:   true,
				N:              4,
			},
			{
				Name:    "y",
				Average: big.NewFloat(3),
				Error:   r.Vars[1].Error,
			},
		},
	}
	if diff := cmp.Diff(want, r, floatEq); diff != "" {
		t.Errorf("wrong report (-want +got):\n%s", diff)
	}
	requireEqual(t, "0.645497224367903", r.Vars[0].Error)
	requireEqual(t, "0.2", r.Vars[1].Error)
}

func TestStateOrder(t *testing.T) {
	eng := uncertainty.NewEngine()
	src := &uncertainty.MapSource{
		Averages: map[string]*big.Float{"x": big.NewFloat(1)},
		Errors:   map[string]*big.Float{"x": big.NewFloat(1)},
	}
	a, err := eng.Bind(parse(t, "x"))
	require.NoError(t, err)

	checkState := func(err error, want, have uncertainty.State) {
		t.Helper()
		var se *uncertainty.StateError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, want, se.Want)
		assert.Equal(t, have, se.Have)
	}
	checkState(a.ResolveErrors(src), uncertainty.OperatingPointsResolved, uncertainty.ExpressionBound)
	checkState(a.ComputeResult(), uncertainty.ErrorsResolved, uncertainty.ExpressionBound)
	checkState(a.ComputeResultError(), uncertainty.ResultComputed, uncertainty.ExpressionBound)
	_, err = a.Report()
	checkState(err, uncertainty.ResultErrorComputed, uncertainty.ExpressionBound)

	steps := []struct {
		run  func() error
		want uncertainty.State
	}{
		{func() error { return a.ResolveOperatingPoints(src) }, uncertainty.OperatingPointsResolved},
		{func() error { return a.ResolveErrors(src) }, uncertainty.ErrorsResolved},
		{a.ComputeResult, uncertainty.ResultComputed},
		{a.ComputeResultError, uncertainty.ResultErrorComputed},
		{func() error { _, err := a.Report(); return err }, uncertainty.Done},
	}
	for _, s := range steps {
		require.NoError(t, s.run())
		assert.Equal(t, s.want, a.State())
	}
	checkState(a.ResolveOperatingPoints(src), uncertainty.ExpressionBound, uncertainty.Done)
	_, err = a.Report()
	checkState(err, uncertainty.ResultErrorComputed, uncertainty.Done)
}

func TestResolveRetry(t *testing.T) {
	a, err := uncertainty.NewEngine().Bind(parse(t, "x"))
	require.NoError(t, err)
	err = a.ResolveOperatingPoints(&uncertainty.MapSource{})
	var empty *uncertainty.EmptySeriesError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, "x", empty.Var)
	assert.Equal(t, uncertainty.ExpressionBound, a.State())

	src := &uncertainty.MapSource{Measurements: map[string]uncertainty.Series{"x": series(t, "1 3")}}
	require.NoError(t, a.ResolveOperatingPoints(src))
	require.NoError(t, a.ResolveErrors(src))
	require.NoError(t, a.ComputeResult())
	require.NoError(t, a.ComputeResultError())
	r, err := a.Report()
	require.NoError(t, err)
	requireEqual(t, "2", r.Result)
	requireEqual(t, "1", r.ResultError)
}

func TestAnalysisErrors(t *testing.T) {
	cases := []struct {
		name  string
		expr  string
		src   *uncertainty.MapSource
		check func(t *testing.T, err error)
	}{
		{
			name: "short",
			expr: "x",
			src:  &uncertainty.MapSource{Measurements: map[string]uncertainty.Series{"x": series(t, "5")}},
			check: func(t *testing.T, err error) {
				var short *uncertainty.InsufficientSamplesError
				require.ErrorAs(t, err, &short)
				assert.Equal(t, 1, short.N)
			},
		},
		{
			name: "negative",
			expr: "x",
			src: &uncertainty.MapSource{
				Averages: map[string]*big.Float{"x": big.NewFloat(1)},
				Errors:   map[string]*big.Float{"x": big.NewFloat(-0.5)},
			},
			check: func(t *testing.T, err error) {
				var neg *uncertainty.NegativeErrorError
				require.ErrorAs(t, err, &neg)
				assert.Equal(t, "x", neg.Var)
				assert.Equal(t, "-0.5", neg.Value)
			},
		},
		{
			name: "empty",
			expr: "x + y",
			src: &uncertainty.MapSource{
				Averages: map[string]*big.Float{"x": big.NewFloat(1), "y": big.NewFloat(1)},
				Errors:   map[string]*big.Float{"x": big.NewFloat(1)},
			},
			check: func(t *testing.T, err error) {
				var ve *uncertainty.VariableError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, "y", ve.Var)
				var empty *uncertainty.EmptySeriesError
				assert.ErrorAs(t, err, &empty)
			},
		},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			_, err := uncertainty.NewEngine().Run(parse(t, c.expr), c.src)
			require.Error(t, err)
			c.check(t, err)
		})
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Done", uncertainty.Done.String())
	assert.Equal(t, "State(9)", uncertainty.State(9).String())
}
