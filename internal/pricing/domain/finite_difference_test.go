package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiniteDifferenceLatticeDeltaBounds(t *testing.T) {
	// 有限差分 Delta：看涨在 [0, e^(-qT)]，看跌在 [-e^(-qT), 0]
	q := 0.02
	bound := math.Exp(-q * 1)
	m := mustLattice(t, 200, false)

	for _, strike := range []float64{80, 100, 120} {
		call := mustParams(t, 100, strike, 1, 0.05, 0.2, q, true)
		report, err := m.Greeks(call)
		require.NoError(t, err)
		delta, ok := report.Value(GreekDelta)
		require.True(t, ok)
		assert.GreaterOrEqual(t, delta, 0.0)
		assert.LessOrEqual(t, delta, bound)

		put := mustParams(t, 100, strike, 1, 0.05, 0.2, q, false)
		report, err = m.Greeks(put)
		require.NoError(t, err)
		delta, ok = report.Value(GreekDelta)
		require.True(t, ok)
		assert.GreaterOrEqual(t, delta, -bound)
		assert.LessOrEqual(t, delta, 0.0)
	}
}

func TestFiniteDifferenceLatticeAgreesWithAnalytic(t *testing.T) {
	// 欧式格点的有限差分 Delta/Vega/Rho 应接近 Black-Scholes 闭式值。
	// Gamma 不在断言范围内：CRR 价格对现价的二阶差分受离散化噪声支配。
	analytic := NewBlackScholesModel()
	m := mustLattice(t, 500, false)
	p := mustParams(t, 100, 100, 1, 0.05, 0.2, 0, true)

	closed, err := analytic.Greeks(p)
	require.NoError(t, err)
	numeric, err := m.Greeks(p)
	require.NoError(t, err)

	assert.InDelta(t, closed.Values[GreekDelta], numeric.Values[GreekDelta], 5e-3)
	assert.InDelta(t, closed.Values[GreekVega], numeric.Values[GreekVega], 0.2)
	assert.InDelta(t, closed.Values[GreekRho], numeric.Values[GreekRho], 0.2)
	assert.InDelta(t, closed.Values[GreekTheta], numeric.Values[GreekTheta], 5e-2)
}

func TestFiniteDifferenceThetaFailureIsIsolated(t *testing.T) {
	// 剩余期限短于 theta 步长：theta 显式失败，其余四个字母不受影响
	fd := NewFiniteDifferenceEngine()
	m := NewBlackScholesModel()
	p := mustParams(t, 100, 100, 1e-3, 0.05, 0.2, 0, true)

	report, err := fd.Greeks(m, p)
	require.NoError(t, err)
	require.False(t, report.Complete())

	var vErr *ValidationError
	require.ErrorAs(t, report.Errors[GreekTheta], &vErr)
	assert.Equal(t, "timeToExpiry", vErr.Field)

	for _, g := range []Greek{GreekDelta, GreekGamma, GreekVega, GreekRho} {
		v, ok := report.Value(g)
		require.True(t, ok, "greek %s should still be computed", g)
		assert.False(t, math.IsNaN(v))
	}
}

func TestFiniteDifferenceVegaFailureOnTinyVolatility(t *testing.T) {
	// 波动率小到绝对步长下限把 sigma-h 推成负数：vega 失败，其余保留
	fd := NewFiniteDifferenceEngine()
	m := NewBlackScholesModel()
	p := mustParams(t, 100, 100, 1, 0.05, 5e-7, 0, true)

	report, err := fd.Greeks(m, p)
	require.NoError(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, report.Errors[GreekVega], &vErr)
	assert.Equal(t, "volatility", vErr.Field)
}

func TestFiniteDifferenceRejectsInvalidBase(t *testing.T) {
	fd := NewFiniteDifferenceEngine()
	m := NewBlackScholesModel()

	_, err := fd.Greeks(m, OptionParameters{Spot: 0})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}
