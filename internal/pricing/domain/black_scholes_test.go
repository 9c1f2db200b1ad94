package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlackScholesReferenceCall(t *testing.T) {
	// 经典场景：S=100, K=100, T=1, r=0.05, sigma=0.2, q=0
	m := NewBlackScholesModel()
	p := mustParams(t, 100, 100, 1, 0.05, 0.2, 0, true)

	price, err := m.Price(p)
	require.NoError(t, err)
	assert.InDelta(t, 10.450583572185565, price, 1e-9)
}

func TestBlackScholesPutCallParity(t *testing.T) {
	// C - P = S*e^(-qT) - K*e^(-rT)
	m := NewBlackScholesModel()
	call := mustParams(t, 100, 100, 1, 0.05, 0.2, 0.01, true)
	put := mustParams(t, 100, 100, 1, 0.05, 0.2, 0.01, false)

	callPrice, err := m.Price(call)
	require.NoError(t, err)
	putPrice, err := m.Price(put)
	require.NoError(t, err)

	want := 100*math.Exp(-0.01) - 100*math.Exp(-0.05)
	assert.InEpsilon(t, want, callPrice-putPrice, 1e-6)
}

func TestBlackScholesClosedFormGreeks(t *testing.T) {
	m := NewBlackScholesModel()
	p := mustParams(t, 100, 100, 1, 0.05, 0.2, 0, true)

	report, err := m.Greeks(p)
	require.NoError(t, err)
	require.True(t, report.Complete())

	assert.InDelta(t, 0.6368306511756191, report.Values[GreekDelta], 1e-9)
	assert.InDelta(t, 0.018762017345846895, report.Values[GreekGamma], 1e-9)
	assert.InDelta(t, -6.414027546438197, report.Values[GreekTheta], 1e-9)
	assert.InDelta(t, 37.52403469169379, report.Values[GreekVega], 1e-9)
	assert.InDelta(t, 53.232481545376345, report.Values[GreekRho], 1e-9)
}

func TestBlackScholesGreeksMatchFiniteDifferences(t *testing.T) {
	// 闭式希腊字母与共享有限差分引擎的一致性
	m := NewBlackScholesModel()
	fd := NewFiniteDifferenceEngine()

	for _, isCall := range []bool{true, false} {
		p := mustParams(t, 100, 100, 1, 0.05, 0.2, 0.015, isCall)

		closed, err := m.Greeks(p)
		require.NoError(t, err)
		numeric, err := fd.Greeks(m, p)
		require.NoError(t, err)
		require.True(t, numeric.Complete())

		assert.InDelta(t, closed.Values[GreekDelta], numeric.Values[GreekDelta], 1e-3)
		assert.InDelta(t, closed.Values[GreekGamma], numeric.Values[GreekGamma], 1e-4)
		assert.InDelta(t, closed.Values[GreekVega], numeric.Values[GreekVega], 1e-3)
		assert.InDelta(t, closed.Values[GreekRho], numeric.Values[GreekRho], 1e-3)
		// theta 为前向差分，精度受一阶截断误差限制
		assert.InDelta(t, closed.Values[GreekTheta], numeric.Values[GreekTheta], 1e-2)
	}
}

func TestBlackScholesDeltaBounds(t *testing.T) {
	m := NewBlackScholesModel()
	q := 0.03
	bound := math.Exp(-q * 1)

	for _, strike := range []float64{60, 90, 100, 110, 150} {
		call := mustParams(t, 100, strike, 1, 0.05, 0.2, q, true)
		report, err := m.Greeks(call)
		require.NoError(t, err)
		delta := report.Values[GreekDelta]
		assert.GreaterOrEqual(t, delta, 0.0)
		assert.LessOrEqual(t, delta, bound)

		put := mustParams(t, 100, strike, 1, 0.05, 0.2, q, false)
		report, err = m.Greeks(put)
		require.NoError(t, err)
		delta = report.Values[GreekDelta]
		assert.GreaterOrEqual(t, delta, -bound)
		assert.LessOrEqual(t, delta, 0.0)
	}
}

func TestBlackScholesDegenerateVolatility(t *testing.T) {
	// sigma*sqrt(T) 接近零必须显式失败，绝不返回 NaN
	m := NewBlackScholesModel()
	p := mustParams(t, 100, 100, 1e-10, 0.05, 1e-8, 0, true)

	_, err := m.Price(p)
	var degErr *NumericDegeneracyError
	require.ErrorAs(t, err, &degErr)
	assert.Equal(t, "sigma*sqrt(T)", degErr.Quantity)

	_, err = m.Greeks(p)
	require.ErrorAs(t, err, &degErr)
}

func TestBlackScholesRejectsInvalidParams(t *testing.T) {
	m := NewBlackScholesModel()
	p := OptionParameters{Spot: -1, Strike: 100, TimeToExpiry: 1, Volatility: 0.2}

	_, err := m.Price(p)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestImpliedVolatilityRoundTrip(t *testing.T) {
	m := NewBlackScholesModel()

	cases := []struct {
		p   OptionParameters
		vol float64
	}{
		{mustParams(t, 100, 100, 1, 0.05, 0.2, 0, true), 0.2},
		{mustParams(t, 100, 110, 0.5, 0.03, 0.35, 0.02, false), 0.35},
	}
	for _, tc := range cases {
		price, err := m.Price(tc.p)
		require.NoError(t, err)

		iv, err := m.ImpliedVolatility(price, tc.p)
		require.NoError(t, err)
		assert.InDelta(t, tc.vol, iv, 1e-4)
	}
}

func TestImpliedVolatilityRejectsBadMarketPrice(t *testing.T) {
	m := NewBlackScholesModel()
	p := mustParams(t, 100, 100, 1, 0.05, 0.2, 0, true)

	_, err := m.ImpliedVolatility(-1, p)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "marketPrice", vErr.Field)
}
