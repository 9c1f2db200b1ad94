package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLattice(t *testing.T, steps int, american bool) *BinomialTreeModel {
	t.Helper()
	m, err := NewBinomialTreeModel(LatticeConfig{Steps: steps, AmericanExercise: american})
	require.NoError(t, err)
	return m
}

func TestBinomialTreeReferenceCall(t *testing.T) {
	// 500 步欧式格点价格应落在解析价 10.45 的 0.05 之内
	m := mustLattice(t, 500, false)
	p := mustParams(t, 100, 100, 1, 0.05, 0.2, 0, true)

	price, err := m.Price(p)
	require.NoError(t, err)
	assert.InDelta(t, 10.450583572185565, price, 0.05)
}

func TestBinomialTreeConvergesToAnalytic(t *testing.T) {
	// CRR 收敛是 O(1/N)：误差随步数单调收缩
	analytic := NewBlackScholesModel()
	p := mustParams(t, 100, 100, 1, 0.05, 0.2, 0, true)

	ref, err := analytic.Price(p)
	require.NoError(t, err)

	prevErr := math.Inf(1)
	for _, steps := range []int{50, 200, 1000} {
		m := mustLattice(t, steps, false)
		price, err := m.Price(p)
		require.NoError(t, err)

		absErr := math.Abs(price - ref)
		assert.Less(t, absErr, prevErr, "error must shrink as steps grow (steps=%d)", steps)
		prevErr = absErr
	}
	// N=1000 时的绝对误差约 2e-3（N*err 约为常数 2）
	assert.Less(t, prevErr, 2.5e-3)
}

func TestBinomialTreePutCallParity(t *testing.T) {
	// 欧式格点独立满足平价关系
	m := mustLattice(t, 500, false)
	call := mustParams(t, 100, 100, 1, 0.05, 0.2, 0.01, true)
	put := mustParams(t, 100, 100, 1, 0.05, 0.2, 0.01, false)

	callPrice, err := m.Price(call)
	require.NoError(t, err)
	putPrice, err := m.Price(put)
	require.NoError(t, err)

	want := 100*math.Exp(-0.01) - 100*math.Exp(-0.05)
	assert.InEpsilon(t, want, callPrice-putPrice, 1e-6)
}

func TestAmericanPremiumOverEuropean(t *testing.T) {
	// S=100, K=110, T=0.5, r=0.03, sigma=0.25, q=0.02 美式看跌 > 欧式看跌
	p := mustParams(t, 100, 110, 0.5, 0.03, 0.25, 0.02, false)

	european, err := mustLattice(t, 200, false).Price(p)
	require.NoError(t, err)
	american, err := mustLattice(t, 200, true).Price(p)
	require.NoError(t, err)

	assert.Greater(t, american, european)
	assert.InDelta(t, 12.91187044481163, european, 1e-9)
	assert.InDelta(t, 13.040266101037881, american, 1e-9)
}

func TestAmericanNeverBelowEuropean(t *testing.T) {
	cases := []OptionParameters{
		mustParams(t, 100, 100, 1, 0.05, 0.2, 0.04, true),
		mustParams(t, 100, 120, 2, 0.05, 0.3, 0.06, true),
		mustParams(t, 100, 100, 1, -0.01, 0.2, 0, false),
		mustParams(t, 100, 90, 0.25, 0.02, 0.4, 0.01, false),
	}
	for _, p := range cases {
		european, err := mustLattice(t, 200, false).Price(p)
		require.NoError(t, err)
		american, err := mustLattice(t, 200, true).Price(p)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, american+1e-12, european)
	}
}

func TestUnderlyingLatticeMonotonicity(t *testing.T) {
	// 同一步内节点标的价随下行次数严格递减
	m := mustLattice(t, 60, false)
	p := mustParams(t, 100, 100, 1, 0.05, 0.2, 0, true)

	grid, err := m.UnderlyingLattice(p)
	require.NoError(t, err)
	require.Len(t, grid, 61)

	for i, row := range grid {
		require.Len(t, row, i+1)
		for j := 0; j+1 < len(row); j++ {
			assert.Greater(t, row[j], row[j+1], "step %d", i)
		}
	}
	assert.InDelta(t, 100.0, grid[0][0], 1e-12)
}

func TestValueLatticeRootMatchesPrice(t *testing.T) {
	// 诊断访问器重新计算而不是复用缓存，根节点必须与 Price 一致
	m := mustLattice(t, 100, true)
	p := mustParams(t, 100, 110, 0.5, 0.03, 0.25, 0.02, false)

	price, err := m.Price(p)
	require.NoError(t, err)
	grid, err := m.ValueLattice(p)
	require.NoError(t, err)

	require.Len(t, grid, 101)
	assert.InDelta(t, price, grid[0][0], 1e-12)

	// 终端层为立即行权收益
	for j, v := range grid[100] {
		assert.GreaterOrEqual(t, v, 0.0, "terminal node %d", j)
	}
}

func TestInvalidLatticeProbability(t *testing.T) {
	// 极端利率对极小波动率：风险中性概率越出 [0,1]
	m := mustLattice(t, 1, false)
	p := mustParams(t, 100, 100, 1, 1.0, 0.01, 0, true)

	_, err := m.Price(p)
	var latErr *InvalidLatticeError
	require.ErrorAs(t, err, &latErr)
	assert.Greater(t, latErr.Probability, 1.0)
}

func TestEarlyExerciseBoundaryAmericanPut(t *testing.T) {
	m := mustLattice(t, 200, true)
	p := mustParams(t, 100, 110, 0.5, 0.03, 0.25, 0.02, false)

	boundary, err := m.EarlyExerciseBoundary(p)
	require.NoError(t, err)
	require.Len(t, boundary, 201)

	// 根节点不在行权区域内（美式价 13.04 > 内在价值 10）
	assert.True(t, math.IsNaN(boundary[0]))

	defined := 0
	for _, b := range boundary {
		if math.IsNaN(b) {
			continue
		}
		defined++
		assert.LessOrEqual(t, b, p.Strike)
	}
	assert.Greater(t, defined, 0)

	// 终端层取行权有利方向的极值：看跌为最大的价内标的价
	assert.InDelta(t, 107.78841508846374, boundary[200], 1e-9)
}

func TestEarlyExerciseBoundaryRequiresAmerican(t *testing.T) {
	m := mustLattice(t, 100, false)
	p := mustParams(t, 100, 100, 1, 0.05, 0.2, 0, false)

	_, err := m.EarlyExerciseBoundary(p)
	var opErr *UnsupportedOperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "earlyExerciseBoundary", opErr.Operation)
}

func TestBinomialTreeModelName(t *testing.T) {
	assert.Equal(t, ModelNameBinomial, mustLattice(t, 10, false).Name())
	assert.Equal(t, ModelNameBinomialAmerican, mustLattice(t, 10, true).Name())
}

func TestNewBinomialTreeModelRejectsBadConfig(t *testing.T) {
	_, err := NewBinomialTreeModel(LatticeConfig{Steps: 0})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)

	_, err = NewBinomialTreeModel(LatticeConfig{Steps: MaxLatticeSteps + 1})
	var cErr *ConfigurationError
	require.ErrorAs(t, err, &cErr)
}
