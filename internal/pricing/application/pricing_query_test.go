package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
)

func newQueryService() *PricingQueryService {
	return NewPricingQueryService(&memoryRepository{})
}

func TestGetGreeksAnalytic(t *testing.T) {
	svc := newQueryService()

	dto, err := svc.GetGreeks(context.Background(), GreeksQuery{
		OptionType:   "CALL",
		Spot:         100,
		Strike:       100,
		TimeToExpiry: 1,
		RiskFreeRate: 0.05,
		Volatility:   0.2,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ModelNameBlackScholes, dto.PricingModel)
	assert.Len(t, dto.Values, 5)
	assert.Empty(t, dto.Failed)
	assert.InDelta(t, 0.6368, dto.Values[string(domain.GreekDelta)], 1e-3)
}

func TestGetGreeksPartialFailure(t *testing.T) {
	svc := newQueryService()

	// T 过小使前向差分的 T-h 跨过零，theta 单独失败
	dto, err := svc.GetGreeks(context.Background(), GreeksQuery{
		OptionType:   "PUT",
		Spot:         100,
		Strike:       100,
		TimeToExpiry: 1e-3,
		RiskFreeRate: 0.05,
		Volatility:   0.2,
		PricingModel: domain.ModelNameBinomial,
		LatticeSteps: 50,
	})
	require.NoError(t, err)
	assert.Len(t, dto.Values, 4)
	assert.Contains(t, dto.Failed, string(domain.GreekTheta))
}

func TestGetEarlyExerciseBoundary(t *testing.T) {
	svc := newQueryService()

	query := LatticeQuery{
		OptionType:       "PUT",
		Spot:             100,
		Strike:           110,
		TimeToExpiry:     0.5,
		RiskFreeRate:     0.03,
		Volatility:       0.25,
		DividendYield:    0.02,
		Steps:            200,
		AmericanExercise: true,
	}
	dto, err := svc.GetEarlyExerciseBoundary(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, 200, dto.Steps)
	require.Len(t, dto.Boundary, 201)
	assert.Nil(t, dto.Boundary[0], "root step has no exercise point")
	require.NotNil(t, dto.Boundary[200])
	assert.InDelta(t, 107.788415, *dto.Boundary[200], 1e-5)
}

func TestGetEarlyExerciseBoundaryEuropeanRejected(t *testing.T) {
	svc := newQueryService()

	query := LatticeQuery{
		OptionType:   "PUT",
		Spot:         100,
		Strike:       110,
		TimeToExpiry: 0.5,
		RiskFreeRate: 0.03,
		Volatility:   0.25,
		Steps:        100,
	}
	_, err := svc.GetEarlyExerciseBoundary(context.Background(), query)
	var opErr *domain.UnsupportedOperationError
	require.ErrorAs(t, err, &opErr)
}

func TestGetPriceLattice(t *testing.T) {
	svc := newQueryService()

	dto, err := svc.GetPriceLattice(context.Background(), LatticeQuery{
		OptionType:   "CALL",
		Spot:         100,
		Strike:       100,
		TimeToExpiry: 1,
		RiskFreeRate: 0.05,
		Volatility:   0.2,
		Steps:        10,
	})
	require.NoError(t, err)
	require.Len(t, dto.Underlying, 11)
	require.Len(t, dto.Values, 11)
	for i, row := range dto.Underlying {
		assert.Len(t, row, i+1)
	}
	assert.InDelta(t, 100, dto.Underlying[0][0], 1e-12)
}

func TestGetImpliedVolatility(t *testing.T) {
	svc := newQueryService()

	// 市场价取自 sigma=0.2 的解析价，反解应还原
	vol, err := svc.GetImpliedVolatility(context.Background(), ImpliedVolatilityQuery{
		OptionType:   "CALL",
		MarketPrice:  10.450583572185565,
		Spot:         100,
		Strike:       100,
		TimeToExpiry: 1,
		RiskFreeRate: 0.05,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.2, vol, 1e-5)
}

func TestGetHistoryDefaultLimit(t *testing.T) {
	repo := &memoryRepository{}
	svc := NewPricingQueryService(repo)
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		require.NoError(t, repo.SavePricingResult(ctx, &domain.PricingResult{Symbol: "HIST"}))
	}
	history, err := svc.GetHistory(ctx, "HIST", 0)
	require.NoError(t, err)
	assert.Len(t, history, 50)
}

func TestListModels(t *testing.T) {
	svc := newQueryService()
	assert.ElementsMatch(t, []string{
		domain.ModelNameBlackScholes,
		domain.ModelNameBinomial,
		domain.ModelNameBinomialAmerican,
	}, svc.ListModels())
}
