package application

import (
	"context"
	"math"

	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
)

// PricingQueryService 处理所有定价相关的查询操作（Queries）。
// 查询是纯计算或只读访问，不落库、不发事件。
type PricingQueryService struct {
	repo     domain.PricingRepository
	analytic *domain.BlackScholesModel
}

// NewPricingQueryService 构造函数。
func NewPricingQueryService(repo domain.PricingRepository) *PricingQueryService {
	return &PricingQueryService{
		repo:     repo,
		analytic: domain.NewBlackScholesModel(),
	}
}

// GetGreeks 计算希腊字母，允许部分失败：失败的字母以错误原因返回。
func (s *PricingQueryService) GetGreeks(ctx context.Context, query GreeksQuery) (*GreeksDTO, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	params, err := s.toParams(query.OptionType, query.Spot, query.Strike, query.TimeToExpiry, query.RiskFreeRate, query.Volatility, query.DividendYield)
	if err != nil {
		return nil, err
	}
	model, err := buildModel(query.PricingModel, query.LatticeSteps)
	if err != nil {
		return nil, err
	}
	report, err := model.Greeks(params)
	if err != nil {
		return nil, err
	}
	return newGreeksDTO(model.Name(), report), nil
}

// GetEarlyExerciseBoundary 提取美式提前行权边界。
// 仅对美式格点有意义；欧式配置返回 UnsupportedOperationError。
func (s *PricingQueryService) GetEarlyExerciseBoundary(ctx context.Context, query LatticeQuery) (*BoundaryDTO, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	params, model, err := s.latticeFor(query)
	if err != nil {
		return nil, err
	}
	boundary, err := model.EarlyExerciseBoundary(params)
	if err != nil {
		return nil, err
	}

	dto := &BoundaryDTO{
		Steps:    model.Config().Steps,
		Boundary: make([]*float64, len(boundary)),
	}
	for i, b := range boundary {
		if math.IsNaN(b) {
			continue // 无行权点的步保持 null
		}
		v := b
		dto.Boundary[i] = &v
	}
	return dto, nil
}

// GetPriceLattice 诊断访问器：返回标的与期权价值两张三角形格点。
// 每次调用重新计算，绝不复用之前调用的缓存。
func (s *PricingQueryService) GetPriceLattice(ctx context.Context, query LatticeQuery) (*LatticeDTO, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	params, model, err := s.latticeFor(query)
	if err != nil {
		return nil, err
	}
	underlying, err := model.UnderlyingLattice(params)
	if err != nil {
		return nil, err
	}
	values, err := model.ValueLattice(params)
	if err != nil {
		return nil, err
	}
	return &LatticeDTO{
		Steps:      model.Config().Steps,
		Underlying: underlying,
		Values:     values,
	}, nil
}

// GetImpliedVolatility 用 Newton-Raphson 从市场价反解隐含波动率。
func (s *PricingQueryService) GetImpliedVolatility(ctx context.Context, query ImpliedVolatilityQuery) (float64, error) {
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}
	// 波动率字段只是求解起点的占位，参数校验要求其为正
	params, err := s.toParams(query.OptionType, query.Spot, query.Strike, query.TimeToExpiry, query.RiskFreeRate, 0.5, query.DividendYield)
	if err != nil {
		return 0, err
	}
	return s.analytic.ImpliedVolatility(query.MarketPrice, params)
}

// GetLatestResult 获取最新定价结果。
func (s *PricingQueryService) GetLatestResult(ctx context.Context, symbol string) (*domain.PricingResult, error) {
	return s.repo.GetLatestPricingResult(ctx, symbol)
}

// GetHistory 按符号获取定价历史。
func (s *PricingQueryService) GetHistory(ctx context.Context, symbol string, limit int) ([]*domain.PricingResult, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.GetPricingResultHistory(ctx, symbol, limit)
}

// ListModels 返回支持的模型标识。
func (s *PricingQueryService) ListModels() []string {
	return SupportedModels()
}

func (s *PricingQueryService) toParams(optionType string, spot, strike, timeToExpiry, rate, vol, div float64) (domain.OptionParameters, error) {
	t, err := parseOptionType(optionType)
	if err != nil {
		return domain.OptionParameters{}, err
	}
	return domain.NewOptionParameters(spot, strike, timeToExpiry, rate, vol, div, t.IsCall())
}

func (s *PricingQueryService) latticeFor(query LatticeQuery) (domain.OptionParameters, *domain.BinomialTreeModel, error) {
	params, err := s.toParams(query.OptionType, query.Spot, query.Strike, query.TimeToExpiry, query.RiskFreeRate, query.Volatility, query.DividendYield)
	if err != nil {
		return domain.OptionParameters{}, nil, err
	}
	steps := query.Steps
	if steps <= 0 {
		steps = defaultLatticeSteps
	}
	model, err := domain.NewBinomialTreeModel(domain.LatticeConfig{
		Steps:            steps,
		AmericanExercise: query.AmericanExercise,
	})
	if err != nil {
		return domain.OptionParameters{}, nil, err
	}
	return params, model, nil
}
