package application

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/pkg/contextx"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/messagequeue"
)

// PricingCommandService 处理定价相关的命令操作（Commands）。
// 定价结果在单个事务内落库，领域事件通过 Outbox 发布。
type PricingCommandService struct {
	repo       domain.PricingRepository
	publisher  messagequeue.EventPublisher
	marketData domain.MarketDataClient
}

// NewPricingCommandService 创建新的 PricingCommandService 实例。
func NewPricingCommandService(repo domain.PricingRepository, publisher messagequeue.EventPublisher, marketData domain.MarketDataClient) *PricingCommandService {
	return &PricingCommandService{
		repo:       repo,
		publisher:  publisher,
		marketData: marketData,
	}
}

// PriceOption 期权定价。
// 构造参数对象 -> 校验 -> 定价引擎 -> 希腊字母 -> 落库 + 事件，整体失败即整体回滚。
func (c *PricingCommandService) PriceOption(ctx context.Context, cmd PriceOptionCommand) (*domain.PricingResult, error) {
	if cmd.Symbol == "" {
		return nil, errors.New("symbol is required")
	}
	optionType, err := parseOptionType(cmd.OptionType)
	if err != nil {
		return nil, err
	}

	spot, err := c.resolveSpot(ctx, cmd.Symbol, cmd.Spot)
	if err != nil {
		return nil, err
	}

	params, err := domain.NewOptionParameters(spot, cmd.Strike, cmd.TimeToExpiry, cmd.RiskFreeRate, cmd.Volatility, cmd.DividendYield, optionType.IsCall())
	if err != nil {
		return nil, err
	}
	model, err := buildModel(cmd.PricingModel, cmd.LatticeSteps)
	if err != nil {
		return nil, err
	}

	price, err := model.Price(params)
	if err != nil {
		c.publishPricingError(ctx, cmd.Symbol, optionType, model.Name(), err)
		return nil, err
	}
	greeks, err := model.Greeks(params)
	if err != nil {
		c.publishPricingError(ctx, cmd.Symbol, optionType, model.Name(), err)
		return nil, err
	}

	result := c.newResult(cmd.Symbol, optionType, model.Name(), params, price, greeks)

	err = c.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := c.repo.SavePricingResult(txCtx, result); err != nil {
			return err
		}
		if c.publisher == nil {
			return nil
		}
		tx := contextx.GetTx(txCtx)

		priced := domain.OptionPricedEvent{
			Symbol:          cmd.Symbol,
			OptionType:      optionType,
			PricingModel:    model.Name(),
			StrikePrice:     params.Strike,
			TimeToExpiry:    params.TimeToExpiry,
			OptionPrice:     price,
			UnderlyingPrice: params.Spot,
			Volatility:      params.Volatility,
			RiskFreeRate:    params.RiskFreeRate,
			DividendYield:   params.DividendYield,
			CalculatedAt:    result.CalculatedAt,
			OccurredOn:      time.Now(),
		}
		if err := c.publisher.PublishInTx(txCtx, tx, domain.OptionPricedEventType, cmd.Symbol, priced); err != nil {
			return err
		}

		calculated := domain.GreeksCalculatedEvent{
			Symbol:          cmd.Symbol,
			OptionType:      optionType,
			PricingModel:    model.Name(),
			StrikePrice:     params.Strike,
			UnderlyingPrice: params.Spot,
			Greeks:          greeks.Values,
			CalculatedAt:    result.CalculatedAt,
			OccurredOn:      time.Now(),
		}
		if len(greeks.Errors) > 0 {
			calculated.FailedGreeks = make(map[domain.Greek]string, len(greeks.Errors))
			for g, gErr := range greeks.Errors {
				calculated.FailedGreeks[g] = gErr.Error()
			}
		}
		return c.publisher.PublishInTx(txCtx, tx, domain.GreeksCalculatedEventType, cmd.Symbol, calculated)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CompareModels 同一合约在全部模型下定价并对比。
// 每个模型各生成一条历史记录，对比结果作为整体事件发布。
func (c *PricingCommandService) CompareModels(ctx context.Context, cmd CompareModelsCommand) (*domain.ModelComparison, error) {
	if cmd.Symbol == "" {
		return nil, errors.New("symbol is required")
	}
	optionType, err := parseOptionType(cmd.OptionType)
	if err != nil {
		return nil, err
	}
	spot, err := c.resolveSpot(ctx, cmd.Symbol, cmd.Spot)
	if err != nil {
		return nil, err
	}
	params, err := domain.NewOptionParameters(spot, cmd.Strike, cmd.TimeToExpiry, cmd.RiskFreeRate, cmd.Volatility, cmd.DividendYield, optionType.IsCall())
	if err != nil {
		return nil, err
	}

	comparison := &domain.ModelComparison{
		Symbol:     cmd.Symbol,
		ComparedAt: time.Now().Unix(),
	}
	results := make([]*domain.PricingResult, 0, len(SupportedModels()))
	prices := make([]float64, 0, len(SupportedModels()))

	for _, name := range SupportedModels() {
		model, err := buildModel(name, cmd.LatticeSteps)
		if err != nil {
			return nil, err
		}
		price, err := model.Price(params)
		if err != nil {
			c.publishPricingError(ctx, cmd.Symbol, optionType, name, err)
			return nil, err
		}
		greeks, err := model.Greeks(params)
		if err != nil {
			c.publishPricingError(ctx, cmd.Symbol, optionType, name, err)
			return nil, err
		}

		comparison.Entries = append(comparison.Entries, domain.ModelComparisonEntry{
			PricingModel: name,
			OptionPrice:  decimal.NewFromFloat(price),
			Greeks:       greeks,
		})
		results = append(results, c.newResult(cmd.Symbol, optionType, name, params, price, greeks))
		prices = append(prices, price)
	}

	for i := 0; i < len(comparison.Entries); i++ {
		for j := i + 1; j < len(comparison.Entries); j++ {
			comparison.Differences = append(comparison.Differences, domain.ModelPriceDifference{
				ModelA:     comparison.Entries[i].PricingModel,
				ModelB:     comparison.Entries[j].PricingModel,
				Difference: comparison.Entries[i].OptionPrice.Sub(comparison.Entries[j].OptionPrice),
			})
		}
	}

	err = c.repo.WithTx(ctx, func(txCtx context.Context) error {
		for _, r := range results {
			if err := c.repo.SavePricingResult(txCtx, r); err != nil {
				return err
			}
		}
		if c.publisher == nil {
			return nil
		}
		event := domain.ModelsComparedEvent{
			Symbol:     cmd.Symbol,
			Models:     SupportedModels(),
			Prices:     prices,
			ComparedAt: comparison.ComparedAt,
			OccurredOn: time.Now(),
		}
		return c.publisher.PublishInTx(txCtx, contextx.GetTx(txCtx), domain.ModelsComparedEventType, cmd.Symbol, event)
	})
	if err != nil {
		return nil, err
	}
	return comparison, nil
}

// BatchPriceOptions 批量定价：单个合约失败不阻塞其余合约。
func (c *PricingCommandService) BatchPriceOptions(ctx context.Context, cmd BatchPriceOptionsCommand) (*BatchPricingResult, error) {
	results := make([]*domain.PricingResult, 0, len(cmd.Contracts))
	successCount := 0
	failureCount := 0
	totalTime := 0.0

	for _, contract := range cmd.Contracts {
		startTime := time.Now()
		result, err := c.PriceOption(ctx, contract)
		totalTime += time.Since(startTime).Seconds()

		if err != nil {
			failureCount++
			logging.Error(ctx, "batch pricing contract failed", "batch_id", cmd.BatchID, "symbol", contract.Symbol, "error", err)
			continue
		}
		results = append(results, result)
		successCount++
	}

	avg := 0.0
	if len(cmd.Contracts) > 0 {
		avg = totalTime / float64(len(cmd.Contracts))
	}

	if c.publisher != nil {
		_ = c.publisher.Publish(ctx, domain.BatchPricingCompletedEventType, cmd.BatchID, domain.BatchPricingCompletedEvent{
			BatchID:        cmd.BatchID,
			Symbols:        extractSymbols(cmd.Contracts),
			TotalContracts: len(cmd.Contracts),
			SuccessCount:   successCount,
			FailureCount:   failureCount,
			AverageTime:    avg,
			CompletedAt:    time.Now().Unix(),
			OccurredOn:     time.Now(),
		})
	}

	return &BatchPricingResult{
		BatchID:      cmd.BatchID,
		Results:      results,
		SuccessCount: successCount,
		FailureCount: failureCount,
		AverageTime:  avg,
	}, nil
}

// resolveSpot 请求未携带现价时通过市场数据边界解析。
func (c *PricingCommandService) resolveSpot(ctx context.Context, symbol string, spot float64) (float64, error) {
	if spot != 0 {
		return spot, nil
	}
	if c.marketData == nil {
		return 0, errors.New("spot is required when no market data client is configured")
	}
	return c.marketData.GetPrice(ctx, symbol)
}

func (c *PricingCommandService) newResult(symbol string, optionType domain.OptionType, modelName string, params domain.OptionParameters, price float64, greeks domain.GreeksReport) *domain.PricingResult {
	result := &domain.PricingResult{
		Symbol:          symbol,
		OptionType:      optionType,
		PricingModel:    modelName,
		OptionPrice:     decimal.NewFromFloat(price),
		UnderlyingPrice: decimal.NewFromFloat(params.Spot),
		StrikePrice:     decimal.NewFromFloat(params.Strike),
		TimeToExpiry:    params.TimeToExpiry,
		RiskFreeRate:    params.RiskFreeRate,
		Volatility:      params.Volatility,
		DividendYield:   params.DividendYield,
		CalculatedAt:    time.Now().Unix(),
	}
	result.ApplyGreeks(greeks)
	return result
}

// publishPricingError 定价失败事件，尽力而为，不影响错误上报。
func (c *PricingCommandService) publishPricingError(ctx context.Context, symbol string, optionType domain.OptionType, modelName string, cause error) {
	if c.publisher == nil {
		return
	}
	event := domain.PricingErrorEvent{
		Symbol:       symbol,
		OptionType:   optionType,
		PricingModel: modelName,
		Error:        cause.Error(),
		OccurredAt:   time.Now().Unix(),
		OccurredOn:   time.Now(),
	}
	if err := c.publisher.Publish(ctx, domain.PricingErrorEventType, symbol, event); err != nil {
		logging.Error(ctx, "failed to publish pricing error event", "symbol", symbol, "error", err)
	}
}

// 辅助函数：提取合约符号（去重）。
func extractSymbols(contracts []PriceOptionCommand) []string {
	symbols := make([]string, 0, len(contracts))
	seen := make(map[string]bool)
	for _, contract := range contracts {
		if !seen[contract.Symbol] {
			symbols = append(symbols, contract.Symbol)
			seen[contract.Symbol] = true
		}
	}
	return symbols
}
