package domain

import "context"

// MarketDataClient 市场数据客户端接口。
// 行情获取与波动率估计属于外部协作方，这里只约定边界：返回普通浮点数。
type MarketDataClient interface {
	GetPrice(ctx context.Context, symbol string) (float64, error)
}

// PricingRepository 定价历史仓储接口。
type PricingRepository interface {
	// WithTx 在单个数据库事务内执行 fn，事务句柄通过 context 传递。
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	SavePricingResult(ctx context.Context, result *PricingResult) error
	GetLatestPricingResult(ctx context.Context, symbol string) (*PricingResult, error)
	GetPricingResultHistory(ctx context.Context, symbol string, limit int) ([]*PricingResult, error)
}
