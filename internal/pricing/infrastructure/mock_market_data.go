package infrastructure

import (
	"context"
	"math/rand"

	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/pkg/logging"
)

// MockMarketDataClient 模拟市场数据客户端，开发环境无行情源时使用
type MockMarketDataClient struct{}

func NewMockMarketDataClient() domain.MarketDataClient {
	return &MockMarketDataClient{}
}

func (c *MockMarketDataClient) GetPrice(ctx context.Context, symbol string) (float64, error) {
	// 模拟生成随机价格
	price := 100.0 + (rand.Float64()-0.5)*10
	logging.Info(ctx, "mock market data price", "symbol", symbol, "price", price)
	return price, nil
}
