package client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
)

// redisMarketDataClient 从 Redis 读取行情服务写入的最新现价。
// 键格式 pricing:spot:<symbol>，值为十进制字符串。
type redisMarketDataClient struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisMarketDataClient 创建基于 Redis 的市场数据客户端。
func NewRedisMarketDataClient(client redis.UniversalClient) domain.MarketDataClient {
	return &redisMarketDataClient{
		client: client,
		prefix: "pricing:spot:",
	}
}

// GetPrice 获取最新现价。键不存在视为无行情，返回错误而非零值。
func (c *redisMarketDataClient) GetPrice(ctx context.Context, symbol string) (float64, error) {
	raw, err := c.client.Get(ctx, c.prefix+symbol).Result()
	if err == redis.Nil {
		return 0, fmt.Errorf("no market price for symbol %s", symbol)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read market price for %s: %w", symbol, err)
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed market price for %s: %w", symbol, err)
	}
	return price, nil
}
