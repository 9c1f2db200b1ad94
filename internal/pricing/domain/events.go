package domain

import "time"

const (
	OptionPricedEventType          = "OptionPriced"
	GreeksCalculatedEventType      = "GreeksCalculated"
	ModelsComparedEventType        = "ModelsCompared"
	PricingErrorEventType          = "PricingError"
	BatchPricingCompletedEventType = "BatchPricingCompleted"
)

// OptionPricedEvent 期权定价完成事件
type OptionPricedEvent struct {
	Symbol          string     `json:"symbol"`
	OptionType      OptionType `json:"option_type"`
	PricingModel    string     `json:"pricing_model"`
	StrikePrice     float64    `json:"strike_price"`
	TimeToExpiry    float64    `json:"time_to_expiry"`
	OptionPrice     float64    `json:"option_price"`
	UnderlyingPrice float64    `json:"underlying_price"`
	Volatility      float64    `json:"volatility"`
	RiskFreeRate    float64    `json:"risk_free_rate"`
	DividendYield   float64    `json:"dividend_yield"`
	CalculatedAt    int64      `json:"calculated_at"`
	OccurredOn      time.Time  `json:"occurred_on"`
}

// GreeksCalculatedEvent 希腊字母计算完成事件
type GreeksCalculatedEvent struct {
	Symbol          string            `json:"symbol"`
	OptionType      OptionType        `json:"option_type"`
	PricingModel    string            `json:"pricing_model"`
	StrikePrice     float64           `json:"strike_price"`
	UnderlyingPrice float64           `json:"underlying_price"`
	Greeks          map[Greek]float64 `json:"greeks"`
	FailedGreeks    map[Greek]string  `json:"failed_greeks,omitempty"`
	CalculatedAt    int64             `json:"calculated_at"`
	OccurredOn      time.Time         `json:"occurred_on"`
}

// ModelsComparedEvent 模型对比完成事件
type ModelsComparedEvent struct {
	Symbol     string    `json:"symbol"`
	Models     []string  `json:"models"`
	Prices     []float64 `json:"prices"`
	ComparedAt int64     `json:"compared_at"`
	OccurredOn time.Time `json:"occurred_on"`
}

// PricingErrorEvent 定价错误事件
type PricingErrorEvent struct {
	Symbol       string     `json:"symbol"`
	OptionType   OptionType `json:"option_type"`
	PricingModel string     `json:"pricing_model"`
	Error        string     `json:"error"`
	OccurredAt   int64      `json:"occurred_at"`
	OccurredOn   time.Time  `json:"occurred_on"`
}

// BatchPricingCompletedEvent 批量定价完成事件
type BatchPricingCompletedEvent struct {
	BatchID        string    `json:"batch_id"`
	Symbols        []string  `json:"symbols"`
	TotalContracts int       `json:"total_contracts"`
	SuccessCount   int       `json:"success_count"`
	FailureCount   int       `json:"failure_count"`
	AverageTime    float64   `json:"average_time"`
	CompletedAt    int64     `json:"completed_at"`
	OccurredOn     time.Time `json:"occurred_on"`
}
