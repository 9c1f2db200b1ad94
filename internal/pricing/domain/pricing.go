package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OptionType 期权类型。
type OptionType string

const (
	OptionTypeCall OptionType = "CALL" // 看涨期权
	OptionTypePut  OptionType = "PUT"  // 看跌期权
)

// Valid 类型标识是否合法。
func (t OptionType) Valid() bool {
	return t == OptionTypeCall || t == OptionTypePut
}

// IsCall 看涨为 true。
func (t OptionType) IsCall() bool { return t == OptionTypeCall }

// PricingResult 定价结果实体，按次生成并持久化为历史记录。
type PricingResult struct {
	ID              uint            `json:"id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Symbol          string          `json:"symbol"`
	OptionType      OptionType      `json:"option_type"`
	PricingModel    string          `json:"pricing_model"`
	OptionPrice     decimal.Decimal `json:"option_price"`
	UnderlyingPrice decimal.Decimal `json:"underlying_price"`
	StrikePrice     decimal.Decimal `json:"strike_price"`
	TimeToExpiry    float64         `json:"time_to_expiry"`
	RiskFreeRate    float64         `json:"risk_free_rate"`
	Volatility      float64         `json:"volatility"`
	DividendYield   float64         `json:"dividend_yield"`
	Delta           decimal.Decimal `json:"delta"`
	Gamma           decimal.Decimal `json:"gamma"`
	Theta           decimal.Decimal `json:"theta"`
	Vega            decimal.Decimal `json:"vega"`
	Rho             decimal.Decimal `json:"rho"`
	CalculatedAt    int64           `json:"calculated_at"`
}

// ApplyGreeks 把报告中计算成功的希腊字母写入结果实体，缺失项保持零值。
func (r *PricingResult) ApplyGreeks(report GreeksReport) {
	if v, ok := report.Value(GreekDelta); ok {
		r.Delta = decimal.NewFromFloat(v)
	}
	if v, ok := report.Value(GreekGamma); ok {
		r.Gamma = decimal.NewFromFloat(v)
	}
	if v, ok := report.Value(GreekTheta); ok {
		r.Theta = decimal.NewFromFloat(v)
	}
	if v, ok := report.Value(GreekVega); ok {
		r.Vega = decimal.NewFromFloat(v)
	}
	if v, ok := report.Value(GreekRho); ok {
		r.Rho = decimal.NewFromFloat(v)
	}
}

// ModelComparison 同一合约在多个模型下的对比结果。
type ModelComparison struct {
	Symbol      string                 `json:"symbol"`
	Entries     []ModelComparisonEntry `json:"entries"`
	Differences []ModelPriceDifference `json:"differences"`
	ComparedAt  int64                  `json:"compared_at"`
}

// ModelComparisonEntry 单个模型的对比条目。
type ModelComparisonEntry struct {
	PricingModel string          `json:"pricing_model"`
	OptionPrice  decimal.Decimal `json:"option_price"`
	Greeks       GreeksReport    `json:"greeks"`
}

// ModelPriceDifference 两个模型之间的价格差。
type ModelPriceDifference struct {
	ModelA     string          `json:"model_a"`
	ModelB     string          `json:"model_b"`
	Difference decimal.Decimal `json:"difference"`
}
