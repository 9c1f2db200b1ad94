package application

import (
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
)

// PriceOptionCommand 期权定价命令。
// 输入为普通数值字段：现价与波动率由外部行情/波动率协作方以浮点数提供。
type PriceOptionCommand struct {
	Symbol        string  `json:"symbol"`
	OptionType    string  `json:"option_type"`
	Spot          float64 `json:"spot"` // 0 时通过市场数据客户端按 Symbol 解析
	Strike        float64 `json:"strike"`
	TimeToExpiry  float64 `json:"time_to_expiry"`
	RiskFreeRate  float64 `json:"risk_free_rate"`
	Volatility    float64 `json:"volatility"`
	DividendYield float64 `json:"dividend_yield"`
	PricingModel  string  `json:"pricing_model"`
	LatticeSteps  int     `json:"lattice_steps"`
}

// CompareModelsCommand 模型对比命令：同一合约在全部模型下定价。
type CompareModelsCommand struct {
	Symbol        string  `json:"symbol"`
	OptionType    string  `json:"option_type"`
	Spot          float64 `json:"spot"`
	Strike        float64 `json:"strike"`
	TimeToExpiry  float64 `json:"time_to_expiry"`
	RiskFreeRate  float64 `json:"risk_free_rate"`
	Volatility    float64 `json:"volatility"`
	DividendYield float64 `json:"dividend_yield"`
	LatticeSteps  int     `json:"lattice_steps"`
}

// BatchPriceOptionsCommand 批量定价命令。
type BatchPriceOptionsCommand struct {
	BatchID   string               `json:"batch_id"`
	Contracts []PriceOptionCommand `json:"contracts"`
}

// BatchPricingResult 批量定价结果。
type BatchPricingResult struct {
	BatchID      string                  `json:"batch_id"`
	Results      []*domain.PricingResult `json:"results"`
	SuccessCount int                     `json:"success_count"`
	FailureCount int                     `json:"failure_count"`
	AverageTime  float64                 `json:"average_time"`
}

// GreeksQuery 希腊字母查询。
type GreeksQuery struct {
	OptionType    string  `json:"option_type"`
	Spot          float64 `json:"spot"`
	Strike        float64 `json:"strike"`
	TimeToExpiry  float64 `json:"time_to_expiry"`
	RiskFreeRate  float64 `json:"risk_free_rate"`
	Volatility    float64 `json:"volatility"`
	DividendYield float64 `json:"dividend_yield"`
	PricingModel  string  `json:"pricing_model"`
	LatticeSteps  int     `json:"lattice_steps"`
}

// LatticeQuery 格点相关查询（行权边界、价格格点诊断）。
type LatticeQuery struct {
	OptionType       string  `json:"option_type"`
	Spot             float64 `json:"spot"`
	Strike           float64 `json:"strike"`
	TimeToExpiry     float64 `json:"time_to_expiry"`
	RiskFreeRate     float64 `json:"risk_free_rate"`
	Volatility       float64 `json:"volatility"`
	DividendYield    float64 `json:"dividend_yield"`
	Steps            int     `json:"steps"`
	AmericanExercise bool    `json:"american_exercise"`
}

// ImpliedVolatilityQuery 隐含波动率查询。
type ImpliedVolatilityQuery struct {
	OptionType    string  `json:"option_type"`
	MarketPrice   float64 `json:"market_price"`
	Spot          float64 `json:"spot"`
	Strike        float64 `json:"strike"`
	TimeToExpiry  float64 `json:"time_to_expiry"`
	RiskFreeRate  float64 `json:"risk_free_rate"`
	DividendYield float64 `json:"dividend_yield"`
}

// GreeksDTO 希腊字母查询结果：成功的值与失败的原因分开呈现，绝不混入 NaN。
type GreeksDTO struct {
	PricingModel string             `json:"pricing_model"`
	Values       map[string]float64 `json:"values"`
	Failed       map[string]string  `json:"failed,omitempty"`
}

// BoundaryDTO 提前行权边界：下标为时间步，无行权点的步为 null。
type BoundaryDTO struct {
	Steps    int        `json:"steps"`
	Boundary []*float64 `json:"boundary"`
}

// LatticeDTO 三角形格点，行 i 含 i+1 个节点。
type LatticeDTO struct {
	Steps      int         `json:"steps"`
	Underlying [][]float64 `json:"underlying,omitempty"`
	Values     [][]float64 `json:"values,omitempty"`
}

// newGreeksDTO 把领域报告转换为传输结构。
func newGreeksDTO(model string, report domain.GreeksReport) *GreeksDTO {
	dto := &GreeksDTO{
		PricingModel: model,
		Values:       make(map[string]float64, len(report.Values)),
	}
	for g, v := range report.Values {
		dto.Values[string(g)] = v
	}
	if len(report.Errors) > 0 {
		dto.Failed = make(map[string]string, len(report.Errors))
		for g, err := range report.Errors {
			dto.Failed[string(g)] = err.Error()
		}
	}
	return dto
}
