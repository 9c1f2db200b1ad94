package domain

import "math"

// OptionParameters 描述单个期权合约及其市场快照的不可变参数集。
// 只能通过 NewOptionParameters 构造，构造即校验；重新定价时重建而不是修改。
type OptionParameters struct {
	Spot          float64 // 标的现价 S，必须 > 0
	Strike        float64 // 行权价 K，必须 > 0
	TimeToExpiry  float64 // 剩余期限 T（年），必须 > 0
	RiskFreeRate  float64 // 连续复利无风险利率 r，任意实数
	Volatility    float64 // 年化波动率 sigma，必须 > 0
	DividendYield float64 // 连续股息率 q，必须 >= 0
	IsCall        bool    // true 为看涨，false 为看跌
}

// NewOptionParameters 构造并校验参数集。
// 校验是全有或全无的：任何字段非法都不会产生部分构造的对象。
func NewOptionParameters(spot, strike, timeToExpiry, riskFreeRate, volatility, dividendYield float64, isCall bool) (OptionParameters, error) {
	p := OptionParameters{
		Spot:          spot,
		Strike:        strike,
		TimeToExpiry:  timeToExpiry,
		RiskFreeRate:  riskFreeRate,
		Volatility:    volatility,
		DividendYield: dividendYield,
		IsCall:        isCall,
	}
	if err := p.Validate(); err != nil {
		return OptionParameters{}, err
	}
	return p, nil
}

// Validate 按固定优先级检查各字段：
// spot -> strike -> timeToExpiry -> volatility -> dividendYield -> riskFreeRate。
// 非有限值与越界值一样按该字段报错。
func (p OptionParameters) Validate() error {
	if !isFinite(p.Spot) || p.Spot <= 0 {
		return &ValidationError{Field: "spot", Value: p.Spot, Reason: "must be a finite number > 0"}
	}
	if !isFinite(p.Strike) || p.Strike <= 0 {
		return &ValidationError{Field: "strike", Value: p.Strike, Reason: "must be a finite number > 0"}
	}
	if !isFinite(p.TimeToExpiry) || p.TimeToExpiry <= 0 {
		return &ValidationError{Field: "timeToExpiry", Value: p.TimeToExpiry, Reason: "must be a finite number > 0"}
	}
	if !isFinite(p.Volatility) || p.Volatility <= 0 {
		return &ValidationError{Field: "volatility", Value: p.Volatility, Reason: "must be a finite number > 0"}
	}
	if !isFinite(p.DividendYield) || p.DividendYield < 0 {
		return &ValidationError{Field: "dividendYield", Value: p.DividendYield, Reason: "must be a finite number >= 0"}
	}
	if !isFinite(p.RiskFreeRate) {
		return &ValidationError{Field: "riskFreeRate", Value: p.RiskFreeRate, Reason: "must be a finite number"}
	}
	return nil
}

// WithSpot 返回替换标的现价后的重新校验副本。
func (p OptionParameters) WithSpot(spot float64) (OptionParameters, error) {
	return NewOptionParameters(spot, p.Strike, p.TimeToExpiry, p.RiskFreeRate, p.Volatility, p.DividendYield, p.IsCall)
}

// WithVolatility 返回替换波动率后的重新校验副本。
func (p OptionParameters) WithVolatility(volatility float64) (OptionParameters, error) {
	return NewOptionParameters(p.Spot, p.Strike, p.TimeToExpiry, p.RiskFreeRate, volatility, p.DividendYield, p.IsCall)
}

// WithTimeToExpiry 返回替换剩余期限后的重新校验副本。
func (p OptionParameters) WithTimeToExpiry(timeToExpiry float64) (OptionParameters, error) {
	return NewOptionParameters(p.Spot, p.Strike, timeToExpiry, p.RiskFreeRate, p.Volatility, p.DividendYield, p.IsCall)
}

// WithRiskFreeRate 返回替换无风险利率后的重新校验副本。
func (p OptionParameters) WithRiskFreeRate(riskFreeRate float64) (OptionParameters, error) {
	return NewOptionParameters(p.Spot, p.Strike, p.TimeToExpiry, riskFreeRate, p.Volatility, p.DividendYield, p.IsCall)
}

// IntrinsicValue 给定标的价格时的立即行权收益，下限为零。
func (p OptionParameters) IntrinsicValue(underlying float64) float64 {
	return math.Max(p.rawIntrinsic(underlying), 0)
}

// rawIntrinsic 未截断的行权价值，允许为负。
// 回溯推导中与非负的持有价值取 max，边界提取中用于行权无差异判定。
func (p OptionParameters) rawIntrinsic(underlying float64) float64 {
	if p.IsCall {
		return underlying - p.Strike
	}
	return p.Strike - underlying
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
