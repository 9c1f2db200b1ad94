package domain

import "math"

// degeneracyEpsilon sigma*sqrt(T) 低于该值时闭式解的分母视为退化。
const degeneracyEpsilon = 1e-12

// ModelNameBlackScholes Black-Scholes 模型标识。
const ModelNameBlackScholes = "BlackScholes"

// BlackScholesModel 含连续股息率的欧式期权闭式定价引擎。
// 价格与希腊字母均为解析解，单次调用 O(1)，无内部状态。
type BlackScholesModel struct{}

// NewBlackScholesModel 创建 Black-Scholes 定价引擎。
func NewBlackScholesModel() *BlackScholesModel {
	return &BlackScholesModel{}
}

// Name 实现 PricingModel。
func (m *BlackScholesModel) Name() string { return ModelNameBlackScholes }

// Price 计算欧式期权闭式价格。
// 看涨：S*e^(-qT)*N(d1) - K*e^(-rT)*N(d2)；看跌由平价关系给出。
func (m *BlackScholesModel) Price(p OptionParameters) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	d1, d2, err := m.d1d2(p)
	if err != nil {
		return 0, err
	}

	discSpot := p.Spot * math.Exp(-p.DividendYield*p.TimeToExpiry)
	discStrike := p.Strike * math.Exp(-p.RiskFreeRate*p.TimeToExpiry)

	if p.IsCall {
		return discSpot*normCdf(d1) - discStrike*normCdf(d2), nil
	}
	return discStrike*normCdf(-d2) - discSpot*normCdf(-d1), nil
}

// Greeks 闭式希腊字母。
// Theta 采用衰减约定：报告 -dV/dT（T 为剩余期限），多头普通期权为负。
// 该约定与 FiniteDifferenceEngine 一致。
func (m *BlackScholesModel) Greeks(p OptionParameters) (GreeksReport, error) {
	if err := p.Validate(); err != nil {
		return GreeksReport{}, err
	}
	d1, d2, err := m.d1d2(p)
	if err != nil {
		return GreeksReport{}, err
	}

	var (
		sqrtT  = math.Sqrt(p.TimeToExpiry)
		expQT  = math.Exp(-p.DividendYield * p.TimeToExpiry)
		expRT  = math.Exp(-p.RiskFreeRate * p.TimeToExpiry)
		pdfD1  = normPdf(d1)
		report = NewGreeksReport()
	)

	report.Values[GreekGamma] = expQT * pdfD1 / (p.Spot * p.Volatility * sqrtT)
	report.Values[GreekVega] = p.Spot * expQT * sqrtT * pdfD1

	if p.IsCall {
		report.Values[GreekDelta] = expQT * normCdf(d1)
		report.Values[GreekTheta] = -p.Spot*expQT*pdfD1*p.Volatility/(2*sqrtT) -
			p.RiskFreeRate*p.Strike*expRT*normCdf(d2) +
			p.DividendYield*p.Spot*expQT*normCdf(d1)
		report.Values[GreekRho] = p.Strike * p.TimeToExpiry * expRT * normCdf(d2)
	} else {
		report.Values[GreekDelta] = expQT * (normCdf(d1) - 1)
		report.Values[GreekTheta] = -p.Spot*expQT*pdfD1*p.Volatility/(2*sqrtT) +
			p.RiskFreeRate*p.Strike*expRT*normCdf(-d2) -
			p.DividendYield*p.Spot*expQT*normCdf(-d1)
		report.Values[GreekRho] = -p.Strike * p.TimeToExpiry * expRT * normCdf(-d2)
	}
	return report, nil
}

// d1d2 计算 BSM 公式的 d1 与 d2。
// sigma*sqrt(T) 接近零时显式失败，绝不除以近零分母。
func (m *BlackScholesModel) d1d2(p OptionParameters) (float64, float64, error) {
	sigmaSqrtT := p.Volatility * math.Sqrt(p.TimeToExpiry)
	if sigmaSqrtT < degeneracyEpsilon {
		return 0, 0, &NumericDegeneracyError{Quantity: "sigma*sqrt(T)", Value: sigmaSqrtT}
	}
	d1 := (math.Log(p.Spot/p.Strike) + (p.RiskFreeRate-p.DividendYield+0.5*p.Volatility*p.Volatility)*p.TimeToExpiry) / sigmaSqrtT
	d2 := d1 - sigmaSqrtT
	return d1, d2, nil
}

// normCdf 标准正态分布累积分布函数。
func normCdf(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// normPdf 标准正态分布概率密度函数。
func normPdf(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}
