package domain

import "math"

// 有限差分缺省微扰设置。
const (
	defaultRelativeBump  = 1e-2      // 相对参数量级的微扰比例
	defaultAbsoluteFloor = 1e-6      // 参数本身接近零时的绝对步长下限
	defaultThetaStep     = 1.0 / 365 // theta 的前向差分步长（一天）
)

// FiniteDifferenceEngine 模型无关的有限差分希腊字母引擎。
// 对参数对象做微扰后重新调用任意 PricingModel 定价，不要求模型提供解析导数。
// 五个希腊字母相互独立：单个字母的失败以显式错误进入报告，不阻塞其余字母。
type FiniteDifferenceEngine struct {
	RelativeBump  float64
	AbsoluteFloor float64
	ThetaStep     float64
}

// NewFiniteDifferenceEngine 创建使用缺省微扰设置的引擎。
func NewFiniteDifferenceEngine() *FiniteDifferenceEngine {
	return &FiniteDifferenceEngine{
		RelativeBump:  defaultRelativeBump,
		AbsoluteFloor: defaultAbsoluteFloor,
		ThetaStep:     defaultThetaStep,
	}
}

// Greeks 计算五个希腊字母。
//
// Delta/Gamma 为现价的中心差分与二阶中心差分，Vega/Rho 为波动率与利率的
// 中心差分。Theta 为剩余期限缩短 ThetaStep 的前向差分，按衰减约定报告
// -dV/dT：微扰把剩余期限推出合法域（T - h <= 0）时 theta 显式失败而不是
// 静默收缩步长。每次微扰都经过构造函数重新完成全量校验。
func (e *FiniteDifferenceEngine) Greeks(model PricingModel, p OptionParameters) (GreeksReport, error) {
	if err := p.Validate(); err != nil {
		return GreeksReport{}, err
	}

	report := NewGreeksReport()
	base, baseErr := model.Price(p)

	e.spotGreeks(model, p, base, baseErr, &report)
	e.theta(model, p, base, baseErr, &report)
	e.vega(model, p, &report)
	e.rho(model, p, &report)
	return report, nil
}

// spotGreeks delta 与 gamma 共享同一对现价微扰。
func (e *FiniteDifferenceEngine) spotGreeks(model PricingModel, p OptionParameters, base float64, baseErr error, report *GreeksReport) {
	h := e.bump(p.Spot)
	up, down, err := e.pricePair(model,
		func() (OptionParameters, error) { return p.WithSpot(p.Spot + h) },
		func() (OptionParameters, error) { return p.WithSpot(p.Spot - h) },
	)
	if err != nil {
		report.Errors[GreekDelta] = err
		report.Errors[GreekGamma] = err
		return
	}
	report.Values[GreekDelta] = (up - down) / (2 * h)

	// gamma 额外依赖未微扰的基准价格
	if baseErr != nil {
		report.Errors[GreekGamma] = baseErr
		return
	}
	report.Values[GreekGamma] = (up - 2*base + down) / (h * h)
}

// theta 前向差分，衰减约定：theta = (V(T-h) - V(T)) / h。
func (e *FiniteDifferenceEngine) theta(model PricingModel, p OptionParameters, base float64, baseErr error, report *GreeksReport) {
	if baseErr != nil {
		report.Errors[GreekTheta] = baseErr
		return
	}
	shortened, err := p.WithTimeToExpiry(p.TimeToExpiry - e.ThetaStep)
	if err != nil {
		report.Errors[GreekTheta] = err
		return
	}
	short, err := model.Price(shortened)
	if err != nil {
		report.Errors[GreekTheta] = err
		return
	}
	report.Values[GreekTheta] = (short - base) / e.ThetaStep
}

func (e *FiniteDifferenceEngine) vega(model PricingModel, p OptionParameters, report *GreeksReport) {
	h := e.bump(p.Volatility)
	up, down, err := e.pricePair(model,
		func() (OptionParameters, error) { return p.WithVolatility(p.Volatility + h) },
		func() (OptionParameters, error) { return p.WithVolatility(p.Volatility - h) },
	)
	if err != nil {
		report.Errors[GreekVega] = err
		return
	}
	report.Values[GreekVega] = (up - down) / (2 * h)
}

func (e *FiniteDifferenceEngine) rho(model PricingModel, p OptionParameters, report *GreeksReport) {
	h := e.bump(p.RiskFreeRate)
	up, down, err := e.pricePair(model,
		func() (OptionParameters, error) { return p.WithRiskFreeRate(p.RiskFreeRate + h) },
		func() (OptionParameters, error) { return p.WithRiskFreeRate(p.RiskFreeRate - h) },
	)
	if err != nil {
		report.Errors[GreekRho] = err
		return
	}
	report.Values[GreekRho] = (up - down) / (2 * h)
}

// pricePair 执行一对微扰定价，任一侧失败即返回错误。
func (e *FiniteDifferenceEngine) pricePair(model PricingModel, up, down func() (OptionParameters, error)) (float64, float64, error) {
	pUp, err := up()
	if err != nil {
		return 0, 0, err
	}
	pDown, err := down()
	if err != nil {
		return 0, 0, err
	}
	vUp, err := model.Price(pUp)
	if err != nil {
		return 0, 0, err
	}
	vDown, err := model.Price(pDown)
	if err != nil {
		return 0, 0, err
	}
	return vUp, vDown, nil
}

// bump 相对微扰带绝对下限，避免参数本身接近零时步长归零。
func (e *FiniteDifferenceEngine) bump(x float64) float64 {
	return math.Max(e.RelativeBump*math.Abs(x), e.AbsoluteFloor)
}
