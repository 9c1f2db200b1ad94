package domain

// Greek 希腊字母名称。
type Greek string

const (
	GreekDelta Greek = "delta"
	GreekGamma Greek = "gamma"
	GreekTheta Greek = "theta"
	GreekVega  Greek = "vega"
	GreekRho   Greek = "rho"
)

// AllGreeks 固定的报告顺序。
var AllGreeks = []Greek{GreekDelta, GreekGamma, GreekTheta, GreekVega, GreekRho}

// PricingModel 两个定价引擎共同满足的统一能力契约。
// 调用方（HTTP 层、模型对比）通过该接口切换模型，无需按具体类型分支。
// 实现必须是每次调用无共享可变状态的纯计算。
type PricingModel interface {
	// Name 模型标识，持久化与事件中作为 pricing_model 字段。
	Name() string
	// Price 计算期权现值。
	Price(p OptionParameters) (float64, error)
	// Greeks 计算敏感度，允许部分失败（见 GreeksReport）。
	Greeks(p OptionParameters) (GreeksReport, error)
}

// GreeksReport 一次敏感度计算的结果。
// 单个希腊字母的失败不会阻塞其余字母：失败的键出现在 Errors 中，
// 成功的键出现在 Values 中，两个集合互斥且覆盖全部五个字母。
type GreeksReport struct {
	Values map[Greek]float64
	Errors map[Greek]error
}

// NewGreeksReport 创建空报告。
func NewGreeksReport() GreeksReport {
	return GreeksReport{
		Values: make(map[Greek]float64, len(AllGreeks)),
		Errors: make(map[Greek]error),
	}
}

// Complete 是否五个希腊字母全部计算成功。
func (r GreeksReport) Complete() bool {
	return len(r.Errors) == 0 && len(r.Values) == len(AllGreeks)
}

// Value 取单个希腊字母的值，未计算成功时返回 false。
func (r GreeksReport) Value(g Greek) (float64, bool) {
	v, ok := r.Values[g]
	return v, ok
}
