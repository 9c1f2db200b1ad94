package domain

import "fmt"

// ValidationError 合约参数越界或格式非法。
// 校验在任何定价引擎执行之前完成，Field 指向按优先级顺序发现的第一个非法字段。
type ValidationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Field, e.Value, e.Reason)
}

// ConfigurationError 格点步数超出资源上限。
// O(N^2) 的格点内存要求必须在分配之前被拒绝。
type ConfigurationError struct {
	Steps    int
	MaxSteps int
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("lattice steps %d exceeds maximum %d", e.Steps, e.MaxSteps)
}

// NumericDegeneracyError 闭式解中出现接近零的分母。
// 直接上报调用方，不重试：同样的输入必然产生同样的退化。
type NumericDegeneracyError struct {
	Quantity string
	Value    float64
}

func (e *NumericDegeneracyError) Error() string {
	return fmt.Sprintf("numerically degenerate input: %s=%g is too close to zero", e.Quantity, e.Value)
}

// InvalidLatticeError 风险中性概率落在 [0,1] 之外。
// 表示利率、波动率与步数的组合在数值上不自洽，而不是可重试的故障。
type InvalidLatticeError struct {
	Probability float64
}

func (e *InvalidLatticeError) Error() string {
	return fmt.Sprintf("risk-neutral probability %g outside [0,1]; parameter/step combination is inconsistent", e.Probability)
}

// UnsupportedOperationError 在不支持的模型或行权方式上请求了操作。
type UnsupportedOperationError struct {
	Operation string
	Reason    string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("operation %s not supported: %s", e.Operation, e.Reason)
}
