package domain

import (
	"fmt"
	"math"
)

// 隐含波动率求解设置。
const (
	ivInitialGuess  = 0.5
	ivTolerance     = 1e-5
	ivMaxIterations = 100
	ivMinVolatility = 1e-4
)

// ImpliedVolatility 用 Newton-Raphson 反解使闭式价格等于市场价的波动率。
// vega 取闭式解；vega 接近零或迭代不收敛时显式失败。
func (m *BlackScholesModel) ImpliedVolatility(marketPrice float64, p OptionParameters) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if !isFinite(marketPrice) || marketPrice <= 0 {
		return 0, &ValidationError{Field: "marketPrice", Value: marketPrice, Reason: "must be a finite number > 0"}
	}

	sigma := ivInitialGuess
	for i := 0; i < ivMaxIterations; i++ {
		trial, err := p.WithVolatility(sigma)
		if err != nil {
			return 0, err
		}
		price, err := m.Price(trial)
		if err != nil {
			return 0, err
		}
		diff := price - marketPrice
		if math.Abs(diff) < ivTolerance {
			return sigma, nil
		}

		report, err := m.Greeks(trial)
		if err != nil {
			return 0, err
		}
		vega, ok := report.Value(GreekVega)
		if !ok || math.Abs(vega) < 1e-10 {
			return 0, &NumericDegeneracyError{Quantity: "vega", Value: vega}
		}

		sigma -= diff / vega
		if sigma <= 0 {
			sigma = ivMinVolatility
		}
	}
	return 0, fmt.Errorf("implied volatility did not converge after %d iterations", ivMaxIterations)
}
