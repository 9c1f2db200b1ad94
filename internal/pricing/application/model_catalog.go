package application

import "github.com/wyfcoding/optionpricing/internal/pricing/domain"

// defaultLatticeSteps 请求未指定步数时的二叉树离散化粒度。
const defaultLatticeSteps = 200

// SupportedModels 服务暴露的全部定价模型标识。
func SupportedModels() []string {
	return []string{
		domain.ModelNameBlackScholes,
		domain.ModelNameBinomial,
		domain.ModelNameBinomialAmerican,
	}
}

// buildModel 按标识构造定价引擎；空标识缺省为 Black-Scholes。
func buildModel(name string, latticeSteps int) (domain.PricingModel, error) {
	if latticeSteps <= 0 {
		latticeSteps = defaultLatticeSteps
	}
	switch name {
	case "", domain.ModelNameBlackScholes:
		return domain.NewBlackScholesModel(), nil
	case domain.ModelNameBinomial:
		return domain.NewBinomialTreeModel(domain.LatticeConfig{Steps: latticeSteps})
	case domain.ModelNameBinomialAmerican:
		return domain.NewBinomialTreeModel(domain.LatticeConfig{Steps: latticeSteps, AmericanExercise: true})
	default:
		return nil, &domain.UnsupportedOperationError{
			Operation: "buildModel",
			Reason:    "unknown pricing model " + name,
		}
	}
}

// parseOptionType 解析期权类型标识。
func parseOptionType(raw string) (domain.OptionType, error) {
	t := domain.OptionType(raw)
	if !t.Valid() {
		return "", &domain.UnsupportedOperationError{
			Operation: "parseOptionType",
			Reason:    "option type must be CALL or PUT, got " + raw,
		}
	}
	return t, nil
}
