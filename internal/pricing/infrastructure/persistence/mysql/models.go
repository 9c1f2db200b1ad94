package mysql

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
)

// PricingResultModel 定价结果数据库模型
type PricingResultModel struct {
	ID              uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
	Symbol          string    `gorm:"column:symbol;type:varchar(32);index;not null"`
	OptionType      string    `gorm:"column:option_type;type:varchar(8);not null"`
	PricingModel    string    `gorm:"column:pricing_model;type:varchar(32);index"`
	OptionPrice     string    `gorm:"column:option_price;type:decimal(32,18);not null"`
	UnderlyingPrice string    `gorm:"column:underlying_price;type:decimal(32,18);not null"`
	StrikePrice     string    `gorm:"column:strike_price;type:decimal(32,18);not null"`
	TimeToExpiry    float64   `gorm:"column:time_to_expiry;type:double;not null"`
	RiskFreeRate    float64   `gorm:"column:risk_free_rate;type:double;not null"`
	Volatility      float64   `gorm:"column:volatility;type:double;not null"`
	DividendYield   float64   `gorm:"column:dividend_yield;type:double"`
	Delta           string    `gorm:"column:delta;type:decimal(32,18)"`
	Gamma           string    `gorm:"column:gamma;type:decimal(32,18)"`
	Theta           string    `gorm:"column:theta;type:decimal(32,18)"`
	Vega            string    `gorm:"column:vega;type:decimal(32,18)"`
	Rho             string    `gorm:"column:rho;type:decimal(32,18)"`
	CalculatedAt    int64     `gorm:"column:calculated_at;type:bigint;index;not null"`
}

func (PricingResultModel) TableName() string { return "pricing_results" }

// mapping helpers

func toPricingResultModel(res *domain.PricingResult) *PricingResultModel {
	if res == nil {
		return nil
	}
	return &PricingResultModel{
		ID:              res.ID,
		CreatedAt:       res.CreatedAt,
		UpdatedAt:       res.UpdatedAt,
		Symbol:          res.Symbol,
		OptionType:      string(res.OptionType),
		PricingModel:    res.PricingModel,
		OptionPrice:     res.OptionPrice.String(),
		UnderlyingPrice: res.UnderlyingPrice.String(),
		StrikePrice:     res.StrikePrice.String(),
		TimeToExpiry:    res.TimeToExpiry,
		RiskFreeRate:    res.RiskFreeRate,
		Volatility:      res.Volatility,
		DividendYield:   res.DividendYield,
		Delta:           res.Delta.String(),
		Gamma:           res.Gamma.String(),
		Theta:           res.Theta.String(),
		Vega:            res.Vega.String(),
		Rho:             res.Rho.String(),
		CalculatedAt:    res.CalculatedAt,
	}
}

func toPricingResult(m *PricingResultModel) *domain.PricingResult {
	if m == nil {
		return nil
	}
	opPrice, _ := decimal.NewFromString(m.OptionPrice)
	ulPrice, _ := decimal.NewFromString(m.UnderlyingPrice)
	strike, _ := decimal.NewFromString(m.StrikePrice)
	delta, _ := decimal.NewFromString(m.Delta)
	gamma, _ := decimal.NewFromString(m.Gamma)
	theta, _ := decimal.NewFromString(m.Theta)
	vega, _ := decimal.NewFromString(m.Vega)
	rho, _ := decimal.NewFromString(m.Rho)

	return &domain.PricingResult{
		ID:              m.ID,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
		Symbol:          m.Symbol,
		OptionType:      domain.OptionType(m.OptionType),
		PricingModel:    m.PricingModel,
		OptionPrice:     opPrice,
		UnderlyingPrice: ulPrice,
		StrikePrice:     strike,
		TimeToExpiry:    m.TimeToExpiry,
		RiskFreeRate:    m.RiskFreeRate,
		Volatility:      m.Volatility,
		DividendYield:   m.DividendYield,
		Delta:           delta,
		Gamma:           gamma,
		Theta:           theta,
		Vega:            vega,
		Rho:             rho,
		CalculatedAt:    m.CalculatedAt,
	}
}
