package domain

import "math"

const (
	// MaxLatticeSteps 格点步数上限，约束 O(N^2) 的内存占用。
	MaxLatticeSteps = 5000

	// exerciseTolerance 行权无差异判定容差：|V - intrinsic| 低于该值的节点视为行权点。
	exerciseTolerance = 1e-10
)

// 二叉树模型标识，按行权方式区分。
const (
	ModelNameBinomial         = "Binomial"
	ModelNameBinomialAmerican = "BinomialAmerican"
)

// LatticeConfig 二叉树离散化配置。
// 属于模型选择而不是合约属性，因此独立于 OptionParameters。
type LatticeConfig struct {
	Steps            int  // 时间步数 N，必须 > 0 且 <= MaxLatticeSteps
	AmericanExercise bool // true 时每个节点允许提前行权
}

// Validate 校验离散化配置。
func (c LatticeConfig) Validate() error {
	if c.Steps <= 0 {
		return &ValidationError{Field: "steps", Value: float64(c.Steps), Reason: "must be > 0"}
	}
	if c.Steps > MaxLatticeSteps {
		return &ConfigurationError{Steps: c.Steps, MaxSteps: MaxLatticeSteps}
	}
	return nil
}

// BinomialTreeModel CRR 二叉树定价引擎。
// 每次调用构建并丢弃自己的格点数组，调用之间没有共享状态，可并发使用。
type BinomialTreeModel struct {
	config LatticeConfig
	fd     *FiniteDifferenceEngine
}

// NewBinomialTreeModel 创建二叉树定价引擎。
func NewBinomialTreeModel(config LatticeConfig) (*BinomialTreeModel, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &BinomialTreeModel{config: config, fd: NewFiniteDifferenceEngine()}, nil
}

// Name 实现 PricingModel。
func (m *BinomialTreeModel) Name() string {
	if m.config.AmericanExercise {
		return ModelNameBinomialAmerican
	}
	return ModelNameBinomial
}

// Config 返回离散化配置副本。
func (m *BinomialTreeModel) Config() LatticeConfig { return m.config }

// Price 构建格点并通过风险中性回溯推导求根节点价值。
func (m *BinomialTreeModel) Price(p OptionParameters) (float64, error) {
	lat, err := m.build(p)
	if err != nil {
		return 0, err
	}
	values := m.induct(p, lat)
	return values[0], nil
}

// Greeks 委托共享的有限差分引擎，对参数做微扰后重新定价。
func (m *BinomialTreeModel) Greeks(p OptionParameters) (GreeksReport, error) {
	return m.fd.Greeks(m, p)
}

// UnderlyingLattice 返回标的价格格点（诊断用）。
// 行 i 含 i+1 个节点，列 j 为下行次数；每次调用重新计算，不缓存。
func (m *BinomialTreeModel) UnderlyingLattice(p OptionParameters) ([][]float64, error) {
	lat, err := m.build(p)
	if err != nil {
		return nil, err
	}
	return lat.rows(lat.underlying), nil
}

// ValueLattice 返回回溯推导后的期权价值格点（诊断用）。
func (m *BinomialTreeModel) ValueLattice(p OptionParameters) ([][]float64, error) {
	lat, err := m.build(p)
	if err != nil {
		return nil, err
	}
	values := m.induct(p, lat)
	return lat.rows(values), nil
}

// EarlyExerciseBoundary 提取美式提前行权边界。
// 返回长度 N+1 的序列，下标为时间步；某步无行权点时该项为 NaN。
// 同一步多个节点满足容差时取行权有利方向的极值：看涨取最小标的价，看跌取最大。
func (m *BinomialTreeModel) EarlyExerciseBoundary(p OptionParameters) ([]float64, error) {
	if !m.config.AmericanExercise {
		return nil, &UnsupportedOperationError{
			Operation: "earlyExerciseBoundary",
			Reason:    "only defined for American exercise lattices",
		}
	}
	lat, err := m.build(p)
	if err != nil {
		return nil, err
	}
	values := m.induct(p, lat)

	boundary := make([]float64, lat.steps+1)
	for i := 0; i <= lat.steps; i++ {
		found := false
		var extreme float64
		for j := 0; j <= i; j++ {
			idx := lat.at(i, j)
			s := lat.underlying[idx]
			if math.Abs(values[idx]-p.rawIntrinsic(s)) >= exerciseTolerance {
				continue
			}
			if !found {
				extreme = s
				found = true
				continue
			}
			if p.IsCall {
				extreme = math.Min(extreme, s)
			} else {
				extreme = math.Max(extreme, s)
			}
		}
		if found {
			boundary[i] = extreme
		} else {
			boundary[i] = math.NaN()
		}
	}
	return boundary, nil
}

// lattice 单次定价调用私有的格点：三角形扁平存储，按 (步数, 下行次数) 索引。
type lattice struct {
	steps      int
	up         float64 // u = e^(sigma*sqrt(dt))
	down       float64 // d = 1/u
	pUp        float64 // 风险中性上行概率
	discount   float64 // 单步贴现因子 e^(-r*dt)
	underlying []float64
}

// at 三角形数组中节点 (i, j) 的偏移，0 <= j <= i <= steps。
func (l *lattice) at(i, j int) int {
	return i*(i+1)/2 + j
}

// rows 把扁平三角形数组展开为逐行切片。
func (l *lattice) rows(flat []float64) [][]float64 {
	out := make([][]float64, l.steps+1)
	for i := 0; i <= l.steps; i++ {
		row := make([]float64, i+1)
		copy(row, flat[l.at(i, 0):l.at(i, 0)+i+1])
		out[i] = row
	}
	return out
}

// build 校验参数并填充标的价格格点。
// 节点 (i, j) 的标的价为 S * u^(i-j) * d^j。
func (m *BinomialTreeModel) build(p OptionParameters) (*lattice, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := m.config.Validate(); err != nil {
		return nil, err
	}

	n := m.config.Steps
	dt := p.TimeToExpiry / float64(n)
	u := math.Exp(p.Volatility * math.Sqrt(dt))
	d := 1 / u
	pUp := (math.Exp((p.RiskFreeRate-p.DividendYield)*dt) - d) / (u - d)
	if !isFinite(pUp) || pUp < 0 || pUp > 1 {
		return nil, &InvalidLatticeError{Probability: pUp}
	}

	lat := &lattice{
		steps:      n,
		up:         u,
		down:       d,
		pUp:        pUp,
		discount:   math.Exp(-p.RiskFreeRate * dt),
		underlying: make([]float64, (n+1)*(n+2)/2),
	}
	for i := 0; i <= n; i++ {
		base := lat.at(i, 0)
		for j := 0; j <= i; j++ {
			lat.underlying[base+j] = p.Spot * math.Pow(u, float64(i-j)) * math.Pow(d, float64(j))
		}
	}
	return lat, nil
}

// induct 终端收益加回溯推导，返回与标的格点同形的价值数组。
// 美式行权时每个节点取 max(持有价值, 行权价值)。
func (m *BinomialTreeModel) induct(p OptionParameters, lat *lattice) []float64 {
	values := make([]float64, len(lat.underlying))

	terminal := lat.at(lat.steps, 0)
	for j := 0; j <= lat.steps; j++ {
		values[terminal+j] = p.IntrinsicValue(lat.underlying[terminal+j])
	}

	for i := lat.steps - 1; i >= 0; i-- {
		base := lat.at(i, 0)
		next := lat.at(i+1, 0)
		for j := 0; j <= i; j++ {
			hold := lat.discount * (lat.pUp*values[next+j] + (1-lat.pUp)*values[next+j+1])
			if m.config.AmericanExercise {
				values[base+j] = math.Max(hold, p.rawIntrinsic(lat.underlying[base+j]))
			} else {
				values[base+j] = hold
			}
		}
	}
	return values
}
