package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/optionpricing/internal/pricing/application"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/response"
)

// HTTP 处理器
// 负责处理与期权定价相关的 HTTP 请求
type PricingHandler struct {
	cmd   *application.PricingCommandService
	query *application.PricingQueryService
}

// 创建 HTTP 处理器实例
func NewPricingHandler(cmd *application.PricingCommandService, query *application.PricingQueryService) *PricingHandler {
	return &PricingHandler{cmd: cmd, query: query}
}

// 注册路由
// 将处理器方法绑定到 Gin 路由引擎
func (h *PricingHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/pricing")
	{
		api.POST("/option/price", h.PriceOption)
		api.POST("/option/batch", h.BatchPrice)
		api.POST("/option/compare", h.CompareModels)
		api.POST("/option/greeks", h.GetGreeks)
		api.POST("/option/implied-volatility", h.GetImpliedVolatility)
		api.POST("/lattice/boundary", h.GetEarlyExerciseBoundary)
		api.POST("/lattice/grid", h.GetPriceLattice)
		api.GET("/results/:symbol/latest", h.GetLatestResult)
		api.GET("/results/:symbol/history", h.GetHistory)
		api.GET("/models", h.ListModels)
	}
}

// PriceOption 为单个合约定价并持久化结果
func (h *PricingHandler) PriceOption(c *gin.Context) {
	var cmd application.PriceOptionCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	result, err := h.cmd.PriceOption(c.Request.Context(), cmd)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to price option", "symbol", cmd.Symbol, "error", err)
		writeDomainError(c, err)
		return
	}
	response.Success(c, result)
}

// BatchPrice 批量定价，单个合约失败不影响其余合约
func (h *PricingHandler) BatchPrice(c *gin.Context) {
	var cmd application.BatchPriceOptionsCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	result, err := h.cmd.BatchPriceOptions(c.Request.Context(), cmd)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to run pricing batch", "batch_id", cmd.BatchID, "error", err)
		writeDomainError(c, err)
		return
	}
	response.Success(c, result)
}

// CompareModels 同一合约在全部模型下定价并返回差异
func (h *PricingHandler) CompareModels(c *gin.Context) {
	var cmd application.CompareModelsCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	comparison, err := h.cmd.CompareModels(c.Request.Context(), cmd)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to compare pricing models", "symbol", cmd.Symbol, "error", err)
		writeDomainError(c, err)
		return
	}
	response.Success(c, comparison)
}

// GetGreeks 计算希腊字母，部分失败时在响应中标注失败项
func (h *PricingHandler) GetGreeks(c *gin.Context) {
	var query application.GreeksQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	greeks, err := h.query.GetGreeks(c.Request.Context(), query)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to calculate Greeks", "error", err)
		writeDomainError(c, err)
		return
	}
	response.Success(c, greeks)
}

// GetImpliedVolatility 从市场价反解隐含波动率
func (h *PricingHandler) GetImpliedVolatility(c *gin.Context) {
	var query application.ImpliedVolatilityQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	vol, err := h.query.GetImpliedVolatility(c.Request.Context(), query)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to solve implied volatility", "error", err)
		writeDomainError(c, err)
		return
	}
	response.Success(c, gin.H{"implied_volatility": vol})
}

// GetEarlyExerciseBoundary 提取美式期权的提前行权边界
func (h *PricingHandler) GetEarlyExerciseBoundary(c *gin.Context) {
	var query application.LatticeQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	boundary, err := h.query.GetEarlyExerciseBoundary(c.Request.Context(), query)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to extract exercise boundary", "error", err)
		writeDomainError(c, err)
		return
	}
	response.Success(c, boundary)
}

// GetPriceLattice 返回标的与期权价值两张格点，诊断用
func (h *PricingHandler) GetPriceLattice(c *gin.Context) {
	var query application.LatticeQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	lattice, err := h.query.GetPriceLattice(c.Request.Context(), query)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to build price lattice", "error", err)
		writeDomainError(c, err)
		return
	}
	response.Success(c, lattice)
}

// GetLatestResult 查询符号最近一次定价结果
func (h *PricingHandler) GetLatestResult(c *gin.Context) {
	symbol := c.Param("symbol")
	result, err := h.query.GetLatestResult(c.Request.Context(), symbol)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to load latest pricing result", "symbol", symbol, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	if result == nil {
		response.ErrorWithStatus(c, http.StatusNotFound, "no pricing result for symbol", "")
		return
	}
	response.Success(c, result)
}

// GetHistory 查询符号定价历史
func (h *PricingHandler) GetHistory(c *gin.Context) {
	symbol := c.Param("symbol")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	history, err := h.query.GetHistory(c.Request.Context(), symbol, limit)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to load pricing history", "symbol", symbol, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, history)
}

// ListModels 返回支持的定价模型标识
func (h *PricingHandler) ListModels(c *gin.Context) {
	response.Success(c, gin.H{"models": h.query.ListModels()})
}

// writeDomainError 把领域错误映射为 HTTP 状态码：
// 参数与配置问题归为 400，数值退化与格点崩溃归为 422，其余归为 500。
func writeDomainError(c *gin.Context, err error) {
	var (
		validationErr  *domain.ValidationError
		configErr      *domain.ConfigurationError
		unsupportedErr *domain.UnsupportedOperationError
		degeneracyErr  *domain.NumericDegeneracyError
		latticeErr     *domain.InvalidLatticeError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &configErr), errors.As(err, &unsupportedErr):
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
	case errors.As(err, &degeneracyErr), errors.As(err, &latticeErr):
		response.ErrorWithStatus(c, http.StatusUnprocessableEntity, err.Error(), "")
	default:
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
	}
}
