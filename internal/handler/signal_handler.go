package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/hoangdg/pulse/internal/service"
	"github.com/hoangdg/pulse/internal/xe"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// SignalHandler 信号系统HTTP处理器
type SignalHandler struct {
	scanLoop      *service.ScanLoop
	analyzer      *service.AnalyzerService
	signalService *service.SignalService
	marketService *service.MarketService
	logger        *zap.Logger
}

// NewSignalHandler 创建信号处理器
func NewSignalHandler(
	scanLoop *service.ScanLoop,
	analyzer *service.AnalyzerService,
	signalService *service.SignalService,
	marketService *service.MarketService,
	logger *zap.Logger,
) *SignalHandler {
	return &SignalHandler{
		scanLoop:      scanLoop,
		analyzer:      analyzer,
		signalService: signalService,
		marketService: marketService,
		logger:        logger,
	}
}

// GetActiveSignals 获取持仓中的信号
// GET /api/signals/active
func (h *SignalHandler) GetActiveSignals(c echo.Context) error {
	ctx := c.Request().Context()

	signals, err := h.signalService.GetActiveSignals(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, signals)
}

// GetRecentSignals 获取最近信号
// GET /api/signals/recent?limit=20
func (h *SignalHandler) GetRecentSignals(c echo.Context) error {
	ctx := c.Request().Context()

	limit := cast.ToInt(c.QueryParam("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	signals, err := h.signalService.GetRecentSignals(ctx, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, signals)
}

// GetStats 获取某日信号统计，默认当天
// GET /api/signals/stats?date=2026-01-02
func (h *SignalHandler) GetStats(c echo.Context) error {
	ctx := c.Request().Context()

	day := time.Now()
	if v := c.QueryParam("date"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return xe.ErrInvalidParams
		}
		day = parsed
	}

	stats, err := h.signalService.GetDailyStats(ctx, day)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// Analyze 按需分析单个币种，不落库不推送
// POST /api/analysis/:symbol
func (h *SignalHandler) Analyze(c echo.Context) error {
	ctx := c.Request().Context()

	symbol := strings.ToUpper(c.Param("symbol"))
	if !h.marketService.Supported(symbol) {
		return xe.ErrSymbolNotSupported
	}

	result := h.analyzer.Analyze(ctx, symbol)
	return c.JSON(http.StatusOK, result)
}

// GetScanStatus 获取扫描循环状态
// GET /api/scan/status
func (h *SignalHandler) GetScanStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.scanLoop.GetStatus())
}

// TriggerScan 手动触发一轮扫描
// POST /api/scan
func (h *SignalHandler) TriggerScan(c echo.Context) error {
	if err := h.scanLoop.TriggerScan(); err != nil {
		return err
	}
	h.logger.Info("manual scan triggered", zap.String("remote", c.RealIP()))
	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"message": "scan started",
	})
}

// GetMarket 获取币种市场快照
// GET /api/market/:symbol
func (h *SignalHandler) GetMarket(c echo.Context) error {
	ctx := c.Request().Context()

	snapshot, err := h.marketService.Snapshot(ctx, c.Param("symbol"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snapshot)
}

// RegisterRoutes 注册路由
func (h *SignalHandler) RegisterRoutes(g *echo.Group) {
	signals := g.Group("/signals")
	signals.GET("/active", h.GetActiveSignals)
	signals.GET("/recent", h.GetRecentSignals)
	signals.GET("/stats", h.GetStats)

	g.POST("/analysis/:symbol", h.Analyze)
	g.POST("/scan", h.TriggerScan)
	g.GET("/scan/status", h.GetScanStatus)
	g.GET("/market/:symbol", h.GetMarket)
}
