package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hoangdg/pulse/internal/config"
	"github.com/hoangdg/pulse/internal/xe"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ScanLoop 扫描循环调度器
// 负责定时扫描、持仓信号监控和每日汇总三个任务
type ScanLoop struct {
	conf          config.ScanConf
	analyzer      *AnalyzerService
	signalService *SignalService
	monitor       *MonitorService
	narrator      *NarratorService
	notifier      Notifier
	logger        *zap.Logger

	startTime time.Time
	scanCount int
	scanning  atomic.Bool
	isRunning bool
	stopChan  chan struct{}
	cron      *cron.Cron
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewScanLoop 创建扫描循环
func NewScanLoop(
	conf *config.Config,
	analyzer *AnalyzerService,
	signalService *SignalService,
	monitor *MonitorService,
	narrator *NarratorService,
	notifier Notifier,
	logger *zap.Logger,
) *ScanLoop {
	return &ScanLoop{
		conf:          conf.Scan,
		analyzer:      analyzer,
		signalService: signalService,
		monitor:       monitor,
		narrator:      narrator,
		notifier:      notifier,
		logger:        logger,
		startTime:     time.Now(),
		scanCount:     0,
		isRunning:     false,
		stopChan:      make(chan struct{}),
	}
}

// Start 启动扫描循环，阻塞直到 Stop 或 ctx 取消
func (t *ScanLoop) Start(ctx context.Context) error {
	if t.isRunning {
		return fmt.Errorf("scan loop is already running")
	}

	t.isRunning = true
	t.startTime = time.Now()
	t.ctx, t.cancel = context.WithCancel(ctx)

	// 扫描固定在每小时的若干分钟执行，错开 K 线收盘时刻
	// 例如 minutes=[1,16,31,46]: "1,16,31,46 * * * *"
	scanExpr := fmt.Sprintf("%s * * * *", joinInts(t.conf.ScanMinutes))
	monitorExpr := fmt.Sprintf("*/%d * * * *", t.conf.MonitorMinutes)
	summaryExpr := fmt.Sprintf("0 %d * * *", t.conf.SummaryHour)

	t.logger.Info("scan loop started",
		zap.Strings("symbols", t.conf.Symbols),
		zap.String("scan_cron", scanExpr),
		zap.String("monitor_cron", monitorExpr),
		zap.String("summary_cron", summaryExpr))

	t.cron = cron.New()

	if _, err := t.cron.AddFunc(scanExpr, func() {
		t.ExecuteScan(context.Background())
	}); err != nil {
		t.isRunning = false
		return fmt.Errorf("failed to add scan job: %w", err)
	}

	if _, err := t.cron.AddFunc(monitorExpr, func() {
		t.monitor.CheckActiveSignals(context.Background())
	}); err != nil {
		t.isRunning = false
		return fmt.Errorf("failed to add monitor job: %w", err)
	}

	if _, err := t.cron.AddFunc(summaryExpr, func() {
		t.SendDailySummary(context.Background())
	}); err != nil {
		t.isRunning = false
		return fmt.Errorf("failed to add summary job: %w", err)
	}

	t.cron.Start()

	// 立即执行第一次扫描
	go func() {
		t.ExecuteScan(context.Background())
	}()

	select {
	case <-t.stopChan:
		t.logger.Info("scan loop stopped by user")
		return nil
	case <-ctx.Done():
		t.logger.Info("scan loop stopped by context")
		return ctx.Err()
	}
}

// Stop 停止扫描循环
func (t *ScanLoop) Stop() {
	if !t.isRunning {
		return
	}

	t.logger.Info("stopping scan loop...")

	if t.cron != nil {
		ctx := t.cron.Stop()
		<-ctx.Done() // 等待所有任务完成
		t.logger.Info("cron scheduler stopped")
	}

	if t.cancel != nil {
		t.cancel()
	}

	t.isRunning = false
	close(t.stopChan)
	t.logger.Info("scan loop stopped")
}

// TriggerScan 手动触发一轮扫描，已有扫描进行中时拒绝
func (t *ScanLoop) TriggerScan() error {
	if t.scanning.Load() {
		return xe.ErrScanInProgress
	}
	go t.ExecuteScan(context.Background())
	return nil
}

// ExecuteScan 扫描一轮全部交易对
// 单个交易对的失败只记录日志，不影响其余交易对
func (t *ScanLoop) ExecuteScan(ctx context.Context) {
	if !t.scanning.CompareAndSwap(false, true) {
		t.logger.Warn("scan already in progress, skipped")
		return
	}
	defer t.scanning.Store(false)

	t.scanCount++
	scanStart := time.Now()

	t.logger.Info("========== SCAN START ==========",
		zap.Int("scan_count", t.scanCount),
		zap.Int("symbols", len(t.conf.Symbols)))

	sem := make(chan struct{}, t.conf.Concurrency)
	var wg sync.WaitGroup
	for _, symbol := range t.conf.Symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			t.scanSymbol(ctx, symbol)
		}(symbol)
	}
	wg.Wait()

	t.logger.Info("========== SCAN COMPLETE ==========",
		zap.Int("scan_count", t.scanCount),
		zap.Duration("elapsed", time.Since(scanStart)))
}

// scanSymbol 扫描单个交易对
func (t *ScanLoop) scanSymbol(ctx context.Context, symbol string) {
	recently, err := t.signalService.RecentlyAnalyzed(ctx, symbol)
	if err != nil {
		t.logger.Error("failed to check analysis cooldown",
			zap.String("symbol", symbol), zap.Error(err))
		return
	}
	if recently {
		t.logger.Debug("symbol in cooldown, skipped", zap.String("symbol", symbol))
		return
	}

	result := t.analyzer.Analyze(ctx, symbol)

	// 无论是否出信号，本次尝试都计入冷却
	if err := t.signalService.MarkAnalyzed(ctx, symbol); err != nil {
		t.logger.Error("failed to mark symbol analyzed",
			zap.String("symbol", symbol), zap.Error(err))
	}

	if !result.Actionable() {
		t.logger.Info("no actionable signal",
			zap.String("symbol", symbol),
			zap.Int("confidence", result.Confidence))
		return
	}

	signal, err := t.signalService.RecordSignal(ctx, result)
	if err != nil {
		t.logger.Error("failed to record signal",
			zap.String("symbol", symbol), zap.Error(err))
		return
	}

	t.logger.Info("signal recorded",
		zap.String("signal_id", signal.ID),
		zap.String("symbol", signal.Symbol),
		zap.String("direction", signal.Direction),
		zap.Int("confidence", signal.Confidence),
		zap.Float64("risk_reward", signal.RiskReward))

	commentary := t.narrator.Commentary(ctx, result)
	t.notifier.NotifySignal(signal, commentary)
}

// SendDailySummary 推送每日汇总
func (t *ScanLoop) SendDailySummary(ctx context.Context) {
	stats, err := t.signalService.GetDailyStats(ctx, time.Now())
	if err != nil {
		t.logger.Error("failed to build daily stats", zap.Error(err))
		return
	}
	t.notifier.NotifyDailySummary(stats)
	t.logger.Info("daily summary sent",
		zap.Int("total_signals", stats.TotalSignals),
		zap.Float64("win_rate", stats.WinRate))
}

// GetStatus 获取状态信息
func (t *ScanLoop) GetStatus() map[string]interface{} {
	return map[string]interface{}{
		"is_running":       t.isRunning,
		"scanning":         t.scanning.Load(),
		"scan_count":       t.scanCount,
		"start_time":       t.startTime,
		"elapsed_hours":    time.Since(t.startTime).Hours(),
		"symbols":          t.conf.Symbols,
		"scan_minutes":     t.conf.ScanMinutes,
		"monitor_minutes":  t.conf.MonitorMinutes,
		"cooldown_minutes": t.conf.CooldownMinutes,
	}
}

func joinInts(values []int) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, strconv.Itoa(v))
	}
	return strings.Join(parts, ",")
}
