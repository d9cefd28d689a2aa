package service

import (
	"context"

	"github.com/hoangdg/pulse/internal/models"
	"github.com/hoangdg/pulse/pkg/exchange"
	"go.uber.org/zap"
)

// MonitorService 活跃信号跟踪，按现价判断止盈/止损并关闭信号
type MonitorService struct {
	logger *zap.Logger

	exchange      exchange.Exchange
	signalService *SignalService
	notifier      Notifier
}

// NewMonitorService 创建信号监控服务
func NewMonitorService(ex exchange.Exchange, signalService *SignalService,
	notifier Notifier, logger *zap.Logger) *MonitorService {
	return &MonitorService{
		logger:        logger,
		exchange:      ex,
		signalService: signalService,
		notifier:      notifier,
	}
}

// CheckActiveSignals 逐条检查活跃信号，单条失败不影响其余
func (s *MonitorService) CheckActiveSignals(ctx context.Context) {
	signals, err := s.signalService.GetActiveSignals(ctx)
	if err != nil {
		s.logger.Error("failed to load active signals", zap.Error(err))
		return
	}

	for i := range signals {
		signal := &signals[i]

		currentPrice, err := s.exchange.GetCurrentPrice(ctx, signal.Symbol)
		if err != nil {
			s.logger.Warn("failed to get price for signal",
				zap.String("id", signal.ID),
				zap.String("symbol", signal.Symbol),
				zap.Error(err))
			continue
		}

		switch {
		case signal.HighestTakeProfitHit(currentPrice) > 0:
			s.closeSignal(ctx, signal, models.SignalStatusCompleted, currentPrice)
		case signal.StopLossHit(currentPrice):
			s.closeSignal(ctx, signal, models.SignalStatusStopped, currentPrice)
		}
	}
}

func (s *MonitorService) closeSignal(ctx context.Context, signal *models.Signal, status string, currentPrice float64) {
	profitPercent := signal.ProfitPercentAt(currentPrice)

	if err := s.signalService.UpdateStatus(ctx, signal.ID, status, profitPercent); err != nil {
		s.logger.Error("failed to close signal",
			zap.String("id", signal.ID),
			zap.String("status", status),
			zap.Error(err))
		return
	}

	signal.Status = status
	signal.ProfitPercent = profitPercent
	s.notifier.NotifySignalClosed(signal)

	s.logger.Info("signal hit exit level",
		zap.String("id", signal.ID),
		zap.String("symbol", signal.Symbol),
		zap.String("status", status),
		zap.Float64("price", currentPrice),
		zap.Float64("profit_percent", profitPercent))
}
