package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-orz/orz"
	"github.com/hoangdg/pulse/internal/config"
	"github.com/hoangdg/pulse/internal/models"
	"github.com/hoangdg/pulse/internal/repo"
	"github.com/hoangdg/pulse/internal/xe"
	"github.com/hoangdg/pulse/pkg/nostd"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SignalService 信号生命周期与冷却管理
type SignalService struct {
	logger *zap.Logger

	*orz.Service
	SignalRepo         *repo.SignalRepo
	AnalyzedSymbolRepo *repo.AnalyzedSymbolRepo

	cooldown time.Duration
}

// NewSignalService 创建信号服务
func NewSignalService(db *gorm.DB, conf *config.Config, logger *zap.Logger) *SignalService {
	return &SignalService{
		logger:             logger,
		Service:            orz.NewService(db),
		SignalRepo:         repo.NewSignalRepo(db),
		AnalyzedSymbolRepo: repo.NewAnalyzedSymbolRepo(db),
		cooldown:           time.Duration(conf.Scan.CooldownMinutes) * time.Minute,
	}
}

// 并发发信号时序号分配依赖唯一索引兜底，冲突后重新计数的次数上限
const signalNumberRetries = 3

// RecordSignal 持久化一条新信号，当日序号在同一事务内分配
func (s *SignalService) RecordSignal(ctx context.Context, result *AnalysisResult) (*models.Signal, error) {
	sentTime := result.AnalysisTime
	if sentTime.IsZero() {
		sentTime = time.Now()
	}

	from, _ := dayBounds(sentTime)
	signal := &models.Signal{
		ID:          ulid.Make().String(),
		SignalDate:  from.Format("2006-01-02"),
		Symbol:      result.Symbol,
		Direction:   result.Direction.String(),
		Confidence:  result.Confidence,
		Entry:       result.Entry,
		StopLoss:    result.StopLoss,
		TakeProfits: datatypes.NewJSONSlice(result.TakeProfits),
		RiskReward:  result.RiskReward,
		SentTime:    sentTime,
		Status:      models.SignalStatusActive,
	}

	// READ COMMITTED 下两个事务可能数出同一个序号，靠 (signal_date, signal_number)
	// 唯一索引打掉后来者，重数一次再插
	var err error
	for attempt := 0; attempt < signalNumberRetries; attempt++ {
		err = s.SignalRepo.GetDB(ctx).Transaction(func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&models.Signal{}).
				Where("signal_date = ?", signal.SignalDate).
				Count(&count).Error; err != nil {
				return err
			}
			signal.SignalNumber = int(count) + 1
			return tx.Create(signal).Error
		})
		if err == nil {
			break
		}
		s.logger.Warn("signal number conflict, retrying",
			zap.String("symbol", signal.Symbol),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("signal recorded",
		zap.String("id", signal.ID),
		zap.Int("signal_number", signal.SignalNumber),
		zap.String("symbol", signal.Symbol),
		zap.String("direction", signal.Direction))

	return signal, nil
}

// UpdateStatus 关闭一条信号，非 active 状态的信号拒绝变更
func (s *SignalService) UpdateStatus(ctx context.Context, id string, status string, profitPercent float64) error {
	if status != models.SignalStatusCompleted && status != models.SignalStatusStopped {
		return xe.ErrInvalidStatus
	}

	_, err := s.SignalRepo.FindById(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return xe.ErrSignalNotFound
		}
		return err
	}

	now := time.Now()
	// 以 status 条件保护，避免并发下重复关闭
	result := s.SignalRepo.GetDB(ctx).Model(&models.Signal{}).
		Where("id = ? AND status = ?", id, models.SignalStatusActive).
		Updates(map[string]any{
			"status":         status,
			"profit_percent": profitPercent,
			"closed_time":    now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		s.logger.Warn("rejected status update on non-active signal",
			zap.String("id", id),
			zap.String("status", status))
		return xe.ErrSignalNotActive
	}

	s.logger.Info("signal closed",
		zap.String("id", id),
		zap.String("status", status),
		zap.Float64("profit_percent", profitPercent))
	return nil
}

// GetActiveSignals 查询跟踪中的信号
func (s *SignalService) GetActiveSignals(ctx context.Context) ([]models.Signal, error) {
	return s.SignalRepo.FindActive(ctx)
}

// GetRecentSignals 查询最近信号
func (s *SignalService) GetRecentSignals(ctx context.Context, limit int) ([]models.Signal, error) {
	return s.SignalRepo.FindRecent(ctx, limit)
}

// GetDailyStats 统计指定日期的信号结果
func (s *SignalService) GetDailyStats(ctx context.Context, day time.Time) (*models.DailyStats, error) {
	from, to := dayBounds(day)
	signals, err := s.SignalRepo.FindSentBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	stats := &models.DailyStats{Date: from.Format("2006-01-02")}
	for _, signal := range signals {
		stats.TotalSignals++
		switch signal.Status {
		case models.SignalStatusCompleted:
			if signal.ProfitPercent > 0 {
				stats.Wins++
			}
			stats.TotalProfit += signal.ProfitPercent
		case models.SignalStatusStopped:
			stats.Losses++
			stats.TotalProfit += signal.ProfitPercent
		case models.SignalStatusActive:
			stats.ActiveSignals++
		}
	}

	closed := stats.Wins + stats.Losses
	if closed > 0 {
		stats.AvgProfit = nostd.Round(stats.TotalProfit/float64(closed), 2)
		stats.WinRate = nostd.Round(float64(stats.Wins)/float64(closed)*100, 1)
	}
	stats.TotalProfit = nostd.Round(stats.TotalProfit, 2)

	return stats, nil
}

// MarkAnalyzed 记录分析时间，成功与否都要标记
func (s *SignalService) MarkAnalyzed(ctx context.Context, symbol string) error {
	return s.AnalyzedSymbolRepo.Upsert(ctx, symbol, time.Now())
}

// RecentlyAnalyzed 币种是否仍在冷却期内
func (s *SignalService) RecentlyAnalyzed(ctx context.Context, symbol string) (bool, error) {
	cutoff := time.Now().Add(-s.cooldown)
	return s.AnalyzedSymbolRepo.FindAnalyzedAfter(ctx, symbol, cutoff)
}

// dayBounds 返回本地时区下日期所在天的起止时间
func dayBounds(t time.Time) (time.Time, time.Time) {
	year, month, day := t.Date()
	from := time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	return from, from.AddDate(0, 0, 1)
}
