package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/hoangdg/pulse/internal/models"
	"github.com/hoangdg/pulse/internal/xe"
	"github.com/hoangdg/pulse/pkg/exchange"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(models.Signal{}, models.AnalyzedSymbol{}, models.Subscriber{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func newTestSignalService(t *testing.T) *SignalService {
	t.Helper()
	return NewSignalService(newTestDB(t), newTestConfig(), zap.NewNop())
}

func testResult(symbol string) *AnalysisResult {
	return &AnalysisResult{
		Symbol:       symbol,
		Confidence:   100,
		Direction:    exchange.DirectionLong,
		Entry:        99.9,
		StopLoss:     94.905,
		TakeProfits:  []float64{100.899, 102.3975, 104.3955, 109.89},
		RiskReward:   2.0,
		AnalysisTime: time.Now(),
	}
}

func TestRecordSignalNumbering(t *testing.T) {
	s := newTestSignalService(t)
	ctx := context.Background()

	first, err := s.RecordSignal(ctx, testResult("BTCUSDT"))
	if err != nil {
		t.Fatalf("record first: %v", err)
	}
	second, err := s.RecordSignal(ctx, testResult("ETHUSDT"))
	if err != nil {
		t.Fatalf("record second: %v", err)
	}

	if first.SignalNumber != 1 || second.SignalNumber != 2 {
		t.Errorf("signal numbers = %d/%d, want 1/2", first.SignalNumber, second.SignalNumber)
	}
	if first.Status != models.SignalStatusActive {
		t.Errorf("status = %s, want active", first.Status)
	}
	if len(first.ID) != 26 {
		t.Errorf("id = %q, want 26 char ulid", first.ID)
	}
}

func TestRecordSignalNumberingResetsPerDay(t *testing.T) {
	s := newTestSignalService(t)
	ctx := context.Background()

	yesterday := testResult("BTCUSDT")
	yesterday.AnalysisTime = time.Now().AddDate(0, 0, -1)
	old, err := s.RecordSignal(ctx, yesterday)
	if err != nil {
		t.Fatalf("record yesterday: %v", err)
	}
	today, err := s.RecordSignal(ctx, testResult("ETHUSDT"))
	if err != nil {
		t.Fatalf("record today: %v", err)
	}

	if old.SignalNumber != 1 || today.SignalNumber != 1 {
		t.Errorf("signal numbers = %d/%d, want 1/1 on separate days",
			old.SignalNumber, today.SignalNumber)
	}
	if old.SignalDate == "" || old.SignalDate == today.SignalDate {
		t.Errorf("signal dates = %q/%q, want distinct days", old.SignalDate, today.SignalDate)
	}
}

func TestRecordSignalNumberUniquePerDay(t *testing.T) {
	s := newTestSignalService(t)
	ctx := context.Background()

	signal, err := s.RecordSignal(ctx, testResult("BTCUSDT"))
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	// 预占下一个序号，模拟并发事务先写入的情形，RecordSignal 应重数后跳过它
	taken := &models.Signal{
		ID:           ulid.Make().String(),
		SignalDate:   signal.SignalDate,
		SignalNumber: 2,
		Symbol:       "ETHUSDT",
		Direction:    exchange.DirectionLong.String(),
		SentTime:     time.Now(),
		Status:       models.SignalStatusActive,
	}
	if err := s.SignalRepo.GetDB(ctx).Create(taken).Error; err != nil {
		t.Fatalf("seed taken number: %v", err)
	}

	third, err := s.RecordSignal(ctx, testResult("BNBUSDT"))
	if err != nil {
		t.Fatalf("record third: %v", err)
	}
	if third.SignalNumber != 3 {
		t.Errorf("signal number = %d, want 3", third.SignalNumber)
	}

	var dup int64
	s.SignalRepo.GetDB(ctx).Model(&models.Signal{}).
		Where("signal_date = ? AND signal_number = ?", signal.SignalDate, 3).
		Count(&dup)
	if dup != 1 {
		t.Errorf("number 3 rows = %d, want 1", dup)
	}
}

func TestUpdateStatusLifecycle(t *testing.T) {
	s := newTestSignalService(t)
	ctx := context.Background()

	signal, err := s.RecordSignal(ctx, testResult("BTCUSDT"))
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	if err := s.UpdateStatus(ctx, signal.ID, models.SignalStatusCompleted, 4.5); err != nil {
		t.Fatalf("close signal: %v", err)
	}

	stored, err := s.SignalRepo.FindById(ctx, signal.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if stored.Status != models.SignalStatusCompleted {
		t.Errorf("status = %s, want completed", stored.Status)
	}
	if stored.ProfitPercent != 4.5 {
		t.Errorf("profit = %v, want 4.5", stored.ProfitPercent)
	}
	if stored.ClosedTime == nil {
		t.Error("closed time not set")
	}

	// 终态信号拒绝再次流转
	err = s.UpdateStatus(ctx, signal.ID, models.SignalStatusStopped, -5.0)
	if !errors.Is(err, xe.ErrSignalNotActive) {
		t.Errorf("err = %v, want ErrSignalNotActive", err)
	}

	stored, _ = s.SignalRepo.FindById(ctx, signal.ID)
	if stored.Status != models.SignalStatusCompleted || stored.ProfitPercent != 4.5 {
		t.Errorf("closed signal mutated: %s/%v", stored.Status, stored.ProfitPercent)
	}
}

func TestUpdateStatusValidation(t *testing.T) {
	s := newTestSignalService(t)
	ctx := context.Background()

	if err := s.UpdateStatus(ctx, "missing", models.SignalStatusCompleted, 1); !errors.Is(err, xe.ErrSignalNotFound) {
		t.Errorf("err = %v, want ErrSignalNotFound", err)
	}
	if err := s.UpdateStatus(ctx, "missing", "paused", 1); !errors.Is(err, xe.ErrInvalidStatus) {
		t.Errorf("err = %v, want ErrInvalidStatus", err)
	}
}

func TestGetDailyStats(t *testing.T) {
	s := newTestSignalService(t)
	ctx := context.Background()

	win, _ := s.RecordSignal(ctx, testResult("BTCUSDT"))
	loss, _ := s.RecordSignal(ctx, testResult("ETHUSDT"))
	if _, err := s.RecordSignal(ctx, testResult("BNBUSDT")); err != nil {
		t.Fatalf("record: %v", err)
	}

	if err := s.UpdateStatus(ctx, win.ID, models.SignalStatusCompleted, 4.5); err != nil {
		t.Fatalf("close win: %v", err)
	}
	if err := s.UpdateStatus(ctx, loss.ID, models.SignalStatusStopped, -5.0); err != nil {
		t.Fatalf("close loss: %v", err)
	}

	stats, err := s.GetDailyStats(ctx, time.Now())
	if err != nil {
		t.Fatalf("daily stats: %v", err)
	}

	if stats.TotalSignals != 3 {
		t.Errorf("total = %d, want 3", stats.TotalSignals)
	}
	if stats.Wins != 1 || stats.Losses != 1 || stats.ActiveSignals != 1 {
		t.Errorf("wins/losses/active = %d/%d/%d, want 1/1/1",
			stats.Wins, stats.Losses, stats.ActiveSignals)
	}
	if stats.TotalProfit != -0.5 {
		t.Errorf("total profit = %v, want -0.5", stats.TotalProfit)
	}
	if stats.AvgProfit != -0.25 {
		t.Errorf("avg profit = %v, want -0.25", stats.AvgProfit)
	}
	if stats.WinRate != 50.0 {
		t.Errorf("win rate = %v, want 50.0", stats.WinRate)
	}
}

func TestGetDailyStatsEmpty(t *testing.T) {
	s := newTestSignalService(t)

	stats, err := s.GetDailyStats(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("daily stats: %v", err)
	}
	if stats.TotalSignals != 0 || stats.WinRate != 0 {
		t.Errorf("got %+v, want empty stats", stats)
	}
}

func TestAnalysisCooldown(t *testing.T) {
	s := newTestSignalService(t)
	ctx := context.Background()

	if err := s.MarkAnalyzed(ctx, "BTCUSDT"); err != nil {
		t.Fatalf("mark analyzed: %v", err)
	}

	recently, err := s.RecentlyAnalyzed(ctx, "BTCUSDT")
	if err != nil {
		t.Fatalf("recently analyzed: %v", err)
	}
	if !recently {
		t.Error("symbol should be in cooldown right after analysis")
	}

	recently, err = s.RecentlyAnalyzed(ctx, "ETHUSDT")
	if err != nil {
		t.Fatalf("recently analyzed: %v", err)
	}
	if recently {
		t.Error("unseen symbol should not be in cooldown")
	}

	// 重复标记只刷新时间，不报错
	if err := s.MarkAnalyzed(ctx, "BTCUSDT"); err != nil {
		t.Fatalf("re-mark analyzed: %v", err)
	}
}
