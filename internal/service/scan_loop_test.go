package service

import (
	"context"
	"testing"

	"github.com/hoangdg/pulse/pkg/exchange"
	"go.uber.org/zap"
)

func newTestScanLoop(t *testing.T, ex *fakeExchange) (*ScanLoop, *SignalService, *recordingNotifier) {
	t.Helper()

	conf := newTestConfig()
	conf.Scan.Symbols = []string{"BTCUSDT", "ETHUSDT"}

	signalService := NewSignalService(newTestDB(t), conf, zap.NewNop())
	analyzer := NewAnalyzerService(conf, ex, NewIndicatorService(conf), zap.NewNop())
	notifier := &recordingNotifier{}
	monitor := NewMonitorService(ex, signalService, notifier, zap.NewNop())
	narrator := NewNarratorService(nil, "", zap.NewNop())
	loop := NewScanLoop(conf, analyzer, signalService, monitor, narrator, notifier, zap.NewNop())
	return loop, signalService, notifier
}

func TestExecuteScanEmitsAndCoolsDown(t *testing.T) {
	candles := uptrendCandles(100)
	ex := &fakeExchange{
		klines: map[string][]*exchange.Kline{
			"15m": candles, "1h": candles, "4h": candles,
		},
		price: 100,
	}
	loop, signalService, notifier := newTestScanLoop(t, ex)
	ctx := context.Background()

	loop.ExecuteScan(ctx)

	signals, err := signalService.GetActiveSignals(ctx)
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if len(signals) != 2 {
		t.Fatalf("signals = %d, want one per symbol", len(signals))
	}
	if len(notifier.signals) != 2 {
		t.Errorf("notifications = %d, want 2", len(notifier.signals))
	}

	// 冷却期内重复扫描不再出信号
	loop.ExecuteScan(ctx)

	signals, _ = signalService.GetActiveSignals(ctx)
	if len(signals) != 2 {
		t.Errorf("signals after rescan = %d, want still 2", len(signals))
	}
	if len(notifier.signals) != 2 {
		t.Errorf("notifications after rescan = %d, want still 2", len(notifier.signals))
	}
}

func TestExecuteScanNoSignalStillCoolsDown(t *testing.T) {
	// 横盘行情不出信号，但同样计入冷却
	closes := make([]float64, 100)
	volumes := make([]float64, 100)
	for i := range closes {
		closes[i] = 100
		volumes[i] = 1000
	}
	flat := makeCandles(closes, volumes)
	ex := &fakeExchange{
		klines: map[string][]*exchange.Kline{
			"15m": flat, "1h": flat, "4h": flat,
		},
		price: 100,
	}
	loop, signalService, notifier := newTestScanLoop(t, ex)
	ctx := context.Background()

	loop.ExecuteScan(ctx)

	signals, _ := signalService.GetActiveSignals(ctx)
	if len(signals) != 0 {
		t.Errorf("signals = %d, want 0 in flat market", len(signals))
	}
	if len(notifier.signals) != 0 {
		t.Errorf("notifications = %d, want 0", len(notifier.signals))
	}

	recently, err := signalService.RecentlyAnalyzed(ctx, "BTCUSDT")
	if err != nil {
		t.Fatalf("recently analyzed: %v", err)
	}
	if !recently {
		t.Error("failed scan attempt should still start the cooldown")
	}
}

func TestJoinInts(t *testing.T) {
	if got := joinInts([]int{1, 16, 31, 46}); got != "1,16,31,46" {
		t.Errorf("joinInts = %q, want 1,16,31,46", got)
	}
	if got := joinInts([]int{5}); got != "5" {
		t.Errorf("joinInts = %q, want 5", got)
	}
}

func TestGetStatus(t *testing.T) {
	loop, _, _ := newTestScanLoop(t, &fakeExchange{})

	status := loop.GetStatus()
	if status["is_running"] != false {
		t.Error("loop should not be running before Start")
	}
	if status["scan_count"] != 0 {
		t.Errorf("scan_count = %v, want 0", status["scan_count"])
	}
}
