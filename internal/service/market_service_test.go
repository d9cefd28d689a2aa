package service

import (
	"context"
	"errors"
	"testing"

	"github.com/hoangdg/pulse/internal/xe"
	"github.com/hoangdg/pulse/pkg/exchange"
	"go.uber.org/zap"
)

func TestSupported(t *testing.T) {
	s := NewMarketService(newTestConfig(), &fakeExchange{}, zap.NewNop())

	if !s.Supported("BTCUSDT") {
		t.Error("BTCUSDT should be supported by default config")
	}
	if !s.Supported("btcusdt") {
		t.Error("symbol check should ignore case")
	}
	if s.Supported("FOOUSDT") {
		t.Error("unknown symbol should not be supported")
	}
}

func TestSnapshotUnsupportedSymbol(t *testing.T) {
	s := NewMarketService(newTestConfig(), &fakeExchange{}, zap.NewNop())

	_, err := s.Snapshot(context.Background(), "FOOUSDT")
	if !errors.Is(err, xe.ErrSymbolNotSupported) {
		t.Fatalf("err = %v, want ErrSymbolNotSupported", err)
	}
}

func TestSnapshot(t *testing.T) {
	ex := &fakeExchange{
		klines: map[string][]*exchange.Kline{"1h": uptrendCandles(100)},
		ticker: &exchange.Ticker24h{
			Symbol:             "BTCUSDT",
			LastPrice:          50000,
			HighPrice:          51000,
			LowPrice:           49000,
			QuoteVolume:        1_000_000,
			PriceChangePercent: 2.5,
		},
	}
	s := NewMarketService(newTestConfig(), ex, zap.NewNop())

	snapshot, err := s.Snapshot(context.Background(), "btcusdt")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	if snapshot.Symbol != "BTCUSDT" {
		t.Errorf("symbol = %q, want upper cased BTCUSDT", snapshot.Symbol)
	}
	if snapshot.CurrentPrice != 50000 || snapshot.PriceChange != 2.5 {
		t.Errorf("price/change = %v/%v, want 50000/2.5", snapshot.CurrentPrice, snapshot.PriceChange)
	}
	if snapshot.EMA20 <= 0 || snapshot.EMA50 <= 0 {
		t.Errorf("ema20/ema50 = %v/%v, want positive", snapshot.EMA20, snapshot.EMA50)
	}
	if snapshot.EMA20 <= snapshot.EMA50 {
		t.Errorf("uptrend ema20 %v should sit above ema50 %v", snapshot.EMA20, snapshot.EMA50)
	}
	if snapshot.RSI14 <= 50 || snapshot.RSI14 > 100 {
		t.Errorf("rsi = %v, want above 50 in steady uptrend", snapshot.RSI14)
	}
	if snapshot.ATR14 <= 0 {
		t.Errorf("atr = %v, want positive", snapshot.ATR14)
	}
}

// 接口正常返回但K线数量不足时，与取数失败同样降级，不允许越界
func TestSnapshotShortKlines(t *testing.T) {
	tests := []struct {
		name    string
		candles int
	}{
		{"empty", 0},
		{"below ema50 lookback", 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := &fakeExchange{
				klines: map[string][]*exchange.Kline{"1h": uptrendCandles(tt.candles)},
				ticker: &exchange.Ticker24h{Symbol: "BTCUSDT", LastPrice: 50000},
			}
			s := NewMarketService(newTestConfig(), ex, zap.NewNop())

			snapshot, err := s.Snapshot(context.Background(), "BTCUSDT")
			if err != nil {
				t.Fatalf("snapshot: %v", err)
			}
			if snapshot.CurrentPrice != 50000 {
				t.Errorf("price = %v, want 50000", snapshot.CurrentPrice)
			}
			if snapshot.EMA20 != 0 || snapshot.EMA50 != 0 || snapshot.RSI14 != 0 || snapshot.ATR14 != 0 {
				t.Errorf("indicators should stay zero on short history, got %+v", snapshot)
			}
		})
	}
}

// 行情可用但K线失败时，仍返回不含指标的快照
func TestSnapshotWithoutKlines(t *testing.T) {
	ex := &fakeExchange{
		ticker:    &exchange.Ticker24h{Symbol: "BTCUSDT", LastPrice: 50000},
		klinesErr: errors.New("timeout"),
	}
	s := NewMarketService(newTestConfig(), ex, zap.NewNop())

	snapshot, err := s.Snapshot(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snapshot.CurrentPrice != 50000 {
		t.Errorf("price = %v, want 50000", snapshot.CurrentPrice)
	}
	if snapshot.EMA20 != 0 || snapshot.RSI14 != 0 {
		t.Errorf("indicators should stay zero without klines, got %v/%v", snapshot.EMA20, snapshot.RSI14)
	}
}
