package service

import (
	"math"
	"testing"
	"time"

	"github.com/hoangdg/pulse/internal/config"
	"github.com/hoangdg/pulse/pkg/exchange"
)

func newTestConfig() *config.Config {
	var conf config.Config
	conf.Normalize()
	return &conf
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

// makeCandles 以收盘价与成交量构造K线，高低点跟随收盘价
func makeCandles(closes, volumes []float64) []*exchange.Kline {
	candles := make([]*exchange.Kline, len(closes))
	openTime := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range closes {
		candles[i] = &exchange.Kline{
			OpenTime:  openTime.Add(time.Duration(i) * time.Hour),
			Open:      closes[i],
			High:      closes[i] * 1.001,
			Low:       closes[i] * 0.999,
			Close:     closes[i],
			Volume:    volumes[i],
			CloseTime: openTime.Add(time.Duration(i+1) * time.Hour),
		}
	}
	return candles
}

// uptrendCandles 几何递增收盘价，末5根放量
func uptrendCandles(n int) []*exchange.Kline {
	closes := make([]float64, n)
	volumes := make([]float64, n)
	price := 100.0
	for i := 0; i < n; i++ {
		closes[i] = price
		price *= 1.05
		volumes[i] = 1000
		if i >= n-5 {
			volumes[i] = 2000
		}
	}
	return makeCandles(closes, volumes)
}

func downtrendCandles(n int) []*exchange.Kline {
	closes := make([]float64, n)
	volumes := make([]float64, n)
	price := 100000.0
	for i := 0; i < n; i++ {
		closes[i] = price
		price *= 0.95
		volumes[i] = 1000
		if i >= n-5 {
			volumes[i] = 2000
		}
	}
	return makeCandles(closes, volumes)
}

func TestDetectTrendInsufficientData(t *testing.T) {
	s := NewIndicatorService(newTestConfig())

	got := s.DetectTrend(uptrendCandles(10))
	if got.Direction != exchange.DirectionNeutral {
		t.Fatalf("direction = %s, want NEUTRAL", got.Direction)
	}
	if got.Strength != 0 || got.Consistency != 0 {
		t.Fatalf("strength/consistency = %v/%v, want zeros", got.Strength, got.Consistency)
	}
}

func TestDetectTrendLong(t *testing.T) {
	s := NewIndicatorService(newTestConfig())

	got := s.DetectTrend(uptrendCandles(100))
	if got.Direction != exchange.DirectionLong {
		t.Fatalf("direction = %s, want LONG", got.Direction)
	}
	if got.Strength < 60 {
		t.Errorf("strength = %v, want >= 60", got.Strength)
	}
	// 高低点单调抬升，10根窗口内9次同向移动，(9+9)/20*100
	if !almostEqual(got.Consistency, 90) {
		t.Errorf("consistency = %v, want 90", got.Consistency)
	}
	if got.FastMA <= got.SlowMA {
		t.Errorf("fast ma %v should be above slow ma %v", got.FastMA, got.SlowMA)
	}
}

func TestDetectTrendShort(t *testing.T) {
	s := NewIndicatorService(newTestConfig())

	got := s.DetectTrend(downtrendCandles(100))
	if got.Direction != exchange.DirectionShort {
		t.Fatalf("direction = %s, want SHORT", got.Direction)
	}
	if got.Strength <= 0 {
		t.Errorf("strength = %v, want positive", got.Strength)
	}
	// 下跌趋势取补数，窗口内无一次抬升
	if !almostEqual(got.Consistency, 100) {
		t.Errorf("consistency = %v, want 100", got.Consistency)
	}
}

func TestDetectTrendSideways(t *testing.T) {
	s := NewIndicatorService(newTestConfig())

	closes := make([]float64, 60)
	volumes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100
		volumes[i] = 1000
	}

	got := s.DetectTrend(makeCandles(closes, volumes))
	if got.Direction != exchange.DirectionNeutral {
		t.Fatalf("direction = %s, want NEUTRAL for flat prices", got.Direction)
	}
}

// 历史在20到50根之间时，慢线退化为快线，方向判定仍依赖严格不等
func TestDetectTrendShortHistoryFallback(t *testing.T) {
	s := NewIndicatorService(newTestConfig())

	got := s.DetectTrend(uptrendCandles(30))
	if got.SlowMA != got.FastMA {
		t.Fatalf("slow ma = %v, want fallback to fast ma %v", got.SlowMA, got.FastMA)
	}
	if got.Direction != exchange.DirectionNeutral {
		t.Fatalf("direction = %s, want NEUTRAL when both averages collapse", got.Direction)
	}
}

func TestDetectVolume(t *testing.T) {
	s := NewIndicatorService(newTestConfig())

	tests := []struct {
		name      string
		recent    float64
		wantScore float64
		wantSpike bool
	}{
		{"spike", 2000, 100, true},
		{"moderate", 1200, 80, false},
		{"quiet", 500, 50, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			closes := make([]float64, 100)
			volumes := make([]float64, 100)
			for i := range volumes {
				closes[i] = 100
				volumes[i] = 1000
				if i >= 95 {
					volumes[i] = tt.recent
				}
			}

			got := s.DetectVolume(makeCandles(closes, volumes))
			if !almostEqual(got.Score, tt.wantScore) {
				t.Errorf("score = %v, want %v", got.Score, tt.wantScore)
			}
			if got.Spike != tt.wantSpike {
				t.Errorf("spike = %v, want %v", got.Spike, tt.wantSpike)
			}
			if !almostEqual(got.AvgVolume, 1000) {
				t.Errorf("avg volume = %v, want 1000", got.AvgVolume)
			}
			if !almostEqual(got.RecentVolume, tt.recent) {
				t.Errorf("recent volume = %v, want %v", got.RecentVolume, tt.recent)
			}
		})
	}
}

func TestDetectVolumeInsufficientData(t *testing.T) {
	s := NewIndicatorService(newTestConfig())

	got := s.DetectVolume(uptrendCandles(10))
	if got.Score != 0 || got.Spike {
		t.Fatalf("got %+v, want zero result", got)
	}
}

func TestFindLevels(t *testing.T) {
	s := NewIndicatorService(newTestConfig())

	candles := make([]*exchange.Kline, 60)
	for i := range candles {
		candles[i] = &exchange.Kline{Open: 100, High: 110, Low: 90, Close: 100}
	}
	// 离现价最近的高低点应当胜出
	candles[30].High = 105
	candles[40].Low = 95

	got := s.FindLevels(candles)
	if !almostEqual(got.Resistance, 105) {
		t.Errorf("resistance = %v, want 105", got.Resistance)
	}
	if !almostEqual(got.Support, 95) {
		t.Errorf("support = %v, want 95", got.Support)
	}
}

func TestFindLevelsInsufficientData(t *testing.T) {
	s := NewIndicatorService(newTestConfig())

	got := s.FindLevels(uptrendCandles(30))
	if got.Support != 0 || got.Resistance != 0 {
		t.Fatalf("got %+v, want zero levels below 50 candles", got)
	}
}

// 现价高于窗口内全部高点时退回窗口极值
func TestFindLevelsFallbackToExtremes(t *testing.T) {
	s := NewIndicatorService(newTestConfig())

	candles := make([]*exchange.Kline, 50)
	for i := range candles {
		candles[i] = &exchange.Kline{Open: 100, High: 110, Low: 90, Close: 100}
	}
	candles[49].Close = 200

	got := s.FindLevels(candles)
	if !almostEqual(got.Resistance, 110) {
		t.Errorf("resistance = %v, want window high 110", got.Resistance)
	}
	if !almostEqual(got.Support, 90) {
		t.Errorf("support = %v, want nearest low 90", got.Support)
	}
}
