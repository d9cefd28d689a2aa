package service

import (
	"context"
	"strings"
	"time"

	"github.com/hoangdg/pulse/internal/config"
	"github.com/hoangdg/pulse/internal/xe"
	"github.com/hoangdg/pulse/pkg/exchange"
	"github.com/hoangdg/pulse/pkg/nostd"
	"github.com/hoangdg/pulse/pkg/ta"
	"go.uber.org/zap"
)

// 快照指标中最长的回看周期是EMA50，历史少于该长度时只返回行情部分
const snapshotMinCandles = 50

// MarketService 市场快照服务
type MarketService struct {
	logger *zap.Logger

	conf     config.ScanConf
	exchange exchange.Exchange
}

// NewMarketService 创建市场快照服务
func NewMarketService(conf *config.Config, exchange exchange.Exchange, logger *zap.Logger) *MarketService {
	return &MarketService{
		logger:   logger,
		conf:     conf.Scan,
		exchange: exchange,
	}
}

// MarketSnapshot 单个币种的市场快照
type MarketSnapshot struct {
	Symbol       string    `json:"symbol"`
	CurrentPrice float64   `json:"current_price"`
	PriceChange  float64   `json:"price_change_percent"` // 24小时涨跌幅
	QuoteVolume  float64   `json:"quote_volume"`         // 24小时成交额
	HighPrice    float64   `json:"high_price"`
	LowPrice     float64   `json:"low_price"`
	EMA20        float64   `json:"ema20"`
	EMA50        float64   `json:"ema50"`
	RSI14        float64   `json:"rsi14"`
	ATR14        float64   `json:"atr14"`
	SnapshotTime time.Time `json:"snapshot_time"`
}

// Snapshot 获取单个币种的实时快照，基于1小时K线计算指标
func (s *MarketService) Snapshot(ctx context.Context, symbol string) (*MarketSnapshot, error) {
	symbol = strings.ToUpper(symbol)
	if !s.Supported(symbol) {
		return nil, xe.ErrSymbolNotSupported
	}

	ticker, err := s.exchange.Get24hTicker(ctx, symbol)
	if err != nil {
		return nil, err
	}

	snapshot := &MarketSnapshot{
		Symbol:       symbol,
		CurrentPrice: ticker.LastPrice,
		PriceChange:  ticker.PriceChangePercent,
		QuoteVolume:  ticker.QuoteVolume,
		HighPrice:    ticker.HighPrice,
		LowPrice:     ticker.LowPrice,
		SnapshotTime: time.Now(),
	}

	klines, err := s.exchange.GetKlines(ctx, symbol, "1h", 120)
	if err != nil {
		// 指标缺失时仍返回行情部分
		s.logger.Warn("failed to get klines for snapshot",
			zap.String("symbol", symbol), zap.Error(err))
		return snapshot, nil
	}
	// talib 对不足一个周期的序列会越界，历史不足与取数失败同样降级
	if len(klines) < snapshotMinCandles {
		s.logger.Warn("not enough klines for snapshot indicators",
			zap.String("symbol", symbol), zap.Int("candles", len(klines)))
		return snapshot, nil
	}

	closes := make([]float64, 0, len(klines))
	highs := make([]float64, 0, len(klines))
	lows := make([]float64, 0, len(klines))
	for _, k := range klines {
		closes = append(closes, k.Close)
		highs = append(highs, k.High)
		lows = append(lows, k.Low)
	}

	snapshot.EMA20 = nostd.Round(ta.Last(ta.EMA(closes, 20), 0), 6)
	snapshot.EMA50 = nostd.Round(ta.Last(ta.EMA(closes, 50), 0), 6)
	snapshot.RSI14 = nostd.Round(ta.Last(ta.RSI(closes, 14), 0), 2)
	snapshot.ATR14 = nostd.Round(ta.Last(ta.ATR(highs, lows, closes, 14), 0), 6)

	return snapshot, nil
}

// Supported 判断币种是否在扫描列表中
func (s *MarketService) Supported(symbol string) bool {
	for _, v := range s.conf.Symbols {
		if strings.EqualFold(v, symbol) {
			return true
		}
	}
	return false
}
