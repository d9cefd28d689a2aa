package exchange

import "time"

// 通用行情类型定义，独立于任何特定交易所
// 便于支持多个数据源（币安、OKX、Bybit等）

// Direction 信号方向
type Direction string

const (
	DirectionLong    Direction = "LONG"
	DirectionShort   Direction = "SHORT"
	DirectionNeutral Direction = "NEUTRAL"
)

func (d Direction) String() string {
	return string(d)
}

// Kline K线数据
type Kline struct {
	OpenTime  time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	CloseTime time.Time
}

// Ticker24h 24小时行情统计
type Ticker24h struct {
	Symbol             string
	LastPrice          float64
	HighPrice          float64
	LowPrice           float64
	Volume             float64
	QuoteVolume        float64
	PriceChangePercent float64
}
