package ta

import "github.com/markcheno/go-talib"

// SMA 简单移动平均线
func SMA(closes []float64, period int) []float64 {
	return talib.Sma(closes, period)
}

// EMA 指数移动平均线
func EMA(closes []float64, period int) []float64 {
	return talib.Ema(closes, period)
}

// RSI 相对强弱指标
func RSI(closes []float64, period int) []float64 {
	return talib.Rsi(closes, period)
}

// ATR 平均真实波幅
func ATR(highs, lows, closes []float64, period int) []float64 {
	return talib.Atr(highs, lows, closes, period)
}
