package service

import (
	"github.com/hoangdg/pulse/internal/config"
	"github.com/hoangdg/pulse/pkg/exchange"
	"github.com/hoangdg/pulse/pkg/ta"
)

// 检测器对历史长度的最低要求，不足时返回中性结果而非错误
const (
	trendMinCandles  = 20
	levelsMinCandles = 50
	trendFastPeriod  = 20
	trendSlowPeriod  = 50
	volumeRecentBars = 5
)

// IndicatorService 单周期检测器集合，全部为纯函数
type IndicatorService struct {
	conf config.AnalysisConf
}

// NewIndicatorService 创建检测服务
func NewIndicatorService(conf *config.Config) *IndicatorService {
	return &IndicatorService{conf: conf.Analysis}
}

// TrendResult 趋势检测结果
type TrendResult struct {
	Direction   exchange.Direction `json:"direction"`
	Strength    float64            `json:"strength"`    // 现价偏离慢线的百分比
	Consistency float64            `json:"consistency"` // 0-100，连续性
	FastMA      float64            `json:"fast_ma"`
	SlowMA      float64            `json:"slow_ma"`
}

// VolumeResult 量能检测结果
type VolumeResult struct {
	Score        float64 `json:"score"` // 0-100
	Ratio        float64 `json:"ratio"` // 近期量/基准量
	Spike        bool    `json:"spike"`
	AvgVolume    float64 `json:"avg_volume"`
	RecentVolume float64 `json:"recent_volume"`
}

// LevelResult 支撑/阻力，0 表示数据不足无法判定
type LevelResult struct {
	Support    float64 `json:"support"`
	Resistance float64 `json:"resistance"`
}

// TimeframeAnalysis 单周期的完整检测结果
type TimeframeAnalysis struct {
	Trend  TrendResult  `json:"trend"`
	Volume VolumeResult `json:"volume"`
	Levels LevelResult  `json:"levels"`
	Weight float64      `json:"weight"`
}

// DetectTrend 基于均线判断方向与强度
// 历史不足50根时慢线退化为快线，保留该降级策略
func (s *IndicatorService) DetectTrend(candles []*exchange.Kline) TrendResult {
	if len(candles) < trendMinCandles {
		return TrendResult{Direction: exchange.DirectionNeutral}
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	fastMA := ta.Last(ta.SMA(closes, trendFastPeriod), 0)
	slowMA := fastMA
	if len(closes) >= trendSlowPeriod {
		slowMA = ta.Last(ta.SMA(closes, trendSlowPeriod), 0)
	}

	currentPrice := ta.Last(closes, 0)

	result := TrendResult{
		Direction: exchange.DirectionNeutral,
		FastMA:    fastMA,
		SlowMA:    slowMA,
	}

	switch {
	case currentPrice > fastMA && fastMA > slowMA:
		result.Direction = exchange.DirectionLong
		result.Strength = (currentPrice - slowMA) / slowMA * 100
	case currentPrice < fastMA && fastMA < slowMA:
		result.Direction = exchange.DirectionShort
		result.Strength = (slowMA - currentPrice) / slowMA * 100
	default:
		return result
	}
	if result.Strength < 0 {
		result.Strength = -result.Strength
	}

	result.Consistency = trendConsistency(candles, result.Direction)
	return result
}

// trendConsistency 统计最近窗口内高点/低点的同向移动次数
// 窗口与除数固定为10/20，SHORT 取补数，与既定策略保持一致
func trendConsistency(candles []*exchange.Kline, direction exchange.Direction) float64 {
	n := len(candles)
	window := 10
	if n < window {
		window = n
	}

	higherHighs := 0
	higherLows := 0
	for i := 1; i < window; i++ {
		if candles[n-i].High > candles[n-i-1].High {
			higherHighs++
		}
		if candles[n-i].Low > candles[n-i-1].Low {
			higherLows++
		}
	}

	switch direction {
	case exchange.DirectionLong:
		return float64(higherHighs+higherLows) / 20 * 100
	case exchange.DirectionShort:
		lowerHighs := 10 - higherHighs
		lowerLows := 10 - higherLows
		return float64(lowerHighs+lowerLows) / 20 * 100
	default:
		return 0
	}
}

// DetectVolume 检测近期量能相对基准的放大程度
func (s *IndicatorService) DetectVolume(candles []*exchange.Kline) VolumeResult {
	if len(candles) < trendMinCandles {
		return VolumeResult{}
	}

	volumes := make([]float64, len(candles))
	for i, c := range candles {
		volumes[i] = c.Volume
	}

	avgVolume := ta.Mean(volumes[:len(volumes)-volumeRecentBars])
	recentVolume := ta.Mean(ta.LastValues(volumes, volumeRecentBars))

	ratio := 0.0
	if avgVolume > 0 {
		ratio = recentVolume / avgVolume
	}

	// 量比低于下限时给50分：量能不确定，不直接视为利空
	var score float64
	switch {
	case ratio >= s.conf.VolumeSpike:
		score = 100
	case ratio >= s.conf.MinVolumeRatio:
		score = ratio / s.conf.VolumeSpike * 100
	default:
		score = 50
	}
	if score > 100 {
		score = 100
	}

	return VolumeResult{
		Score:        score,
		Ratio:        ratio,
		Spike:        ratio > s.conf.VolumeSpike,
		AvgVolume:    avgVolume,
		RecentVolume: recentVolume,
	}
}

// FindLevels 在最近50根K线内寻找离现价最近的支撑与阻力
func (s *IndicatorService) FindLevels(candles []*exchange.Kline) LevelResult {
	if len(candles) < levelsMinCandles {
		return LevelResult{}
	}

	window := candles[len(candles)-levelsMinCandles:]
	highs := make([]float64, len(window))
	lows := make([]float64, len(window))
	for i, c := range window {
		highs[i] = c.High
		lows[i] = c.Low
	}

	resistance := ta.Highest(highs, levelsMinCandles)
	support := ta.Lowest(lows, levelsMinCandles)

	currentPrice := candles[len(candles)-1].Close

	nearestResistance := resistance
	found := false
	for _, h := range highs {
		if h > currentPrice && (!found || h < nearestResistance) {
			nearestResistance = h
			found = true
		}
	}

	nearestSupport := support
	found = false
	for _, l := range lows {
		if l < currentPrice && (!found || l > nearestSupport) {
			nearestSupport = l
			found = true
		}
	}

	return LevelResult{
		Support:    nearestSupport,
		Resistance: nearestResistance,
	}
}
