package service

import (
	"context"
	"math"
	"time"

	"github.com/hoangdg/pulse/internal/config"
	"github.com/hoangdg/pulse/pkg/exchange"
	"github.com/hoangdg/pulse/pkg/nostd"
	"go.uber.org/zap"
)

// 单周期评分为三个独立关卡的定值之和，不做线性插值
const (
	scoreTrendStrength = 40
	scoreConsistency   = 30
	scoreVolume        = 30

	consistencyGate = 70
	volumeScoreGate = 80

	priceDecimals = 6
)

// AnalyzerService 多周期分析引擎
type AnalyzerService struct {
	logger *zap.Logger

	conf             config.AnalysisConf
	exchange         exchange.Exchange
	indicatorService *IndicatorService
}

// NewAnalyzerService 创建分析引擎
func NewAnalyzerService(conf *config.Config, ex exchange.Exchange,
	indicatorService *IndicatorService, logger *zap.Logger) *AnalyzerService {
	return &AnalyzerService{
		logger:           logger,
		conf:             conf.Analysis,
		exchange:         ex,
		indicatorService: indicatorService,
	}
}

// TradePlan 交易计划
type TradePlan struct {
	Entry       float64   `json:"entry"`
	StopLoss    float64   `json:"stop_loss"`
	TakeProfits []float64 `json:"take_profits"` // 四级止盈，幅度递增
	RiskReward  float64   `json:"risk_reward"`
}

// AnalysisResult 单币种分析结果
// Confidence 低于门槛或盈亏比不达标时只有 Confidence 有效
type AnalysisResult struct {
	Symbol       string                        `json:"symbol"`
	Confidence   int                           `json:"confidence"`
	Direction    exchange.Direction            `json:"direction,omitempty"`
	Entry        float64                       `json:"entry,omitempty"`
	StopLoss     float64                       `json:"stop_loss,omitempty"`
	TakeProfits  []float64                     `json:"take_profits,omitempty"`
	RiskReward   float64                       `json:"risk_reward,omitempty"`
	CurrentPrice float64                       `json:"current_price,omitempty"`
	AnalysisTime time.Time                     `json:"analysis_time"`
	Timeframes   map[string]*TimeframeAnalysis `json:"timeframes,omitempty"`
}

// Actionable 是否产出了可执行的交易计划
func (r *AnalysisResult) Actionable() bool {
	return r.Direction != "" && r.Entry > 0
}

// Analyze 完整分析一个币种，任何失败都降级为低置信度结果，不向上抛错
func (s *AnalyzerService) Analyze(ctx context.Context, symbol string) *AnalysisResult {
	result := &AnalysisResult{
		Symbol:       symbol,
		AnalysisTime: time.Now(),
	}

	analyses := make(map[string]*TimeframeAnalysis)
	for _, tf := range s.conf.Timeframes {
		klines, err := s.exchange.GetKlines(ctx, symbol, tf.Interval, tf.Limit)
		if err != nil {
			// 单周期取数失败只跳过该周期
			s.logger.Warn("failed to get klines, skipping timeframe",
				zap.String("symbol", symbol),
				zap.String("timeframe", tf.Interval),
				zap.Error(err))
			continue
		}
		if len(klines) == 0 {
			continue
		}

		analyses[tf.Interval] = &TimeframeAnalysis{
			Trend:  s.indicatorService.DetectTrend(klines),
			Volume: s.indicatorService.DetectVolume(klines),
			Levels: s.indicatorService.FindLevels(klines),
			Weight: tf.Weight,
		}
	}
	result.Timeframes = analyses

	if len(analyses) == 0 {
		s.logger.Warn("no timeframe data available", zap.String("symbol", symbol))
		return result
	}

	confidence, direction := s.aggregate(analyses)
	result.Confidence = confidence

	if confidence < s.conf.MinConfidence {
		s.logger.Info("confidence below threshold",
			zap.String("symbol", symbol),
			zap.Int("confidence", confidence))
		return result
	}

	currentPrice, err := s.exchange.GetCurrentPrice(ctx, symbol)
	if err != nil || currentPrice <= 0 {
		s.logger.Warn("failed to get current price",
			zap.String("symbol", symbol),
			zap.Error(err))
		result.Confidence = 0
		return result
	}

	primary, ok := analyses[s.conf.PrimaryTimeframe]
	if !ok {
		// 缺少主周期无法定级，信号作废
		s.logger.Warn("primary timeframe missing, no trade plan",
			zap.String("symbol", symbol),
			zap.String("primary", s.conf.PrimaryTimeframe))
		result.Confidence = 0
		return result
	}

	plan := s.BuildTradePlan(currentPrice, direction, primary.Levels.Support, primary.Levels.Resistance)

	if plan.RiskReward < s.conf.MinRiskReward {
		s.logger.Info("risk reward below minimum",
			zap.String("symbol", symbol),
			zap.Float64("risk_reward", plan.RiskReward))
		result.Confidence = 0
		return result
	}

	result.Direction = direction
	result.Entry = plan.Entry
	result.StopLoss = plan.StopLoss
	result.TakeProfits = plan.TakeProfits
	result.RiskReward = plan.RiskReward
	result.CurrentPrice = currentPrice

	s.logger.Info("signal candidate found",
		zap.String("symbol", symbol),
		zap.Int("confidence", confidence),
		zap.String("direction", direction.String()),
		zap.Float64("risk_reward", plan.RiskReward))

	return result
}

// ScoreTimeframe 单周期评分：三个关卡各自通过才计分
func (s *AnalyzerService) ScoreTimeframe(analysis *TimeframeAnalysis) int {
	score := 0
	if analysis.Trend.Strength >= s.conf.TrendStrength {
		score += scoreTrendStrength
	}
	if analysis.Trend.Consistency >= consistencyGate {
		score += scoreConsistency
	}
	if analysis.Volume.Score >= volumeScoreGate {
		score += scoreVolume
	}
	return score
}

// aggregate 按权重合并各周期评分，并以方向投票修正
// 无投票或平票视为分歧，置信度归零
func (s *AnalyzerService) aggregate(analyses map[string]*TimeframeAnalysis) (int, exchange.Direction) {
	combinedScore := 0.0
	totalWeight := 0.0
	longVotes := 0
	shortVotes := 0

	for _, analysis := range analyses {
		combinedScore += float64(s.ScoreTimeframe(analysis)) * analysis.Weight
		totalWeight += analysis.Weight

		switch analysis.Trend.Direction {
		case exchange.DirectionLong:
			longVotes++
		case exchange.DirectionShort:
			shortVotes++
		}
	}

	finalScore := 0.0
	if totalWeight > 0 {
		finalScore = combinedScore / totalWeight
	}

	totalVotes := longVotes + shortVotes
	if totalVotes == 0 || longVotes == shortVotes {
		return 0, exchange.DirectionNeutral
	}

	direction := exchange.DirectionLong
	winning := longVotes
	if shortVotes > longVotes {
		direction = exchange.DirectionShort
		winning = shortVotes
	}

	alignmentBonus := float64(winning) / float64(totalVotes) * 100
	finalScore = (finalScore + alignmentBonus) / 2

	return int(math.Round(finalScore)), direction
}

// BuildTradePlan 依据方向计算入场、止损与四级止盈
// support/resistance 作为上下文保留，当前策略按固定百分比定级
func (s *AnalyzerService) BuildTradePlan(currentPrice float64, direction exchange.Direction,
	support, resistance float64) *TradePlan {
	var entry, stopLoss float64
	takeProfits := make([]float64, 0, len(s.conf.TakeProfits))

	if direction == exchange.DirectionLong {
		entry = currentPrice * (1 - s.conf.EntrySlippage)
		stopLoss = entry * (1 - s.conf.StopLossPercent)
		for _, tp := range s.conf.TakeProfits {
			takeProfits = append(takeProfits, entry*(1+tp))
		}
	} else {
		entry = currentPrice * (1 + s.conf.EntrySlippage)
		stopLoss = entry * (1 + s.conf.StopLossPercent)
		for _, tp := range s.conf.TakeProfits {
			takeProfits = append(takeProfits, entry*(1-tp))
		}
	}

	risk := math.Abs(entry - stopLoss)
	reward := math.Abs(takeProfits[len(takeProfits)-1] - entry)
	riskReward := 0.0
	if risk > 0 {
		riskReward = reward / risk
	}

	for i, tp := range takeProfits {
		takeProfits[i] = nostd.Round(tp, priceDecimals)
	}

	return &TradePlan{
		Entry:       nostd.Round(entry, priceDecimals),
		StopLoss:    nostd.Round(stopLoss, priceDecimals),
		TakeProfits: takeProfits,
		RiskReward:  nostd.Round(riskReward, 2),
	}
}
