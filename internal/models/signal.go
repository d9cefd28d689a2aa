package models

import (
	"time"

	"github.com/hoangdg/pulse/pkg/exchange"
	"github.com/hoangdg/pulse/pkg/nostd"
	"gorm.io/datatypes"
)

// 信号状态
const (
	SignalStatusActive    = "active"    // 跟踪中
	SignalStatusCompleted = "completed" // 触达止盈，终态
	SignalStatusStopped   = "stopped"   // 触达止损，终态
)

// Signal 交易信号记录，由分析引擎创建，仅允许状态流转，不允许删除
type Signal struct {
	ID            string                       `gorm:"primaryKey;size:26" json:"id"`
	SignalDate    string                       `gorm:"size:10;not null;uniqueIndex:uk_signals_day_number" json:"signal_date"`
	SignalNumber  int                          `gorm:"not null;uniqueIndex:uk_signals_day_number" json:"signal_number"` // 当日序号，从1开始
	Symbol        string                       `gorm:"size:20;not null;index" json:"symbol"`
	Direction     string                       `gorm:"size:10;not null" json:"direction"` // LONG/SHORT
	Confidence    int                          `gorm:"not null" json:"confidence"`
	Entry         float64                      `gorm:"not null" json:"entry"`
	StopLoss      float64                      `gorm:"not null" json:"stop_loss"`
	TakeProfits   datatypes.JSONSlice[float64] `gorm:"type:json" json:"take_profits"` // 四级止盈，幅度递增
	RiskReward    float64                      `json:"risk_reward"`
	SentTime      time.Time                    `gorm:"not null;index" json:"sent_time"`
	Status        string                       `gorm:"size:10;not null;index;default:active" json:"status"`
	ProfitPercent float64                      `gorm:"default:0" json:"profit_percent"`
	ClosedTime    *time.Time                   `json:"closed_time,omitempty"`
	CreatedAt     time.Time                    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time                    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Signal) TableName() string {
	return "signals"
}

// IsActive 是否仍在跟踪
func (s *Signal) IsActive() bool {
	return s.Status == SignalStatusActive
}

// HighestTakeProfitHit 返回当前价格已触达的最高止盈级别（1-4），未触达返回0
func (s *Signal) HighestTakeProfitHit(currentPrice float64) int {
	highest := 0
	for i, tp := range s.TakeProfits {
		if s.Direction == exchange.DirectionLong.String() {
			if currentPrice >= tp {
				highest = i + 1
			}
		} else {
			if currentPrice <= tp {
				highest = i + 1
			}
		}
	}
	return highest
}

// StopLossHit 当前价格是否触达止损
func (s *Signal) StopLossHit(currentPrice float64) bool {
	if s.Direction == exchange.DirectionLong.String() {
		return currentPrice <= s.StopLoss
	}
	return currentPrice >= s.StopLoss
}

// ProfitPercentAt 按方向计算当前价格下的盈亏百分比
func (s *Signal) ProfitPercentAt(currentPrice float64) float64 {
	if s.Entry == 0 {
		return 0
	}

	var percent float64
	if s.Direction == exchange.DirectionLong.String() {
		percent = (currentPrice - s.Entry) / s.Entry * 100
	} else {
		percent = (s.Entry - currentPrice) / s.Entry * 100
	}
	return nostd.Round(percent, 2)
}
