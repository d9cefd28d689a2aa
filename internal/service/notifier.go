package service

import "github.com/hoangdg/pulse/internal/models"

// Notifier 信号与日报的推送出口，推送失败不影响主流程
type Notifier interface {
	NotifySignal(signal *models.Signal, commentary string)
	NotifySignalClosed(signal *models.Signal)
	NotifyDailySummary(stats *models.DailyStats)
}

// NewNopNotifier 返回空实现，Telegram未启用时使用
func NewNopNotifier() Notifier {
	return nopNotifier{}
}

type nopNotifier struct{}

func (nopNotifier) NotifySignal(*models.Signal, string)   {}
func (nopNotifier) NotifySignalClosed(*models.Signal)     {}
func (nopNotifier) NotifyDailySummary(*models.DailyStats) {}
