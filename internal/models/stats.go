package models

// DailyStats 当日信号统计，纯读侧聚合
type DailyStats struct {
	Date          string  `json:"date"`
	TotalSignals  int     `json:"total_signals"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	ActiveSignals int     `json:"active_signals"`
	TotalProfit   float64 `json:"total_profit"`
	AvgProfit     float64 `json:"avg_profit"`
	WinRate       float64 `json:"win_rate"`
}
