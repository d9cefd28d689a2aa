package models

import "time"

// AnalyzedSymbol 分析冷却记录，每次分析尝试后更新
type AnalyzedSymbol struct {
	Symbol         string    `gorm:"primaryKey;size:20" json:"symbol"`
	LastAnalysisAt time.Time `gorm:"not null" json:"last_analysis_at"`
}

func (AnalyzedSymbol) TableName() string {
	return "analyzed_symbols"
}
