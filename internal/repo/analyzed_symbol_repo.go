package repo

import (
	"context"
	"time"

	"github.com/go-orz/orz"
	"github.com/hoangdg/pulse/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func NewAnalyzedSymbolRepo(db *gorm.DB) *AnalyzedSymbolRepo {
	return &AnalyzedSymbolRepo{
		Repository: orz.NewRepository[models.AnalyzedSymbol, string](db),
	}
}

type AnalyzedSymbolRepo struct {
	orz.Repository[models.AnalyzedSymbol, string]
}

// Upsert 更新币种的最近分析时间
func (r AnalyzedSymbolRepo) Upsert(ctx context.Context, symbol string, analyzedAt time.Time) error {
	db := r.GetDB(ctx)
	record := models.AnalyzedSymbol{Symbol: symbol, LastAnalysisAt: analyzedAt}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_analysis_at"}),
	}).Create(&record).Error
}

// FindAnalyzedAfter 查找在给定时间之后分析过的记录
func (r AnalyzedSymbolRepo) FindAnalyzedAfter(ctx context.Context, symbol string, after time.Time) (bool, error) {
	var count int64
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Where("symbol = ? AND last_analysis_at > ?", symbol, after).
		Count(&count).Error
	return count > 0, err
}
