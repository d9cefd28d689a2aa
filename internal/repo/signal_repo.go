package repo

import (
	"context"
	"time"

	"github.com/go-orz/orz"
	"github.com/hoangdg/pulse/internal/models"
	"gorm.io/gorm"
)

func NewSignalRepo(db *gorm.DB) *SignalRepo {
	return &SignalRepo{
		Repository: orz.NewRepository[models.Signal, string](db),
	}
}

type SignalRepo struct {
	orz.Repository[models.Signal, string]
}

// FindSentBetween 查找时间段内发出的信号
func (r SignalRepo) FindSentBetween(ctx context.Context, from, to time.Time) ([]models.Signal, error) {
	var signals []models.Signal
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Where("sent_time >= ? AND sent_time < ?", from, to).
		Order("sent_time ASC").
		Find(&signals).Error
	return signals, err
}

// FindActive 查找所有跟踪中的信号
func (r SignalRepo) FindActive(ctx context.Context) ([]models.Signal, error) {
	var signals []models.Signal
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Where("status = ?", models.SignalStatusActive).
		Order("sent_time ASC").
		Find(&signals).Error
	return signals, err
}

// FindRecent 查找最近的信号记录
func (r SignalRepo) FindRecent(ctx context.Context, limit int) ([]models.Signal, error) {
	var signals []models.Signal
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Order("sent_time DESC").
		Limit(limit).
		Find(&signals).Error
	return signals, err
}
