package repo

import (
	"context"

	"github.com/go-orz/orz"
	"github.com/hoangdg/pulse/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func NewSubscriberRepo(db *gorm.DB) *SubscriberRepo {
	return &SubscriberRepo{
		Repository: orz.NewRepository[models.Subscriber, int64](db),
	}
}

type SubscriberRepo struct {
	orz.Repository[models.Subscriber, int64]
}

// Upsert 注册或刷新订阅用户，不覆盖封禁与管理员标记
func (r SubscriberRepo) Upsert(ctx context.Context, subscriber *models.Subscriber) error {
	db := r.GetDB(ctx)
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "first_name"}),
	}).Create(subscriber).Error
}

// FindActive 查找所有未封禁的订阅用户
func (r SubscriberRepo) FindActive(ctx context.Context) ([]models.Subscriber, error) {
	var subscribers []models.Subscriber
	db := r.GetDB(ctx)
	err := db.Table(r.GetTableName()).
		Where("is_blocked = ?", false).
		Find(&subscribers).Error
	return subscribers, err
}

// SetBlocked 设置封禁状态
func (r SubscriberRepo) SetBlocked(ctx context.Context, id int64, blocked bool) error {
	db := r.GetDB(ctx)
	return db.Table(r.GetTableName()).
		Where("id = ?", id).
		Update("is_blocked", blocked).Error
}
