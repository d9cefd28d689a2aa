package service

import (
	"context"
	"errors"

	"github.com/go-orz/orz"
	"github.com/hoangdg/pulse/internal/config"
	"github.com/hoangdg/pulse/internal/models"
	"github.com/hoangdg/pulse/internal/repo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SubscriberService 订阅用户管理
type SubscriberService struct {
	logger *zap.Logger

	*orz.Service

	adminID        int64
	subscriberRepo *repo.SubscriberRepo
}

// NewSubscriberService 创建订阅用户服务
func NewSubscriberService(db *gorm.DB, conf *config.Config,
	subscriberRepo *repo.SubscriberRepo, logger *zap.Logger) *SubscriberService {
	return &SubscriberService{
		logger:         logger,
		Service:        orz.NewService(db),
		adminID:        conf.Telegram.AdminID,
		subscriberRepo: subscriberRepo,
	}
}

// Register 注册订阅用户，重复注册只刷新昵称
// 返回值表示该用户是否首次注册
func (s *SubscriberService) Register(ctx context.Context, id int64, username, firstName string) (bool, error) {
	_, err := s.subscriberRepo.FindById(ctx, id)
	existed := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	subscriber := &models.Subscriber{
		ID:        id,
		Username:  username,
		FirstName: firstName,
		IsAdmin:   id == s.adminID,
	}
	if err := s.subscriberRepo.Upsert(ctx, subscriber); err != nil {
		return false, err
	}

	if !existed {
		s.logger.Info("new subscriber registered",
			zap.Int64("id", id), zap.String("username", username))
	}
	return !existed, nil
}

// ActiveSubscribers 所有未封禁的订阅用户
func (s *SubscriberService) ActiveSubscribers(ctx context.Context) ([]models.Subscriber, error) {
	return s.subscriberRepo.FindActive(ctx)
}

// SetBlocked 封禁或解封订阅用户
func (s *SubscriberService) SetBlocked(ctx context.Context, id int64, blocked bool) error {
	if err := s.subscriberRepo.SetBlocked(ctx, id, blocked); err != nil {
		return err
	}
	s.logger.Info("subscriber block state changed",
		zap.Int64("id", id), zap.Bool("blocked", blocked))
	return nil
}

// IsAdmin 判断是否管理员，配置中的管理员ID始终有效
func (s *SubscriberService) IsAdmin(ctx context.Context, id int64) bool {
	if id == s.adminID {
		return true
	}
	subscriber, err := s.subscriberRepo.FindById(ctx, id)
	if err != nil {
		return false
	}
	return subscriber.IsAdmin && !subscriber.IsBlocked
}
