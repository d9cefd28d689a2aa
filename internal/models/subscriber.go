package models

import "time"

// Subscriber Telegram订阅用户
type Subscriber struct {
	ID        int64     `gorm:"primaryKey" json:"id"` // Telegram用户ID
	Username  string    `gorm:"size:64" json:"username"`
	FirstName string    `gorm:"size:64" json:"first_name"`
	IsBlocked bool      `gorm:"not null;default:false" json:"is_blocked"`
	IsAdmin   bool      `gorm:"not null;default:false" json:"is_admin"`
	JoinedAt  time.Time `gorm:"autoCreateTime" json:"joined_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Subscriber) TableName() string {
	return "subscribers"
}
