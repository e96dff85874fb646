package types

import (
	"github.com/google/uuid"
	"time"
)

type UserToken struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	AccessToken  string    `gorm:"not null;column:access_token" json:"-"`
	RefreshToken string    `gorm:"not null;uniqueIndex;column:refresh_token" json:"-"`
	ExpiresAt    time.Time `gorm:"not null;column:expires_at" json:"expires_at"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (UserToken) TableName() string {
	return "user_token"
}
