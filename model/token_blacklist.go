package model

import "time"

// TokenBlacklist stores revoked token ids until they would have expired.
type TokenBlacklist struct {
	JTI       string    `gorm:"type:varchar(64);primaryKey" json:"jti"`
	UserID    string    `gorm:"type:varchar(64);index" json:"user_id"`
	Reason    string    `gorm:"type:varchar(100)" json:"reason"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (TokenBlacklist) TableName() string {
	return "token_blacklist"
}
