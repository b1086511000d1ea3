package types

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SteamID     string     `gorm:"uniqueIndex;not null;column:steam_id" json:"steam_id"`
	PersonaName string     `gorm:"column:persona_name" json:"persona_name"`
	ProfileURL  string     `gorm:"column:profile_url" json:"profile_url"`
	AvatarURL   string     `gorm:"column:avatar_url" json:"avatar_url"`
	LastLogin   *time.Time `gorm:"column:last_login" json:"last_login"`
	CreatedAt   time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string {
	return "user"
}
