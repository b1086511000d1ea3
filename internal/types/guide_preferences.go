package types

import (
	"time"

	"github.com/google/uuid"
)

type GuidePreferences struct {
	ID                    uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SteamID               string    `gorm:"uniqueIndex;not null;column:steam_id" json:"steam_id"`
	PreferAIGuides        bool      `gorm:"not null;default:true;column:prefer_ai_guides" json:"prefer_ai_guides"`
	PreferVideoGuides     bool      `gorm:"not null;default:true;column:prefer_video_guides" json:"prefer_video_guides"`
	PreferTextGuides      bool      `gorm:"not null;default:true;column:prefer_text_guides" json:"prefer_text_guides"`
	PreferCommunityGuides bool      `gorm:"not null;default:true;column:prefer_community_guides" json:"prefer_community_guides"`
	UpdatedAt             time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (GuidePreferences) TableName() string {
	return "user_guide_preferences"
}
