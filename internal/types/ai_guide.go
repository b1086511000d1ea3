package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AIGuide is a generated guide for one (app_id, achievement_name) pair. There
// is no TTL: the row is authoritative until a forced regeneration overwrites
// it. Views and rating are mutated through their own repo operations.
type AIGuide struct {
	ID                     uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AppID                  int            `gorm:"not null;index:idx_ai_guide_key,priority:1;uniqueIndex:uniq_ai_guide,priority:1;column:app_id" json:"app_id"`
	AchievementName        string         `gorm:"not null;index:idx_ai_guide_key,priority:2;uniqueIndex:uniq_ai_guide,priority:2;column:achievement_name" json:"achievement_name"`
	GameName               string         `gorm:"column:game_name" json:"game_name"`
	AchievementDescription string         `gorm:"column:achievement_description" json:"achievement_description"`
	GuideContent           string         `gorm:"not null;column:guide_content" json:"guide_content"`
	DifficultyRating       int            `gorm:"column:difficulty_rating" json:"difficulty_rating"`
	EstimatedTime          string         `gorm:"column:estimated_time" json:"estimated_time"`
	Strategies             datatypes.JSON `gorm:"column:strategies" json:"strategies"`
	Tips                   datatypes.JSON `gorm:"column:tips" json:"tips"`
	ModelUsed              string         `gorm:"column:model_used" json:"model_used"`
	GeneratedAt            time.Time      `gorm:"not null;column:generated_at" json:"generated_at"`
	Rating                 int            `gorm:"not null;default:0;column:rating" json:"rating"`
	Views                  int            `gorm:"not null;default:0;column:views" json:"views"`
}

func (AIGuide) TableName() string {
	return "ai_generated_guide"
}
