package types

import (
	"time"

	"github.com/google/uuid"
)

// AchievementGuide is one cached external guide hit for an achievement,
// written by the search provider in rank order.
type AchievementGuide struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AppID           int       `gorm:"not null;index;uniqueIndex:uniq_achievement_guide,priority:1;column:app_id" json:"app_id"`
	AchievementName string    `gorm:"not null;uniqueIndex:uniq_achievement_guide,priority:2;column:achievement_name" json:"achievement_name"`
	GuideURL        string    `gorm:"uniqueIndex:uniq_achievement_guide,priority:3;column:guide_url" json:"guide_url"`
	GuideTitle      string    `gorm:"column:guide_title" json:"guide_title"`
	GuideSnippet    string    `gorm:"column:guide_snippet" json:"guide_snippet"`
	Source          string    `gorm:"column:source" json:"source"`
	SearchRank      int       `gorm:"not null;default:0;column:search_rank" json:"search_rank"`
	CachedAt        time.Time `gorm:"not null;column:cached_at" json:"cached_at"`
	CreatedAt       time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (AchievementGuide) TableName() string {
	return "achievement_guide"
}
