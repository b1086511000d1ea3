package types

import (
	"time"

	"github.com/google/uuid"
)

type GuideBookmark struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SteamID         string    `gorm:"not null;index;uniqueIndex:uniq_guide_bookmark,priority:1;column:steam_id" json:"steam_id"`
	AppID           int       `gorm:"not null;uniqueIndex:uniq_guide_bookmark,priority:2;column:app_id" json:"app_id"`
	AchievementName string    `gorm:"not null;uniqueIndex:uniq_guide_bookmark,priority:3;column:achievement_name" json:"achievement_name"`
	GuideURL        string    `gorm:"uniqueIndex:uniq_guide_bookmark,priority:4;column:guide_url" json:"guide_url"`
	GuideTitle      string    `gorm:"column:guide_title" json:"guide_title"`
	GuideType       string    `gorm:"not null;default:external;column:guide_type" json:"guide_type"`
	Notes           string    `gorm:"column:notes" json:"notes"`
	BookmarkedAt    time.Time `gorm:"not null;column:bookmarked_at" json:"bookmarked_at"`
}

func (GuideBookmark) TableName() string {
	return "guide_bookmark"
}
