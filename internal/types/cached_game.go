package types

import (
	"time"

	"github.com/google/uuid"
)

// CachedGame is one row of a user's cached Steam library. Rows for a user are
// replaced wholesale on refresh, not merged.
type CachedGame struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SteamID         string     `gorm:"not null;index;uniqueIndex:uniq_cached_game,priority:1;column:steam_id" json:"steam_id"`
	AppID           int        `gorm:"not null;uniqueIndex:uniq_cached_game,priority:2;column:app_id" json:"app_id"`
	Name            string     `gorm:"column:name" json:"name"`
	ImgIconURL      string     `gorm:"column:img_icon_url" json:"img_icon_url"`
	HeaderImage     string     `gorm:"column:header_image" json:"header_image"`
	CapsuleImage    string     `gorm:"column:capsule_image" json:"capsule_image"`
	HeroImage       string     `gorm:"column:hero_image" json:"hero_image"`
	LogoImage       string     `gorm:"column:logo_image" json:"logo_image"`
	LibraryCapsule  string     `gorm:"column:library_capsule" json:"library_capsule"`
	PlaytimeForever int        `gorm:"column:playtime_forever" json:"playtime_forever"`
	Playtime2Weeks  int        `gorm:"column:playtime_2weeks" json:"playtime_2weeks"`
	LastPlayed      *time.Time `gorm:"column:last_played" json:"last_played"`
	CachedAt        time.Time  `gorm:"not null;column:cached_at" json:"cached_at"`
}

func (CachedGame) TableName() string {
	return "cached_game"
}
