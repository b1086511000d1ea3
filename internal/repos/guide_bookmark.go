package repos

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/steamachieve/steamachieve-backend/internal/logger"
	"github.com/steamachieve/steamachieve-backend/internal/types"
)

type GuideBookmarkRepo interface {
	ListForUser(ctx context.Context, tx *gorm.DB, steamID string) ([]*types.GuideBookmark, error)
	Upsert(ctx context.Context, tx *gorm.DB, bookmark *types.GuideBookmark) error
	Delete(ctx context.Context, tx *gorm.DB, steamID string, appID int, achievementName, guideURL string) (bool, error)
}

type guideBookmarkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGuideBookmarkRepo(db *gorm.DB, baseLog *logger.Logger) GuideBookmarkRepo {
	repoLog := baseLog.With("repo", "GuideBookmarkRepo")
	return &guideBookmarkRepo{db: db, log: repoLog}
}

func (br *guideBookmarkRepo) ListForUser(ctx context.Context, tx *gorm.DB, steamID string) ([]*types.GuideBookmark, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	var results []*types.GuideBookmark
	if err := transaction.WithContext(ctx).
		Where("steam_id = ?", steamID).
		Order("bookmarked_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (br *guideBookmarkRepo) Upsert(ctx context.Context, tx *gorm.DB, bookmark *types.GuideBookmark) error {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "steam_id"}, {Name: "app_id"},
				{Name: "achievement_name"}, {Name: "guide_url"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"guide_title", "guide_type", "notes"}),
		}).
		Create(bookmark).Error
}

func (br *guideBookmarkRepo) Delete(ctx context.Context, tx *gorm.DB, steamID string, appID int, achievementName, guideURL string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	res := transaction.WithContext(ctx).
		Where("steam_id = ? AND app_id = ? AND achievement_name = ? AND guide_url = ?",
			steamID, appID, achievementName, guideURL).
		Delete(&types.GuideBookmark{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
