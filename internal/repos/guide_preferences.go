package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/steamachieve/steamachieve-backend/internal/logger"
	"github.com/steamachieve/steamachieve-backend/internal/types"
)

type GuidePreferencesRepo interface {
	Get(ctx context.Context, tx *gorm.DB, steamID string) (*types.GuidePreferences, error)
	Upsert(ctx context.Context, tx *gorm.DB, prefs *types.GuidePreferences) error
}

type guidePreferencesRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGuidePreferencesRepo(db *gorm.DB, baseLog *logger.Logger) GuidePreferencesRepo {
	repoLog := baseLog.With("repo", "GuidePreferencesRepo")
	return &guidePreferencesRepo{db: db, log: repoLog}
}

func (pr *guidePreferencesRepo) Get(ctx context.Context, tx *gorm.DB, steamID string) (*types.GuidePreferences, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var result types.GuidePreferences
	if err := transaction.WithContext(ctx).
		Where("steam_id = ?", steamID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (pr *guidePreferencesRepo) Upsert(ctx context.Context, tx *gorm.DB, prefs *types.GuidePreferences) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "steam_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"prefer_ai_guides", "prefer_video_guides",
				"prefer_text_guides", "prefer_community_guides",
			}),
		}).
		Create(prefs).Error
}
