package repos

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/steamachieve/steamachieve-backend/internal/logger"
	"github.com/steamachieve/steamachieve-backend/internal/types"
)

type AchievementGuideRepo interface {
	GetFresh(ctx context.Context, tx *gorm.DB, appID int, achievementName string, maxAge time.Duration) ([]*types.AchievementGuide, error)
	ReplaceForAchievement(ctx context.Context, tx *gorm.DB, appID int, achievementName string, guides []*types.AchievementGuide) error
	Sweep(ctx context.Context, tx *gorm.DB, olderThan time.Duration) (int64, error)
}

type achievementGuideRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAchievementGuideRepo(db *gorm.DB, baseLog *logger.Logger) AchievementGuideRepo {
	repoLog := baseLog.With("repo", "AchievementGuideRepo")
	return &achievementGuideRepo{db: db, log: repoLog}
}

func (ar *achievementGuideRepo) GetFresh(ctx context.Context, tx *gorm.DB, appID int, achievementName string, maxAge time.Duration) ([]*types.AchievementGuide, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	cutoff := time.Now().UTC().Add(-maxAge)

	var results []*types.AchievementGuide
	if err := transaction.WithContext(ctx).
		Where("app_id = ? AND achievement_name = ? AND cached_at > ?", appID, achievementName, cutoff).
		Order("search_rank ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *achievementGuideRepo) ReplaceForAchievement(ctx context.Context, tx *gorm.DB, appID int, achievementName string, guides []*types.AchievementGuide) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	return transaction.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		if err := inner.
			Where("app_id = ? AND achievement_name = ?", appID, achievementName).
			Delete(&types.AchievementGuide{}).Error; err != nil {
			return err
		}
		if len(guides) == 0 {
			return nil
		}
		return inner.Create(&guides).Error
	})
}

func (ar *achievementGuideRepo) Sweep(ctx context.Context, tx *gorm.DB, olderThan time.Duration) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	cutoff := time.Now().UTC().Add(-olderThan)
	res := transaction.WithContext(ctx).
		Where("cached_at < ?", cutoff).
		Delete(&types.AchievementGuide{})
	return res.RowsAffected, res.Error
}
