package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/steamachieve/steamachieve-backend/internal/logger"
	"github.com/steamachieve/steamachieve-backend/internal/types"
)

type AIGuideRepo interface {
	Get(ctx context.Context, tx *gorm.DB, appID int, achievementName string) (*types.AIGuide, error)
	Upsert(ctx context.Context, tx *gorm.DB, guide *types.AIGuide) error
	IncrementViews(ctx context.Context, tx *gorm.DB, appID int, achievementName string) error
	UpdateRating(ctx context.Context, tx *gorm.DB, appID int, achievementName string, rating int) (bool, error)
}

type aiGuideRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAIGuideRepo(db *gorm.DB, baseLog *logger.Logger) AIGuideRepo {
	repoLog := baseLog.With("repo", "AIGuideRepo")
	return &aiGuideRepo{db: db, log: repoLog}
}

func (ar *aiGuideRepo) Get(ctx context.Context, tx *gorm.DB, appID int, achievementName string) (*types.AIGuide, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var result types.AIGuide
	if err := transaction.WithContext(ctx).
		Where("app_id = ? AND achievement_name = ?", appID, achievementName).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (ar *aiGuideRepo) Upsert(ctx context.Context, tx *gorm.DB, guide *types.AIGuide) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "app_id"}, {Name: "achievement_name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"guide_content", "difficulty_rating", "estimated_time",
				"strategies", "tips", "model_used", "generated_at",
			}),
		}).
		Create(guide).Error
}

func (ar *aiGuideRepo) IncrementViews(ctx context.Context, tx *gorm.DB, appID int, achievementName string) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	return transaction.WithContext(ctx).
		Model(&types.AIGuide{}).
		Where("app_id = ? AND achievement_name = ?", appID, achievementName).
		Update("views", gorm.Expr("views + 1")).Error
}

func (ar *aiGuideRepo) UpdateRating(ctx context.Context, tx *gorm.DB, appID int, achievementName string, rating int) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.AIGuide{}).
		Where("app_id = ? AND achievement_name = ?", appID, achievementName).
		Update("rating", rating)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
