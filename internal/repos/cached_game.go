package repos

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/steamachieve/steamachieve-backend/internal/logger"
	"github.com/steamachieve/steamachieve-backend/internal/types"
)

type CachedGameRepo interface {
	GetFresh(ctx context.Context, tx *gorm.DB, steamID string, maxAge time.Duration) ([]*types.CachedGame, error)
	ReplaceForUser(ctx context.Context, tx *gorm.DB, steamID string, games []*types.CachedGame) error
	Sweep(ctx context.Context, tx *gorm.DB, olderThan time.Duration) (int64, error)
}

type cachedGameRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCachedGameRepo(db *gorm.DB, baseLog *logger.Logger) CachedGameRepo {
	repoLog := baseLog.With("repo", "CachedGameRepo")
	return &cachedGameRepo{db: db, log: repoLog}
}

func (gr *cachedGameRepo) GetFresh(ctx context.Context, tx *gorm.DB, steamID string, maxAge time.Duration) ([]*types.CachedGame, error) {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}

	cutoff := time.Now().UTC().Add(-maxAge)

	var results []*types.CachedGame
	if err := transaction.WithContext(ctx).
		Where("steam_id = ? AND cached_at > ?", steamID, cutoff).
		Order("playtime_forever DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (gr *cachedGameRepo) ReplaceForUser(ctx context.Context, tx *gorm.DB, steamID string, games []*types.CachedGame) error {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}

	return transaction.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		if err := inner.
			Where("steam_id = ?", steamID).
			Delete(&types.CachedGame{}).Error; err != nil {
			return err
		}
		if len(games) == 0 {
			return nil
		}
		return inner.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "steam_id"}, {Name: "app_id"}},
				UpdateAll: true,
			}).
			Create(&games).Error
	})
}

func (gr *cachedGameRepo) Sweep(ctx context.Context, tx *gorm.DB, olderThan time.Duration) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}

	cutoff := time.Now().UTC().Add(-olderThan)
	res := transaction.WithContext(ctx).
		Where("cached_at < ?", cutoff).
		Delete(&types.CachedGame{})
	return res.RowsAffected, res.Error
}
