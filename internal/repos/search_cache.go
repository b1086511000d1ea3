package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/steamachieve/steamachieve-backend/internal/logger"
	"github.com/steamachieve/steamachieve-backend/internal/types"
)

type SearchCacheRepo interface {
	GetValid(ctx context.Context, tx *gorm.DB, query string) (*types.SearchCacheEntry, error)
	Upsert(ctx context.Context, tx *gorm.DB, entry *types.SearchCacheEntry) error
	Sweep(ctx context.Context, tx *gorm.DB) (int64, error)
}

type searchCacheRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSearchCacheRepo(db *gorm.DB, baseLog *logger.Logger) SearchCacheRepo {
	repoLog := baseLog.With("repo", "SearchCacheRepo")
	return &searchCacheRepo{db: db, log: repoLog}
}

func (sr *searchCacheRepo) GetValid(ctx context.Context, tx *gorm.DB, query string) (*types.SearchCacheEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var result types.SearchCacheEntry
	if err := transaction.WithContext(ctx).
		Where("search_query = ? AND expires_at > ?", query, time.Now().UTC()).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (sr *searchCacheRepo) Upsert(ctx context.Context, tx *gorm.DB, entry *types.SearchCacheEntry) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "search_query"}},
			DoUpdates: clause.AssignmentColumns([]string{"results_json", "result_count", "searched_at", "expires_at"}),
		}).
		Create(entry).Error
}

func (sr *searchCacheRepo) Sweep(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	res := transaction.WithContext(ctx).
		Where("expires_at < ?", time.Now().UTC()).
		Delete(&types.SearchCacheEntry{})
	return res.RowsAffected, res.Error
}
