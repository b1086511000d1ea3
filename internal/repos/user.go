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

type UserRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, error)
	GetBySteamID(ctx context.Context, tx *gorm.DB, steamID string) (*types.User, error)
	TouchLastLogin(ctx context.Context, tx *gorm.DB, steamID string) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) Upsert(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "steam_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"persona_name", "profile_url", "avatar_url"}),
		}).
		Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (ur *userRepo) GetBySteamID(ctx context.Context, tx *gorm.DB, steamID string) (*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var result types.User
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

func (ur *userRepo) TouchLastLogin(ctx context.Context, tx *gorm.DB, steamID string) error {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	now := time.Now().UTC()
	return transaction.WithContext(ctx).
		Model(&types.User{}).
		Where("steam_id = ?", steamID).
		Update("last_login", now).Error
}
