package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dhg/hub-backend/internal/logger"
	"github.com/dhg/hub-backend/internal/types"
)

type FilterProfileRepo interface {
	List(ctx context.Context, tx *gorm.DB) ([]*types.FilterProfile, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.FilterProfile, error)
	GetActive(ctx context.Context, tx *gorm.DB) (*types.FilterProfile, error)
	// SetActive flips is_active to the given profile and clears every other
	// row in the same statement pair; callers wrap it in a transaction.
	SetActive(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	GetDrivesByProfileIDs(ctx context.Context, tx *gorm.DB, profileIDs []uuid.UUID) ([]*types.FilterProfileDrive, error)
}

type filterProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFilterProfileRepo(db *gorm.DB, baseLog *logger.Logger) FilterProfileRepo {
	repoLog := baseLog.With("repo", "FilterProfileRepo")
	return &filterProfileRepo{db: db, log: repoLog}
}

func (r *filterProfileRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.FilterProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.FilterProfile
	if err := transaction.WithContext(ctx).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *filterProfileRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.FilterProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.FilterProfile
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *filterProfileRepo) GetActive(ctx context.Context, tx *gorm.DB) (*types.FilterProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var profile types.FilterProfile
	err := transaction.WithContext(ctx).
		Where("is_active = ?", true).
		Order("updated_at DESC").
		First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *filterProfileRepo) SetActive(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	if err := transaction.WithContext(ctx).
		Model(&types.FilterProfile{}).
		Where("is_active = ? AND id <> ?", true, id).
		Updates(map[string]interface{}{"is_active": false, "updated_at": now}).Error; err != nil {
		return err
	}
	res := transaction.WithContext(ctx).
		Model(&types.FilterProfile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": true, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *filterProfileRepo) GetDrivesByProfileIDs(ctx context.Context, tx *gorm.DB, profileIDs []uuid.UUID) ([]*types.FilterProfileDrive, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.FilterProfileDrive
	if len(profileIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("profile_id IN ?", profileIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
