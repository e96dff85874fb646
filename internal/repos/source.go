package repos

import (
	"context"
	"github.com/dhg/hub-backend/internal/logger"
	"github.com/dhg/hub-backend/internal/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SourceRepo interface {
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.SourceGoogle, error)
	// GetIDsByRootDriveIDs materializes a filter profile: every source whose
	// root_drive_id is one of the given top-level folders.
	GetIDsByRootDriveIDs(ctx context.Context, tx *gorm.DB, rootDriveIDs []string) ([]uuid.UUID, error)
	GetExpertsBySourceIDs(ctx context.Context, tx *gorm.DB, sourceIDs []uuid.UUID) ([]*types.SourceExpert, error)
}

type sourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSourceRepo(db *gorm.DB, baseLog *logger.Logger) SourceRepo {
	repoLog := baseLog.With("repo", "SourceRepo")
	return &sourceRepo{db: db, log: repoLog}
}

func (r *sourceRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.SourceGoogle, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.SourceGoogle
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

func (r *sourceRepo) GetIDsByRootDriveIDs(ctx context.Context, tx *gorm.DB, rootDriveIDs []string) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uuid.UUID
	if len(rootDriveIDs) == 0 {
		return ids, nil
	}
	if err := transaction.WithContext(ctx).
		Model(&types.SourceGoogle{}).
		Where("root_drive_id IN ?", rootDriveIDs).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *sourceRepo) GetExpertsBySourceIDs(ctx context.Context, tx *gorm.DB, sourceIDs []uuid.UUID) ([]*types.SourceExpert, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.SourceExpert
	if len(sourceIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Preload("Expert").
		Where("source_id IN ?", sourceIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
