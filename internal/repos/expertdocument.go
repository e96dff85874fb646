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

type ExpertDocumentRepo interface {
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ExpertDocument, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ExpertDocument, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type expertDocumentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExpertDocumentRepo(db *gorm.DB, baseLog *logger.Logger) ExpertDocumentRepo {
	repoLog := baseLog.With("repo", "ExpertDocumentRepo")
	return &expertDocumentRepo{db: db, log: repoLog}
}

func (r *expertDocumentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ExpertDocument, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ExpertDocument
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

func (r *expertDocumentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ExpertDocument, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var doc types.ExpertDocument
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *expertDocumentRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return transaction.WithContext(ctx).
		Model(&types.ExpertDocument{}).
		Where("id = ?", id).
		Updates(updates).Error
}
