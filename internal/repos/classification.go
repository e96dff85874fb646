package repos

import (
	"context"
	"github.com/dhg/hub-backend/internal/logger"
	"github.com/dhg/hub-backend/internal/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClassificationRepo interface {
	ListSubjects(ctx context.Context, tx *gorm.DB) ([]*types.SubjectClassification, error)
	// GetByEntityIDs is the one batched cross-reference query: all subject
	// attachments for the given rows of a single entity type.
	GetByEntityIDs(ctx context.Context, tx *gorm.DB, entityType string, entityIDs []uuid.UUID) ([]*types.TableClassification, error)
}

type classificationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClassificationRepo(db *gorm.DB, baseLog *logger.Logger) ClassificationRepo {
	repoLog := baseLog.With("repo", "ClassificationRepo")
	return &classificationRepo{db: db, log: repoLog}
}

func (r *classificationRepo) ListSubjects(ctx context.Context, tx *gorm.DB) ([]*types.SubjectClassification, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.SubjectClassification
	if err := transaction.WithContext(ctx).
		Order("display_order ASC, subject ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *classificationRepo) GetByEntityIDs(ctx context.Context, tx *gorm.DB, entityType string, entityIDs []uuid.UUID) ([]*types.TableClassification, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.TableClassification
	if entityType == "" || len(entityIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("entity_type = ? AND entity_id IN ?", entityType, entityIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
