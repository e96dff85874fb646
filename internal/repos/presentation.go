package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dhg/hub-backend/internal/logger"
	"github.com/dhg/hub-backend/internal/types"
)

type PresentationRepo interface {
	// GetAllWithJoins is the single joined fetch backing the master panel:
	// presentations with nested video source, expert document and folder.
	GetAllWithJoins(ctx context.Context, tx *gorm.DB) ([]*types.Presentation, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Presentation, error)
	GetAssetsByPresentationID(ctx context.Context, tx *gorm.DB, presentationID uuid.UUID) ([]*types.PresentationAsset, error)
}

type presentationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPresentationRepo(db *gorm.DB, baseLog *logger.Logger) PresentationRepo {
	repoLog := baseLog.With("repo", "PresentationRepo")
	return &presentationRepo{db: db, log: repoLog}
}

func (r *presentationRepo) GetAllWithJoins(ctx context.Context, tx *gorm.DB) ([]*types.Presentation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Presentation
	if err := transaction.WithContext(ctx).
		Preload("VideoSource").
		Preload("ExpertDocument").
		Preload("HighLevelFolder").
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *presentationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Presentation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var p types.Presentation
	err := transaction.WithContext(ctx).
		Preload("VideoSource").
		Preload("ExpertDocument").
		Preload("HighLevelFolder").
		Where("id = ?", id).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *presentationRepo) GetAssetsByPresentationID(ctx context.Context, tx *gorm.DB, presentationID uuid.UUID) ([]*types.PresentationAsset, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.PresentationAsset
	if presentationID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Preload("SourceFile").
		Preload("ExpertDocument").
		Where("presentation_id = ?", presentationID).
		Order("importance_level DESC, created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
