package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dhg/hub-backend/internal/types"
)

func SeedFilterProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, active bool) *types.FilterProfile {
	tb.Helper()
	p := &types.FilterProfile{
		ID:       uuid.New(),
		Name:     name,
		IsActive: active,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed filter profile: %v", err)
	}
	return p
}

func SeedProfileDrive(tb testing.TB, ctx context.Context, tx *gorm.DB, profileID uuid.UUID, rootDriveID string) *types.FilterProfileDrive {
	tb.Helper()
	d := &types.FilterProfileDrive{
		ID:          uuid.New(),
		ProfileID:   profileID,
		RootDriveID: rootDriveID,
	}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed profile drive: %v", err)
	}
	return d
}

func SeedSource(tb testing.TB, ctx context.Context, tx *gorm.DB, driveID, rootDriveID, name string, modified *time.Time) *types.SourceGoogle {
	tb.Helper()
	s := &types.SourceGoogle{
		ID:          uuid.New(),
		DriveID:     driveID,
		RootDriveID: rootDriveID,
		Name:        name,
		MimeType:    "video/mp4",
		ModifiedAt:  modified,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed source: %v", err)
	}
	return s
}

func SeedPresentation(tb testing.TB, ctx context.Context, tx *gorm.DB, title string, videoSourceID *uuid.UUID) *types.Presentation {
	tb.Helper()
	p := &types.Presentation{
		ID:            uuid.New(),
		Title:         title,
		VideoSourceID: videoSourceID,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed presentation: %v", err)
	}
	return p
}

func SeedSubject(tb testing.TB, ctx context.Context, tx *gorm.DB, subject string, order int) *types.SubjectClassification {
	tb.Helper()
	s := &types.SubjectClassification{
		ID:           uuid.New(),
		Subject:      subject,
		DisplayOrder: order,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed subject: %v", err)
	}
	return s
}

func SeedClassification(tb testing.TB, ctx context.Context, tx *gorm.DB, entityID uuid.UUID, entityType string, subjectID uuid.UUID) *types.TableClassification {
	tb.Helper()
	c := &types.TableClassification{
		ID:                      uuid.New(),
		EntityID:                entityID,
		EntityType:              entityType,
		SubjectClassificationID: subjectID,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed classification: %v", err)
	}
	return c
}

func SeedExpertDocument(tb testing.TB, ctx context.Context, tx *gorm.DB, title, rawContent string) *types.ExpertDocument {
	tb.Helper()
	d := &types.ExpertDocument{
		ID:               uuid.New(),
		Title:            title,
		RawContent:       rawContent,
		ProcessingStatus: types.DocumentStatusPending,
	}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed expert document: %v", err)
	}
	return d
}
