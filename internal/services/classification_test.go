package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dhg/hub-backend/internal/types"
)

type fakeClassificationRepo struct {
	subjects    []*types.SubjectClassification
	subjectHits int

	rows []*types.TableClassification
}

func (f *fakeClassificationRepo) ListSubjects(ctx context.Context, tx *gorm.DB) ([]*types.SubjectClassification, error) {
	f.subjectHits++
	return f.subjects, nil
}

func (f *fakeClassificationRepo) GetByEntityIDs(ctx context.Context, tx *gorm.DB, entityType string, entityIDs []uuid.UUID) ([]*types.TableClassification, error) {
	wanted := make(map[uuid.UUID]bool, len(entityIDs))
	for _, id := range entityIDs {
		wanted[id] = true
	}
	var out []*types.TableClassification
	for _, row := range f.rows {
		if row.EntityType == entityType && wanted[row.EntityID] {
			out = append(out, row)
		}
	}
	return out, nil
}

func TestCrossReference(t *testing.T) {
	source1 := uuid.New()
	source2 := uuid.New()
	source3 := uuid.New()
	subjectA := uuid.New()
	subjectB := uuid.New()

	repo := &fakeClassificationRepo{
		rows: []*types.TableClassification{
			{EntityID: source1, EntityType: types.EntityTypeSourcesGoogle, SubjectClassificationID: subjectA},
			{EntityID: source2, EntityType: types.EntityTypeSourcesGoogle, SubjectClassificationID: subjectA},
			{EntityID: source2, EntityType: types.EntityTypeSourcesGoogle, SubjectClassificationID: subjectB},
			// Wrong entity type must never leak into the source map.
			{EntityID: source3, EntityType: types.EntityTypePresentation, SubjectClassificationID: subjectB},
		},
	}
	svc := NewClassificationService(testLogger(t), repo)

	got, err := svc.CrossReference(context.Background(), []uuid.UUID{source1, source2, source3})
	if err != nil {
		t.Fatalf("CrossReference: %v", err)
	}
	if len(got[source1]) != 1 || got[source1][0] != subjectA {
		t.Fatalf("source1 subjects = %v", got[source1])
	}
	if len(got[source2]) != 2 {
		t.Fatalf("source2 subjects = %v", got[source2])
	}
	if _, ok := got[source3]; ok {
		t.Fatalf("source3 should have no sources_google attachments")
	}
}

func TestCrossReferenceEmptyInput(t *testing.T) {
	svc := NewClassificationService(testLogger(t), &fakeClassificationRepo{})
	got, err := svc.CrossReference(context.Background(), nil)
	if err != nil {
		t.Fatalf("CrossReference: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty map, got %v", got)
	}
}

func TestListSubjectsCaches(t *testing.T) {
	repo := &fakeClassificationRepo{
		subjects: []*types.SubjectClassification{{ID: uuid.New(), Subject: "Neurology"}},
	}
	svc := NewClassificationService(testLogger(t), repo)

	if _, err := svc.ListSubjects(context.Background()); err != nil {
		t.Fatalf("ListSubjects: %v", err)
	}
	if _, err := svc.ListSubjects(context.Background()); err != nil {
		t.Fatalf("ListSubjects: %v", err)
	}
	if repo.subjectHits != 1 {
		t.Fatalf("expected one repo hit, got %d", repo.subjectHits)
	}
}

func TestSubjectCounts(t *testing.T) {
	subjectA := uuid.New()
	subjectB := uuid.New()

	presentations := []*types.Presentation{
		{SubjectIDs: []uuid.UUID{subjectA}},
		{SubjectIDs: []uuid.UUID{subjectA, subjectB}},
		{SubjectIDs: nil},
		// Duplicate subject on one presentation counts once.
		{SubjectIDs: []uuid.UUID{subjectB, subjectB}},
	}
	counts := SubjectCounts(presentations)
	if counts[subjectA] != 2 {
		t.Fatalf("subjectA count = %d, want 2", counts[subjectA])
	}
	if counts[subjectB] != 2 {
		t.Fatalf("subjectB count = %d, want 2", counts[subjectB])
	}
	if len(counts) != 2 {
		t.Fatalf("counts = %v", counts)
	}
}
