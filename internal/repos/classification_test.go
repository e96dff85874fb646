package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/dhg/hub-backend/internal/repos/testutil"
	"github.com/dhg/hub-backend/internal/types"
)

func TestClassificationGetByEntityIDsFiltersType(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewClassificationRepo(db, testutil.Logger(t))

	subject := testutil.SeedSubject(t, ctx, tx, "Neurology", 1)
	sourceID := uuid.New()
	testutil.SeedClassification(t, ctx, tx, sourceID, types.EntityTypeSourcesGoogle, subject.ID)
	testutil.SeedClassification(t, ctx, tx, sourceID, types.EntityTypePresentation, subject.ID)

	rows, err := repo.GetByEntityIDs(ctx, tx, types.EntityTypeSourcesGoogle, []uuid.UUID{sourceID})
	if err != nil {
		t.Fatalf("GetByEntityIDs: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1 (type filter leaked)", len(rows))
	}
	if rows[0].SubjectClassificationID != subject.ID {
		t.Fatalf("subject id = %s", rows[0].SubjectClassificationID)
	}
}

func TestClassificationListSubjectsOrder(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewClassificationRepo(db, testutil.Logger(t))

	testutil.SeedSubject(t, ctx, tx, "Zebra Topic", 2)
	testutil.SeedSubject(t, ctx, tx, "Alpha Topic", 1)

	subjects, err := repo.ListSubjects(ctx, tx)
	if err != nil {
		t.Fatalf("ListSubjects: %v", err)
	}
	if len(subjects) < 2 {
		t.Fatalf("subjects = %d", len(subjects))
	}
	if subjects[0].Subject != "Alpha Topic" {
		t.Fatalf("first subject = %q, want display_order ascending", subjects[0].Subject)
	}
}
