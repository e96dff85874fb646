package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dhg/hub-backend/internal/repos/testutil"
	"github.com/dhg/hub-backend/internal/types"
)

func TestProcessingRunClaimQueued(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewProcessingRunRepo(db, testutil.Logger(t))

	doc := testutil.SeedExpertDocument(t, ctx, tx, "doc", "raw text")
	run := &types.DocumentProcessingRun{
		ID:               uuid.New(),
		ExpertDocumentID: doc.ID,
		Status:           types.RunStatusQueued,
		Stage:            types.RunStagePrepare,
	}
	if _, err := repo.Create(ctx, tx, []*types.DocumentProcessingRun{run}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	claimed, err := repo.ClaimNextRunnable(ctx, tx, 5, 30*time.Second, 2*time.Minute)
	if err != nil {
		t.Fatalf("ClaimNextRunnable: %v", err)
	}
	if claimed == nil || claimed.ID != run.ID {
		t.Fatalf("claimed = %+v, want run %s", claimed, run.ID)
	}

	rows, err := repo.GetByIDs(ctx, tx, []uuid.UUID{run.ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if rows[0].Status != types.RunStatusRunning || rows[0].Attempts != 1 {
		t.Fatalf("claim did not mark running: %+v", rows[0])
	}
}

func TestProcessingRunClaimSkipsExhaustedFailures(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewProcessingRunRepo(db, testutil.Logger(t))

	doc := testutil.SeedExpertDocument(t, ctx, tx, "doc", "raw text")
	errAt := time.Now().Add(-time.Hour)
	run := &types.DocumentProcessingRun{
		ID:               uuid.New(),
		ExpertDocumentID: doc.ID,
		Status:           types.RunStatusFailed,
		Stage:            types.RunStageSummarize,
		Attempts:         5,
		LastErrorAt:      &errAt,
	}
	if _, err := repo.Create(ctx, tx, []*types.DocumentProcessingRun{run}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	claimed, err := repo.ClaimNextRunnable(ctx, tx, 5, 30*time.Second, 2*time.Minute)
	if err != nil {
		t.Fatalf("ClaimNextRunnable: %v", err)
	}
	if claimed != nil {
		t.Fatalf("run with exhausted attempts must not be claimed: %+v", claimed)
	}
}

func TestProcessingRunClaimRecoversStaleRunning(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewProcessingRunRepo(db, testutil.Logger(t))

	doc := testutil.SeedExpertDocument(t, ctx, tx, "doc", "raw text")
	stale := time.Now().Add(-10 * time.Minute)
	run := &types.DocumentProcessingRun{
		ID:               uuid.New(),
		ExpertDocumentID: doc.ID,
		Status:           types.RunStatusRunning,
		Stage:            types.RunStageSummarize,
		Attempts:         1,
		HeartbeatAt:      &stale,
	}
	if _, err := repo.Create(ctx, tx, []*types.DocumentProcessingRun{run}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	claimed, err := repo.ClaimNextRunnable(ctx, tx, 5, 30*time.Second, 2*time.Minute)
	if err != nil {
		t.Fatalf("ClaimNextRunnable: %v", err)
	}
	if claimed == nil || claimed.ID != run.ID {
		t.Fatalf("stale running run should be reclaimed, got %+v", claimed)
	}
}

func TestProcessingRunGetLatestByDocumentID(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewProcessingRunRepo(db, testutil.Logger(t))

	doc := testutil.SeedExpertDocument(t, ctx, tx, "doc", "raw text")

	latest, err := repo.GetLatestByDocumentID(ctx, tx, doc.ID)
	if err != nil {
		t.Fatalf("GetLatestByDocumentID: %v", err)
	}
	if latest != nil {
		t.Fatalf("no runs yet, got %+v", latest)
	}
}
