package repos

import (
	"context"
	"testing"
	"time"

	"github.com/dhg/hub-backend/internal/repos/testutil"
)

func TestSourceGetIDsByRootDriveIDs(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewSourceRepo(db, testutil.Logger(t))

	now := time.Now()
	inA := testutil.SeedSource(t, ctx, tx, "d1", "root-a", "talk1.mp4", &now)
	inA2 := testutil.SeedSource(t, ctx, tx, "d2", "root-a", "talk2.mp4", &now)
	testutil.SeedSource(t, ctx, tx, "d3", "root-b", "other.mp4", &now)

	ids, err := repo.GetIDsByRootDriveIDs(ctx, tx, []string{"root-a"})
	if err != nil {
		t.Fatalf("GetIDsByRootDriveIDs: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("ids = %d, want 2", len(ids))
	}
	found := map[string]bool{}
	for _, id := range ids {
		found[id.String()] = true
	}
	if !found[inA.ID.String()] || !found[inA2.ID.String()] {
		t.Fatalf("missing expected source ids: %v", ids)
	}
}

func TestSourceGetIDsByRootDriveIDsEmptyInput(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewSourceRepo(db, testutil.Logger(t))

	ids, err := repo.GetIDsByRootDriveIDs(context.Background(), tx, nil)
	if err != nil {
		t.Fatalf("GetIDsByRootDriveIDs: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no ids for empty input, got %v", ids)
	}
}
