package repos

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dhg/hub-backend/internal/repos/testutil"
)

func TestFilterProfileSetActiveFlipsSingleRow(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewFilterProfileRepo(db, testutil.Logger(t))

	a := testutil.SeedFilterProfile(t, ctx, tx, "profile-a", true)
	b := testutil.SeedFilterProfile(t, ctx, tx, "profile-b", false)

	if err := repo.SetActive(ctx, tx, b.ID); err != nil {
		t.Fatalf("SetActive: %v", err)
	}

	active, err := repo.GetActive(ctx, tx)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if active == nil || active.ID != b.ID {
		t.Fatalf("active = %+v, want %s", active, b.ID)
	}

	rows, err := repo.GetByIDs(ctx, tx, []uuid.UUID{a.ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(rows) != 1 || rows[0].IsActive {
		t.Fatalf("previous active profile was not cleared: %+v", rows)
	}
}

func TestFilterProfileSetActiveUnknownID(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewFilterProfileRepo(db, testutil.Logger(t))

	err := repo.SetActive(ctx, tx, uuid.New())
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestFilterProfileGetActiveNoneIsNil(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewFilterProfileRepo(db, testutil.Logger(t))

	testutil.SeedFilterProfile(t, ctx, tx, "inactive", false)

	active, err := repo.GetActive(ctx, tx)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if active != nil {
		t.Fatalf("expected nil active profile, got %+v", active)
	}
}

func TestFilterProfileDrivesByProfileIDs(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewFilterProfileRepo(db, testutil.Logger(t))

	p := testutil.SeedFilterProfile(t, ctx, tx, "with-drives", false)
	testutil.SeedProfileDrive(t, ctx, tx, p.ID, "root-1")
	testutil.SeedProfileDrive(t, ctx, tx, p.ID, "root-2")

	drives, err := repo.GetDrivesByProfileIDs(ctx, tx, []uuid.UUID{p.ID})
	if err != nil {
		t.Fatalf("GetDrivesByProfileIDs: %v", err)
	}
	if len(drives) != 2 {
		t.Fatalf("drives = %d, want 2", len(drives))
	}
}
