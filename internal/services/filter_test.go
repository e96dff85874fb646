package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dhg/hub-backend/internal/logger"
	"github.com/dhg/hub-backend/internal/types"
)

type fakeFilterProfileRepo struct {
	active     *types.FilterProfile
	activeErr  error
	activeHits int

	drives    []*types.FilterProfileDrive
	drivesErr error
}

func (f *fakeFilterProfileRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.FilterProfile, error) {
	if f.active == nil {
		return nil, nil
	}
	return []*types.FilterProfile{f.active}, nil
}

func (f *fakeFilterProfileRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.FilterProfile, error) {
	if f.active == nil {
		return nil, nil
	}
	return []*types.FilterProfile{f.active}, nil
}

func (f *fakeFilterProfileRepo) GetActive(ctx context.Context, tx *gorm.DB) (*types.FilterProfile, error) {
	f.activeHits++
	return f.active, f.activeErr
}

func (f *fakeFilterProfileRepo) SetActive(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return nil
}

func (f *fakeFilterProfileRepo) GetDrivesByProfileIDs(ctx context.Context, tx *gorm.DB, profileIDs []uuid.UUID) ([]*types.FilterProfileDrive, error) {
	return f.drives, f.drivesErr
}

type fakeSourceRepo struct {
	ids    []uuid.UUID
	idsErr error

	experts []*types.SourceExpert
}

func (f *fakeSourceRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.SourceGoogle, error) {
	return nil, nil
}

func (f *fakeSourceRepo) GetIDsByRootDriveIDs(ctx context.Context, tx *gorm.DB, rootDriveIDs []string) ([]uuid.UUID, error) {
	return f.ids, f.idsErr
}

func (f *fakeSourceRepo) GetExpertsBySourceIDs(ctx context.Context, tx *gorm.DB, sourceIDs []uuid.UUID) ([]*types.SourceExpert, error) {
	return f.experts, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func newTestFilterService(t *testing.T, profiles *fakeFilterProfileRepo, sources *fakeSourceRepo) FilterService {
	t.Helper()
	return NewFilterService(nil, testLogger(t), profiles, sources)
}

func TestResolveAllowedSourcesNoActiveProfile(t *testing.T) {
	svc := newTestFilterService(t, &fakeFilterProfileRepo{}, &fakeSourceRepo{})
	set := svc.ResolveAllowedSources(context.Background())
	if !set.Unrestricted {
		t.Fatalf("no active profile should be unrestricted, got %+v", set)
	}
	if !set.Allows(uuid.New()) {
		t.Fatalf("unrestricted set must allow any source")
	}
}

func TestResolveAllowedSourcesRestricted(t *testing.T) {
	profileID := uuid.New()
	allowedID := uuid.New()
	otherID := uuid.New()

	profiles := &fakeFilterProfileRepo{
		active: &types.FilterProfile{ID: profileID, Name: "clinic", IsActive: true},
		drives: []*types.FilterProfileDrive{{ProfileID: profileID, RootDriveID: "drive-a"}},
	}
	sources := &fakeSourceRepo{ids: []uuid.UUID{allowedID}}

	svc := newTestFilterService(t, profiles, sources)
	set := svc.ResolveAllowedSources(context.Background())

	if set.Unrestricted {
		t.Fatalf("expected restricted set")
	}
	if !set.Allows(allowedID) {
		t.Fatalf("allowed source rejected")
	}
	if set.Allows(otherID) {
		t.Fatalf("unlisted source allowed")
	}
}

func TestResolveAllowedSourcesEmptyIsNotUnrestricted(t *testing.T) {
	profileID := uuid.New()
	profiles := &fakeFilterProfileRepo{
		active: &types.FilterProfile{ID: profileID, Name: "empty", IsActive: true},
		drives: []*types.FilterProfileDrive{{ProfileID: profileID, RootDriveID: "drive-empty"}},
	}
	sources := &fakeSourceRepo{ids: nil}

	svc := newTestFilterService(t, profiles, sources)
	set := svc.ResolveAllowedSources(context.Background())

	if set.Unrestricted {
		t.Fatalf("profile that matches nothing must yield an empty set, not unrestricted")
	}
	if set.Allows(uuid.New()) {
		t.Fatalf("empty set must allow nothing")
	}
}

func TestResolveAllowedSourcesFailsOpen(t *testing.T) {
	profiles := &fakeFilterProfileRepo{activeErr: errors.New("connection refused")}
	svc := newTestFilterService(t, profiles, &fakeSourceRepo{})

	set := svc.ResolveAllowedSources(context.Background())
	if !set.Unrestricted {
		t.Fatalf("resolution failure must fail open, got %+v", set)
	}
}

func TestResolveAllowedSourcesProfileWithoutDrives(t *testing.T) {
	profiles := &fakeFilterProfileRepo{
		active: &types.FilterProfile{ID: uuid.New(), Name: "bare", IsActive: true},
	}
	svc := newTestFilterService(t, profiles, &fakeSourceRepo{})

	set := svc.ResolveAllowedSources(context.Background())
	if !set.Unrestricted {
		t.Fatalf("profile with no drive rows restricts nothing")
	}
}

func TestResolveAllowedSourcesCachesResult(t *testing.T) {
	profileID := uuid.New()
	profiles := &fakeFilterProfileRepo{
		active: &types.FilterProfile{ID: profileID, Name: "cached", IsActive: true},
		drives: []*types.FilterProfileDrive{{ProfileID: profileID, RootDriveID: "drive-a"}},
	}
	sources := &fakeSourceRepo{ids: []uuid.UUID{uuid.New()}}
	svc := newTestFilterService(t, profiles, sources)

	svc.ResolveAllowedSources(context.Background())
	svc.ResolveAllowedSources(context.Background())

	if profiles.activeHits != 1 {
		t.Fatalf("expected one repo hit after caching, got %d", profiles.activeHits)
	}
}
