package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"github.com/dhg/hub-backend/internal/logger"
	"github.com/dhg/hub-backend/internal/observability"
	"github.com/dhg/hub-backend/internal/repos"
	"github.com/dhg/hub-backend/internal/sse"
	"github.com/dhg/hub-backend/internal/ssedata"
	"github.com/dhg/hub-backend/internal/types"
)

var ErrProfileNotFound = errors.New("filter profile not found")

// SourceSet is the resolved visibility set for the active filter profile.
// Unrestricted means "no active profile, show everything" and is distinct
// from an empty IDs set, which means "active profile matched nothing".
type SourceSet struct {
	Unrestricted bool
	IDs          map[uuid.UUID]bool
}

func (s SourceSet) Allows(id uuid.UUID) bool {
	if s.Unrestricted {
		return true
	}
	return s.IDs[id]
}

func UnrestrictedSourceSet() SourceSet {
	return SourceSet{Unrestricted: true}
}

type FilterService interface {
	ListProfiles(ctx context.Context) ([]*types.FilterProfile, error)
	GetActiveProfile(ctx context.Context) (*types.FilterProfile, error)
	SetActiveProfile(ctx context.Context, id uuid.UUID) (*types.FilterProfile, error)
	// ResolveAllowedSources never returns an error to callers: any failure
	// along the resolution chain degrades to an unrestricted set so the
	// browse surface keeps working.
	ResolveAllowedSources(ctx context.Context) SourceSet
}

type filterService struct {
	log            *logger.Logger
	db             *gorm.DB
	filterProfiles repos.FilterProfileRepo
	sources        repos.SourceRepo
	cache          *gocache.Cache
	// generation invalidates in-flight resolutions: a result computed under
	// an older generation is returned to its caller but never cached, so a
	// slow resolve cannot clobber the set for a newer active profile.
	generation atomic.Int64
}

const allowedSourcesCacheKey = "allowed_sources"

func NewFilterService(
	db *gorm.DB,
	baseLog *logger.Logger,
	filterProfiles repos.FilterProfileRepo,
	sources repos.SourceRepo,
) FilterService {
	return &filterService{
		log:            baseLog.With("service", "FilterService"),
		db:             db,
		filterProfiles: filterProfiles,
		sources:        sources,
		cache:          gocache.New(5*time.Minute, 10*time.Minute),
	}
}

func (s *filterService) ListProfiles(ctx context.Context) ([]*types.FilterProfile, error) {
	return s.filterProfiles.List(ctx, nil)
}

func (s *filterService) GetActiveProfile(ctx context.Context) (*types.FilterProfile, error) {
	return s.filterProfiles.GetActive(ctx, nil)
}

func (s *filterService) SetActiveProfile(ctx context.Context, id uuid.UUID) (*types.FilterProfile, error) {
	ctx, span := observability.StartSpan(ctx, "FilterService.SetActiveProfile")
	defer span.End()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.filterProfiles.SetActive(ctx, tx, id)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("activate filter profile: %w", err)
	}

	// Bump before clearing so a resolve that started under the old profile
	// cannot re-cache its stale result.
	s.generation.Add(1)
	s.cache.Delete(allowedSourcesCacheKey)

	profiles, err := s.filterProfiles.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, ErrProfileNotFound
	}
	profile := profiles[0]

	if ssd := ssedata.GetSSEData(ctx); ssd != nil {
		ssd.AppendMessage(sse.SSEMessage{
			Channel: sse.ChannelBrowse,
			Event:   sse.SSEEventFilterProfileChanged,
			Data: map[string]any{
				"profile_id": profile.ID,
				"name":       profile.Name,
			},
		})
	}

	s.log.Info("Filter profile activated", "profileID", id, "name", profile.Name)
	return profile, nil
}

type cachedSourceSet struct {
	generation int64
	set        SourceSet
}

func (s *filterService) ResolveAllowedSources(ctx context.Context) SourceSet {
	if entry, ok := s.cache.Get(allowedSourcesCacheKey); ok {
		if cached, ok := entry.(cachedSourceSet); ok && cached.generation == s.generation.Load() {
			return cached.set
		}
	}

	gen := s.generation.Load()
	set, err := s.resolve(ctx)
	if err != nil {
		// Fail open. A broken filter chain must not blank out the browse page.
		s.log.Warn("Filter resolution failed; showing all sources", "error", err)
		return UnrestrictedSourceSet()
	}

	if s.generation.Load() == gen {
		s.cache.Set(allowedSourcesCacheKey, cachedSourceSet{generation: gen, set: set}, gocache.DefaultExpiration)
	}
	return set
}

func (s *filterService) resolve(ctx context.Context) (SourceSet, error) {
	active, err := s.filterProfiles.GetActive(ctx, nil)
	if err != nil {
		return SourceSet{}, fmt.Errorf("load active profile: %w", err)
	}
	if active == nil {
		return UnrestrictedSourceSet(), nil
	}

	drives, err := s.filterProfiles.GetDrivesByProfileIDs(ctx, nil, []uuid.UUID{active.ID})
	if err != nil {
		return SourceSet{}, fmt.Errorf("load profile drives: %w", err)
	}
	if len(drives) == 0 {
		// Profile with no drive rows restricts nothing.
		return UnrestrictedSourceSet(), nil
	}

	rootDriveIDs := make([]string, 0, len(drives))
	for _, d := range drives {
		if d.RootDriveID != "" {
			rootDriveIDs = append(rootDriveIDs, d.RootDriveID)
		}
	}
	if len(rootDriveIDs) == 0 {
		return UnrestrictedSourceSet(), nil
	}

	ids, err := s.sources.GetIDsByRootDriveIDs(ctx, nil, rootDriveIDs)
	if err != nil {
		return SourceSet{}, fmt.Errorf("resolve sources for drives: %w", err)
	}

	set := SourceSet{IDs: make(map[uuid.UUID]bool, len(ids))}
	for _, id := range ids {
		set.IDs[id] = true
	}
	return set, nil
}
