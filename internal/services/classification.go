package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/dhg/hub-backend/internal/logger"
	"github.com/dhg/hub-backend/internal/repos"
	"github.com/dhg/hub-backend/internal/types"
)

type ClassificationService interface {
	ListSubjects(ctx context.Context) ([]*types.SubjectClassification, error)
	// CrossReference maps each given source to its attached subject IDs with
	// one batched query. Sources with no attachments are absent from the map.
	CrossReference(ctx context.Context, sourceIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error)
}

type classificationService struct {
	log             *logger.Logger
	classifications repos.ClassificationRepo
	cache           *gocache.Cache
}

const subjectListCacheKey = "subject_list"

func NewClassificationService(baseLog *logger.Logger, classifications repos.ClassificationRepo) ClassificationService {
	return &classificationService{
		log:             baseLog.With("service", "ClassificationService"),
		classifications: classifications,
		cache:           gocache.New(10*time.Minute, 15*time.Minute),
	}
}

func (s *classificationService) ListSubjects(ctx context.Context) ([]*types.SubjectClassification, error) {
	if entry, ok := s.cache.Get(subjectListCacheKey); ok {
		if subjects, ok := entry.([]*types.SubjectClassification); ok {
			return subjects, nil
		}
	}
	subjects, err := s.classifications.ListSubjects(ctx, nil)
	if err != nil {
		return nil, err
	}
	s.cache.Set(subjectListCacheKey, subjects, gocache.DefaultExpiration)
	return subjects, nil
}

func (s *classificationService) CrossReference(ctx context.Context, sourceIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	result := make(map[uuid.UUID][]uuid.UUID)
	if len(sourceIDs) == 0 {
		return result, nil
	}
	rows, err := s.classifications.GetByEntityIDs(ctx, nil, types.EntityTypeSourcesGoogle, sourceIDs)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.EntityID] = append(result[row.EntityID], row.SubjectClassificationID)
	}
	return result, nil
}

// SubjectCounts tallies how many of the given presentations carry each
// subject. Pure; the browse sidebar uses it to label filter chips.
func SubjectCounts(presentations []*types.Presentation) map[uuid.UUID]int {
	counts := make(map[uuid.UUID]int)
	for _, p := range presentations {
		if p == nil {
			continue
		}
		seen := make(map[uuid.UUID]bool, len(p.SubjectIDs))
		for _, sid := range p.SubjectIDs {
			if seen[sid] {
				continue
			}
			seen[sid] = true
			counts[sid]++
		}
	}
	return counts
}
