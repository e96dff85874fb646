package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dhg/hub-backend/internal/logger"
	"github.com/dhg/hub-backend/internal/normalization"
	"github.com/dhg/hub-backend/internal/observability"
	"github.com/dhg/hub-backend/internal/repos"
	"github.com/dhg/hub-backend/internal/types"
)

// fetchTimeout bounds the whole list assembly, not individual queries. A
// stuck backend surfaces as one timeout error rather than a hung page.
const fetchTimeout = 30 * time.Second

type ListPresentationsParams struct {
	Search     string
	SubjectIDs []uuid.UUID
	Limit      int
}

type PresentationList struct {
	Items         []*types.Presentation `json:"items"`
	Total         int                   `json:"total"`
	SubjectCounts map[uuid.UUID]int     `json:"subject_counts"`
	Restricted    bool                  `json:"restricted"`
}

type PresentationDetail struct {
	Presentation *types.Presentation        `json:"presentation"`
	Assets       []*types.PresentationAsset `json:"assets"`
	Content      *FormattedContent          `json:"content,omitempty"`
	PreviewURL   string                     `json:"preview_url,omitempty"`
}

type PresentationService interface {
	ListPresentations(ctx context.Context, params ListPresentationsParams) (*PresentationList, error)
	GetPresentation(ctx context.Context, id uuid.UUID) (*PresentationDetail, error)
}

type presentationService struct {
	log             *logger.Logger
	presentations   repos.PresentationRepo
	sources         repos.SourceRepo
	filters         FilterService
	classifications ClassificationService
}

func NewPresentationService(
	baseLog *logger.Logger,
	presentations repos.PresentationRepo,
	sources repos.SourceRepo,
	filters FilterService,
	classifications ClassificationService,
) PresentationService {
	return &presentationService{
		log:             baseLog.With("service", "PresentationService"),
		presentations:   presentations,
		sources:         sources,
		filters:         filters,
		classifications: classifications,
	}
}

func (s *presentationService) ListPresentations(ctx context.Context, params ListPresentationsParams) (*PresentationList, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	ctx, span := observability.StartSpan(ctx, "PresentationService.ListPresentations")
	defer span.End()

	all, err := s.presentations.GetAllWithJoins(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch presentations: %w", err)
	}

	// A presentation without a video file has nothing to play; it never
	// reaches the list regardless of filters.
	withVideo := make([]*types.Presentation, 0, len(all))
	for _, p := range all {
		if p.VideoSourceID == nil || *p.VideoSourceID == uuid.Nil {
			continue
		}
		withVideo = append(withVideo, p)
	}

	allowed := s.filters.ResolveAllowedSources(ctx)
	visible := restrictToAllowed(withVideo, allowed)

	sourceIDs := make([]uuid.UUID, 0, len(visible))
	for _, p := range visible {
		sourceIDs = append(sourceIDs, *p.VideoSourceID)
	}

	var (
		subjectsBySource map[uuid.UUID][]uuid.UUID
		expertsBySource  map[uuid.UUID][]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := s.classifications.CrossReference(gctx, sourceIDs)
		if err != nil {
			return fmt.Errorf("cross-reference subjects: %w", err)
		}
		subjectsBySource = m
		return nil
	})
	g.Go(func() error {
		rows, err := s.sources.GetExpertsBySourceIDs(gctx, nil, sourceIDs)
		if err != nil {
			return fmt.Errorf("load experts: %w", err)
		}
		expertsBySource = groupExpertNames(rows)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, p := range visible {
		p.SubjectIDs = subjectsBySource[*p.VideoSourceID]
		p.ExpertNames = expertsBySource[*p.VideoSourceID]
	}

	counts := SubjectCounts(visible)

	// Subject pills and text search are mutually exclusive in the UI; when
	// both arrive, subjects win and the search string is ignored.
	filtered := visible
	if len(params.SubjectIDs) > 0 {
		filtered = filterBySubjects(visible, params.SubjectIDs)
	} else if q := normalization.ParseSearchQuery(params.Search); q != "" {
		filtered = filterBySearch(visible, q)
	}

	sortByModifiedDesc(filtered)

	total := len(filtered)
	if params.Limit > 0 && params.Limit < len(filtered) {
		filtered = filtered[:params.Limit]
	}

	return &PresentationList{
		Items:         filtered,
		Total:         total,
		SubjectCounts: counts,
		Restricted:    !allowed.Unrestricted,
	}, nil
}

func (s *presentationService) GetPresentation(ctx context.Context, id uuid.UUID) (*PresentationDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	ctx, span := observability.StartSpan(ctx, "PresentationService.GetPresentation")
	defer span.End()

	p, err := s.presentations.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("fetch presentation: %w", err)
	}
	if p == nil {
		return nil, nil
	}

	allowed := s.filters.ResolveAllowedSources(ctx)
	if p.VideoSourceID != nil && !allowed.Allows(*p.VideoSourceID) {
		// Hidden by the active profile reads the same as absent.
		return nil, nil
	}

	assets, err := s.presentations.GetAssetsByPresentationID(ctx, nil, p.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch assets: %w", err)
	}

	if p.VideoSourceID != nil {
		subjects, err := s.classifications.CrossReference(ctx, []uuid.UUID{*p.VideoSourceID})
		if err != nil {
			return nil, err
		}
		p.SubjectIDs = subjects[*p.VideoSourceID]

		experts, err := s.sources.GetExpertsBySourceIDs(ctx, nil, []uuid.UUID{*p.VideoSourceID})
		if err != nil {
			return nil, err
		}
		p.ExpertNames = groupExpertNames(experts)[*p.VideoSourceID]
	}

	detail := &PresentationDetail{Presentation: p, Assets: assets}
	if p.ExpertDocument != nil && len(p.ExpertDocument.ProcessedContent) > 0 {
		formatted := FormatProcessedContent(p.ExpertDocument.ProcessedContent)
		detail.Content = &formatted
	}
	if p.VideoSource != nil {
		detail.PreviewURL = BuildPreviewURL(p.VideoSource.DriveID)
	}
	return detail, nil
}

func restrictToAllowed(presentations []*types.Presentation, allowed SourceSet) []*types.Presentation {
	if allowed.Unrestricted {
		return presentations
	}
	out := make([]*types.Presentation, 0, len(presentations))
	for _, p := range presentations {
		if p.VideoSourceID != nil && allowed.Allows(*p.VideoSourceID) {
			out = append(out, p)
		}
	}
	return out
}

func filterBySubjects(presentations []*types.Presentation, subjectIDs []uuid.UUID) []*types.Presentation {
	wanted := make(map[uuid.UUID]bool, len(subjectIDs))
	for _, id := range subjectIDs {
		wanted[id] = true
	}
	out := make([]*types.Presentation, 0, len(presentations))
	for _, p := range presentations {
		for _, sid := range p.SubjectIDs {
			if wanted[sid] {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

func filterBySearch(presentations []*types.Presentation, query string) []*types.Presentation {
	out := make([]*types.Presentation, 0, len(presentations))
	for _, p := range presentations {
		if matchesSearch(p, query) {
			out = append(out, p)
		}
	}
	return out
}

// matchesSearch checks title, expert names, the video file name, the
// containing folder name and the processed document content. Query is
// already lowercased and trimmed.
func matchesSearch(p *types.Presentation, query string) bool {
	if strings.Contains(strings.ToLower(p.Title), query) {
		return true
	}
	for _, name := range p.ExpertNames {
		if strings.Contains(strings.ToLower(name), query) {
			return true
		}
	}
	if p.VideoSource != nil && strings.Contains(strings.ToLower(p.VideoSource.Name), query) {
		return true
	}
	if p.HighLevelFolder != nil && strings.Contains(strings.ToLower(p.HighLevelFolder.Name), query) {
		return true
	}
	if p.ExpertDocument != nil && matchesProcessedContent(p.ExpertDocument.ProcessedContent, query) {
		return true
	}
	return false
}

// matchesProcessedContent scans string fields of the payload, descending
// one level into nested objects and arrays. Deeper nesting is ignored.
func matchesProcessedContent(raw []byte, query string) bool {
	if len(raw) == 0 {
		return false
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return strings.Contains(strings.ToLower(string(raw)), query)
	}
	for _, v := range obj {
		if valueContains(v, query, true) {
			return true
		}
	}
	return false
}

func valueContains(v any, query string, descend bool) bool {
	switch val := v.(type) {
	case string:
		return strings.Contains(strings.ToLower(val), query)
	case []any:
		if !descend {
			return false
		}
		for _, el := range val {
			if valueContains(el, query, false) {
				return true
			}
		}
	case map[string]any:
		if !descend {
			return false
		}
		for _, el := range val {
			if valueContains(el, query, false) {
				return true
			}
		}
	}
	return false
}

// sortByModifiedDesc orders newest first by the video file's modification
// time. Rows with no timestamp sort last; the sort is stable so equal keys
// keep the repo's created_at ordering.
func sortByModifiedDesc(presentations []*types.Presentation) {
	sort.SliceStable(presentations, func(i, j int) bool {
		ti := modifiedAt(presentations[i])
		tj := modifiedAt(presentations[j])
		return ti.After(tj)
	})
}

func modifiedAt(p *types.Presentation) time.Time {
	if p.VideoSource == nil || p.VideoSource.ModifiedAt == nil {
		return time.Time{}
	}
	return *p.VideoSource.ModifiedAt
}

func groupExpertNames(rows []*types.SourceExpert) map[uuid.UUID][]string {
	out := make(map[uuid.UUID][]string)
	for _, row := range rows {
		if row.Expert == nil {
			continue
		}
		name := row.Expert.FullName
		if name == "" {
			name = row.Expert.ExpertName
		}
		if name == "" {
			continue
		}
		out[row.SourceID] = append(out[row.SourceID], name)
	}
	return out
}
