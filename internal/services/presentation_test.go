package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dhg/hub-backend/internal/types"
)

type fakePresentationRepo struct {
	all    []*types.Presentation
	assets []*types.PresentationAsset
}

func (f *fakePresentationRepo) GetAllWithJoins(ctx context.Context, tx *gorm.DB) ([]*types.Presentation, error) {
	return f.all, nil
}

func (f *fakePresentationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Presentation, error) {
	for _, p := range f.all {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakePresentationRepo) GetAssetsByPresentationID(ctx context.Context, tx *gorm.DB, presentationID uuid.UUID) ([]*types.PresentationAsset, error) {
	return f.assets, nil
}

func presentationWithVideo(title string, sourceID uuid.UUID, modified *time.Time) *types.Presentation {
	sid := sourceID
	return &types.Presentation{
		ID:            uuid.New(),
		Title:         title,
		VideoSourceID: &sid,
		VideoSource: &types.SourceGoogle{
			ID:         sid,
			DriveID:    "drive-" + title,
			Name:       title + ".mp4",
			ModifiedAt: modified,
		},
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestListPresentationsRespectsActiveProfile(t *testing.T) {
	s1 := uuid.New()
	s2 := uuid.New()
	s3 := uuid.New()

	visible := presentationWithVideo("inside", s1, timePtr(time.Now()))
	hidden := presentationWithVideo("outside", s3, timePtr(time.Now()))
	noVideo := &types.Presentation{ID: uuid.New(), Title: "broken row"}

	profileID := uuid.New()
	profiles := &fakeFilterProfileRepo{
		active: &types.FilterProfile{ID: profileID, Name: "restricted", IsActive: true},
		drives: []*types.FilterProfileDrive{{ProfileID: profileID, RootDriveID: "drive-a"}},
	}
	sources := &fakeSourceRepo{ids: []uuid.UUID{s1, s2}}
	filterSvc := newTestFilterService(t, profiles, sources)
	classSvc := NewClassificationService(testLogger(t), &fakeClassificationRepo{})

	repo := &fakePresentationRepo{all: []*types.Presentation{visible, hidden, noVideo}}
	svc := NewPresentationService(testLogger(t), repo, sources, filterSvc, classSvc)

	list, err := svc.ListPresentations(context.Background(), ListPresentationsParams{})
	if err != nil {
		t.Fatalf("ListPresentations: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].ID != visible.ID {
		t.Fatalf("expected only the in-profile presentation, got %d items", len(list.Items))
	}
	if !list.Restricted {
		t.Fatalf("list should be marked restricted")
	}
}

func TestListPresentationsSubjectsWinOverSearch(t *testing.T) {
	s1 := uuid.New()
	s2 := uuid.New()
	subjectA := uuid.New()

	tagged := presentationWithVideo("tagged talk", s1, timePtr(time.Now()))
	searchable := presentationWithVideo("searchable talk", s2, timePtr(time.Now()))

	classRepo := &fakeClassificationRepo{
		rows: []*types.TableClassification{
			{EntityID: s1, EntityType: types.EntityTypeSourcesGoogle, SubjectClassificationID: subjectA},
		},
	}
	filterSvc := newTestFilterService(t, &fakeFilterProfileRepo{}, &fakeSourceRepo{})
	classSvc := NewClassificationService(testLogger(t), classRepo)
	repo := &fakePresentationRepo{all: []*types.Presentation{tagged, searchable}}
	svc := NewPresentationService(testLogger(t), repo, &fakeSourceRepo{}, filterSvc, classSvc)

	list, err := svc.ListPresentations(context.Background(), ListPresentationsParams{
		Search:     "searchable",
		SubjectIDs: []uuid.UUID{subjectA},
	})
	if err != nil {
		t.Fatalf("ListPresentations: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].ID != tagged.ID {
		t.Fatalf("subject filter should override search, got %d items", len(list.Items))
	}
}

func TestListPresentationsSearchScansProcessedContent(t *testing.T) {
	s1 := uuid.New()
	s2 := uuid.New()

	match := presentationWithVideo("first", s1, timePtr(time.Now()))
	match.ExpertDocument = &types.ExpertDocument{
		ProcessedContent: datatypes.JSON(`{"details": {"topic": "Vagus nerve stimulation"}}`),
	}
	miss := presentationWithVideo("second", s2, timePtr(time.Now()))

	filterSvc := newTestFilterService(t, &fakeFilterProfileRepo{}, &fakeSourceRepo{})
	classSvc := NewClassificationService(testLogger(t), &fakeClassificationRepo{})
	repo := &fakePresentationRepo{all: []*types.Presentation{match, miss}}
	svc := NewPresentationService(testLogger(t), repo, &fakeSourceRepo{}, filterSvc, classSvc)

	list, err := svc.ListPresentations(context.Background(), ListPresentationsParams{Search: "VAGUS"})
	if err != nil {
		t.Fatalf("ListPresentations: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].ID != match.ID {
		t.Fatalf("search should scan one level into processed content, got %d items", len(list.Items))
	}
}

func TestListPresentationsLimitAfterSort(t *testing.T) {
	now := time.Now()
	older := presentationWithVideo("older", uuid.New(), timePtr(now.Add(-time.Hour)))
	newest := presentationWithVideo("newest", uuid.New(), timePtr(now))

	filterSvc := newTestFilterService(t, &fakeFilterProfileRepo{}, &fakeSourceRepo{})
	classSvc := NewClassificationService(testLogger(t), &fakeClassificationRepo{})
	repo := &fakePresentationRepo{all: []*types.Presentation{older, newest}}
	svc := NewPresentationService(testLogger(t), repo, &fakeSourceRepo{}, filterSvc, classSvc)

	list, err := svc.ListPresentations(context.Background(), ListPresentationsParams{Limit: 1})
	if err != nil {
		t.Fatalf("ListPresentations: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].ID != newest.ID {
		t.Fatalf("limit must apply after sorting, got %q", list.Items[0].Title)
	}
	if list.Total != 2 {
		t.Fatalf("total should count pre-limit rows, got %d", list.Total)
	}
}

func TestSortByModifiedDescNilTimestampsLast(t *testing.T) {
	now := time.Now()
	a := presentationWithVideo("a", uuid.New(), timePtr(now.Add(-time.Minute)))
	b := presentationWithVideo("b", uuid.New(), nil)
	c := presentationWithVideo("c", uuid.New(), timePtr(now))

	rows := []*types.Presentation{a, b, c}
	sortByModifiedDesc(rows)

	if rows[0].Title != "c" || rows[1].Title != "a" || rows[2].Title != "b" {
		t.Fatalf("order = %q, %q, %q", rows[0].Title, rows[1].Title, rows[2].Title)
	}
}

func TestSortByModifiedDescIsStable(t *testing.T) {
	shared := timePtr(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	first := presentationWithVideo("first", uuid.New(), shared)
	second := presentationWithVideo("second", uuid.New(), shared)

	rows := []*types.Presentation{first, second}
	sortByModifiedDesc(rows)

	if rows[0].Title != "first" || rows[1].Title != "second" {
		t.Fatalf("equal keys must keep input order: %q, %q", rows[0].Title, rows[1].Title)
	}
}

func TestMatchesSearchFields(t *testing.T) {
	p := presentationWithVideo("Sleep Architecture", uuid.New(), nil)
	p.ExpertNames = []string{"Dana Whitfield"}
	p.HighLevelFolder = &types.SourceGoogle{ID: uuid.New(), Name: "Cardiology Conference 2024"}

	cases := []struct {
		query string
		want  bool
	}{
		{"sleep", true},
		{"whitfield", true},
		{"architecture.mp4", true},
		{"cardiology", true},
		{"conference 2024", true},
		{"absent", false},
	}
	for _, tc := range cases {
		if got := matchesSearch(p, tc.query); got != tc.want {
			t.Fatalf("matchesSearch(%q) = %v, want %v", tc.query, got, tc.want)
		}
	}
}

func TestFilterBySearchIdempotent(t *testing.T) {
	hit := presentationWithVideo("matching talk", uuid.New(), nil)
	miss := presentationWithVideo("other", uuid.New(), nil)
	rows := []*types.Presentation{hit, miss}

	once := filterBySearch(rows, "talk")
	twice := filterBySearch(once, "talk")

	if len(once) != 1 || once[0].ID != hit.ID {
		t.Fatalf("first pass = %d rows", len(once))
	}
	if len(twice) != len(once) {
		t.Fatalf("second pass changed the result: %d vs %d", len(twice), len(once))
	}
	for i := range once {
		if once[i].ID != twice[i].ID {
			t.Fatalf("second pass reordered row %d", i)
		}
	}
}

func TestGetPresentationHiddenByProfileReadsAsAbsent(t *testing.T) {
	s1 := uuid.New()
	hidden := presentationWithVideo("hidden", s1, timePtr(time.Now()))

	profileID := uuid.New()
	profiles := &fakeFilterProfileRepo{
		active: &types.FilterProfile{ID: profileID, Name: "narrow", IsActive: true},
		drives: []*types.FilterProfileDrive{{ProfileID: profileID, RootDriveID: "drive-a"}},
	}
	sources := &fakeSourceRepo{ids: []uuid.UUID{uuid.New()}}
	filterSvc := newTestFilterService(t, profiles, sources)
	classSvc := NewClassificationService(testLogger(t), &fakeClassificationRepo{})
	repo := &fakePresentationRepo{all: []*types.Presentation{hidden}}
	svc := NewPresentationService(testLogger(t), repo, sources, filterSvc, classSvc)

	detail, err := svc.GetPresentation(context.Background(), hidden.ID)
	if err != nil {
		t.Fatalf("GetPresentation: %v", err)
	}
	if detail != nil {
		t.Fatalf("hidden presentation must read as absent")
	}
}

func TestGetPresentationDetail(t *testing.T) {
	s1 := uuid.New()
	p := presentationWithVideo("detail", s1, timePtr(time.Now()))
	p.ExpertDocument = &types.ExpertDocument{
		ProcessedContent: datatypes.JSON(`{"summary": "short summary", "key_points": ["one"]}`),
	}

	filterSvc := newTestFilterService(t, &fakeFilterProfileRepo{}, &fakeSourceRepo{})
	classSvc := NewClassificationService(testLogger(t), &fakeClassificationRepo{})
	repo := &fakePresentationRepo{
		all:    []*types.Presentation{p},
		assets: []*types.PresentationAsset{{ID: uuid.New(), PresentationID: p.ID, AssetType: "transcript"}},
	}
	svc := NewPresentationService(testLogger(t), repo, &fakeSourceRepo{}, filterSvc, classSvc)

	detail, err := svc.GetPresentation(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetPresentation: %v", err)
	}
	if detail == nil {
		t.Fatalf("expected detail")
	}
	if len(detail.Assets) != 1 {
		t.Fatalf("assets = %d", len(detail.Assets))
	}
	if detail.Content == nil || detail.Content.Shape != ContentShapeSummary {
		t.Fatalf("content = %+v", detail.Content)
	}
	if detail.PreviewURL == "" {
		t.Fatalf("expected preview url")
	}
}
