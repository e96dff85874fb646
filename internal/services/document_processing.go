package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/dhg/hub-backend/internal/clients/redis"
	"github.com/dhg/hub-backend/internal/logger"
	"github.com/dhg/hub-backend/internal/observability"
	"github.com/dhg/hub-backend/internal/repos"
	"github.com/dhg/hub-backend/internal/sse"
	"github.com/dhg/hub-backend/internal/ssedata"
	"github.com/dhg/hub-backend/internal/types"
)

var (
	ErrDocumentNotFound  = errors.New("expert document not found")
	ErrDocumentHasNoText = errors.New("expert document has no raw content to process")
	ErrRunAlreadyPending = errors.New("a processing run is already queued or running for this document")
)

const (
	workerTick        = 1 * time.Second
	heartbeatInterval = 30 * time.Second
	maxRunAttempts    = 5
	runRetryDelay     = 30 * time.Second
	staleRunningAfter = 2 * time.Minute
)

type DocumentProcessingService interface {
	// Enqueue records a queued run for the document and flips the document
	// to pending. The worker picks it up asynchronously.
	Enqueue(ctx context.Context, documentID uuid.UUID) (*types.DocumentProcessingRun, error)
	GetRun(ctx context.Context, runID uuid.UUID) (*types.DocumentProcessingRun, error)
	StartWorker(ctx context.Context)
}

type documentProcessingService struct {
	log       *logger.Logger
	db        *gorm.DB
	documents repos.ExpertDocumentRepo
	runs      repos.ProcessingRunRepo
	ai        OpenAIClient
	hub       *sse.SSEHub
	bus       redisclient.EventBus // nil when running single-instance
}

func NewDocumentProcessingService(
	db *gorm.DB,
	baseLog *logger.Logger,
	documents repos.ExpertDocumentRepo,
	runs repos.ProcessingRunRepo,
	ai OpenAIClient,
	hub *sse.SSEHub,
	bus redisclient.EventBus,
) DocumentProcessingService {
	return &documentProcessingService{
		log:       baseLog.With("service", "DocumentProcessingService"),
		db:        db,
		documents: documents,
		runs:      runs,
		ai:        ai,
		hub:       hub,
		bus:       bus,
	}
}

func (s *documentProcessingService) Enqueue(ctx context.Context, documentID uuid.UUID) (*types.DocumentProcessingRun, error) {
	ctx, span := observability.StartSpan(ctx, "DocumentProcessingService.Enqueue")
	defer span.End()

	doc, err := s.documents.GetByID(ctx, nil, documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	if strings.TrimSpace(doc.RawContent) == "" {
		return nil, ErrDocumentHasNoText
	}

	latest, err := s.runs.GetLatestByDocumentID(ctx, nil, documentID)
	if err != nil {
		return nil, err
	}
	if latest != nil && (latest.Status == types.RunStatusQueued || latest.Status == types.RunStatusRunning) {
		return nil, ErrRunAlreadyPending
	}

	run := &types.DocumentProcessingRun{
		ID:               uuid.New(),
		ExpertDocumentID: documentID,
		Status:           types.RunStatusQueued,
		Stage:            types.RunStagePrepare,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.runs.Create(ctx, tx, []*types.DocumentProcessingRun{run}); err != nil {
			return err
		}
		return s.documents.UpdateFields(ctx, tx, documentID, map[string]interface{}{
			"processing_status": types.DocumentStatusPending,
			"processing_error":  "",
		})
	})
	if err != nil {
		return nil, fmt.Errorf("enqueue processing run: %w", err)
	}

	if ssd := ssedata.GetSSEData(ctx); ssd != nil {
		ssd.AppendMessage(sse.SSEMessage{
			Channel: sse.ChannelBrowse,
			Event:   sse.SSEEventProcessingRunQueued,
			Data: map[string]any{
				"run_id":      run.ID,
				"document_id": documentID,
			},
		})
	}

	s.log.Info("Processing run enqueued", "runID", run.ID, "documentID", documentID)
	return run, nil
}

func (s *documentProcessingService) GetRun(ctx context.Context, runID uuid.UUID) (*types.DocumentProcessingRun, error) {
	runs, err := s.runs.GetByIDs(ctx, nil, []uuid.UUID{runID})
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return runs[0], nil
}

// StartWorker runs the claim loop until ctx is canceled. One claim per tick;
// a crashed instance's runs come back via the stale-heartbeat predicate.
func (s *documentProcessingService) StartWorker(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(workerTick)
		defer ticker.Stop()

		s.log.Info("Document processing worker started")
		for {
			select {
			case <-ctx.Done():
				s.log.Info("Document processing worker stopped", "reason", ctx.Err())
				return
			case <-ticker.C:
				run, err := s.runs.ClaimNextRunnable(ctx, nil, maxRunAttempts, runRetryDelay, staleRunningAfter)
				if err != nil {
					s.log.Warn("Claim failed", "error", err)
					continue
				}
				if run == nil {
					continue
				}
				s.processRun(ctx, run)
			}
		}
	}()
}

func (s *documentProcessingService) processRun(ctx context.Context, run *types.DocumentProcessingRun) {
	ctx, span := observability.StartSpan(ctx, "DocumentProcessingService.processRun")
	defer span.End()

	log := s.log.With("runID", run.ID, "documentID", run.ExpertDocumentID)

	hbCtx, stopHeartbeat := context.WithCancel(ctx)
	defer stopHeartbeat()
	go func() {
		t := time.NewTicker(heartbeatInterval)
		defer t.Stop()
		for {
			select {
			case <-hbCtx.Done():
				return
			case <-t.C:
				if err := s.runs.Heartbeat(hbCtx, nil, run.ID); err != nil {
					log.Warn("Heartbeat failed", "error", err)
				}
			}
		}
	}()

	fail := func(stage string, cause error) {
		now := time.Now()
		updates := map[string]interface{}{
			"status":        types.RunStatusFailed,
			"stage":         stage,
			"error":         cause.Error(),
			"last_error_at": now,
		}
		if err := s.runs.UpdateFields(ctx, nil, run.ID, updates); err != nil {
			log.Error("Failed to record run failure", "error", err)
		}
		if err := s.documents.UpdateFields(ctx, nil, run.ExpertDocumentID, map[string]interface{}{
			"processing_status": types.DocumentStatusFailed,
			"processing_error":  cause.Error(),
		}); err != nil {
			log.Error("Failed to mark document failed", "error", err)
		}
		s.broadcast(ctx, sse.SSEEventProcessingRunFailed, run, map[string]any{
			"stage": stage,
			"error": cause.Error(),
		})
		log.Warn("Processing run failed", "stage", stage, "error", cause)
	}

	progress := func(stage string, pct int) {
		if err := s.runs.UpdateFields(ctx, nil, run.ID, map[string]interface{}{
			"stage":    stage,
			"progress": pct,
		}); err != nil {
			log.Warn("Progress update failed", "stage", stage, "error", err)
		}
		s.broadcast(ctx, sse.SSEEventProcessingRunProgress, run, map[string]any{
			"stage":    stage,
			"progress": pct,
		})
	}

	// prepare
	progress(types.RunStagePrepare, 5)
	doc, err := s.documents.GetByID(ctx, nil, run.ExpertDocumentID)
	if err != nil {
		fail(types.RunStagePrepare, err)
		return
	}
	if doc == nil {
		fail(types.RunStagePrepare, ErrDocumentNotFound)
		return
	}
	if strings.TrimSpace(doc.RawContent) == "" {
		fail(types.RunStagePrepare, ErrDocumentHasNoText)
		return
	}
	if err := s.documents.UpdateFields(ctx, nil, doc.ID, map[string]interface{}{
		"processing_status": types.DocumentStatusProcessing,
	}); err != nil {
		fail(types.RunStagePrepare, err)
		return
	}

	// summarize
	progress(types.RunStageSummarize, 25)
	result, err := s.summarize(ctx, doc)
	if err != nil {
		fail(types.RunStageSummarize, err)
		return
	}

	// writeback
	progress(types.RunStageWriteback, 80)
	payload, err := json.Marshal(result)
	if err != nil {
		fail(types.RunStageWriteback, err)
		return
	}
	if err := s.documents.UpdateFields(ctx, nil, doc.ID, map[string]interface{}{
		"processed_content": payload,
		"processing_status": types.DocumentStatusCompleted,
		"processing_error":  "",
	}); err != nil {
		fail(types.RunStageWriteback, err)
		return
	}

	if err := s.runs.UpdateFields(ctx, nil, run.ID, map[string]interface{}{
		"status":   types.RunStatusSucceeded,
		"stage":    types.RunStageDone,
		"progress": 100,
		"error":    "",
	}); err != nil {
		log.Error("Failed to mark run succeeded", "error", err)
	}
	s.broadcast(ctx, sse.SSEEventProcessingRunCompleted, run, map[string]any{
		"stage":    types.RunStageDone,
		"progress": 100,
	})
	log.Info("Processing run completed")
}

var summarySchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"summary": map[string]any{
			"type":        "string",
			"description": "A concise prose summary of the document, 2-4 paragraphs.",
		},
		"key_points": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
	"required":             []string{"summary", "key_points"},
	"additionalProperties": false,
}

const summarySystemPrompt = "You summarize expert presentation documents. " +
	"Write for a clinician audience. Be faithful to the text; do not invent facts."

func (s *documentProcessingService) summarize(ctx context.Context, doc *types.ExpertDocument) (map[string]any, error) {
	user := doc.RawContent
	if doc.Title != "" {
		user = "Title: " + doc.Title + "\n\n" + user
	}
	out, err := s.ai.GenerateJSON(ctx, summarySystemPrompt, user, "document_summary", summarySchema)
	if err != nil {
		return nil, fmt.Errorf("summarize document: %w", err)
	}
	return out, nil
}

// broadcast pushes to local SSE clients and, when a bus is configured, to
// peer instances. The worker has no request context so it talks to the hub
// directly instead of buffering through ssedata.
func (s *documentProcessingService) broadcast(ctx context.Context, event sse.SSEEvent, run *types.DocumentProcessingRun, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["run_id"] = run.ID
	data["document_id"] = run.ExpertDocumentID

	msg := sse.SSEMessage{
		Channel: sse.ChannelBrowse,
		Event:   event,
		Data:    data,
	}
	if s.hub != nil {
		s.hub.Broadcast(msg)
	}
	if s.bus != nil {
		if err := s.bus.Publish(ctx, msg); err != nil {
			s.log.Warn("Event bus publish failed", "event", event, "error", err)
		}
	}
}
