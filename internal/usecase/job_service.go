package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/docmatch/backend/internal/domain"
)

// Pipeline progress checkpoints. Advisory values; progress only ever moves
// forward for a given job.
const (
	progressStarted     = 5
	progressInvoiceText = 15
	progressPOText      = 25
	progressInvoiceAI   = 50
	progressPOAI        = 75
)

// JobServiceConfig holds configuration for the job service
type JobServiceConfig struct {
	Workers   int
	QueueSize int
}

// matchTask is one queued pipeline execution
type matchTask struct {
	jobID   string
	invoice domain.FileInput
	po      domain.FileInput
}

// JobService owns the asynchronous invoice/PO matching lifecycle: job
// creation, the extraction/reconciliation pipeline run by a bounded worker
// pool, status polling, and the synchronous single-document preview.
type JobService struct {
	store     domain.JobStore
	extractor domain.TextExtractor
	ai        domain.StructuredExtractor
	reconcile *ReconcileService
	tasks     chan matchTask
}

// NewJobService creates a job service and starts its worker pool
func NewJobService(
	store domain.JobStore,
	extractor domain.TextExtractor,
	ai domain.StructuredExtractor,
	config JobServiceConfig,
) *JobService {
	workers := config.Workers
	if workers <= 0 {
		workers = 4
	}
	queueSize := config.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}

	s := &JobService{
		store:     store,
		extractor: extractor,
		ai:        ai,
		reconcile: NewReconcileService(),
		tasks:     make(chan matchTask, queueSize),
	}

	for i := 0; i < workers; i++ {
		go s.worker()
	}

	return s
}

func (s *JobService) worker() {
	for task := range s.tasks {
		s.run(task)
	}
}

// Submit validates the upload pair, registers a new job, and schedules the
// matching pipeline. It returns as soon as the job record exists; the caller
// can poll the id immediately.
func (s *JobService) Submit(ctx context.Context, invoice, po domain.FileInput) (string, error) {
	if len(invoice.Data) == 0 || len(po.Data) == 0 {
		return "", fmt.Errorf("%w: both invoice and PO files are required", domain.ErrInvalidRequest)
	}
	if invoice.Filename == "" || po.Filename == "" {
		return "", fmt.Errorf("%w: filenames cannot be empty", domain.ErrInvalidRequest)
	}

	jobID := uuid.NewString()
	job := &domain.Job{ID: jobID, Status: domain.JobStatusProcessing, Progress: 0}
	if err := s.store.Create(ctx, job); err != nil {
		return "", err
	}

	task := matchTask{jobID: jobID, invoice: invoice, po: po}
	select {
	case s.tasks <- task:
	default:
		// Queue is saturated; run unpooled rather than block the caller
		go s.run(task)
	}

	return jobID, nil
}

// Status returns a point-in-time snapshot of the job
func (s *JobService) Status(ctx context.Context, jobID string) (domain.Job, error) {
	return s.store.Get(ctx, jobID)
}

// Preview extracts a single document synchronously for fast UI feedback.
// No job is created and no reconciliation occurs.
func (s *JobService) Preview(ctx context.Context, file domain.FileInput) (*domain.PreviewResult, error) {
	if len(file.Data) == 0 {
		return nil, fmt.Errorf("%w: no file uploaded", domain.ErrInvalidRequest)
	}
	if file.Filename == "" {
		return nil, fmt.Errorf("%w: filename cannot be empty", domain.ErrInvalidRequest)
	}

	rawText, err := s.extractor.Extract(ctx, file.Data, file.Filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}

	doc, err := s.ai.ExtractDocument(ctx, rawText, domain.DocTypeGeneric)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAIExtractionFailed, err)
	}

	preview := &domain.PreviewResult{DocumentID: doc.DocumentID, VendorName: doc.VendorName}
	if preview.DocumentID == "" {
		preview.DocumentID = "N/A"
	}
	if preview.VendorName == "" {
		preview.VendorName = "N/A"
	}
	return preview, nil
}

// run executes the matching pipeline for one job. Every failure path,
// including panics, lands the job in the terminal failed state so pollers
// are never left stuck on processing.
func (s *JobService) run(task matchTask) {
	ctx := context.Background()
	log.Printf("[JOB] %s: starting document matching", task.jobID)

	defer func() {
		if r := recover(); r != nil {
			s.fail(ctx, task.jobID, fmt.Sprintf("%v", r))
		}
	}()

	s.setProgress(ctx, task.jobID, progressStarted)

	// Extractions run sequentially; both are attempted even if the first
	// fails so the failure message can reference both outputs.
	invText, invErr := s.extractor.Extract(ctx, task.invoice.Data, task.invoice.Filename)
	s.setProgress(ctx, task.jobID, progressInvoiceText)
	poText, poErr := s.extractor.Extract(ctx, task.po.Data, task.po.Filename)
	s.setProgress(ctx, task.jobID, progressPOText)

	if invErr != nil || poErr != nil {
		s.fail(ctx, task.jobID, fmt.Sprintf("File Extraction Error: %s | %s",
			extractionOutput(invText, invErr), extractionOutput(poText, poErr)))
		return
	}

	invoiceDoc, err := s.ai.ExtractDocument(ctx, invText, domain.DocTypeInvoice)
	s.setProgress(ctx, task.jobID, progressInvoiceAI)
	if err != nil {
		s.fail(ctx, task.jobID, fmt.Sprintf("AI Extraction Error (Invoice): %v", err))
		return
	}

	poDoc, err := s.ai.ExtractDocument(ctx, poText, domain.DocTypePurchaseOrder)
	s.setProgress(ctx, task.jobID, progressPOAI)
	if err != nil {
		s.fail(ctx, task.jobID, fmt.Sprintf("AI Extraction Error (PO): %v", err))
		return
	}

	results := s.reconcile.Reconcile(invoiceDoc, poDoc)
	if err := s.store.Complete(ctx, task.jobID, results); err != nil {
		log.Printf("[JOB] %s: completing job: %v", task.jobID, err)
		return
	}
	log.Printf("[JOB] %s: completed successfully, match=%v", task.jobID, results.IsMatch)
}

func (s *JobService) setProgress(ctx context.Context, jobID string, progress int) {
	if err := s.store.SetProgress(ctx, jobID, progress); err != nil {
		log.Printf("[JOB] %s: updating progress: %v", jobID, err)
	}
}

func (s *JobService) fail(ctx context.Context, jobID, message string) {
	log.Printf("[JOB] %s: failed: %s", jobID, message)
	if err := s.store.Fail(ctx, jobID, message); err != nil {
		log.Printf("[JOB] %s: recording failure: %v", jobID, err)
	}
}

// extractionOutput composes the raw-output reference used in extraction
// failure messages: the extractor's text on success, its error otherwise
func extractionOutput(text string, err error) string {
	if err != nil {
		return err.Error()
	}
	return text
}
