package domain

import "context"

// TextExtractor defines the interface for raw text extraction from file bytes
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, filename string) (string, error)
}

// StructuredExtractor defines the interface for AI-based structured extraction
type StructuredExtractor interface {
	ExtractDocument(ctx context.Context, rawText, docType string) (*StructuredDocument, error)
}

// JobStore defines the interface for the concurrent job table. Get returns a
// point-in-time snapshot; mutation methods enforce the job state machine
// (monotonic progress, no transition out of a terminal state).
type JobStore interface {
	Create(ctx context.Context, job *Job) error
	Get(ctx context.Context, id string) (Job, error)
	SetProgress(ctx context.Context, id string, progress int) error
	Complete(ctx context.Context, id string, results *ReconciliationResult) error
	Fail(ctx context.Context, id string, message string) error
}
