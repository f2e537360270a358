package domain

// JobStatus is the lifecycle state of a matching job
type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further transitions are allowed
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Job is one submitted invoice/PO matching run. Each record has a single
// writer (the background pipeline that owns its id) and any number of
// concurrent status readers.
type Job struct {
	ID       string                `json:"job_id"`
	Status   JobStatus             `json:"status"`
	Progress int                   `json:"progress"`
	Results  *ReconciliationResult `json:"results,omitempty"`
	Error    string                `json:"error,omitempty"`
}

// FileInput carries an uploaded file through the pipeline
type FileInput struct {
	Filename string
	Data     []byte
}
