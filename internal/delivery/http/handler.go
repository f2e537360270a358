package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docmatch/backend/internal/domain"
	"github.com/docmatch/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	jobs *usecase.JobService
}

// NewHandler creates a new HTTP handler
func NewHandler(jobs *usecase.JobService) *Handler {
	return &Handler{jobs: jobs}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "docmatch-backend",
		"version": "1.0.0",
	})
}

// SubmitJob receives the invoice and PO files and starts matching
// asynchronously, returning the job id for polling
func (h *Handler) SubmitJob(c *gin.Context) {
	if h.jobs == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Job service not configured"})
		return
	}

	invoice, err := readUpload(c, "invoice_file")
	if err != nil {
		respondUploadError(c, err)
		return
	}
	po, err := readUpload(c, "po_file")
	if err != nil {
		respondUploadError(c, err)
		return
	}

	jobID, err := h.jobs.Submit(c.Request.Context(), invoice, po)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job_id": jobID})
}

// GetStatus lets the frontend poll for progress and final results
func (h *Handler) GetStatus(c *gin.Context) {
	if h.jobs == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Job service not configured"})
		return
	}

	job, err := h.jobs.Status(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}

	switch job.Status {
	case domain.JobStatusCompleted:
		c.JSON(http.StatusOK, gin.H{
			"status":   job.Status,
			"progress": 100,
			"results":  job.Results,
		})
	case domain.JobStatusFailed:
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":   job.Status,
			"progress": 100,
			"error":    job.Error,
		})
	default:
		c.JSON(http.StatusOK, gin.H{
			"status":   job.Status,
			"progress": job.Progress,
		})
	}
}

// ExtractPreview performs fast single-document extraction for immediate UI
// feedback; no job is created
func (h *Handler) ExtractPreview(c *gin.Context) {
	if h.jobs == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Job service not configured"})
		return
	}

	file, err := readUpload(c, "file")
	if err != nil {
		respondUploadError(c, err)
		return
	}

	preview, err := h.jobs.Preview(c.Request.Context(), file)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrExtractionFailed):
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Extraction failed: %v", err)})
		case errors.Is(err, domain.ErrAIExtractionFailed):
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("AI Parsing failed: %v", err)})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Server error during preview extraction: %v", err)})
		}
		return
	}

	c.JSON(http.StatusOK, preview)
}

// readUpload pulls one multipart file field into memory
func readUpload(c *gin.Context, field string) (domain.FileInput, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return domain.FileInput{}, fmt.Errorf("%w: '%s' is required", domain.ErrInvalidRequest, field)
	}
	if header.Filename == "" {
		return domain.FileInput{}, fmt.Errorf("%w: filenames cannot be empty", domain.ErrInvalidRequest)
	}

	f, err := header.Open()
	if err != nil {
		return domain.FileInput{}, fmt.Errorf("error reading files: %v", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.FileInput{}, fmt.Errorf("error reading files: %v", err)
	}

	return domain.FileInput{Filename: header.Filename, Data: data}, nil
}

// respondUploadError maps upload problems: missing/unnamed files are client
// errors, read failures are server errors
func respondUploadError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrInvalidRequest) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
