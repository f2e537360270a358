package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrJobNotFound is returned when a job id is unknown
	ErrJobNotFound = errors.New("job not found")

	// ErrExtractionFailed is returned when raw text extraction fails
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrAIExtractionFailed is returned when the AI structured-extraction call fails
	ErrAIExtractionFailed = errors.New("AI extraction failed")

	// ErrUnsupportedFormat is returned for file types the extractor cannot handle
	ErrUnsupportedFormat = errors.New("unsupported file format")
)
