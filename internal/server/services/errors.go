package services

import "errors"

// Upload pipeline failures. All of them surface as server errors.
var (
	ErrBlobWrite     = errors.New("blob write failed")
	ErrTranscription = errors.New("transcription failed")
	ErrSummarization = errors.New("summarization failed")
)
