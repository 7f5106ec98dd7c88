package models

import "time"

// Blob describes a stored audio object. Data is only populated when the
// content has been fetched in full.
type Blob struct {
	// ID is the object-storage key.
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Length      int64     `json:"length"`
	UploadedAt  time.Time `json:"uploadDate"`
	Data        []byte    `json:"-"`
}
