package models

import "time"

// Layouts for the human-readable creation stamp stored with every record,
// e.g. "5 Jan 2025" and "04:15 PM". Both are rendered in server local time.
const (
	CreatedDateLayout = "2 Jan 2006"
	CreatedTimeLayout = "03:04 PM"
)

// AudioRecord is the result of one processed upload: the transcript and the
// generated report, linked to the stored audio by FileID.
type AudioRecord struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	PatientID       string    `json:"patientId"`
	Title           string    `json:"title"`
	Filename        string    `json:"filename"`
	Transcript      string    `json:"transcript"`
	FormattedReport string    `json:"formattedReport"`
	CreatedDate     string    `json:"createdDate"`
	CreatedTime     string    `json:"createdTime"`
	FileID          string    `json:"fileId"`
	CreatedAt       time.Time `json:"createdAt"`
}

// RecordWithFile is a record together with the metadata of its audio blob.
type RecordWithFile struct {
	AudioRecord
	File *Blob `json:"file"`
}
