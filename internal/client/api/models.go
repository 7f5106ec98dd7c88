package api

import (
	"io"
	"time"
)

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Record struct {
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
	File            *File     `json:"file,omitempty"`
}

type File struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Length      int64     `json:"length"`
	UploadedAt  time.Time `json:"uploadDate"`
}

// Upload describes one audio file to send.
type Upload struct {
	PatientID   string
	Title       string
	Filename    string
	ContentType string
	Body        io.Reader
}

// RecordUpdate carries the editable fields; nil fields are not sent.
type RecordUpdate struct {
	Title      *string `json:"title,omitempty"`
	Transcript *string `json:"transcript,omitempty"`
}

// Download is a fetched audio file.
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}
