package model

import (
	"time"
)

// FileStatus is the lifecycle state of a file record.
type FileStatus string

const (
	StatusUploading FileStatus = "UPLOADING"
	StatusReady     FileStatus = "READY"
)

// CreatedAtLayout is the ISO-8601 layout used for File.CreatedAt.
const CreatedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// File is one uploaded (or uploading) object and its metadata.
// The same struct is stored in DynamoDB, in SQL, and returned verbatim by GET /files/{fileId}.
type File struct {
	FileID           string     `json:"fileId" dynamodbav:"fileId" db:"file_id"`
	S3Bucket         string     `json:"s3Bucket" dynamodbav:"s3Bucket" db:"s3_bucket"`
	S3Key            string     `json:"s3Key" dynamodbav:"s3Key" db:"s3_key"`
	OriginalFilename string     `json:"originalFilename" dynamodbav:"originalFilename" db:"original_filename"`
	ContentType      string     `json:"contentType" dynamodbav:"contentType" db:"content_type"`
	Status           FileStatus `json:"status" dynamodbav:"status" db:"status"`
	CreatedAt        string     `json:"createdAt" dynamodbav:"createdAt" db:"created_at"`
	ExpiresAt        int64      `json:"expiresAt" dynamodbav:"expiresAt" db:"expires_at"`
	SizeBytes        *int64     `json:"sizeBytes,omitempty" dynamodbav:"sizeBytes,omitempty" db:"size_bytes"` // nil until completed
	DownloadCount    int64      `json:"downloadCount" dynamodbav:"downloadCount" db:"download_count"`
}

// FormatCreatedAt renders t in CreatedAtLayout (UTC).
func FormatCreatedAt(t time.Time) string {
	return t.UTC().Format(CreatedAtLayout)
}
