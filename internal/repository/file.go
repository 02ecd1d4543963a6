package repository

import (
	"context"
	"errors"

	"github.com/templui/filedrop/internal/model"
)

var (
	ErrFileNotFound = errors.New("file not found")

	// ErrConditionFailed means the record exists but no longer satisfies the update's precondition
	ErrConditionFailed = errors.New("file record precondition failed")

	ErrFileExists = errors.New("file already exists")
)

// FileRepository is the metadata store for file records
type FileRepository interface {
	// Create inserts a new record. It never overwrites: an existing fileId yields ErrFileExists.
	Create(ctx context.Context, file *model.File) error

	ByID(ctx context.Context, id string) (*model.File, error)

	// MarkReady moves an UPLOADING record to READY with the reported size and content type.
	// Returns ErrFileNotFound or ErrConditionFailed when the record is missing or not UPLOADING.
	MarkReady(ctx context.Context, id string, sizeBytes *int64, contentType string) error

	// IncrementDownloads atomically adds one to downloadCount of a READY record and returns the new count.
	IncrementDownloads(ctx context.Context, id string) (int64, error)
}
