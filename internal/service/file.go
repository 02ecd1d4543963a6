package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/templui/filedrop/internal/model"
	"github.com/templui/filedrop/internal/repository"
	"github.com/templui/filedrop/internal/storage"
)

// UploadTicket is handed to a client that wants to upload a file directly to the object store
type UploadTicket struct {
	FileID    string `json:"fileId"`
	UploadURL string `json:"uploadUrl"`
	S3Key     string `json:"s3Key"`
	ExpiresAt int64  `json:"expiresAt"`
}

// Completion describes a file that just became READY
type Completion struct {
	OK          bool   `json:"ok"`
	FileID      string `json:"fileId"`
	SizeBytes   *int64 `json:"sizeBytes"`
	ContentType string `json:"contentType"`
}

// ShareLink is a time-limited download link for a READY file
type ShareLink struct {
	FileID      string `json:"fileId"`
	DownloadURL string `json:"downloadUrl"`
	ExpiresAt   int64  `json:"expiresAt"`
}

type FileService struct {
	fileRepo repository.FileRepository
	storage  storage.Storage
	expiry   time.Duration
	now      func() time.Time
}

func NewFileService(fileRepo repository.FileRepository, storage storage.Storage, expiry time.Duration) *FileService {
	return &FileService{
		fileRepo: fileRepo,
		storage:  storage,
		expiry:   expiry,
		now:      time.Now,
	}
}

// PresignUpload stages a new upload: it signs a PUT URL and records the file as UPLOADING.
// Inputs are expected to be validated by the caller.
func (s *FileService) PresignUpload(ctx context.Context, originalFilename, contentType string) (*UploadTicket, error) {
	fileID := uuid.New().String()
	key := storage.UploadKey(fileID, originalFilename)
	now := s.now()

	uploadURL, err := s.storage.PresignPut(ctx, key, contentType, s.expiry)
	if err != nil {
		return nil, err
	}

	file := &model.File{
		FileID:           fileID,
		S3Bucket:         s.storage.Bucket(),
		S3Key:            key,
		OriginalFilename: originalFilename,
		ContentType:      contentType,
		Status:           model.StatusUploading,
		CreatedAt:        model.FormatCreatedAt(now),
		ExpiresAt:        now.Add(s.expiry).Unix(),
		DownloadCount:    0,
	}

	// Written only after signing succeeded, so a failed presign leaves no record behind
	err = s.fileRepo.Create(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	slog.Info("upload presigned", "file_id", fileID, "s3_key", key, "content_type", contentType)

	return &UploadTicket{
		FileID:    fileID,
		UploadURL: uploadURL,
		S3Key:     key,
		ExpiresAt: file.ExpiresAt,
	}, nil
}

// CompleteUpload marks an UPLOADING file READY once the object store confirms the object exists
func (s *FileService) CompleteUpload(ctx context.Context, fileID string) (*Completion, error) {
	file, err := s.fileRepo.ByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.Status != model.StatusUploading {
		return nil, invalidStatus(file.Status)
	}

	info, err := s.storage.Head(ctx, file.S3Bucket, file.S3Key)
	if err != nil {
		slog.Warn("completion head failed", "file_id", fileID, "s3_key", file.S3Key, "error", err)
		return nil, err
	}

	contentType := file.ContentType
	if info.ContentType != nil {
		contentType = *info.ContentType
	}

	err = s.fileRepo.MarkReady(ctx, fileID, info.SizeBytes, contentType)
	if errors.Is(err, repository.ErrConditionFailed) {
		// Another completion won the race
		return nil, s.statusConflict(ctx, fileID, invalidStatus)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark file ready: %w", err)
	}

	logAttrs := []any{"file_id", fileID, "content_type", contentType}
	if info.SizeBytes != nil {
		logAttrs = append(logAttrs, "size_bytes", *info.SizeBytes)
	}
	slog.Info("upload completed", logAttrs...)

	return &Completion{
		OK:          true,
		FileID:      fileID,
		SizeBytes:   info.SizeBytes,
		ContentType: contentType,
	}, nil
}

// Metadata returns the stored record
func (s *FileService) Metadata(ctx context.Context, fileID string) (*model.File, error) {
	return s.fileRepo.ByID(ctx, fileID)
}

// Share issues a download link for a READY file and counts it as a download.
// The count is incremented whether or not the link is ever used.
func (s *FileService) Share(ctx context.Context, fileID string) (*ShareLink, error) {
	file, err := s.fileRepo.ByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.Status != model.StatusReady {
		return nil, notReady(file.Status)
	}

	// expiresAt is reported from the same instant the signing window starts
	now := s.now()
	downloadURL, err := s.storage.PresignGet(ctx, file.S3Bucket, file.S3Key, file.OriginalFilename, s.expiry)
	if err != nil {
		return nil, err
	}

	count, err := s.fileRepo.IncrementDownloads(ctx, fileID)
	if errors.Is(err, repository.ErrConditionFailed) {
		return nil, s.statusConflict(ctx, fileID, notReady)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to increment download count: %w", err)
	}

	slog.Info("share link issued", "file_id", fileID, "download_count", count)

	return &ShareLink{
		FileID:      fileID,
		DownloadURL: downloadURL,
		ExpiresAt:   now.Add(s.expiry).Unix(),
	}, nil
}

// statusConflict reloads the record after a lost conditional update to report its current status
func (s *FileService) statusConflict(ctx context.Context, fileID string, build func(model.FileStatus) *StatusError) error {
	file, err := s.fileRepo.ByID(ctx, fileID)
	if err != nil {
		return err
	}
	return build(file.Status)
}
