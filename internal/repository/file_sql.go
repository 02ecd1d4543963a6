package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/templui/filedrop/internal/model"
)

const fileColumns = `file_id, s3_bucket, s3_key, original_filename, content_type, status, created_at, expires_at, size_bytes, download_count`

// sqlFileRepository stores file records in sqlite or postgres. Used for local development.
type sqlFileRepository struct {
	db *sqlx.DB
}

func NewSQLFileRepository(db *sqlx.DB) *sqlFileRepository {
	return &sqlFileRepository{db: db}
}

func (r *sqlFileRepository) Create(ctx context.Context, file *model.File) error {
	query := `INSERT INTO files (` + fileColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          ON CONFLICT (file_id) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query,
		file.FileID,
		file.S3Bucket,
		file.S3Key,
		file.OriginalFilename,
		file.ContentType,
		file.Status,
		file.CreatedAt,
		file.ExpiresAt,
		file.SizeBytes,
		file.DownloadCount,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrFileExists
	}

	return nil
}

func (r *sqlFileRepository) ByID(ctx context.Context, id string) (*model.File, error) {
	file := &model.File{}
	query := `SELECT ` + fileColumns + ` FROM files WHERE file_id = $1`

	err := r.db.GetContext(ctx, file, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	return file, nil
}

func (r *sqlFileRepository) MarkReady(ctx context.Context, id string, sizeBytes *int64, contentType string) error {
	query := `UPDATE files SET status = $1, size_bytes = $2, content_type = $3
	          WHERE file_id = $4 AND status = $5`

	res, err := r.db.ExecContext(ctx, query, model.StatusReady, sizeBytes, contentType, id, model.StatusUploading)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return r.missingOrConflict(ctx, id)
	}

	return nil
}

func (r *sqlFileRepository) IncrementDownloads(ctx context.Context, id string) (int64, error) {
	var count int64
	query := `UPDATE files SET download_count = COALESCE(download_count, 0) + 1
	          WHERE file_id = $1 AND status = $2
	          RETURNING download_count`

	err := r.db.GetContext(ctx, &count, query, id, model.StatusReady)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, r.missingOrConflict(ctx, id)
	}
	if err != nil {
		return 0, err
	}

	return count, nil
}

// missingOrConflict explains why a conditional update matched no rows
func (r *sqlFileRepository) missingOrConflict(ctx context.Context, id string) error {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM files WHERE file_id = $1)`, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrFileNotFound
	}
	return ErrConditionFailed
}
