package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/filedrop/internal/config"
	"github.com/templui/filedrop/internal/db"
	"github.com/templui/filedrop/internal/middleware"
	"github.com/templui/filedrop/internal/repository"
	"github.com/templui/filedrop/internal/service"
	"github.com/templui/filedrop/internal/storage"
)

const rateLimitWindow = time.Minute

type App struct {
	Cfg           *config.Config
	DB            *sqlx.DB // nil with the dynamodb driver
	FileService   *service.FileService
	UploadLimiter *middleware.RateLimiter // nil when UPLOAD_RATE_LIMIT is 0
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Cfg: cfg}

	// Repository
	fileRepository, err := a.fileRepository(ctx)
	if err != nil {
		return nil, err
	}

	// Storage
	fileStorage, err := storage.New(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Services
	a.FileService = service.NewFileService(fileRepository, fileStorage, cfg.PresignExpiry)

	if cfg.UploadRateLimit > 0 {
		a.UploadLimiter = middleware.NewRateLimiter(cfg.UploadRateLimit, rateLimitWindow)
	}

	return a, nil
}

// fileRepository picks the metadata store for cfg.MetadataDriver
func (a *App) fileRepository(ctx context.Context) (repository.FileRepository, error) {
	switch a.Cfg.MetadataDriver {
	case "dynamodb":
		client, err := db.NewDynamoClient(ctx, db.DynamoConfigFrom(a.Cfg))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize dynamodb: %w", err)
		}
		return repository.NewDynamoFileRepository(client, a.Cfg.MetadataTable), nil

	case "sqlite", "pgx":
		database, err := db.Init(a.Cfg.MetadataDriver, a.Cfg.DBConnection)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.DB = database

		err = db.RunMigrations(database.DB, a.Cfg.MetadataDriver)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return repository.NewSQLFileRepository(database), nil

	default:
		return nil, fmt.Errorf("unknown METADATA_DRIVER %q", a.Cfg.MetadataDriver)
	}
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
