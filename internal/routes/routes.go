package routes

import (
	"io/fs"
	"net/http"

	"github.com/templui/filedrop"
	"github.com/templui/filedrop/internal/app"
	"github.com/templui/filedrop/internal/handler"
	"github.com/templui/filedrop/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	system := handler.NewSystemHandler(app.Cfg.AppVersion, app.Cfg.AppEnv)
	files := handler.NewFileHandler(app.FileService)

	uploadLimit := middleware.RateLimit(app.UploadLimiter, handler.TooManyRequests)

	mux := http.NewServeMux()

	// System
	mux.HandleFunc("GET /health", system.Health)
	mux.HandleFunc("GET /version", system.Version)
	mux.HandleFunc("GET /env", system.Env)

	// Files
	mux.HandleFunc("POST /files/presign-upload", uploadLimit(files.PresignUpload))
	mux.HandleFunc("POST /files/complete", files.Complete)
	mux.HandleFunc("GET /files/{fileId}", files.Metadata)
	mux.HandleFunc("POST /files/{fileId}/share", files.Share)
	// Unknown /files paths still answer in JSON
	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		mux.HandleFunc(method+" /files/", handler.NotFound)
	}

	// Static files at the site root
	public, _ := fs.Sub(filedrop.PublicFS, "public")
	mux.Handle("GET /", http.FileServer(http.FS(public)))

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.RequestLogging,
		middleware.Recover(handler.Recovered),
		middleware.LimitBody(app.Cfg.MaxBodyBytes),
	)
}
