package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/templui/filedrop/internal/ctxkeys"
)

// Recover turns a handler panic into a response from onPanic and an error log
func Recover(onPanic http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				slog.Error("panic recovered",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", ctxkeys.RequestID(r.Context()),
					"stack", string(debug.Stack()),
				)
				onPanic(w, r)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
